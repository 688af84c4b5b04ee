package api

import (
	"regexp"
	"strings"

	"github.com/meridianpay/meridian/internal/domain"
)

// Country-specific account number shapes and a loose email check.
// Validation is a presentation concern: the store accepts whatever it
// is given.
var (
	phAccountPattern = regexp.MustCompile(`^[0-9]{10,12}$`)
	myAccountPattern = regexp.MustCompile(`^[0-9]{10,16}$`)
	emailPattern     = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// validateBeneficiary returns an empty string when b is acceptable,
// otherwise a user-facing message.
func validateBeneficiary(b domain.Beneficiary) string {
	if strings.TrimSpace(b.Name) == "" {
		return "name is required"
	}
	if strings.TrimSpace(b.BankName) == "" {
		return "bank name is required"
	}
	if strings.TrimSpace(b.AccountNumber) == "" {
		return "account number is required"
	}

	switch b.Country {
	case "PH":
		if !phAccountPattern.MatchString(b.AccountNumber) {
			return "PH account numbers must be 10-12 digits"
		}
	case "MY":
		if !myAccountPattern.MatchString(b.AccountNumber) {
			return "MY account numbers must be 10-16 digits"
		}
	default:
		return "country must be PH or MY"
	}

	if b.Email != "" && !emailPattern.MatchString(b.Email) {
		return "email address is not valid"
	}
	return ""
}
