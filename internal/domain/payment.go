package domain

import "time"

type Currency string

const (
	CurrencySGD Currency = "SGD"
	CurrencyPHP Currency = "PHP"
	CurrencyMYR Currency = "MYR"
)

// Corridor identifies a source->destination currency route. The set is
// closed: Meridian offers exactly two outbound corridors from Singapore.
type Corridor string

const (
	CorridorSGDPHP Corridor = "SGD_PHP"
	CorridorSGDMYR Corridor = "SGD_MYR"
)

// DestCurrency returns the destination currency of the corridor.
func (c Corridor) DestCurrency() Currency {
	if c == CorridorSGDPHP {
		return CurrencyPHP
	}
	return CurrencyMYR
}

type PaymentStatus string

const (
	StatusDraft     PaymentStatus = "DRAFT"
	StatusQuoted    PaymentStatus = "QUOTED"
	StatusConfirmed PaymentStatus = "CONFIRMED"
	StatusInReview  PaymentStatus = "IN_REVIEW"
	StatusSettling  PaymentStatus = "SETTLING"
	StatusDelivered PaymentStatus = "DELIVERED"
	StatusFailed    PaymentStatus = "FAILED"
)

// Beneficiary is a saved payment recipient. Email, bank code and notes
// are optional.
type Beneficiary struct {
	ID            string    `json:"id"`
	Country       string    `json:"country"`
	Name          string    `json:"name"`
	BankName      string    `json:"bank_name"`
	AccountNumber string    `json:"account_number"`
	Email         string    `json:"email,omitempty"`
	BankCode      string    `json:"bank_code,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// QuoteInput is a transient pricing request: how much the recipient
// should receive, over which corridor, for which saved beneficiary.
type QuoteInput struct {
	Corridor      Corridor `json:"corridor"`
	DestAmount    float64  `json:"dest_amount"`
	BeneficiaryID string   `json:"beneficiary_id"`
}

// Quote is the priced result of a QuoteInput. The rate is a snapshot
// taken at computation time, not a live reference. Quotes are immutable
// once produced; an unconfirmed quote leaves no persisted trace.
type Quote struct {
	ID                string    `json:"id"`
	Corridor          Corridor  `json:"corridor"`
	Rate              float64   `json:"rate"`
	DestAmount        float64   `json:"dest_amount"`
	SourceNotionalSGD float64   `json:"source_notional_sgd"`
	FeeSGD            float64   `json:"fee_sgd"`
	TotalToPaySGD     float64   `json:"total_to_pay_sgd"`
	ETA               string    `json:"eta"`
	CreatedAt         time.Time `json:"created_at"`
}

// TimelineEntry records one status change of a payment.
type TimelineEntry struct {
	Status PaymentStatus `json:"status"`
	At     time.Time     `json:"at"`
}

// Payment is a confirmed quote tracked through the delivery lifecycle.
// The timeline is append-only; insertion order is chronological order.
type Payment struct {
	Quote
	Status        PaymentStatus   `json:"status"`
	Reference     string          `json:"reference"`
	BeneficiaryID string          `json:"beneficiary_id"`
	Timeline      []TimelineEntry `json:"timeline"`
}
