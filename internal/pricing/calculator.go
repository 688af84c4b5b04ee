// Package pricing turns a quote request into a priced quote: rate
// snapshot, SGD notional, fee and delivery estimate.
package pricing

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/meridianpay/meridian/internal/domain"
	"github.com/meridianpay/meridian/internal/rates"
)

const (
	// FeeRate is the ad-valorem fee on the SGD notional: 0.75%.
	FeeRate = 0.0075
	// FeeFloorSGD is the minimum fee charged regardless of notional.
	FeeFloorSGD = 3.0

	// ComplianceThresholdSGD is the total-to-pay above which a payment
	// is routed through compliance review instead of instant delivery.
	ComplianceThresholdSGD = 50000.0

	ETAFast   = "approximately 10 minutes"
	ETAReview = "compliance review, next business day"
)

// Calculator prices quote requests against a rate table. It is pure
// apart from id/timestamp assignment: it never touches the store and
// identical inputs price identically.
type Calculator struct {
	table *rates.Table
	now   func() time.Time
	newID func() string
}

// NewCalculator builds a calculator over the given rate table using
// the wall clock and random ids.
func NewCalculator(table *rates.Table) *Calculator {
	return &Calculator{table: table, now: time.Now, newID: uuid.NewString}
}

// NewCalculatorWithClock is NewCalculator with an injected clock and
// id source, for deterministic tests.
func NewCalculatorWithClock(table *rates.Table, now func() time.Time, newID func() string) *Calculator {
	return &Calculator{table: table, now: now, newID: newID}
}

// ComputeQuote prices the requested destination amount. The sender
// specifies what the recipient should receive, so the SGD notional is
// the inverse conversion destAmount/rate. All monetary outputs are
// rounded half-up to 2 decimal places before they are stored; raw
// intermediate values never leave this function.
//
// The caller must reject non-positive destination amounts before
// calling: no bounds check happens here.
func (c *Calculator) ComputeQuote(input domain.QuoteInput) domain.Quote {
	rate := c.table.Get(input.Corridor)

	source := round2(input.DestAmount / rate)
	fee := round2(math.Max(source*FeeRate, FeeFloorSGD))
	total := round2(source + fee)

	eta := ETAFast
	if total > ComplianceThresholdSGD {
		eta = ETAReview
	}

	return domain.Quote{
		ID:                c.newID(),
		Corridor:          input.Corridor,
		Rate:              rate,
		DestAmount:        input.DestAmount,
		SourceNotionalSGD: source,
		FeeSGD:            fee,
		TotalToPaySGD:     total,
		ETA:               eta,
		CreatedAt:         c.now(),
	}
}

// round2 rounds to 2 decimal places, halves away from zero.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
