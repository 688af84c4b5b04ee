// Package rates holds the static exchange-rate table for the offered
// corridors. There is no live feed: rates are fixed at process start
// with an as-of timestamp.
package rates

import (
	"fmt"
	"time"

	"github.com/meridianpay/meridian/internal/domain"
)

// Table maps each corridor to its rate, expressed as destination
// currency units per 1 SGD. Every corridor has exactly one rate and
// every rate is positive.
type Table struct {
	perSGD map[domain.Corridor]float64
	asOf   time.Time
}

// Default returns the reference rate table, stamped as-of now.
func Default() *Table {
	return NewTable(map[domain.Corridor]float64{
		domain.CorridorSGDPHP: 41.30,
		domain.CorridorSGDMYR: 3.50,
	}, time.Now())
}

// NewTable builds a table from explicit rates, mainly for tests.
// Non-positive rates are a configuration bug and panic immediately
// rather than surfacing as nonsense quotes later.
func NewTable(perSGD map[domain.Corridor]float64, asOf time.Time) *Table {
	for corridor, rate := range perSGD {
		if rate <= 0 {
			panic(fmt.Sprintf("rates: non-positive rate %v for corridor %s", rate, corridor))
		}
	}
	m := make(map[domain.Corridor]float64, len(perSGD))
	for corridor, rate := range perSGD {
		m[corridor] = rate
	}
	return &Table{perSGD: m, asOf: asOf}
}

// Get returns the rate for the given corridor. The corridor type is
// closed, so an unknown value is a programming error, not a runtime
// condition to recover from.
func (t *Table) Get(corridor domain.Corridor) float64 {
	rate, ok := t.perSGD[corridor]
	if !ok {
		panic(fmt.Sprintf("rates: unknown corridor %s", corridor))
	}
	return rate
}

// AsOf returns the timestamp the table was captured at.
func (t *Table) AsOf() time.Time {
	return t.asOf
}

// Corridors lists the corridors the table covers.
func (t *Table) Corridors() []domain.Corridor {
	out := make([]domain.Corridor, 0, len(t.perSGD))
	for corridor := range t.perSGD {
		out = append(out, corridor)
	}
	return out
}
