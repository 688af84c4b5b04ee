// Package store is the process-wide state container for beneficiaries
// and payments. It owns quote creation, payment confirmation and
// status advancement; everything else only reads from it.
package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/meridianpay/meridian/internal/domain"
	"github.com/meridianpay/meridian/internal/pricing"
)

// Persister is the durable slot the store loads from and saves to.
// Persistence is explicit: the store never saves behind the caller's
// back, the boundary decides when Save runs.
type Persister interface {
	Save(domain.StoreState) error
	Load() (domain.StoreState, bool, error)
}

// Store holds the beneficiary and payment collections. All mutations
// serialize on an internal mutex so each call is exactly one logical
// change; readers get copies, never aliases of internal slices.
type Store struct {
	mu    sync.Mutex
	calc  *pricing.Calculator
	repo  Persister
	now   func() time.Time
	newID func() string

	beneficiaries []domain.Beneficiary
	payments      []domain.Payment
}

// New creates a store over the given calculator and persister, using
// the wall clock and random ids.
func New(calc *pricing.Calculator, repo Persister) *Store {
	return &Store{calc: calc, repo: repo, now: time.Now, newID: uuid.NewString}
}

// NewWithClock is New with an injected clock and id source, for
// deterministic tests.
func NewWithClock(calc *pricing.Calculator, repo Persister, now func() time.Time, newID func() string) *Store {
	return &Store{calc: calc, repo: repo, now: now, newID: newID}
}

// Load restores the collections from the persisted slot. An empty slot
// is seeded with the starter beneficiaries and no payments.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, found, err := s.repo.Load()
	if err != nil {
		return fmt.Errorf("load store state: %w", err)
	}
	if !found {
		s.beneficiaries = seedBeneficiaries(s.now())
		s.payments = nil
		return nil
	}
	s.beneficiaries = state.Beneficiaries
	s.payments = state.Payments
	return nil
}

// Save writes the current collections to the persisted slot.
func (s *Store) Save() error {
	s.mu.Lock()
	state := domain.StoreState{
		Beneficiaries: copyBeneficiaries(s.beneficiaries),
		Payments:      copyPayments(s.payments),
	}
	s.mu.Unlock()

	if err := s.repo.Save(state); err != nil {
		return fmt.Errorf("save store state: %w", err)
	}
	return nil
}

// UpsertBeneficiary updates the beneficiary whose id matches b.ID in
// place, preserving its id and original creation timestamp and its
// position in the collection. With an empty or unmatched id a new
// beneficiary is created with a fresh id and inserted at the front.
// No dedup is performed: duplicate names and account numbers are
// allowed by design. Returns the stored beneficiary.
func (s *Store) UpsertBeneficiary(b domain.Beneficiary) domain.Beneficiary {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b.ID != "" {
		for i, existing := range s.beneficiaries {
			if existing.ID == b.ID {
				b.CreatedAt = existing.CreatedAt
				next := copyBeneficiaries(s.beneficiaries)
				next[i] = b
				s.beneficiaries = next
				return b
			}
		}
	}

	b.ID = s.newID()
	b.CreatedAt = s.now()
	s.beneficiaries = append([]domain.Beneficiary{b}, copyBeneficiaries(s.beneficiaries)...)
	return b
}

// DeleteBeneficiary removes the beneficiary with the given id. Absent
// ids are a no-op, not an error.
func (s *Store) DeleteBeneficiary(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]domain.Beneficiary, 0, len(s.beneficiaries))
	for _, b := range s.beneficiaries {
		if b.ID != id {
			next = append(next, b)
		}
	}
	s.beneficiaries = next
}

// MakeQuote prices the input. The quote is transient output for the
// caller to act on; nothing is persisted until it is confirmed.
func (s *Store) MakeQuote(input domain.QuoteInput) domain.Quote {
	return s.calc.ComputeQuote(input)
}

// ConfirmPayment turns a quote into a payment: status CONFIRMED, a
// one-entry timeline, front-inserted so the collection stays
// most-recent-first. The beneficiary id is taken as given; referential
// integrity is the caller's responsibility.
func (s *Store) ConfirmPayment(q domain.Quote, reference, beneficiaryID string) domain.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := domain.Payment{
		Quote:         q,
		Status:        domain.StatusConfirmed,
		Reference:     reference,
		BeneficiaryID: beneficiaryID,
		Timeline:      []domain.TimelineEntry{{Status: domain.StatusConfirmed, At: s.now()}},
	}
	s.payments = append([]domain.Payment{p}, copyPayments(s.payments)...)
	return copyPayment(p)
}

// AdvanceStatus steps the payment one state along the delivery path
// and appends the matching timeline entry. Unknown ids and payments
// already in a terminal or off-path status are a safe no-op, so the
// scheduler may call this at arbitrary times and as often as it
// likes. Reports whether the status actually changed.
func (s *Store) AdvanceStatus(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.payments {
		if p.ID != id {
			continue
		}
		next := domain.NextStatus(p.Status)
		if next == p.Status {
			return false
		}
		updated := copyPayment(p)
		updated.Status = next
		updated.Timeline = append(updated.Timeline, domain.TimelineEntry{Status: next, At: s.now()})

		payments := copyPayments(s.payments)
		payments[i] = updated
		s.payments = payments
		return true
	}
	return false
}

// Beneficiaries returns a copy of the beneficiary collection in
// stored order (most recently created first).
func (s *Store) Beneficiaries() []domain.Beneficiary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyBeneficiaries(s.beneficiaries)
}

// Beneficiary looks up a beneficiary by id.
func (s *Store) Beneficiary(id string) (domain.Beneficiary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.beneficiaries {
		if b.ID == id {
			return b, true
		}
	}
	return domain.Beneficiary{}, false
}

// Payments returns a copy of the payment collection in stored order
// (most recently confirmed first).
func (s *Store) Payments() []domain.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyPayments(s.payments)
}

// Payment looks up a payment by id.
func (s *Store) Payment(id string) (domain.Payment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.payments {
		if p.ID == id {
			return copyPayment(p), true
		}
	}
	return domain.Payment{}, false
}

func seedBeneficiaries(now time.Time) []domain.Beneficiary {
	return []domain.Beneficiary{
		{
			ID:            "ph-1",
			Country:       "PH",
			Name:          "Manila Dressmakers Co.",
			BankName:      "BDO Unibank",
			AccountNumber: "012345678901",
			Email:         "accounts@dressmaker.ph",
			Notes:         "Monthly fabric supplier",
			CreatedAt:     now,
		},
		{
			ID:            "my-1",
			Country:       "MY",
			Name:          "KL Electronics Sdn Bhd",
			BankName:      "Maybank",
			AccountNumber: "1234567890123",
			BankCode:      "MBB",
			Email:         "finance@klelectronics.my",
			CreatedAt:     now,
		},
	}
}

func copyBeneficiaries(in []domain.Beneficiary) []domain.Beneficiary {
	out := make([]domain.Beneficiary, len(in))
	copy(out, in)
	return out
}

func copyPayments(in []domain.Payment) []domain.Payment {
	out := make([]domain.Payment, len(in))
	for i, p := range in {
		out[i] = copyPayment(p)
	}
	return out
}

func copyPayment(p domain.Payment) domain.Payment {
	timeline := make([]domain.TimelineEntry, len(p.Timeline))
	copy(timeline, p.Timeline)
	p.Timeline = timeline
	return p
}
