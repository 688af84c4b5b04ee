// Package progress simulates delivery: after a payment is confirmed it
// schedules a fixed series of delayed advancement ticks. This is pure
// orchestration around the store; the store itself stays timer-free
// and tolerates ticks firing at any time, repeatedly, or not at all.
package progress

import (
	"log"
	"sync"
	"time"
)

// Advancer is the slice of the store the simulator drives.
type Advancer interface {
	AdvanceStatus(id string) bool
}

// DefaultDelays is the demo progression: review, settling
// and delivery land at these offsets after confirmation.
var DefaultDelays = []time.Duration{
	1200 * time.Millisecond,
	3500 * time.Millisecond,
	6 * time.Second,
}

// Simulator tracks one cancellable handle per in-flight payment.
type Simulator struct {
	mu       sync.Mutex
	store    Advancer
	delays   []time.Duration
	onTick   func(id string)
	inFlight map[string][]*time.Timer
}

// NewSimulator builds a simulator over the given store. Nil or empty
// delays fall back to DefaultDelays. onTick, if non-nil, runs after
// every tick that changed a status (the API uses it to persist).
func NewSimulator(store Advancer, delays []time.Duration, onTick func(id string)) *Simulator {
	if len(delays) == 0 {
		delays = DefaultDelays
	}
	return &Simulator{
		store:    store,
		delays:   delays,
		onTick:   onTick,
		inFlight: make(map[string][]*time.Timer),
	}
}

// Start schedules the full tick series for the payment. Starting an
// already tracked payment first cancels its pending ticks, so a
// payment never has two competing series.
func (s *Simulator) Start(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked(id)

	timers := make([]*time.Timer, 0, len(s.delays))
	for _, d := range s.delays {
		timers = append(timers, time.AfterFunc(d, func() { s.tick(id) }))
	}
	s.inFlight[id] = timers
}

// Cancel drops any pending ticks for the payment. The payment simply
// stops progressing; already applied transitions stay.
func (s *Simulator) Cancel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(id)
}

// Stop cancels every pending tick, for shutdown.
func (s *Simulator) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.inFlight {
		s.cancelLocked(id)
	}
}

func (s *Simulator) cancelLocked(id string) {
	for _, t := range s.inFlight[id] {
		t.Stop()
	}
	delete(s.inFlight, id)
}

func (s *Simulator) tick(id string) {
	changed := s.store.AdvanceStatus(id)
	if changed {
		log.Printf("[progress] payment %s advanced", id)
		if s.onTick != nil {
			s.onTick(id)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	timers := s.inFlight[id]
	if len(timers) > 0 {
		s.inFlight[id] = timers[1:]
	}
	if len(s.inFlight[id]) == 0 {
		delete(s.inFlight, id)
	}
}
