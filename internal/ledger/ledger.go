// Package ledger implements the in-memory idempotency map (accepted /
// delivered per job) together with the per-job in-flight set. Both
// share one mutex: a job's stage flags are only ever mutated from
// within that job's in-flight critical section, so there is no benefit
// to separate locks and real risk of the two falling out of sync under
// concurrent socket/poll events.
package ledger

import "sync"

// State tracks which stages have run for a job during this process's
// lifetime. It is rebuilt from remote observations, never persisted.
type State struct {
	Accepted  bool
	Delivered bool
}

// Ledger is process-global, mutable state shared by every dispatcher
// invocation.
type Ledger struct {
	mu       sync.Mutex
	state    map[int64]*State
	inFlight map[int64]struct{}
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{
		state:    make(map[int64]*State),
		inFlight: make(map[int64]struct{}),
	}
}

// TryEnter adds jobID to the in-flight set and reports whether it
// succeeded. A second event for a jobID already in flight returns
// false; the caller must drop the event rather than wait.
func (l *Ledger) TryEnter(jobID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, busy := l.inFlight[jobID]; busy {
		return false
	}
	l.inFlight[jobID] = struct{}{}
	return true
}

// Leave removes jobID from the in-flight set. Safe to call even if
// jobID was never entered.
func (l *Ledger) Leave(jobID int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.inFlight, jobID)
}

func (l *Ledger) stateFor(jobID int64) *State {
	s, ok := l.state[jobID]
	if !ok {
		s = &State{}
		l.state[jobID] = s
	}
	return s
}

// MarkAccepted records that the accept stage's side effects have been
// issued for jobID.
func (l *Ledger) MarkAccepted(jobID int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stateFor(jobID).Accepted = true
}

// MarkDelivered records that the deliver stage's side effects have been
// issued for jobID.
func (l *Ledger) MarkDelivered(jobID int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stateFor(jobID).Delivered = true
}

// IsAccepted reports whether the accept stage has already run for jobID.
func (l *Ledger) IsAccepted(jobID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.state[jobID]
	return ok && s.Accepted
}

// IsDelivered reports whether the deliver stage has already run for
// jobID.
func (l *Ledger) IsDelivered(jobID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.state[jobID]
	return ok && s.Delivered
}

// Snapshot returns point-in-time counters for the debug/metrics
// endpoint.
func (l *Ledger) Snapshot() (tracked int, inFlight int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.state), len(l.inFlight)
}
