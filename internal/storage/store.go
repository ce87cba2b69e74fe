package storage

import (
	"sync"

	"github.com/stubkit/stubd/internal/matching"
	"github.com/stubkit/stubd/pkg/stub"
)

// StubStore is a thread-safe, ordered collection of registered stubs.
// Registration order is preserved and is semantically significant: ties in
// match strength are broken in favor of the most recently registered stub.
//
// A single mutex covers both the matching scan and per-stub call accounting,
// so every FindBestMatch call observes a consistent snapshot of the list and
// CallCount increments are atomic per stub.
type StubStore struct {
	mu    sync.Mutex
	stubs []*stub.Stub
}

// NewStubStore creates an empty StubStore.
func NewStubStore() *StubStore {
	return &StubStore{}
}

// Register appends a stub to the end of the ordered list.
func (s *StubStore) Register(st *stub.Stub) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stubs = append(s.stubs, st)
}

// FindBestMatch evaluates every registered stub against the request, in
// registration order, and returns the one with the highest match strength,
// or nil when no stub matches at all.
//
// An exhausted stub is skipped before any field comparison and performs no
// side effects. Every stub whose specified fields all match has its
// CallCount incremented as a side effect of being evaluated, even when a
// different stub ends up winning: call accounting reflects "matched during
// evaluation", not "was selected to respond".
//
// The running best is replaced whenever a candidate's strength is greater
// than or equal to the best seen so far, so the most recently registered
// stub wins ties, and a criteria-less stub (strength 0) can win by being
// the only candidate.
func (s *StubStore) FindBestMatch(req *stub.Request) *stub.Stub {
	s.mu.Lock()
	defer s.mu.Unlock()

	var best *stub.Stub
	bestStrength := 0

	for _, st := range s.stubs {
		if st.Exhausted() {
			continue
		}

		res := matching.Match(st.Rules, req)
		if !res.Matched {
			continue
		}

		st.CallCount++

		if res.Strength >= bestStrength {
			bestStrength = res.Strength
			best = st
		}
	}

	return best
}

// List returns the ordered stub collection as a point-in-time copy. The
// copies carry the CallCount observed at the time of the call; mutating
// them has no effect on the store.
func (s *StubStore) List() []*stub.Stub {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]*stub.Stub, 0, len(s.stubs))
	for _, st := range s.stubs {
		copied := *st
		result = append(result, &copied)
	}
	return result
}

// Count returns the number of registered stubs.
func (s *StubStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stubs)
}

// Clear removes all registered stubs.
func (s *StubStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stubs = nil
}
