package engine

import (
	"github.com/stubkit/stubd/internal/matching"
	"github.com/stubkit/stubd/pkg/criteria"
	"github.com/stubkit/stubd/pkg/stub"
)

// Evaluate counts the recorded requests matching the assertion's rules and
// applies its count predicate. A nil Times predicate means "at least one".
// Evaluation is read-only over the snapshot it is handed.
func Evaluate(a stub.Assertion, history []*stub.Request) (passed bool, count int) {
	for _, req := range history {
		if matching.Match(a.Rules, req).Matched {
			count++
		}
	}

	times := a.Times
	if times == nil {
		times = criteria.AtLeast(1)
	}
	return times.MatchCount(count), count
}
