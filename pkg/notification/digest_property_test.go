// Property-based tests for the digest hypothesis selection.
package notification

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"charterlens/internal/model"
	"charterlens/pkg/constants"
)

// genHypotheses builds slices of hypotheses with arbitrary priority
// values, including unknown ones, and position-encoded titles so
// stability can be checked after sorting.
func genHypotheses() gopter.Gen {
	return gen.SliceOf(gen.OneConstOf(
		constants.PriorityHigh,
		constants.PriorityMedium,
		constants.PriorityLow,
		"urgent",
		"",
	)).Map(func(priorities []string) []*model.Hypothesis {
		hypotheses := make([]*model.Hypothesis, len(priorities))
		for i, priority := range priorities {
			hypotheses[i] = &model.Hypothesis{
				ID:       fmt.Sprintf("hyp-%d", i),
				Title:    fmt.Sprintf("hypothesis %d", i),
				Priority: priority,
			}
		}
		return hypotheses
	})
}

// TestProperty_TopByPriority verifies the digest selection invariants
// for arbitrary hypothesis lists: bounded size, priority ordering,
// stable ties, and no mutation of the input.
func TestProperty_TopByPriority(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("never returns more than requested", prop.ForAll(
		func(hypotheses []*model.Hypothesis, n int) bool {
			top := topByPriority(hypotheses, n)
			want := len(hypotheses)
			if want > n {
				want = n
			}
			return len(top) == want
		},
		genHypotheses(),
		gen.IntRange(0, 10),
	))

	properties.Property("result is ordered highest priority first", prop.ForAll(
		func(hypotheses []*model.Hypothesis) bool {
			top := topByPriority(hypotheses, len(hypotheses))
			for i := 1; i < len(top); i++ {
				if constants.PriorityRank(top[i-1].Priority) > constants.PriorityRank(top[i].Priority) {
					return false
				}
			}
			return true
		},
		genHypotheses(),
	))

	properties.Property("equal priorities keep their input order", prop.ForAll(
		func(hypotheses []*model.Hypothesis) bool {
			top := topByPriority(hypotheses, len(hypotheses))
			seen := map[int]int{} // rank -> last input index
			for _, h := range top {
				rank := constants.PriorityRank(h.Priority)
				var index int
				fmt.Sscanf(h.ID, "hyp-%d", &index)
				if last, ok := seen[rank]; ok && index < last {
					return false
				}
				seen[rank] = index
			}
			return true
		},
		genHypotheses(),
	))

	properties.Property("input order is not mutated", prop.ForAll(
		func(hypotheses []*model.Hypothesis) bool {
			before := make([]string, len(hypotheses))
			for i, h := range hypotheses {
				before[i] = h.ID
			}
			topByPriority(hypotheses, 3)
			for i, h := range hypotheses {
				if h.ID != before[i] {
					return false
				}
			}
			return true
		},
		genHypotheses(),
	))

	properties.TestingRun(t)
}
