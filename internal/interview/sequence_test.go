package interview

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func ids(questions []Question) []string {
	out := make([]string, len(questions))
	for i, q := range questions {
		out[i] = q.ID
	}
	return out
}

func TestSequence_Scenario(t *testing.T) {
	questions := []Question{
		{ID: "q1", IsGeneral: true, Order: intPtr(2)},
		{ID: "q2", IsGeneral: true, Order: intPtr(1)},
		{ID: "q3", IsGeneral: false, Order: intPtr(1)},
	}

	assert.Equal(t, []string{"q2", "q1", "q3"}, ids(Sequence(questions)))
}

func TestSequence_Empty(t *testing.T) {
	assert.Empty(t, Sequence(nil))
	assert.Empty(t, Sequence([]Question{}))
}

func TestSequence_DoesNotMutateInput(t *testing.T) {
	questions := []Question{
		{ID: "s1", IsGeneral: false, Order: intPtr(3)},
		{ID: "g1", IsGeneral: true, Order: intPtr(5)},
		{ID: "s2", IsGeneral: false, Order: intPtr(1)},
		{ID: "g2", IsGeneral: true, Order: intPtr(0)},
	}
	before := append([]Question(nil), questions...)

	out := Sequence(questions)

	assert.Equal(t, before, questions)
	assert.Equal(t, []string{"g2", "g1", "s2", "s1"}, ids(out))
}

func TestSequence_MissingOrderSortsLowest(t *testing.T) {
	questions := []Question{
		{ID: "a", IsGeneral: true, Order: intPtr(1)},
		{ID: "b", IsGeneral: true},
		{ID: "c", IsGeneral: false, Order: intPtr(-5)},
		{ID: "d", IsGeneral: false},
	}

	assert.Equal(t, []string{"b", "a", "d", "c"}, ids(Sequence(questions)))
}

func TestSequence_TiesKeepInputOrder(t *testing.T) {
	questions := []Question{
		{ID: "x", IsGeneral: false, Order: intPtr(1)},
		{ID: "y", IsGeneral: false, Order: intPtr(1)},
		{ID: "z", IsGeneral: false, Order: intPtr(1)},
	}

	assert.Equal(t, []string{"x", "y", "z"}, ids(Sequence(questions)))
}

func TestSequence_PartitionAndOrderProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("general first, ascending order, stable ties", prop.ForAll(
		func(general []bool, orders []int) bool {
			n := len(general)
			if len(orders) < n {
				n = len(orders)
			}
			questions := make([]Question, n)
			input := make(map[string]int, n)
			for i := range questions {
				id := string(rune('a' + i))
				questions[i] = Question{ID: id, IsGeneral: general[i], Order: intPtr(orders[i])}
				input[id] = i
			}

			out := Sequence(questions)
			if len(out) != n {
				return false
			}

			seenSpecific := false
			for i, q := range out {
				if q.IsGeneral && seenSpecific {
					return false
				}
				if !q.IsGeneral {
					seenSpecific = true
				}
				if i == 0 || out[i-1].IsGeneral != q.IsGeneral {
					continue
				}
				prev := out[i-1]
				if *prev.Order > *q.Order {
					return false
				}
				if *prev.Order == *q.Order && input[prev.ID] > input[q.ID] {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(12, gen.Bool()),
		gen.SliceOfN(12, gen.IntRange(0, 4)),
	))

	properties.TestingRun(t)
}

func TestCursor(t *testing.T) {
	c := NewCursor([]Question{{ID: "q1"}, {ID: "q2"}})

	q, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, "q1", q.ID)
	assert.False(t, c.Prev())

	pos, total := c.Progress()
	assert.Equal(t, 1, pos)
	assert.Equal(t, 2, total)

	assert.True(t, c.Next())
	q, _ = c.Current()
	assert.Equal(t, "q2", q.ID)

	assert.False(t, c.Next())
	assert.True(t, c.Done())
	_, ok = c.Current()
	assert.False(t, ok)
	pos, _ = c.Progress()
	assert.Equal(t, 2, pos)

	assert.True(t, c.Prev())
	assert.Equal(t, 1, c.Index())
}

func TestAnswerStatus_Terminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusFailed.Terminal())
}
