package sigalign

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCutoffSatisfied(t *testing.T) {
	// spec.md §8 scenario parameters: min_len=50, max_ppl=0.15.
	c := newCutoff(50, 0.15)
	require.EqualValues(t, 1500, c.MaxPPLScaled)

	cases := []struct {
		name            string
		penalty, length uint64
		want            bool
	}{
		{"too short", 0, 49, false},
		{"exactly min length, zero penalty", 0, 50, true},
		{"at the ratio boundary", 7, 50, true},
		{"one over the ratio boundary", 8, 50, false},
		{"longer alignment tolerates proportionally more penalty", 15, 100, true},
	}
	for _, c2 := range cases {
		t.Run(c2.name, func(t *testing.T) {
			require.Equal(t, c2.want, c.satisfied(c2.penalty, c2.length))
		})
	}
}

func TestCutoffReducedBy(t *testing.T) {
	c := newCutoff(50, 0.15).reducedBy(2)
	require.EqualValues(t, 50, c.MinLen)
	require.EqualValues(t, 750, c.MaxPPLScaled)
}
