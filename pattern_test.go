package sigalign

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlanPatternSizeIsPositive(t *testing.T) {
	// spec.md §8 scenario parameters.
	penalties := Penalties{Mismatch: 4, GapOpen: 6, GapExtend: 2}
	g := penalties.gcd()
	reduced := penalties.dividedByGCD(g)
	minPen := newMinPenaltyForPattern(reduced)
	cutoff := newCutoff(50, 0.15).reducedBy(g)

	k := planPatternSize(50, minPen, cutoff.MaxPPLScaled)
	require.Greater(t, k, uint64(0))
	require.LessOrEqual(t, k, uint64(50))
}

func TestPlanPatternSizeGrowsWithMinLen(t *testing.T) {
	penalties := Penalties{Mismatch: 4, GapOpen: 6, GapExtend: 2}
	minPen := newMinPenaltyForPattern(penalties)
	cutoff := newCutoff(50, 0.15)

	kSmall := planPatternSize(50, minPen, cutoff.MaxPPLScaled)
	kLarge := planPatternSize(500, minPen, newCutoff(500, 0.15).MaxPPLScaled)
	require.GreaterOrEqual(t, kLarge, kSmall)
}

func TestRecommendedPatternSizeMatchesAlignerConstruction(t *testing.T) {
	penalties := Penalties{Mismatch: 4, GapOpen: 6, GapExtend: 2}
	k := RecommendedPatternSize(penalties, 50, 0.15)

	al, err := New(make([]byte, 200), stubLocator{}, penalties, 50, 0.15, DefaultOptions)
	require.NoError(t, err)
	require.Equal(t, k, al.patternSize)
}

type stubLocator struct{}

func (stubLocator) Locate(pattern []byte) ([]uint64, error) { return nil, nil }
