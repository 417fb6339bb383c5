package sigalign

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPenaltiesGCD(t *testing.T) {
	p := Penalties{Mismatch: 4, GapOpen: 6, GapExtend: 2}
	require.EqualValues(t, 2, p.gcd())
	require.Equal(t, Penalties{Mismatch: 2, GapOpen: 3, GapExtend: 1}, p.dividedByGCD(2))
}

func TestPenaltiesGCDCoprime(t *testing.T) {
	p := Penalties{Mismatch: 4, GapOpen: 6, GapExtend: 3}
	require.EqualValues(t, 1, p.gcd())
}

func TestMinPenaltyForPattern(t *testing.T) {
	// spec.md §8 scenario penalties: x=4, o=6, e=2.
	mp := newMinPenaltyForPattern(Penalties{Mismatch: 4, GapOpen: 6, GapExtend: 2})
	// mismatch (4) <= gapOpen+gapExtend (8): odd = mismatch = 4.
	require.EqualValues(t, 4, mp.Odd)
	// 2*mismatch (8) <= gapOpen+2*gapExtend (10): even = mismatch = 4.
	require.EqualValues(t, 4, mp.Even)
}

func TestMinPenaltyForPatternGapDominant(t *testing.T) {
	// when gap-open+extend is cheaper than mismatch, the gap path wins.
	mp := newMinPenaltyForPattern(Penalties{Mismatch: 10, GapOpen: 2, GapExtend: 1})
	require.EqualValues(t, 3, mp.Odd)
	require.EqualValues(t, 1, mp.Even)
}
