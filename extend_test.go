package sigalign

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// dropoutWFAlign with a mismatch-only, unreachable-boundary case: query and
// reference disagree at every position, so no diagonal can reach either
// sequence's boundary within a one-mismatch budget. SemiGlobal (SPEC_FULL
// §4.7) must fail the extension outright; Local must instead accept the
// best-progress diagonal once the budget runs out.
func TestDropoutWFAlignModeDivergesOnBudgetExhaustion(t *testing.T) {
	query := []byte("AAA")
	reference := []byte("GGG")
	penalties := Penalties{Mismatch: 2, GapOpen: 3, GapExtend: 1}
	// A maximally permissive cutoff isolates the budget-exhaustion branch:
	// anyAlive's optimistic viability test must never be what kills the
	// diagonal here, only ctx.spare.
	permissive := Cutoff{MinLen: 1, MaxPPLScaled: PrecisionScale}

	base := extendContext{penalties: penalties, cutoff: permissive, spare: 2}

	semiGlobal := base
	semiGlobal.mode = SemiGlobal
	ext := newExtender()
	_, ok := ext.dropoutWFAlign(query, reference, semiGlobal)
	require.False(t, ok, "SemiGlobal must fail an extension that cannot reach a boundary within budget")
	ext.release()

	local := base
	local.mode = Local
	ext = newExtender()
	res, ok := ext.dropoutWFAlign(query, reference, local)
	require.True(t, ok, "Local must accept a best-effort diagonal once the budget is exhausted")
	require.EqualValues(t, 2, res.score)

	ops, _ := ext.backtrace(res.score, res.k, penalties, nil)
	require.Equal(t, []op{opSubst}, ops)
	ext.release()
}
