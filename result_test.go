package sigalign

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRLEMergesRuns(t *testing.T) {
	flat := []op{opMatch, opMatch, opMatch, opSubst, opIns, opIns, opMatch}
	packed := rle(flat)
	require.Len(t, packed, 4)

	wantOp := []op{opMatch, opSubst, opIns, opMatch}
	wantN := []uint64{3, 1, 2, 1}
	for i, p := range packed {
		o, n := OpAt(p)
		require.Equal(t, wantOp[i], o)
		require.Equal(t, wantN[i], n)
	}
}

func TestResidualClipPicksLargerAxis(t *testing.T) {
	o, n := residualClip(5, 2)
	require.Equal(t, opRefClip, o)
	require.EqualValues(t, 3, n)

	o, n = residualClip(2, 5)
	require.Equal(t, opQryClip, o)
	require.EqualValues(t, 3, n)

	_, n = residualClip(4, 4)
	require.EqualValues(t, 0, n)
}

func TestNewAlignmentResultFromOpsNoClip(t *testing.T) {
	flat := []op{opMatch, opMatch, opSubst, opMatch}
	res := newAlignmentResultFromOps(flat, 4, opRefClip, 0, opQryClip, 0)
	require.Equal(t, uint64(4), res.Penalty)
	require.EqualValues(t, 4, res.AlignLen)
	require.EqualValues(t, 3, res.Matches)
	require.EqualValues(t, 0, res.Gaps)
	require.EqualValues(t, 0, res.GapRegions)
	require.Equal(t, "2M1X1M", res.CIGAR())
}

func TestNewAlignmentResultFromOpsWithClips(t *testing.T) {
	flat := []op{opMatch, opMatch}
	res := newAlignmentResultFromOps(flat, 0, opQryClip, 3, opRefClip, 2)
	// clips are not counted towards AlignLen/Matches.
	require.EqualValues(t, 2, res.AlignLen)
	require.EqualValues(t, 2, res.Matches)
	require.Len(t, res.Ops, 3)

	o, n := OpAt(res.Ops[0])
	require.Equal(t, opQryClip, o)
	require.EqualValues(t, 3, n)

	o, n = OpAt(res.Ops[2])
	require.Equal(t, opRefClip, o)
	require.EqualValues(t, 2, n)
}

func TestComputeStatsCountsGapRegionsNotBases(t *testing.T) {
	flat := []op{opMatch, opIns, opIns, opIns, opMatch, opDel, opMatch}
	res := newAlignmentResultFromOps(flat, 0, opRefClip, 0, opRefClip, 0)
	require.EqualValues(t, 4, res.Gaps)
	require.EqualValues(t, 2, res.GapRegions)
}
