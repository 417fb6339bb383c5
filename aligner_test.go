package sigalign_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shenwei356/sigalign"
	"github.com/shenwei356/sigalign/internal/memindex"
)

// spec.md §8's fixed scenario parameters.
var (
	scenarioPenalties = sigalign.Penalties{Mismatch: 4, GapOpen: 6, GapExtend: 2}
	scenarioMinLen    = uint64(50)
	scenarioMaxPPL    = 0.15
)

func newScenarioAligner(t *testing.T, reference []byte) *sigalign.Aligner {
	t.Helper()
	k := int(sigalign.RecommendedPatternSize(scenarioPenalties, scenarioMinLen, scenarioMaxPPL))
	idx := memindex.New(reference, k)
	al, err := sigalign.New(reference, idx, scenarioPenalties, scenarioMinLen, scenarioMaxPPL, sigalign.DefaultOptions)
	require.NoError(t, err)
	return al
}

func repeat(pattern string, n int) []byte {
	out := make([]byte, 0, len(pattern)*n)
	for i := 0; i < n; i++ {
		out = append(out, pattern...)
	}
	return out
}

// Scenario 1: query identical to a reference region reports a zero-penalty,
// clip-free hit spanning the whole query.
func TestAlignIdenticalSequenceIsZeroPenalty(t *testing.T) {
	seq := repeat("ACGTACGGTA", 10) // 100bp, comfortably above min_len=50.
	al := newScenarioAligner(t, seq)

	results, err := al.Align(seq)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	best := results[0]
	for _, r := range results[1:] {
		if r.Penalty < best.Penalty {
			best = r
		}
	}
	require.EqualValues(t, 0, best.Penalty)
	require.EqualValues(t, 0, best.QryStart)
	require.EqualValues(t, len(seq), best.QryEnd)
	require.EqualValues(t, len(seq), best.Matches)
}

// Scenario: a single mismatch in the middle of an otherwise-identical query
// costs exactly one mismatch penalty and is still reported, since the
// surrounding matches keep penalty/length well under max_ppl.
func TestAlignSingleMismatchCostsOneMismatchPenalty(t *testing.T) {
	reference := repeat("ACGTACGGTA", 10)
	query := make([]byte, len(reference))
	copy(query, reference)
	mid := len(query) / 2
	if query[mid] == 'A' {
		query[mid] = 'C'
	} else {
		query[mid] = 'A'
	}

	al := newScenarioAligner(t, reference)
	results, err := al.Align(query)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	minPenalty := results[0].Penalty
	for _, r := range results[1:] {
		if r.Penalty < minPenalty {
			minPenalty = r.Penalty
		}
	}
	require.EqualValues(t, scenarioPenalties.Mismatch, minPenalty)
}

// Scenario: a query with no 50bp-window overlap with the reference at all
// (completely unrelated sequence) finds no seed and reports no alignment,
// which spec.md §7 treats as a nil error with an empty result, not a
// failure.
func TestAlignUnrelatedSequenceFindsNothing(t *testing.T) {
	reference := repeat("ACGTACGGTA", 10)
	query := repeat("TTTTTTTTTT", 10)

	al := newScenarioAligner(t, reference)
	results, err := al.Align(query)
	require.NoError(t, err)
	require.Empty(t, results)
}

// A query shorter than min_len can never satisfy the cutoff and is rejected
// before any seed search runs.
func TestAlignQueryShorterThanMinLenFindsNothing(t *testing.T) {
	reference := repeat("ACGTACGGTA", 10)
	al := newScenarioAligner(t, reference)

	results, err := al.Align(reference[:10])
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestNewRejectsInvalidConfiguration(t *testing.T) {
	reference := repeat("ACGT", 20)
	idx := memindex.New(reference, 8)

	_, err := sigalign.New(reference, nil, scenarioPenalties, scenarioMinLen, scenarioMaxPPL, sigalign.DefaultOptions)
	require.Error(t, err)

	_, err = sigalign.New(reference, idx, sigalign.Penalties{Mismatch: 4, GapOpen: 6, GapExtend: 0}, scenarioMinLen, scenarioMaxPPL, sigalign.DefaultOptions)
	require.Error(t, err)

	_, err = sigalign.New(reference, idx, sigalign.Penalties{Mismatch: 0, GapOpen: 0, GapExtend: 2}, scenarioMinLen, scenarioMaxPPL, sigalign.DefaultOptions)
	require.Error(t, err)

	_, err = sigalign.New(reference, idx, scenarioPenalties, 0, scenarioMaxPPL, sigalign.DefaultOptions)
	require.Error(t, err)

	_, err = sigalign.New(reference, idx, scenarioPenalties, scenarioMinLen, 0, sigalign.DefaultOptions)
	require.Error(t, err)
}

// pseudoRandomSeq deterministically fills n bases from a fixed seed, used
// wherever a test needs a sequence unlikely to contain accidental repeats
// that would confuse a seed search (unlike the "ACGTACGGTA" repeat used
// above, which is deliberately self-similar).
func pseudoRandomSeq(seed uint64, n int) []byte {
	bases := [4]byte{'A', 'C', 'G', 'T'}
	out := make([]byte, n)
	state := seed + 1
	for i := range out {
		state = state*6364136223846793005 + 1442695040888963407
		out[i] = bases[(state>>33)&3]
	}
	return out
}

func flipBase(b byte) byte {
	if b == 'A' {
		return 'C'
	}
	return 'A'
}

// Scenario 3 (spec.md §8): a 60 nt substring with a 3 nt insertion at
// position 20 costs one gap-open plus 3 gap-extends and produces an `Ins 3`
// run — the gap/backtrace path `extend.go`'s indel transitions take.
func TestAlignInsertionExercisesGapPath(t *testing.T) {
	reference := pseudoRandomSeq(1, 150)
	sub := reference[40:100] // 60 nt substring
	insert := pseudoRandomSeq(99, 3)

	query := make([]byte, 0, len(sub)+len(insert))
	query = append(query, sub[:20]...)
	query = append(query, insert...)
	query = append(query, sub[20:]...)

	al := newScenarioAligner(t, reference)
	results, err := al.Align(query)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	best := results[0]
	for _, r := range results[1:] {
		if r.Penalty < best.Penalty {
			best = r
		}
	}
	require.EqualValues(t, scenarioPenalties.GapOpen+3*scenarioPenalties.GapExtend, best.Penalty)
	require.Contains(t, best.CIGAR(), "3I")
}

// Scenario 4 (spec.md §8): a query matching two disjoint reference loci
// equally well produces two results with distinct ref.start values.
func TestAlignTwoDisjointLociProduceDistinctResults(t *testing.T) {
	motif := pseudoRandomSeq(77, 60)
	filler1 := pseudoRandomSeq(2, 40)
	filler2 := pseudoRandomSeq(3, 40)
	filler3 := pseudoRandomSeq(4, 40)

	reference := make([]byte, 0, len(filler1)+2*len(motif)+len(filler2)+len(filler3))
	reference = append(reference, filler1...)
	firstStart := uint64(len(reference))
	reference = append(reference, motif...)
	reference = append(reference, filler2...)
	secondStart := uint64(len(reference))
	reference = append(reference, motif...)
	reference = append(reference, filler3...)

	al := newScenarioAligner(t, reference)
	results, err := al.Align(motif)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(results), 2)

	starts := make(map[uint64]bool, len(results))
	for _, r := range results {
		require.EqualValues(t, 0, r.Penalty)
		starts[r.RefStart] = true
	}
	require.True(t, starts[firstStart])
	require.True(t, starts[secondStart])
}

// Scenario 5 (spec.md §8): a query whose penalty/length is exactly 0.20
// against max_ppl=0.15 is dropped entirely — an empty result set, not an
// error.
func TestAlignPenaltyPerLengthAboveCutoffFindsNothing(t *testing.T) {
	reference := pseudoRandomSeq(11, 200)
	sub := reference[70:130] // 60 nt substring
	query := make([]byte, len(sub))
	copy(query, sub)
	// 3 mismatches over 60 bases at Mismatch=4 is penalty 12, ratio 12/60 = 0.20.
	for _, pos := range []int{10, 30, 50} {
		query[pos] = flipBase(query[pos])
	}

	al := newScenarioAligner(t, reference)
	results, err := al.Align(query)
	require.NoError(t, err)
	require.Empty(t, results)
}

// Scenario 6 (spec.md §8): two anchors whose extensions cross into the same
// alignment must collapse into one equivalence class — the union-find dedup
// in uniqueSurvivors, not two separate results.
func TestAlignTwoAnchorsCollapseToOneResult(t *testing.T) {
	reference := pseudoRandomSeq(21, 120)
	query := make([]byte, len(reference))
	copy(query, reference)
	query[60] = flipBase(query[60])

	al := newScenarioAligner(t, reference)
	results, err := al.Align(query)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.EqualValues(t, scenarioPenalties.Mismatch, results[0].Penalty)
	require.EqualValues(t, 0, results[0].QryStart)
	require.EqualValues(t, len(query), results[0].QryEnd)
}

// ReportOnlyMinimum trims the result set down to the tied-lowest-penalty
// equivalence classes (spec.md §4.6).
func TestAlignReportOnlyMinimumFiltersToLowestPenalty(t *testing.T) {
	reference := repeat("ACGTACGGTA", 10)
	k := int(sigalign.RecommendedPatternSize(scenarioPenalties, scenarioMinLen, scenarioMaxPPL))
	idx := memindex.New(reference, k)

	options := sigalign.DefaultOptions
	options.ReportOnlyMinimum = true
	al, err := sigalign.New(reference, idx, scenarioPenalties, scenarioMinLen, scenarioMaxPPL, options)
	require.NoError(t, err)

	results, err := al.Align(reference)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	for _, r := range results[1:] {
		require.Equal(t, results[0].Penalty, r.Penalty)
	}
}
