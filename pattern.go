package sigalign

import "math"

// planPatternSize picks the largest k-mer pattern size that still lets the
// cutoff be satisfiable for every pattern position, by walking n = 1, 2, ...
// until the per-n upper and lower bounds cross. Grounded on
// original_source/sigalign/src/aligner/alignment_condition.rs's
// max_pattern_size_satisfying_cutoff; kept in floating point like the
// original since it runs once per Aligner construction, not on the
// score-checking hot path (unlike Cutoff.satisfied, which must stay
// fixed-point).
func planPatternSize(minLen uint64, minPen MinPenaltyForPattern, maxPPLScaled uint64) uint64 {
	minLenF := float64(minLen)
	maxPPLF := float64(maxPPLScaled)
	oddEven := float64(minPen.Odd + minPen.Even)

	for n := uint64(1); ; n++ {
		nf := float64(n)

		upperBound := math.Ceil((minLenF+4)/(2*nf) - 2)
		lowerBound := math.Ceil((minLenF+4)/(2*nf+2) - 2)

		kCutoff := math.Ceil((PrecisionScale*nf*oddEven+4*maxPPLF)/(2*(nf+1)*maxPPLF)) - 2
		k := math.Min(upperBound, kCutoff)

		if k >= lowerBound {
			if k < 1 {
				k = 1
			}
			return uint64(k)
		}
	}
}
