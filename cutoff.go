package sigalign

import "math"

// PrecisionScale is the fixed-point scale applied to the maximum
// penalty-per-length ratio so the drop-out test and result filtering stay
// in integer arithmetic (the planner converts it to floating point). spec.md §8's
// scenarios use 10000, matching
// original_source/sigalign/src/aligner/alignment_condition.rs's Cutoff::new.
const PrecisionScale = 10000

// Cutoff bounds what counts as an acceptable alignment: it must cover at
// least MinLen bases and its penalty-per-length ratio must not exceed the
// value MaxPPLScaled encodes.
//
// MaxPPLScaled is round(maxPPL * PrecisionScale), already divided by the
// same gcd the penalties were reduced by (Cutoff.reducedBy), so that it can
// be compared directly against penalties expressed in reduced units:
//
//	penalty * PrecisionScale <= MaxPPLScaled * length
type Cutoff struct {
	MinLen       uint64
	MaxPPLScaled uint64
}

// newCutoff builds a Cutoff from the user-facing parameters, not yet reduced
// by any gcd (call reducedBy once the Penalties' gcd is known).
func newCutoff(minLen uint64, maxPPL float64) Cutoff {
	return Cutoff{
		MinLen:       minLen,
		MaxPPLScaled: uint64(math.Round(maxPPL * PrecisionScale)),
	}
}

// reducedBy divides MaxPPLScaled by g, mirroring Penalties.dividedByGCD so
// that ratio comparisons against reduced-unit penalties remain correct (the
// ratio penalty/length is scale-invariant in the numerator's units, so its
// fixed-point threshold must be scaled down by the same g).
func (c Cutoff) reducedBy(g uint32) Cutoff {
	return Cutoff{MinLen: c.MinLen, MaxPPLScaled: c.MaxPPLScaled / uint64(g)}
}

// satisfied reports whether (penalty, length) — both in reduced units —
// meets this cutoff: length at least MinLen, and penalty/length at most the
// ratio MaxPPLScaled/PrecisionScale encodes, checked by cross-multiplication
// to avoid floating point.
func (c Cutoff) satisfied(penalty, length uint64) bool {
	if length < c.MinLen {
		return false
	}
	return penalty*PrecisionScale <= c.MaxPPLScaled*length
}
