package sigalign

// Penalties holds the gap-affine scoring scheme. Match costs 0.
type Penalties struct {
	Mismatch  uint32
	GapOpen   uint32
	GapExtend uint32
}

// DefaultPenalties mirrors the values used throughout the WFA literature and
// the teacher's own DefaultPenalties.
var DefaultPenalties = Penalties{
	Mismatch:  4,
	GapOpen:   6,
	GapExtend: 2,
}

func gcdUint32(a, b uint32) uint32 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// gcd returns the greatest common divisor of the three penalties. New
// rejects a gap-extend penalty of 0 before calling this;
// RecommendedPatternSize calls it without that check. Both treat a gcd of 0
// (all three penalties zero) as 1.
func (p Penalties) gcd() uint32 {
	return gcdUint32(gcdUint32(p.Mismatch, p.GapOpen), p.GapExtend)
}

// dividedByGCD returns the penalties reduced by their own gcd. Reduced
// penalties are what the extender and planner operate on internally; the
// result assembler multiplies scores back up by g before reporting them.
func (p Penalties) dividedByGCD(g uint32) Penalties {
	return Penalties{
		Mismatch:  p.Mismatch / g,
		GapOpen:   p.GapOpen / g,
		GapExtend: p.GapExtend / g,
	}
}

// MinPenaltyForPattern is the minimum penalty a pattern of the planned size
// can possibly incur, split by parity of its position in the alternating
// odd/even block schedule the EMP estimator walks (spec.md §3, §4.2).
type MinPenaltyForPattern struct {
	Odd  uint32
	Even uint32
}

// newMinPenaltyForPattern derives Odd/Even from the (already gcd-reduced)
// penalties, following the exact case split in
// original_source/sigalign/src/aligner/alignment_condition.rs
// (MinPenaltyForPattern::new).
func newMinPenaltyForPattern(p Penalties) MinPenaltyForPattern {
	var odd, even uint32
	if p.Mismatch <= p.GapOpen+p.GapExtend {
		odd = p.Mismatch
		if 2*p.Mismatch <= p.GapOpen+2*p.GapExtend {
			even = p.Mismatch
		} else {
			even = p.GapOpen + 2*p.GapExtend - p.Mismatch
		}
	} else {
		odd = p.GapOpen + p.GapExtend
		even = p.GapExtend
	}
	return MinPenaltyForPattern{Odd: odd, Even: even}
}
