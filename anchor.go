package sigalign

// estAlign is the EMP (Estimated Minimum Penalty) lower bound computed for
// one side (fore = upstream of the anchor, hind = downstream) before that
// side has actually been extended, grounded on anchor.rs's EstAlign /
// estimate_preset.
type estAlign struct {
	penalty uint64
	length  uint64
}

// sideKind tags which shape an exactSide takes, mirroring anchor.rs's
// ExactAlign::{Own,Ref}.
type sideKind uint8

const (
	sideOwn sideKind = iota
	sideRef
)

// exactSide is one side of an anchor once its extension has actually run.
// A sideOwn side holds its own flat op list and penalty directly. A
// sideRef side crossed into another anchor's territory during backtrace
// and borrows a slice of that anchor's own (sideOwn) ops instead of storing
// a duplicate copy — reverseIndex is a prefix length (for a fore side) or
// suffix length (for a hind side) into the other anchor's complementary
// op list, per spec.md §4.6's Ref(j, rev_idx, p) splicing rule.
type exactSide struct {
	kind sideKind

	ops     []op
	penalty uint64

	otherAnchor  int
	reverseIndex int
	refPenalty   uint64
}

// lengthAndPenalty returns this side's (length, penalty), resolving through
// a sideRef indirection one level (Ref never chains to another Ref, by
// construction — see anchorGroup.resolveSide).
func (s *exactSide) lengthAndPenalty() (uint64, uint64) {
	if s.kind == sideOwn {
		return uint64(len(s.ops)), s.penalty
	}
	return uint64(s.reverseIndex), s.refPenalty
}

type anchorState uint8

const (
	statePreset anchorState = iota
	stateEstimated
	stateExact
	stateDropped
)

// checkpointRef is a candidate join point recorded on an anchor's fore or
// hind side: if that side's backtrace ever passes through the cell
// (kOffset, frTarget), the two anchors are joinable and anchorIdx's
// complementary side can be borrowed instead of independently extended.
type checkpointRef struct {
	anchorIdx int
	kOffset   int
	frTarget  uint32
}

// Anchor is one seed-derived alignment candidate, grown from an exact
// k-mer match at (refPos, qryPos) of length size. Every cross-reference to
// another Anchor is an int index into anchorGroup.anchors — never a
// pointer — so the whole arena can be grown, connected and deduplicated
// without cyclic ownership, exactly as original_source's Vec<Anchor> +
// usize indices (spec.md §9).
type Anchor struct {
	refPos, qryPos uint64
	size           uint64

	state anchorState

	estFore, estHind *estAlign

	exactFore, exactHind *exactSide

	checkpointsFore []checkpointRef
	checkpointsHind []checkpointRef

	// incomingFore/incomingHind are crossing hints left by OTHER anchors'
	// already-resolved sideOwn walks that swept through this anchor's own
	// fore/hind territory — consulted before running an independent
	// extension, so the shared region is computed exactly once.
	incomingFore map[int]int
	incomingHind map[int]int

	connected map[int]struct{}
}

func newAnchor(refPos, qryPos, size uint64) Anchor {
	return Anchor{
		refPos:    refPos,
		qryPos:    qryPos,
		size:      size,
		state:     statePreset,
		connected: map[int]struct{}{},
	}
}
