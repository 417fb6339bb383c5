package sigalign

import (
	"encoding/binary"
	"math/bits"
)

var beExtend = binary.BigEndian

// extendContext carries everything one drop-out wavefront extension call
// needs beyond the two byte slices being extended: the scoring scheme, the
// overall cutoff, the score ceiling this call must not exceed (spec.md
// §4.3's penalty_spare), and the penalty/length this side's anchor and its
// already-resolved sibling side contribute — used by the drop-out viability
// test to judge whether a diagonal could still finish inside budget without
// already breaking the cutoff ratio.
type extendContext struct {
	penalties   Penalties
	cutoff      Cutoff
	spare       uint32
	baseLength  uint64
	basePenalty uint64
	mode        Mode
}

// extender holds the pooled M/I/D components backing one drop-out
// extension. One extender is reused across every anchor side of a single
// Align call (hind pass, then fore pass), mirroring the teacher's Aligner
// holding its M/I/D components for the whole call rather than allocating
// fresh ones per pair.
type extender struct {
	M, I, D *component
}

func newExtender() *extender {
	return &extender{M: newComponent(), I: newComponent(), D: newComponent()}
}

func (e *extender) reset() {
	e.M.reset()
	e.I.reset()
	e.D.reset()
}

// release returns e's M/I/D components to the component pool. Call once
// per newExtender, when the extender is done serving an Align call — the
// teacher's Aligner is itself drawn from a pool per call and returns its
// components the same way.
func (e *extender) release() {
	e.reset()
	recycleComponent(e.M)
	recycleComponent(e.I)
	recycleComponent(e.D)
}

// dropoutResult is the successful outcome of a drop-out extension: the
// score reached, and the diagonal on which a sequence boundary was hit (or,
// in Local mode once the budget is exhausted, the best-progress diagonal).
type dropoutResult struct {
	score uint32
	k     int
}

// dropoutWFAlign runs the gap-affine WFA score recursion extending query
// against reference from (0,0), stopping when either:
//   - some diagonal's offset reaches a sequence boundary (success), or
//   - no diagonal can still finish within ctx.spare without the alignment
//     already failing ctx.cutoff (drop-out: spec.md §4.3 step 4), or
//   - the score would have to exceed ctx.spare to continue (hard budget
//     cap — the extender MUST NOT expand a wavefront at score > spare).
//
// In SemiGlobal mode (spec.md §4.3 step 3) only a boundary hit counts as
// success; exhausting ctx.spare without one is a failed extension. In Local
// mode (SPEC_FULL §4.7) the extender does not require reaching a boundary:
// if the budget runs out first, the best-progress diagonal reached so far
// is accepted as the stopping point instead, and whatever of the sequence
// is left unconsumed becomes a RefClip/QryClip residual at assembly time.
func (e *extender) dropoutWFAlign(query, reference []byte, ctx extendContext) (*dropoutResult, bool) {
	e.reset()
	lenQ, lenT := len(query), len(reference)
	if lenQ == 0 || lenT == 0 {
		return &dropoutResult{score: 0, k: 0}, true
	}

	var wfaType, score uint32
	if query[0] == reference[0] {
		wfaType, score = wfaMatch, 0
	} else {
		wfaType, score = wfaMismatch, ctx.penalties.Mismatch
	}
	e.M.Set(score, 0, 1, wfaType)

	for s := uint32(0); ; s++ {
		if e.M.HasScore(s) {
			e.extend(query, reference, s)
			if k, ok := e.checkSuccess(query, reference, s); ok {
				return &dropoutResult{score: s, k: k}, true
			}
			if !e.anyAlive(query, reference, s, ctx) {
				return nil, false
			}
		}
		if s >= ctx.spare {
			if ctx.mode == Local {
				if k, ok := e.bestDiagonal(query, reference, s); ok {
					return &dropoutResult{score: s, k: k}, true
				}
			}
			return nil, false
		}
		e.next(query, reference, s+1, ctx.penalties)
	}
}

// bestDiagonal picks the M-wavefront diagonal at score s with the most
// combined progress (h+v), breaking ties toward the smallest k for
// determinism. Used only by Local mode once the penalty budget is
// exhausted without any diagonal reaching a sequence boundary, as a
// best-effort stopping point in place of an outright failed extension.
func (e *extender) bestDiagonal(query, reference []byte, s uint32) (int, bool) {
	wf := e.M.waveFronts[s]
	if wf == nil {
		return 0, false
	}
	lenQ, lenT := len(query), len(reference)
	bestK, bestProgress := 0, -1
	found := false
	for k := wf.Lo; k <= wf.Hi; k++ {
		offset, _, ok := wf.Get(k)
		if !ok {
			continue
		}
		h := int(offset)
		v := h - k
		if h < 0 || v < 0 || h > lenT || v > lenQ {
			continue
		}
		progress := h + v
		if progress > bestProgress || (progress == bestProgress && k < bestK) {
			bestProgress, bestK, found = progress, k, true
		}
	}
	return bestK, found
}

// checkSuccess scans the M wavefront at score s for a diagonal whose offset
// has reached either sequence's boundary.
func (e *extender) checkSuccess(query, reference []byte, s uint32) (int, bool) {
	wf := e.M.waveFronts[s]
	if wf == nil {
		return 0, false
	}
	lenQ, lenT := len(query), len(reference)
	for k := wf.Lo; k <= wf.Hi; k++ {
		offset, _, ok := wf.Get(k)
		if !ok {
			continue
		}
		h := int(offset)
		v := h - k
		if h >= lenT || v >= lenQ {
			return k, true
		}
	}
	return 0, false
}

// anyAlive is the drop-out viability test: a diagonal survives if, even in
// the best case of zero further penalty (the rest of its run matches
// perfectly out to whichever boundary is farther away), the resulting
// (penalty, length) — combined with whatever this anchor's sibling side and
// own size already contribute via ctx.baseLength/basePenalty — would still
// satisfy the cutoff ratio. This can never falsely kill a diagonal that
// could still succeed within budget, since it assumes the most optimistic
// continuation; it only prunes diagonals that have already fallen behind
// cutoff's required rate regardless of what comes next.
func (e *extender) anyAlive(query, reference []byte, s uint32, ctx extendContext) bool {
	wf := e.M.waveFronts[s]
	if wf == nil {
		return false
	}
	lenQ, lenT := len(query), len(reference)
	for k := wf.Lo; k <= wf.Hi; k++ {
		offset, _, ok := wf.Get(k)
		if !ok {
			continue
		}
		h := int(offset)
		v := h - k
		if v < 0 || h < 0 {
			continue
		}
		residual := max(lenQ-v, lenT-h)
		if residual < 0 {
			residual = 0
		}
		bestLength := ctx.baseLength + uint64(max(h, v)) + uint64(residual)
		bestPenalty := ctx.basePenalty + uint64(s)
		if ctx.cutoff.satisfied(bestPenalty, bestLength) {
			return true
		}
	}
	return false
}

// extend is WF_EXTEND: greedily advances every diagonal of the M wavefront
// at score s through any run of matching bases, using an 8-byte-block XOR
// and leading-zero-count trick to skip long runs quickly before falling
// back to a byte-at-a-time compare for the tail.
func (e *extender) extend(query, reference []byte, s uint32) {
	wf := e.M.waveFronts[s]
	lo, hi := wf.Lo, wf.Hi
	lenQ, lenT := len(query), len(reference)

	for k := hi; k >= lo; k-- {
		offset, _, ok := wf.Get(k)
		if !ok {
			continue
		}
		h := int(offset)
		v := h - k
		if v < 0 || v >= lenQ || h >= lenT {
			continue
		}

		if v+8 <= lenQ && h+8 <= lenT {
			N := 0
			for {
				q8 := beExtend.Uint64(query[v : v+8])
				t8 := beExtend.Uint64(reference[h : h+8])
				n := bits.LeadingZeros64(q8^t8) >> 3
				v += n
				h += n
				N += n
				if n < 8 || v+8 >= lenQ || h+8 >= lenT {
					break
				}
			}
			if N > 0 {
				wf.Increase(k, uint32(N))
			}
			if v >= lenQ || h >= lenT {
				continue
			}
		}

		N := 0
		for v < lenQ && h < lenT && query[v] == reference[h] {
			v++
			h++
			N++
		}
		if N > 0 {
			wf.Increase(k, uint32(N))
		}
	}
}

// next is WF_NEXT: computes the M/I/D offsets for score s from the wavefronts
// at s-mismatch/s-gapOpen-gapExtend/s-gapExtend, breaking M offset ties
// mismatch > insertion > deletion (the M-layer source wins any tie it is
// part of, matching the teacher's tie-break order).
func (e *extender) next(query, reference []byte, s uint32, p Penalties) {
	M, I, D := e.M, e.I, e.D
	lenQ, lenT := len(query), len(reference)

	loMismatch, hiMismatch := M.KRange(s, p.Mismatch)
	loGapOpen, hiGapOpen := M.KRange(s, p.GapOpen+p.GapExtend)
	loInsert, hiInsert := I.KRange(s, p.GapExtend)
	loDelete, hiDelete := D.KRange(s, p.GapExtend)

	hi := min(lenT-1, max(hiMismatch, hiGapOpen, hiInsert, hiDelete)+1)
	lo := max(-(lenQ - 1), min(loMismatch, loGapOpen, loInsert, loDelete)-1)

	var v1, v2, Isk, Dsk uint32
	var fromM, fromI, fromD bool
	var updatedI, updatedD bool
	var wfaTypeI, wfaTypeD, wfaTypeM uint32

	for k := lo; k <= hi; k++ {
		updatedI, updatedD = false, false
		wfaTypeI, wfaTypeD, wfaTypeM = 0, 0, 0

		// insertion
		v1, _, fromM = M.GetAfterDiff(s, p.GapOpen+p.GapExtend, k-1)
		v2, _, fromI = I.GetAfterDiff(s, p.GapExtend, k-1)
		if fromM && int(v1) > lenT {
			fromM, v1 = false, 0
		}
		if fromI && int(v2) > lenT {
			fromI, v2 = false, 0
		}
		if fromM || fromI {
			Isk = max(v1, v2) + 1
			switch {
			case fromM && fromI:
				if v1 >= v2 {
					wfaTypeI = wfaInsertOpen
				} else {
					wfaTypeI = wfaInsertExt
				}
			case fromM:
				wfaTypeI = wfaInsertOpen
			default:
				wfaTypeI = wfaInsertExt
			}
			updatedI = true
			I.Set(s, k, Isk, wfaTypeI)
		} else {
			Isk = 0
		}

		// deletion
		v1, _, fromM = M.GetAfterDiff(s, p.GapOpen+p.GapExtend, k+1)
		v2, _, fromD = D.GetAfterDiff(s, p.GapExtend, k+1)
		if fromM && int(v1)-k > lenQ {
			fromM, v1 = false, 0
		}
		if fromD && int(v2)-k > lenQ {
			fromD, v2 = false, 0
		}
		if fromM || fromD {
			Dsk = max(v1, v2)
			switch {
			case fromM && fromD:
				if v1 >= v2 {
					wfaTypeD = wfaDeleteOpen
				} else {
					wfaTypeD = wfaDeleteExt
				}
			case fromM:
				wfaTypeD = wfaDeleteOpen
			default:
				wfaTypeD = wfaDeleteExt
			}
			updatedD = true
			D.Set(s, k, Dsk, wfaTypeD)
		} else {
			Dsk = 0
		}

		// mismatch, and the 3-way tie-break for M itself
		v1, _, fromM = M.GetAfterDiff(s, p.Mismatch, k)
		if fromM && (int(v1) > lenT || int(v1)-k > lenQ) {
			fromM, v1 = false, 0
		}
		Msk := max(Isk, Dsk, v1+1)
		if updatedI || updatedD || fromM {
			switch {
			case updatedI && updatedD && fromM:
				if Msk == v1+1 {
					wfaTypeM = wfaMismatch
				} else if Msk == Isk {
					wfaTypeM = wfaTypeI
				} else {
					wfaTypeM = wfaTypeD
				}
			case updatedI && updatedD:
				if Msk == Isk {
					wfaTypeM = wfaTypeI
				} else {
					wfaTypeM = wfaTypeD
				}
			case updatedI && fromM:
				if Msk == v1+1 {
					wfaTypeM = wfaMismatch
				} else {
					wfaTypeM = wfaTypeI
				}
			case updatedI:
				wfaTypeM = wfaTypeI
			case updatedD && fromM:
				if Msk == v1+1 {
					wfaTypeM = wfaMismatch
				} else {
					wfaTypeM = wfaTypeD
				}
			case updatedD:
				wfaTypeM = wfaTypeD
			default:
				wfaTypeM = wfaMismatch
			}
			M.Set(s, k, Msk, wfaTypeM)
		}
	}
}

// checkpointSpec is a candidate cell another anchor's side would need this
// backtrace to cross in order for the two anchors to be joinable (spec.md
// §4.4). kOffset is the diagonal (ref_gap - qry_gap); frTarget is the
// reference-axis offset on that diagonal.
type checkpointSpec struct {
	anchorIdx int
	kOffset   int
	frTarget  uint32
}

// backtrace walks the wavefronts built by a prior dropoutWFAlign call from
// (s, k) back to the origin (0,0), emitting one op per aligned base or
// indel step — matches are not run-length merged here, so that checkpoint
// crossings (spec.md §4.4) can be tested at every cell; the result
// assembler run-length-encodes the final op list. Ops are returned in the
// order they were discovered walking backward from the far point toward the
// anchor; callers reverse this for a hind-side pass and use it as-is for a
// fore-side pass, per spec.md §4.5.
//
// The returned map's values are reverseIndex: the count of ops already
// emitted at the moment the crossing cell was passed, i.e. the length of
// the suffix of the final (hind, reversed) op slice, or equivalently the
// length of the prefix of the final (fore, unreversed) op slice — spec.md
// §4.6 slices a Ref side's borrowed ops using exactly that convention.
func (e *extender) backtrace(s uint32, k int, p Penalties, checkpoints []checkpointSpec) ([]op, map[int]int) {
	byK := make(map[int][]checkpointSpec, len(checkpoints))
	for _, c := range checkpoints {
		byK[c.kOffset] = append(byK[c.kOffset], c)
	}
	crossings := make(map[int]int)
	var ops []op

	mark := func(curK, h int) {
		for _, c := range byK[curK] {
			if int(c.frTarget) == h {
				crossings[c.anchorIdx] = len(ops)
			}
		}
	}
	emitMatches := func(curK, fromH, toH int) {
		for h := fromH; h > toH; h-- {
			mark(curK, h)
			ops = append(ops, opMatch)
		}
	}

	M, I, D := e.M, e.I, e.D

	offset, wfaType, ok := M.Get(s, k)
	if !ok {
		return ops, crossings
	}
	h := int(offset)
	v := h - k

	var M0 *component
	previousFromM := true

	for v > 0 && h > 0 {
		sMismatch := s - p.Mismatch
		sGapOpen := s - p.GapOpen - p.GapExtend
		sGapExt := s - p.GapExtend

		var offset0 uint32
		var fromItself bool
		var v1, v2, Isk, Dsk uint32
		var fromM, fromI, fromD, fromMI, fromMD bool

		switch wfaType {
		case wfaInsertExt:
			v1, _, fromM = M.Get(sGapOpen, k-1)
			v2, _, fromI = I.Get(sGapExt, k-1)
			if fromM || fromI {
				offset0 = max(v1, v2) + 1
			} else {
				fromItself = true
			}
			M0 = I
		case wfaDeleteExt:
			v1, _, fromM = M.Get(sGapOpen, k+1)
			v2, _, fromD = D.Get(sGapExt, k+1)
			if fromM || fromD {
				offset0 = max(v1, v2)
			} else {
				fromItself = true
			}
			M0 = D
		default:
			v1, _, fromM = M.Get(sGapOpen, k-1)
			v2, _, fromI = I.Get(sGapExt, k-1)
			if fromM || fromI {
				fromMI = true
				Isk = max(v1, v2) + 1
			}

			v1, _, fromM = M.Get(sGapOpen, k+1)
			v2, _, fromD = D.Get(sGapExt, k+1)
			if fromM || fromD {
				fromMD = true
				Dsk = max(v1, v2)
			}

			v1, _, fromM = M.Get(sMismatch, k)
			if fromMI || fromMD || fromM {
				offset0 = max(Isk, Dsk, v1+1)
			} else {
				fromItself = true
			}
			M0 = M
		}
		if fromItself || offset0 == 0 {
			break
		}

		h0 := int(offset0)

		if previousFromM {
			if h > h0 {
				emitMatches(k, h, h0)
			}
			h = h0
			v = h - k
			if h <= 0 || v <= 0 {
				break
			}
		}

		mark(k, h)
		ops = append(ops, opFromWfaType(wfaType))

		previousFromM = true
		switch wfaType {
		case wfaMismatch:
			s = sMismatch
			h--
		case wfaInsertOpen:
			s = sGapOpen
			k--
			h--
		case wfaInsertExt:
			s = sGapExt
			k--
			h--
			previousFromM = false
		case wfaDeleteOpen:
			s = sGapOpen
			k++
		case wfaDeleteExt:
			s = sGapExt
			k++
			previousFromM = false
		default:
			return ops, crossings
		}
		v = h - k

		offset, ok = M0.GetRaw(s, k)
		if !ok {
			return ops, crossings
		}
		wfaType = offset & wfaTypeMask
	}

	// The remaining stretch, down to the true origin (0,0): everything
	// from (h,v) inward is a match, plus the one unit this cell's own
	// marker represents (wfaMatch if the very first base matched,
	// wfaMismatch otherwise — dropoutWFAlign never pre-seeds any other
	// starting cell, so this is always where the walk bottoms out).
	if h > 0 && v > 0 {
		last := min(h, v) - 1
		if last > 0 {
			emitMatches(k, h, h-last)
			h -= last
			v -= last
		}
		mark(k, h)
		ops = append(ops, opFromWfaType(wfaType))
	}

	return ops, crossings
}
