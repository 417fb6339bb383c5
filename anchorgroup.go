package sigalign

import "sort"

// seedHit is one exact pattern-sized match reported by a Locator: the
// pattern starting at qryPos in the query occurs at refPos in the
// reference.
type seedHit struct {
	qryPos, refPos uint64
}

// anchorGroup builds and resolves the anchor graph for one query against
// one reference, following original_source's AnchorGroup::new /
// ::alignment / ::get_result (anchor.rs).
type anchorGroup struct {
	query, reference []byte

	penalties   Penalties
	cutoff      Cutoff
	minPen      MinPenaltyForPattern
	patternSize uint64
	gcdFactor   uint32
	mode        Mode

	anchors []Anchor

	// existence[i] records whether any seed hit was found at query block i
	// (0-based, stride patternSize), regardless of whether it ended up
	// merged into a larger anchor — spec.md §4.2's anchor_existence.
	existence []bool
}

func newAnchorGroup(query, reference []byte, seeds []seedHit, penalties Penalties, cutoff Cutoff, minPen MinPenaltyForPattern, patternSize uint64, gcdFactor uint32, mode Mode) *anchorGroup {
	ag := &anchorGroup{
		query:       query,
		reference:   reference,
		penalties:   penalties,
		cutoff:      cutoff,
		minPen:      minPen,
		patternSize: patternSize,
		gcdFactor:   gcdFactor,
		mode:        mode,
	}
	ag.buildAnchors(seeds)
	ag.estimate()
	ag.createCheckpoints()
	return ag
}

// buildAnchors merges consecutive same-diagonal pattern hits ("impeccable
// extension", spec.md §4.2) into a single larger anchor instead of keeping
// one Anchor per pattern-sized seed, and records which query blocks had any
// hit at all in ag.existence for later EMP computation.
func (ag *anchorGroup) buildAnchors(seeds []seedHit) {
	nBlocks := uint64(len(ag.query)) / ag.patternSize
	ag.existence = make([]bool, nBlocks)
	for _, h := range seeds {
		block := h.qryPos / ag.patternSize
		if block < nBlocks {
			ag.existence[block] = true
		}
	}

	sort.Slice(seeds, func(i, j int) bool {
		if seeds[i].qryPos != seeds[j].qryPos {
			return seeds[i].qryPos < seeds[j].qryPos
		}
		return seeds[i].refPos < seeds[j].refPos
	})

	type key struct {
		qryPos int64
		diag   int64
	}
	index := make(map[key]int, len(seeds))
	diagOf := func(h seedHit) int64 { return int64(h.refPos) - int64(h.qryPos) }
	for i, h := range seeds {
		index[key{int64(h.qryPos), diagOf(h)}] = i
	}

	used := make([]bool, len(seeds))
	for i, h := range seeds {
		if used[i] {
			continue
		}
		used[i] = true
		size := ag.patternSize
		qp, rp := h.qryPos, h.refPos
		for {
			nq := qp + ag.patternSize
			nr := rp + ag.patternSize
			j, ok := index[key{int64(nq), diagOf(seedHit{qryPos: nq, refPos: nr})}]
			if !ok || used[j] {
				break
			}
			used[j] = true
			size += ag.patternSize
			qp, rp = nq, nr
		}
		ag.anchors = append(ag.anchors, newAnchor(h.refPos, h.qryPos, size))
	}
}

// estimateSide computes the EMP lower bound over blockLen bases on one side
// of an anchor (spec.md §4.2): walk q = blockLen/patternSize existence
// flags outward from the anchor (reversed for the fore side), counting
// consecutive missing blocks alternating odd/even — any present flag
// resets the alternation back to odd.
func estimateSide(blockLen, patternSize uint64, minPen MinPenaltyForPattern, existence []bool, fromIdx int64, dir int64) estAlign {
	if patternSize == 0 || blockLen == 0 {
		return estAlign{penalty: 0, length: blockLen}
	}
	q := blockLen / patternSize
	var oddCount, evenCount, runPos uint64
	idx := fromIdx
	for step := uint64(0); step < q; step++ {
		present := idx < 0 || idx >= int64(len(existence)) || existence[idx]
		if present {
			runPos = 0
		} else {
			runPos++
			if runPos%2 == 1 {
				oddCount++
			} else {
				evenCount++
			}
		}
		idx += dir
	}
	return estAlign{
		penalty: oddCount*uint64(minPen.Odd) + evenCount*uint64(minPen.Even),
		length:  blockLen + oddCount + evenCount,
	}
}

// estimate computes each anchor's fore/hind EMP and drops anchors whose
// best possible total already violates the cutoff.
func (ag *anchorGroup) estimate() {
	lenQ, lenR := uint64(len(ag.query)), uint64(len(ag.reference))
	for i := range ag.anchors {
		a := &ag.anchors[i]
		startBlock := int64(a.qryPos / ag.patternSize)
		blockCount := int64(a.size / ag.patternSize)

		foreAvail := min(a.qryPos, a.refPos)
		hindAvail := min(lenQ-a.qryPos-a.size, lenR-a.refPos-a.size)

		foreEst := estimateSide(foreAvail, ag.patternSize, ag.minPen, ag.existence, startBlock-1, -1)
		hindEst := estimateSide(hindAvail, ag.patternSize, ag.minPen, ag.existence, startBlock+blockCount, 1)

		totalPenalty := foreEst.penalty + hindEst.penalty
		totalLength := a.size + foreEst.length + hindEst.length

		if !ag.cutoff.satisfied(totalPenalty, totalLength) {
			a.state = stateDropped
			continue
		}
		a.state = stateEstimated
		a.estFore = &foreEst
		a.estHind = &hindEst
	}
}

// gapEstimate is the indel penalty of bridging a qryGap/refGap mismatch
// between two anchors (spec.md §4.2): the length difference pays
// gap-open/extend once; equal gaps cost nothing.
func (ag *anchorGroup) gapEstimate(gapQ, gapR uint64) uint64 {
	if gapQ == gapR {
		return 0
	}
	diff := gapQ - gapR
	if gapR > gapQ {
		diff = gapR - gapQ
	}
	return uint64(ag.penalties.GapOpen) + diff*uint64(ag.penalties.GapExtend)
}

// canBeConnected implements spec.md §4.2's joined-feasibility inequality
// exactly: ai's fore estimate plus aj's hind estimate plus the two anchors'
// own sizes plus the wider of the two gaps, checked against the cutoff.
func (ag *anchorGroup) canBeConnected(ai, aj *Anchor) bool {
	if aj.qryPos < ai.qryPos+ai.size || aj.refPos < ai.refPos+ai.size {
		return false
	}
	gapQ := aj.qryPos - (ai.qryPos + ai.size)
	gapR := aj.refPos - (ai.refPos + ai.size)

	totalPenalty := ag.gapEstimate(gapQ, gapR)
	totalLength := ai.size + aj.size + max(gapQ, gapR)
	if ai.estFore != nil {
		totalPenalty += ai.estFore.penalty
		totalLength += ai.estFore.length
	}
	if aj.estHind != nil {
		totalPenalty += aj.estHind.penalty
		totalLength += aj.estHind.length
	}
	return ag.cutoff.satisfied(totalPenalty, totalLength)
}

// createCheckpoints records, for every pair of surviving anchors that
// could plausibly join, the (kOffset, frTarget) cell at which ai's hind
// walk (equivalently aj's fore walk, since the gap region is symmetric)
// would cross into the other anchor's territory.
func (ag *anchorGroup) createCheckpoints() {
	n := len(ag.anchors)
	for i := 0; i < n; i++ {
		ai := &ag.anchors[i]
		if ai.state == stateDropped {
			continue
		}
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			aj := &ag.anchors[j]
			if aj.state == stateDropped {
				continue
			}
			if aj.qryPos < ai.qryPos+ai.size || aj.refPos < ai.refPos+ai.size {
				continue
			}
			if !ag.canBeConnected(ai, aj) {
				continue
			}
			gapQ := aj.qryPos - (ai.qryPos + ai.size)
			gapR := aj.refPos - (ai.refPos + ai.size)
			cp := checkpointRef{anchorIdx: j, kOffset: int(gapR) - int(gapQ), frTarget: uint32(gapR)}
			ai.checkpointsHind = append(ai.checkpointsHind, cp)
			aj.checkpointsFore = append(aj.checkpointsFore, checkpointRef{anchorIdx: i, kOffset: int(gapR) - int(gapQ), frTarget: uint32(gapR)})
		}
	}
}

func specsFor(cps []checkpointRef) []checkpointSpec {
	if len(cps) == 0 {
		return nil
	}
	out := make([]checkpointSpec, len(cps))
	for i, c := range cps {
		out[i] = checkpointSpec{anchorIdx: c.anchorIdx, kOffset: c.kOffset, frTarget: c.frTarget}
	}
	return out
}

// spareFor is the largest additional penalty this side's extension can
// spend while the best-case total (spec.md §4.3's penalty_spare: baseLength
// plus this side's remaining = min(ref_remaining, qry_remaining), at zero
// further penalty) still satisfies the cutoff.
func (ag *anchorGroup) spareFor(remaining, basePenalty, baseLength uint64) uint32 {
	lmax := baseLength + remaining
	allowed := (ag.cutoff.MaxPPLScaled * lmax) / PrecisionScale
	if allowed <= basePenalty {
		return 0
	}
	spare := allowed - basePenalty
	const maxSpare = uint64(^uint32(0))
	if spare > maxSpare {
		spare = maxSpare
	}
	return uint32(spare)
}

func reverseBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		out[len(b)-1-i] = c
	}
	return out
}

type incomingRef struct {
	idx int
	rev int
}

func bestIncoming(m map[int]int) (incomingRef, bool) {
	best := incomingRef{idx: -1}
	for other, rev := range m {
		if best.idx == -1 || rev < best.rev {
			best = incomingRef{idx: other, rev: rev}
		}
	}
	return best, best.idx != -1
}

// resolveSide decides whether a freshly computed side should be stored as
// sideOwn or as a sideRef into another anchor's already-resolved
// complementary side, per spec.md §4.6. A Ref is only created against a
// complementary side that is itself sideOwn, so Refs never chain.
func (ag *anchorGroup) resolveSide(ops []op, penalty uint64, crossings map[int]int, isHind bool) *exactSide {
	best := -1
	bestRev := -1
	for other, rev := range crossings {
		oa := &ag.anchors[other]
		var complementary *exactSide
		if isHind {
			complementary = oa.exactFore
		} else {
			complementary = oa.exactHind
		}
		if complementary == nil || complementary.kind != sideOwn {
			continue
		}
		if best == -1 || rev < bestRev {
			best, bestRev = other, rev
		}
	}
	if best == -1 {
		return &exactSide{kind: sideOwn, ops: ops, penalty: penalty}
	}
	oa := &ag.anchors[best]
	var complementary *exactSide
	if isHind {
		complementary = oa.exactFore
	} else {
		complementary = oa.exactHind
	}
	total := len(complementary.ops)
	if bestRev > total {
		bestRev = total
	}
	refPenalty := uint64(0)
	if total > 0 {
		refPenalty = complementary.penalty * uint64(bestRev) / uint64(total)
	}
	return &exactSide{kind: sideRef, otherAnchor: best, reverseIndex: bestRev, refPenalty: refPenalty}
}

func (ag *anchorGroup) extendHind(ext *extender, i int) {
	a := &ag.anchors[i]
	if a.state == stateDropped || a.exactHind != nil {
		return
	}
	if best, ok := bestIncoming(a.incomingHind); ok {
		other := &ag.anchors[best.idx]
		total := len(other.exactFore.ops)
		n := best.rev
		if n > total {
			n = total
		}
		refPenalty := uint64(0)
		if total > 0 {
			refPenalty = other.exactFore.penalty * uint64(n) / uint64(total)
		}
		a.exactHind = &exactSide{kind: sideRef, otherAnchor: best.idx, reverseIndex: n, refPenalty: refPenalty}
		return
	}

	lenQ, lenR := uint64(len(ag.query)), uint64(len(ag.reference))
	qSlice := ag.query[a.qryPos+a.size:]
	rSlice := ag.reference[a.refPos+a.size:]
	remaining := min(lenQ-a.qryPos-a.size, lenR-a.refPos-a.size)

	baseLength := a.size
	basePenalty := uint64(0)
	if a.estFore != nil {
		baseLength += a.estFore.length
		basePenalty += a.estFore.penalty
	}
	spare := ag.spareFor(remaining, basePenalty, baseLength)

	ctx := extendContext{penalties: ag.penalties, cutoff: ag.cutoff, spare: spare, baseLength: baseLength, basePenalty: basePenalty, mode: ag.mode}
	res, ok := ext.dropoutWFAlign(qSlice, rSlice, ctx)
	if !ok {
		a.state = stateDropped
		return
	}
	ops, crossings := ext.backtrace(res.score, res.k, ag.penalties, specsFor(a.checkpointsHind))
	a.exactHind = ag.resolveSide(ops, uint64(res.score), crossings, true)

	if a.exactHind.kind == sideOwn {
		for other, rev := range crossings {
			a.connected[other] = struct{}{}
			ag.anchors[other].connected[i] = struct{}{}
			if ag.anchors[other].incomingFore == nil {
				ag.anchors[other].incomingFore = map[int]int{}
			}
			ag.anchors[other].incomingFore[i] = rev
		}
	} else {
		for other := range crossings {
			a.connected[other] = struct{}{}
			ag.anchors[other].connected[i] = struct{}{}
		}
	}
}

func (ag *anchorGroup) extendFore(ext *extender, i int) {
	a := &ag.anchors[i]
	if a.state == stateDropped || a.exactFore != nil {
		return
	}
	if best, ok := bestIncoming(a.incomingFore); ok {
		other := &ag.anchors[best.idx]
		total := len(other.exactHind.ops)
		n := best.rev
		if n > total {
			n = total
		}
		refPenalty := uint64(0)
		if total > 0 {
			refPenalty = other.exactHind.penalty * uint64(n) / uint64(total)
		}
		a.exactFore = &exactSide{kind: sideRef, otherAnchor: best.idx, reverseIndex: n, refPenalty: refPenalty}
		return
	}

	qSlice := reverseBytes(ag.query[:a.qryPos])
	rSlice := reverseBytes(ag.reference[:a.refPos])
	remaining := min(a.qryPos, a.refPos)

	baseLength := a.size
	basePenalty := uint64(0)
	if a.exactHind != nil {
		l, p := a.exactHind.lengthAndPenalty()
		baseLength += l
		basePenalty += p
	} else if a.estHind != nil {
		baseLength += a.estHind.length
		basePenalty += a.estHind.penalty
	}
	spare := ag.spareFor(remaining, basePenalty, baseLength)

	ctx := extendContext{penalties: ag.penalties, cutoff: ag.cutoff, spare: spare, baseLength: baseLength, basePenalty: basePenalty, mode: ag.mode}
	res, ok := ext.dropoutWFAlign(qSlice, rSlice, ctx)
	if !ok {
		a.state = stateDropped
		return
	}
	ops, crossings := ext.backtrace(res.score, res.k, ag.penalties, specsFor(a.checkpointsFore))
	a.exactFore = ag.resolveSide(ops, uint64(res.score), crossings, false)

	if a.exactFore.kind == sideOwn {
		for other, rev := range crossings {
			a.connected[other] = struct{}{}
			ag.anchors[other].connected[i] = struct{}{}
			if ag.anchors[other].incomingHind == nil {
				ag.anchors[other].incomingHind = map[int]int{}
			}
			ag.anchors[other].incomingHind[i] = rev
		}
	} else {
		for other := range crossings {
			a.connected[other] = struct{}{}
			ag.anchors[other].connected[i] = struct{}{}
		}
	}
}

// alignment drives the two-pass extension: every surviving anchor's hind
// side is resolved in ascending position order first, then every fore side
// in descending order, so a fore pass can always borrow an already-settled
// hind side instead of re-walking shared territory (spec.md §4.3/§4.6).
func (ag *anchorGroup) alignment(ext *extender) {
	order := make([]int, 0, len(ag.anchors))
	for i := range ag.anchors {
		if ag.anchors[i].state != stateDropped {
			order = append(order, i)
		}
	}
	sort.Slice(order, func(a, b int) bool { return ag.anchors[order[a]].qryPos < ag.anchors[order[b]].qryPos })

	for _, i := range order {
		ag.extendHind(ext, i)
	}
	for idx := len(order) - 1; idx >= 0; idx-- {
		ag.extendFore(ext, order[idx])
	}
}

type resultCandidate struct {
	anchorIdx int
	penalty   uint64
	length    uint64
}

func (ag *anchorGroup) evaluateExact(i int) *resultCandidate {
	a := &ag.anchors[i]
	if a.state == stateDropped || a.exactFore == nil || a.exactHind == nil {
		return nil
	}
	foreLen, forePen := a.exactFore.lengthAndPenalty()
	hindLen, hindPen := a.exactHind.lengthAndPenalty()
	totalPen := forePen + hindPen
	totalLen := a.size + foreLen + hindLen
	if !ag.cutoff.satisfied(totalPen, totalLen) {
		return nil
	}
	a.state = stateExact
	return &resultCandidate{anchorIdx: i, penalty: totalPen, length: totalLen}
}

// uniqueSurvivors collapses connected anchors into equivalence classes
// (spec.md §4.6's dedup invariant) and returns one representative anchor
// index per class — the lowest-penalty member — sorted for determinism.
func (ag *anchorGroup) uniqueSurvivors() []int {
	n := len(ag.anchors)
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}
	for i := range ag.anchors {
		for j := range ag.anchors[i].connected {
			union(i, j)
		}
	}

	bestOf := make(map[int]resultCandidate)
	for i := range ag.anchors {
		cand := ag.evaluateExact(i)
		if cand == nil {
			continue
		}
		r := find(i)
		if cur, ok := bestOf[r]; !ok || cand.penalty < cur.penalty {
			bestOf[r] = *cand
		}
	}

	reps := make([]int, 0, len(bestOf))
	for _, cand := range bestOf {
		reps = append(reps, cand.anchorIdx)
	}
	sort.Ints(reps)
	return reps
}

// residualClip picks the single clip op for one side of an alignment from
// its two axes' residual (unconsumed) lengths, per spec.md §4.6 step 3: the
// larger residual wins, sized as the difference between the two. Equal
// residuals give a zero-length clip, so no clip run is emitted; residue
// common to both axes is not represented by any clip op.
func residualClip(refResidual, qryResidual uint64) (op, uint64) {
	if refResidual >= qryResidual {
		return opRefClip, refResidual - qryResidual
	}
	return opQryClip, qryResidual - refResidual
}

func consumedLengths(ops []op) (refLen, qryLen uint64) {
	for _, o := range ops {
		switch o {
		case opMatch, opSubst:
			refLen++
			qryLen++
		case opIns:
			qryLen++
		case opDel:
			refLen++
		}
	}
	return
}

func (ag *anchorGroup) resolveOps(s *exactSide, thisIsHind bool) []op {
	if s == nil {
		return nil
	}
	if s.kind == sideOwn {
		return s.ops
	}
	other := &ag.anchors[s.otherAnchor]
	var src []op
	if thisIsHind {
		src = other.exactFore.ops
	} else {
		src = other.exactHind.ops
	}
	n := s.reverseIndex
	if n > len(src) {
		n = len(src)
	}
	if thisIsHind {
		return src[len(src)-n:]
	}
	return src[:n]
}

// assemble splices an anchor's fore ops, its own exact-match core, and its
// hind ops into one flat op list plus the leading/trailing clip runs
// (spec.md §4.5/§4.6), then hands it to newAlignmentResultFromOps for
// run-length encoding.
func (ag *anchorGroup) assemble(i int) *AlignmentResult {
	a := &ag.anchors[i]
	foreOps := ag.resolveOps(a.exactFore, false)
	hindOps := ag.resolveOps(a.exactHind, true)

	foreRef, foreQry := consumedLengths(foreOps)
	hindRef, hindQry := consumedLengths(hindOps)

	refResidualFore := a.refPos - foreRef
	qryResidualFore := a.qryPos - foreQry
	refResidualHind := (uint64(len(ag.reference)) - a.refPos - a.size) - hindRef
	qryResidualHind := (uint64(len(ag.query)) - a.qryPos - a.size) - hindQry

	foreClipOp, foreClipLen := residualClip(refResidualFore, qryResidualFore)
	hindClipOp, hindClipLen := residualClip(refResidualHind, qryResidualHind)

	reversedHind := make([]op, len(hindOps))
	for idx, o := range hindOps {
		reversedHind[len(hindOps)-1-idx] = o
	}

	flat := make([]op, 0, len(foreOps)+int(a.size)+len(reversedHind))
	flat = append(flat, foreOps...)
	for k := uint64(0); k < a.size; k++ {
		flat = append(flat, opMatch)
	}
	flat = append(flat, reversedHind...)

	_, forePen := a.exactFore.lengthAndPenalty()
	_, hindPen := a.exactHind.lengthAndPenalty()

	res := newAlignmentResultFromOps(flat, (forePen+hindPen)*uint64(ag.gcdFactor), foreClipOp, foreClipLen, hindClipOp, hindClipLen)
	res.RefStart = a.refPos - foreRef
	res.RefEnd = a.refPos + a.size + hindRef
	res.QryStart = a.qryPos - foreQry
	res.QryEnd = a.qryPos + a.size + hindQry
	return res
}

// results runs the full extend -> dedup -> assemble pipeline and returns
// every surviving alignment, or just the minimum-penalty one(s) when
// reportOnlyMinimum is set (spec.md §4.6, mirroring Options.ReportOnlyMinimum).
func (ag *anchorGroup) results(ext *extender, reportOnlyMinimum bool) []AlignmentResult {
	ag.alignment(ext)
	reps := ag.uniqueSurvivors()

	out := make([]AlignmentResult, 0, len(reps))
	for _, i := range reps {
		out = append(out, *ag.assemble(i))
	}
	if !reportOnlyMinimum || len(out) <= 1 {
		return out
	}
	minPenalty := out[0].Penalty
	for _, r := range out[1:] {
		if r.Penalty < minPenalty {
			minPenalty = r.Penalty
		}
	}
	filtered := out[:0]
	for _, r := range out {
		if r.Penalty == minPenalty {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
