package sigalign

import (
	"bytes"
	"strconv"
)

const maskLower32 = 0xFFFFFFFF

// AlignmentResult is one reported alignment: a run-length-encoded op list
// plus the boundary positions and summary stats spec.md §6 requires.
// Ops follows the teacher's packed-uint64 convention (op<<32 | runLength)
// instead of a run struct, so results can be compared and hashed cheaply.
type AlignmentResult struct {
	Ops []uint64

	Penalty uint64

	// RefStart/RefEnd and QryStart/QryEnd bound the aligned region only —
	// they exclude any leading/trailing RefClip/QryClip runs in Ops.
	RefStart, RefEnd uint64
	QryStart, QryEnd uint64

	AlignLen   uint64
	Matches    uint64
	Gaps       uint64
	GapRegions uint64
}

// OpAt unpacks one run-length entry from AlignmentResult.Ops.
func OpAt(packed uint64) (op, uint64) {
	return op(packed >> 32), packed & maskLower32
}

func packOp(o op, n uint64) uint64 {
	return uint64(o)<<32 | (n & maskLower32)
}

func rle(flat []op) []uint64 {
	if len(flat) == 0 {
		return nil
	}
	out := make([]uint64, 0, len(flat))
	cur := flat[0]
	n := uint64(1)
	for _, o := range flat[1:] {
		if o == cur {
			n++
			continue
		}
		out = append(out, packOp(cur, n))
		cur = o
		n = 1
	}
	out = append(out, packOp(cur, n))
	return out
}

// newAlignmentResultFromOps run-length-encodes a flat (one-op-per-base)
// slice produced by anchorGroup.assemble, wrapping it in at most one leading
// and one trailing clip run (spec.md §4.6 step 3: the larger of the two
// axes' residual lengths on a side wins, sized as the residuals' difference;
// a side with equal residuals gets no clip at all). This mirrors the
// teacher's AlignmentResult.process() merge step, but computed directly
// rather than accumulated in place: the assembler already has the whole
// flat op list in hand from splicing the fore, anchor-core and hind
// regions, rather than building it incrementally during a single backtrace
// walk.
func newAlignmentResultFromOps(flat []op, penalty uint64, foreClip op, foreClipLen uint64, hindClip op, hindClipLen uint64) *AlignmentResult {
	full := make([]op, 0, len(flat)+int(foreClipLen+hindClipLen))
	for k := uint64(0); k < foreClipLen; k++ {
		full = append(full, foreClip)
	}
	full = append(full, flat...)
	for k := uint64(0); k < hindClipLen; k++ {
		full = append(full, hindClip)
	}

	res := &AlignmentResult{Penalty: penalty, Ops: rle(full)}
	res.computeStats()
	return res
}

func (res *AlignmentResult) computeStats() {
	var alignLen, matches, gaps, gapRegions uint64
	for _, packed := range res.Ops {
		o, n := OpAt(packed)
		switch o {
		case opMatch:
			alignLen += n
			matches += n
		case opSubst:
			alignLen += n
		case opIns, opDel:
			alignLen += n
			gaps += n
			gapRegions++
		}
	}
	res.AlignLen = alignLen
	res.Matches = matches
	res.Gaps = gaps
	res.GapRegions = gapRegions
}

var cigarByte = map[op]byte{
	opMatch:   'M',
	opSubst:   'X',
	opIns:     'I',
	opDel:     'D',
	opRefClip: 'S',
	opQryClip: 'S',
}

// CIGAR renders the CIGAR string for this alignment: matches as M,
// mismatches as X, insertions as I, deletions as D and clip runs as S,
// matching the teacher's wfa_cigar.go convention of distinguishing matches
// from mismatches in the packed op stream.
func (res *AlignmentResult) CIGAR() string {
	var buf bytes.Buffer
	for _, packed := range res.Ops {
		o, n := OpAt(packed)
		buf.WriteString(strconv.FormatUint(n, 10))
		c, ok := cigarByte[o]
		if !ok {
			c = '?'
		}
		buf.WriteByte(c)
	}
	return buf.String()
}

// AlignmentText renders the three-line (query / match-bar / reference)
// visual alignment the teacher's benchmark CLI prints, reading forward
// from this result's RefStart/QryStart.
func (res *AlignmentResult) AlignmentText(query, reference []byte) (qLine, bar, rLine []byte) {
	var q, r bytes.Buffer
	var b bytes.Buffer
	// RefStart/QryStart already exclude the leading clip run, so the walk
	// starts there and clip runs advance neither index.
	qi, ri := res.QryStart, res.RefStart
	for _, packed := range res.Ops {
		o, n := OpAt(packed)
		for k := uint64(0); k < n; k++ {
			switch o {
			case opMatch:
				q.WriteByte(query[qi])
				r.WriteByte(reference[ri])
				b.WriteByte('|')
				qi++
				ri++
			case opSubst:
				q.WriteByte(query[qi])
				r.WriteByte(reference[ri])
				b.WriteByte('.')
				qi++
				ri++
			case opIns:
				q.WriteByte(query[qi])
				r.WriteByte('-')
				b.WriteByte(' ')
				qi++
			case opDel:
				q.WriteByte('-')
				r.WriteByte(reference[ri])
				b.WriteByte(' ')
				ri++
			}
		}
	}
	return q.Bytes(), b.Bytes(), r.Bytes()
}
