// Copyright © 2024 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package sigalign

// wfaTypeBits is the number of low bits of a packed wavefront offset that
// hold the backtrace marker.
const wfaTypeBits uint32 = 3
const wfaTypeMask uint32 = (1 << wfaTypeBits) - 1

const (
	// the 6 kinds of wavefront transitions, packed into the low 3 bits of an offset.
	wfaInsertOpen uint32 = iota + 1
	wfaInsertExt
	wfaDeleteOpen
	wfaDeleteExt
	wfaMismatch
	wfaMatch // only valid for the initial row/column
)

// op is a single unit alignment operation, one per aligned base or indel
// step. Unlike the packed run-length Ops used by AlignmentResult, extension
// and backtrace work on a flat, unmerged slice of these so that checkpoint
// crossings can be detected at every cell; the result assembler is the one
// place that run-length-encodes them.
type op byte

const (
	opMatch op = 'M'
	opSubst op = 'X'
	opIns   op = 'I'
	opDel   op = 'D'
	// opRefClip/opQryClip mark unaligned residue runs spliced in by the
	// result assembler outside of the extender; never produced by backtrace.
	opRefClip op = 'R'
	opQryClip op = 'Q'
)

func opFromWfaType(t uint32) op {
	switch t {
	case wfaMatch:
		return opMatch
	case wfaMismatch:
		return opSubst
	case wfaInsertOpen, wfaInsertExt:
		return opIns
	case wfaDeleteOpen, wfaDeleteExt:
		return opDel
	default:
		return opSubst
	}
}
