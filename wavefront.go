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

import (
	"math"
	"sync"
)

// offsetsBaseSize is the base size of a wavefront's offset slice.
const offsetsBaseSize = 2048

var offsetsGrowSlice = make([]uint32, offsetsBaseSize)

// waveFront is a list of offsets for different k (diagonal) values, for one
// score layer of one component (M, I or D). The low wfaTypeBits bits of each
// offset store the backtrace marker.
//
// Since k might be negative and the values are usually symmetrical, they are
// stored zig-zagged:
//
//	index: 0,  1,  2,  3,  4,  5,  6
//	k:     0, -1,  1, -2,  2, -3,  3
//
// a zero entry means no record exists for that k.
type waveFront struct {
	Lo, Hi  int
	Offsets []uint32
}

func newWaveFront() *waveFront {
	wf := poolWaveFront.Get().(*waveFront)
	wf.Lo = math.MaxInt
	wf.Hi = math.MinInt
	wf.Offsets = wf.Offsets[:offsetsBaseSize]
	clear(wf.Offsets)
	return wf
}

var poolWaveFront = &sync.Pool{New: func() interface{} {
	wf := waveFront{
		Offsets: make([]uint32, offsetsBaseSize),
	}
	return &wf
}}

func recycleWaveFront(wf *waveFront) {
	if wf != nil {
		poolWaveFront.Put(wf)
	}
}

func k2i(k int) int {
	if k >= 0 {
		return k << 1
	}
	return ((-k) << 1) - 1
}

func (wf *waveFront) growTo(i int) {
	if i >= len(wf.Offsets) {
		n := (i - len(wf.Offsets) + offsetsBaseSize) / offsetsBaseSize
		for j := 0; j < n; j++ {
			wf.Offsets = append(wf.Offsets, offsetsGrowSlice...)
		}
	}
}

func (wf *waveFront) Set(k int, offset uint32, wfaType uint32) {
	i := k2i(k)
	wf.growTo(i)
	wf.Offsets[i] = offset<<wfaTypeBits | wfaType
	wf.Lo = min(wf.Lo, k)
	wf.Hi = max(wf.Hi, k)
}

func (wf *waveFront) Increase(k int, delta uint32) {
	i := k2i(k)
	wf.growTo(i)
	wf.Offsets[i] += delta << wfaTypeBits
	wf.Lo = min(wf.Lo, k)
	wf.Hi = max(wf.Hi, k)
}

// Get returns offset, wfaType, existed.
func (wf *waveFront) Get(k int) (uint32, uint32, bool) {
	if !(k >= wf.Lo && k <= wf.Hi) {
		return 0, 0, false
	}
	offset := wf.Offsets[k2i(k)]
	return offset >> wfaTypeBits, offset & wfaTypeMask, offset > 0
}

// GetRaw returns "offset<<wfaTypeBits | wfaType", existed.
func (wf *waveFront) GetRaw(k int) (uint32, bool) {
	if !(k >= wf.Lo && k <= wf.Hi) {
		return 0, false
	}
	offset := wf.Offsets[k2i(k)]
	return offset, offset > 0
}

