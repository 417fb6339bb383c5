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
	"sync"
)

// waveFrontsBaseSize is the base size of a component's wavefront slice.
const waveFrontsBaseSize = 2048

var waveFrontsGrowSlice = make([]*waveFront, waveFrontsBaseSize)

// component is one of the three WFA score layers (M, I or D): a list of
// wavefronts indexed by score, nil meaning no wavefront exists yet for that
// score.
type component struct {
	waveFronts []*waveFront
}

func newComponent() *component {
	cpt := poolComponent.Get().(*component)
	cpt.reset()
	cpt.waveFronts = cpt.waveFronts[:waveFrontsBaseSize]
	return cpt
}

// reset clears all existing wavefronts so the component can be reused for a
// fresh extension call.
func (cpt *component) reset() {
	for i, wf := range cpt.waveFronts {
		if wf != nil {
			recycleWaveFront(wf)
			cpt.waveFronts[i] = nil
		}
	}
}

var poolComponent = &sync.Pool{New: func() interface{} {
	cpt := component{
		waveFronts: make([]*waveFront, waveFrontsBaseSize),
	}
	return &cpt
}}

func recycleComponent(cpt *component) {
	if cpt != nil {
		poolComponent.Put(cpt)
	}
}

func (cpt *component) HasScore(s uint32) bool {
	if s >= uint32(len(cpt.waveFronts)) {
		return false
	}
	return cpt.waveFronts[s] != nil
}

// KRange returns the lowest and highest k at score s-diff.
func (cpt *component) KRange(s, diff uint32) (int, int) {
	if diff > s {
		return 0, 0
	}
	s -= diff
	if s >= uint32(len(cpt.waveFronts)) || cpt.waveFronts[s] == nil {
		return 0, 0
	}
	wf := cpt.waveFronts[s]
	return wf.Lo, wf.Hi
}

func (cpt *component) growTo(s uint32) {
	if s >= uint32(len(cpt.waveFronts)) {
		cpt.waveFronts = append(cpt.waveFronts, waveFrontsGrowSlice...)
	}
}

func (cpt *component) Set(s uint32, k int, offset uint32, wfaType uint32) {
	cpt.growTo(s)
	wf := cpt.waveFronts[s]
	if wf == nil {
		wf = newWaveFront()
		cpt.waveFronts[s] = wf
	}
	wf.Set(k, offset, wfaType)
}

// Get returns offset, wfaType, existed.
func (cpt *component) Get(s uint32, k int) (uint32, uint32, bool) {
	if s >= uint32(len(cpt.waveFronts)) || cpt.waveFronts[s] == nil {
		return 0, 0, false
	}
	return cpt.waveFronts[s].Get(k)
}

func (cpt *component) GetRaw(s uint32, k int) (uint32, bool) {
	if s >= uint32(len(cpt.waveFronts)) || cpt.waveFronts[s] == nil {
		return 0, false
	}
	return cpt.waveFronts[s].GetRaw(k)
}

// GetAfterDiff returns offset, wfaType, existed for s-diff and k.
func (cpt *component) GetAfterDiff(s uint32, diff uint32, k int) (uint32, uint32, bool) {
	if diff > s {
		return 0, 0, false
	}
	s -= diff
	if s >= uint32(len(cpt.waveFronts)) || cpt.waveFronts[s] == nil {
		return 0, 0, false
	}
	return cpt.waveFronts[s].Get(k)
}

