// Package memindex implements a small in-memory k-mer locator used by the
// sigalign-align demo CLI and its tests, satisfying the sigalign.Locator
// interface.
package memindex

import (
	"bytes"
	"fmt"

	farm "github.com/dgryski/go-farm"
)

// Index is a simple in-memory exact k-mer index over one reference
// sequence. Unlike grailbio-bio's kmer_index.go — which mmaps a 256-way
// sharded, linear-probed table to minimize memory and GC pressure for
// whole-genome gene panels — this index uses a plain Go map, since a
// demo/benchmark reference fits comfortably in memory and the point here
// is exercising the Locator interface end to end, not that memory layout.
type Index struct {
	reference []byte
	k         int
	table     map[uint64][]uint64
}

// New builds an Index over reference for exact k-length pattern lookups.
// Use sigalign.RecommendedPatternSize to pick k consistently with the
// Aligner that will query this Index.
func New(reference []byte, k int) *Index {
	idx := &Index{reference: reference, k: k, table: make(map[uint64][]uint64)}
	if k <= 0 || k > len(reference) {
		return idx
	}
	for pos := 0; pos+k <= len(reference); pos++ {
		h := hashKmer(reference[pos : pos+k])
		idx.table[h] = append(idx.table[h], uint64(pos))
	}
	return idx
}

func hashKmer(b []byte) uint64 {
	return farm.Hash64(b)
}

// Locate implements sigalign.Locator: every reference position at which
// pattern occurs exactly. A hash collision is resolved by re-checking the
// actual bytes, since Index stores no kmer alongside its hash.
func (idx *Index) Locate(pattern []byte) ([]uint64, error) {
	if len(pattern) != idx.k {
		return nil, fmt.Errorf("memindex: pattern length %d does not match index k=%d", len(pattern), idx.k)
	}
	candidates := idx.table[hashKmer(pattern)]
	if len(candidates) == 0 {
		return nil, nil
	}
	out := make([]uint64, 0, len(candidates))
	for _, pos := range candidates {
		if bytes.Equal(idx.reference[pos:pos+uint64(idx.k)], pattern) {
			out = append(out, pos)
		}
	}
	return out, nil
}
