package sigalign

// Locator finds all reference positions at which pattern occurs exactly.
// The production contract (spec.md §6) does not require a Locator to ever
// fail in the steady state, but real backends (disk-backed FM-indexes,
// remote suffix arrays) can — the error return lets the Aligner surface
// that verbatim instead of assuming infallibility, the way grailbio-bio
// treats any external index/codec boundary as fallible.
//
// Positions are 0-based offsets into the reference the Locator was built
// over. An empty, nil-error result means the pattern does not occur.
type Locator interface {
	Locate(pattern []byte) ([]uint64, error)
}
