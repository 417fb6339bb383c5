package sigalign

// Aligner is a configured anchor-and-extend alignment engine: penalties,
// cutoff and pattern size are derived once at construction (spec.md §3),
// then reused across every Align call, mirroring the teacher's Aligner
// holding its Penalties/Cutoffs/pattern size as precomputed fields rather
// than recomputing them per alignment. It holds no mutable extension
// scratch of its own: spec.md §5 guarantees call-level parallelism is safe
// provided the Locator is thread-safe, so Align acquires a fresh,
// pool-backed extender per call (see newExtender/extender.release) instead
// of sharing one extender's M/I/D components across concurrent calls.
type Aligner struct {
	penalties   Penalties
	cutoff      Cutoff
	minPen      MinPenaltyForPattern
	patternSize uint64
	gcdFactor   uint32

	options Options

	locator   Locator
	reference []byte
}

// New builds an Aligner against a fixed reference and Locator, validating
// the penalty/cutoff configuration the way the teacher's Aligner
// constructor validates GapExtendPenalty != 0 (spec.md §7's Config error
// kind).
func New(reference []byte, locator Locator, penalties Penalties, minLen uint64, maxPenaltyPerLength float64, options Options) (*Aligner, error) {
	if locator == nil {
		return nil, newConfigError("locator must not be nil")
	}
	if penalties.GapExtend == 0 {
		return nil, newConfigError("gap extend penalty must be positive")
	}
	if penalties.Mismatch == 0 && penalties.GapOpen == 0 {
		return nil, newConfigError("mismatch and gap-open penalties cannot both be zero")
	}
	if minLen == 0 {
		return nil, newConfigError("minimum alignment length must be positive")
	}
	if maxPenaltyPerLength <= 0 {
		return nil, newConfigError("maximum penalty-per-length must be positive")
	}

	g := penalties.gcd()
	if g == 0 {
		g = 1
	}
	reduced := penalties.dividedByGCD(g)
	minPen := newMinPenaltyForPattern(reduced)
	cutoff := newCutoff(minLen, maxPenaltyPerLength).reducedBy(g)
	patternSize := planPatternSize(minLen, minPen, cutoff.MaxPPLScaled)

	return &Aligner{
		penalties:   reduced,
		cutoff:      cutoff,
		minPen:      minPen,
		patternSize: patternSize,
		gcdFactor:   g,
		options:     options,
		locator:     locator,
		reference:   reference,
	}, nil
}

// RecommendedPatternSize returns the seed pattern length an Aligner built
// with these parameters will use, so a caller can build a matching Locator
// (e.g. internal/memindex.New) before constructing the Aligner itself.
func RecommendedPatternSize(penalties Penalties, minLen uint64, maxPenaltyPerLength float64) uint64 {
	g := penalties.gcd()
	if g == 0 {
		g = 1
	}
	reduced := penalties.dividedByGCD(g)
	minPen := newMinPenaltyForPattern(reduced)
	cutoff := newCutoff(minLen, maxPenaltyPerLength).reducedBy(g)
	return planPatternSize(minLen, minPen, cutoff.MaxPPLScaled)
}

// Align locates every pattern-sized seed of query in the reference,
// anchors them, extends each anchor's fore and hind sides, dedups
// connected anchors and returns one AlignmentResult per surviving
// equivalence class (spec.md §3's Align operation). A nil error with an
// empty slice means no seed was found, or every candidate was dropped by
// the cutoff — neither is an error condition (spec.md §7).
func (al *Aligner) Align(query []byte) ([]AlignmentResult, error) {
	if uint64(len(query)) < al.cutoff.MinLen {
		return nil, nil
	}

	var seeds []seedHit
	for qryPos := uint64(0); qryPos+al.patternSize <= uint64(len(query)); qryPos += al.patternSize {
		pattern := query[qryPos : qryPos+al.patternSize]
		positions, err := al.locator.Locate(pattern)
		if err != nil {
			return nil, wrapLocatorError(err)
		}
		for _, refPos := range positions {
			seeds = append(seeds, seedHit{qryPos: qryPos, refPos: refPos})
		}
	}
	if len(seeds) == 0 {
		return nil, nil
	}

	ag := newAnchorGroup(query, al.reference, seeds, al.penalties, al.cutoff, al.minPen, al.patternSize, al.gcdFactor, al.options.Mode)

	ext := newExtender()
	defer ext.release()
	return ag.results(ext, al.options.ReportOnlyMinimum), nil
}
