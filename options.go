package sigalign

// Mode selects how an alignment must terminate (spec.md §2's "5%" line
// item, expanded in SPEC_FULL.md §4.7). Taken from the teacher's
// Options.GlobalAlignment flag — note the teacher's "global" means what
// this package calls SemiGlobal: full-length alignment of the shorter
// sequence, not both sequences end to end.
type Mode uint8

const (
	// SemiGlobal requires the extender's termination test (spec.md §4.3
	// step 3) to reach a sequence boundary exactly. This is the default,
	// matching the teacher's DefaultOptions.GlobalAlignment = true.
	SemiGlobal Mode = iota
	// Local does not require the extender to reach a sequence boundary
	// within the penalty budget: once the budget is exhausted, the
	// diagonal with the most progress is accepted as the stopping point
	// instead of failing the extension outright (see
	// extender.bestDiagonal). Either mode can leave residue unconsumed;
	// on each side the result assembler emits the difference between the
	// two axes' residues as a RefClip/QryClip run (spec.md §4.6 step 3).
	Local
)

// Options configures an Aligner beyond the penalties/cutoff pair.
type Options struct {
	Mode Mode

	// ReportOnlyMinimum, when true, makes the result assembler keep only
	// the alignment(s) with the lowest penalty among the deduplicated
	// equivalence classes (spec.md §4.6's "minimum-penalty-only mode"),
	// mirroring AnchorGroup::get_result's min-only path in anchor.rs.
	ReportOnlyMinimum bool
}

// DefaultOptions matches the teacher's DefaultOptions.
var DefaultOptions = Options{
	Mode:              SemiGlobal,
	ReportOnlyMinimum: false,
}
