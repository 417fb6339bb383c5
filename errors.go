package sigalign

import "github.com/pkg/errors"

// ErrConfig is the sentinel cause for invalid Aligner construction
// parameters (spec.md §7's Config error kind). Use errors.Cause or
// errors.Is against this value; the wrapped error carries the offending
// detail.
var ErrConfig = errors.New("sigalign: invalid configuration")

// newConfigError wraps ErrConfig with a specific message, the way
// grailbio-bio's encoding/ packages wrap sentinel causes with
// errors.Wrap throughout their codecs.
func newConfigError(msg string) error {
	return errors.Wrap(ErrConfig, msg)
}

// wrapLocatorError tags an error returned by a Locator so callers can tell
// it apart from alignment-internal failures (spec.md §7's Locator error
// kind). The underlying cause is preserved and recoverable with
// errors.Cause.
func wrapLocatorError(err error) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, "locator")
}

// NoSeed and AllDropped (spec.md §7) are not distinguished error values:
// both surface as a nil error with an empty []AlignmentResult, exactly as
// spec.md §7 requires ("not an error").
