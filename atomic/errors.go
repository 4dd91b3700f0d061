package atomic

import "errors"

// Sentinel errors for the loader. Callers match with errors.Is; the
// wrapped message carries the offending file and element.
var (
	// ErrMissingResource is returned when an element's eigen-table
	// file is absent from the source directory.
	ErrMissingResource = errors.New("atomic: missing data file")

	// ErrMalformedResource is returned when a file's records do not
	// match the expected shapes or framing.
	ErrMalformedResource = errors.New("atomic: malformed data file")

	// ErrInconsistentGrid is returned when an element's temperature
	// axis disagrees with the one adopted from the first element.
	ErrInconsistentGrid = errors.New("atomic: inconsistent temperature grid")
)
