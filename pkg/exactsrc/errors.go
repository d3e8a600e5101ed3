package exactsrc

import "errors"

var (
	// ErrNoMatchingExtent is returned when no candidate substring reparses to
	// a tree equivalent to the fragment.
	ErrNoMatchingExtent = errors.New("no matching source extent")

	// ErrMalformedQuery is returned when the fragment's positions do not fit
	// the tree or source the resolver was built for.
	ErrMalformedQuery = errors.New("malformed extent query")
)
