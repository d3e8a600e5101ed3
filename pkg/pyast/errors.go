package pyast

import "errors"

var (
	// ErrSyntax is returned when source text is not valid Python.
	ErrSyntax = errors.New("invalid python syntax")

	// ErrUnsupported is returned for valid Python that has no tree form here,
	// such as match statements.
	ErrUnsupported = errors.New("unsupported python construct")
)

// IsGrammarError reports whether err means the text could not be parsed as
// Python, as opposed to an operational failure.
func IsGrammarError(err error) bool {
	return errors.Is(err, ErrSyntax) || errors.Is(err, ErrUnsupported)
}
