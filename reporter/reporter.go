// Package reporter collects diagnostics produced while compiling templates.
// A single Reporter typically outlives many parser instances across one
// compilation pass; it is append-only and not internally synchronized, so
// concurrent producers must serialize access externally.
package reporter

import (
	"fmt"

	"github.com/shibukawa/templex"
)

// Kind describes one category of diagnostic. The format string uses fmt verbs
// and is instantiated with the arguments passed to Report.
type Kind struct {
	format string
}

// NewKind creates a diagnostic kind from a fmt format string.
func NewKind(format string) Kind {
	return Kind{format: format}
}

// Message renders the kind's format string with the given arguments.
func (k Kind) Message(args ...any) string {
	return fmt.Sprintf(k.format, args...)
}

// Error is one reported diagnostic.
type Error struct {
	Location templex.Location
	Kind     Kind
	Args     []any
}

// String returns the diagnostic as "location: message".
func (e Error) String() string {
	return e.Location.String() + ": " + e.Kind.Message(e.Args...)
}

// Checkpoint is an opaque snapshot of the diagnostic log's length.
type Checkpoint struct {
	length int
}

// Reporter is an append-only diagnostic log. Entries are never removed or
// reordered.
type Reporter struct {
	errors []Error
}

// New creates an empty Reporter.
func New() *Reporter {
	return &Reporter{}
}

// Report appends one diagnostic to the log.
func (r *Reporter) Report(location templex.Location, kind Kind, args ...any) {
	r.errors = append(r.errors, Error{Location: location, Kind: kind, Args: args})
}

// Checkpoint returns a marker for the current length of the log.
func (r *Reporter) Checkpoint() Checkpoint {
	return Checkpoint{length: len(r.errors)}
}

// ErrorsSince reports whether any diagnostic was appended after the checkpoint
// was taken.
func (r *Reporter) ErrorsSince(checkpoint Checkpoint) bool {
	return len(r.errors) > checkpoint.length
}

// Errors returns a copy of all diagnostics reported so far.
func (r *Reporter) Errors() []Error {
	result := make([]Error, len(r.errors))
	copy(result, r.errors)

	return result
}

// HasErrors reports whether any diagnostics have been reported.
func (r *Reporter) HasErrors() bool {
	return len(r.errors) > 0
}
