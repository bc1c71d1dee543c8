package templex

import "fmt"

// Location identifies a span of text within a template file.
// Lines and columns are 1-based; EndLine/EndColumn point at the last
// character of the span, not one past it.
type Location struct {
	FilePath    string
	BeginLine   int
	BeginColumn int
	EndLine     int
	EndColumn   int
}

// Unknown is the sentinel location for nodes whose source position could not
// be determined, such as error placeholders.
var Unknown = Location{FilePath: "unknown", BeginLine: -1, BeginColumn: -1, EndLine: -1, EndColumn: -1}

// IsKnown reports whether l carries a real source position.
func (l Location) IsKnown() bool {
	return l.BeginLine > 0
}

// Extend returns the minimal location covering both l and other.
// If either side is unknown, the other is returned unchanged.
func (l Location) Extend(other Location) Location {
	if !l.IsKnown() {
		return other
	}

	if !other.IsKnown() {
		return l
	}

	result := l
	if other.BeginLine < result.BeginLine || (other.BeginLine == result.BeginLine && other.BeginColumn < result.BeginColumn) {
		result.BeginLine = other.BeginLine
		result.BeginColumn = other.BeginColumn
	}

	if other.EndLine > result.EndLine || (other.EndLine == result.EndLine && other.EndColumn > result.EndColumn) {
		result.EndLine = other.EndLine
		result.EndColumn = other.EndColumn
	}

	return result
}

// String returns the location in "path:line:column" form, with the end
// position appended when the span covers more than one character.
func (l Location) String() string {
	if !l.IsKnown() {
		return l.FilePath
	}

	if l.BeginLine == l.EndLine && l.BeginColumn == l.EndColumn {
		return fmt.Sprintf("%s:%d:%d", l.FilePath, l.BeginLine, l.BeginColumn)
	}

	return fmt.Sprintf("%s:%d:%d-%d:%d", l.FilePath, l.BeginLine, l.BeginColumn, l.EndLine, l.EndColumn)
}
