package templex

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestLocationExtend(t *testing.T) {
	tests := []struct {
		name     string
		a        Location
		b        Location
		expected Location
	}{
		{
			name:     "disjoint spans on one line",
			a:        Location{FilePath: "f.tpl", BeginLine: 1, BeginColumn: 3, EndLine: 1, EndColumn: 5},
			b:        Location{FilePath: "f.tpl", BeginLine: 1, BeginColumn: 9, EndLine: 1, EndColumn: 12},
			expected: Location{FilePath: "f.tpl", BeginLine: 1, BeginColumn: 3, EndLine: 1, EndColumn: 12},
		},
		{
			name:     "multi line spans",
			a:        Location{FilePath: "f.tpl", BeginLine: 2, BeginColumn: 8, EndLine: 2, EndColumn: 10},
			b:        Location{FilePath: "f.tpl", BeginLine: 1, BeginColumn: 20, EndLine: 3, EndColumn: 1},
			expected: Location{FilePath: "f.tpl", BeginLine: 1, BeginColumn: 20, EndLine: 3, EndColumn: 1},
		},
		{
			name:     "extend with unknown keeps known side",
			a:        Location{FilePath: "f.tpl", BeginLine: 1, BeginColumn: 1, EndLine: 1, EndColumn: 4},
			b:        Unknown,
			expected: Location{FilePath: "f.tpl", BeginLine: 1, BeginColumn: 1, EndLine: 1, EndColumn: 4},
		},
		{
			name:     "extend unknown with known returns known",
			a:        Unknown,
			b:        Location{FilePath: "f.tpl", BeginLine: 5, BeginColumn: 2, EndLine: 5, EndColumn: 3},
			expected: Location{FilePath: "f.tpl", BeginLine: 5, BeginColumn: 2, EndLine: 5, EndColumn: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.a.Extend(tt.b))
		})
	}
}

func TestLocationIsKnown(t *testing.T) {
	assert.False(t, Unknown.IsKnown())
	assert.True(t, Location{FilePath: "f.tpl", BeginLine: 1, BeginColumn: 1, EndLine: 1, EndColumn: 1}.IsKnown())
}

func TestLocationString(t *testing.T) {
	single := Location{FilePath: "f.tpl", BeginLine: 2, BeginColumn: 7, EndLine: 2, EndColumn: 7}
	assert.Equal(t, "f.tpl:2:7", single.String())

	span := Location{FilePath: "f.tpl", BeginLine: 2, BeginColumn: 7, EndLine: 2, EndColumn: 12}
	assert.Equal(t, "f.tpl:2:7-2:12", span.String())

	assert.Equal(t, "unknown", Unknown.String())
}
