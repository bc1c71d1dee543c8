package parser

import (
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/shibukawa/templex"
	"github.com/shibukawa/templex/reporter"
)

var testParent = templex.Location{
	FilePath:    "test.tpl",
	BeginLine:   1,
	BeginColumn: 1,
	EndLine:     1,
	EndColumn:   80,
}

func parseExpr(t *testing.T, input string) (Node, *reporter.Reporter) {
	t.Helper()

	errs := reporter.New()
	node := New(input, testParent, errs).ParseExpression()

	return node, errs
}

func parseExprOK(t *testing.T, input string) Node {
	t.Helper()

	node, errs := parseExpr(t, input)
	assert.False(t, errs.HasErrors(), "unexpected diagnostics: %v", errs.Errors())

	return node
}

func TestPrecedenceAndAssociativity(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "multiplication binds tighter than addition",
			input:    "1 + 2 * 3",
			expected: "(1 + (2 * 3))",
		},
		{
			name:     "subtraction is left associative",
			input:    "1 - 2 - 3",
			expected: "((1 - 2) - 3)",
		},
		{
			name:     "division and modulo are left associative",
			input:    "8 / 4 % 3",
			expected: "((8 / 4) % 3)",
		},
		{
			name:     "null coalescing is right associative",
			input:    "$a ?: $b ?: $c",
			expected: "($a ?: ($b ?: $c))",
		},
		{
			name:     "ternary nests right on the false branch",
			input:    "$a ? 1 : $b ? 2 : 3",
			expected: "($a ? 1 : ($b ? 2 : 3))",
		},
		{
			name:     "comparison binds tighter than equality",
			input:    "$a < $b == $c > $d",
			expected: "(($a < $b) == ($c > $d))",
		},
		{
			name:     "and binds tighter than or",
			input:    "$a or $b and $c",
			expected: "($a or ($b and $c))",
		},
		{
			name:     "equality binds tighter than and",
			input:    "$a == 1 and $b != 2",
			expected: "(($a == 1) and ($b != 2))",
		},
		{
			name:     "unary minus binds looser than field access",
			input:    "-$a.b",
			expected: "(- $a.b)",
		},
		{
			name:     "not binds looser than item access",
			input:    "not $a[0]",
			expected: "(not $a[0])",
		},
		{
			name:     "unary minus versus binary minus",
			input:    "-$a - -$b",
			expected: "((- $a) - (- $b))",
		},
		{
			name:     "double negation",
			input:    "not not $a",
			expected: "(not (not $a))",
		},
		{
			name:     "parentheses override precedence",
			input:    "(1 + 2) * 3",
			expected: "((1 + 2) * 3)",
		},
		{
			name:     "addition binds tighter than comparison",
			input:    "1 + 2 < 3 * 4",
			expected: "((1 + 2) < (3 * 4))",
		},
		{
			name:     "ternary condition takes full or expression",
			input:    "$a or $b ? 1 : 2",
			expected: "(($a or $b) ? 1 : 2)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseExprOK(t, tt.input).String())
		})
	}
}

func TestIntegerLiterals(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int64
	}{
		{name: "decimal", input: "123", expected: 123},
		{name: "zero", input: "0", expected: 0},
		{name: "hex", input: "0x1A2B", expected: 6699},
		{name: "leading zeros are decimal not octal", input: "0755", expected: 755},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, ok := parseExprOK(t, tt.input).(*IntNode)
			assert.True(t, ok)
			assert.Equal(t, tt.expected, node.Value)
		})
	}
}

func TestFloatLiterals(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
	}{
		{name: "simple", input: "1.5", expected: 1.5},
		{name: "exponent", input: "6.03e23", expected: 6.03e23},
		{name: "negative exponent without point", input: "3e-3", expected: 3e-3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, ok := parseExprOK(t, tt.input).(*FloatNode)
			assert.True(t, ok)
			assert.Equal(t, tt.expected, node.Value)
		})
	}
}

func TestPrimitiveLiterals(t *testing.T) {
	null, ok := parseExprOK(t, "null").(*NullNode)
	assert.True(t, ok)
	assert.NotZero(t, null)

	b, ok := parseExprOK(t, "false").(*BoolNode)
	assert.True(t, ok)
	assert.False(t, b.Value)
}

func TestStringLiteralUnescaping(t *testing.T) {
	node, ok := parseExprOK(t, `'aa\\bb\'cc\ndd'`).(*StringNode)
	assert.True(t, ok)
	assert.Equal(t, "aa\\bb'cc\ndd", node.Value)

	unicode, ok := parseExprOK(t, `'café'`).(*StringNode)
	assert.True(t, ok)
	assert.Equal(t, "café", unicode.Value)
}

func TestListAndMapLiterals(t *testing.T) {
	emptyList, ok := parseExprOK(t, "[]").(*ListNode)
	assert.True(t, ok)
	assert.Equal(t, 0, len(emptyList.Items))

	emptyMap, ok := parseExprOK(t, "[:]").(*MapNode)
	assert.True(t, ok)
	assert.Equal(t, 0, len(emptyMap.Entries))

	list, ok := parseExprOK(t, "[1, 'two', $three,]").(*ListNode)
	assert.True(t, ok)
	assert.Equal(t, 3, len(list.Items))
	assert.Equal(t, "[1, 'two', $three]", list.String())

	m, ok := parseExprOK(t, "['aaa': 42, 'bbb': $b,]").(*MapNode)
	assert.True(t, ok)
	assert.Equal(t, 2, len(m.Entries))
	assert.Equal(t, "['aaa': 42, 'bbb': $b]", m.String())

	nested, ok := parseExprOK(t, "[[1, 2], [:]]").(*ListNode)
	assert.True(t, ok)
	assert.Equal(t, 2, len(nested.Items))
}

func TestBareMapKeyDiagnostic(t *testing.T) {
	node, errs := parseExpr(t, "[foo: 1]")

	// Tier 2: reported once, but a normally shaped map is still produced.
	m, ok := node.(*MapNode)
	assert.True(t, ok)
	assert.Equal(t, 1, len(m.Entries))

	key, ok := m.Entries[0].Key.(*GlobalNode)
	assert.True(t, ok)
	assert.Equal(t, "foo", key.Name)

	diags := errs.Errors()
	assert.Equal(t, 1, len(diags))
	assert.Equal(t, KindBareMapKey, diags[0].Kind)
}

func TestBareMapKeyDiagnosticOnLaterKey(t *testing.T) {
	node, errs := parseExpr(t, "['ok': 1, bad: 2]")

	m, ok := node.(*MapNode)
	assert.True(t, ok)
	assert.Equal(t, 2, len(m.Entries))
	assert.Equal(t, 1, len(errs.Errors()))
}

func TestDottedMapKeyIsAllowed(t *testing.T) {
	node, errs := parseExpr(t, "[foo.bar: 1]")
	assert.False(t, errs.HasErrors())

	m, ok := node.(*MapNode)
	assert.True(t, ok)

	key, ok := m.Entries[0].Key.(*GlobalNode)
	assert.True(t, ok)
	assert.Equal(t, "foo.bar", key.Name)
}

func TestVariables(t *testing.T) {
	v, ok := parseExprOK(t, "$aaa").(*VarNode)
	assert.True(t, ok)
	assert.Equal(t, "aaa", v.Name)
	assert.False(t, v.Injected)
}

func TestInjectedData(t *testing.T) {
	v, ok := parseExprOK(t, "$ij.aaa").(*VarNode)
	assert.True(t, ok)
	assert.Equal(t, "aaa", v.Name)
	assert.True(t, v.Injected)
}

func TestReservedNameDiagnostic(t *testing.T) {
	node, errs := parseExpr(t, "$ij")

	// Tier 2: the node keeps its shape and is never silently renamed.
	v, ok := node.(*VarNode)
	assert.True(t, ok)
	assert.Equal(t, "ij", v.Name)
	assert.False(t, v.Injected)

	diags := errs.Errors()
	assert.Equal(t, 1, len(diags))
	assert.Equal(t, KindReservedName, diags[0].Kind)
}

func TestGlobals(t *testing.T) {
	g, ok := parseExprOK(t, "AAA.bbb.CCC").(*GlobalNode)
	assert.True(t, ok)
	assert.Equal(t, "AAA.bbb.CCC", g.Name)

	// The span covers all three identifiers.
	assert.Equal(t, templex.Location{
		FilePath:    "test.tpl",
		BeginLine:   1,
		BeginColumn: 1,
		EndLine:     1,
		EndColumn:   11,
	}, g.Location())
}

func TestGlobalThenItemAccess(t *testing.T) {
	node, ok := parseExprOK(t, "AAA.bbb[0]").(*ItemAccessNode)
	assert.True(t, ok)

	g, ok := node.Base.(*GlobalNode)
	assert.True(t, ok)
	assert.Equal(t, "AAA.bbb", g.Name)
}

func TestGlobalNullSafeAccessIsFieldAccess(t *testing.T) {
	// "?.": not greedily folded into the global, unlike DOT_IDENT.
	node, ok := parseExprOK(t, "AAA.bbb?.ccc").(*FieldAccessNode)
	assert.True(t, ok)
	assert.True(t, node.NullSafe)
	assert.Equal(t, "ccc", node.Field)

	g, ok := node.Base.(*GlobalNode)
	assert.True(t, ok)
	assert.Equal(t, "AAA.bbb", g.Name)
}

func TestFunctionCalls(t *testing.T) {
	empty, ok := parseExprOK(t, "foo()").(*FunctionNode)
	assert.True(t, ok)
	assert.Equal(t, "foo", empty.Name)
	assert.Equal(t, 0, len(empty.Args))

	call, ok := parseExprOK(t, "myFunction(2,'aa')").(*FunctionNode)
	assert.True(t, ok)
	assert.Equal(t, "myFunction", call.Name)
	assert.Equal(t, 2, len(call.Args))

	arg0, ok := call.Args[0].(*IntNode)
	assert.True(t, ok)
	assert.Equal(t, int64(2), arg0.Value)

	arg1, ok := call.Args[1].(*StringNode)
	assert.True(t, ok)
	assert.Equal(t, "aa", arg1.Value)

	nested, ok := parseExprOK(t, "min($a, max(1, $b))").(*FunctionNode)
	assert.True(t, ok)
	assert.Equal(t, "min($a, max(1, $b))", nested.String())
}

func TestAccessChain(t *testing.T) {
	node := parseExprOK(t, "$aaa[0]['bbb'].ccc")

	field, ok := node.(*FieldAccessNode)
	assert.True(t, ok)
	assert.Equal(t, "ccc", field.Field)
	assert.False(t, field.NullSafe)

	outer, ok := field.Base.(*ItemAccessNode)
	assert.True(t, ok)
	assert.False(t, outer.NullSafe)

	key, ok := outer.Key.(*StringNode)
	assert.True(t, ok)
	assert.Equal(t, "bbb", key.Value)

	inner, ok := outer.Base.(*ItemAccessNode)
	assert.True(t, ok)

	index, ok := inner.Key.(*IntNode)
	assert.True(t, ok)
	assert.Equal(t, int64(0), index.Value)

	root, ok := inner.Base.(*VarNode)
	assert.True(t, ok)
	assert.Equal(t, "aaa", root.Name)
}

func TestNullSafeAccess(t *testing.T) {
	field, ok := parseExprOK(t, "$a?.b").(*FieldAccessNode)
	assert.True(t, ok)
	assert.True(t, field.NullSafe)

	item, ok := parseExprOK(t, "$a?[0]").(*ItemAccessNode)
	assert.True(t, ok)
	assert.True(t, item.NullSafe)
}

func TestHardFailures(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty input", input: ""},
		{name: "trailing tokens", input: "1 + 2 3"},
		{name: "unterminated string", input: "'abc"},
		{name: "unknown character", input: "1 @ 2"},
		{name: "embedded NUL byte", input: "1 \x00 2"},
		{name: "lowercase hex digits", input: "0x1a"},
		{name: "float without decimal part", input: "3."},
		{name: "float without integer part", input: ".5"},
		{name: "uppercase exponent", input: "3E3"},
		{name: "missing closing paren", input: "(1 + 2"},
		{name: "missing closing bracket", input: "$a[0"},
		{name: "dangling binary operator", input: "1 +"},
		{name: "ternary missing colon", input: "$a ? 1"},
		{name: "lone question", input: "$a ?"},
		{name: "bad escape sequence", input: `'\q'`},
		{name: "function call missing paren", input: "foo(1,"},
		{name: "map missing value", input: "['a': ]"},
		{name: "comma without expression", input: ", 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := reporter.New()
			cp := errs.Checkpoint()

			node := New(tt.input, testParent, errs).ParseExpression()

			// Tier 1: exactly one diagnostic and the sentinel result.
			assert.True(t, errs.ErrorsSince(cp))
			assert.Equal(t, 1, len(errs.Errors()))
			assert.Equal(t, Node(ErrorExpr), node)
		})
	}
}

func TestNestingDepthLimit(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "parenthesized nesting",
			input: strings.Repeat("(", 600) + "1" + strings.Repeat(")", 600),
		},
		{
			name:  "stacked prefix operators",
			input: strings.Repeat("not ", 600) + "$a",
		},
		{
			name:  "stacked unary minus",
			input: strings.Repeat("-", 600) + "1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := reporter.New()
			node := New(tt.input, testParent, errs).ParseExpression()

			assert.Equal(t, Node(ErrorExpr), node)
			assert.Equal(t, 1, len(errs.Errors()))
		})
	}
}

func TestParseExpressionList(t *testing.T) {
	errs := reporter.New()
	list := New("1, 'two', $three", testParent, errs).ParseExpressionList()

	assert.False(t, errs.HasErrors())
	assert.Equal(t, 3, len(list))
	assert.Equal(t, "'two'", list[1].String())
}

func TestParseExpressionListFailure(t *testing.T) {
	errs := reporter.New()
	cp := errs.Checkpoint()

	list := New("1, ", testParent, errs).ParseExpressionList()

	assert.True(t, errs.ErrorsSince(cp))
	assert.Equal(t, 1, len(errs.Errors()))
	assert.Equal(t, 0, len(list))
}

func TestParseVariable(t *testing.T) {
	errs := reporter.New()
	node := New("$userName", testParent, errs).ParseVariable()

	assert.False(t, errs.HasErrors())
	assert.Equal(t, "userName", node.Name)
	assert.False(t, node.Injected)
}

func TestParseVariableReservedName(t *testing.T) {
	errs := reporter.New()
	node := New("$ij", testParent, errs).ParseVariable()

	// The reserved name is a soft diagnostic: reported, yet the result is a
	// normally shaped node rather than the sentinel.
	assert.Equal(t, 1, len(errs.Errors()))
	assert.Equal(t, KindReservedName, errs.Errors()[0].Kind)
	assert.Equal(t, "ij", node.Name)
}

func TestParseVariableFailures(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "not a variable", input: "foo"},
		{name: "trailing access", input: "$foo.bar"},
		{name: "bare dollar", input: "$"},
		{name: "empty input", input: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := reporter.New()
			node := New(tt.input, testParent, errs).ParseVariable()

			assert.Equal(t, 1, len(errs.Errors()))
			assert.Equal(t, ErrorVar, node)
		})
	}
}

func TestParseGlobal(t *testing.T) {
	errs := reporter.New()
	node := New("app.config.DEBUG", testParent, errs).ParseGlobal()

	assert.False(t, errs.HasErrors())
	assert.Equal(t, "app.config.DEBUG", node.Name)
}

func TestParseGlobalFailures(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "variable is not a global", input: "$foo"},
		{name: "trailing tokens", input: "aaa bbb"},
		{name: "empty input", input: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := reporter.New()
			node := New(tt.input, testParent, errs).ParseGlobal()

			assert.Equal(t, 1, len(errs.Errors()))
			assert.Equal(t, ErrorGlobal, node)
		})
	}
}

func TestMultipleSoftDiagnostics(t *testing.T) {
	// One fragment can yield several independent tier 2 diagnostics.
	node, errs := parseExpr(t, "[aaa: $ij, bbb: 2]")

	_, ok := node.(*MapNode)
	assert.True(t, ok)
	assert.Equal(t, 3, len(errs.Errors()))
}

func TestLocationTranslation(t *testing.T) {
	parent := templex.Location{
		FilePath:    "page.tpl",
		BeginLine:   3,
		BeginColumn: 10,
		EndLine:     3,
		EndColumn:   40,
	}

	errs := reporter.New()
	node := New("$abc + 1", parent, errs).ParseExpression()
	assert.False(t, errs.HasErrors())

	// The whole operator node spans from "$abc" through "1".
	assert.Equal(t, templex.Location{
		FilePath:    "page.tpl",
		BeginLine:   3,
		BeginColumn: 10,
		EndLine:     3,
		EndColumn:   17,
	}, node.Location())

	op, ok := node.(*BinaryOpNode)
	assert.True(t, ok)
	assert.Equal(t, templex.Location{
		FilePath:    "page.tpl",
		BeginLine:   3,
		BeginColumn: 10,
		EndLine:     3,
		EndColumn:   13,
	}, op.Arg1.Location())
}

func TestLocationTranslationAcrossLines(t *testing.T) {
	parent := templex.Location{
		FilePath:    "page.tpl",
		BeginLine:   3,
		BeginColumn: 10,
		EndLine:     4,
		EndColumn:   5,
	}

	errs := reporter.New()
	node := New("$abc\n+ 1", parent, errs).ParseExpression()
	assert.False(t, errs.HasErrors())

	// Only the fragment's first line is shifted by the parent column.
	assert.Equal(t, templex.Location{
		FilePath:    "page.tpl",
		BeginLine:   3,
		BeginColumn: 10,
		EndLine:     4,
		EndColumn:   3,
	}, node.Location())
}

func TestUnknownParentYieldsUnknownLocations(t *testing.T) {
	errs := reporter.New()
	node := New("1 + 2", templex.Unknown, errs).ParseExpression()

	assert.False(t, errs.HasErrors())
	assert.Equal(t, templex.Unknown, node.Location())
}

func TestOperatorRegistryConsistencyAssertion(t *testing.T) {
	// Calling a builder with the wrong grammar level is a programming error.
	assert.Panics(t, func() {
		mustLookup("?:", 2, 5)
	})
	assert.Panics(t, func() {
		mustLookup("**", 2, 7)
	})
}
