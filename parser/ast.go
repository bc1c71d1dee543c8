package parser

import (
	"strconv"
	"strings"

	"github.com/shibukawa/templex"
	"github.com/shibukawa/templex/operators"
)

// Node is one node of a parsed expression tree. Every node carries the
// location of the text it was parsed from, already translated into the
// enclosing file's coordinate space. String returns a canonical source-like
// rendering with operator applications fully parenthesized.
type Node interface {
	Location() templex.Location
	String() string
}

// base carries the source location every node holds.
type base struct {
	Loc templex.Location
}

// Location returns the node's location in the enclosing file.
func (b base) Location() templex.Location {
	return b.Loc
}

// NullNode is the literal null.
type NullNode struct {
	base
}

func (n *NullNode) String() string { return "null" }

// BoolNode is a boolean literal.
type BoolNode struct {
	base

	Value bool
}

func (n *BoolNode) String() string { return strconv.FormatBool(n.Value) }

// IntNode is an integer literal.
type IntNode struct {
	base

	Value int64
}

func (n *IntNode) String() string { return strconv.FormatInt(n.Value, 10) }

// FloatNode is a floating point literal.
type FloatNode struct {
	base

	Value float64
}

func (n *FloatNode) String() string { return strconv.FormatFloat(n.Value, 'g', -1, 64) }

// StringNode is a string literal. Value holds the unescaped text.
type StringNode struct {
	base

	Value string
}

func (n *StringNode) String() string { return quoteString(n.Value) }

// ListNode is a list literal.
type ListNode struct {
	base

	Items []Node
}

func (n *ListNode) String() string {
	parts := make([]string, 0, len(n.Items))
	for _, item := range n.Items {
		parts = append(parts, item.String())
	}

	return "[" + strings.Join(parts, ", ") + "]"
}

// MapEntry is one key/value pair of a map literal.
type MapEntry struct {
	Key   Node
	Value Node
}

// MapNode is a map literal. Entries preserve source order.
type MapNode struct {
	base

	Entries []MapEntry
}

func (n *MapNode) String() string {
	if len(n.Entries) == 0 {
		return "[:]"
	}

	parts := make([]string, 0, len(n.Entries))
	for _, entry := range n.Entries {
		parts = append(parts, entry.Key.String()+": "+entry.Value.String())
	}

	return "[" + strings.Join(parts, ", ") + "]"
}

// VarNode is a reference to template data: either an explicit parameter
// ($name) or, when Injected is set, externally supplied injected data
// ($ij.name). Name never keeps the "$" or "ij." prefixes.
type VarNode struct {
	base

	Name     string
	Injected bool
}

func (n *VarNode) String() string {
	if n.Injected {
		return "$ij." + n.Name
	}

	return "$" + n.Name
}

// GlobalNode is a dotted identifier path not rooted in a variable, resolved
// by a later compilation phase.
type GlobalNode struct {
	base

	Name string
}

func (n *GlobalNode) String() string { return n.Name }

// FieldAccessNode is a field access step such as $a.b or $a?.b.
type FieldAccessNode struct {
	base

	Base     Node
	Field    string
	NullSafe bool
}

func (n *FieldAccessNode) String() string {
	if n.NullSafe {
		return n.Base.String() + "?." + n.Field
	}

	return n.Base.String() + "." + n.Field
}

// ItemAccessNode is an item access step such as $a[0] or $a?['k'].
type ItemAccessNode struct {
	base

	Base     Node
	Key      Node
	NullSafe bool
}

func (n *ItemAccessNode) String() string {
	if n.NullSafe {
		return n.Base.String() + "?[" + n.Key.String() + "]"
	}

	return n.Base.String() + "[" + n.Key.String() + "]"
}

// FunctionNode is a function call with ordered arguments.
type FunctionNode struct {
	base

	Name string
	Args []Node
}

func (n *FunctionNode) String() string {
	parts := make([]string, 0, len(n.Args))
	for _, arg := range n.Args {
		parts = append(parts, arg.String())
	}

	return n.Name + "(" + strings.Join(parts, ", ") + ")"
}

// UnaryOpNode applies a prefix operator (unary minus or not) to one operand.
type UnaryOpNode struct {
	base

	Op  operators.Def
	Arg Node
}

func (n *UnaryOpNode) String() string {
	return "(" + n.Op.Symbol + " " + n.Arg.String() + ")"
}

// BinaryOpNode applies a binary operator to two operands.
type BinaryOpNode struct {
	base

	Op   operators.Def
	Arg1 Node
	Arg2 Node
}

func (n *BinaryOpNode) String() string {
	return "(" + n.Arg1.String() + " " + n.Op.Symbol + " " + n.Arg2.String() + ")"
}

// ConditionalOpNode is the ternary conditional operator.
type ConditionalOpNode struct {
	base

	Op        operators.Def
	Cond      Node
	WhenTrue  Node
	WhenFalse Node
}

func (n *ConditionalOpNode) String() string {
	return "(" + n.Cond.String() + " ? " + n.WhenTrue.String() + " : " + n.WhenFalse.String() + ")"
}

// ErrorNode is the placeholder produced when ParseExpression or
// ParseExpressionList fails hard.
type ErrorNode struct {
	base

	Context string
}

func (n *ErrorNode) String() string { return "error" }

// Sentinels returned by the entry points on hard failure. Each entry point
// has its own placeholder so failed results keep the shape callers expect.
var (
	ErrorExpr   = &ErrorNode{base: base{Loc: templex.Unknown}, Context: "expression"}
	ErrorVar    = &VarNode{base: base{Loc: templex.Unknown}, Name: "error"}
	ErrorGlobal = &GlobalNode{base: base{Loc: templex.Unknown}, Name: "error"}
)

// quoteString renders s as a single-quoted literal, re-escaping the
// characters the lexer's escape set covers.
func quoteString(s string) string {
	var builder strings.Builder

	builder.WriteByte('\'')

	for _, r := range s {
		switch r {
		case '\\':
			builder.WriteString(`\\`)
		case '\'':
			builder.WriteString(`\'`)
		case '\n':
			builder.WriteString(`\n`)
		case '\r':
			builder.WriteString(`\r`)
		case '\t':
			builder.WriteString(`\t`)
		case '\b':
			builder.WriteString(`\b`)
		case '\f':
			builder.WriteString(`\f`)
		default:
			builder.WriteRune(r)
		}
	}

	builder.WriteByte('\'')

	return builder.String()
}
