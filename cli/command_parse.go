package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/shibukawa/templex"
	"github.com/shibukawa/templex/parser"
	"github.com/shibukawa/templex/reporter"
)

// ParseCmd represents the parse command
type ParseCmd struct {
	Expression string `arg:"" help:"Expression fragment to parse"`
	Mode       string `help:"Entry point (expression, list, variable, global)" default:"expression" enum:"expression,list,variable,global"`
	File       string `help:"Template file the fragment came from" type:"path"`
	Line       int    `help:"Line of the fragment inside the template file" default:"1"`
	Column     int    `help:"Column of the fragment inside the template file" default:"1"`
	Format     string `help:"Output format" default:"text" enum:"text,yaml"`
	OutputFile string `short:"o" long:"output" help:"Output file (defaults to stdout)" type:"path"`
}

func (p *ParseCmd) Run(ctx *Context) error {
	if ctx.Verbose {
		color.Blue("Parsing %q as %s", p.Expression, p.Mode)
	}

	errs := reporter.New()
	ps := parser.New(p.Expression, parentLocation(p.File, p.Line, p.Column), errs)

	var nodes []parser.Node

	switch p.Mode {
	case "list":
		nodes = ps.ParseExpressionList()
	case "variable":
		nodes = []parser.Node{ps.ParseVariable()}
	case "global":
		nodes = []parser.Node{ps.ParseGlobal()}
	default:
		nodes = []parser.Node{ps.ParseExpression()}
	}

	printDiagnostics(errs)

	w, done, err := output(p.OutputFile)
	if err != nil {
		return err
	}
	defer done()

	if err := p.write(w, nodes); err != nil {
		return err
	}

	if errs.HasErrors() {
		return templex.ErrParseFailed
	}

	if !ctx.Quiet && ctx.Verbose {
		color.Green("Parsed successfully")
	}

	return nil
}

func (p *ParseCmd) write(w io.Writer, nodes []parser.Node) error {
	if p.Format == "yaml" {
		trees := make([]*treeNode, 0, len(nodes))
		for _, node := range nodes {
			trees = append(trees, buildTree(node))
		}

		if len(trees) == 1 {
			return writeYAML(w, trees[0])
		}

		return writeYAML(w, trees)
	}

	for _, node := range nodes {
		if _, err := fmt.Fprintln(w, node.String()); err != nil {
			return err
		}
	}

	return nil
}

// treeNode is the YAML projection of one expression tree node.
type treeNode struct {
	Kind     string      `yaml:"kind"`
	Name     string      `yaml:"name,omitempty"`
	Value    any         `yaml:"value,omitempty"`
	Op       string      `yaml:"op,omitempty"`
	Injected bool        `yaml:"injected,omitempty"`
	NullSafe bool        `yaml:"nullSafe,omitempty"`
	Location string      `yaml:"location,omitempty"`
	Children []*treeNode `yaml:"children,omitempty"`
}

func buildTree(node parser.Node) *treeNode {
	t := &treeNode{}
	if loc := node.Location(); loc.IsKnown() {
		t.Location = loc.String()
	}

	switch n := node.(type) {
	case *parser.NullNode:
		t.Kind = "null"
	case *parser.BoolNode:
		t.Kind = "boolean"
		t.Value = n.Value
	case *parser.IntNode:
		t.Kind = "integer"
		t.Value = n.Value
	case *parser.FloatNode:
		t.Kind = "float"
		t.Value = n.Value
	case *parser.StringNode:
		t.Kind = "string"
		t.Value = n.Value
	case *parser.ListNode:
		t.Kind = "list"
		for _, item := range n.Items {
			t.Children = append(t.Children, buildTree(item))
		}
	case *parser.MapNode:
		t.Kind = "map"
		for _, entry := range n.Entries {
			t.Children = append(t.Children, buildTree(entry.Key), buildTree(entry.Value))
		}
	case *parser.VarNode:
		t.Kind = "variable"
		t.Name = n.Name
		t.Injected = n.Injected
	case *parser.GlobalNode:
		t.Kind = "global"
		t.Name = n.Name
	case *parser.FieldAccessNode:
		t.Kind = "fieldAccess"
		t.Name = n.Field
		t.NullSafe = n.NullSafe
		t.Children = []*treeNode{buildTree(n.Base)}
	case *parser.ItemAccessNode:
		t.Kind = "itemAccess"
		t.NullSafe = n.NullSafe
		t.Children = []*treeNode{buildTree(n.Base), buildTree(n.Key)}
	case *parser.FunctionNode:
		t.Kind = "function"
		t.Name = n.Name
		for _, arg := range n.Args {
			t.Children = append(t.Children, buildTree(arg))
		}
	case *parser.UnaryOpNode:
		t.Kind = "unaryOp"
		t.Op = n.Op.Symbol
		t.Children = []*treeNode{buildTree(n.Arg)}
	case *parser.BinaryOpNode:
		t.Kind = "binaryOp"
		t.Op = n.Op.Symbol
		t.Children = []*treeNode{buildTree(n.Arg1), buildTree(n.Arg2)}
	case *parser.ConditionalOpNode:
		t.Kind = "conditionalOp"
		t.Op = n.Op.Symbol
		t.Children = []*treeNode{buildTree(n.Cond), buildTree(n.WhenTrue), buildTree(n.WhenFalse)}
	default:
		t.Kind = "error"
	}

	return t
}
