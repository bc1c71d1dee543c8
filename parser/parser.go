// Package parser turns expression fragments embedded in a template into
// typed expression trees. The grammar is a nine level precedence cascade on
// top of the tokenizer package; every failure is funneled through a
// reporter.Reporter instead of crossing the package boundary as an error.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shibukawa/templex"
	"github.com/shibukawa/templex/operators"
	"github.com/shibukawa/templex/reporter"
	"github.com/shibukawa/templex/tokenizer"
)

// reservedInjectedName is the variable name reserved for injected data.
const reservedInjectedName = "ij"

// maxNestingDepth bounds expression nesting so hostile input cannot exhaust
// the goroutine stack.
const maxNestingDepth = 500

// Diagnostic kinds reported by the parser.
var (
	KindInvalidExpression = reporter.NewKind("invalid expression: %v")
	KindInvalidVariable   = reporter.NewKind("invalid variable: %v")
	KindInvalidGlobal     = reporter.NewKind("invalid global: %v")
	KindReservedName      = reporter.NewKind("%q is reserved for injected data and cannot be used as a variable name")
	KindBareMapKey        = reporter.NewKind("map literal key %q must be a quoted string or a parenthesized expression")
)

// Parser parses one expression fragment. An instance is bound to a single
// input, one parent location, and one reporter; create a new Parser per
// fragment and discard it after calling exactly one of the Parse methods.
//
// The parent location is where the fragment sits inside its enclosing file;
// all locations attached to nodes and diagnostics are translated into the
// enclosing file's coordinate space.
type Parser struct {
	input  string
	parent templex.Location
	errs   *reporter.Reporter

	tokens []tokenizer.Token
	cursor int
	depth  int
}

// New creates a parser for one expression fragment.
func New(input string, parent templex.Location, errs *reporter.Reporter) *Parser {
	return &Parser{input: input, parent: parent, errs: errs}
}

// ParseExpressionList parses a comma separated list of one or more
// expressions. On a hard failure exactly one diagnostic is reported and the
// result is nil; the result is never nil otherwise.
func (p *Parser) ParseExpressionList() []Node {
	if err := p.lex(); err != nil {
		p.errs.Report(p.parent, KindInvalidExpression, err)
		return nil
	}

	list, err := p.parseExprList()
	if err == nil {
		err = p.expectEOF()
	}

	if err != nil {
		p.errs.Report(p.parent, KindInvalidExpression, err)
		return nil
	}

	return list
}

// ParseExpression parses a single expression covering the whole fragment.
// On a hard failure exactly one diagnostic is reported and ErrorExpr is
// returned.
func (p *Parser) ParseExpression() Node {
	if err := p.lex(); err != nil {
		p.errs.Report(p.parent, KindInvalidExpression, err)
		return ErrorExpr
	}

	node, err := p.parseExpr()
	if err == nil {
		err = p.expectEOF()
	}

	if err != nil {
		p.errs.Report(p.parent, KindInvalidExpression, err)
		return ErrorExpr
	}

	return node
}

// ParseVariable parses a lone variable reference such as "$name". On a hard
// failure exactly one diagnostic is reported and ErrorVar is returned. Using
// the reserved name "$ij" reports a diagnostic but still yields a regular
// VarNode named "ij".
func (p *Parser) ParseVariable() *VarNode {
	if err := p.lex(); err != nil {
		p.errs.Report(p.parent, KindInvalidVariable, err)
		return ErrorVar
	}

	node, err := p.parseVariable()
	if err == nil {
		err = p.expectEOF()
	}

	if err != nil {
		p.errs.Report(p.parent, KindInvalidVariable, err)
		return ErrorVar
	}

	return node
}

// ParseGlobal parses a dotted global name covering the whole fragment. On a
// hard failure exactly one diagnostic is reported and ErrorGlobal is
// returned.
func (p *Parser) ParseGlobal() *GlobalNode {
	if err := p.lex(); err != nil {
		p.errs.Report(p.parent, KindInvalidGlobal, err)
		return ErrorGlobal
	}

	node, err := p.parseGlobal()
	if err == nil {
		err = p.expectEOF()
	}

	if err != nil {
		p.errs.Report(p.parent, KindInvalidGlobal, err)
		return ErrorGlobal
	}

	return node
}

// lex tokenizes the whole fragment up front; the cascade works on the token
// slice with a cursor and bounded lookahead.
func (p *Parser) lex() error {
	tokens, err := tokenizer.New(p.input).AllTokens()
	if err != nil {
		return err
	}

	p.tokens = tokens
	p.cursor = 0

	return nil
}

// next returns the current token and advances, except at EOF which is sticky.
func (p *Parser) next() tokenizer.Token {
	tok := p.tokens[p.cursor]
	if tok.Type != tokenizer.EOF {
		p.cursor++
	}

	return tok
}

// peek returns the current token without consuming it.
func (p *Parser) peek() tokenizer.Token {
	return p.tokens[p.cursor]
}

// peekAt returns the token offset positions ahead of the cursor, saturating
// at EOF.
func (p *Parser) peekAt(offset int) tokenizer.Token {
	idx := p.cursor + offset
	if idx >= len(p.tokens) {
		idx = len(p.tokens) - 1
	}

	return p.tokens[idx]
}

// expect consumes the next token and guarantees it has the required type.
func (p *Parser) expect(typ tokenizer.TokenType, context string) (tokenizer.Token, error) {
	tok := p.next()
	if tok.Type != typ {
		return tokenizer.Token{}, p.unexpectedToken(tok, context)
	}

	return tok, nil
}

func (p *Parser) unexpectedToken(tok tokenizer.Token, context string) error {
	if tok.Type == tokenizer.EOF {
		return fmt.Errorf("%w in %s", templex.ErrUnexpectedEOF, context)
	}

	return fmt.Errorf("%w: %q in %s", templex.ErrUnexpectedToken, tok.Value, context)
}

// expectEOF enforces that the entire fragment was consumed.
func (p *Parser) expectEOF() error {
	if tok := p.peek(); tok.Type != tokenizer.EOF {
		return fmt.Errorf("%w: %q", templex.ErrTrailingTokens, tok.Value)
	}

	return nil
}

// ExprList -> Expr ( "," Expr )*
func (p *Parser) parseExprList() ([]Node, error) {
	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	list := []Node{first}

	for p.peek().Type == tokenizer.COMMA {
		p.next()

		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		list = append(list, expr)
	}

	return list, nil
}

// Level 1: Expr -> Or ( "?:" Expr | "?" Expr ":" Expr )?
// Both forms are right associative, so the right operands recurse on this
// same level.
func (p *Parser) parseExpr() (Node, error) {
	if p.depth++; p.depth > maxNestingDepth {
		return nil, fmt.Errorf("%w: more than %d levels", templex.ErrNestingTooDeep, maxNestingDepth)
	}
	defer func() { p.depth-- }()

	left, err := p.parseOr()
	if err != nil {
		return nil, err
	}

	switch p.peek().Type {
	case tokenizer.NULL_COALESCING:
		tok := p.next()

		right, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		return p.newBinaryOp(tok.Value, 1, left, right), nil
	case tokenizer.QUESTION:
		p.next()

		whenTrue, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(tokenizer.COLON, "conditional expression"); err != nil {
			return nil, err
		}

		whenFalse, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		return p.newConditionalOp(1, left, whenTrue, whenFalse), nil
	default:
		return left, nil
	}
}

// Level 2: Or -> And ( "or" And )*
func (p *Parser) parseOr() (Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for p.peek().Type == tokenizer.OR {
		tok := p.next()

		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}

		left = p.newBinaryOp(tok.Value, 2, left, right)
	}

	return left, nil
}

// Level 3: And -> Equality ( "and" Equality )*
func (p *Parser) parseAnd() (Node, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}

	for p.peek().Type == tokenizer.AND {
		tok := p.next()

		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}

		left = p.newBinaryOp(tok.Value, 3, left, right)
	}

	return left, nil
}

// Level 4: Equality -> Comparison ( ( "==" | "!=" ) Comparison )*
func (p *Parser) parseEquality() (Node, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}

	for {
		switch p.peek().Type {
		case tokenizer.EQUAL, tokenizer.NOT_EQUAL:
			tok := p.next()

			right, err := p.parseComparison()
			if err != nil {
				return nil, err
			}

			left = p.newBinaryOp(tok.Value, 4, left, right)
		default:
			return left, nil
		}
	}
}

// Level 5: Comparison -> Additive ( ( "<" | ">" | "<=" | ">=" ) Additive )*
func (p *Parser) parseComparison() (Node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}

	for {
		switch p.peek().Type {
		case tokenizer.LESS_THAN, tokenizer.GREATER_THAN, tokenizer.LESS_EQUAL, tokenizer.GREATER_EQUAL:
			tok := p.next()

			right, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}

			left = p.newBinaryOp(tok.Value, 5, left, right)
		default:
			return left, nil
		}
	}
}

// Level 6: Additive -> Multiplicative ( ( "+" | "-" ) Multiplicative )*
// A MINUS here is always binary: it follows a complete left operand. The
// prefix form is handled at level 8 and resolved by arity in the registry.
func (p *Parser) parseAdditive() (Node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}

	for {
		switch p.peek().Type {
		case tokenizer.PLUS, tokenizer.MINUS:
			tok := p.next()

			right, err := p.parseMultiplicative()
			if err != nil {
				return nil, err
			}

			left = p.newBinaryOp(tok.Value, 6, left, right)
		default:
			return left, nil
		}
	}
}

// Level 7: Multiplicative -> Unary ( ( "*" | "/" | "%" ) Unary )*
func (p *Parser) parseMultiplicative() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		switch p.peek().Type {
		case tokenizer.MULTIPLY, tokenizer.DIVIDE, tokenizer.MODULO:
			tok := p.next()

			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}

			left = p.newBinaryOp(tok.Value, 7, left, right)
		default:
			return left, nil
		}
	}
}

// Level 8: Unary -> ( "-" | "not" ) Unary | Access
// Prefix operators bind looser than access chains: -$a.b negates the whole
// field access.
func (p *Parser) parseUnary() (Node, error) {
	switch p.peek().Type {
	case tokenizer.MINUS, tokenizer.NOT:
		// Each prefix operator adds a stack frame of its own, so it counts
		// against the same nesting budget as parseExpr.
		if p.depth++; p.depth > maxNestingDepth {
			return nil, fmt.Errorf("%w: more than %d levels", templex.ErrNestingTooDeep, maxNestingDepth)
		}
		defer func() { p.depth-- }()

		tok := p.next()

		arg, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		return p.newUnaryOp(tok, 8, arg), nil
	default:
		return p.parseAccess()
	}
}

// Level 9: Access -> Primary ( DOT_IDENT | QUESTION_DOT_IDENT
//
//	| "[" Expr "]" | "?[" Expr "]" )*
//
// Steps apply left to right, each wrapping the previous result.
func (p *Parser) parseAccess() (Node, error) {
	node, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		switch p.peek().Type {
		case tokenizer.DOT_IDENT:
			tok := p.next()
			node = &FieldAccessNode{
				base:  base{Loc: node.Location().Extend(p.tokenLocation(tok))},
				Base:  node,
				Field: tok.Value[1:],
			}
		case tokenizer.QUESTION_DOT_IDENT:
			tok := p.next()
			node = &FieldAccessNode{
				base:     base{Loc: node.Location().Extend(p.tokenLocation(tok))},
				Base:     node,
				Field:    tok.Value[2:],
				NullSafe: true,
			}
		case tokenizer.OPENED_BRACKET, tokenizer.QUESTION_BRACKET:
			open := p.next()

			key, err := p.parseExpr()
			if err != nil {
				return nil, err
			}

			closeTok, err := p.expect(tokenizer.CLOSED_BRACKET, "item access")
			if err != nil {
				return nil, err
			}

			node = &ItemAccessNode{
				base:     base{Loc: node.Location().Extend(p.span(open, closeTok))},
				Base:     node,
				Key:      key,
				NullSafe: open.Type == tokenizer.QUESTION_BRACKET,
			}
		default:
			return node, nil
		}
	}
}

// Primary -> "(" Expr ")" | FunctionCall | DataRef | Global
//
//	| ListLiteral | MapLiteral | Primitive
func (p *Parser) parsePrimary() (Node, error) {
	tok := p.next()

	switch tok.Type {
	case tokenizer.OPENED_PARENS:
		node, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(tokenizer.CLOSED_PARENS, "parenthesized expression"); err != nil {
			return nil, err
		}

		return node, nil
	case tokenizer.NULL:
		return &NullNode{base: p.tokenBase(tok)}, nil
	case tokenizer.BOOLEAN:
		return &BoolNode{base: p.tokenBase(tok), Value: tok.Value == "true"}, nil
	case tokenizer.INTEGER:
		value, err := parseInt(tok.Value)
		if err != nil {
			return nil, err
		}

		return &IntNode{base: p.tokenBase(tok), Value: value}, nil
	case tokenizer.FLOAT:
		value, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", templex.ErrInvalidNumber, err)
		}

		return &FloatNode{base: p.tokenBase(tok), Value: value}, nil
	case tokenizer.STRING:
		value, err := tokenizer.Unquote(tok.Value)
		if err != nil {
			return nil, err
		}

		return &StringNode{base: p.tokenBase(tok), Value: value}, nil
	case tokenizer.DOLLAR_IDENT:
		return p.parseDataRef(tok), nil
	case tokenizer.IDENT:
		if p.peek().Type == tokenizer.OPENED_PARENS {
			return p.parseFunctionCall(tok)
		}

		return p.parseGlobalRest(tok), nil
	case tokenizer.OPENED_BRACKET:
		return p.parseListOrMap(tok)
	default:
		return nil, p.unexpectedToken(tok, "expression")
	}
}

// parseDataRef builds the variable reference rooted at a DOLLAR_IDENT token.
// The explicit injected form "$ij." followed by an identifier names injected
// data; a bare "$ij" is a reserved name and reported as a soft diagnostic.
// Access steps after either form are handled by the level 9 rule.
func (p *Parser) parseDataRef(tok tokenizer.Token) *VarNode {
	name := tok.Value[1:]
	if name != reservedInjectedName {
		return &VarNode{base: p.tokenBase(tok), Name: name}
	}

	if p.peek().Type == tokenizer.DOT_IDENT {
		field := p.next()

		return &VarNode{base: base{Loc: p.span(tok, field)}, Name: field.Value[1:], Injected: true}
	}

	p.errs.Report(p.tokenLocation(tok), KindReservedName, name)

	return &VarNode{base: p.tokenBase(tok), Name: name}
}

// parseVariable is the production behind ParseVariable: a lone DOLLAR_IDENT.
func (p *Parser) parseVariable() (*VarNode, error) {
	tok, err := p.expect(tokenizer.DOLLAR_IDENT, "variable")
	if err != nil {
		return nil, err
	}

	name := tok.Value[1:]
	if name == reservedInjectedName {
		p.errs.Report(p.tokenLocation(tok), KindReservedName, name)
	}

	return &VarNode{base: p.tokenBase(tok), Name: name}, nil
}

// parseGlobal is the production behind ParseGlobal.
func (p *Parser) parseGlobal() (*GlobalNode, error) {
	first, err := p.expect(tokenizer.IDENT, "global")
	if err != nil {
		return nil, err
	}

	return p.parseGlobalRest(first), nil
}

// parseGlobalRest greedily extends a global with every following DOT_IDENT.
// "AAA.bbb.CCC" is one global, never a field access on a shorter one; the
// node's span covers all constituent identifiers.
func (p *Parser) parseGlobalRest(first tokenizer.Token) *GlobalNode {
	name := first.Value
	last := first

	for p.peek().Type == tokenizer.DOT_IDENT {
		tok := p.next()
		name += tok.Value
		last = tok
	}

	return &GlobalNode{base: base{Loc: p.span(first, last)}, Name: name}
}

// FunctionCall -> IDENT "(" ( Expr ( "," Expr )* )? ")"
// The IDENT has been consumed; the lookahead "(" decided this is a call.
func (p *Parser) parseFunctionCall(name tokenizer.Token) (Node, error) {
	p.next()

	var args []Node

	if p.peek().Type != tokenizer.CLOSED_PARENS {
		for {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}

			args = append(args, arg)

			if p.peek().Type != tokenizer.COMMA {
				break
			}

			p.next()
		}
	}

	closeTok, err := p.expect(tokenizer.CLOSED_PARENS, "function call")
	if err != nil {
		return nil, err
	}

	return &FunctionNode{base: base{Loc: p.span(name, closeTok)}, Name: name.Value, Args: args}, nil
}

// parseListOrMap disambiguates the two bracket literals after the opening
// "[" was consumed: "]" is the empty list, ":" the empty map, and otherwise
// the token after the first expression decides.
func (p *Parser) parseListOrMap(open tokenizer.Token) (Node, error) {
	switch p.peek().Type {
	case tokenizer.CLOSED_BRACKET:
		closeTok := p.next()

		return &ListNode{base: base{Loc: p.span(open, closeTok)}, Items: []Node{}}, nil
	case tokenizer.COLON:
		p.next()

		closeTok, err := p.expect(tokenizer.CLOSED_BRACKET, "map literal")
		if err != nil {
			return nil, err
		}

		return &MapNode{base: base{Loc: p.span(open, closeTok)}, Entries: []MapEntry{}}, nil
	}

	p.checkBareMapKey()

	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if p.peek().Type == tokenizer.COLON {
		return p.parseMapRest(open, first)
	}

	return p.parseListRest(open, first)
}

// ListLiteral -> "[" Expr ( "," Expr )* ","? "]"
func (p *Parser) parseListRest(open tokenizer.Token, first Node) (Node, error) {
	items := []Node{first}

	for p.peek().Type == tokenizer.COMMA {
		p.next()

		// trailing comma
		if p.peek().Type == tokenizer.CLOSED_BRACKET {
			break
		}

		item, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		items = append(items, item)
	}

	closeTok, err := p.expect(tokenizer.CLOSED_BRACKET, "list literal")
	if err != nil {
		return nil, err
	}

	return &ListNode{base: base{Loc: p.span(open, closeTok)}, Items: items}, nil
}

// MapLiteral -> "[" Expr ":" Expr ( "," Expr ":" Expr )* ","? "]"
func (p *Parser) parseMapRest(open tokenizer.Token, firstKey Node) (Node, error) {
	p.next()

	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	entries := []MapEntry{{Key: firstKey, Value: value}}

	for p.peek().Type == tokenizer.COMMA {
		p.next()

		// trailing comma
		if p.peek().Type == tokenizer.CLOSED_BRACKET {
			break
		}

		p.checkBareMapKey()

		key, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(tokenizer.COLON, "map literal"); err != nil {
			return nil, err
		}

		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		entries = append(entries, MapEntry{Key: key, Value: value})
	}

	closeTok, err := p.expect(tokenizer.CLOSED_BRACKET, "map literal")
	if err != nil {
		return nil, err
	}

	return &MapNode{base: base{Loc: p.span(open, closeTok)}, Entries: entries}, nil
}

// checkBareMapKey reports a bare identifier directly before ":" in key
// position: it is ambiguous between a misspelled quoted string and a global.
// Parsing continues and the identifier becomes a single-name global key.
func (p *Parser) checkBareMapKey() {
	if p.peek().Type == tokenizer.IDENT && p.peekAt(1).Type == tokenizer.COLON {
		tok := p.peek()
		p.errs.Report(p.tokenLocation(tok), KindBareMapKey, tok.Value)
	}
}

// newBinaryOp builds a binary operator node, asserting the registry agrees
// with the grammar level the call site sits at.
func (p *Parser) newBinaryOp(symbol string, level int, left, right Node) Node {
	def := mustLookup(symbol, 2, level)

	return &BinaryOpNode{
		base: base{Loc: left.Location().Extend(right.Location())},
		Op:   def,
		Arg1: left,
		Arg2: right,
	}
}

func (p *Parser) newUnaryOp(tok tokenizer.Token, level int, arg Node) Node {
	def := mustLookup(tok.Value, 1, level)

	return &UnaryOpNode{
		base: base{Loc: p.tokenLocation(tok).Extend(arg.Location())},
		Op:   def,
		Arg:  arg,
	}
}

func (p *Parser) newConditionalOp(level int, cond, whenTrue, whenFalse Node) Node {
	def := mustLookup("? :", 3, level)

	return &ConditionalOpNode{
		base:      base{Loc: cond.Location().Extend(whenFalse.Location())},
		Op:        def,
		Cond:      cond,
		WhenTrue:  whenTrue,
		WhenFalse: whenFalse,
	}
}

// mustLookup resolves an operator and asserts that the grammar rule calling
// it agrees with the registry's precedence. A mismatch is a defect in this
// package rather than bad user input, so it panics.
func mustLookup(symbol string, arity, level int) operators.Def {
	def, ok := operators.Lookup(symbol, arity)
	if !ok {
		panic(fmt.Sprintf("parser: operator %q/%d is not registered", symbol, arity))
	}

	if def.Precedence != level {
		panic(fmt.Sprintf("parser: operator %q/%d is registered at precedence %d but used at level %d",
			symbol, arity, def.Precedence, level))
	}

	return def
}

func parseInt(text string) (int64, error) {
	var (
		value int64
		err   error
	)

	if strings.HasPrefix(text, "0x") {
		value, err = strconv.ParseInt(text[2:], 16, 64)
	} else {
		value, err = strconv.ParseInt(text, 10, 64)
	}

	if err != nil {
		return 0, fmt.Errorf("%w: %v", templex.ErrInvalidNumber, err)
	}

	return value, nil
}

// span translates the fragment-relative range covered by from..to into the
// enclosing file's coordinates using the parent location. An unknown parent
// yields Unknown.
func (p *Parser) span(from, to tokenizer.Token) templex.Location {
	if !p.parent.IsKnown() {
		return templex.Unknown
	}

	loc := templex.Location{FilePath: p.parent.FilePath}
	loc.BeginLine, loc.BeginColumn = p.translate(from.Start.Line, from.Start.Column)
	// Token End points just past the last rune, which never crosses a line.
	loc.EndLine, loc.EndColumn = p.translate(to.End.Line, to.End.Column-1)

	return loc
}

func (p *Parser) tokenLocation(tok tokenizer.Token) templex.Location {
	return p.span(tok, tok)
}

func (p *Parser) tokenBase(tok tokenizer.Token) base {
	return base{Loc: p.tokenLocation(tok)}
}

// translate maps a 1-based fragment line/column onto the parent location.
// Only the fragment's first line is shifted by the parent column; later
// lines already start at column 1 of their own file line.
func (p *Parser) translate(line, column int) (int, int) {
	if line == 1 {
		return p.parent.BeginLine, p.parent.BeginColumn + column - 1
	}

	return p.parent.BeginLine + line - 1, column
}
