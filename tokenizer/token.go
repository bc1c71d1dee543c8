package tokenizer

// TokenType represents the type of a token
type TokenType int

const (
	// Basic tokens
	EOF TokenType = iota
	NULL
	BOOLEAN
	INTEGER
	FLOAT
	STRING
	IDENT
	DOLLAR_IDENT       // $name
	DOT_IDENT          // .name (whitespace between '.' and name is stripped)
	QUESTION_DOT_IDENT // ?.name (whitespace stripped the same way)

	// Word operators
	AND // and
	OR  // or
	NOT // not

	// Punctuation
	OPENED_PARENS    // (
	CLOSED_PARENS    // )
	OPENED_BRACKET   // [
	CLOSED_BRACKET   // ]
	QUESTION_BRACKET // ?[
	COMMA            // ,
	COLON            // :
	QUESTION         // ?
	NULL_COALESCING  // ?:

	// Comparison operators
	EQUAL         // ==
	NOT_EQUAL     // !=
	LESS_THAN     // <
	GREATER_THAN  // >
	LESS_EQUAL    // <=
	GREATER_EQUAL // >=

	// Arithmetic operators
	PLUS     // +
	MINUS    // -
	MULTIPLY // *
	DIVIDE   // /
	MODULO   // %
)

// String returns the string representation of TokenType
func (t TokenType) String() string {
	switch t {
	case EOF:
		return "EOF"
	case NULL:
		return "NULL"
	case BOOLEAN:
		return "BOOLEAN"
	case INTEGER:
		return "INTEGER"
	case FLOAT:
		return "FLOAT"
	case STRING:
		return "STRING"
	case IDENT:
		return "IDENT"
	case DOLLAR_IDENT:
		return "DOLLAR_IDENT"
	case DOT_IDENT:
		return "DOT_IDENT"
	case QUESTION_DOT_IDENT:
		return "QUESTION_DOT_IDENT"
	case AND:
		return "AND"
	case OR:
		return "OR"
	case NOT:
		return "NOT"
	case OPENED_PARENS:
		return "OPENED_PARENS"
	case CLOSED_PARENS:
		return "CLOSED_PARENS"
	case OPENED_BRACKET:
		return "OPENED_BRACKET"
	case CLOSED_BRACKET:
		return "CLOSED_BRACKET"
	case QUESTION_BRACKET:
		return "QUESTION_BRACKET"
	case COMMA:
		return "COMMA"
	case COLON:
		return "COLON"
	case QUESTION:
		return "QUESTION"
	case NULL_COALESCING:
		return "NULL_COALESCING"
	case EQUAL:
		return "EQUAL"
	case NOT_EQUAL:
		return "NOT_EQUAL"
	case LESS_THAN:
		return "LESS_THAN"
	case GREATER_THAN:
		return "GREATER_THAN"
	case LESS_EQUAL:
		return "LESS_EQUAL"
	case GREATER_EQUAL:
		return "GREATER_EQUAL"
	case PLUS:
		return "PLUS"
	case MINUS:
		return "MINUS"
	case MULTIPLY:
		return "MULTIPLY"
	case DIVIDE:
		return "DIVIDE"
	case MODULO:
		return "MODULO"
	default:
		return "UNKNOWN"
	}
}

// Position represents a position in the expression fragment.
// Line and Column are 1-based, Offset is the 0-based byte offset.
type Position struct {
	Line   int
	Column int
	Offset int
}

// Token represents a token. Start is the position of the first rune and End
// the position just past the last rune. Value holds the matched text, except
// for DOT_IDENT and QUESTION_DOT_IDENT where interior whitespace has already
// been stripped.
type Token struct {
	Type  TokenType
	Value string
	Start Position
	End   Position
}

// String returns the string representation of Token
func (t Token) String() string {
	return t.Type.String() + ": " + t.Value
}
