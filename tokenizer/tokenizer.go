package tokenizer

import (
	"fmt"
	"iter"
	"strings"
	"unicode/utf8"

	"github.com/shibukawa/templex"
)

// TokenIterator uses Go 1.24 iterator pattern
type TokenIterator iter.Seq2[Token, error]

// Tokenizer converts an expression fragment into a token stream.
// Whitespace (space, tab, CR, LF) separates tokens and is never emitted.
type Tokenizer struct {
	input string
}

// New creates a new Tokenizer for the given fragment
func New(input string) *Tokenizer {
	return &Tokenizer{input: input}
}

// Tokens returns an iterator of tokens. The iterator stops after yielding the
// EOF token, or after yielding the first lexical error.
func (t *Tokenizer) Tokens() TokenIterator {
	return func(yield func(Token, error) bool) {
		s := newScanner(t.input)

		for {
			token, err := s.nextToken()
			if err != nil {
				yield(Token{}, err)
				return
			}

			if !yield(token, nil) {
				return
			}

			if token.Type == EOF {
				return
			}
		}
	}
}

// AllTokens gets all tokens as a slice, ending with the EOF token.
// A lexical failure returns the tokens read so far together with the error.
func (t *Tokenizer) AllTokens() ([]Token, error) {
	tokens := make([]Token, 0, 16)

	for token, err := range t.Tokens() {
		if err != nil {
			return tokens, err
		}

		tokens = append(tokens, token)
		if token.Type == EOF {
			break
		}
	}

	return tokens, nil
}

// Internal scanner implementation
type scanner struct {
	input   string
	pos     int
	width   int
	line    int
	column  int
	current rune
}

func newScanner(input string) *scanner {
	s := &scanner{input: input, line: 1, column: 1}
	if len(input) > 0 {
		s.current, s.width = utf8.DecodeRuneInString(input)
	}

	return s
}

// nextToken gets the next token
func (s *scanner) nextToken() (Token, error) {
	s.skipWhitespace()

	start := s.position()

	switch s.current {
	case 0:
		// The scanner uses rune 0 as its end-of-input marker; a literal NUL
		// byte in the fragment matches no token rule.
		if s.atEOF() {
			return Token{Type: EOF, Start: start, End: start}, nil
		}

		return Token{}, s.unexpected(start)
	case '(':
		return s.single(OPENED_PARENS, start), nil
	case ')':
		return s.single(CLOSED_PARENS, start), nil
	case '[':
		return s.single(OPENED_BRACKET, start), nil
	case ']':
		return s.single(CLOSED_BRACKET, start), nil
	case ',':
		return s.single(COMMA, start), nil
	case ':':
		return s.single(COLON, start), nil
	case '+':
		return s.single(PLUS, start), nil
	case '-':
		return s.single(MINUS, start), nil
	case '*':
		return s.single(MULTIPLY, start), nil
	case '/':
		return s.single(DIVIDE, start), nil
	case '%':
		return s.single(MODULO, start), nil
	case '=':
		if s.peekChar() == '=' {
			s.readChar()
			s.readChar()

			return s.token(EQUAL, "==", start), nil
		}

		return Token{}, s.unexpected(start)
	case '!':
		if s.peekChar() == '=' {
			s.readChar()
			s.readChar()

			return s.token(NOT_EQUAL, "!=", start), nil
		}

		return Token{}, s.unexpected(start)
	case '<':
		if s.peekChar() == '=' {
			s.readChar()
			s.readChar()

			return s.token(LESS_EQUAL, "<=", start), nil
		}

		return s.single(LESS_THAN, start), nil
	case '>':
		if s.peekChar() == '=' {
			s.readChar()
			s.readChar()

			return s.token(GREATER_EQUAL, ">=", start), nil
		}

		return s.single(GREATER_THAN, start), nil
	case '?':
		switch s.peekChar() {
		case ':':
			s.readChar()
			s.readChar()

			return s.token(NULL_COALESCING, "?:", start), nil
		case '[':
			s.readChar()
			s.readChar()

			return s.token(QUESTION_BRACKET, "?[", start), nil
		case '.':
			s.readChar()

			return s.dotIdent(QUESTION_DOT_IDENT, "?.", start)
		default:
			return s.single(QUESTION, start), nil
		}
	case '.':
		return s.dotIdent(DOT_IDENT, ".", start)
	case '$':
		s.readChar()

		if !isIdentStart(s.current) {
			return Token{}, fmt.Errorf("%w: '$' must be followed by an identifier at line %d, column %d",
				templex.ErrUnexpectedCharacter, start.Line, start.Column)
		}

		return s.token(DOLLAR_IDENT, "$"+s.readIdent(), start), nil
	case '\'':
		return s.readString(start)
	default:
		if isIdentStart(s.current) {
			return s.readWord(start), nil
		}

		if isDigit(s.current) {
			return s.readNumber(start), nil
		}

		return Token{}, s.unexpected(start)
	}
}

// readChar reads the next character
func (s *scanner) readChar() {
	if s.current == '\n' {
		s.line++
		s.column = 1
	} else if s.current != 0 {
		s.column++
	}

	s.pos += s.width
	if s.pos >= len(s.input) {
		s.current = 0
		s.width = 0

		return
	}

	s.current, s.width = utf8.DecodeRuneInString(s.input[s.pos:])
}

// atEOF reports whether the scanner has consumed the whole input. It is the
// only way to tell end-of-input apart from a literal NUL rune.
func (s *scanner) atEOF() bool {
	return s.pos >= len(s.input)
}

// peekChar looks ahead at the next character
func (s *scanner) peekChar() rune {
	next := s.pos + s.width
	if next >= len(s.input) {
		return 0
	}

	r, _ := utf8.DecodeRuneInString(s.input[next:])

	return r
}

// peekSecond looks ahead two characters
func (s *scanner) peekSecond() rune {
	next := s.pos + s.width
	if next >= len(s.input) {
		return 0
	}

	_, w := utf8.DecodeRuneInString(s.input[next:])
	if next+w >= len(s.input) {
		return 0
	}

	r, _ := utf8.DecodeRuneInString(s.input[next+w:])

	return r
}

func (s *scanner) skipWhitespace() {
	for s.current == ' ' || s.current == '\t' || s.current == '\r' || s.current == '\n' {
		s.readChar()
	}
}

func (s *scanner) position() Position {
	return Position{Line: s.line, Column: s.column, Offset: s.pos}
}

// single consumes the current rune and returns it as a one-character token
func (s *scanner) single(typ TokenType, start Position) Token {
	value := string(s.current)
	s.readChar()

	return s.token(typ, value, start)
}

func (s *scanner) token(typ TokenType, value string, start Position) Token {
	return Token{Type: typ, Value: value, Start: start, End: s.position()}
}

func (s *scanner) unexpected(start Position) error {
	return fmt.Errorf("%w: %q at line %d, column %d",
		templex.ErrUnexpectedCharacter, s.current, start.Line, start.Column)
}

// dotIdent reads a DOT_IDENT or QUESTION_DOT_IDENT token. The '.' is the
// current rune; whitespace between it and the identifier is allowed but
// stripped from the stored value.
func (s *scanner) dotIdent(typ TokenType, prefix string, start Position) (Token, error) {
	s.readChar()
	s.skipWhitespace()

	if !isIdentStart(s.current) {
		return Token{}, fmt.Errorf("%w: expected identifier after %q at line %d, column %d",
			templex.ErrUnexpectedCharacter, prefix, start.Line, start.Column)
	}

	return s.token(typ, prefix+s.readIdent(), start), nil
}

func (s *scanner) readIdent() string {
	var builder strings.Builder
	for isIdentPart(s.current) {
		builder.WriteRune(s.current)
		s.readChar()
	}

	return builder.String()
}

// readWord reads identifiers and keywords
func (s *scanner) readWord(start Position) Token {
	word := s.readIdent()

	switch word {
	case "null":
		return s.token(NULL, word, start)
	case "true", "false":
		return s.token(BOOLEAN, word, start)
	case "and":
		return s.token(AND, word, start)
	case "or":
		return s.token(OR, word, start)
	case "not":
		return s.token(NOT, word, start)
	default:
		return s.token(IDENT, word, start)
	}
}

// readNumber reads integer and float literals. Hex integers require the '0x'
// prefix with a lowercase 'x' and uppercase hex digits; anything else falls
// back to a plain decimal integer so the remainder lexes on its own.
func (s *scanner) readNumber(start Position) Token {
	var builder strings.Builder

	if s.current == '0' && s.peekChar() == 'x' && isUpperHex(s.peekSecond()) {
		builder.WriteRune(s.current)
		s.readChar()
		builder.WriteRune(s.current)
		s.readChar()

		for isUpperHex(s.current) {
			builder.WriteRune(s.current)
			s.readChar()
		}

		return s.token(INTEGER, builder.String(), start)
	}

	for isDigit(s.current) {
		builder.WriteRune(s.current)
		s.readChar()
	}

	isFloat := false

	// Decimal part: digits are required on both sides of the point
	if s.current == '.' && isDigit(s.peekChar()) {
		isFloat = true

		builder.WriteRune(s.current)
		s.readChar()

		for isDigit(s.current) {
			builder.WriteRune(s.current)
			s.readChar()
		}
	}

	// Exponent part: lowercase 'e', optional sign, at least one digit
	if s.current == 'e' && (isDigit(s.peekChar()) ||
		((s.peekChar() == '+' || s.peekChar() == '-') && isDigit(s.peekSecond()))) {
		isFloat = true

		builder.WriteRune(s.current)
		s.readChar()

		if s.current == '+' || s.current == '-' {
			builder.WriteRune(s.current)
			s.readChar()
		}

		for isDigit(s.current) {
			builder.WriteRune(s.current)
			s.readChar()
		}
	}

	typ := INTEGER
	if isFloat {
		typ = FLOAT
	}

	return s.token(typ, builder.String(), start)
}

// readString reads a single-quoted string literal. The stored value keeps the
// surrounding quotes and the raw escape sequences; Unquote translates them.
func (s *scanner) readString(start Position) (Token, error) {
	var builder strings.Builder

	builder.WriteRune(s.current)
	s.readChar()

	for s.current != '\'' {
		switch {
		case s.atEOF():
			return Token{}, fmt.Errorf("%w at line %d, column %d",
				templex.ErrUnterminatedString, start.Line, start.Column)
		case s.current == '\n' || s.current == '\r':
			return Token{}, fmt.Errorf("%w at line %d, column %d",
				templex.ErrNewlineInString, start.Line, start.Column)
		case s.current == '\\':
			builder.WriteRune(s.current)
			s.readChar()

			if s.atEOF() {
				return Token{}, fmt.Errorf("%w at line %d, column %d",
					templex.ErrUnterminatedString, start.Line, start.Column)
			}

			if s.current == '\n' || s.current == '\r' {
				return Token{}, fmt.Errorf("%w at line %d, column %d",
					templex.ErrNewlineInString, start.Line, start.Column)
			}

			builder.WriteRune(s.current)
			s.readChar()
		default:
			builder.WriteRune(s.current)
			s.readChar()
		}
	}

	builder.WriteRune(s.current)
	s.readChar()

	return s.token(STRING, builder.String(), start), nil
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || isDigit(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isUpperHex(r rune) bool {
	return isDigit(r) || (r >= 'A' && r <= 'F')
}
