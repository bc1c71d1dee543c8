package templex

import "errors"

// Common errors used throughout the templex package
var (
	// Tokenizer errors

	// ErrUnexpectedCharacter indicates the lexer encountered a character that starts no token.
	ErrUnexpectedCharacter = errors.New("unexpected character")
	// ErrUnterminatedString indicates a string literal was not properly terminated.
	ErrUnterminatedString = errors.New("unterminated string literal")
	// ErrNewlineInString indicates a raw newline or carriage return inside a string literal.
	ErrNewlineInString = errors.New("newline in string literal")
	// ErrInvalidNumber indicates an invalid numeric literal format.
	ErrInvalidNumber = errors.New("invalid number format")
	// ErrInvalidEscape indicates an unknown or malformed escape sequence in a string literal.
	ErrInvalidEscape = errors.New("invalid escape sequence")

	// Parser errors

	// ErrUnexpectedToken indicates the parser found a token that no grammar rule accepts.
	ErrUnexpectedToken = errors.New("unexpected token")
	// ErrUnexpectedEOF indicates the expression ended in the middle of a grammar rule.
	ErrUnexpectedEOF = errors.New("unexpected end of expression")
	// ErrTrailingTokens indicates input remained after a complete expression was consumed.
	ErrTrailingTokens = errors.New("trailing tokens after expression")
	// ErrNestingTooDeep indicates the expression exceeded the maximum nesting depth.
	ErrNestingTooDeep = errors.New("expression nesting too deep")

	// CLI errors

	// ErrParseFailed is returned by the CLI when an expression produced diagnostics.
	ErrParseFailed = errors.New("expression could not be parsed")
)
