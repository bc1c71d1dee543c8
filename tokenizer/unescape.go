package tokenizer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shibukawa/templex"
)

// Unquote strips the surrounding single quotes from a STRING token's text and
// translates its escape sequences into literal characters.
func Unquote(raw string) (string, error) {
	if len(raw) < 2 || raw[0] != '\'' || raw[len(raw)-1] != '\'' {
		return "", fmt.Errorf("%w: %q is not a single-quoted string", templex.ErrInvalidEscape, raw)
	}

	return Unescape(raw[1 : len(raw)-1])
}

// Unescape translates backslash escape sequences in s. Supported escapes are
// \\ \' \" \n \r \t \b \f and \u followed by exactly four hex digits.
func Unescape(s string) (string, error) {
	if !strings.ContainsRune(s, '\\') {
		return s, nil
	}

	runes := []rune(s)

	var builder strings.Builder

	for i := 0; i < len(runes); i++ {
		if runes[i] != '\\' {
			builder.WriteRune(runes[i])
			continue
		}

		i++
		if i >= len(runes) {
			return "", fmt.Errorf("%w: dangling backslash", templex.ErrInvalidEscape)
		}

		switch runes[i] {
		case '\\':
			builder.WriteRune('\\')
		case '\'':
			builder.WriteRune('\'')
		case '"':
			builder.WriteRune('"')
		case 'n':
			builder.WriteRune('\n')
		case 'r':
			builder.WriteRune('\r')
		case 't':
			builder.WriteRune('\t')
		case 'b':
			builder.WriteRune('\b')
		case 'f':
			builder.WriteRune('\f')
		case 'u':
			if i+4 >= len(runes) {
				return "", fmt.Errorf("%w: \\u requires four hex digits", templex.ErrInvalidEscape)
			}

			code, err := strconv.ParseUint(string(runes[i+1:i+5]), 16, 32)
			if err != nil {
				return "", fmt.Errorf("%w: \\u requires four hex digits", templex.ErrInvalidEscape)
			}

			// Surrogate code points are not valid runes; WriteRune would
			// silently turn them into U+FFFD.
			if code >= 0xD800 && code <= 0xDFFF {
				return "", fmt.Errorf("%w: \\u%04X is a surrogate code point", templex.ErrInvalidEscape, code)
			}

			builder.WriteRune(rune(code))

			i += 4
		default:
			return "", fmt.Errorf("%w: \\%c", templex.ErrInvalidEscape, runes[i])
		}
	}

	return builder.String(), nil
}
