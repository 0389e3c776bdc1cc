package bridge

import (
	"fmt"
	"strings"
)

var templateEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"${", `\${`,
	"\r", `\r`,
)

// EscapeTemplateLiteral escapes s for use inside a backtick-delimited
// template literal. Besides backslash, backtick and the "${" opener, carriage
// returns are written as \r since template literals turn raw CR and CRLF
// into LF.
func EscapeTemplateLiteral(s string) string {
	return templateEscaper.Replace(s)
}

// UnescapeTemplateLiteral reverses EscapeTemplateLiteral. An unescaped
// backtick or a trailing lone backslash is an error. A raw CR or CRLF reads
// as LF, as it would in a browser.
func UnescapeTemplateLiteral(s string) (string, error) {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if i+1 == len(s) {
				return "", fmt.Errorf("%w: trailing backslash", ErrMalformedScript)
			}
			i++
			if s[i] == 'r' {
				b.WriteByte('\r')
			} else {
				b.WriteByte(s[i])
			}
		case '\r':
			if i+1 < len(s) && s[i+1] == '\n' {
				i++
			}
			b.WriteByte('\n')
		case '`':
			return "", fmt.Errorf("%w: unescaped backtick at %d", ErrMalformedScript, i)
		case '$':
			if i+1 < len(s) && s[i+1] == '{' {
				return "", fmt.Errorf("%w: unescaped interpolation at %d", ErrMalformedScript, i)
			}
			b.WriteByte('$')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String(), nil
}
