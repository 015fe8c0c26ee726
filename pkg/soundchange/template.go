package soundchange

import (
	"strings"
)

// expandTemplate appends template to b, substituting back-references against
// the match loc in word:
//
//	$n, $nn, ${n}  capture n
//	$&             the whole match
//	$$             a literal $
//
// A reference to a capture that does not exist is copied through literally;
// a capture that did not take part in the match expands to nothing.
func expandTemplate(b *strings.Builder, template string, word string, loc []int) {
	groups := len(loc) / 2
	group := func(n int) string {
		if loc[2*n] < 0 || loc[2*n] > loc[2*n+1] || loc[2*n+1] > len(word) {
			return ""
		}
		return word[loc[2*n]:loc[2*n+1]]
	}
	for i := 0; i < len(template); i++ {
		c := template[i]
		if c != '$' || i+1 >= len(template) {
			b.WriteByte(c)
			continue
		}
		next := template[i+1]
		switch {
		case next == '$':
			b.WriteByte('$')
			i++
		case next == '&':
			b.WriteString(group(0))
			i++
		case next == '{':
			end := strings.IndexByte(template[i:], '}')
			if end < 0 {
				b.WriteByte(c)
				continue
			}
			n, ok := parseGroupNumber(template[i+2 : i+end])
			if !ok || n >= groups {
				b.WriteString(template[i : i+end+1])
			} else {
				b.WriteString(group(n))
			}
			i += end
		case isDigit(next):
			// Prefer a two-digit reference when that capture exists.
			if i+2 < len(template) && isDigit(template[i+2]) {
				if n := int(next-'0')*10 + int(template[i+2]-'0'); n > 0 && n < groups {
					b.WriteString(group(n))
					i += 2
					continue
				}
			}
			n := int(next - '0')
			if n == 0 || n >= groups {
				b.WriteByte(c)
				continue
			}
			b.WriteString(group(n))
			i++
		default:
			b.WriteByte(c)
		}
	}
}

func parseGroupNumber(s string) (int, bool) {
	if s == "" || len(s) > 3 {
		return 0, false
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return 0, false
		}
		n = n*10 + int(s[i]-'0')
	}
	return n, true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// escapeTemplate protects literal text from back-reference expansion.
func escapeTemplate(s string) string {
	return strings.ReplaceAll(s, "$", "$$")
}
