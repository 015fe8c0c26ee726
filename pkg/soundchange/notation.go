package soundchange

import (
	"strings"
	"unicode/utf8"
)

// TokenKind classifies the pieces of a parsed notation string.
type TokenKind int

const (
	RawToken     TokenKind = iota // pattern text, copied into patterns and templates as is
	LiteralToken                  // text that stands for itself (escapes, %%)
	SpanToken                     // an opaque [...] or {...} span
	GroupToken                    // a %X or !%X reference to a known group
)

func (k TokenKind) String() string {
	switch k {
	case RawToken:
		return "raw"
	case LiteralToken:
		return "literal"
	case SpanToken:
		return "span"
	case GroupToken:
		return "group"
	}
	return "?"
}

// Token is one element of a parsed notation string.
type Token struct {
	Kind    TokenKind
	Text    string // source text for raw, literal and span tokens
	Label   string // group label, for group tokens
	Run     Run    // group members, for group tokens
	Negated bool   // true for !%X
}

// Notation is a notation string parsed against a set of groups.
type Notation []Token

// HasGroups reports whether n references at least one known group.
func (n Notation) HasGroups() bool {
	for _, tok := range n {
		if tok.Kind == GroupToken {
			return true
		}
	}
	return false
}

// GroupTokens returns the group references of n in order of appearance.
func (n Notation) GroupTokens() []Token {
	var groups []Token
	for _, tok := range n {
		if tok.Kind == GroupToken {
			groups = append(groups, tok)
		}
	}
	return groups
}

// ParseNotation splits a notation string into tokens. Parsing never fails:
// unknown labels are kept as raw text and unterminated spans are closed.
func ParseNotation(input string, groups *Groups) Notation {
	s := &notationScanner{input: input, groups: groups}
	return s.scan()
}

type notationScanner struct {
	input    string
	position int
	groups   *Groups
	tokens   Notation
}

func (s *notationScanner) scan() Notation {
	for s.hasMoreInput() {
		r, _ := s.peek()
		switch r {
		case '\\':
			s.consume()
			if !s.hasMoreInput() {
				s.emit(LiteralToken, `\`)
				continue
			}
			s.emit(LiteralToken, string(s.consume()))
		case '%':
			if r2, ok := s.peekN(2); ok && r2 == '%' {
				s.advance(2)
				s.emit(LiteralToken, "%")
				continue
			}
			s.consume()
			if !s.matchGroup(false) {
				s.emit(RawToken, "%")
			}
		case '!':
			r2, ok2 := s.peekN(2)
			r3, ok3 := s.peekN(3)
			if ok2 && r2 == '%' && !(ok3 && r3 == '%') {
				s.advance(2)
				if !s.matchGroup(true) {
					s.emit(RawToken, "!%")
				}
				continue
			}
			s.consume()
			s.emit(RawToken, "!")
		case '[':
			s.scanSpan(']')
		case '{':
			s.scanSpan('}')
		default:
			s.consume()
			s.emit(RawToken, string(r))
		}
	}
	return s.tokens
}

// matchGroup tries to read a group label at the current position.
func (s *notationScanner) matchGroup(negated bool) bool {
	label := firstGrapheme(s.input[s.position:])
	if label == "" {
		return false
	}
	group, ok := s.groups.Lookup(label)
	if !ok {
		return false
	}
	s.advance(len(label))
	s.tokens = append(s.tokens, Token{
		Kind:    GroupToken,
		Label:   group.Label,
		Run:     group.Run,
		Negated: negated,
	})
	return true
}

// scanSpan copies a bracketed span verbatim, honouring backslash escapes, and
// supplies the closing bracket when the input ends first.
func (s *notationScanner) scanSpan(closer rune) {
	var text strings.Builder
	text.WriteRune(s.consume())
	for {
		if !s.hasMoreInput() {
			text.WriteRune(closer)
			break
		}
		r := s.consume()
		text.WriteRune(r)
		if r == '\\' && s.hasMoreInput() {
			text.WriteRune(s.consume())
			continue
		}
		if r == closer {
			break
		}
	}
	s.tokens = append(s.tokens, Token{Kind: SpanToken, Text: text.String()})
}

// emit appends text, merging it into the previous token when the kinds agree.
func (s *notationScanner) emit(kind TokenKind, text string) {
	if n := len(s.tokens); n > 0 && s.tokens[n-1].Kind == kind && kind != SpanToken && kind != GroupToken {
		s.tokens[n-1].Text += text
		return
	}
	s.tokens = append(s.tokens, Token{Kind: kind, Text: text})
}

func (s *notationScanner) advance(n int) {
	s.position += n
	if s.position > len(s.input) {
		s.position = len(s.input)
	}
}

func (s *notationScanner) peek() (rune, bool) {
	if s.position >= len(s.input) {
		return rune(0), false
	}
	r, b := utf8.DecodeRuneInString(s.input[s.position:])
	return r, b > 0
}

func (s *notationScanner) peekN(n int) (rune, bool) {
	pos := s.position
	var r rune
	var size int
	for range n {
		if pos >= len(s.input) {
			return 0, false
		}
		r, size = utf8.DecodeRuneInString(s.input[pos:])
		pos += size
	}
	return r, true
}

func (s *notationScanner) consume() rune {
	r, ok := s.peek()
	if !ok {
		return r
	}
	_, size := utf8.DecodeRuneInString(s.input[s.position:])
	s.advance(size)
	return r
}

func (s *notationScanner) hasMoreInput() bool {
	return s.position < len(s.input)
}
