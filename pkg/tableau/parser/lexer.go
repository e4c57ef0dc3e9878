package parser

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent     // keyword, prefixed name, or bare local name
	tokFullIRI   // <...>
	tokAnonymous // _:name
	tokInteger
	tokString // quoted literal body, quotes stripped
	tokLParen
	tokRParen
	tokAssign     // := inside Prefix
	tokCaretCaret // ^^
	tokAt         // @
)

type token struct {
	kind tokenKind
	text string
	line int
	col  int
}

// lexer tokenizes functional-style syntax. Comments run from '#' to end of
// line, matching the W3C grammar.
type lexer struct {
	src  string
	pos  int
	line int
	col  int
}

func newLexer(src string) *lexer {
	return &lexer{src: src, line: 1, col: 1}
}

func (l *lexer) errorf(line, col int, format string, args ...any) error {
	return &ParseError{Line: line, Col: col, Msg: fmt.Sprintf(format, args...)}
}

func (l *lexer) advance() byte {
	c := l.src[l.pos]
	l.pos++
	if c == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return c
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == '#' {
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.advance()
			}
			continue
		}
		if c != ' ' && c != '\t' && c != '\r' && c != '\n' {
			return
		}
		l.advance()
	}
}

func (l *lexer) next() (token, error) {
	l.skipSpace()
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, line: l.line, col: l.col}, nil
	}
	line, col := l.line, l.col
	c := l.src[l.pos]

	switch {
	case c == '(':
		l.advance()
		return token{kind: tokLParen, text: "(", line: line, col: col}, nil
	case c == ')':
		l.advance()
		return token{kind: tokRParen, text: ")", line: line, col: col}, nil
	case c == '@':
		l.advance()
		return token{kind: tokAt, text: "@", line: line, col: col}, nil
	case c == '^':
		l.advance()
		if l.pos >= len(l.src) || l.src[l.pos] != '^' {
			return token{}, l.errorf(line, col, "lone '^'")
		}
		l.advance()
		return token{kind: tokCaretCaret, text: "^^", line: line, col: col}, nil
	case c == ':' && strings.HasPrefix(l.src[l.pos:], ":="):
		l.advance()
		l.advance()
		return token{kind: tokAssign, text: ":=", line: line, col: col}, nil
	case c == '<':
		l.advance()
		start := l.pos
		for l.pos < len(l.src) && l.src[l.pos] != '>' {
			if l.src[l.pos] == '\n' {
				return token{}, l.errorf(line, col, "unterminated IRI")
			}
			l.advance()
		}
		if l.pos >= len(l.src) {
			return token{}, l.errorf(line, col, "unterminated IRI")
		}
		text := l.src[start:l.pos]
		l.advance() // '>'
		return token{kind: tokFullIRI, text: text, line: line, col: col}, nil
	case c == '"':
		l.advance()
		var b strings.Builder
		for l.pos < len(l.src) && l.src[l.pos] != '"' {
			ch := l.advance()
			if ch == '\\' && l.pos < len(l.src) {
				ch = l.advance()
			}
			b.WriteByte(ch)
		}
		if l.pos >= len(l.src) {
			return token{}, l.errorf(line, col, "unterminated string literal")
		}
		l.advance() // closing quote
		return token{kind: tokString, text: b.String(), line: line, col: col}, nil
	case strings.HasPrefix(l.src[l.pos:], "_:"):
		l.advance()
		l.advance()
		start := l.pos
		for l.pos < len(l.src) && isNameByte(l.src[l.pos]) {
			l.advance()
		}
		if l.pos == start {
			return token{}, l.errorf(line, col, "empty anonymous individual name")
		}
		return token{kind: tokAnonymous, text: l.src[start:l.pos], line: line, col: col}, nil
	case c >= '0' && c <= '9':
		start := l.pos
		for l.pos < len(l.src) && l.src[l.pos] >= '0' && l.src[l.pos] <= '9' {
			l.advance()
		}
		return token{kind: tokInteger, text: l.src[start:l.pos], line: line, col: col}, nil
	case isNameByte(c) || c == ':':
		start := l.pos
		for l.pos < len(l.src) {
			b := l.src[l.pos]
			if b == ':' && strings.HasPrefix(l.src[l.pos:], ":=") {
				break
			}
			if !isNameByte(b) && b != ':' {
				break
			}
			l.advance()
		}
		return token{kind: tokIdent, text: l.src[start:l.pos], line: line, col: col}, nil
	default:
		return token{}, l.errorf(line, col, "unexpected character %q", rune(c))
	}
}

func isNameByte(c byte) bool {
	return c == '_' || c == '-' || c == '.' ||
		c >= '0' && c <= '9' ||
		unicode.IsLetter(rune(c))
}
