// Package scanner implements the lexical scanner for Lox. It produces a lazy
// sequence of tokens from a source string; the compiler drives it one token
// at a time via Scanner.ScanToken.
package scanner

import (
	"github.com/loxlang/loxgo/lang/token"
)

// Scanner tokenizes a Lox source string. The zero value is not usable; call
// New to obtain one. A Scanner holds a borrow of the source string for the
// lifetime of the compile call; token lexemes are slices into that string.
type Scanner struct {
	src     string
	start   int // offset of the lexeme currently being scanned
	current int // offset of the next unread byte
	line    int
}

// New returns a Scanner ready to tokenize src, starting at line 1.
func New(src string) *Scanner {
	return &Scanner{src: src, line: 1}
}

// ScanToken returns the next token in the source. Once the source is
// exhausted, it returns EOF tokens indefinitely.
func (s *Scanner) ScanToken() token.Token {
	s.skipWhitespace()
	s.start = s.current

	if s.atEnd() {
		return s.make(token.EOF)
	}

	c := s.advance()
	switch {
	case isAlpha(c):
		return s.identifier()
	case isDigit(c):
		return s.number()
	}

	switch c {
	case '(':
		return s.make(token.LPAREN)
	case ')':
		return s.make(token.RPAREN)
	case '{':
		return s.make(token.LBRACE)
	case '}':
		return s.make(token.RBRACE)
	case ',':
		return s.make(token.COMMA)
	case '.':
		return s.make(token.DOT)
	case '-':
		return s.make(token.MINUS)
	case '+':
		return s.make(token.PLUS)
	case ';':
		return s.make(token.SEMI)
	case '*':
		return s.make(token.STAR)
	case '/':
		return s.make(token.SLASH)
	case '!':
		return s.make(s.selectType('=', token.BANG_EQ, token.BANG))
	case '=':
		return s.make(s.selectType('=', token.EQ_EQ, token.EQ))
	case '<':
		return s.make(s.selectType('=', token.LT_EQ, token.LT))
	case '>':
		return s.make(s.selectType('=', token.GT_EQ, token.GT))
	case '"':
		return s.string()
	}

	return s.errorf("Unexpected character.")
}

func (s *Scanner) atEnd() bool { return s.current >= len(s.src) }

// advance consumes and returns the current byte.
func (s *Scanner) advance() byte {
	c := s.src[s.current]
	s.current++
	return c
}

// peek returns the current unread byte without consuming it, or 0 at EOF.
func (s *Scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.src[s.current]
}

// peekNext returns the byte after the current one without consuming
// anything, or 0 if that is beyond the source.
func (s *Scanner) peekNext() byte {
	if s.current+1 >= len(s.src) {
		return 0
	}
	return s.src[s.current+1]
}

// selectType consumes the current byte and returns matched if it equals
// expect, else returns unmatched without consuming.
func (s *Scanner) selectType(expect byte, matched, unmatched token.Type) token.Type {
	if s.atEnd() || s.src[s.current] != expect {
		return unmatched
	}
	s.current++
	return matched
}

func (s *Scanner) skipWhitespace() {
	for {
		switch s.peek() {
		case ' ', '\r', '\t':
			s.advance()
		case '\n':
			s.line++
			s.advance()
		case '/':
			switch s.peekNext() {
			case '/':
				for s.peek() != '\n' && !s.atEnd() {
					s.advance()
				}
			case '*':
				s.advance() // the first '/'
				s.advance() // the '*'
				s.skipBlockComment()
			default:
				return
			}
		default:
			return
		}
	}
}

// skipBlockComment consumes a /* ... */ comment, already past the opening
// delimiter. Nesting is not supported; newlines inside the comment still
// advance the line counter.
func (s *Scanner) skipBlockComment() {
	for !s.atEnd() {
		if s.peek() == '*' && s.peekNext() == '/' {
			s.advance()
			s.advance()
			return
		}
		if s.peek() == '\n' {
			s.line++
		}
		s.advance()
	}
}

func (s *Scanner) identifier() token.Token {
	for isAlpha(s.peek()) || isDigit(s.peek()) {
		s.advance()
	}
	return s.make(token.Lookup(s.lexeme()))
}

func (s *Scanner) number() token.Token {
	for isDigit(s.peek()) {
		s.advance()
	}
	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.advance() // consume the '.'
		for isDigit(s.peek()) {
			s.advance()
		}
	}
	return s.make(token.NUMBER)
}

func (s *Scanner) string() token.Token {
	for s.peek() != '"' && !s.atEnd() {
		if s.peek() == '\n' {
			s.line++
		}
		s.advance()
	}
	if s.atEnd() {
		return s.errorf("Unterminated string.")
	}
	s.advance() // closing quote
	return s.make(token.STRING)
}

func (s *Scanner) lexeme() string { return s.src[s.start:s.current] }

func (s *Scanner) make(typ token.Type) token.Token {
	return token.Token{Type: typ, Lexeme: s.lexeme(), Line: s.line}
}

// errorf returns an ERROR token carrying msg as its lexeme; the compiler
// reports it by reading the lexeme field back out as the diagnostic text.
func (s *Scanner) errorf(msg string) token.Token {
	return token.Token{Type: token.ERROR, Lexeme: msg, Line: s.line}
}

func isAlpha(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
