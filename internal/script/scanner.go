package script

import (
	"fmt"
	"strings"
	"unicode"
)

// Scanner turns script source text into a flat token stream. The grammar is
// line oriented, so end-of-line markers are significant and preserved.
type Scanner struct {
	src  []rune
	pos  int
	line int
}

// NewScanner creates a scanner over the given source text.
func NewScanner(src string) *Scanner {
	return &Scanner{src: []rune(src), line: 1}
}

// Scan tokenizes the entire source. It stops at the first lexical error,
// which carries the offending line number.
func (s *Scanner) Scan() ([]Token, error) {
	var tokens []Token
	for !s.atEnd() {
		c := s.peek()
		switch {
		case c == '\n':
			s.advance()
			tokens = append(tokens, Token{Kind: TokenEOL, Line: s.line})
			s.line++
		case c == '\r' || c == '\t' || c == ' ':
			s.advance()
		case c == '#':
			tokens = append(tokens, s.comment())
		case c == '"':
			tok, err := s.stringLiteral()
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
		default:
			tok, err := s.word()
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
		}
	}
	tokens = append(tokens, Token{Kind: TokenEOF, Line: s.line})
	return tokens, nil
}

func (s *Scanner) atEnd() bool { return s.pos >= len(s.src) }

func (s *Scanner) peek() rune { return s.src[s.pos] }

func (s *Scanner) advance() rune {
	c := s.src[s.pos]
	s.pos++
	return c
}

// comment consumes '#' through end of line. The comment text is kept so the
// execution report can reproduce it.
func (s *Scanner) comment() Token {
	s.advance() // '#'
	start := s.pos
	for !s.atEnd() && s.peek() != '\n' {
		s.advance()
	}
	text := strings.TrimSpace(string(s.src[start:s.pos]))
	return Token{Kind: TokenComment, Lexeme: text, Line: s.line}
}

// stringLiteral consumes a double-quoted literal. There is no escaping; the
// literal simply may not contain a double quote or a newline.
func (s *Scanner) stringLiteral() (Token, error) {
	line := s.line
	s.advance() // opening quote
	start := s.pos
	for !s.atEnd() && s.peek() != '"' && s.peek() != '\n' {
		s.advance()
	}
	if s.atEnd() || s.peek() != '"' {
		return Token{}, fmt.Errorf("line %d: unterminated string literal", line)
	}
	text := string(s.src[start:s.pos])
	s.advance() // closing quote
	return Token{Kind: TokenString, Lexeme: text, Line: line}, nil
}

// word consumes a keyword or identifier. Hyphens are word characters so that
// hyphenated commands (locate-no-scroll, try-again) scan as a single token,
// and a trailing colon is accepted only as part of "catch-error:".
func (s *Scanner) word() (Token, error) {
	start := s.pos
	for !s.atEnd() && isWordRune(s.peek()) {
		s.advance()
	}
	// A colon terminates the catch-error keyword.
	if !s.atEnd() && s.peek() == ':' {
		s.advance()
	}
	text := string(s.src[start:s.pos])
	if text == "" {
		return Token{}, fmt.Errorf("line %d: unexpected character %q", s.line, s.peek())
	}
	if kind, ok := keywords[text]; ok {
		return Token{Kind: kind, Lexeme: text, Line: s.line}, nil
	}
	if strings.HasSuffix(text, ":") {
		return Token{}, fmt.Errorf("line %d: unexpected token %q", s.line, text)
	}
	if !validIdent(text) {
		return Token{}, fmt.Errorf("line %d: invalid identifier %q", s.line, text)
	}
	return Token{Kind: TokenIdent, Lexeme: text, Line: s.line}, nil
}

func isWordRune(c rune) bool {
	return unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_' || c == '-' || c == '.'
}

func validIdent(s string) bool {
	for i, c := range s {
		if i == 0 && !unicode.IsLetter(c) && c != '_' {
			return false
		}
		if !isWordRune(c) {
			return false
		}
	}
	return len(s) > 0
}
