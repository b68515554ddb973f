package label

import (
	"errors"
	"fmt"
)

var (
	ErrUnterminatedString = errors.New("unterminated quoted string")
	ErrUnbalancedParens   = errors.New("unbalanced parentheses")
)

// Pair is one KEY=VALUE token in document order. Raw is the unparsed value
// text (quotes and parentheses intact).
type Pair struct {
	Key string
	Raw string
}

// Value parses the raw text of the pair
func (p Pair) Value() (Value, error) {
	return ParseValue(p.Raw)
}

// Tokenize splits label text into KEY=VALUE pairs. A key runs up to '='; the
// value is a quoted string, a parenthesized list or a bare token. Words
// without '=' are skipped and scanning stops at the first NUL.
func Tokenize(text string) ([]Pair, error) {
	s := &scanner{src: text}
	var pairs []Pair
	for {
		s.skipSpace()
		if s.eof() {
			return pairs, nil
		}
		key := s.key()
		if s.eof() || s.peek() != '=' {
			// stray word
			continue
		}
		s.pos++ // '='
		raw, err := s.value()
		if err != nil {
			return nil, fmt.Errorf("label %s: %w", key, err)
		}
		if key == "" {
			continue
		}
		pairs = append(pairs, Pair{Key: key, Raw: raw})
	}
}

type scanner struct {
	src string
	pos int
}

func (s *scanner) eof() bool {
	return s.pos >= len(s.src) || s.src[s.pos] == 0
}

func (s *scanner) peek() byte { return s.src[s.pos] }

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func (s *scanner) skipSpace() {
	for !s.eof() && isSpace(s.peek()) {
		s.pos++
	}
}

func (s *scanner) key() string {
	start := s.pos
	for !s.eof() && !isSpace(s.peek()) && s.peek() != '=' {
		s.pos++
	}
	return s.src[start:s.pos]
}

func (s *scanner) value() (string, error) {
	if s.eof() {
		return "", nil
	}
	start := s.pos
	switch s.peek() {
	case '\'':
		if err := s.quoted(); err != nil {
			return "", err
		}
	case '(':
		if err := s.list(); err != nil {
			return "", err
		}
	default:
		for !s.eof() && !isSpace(s.peek()) {
			s.pos++
		}
	}
	return s.src[start:s.pos], nil
}

// quoted consumes a '...' literal; '' inside is an escaped quote
func (s *scanner) quoted() error {
	s.pos++
	for !s.eof() {
		if s.peek() == '\'' {
			if s.pos+1 < len(s.src) && s.src[s.pos+1] == '\'' {
				s.pos += 2
				continue
			}
			s.pos++
			return nil
		}
		s.pos++
	}
	return ErrUnterminatedString
}

func (s *scanner) list() error {
	s.pos++
	for !s.eof() {
		switch s.peek() {
		case '\'':
			if err := s.quoted(); err != nil {
				return err
			}
			continue
		case '(':
			return ErrUnbalancedParens
		case ')':
			s.pos++
			return nil
		}
		s.pos++
	}
	return ErrUnbalancedParens
}
