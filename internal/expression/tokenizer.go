package expression

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

// LexemeScanner delivers discrete lexemes. *bufio.Scanner satisfies it.
type LexemeScanner interface {
	Scan() bool
	Text() string
	Err() error
}

// TokenSource is a lazy sequence of infix tokens.
type TokenSource interface {
	Next() (Token, error)
}

// Tokenizer converts lexemes into typed tokens.
type Tokenizer struct {
	scanner LexemeScanner
	stream  bool // a '.' terminator is required before end of input
	pos     int  // lexeme index within the current equation
	inEq    bool // at least one lexeme of the current equation has been read
}

// NewTokenizer creates a Tokenizer over a single expression string.
// The end of the string terminates the equation if no '.' was seen.
func NewTokenizer(input string) *Tokenizer {
	return &Tokenizer{scanner: NewLexemeScanner(strings.NewReader(input))}
}

// NewStreamTokenizer creates a Tokenizer over a stream of '.'-terminated equations.
func NewStreamTokenizer(s LexemeScanner) *Tokenizer {
	return &Tokenizer{scanner: s, stream: true}
}

// NewLexemeScanner returns a scanner splitting r with ScanLexemes.
func NewLexemeScanner(r io.Reader) *bufio.Scanner {
	s := bufio.NewScanner(r)
	s.Split(ScanLexemes)
	return s
}

// Next returns the next token. A KindEnd token closes the current equation.
func (t *Tokenizer) Next() (Token, error) {
	if !t.scanner.Scan() {
		pos := t.pos
		if err := t.scanner.Err(); err != nil {
			return Token{}, NewExpressionError(pos, "read failed", fmt.Errorf("%w: %w", ErrUnexpectedEnd, err))
		}
		if t.stream {
			return Token{}, NewExpressionError(pos, "missing '.' terminator", fmt.Errorf("%w: %w", ErrUnexpectedEnd, io.ErrUnexpectedEOF))
		}
		t.reset()
		return Token{Kind: KindEnd, Pos: pos}, nil
	}

	tok, err := Classify(t.scanner.Text(), t.pos)
	if err != nil {
		t.pos++
		t.inEq = true
		return Token{}, err
	}
	if tok.Kind == KindEnd {
		t.reset()
		return tok, nil
	}
	t.pos++
	t.inEq = true
	return tok, nil
}

// SkipEquation discards the remaining lexemes of the current equation up to and
// including its '.' terminator. It is a no-op when no lexeme of the current
// equation has been consumed yet.
func (t *Tokenizer) SkipEquation() error {
	for t.inEq {
		if !t.scanner.Scan() {
			t.reset()
			if err := t.scanner.Err(); err != nil {
				return fmt.Errorf("%w: %w", ErrUnexpectedEnd, err)
			}
			if t.stream {
				return fmt.Errorf("%w: %w", ErrUnexpectedEnd, io.ErrUnexpectedEOF)
			}
			return nil
		}
		if t.scanner.Text() == "." {
			t.reset()
		}
	}
	return nil
}

// ExpectEOF reports a MalformedEquation if any lexeme follows the last
// equation read. Callers that treat the input as a single equation use it
// after conversion so trailing text such as "1 . 2" or "1.5" is not dropped.
func (t *Tokenizer) ExpectEOF() error {
	if !t.scanner.Scan() {
		if err := t.scanner.Err(); err != nil {
			return NewExpressionError(-1, "read failed", fmt.Errorf("%w: %w", ErrUnexpectedEnd, err))
		}
		return nil
	}
	return newError(ErrMalformedEquation, -1, "unexpected %q after end of equation", t.scanner.Text())
}

func (t *Tokenizer) reset() {
	t.pos = 0
	t.inEq = false
}

// Classify maps one lexeme to its token.
func Classify(lexeme string, pos int) (Token, error) {
	switch lexeme {
	case ".":
		return Token{Kind: KindEnd, Pos: pos}, nil
	case ",":
		return Token{Kind: KindComma, Pos: pos}, nil
	case "(":
		return Token{Kind: KindLeftParen, Pos: pos}, nil
	case ")":
		return Token{Kind: KindRightParen, Pos: pos}, nil
	case "+":
		return Token{Kind: KindAdd, Pos: pos}, nil
	case "-":
		return Token{Kind: KindSub, Pos: pos}, nil
	case "*":
		return Token{Kind: KindMul, Pos: pos}, nil
	case "/":
		return Token{Kind: KindDiv, Pos: pos}, nil
	}

	if isNumber(lexeme) {
		v, err := strconv.ParseInt(lexeme, 10, 64)
		if err != nil {
			return Token{}, NewExpressionError(pos, "integer out of range: "+lexeme, fmt.Errorf("%w: %w", ErrInvalidOperation, err))
		}
		return Token{Kind: KindNumber, Value: v, Pos: pos}, nil
	}

	switch strings.ToUpper(lexeme) {
	case "N":
		return Token{Kind: KindNegate, Pos: pos}, nil
	case "IF":
		return Token{Kind: KindIf, Pos: pos}, nil
	case "MIN":
		return Token{Kind: KindMin, Pos: pos}, nil
	case "MAX":
		return Token{Kind: KindMax, Pos: pos}, nil
	}

	return Token{}, newError(ErrInvalidOperation, pos, "unrecognized symbol %q", lexeme)
}

// ScanLexemes is a bufio.SplitFunc that yields digit runs, letter runs and
// single punctuation characters, dropping whitespace.
func ScanLexemes(data []byte, atEOF bool) (advance int, token []byte, err error) {
	start := 0
	for start < len(data) && isSpace(data[start]) {
		start++
	}
	if start >= len(data) {
		return start, nil, nil
	}

	c := data[start]
	var class func(byte) bool
	switch {
	case isDigit(c):
		class = isDigit
	case isLetter(c):
		class = isLetter
	case c >= utf8.RuneSelf:
		if !atEOF && !utf8.FullRune(data[start:]) {
			return start, nil, nil
		}
		_, width := utf8.DecodeRune(data[start:])
		return start + width, data[start : start+width], nil
	default:
		return start + 1, data[start : start+1], nil
	}

	i := start + 1
	for i < len(data) && class(data[i]) {
		i++
	}
	if i == len(data) && !atEOF {
		// The run may continue in the next chunk.
		return start, nil, nil
	}
	return i, data[start:i], nil
}

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\v' || ch == '\f'
}

func isLetter(ch byte) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
