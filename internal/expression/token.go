// Package expression provides infix-to-postfix conversion and postfix evaluation
// for integer arithmetic extended with negation, IF and variadic MIN/MAX.
package expression

import (
	"strconv"
)

// Kind represents the kind of a token.
type Kind int

const (
	KindNone Kind = iota

	// Operands
	KindNumber // integer literal

	// Binary operators
	KindAdd // +
	KindSub // -
	KindMul // *
	KindDiv // /

	// Unary and construct operators
	KindNegate // N
	KindIf     // IF
	KindMin    // MIN
	KindMax    // MAX

	// Delimiters
	KindLeftParen  // (
	KindRightParen // )
	KindComma      // ,
	KindEnd        // .
)

// Precedence ranks used by the converter. Higher binds tighter.
const (
	PrecedenceParen  = 0
	PrecedenceComma  = 1
	PrecedenceAdd    = 2
	PrecedenceMul    = 3
	PrecedenceNegate = 4
	PrecedenceIf     = 5
	PrecedenceMinMax = 6
	PrecedenceNumber = 99
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "NONE"
	case KindNumber:
		return "NUMBER"
	case KindAdd:
		return "+"
	case KindSub:
		return "-"
	case KindMul:
		return "*"
	case KindDiv:
		return "/"
	case KindNegate:
		return "N"
	case KindIf:
		return "IF"
	case KindMin:
		return "MIN"
	case KindMax:
		return "MAX"
	case KindLeftParen:
		return "("
	case KindRightParen:
		return ")"
	case KindComma:
		return ","
	case KindEnd:
		return "."
	default:
		return "UNKNOWN"
	}
}

// Precedence returns the conversion rank of the kind.
func (k Kind) Precedence() int {
	switch k {
	case KindLeftParen, KindRightParen:
		return PrecedenceParen
	case KindComma:
		return PrecedenceComma
	case KindAdd, KindSub:
		return PrecedenceAdd
	case KindMul, KindDiv:
		return PrecedenceMul
	case KindNegate:
		return PrecedenceNegate
	case KindIf:
		return PrecedenceIf
	case KindMin, KindMax:
		return PrecedenceMinMax
	case KindNumber:
		return PrecedenceNumber
	default:
		return PrecedenceParen
	}
}

// IsBinary reports whether the kind is one of + - * /.
func (k Kind) IsBinary() bool {
	switch k {
	case KindAdd, KindSub, KindMul, KindDiv:
		return true
	default:
		return false
	}
}

// IsConstruct reports whether the kind opens a bracketed argument list.
func (k Kind) IsConstruct() bool {
	return k == KindIf || k == KindMin || k == KindMax
}

// Token represents a lexical token of the infix or postfix stream.
//
// Value holds the literal for KindNumber and the resolved argument count for
// KindMin and KindMax. It is zero for every other kind.
type Token struct {
	Kind  Kind
	Value int64
	Pos   int // lexeme index within the equation
}

// NewNumber creates a number token.
func NewNumber(v int64) Token {
	return Token{Kind: KindNumber, Value: v}
}

// NewOperator creates a payload-free token of the given kind.
func NewOperator(k Kind) Token {
	return Token{Kind: k}
}

// NewAggregate creates a MIN or MAX token carrying its argument count.
func NewAggregate(k Kind, argc int) Token {
	return Token{Kind: k, Value: int64(argc)}
}

// Precedence returns the conversion rank of the token.
func (t Token) Precedence() int {
	return t.Kind.Precedence()
}

// Argc returns the argument count stored on a MIN or MAX token.
func (t Token) Argc() int {
	return int(t.Value)
}

// String renders the token the way traces print it (e.g. "7", "-", "MAX3").
func (t Token) String() string {
	switch t.Kind {
	case KindNumber:
		return strconv.FormatInt(t.Value, 10)
	case KindMin, KindMax:
		return t.Kind.String() + strconv.Itoa(t.Argc())
	default:
		return t.Kind.String()
	}
}
