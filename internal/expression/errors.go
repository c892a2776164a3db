package expression

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this package wraps exactly one of them.
var (
	ErrInvalidOperation   = errors.New("invalid operation")
	ErrUnbalancedBrackets = errors.New("unbalanced brackets")
	ErrDivisionByZero     = errors.New("division by zero")
	ErrStackUnderflow     = errors.New("stack underflow")
	ErrMalformedEquation  = errors.New("malformed equation")
	ErrUnexpectedEnd      = errors.New("unexpected end of input")
)

// kinds lists the error kinds in the order kindOf checks them.
var kinds = []error{
	ErrInvalidOperation,
	ErrUnbalancedBrackets,
	ErrDivisionByZero,
	ErrStackUnderflow,
	ErrMalformedEquation,
	ErrUnexpectedEnd,
}

// ExpressionError represents an error during tokenization, conversion or evaluation.
type ExpressionError struct {
	Position int    // Lexeme index where the error occurred, -1 if unknown
	Message  string // Error message
	Cause    error  // One of the Err* kinds, possibly wrapping more
}

// Error implements the error interface.
func (e *ExpressionError) Error() string {
	if e.Position >= 0 {
		return fmt.Sprintf("%v at position %d: %s", kindOf(e.Cause), e.Position, e.Message)
	}
	return fmt.Sprintf("%v: %s", kindOf(e.Cause), e.Message)
}

// Unwrap returns the underlying error.
func (e *ExpressionError) Unwrap() error {
	return e.Cause
}

// NewExpressionError creates a new ExpressionError.
func NewExpressionError(pos int, message string, cause error) *ExpressionError {
	return &ExpressionError{
		Position: pos,
		Message:  message,
		Cause:    cause,
	}
}

func newError(kind error, pos int, format string, args ...any) *ExpressionError {
	return NewExpressionError(pos, fmt.Sprintf(format, args...), kind)
}

func kindOf(err error) error {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return err
}

// KindName returns a stable name for the error kind of err, e.g. "DivisionByZero".
// It returns "" for nil and "Unknown" for errors outside this package.
func KindName(err error) string {
	if err == nil {
		return ""
	}
	switch kindOf(err) {
	case ErrInvalidOperation:
		return "InvalidOperation"
	case ErrUnbalancedBrackets:
		return "UnbalancedBrackets"
	case ErrDivisionByZero:
		return "DivisionByZero"
	case ErrStackUnderflow:
		return "StackUnderflow"
	case ErrMalformedEquation:
		return "MalformedEquation"
	case ErrUnexpectedEnd:
		return "UnexpectedEnd"
	default:
		return "Unknown"
	}
}
