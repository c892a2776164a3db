package expression

import (
	stack "github.com/duke-git/lancet/v2/datastructure/stack"
	"github.com/duke-git/lancet/v2/mathutil"
)

// OperandStack is the evaluator's LIFO of integers.
type OperandStack struct {
	items *stack.LinkedStack[int64]
}

// NewOperandStack creates an empty OperandStack.
func NewOperandStack() *OperandStack {
	return &OperandStack{items: stack.NewLinkedStack[int64]()}
}

// Push pushes v.
func (s *OperandStack) Push(v int64) {
	s.items.Push(v)
}

// Len returns the number of operands on the stack.
func (s *OperandStack) Len() int {
	return s.items.Size()
}

// Snapshot returns the operands, top of stack first.
func (s *OperandStack) Snapshot() []int64 {
	return s.items.Data()
}

// popN pops n operands and returns them in push order, deepest first.
func (s *OperandStack) popN(n int) ([]int64, bool) {
	if s.items.Size() < n {
		return nil, false
	}
	vals := make([]int64, n)
	for i := n - 1; i >= 0; i-- {
		v, err := s.items.Pop()
		if err != nil {
			return nil, false
		}
		vals[i] = *v
	}
	return vals, true
}

// Operation applies one postfix operator to the operand stack.
type Operation func(s *OperandStack, tok Token) error

var operations = map[Kind]Operation{
	KindAdd:    add,
	KindSub:    sub,
	KindMul:    mul,
	KindDiv:    div,
	KindNegate: negate,
	KindIf:     ifThenElse,
	KindMin:    minimum,
	KindMax:    maximum,
}

// Lookup returns the operation for kind k.
func Lookup(k Kind) (Operation, bool) {
	op, ok := operations[k]
	return op, ok
}

func operands(s *OperandStack, tok Token, n int) ([]int64, error) {
	vals, ok := s.popN(n)
	if !ok {
		return nil, newError(ErrStackUnderflow, tok.Pos, "%s needs %d operands, have %d", tok, n, s.Len())
	}
	return vals, nil
}

func binary(s *OperandStack, tok Token, f func(lhs, rhs int64) int64) error {
	vals, err := operands(s, tok, 2)
	if err != nil {
		return err
	}
	s.Push(f(vals[0], vals[1]))
	return nil
}

func add(s *OperandStack, tok Token) error {
	return binary(s, tok, func(lhs, rhs int64) int64 { return lhs + rhs })
}

func sub(s *OperandStack, tok Token) error {
	return binary(s, tok, func(lhs, rhs int64) int64 { return lhs - rhs })
}

func mul(s *OperandStack, tok Token) error {
	return binary(s, tok, func(lhs, rhs int64) int64 { return lhs * rhs })
}

func div(s *OperandStack, tok Token) error {
	vals, err := operands(s, tok, 2)
	if err != nil {
		return err
	}
	if vals[1] == 0 {
		return newError(ErrDivisionByZero, tok.Pos, "%d / 0", vals[0])
	}
	s.Push(vals[0] / vals[1])
	return nil
}

func negate(s *OperandStack, tok Token) error {
	vals, err := operands(s, tok, 1)
	if err != nil {
		return err
	}
	s.Push(-vals[0])
	return nil
}

// ifThenElse pops condition, then and else values; a condition > 0 is true.
func ifThenElse(s *OperandStack, tok Token) error {
	vals, err := operands(s, tok, 3)
	if err != nil {
		return err
	}
	if vals[0] > 0 {
		s.Push(vals[1])
	} else {
		s.Push(vals[2])
	}
	return nil
}

func minimum(s *OperandStack, tok Token) error {
	return aggregate(s, tok, mathutil.Min[int64])
}

func maximum(s *OperandStack, tok Token) error {
	return aggregate(s, tok, mathutil.Max[int64])
}

func aggregate(s *OperandStack, tok Token, f func(...int64) int64) error {
	argc := tok.Argc()
	if argc <= 0 {
		return newError(ErrMalformedEquation, tok.Pos, "%s requires at least one argument", tok.Kind)
	}
	vals, err := operands(s, tok, argc)
	if err != nil {
		return err
	}
	s.Push(f(vals...))
	return nil
}
