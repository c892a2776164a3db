package expression

// TraceStep records an operator and the operand stack just before it runs.
type TraceStep struct {
	Op    Token
	Stack []int64 // top of stack first
}

// Tracer receives a TraceStep before every non-number postfix token.
type Tracer func(step TraceStep)

// Evaluator executes postfix sequences against an operand stack.
type Evaluator struct {
	tracer Tracer
}

// EvaluatorOption configures an Evaluator.
type EvaluatorOption func(*Evaluator)

// WithTracer installs a Tracer.
func WithTracer(t Tracer) EvaluatorOption {
	return func(e *Evaluator) {
		e.tracer = t
	}
}

// NewEvaluator creates a new Evaluator.
func NewEvaluator(opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate consumes p from the front and returns the single remaining operand.
// Each call starts from an empty operand stack.
func (e *Evaluator) Evaluate(p *Postfix) (int64, error) {
	s := NewOperandStack()

	for {
		tok, ok := p.popFront()
		if !ok {
			break
		}

		if tok.Kind == KindNumber {
			s.Push(tok.Value)
			continue
		}

		if e.tracer != nil {
			e.tracer(TraceStep{Op: tok, Stack: s.Snapshot()})
		}

		if tok.Kind == KindLeftParen {
			return 0, newError(ErrUnbalancedBrackets, tok.Pos, "( in postfix sequence")
		}
		op, ok := Lookup(tok.Kind)
		if !ok {
			return 0, newError(ErrInvalidOperation, tok.Pos, "%s cannot be evaluated", tok.Kind)
		}
		if err := op(s, tok); err != nil {
			return 0, err
		}
	}

	if n := s.Len(); n != 1 {
		return 0, newError(ErrMalformedEquation, -1, "expected exactly one result, %d operands remain", n)
	}
	vals, _ := s.popN(1)
	return vals[0], nil
}

// Outcome is the result of processing one equation.
type Outcome struct {
	Postfix []Token
	Value   int64
	Trace   []TraceStep
	Err     error
}

// Process converts the next equation from src and evaluates it.
// Errors are reported in the Outcome, never returned.
func Process(src TokenSource, trace bool) Outcome {
	var out Outcome

	p, err := Convert(src)
	if err != nil {
		out.Err = err
		return out
	}
	out.Postfix = p.Tokens()

	var opts []EvaluatorOption
	if trace {
		opts = append(opts, WithTracer(func(step TraceStep) {
			out.Trace = append(out.Trace, step)
		}))
	}
	out.Value, out.Err = NewEvaluator(opts...).Evaluate(p)
	return out
}

// ProcessString processes expr as one equation. The terminating '.' is
// optional and nothing may follow it.
func ProcessString(expr string, trace bool) Outcome {
	tz := NewTokenizer(expr)
	out := Process(tz, trace)
	if out.Err != nil {
		return out
	}
	if err := tz.ExpectEOF(); err != nil {
		out.Value = 0
		out.Trace = nil
		out.Err = err
	}
	return out
}

// Evaluate parses and evaluates a single expression string.
func Evaluate(expr string) (int64, error) {
	p, err := ConvertString(expr)
	if err != nil {
		return 0, err
	}
	return NewEvaluator().Evaluate(p)
}
