package expression

import (
	"strings"

	stack "github.com/duke-git/lancet/v2/datastructure/stack"
	"github.com/edwingeng/deque"
)

// Postfix is a postfix token sequence in evaluation order.
type Postfix struct {
	tokens deque.Deque
}

// NewPostfix creates a Postfix holding the given tokens.
func NewPostfix(tokens ...Token) *Postfix {
	p := &Postfix{tokens: deque.NewDeque()}
	for _, t := range tokens {
		p.tokens.PushBack(t)
	}
	return p
}

func (p *Postfix) push(t Token) {
	p.tokens.PushBack(t)
}

func (p *Postfix) popFront() (Token, bool) {
	if p.tokens.Empty() {
		return Token{}, false
	}
	return p.tokens.PopFront().(Token), true
}

// Len returns the number of tokens left in the sequence.
func (p *Postfix) Len() int {
	return p.tokens.Len()
}

// Tokens returns a copy of the remaining tokens.
func (p *Postfix) Tokens() []Token {
	out := make([]Token, 0, p.tokens.Len())
	for i := 0; i < p.tokens.Len(); i++ {
		out = append(out, p.tokens.Peek(i).(Token))
	}
	return out
}

// String renders the sequence as space separated tokens.
func (p *Postfix) String() string {
	return JoinTokens(p.Tokens())
}

// JoinTokens renders tokens separated by single spaces.
func JoinTokens(tokens []Token) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.String()
	}
	return strings.Join(parts, " ")
}

// parseContext tracks one open IF/MIN/MAX argument list.
type parseContext struct {
	kind   Kind
	pos    int
	opened bool // its own '(' has been consumed
	depth  int  // open parentheses inside this context, its own included
	commas int
	filled bool // the current argument slot holds an operand
}

// Converter turns one equation's infix tokens into postfix form.
// A Converter is used for a single equation and then discarded.
type Converter struct {
	src      TokenSource
	ops      *stack.LinkedStack[Token]
	contexts *stack.LinkedStack[*parseContext]
	output   *Postfix
}

// NewConverter creates a Converter reading from src.
func NewConverter(src TokenSource) *Converter {
	return &Converter{
		src:      src,
		ops:      stack.NewLinkedStack[Token](),
		contexts: stack.NewLinkedStack[*parseContext](),
		output:   NewPostfix(),
	}
}

// Convert reads tokens up to the end of the equation and returns the postfix form.
func Convert(src TokenSource) (*Postfix, error) {
	return NewConverter(src).Convert()
}

// ConvertString converts a single expression string. Anything after the
// equation's '.' is a MalformedEquation.
func ConvertString(expr string) (*Postfix, error) {
	tz := NewTokenizer(expr)
	p, err := Convert(tz)
	if err != nil {
		return nil, err
	}
	if err := tz.ExpectEOF(); err != nil {
		return nil, err
	}
	return p, nil
}

// Convert runs the conversion. It consumes the equation's terminator on success.
func (c *Converter) Convert() (*Postfix, error) {
	for {
		tok, err := c.src.Next()
		if err != nil {
			return nil, err
		}

		if ctx := c.current(); ctx != nil && !ctx.opened && tok.Kind != KindLeftParen {
			return nil, newError(ErrMalformedEquation, tok.Pos, "expected ( after %s, got %s", ctx.kind, tok.Kind)
		}

		switch {
		case tok.Kind == KindEnd:
			return c.finish()

		case tok.Kind == KindNumber:
			c.number(tok)

		case tok.Kind.IsBinary():
			c.flush(tok.Precedence())
			c.ops.Push(tok)

		case tok.Kind == KindLeftParen:
			c.ops.Push(tok)
			if ctx := c.current(); ctx != nil {
				ctx.opened = true
				ctx.depth++
			}

		case tok.Kind == KindRightParen:
			if err := c.rightParen(tok); err != nil {
				return nil, err
			}

		case tok.Kind == KindComma:
			if err := c.comma(tok); err != nil {
				return nil, err
			}

		case tok.Kind == KindNegate:
			if top, err := c.ops.Peak(); err == nil && top.Kind == KindNegate {
				c.ops.Push(tok)
			} else {
				c.flush(tok.Precedence())
				c.ops.Push(tok)
			}

		case tok.Kind.IsConstruct():
			c.flush(tok.Precedence())
			c.contexts.Push(&parseContext{kind: tok.Kind, pos: tok.Pos})

		default:
			return nil, newError(ErrInvalidOperation, tok.Pos, "unexpected token %s", tok.Kind)
		}
	}
}

// number appends an operand. A pending negation binds to it immediately.
func (c *Converter) number(tok Token) {
	c.output.push(tok)
	c.fill()
	if top, err := c.ops.Peak(); err == nil && top.Kind == KindNegate {
		neg := *top
		_, _ = c.ops.Pop()
		c.output.push(neg)
	}
}

func (c *Converter) rightParen(tok Token) error {
	c.flush(PrecedenceParen)
	if _, err := c.ops.Pop(); err != nil {
		return newError(ErrUnbalancedBrackets, tok.Pos, "no matching (")
	}

	ctx := c.current()
	if ctx == nil {
		return nil
	}
	ctx.depth--
	if ctx.depth > 0 {
		return nil
	}
	return c.closeContext(ctx)
}

func (c *Converter) comma(tok Token) error {
	ctx := c.current()
	if ctx == nil {
		return newError(ErrMalformedEquation, tok.Pos, "argument separator outside of a function call")
	}
	if !ctx.filled {
		return newError(ErrMalformedEquation, tok.Pos, "empty argument in %s", ctx.kind)
	}
	c.flush(PrecedenceComma)
	ctx.commas++
	ctx.filled = false
	return nil
}

// closeContext emits the construct token once its argument count is known.
func (c *Converter) closeContext(ctx *parseContext) error {
	_, _ = c.contexts.Pop()

	argc := ctx.commas + 1
	if !ctx.filled {
		if ctx.commas > 0 {
			return newError(ErrMalformedEquation, ctx.pos, "empty argument in %s", ctx.kind)
		}
		argc = 0
	}

	switch ctx.kind {
	case KindIf:
		if argc != 3 {
			return newError(ErrMalformedEquation, ctx.pos, "IF takes 3 arguments, got %d", argc)
		}
		c.output.push(Token{Kind: KindIf, Pos: ctx.pos})
	default:
		t := NewAggregate(ctx.kind, argc)
		t.Pos = ctx.pos
		c.output.push(t)
	}
	c.fill()
	return nil
}

// finish drains the operator stack at the end of the equation.
func (c *Converter) finish() (*Postfix, error) {
	if ctx := c.current(); ctx != nil {
		return nil, newError(ErrUnbalancedBrackets, ctx.pos, "unclosed %s", ctx.kind)
	}
	for !c.ops.IsEmpty() {
		top, _ := c.ops.Pop()
		if top.Kind == KindLeftParen {
			return nil, newError(ErrUnbalancedBrackets, top.Pos, "unclosed (")
		}
		c.output.push(*top)
	}
	return c.output, nil
}

// flush moves operators with precedence >= prec to the output. It stops at a
// left parenthesis or an empty stack and never removes the parenthesis.
func (c *Converter) flush(prec int) {
	for {
		top, err := c.ops.Peak()
		if err != nil || top.Kind == KindLeftParen || top.Precedence() < prec {
			return
		}
		t := *top
		_, _ = c.ops.Pop()
		c.output.push(t)
	}
}

func (c *Converter) current() *parseContext {
	top, err := c.contexts.Peak()
	if err != nil {
		return nil
	}
	return *top
}

func (c *Converter) fill() {
	if ctx := c.current(); ctx != nil {
		ctx.filled = true
	}
}
