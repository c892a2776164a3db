// Package output renders equation results as text or JSON lines.
package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/fatih/color"

	"yqhp/rpncalc/internal/expression"
)

// Record is the rendered form of one equation's outcome.
type Record struct {
	Index   int         `json:"index"`
	Infix   string      `json:"infix,omitempty"`
	Postfix string      `json:"postfix,omitempty"`
	Value   *int64      `json:"value,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
	Trace   []TraceLine `json:"trace,omitempty"`
}

// TraceLine is one evaluation step: the operator and the stack before it, top first.
type TraceLine struct {
	Op    string  `json:"op"`
	Stack []int64 `json:"stack"`
}

// OK reports whether the equation produced a value.
func (r Record) OK() bool {
	return r.Error == ""
}

// FromOutcome builds a Record from an expression.Outcome.
func FromOutcome(index int, infix string, o expression.Outcome) Record {
	r := Record{
		Index:   index,
		Infix:   infix,
		Postfix: expression.JoinTokens(o.Postfix),
	}
	for _, step := range o.Trace {
		r.Trace = append(r.Trace, TraceLine{Op: step.Op.String(), Stack: step.Stack})
	}
	if o.Err != nil {
		r.Error = expression.KindName(o.Err)
		r.Message = o.Err.Error()
		return r
	}
	v := o.Value
	r.Value = &v
	return r
}

// Renderer writes records to an output stream.
type Renderer interface {
	Render(w io.Writer, r Record) error
}

// Options configures a renderer.
type Options struct {
	Format string // text, json
	Trace  bool
	Color  bool
}

// New returns the renderer for opts.Format.
func New(opts Options) (Renderer, error) {
	switch opts.Format {
	case "", "text":
		return NewTextRenderer(opts.Trace, opts.Color), nil
	case "json":
		return &JSONRenderer{Trace: opts.Trace}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", opts.Format)
	}
}

// TextRenderer prints the value, or ERROR, followed by a blank line.
// With tracing it first prints the postfix form and one line per operator.
type TextRenderer struct {
	trace bool
	red   *color.Color
}

// NewTextRenderer creates a TextRenderer.
func NewTextRenderer(trace, colored bool) *TextRenderer {
	r := &TextRenderer{trace: trace}
	if colored {
		r.red = color.New(color.FgRed, color.Bold)
		r.red.EnableColor()
	}
	return r
}

// Render implements Renderer.
func (t *TextRenderer) Render(w io.Writer, r Record) error {
	var b strings.Builder

	if t.trace && r.Postfix != "" {
		b.WriteString(r.Postfix)
		b.WriteByte('\n')
		for _, line := range r.Trace {
			b.WriteString(line.Op)
			for _, v := range line.Stack {
				b.WriteByte(' ')
				b.WriteString(strconv.FormatInt(v, 10))
			}
			b.WriteByte('\n')
		}
	}

	switch {
	case r.OK():
		b.WriteString(strconv.FormatInt(*r.Value, 10))
	case r.Error == "DivisionByZero":
		b.WriteString(t.errorText("ERROR"))
	default:
		b.WriteString(t.errorText("ERROR: " + r.Error))
	}
	b.WriteString("\n\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func (t *TextRenderer) errorText(s string) string {
	if t.red == nil {
		return s
	}
	return t.red.Sprint(s)
}

// JSONRenderer writes one JSON object per line.
type JSONRenderer struct {
	Trace bool
}

// Render implements Renderer.
func (j *JSONRenderer) Render(w io.Writer, r Record) error {
	if !j.Trace {
		r.Trace = nil
	}
	data, err := sonic.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal record %d: %w", r.Index, err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
