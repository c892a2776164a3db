// Property-based tests for conversion and evaluation.
// Property: for any expression built from + - * and brackets, converting to
// postfix and evaluating equals evaluating the infix form directly.
package expression

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"pgregory.net/rapid"
)

func TestArithmeticProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("subtraction chains are left associative", prop.ForAll(
		func(a, b, c int64) bool {
			v, err := Evaluate(fmt.Sprintf("%d - %d - %d .", a, b, c))
			return err == nil && v == (a-b)-c
		},
		gen.Int64Range(0, 10000),
		gen.Int64Range(0, 10000),
		gen.Int64Range(0, 10000),
	))

	properties.Property("division chains are left associative", prop.ForAll(
		func(a, b, c int64) bool {
			v, err := Evaluate(fmt.Sprintf("%d / %d / %d .", a, b, c))
			return err == nil && v == (a/b)/c
		},
		gen.Int64Range(0, 10000),
		gen.Int64Range(1, 100),
		gen.Int64Range(1, 100),
	))

	properties.Property("division by zero always fails", prop.ForAll(
		func(a int64) bool {
			_, err := Evaluate(fmt.Sprintf("%d / 0 .", a))
			return KindName(err) == "DivisionByZero"
		},
		gen.Int64Range(0, 10000),
	))

	properties.Property("k negations flip the sign k times", prop.ForAll(
		func(v int64, k int) bool {
			expr := strings.Repeat("N ", k) + strconv.FormatInt(v, 10) + " ."
			got, err := Evaluate(expr)
			if err != nil {
				return false
			}
			if k%2 == 1 {
				return got == -v
			}
			return got == v
		},
		gen.Int64Range(0, 10000),
		gen.IntRange(0, 6),
	))

	properties.Property("IF selects by condition > 0", prop.ForAll(
		func(cond, a, b int64) bool {
			expr := fmt.Sprintf("IF ( %d - 50 , %d , %d ) .", cond, a, b)
			got, err := Evaluate(expr)
			if err != nil {
				return false
			}
			if cond-50 > 0 {
				return got == a
			}
			return got == b
		},
		gen.Int64Range(0, 100),
		gen.Int64Range(0, 1000),
		gen.Int64Range(0, 1000),
	))

	properties.TestingRun(t)
}

func TestAggregateProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		vals := rapid.SliceOfN(rapid.Int64Range(0, 1000), 1, 10).Draw(t, "vals")
		args := make([]string, len(vals))
		lo, hi := vals[0], vals[0]
		for i, v := range vals {
			args[i] = strconv.FormatInt(v, 10)
			lo = min(lo, v)
			hi = max(hi, v)
		}
		list := strings.Join(args, " , ")

		gotMax, err := Evaluate("MAX ( " + list + " ) .")
		if err != nil {
			t.Fatalf("MAX: %v", err)
		}
		if gotMax != hi {
			t.Fatalf("MAX(%s) = %d, want %d", list, gotMax, hi)
		}

		gotMin, err := Evaluate("MIN ( " + list + " ) .")
		if err != nil {
			t.Fatalf("MIN: %v", err)
		}
		if gotMin != lo {
			t.Fatalf("MIN(%s) = %d, want %d", list, gotMin, lo)
		}

		p, err := ConvertString("MAX ( " + list + " ) .")
		if err != nil {
			t.Fatalf("convert: %v", err)
		}
		tokens := p.Tokens()
		if argc := tokens[len(tokens)-1].Argc(); argc != len(vals) {
			t.Fatalf("argc = %d, want %d", argc, len(vals))
		}
	})
}

// drawBracketed draws a fully bracketed + - * expression and its value.
func drawBracketed(t *rapid.T, depth int) (string, int64) {
	if depth == 0 || rapid.IntRange(0, 2).Draw(t, "leaf") == 0 {
		v := rapid.Int64Range(0, 20).Draw(t, "num")
		return strconv.FormatInt(v, 10), v
	}
	op := rapid.SampledFrom([]string{"+", "-", "*"}).Draw(t, "op")
	l, lv := drawBracketed(t, depth-1)
	r, rv := drawBracketed(t, depth-1)
	return "( " + l + " " + op + " " + r + " )", apply(op, lv, rv)
}

func apply(op string, l, r int64) int64 {
	switch op {
	case "+":
		return l + r
	case "-":
		return l - r
	default:
		return l * r
	}
}

// flatValue evaluates an unbracketed chain with * binding tighter than + and -.
func flatValue(nums []int64, ops []string) int64 {
	terms := []int64{nums[0]}
	var signs []string
	for i, op := range ops {
		if op == "*" {
			terms[len(terms)-1] *= nums[i+1]
			continue
		}
		terms = append(terms, nums[i+1])
		signs = append(signs, op)
	}
	v := terms[0]
	for i, s := range signs {
		v = apply(s, v, terms[i+1])
	}
	return v
}

func TestInfixRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		expr, want := drawBracketed(t, 4)
		got, err := Evaluate(expr + " .")
		if err != nil {
			t.Fatalf("%s: %v", expr, err)
		}
		if got != want {
			t.Fatalf("%s = %d, want %d", expr, got, want)
		}
	})
}

func TestPrecedenceProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 8).Draw(t, "n")
		nums := make([]int64, n)
		ops := make([]string, n-1)
		var b strings.Builder
		for i := 0; i < n; i++ {
			nums[i] = rapid.Int64Range(0, 50).Draw(t, "num")
			if i > 0 {
				ops[i-1] = rapid.SampledFrom([]string{"+", "-", "*"}).Draw(t, "op")
				b.WriteString(" " + ops[i-1] + " ")
			}
			b.WriteString(strconv.FormatInt(nums[i], 10))
		}
		expr := b.String()

		got, err := Evaluate(expr)
		if err != nil {
			t.Fatalf("%s: %v", expr, err)
		}
		if want := flatValue(nums, ops); got != want {
			t.Fatalf("%s = %d, want %d", expr, got, want)
		}

		again, err := Evaluate(expr)
		if err != nil || again != got {
			t.Fatalf("%s: second run gave %d, %v", expr, again, err)
		}
	})
}
