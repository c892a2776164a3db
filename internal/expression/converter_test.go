package expression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert_Postfix(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"left associative sub", "5 - 3 - 1 .", "5 3 - 1 -"},
		{"left associative div", "8 / 2 / 2 .", "8 2 / 2 /"},
		{"mul before add", "2 + 3 * 4 .", "2 3 4 * +"},
		{"add after mul", "2 * 3 + 4 .", "2 3 * 4 +"},
		{"nested brackets", "( ( 2 + 3 ) * 4 ) .", "2 3 + 4 *"},
		{"single negation", "N 5 .", "5 N"},
		{"double negation", "N N 5 .", "5 N N"},
		{"negation in product", "N N 5 * 2 .", "5 N N 2 *"},
		{"negated operand of sub", "1 - N 2 .", "1 2 N -"},
		{"negated bracket", "N ( 2 + 3 ) * 4 .", "2 3 + N 4 *"},
		{"max", "MAX ( 1 , 7 , 4 ) .", "1 7 4 MAX3"},
		{"max compact", "MAX(1,7,4).", "1 7 4 MAX3"},
		{"min single", "MIN ( 4 ) .", "4 MIN1"},
		{"max empty", "MAX ( ) .", "MAX0"},
		{"if", "IF ( 1 , 10 , 20 ) .", "1 10 20 IF"},
		{"if with expressions", "IF ( 2 - 2 , 1 , N 1 ) .", "2 2 - 1 1 N IF"},
		{"nested aggregates", "MIN ( 5 , MAX ( 1 , 2 , 3 ) , 4 ) .", "5 1 2 3 MAX3 4 MIN3"},
		{"aggregate inside arithmetic", "1 + MIN ( 2 * 3 , 4 ) * 2 .", "1 2 3 * 4 MIN2 2 * +"},
		{"brackets inside aggregate", "MAX ( ( 1 + 2 ) * 3 , 4 ) .", "1 2 + 3 * 4 MAX2"},
		{"negated aggregate", "N MAX ( 1 , 2 ) .", "1 2 MAX2 N"},
		{"bracketed aggregate", "( MIN ( 1 , 2 ) ) .", "1 2 MIN2"},
		{"string mode without terminator", "1 + 2", "1 2 +"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ConvertString(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, p.String())
			assert.NotContains(t, kindsOf(p.Tokens()), KindLeftParen)
		})
	}
}

func kindsOf(tokens []Token) []Kind {
	out := make([]Kind, len(tokens))
	for i, t := range tokens {
		out[i] = t.Kind
	}
	return out
}

func TestConvert_AggregateCarriesArgc(t *testing.T) {
	p, err := ConvertString("MAX ( 1 , MIN ( 2 , 3 , 4 , 5 ) ) .")
	require.NoError(t, err)

	tokens := p.Tokens()
	require.Len(t, tokens, 7)
	assert.Equal(t, NewAggregate(KindMin, 4).Argc(), tokens[5].Argc())
	assert.Equal(t, KindMin, tokens[5].Kind)
	assert.Equal(t, KindMax, tokens[6].Kind)
	assert.Equal(t, 2, tokens[6].Argc())
}

func TestConvert_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  error
	}{
		{"close without open", ") .", ErrUnbalancedBrackets},
		{"close after operand", "1 + 2 ) .", ErrUnbalancedBrackets},
		{"unclosed bracket", "( 1 + 2 .", ErrUnbalancedBrackets},
		{"unclosed aggregate", "MIN ( 1 , 2 .", ErrUnbalancedBrackets},
		{"unrecognized symbol", "2 $ 3 .", ErrInvalidOperation},
		{"literal overflow", "99999999999999999999 .", ErrInvalidOperation},
		{"aggregate without bracket", "MIN 5 .", ErrMalformedEquation},
		{"separator at top level", "1 , 2 .", ErrMalformedEquation},
		{"empty argument", "MIN ( 1 , , 2 ) .", ErrMalformedEquation},
		{"trailing empty argument", "MAX ( 1 , ) .", ErrMalformedEquation},
		{"if with two arguments", "IF ( 1 , 2 ) .", ErrMalformedEquation},
		{"if with four arguments", "IF ( 1 , 2 , 3 , 4 ) .", ErrMalformedEquation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ConvertString(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestConvert_ErrorPosition(t *testing.T) {
	_, err := ConvertString("1 + 2 ) .")

	var exprErr *ExpressionError
	require.ErrorAs(t, err, &exprErr)
	assert.Equal(t, 3, exprErr.Position)
	assert.Contains(t, exprErr.Error(), "position 3")
}

func TestConvert_ConsumesOnlyOneEquation(t *testing.T) {
	tz := NewTokenizer("1 + 2 . 3 * 4 .")

	first, err := Convert(tz)
	require.NoError(t, err)
	second, err := Convert(tz)
	require.NoError(t, err)

	assert.Equal(t, "1 2 +", first.String())
	assert.Equal(t, "3 4 *", second.String())
}
