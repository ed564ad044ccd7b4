package warning

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Fields(t *testing.T) {
	t.Parallel()
	w, err := Parse("drivers/x.c:42: warning:LONG_LINE: line too long")
	require.NoError(t, err)

	assert.Equal(t, Warning{
		Path:    "drivers/x.c",
		Line:    42,
		Kind:    "LONG_LINE",
		Message: "line too long",
	}, w)
	assert.False(t, w.HasSymbol)
}

func TestParse_MessageWithColons(t *testing.T) {
	t.Parallel()
	w, err := Parse("a.c:7: ERROR:SPACING: need consistent spacing around '*' (ctx:WxV)\r")
	require.NoError(t, err)

	assert.Equal(t, "SPACING", w.Kind)
	assert.Equal(t, "need consistent spacing around '*' (ctx:WxV)", w.Message)
}

func TestParse_Malformed(t *testing.T) {
	t.Parallel()
	cases := []string{
		"",
		"total: 0 errors, 1 warnings, 12 lines checked",
		"a.c:x: warning:LONG_LINE: msg",
		"a.c:0: warning:LONG_LINE: msg",
		"a.c:3: warning LONG_LINE msg",
		"a.c:3: warning:LONG_LINE:msg",
	}
	for _, raw := range cases {
		_, err := Parse(raw)
		require.Error(t, err, raw)
		assert.True(t, errors.Is(err, ErrMalformed), raw)

		var pe *ParseError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, raw, pe.Line)
	}
}

func TestWarning_String(t *testing.T) {
	t.Parallel()
	w := Warning{Path: "a.c", Line: 3, Kind: "LONG_LINE", Message: "x"}.WithSymbol("foo")

	assert.Equal(t, "a.c:3: x", w.String())
	assert.True(t, w.HasSymbol)
	assert.Equal(t, "foo", w.Symbol)
}
