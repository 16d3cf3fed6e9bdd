package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brewetl/internal/frame"
)

func TestInfer(t *testing.T) {
	t.Parallel()

	f, err := frame.New(
		[]string{"id", "lat", "mixed", "flag", "name", "empty", "weird"},
		[][]any{
			{int64(1), 1.5, int64(1), true, "a", nil, true},
			{int64(2), int64(2), "x", false, nil, nil, int64(1)},
			{nil, nil, nil, nil, "c", nil, nil},
		},
	)
	require.NoError(t, err)

	got := Infer(f)
	want := []Column{
		{"id", KindInteger},
		{"lat", KindReal},
		{"mixed", KindText},
		{"flag", KindBoolean},
		{"name", KindText},
		{"empty", KindText},
		{"weird", KindText},
	}
	assert.Equal(t, want, got)
}

func TestCoerce(t *testing.T) {
	t.Parallel()

	f, err := frame.New(
		[]string{"lat", "mixed", "weird"},
		[][]any{
			{int64(2), int64(1), true},
			{1.25, "x", 0.5},
			{nil, nil, nil},
		},
	)
	require.NoError(t, err)

	cols := Infer(f)
	require.NoError(t, Coerce(f, cols))

	assert.Equal(t, []any{2.0, "1", "true"}, f.Rows[0])
	assert.Equal(t, []any{1.25, "x", "0.5"}, f.Rows[1])
	assert.Equal(t, []any{nil, nil, nil}, f.Rows[2])
}

func TestCoerce_Errors(t *testing.T) {
	t.Parallel()

	f, err := frame.New([]string{"a"}, [][]any{{"x"}})
	require.NoError(t, err)

	require.ErrorContains(t, Coerce(f, nil), "0 columns for a frame of width 1")
	require.ErrorContains(t, Coerce(f, []Column{{"a", KindInteger}}), "cannot store string as integer")
}

func TestKindString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "integer", KindInteger.String())
	assert.Equal(t, "real", KindReal.String())
	assert.Equal(t, "boolean", KindBoolean.String())
	assert.Equal(t, "text", KindText.String())
}
