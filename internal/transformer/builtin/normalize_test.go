package builtin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brewetl/internal/frame"
)

/*
TestNormalizeApply_TableDriven verifies the cell semantics of Normalize:

  - Replaces U+00A0 NO-BREAK SPACE with ASCII space.
  - Trims surrounding whitespace.
  - Composes decomposed accents (NFC).
  - Turns strings that end up empty into nulls.
  - Leaves non-string values unchanged.
*/
func TestNormalizeApply_TableDriven(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   any
		want any
	}{
		{"non_string_unchanged", int64(1), int64(1)},
		{"bool_unchanged", true, true},
		{"nil_unchanged", nil, nil},
		{"trim_spaces", " foo\t\n", "foo"},
		{"nbsp_inner", "Brew\u00a0Co", "Brew Co"},
		{"nbsp_edges", "\u00a0Brew\u00a0", "Brew"},
		{"nfc", "Cafe\u0301", "Caf\u00e9"},
		{"blank_to_null", "   ", nil},
		{"empty_to_null", "", nil},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			f, err := frame.New([]string{"v"}, [][]any{{tc.in}})
			require.NoError(t, err)

			out, err := Normalize{}.Apply(f)
			require.NoError(t, err)
			assert.Equal(t, tc.want, out.Rows[0][0])
		})
	}
}

func TestNormalize_Headers(t *testing.T) {
	t.Parallel()

	f, err := frame.New([]string{" name ", "name", "Cafe\u0301 "}, [][]any{{"a", "b", "c"}})
	require.NoError(t, err)

	out, err := Normalize{}.Apply(f)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "name.1", "Caf\u00e9"}, out.Columns)
	assert.True(t, out.Has("name.1"))
}

func TestNormalize_HeadersDifferingOnlyByCase(t *testing.T) {
	t.Parallel()

	f, err := frame.New([]string{"Name", " name", "City", "name.1"}, [][]any{{"a", "b", "c", "d"}})
	require.NoError(t, err)

	out, err := Normalize{}.Apply(f)
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "name.1", "City", "name.1.1"}, out.Columns)
	assert.Equal(t, 1, out.Index("name.1"))
}
