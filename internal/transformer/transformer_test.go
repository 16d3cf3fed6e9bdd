package transformer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brewetl/internal/frame"
)

func TestChain_AppliesInOrderAndStops(t *testing.T) {
	t.Parallel()

	var order []string
	step := func(name string, err error) Transformer {
		return Func(func(f *frame.Frame) (*frame.Frame, error) {
			order = append(order, name)
			return f, err
		})
	}

	f, err := frame.New([]string{"a"}, nil)
	require.NoError(t, err)

	out, err := Chain{step("one", nil), step("two", nil)}.Apply(f)
	require.NoError(t, err)
	assert.Same(t, f, out)
	assert.Equal(t, []string{"one", "two"}, order)

	order = nil
	boom := errors.New("boom")
	_, err = Chain{step("one", boom), step("two", nil)}.Apply(f)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"one"}, order)
}

func TestValidationError_Messages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  *ValidationError
		want string
	}{
		{&ValidationError{Context: "Open Brewery DB CSV", Check: CheckNonEmpty}, "Open Brewery DB CSV: no rows returned"},
		{&ValidationError{Context: "ctx", Check: CheckRequiredColumns, Columns: []string{"phone", "city"}}, "ctx: missing required columns ['phone', 'city']"},
		{&ValidationError{Context: "ctx", Check: CheckNotAllNull, Columns: []string{"latitude"}}, "ctx: columns entirely null ['latitude']"},
		{&ValidationError{Context: "ctx", Check: "custom"}, "ctx: check custom failed []"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, tc.err.Error())
	}
}
