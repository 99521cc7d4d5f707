package docvalues

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSliceValues(t *testing.T) {
	v := NewSliceValues([]int64{10, 20, 30}, []bool{true, false, true})

	ok, err := v.AdvanceTo(0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(10), v.Value())

	// Doc 1 is marked missing.
	ok, err = v.AdvanceTo(1)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = v.AdvanceTo(2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(30), v.Value())

	// Past the column.
	ok, err = v.AdvanceTo(5)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSliceValuesForwardOnly(t *testing.T) {
	v := NewSliceValues([]string{"a", "b"}, nil)

	_, err := v.AdvanceTo(1)
	require.NoError(t, err)

	_, err = v.AdvanceTo(0)
	assert.Error(t, err)
}

func TestMapSource(t *testing.T) {
	src := NewMapSource().
		AddInt64("price", []int64{5}, nil).
		AddFloat64("rating", []float64{4.5}, nil).
		AddKeyword("brand", []string{"acme"}, nil).
		MarkMultiValued("tags")

	iv, err := src.Int64Values("price")
	require.NoError(t, err)
	ok, err := iv.AdvanceTo(0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(5), iv.Value())

	fv, err := src.Float64Values("rating")
	require.NoError(t, err)
	ok, err = fv.AdvanceTo(0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 4.5, fv.Value())

	kv, err := src.KeywordValues("brand")
	require.NoError(t, err)
	ok, err = kv.AdvanceTo(0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "acme", kv.Value())

	assert.True(t, src.MultiValued("tags"))
	assert.False(t, src.MultiValued("brand"))

	_, err = src.Int64Values("missing")
	assert.ErrorIs(t, err, ErrUnknownField)
	_, err = src.Float64Values("missing")
	assert.ErrorIs(t, err, ErrUnknownField)
	_, err = src.KeywordValues("missing")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestMapSourceFreshReaders(t *testing.T) {
	src := NewMapSource().AddInt64("price", []int64{1, 2}, nil)

	first, err := src.Int64Values("price")
	require.NoError(t, err)
	_, err = first.AdvanceTo(1)
	require.NoError(t, err)

	// Every call hands out a reader positioned before the first doc.
	second, err := src.Int64Values("price")
	require.NoError(t, err)
	ok, err := second.AdvanceTo(0)
	require.NoError(t, err)
	assert.True(t, ok)
}
