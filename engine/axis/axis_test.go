package axis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestValueAxisLabels(t *testing.T) {
	a := NewValueAxis(WithRange(0, 2000), WithSegmentCount(2), WithLabelFormat("%.0f"))
	assert.Equal(t, []string{"0", "1,000", "2,000"}, a.Labels())

	de := NewValueAxis(WithRange(0, 2000), WithSegmentCount(2), WithLabelFormat("%.1f"), WithLocale(language.German))
	assert.Equal(t, "1.000,0", de.Labels()[1])
}

func TestSettersAreIdempotent(t *testing.T) {
	a := NewValueAxis()
	var got []Aspect
	a.Subscribe(func(as Aspect) { got = append(got, as) })

	a.SetTitle("height")
	a.SetTitle("height")
	require.NoError(t, a.SetSegmentCount(5))
	require.NoError(t, a.SetSubSegmentCount(2))
	require.NoError(t, a.SetSubSegmentCount(2))

	assert.Equal(t, []Aspect{AspectTitle, AspectSubSegmentCount}, got)
}

func TestInconsistentConfigurationRejected(t *testing.T) {
	c := NewCategoryAxis(WithLabels("a", "b"))
	assert.ErrorIs(t, c.SetRange(0, 1), ErrNotValueAxis)
	assert.ErrorIs(t, c.SetSegmentCount(3), ErrNotValueAxis)

	v := NewValueAxis()
	assert.ErrorIs(t, v.SetLabels([]string{"x"}), ErrCategoryOnly)
	assert.ErrorIs(t, v.SetRange(5, 1), ErrInvalidRange)
	assert.ErrorIs(t, v.SetSegmentCount(0), ErrInvalidSegmentCount)

	min, max := v.Range()
	assert.Equal(t, float32(0), min)
	assert.Equal(t, float32(10), max)
	assert.Equal(t, 5, v.SegmentCount())
}

func TestAdjustToData(t *testing.T) {
	v := NewValueAxis(WithSegmentCount(4))
	var got []Aspect
	v.Subscribe(func(as Aspect) { got = append(got, as) })

	v.AdjustToData(3, 37)
	min, max := v.Range()
	assert.Equal(t, float32(0), min)
	assert.Equal(t, float32(40), max)
	assert.Equal(t, []Aspect{AspectRange, AspectLabels}, got)

	require.NoError(t, v.SetRange(-1, 1))
	assert.False(t, v.AutoAdjustRange())
	v.AdjustToData(0, 100)
	_, max = v.Range()
	assert.Equal(t, float32(1), max)
}

func TestNiceRange(t *testing.T) {
	lo, hi := NiceRange(-12, 48, 6)
	assert.Equal(t, float32(-20), lo)
	assert.Equal(t, float32(50), hi)

	lo, hi = NiceRange(0, 0, 5)
	assert.Equal(t, float32(0), lo)
	assert.Equal(t, float32(1), hi)
}

func TestCategoryLabelsAreCopies(t *testing.T) {
	c := NewCategoryAxis(WithLabels("a", "b"))
	labels := c.Labels()
	labels[0] = "z"
	assert.Equal(t, []string{"a", "b"}, c.Labels())
	assert.Equal(t, "y", OrientationY.String())
}
