package generic

import (
	"fmt"
	"sort"
	"testing"

	assert_ "github.com/stretchr/testify/assert"
)

func TestOption(t *testing.T) {
	assert := assert_.New(t)

	some := Some(123)
	assert.True(some.IsSome())
	assert.False(some.IsNone())
	assert.Equal(123, some.Unwrap())
	assert.Equal(123, some.UnwrapOr(456))

	none := None[int]()
	assert.False(none.IsSome())
	assert.True(none.IsNone())
	assert.Equal(456, none.UnwrapOr(456))
	assert.Panics(func() { none.Unwrap() })

	err := fmt.Errorf("empty")
	okResult := some.OkOr(err)
	assert.True(okResult.IsOk())
	assert.Equal(err, none.OkOr(err).Error)
}

func TestResult(t *testing.T) {
	assert := assert_.New(t)

	ok := NewResult(123, nil)
	assert.True(ok.IsOk())
	assert.Equal(123, ok.Unwrap())

	bad := NewResult(0, fmt.Errorf("nope"))
	assert.True(bad.IsErr())
	assert.Equal(456, bad.UnwrapOr(456))
	assert.Panics(func() { bad.Unwrap() })

	assert.Equal(123, Unwrap(123, nil))
	assert.Panics(func() { Unwrap_(fmt.Errorf("nope")) })
}

func TestSet(t *testing.T) {
	assert := assert_.New(t)

	s := NewSet[int]()
	assert.Equal(0, s.Count())
	assert.True(s.Add(1))
	assert.False(s.Add(1))
	assert.True(s.Contains(1))
	assert.Equal(1, s.Count())
	assert.True(s.Remove(1))
	assert.False(s.Remove(1))
	assert.False(s.Contains(1))

	s2 := NewSet(3, 1, 2, 3)
	assert.Equal(3, s2.Count())
	assert.True(s2.Contains(1, 2, 3))
	items := s2.ToSlice()
	sort.Ints(items)
	assert.Equal([]int{1, 2, 3}, items)
}
