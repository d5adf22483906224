package sets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet(t *testing.T) {
	s := New("b", "a")
	assert.True(t, s.Has("a"))
	assert.False(t, s.Has("c"))

	c := s.Clone()
	s.Add("c")
	s.Delete("a")
	assert.Equal(t, []string{"b", "c"}, Sorted(s))
	assert.Equal(t, []string{"a", "b"}, Sorted(c))

	var empty Set[int]
	assert.False(t, empty.Has(1))
	assert.Empty(t, Sorted(empty))
}
