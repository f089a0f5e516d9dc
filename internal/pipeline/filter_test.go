package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatcher(t *testing.T) {
	m := NewMatcher([]string{"*.part", ".*", " "})

	assert.True(t, m.ShouldIgnore("/data/run1/file.part"))
	assert.True(t, m.ShouldIgnore("/data/.staging/file.dat"))
	assert.True(t, m.ShouldIgnore(".hidden"))
	assert.False(t, m.ShouldIgnore("/data/run1/file.dat"))
	assert.False(t, m.ShouldIgnore("/data/file.partial"))
}

func TestMatcherEmpty(t *testing.T) {
	var m *Matcher
	assert.True(t, m.Empty())
	assert.False(t, m.ShouldIgnore("/x.part"))

	assert.True(t, NewMatcher([]string{"", "  "}).Empty())
}
