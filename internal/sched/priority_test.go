package sched

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassString(t *testing.T) {
	assert.Equal(t, "render", ClassRender.String())
	assert.Equal(t, "other", ClassOther.String())
	assert.Equal(t, "normal", ClassNormal.String())
	assert.Equal(t, "background", ClassBackground.String())
	assert.Equal(t, "class(9)", Class(9).String())
}

func TestClassElevated(t *testing.T) {
	assert.True(t, ClassRender.Elevated())
	assert.True(t, ClassOther.Elevated())
	assert.False(t, ClassNormal.Elevated())
	assert.False(t, ClassBackground.Elevated())
}

func TestParseClass_AcceptsElevatedLabels(t *testing.T) {
	c, err := ParseClass("render")
	assert.NoError(t, err)
	assert.Equal(t, ClassRender, c)

	c, err = ParseClass("other")
	assert.NoError(t, err)
	assert.Equal(t, ClassOther, c)

	// legacy alias
	c, err = ParseClass("game")
	assert.NoError(t, err)
	assert.Equal(t, ClassOther, c)
}

func TestParseClass_RejectsEverythingElse(t *testing.T) {
	for _, name := range []string{"normal", "background", "fast", ""} {
		_, err := ParseClass(name)
		assert.ErrorIs(t, err, ErrInvalidClass, "label %q", name)
	}
}
