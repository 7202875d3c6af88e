package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCPUList(t *testing.T) {
	cpus, err := parseCPUList("2,3")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, cpus)

	cpus, err = parseCPUList(" 0 , 7 ")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 7}, cpus)

	_, err = parseCPUList("2,x")
	assert.Error(t, err)

	_, err = parseCPUList("")
	assert.Error(t, err)
}
