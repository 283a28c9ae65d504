package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Fixture(t *testing.T) {
	path := filepath.Join("..", "..", "data", "mock", "volume_ktlx_20240426.json")
	assert.Equal(t, 0, run(path, "", "9", 3))
}

func TestRun_MissingFile(t *testing.T) {
	assert.Equal(t, 1, run("does-not-exist.json", "", "9", 1))
}

func TestParseCodes(t *testing.T) {
	codes, err := parseCodes("8, 9,")
	require.NoError(t, err)
	assert.Equal(t, []int{8, 9}, codes)

	_, err = parseCodes("x")
	require.Error(t, err)
	_, err = parseCodes(" , ")
	require.Error(t, err)
}
