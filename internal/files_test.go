package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFullPathname(t *testing.T) {
	name, err := FullPathname("-")
	require.NoError(t, err)
	assert.Equal(t, "-", name)

	name, err = FullPathname("/data/in.bam")
	require.NoError(t, err)
	assert.Equal(t, "/data/in.bam", name)

	wd, err := os.Getwd()
	require.NoError(t, err)
	name, err = FullPathname("in.bam")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "in.bam"), name)
}

func TestCreateFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "logs", "run", "test.log")
	f, err := CreateFile(name)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	_, err = os.Stat(name)
	assert.NoError(t, err)
}
