package sim_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poltergeist/mlfq/internal/sim"
)

func TestFileSystem_OpenDupClose(t *testing.T) {
	fs := sim.NewFileSystem("console")

	f, err := fs.Open("console")
	require.NoError(t, err)
	g, err := fs.Dup(f)
	require.NoError(t, err)
	assert.Same(t, f, g)

	fs.Close(f)
	assert.Equal(t, []string{"console"}, fs.OpenFiles())
	fs.Close(g)
	assert.Empty(t, fs.OpenFiles())

	assert.Panics(t, func() { fs.Close(g) })
}

func TestFileSystem_NotFound(t *testing.T) {
	fs := sim.NewFileSystem()
	_, err := fs.Open("missing")
	assert.ErrorIs(t, err, sim.ErrNotFound)

	fs.Create("missing")
	_, err = fs.Open("missing")
	assert.NoError(t, err)
}

func TestFileSystem_DirRefs(t *testing.T) {
	fs := sim.NewFileSystem()
	root, err := fs.Root()
	require.NoError(t, err)
	d := fs.DupDir(root)
	assert.Equal(t, 2, fs.RootRefs())

	fs.PutDir(d)
	fs.PutDir(root)
	assert.Equal(t, 0, fs.RootRefs())
	assert.Panics(t, func() { fs.PutDir(root) })
}

func TestFileSystem_Ops(t *testing.T) {
	fs := sim.NewFileSystem()
	fs.BeginOp()
	fs.EndOp()
	assert.Panics(t, fs.EndOp)
}
