package sftpmount

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestFsopsIsReadable(t *testing.T) {
	fs := newFsops(afero.NewMemMapFs())
	require.NoError(t, fs.MkdirAll("/srv/share", 0755))

	require.True(t, fs.isReadable("/srv/share"))
	require.False(t, fs.isReadable("/srv/does-not-exist"))
}

func TestFsopsRmdir(t *testing.T) {
	fs := newFsops(afero.NewMemMapFs())
	require.NoError(t, fs.MkdirAll("/srv/share/d", 0755))

	require.NoError(t, fs.rmdir("/srv/share/d"))

	_, err := fs.Stat("/srv/share/d")
	require.Error(t, err)
}

func TestFsopsExistsOrSymlinkForRegularFile(t *testing.T) {
	fs := newFsops(afero.NewMemMapFs())
	require.NoError(t, fs.MkdirAll("/srv/share", 0755))
	require.NoError(t, afero.WriteFile(fs, "/srv/share/f", []byte("x"), 0644))

	require.True(t, fs.existsOrSymlink("/srv/share/f"))
	require.False(t, fs.existsOrSymlink("/srv/share/nope"))
}

func TestFsopsIsSymlinkFallsBackWithoutLstater(t *testing.T) {
	// afero.MemMapFs does not implement afero.Lstater, so isSymlink falls
	// back to a plain Stat and never reports true - a known test-coverage
	// gap for symlink-specific handler behaviour (see DESIGN.md, fsops.go).
	fs := newFsops(afero.NewMemMapFs())
	require.NoError(t, fs.MkdirAll("/srv/share", 0755))
	require.NoError(t, afero.WriteFile(fs, "/srv/share/f", []byte("x"), 0644))

	isLink, fi, err := fs.isSymlink("/srv/share/f")
	require.NoError(t, err)
	require.False(t, isLink)
	require.Equal(t, "f", fi.Name())
}
