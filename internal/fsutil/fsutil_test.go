// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package fsutil

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfineRelPath(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0o755))

	realRoot, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)

	got, err := ConfineRelPath(root, "sub/file.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(realRoot, "sub", "file.txt"), got)

	got, err = ConfineRelPath(root, "a/../b..c")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(realRoot, "b..c"), got)

	for _, bad := range []string{"../etc/passwd", "..", "/abs", "sub\\..\\x"} {
		_, err := ConfineRelPath(root, bad)
		assert.ErrorIs(t, err, ErrEscapesRoot, bad)
	}
}

func TestConfineRelPath_Symlink(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	require.NoError(t, os.Symlink(outside, filepath.Join(root, "link")))

	_, err := ConfineRelPath(root, "link/file.txt")
	assert.ErrorIs(t, err, ErrEscapesRoot)
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"report.pdf":          "report.pdf",
		"../../etc/passwd":    "passwd",
		`C:\Users\me\a b.txt`: "a_b.txt",
		".hidden":             "hidden",
		"":                    "upload",
		"ü/ö":                 "upload",
		"naïve.txt":           "na_ve.txt",
	}
	for in, want := range cases {
		assert.Equal(t, want, SanitizeFilename(in), in)
	}

	long := strings.Repeat("a", 300) + ".bin"
	got := SanitizeFilename(long)
	assert.Len(t, got, maxNameLen)
	assert.True(t, strings.HasSuffix(got, ".bin"))
}

func TestWriteAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o600))

	n, err := WriteAtomic(context.Background(), path, strings.NewReader("new content"))
	require.NoError(t, err)
	assert.Equal(t, int64(len("new content")), n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new content", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}

func TestWriteAtomic_MissingDir(t *testing.T) {
	_, err := WriteAtomic(context.Background(), filepath.Join(t.TempDir(), "nope", "x"), strings.NewReader("x"))
	assert.Error(t, err)
}
