package parser

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ConaryLabs/mira/internal/codestore"
)

const sampleGoSource = `package sample

type Greeter struct{}

func (g *Greeter) Hello(name string) string {
	return greet(name)
}

func greet(name string) string {
	return "hello " + name
}
`

func openTestCodeStore(t *testing.T) *codestore.Store {
	t.Helper()
	s, err := codestore.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestIndexFile_ExtractsSymbolsCallsAndChunks(t *testing.T) {
	store := openTestCodeStore(t)
	ix := NewIndexer(store, NewRegistry())
	dir := t.TempDir()
	path := writeFile(t, dir, "sample.go", sampleGoSource)

	require.NoError(t, ix.IndexFile(context.Background(), 1, path))

	files, err := store.ListFiles(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "go", files[0].Language)

	chunks, err := store.KeywordSearch(context.Background(), 1, "greet", 10)
	require.NoError(t, err)
	assert.NotEmpty(t, chunks)
}

func TestIndexFile_UnchangedContentSkipsReparse(t *testing.T) {
	store := openTestCodeStore(t)
	ix := NewIndexer(store, NewRegistry())
	dir := t.TempDir()
	path := writeFile(t, dir, "sample.go", sampleGoSource)

	require.NoError(t, ix.IndexFile(context.Background(), 1, path))
	first, err := store.ListFiles(context.Background(), 1)
	require.NoError(t, err)

	require.NoError(t, ix.IndexFile(context.Background(), 1, path))
	second, err := store.ListFiles(context.Background(), 1)
	require.NoError(t, err)

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].Fingerprint, second[0].Fingerprint)
}

func TestIndexFile_UnsupportedExtensionIsNotAnError(t *testing.T) {
	store := openTestCodeStore(t)
	ix := NewIndexer(store, NewRegistry())
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.txt", "just some prose")

	assert.NoError(t, ix.IndexFile(context.Background(), 1, path))

	files, err := store.ListFiles(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestIndexFile_DeletedFileRemovesRow(t *testing.T) {
	store := openTestCodeStore(t)
	ix := NewIndexer(store, NewRegistry())
	dir := t.TempDir()
	path := writeFile(t, dir, "sample.go", sampleGoSource)

	require.NoError(t, ix.IndexFile(context.Background(), 1, path))
	require.NoError(t, os.Remove(path))
	require.NoError(t, ix.IndexFile(context.Background(), 1, path))

	files, err := store.ListFiles(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestCanonicalPath_NormalizesBackslashes(t *testing.T) {
	assert.Equal(t, "a/b/c.go", canonicalPath(`a\b\c.go`))
	assert.Equal(t, "a/b/c.go", canonicalPath("a/b/c.go"))
}

func TestSkipDir_SkipsKnownNoiseDirectories(t *testing.T) {
	assert.True(t, SkipDir("node_modules"))
	assert.True(t, SkipDir(".git"))
	assert.True(t, SkipDir(".hidden"))
	assert.False(t, SkipDir("src"))
}
