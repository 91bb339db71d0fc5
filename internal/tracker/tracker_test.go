package tracker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewWithoutBackingFile(t *testing.T) {
	tr := New(filepath.Join(t.TempDir(), "tracking.json"))

	stats := tr.Stats()
	assert.Equal(t, 0, stats.TotalDocuments)
	assert.Equal(t, 0, stats.TotalChunks)
}

func TestNewWithCorruptBackingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tracking.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	tr := New(path)
	assert.Equal(t, 0, tr.Stats().TotalDocuments, "corrupt file should degrade to empty tracker")
}

func TestIsProcessedUnknownFile(t *testing.T) {
	dir := t.TempDir()
	tr := New(filepath.Join(dir, "tracking.json"))
	doc := writeDoc(t, dir, "a.txt", "contents")

	assert.False(t, tr.IsProcessed(doc))
}

func TestMarkProcessedThenIsProcessed(t *testing.T) {
	dir := t.TempDir()
	tr := New(filepath.Join(dir, "tracking.json"))
	doc := writeDoc(t, dir, "a.txt", "contents")

	tr.MarkProcessed(doc, 5)
	assert.True(t, tr.IsProcessed(doc))

	stats := tr.Stats()
	assert.Equal(t, 1, stats.TotalDocuments)
	assert.Equal(t, 5, stats.TotalChunks)
}

func TestChangedFileNeedsReprocessing(t *testing.T) {
	dir := t.TempDir()
	tr := New(filepath.Join(dir, "tracking.json"))
	doc := writeDoc(t, dir, "a.txt", "version one")

	tr.MarkProcessed(doc, 3)
	require.True(t, tr.IsProcessed(doc))

	require.NoError(t, os.WriteFile(doc, []byte("version two"), 0644))
	assert.False(t, tr.IsProcessed(doc), "mutated file must report unprocessed")
}

func TestVanishedFileNeedsReprocessing(t *testing.T) {
	dir := t.TempDir()
	tr := New(filepath.Join(dir, "tracking.json"))
	doc := writeDoc(t, dir, "a.txt", "contents")

	tr.MarkProcessed(doc, 2)
	require.NoError(t, os.Remove(doc))

	assert.False(t, tr.IsProcessed(doc), "unverifiable file must fail toward reprocessing")
}

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	trackingFile := filepath.Join(dir, "tracking.json")
	doc := writeDoc(t, dir, "a.txt", "stable contents")

	tr := New(trackingFile)
	tr.MarkProcessed(doc, 7)
	require.NoError(t, tr.Save())

	reloaded := New(trackingFile)
	assert.True(t, reloaded.IsProcessed(doc))

	stats := reloaded.Stats()
	assert.Equal(t, 1, stats.TotalDocuments)
	assert.Equal(t, 7, stats.TotalChunks)
	assert.Equal(t, trackingFile, stats.TrackingFile)
}

func TestMarkProcessedOverwrites(t *testing.T) {
	dir := t.TempDir()
	tr := New(filepath.Join(dir, "tracking.json"))
	doc := writeDoc(t, dir, "a.txt", "contents")

	tr.MarkProcessed(doc, 3)
	tr.MarkProcessed(doc, 9)

	stats := tr.Stats()
	assert.Equal(t, 1, stats.TotalDocuments)
	assert.Equal(t, 9, stats.TotalChunks)
}

func TestClear(t *testing.T) {
	dir := t.TempDir()
	trackingFile := filepath.Join(dir, "tracking.json")
	doc := writeDoc(t, dir, "a.txt", "contents")

	tr := New(trackingFile)
	tr.MarkProcessed(doc, 4)
	require.NoError(t, tr.Save())

	require.NoError(t, tr.Clear())
	assert.Equal(t, 0, tr.Stats().TotalDocuments)

	// Clear persists immediately: a reload must also be empty.
	reloaded := New(trackingFile)
	assert.Equal(t, 0, reloaded.Stats().TotalDocuments)
}

func TestSaveCreatesParentDirectory(t *testing.T) {
	dir := t.TempDir()
	trackingFile := filepath.Join(dir, "nested", "state", "tracking.json")

	tr := New(trackingFile)
	require.NoError(t, tr.Save())

	_, err := os.Stat(trackingFile)
	assert.NoError(t, err)
}
