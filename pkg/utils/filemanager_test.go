package utils

import (
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestDiscoverInputFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.txt"), "x")
	touch(t, filepath.Join(dir, "a.txt"), "x")
	touch(t, filepath.Join(dir, "notes.md"), "x")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "dir.txt"), 0755))

	fm := NewFileManager(dir, "", "")

	files, err := fm.DiscoverInputFiles("")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.txt"), filepath.Join(dir, "b.txt")}, files)

	files, err = fm.DiscoverInputFiles("*.md")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "notes.md")}, files)
}

func TestDiscoverInputFiles_MissingDir(t *testing.T) {
	fm := NewFileManager(filepath.Join(t.TempDir(), "nope"), "", "")
	_, err := fm.DiscoverInputFiles("")
	assert.Error(t, err)
}

func TestArchiveInputFile(t *testing.T) {
	root := t.TempDir()
	archive := filepath.Join(root, "archive")
	fm := NewFileManager(root, filepath.Join(root, "out"), archive)

	first := filepath.Join(root, "in", "sales.txt")
	touch(t, first, "one")

	got, err := fm.ArchiveInputFile(first)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(archive, "sales.txt"), got)
	assert.False(t, FileExists(first))

	// A second file with the same name does not overwrite the first.
	touch(t, first, "two")
	got, err = fm.ArchiveInputFile(first)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(archive, "sales_1.txt"), got)

	data, err := os.ReadFile(filepath.Join(archive, "sales.txt"))
	require.NoError(t, err)
	assert.Equal(t, "one", string(data))
}

func TestArchiveInputFile_Disabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.txt")
	touch(t, path, "x")

	got, err := NewFileManager("", "", "").ArchiveInputFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, got)
	assert.True(t, FileExists(path))
}

func TestEnsureDirectories(t *testing.T) {
	root := t.TempDir()
	fm := NewFileManager(root, filepath.Join(root, "out"), filepath.Join(root, "archive"))

	require.NoError(t, fm.EnsureDirectories())
	assert.DirExists(t, fm.OutputDir)
	assert.DirExists(t, fm.ArchiveDir)
}

func TestGenerateOutputFileName(t *testing.T) {
	name := GenerateOutputFileName("{original}_{date}_{uuid}", map[string]string{"original": "sales_data"})
	assert.Regexp(t, regexp.MustCompile(`^sales_data_\d{8}_[0-9a-f-]{36}$`), name)

	assert.Equal(t, "a_b", GenerateOutputFileName("{original}", map[string]string{"original": "a/b"}))
	assert.NotEmpty(t, GenerateOutputFileName("", nil))
}

func TestGenerateOutputFileName_InsertedTextNotExpanded(t *testing.T) {
	params := map[string]string{"original": "{date}_{uuid}", "run": "r1"}

	for i := 0; i < 20; i++ {
		assert.Equal(t, "{date}_{uuid}-r1", GenerateOutputFileName("{original}-{run}", params))
	}

	assert.Equal(t, "override", GenerateOutputFileName("{date}", map[string]string{"date": "override"}))
}

func TestReserveOutputName(t *testing.T) {
	out := t.TempDir()
	fm := NewFileManager("", out, "")
	formats := []string{"xml", "yaml"}

	assert.Equal(t, "sales", fm.ReserveOutputName("sales", formats))
	assert.Equal(t, "sales_1", fm.ReserveOutputName("sales", formats))

	// A report left by an earlier run is not overwritten.
	touch(t, filepath.Join(out, "other.yaml"), "x")
	assert.Equal(t, "other_1", fm.ReserveOutputName("other", formats))
}

func TestReserveOutputName_Concurrent(t *testing.T) {
	fm := NewFileManager("", t.TempDir(), "")

	const n = 16
	names := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			names <- fm.ReserveOutputName("sales", []string{"xml"})
		}()
	}
	wg.Wait()
	close(names)

	seen := make(map[string]bool)
	for name := range names {
		assert.False(t, seen[name], "duplicate name %s", name)
		seen[name] = true
	}
	assert.Len(t, seen, n)
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "sales_data", BaseName("/data/in/sales_data.txt"))
	assert.Equal(t, "noext", BaseName("noext"))
}
