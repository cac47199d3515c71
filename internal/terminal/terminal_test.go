package terminal

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
}

func TestFindMatchingFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "reviews.csv"))
	writeFile(t, filepath.Join(dir, "notes.txt"))
	writeFile(t, filepath.Join(dir, "data", "march.csv"))
	writeFile(t, filepath.Join(dir, ".hidden", "secret.csv"))

	all := FindMatchingFiles(dir, "")
	require.ElementsMatch(t, []string{"reviews.csv", "notes.txt", filepath.Join("data", "march.csv")}, all)

	require.Equal(t, []string{"reviews.csv"}, FindMatchingFiles(dir, "rev"))
	require.Equal(t, []string{filepath.Join("data", "march.csv")}, FindMatchingFiles(dir, "data/ma"))
}

func TestComplete(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "reviews.csv"))

	in := &Input{workingDir: dir, commands: []string{"/csv", "/chat", "/file", "/history"}}
	require.Equal(t, []string{"/csv", "/chat"}, in.complete("/c"))
	require.Equal(t, []string{"/csv reviews.csv"}, in.complete("/csv rev"))
	require.Nil(t, in.complete("/history rev"))
}

func TestSpinner_StopClearsLine(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf)

	s.Start("Connecting")
	time.Sleep(100 * time.Millisecond)
	s.Stop()
	s.Stop()

	out := buf.String()
	require.Contains(t, out, "Connecting")
	require.Contains(t, out, "\033[2K")
}
