package dropzone

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	sel, err := Classify("/tmp/in/reviews.csv", 3*1024+600)
	require.NoError(t, err)
	require.Equal(t, "reviews.csv", sel.Name)
	require.Equal(t, "reviews.csv (4 KB)", sel.Label())

	_, err = Classify("/tmp/in/notes.txt", 10)
	require.ErrorIs(t, err, ErrNotCSV)
	require.Equal(t, "Please drop a .csv file", err.Error())

	_, err = Classify("/tmp/in/archive.csv.gz", 10)
	require.ErrorIs(t, err, ErrNotCSV)
}

func TestSelect(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "small.csv")
	require.NoError(t, os.WriteFile(path, []byte("text\nhello\n"), 0644))

	sel, err := Select(path)
	require.NoError(t, err)
	require.Equal(t, "small.csv (0 KB)", sel.Label())

	_, err = Select(filepath.Join(dir, "missing.csv"))
	require.Error(t, err)

	_, err = Select(dir)
	require.ErrorIs(t, err, ErrNotCSV)
}

func TestWatcher_ReportsDrops(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "inbox")
	w, err := NewWatcher(dir, 50*time.Millisecond, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, w.Watch())
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "batch.csv"), []byte(strings.Repeat("a", 2048)), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	got := map[string]Event{}
	require.Eventually(t, func() bool {
		for {
			select {
			case ev := <-w.Events():
				got[ev.Name] = ev
			default:
				return len(got) == 2
			}
		}
	}, 3*time.Second, 20*time.Millisecond)

	require.NoError(t, got["batch.csv"].Err)
	require.Equal(t, "batch.csv (2 KB)", got["batch.csv"].Selection.Label())
	require.ErrorIs(t, got["notes.txt"].Err, ErrNotCSV)
}
