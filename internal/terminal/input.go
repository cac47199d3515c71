package terminal

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/peterh/liner"
)

// ErrAborted is returned by ReadInput when the user presses Ctrl+C at the prompt.
var ErrAborted = liner.ErrPromptAborted

// Input reads command lines with editing, history and tab completion.
type Input struct {
	line        *liner.State
	historyFile string
	workingDir  string
	commands    []string
}

// NewInput creates a line reader. History is loaded from historyFile when it
// exists; an empty path disables persistence.
func NewInput(historyFile, workingDir string, commands []string) *Input {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	sorted := append([]string(nil), commands...)
	sort.Strings(sorted)

	in := &Input{
		line:        line,
		historyFile: historyFile,
		workingDir:  workingDir,
		commands:    sorted,
	}
	line.SetCompleter(in.complete)
	in.loadHistory()
	return in
}

func (in *Input) loadHistory() {
	if in.historyFile == "" {
		return
	}
	if f, err := os.Open(in.historyFile); err == nil {
		in.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt.
func (in *Input) ReadInput(prompt string) (string, error) {
	input, err := in.line.Prompt(prompt)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		return "", err
	}

	if strings.TrimSpace(input) != "" {
		in.line.AppendHistory(input)
	}
	return strings.TrimSpace(input), nil
}

// Close saves history and restores the terminal.
func (in *Input) Close() error {
	if in.historyFile != "" {
		if err := os.MkdirAll(filepath.Dir(in.historyFile), 0755); err == nil {
			if f, err := os.OpenFile(in.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
				in.line.WriteHistory(f)
				f.Close()
			}
		}
	}
	return in.line.Close()
}

// complete offers command names for the first word and file paths for the
// argument of commands that take one.
func (in *Input) complete(line string) []string {
	if !strings.Contains(line, " ") {
		var out []string
		for _, c := range in.commands {
			if strings.HasPrefix(c, line) {
				out = append(out, c)
			}
		}
		return out
	}

	cmd, partial, _ := strings.Cut(line, " ")
	if !takesPath(cmd) {
		return nil
	}
	matches := FindMatchingFiles(in.workingDir, partial)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, cmd+" "+m)
	}
	return out
}

func takesPath(cmd string) bool {
	switch cmd {
	case "/file", "/csv":
		return true
	}
	return false
}

// FindMatchingFiles searches for files under workingDir whose relative path
// starts with or contains partial.
func FindMatchingFiles(workingDir string, partial string) []string {
	matches := []string{}

	searchDir := workingDir
	pattern := strings.ToLower(partial)

	if strings.Contains(partial, "/") {
		dir, file := filepath.Split(partial)
		searchDir = filepath.Join(workingDir, dir)
		pattern = strings.ToLower(file)
	}

	filepath.Walk(searchDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}

		relPath, err := filepath.Rel(workingDir, path)
		if err != nil || relPath == "." {
			return nil
		}

		// Skip hidden files and directories
		if strings.HasPrefix(info.Name(), ".") {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if !info.IsDir() {
			relPathLower := strings.ToLower(relPath)
			isMatch := partial == "" ||
				strings.HasPrefix(relPathLower, strings.ToLower(partial)) ||
				strings.Contains(strings.ToLower(info.Name()), pattern)

			if isMatch && len(matches) < 100 {
				matches = append(matches, relPath)
			}
		}

		// Limit depth to avoid scanning too deep
		if strings.Count(relPath, string(filepath.Separator)) > 4 {
			return filepath.SkipDir
		}
		return nil
	})

	return matches
}
