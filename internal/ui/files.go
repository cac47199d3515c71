package ui

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
)

// Download file names
const (
	CSVFileName       = "analysis_results.csv"
	PDFFileName       = "sentiment_report.pdf"
	WordcloudFileName = "wordcloud.png"
)

// SaveDownload writes data into the download directory and returns the path.
// The file appears atomically: readers never see a partial download.
func (d *Display) SaveDownload(name string, data []byte) (string, error) {
	d.mu.Lock()
	dir := d.downloadDir
	d.mu.Unlock()

	path := filepath.Join(dir, filepath.Base(name))
	if err := atomicWriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

// SaveWordcloud decodes a base64 PNG and stores it next to other downloads.
func (d *Display) SaveWordcloud(b64 string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return "", fmt.Errorf("failed to decode word cloud: %w", err)
	}
	return d.SaveDownload(WordcloudFileName, data)
}

func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	dir := filepath.Dir(absPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	f, err := os.CreateTemp(dir, ".tmp-")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := f.Name()

	success := false
	defer func() {
		if !success {
			f.Close()
			os.Remove(tempPath)
		}
	}()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tempPath, perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tempPath, absPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}
