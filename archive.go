package main

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// isZipArchive reports whether the input names an existing .zip file.
func isZipArchive(path string) bool {
	if !strings.HasSuffix(strings.ToLower(path), ".zip") {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// extractArchive unpacks a zip archive into a fresh temporary directory
// and returns its path. Entry names must stay inside the extraction
// directory; anything else aborts the extraction.
func extractArchive(archivePath string) (string, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return "", fmt.Errorf("opening archive %s: %w", archivePath, err)
	}
	defer reader.Close()

	tempDir, err := os.MkdirTemp("", "facet-archive-")
	if err != nil {
		return "", fmt.Errorf("creating extraction directory: %w", err)
	}

	for _, entry := range reader.File {
		if err := extractEntry(entry, tempDir); err != nil {
			_ = os.RemoveAll(tempDir)
			return "", err
		}
	}
	return tempDir, nil
}

func extractEntry(entry *zip.File, destDir string) error {
	destPath := filepath.Join(destDir, filepath.FromSlash(entry.Name))
	if !strings.HasPrefix(destPath, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return fmt.Errorf("archive entry %q escapes extraction directory", entry.Name)
	}
	if entry.FileInfo().IsDir() {
		return os.MkdirAll(destPath, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return err
	}

	src, err := entry.Open()
	if err != nil {
		return fmt.Errorf("opening archive entry %s: %w", entry.Name, err)
	}
	defer src.Close()

	dst, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, entry.Mode())
	if err != nil {
		return err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("extracting %s: %w", entry.Name, err)
	}
	return nil
}
