// Package exporter writes Migaku dictionary archives and raw result files.
package exporter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/heartmarshall/wrdict/internal/domain"
)

// DefaultName is the archive base name used when no output path is given.
const DefaultName = "wrdict"

// Archive member names inside the dictionary folder.
const (
	DictionaryFile   = "dictionary.json"
	FrequencyFile    = "frequency.json"
	ConjugationsFile = "conjugations.json"
	HeaderFile       = "header.csv"
)

// ArchivePath normalizes an output path: empty becomes DefaultName and
// ".zip" is appended when missing.
func ArchivePath(path string) string {
	if path == "" {
		path = DefaultName
	}
	if !strings.HasSuffix(path, ".zip") {
		path += ".zip"
	}
	return path
}

// FolderName is the folder inside the archive: the archive base name up to
// its first dot.
func FolderName(path string) string {
	name, _, _ := strings.Cut(filepath.Base(ArchivePath(path)), ".")
	if name == "" {
		return DefaultName
	}
	return name
}

// WriteArchive writes dict as a zip archive and returns the final path.
// header.csv is only written when the dictionary has a header.
func WriteArchive(path string, dict domain.Dictionary) (string, error) {
	path = ArchivePath(path)
	folder := FolderName(path)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("exporter: create dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("exporter: create %s: %w", path, err)
	}

	zw := zip.NewWriter(f)
	members := []struct {
		name  string
		value any
	}{
		{DictionaryFile, nonNil(dict.Entries)},
		{FrequencyFile, nonNil(dict.FrequencyOrder)},
		{ConjugationsFile, nonNil(dict.Conjugations)},
	}
	for _, m := range members {
		if err := writeJSON(zw, folder+"/"+m.name, m.value); err != nil {
			zw.Close()
			f.Close()
			return "", err
		}
	}

	if dict.Header != "" {
		w, err := zw.Create(folder + "/" + HeaderFile)
		if err == nil {
			_, err = w.Write([]byte(dict.Header))
		}
		if err != nil {
			zw.Close()
			f.Close()
			return "", fmt.Errorf("exporter: write %s: %w", HeaderFile, err)
		}
	}

	if err := zw.Close(); err != nil {
		f.Close()
		return "", fmt.Errorf("exporter: finalize zip: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("exporter: close %s: %w", path, err)
	}
	return path, nil
}

func writeJSON(zw *zip.Writer, name string, v any) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("exporter: create %s: %w", name, err)
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("exporter: encode %s: %w", name, err)
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
