package exporter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/heartmarshall/wrdict/internal/domain"
)

// SaveResults writes results as a flat JSON array that LoadResults and the
// aggregator accept unchanged.
func SaveResults(path string, results []domain.LookupResult) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("exporter: create dir: %w", err)
		}
	}

	data, err := json.Marshal(nonNil(results))
	if err != nil {
		return fmt.Errorf("exporter: encode results: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("exporter: write %s: %w", path, err)
	}
	return nil
}

// LoadResults reads a results file written by SaveResults.
func LoadResults(path string) ([]domain.LookupResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("exporter: read %s: %w", path, err)
	}

	var results []domain.LookupResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("exporter: decode %s: %w", path, err)
	}
	return results, nil
}
