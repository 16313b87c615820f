package api

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Snapshot is the on-disk form of a market listing, shaped like the
// /markets response body.
type Snapshot struct {
	Markets []APIMarket `json:"markets"`
}

// WriteSnapshot writes markets to path. The file is written to a temporary
// sibling and renamed into place, so readers never see a partial file.
func WriteSnapshot(path string, markets []APIMarket) error {
	if markets == nil {
		markets = []APIMarket{}
	}
	data, err := json.MarshalIndent(Snapshot{Markets: markets}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}

// ReadSnapshot reads a snapshot written by WriteSnapshot.
func ReadSnapshot(path string) ([]APIMarket, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	return snap.Markets, nil
}
