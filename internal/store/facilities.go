// Package store persists the canonical facility directory as JSON and
// records reconciliation runs in a SQLite history database.
package store

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/zimhealth/registry-cli/internal/model"
)

// LoadFacilities reads the facility store at path. An absent file is an
// empty store so the first run bootstraps cleanly.
func LoadFacilities(path string) ([]model.Facility, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "store: read facilities")
	}

	var facilities []model.Facility
	if err := json.Unmarshal(data, &facilities); err != nil {
		return nil, eris.Wrapf(err, "store: parse facilities %s", path)
	}
	return facilities, nil
}

// SaveFacilities writes the facility store: two-space indent, unescaped
// unicode, trailing newline. The frontend build reads this file directly.
func SaveFacilities(path string, facilities []model.Facility) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrap(err, "store: create data dir")
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(facilities); err != nil {
		return eris.Wrap(err, "store: encode facilities")
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return eris.Wrapf(err, "store: write facilities %s", path)
	}
	return nil
}
