// Package export writes and reads the results document shared with the
// browser viewer. Writes are atomic: readers see either the previous file
// or the complete new one.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/veryresto/pingmo/internal/models"
)

// ErrMalformed is returned by Load when a document is not valid JSON or
// lacks a key the viewer depends on.
var ErrMalformed = errors.New("malformed results document")

// DefaultPath returns the output file name used when none is given.
func DefaultPath(t time.Time) string {
	return fmt.Sprintf("ping_results_%s.json", t.Format("2006-01-02-15.04"))
}

// Write serializes doc to path through a temporary file in the same
// directory followed by a rename.
func Write(path string, doc models.Document) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err = enc.Encode(doc); err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err = os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}

// CheckWritable verifies that a file can be created next to path, so that
// an unusable output location is reported before sampling starts.
func CheckWritable(path string) error {
	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("output directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("output directory %s is not a directory", dir)
	}
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		return fmt.Errorf("output path %s is a directory", path)
	}

	probe, err := os.CreateTemp(dir, ".pingmo-probe-*")
	if err != nil {
		return fmt.Errorf("output directory not writable: %w", err)
	}
	probe.Close()
	return os.Remove(probe.Name())
}
