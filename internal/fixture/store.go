// Package fixture resolves, reads and (in regeneration mode) rewrites the
// expected golden artifacts that inspector output is compared against.
package fixture

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrMissingFixture marks a required expected artifact that does not exist.
// Callers branch on it: a missing fixture is only acceptable for cases whose
// classification tolerates a failing outcome.
var ErrMissingFixture = errors.New("expected fixture not found")

// Store resolves expected-artifact locations under the data tree. In
// regeneration mode it overwrites fixtures with freshly computed output; in
// verification mode it is strictly read-only.
type Store struct {
	DataDir string
	Regen   bool
}

// NewStore creates a store rooted at dataDir.
func NewStore(dataDir string, regen bool) *Store {
	return &Store{DataDir: dataDir, Regen: regen}
}

// ExpectedFile returns the conventional single-artifact location for an
// input: <input>-expected.json next to the input, unless an explicit
// override is supplied.
func (s *Store) ExpectedFile(inputRel, override string) string {
	if override != "" {
		return filepath.Join(s.DataDir, filepath.FromSlash(override))
	}
	return filepath.Join(s.DataDir, filepath.FromSlash(inputRel)+"-expected.json")
}

// ExpectedDir returns the conventional multi-artifact directory for a
// solution input: <input>-expected/ next to the input.
func (s *Store) ExpectedDir(inputRel, override string) string {
	if override != "" {
		return filepath.Join(s.DataDir, filepath.FromSlash(override))
	}
	return filepath.Join(s.DataDir, filepath.FromSlash(inputRel)+"-expected")
}

// Read returns the content of a single expected artifact.
func (s *Store) Read(location string) ([]byte, error) {
	data, err := os.ReadFile(location)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s (run with REGEN_TEST_FIXTURES=yes to create it)", ErrMissingFixture, location)
		}
		return nil, fmt.Errorf("reading fixture %s: %w", location, err)
	}
	return data, nil
}

// ReadDir returns the JSON artifacts in an expected directory, keyed by
// filename.
func (s *Store) ReadDir(location string) (map[string][]byte, error) {
	entries, err := os.ReadDir(location)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s (run with REGEN_TEST_FIXTURES=yes to create it)", ErrMissingFixture, location)
		}
		return nil, fmt.Errorf("reading fixture directory %s: %w", location, err)
	}
	files := make(map[string][]byte)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(location, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading fixture %s: %w", e.Name(), err)
		}
		files[e.Name()] = data
	}
	return files, nil
}

// Write replaces a single expected artifact with data. Writes are whole-file
// replacements so an interrupted run never leaves a partial fixture behind.
func (s *Store) Write(location string, data []byte) error {
	if !s.Regen {
		return fmt.Errorf("refusing to write fixture %s outside regeneration mode", location)
	}
	if err := os.MkdirAll(filepath.Dir(location), 0o755); err != nil {
		return fmt.Errorf("creating fixture directory: %w", err)
	}
	if err := os.WriteFile(location, data, 0o644); err != nil {
		return fmt.Errorf("writing fixture %s: %w", location, err)
	}
	return nil
}

// WriteDir recreates an expected directory from the given artifacts,
// removing any previously recorded files so stale entries cannot linger.
func (s *Store) WriteDir(location string, files map[string][]byte) error {
	if !s.Regen {
		return fmt.Errorf("refusing to write fixture directory %s outside regeneration mode", location)
	}
	if err := os.RemoveAll(location); err != nil {
		return fmt.Errorf("clearing fixture directory %s: %w", location, err)
	}
	if err := os.MkdirAll(location, 0o755); err != nil {
		return fmt.Errorf("creating fixture directory %s: %w", location, err)
	}
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(location, name), files[name], 0o644); err != nil {
			return fmt.Errorf("writing fixture %s: %w", name, err)
		}
	}
	return nil
}
