// Package catalog enumerates candidate manifest files from the test data
// tree and maps each one to its expected outcome. Classification is an
// explicit table handed to the harness, never ambient state: the historical
// hard-coded exclusion lists live in a YAML file checked in next to the data.
package catalog

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Outcome classifies what the harness expects from running the inspector on
// an input. The zero value is not valid; entries absent from the table
// default to ExpectSuccess.
type Outcome string

const (
	// ExpectSuccess requires exit code 0 and a fixture match.
	ExpectSuccess Outcome = "expect-success"
	// ExpectErrorWithOutput tolerates a non-zero exit but still compares the
	// best-effort output against the fixture.
	ExpectErrorWithOutput Outcome = "expect-error-with-output"
	// ExpectErrorNoOutput tolerates a non-zero exit and skips comparison.
	ExpectErrorNoOutput Outcome = "expect-error-no-output"
	// KnownFailing marks a tracked failure (xfail): the case still runs, a
	// failure is expected, and an unexpected pass is flagged for review.
	KnownFailing Outcome = "known-failing"
)

// Valid reports whether o is one of the defined outcomes.
func (o Outcome) Valid() bool {
	switch o {
	case ExpectSuccess, ExpectErrorWithOutput, ExpectErrorNoOutput, KnownFailing:
		return true
	}
	return false
}

// Match kinds for classification rules. Suffix matching tolerates path-prefix
// variation across data-tree reorganizations but must be requested
// explicitly per rule.
const (
	MatchExact  = "exact"
	MatchSuffix = "suffix"
)

// Rule binds one input path (or path suffix) to its classification and any
// extra inspector flags or expected-artifact override.
type Rule struct {
	Path     string   `yaml:"path"`
	Match    string   `yaml:"match,omitempty"`
	Outcome  Outcome  `yaml:"outcome"`
	Args     []string `yaml:"args,omitempty"`
	Expected string   `yaml:"expected,omitempty"`
	Skip     bool     `yaml:"skip,omitempty"`
	Reason   string   `yaml:"reason,omitempty"`
}

// Table is the classification table for a data tree.
type Table struct {
	exact  map[string]Rule
	suffix []Rule
}

// NewTable builds a table from rules, validating each one. Duplicate exact
// paths are rejected: each input must map to exactly one classification.
func NewTable(rules []Rule) (*Table, error) {
	t := &Table{exact: make(map[string]Rule)}
	for i, r := range rules {
		if r.Path == "" {
			return nil, fmt.Errorf("rule %d: empty path", i)
		}
		if !r.Outcome.Valid() {
			return nil, fmt.Errorf("rule %d (%s): unknown outcome %q", i, r.Path, r.Outcome)
		}
		r.Path = path.Clean(filepath.ToSlash(r.Path))
		switch r.Match {
		case "", MatchExact:
			r.Match = MatchExact
			if _, dup := t.exact[r.Path]; dup {
				return nil, fmt.Errorf("rule %d: duplicate classification for %q", i, r.Path)
			}
			t.exact[r.Path] = r
		case MatchSuffix:
			t.suffix = append(t.suffix, r)
		default:
			return nil, fmt.Errorf("rule %d (%s): unknown match kind %q", i, r.Path, r.Match)
		}
	}
	return t, nil
}

// LoadTable reads a YAML classification table.
func LoadTable(location string) (*Table, error) {
	data, err := os.ReadFile(location)
	if err != nil {
		return nil, fmt.Errorf("reading classification table: %w", err)
	}
	var doc struct {
		Rules []Rule `yaml:"rules"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing classification table %s: %w", location, err)
	}
	return NewTable(doc.Rules)
}

// Lookup returns the rule for a relative input path. Exact rules win over
// suffix rules; among suffix rules the first match in table order wins.
// Inputs with no rule default to ExpectSuccess.
func (t *Table) Lookup(rel string) Rule {
	rel = path.Clean(filepath.ToSlash(rel))
	if r, ok := t.exact[rel]; ok {
		return r
	}
	for _, r := range t.suffix {
		if rel == r.Path || strings.HasSuffix(rel, "/"+r.Path) {
			return r
		}
	}
	return Rule{Path: rel, Match: MatchExact, Outcome: ExpectSuccess}
}

// Rules returns all rules in the table, exact rules first. Used by the list
// command for exclusion-list maintenance.
func (t *Table) Rules() []Rule {
	out := make([]Rule, 0, len(t.exact)+len(t.suffix))
	for _, r := range t.exact {
		out = append(out, r)
	}
	out = append(out, t.suffix...)
	return out
}

// Find returns the relative slash-separated paths under root that match
// pattern, minus entries whose rule is marked Skip. Patterns of the form
// "**/<glob>" match the glob against the basename at any depth; any other
// pattern is matched against the whole relative path. The result order is the
// deterministic lexical walk order; callers needing a different order sort
// explicitly.
func Find(root, pattern string, table *Table) ([]string, error) {
	base, anyDepth := strings.CutPrefix(pattern, "**/")
	if _, err := path.Match(base, ""); err != nil {
		return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
	}

	var found []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		var ok bool
		if anyDepth {
			ok, _ = path.Match(base, path.Base(rel))
		} else {
			ok, _ = path.Match(base, rel)
		}
		if !ok {
			return nil
		}
		if table != nil && table.Lookup(rel).Skip {
			return nil
		}
		found = append(found, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}
	return found, nil
}
