// Package compare performs structural equality checks between normalized
// actual and expected inspector output. Equality is decided on parsed JSON
// structure (via RFC 8785 canonical bytes), never on string form, so key
// ordering and whitespace differences can never produce a false mismatch.
package compare

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// FieldDiff names one structural difference between expected and actual.
type FieldDiff struct {
	Path     string // e.g. packages[0].dependencies[2].version
	Expected string
	Actual   string
}

func (d FieldDiff) String() string {
	return fmt.Sprintf("%s: expected %s, got %s", d.Path, d.Expected, d.Actual)
}

// Result is the outcome of a single-document comparison.
type Result struct {
	Equal  bool
	Diffs  []FieldDiff
	expect any
	actual any
}

// JSON compares two JSON documents structurally. On mismatch the result
// carries the differing field paths for diagnosis.
func JSON(expected, actual []byte) (*Result, error) {
	canonExpected, err := jsoncanonicalizer.Transform(expected)
	if err != nil {
		return nil, fmt.Errorf("canonicalizing expected document: %w", err)
	}
	canonActual, err := jsoncanonicalizer.Transform(actual)
	if err != nil {
		return nil, fmt.Errorf("canonicalizing actual document: %w", err)
	}

	res := &Result{Equal: string(canonExpected) == string(canonActual)}
	if err := json.Unmarshal(expected, &res.expect); err != nil {
		return nil, fmt.Errorf("parsing expected document: %w", err)
	}
	if err := json.Unmarshal(actual, &res.actual); err != nil {
		return nil, fmt.Errorf("parsing actual document: %w", err)
	}
	if !res.Equal {
		walkDiff("", res.expect, res.actual, &res.Diffs)
	}
	return res, nil
}

// RenderDiff produces a human-readable report for a mismatch: the differing
// field paths followed by a character diff of the indented renderings.
func (r *Result) RenderDiff() string {
	if r.Equal {
		return ""
	}
	var b strings.Builder
	b.WriteString("structural differences:\n")
	for _, d := range r.Diffs {
		fmt.Fprintf(&b, "  %s\n", d)
	}

	expected, _ := json.MarshalIndent(r.expect, "", "  ")
	actual, _ := json.MarshalIndent(r.actual, "", "  ")

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(string(expected), string(actual), false)
	b.WriteString("diff:\n")
	for _, diff := range diffs {
		switch diff.Type {
		case diffmatchpatch.DiffDelete:
			fmt.Fprintf(&b, "- %q\n", diff.Text)
		case diffmatchpatch.DiffInsert:
			fmt.Fprintf(&b, "+ %q\n", diff.Text)
		case diffmatchpatch.DiffEqual:
			// Elide long unchanged runs.
			if len(diff.Text) > 60 {
				fmt.Fprintf(&b, "  %q...\n", diff.Text[:57])
			} else {
				fmt.Fprintf(&b, "  %q\n", diff.Text)
			}
		}
	}
	return b.String()
}

// DirResult is the outcome of a directory-mode comparison.
type DirResult struct {
	Equal    bool
	Missing  []string // expected but not produced
	Dangling []string // produced but not expected
	Files    map[string]*Result
}

// Describe names the files causing a directory-mode failure.
func (r *DirResult) Describe() string {
	if r.Equal {
		return ""
	}
	var parts []string
	if len(r.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing result files: %s", strings.Join(r.Missing, ", ")))
	}
	if len(r.Dangling) > 0 {
		parts = append(parts, fmt.Sprintf("dangling result files: %s", strings.Join(r.Dangling, ", ")))
	}
	var mismatched []string
	for name, res := range r.Files {
		if !res.Equal {
			mismatched = append(mismatched, name)
		}
	}
	sort.Strings(mismatched)
	if len(mismatched) > 0 {
		parts = append(parts, fmt.Sprintf("mismatched result files: %s", strings.Join(mismatched, ", ")))
	}
	return strings.Join(parts, "; ")
}

// Directories compares two artifact sets by filename. The produced set must
// equal the expected set exactly: a missing or dangling file fails the
// comparison even when every common file matches. Matched pairs are compared
// with JSON.
func Directories(expected, actual map[string][]byte) (*DirResult, error) {
	res := &DirResult{Equal: true, Files: make(map[string]*Result)}

	for name := range expected {
		if _, ok := actual[name]; !ok {
			res.Missing = append(res.Missing, name)
		}
	}
	for name := range actual {
		if _, ok := expected[name]; !ok {
			res.Dangling = append(res.Dangling, name)
		}
	}
	sort.Strings(res.Missing)
	sort.Strings(res.Dangling)
	if len(res.Missing) > 0 || len(res.Dangling) > 0 {
		res.Equal = false
	}

	for name, want := range expected {
		got, ok := actual[name]
		if !ok {
			continue
		}
		fileRes, err := JSON(want, got)
		if err != nil {
			return nil, fmt.Errorf("comparing %s: %w", name, err)
		}
		res.Files[name] = fileRes
		if !fileRes.Equal {
			res.Equal = false
		}
	}
	return res, nil
}

// walkDiff records the paths at which two parsed JSON values differ.
func walkDiff(path string, expected, actual any, diffs *[]FieldDiff) {
	switch e := expected.(type) {
	case map[string]any:
		a, ok := actual.(map[string]any)
		if !ok {
			*diffs = append(*diffs, FieldDiff{path, render(expected), render(actual)})
			return
		}
		keys := make([]string, 0, len(e)+len(a))
		for k := range e {
			keys = append(keys, k)
		}
		for k := range a {
			if _, dup := e[k]; !dup {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			ev, inE := e[k]
			av, inA := a[k]
			child := k
			if path != "" {
				child = path + "." + k
			}
			switch {
			case !inE:
				*diffs = append(*diffs, FieldDiff{child, "<absent>", render(av)})
			case !inA:
				*diffs = append(*diffs, FieldDiff{child, render(ev), "<absent>"})
			default:
				walkDiff(child, ev, av, diffs)
			}
		}
	case []any:
		a, ok := actual.([]any)
		if !ok {
			*diffs = append(*diffs, FieldDiff{path, render(expected), render(actual)})
			return
		}
		n := len(e)
		if len(a) < n {
			n = len(a)
		}
		for i := 0; i < n; i++ {
			walkDiff(fmt.Sprintf("%s[%d]", path, i), e[i], a[i], diffs)
		}
		if len(e) != len(a) {
			*diffs = append(*diffs, FieldDiff{
				Path:     path,
				Expected: fmt.Sprintf("%d elements", len(e)),
				Actual:   fmt.Sprintf("%d elements", len(a)),
			})
		}
	default:
		if render(expected) != render(actual) {
			*diffs = append(*diffs, FieldDiff{path, render(expected), render(actual)})
		}
	}
}

// render gives a compact single-line form of a value for diff messages.
func render(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
