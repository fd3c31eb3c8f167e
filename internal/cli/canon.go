package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aboutcode-org/nuget-inspector/internal/pkgtree"
)

// addCanonCommand adds the offline fixture-authoring canonicalizer. It never
// runs on the comparison path: it exists so hand-maintained fixtures can be
// rewritten into the flat, deterministically ordered form.
func (app *App) addCanonCommand(rootCmd *cobra.Command) {
	var write bool

	canonCmd := &cobra.Command{
		Use:   "canon <result.json>",
		Short: "Canonicalize the dependency tree of a result document",
		Long: `Sort the packages tree of a result document by package identity at every
depth, then flatten it so every package appears exactly once with an empty
dependency list. The canonical form is independent of the resolver's
traversal order and safe to store as a long-lived fixture.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			out, err := canonicalizeDocument(args[0])
			if err != nil {
				return err
			}
			if write {
				return os.WriteFile(args[0], out, 0o644)
			}
			fmt.Print(string(out))
			return nil
		},
	}
	canonCmd.Flags().BoolVarP(&write, "write", "w", false, "Rewrite the file in place instead of printing")

	rootCmd.AddCommand(canonCmd)
}

// canonicalizeDocument rewrites the packages tree of the document at path
// into canonical flat form, leaving every other field untouched.
func canonicalizeDocument(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	packagesRaw, ok := doc["packages"]
	if !ok {
		return nil, fmt.Errorf("%s has no packages array", path)
	}

	var packages []*pkgtree.Node
	if err := json.Unmarshal(packagesRaw, &packages); err != nil {
		return nil, fmt.Errorf("parsing packages of %s: %w", path, err)
	}

	flat := pkgtree.Canonicalize(packages)
	encoded, err := json.Marshal(flat)
	if err != nil {
		return nil, err
	}
	doc["packages"] = encoded

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
