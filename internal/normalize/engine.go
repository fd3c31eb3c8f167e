// Package normalize strips environment-specific and run-volatile content from
// inspector output so repeated runs are comparable against stored fixtures.
package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ToolVersionSentinel replaces the tool_version header field, which changes
// on every build of the inspected binary.
const ToolVersionSentinel = "<tool_version>"

// outputFlag is the inspector flag whose recorded value is a run-specific
// temporary path and therefore never diff-worthy.
const outputFlag = "--json"

// Engine cleans raw inspector output. It is constructed with the
// machine-specific data-root path that must never appear in fixtures.
type Engine struct {
	roots []string
}

// NewEngine creates an engine that removes every occurrence of root (and its
// file-URL form) from output text.
func NewEngine(root string) *Engine {
	e := &Engine{}
	root = strings.TrimRight(root, "/")
	if root != "" {
		e.roots = append(e.roots, "file://"+root, root)
	}
	return e
}

// CleanText removes all occurrences of the configured root path from text.
// Cleaning already-clean text is a no-op.
func (e *Engine) CleanText(text string) string {
	for _, root := range e.roots {
		text = strings.ReplaceAll(text, root, "")
	}
	return text
}

// Document normalizes a parsed result document in place: the first header's
// tool_version is overwritten with the sentinel and any recorded option that
// encodes the output-destination flag is dropped, together with its value.
func (e *Engine) Document(doc map[string]any) {
	headers, ok := doc["headers"].([]any)
	if !ok || len(headers) == 0 {
		return
	}
	header, ok := headers[0].(map[string]any)
	if !ok {
		return
	}
	if _, ok := header["tool_version"]; ok {
		header["tool_version"] = ToolVersionSentinel
	}
	if options, ok := header["options"].([]any); ok {
		header["options"] = dropOutputOption(options)
	}
}

// dropOutputOption removes the output-destination flag from a recorded
// options list. Both the split form ("--json", "<path>") and the single-string
// forms ("--json <path>", "--json=<path>") are handled.
func dropOutputOption(options []any) []any {
	kept := make([]any, 0, len(options))
	skipValue := false
	for _, opt := range options {
		if skipValue {
			skipValue = false
			continue
		}
		s, ok := opt.(string)
		if !ok {
			kept = append(kept, opt)
			continue
		}
		switch {
		case s == outputFlag:
			skipValue = true
		case strings.HasPrefix(s, outputFlag+" "), strings.HasPrefix(s, outputFlag+"="):
		default:
			kept = append(kept, opt)
		}
	}
	return kept
}

// Bytes normalizes a raw JSON result: root paths are stripped from the text,
// the document is parsed and cleaned, and the result is re-marshaled in
// indented form. Normalizing already-normalized output returns it unchanged.
func (e *Engine) Bytes(raw []byte) ([]byte, error) {
	cleaned := e.CleanText(string(raw))

	var doc any
	if err := json.Unmarshal([]byte(cleaned), &doc); err != nil {
		return nil, fmt.Errorf("parsing inspector output: %w", err)
	}
	if m, ok := doc.(map[string]any); ok {
		e.Document(m)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("re-marshaling normalized output: %w", err)
	}
	return buf.Bytes(), nil
}
