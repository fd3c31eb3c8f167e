// Package pkgtree canonicalizes resolved dependency trees so they are safe to
// store as long-lived fixtures. Resolution order is not deterministic across
// tool versions, so fixtures are flattened and sorted before they are
// committed; comparison then never depends on the shape the resolver happened
// to produce.
package pkgtree

import (
	"sort"
	"strings"
)

// Node is a single resolved package with its purl-like identity and the
// packages it depends on. The identity tuple (type, namespace, name, version,
// qualifiers, subpath) is the sort and uniqueness key.
type Node struct {
	Type         string  `json:"type"`
	Namespace    string  `json:"namespace"`
	Name         string  `json:"name"`
	Version      string  `json:"version"`
	Qualifiers   string  `json:"qualifiers"`
	Subpath      string  `json:"subpath"`
	Dependencies []*Node `json:"dependencies"`
}

// sortKey returns the composite ordering key for a node. Name and version are
// case-folded; absent components compare as the empty string.
func (n *Node) sortKey() [6]string {
	return [6]string{
		n.Type,
		n.Namespace,
		strings.ToLower(n.Name),
		strings.ToLower(n.Version),
		n.Qualifiers,
		n.Subpath,
	}
}

// Flatten converts a nested dependency tree into a single flat sequence.
//
// For each node in input order the child list is detached and emptied, the
// now-childless node is appended, and the detached children are flattened and
// appended after it. Every original node appears exactly once: a node is
// immediately followed by its flattened subtree, before its next sibling.
// Flattening an already-flat sequence returns it unchanged.
func Flatten(nodes []*Node) []*Node {
	flat := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		children := n.Dependencies
		n.Dependencies = []*Node{}
		flat = append(flat, n)
		flat = append(flat, Flatten(children)...)
	}
	return flat
}

// Sort orders nodes by their identity tuple, recursively at every nesting
// depth. The sort is stable, so nodes with equal keys keep their relative
// input order, and total: any two identity tuples are comparable.
func Sort(nodes []*Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i].sortKey(), nodes[j].sortKey()
		for k := range a {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return false
	})
	for _, n := range nodes {
		Sort(n.Dependencies)
	}
}

// Canonicalize sorts the tree at every depth and then flattens it. This is
// the fixture-authoring entry point; it runs offline, never on the comparison
// path.
func Canonicalize(nodes []*Node) []*Node {
	Sort(nodes)
	return Flatten(nodes)
}
