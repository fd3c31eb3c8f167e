package pkgtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tree builds a node with the given name and children, leaving the rest of
// the identity empty.
func tree(name string, children ...*Node) *Node {
	return &Node{Type: "nuget", Name: name, Dependencies: children}
}

func names(nodes []*Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Name)
	}
	return out
}

func TestFlatten_PreOrder(t *testing.T) {
	input := []*Node{
		tree("baz"),
		tree("foo",
			tree("foo1",
				tree("foo11",
					tree("foo111"),
					tree("foo112"),
				),
			),
			tree("foo2"),
		),
		tree("bar",
			tree("bar1",
				tree("bar11",
					tree("bar111"),
					tree("bar112"),
				),
			),
		),
	}

	flat := Flatten(input)

	expected := []string{
		"baz",
		"foo", "foo1", "foo11", "foo111", "foo112", "foo2",
		"bar", "bar1", "bar11", "bar111", "bar112",
	}
	assert.Equal(t, expected, names(flat))

	for _, n := range flat {
		require.NotNil(t, n.Dependencies)
		assert.Empty(t, n.Dependencies, "flattened node %q must have no children", n.Name)
	}
}

func TestFlatten_PreservesNodeCount(t *testing.T) {
	input := []*Node{
		tree("a", tree("b", tree("c")), tree("d")),
		tree("e"),
	}
	flat := Flatten(input)
	assert.Len(t, flat, 5)

	seen := map[*Node]bool{}
	for _, n := range flat {
		assert.False(t, seen[n], "node %q appears more than once", n.Name)
		seen[n] = true
	}
}

func TestFlatten_Idempotent(t *testing.T) {
	input := []*Node{
		tree("a", tree("b")),
		tree("c"),
	}
	once := Flatten(input)
	twice := Flatten(once)
	assert.Equal(t, names(once), names(twice))
	assert.Len(t, twice, 3)
}

func TestFlatten_Empty(t *testing.T) {
	assert.Empty(t, Flatten(nil))
	assert.Empty(t, Flatten([]*Node{}))
}

func TestSort_CompositeKey(t *testing.T) {
	nodes := []*Node{
		{Type: "nuget", Name: "Zlib", Version: "1.0.0"},
		{Type: "nuget", Name: "alpha", Version: "2.0.0"},
		{Type: "golang", Name: "zzz", Version: "0.1.0"},
		{Type: "nuget", Name: "Alpha", Version: "1.0.0"},
	}

	Sort(nodes)

	// Type sorts before name; name and version are case-folded.
	assert.Equal(t, []string{"zzz", "Alpha", "alpha", "Zlib"}, names(nodes))
	assert.Equal(t, "1.0.0", nodes[1].Version)
}

func TestSort_Stability(t *testing.T) {
	first := &Node{Type: "nuget", Name: "same", Version: "1.0"}
	second := &Node{Type: "nuget", Name: "SAME", Version: "1.0"}
	nodes := []*Node{first, second}

	Sort(nodes)

	// Keys fold to equal values, so input order is retained.
	require.Len(t, nodes, 2)
	assert.Same(t, first, nodes[0])
	assert.Same(t, second, nodes[1])
}

func TestSort_Recursive(t *testing.T) {
	root := tree("root",
		&Node{Type: "nuget", Name: "b"},
		&Node{Type: "nuget", Name: "a"},
	)
	nodes := []*Node{root}

	Sort(nodes)

	assert.Equal(t, []string{"a", "b"}, names(root.Dependencies))
}

func TestSort_Idempotent(t *testing.T) {
	nodes := []*Node{
		{Type: "nuget", Name: "b"},
		{Type: "nuget", Name: "a"},
		{Type: "nuget", Name: "c"},
	}
	Sort(nodes)
	once := names(nodes)
	Sort(nodes)
	assert.Equal(t, once, names(nodes))
}

func TestCanonicalize_SortsThenFlattens(t *testing.T) {
	input := []*Node{
		tree("beta",
			tree("z"),
			tree("a"),
		),
		tree("alpha"),
	}

	flat := Canonicalize(input)

	assert.Equal(t, []string{"alpha", "beta", "a", "z"}, names(flat))
	for _, n := range flat {
		assert.Empty(t, n.Dependencies)
	}
}
