package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, root string, paths ...string) {
	t.Helper()
	for _, p := range paths {
		full := filepath.Join(root, filepath.FromSlash(p))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte("<Project/>"), 0o644))
	}
}

func TestFind_AnyDepthPattern(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root,
		"suite/a/example.csproj",
		"suite/b/deep/nested/other.fsproj",
		"suite/readme.txt",
		"top.sln",
	)

	projects, err := Find(root, "**/*.??proj", nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"suite/a/example.csproj",
		"suite/b/deep/nested/other.fsproj",
	}, projects)

	solutions, err := Find(root, "**/*.sln", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"top.sln"}, solutions)
}

func TestFind_PlainPattern(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.sln", "sub/b.sln")

	got, err := Find(root, "*.sln", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.sln"}, got)
}

func TestFind_SkipRules(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root,
		"keep/project.csproj",
		"drop/project.csproj",
	)

	table, err := NewTable([]Rule{
		{Path: "drop/project.csproj", Outcome: KnownFailing, Skip: true},
	})
	require.NoError(t, err)

	got, err := Find(root, "**/*.csproj", table)
	require.NoError(t, err)
	assert.Equal(t, []string{"keep/project.csproj"}, got)
}

func TestFind_Deterministic(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "b/x.csproj", "a/y.csproj", "c/z.csproj")

	first, err := Find(root, "**/*.csproj", nil)
	require.NoError(t, err)
	second, err := Find(root, "**/*.csproj", nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestTable_ExactBeatsSuffix(t *testing.T) {
	table, err := NewTable([]Rule{
		{Path: "suite/project.csproj", Outcome: ExpectErrorNoOutput},
		{Path: "project.csproj", Match: MatchSuffix, Outcome: KnownFailing},
	})
	require.NoError(t, err)

	assert.Equal(t, ExpectErrorNoOutput, table.Lookup("suite/project.csproj").Outcome)
	assert.Equal(t, KnownFailing, table.Lookup("other/project.csproj").Outcome)
}

func TestTable_SuffixMatchesWholeComponents(t *testing.T) {
	table, err := NewTable([]Rule{
		{Path: "fixtures/app.csproj", Match: MatchSuffix, Outcome: KnownFailing},
	})
	require.NoError(t, err)

	assert.Equal(t, KnownFailing, table.Lookup("old-tree/fixtures/app.csproj").Outcome)
	assert.Equal(t, KnownFailing, table.Lookup("fixtures/app.csproj").Outcome)
	// A path merely sharing a trailing substring must not match.
	assert.Equal(t, ExpectSuccess, table.Lookup("other-fixtures/app.csproj").Outcome)
}

func TestTable_DefaultOutcome(t *testing.T) {
	table, err := NewTable(nil)
	require.NoError(t, err)

	rule := table.Lookup("anything/at/all.csproj")
	assert.Equal(t, ExpectSuccess, rule.Outcome)
	assert.Empty(t, rule.Args)
}

func TestNewTable_RejectsDuplicates(t *testing.T) {
	_, err := NewTable([]Rule{
		{Path: "a.csproj", Outcome: ExpectSuccess},
		{Path: "a.csproj", Outcome: KnownFailing},
	})
	assert.ErrorContains(t, err, "duplicate classification")
}

func TestNewTable_RejectsUnknownOutcome(t *testing.T) {
	_, err := NewTable([]Rule{{Path: "a.csproj", Outcome: "maybe"}})
	assert.ErrorContains(t, err, "unknown outcome")
}

func TestLoadTable_YAML(t *testing.T) {
	dir := t.TempDir()
	location := filepath.Join(dir, "classifications.yaml")
	content := `
rules:
  - path: thirdparty-suites/snyk/empty-manifest.csproj
    outcome: known-failing
    reason: empty manifest, tracked upstream
  - path: noproject/noproject.csproj
    match: suffix
    outcome: expect-error-no-output
  - path: suite/details.csproj
    outcome: expect-success
    args: ["--with-details"]
    expected: suite/details-custom-expected.json
`
	require.NoError(t, os.WriteFile(location, []byte(content), 0o644))

	table, err := LoadTable(location)
	require.NoError(t, err)

	assert.Equal(t, KnownFailing, table.Lookup("thirdparty-suites/snyk/empty-manifest.csproj").Outcome)
	assert.Equal(t, ExpectErrorNoOutput, table.Lookup("reorg/noproject/noproject.csproj").Outcome)

	rule := table.Lookup("suite/details.csproj")
	assert.Equal(t, []string{"--with-details"}, rule.Args)
	assert.Equal(t, "suite/details-custom-expected.json", rule.Expected)
}
