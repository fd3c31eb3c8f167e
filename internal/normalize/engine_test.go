package normalize

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanText_StripsRootPath(t *testing.T) {
	e := NewEngine("/home/ci/nuget-inspector/tests/data")

	in := `{"path": "/home/ci/nuget-inspector/tests/data/suite/example.csproj"}`
	assert.Equal(t, `{"path": "/suite/example.csproj"}`, e.CleanText(in))
}

func TestCleanText_StripsFileURLForm(t *testing.T) {
	e := NewEngine("/data/root")

	in := `"file:///data/root/a.csproj" and "/data/root/b.csproj"`
	assert.Equal(t, `"/a.csproj" and "/b.csproj"`, e.CleanText(in))
}

func TestCleanText_Idempotent(t *testing.T) {
	e := NewEngine("/data/root")

	once := e.CleanText("before /data/root/x after")
	assert.Equal(t, once, e.CleanText(once))
}

func TestDocument_ToolVersionSentinel(t *testing.T) {
	e := NewEngine("")
	doc := map[string]any{
		"headers": []any{
			map[string]any{"tool_version": "1.2.3-build.77"},
		},
	}

	e.Document(doc)

	header := doc["headers"].([]any)[0].(map[string]any)
	assert.Equal(t, ToolVersionSentinel, header["tool_version"])
}

func TestDocument_DropsOutputOption(t *testing.T) {
	tests := []struct {
		name    string
		options []any
		want    []any
	}{
		{
			name:    "split flag and value",
			options: []any{"--project-file", "x.csproj", "--json", "/tmp/out.json", "--with-details"},
			want:    []any{"--project-file", "x.csproj", "--with-details"},
		},
		{
			name:    "space joined",
			options: []any{"--json /tmp/out.json", "--verbose"},
			want:    []any{"--verbose"},
		},
		{
			name:    "equals joined",
			options: []any{"--json=/tmp/out.json"},
			want:    []any{},
		},
		{
			name:    "unrelated options untouched",
			options: []any{"--target-framework", "net6.0"},
			want:    []any{"--target-framework", "net6.0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine("")
			doc := map[string]any{
				"headers": []any{
					map[string]any{"tool_version": "1.0", "options": tt.options},
				},
			}
			e.Document(doc)
			header := doc["headers"].([]any)[0].(map[string]any)
			assert.Equal(t, tt.want, header["options"])
		})
	}
}

func TestDocument_NoHeaders(t *testing.T) {
	e := NewEngine("")
	doc := map[string]any{"packages": []any{}}
	e.Document(doc)
	assert.Equal(t, map[string]any{"packages": []any{}}, doc)
}

func TestBytes_Idempotent(t *testing.T) {
	e := NewEngine("/data/root")
	raw := []byte(`{
		"headers": [{"tool_version": "2.0.0", "options": ["--project-file", "/data/root/p.csproj", "--json", "/tmp/r.json"]}],
		"packages": [{"name": "pkg", "version": "1.0.0"}]
	}`)

	once, err := e.Bytes(raw)
	require.NoError(t, err)
	twice, err := e.Bytes(once)
	require.NoError(t, err)

	assert.Equal(t, string(once), string(twice))
}

func TestBytes_NormalizesDocument(t *testing.T) {
	e := NewEngine("/data/root")
	raw := []byte(`{"headers": [{"tool_version": "9.9.9", "options": ["--json", "/tmp/r.json"]}]}`)

	out, err := e.Bytes(raw)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(out, &doc))
	header := doc["headers"].([]any)[0].(map[string]any)
	assert.Equal(t, ToolVersionSentinel, header["tool_version"])
	assert.Empty(t, header["options"])
}

func TestBytes_RejectsNonJSON(t *testing.T) {
	e := NewEngine("")
	_, err := e.Bytes([]byte("not json"))
	assert.Error(t, err)
}
