package resources

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readResource(t *testing.T, uri string) mcp.TextResourceContents {
	t.Helper()
	for _, r := range GetExportResources() {
		if r.Resource.URI != uri {
			continue
		}
		req := mcp.ReadResourceRequest{}
		req.Params.URI = uri
		contents, err := r.Handler(context.Background(), req)
		require.NoError(t, err)
		require.Len(t, contents, 1)
		text, ok := contents[0].(mcp.TextResourceContents)
		require.True(t, ok)
		return text
	}
	t.Fatalf("resource %s not registered", uri)
	return mcp.TextResourceContents{}
}

func TestStylesheets(t *testing.T) {
	light := readResource(t, "docexport://styles/light")
	dark := readResource(t, "docexport://styles/dark")

	assert.Equal(t, "text/css", light.MIMEType)
	assert.Contains(t, light.Text, ".editor-callout")
	assert.Contains(t, light.Text, "#ffffff")
	assert.Contains(t, dark.Text, "#0d1117")
}

func TestSupportedNodes(t *testing.T) {
	res := readResource(t, "docexport://schema/nodes")

	var out struct {
		Nodes []typeSupport `json:"nodes"`
		Marks []typeSupport `json:"marks"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.Text), &out))
	assert.NotEmpty(t, out.Marks)

	support := map[string]bool{}
	for _, n := range out.Nodes {
		support[n.Type] = n.Markdown
	}
	assert.True(t, support["heading"])
	assert.True(t, support["table"])
}
