package tiptap

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `{
	"type": "doc",
	"content": [
		{"type": "heading", "attrs": {"level": 2}, "content": [{"type": "text", "text": "Привет, мир!"}]},
		{"type": "paragraph", "content": [
			{"type": "text", "marks": [{"type": "bold"}, {"type": "italic"}], "text": "Жирный"},
			{"type": "hardBreak"},
			{"type": "mention", "attrs": {"id": "42", "label": "ivan"}}
		]},
		{"type": "table", "content": [
			{"type": "tableRow", "content": [
				{"type": "tableHeader", "attrs": {"align": "center", "colwidth": [120]}, "content": [{"type": "paragraph"}]}
			]}
		]}
	]
}`

func TestParseJSON(t *testing.T) {
	doc, err := ParseJSON(strings.NewReader(sampleDoc))
	require.NoError(t, err)

	assert.Equal(t, NodeDoc, doc.Type)
	require.Len(t, doc.Content, 3)
	assert.Equal(t, 2, doc.Content[0].AttrInt("level"))

	p := doc.Content[1]
	assert.True(t, p.HasInlineContent())
	require.Len(t, p.Content[0].Marks, 2)
	assert.Equal(t, MarkBold, p.Content[0].Marks[0].Type)
	assert.Equal(t, MarkItalic, p.Content[0].Marks[1].Type)

	cell := doc.Content[2].Content[0].Content[0]
	assert.Equal(t, "center", cell.AttrString("align"))
}

func TestParseJSONErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "empty input", input: "", wantErr: ErrEmptyDocument},
		{name: "array root", input: `[1,2]`},
		{name: "broken json", input: `{"type":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJSON(strings.NewReader(tt.input))
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestParseJSONRootWithoutType(t *testing.T) {
	doc, err := ParseJSONBytes([]byte(`{"content":[{"type":"paragraph"}]}`))
	require.NoError(t, err)
	assert.Equal(t, NodeDoc, doc.Type)
}

func TestRoundTrip(t *testing.T) {
	doc, err := ParseJSON(strings.NewReader(sampleDoc))
	require.NoError(t, err)

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	again, err := ParseJSONBytes(data)
	require.NoError(t, err)

	if diff := cmp.Diff(doc, again); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestAttrHelpers(t *testing.T) {
	n := &Node{Type: NodeImage, Attrs: map[string]any{
		"width":   "320px",
		"height":  float64(200),
		"scale":   json.Number("1.5"),
		"start":   3,
		"checked": "true",
		"title":   nil,
	}}

	assert.Equal(t, 320, n.AttrInt("width"))
	assert.Equal(t, 200, n.AttrInt("height"))
	assert.Equal(t, 3, n.AttrInt("start"))
	assert.Equal(t, 1.5, n.AttrFloat("scale"))
	assert.Equal(t, 320.0, n.AttrFloat("width"))
	assert.True(t, n.AttrBool("checked"))
	assert.Empty(t, n.AttrString("title"))
	assert.Equal(t, "200", n.AttrString("height"))
	assert.Zero(t, n.AttrInt("missing"))

	var empty Node
	assert.Empty(t, empty.AttrString("x"))
	assert.False(t, empty.AttrBool("x"))
}

func TestParseStyleAttr(t *testing.T) {
	got := ParseStyleAttr("background-color: red; color:blue;; broken; width: ")
	assert.Equal(t, map[string]string{"background-color": "red", "color": "blue"}, got)
	assert.Empty(t, ParseStyleAttr(""))
}

func TestNodeKinds(t *testing.T) {
	for _, nt := range KnownNodeTypes() {
		n := &Node{Type: nt}
		assert.NotEqual(t, n.IsInline(), n.IsBlock(), nt)
	}
	assert.True(t, NewText("a").IsLeaf())
	assert.True(t, (&Node{Type: NodeHardBreak}).IsInline())
	assert.False(t, (&Node{Type: NodeParagraph}).IsLeaf())
	assert.Len(t, KnownMarkTypes(), 10)
}

func TestTextContent(t *testing.T) {
	doc, err := ParseJSON(strings.NewReader(sampleDoc))
	require.NoError(t, err)
	assert.Equal(t, "Жирный\n@ivan", doc.Content[1].TextContent())
}

func TestValidate(t *testing.T) {
	doc, err := ParseJSON(strings.NewReader(sampleDoc))
	require.NoError(t, err)
	assert.NoError(t, doc.Validate())

	bad := NewNode(NodeDoc, nil, &Node{Type: NodeParagraph, Text: "oops"})
	assert.ErrorContains(t, bad.Validate(), "paragraph node carries text")

	bad = NewNode(NodeDoc, nil, &Node{Type: NodeText, Text: "a", Content: []*Node{NewText("b")}})
	assert.ErrorContains(t, bad.Validate(), "text node has children")

	bad = NewNode(NodeDoc, nil, &Node{})
	assert.ErrorContains(t, bad.Validate(), "without type")

	parsed, err := ParseJSON(strings.NewReader(`{"type":"doc","content":[null]}`))
	require.NoError(t, err)
	assert.ErrorContains(t, parsed.Validate(), "content[0] is null")

	bad = NewNode(NodeDoc, nil, NewNode(NodeBlockquote, nil, NewNode(NodeParagraph, nil, nil)))
	assert.ErrorContains(t, bad.Validate(), "content[0] is null at depth 3")
}

func TestCompact(t *testing.T) {
	clean := NewNode(NodeDoc, nil, NewNode(NodeParagraph, nil, NewText("a")))
	assert.Same(t, clean, clean.Compact())

	inner := NewNode(NodeParagraph, nil, NewText("b"))
	doc := &Node{Type: NodeDoc, Content: []*Node{
		nil,
		NewNode(NodeBlockquote, nil, nil, inner),
		nil,
	}}
	got := doc.Compact()

	require.Len(t, got.Content, 1)
	require.Len(t, got.Content[0].Content, 1)
	assert.Same(t, inner, got.Content[0].Content[0])
	assert.NoError(t, got.Validate())

	assert.Len(t, doc.Content, 3)
	assert.Len(t, doc.Content[1].Content, 2)
}

func TestWalkSkipsChildren(t *testing.T) {
	doc := NewNode(NodeDoc, nil,
		NewNode(NodeBlockquote, nil, NewNode(NodeParagraph, nil, NewText("inner"))),
		NewNode(NodeParagraph, nil, NewText("outer")),
	)

	var visited []NodeType
	maxDepth := 0
	doc.Walk(func(n *Node, depth int) bool {
		visited = append(visited, n.Type)
		maxDepth = max(maxDepth, depth)
		return n.Type != NodeBlockquote
	})

	assert.Equal(t, []NodeType{NodeDoc, NodeBlockquote, NodeParagraph, NodeText}, visited)
	assert.Equal(t, 2, maxDepth)
}

func TestHeadings(t *testing.T) {
	h := func(level int, text string) *Node {
		return NewNode(NodeHeading, map[string]any{"level": float64(level)}, NewText(text))
	}
	doc := NewNode(NodeDoc, nil,
		h(1, "Введение"),
		h(2, "Hello, World!"),
		h(9, "Введение"),
		NewNode(NodeParagraph, nil, NewText("text")),
		h(0, "  Spaced   out  "),
	)

	got := doc.Headings()
	want := []Heading{
		{Level: 1, Text: "Введение", Anchor: "введение"},
		{Level: 2, Text: "Hello, World!", Anchor: "hello-world"},
		{Level: 6, Text: "Введение", Anchor: "введение-1"},
		{Level: 1, Text: "Spaced   out", Anchor: "spaced-out"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Headings() mismatch (-want +got):\n%s", diff)
	}
}
