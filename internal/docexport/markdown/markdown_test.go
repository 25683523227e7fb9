package markdown

import (
	"strings"
	"testing"
	"time"

	"github.com/aisa-it/docexport/internal/docexport/editor/tiptap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func text(t string, marks ...tiptap.MarkType) *tiptap.Node {
	var ms []tiptap.Mark
	for _, m := range marks {
		ms = append(ms, tiptap.Mark{Type: m})
	}
	return tiptap.NewText(t, ms...)
}

func p(content ...*tiptap.Node) *tiptap.Node {
	return tiptap.NewNode(tiptap.NodeParagraph, nil, content...)
}

func doc(content ...*tiptap.Node) *tiptap.Node {
	return tiptap.NewNode(tiptap.NodeDoc, nil, content...)
}

func cell(t tiptap.NodeType, attrs map[string]any, s string) *tiptap.Node {
	if s == "" {
		return tiptap.NewNode(t, attrs, p())
	}
	return tiptap.NewNode(t, attrs, p(text(s)))
}

func row(cells ...*tiptap.Node) *tiptap.Node {
	return tiptap.NewNode(tiptap.NodeTableRow, nil, cells...)
}

func TestSerialize(t *testing.T) {
	tests := []struct {
		name string
		doc  *tiptap.Node
		opts Options
		want string
	}{
		{
			name: "plain paragraph",
			doc:  doc(p(text("Hello world"))),
			want: "Hello world\n",
		},
		{
			name: "bold then italic",
			doc:  doc(p(text("text", tiptap.MarkBold, tiptap.MarkItalic))),
			want: "**_text_**\n",
		},
		{
			name: "italic then bold",
			doc:  doc(p(text("text", tiptap.MarkItalic, tiptap.MarkBold))),
			want: "_**text**_\n",
		},
		{
			name: "marks keep surrounding spaces outside",
			doc:  doc(p(text("a"), text(" bold ", tiptap.MarkBold), text("b"))),
			want: "a **bold** b\n",
		},
		{
			name: "heading level clamped",
			doc: doc(
				tiptap.NewNode(tiptap.NodeHeading, map[string]any{"level": float64(9)}, text("Deep")),
				tiptap.NewNode(tiptap.NodeHeading, map[string]any{"level": float64(2)}, text("Two")),
			),
			want: "###### Deep\n\n## Two\n",
		},
		{
			name: "bullet item with two paragraphs",
			doc: doc(tiptap.NewNode(tiptap.NodeBulletList, nil,
				tiptap.NewNode(tiptap.NodeListItem, nil, p(text("line1")), p(text("line2"))),
			)),
			want: "- line1\n  line2\n",
		},
		{
			name: "ordered list with start and nested bullets",
			doc: doc(tiptap.NewNode(tiptap.NodeOrderedList, map[string]any{"start": float64(3)},
				tiptap.NewNode(tiptap.NodeListItem, nil,
					p(text("a")),
					tiptap.NewNode(tiptap.NodeBulletList, nil,
						tiptap.NewNode(tiptap.NodeListItem, nil, p(text("inner"))),
					),
				),
				tiptap.NewNode(tiptap.NodeListItem, nil, p(text("b"))),
			)),
			want: "3. a\n   - inner\n4. b\n",
		},
		{
			name: "task list",
			doc: doc(tiptap.NewNode(tiptap.NodeTaskList, nil,
				tiptap.NewNode(tiptap.NodeTaskItem, map[string]any{"checked": true}, p(text("done"))),
				tiptap.NewNode(tiptap.NodeTaskItem, map[string]any{"checked": false}, p(text("todo")), p(text("more"))),
			)),
			want: "- [x] done\n- [ ] todo\n  more\n",
		},
		{
			name: "table with alignment and empty cell",
			doc: doc(tiptap.NewNode(tiptap.NodeTable, nil,
				row(
					cell(tiptap.NodeTableHeader, nil, "A"),
					cell(tiptap.NodeTableHeader, map[string]any{"align": "center"}, "B"),
					cell(tiptap.NodeTableHeader, map[string]any{"align": "left"}, "C"),
				),
				row(cell(tiptap.NodeTableCell, nil, "1"), cell(tiptap.NodeTableCell, nil, "a|b"), cell(tiptap.NodeTableCell, nil, "3")),
				row(cell(tiptap.NodeTableCell, nil, "4"), cell(tiptap.NodeTableCell, nil, "")),
			)),
			want: "| A | B | C |\n| --- | :---: | --- |\n| 1 | a\\|b | 3 |\n| 4 |   |   |\n",
		},
		{
			name: "callout success maps to tip",
			doc: doc(tiptap.NewNode(tiptap.NodeCallout, map[string]any{"type": "success", "emoji": "🎉"},
				p(text("Yay")), p(text("Again")),
			)),
			want: "> [!TIP]\n> Yay\n>\n> Again\n",
		},
		{
			name: "unknown callout type",
			doc:  doc(tiptap.NewNode(tiptap.NodeCallout, map[string]any{"type": "purple"}, p(text("x")))),
			want: "> [!NOTE]\n> x\n",
		},
		{
			name: "code block fence grows",
			doc: doc(
				tiptap.NewNode(tiptap.NodeCodeBlock, map[string]any{"language": "go"}, text("fmt.Println(1)\n")),
				tiptap.NewNode(tiptap.NodePreformatted, nil, text("a ``` b", tiptap.MarkBold)),
			),
			want: "```go\nfmt.Println(1)\n```\n\n````\na ``` b\n````\n",
		},
		{
			name: "blockquote rule and hard break",
			doc: doc(
				tiptap.NewNode(tiptap.NodeBlockquote, nil, p(text("a"), &tiptap.Node{Type: tiptap.NodeHardBreak}, text("b"))),
				&tiptap.Node{Type: tiptap.NodeHorizontalRule},
			),
			want: "> a\\\n> b\n\n---\n",
		},
		{
			name: "inline marks table",
			doc: doc(p(
				text("s", tiptap.MarkStrike), text(" "),
				text("c`d", tiptap.MarkCode), text(" "),
				text("u", tiptap.MarkUnderline), text(" "),
				text("h", tiptap.MarkHighlight), text(" "),
				tiptap.NewText("hc", tiptap.Mark{Type: tiptap.MarkHighlight, Attrs: map[string]any{"color": "#ff0"}}), text(" "),
				text("2", tiptap.MarkSubscript), text("3", tiptap.MarkSuperscript), text(" "),
				tiptap.NewText("l", tiptap.Mark{Type: tiptap.MarkLink, Attrs: map[string]any{"href": "https://x.io", "title": "X"}}),
			)),
			want: "~~s~~ `` c`d `` <u>u</u> ==h== <mark style=\"background-color: #ff0\">hc</mark> <sub>2</sub><sup>3</sup> [l](https://x.io \"X\")\n",
		},
		{
			name: "reference links",
			doc: doc(p(
				tiptap.NewText("a", tiptap.Mark{Type: tiptap.MarkLink, Attrs: map[string]any{"href": "https://x.io"}}),
				text(" and "),
				tiptap.NewText("b", tiptap.Mark{Type: tiptap.MarkLink, Attrs: map[string]any{"href": "https://x.io"}}),
				text(" "),
				tiptap.NewText("c", tiptap.Mark{Type: tiptap.MarkLink, Attrs: map[string]any{"href": "https://y.io"}}),
			)),
			opts: Options{LinkStyle: LinkReference},
			want: "[a][1] and [b][1] [c][2]\n\n[1]: https://x.io\n[2]: https://y.io\n",
		},
		{
			name: "images",
			doc: doc(
				tiptap.NewNode(tiptap.NodeImage, map[string]any{"src": "/a.png", "alt": "A", "title": "T"}),
				tiptap.NewNode(tiptap.NodeImage, map[string]any{"src": "/b.png"}),
			),
			want: "![A](/a.png \"T\")\n\n![](/b.png)\n",
		},
		{
			name: "html images",
			doc:  doc(tiptap.NewNode(tiptap.NodeImage, map[string]any{"src": "/a.png?x=1&y=2", "alt": "A", "width": float64(300)})),
			opts: Options{ImageStyle: ImageHTML},
			want: "<img src=\"/a.png?x=1&amp;y=2\" alt=\"A\" width=\"300\">\n",
		},
		{
			name: "toggle embeds and mentions",
			doc: doc(
				tiptap.NewNode(tiptap.NodeToggleBlock, map[string]any{"summary": "More"}, p(text("Hidden"))),
				tiptap.NewNode(tiptap.NodeYoutube, map[string]any{"src": "https://youtu.be/x"}),
				tiptap.NewNode(tiptap.NodeFileAttachment, map[string]any{"src": "/f.pdf", "name": "f.pdf"}),
				p(text("hi "), &tiptap.Node{Type: tiptap.NodeMention, Attrs: map[string]any{"label": "ivan"}},
					text(" "), &tiptap.Node{Type: tiptap.NodeEmoji, Attrs: map[string]any{"name": "smile"}}),
			),
			want: "<details>\n<summary>More</summary>\n\nHidden\n\n</details>\n\n[YouTube](https://youtu.be/x)\n\n[f.pdf](/f.pdf)\n\nhi @ivan :smile:\n",
		},
		{
			name: "columns and database flatten",
			doc: doc(
				tiptap.NewNode(tiptap.NodeColumns, nil,
					tiptap.NewNode(tiptap.NodeColumn, nil, p(text("left"))),
					tiptap.NewNode(tiptap.NodeColumn, nil, p(text("right"))),
				),
				tiptap.NewNode(tiptap.NodeDatabase, map[string]any{"title": "Tasks"}, p(text("row"))),
			),
			want: "left\n\nright\n\n**Tasks**\n\nrow\n",
		},
		{
			name: "table of contents",
			doc: doc(
				tiptap.NewNode(tiptap.NodeHeading, map[string]any{"level": 1}, text("Intro")),
				&tiptap.Node{Type: tiptap.NodeTableOfContents},
				tiptap.NewNode(tiptap.NodeHeading, map[string]any{"level": 2}, text("Details here")),
			),
			want: "# Intro\n\n- [Intro](#intro)\n  - [Details here](#details-here)\n\n## Details here\n",
		},
		{
			name: "unknown node types degrade",
			doc: doc(
				tiptap.NewNode("customBox", nil, p(text("inside"))),
				&tiptap.Node{Type: "rawThing", Text: "raw"},
			),
			want: "inside\n\nraw\n",
		},
		{
			name: "empty document",
			doc:  doc(),
			want: "\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Serialize(tt.doc, tt.opts))
		})
	}
}

func TestSerializeFrontmatter(t *testing.T) {
	out := Serialize(doc(p(text("Body"))), Options{
		IncludeFrontmatter: true,
		Frontmatter:        map[string]any{"title": "Hi: There"},
	})
	assert.True(t, strings.HasPrefix(out, "---\ntitle: \"Hi: There\"\n---"), out)
	assert.Equal(t, "---\ntitle: \"Hi: There\"\n---\n\nBody\n", out)

	out = Serialize(doc(p(text("Body"))), Options{Frontmatter: map[string]any{"title": "x"}})
	assert.Equal(t, "Body\n", out)
}

func TestFrontmatter(t *testing.T) {
	got := Frontmatter(map[string]any{
		"title":   "Plain",
		"tags":    []any{"go", "md: x"},
		"empty":   []string{},
		"draft":   false,
		"count":   3,
		"ratio":   0.5,
		"meta":    map[string]any{"k": "v"},
		"date":    time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		"blank":   "",
		"keyword": "yes",
		"padded":  " x ",
		"none":    nil,
	})

	want := strings.Join([]string{
		"---",
		`blank: ""`,
		"count: 3",
		"date: 2024-05-01T10:00:00Z",
		"draft: false",
		"empty: []",
		`keyword: "yes"`,
		`meta: {"k":"v"}`,
		"none: null",
		`padded: " x "`,
		"ratio: 0.5",
		"tags:",
		"  - go",
		`  - "md: x"`,
		"title: Plain",
		"---",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestEveryNodeTypeHandled(t *testing.T) {
	for _, nt := range tiptap.KnownNodeTypes() {
		assert.True(t, Handles(nt), "node type %s has no markdown rendering", nt)
	}
	for _, mt := range tiptap.KnownMarkTypes() {
		assert.True(t, HandlesMark(mt), "mark type %s has no markdown rendering", mt)
	}
}

func TestSerializeDoesNotMutate(t *testing.T) {
	d := doc(
		p(text(" spaced ", tiptap.MarkBold)),
		tiptap.NewNode(tiptap.NodeTable, nil, row(cell(tiptap.NodeTableHeader, nil, " a "))),
	)
	before := Serialize(d, Options{})
	require.Equal(t, " spaced ", d.Content[0].Content[0].Text)
	assert.Equal(t, before, Serialize(d, Options{}))
}

func TestSerializeSkipsNullChildren(t *testing.T) {
	d := doc(p(text("a")), nil, p(nil, text("b")))
	assert.Equal(t, "a\n\nb\n", Serialize(d, Options{}))
}

func TestCalloutAlert(t *testing.T) {
	tests := map[string]string{
		"info": "NOTE", "note": "NOTE", "tip": "TIP", "success": "TIP",
		"warning": "WARNING", "error": "CAUTION", "Warning": "WARNING", "": "NOTE",
	}
	for in, want := range tests {
		assert.Equal(t, want, CalloutAlert(in), in)
	}
}
