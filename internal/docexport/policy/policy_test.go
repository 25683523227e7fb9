package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExportPolicyKeepsExportMarkup(t *testing.T) {
	p := NewExportPolicy("editor-")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "prefixed class", input: `<p class="editor-paragraph">x</p>`, want: `<p class="editor-paragraph">x</p>`},
		{name: "several classes", input: `<div class="editor-callout editor-callout-info">x</div>`, want: `<div class="editor-callout editor-callout-info">x</div>`},
		{name: "language class", input: `<pre class="editor-code-block"><code class="language-go">x</code></pre>`, want: `<pre class="editor-code-block"><code class="language-go">x</code></pre>`},
		{name: "heading anchor", input: `<h2 id="итоги-1">Итоги</h2>`, want: `<h2 id="итоги-1">Итоги</h2>`},
		{name: "plain id", input: `<p id="part.1">x</p>`, want: `<p id="part.1">x</p>`},
		{name: "task item", input: `<ul data-type="taskList"><li data-type="taskItem" data-checked="true">x</li></ul>`, want: `<ul data-type="taskList"><li data-type="taskItem" data-checked="true">x</li></ul>`},
		{name: "ordered start", input: `<ol start="3"><li>x</li></ol>`, want: `<ol start="3"><li>x</li></ol>`},
		{name: "details", input: `<details open><summary>S</summary>x</details>`, want: `<details open=""><summary>S</summary>x</details>`},
		{name: "mention", input: `<span data-type="mention" data-id="7" data-label="ivan">@ivan</span>`, want: `<span data-type="mention" data-id="7" data-label="ivan">@ivan</span>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Sanitize(tt.input))
		})
	}
}

func TestExportPolicyStrips(t *testing.T) {
	p := NewExportPolicy("editor-")

	tests := []struct {
		name     string
		input    string
		contains string
		absent   string
	}{
		{name: "script", input: `<script>alert(1)</script><p>ok</p>`, contains: "<p>ok</p>", absent: "alert"},
		{name: "foreign class", input: `<p class="evil editor-paragraph">x</p>`, contains: "<p>x</p>", absent: "evil"},
		{name: "javascript link", input: `<a href="javascript:alert(1)">x</a>`, contains: "x", absent: "javascript"},
		{name: "position style", input: `<span style="color: #ff0000; position: fixed">x</span>`, contains: "#ff0000", absent: "position"},
		{name: "bad heading id", input: `<h1 id="a&quot;b">x</h1>`, contains: "<h1>x</h1>", absent: "id="},
		{name: "bad paragraph id", input: `<p id="x&quot;onclick=&quot;a">x</p>`, contains: "<p>x</p>", absent: "id="},
		{name: "unknown data type", input: `<li data-type="evil">x</li>`, contains: "<li>x</li>", absent: "evil"},
		{name: "iframe elsewhere", input: `<iframe src="https://evil.example.com/x"></iframe>`, absent: "evil.example.com"},
		{name: "event handler", input: `<img src="/a.png" onerror="alert(1)">`, contains: `src="/a.png"`, absent: "onerror"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := p.Sanitize(tt.input)
			if tt.contains != "" {
				assert.Contains(t, out, tt.contains)
			}
			assert.NotContains(t, out, tt.absent)
		})
	}
}

func TestExportPolicyEmbeds(t *testing.T) {
	p := NewExportPolicy("doc-")

	out := p.Sanitize(`<img src="data:image/png;base64,iVBORw0KGgo=" alt="a">`)
	assert.Contains(t, out, `src="data:image/png;base64,iVBORw0KGgo="`)

	out = p.Sanitize(`<div class="doc-youtube"><iframe src="https://www.youtube.com/embed/dQw4w9WgXcQ" frameborder="0" allowfullscreen></iframe></div>`)
	assert.Contains(t, out, `src="https://www.youtube.com/embed/dQw4w9WgXcQ"`)
	assert.Contains(t, out, `class="doc-youtube"`)

	out = p.Sanitize(`<p class="editor-paragraph">x</p>`)
	assert.Equal(t, "<p>x</p>", out)
}

func TestIsLanguageClass(t *testing.T) {
	assert.True(t, IsLanguageClass("language-go"))
	assert.True(t, IsLanguageClass("language-c++"))
	assert.False(t, IsLanguageClass("lang-go"))
	assert.False(t, IsLanguageClass("language-"))
}

func TestStripTags(t *testing.T) {
	assert.Equal(t, "Hello world", StripTags("  <p>Hello <b>world</b></p>\n"))
	assert.Equal(t, "", StripTags("<script>x</script>"))
}
