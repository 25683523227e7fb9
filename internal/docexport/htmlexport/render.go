package htmlexport

import (
	"html"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/aisa-it/docexport/internal/docexport/editor/tiptap"
	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// DefaultClassPrefix префикс классов, с которым рендерер размечает документ.
const DefaultClassPrefix = "editor-"

var youtubeIDReg = regexp.MustCompile(`(?:youtu\.be/|[?&]v=|/embed/|/shorts/)([\w-]{6,})`)

var calloutEmoji = map[string]string{
	"info":    "ℹ️",
	"success": "✅",
	"warning": "⚠️",
	"error":   "⛔",
}

type renderer struct {
	sb        strings.Builder
	headings  []tiptap.Heading
	nextHead  int
	highlight bool
	theme     Theme
	images    map[string]string
}

// Render превращает дерево документа в HTML с классами DefaultClassPrefix.
func Render(doc *tiptap.Node) string {
	return render(doc, renderOptions{})
}

type renderOptions struct {
	highlight bool
	theme     Theme
	images    map[string]string
}

func render(doc *tiptap.Node, opts renderOptions) string {
	doc = doc.Compact()
	if doc == nil {
		return ""
	}
	r := &renderer{
		headings:  doc.Headings(),
		highlight: opts.highlight,
		theme:     opts.theme,
		images:    opts.images,
	}
	if doc.Type == tiptap.NodeDoc {
		r.children(doc)
	} else {
		r.node(doc)
	}
	return r.sb.String()
}

func (r *renderer) children(n *tiptap.Node) {
	for _, c := range n.Content {
		r.node(c)
	}
}

func (r *renderer) open(tag, class string, attrs ...string) {
	r.start(tag, class, attrs...)
	r.sb.WriteString(">")
}

// start пишет открывающий тег без закрывающей скобки, чтобы можно было добавить атрибуты без значения.
func (r *renderer) start(tag, class string, attrs ...string) {
	r.sb.WriteString("<" + tag)
	if class != "" {
		r.sb.WriteString(` class="` + DefaultClassPrefix + class + `"`)
	}
	for i := 0; i+1 < len(attrs); i += 2 {
		if attrs[i+1] == "" {
			continue
		}
		r.sb.WriteString(" " + attrs[i] + `="` + html.EscapeString(attrs[i+1]) + `"`)
	}
}

func (r *renderer) wrap(tag, class string, n *tiptap.Node, attrs ...string) {
	r.open(tag, class, attrs...)
	r.children(n)
	r.sb.WriteString("</" + tag + ">")
}

func (r *renderer) node(n *tiptap.Node) {
	switch n.Type {
	case tiptap.NodeText:
		r.text(n)
	case tiptap.NodeParagraph:
		r.wrap("p", "paragraph", n, "style", alignStyle(n.AttrString("textAlign")))
	case tiptap.NodeHeading:
		r.heading(n)
	case tiptap.NodeBulletList:
		r.wrap("ul", "bullet-list", n)
	case tiptap.NodeOrderedList:
		start := ""
		if s := n.AttrInt("start"); s > 1 {
			start = strconv.Itoa(s)
		}
		r.wrap("ol", "ordered-list", n, "start", start)
	case tiptap.NodeTaskList:
		r.wrap("ul", "task-list", n, "data-type", "taskList")
	case tiptap.NodeListItem:
		r.wrap("li", "list-item", n)
	case tiptap.NodeTaskItem:
		r.taskItem(n)
	case tiptap.NodeBlockquote:
		r.wrap("blockquote", "blockquote", n)
	case tiptap.NodeCodeBlock:
		r.codeBlock(n)
	case tiptap.NodePreformatted:
		r.open("pre", "preformatted")
		r.sb.WriteString(html.EscapeString(n.TextContent()))
		r.sb.WriteString("</pre>")
	case tiptap.NodeHorizontalRule:
		r.open("hr", "divider")
	case tiptap.NodeHardBreak:
		r.sb.WriteString("<br>")
	case tiptap.NodeImage:
		r.image(n)
	case tiptap.NodeTable:
		r.open("table", "table")
		r.sb.WriteString("<tbody>")
		r.children(n)
		r.sb.WriteString("</tbody></table>")
	case tiptap.NodeTableRow:
		r.wrap("tr", "table-row", n)
	case tiptap.NodeTableHeader:
		r.cell("th", "table-header", n)
	case tiptap.NodeTableCell:
		r.cell("td", "table-cell", n)
	case tiptap.NodeCallout:
		r.callout(n)
	case tiptap.NodeToggleBlock:
		r.toggle(n)
	case tiptap.NodeColumns:
		r.wrap("div", "columns", n)
	case tiptap.NodeColumn:
		r.wrap("div", "column", n)
	case tiptap.NodeSection:
		r.wrap("section", "section", n)
	case tiptap.NodeYoutube:
		r.youtube(n)
	case tiptap.NodeEmbed:
		r.embed(n)
	case tiptap.NodeFileAttachment:
		r.fileAttachment(n)
	case tiptap.NodeTableOfContents:
		r.tableOfContents()
	case tiptap.NodeDatabase:
		r.open("div", "database")
		if title := n.AttrString("title"); title != "" {
			r.sb.WriteString(`<div class="` + DefaultClassPrefix + `database-title"><strong>` + html.EscapeString(title) + "</strong></div>")
		}
		r.children(n)
		r.sb.WriteString("</div>")
	case tiptap.NodeMention:
		label := n.AttrString("label")
		if label == "" {
			label = n.AttrString("id")
		}
		r.open("span", "mention", "data-type", "mention", "data-id", n.AttrString("id"), "data-label", n.AttrString("label"))
		r.sb.WriteString("@" + html.EscapeString(label) + "</span>")
	case tiptap.NodeEmoji:
		e := n.AttrString("emoji")
		if e == "" {
			e = ":" + n.AttrString("name") + ":"
		}
		r.open("span", "emoji")
		r.sb.WriteString(html.EscapeString(e) + "</span>")
	case tiptap.NodeDoc:
		r.children(n)
	default:
		slog.Debug("Unknown node type in html export", "type", n.Type)
		if n.Text != "" {
			r.sb.WriteString(html.EscapeString(n.Text))
		}
		r.children(n)
	}
}

func (r *renderer) heading(n *tiptap.Node) {
	level := tiptap.HeadingLevel(n)
	id := ""
	if r.nextHead < len(r.headings) {
		id = r.headings[r.nextHead].Anchor
		r.nextHead++
	}
	tag := "h" + strconv.Itoa(level)
	r.wrap(tag, "heading", n, "id", id, "style", alignStyle(n.AttrString("textAlign")))
}

func (r *renderer) taskItem(n *tiptap.Node) {
	checked := n.AttrBool("checked")
	r.open("li", "task-item", "data-type", "taskItem", "data-checked", strconv.FormatBool(checked))
	r.sb.WriteString(`<label><input type="checkbox" disabled`)
	if checked {
		r.sb.WriteString(" checked")
	}
	r.sb.WriteString("></label><div>")
	r.children(n)
	r.sb.WriteString("</div></li>")
}

func (r *renderer) codeBlock(n *tiptap.Node) {
	lang := n.AttrString("language")
	code := n.TextContent()
	langClass := ""
	if lang != "" {
		langClass = "language-" + lang
	}
	r.open("pre", "code-block")
	r.sb.WriteString("<code")
	if langClass != "" {
		r.sb.WriteString(` class="` + html.EscapeString(langClass) + `"`)
	}
	r.sb.WriteString(">")
	if r.highlight {
		r.sb.WriteString(highlightCode(code, lang, r.theme))
	} else {
		r.sb.WriteString(html.EscapeString(code))
	}
	r.sb.WriteString("</code></pre>")
}

// highlightCode раскрашивает код токенами chroma с inline стилями.
func highlightCode(code, language string, theme Theme) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get(theme.codeStyle())
	if style == nil {
		style = styles.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return html.EscapeString(code)
	}

	var sb strings.Builder
	formatter := chromahtml.New(chromahtml.PreventSurroundingPre(true))
	if err := formatter.Format(&sb, style, iterator); err != nil {
		slog.Warn("Highlight code block", "language", language, "err", err)
		return html.EscapeString(code)
	}
	return sb.String()
}

func (r *renderer) image(n *tiptap.Node) {
	src := n.AttrString("src")
	if uri, ok := r.images[src]; ok {
		src = uri
	}
	style := ""
	if w := n.AttrInt("width"); w > 0 {
		style = "width: " + strconv.Itoa(w) + "px"
	}
	r.open("img", "image", "src", src, "alt", n.AttrString("alt"), "title", n.AttrString("title"), "style", style)
}

func (r *renderer) cell(tag, class string, n *tiptap.Node) {
	span := func(key string) string {
		if v := n.AttrInt(key); v > 1 {
			return strconv.Itoa(v)
		}
		return ""
	}
	align := n.AttrString("align")
	if align == "" {
		align = n.AttrString("textAlign")
	}
	r.wrap(tag, class, n, "colspan", span("colspan"), "rowspan", span("rowspan"), "style", alignStyle(align))
}

func (r *renderer) callout(n *tiptap.Node) {
	kind := strings.ToLower(n.AttrString("type"))
	if kind == "" {
		kind = "info"
	}
	emoji := n.AttrString("emoji")
	if emoji == "" {
		emoji = calloutEmoji[kind]
	}
	r.sb.WriteString(`<div class="` + DefaultClassPrefix + "callout " + DefaultClassPrefix + "callout-" + html.EscapeString(kind) + `" data-callout="` + html.EscapeString(kind) + `">`)
	if emoji != "" {
		r.sb.WriteString(`<span class="` + DefaultClassPrefix + `callout-emoji">` + html.EscapeString(emoji) + "</span>")
	}
	r.wrap("div", "callout-content", n)
	r.sb.WriteString("</div>")
}

func (r *renderer) toggle(n *tiptap.Node) {
	summary := n.AttrString("summary")
	if summary == "" {
		summary = n.AttrString("title")
	}
	r.start("details", "toggle")
	if n.AttrBool("open") {
		r.sb.WriteString(" open")
	}
	r.sb.WriteString(">")
	r.sb.WriteString("<summary>" + html.EscapeString(summary) + "</summary>")
	r.wrap("div", "toggle-content", n)
	r.sb.WriteString("</details>")
}

func nodeSrc(n *tiptap.Node) string {
	if src := n.AttrString("src"); src != "" {
		return src
	}
	return n.AttrString("url")
}

func (r *renderer) youtube(n *tiptap.Node) {
	src := nodeSrc(n)
	m := youtubeIDReg.FindStringSubmatch(src)
	if m == nil {
		r.embed(n)
		return
	}
	r.open("div", "youtube")
	r.start("iframe", "", "src", "https://www.youtube.com/embed/"+m[1], "frameborder", "0")
	r.sb.WriteString(" allowfullscreen></iframe></div>")
}

func (r *renderer) embed(n *tiptap.Node) {
	src := nodeSrc(n)
	if src == "" {
		return
	}
	title := n.AttrString("title")
	if title == "" {
		if n.Type == tiptap.NodeYoutube {
			title = "YouTube"
		} else {
			title = src
		}
	}
	r.open("div", "embed")
	r.open("a", "", "href", src)
	r.sb.WriteString(html.EscapeString(title) + "</a></div>")
}

func (r *renderer) fileAttachment(n *tiptap.Node) {
	src := nodeSrc(n)
	name := n.AttrString("name")
	if name == "" {
		name = n.AttrString("filename")
	}
	if name == "" {
		name = src
	}
	r.open("div", "file")
	if src == "" {
		r.sb.WriteString(html.EscapeString(name) + "</div>")
		return
	}
	r.open("a", "", "href", src, "download", name)
	r.sb.WriteString(html.EscapeString(name) + "</a></div>")
}

func (r *renderer) tableOfContents() {
	if len(r.headings) == 0 {
		return
	}
	top := 6
	for _, h := range r.headings {
		top = min(top, h.Level)
	}
	r.open("nav", "toc")
	r.sb.WriteString("<ul>")
	for _, h := range r.headings {
		r.sb.WriteString(`<li class="` + DefaultClassPrefix + "toc-level-" + strconv.Itoa(h.Level-top+1) + `">`)
		r.sb.WriteString(`<a href="#` + html.EscapeString(h.Anchor) + `">` + html.EscapeString(h.Text) + "</a></li>")
	}
	r.sb.WriteString("</ul></nav>")
}

func (r *renderer) text(n *tiptap.Node) {
	var closers []string
	for _, m := range n.Marks {
		open, closeTag, ok := markTags(m)
		if !ok {
			slog.Debug("Unknown mark type in html export", "type", m.Type)
			continue
		}
		r.sb.WriteString(open)
		closers = append(closers, closeTag)
	}
	r.sb.WriteString(html.EscapeString(n.Text))
	for i := len(closers) - 1; i >= 0; i-- {
		r.sb.WriteString(closers[i])
	}
}

// markTags возвращает открывающий и закрывающий теги mark. Первый mark становится внешним.
func markTags(m tiptap.Mark) (string, string, bool) {
	switch m.Type {
	case tiptap.MarkBold:
		return "<strong>", "</strong>", true
	case tiptap.MarkItalic:
		return "<em>", "</em>", true
	case tiptap.MarkStrike:
		return "<s>", "</s>", true
	case tiptap.MarkCode:
		return "<code>", "</code>", true
	case tiptap.MarkUnderline:
		return "<u>", "</u>", true
	case tiptap.MarkSubscript:
		return "<sub>", "</sub>", true
	case tiptap.MarkSuperscript:
		return "<sup>", "</sup>", true
	case tiptap.MarkLink:
		open := `<a href="` + html.EscapeString(m.AttrString("href")) + `"`
		if title := m.AttrString("title"); title != "" {
			open += ` title="` + html.EscapeString(title) + `"`
		}
		return open + ">", "</a>", true
	case tiptap.MarkHighlight:
		color := m.AttrString("color")
		if color == "" {
			return "<mark>", "</mark>", true
		}
		c := html.EscapeString(color)
		return `<mark data-color="` + c + `" style="background-color: ` + c + `">`, "</mark>", true
	case tiptap.MarkTextStyle:
		color := m.AttrString("color")
		if color == "" {
			return "<span>", "</span>", true
		}
		return `<span style="color: ` + html.EscapeString(color) + `">`, "</span>", true
	}
	return "", "", false
}

func alignStyle(align string) string {
	switch align {
	case "left", "center", "right", "justify":
		return "text-align: " + align
	}
	return ""
}
