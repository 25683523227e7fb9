// Пакет markdown сериализует дерево документа TipTap в GitHub-Flavored Markdown и выполняет
// обратное преобразование Markdown в HTML для импорта.
//
// Основные возможности:
//   - Рекурсивная сериализация всех известных типов нод (списки, таблицы, callout, код).
//   - Применение marks в порядке массива, первый mark снаружи.
//   - Frontmatter в минимальном YAML-подобном формате.
//   - Регулярный (совместимый) и CommonMark режимы Markdown -> HTML.
//   - Конвертация сохраненного HTML в Markdown.
package markdown

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/aisa-it/docexport/internal/docexport/editor/tiptap"
)

// ImageStyle способ вывода изображений.
type ImageStyle string

const (
	ImageMarkdown ImageStyle = "markdown"
	ImageHTML     ImageStyle = "html"
)

// LinkStyle способ вывода ссылок.
type LinkStyle string

const (
	LinkInline    LinkStyle = "inline"
	LinkReference LinkStyle = "reference"
)

// Options параметры сериализации.
type Options struct {
	IncludeFrontmatter bool           `json:"include_frontmatter"`
	Frontmatter        map[string]any `json:"frontmatter,omitempty"`
	ImageStyle         ImageStyle     `json:"image_style,omitempty" validate:"omitempty,oneof=markdown html"`
	LinkStyle          LinkStyle      `json:"link_style,omitempty" validate:"omitempty,oneof=inline reference"`
}

type linkRef struct {
	href  string
	title string
}

type serializer struct {
	opts   Options
	root   *tiptap.Node
	inCell bool

	refs     []linkRef
	refIndex map[linkRef]int
}

type renderFunc func(s *serializer, n *tiptap.Node) string

// blockRenderers заполняется в init, иначе получается цикл инициализации.
var blockRenderers map[tiptap.NodeType]renderFunc

func init() {
	blockRenderers = map[tiptap.NodeType]renderFunc{
		tiptap.NodeDoc:             (*serializer).container,
		tiptap.NodeSection:         (*serializer).container,
		tiptap.NodeColumns:         (*serializer).container,
		tiptap.NodeColumn:          (*serializer).container,
		tiptap.NodeParagraph:       (*serializer).paragraph,
		tiptap.NodeHeading:         (*serializer).heading,
		tiptap.NodeBulletList:      (*serializer).bulletList,
		tiptap.NodeTaskList:        (*serializer).bulletList,
		tiptap.NodeOrderedList:     (*serializer).orderedList,
		tiptap.NodeListItem:        (*serializer).listItem,
		tiptap.NodeTaskItem:        (*serializer).listItem,
		tiptap.NodeBlockquote:      (*serializer).blockquote,
		tiptap.NodeCodeBlock:       (*serializer).codeBlock,
		tiptap.NodePreformatted:    (*serializer).preformatted,
		tiptap.NodeHorizontalRule:  func(*serializer, *tiptap.Node) string { return "---" },
		tiptap.NodeImage:           (*serializer).image,
		tiptap.NodeTable:           (*serializer).table,
		tiptap.NodeTableRow:        (*serializer).tableRow,
		tiptap.NodeTableCell:       (*serializer).cellBlock,
		tiptap.NodeTableHeader:     (*serializer).cellBlock,
		tiptap.NodeCallout:         (*serializer).callout,
		tiptap.NodeToggleBlock:     (*serializer).toggle,
		tiptap.NodeYoutube:         (*serializer).embed,
		tiptap.NodeEmbed:           (*serializer).embed,
		tiptap.NodeFileAttachment:  (*serializer).fileAttachment,
		tiptap.NodeTableOfContents: (*serializer).tableOfContents,
		tiptap.NodeDatabase:        (*serializer).database,
	}
}

// Serialize превращает документ в Markdown. Результат обрезан по краям и всегда
// заканчивается одним переводом строки. Дерево не изменяется.
func Serialize(doc *tiptap.Node, opts Options) string {
	doc = doc.Compact()
	s := &serializer{opts: opts, root: doc, refIndex: make(map[linkRef]int)}

	var parts []string
	if opts.IncludeFrontmatter && len(opts.Frontmatter) > 0 {
		parts = append(parts, Frontmatter(opts.Frontmatter))
	}
	if doc != nil {
		parts = append(parts, s.block(doc))
	}
	if refs := s.references(); refs != "" {
		parts = append(parts, refs)
	}

	return strings.TrimSpace(strings.Join(parts, "\n\n")) + "\n"
}

// Handles сообщает, умеет ли сериализатор выводить ноду данного типа.
func Handles(t tiptap.NodeType) bool {
	if _, ok := blockRenderers[t]; ok {
		return true
	}
	return inlineTypes[t]
}

func (s *serializer) block(n *tiptap.Node) string {
	if render, ok := blockRenderers[n.Type]; ok {
		return render(s, n)
	}
	if n.IsInline() {
		return s.inline([]*tiptap.Node{n})
	}

	slog.Debug("Unknown node type, fallback to content", "type", n.Type)
	if len(n.Content) > 0 {
		if n.HasInlineContent() {
			return s.inline(n.Content)
		}
		return s.blocks(n.Content)
	}
	return n.Text
}

// blocks соединяет блоки пустой строкой, пустые блоки пропускаются.
func (s *serializer) blocks(nodes []*tiptap.Node) string {
	return s.join(nodes, "\n\n")
}

func (s *serializer) join(nodes []*tiptap.Node, sep string) string {
	var out []string
	for _, child := range nodes {
		if text := s.block(child); strings.TrimSpace(text) != "" {
			out = append(out, text)
		}
	}
	return strings.Join(out, sep)
}

func (s *serializer) container(n *tiptap.Node) string {
	return s.blocks(n.Content)
}

func (s *serializer) paragraph(n *tiptap.Node) string {
	return s.inline(n.Content)
}

func (s *serializer) heading(n *tiptap.Node) string {
	return strings.Repeat("#", tiptap.HeadingLevel(n)) + " " + strings.TrimSpace(s.inline(n.Content))
}

func (s *serializer) bulletList(n *tiptap.Node) string {
	return s.list(n, func(_ int, item *tiptap.Node) string {
		return "- " + checkbox(item)
	}, "  ")
}

func (s *serializer) orderedList(n *tiptap.Node) string {
	start := 1
	if _, ok := n.Attrs["start"]; ok {
		start = n.AttrInt("start")
	}
	return s.list(n, func(i int, _ *tiptap.Node) string {
		return fmt.Sprintf("%d. ", start+i)
	}, "   ")
}

func checkbox(item *tiptap.Node) string {
	if item.Type != tiptap.NodeTaskItem {
		return ""
	}
	if item.AttrBool("checked") {
		return "[x] "
	}
	return "[ ] "
}

// list выводит элементы списка: первая строка с маркером, остальные с отступом
// шириной маркера текущего списка.
func (s *serializer) list(n *tiptap.Node, marker func(i int, item *tiptap.Node) string, indent string) string {
	items := make([]string, 0, len(n.Content))
	for i, item := range n.Content {
		body := s.block(item)
		prefix := marker(i, item)
		if body == "" {
			items = append(items, strings.TrimRight(prefix, " "))
			continue
		}
		items = append(items, prefix+indentContinuation(body, indent))
	}
	return strings.Join(items, "\n")
}

func (s *serializer) listItem(n *tiptap.Node) string {
	return s.join(n.Content, "\n")
}

func indentContinuation(text, indent string) string {
	lines := strings.Split(text, "\n")
	for i := 1; i < len(lines); i++ {
		if lines[i] != "" {
			lines[i] = indent + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}

func quoteLines(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line == "" {
			lines[i] = ">"
		} else {
			lines[i] = "> " + line
		}
	}
	return strings.Join(lines, "\n")
}

func (s *serializer) blockquote(n *tiptap.Node) string {
	body := s.blocks(n.Content)
	if body == "" {
		return ""
	}
	return quoteLines(body)
}

var calloutAlerts = map[string]string{
	"info":    "NOTE",
	"note":    "NOTE",
	"tip":     "TIP",
	"success": "TIP",
	"warning": "WARNING",
	"error":   "CAUTION",
}

// CalloutAlert возвращает тип GFM alert для типа callout. Неизвестные типы дают NOTE.
func CalloutAlert(calloutType string) string {
	if alert, ok := calloutAlerts[strings.ToLower(calloutType)]; ok {
		return alert
	}
	return "NOTE"
}

func (s *serializer) callout(n *tiptap.Node) string {
	head := "> [!" + CalloutAlert(n.AttrString("type")) + "]"
	body := s.blocks(n.Content)
	if body == "" {
		return head
	}
	return head + "\n" + quoteLines(body)
}

func fence(lang, code string) string {
	marker := "```"
	for strings.Contains(code, marker) {
		marker += "`"
	}
	return marker + lang + "\n" + code + "\n" + marker
}

func (s *serializer) codeBlock(n *tiptap.Node) string {
	return fence(n.AttrString("language"), strings.TrimRight(n.TextContent(), "\n"))
}

func (s *serializer) preformatted(n *tiptap.Node) string {
	return fence("", strings.TrimRight(n.TextContent(), "\n"))
}

func (s *serializer) toggle(n *tiptap.Node) string {
	summary := n.AttrString("summary")
	if summary == "" {
		summary = n.AttrString("title")
	}
	body := s.blocks(n.Content)

	var sb strings.Builder
	sb.WriteString("<details>\n<summary>" + htmlEscape(summary) + "</summary>\n\n")
	if body != "" {
		sb.WriteString(body + "\n\n")
	}
	sb.WriteString("</details>")
	return sb.String()
}

func (s *serializer) embed(n *tiptap.Node) string {
	src := n.AttrString("src")
	if src == "" {
		src = n.AttrString("url")
	}
	if src == "" {
		return ""
	}
	title := n.AttrString("title")
	if title == "" {
		if n.Type == tiptap.NodeYoutube {
			title = "YouTube"
		} else {
			title = src
		}
	}
	return s.link(title, src, "")
}

func (s *serializer) fileAttachment(n *tiptap.Node) string {
	src := n.AttrString("src")
	if src == "" {
		src = n.AttrString("url")
	}
	name := n.AttrString("name")
	if name == "" {
		name = n.AttrString("filename")
	}
	if name == "" {
		name = src
	}
	if src == "" {
		return name
	}
	return s.link(name, src, "")
}

func (s *serializer) tableOfContents(_ *tiptap.Node) string {
	headings := s.root.Headings()
	if len(headings) == 0 {
		return ""
	}
	top := 6
	for _, h := range headings {
		top = min(top, h.Level)
	}
	lines := make([]string, 0, len(headings))
	for _, h := range headings {
		lines = append(lines, strings.Repeat("  ", h.Level-top)+"- ["+h.Text+"](#"+h.Anchor+")")
	}
	return strings.Join(lines, "\n")
}

func (s *serializer) database(n *tiptap.Node) string {
	title := n.AttrString("title")
	body := s.blocks(n.Content)
	switch {
	case title == "":
		return body
	case body == "":
		return "**" + title + "**"
	}
	return "**" + title + "**\n\n" + body
}

func (s *serializer) image(n *tiptap.Node) string {
	src := n.AttrString("src")
	alt := n.AttrString("alt")
	title := n.AttrString("title")

	if s.opts.ImageStyle == ImageHTML {
		var sb strings.Builder
		sb.WriteString(`<img src="` + htmlEscape(src) + `" alt="` + htmlEscape(alt) + `"`)
		if title != "" {
			sb.WriteString(` title="` + htmlEscape(title) + `"`)
		}
		if w := n.AttrInt("width"); w > 0 {
			sb.WriteString(fmt.Sprintf(` width="%d"`, w))
		}
		sb.WriteString(">")
		return sb.String()
	}

	if title != "" {
		return "![" + alt + "](" + src + ` "` + title + `")`
	}
	return "![" + alt + "](" + src + ")"
}

func (s *serializer) references() string {
	if len(s.refs) == 0 {
		return ""
	}
	lines := make([]string, 0, len(s.refs))
	for i, ref := range s.refs {
		line := fmt.Sprintf("[%d]: %s", i+1, ref.href)
		if ref.title != "" {
			line += ` "` + ref.title + `"`
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

var htmlReplacer = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func htmlEscape(s string) string {
	return htmlReplacer.Replace(s)
}
