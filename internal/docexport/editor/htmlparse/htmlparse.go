// Пакет htmlparse строит дерево документа TipTap из HTML в формате редактора.
// Используется при импорте Markdown (через промежуточный HTML) и старого HTML контента.
//
// Основные возможности:
//   - Парсинг HTML из io.Reader.
//   - Поддержка параграфов, заголовков, списков (в том числе задач), цитат, callout, кода,
//     таблиц, изображений и сворачиваемых блоков.
//   - Сбор marks по вложенности строчных элементов: внешний элемент дает первый mark.
//   - Строчный контент вне блоков собирается в неявный параграф.
package htmlparse

import (
	"io"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/aisa-it/docexport/internal/docexport/editor/tiptap"
	"golang.org/x/net/html"
)

var spacesReg = regexp.MustCompile(`\s+`)

// Parse разбирает HTML документ или фрагмент в дерево с корнем doc.
func Parse(r io.Reader) (*tiptap.Node, error) {
	rootNode, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	doc := &tiptap.Node{Type: tiptap.NodeDoc}
	if body := findElementByTagName(rootNode, "body"); body != nil {
		doc.Content = parseBlocks(body)
	}
	return doc, nil
}

func parseBlocks(parent *html.Node) []*tiptap.Node {
	var res, pending []*tiptap.Node

	flush := func() {
		if p := implicitParagraph(pending); p != nil {
			res = append(res, p)
		}
		pending = nil
	}

	for el := parent.FirstChild; el != nil; el = el.NextSibling {
		switch el.Type {
		case html.TextNode:
			pending = append(pending, parseInlineNode(el, nil)...)
			continue
		case html.ElementNode:
		default:
			continue
		}

		if !isBlockElement(el) {
			pending = append(pending, parseInlineNode(el, nil)...)
			continue
		}

		flush()
		res = append(res, parseBlock(el)...)
	}
	flush()

	return res
}

func implicitParagraph(inline []*tiptap.Node) *tiptap.Node {
	inline = trimInline(inline)
	if len(inline) == 0 {
		return nil
	}
	return &tiptap.Node{Type: tiptap.NodeParagraph, Content: inline}
}

var blockElements = []string{
	"p", "h1", "h2", "h3", "h4", "h5", "h6", "ul", "ol", "li", "blockquote", "pre", "hr",
	"table", "div", "details", "section", "article", "main", "header", "footer", "figure",
}

func isBlockElement(el *html.Node) bool {
	return slices.Contains(blockElements, el.Data)
}

func parseBlock(el *html.Node) []*tiptap.Node {
	switch el.Data {
	case "p":
		return []*tiptap.Node{parseParagraph(el)}
	case "h1", "h2", "h3", "h4", "h5", "h6":
		level, _ := strconv.Atoi(el.Data[1:])
		return []*tiptap.Node{{
			Type:    tiptap.NodeHeading,
			Attrs:   map[string]any{"level": level},
			Content: trimInline(parseInline(el, nil)),
		}}
	case "ul", "ol":
		return []*tiptap.Node{parseList(el)}
	case "li":
		return []*tiptap.Node{parseListItem(el, false)}
	case "blockquote":
		if calloutType, ok := attrValue("data-callout", el.Attr); ok {
			return []*tiptap.Node{parseCallout(el, calloutType)}
		}
		return []*tiptap.Node{{Type: tiptap.NodeBlockquote, Content: parseBlocks(el)}}
	case "pre":
		return []*tiptap.Node{parseCode(el)}
	case "hr":
		return []*tiptap.Node{{Type: tiptap.NodeHorizontalRule}}
	case "table":
		return []*tiptap.Node{parseTable(el)}
	case "details":
		return []*tiptap.Node{parseDetails(el)}
	case "div":
		if calloutType, ok := attrValue("data-callout", el.Attr); ok {
			return []*tiptap.Node{parseCallout(el, calloutType)}
		}
	}
	// Контейнеры без собственного типа раскрываются
	return parseBlocks(el)
}

func parseParagraph(el *html.Node) *tiptap.Node {
	p := &tiptap.Node{Type: tiptap.NodeParagraph, Content: trimInline(parseInline(el, nil))}
	if align := tiptap.ParseStyleAttr(getAttrValue("style", el.Attr))["text-align"]; align != "" {
		p.Attrs = map[string]any{"textAlign": align}
	}
	return p
}

func parseList(el *html.Node) *tiptap.Node {
	list := &tiptap.Node{Type: tiptap.NodeBulletList}
	task := getAttrValue("data-type", el.Attr) == "taskList"
	switch {
	case task:
		list.Type = tiptap.NodeTaskList
	case el.Data == "ol":
		list.Type = tiptap.NodeOrderedList
		start := 1
		if s, err := strconv.Atoi(getAttrValue("start", el.Attr)); err == nil {
			start = s
		}
		list.Attrs = map[string]any{"start": start}
	}

	for li := el.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.Data != "li" {
			continue
		}
		list.Content = append(list.Content, parseListItem(li, task))
	}
	return list
}

func parseListItem(li *html.Node, task bool) *tiptap.Node {
	item := &tiptap.Node{Type: tiptap.NodeListItem, Content: parseBlocks(li)}
	checked, hasChecked := attrValue("data-checked", li.Attr)
	if task || hasChecked || getAttrValue("data-type", li.Attr) == "taskItem" {
		item.Type = tiptap.NodeTaskItem
		item.Attrs = map[string]any{"checked": checked == "true"}
	}
	return item
}

func parseCallout(el *html.Node, calloutType string) *tiptap.Node {
	attrs := map[string]any{"type": calloutType}
	if emoji := getAttrValue("data-emoji", el.Attr); emoji != "" {
		attrs["emoji"] = emoji
	}
	return &tiptap.Node{Type: tiptap.NodeCallout, Attrs: attrs, Content: parseBlocks(el)}
}

func parseCode(el *html.Node) *tiptap.Node {
	node := &tiptap.Node{Type: tiptap.NodeCodeBlock}
	if code := findElementByTagName(el, "code"); code != nil {
		for class := range strings.FieldsSeq(getAttrValue("class", code.Attr)) {
			if lang, ok := strings.CutPrefix(class, "language-"); ok {
				node.Attrs = map[string]any{"language": lang}
			}
		}
	}
	if node.Attrs == nil {
		node.Type = tiptap.NodePreformatted
	}
	if text := textContent(el); text != "" {
		node.Content = []*tiptap.Node{tiptap.NewText(text)}
	}
	return node
}

func parseDetails(el *html.Node) *tiptap.Node {
	toggle := &tiptap.Node{Type: tiptap.NodeToggleBlock, Attrs: map[string]any{}}
	if _, ok := attrValue("open", el.Attr); ok {
		toggle.Attrs["open"] = true
	}

	body := &html.Node{Type: html.ElementNode, Data: "div"}
	for child := el.FirstChild; child != nil; {
		next := child.NextSibling
		if child.Type == html.ElementNode && child.Data == "summary" {
			toggle.Attrs["summary"] = strings.TrimSpace(spacesReg.ReplaceAllString(textContent(child), " "))
		} else {
			el.RemoveChild(child)
			body.AppendChild(child)
		}
		child = next
	}
	toggle.Content = parseBlocks(body)
	return toggle
}

func parseTable(el *html.Node) *tiptap.Node {
	table := &tiptap.Node{Type: tiptap.NodeTable}

	iterNodes(el, func(tr *html.Node) bool {
		if tr.Type != html.ElementNode || tr.Data != "tr" {
			return false
		}
		row := &tiptap.Node{Type: tiptap.NodeTableRow}
		for td := tr.FirstChild; td != nil; td = td.NextSibling {
			if td.Type != html.ElementNode || (td.Data != "td" && td.Data != "th") {
				continue
			}
			cell := &tiptap.Node{Type: tiptap.NodeTableCell, Content: parseBlocks(td)}
			if td.Data == "th" {
				cell.Type = tiptap.NodeTableHeader
			}
			align := getAttrValue("align", td.Attr)
			if a := tiptap.ParseStyleAttr(getAttrValue("style", td.Attr))["text-align"]; a != "" {
				align = a
			}
			attrs := map[string]any{}
			if align != "" {
				attrs["align"] = align
			}
			if span, err := strconv.Atoi(getAttrValue("colspan", td.Attr)); err == nil {
				attrs["colspan"] = span
			}
			if span, err := strconv.Atoi(getAttrValue("rowspan", td.Attr)); err == nil {
				attrs["rowspan"] = span
			}
			if len(attrs) > 0 {
				cell.Attrs = attrs
			}
			row.Content = append(row.Content, cell)
		}
		table.Content = append(table.Content, row)
		return true
	})

	return table
}
