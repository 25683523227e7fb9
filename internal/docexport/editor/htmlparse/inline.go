package htmlparse

import (
	"slices"
	"strings"

	"github.com/aisa-it/docexport/internal/docexport/editor/tiptap"
	"golang.org/x/net/html"
)

func parseInline(parent *html.Node, marks []tiptap.Mark) []*tiptap.Node {
	var res []*tiptap.Node
	for el := parent.FirstChild; el != nil; el = el.NextSibling {
		res = append(res, parseInlineNode(el, marks)...)
	}
	return res
}

func parseInlineNode(el *html.Node, marks []tiptap.Mark) []*tiptap.Node {
	switch el.Type {
	case html.TextNode:
		text := spacesReg.ReplaceAllString(el.Data, " ")
		if text == "" {
			return nil
		}
		return []*tiptap.Node{tiptap.NewText(text, slices.Clone(marks)...)}
	case html.ElementNode:
	default:
		return nil
	}

	switch el.Data {
	case "br":
		return []*tiptap.Node{{Type: tiptap.NodeHardBreak}}
	case "img":
		return []*tiptap.Node{parseImage(el)}
	case "script", "style":
		return nil
	}

	if getAttrValue("data-type", el.Attr) == "mention" {
		return []*tiptap.Node{{Type: tiptap.NodeMention, Attrs: map[string]any{
			"id":    getAttrValue("data-id", el.Attr),
			"label": strings.TrimPrefix(getAttrValue("data-label", el.Attr), "@"),
		}}}
	}

	if m, ok := elementMark(el); ok {
		marks = append(slices.Clone(marks), m)
	}
	return parseInline(el, marks)
}

// elementMark возвращает mark, который дает строчный элемент.
func elementMark(el *html.Node) (tiptap.Mark, bool) {
	switch el.Data {
	case "strong", "b":
		return tiptap.Mark{Type: tiptap.MarkBold}, true
	case "em", "i":
		return tiptap.Mark{Type: tiptap.MarkItalic}, true
	case "s", "del", "strike":
		return tiptap.Mark{Type: tiptap.MarkStrike}, true
	case "code":
		return tiptap.Mark{Type: tiptap.MarkCode}, true
	case "u":
		return tiptap.Mark{Type: tiptap.MarkUnderline}, true
	case "sub":
		return tiptap.Mark{Type: tiptap.MarkSubscript}, true
	case "sup":
		return tiptap.Mark{Type: tiptap.MarkSuperscript}, true
	case "a":
		attrs := map[string]any{"href": getAttrValue("href", el.Attr)}
		if title := getAttrValue("title", el.Attr); title != "" {
			attrs["title"] = title
		}
		return tiptap.Mark{Type: tiptap.MarkLink, Attrs: attrs}, true
	case "mark":
		m := tiptap.Mark{Type: tiptap.MarkHighlight}
		color := getAttrValue("data-color", el.Attr)
		if c := tiptap.ParseStyleAttr(getAttrValue("style", el.Attr))["background-color"]; c != "" {
			color = c
		}
		if color != "" {
			m.Attrs = map[string]any{"color": color}
		}
		return m, true
	case "span":
		if color := tiptap.ParseStyleAttr(getAttrValue("style", el.Attr))["color"]; color != "" && color != "inherit" {
			return tiptap.Mark{Type: tiptap.MarkTextStyle, Attrs: map[string]any{"color": color}}, true
		}
	}
	return tiptap.Mark{}, false
}

func parseImage(el *html.Node) *tiptap.Node {
	attrs := map[string]any{"src": getAttrValue("src", el.Attr)}
	for _, key := range []string{"alt", "title"} {
		if v, ok := attrValue(key, el.Attr); ok {
			attrs[key] = v
		}
	}
	width := getAttrValue("width", el.Attr)
	if w := tiptap.ParseStyleAttr(getAttrValue("style", el.Attr))["width"]; w != "" {
		width = w
	}
	if width != "" {
		attrs["width"] = width
	}
	return &tiptap.Node{Type: tiptap.NodeImage, Attrs: attrs}
}

// trimInline убирает пробелы на краях строчного содержимого блока.
func trimInline(nodes []*tiptap.Node) []*tiptap.Node {
	for len(nodes) > 0 && nodes[0].Type == tiptap.NodeText {
		nodes[0].Text = strings.TrimLeft(nodes[0].Text, " ")
		if nodes[0].Text != "" {
			break
		}
		nodes = nodes[1:]
	}
	for len(nodes) > 0 && nodes[len(nodes)-1].Type == tiptap.NodeText {
		last := nodes[len(nodes)-1]
		last.Text = strings.TrimRight(last.Text, " ")
		if last.Text != "" {
			break
		}
		nodes = nodes[:len(nodes)-1]
	}
	// Пробелы вокруг переноса строки
	for i, n := range nodes {
		if n.Type != tiptap.NodeHardBreak {
			continue
		}
		if i > 0 && nodes[i-1].Type == tiptap.NodeText {
			nodes[i-1].Text = strings.TrimRight(nodes[i-1].Text, " ")
		}
		if i+1 < len(nodes) && nodes[i+1].Type == tiptap.NodeText {
			nodes[i+1].Text = strings.TrimLeft(nodes[i+1].Text, " ")
		}
	}
	return slices.DeleteFunc(nodes, func(n *tiptap.Node) bool {
		return n.Type == tiptap.NodeText && n.Text == ""
	})
}

func textContent(root *html.Node) string {
	var sb strings.Builder
	iterNodes(root, func(el *html.Node) bool {
		if el.Type == html.TextNode {
			sb.WriteString(el.Data)
		}
		return false
	})
	return sb.String()
}

func findElementByTagName(rootNode *html.Node, tagName string) *html.Node {
	var el *html.Node
	iterNodes(rootNode, func(child *html.Node) bool {
		if el != nil {
			return true
		}
		if child.Type == html.ElementNode && child.Data == tagName {
			el = child
			return true
		}
		return false
	})
	return el
}

func iterNodes(node *html.Node, f func(child *html.Node) bool) {
	if f(node) {
		return
	}
	for p := node.FirstChild; p != nil; p = p.NextSibling {
		iterNodes(p, f)
	}
}

func getAttrValue(key string, attrs []html.Attribute) string {
	v, _ := attrValue(key, attrs)
	return v
}

func attrValue(key string, attrs []html.Attribute) (string, bool) {
	for _, attr := range attrs {
		if attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}
