package markdown

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/aisa-it/docexport/internal/docexport/editor/tiptap"
	md "github.com/nao1215/markdown"
)

var inlineTypes = map[tiptap.NodeType]bool{
	tiptap.NodeText:      true,
	tiptap.NodeHardBreak: true,
	tiptap.NodeMention:   true,
	tiptap.NodeEmoji:     true,
}

type markFunc func(s *serializer, m tiptap.Mark, text string) string

// markWrappers таблица оберток строчного форматирования.
var markWrappers = map[tiptap.MarkType]markFunc{
	tiptap.MarkBold:   func(_ *serializer, _ tiptap.Mark, t string) string { return md.Bold(t) },
	tiptap.MarkItalic: func(_ *serializer, _ tiptap.Mark, t string) string { return "_" + t + "_" },
	tiptap.MarkStrike: func(_ *serializer, _ tiptap.Mark, t string) string { return md.Strikethrough(t) },
	tiptap.MarkCode:   func(_ *serializer, _ tiptap.Mark, t string) string { return inlineCode(t) },
	tiptap.MarkLink: func(s *serializer, m tiptap.Mark, t string) string {
		return s.link(t, m.AttrString("href"), m.AttrString("title"))
	},
	tiptap.MarkUnderline: func(_ *serializer, _ tiptap.Mark, t string) string { return "<u>" + t + "</u>" },
	tiptap.MarkHighlight: func(_ *serializer, m tiptap.Mark, t string) string {
		if color := m.AttrString("color"); color != "" {
			return `<mark style="background-color: ` + htmlEscape(color) + `">` + t + "</mark>"
		}
		return "==" + t + "=="
	},
	tiptap.MarkSubscript:   func(_ *serializer, _ tiptap.Mark, t string) string { return "<sub>" + t + "</sub>" },
	tiptap.MarkSuperscript: func(_ *serializer, _ tiptap.Mark, t string) string { return "<sup>" + t + "</sup>" },
	tiptap.MarkTextStyle: func(_ *serializer, m tiptap.Mark, t string) string {
		if color := m.AttrString("color"); color != "" {
			return `<span style="color: ` + htmlEscape(color) + `">` + t + "</span>"
		}
		return t
	},
}

// HandlesMark сообщает, есть ли обертка для mark.
func HandlesMark(t tiptap.MarkType) bool {
	_, ok := markWrappers[t]
	return ok
}

func (s *serializer) inline(nodes []*tiptap.Node) string {
	var sb strings.Builder
	for _, n := range nodes {
		sb.WriteString(s.inlineNode(n))
	}
	return sb.String()
}

func (s *serializer) inlineNode(n *tiptap.Node) string {
	switch n.Type {
	case tiptap.NodeText:
		return s.applyMarks(n.Text, n.Marks)
	case tiptap.NodeHardBreak:
		if s.inCell {
			return "<br>"
		}
		return "\\\n"
	case tiptap.NodeMention:
		label := n.AttrString("label")
		if label == "" {
			label = n.AttrString("id")
		}
		return "@" + label
	case tiptap.NodeEmoji:
		if e := n.AttrString("emoji"); e != "" {
			return e
		}
		return ":" + n.AttrString("name") + ":"
	case tiptap.NodeImage:
		return s.image(n)
	}
	if len(n.Content) > 0 {
		return s.inline(n.Content)
	}
	return n.Text
}

// applyMarks оборачивает текст в порядке массива marks: первый mark оказывается снаружи.
// Пробелы по краям выносятся за обертку, иначе GFM не распознает выделение.
func (s *serializer) applyMarks(text string, marks []tiptap.Mark) string {
	if len(marks) == 0 {
		return text
	}
	core := strings.TrimFunc(text, unicode.IsSpace)
	if core == "" {
		return text
	}
	start := strings.Index(text, core)
	lead, trail := text[:start], text[start+len(core):]

	for i := len(marks) - 1; i >= 0; i-- {
		wrap, ok := markWrappers[marks[i].Type]
		if !ok {
			slog.Debug("Unknown mark type, skip", "type", marks[i].Type)
			continue
		}
		core = wrap(s, marks[i], core)
	}
	return lead + core + trail
}

func inlineCode(text string) string {
	if !strings.Contains(text, "`") {
		return md.Code(text)
	}
	ticks := "``"
	for strings.Contains(text, ticks) {
		ticks += "`"
	}
	return ticks + " " + text + " " + ticks
}

func (s *serializer) link(text, href, title string) string {
	if s.opts.LinkStyle == LinkReference {
		ref := linkRef{href: href, title: title}
		idx, ok := s.refIndex[ref]
		if !ok {
			s.refs = append(s.refs, ref)
			idx = len(s.refs)
			s.refIndex[ref] = idx
		}
		return fmt.Sprintf("[%s][%d]", text, idx)
	}
	if title != "" {
		return "[" + text + "](" + href + ` "` + title + `")`
	}
	return "[" + text + "](" + href + ")"
}
