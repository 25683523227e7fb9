package export

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/aisa-it/docexport/internal/docexport/editor/tiptap"
	"github.com/aisa-it/docexport/internal/docexport/markdown"
)

const (
	baseFontSize = 11.0
	listIndent   = 6.0
	quoteIndent  = 5.0
)

var headingSizes = [7]float64{0, 22, 18, 15, 13, 12, 11}

var calloutColors = map[string]string{
	"info":    "#0969da",
	"success": "#1a7f37",
	"warning": "#9a6700",
	"error":   "#cf222e",
}

func (w *pdfWriter) writeDocument(doc *tiptap.Node) error {
	for _, n := range doc.Content {
		if err := w.ctx.Err(); err != nil {
			return err
		}
		w.writeBlock(n)
		w.resetMargins()
	}
	return nil
}

func (w *pdfWriter) writeBlocks(nodes []*tiptap.Node) {
	for _, n := range nodes {
		w.writeBlock(n)
	}
}

func (w *pdfWriter) writeBlock(n *tiptap.Node) {
	switch n.Type {
	case tiptap.NodeParagraph:
		w.writeParagraph(n)
	case tiptap.NodeHeading:
		w.writeHeading(n)
	case tiptap.NodeBulletList, tiptap.NodeOrderedList, tiptap.NodeTaskList:
		w.writeList(n)
	case tiptap.NodeBlockquote:
		w.writeQuote(n, "#4a4752", "")
	case tiptap.NodeCallout:
		kind := strings.ToLower(n.AttrString("type"))
		color, ok := calloutColors[kind]
		if !ok {
			color = calloutColors["info"]
		}
		w.writeQuote(n, color, markdown.CalloutAlert(kind))
	case tiptap.NodeCodeBlock, tiptap.NodePreformatted:
		w.writeCode(n)
	case tiptap.NodeHorizontalRule:
		w.writeRule()
	case tiptap.NodeTable:
		w.writeTable(n)
	case tiptap.NodeImage:
		w.writeImage(n)
		w.pdf.Ln(-1)
	case tiptap.NodeToggleBlock:
		summary := n.AttrString("summary")
		if summary == "" {
			summary = n.AttrString("title")
		}
		w.setFont("B", baseFontSize)
		w.write(summary)
		w.pdf.Ln(-1)
		w.indented(listIndent, func() { w.writeBlocks(n.Content) })
	case tiptap.NodeDatabase:
		if title := n.AttrString("title"); title != "" {
			w.setFont("B", baseFontSize)
			w.write(title)
			w.pdf.Ln(-1)
		}
		w.writeBlocks(n.Content)
	case tiptap.NodeYoutube, tiptap.NodeEmbed, tiptap.NodeFileAttachment:
		w.writeLinkBlock(n)
	case tiptap.NodeTableOfContents:
		w.writeTableOfContents()
	case tiptap.NodeDoc, tiptap.NodeSection, tiptap.NodeColumns, tiptap.NodeColumn,
		tiptap.NodeListItem, tiptap.NodeTaskItem:
		w.writeBlocks(n.Content)
	default:
		if n.IsInline() {
			w.writeInline([]*tiptap.Node{n}, "", baseFontSize)
			w.pdf.Ln(-1)
			return
		}
		slog.Debug("Unknown node type in pdf export", "type", n.Type)
		w.writeBlocks(n.Content)
	}
}

func (w *pdfWriter) writeParagraph(n *tiptap.Node) {
	if len(n.Content) == 0 {
		w.pdf.Ln(w.lineHeight(baseFontSize))
		return
	}
	w.writeInline(n.Content, "", baseFontSize)
	w.pdf.Ln(-1)
	w.pdf.Ln(1.5)
}

func (w *pdfWriter) writeHeading(n *tiptap.Node) {
	level := tiptap.HeadingLevel(n)
	w.pdf.Ln(2)
	if i, ok := w.headingIndex[n]; ok {
		h := w.headings[i]
		w.pdf.SetLink(h.link, -1, -1)
		// уровень закладки не может прыгать больше чем на один
		bl := min(level-1, w.bookmarkLevel+1)
		w.pdf.Bookmark(w.tr(h.text), bl, -1)
		w.bookmarkLevel = bl
	}
	w.writeInline(n.Content, "B", headingSizes[level])
	w.pdf.Ln(-1)
	w.pdf.Ln(1)
}

func (w *pdfWriter) writeList(n *tiptap.Node) {
	start := 1
	if n.Type == tiptap.NodeOrderedList {
		if s := n.AttrInt("start"); s > 0 {
			start = s
		}
	}
	left, _, _, _ := w.pdf.GetMargins()

	for i, item := range n.Content {
		w.setFont("", baseFontSize)
		w.pdf.SetX(left)
		y := w.pdf.GetY()
		switch {
		case item.Type == tiptap.NodeTaskItem || n.Type == tiptap.NodeTaskList:
			w.drawCheckbox(left, y, item.AttrBool("checked"))
		case n.Type == tiptap.NodeOrderedList:
			w.write(strconv.Itoa(start+i) + ".")
		default:
			w.write("•")
		}
		w.pdf.SetXY(left+listIndent, y)
		w.indented(listIndent, func() { w.writeBlocks(item.Content) })
	}
	w.pdf.Ln(1)
}

func (w *pdfWriter) drawCheckbox(x, y float64, checked bool) {
	size := 3.2
	top := y + (w.lineHeight(baseFontSize)-size)/2
	w.pdf.SetDrawColor(74, 71, 82)
	w.pdf.SetLineWidth(0.3)
	w.pdf.Rect(x, top, size, size, "D")
	if checked {
		w.pdf.Line(x+0.6, top+size/2, x+size/2-0.2, top+size-0.6)
		w.pdf.Line(x+size/2-0.2, top+size-0.6, x+size-0.5, top+0.5)
	}
}

// indented пишет содержимое со сдвигом левого поля.
func (w *pdfWriter) indented(offset float64, fn func()) {
	left, top, right, _ := w.pdf.GetMargins()
	w.pdf.SetMargins(left+offset, top, right)
	fn()
	w.pdf.SetMargins(left, top, right)
	w.pdf.SetX(left)
}

func (w *pdfWriter) writeQuote(n *tiptap.Node, color, label string) {
	w.pdf.Ln(2)
	left, _, _, _ := w.pdf.GetMargins()
	y1 := w.pdf.GetY()
	page := w.pdf.PageNo()

	w.indented(quoteIndent, func() {
		w.pdf.SetX(left + quoteIndent)
		if label != "" {
			w.setFont("B", baseFontSize)
			r, g, b := parseColor(color)
			w.pdf.SetTextColor(r, g, b)
			w.pdf.Write(w.lineHeight(baseFontSize), w.tr(label))
			w.pdf.Ln(-1)
		}
		w.writeBlocks(n.Content)
	})

	// при переносе на новую страницу линия начинается от верхнего поля
	if w.pdf.PageNo() != page {
		_, y1, _, _ = w.pdf.GetMargins()
	}
	w.pdf.SetLineWidth(0.6)
	w.SetHexDrawColor(color)
	w.pdf.Line(left+1, y1, left+1, w.pdf.GetY())
	w.pdf.Ln(2)
}

func (w *pdfWriter) writeCode(n *tiptap.Node) {
	code := strings.TrimRight(n.TextContent(), "\n")
	w.pdf.Ln(1)
	w.pdf.SetFont(w.fonts.mono, "", 9)
	w.pdf.SetTextColor(36, 41, 47)
	w.SetHexFillColor("#f6f8fa")
	w.pdf.MultiCell(0, 4.5, w.tr(strings.ReplaceAll(code, "\t", "    ")), "", "L", true)
	w.pdf.Ln(2)
}

func (w *pdfWriter) writeRule() {
	left, _, right, _ := w.pdf.GetMargins()
	pW, _ := w.pdf.GetPageSize()
	w.pdf.Ln(2)
	w.pdf.SetLineWidth(0.3)
	w.SetHexDrawColor("#d0d7de")
	w.pdf.Line(left, w.pdf.GetY(), pW-right, w.pdf.GetY())
	w.pdf.Ln(3)
}

func (w *pdfWriter) writeLinkBlock(n *tiptap.Node) {
	src := n.AttrString("src")
	if src == "" {
		src = n.AttrString("url")
	}
	title := n.AttrString("title")
	if title == "" {
		title = n.AttrString("name")
	}
	if title == "" {
		title = n.AttrString("filename")
	}
	if title == "" {
		if n.Type == tiptap.NodeYoutube {
			title = "YouTube"
		} else {
			title = src
		}
	}
	if title == "" {
		return
	}
	w.setFont("U", baseFontSize)
	w.SetHexTextColor("#0969da")
	w.write(title, src)
	w.pdf.Ln(-1)
	w.pdf.Ln(1.5)
}

func (w *pdfWriter) writeTableOfContents() {
	if len(w.headings) == 0 {
		return
	}
	top := 6
	for _, h := range w.headings {
		top = min(top, h.level)
	}
	left, _, _, _ := w.pdf.GetMargins()
	for _, h := range w.headings {
		w.setFont("", baseFontSize)
		w.SetHexTextColor("#0969da")
		w.pdf.SetX(left + float64(h.level-top)*listIndent)
		w.pdf.WriteLinkID(w.lineHeight(baseFontSize), w.tr(h.text), h.link)
		w.pdf.Ln(-1)
	}
	w.pdf.Ln(2)
}
