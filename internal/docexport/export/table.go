package export

import (
	"strings"

	"github.com/aisa-it/docexport/internal/docexport/editor/tiptap"
)

const (
	tableFontSize    = 10.0
	tableCellPadding = 1.5
	defaultColWidth  = 120
)

func (w *pdfWriter) writeTable(table *tiptap.Node) {
	if len(table.Content) == 0 {
		return
	}
	colWidth := w.getTableWidthUnits(table)
	lineH := w.lineHeight(tableFontSize)
	left, _, _, bottom := w.pdf.GetMargins()
	_, pH := w.pdf.GetPageSize()

	w.pdf.Ln(1)
	w.pdf.SetLineWidth(0.2)
	w.SetHexDrawColor("#d0d7de")

	for _, row := range table.Content {
		cells := row.Content

		// высота строки по самой длинной ячейке
		rowH := lineH + 2*tableCellPadding
		col := 0
		for _, cell := range cells {
			width := spanWidth(colWidth, col, cellSpan(cell))
			col += cellSpan(cell)
			w.setCellFont(cell)
			lines := w.pdf.SplitText(w.tr(cellText(cell)), width-2*tableCellPadding)
			rowH = max(rowH, float64(max(len(lines), 1))*lineH+2*tableCellPadding)
		}

		if w.pdf.GetY()+rowH > pH-bottom {
			w.pdf.AddPage()
		}
		y := w.pdf.GetY()
		x := left

		col = 0
		for _, cell := range cells {
			span := cellSpan(cell)
			width := spanWidth(colWidth, col, span)
			col += span

			style := "D"
			if cell.Type == tiptap.NodeTableHeader {
				w.SetHexFillColor("#e5edfa")
				style = "FD"
			}
			w.pdf.Rect(x, y, width, rowH, style)

			w.setCellFont(cell)
			w.pdf.SetXY(x+tableCellPadding, y+tableCellPadding)
			w.pdf.MultiCell(width-2*tableCellPadding, lineH, w.tr(cellText(cell)), "", cellAlign(cell), false)
			x += width
		}
		w.pdf.SetXY(left, y+rowH)
	}
	w.pdf.Ln(3)
}

func (w *pdfWriter) setCellFont(cell *tiptap.Node) {
	style := ""
	if cell.Type == tiptap.NodeTableHeader {
		style = "B"
	}
	w.setFont(style, tableFontSize)
}

// getTableWidthUnits распределяет ширину страницы между колонками пропорционально colwidth.
// Колонки без ширины получают среднюю ширину заданных.
func (w *pdfWriter) getTableWidthUnits(t *tiptap.Node) []float64 {
	var widths []int
	for _, cell := range t.Content[0].Content {
		span := cellSpan(cell)
		cw := colWidths(cell)
		for i := range span {
			if i < len(cw) {
				widths = append(widths, cw[i])
			} else {
				widths = append(widths, 0)
			}
		}
	}
	for _, row := range t.Content[1:] {
		n := 0
		for _, cell := range row.Content {
			n += cellSpan(cell)
		}
		for len(widths) < n {
			widths = append(widths, 0)
		}
	}

	sum, known := 0, 0
	for _, s := range widths {
		if s > 0 {
			sum += s
			known++
		}
	}
	auto := defaultColWidth
	if known > 0 {
		auto = sum / known
	}

	total := 0
	for i, s := range widths {
		if s <= 0 {
			widths[i] = auto
		}
		total += widths[i]
	}

	l, _, r, _ := w.pdf.GetMargins()
	pW, _ := w.pdf.GetPageSize()
	width := pW - l - r

	res := make([]float64, len(widths))
	for i, s := range widths {
		res[i] = width / float64(total) * float64(s)
	}
	return res
}

func spanWidth(colWidth []float64, col, span int) float64 {
	res := 0.0
	for i := col; i < col+span && i < len(colWidth); i++ {
		res += colWidth[i]
	}
	return res
}

func cellSpan(cell *tiptap.Node) int {
	return max(cell.AttrInt("colspan"), 1)
}

// colWidths читает атрибут colwidth редактора: массив ширин в пикселях по колонкам ячейки.
func colWidths(cell *tiptap.Node) []int {
	raw, ok := cell.Attrs["colwidth"].([]any)
	if !ok {
		if v := cell.AttrInt("colwidth"); v > 0 {
			return []int{v}
		}
		return nil
	}
	res := make([]int, 0, len(raw))
	for _, v := range raw {
		switch n := v.(type) {
		case float64:
			res = append(res, int(n))
		case int:
			res = append(res, n)
		default:
			res = append(res, 0)
		}
	}
	return res
}

func cellAlign(cell *tiptap.Node) string {
	align := cell.AttrString("align")
	if align == "" {
		align = cell.AttrString("textAlign")
	}
	switch align {
	case "center":
		return "C"
	case "right":
		return "R"
	case "justify":
		return "J"
	}
	return "L"
}

func cellText(cell *tiptap.Node) string {
	parts := make([]string, 0, len(cell.Content))
	for _, c := range cell.Content {
		parts = append(parts, strings.TrimSpace(c.TextContent()))
	}
	return strings.Join(parts, "\n")
}
