package markdown

import (
	"strings"

	"github.com/aisa-it/docexport/internal/docexport/editor/tiptap"
)

var cellReplacer = strings.NewReplacer("|", `\|`, "\n", "<br>")

// table выводит GFM таблицу. Первая строка всегда заголовок, строка выравнивания
// строится по атрибуту align ячеек заголовка.
func (s *serializer) table(n *tiptap.Node) string {
	var rows []*tiptap.Node
	for _, row := range n.Content {
		if row.Type == tiptap.NodeTableRow {
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		return ""
	}

	header := s.rowCells(rows[0])
	if len(header) == 0 {
		return ""
	}

	lines := []string{pipeRow(header)}

	aligns := make([]string, len(header))
	for i, cell := range rows[0].Content {
		aligns[i] = alignMarker(cell.AttrString("align"))
	}
	lines = append(lines, pipeRow(aligns))

	for _, row := range rows[1:] {
		cells := s.rowCells(row)
		for len(cells) < len(header) {
			cells = append(cells, " ")
		}
		lines = append(lines, pipeRow(cells[:len(header)]))
	}

	return strings.Join(lines, "\n")
}

func alignMarker(align string) string {
	switch align {
	case "center":
		return ":---:"
	case "right":
		return "---:"
	}
	return "---"
}

func pipeRow(cells []string) string {
	return "| " + strings.Join(cells, " | ") + " |"
}

func (s *serializer) rowCells(row *tiptap.Node) []string {
	cells := make([]string, 0, len(row.Content))
	for _, cell := range row.Content {
		cells = append(cells, s.cellText(cell))
	}
	return cells
}

// cellText возвращает содержимое ячейки в одну строку. Пустая ячейка дает один пробел.
func (s *serializer) cellText(cell *tiptap.Node) string {
	prev := s.inCell
	s.inCell = true
	defer func() { s.inCell = prev }()

	var text string
	if cell.HasInlineContent() {
		text = s.inline(cell.Content)
	} else {
		text = s.join(cell.Content, "<br>")
	}
	text = strings.TrimSpace(cellReplacer.Replace(strings.TrimSpace(text)))
	if text == "" {
		return " "
	}
	return text
}

func (s *serializer) tableRow(n *tiptap.Node) string {
	return pipeRow(s.rowCells(n))
}

func (s *serializer) cellBlock(n *tiptap.Node) string {
	return strings.TrimSpace(s.cellText(n))
}
