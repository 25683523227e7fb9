package export

import (
	"bytes"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"codeberg.org/go-pdf/fpdf"
	"github.com/aisa-it/docexport/internal/docexport/editor/tiptap"
)

var rgbReg = regexp.MustCompile(`^rgba?\(\s*(\d+)\s*,\s*(\d+)\s*,\s*(\d+)`)

// textStyle параметры отрисовки фрагмента текста.
type textStyle struct {
	style   string
	mono    bool
	link    string
	color   string
	bgColor string
}

func styleFromMarks(base string, marks []tiptap.Mark) textStyle {
	ts := textStyle{style: base}
	add := func(s string) {
		if !strings.Contains(ts.style, s) {
			ts.style += s
		}
	}
	for _, m := range marks {
		switch m.Type {
		case tiptap.MarkBold:
			add("B")
		case tiptap.MarkItalic:
			add("I")
		case tiptap.MarkUnderline:
			add("U")
		case tiptap.MarkStrike:
			add("S")
		case tiptap.MarkCode:
			ts.mono = true
		case tiptap.MarkLink:
			ts.link = m.AttrString("href")
			add("U")
			if ts.color == "" {
				ts.color = "#0969da"
			}
		case tiptap.MarkTextStyle:
			if c := m.AttrString("color"); c != "" {
				ts.color = c
			}
		case tiptap.MarkHighlight:
			ts.bgColor = m.AttrString("color")
			if ts.bgColor == "" {
				ts.bgColor = "#fff8c5"
			}
		}
	}
	return ts
}

func (w *pdfWriter) writeInline(nodes []*tiptap.Node, baseStyle string, size float64) {
	for _, n := range nodes {
		switch n.Type {
		case tiptap.NodeText:
			w.writeText(n.Text, styleFromMarks(baseStyle, n.Marks), size)
		case tiptap.NodeHardBreak:
			w.pdf.Ln(w.lineHeight(size))
		case tiptap.NodeMention:
			label := n.AttrString("label")
			if label == "" {
				label = n.AttrString("id")
			}
			w.writeText("@"+label, textStyle{style: baseStyle + "B", color: "#0969da"}, size)
		case tiptap.NodeEmoji:
			if e := n.AttrString("emoji"); e != "" && w.fonts.utf8 {
				w.writeText(e, textStyle{style: baseStyle}, size)
			} else {
				w.writeText(":"+n.AttrString("name")+":", textStyle{style: baseStyle}, size)
			}
		case tiptap.NodeImage:
			w.writeImage(n)
		default:
			w.writeText(n.TextContent(), textStyle{style: baseStyle}, size)
		}
	}
}

func (w *pdfWriter) writeText(text string, ts textStyle, size float64) {
	if text == "" {
		return
	}
	family := w.fonts.family
	if ts.mono {
		family = w.fonts.mono
	}
	w.pdf.SetFont(family, ts.style, size)

	if ts.color != "" {
		w.SetHexTextColor(ts.color)
	} else {
		w.pdf.SetTextColor(0, 0, 0)
	}

	text = w.tr(text)
	if ts.bgColor != "" {
		w.SetHexFillColor(ts.bgColor)
		x := w.pdf.GetX()
		h := w.lineHeight(size)
		w.pdf.CellFormat(w.pdf.GetStringWidth(text), h, "", "", 0, "L", true, 0, "")
		w.pdf.SetX(x)
	}
	w.pdf.WriteLinkString(w.lineHeight(size), text, ts.link)
}

func (w *pdfWriter) setFont(style string, size float64) {
	w.pdf.SetFont(w.fonts.family, style, size)
	w.pdf.SetTextColor(0, 0, 0)
}

// write пишет текст текущим шрифтом, необязательный второй аргумент задает ссылку.
func (w *pdfWriter) write(text string, link ...string) float64 {
	_, s := w.pdf.GetFontSize()
	s += 0.1
	text = w.tr(text)
	if len(link) > 0 {
		w.pdf.WriteLinkString(s*1.4, text, link[0])
		return 0
	}
	w.pdf.WriteLinkString(s*1.4, text, "")
	return w.pdf.GetStringWidth(text)
}

func (w *pdfWriter) lineHeight(size float64) float64 {
	return w.pdf.PointConvert(size) * 1.4
}

// writeImage вставляет изображение в поток текста. Без загрузчика или при ошибке пишется подпись.
func (w *pdfWriter) writeImage(n *tiptap.Node) {
	src := n.AttrString("src")
	info := w.imageInfo(src)
	if info == nil {
		alt := n.AttrString("alt")
		if alt == "" {
			alt = src
		}
		w.writeText("["+alt+"]", textStyle{style: "I", color: "#656d76"}, baseFontSize)
		return
	}

	maxX, _ := w.pdf.GetPageSize()
	_, _, right, _ := w.pdf.GetMargins()
	maxWidth := maxX - right - w.pdf.GetX()

	widthPx := n.AttrInt("width")
	if widthPx <= 0 {
		widthPx = int(info.Width())
	}
	width := min(w.PxToUnit(widthPx), maxWidth)
	link := ""
	if !strings.HasPrefix(src, "data:") {
		link = src
	}
	w.pdf.ImageOptions(src, -1, -1, width, 0, true, fpdf.ImageOptions{ReadDpi: true}, 0, link)
}

func (w *pdfWriter) imageInfo(src string) *fpdf.ImageInfoType {
	if src == "" || w.fetcher == nil {
		return nil
	}
	if info := w.pdf.GetImageInfo(src); info != nil {
		return info
	}

	asset, err := w.fetcher.Fetch(w.ctx, src)
	if err != nil {
		slog.Warn("Fetch pdf image", "src", src, "err", err)
		return nil
	}

	options := fpdf.ImageOptions{ImageType: w.pdf.ImageTypeFromMime(asset.ContentType), ReadDpi: true}
	// unsupported image type
	if options.ImageType == "" {
		w.pdf.ClearError()
		return nil
	}

	info := w.pdf.RegisterImageOptionsReader(src, options, bytes.NewReader(asset.Data))
	if w.pdf.Err() {
		slog.Warn("Register pdf image", "src", src, "err", w.pdf.Error())
		w.pdf.ClearError()
		return nil
	}
	return info
}

func (w *pdfWriter) PxToUnit(px int) float64 {
	return w.pdf.PointConvert(float64(px) * 0.75)
}

// parseColor разбирает #rgb, #rrggbb и rgb(r, g, b). Неизвестный формат дает черный.
func parseColor(s string) (int, int, int) {
	s = strings.TrimSpace(strings.ToLower(s))
	if m := rgbReg.FindStringSubmatch(s); m != nil {
		r, _ := strconv.Atoi(m[1])
		g, _ := strconv.Atoi(m[2])
		b, _ := strconv.Atoi(m[3])
		return min(r, 255), min(g, 255), min(b, 255)
	}

	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return 0, 0, 0
	}
	values, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0
	}
	return int(uint8(values >> 16)), int(uint8((values >> 8) & 0xFF)), int(uint8(values & 0xFF))
}

func (w *pdfWriter) SetHexFillColor(hex string) {
	w.pdf.SetFillColor(parseColor(hex))
}

func (w *pdfWriter) SetHexTextColor(hex string) {
	w.pdf.SetTextColor(parseColor(hex))
}

func (w *pdfWriter) SetHexDrawColor(hex string) {
	w.pdf.SetDrawColor(parseColor(hex))
}
