// Пакет для экспорта документов редактора в PDF.
// Предоставляет два движка: прямую генерацию PDF через fpdf и HTML для диалога печати браузера.
//
// Основные возможности:
//   - Генерация PDF из дерева документа с закладками по заголовкам.
//   - Стилизация текста (жирный, курсив, подчеркнутый, зачеркнутый, цвет, ссылки).
//   - Списки, задачи, цитаты, callout, блоки кода и таблицы.
//   - Вставка изображений через загрузчик ассетов.
//   - Нумерация страниц в нижнем колонтитуле.
//   - Встроенные шрифты Helvetica или UTF-8 шрифты из каталога.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"codeberg.org/go-pdf/fpdf"
	"github.com/aisa-it/docexport/internal/docexport/assets"
	"github.com/aisa-it/docexport/internal/docexport/editor/tiptap"
	"github.com/aisa-it/docexport/internal/docexport/htmlexport"
)

// Engine способ получения PDF.
type Engine string

const (
	// EngineFPDF рисует PDF на сервере.
	EngineFPDF Engine = "fpdf"
	// EnginePrint отдает HTML для печати в PDF средствами браузера.
	EnginePrint Engine = "print"
)

var ErrUnknownEngine = errors.New("unknown pdf engine")

// AssetFetcher загружает изображения документа.
type AssetFetcher interface {
	Fetch(ctx context.Context, src string) (*assets.Asset, error)
}

// Options параметры PDF экспорта.
type Options struct {
	Engine      Engine           `json:"engine" validate:"omitempty,oneof=fpdf print"`
	Title       string           `json:"title" validate:"max=256"`
	PageSize    string           `json:"page_size" validate:"omitempty,oneof=A3 A4 A5 Letter Legal"`
	Landscape   bool             `json:"landscape"`
	MarginMM    float64          `json:"margin_mm" validate:"min=0,max=50"`
	Theme       htmlexport.Theme `json:"theme" validate:"omitempty,oneof=light dark"`
	ClassPrefix string           `json:"class_prefix" validate:"omitempty,max=32,classPrefix"`
	AutoPrint   bool             `json:"auto_print"`
}

func (o *Options) normalize() {
	if o.Engine == "" {
		o.Engine = EngineFPDF
	}
	if o.PageSize == "" {
		o.PageSize = "A4"
	}
	if o.MarginMM <= 0 {
		o.MarginMM = 15
	}
}

func (o Options) orientation() string {
	if o.Landscape {
		return "L"
	}
	return "P"
}

type Margins struct {
	Left   float64
	Top    float64
	Right  float64
	Bottom float64
}

func (m *Margins) GetMargins(pdf fpdf.Pdf) {
	m.Left, m.Top, m.Right, m.Bottom = pdf.GetMargins()
}

// Exporter экспортирует документы в PDF. Безопасен для одновременного использования.
type Exporter struct {
	html    *htmlexport.Exporter
	fetcher AssetFetcher
	fontDir string
}

// NewExporter создает экспортер. fetcher может быть nil, тогда изображения заменяются подписью.
// fontDir каталог с Regular.ttf, Bold.ttf, Italic.ttf, BoldItalic.ttf и Mono.ttf.
func NewExporter(html *htmlexport.Exporter, fetcher AssetFetcher, fontDir string) *Exporter {
	if html == nil {
		html = htmlexport.NewExporter(nil)
	}
	return &Exporter{html: html, fetcher: fetcher, fontDir: fontDir}
}

// ExportPDF пишет документ в w и сообщает об успехе. Ошибка логируется.
func (e *Exporter) ExportPDF(ctx context.Context, doc *tiptap.Node, w io.Writer, opts Options) bool {
	if err := e.WritePDF(ctx, doc, w, opts); err != nil {
		slog.Error("Export pdf", "engine", opts.Engine, "err", err)
		return false
	}
	return true
}

// WritePDF пишет документ в w выбранным движком. Для EnginePrint в w пишется HTML для печати.
func (e *Exporter) WritePDF(ctx context.Context, doc *tiptap.Node, w io.Writer, opts Options) error {
	opts.normalize()
	switch opts.Engine {
	case EngineFPDF:
		return e.writeFPDF(ctx, doc, w, opts)
	case EnginePrint:
		page, err := e.PrintHTML(ctx, doc, opts)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, page)
		return err
	}
	return fmt.Errorf("%w: %q", ErrUnknownEngine, opts.Engine)
}

type pdfWriter struct {
	ctx     context.Context
	pdf     *fpdf.Fpdf
	root    *tiptap.Node
	fetcher AssetFetcher
	fonts   fontSet

	defaultMargins Margins
	headings       []pdfHeading
	headingIndex   map[*tiptap.Node]int
	bookmarkLevel  int
}

type pdfHeading struct {
	text  string
	level int
	link  int
}

func (e *Exporter) writeFPDF(ctx context.Context, doc *tiptap.Node, out io.Writer, opts Options) error {
	doc = doc.Compact()
	pdf := fpdf.New(opts.orientation(), "mm", opts.PageSize, e.fontDir)
	pdf.SetMargins(opts.MarginMM, opts.MarginMM, opts.MarginMM)
	pdf.SetAutoPageBreak(true, opts.MarginMM)

	w := &pdfWriter{
		ctx:           ctx,
		pdf:           pdf,
		root:          doc,
		fetcher:       e.fetcher,
		fonts:         loadFonts(pdf, e.fontDir),
		bookmarkLevel: -1,
	}
	w.defaultMargins.GetMargins(pdf)

	w.collectHeadings(doc)

	if opts.Title != "" {
		pdf.SetTitle(opts.Title, true)
	}
	pdf.SetCreator("docexport", true)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-opts.MarginMM + 3)
		pdf.SetFont(w.fonts.family, "", 9)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 6, fmt.Sprintf("%d / {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	if opts.Title != "" {
		pdf.SetFont(w.fonts.family, "B", 24)
		pdf.SetTextColor(0, 0, 0)
		pdf.MultiCell(0, 11, w.tr(opts.Title), "", "L", false)
		pdf.Ln(4)
	}

	if err := w.writeDocument(doc); err != nil {
		return err
	}
	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(out)
}

// collectHeadings запоминает заголовки, которые будут выведены блоками. Ячейки таблиц
// выводятся простым текстом, поэтому заголовки внутри таблиц в оглавление и закладки не попадают.
func (w *pdfWriter) collectHeadings(doc *tiptap.Node) {
	w.headingIndex = make(map[*tiptap.Node]int)
	doc.Walk(func(n *tiptap.Node, _ int) bool {
		switch n.Type {
		case tiptap.NodeTable:
			return false
		case tiptap.NodeHeading:
			w.headingIndex[n] = len(w.headings)
			w.headings = append(w.headings, pdfHeading{
				text:  strings.TrimSpace(n.TextContent()),
				level: tiptap.HeadingLevel(n),
				link:  w.pdf.AddLink(),
			})
			return false
		}
		return true
	})
}

type fontSet struct {
	family string
	mono   string
	utf8   bool
	tr     func(string) string
}

// loadFonts подключает UTF-8 шрифты из dir. Без Regular.ttf используются встроенные шрифты
// с переводом текста в cp1252.
func loadFonts(pdf *fpdf.Fpdf, dir string) fontSet {
	if dir != "" {
		if _, err := os.Stat(filepath.Join(dir, "Regular.ttf")); err == nil {
			styles := map[string]string{"": "Regular.ttf", "B": "Bold.ttf", "I": "Italic.ttf", "BI": "BoldItalic.ttf"}
			for style, file := range styles {
				if _, err := os.Stat(filepath.Join(dir, file)); err != nil {
					file = "Regular.ttf"
				}
				pdf.AddUTF8Font("Doc", style, file)
			}
			fs := fontSet{family: "Doc", mono: "Doc", utf8: true, tr: cleanUnsupportedSymbols}
			if _, err := os.Stat(filepath.Join(dir, "Mono.ttf")); err == nil {
				for _, style := range []string{"", "B", "I", "BI"} {
					pdf.AddUTF8Font("DocMono", style, "Mono.ttf")
				}
				fs.mono = "DocMono"
			}
			return fs
		}
		slog.Warn("PDF font dir without Regular.ttf, using core fonts", "dir", dir)
	}
	return fontSet{family: "Helvetica", mono: "Courier", tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

// cleanUnsupportedSymbols убирает символы вне базовой плоскости, их нет в TTF шрифтах.
func cleanUnsupportedSymbols(text string) string {
	result := make([]rune, 0, len(text))
	for _, s := range text {
		if s < 65536 {
			result = append(result, s)
		}
	}
	return string(result)
}

func (w *pdfWriter) tr(s string) string {
	return w.fonts.tr(s)
}

func (w *pdfWriter) resetMargins() {
	w.pdf.SetMargins(w.defaultMargins.Left, w.defaultMargins.Top, w.defaultMargins.Right)
}
