// Пакет business связывает сериализаторы документа в единый слой экспорта, которым пользуются
// HTTP API, MCP инструменты и утилита командной строки.
//
// Основные возможности:
//   - Разбор документа из JSON снимка редактора или HTML.
//   - Экспорт в Markdown, HTML, PDF и HTML для печати.
//   - Импорт Markdown в HTML и дерево документа.
//   - Сохранение артефактов в хранилище и выдача по имени.
//   - Метрики количества и длительности экспорта.
package business

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aisa-it/docexport/internal/docexport/apierrors"
	"github.com/aisa-it/docexport/internal/docexport/assets"
	"github.com/aisa-it/docexport/internal/docexport/config"
	"github.com/aisa-it/docexport/internal/docexport/editor/htmlparse"
	"github.com/aisa-it/docexport/internal/docexport/editor/tiptap"
	"github.com/aisa-it/docexport/internal/docexport/export"
	filestorage "github.com/aisa-it/docexport/internal/docexport/file-storage"
	"github.com/aisa-it/docexport/internal/docexport/htmlexport"
	"github.com/aisa-it/docexport/internal/docexport/markdown"
)

// Format формат экспорта.
type Format string

const (
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
	FormatPDF      Format = "pdf"
	FormatPrint    Format = "print"
)

// ParseFormat принимает имя формата в любом регистре, markdown считается синонимом md.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatMarkdown, FormatHTML, FormatPDF, FormatPrint:
		return f, nil
	case "markdown":
		return FormatMarkdown, nil
	}
	return "", apierrors.ErrUnsupportedFormat
}

func (f Format) Ext() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatPDF:
		return ".pdf"
	}
	return ".html"
}

func (f Format) ContentType() string {
	switch f {
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatPDF:
		return "application/pdf"
	}
	return "text/html; charset=utf-8"
}

// ExportOptions параметры экспорта для каждого формата.
type ExportOptions struct {
	Markdown markdown.Options   `json:"markdown"`
	HTML     htmlexport.Options `json:"html"`
	PDF      export.Options     `json:"pdf"`
}

// DefaultExportOptions значения по умолчанию: автономный HTML документ и PDF через fpdf.
func DefaultExportOptions() ExportOptions {
	return ExportOptions{
		HTML: htmlexport.DefaultOptions(),
		PDF:  export.Options{Engine: export.EngineFPDF},
	}
}

// Artifact результат экспорта.
type Artifact struct {
	Format Format
	Data   []byte
}

func (a *Artifact) ContentType() string {
	return a.Format.ContentType()
}

// ImportResult результат импорта Markdown.
type ImportResult struct {
	HTML     string       `json:"html"`
	Document *tiptap.Node `json:"document"`
}

// HTMLImportResult результат импорта HTML.
type HTMLImportResult struct {
	Markdown string       `json:"markdown"`
	Document *tiptap.Node `json:"document"`
}

// StoredFile сохраненный артефакт.
type StoredFile struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type Business struct {
	cfg     *config.Config
	html    *htmlexport.Exporter
	pdf     *export.Exporter
	storage filestorage.FileStorage
}

// NewBL создает слой экспорта. storage может быть nil, тогда сохранение артефактов недоступно.
func NewBL(cfg *config.Config, storage filestorage.FileStorage) *Business {
	fetcher := assets.NewFetcher(cfg)
	html := htmlexport.NewExporter(fetcher)
	return &Business{
		cfg:     cfg,
		html:    html,
		pdf:     export.NewExporter(html, fetcher, cfg.PDFFontDir),
		storage: storage,
	}
}

// DecodeDocument разбирает документ: JSON объект снимка редактора или JSON строку с HTML.
func DecodeDocument(raw []byte) (*tiptap.Node, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, apierrors.ErrDocumentRequired
	}

	var doc *tiptap.Node
	var err error
	switch raw[0] {
	case '{':
		doc, err = tiptap.ParseJSONBytes(raw)
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, apierrors.ErrDocumentInvalid.WithFormattedMessage(err.Error())
		}
		if strings.TrimSpace(s) == "" {
			return nil, apierrors.ErrDocumentRequired
		}
		doc, err = htmlparse.Parse(strings.NewReader(s))
	default:
		return nil, apierrors.ErrDocumentInvalid.WithFormattedMessage("expected object or html string")
	}
	if errors.Is(err, tiptap.ErrEmptyDocument) {
		return nil, apierrors.ErrDocumentRequired
	}
	if err != nil {
		return nil, apierrors.ErrDocumentInvalid.WithFormattedMessage(err.Error())
	}
	if err := doc.Validate(); err != nil {
		return nil, apierrors.ErrDocumentInvalid.WithFormattedMessage(err.Error())
	}
	return doc, nil
}

// Export сериализует документ в заданный формат.
func (b *Business) Export(ctx context.Context, doc *tiptap.Node, format Format, opts ExportOptions) (art *Artifact, err error) {
	start := time.Now()
	defer func() {
		observeExport(format, err, time.Since(start))
	}()

	if doc == nil {
		return nil, apierrors.ErrDocumentRequired
	}

	switch format {
	case FormatMarkdown:
		return &Artifact{Format: format, Data: []byte(markdown.Serialize(doc, opts.Markdown))}, nil
	case FormatHTML:
		if opts.HTML.ClassPrefix == "" {
			opts.HTML.ClassPrefix = b.cfg.ClassPrefix
		}
		out, err := b.html.ExportHTML(ctx, doc, opts.HTML)
		if err != nil {
			return nil, exportError(err)
		}
		return &Artifact{Format: format, Data: []byte(out)}, nil
	case FormatPDF, FormatPrint:
		if format == FormatPrint {
			opts.PDF.Engine = export.EnginePrint
		}
		if opts.PDF.ClassPrefix == "" {
			opts.PDF.ClassPrefix = b.cfg.ClassPrefix
		}
		var buf bytes.Buffer
		if err := b.pdf.WritePDF(ctx, doc, &buf, opts.PDF); err != nil {
			if errors.Is(err, export.ErrUnknownEngine) || errors.Is(err, htmlexport.ErrInvalidOptions) {
				return nil, apierrors.ErrInvalidOptions.WithFormattedMessage(err.Error())
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, apierrors.ErrPDFFailed
		}
		if opts.PDF.Engine == export.EnginePrint {
			format = FormatPrint
		}
		return &Artifact{Format: format, Data: buf.Bytes()}, nil
	}
	return nil, apierrors.ErrUnsupportedFormat
}

func exportError(err error) error {
	var defined apierrors.DefinedError
	switch {
	case errors.As(err, &defined):
		return defined
	case errors.Is(err, htmlexport.ErrNoFetcher), errors.Is(err, htmlexport.ErrInvalidOptions):
		return apierrors.ErrInvalidOptions.WithFormattedMessage(err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	}
	return apierrors.ErrExportFailed
}

// Import разбирает Markdown в HTML и дерево документа.
func (b *Business) Import(src string, mode markdown.Mode) (*ImportResult, error) {
	if strings.TrimSpace(src) == "" {
		return nil, apierrors.ErrMarkdownRequired
	}
	html, err := markdown.Upgrade(src, mode)
	if err != nil {
		return nil, apierrors.ErrUnknownMode
	}
	doc, err := htmlparse.Parse(strings.NewReader(html))
	if err != nil {
		return nil, apierrors.ErrImportFailed
	}
	return &ImportResult{HTML: html, Document: doc}, nil
}

// ImportHTML переводит сохраненный HTML в Markdown и дерево документа.
func (b *Business) ImportHTML(src string) (*HTMLImportResult, error) {
	if strings.TrimSpace(src) == "" {
		return nil, apierrors.ErrDocumentRequired
	}
	md, err := markdown.FromHTML(src)
	if err != nil {
		return nil, apierrors.ErrImportFailed
	}
	doc, err := htmlparse.Parse(strings.NewReader(src))
	if err != nil {
		return nil, apierrors.ErrImportFailed
	}
	return &HTMLImportResult{Markdown: md, Document: doc}, nil
}

// StorageEnabled сообщает, что артефакты можно сохранять.
func (b *Business) StorageEnabled() bool {
	return b.storage != nil
}

// Store сохраняет артефакт и возвращает его имя и ссылку на скачивание.
func (b *Business) Store(ctx context.Context, art *Artifact, title string) (*StoredFile, error) {
	if b.storage == nil {
		return nil, apierrors.ErrStorageDisabled
	}
	name := filestorage.NewName(art.Format.Ext())
	if err := b.storage.Save(ctx, art.Data, name, art.ContentType(), &filestorage.Metadata{
		Format: string(art.Format),
		Title:  title,
	}); err != nil {
		return nil, fmt.Errorf("%w: %v", apierrors.ErrStoreFailed, err)
	}
	return &StoredFile{Name: name, URL: b.FileURL(name)}, nil
}

// FileURL ссылка на скачивание сохраненного артефакта.
func (b *Business) FileURL(name string) string {
	path := "/api/file/" + name + "/"
	if b.cfg.WebURL == nil {
		return path
	}
	return strings.TrimSuffix(b.cfg.WebURL.String(), "/") + path
}

// Open открывает сохраненный артефакт.
func (b *Business) Open(ctx context.Context, name string) (io.ReadCloser, *filestorage.FileInfo, error) {
	if b.storage == nil {
		return nil, nil, apierrors.ErrStorageDisabled
	}
	if err := filestorage.ValidateName(name); err != nil {
		return nil, nil, apierrors.ErrInvalidID
	}
	info, err := b.storage.GetFileInfo(ctx, name)
	if errors.Is(err, filestorage.ErrNotFound) {
		return nil, nil, apierrors.ErrFileNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	r, err := b.storage.LoadReader(ctx, name)
	if errors.Is(err, filestorage.ErrNotFound) {
		return nil, nil, apierrors.ErrFileNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	return r, info, nil
}
