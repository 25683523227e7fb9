// Пакет htmlexport собирает HTML экспорт документа редактора: рендерит дерево с фиксированным
// префиксом классов, переименовывает префикс, подключает таблицу стилей и оборачивает результат
// в полноценный HTML документ.
//
// Основные возможности:
//   - Рендер всех типов нод и marks редактора в семантический HTML.
//   - Замена префикса классов только внутри атрибутов class.
//   - Встроенная или подключаемая по ссылке таблица стилей со светлой и темной темой.
//   - Встраивание изображений как data: URI через загрузчик ассетов.
//   - Подсветка блоков кода, очистка политикой bluemonday и минификация.
package htmlexport

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"text/template"

	"github.com/aisa-it/docexport/internal/docexport/editor/tiptap"
	"github.com/aisa-it/docexport/internal/docexport/policy"
	"github.com/microcosm-cc/bluemonday"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"golang.org/x/sync/errgroup"
)

var (
	//go:embed templates/*
	templatesFS embed.FS

	stylesheetTemplate = template.Must(template.ParseFS(templatesFS, "templates/styles.css.tmpl"))
	documentTemplate   = htmltemplate.Must(htmltemplate.ParseFS(templatesFS, "templates/document.html"))

	prefixReg = regexp.MustCompile(`^[A-Za-z_][\w-]*$`)
	classReg  = regexp.MustCompile(`class="([^"]*)"`)

	ErrNoFetcher      = errors.New("image embedding requires an asset fetcher")
	ErrInvalidOptions = errors.New("invalid html options")
)

// Максимум одновременных загрузок изображений одного документа
const embedConcurrency = 4

// Theme цветовая тема таблицы стилей.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func (t Theme) codeStyle() string {
	if t == ThemeDark {
		return "monokai"
	}
	return "github"
}

// ImageFetcher загружает изображение и возвращает его как data: URI.
type ImageFetcher interface {
	DataURI(ctx context.Context, src string) (string, error)
}

// Options параметры HTML экспорта.
type Options struct {
	IncludeStyles  bool   `json:"include_styles"`
	InlineStyles   bool   `json:"inline_styles"`
	ClassPrefix    string `json:"class_prefix" validate:"omitempty,max=32,classPrefix"`
	EmbedImages    bool   `json:"embed_images"`
	IncludeWrapper bool   `json:"include_wrapper"`
	Title          string `json:"title" validate:"max=256"`
	Theme          Theme  `json:"theme" validate:"omitempty,oneof=light dark"`
	StylesheetHref string `json:"stylesheet_href" validate:"omitempty,url"`
	IndentSize     int    `json:"indent_size" validate:"min=0,max=200"`
	HighlightCode  bool   `json:"highlight_code"`
	Sanitize       bool   `json:"sanitize"`
	Minify         bool   `json:"minify"`
}

// DefaultOptions соответствуют полному автономному документу.
func DefaultOptions() Options {
	return Options{
		IncludeStyles:  true,
		InlineStyles:   true,
		ClassPrefix:    DefaultClassPrefix,
		IncludeWrapper: true,
		Theme:          ThemeLight,
		IndentSize:     24,
	}
}

func (o *Options) normalize() error {
	if o.ClassPrefix == "" {
		o.ClassPrefix = DefaultClassPrefix
	}
	if !prefixReg.MatchString(o.ClassPrefix) {
		return fmt.Errorf("%w: class prefix %q", ErrInvalidOptions, o.ClassPrefix)
	}
	switch o.Theme {
	case "":
		o.Theme = ThemeLight
	case ThemeLight, ThemeDark:
	default:
		return fmt.Errorf("%w: unknown theme %q", ErrInvalidOptions, o.Theme)
	}
	if o.IndentSize <= 0 {
		o.IndentSize = 24
	}
	if o.Title == "" {
		o.Title = "Document"
	}
	return nil
}

// Exporter превращает документы в HTML. Безопасен для одновременного использования.
type Exporter struct {
	fetcher  ImageFetcher
	policy   *bluemonday.Policy
	minifier *minify.M
}

// NewExporter создает экспортер. fetcher может быть nil, тогда встраивание изображений недоступно.
func NewExporter(fetcher ImageFetcher) *Exporter {
	minifier := minify.New()
	minifier.AddFunc("text/html", html.Minify)
	minifier.AddFunc("text/css", css.Minify)

	return &Exporter{
		fetcher:  fetcher,
		policy:   policy.NewExportPolicy(DefaultClassPrefix),
		minifier: minifier,
	}
}

// ExportHTML рендерит документ и применяет параметры экспорта.
func (e *Exporter) ExportHTML(ctx context.Context, doc *tiptap.Node, opts Options) (string, error) {
	if err := opts.normalize(); err != nil {
		return "", err
	}

	ro := renderOptions{highlight: opts.HighlightCode, theme: opts.Theme}
	if opts.EmbedImages {
		images, err := e.embedImages(ctx, doc)
		if err != nil {
			return "", err
		}
		ro.images = images
	}

	content := render(doc, ro)
	if opts.Sanitize {
		content = e.policy.Sanitize(content)
	}
	content = RewriteClassPrefix(content, opts.ClassPrefix)

	var out string
	if opts.IncludeWrapper {
		var err error
		out, err = wrapDocument(content, opts)
		if err != nil {
			return "", err
		}
	} else {
		out = content
		if opts.IncludeStyles {
			css, err := Stylesheet(opts.ClassPrefix, opts.IndentSize, opts.Theme)
			if err != nil {
				return "", err
			}
			out = "<style>\n" + css + "</style>\n" + content
		}
	}

	if opts.Minify {
		b, err := e.minifier.Bytes("text/html", []byte(out))
		if err != nil {
			return "", err
		}
		out = string(b)
	}
	return out, nil
}

// embedImages загружает все изображения документа. Ошибка одного изображения не прерывает
// экспорт, такое изображение сохраняет исходный src.
func (e *Exporter) embedImages(ctx context.Context, doc *tiptap.Node) (map[string]string, error) {
	if e.fetcher == nil {
		return nil, ErrNoFetcher
	}

	var sources []string
	seen := make(map[string]struct{})
	doc.Walk(func(n *tiptap.Node, _ int) bool {
		if n.Type != tiptap.NodeImage {
			return true
		}
		src := n.AttrString("src")
		if _, ok := seen[src]; src != "" && !ok {
			seen[src] = struct{}{}
			sources = append(sources, src)
		}
		return true
	})

	var mu sync.Mutex
	res := make(map[string]string, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(embedConcurrency)
	for _, src := range sources {
		g.Go(func() error {
			uri, err := e.fetcher.DataURI(gctx, src)
			if err != nil {
				slog.Warn("Embed image", "src", src, "err", err)
				return nil
			}
			mu.Lock()
			res[src] = uri
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, ctx.Err()
}

// RewriteClassPrefix заменяет DefaultClassPrefix на prefix в значениях атрибутов class.
// Текст документа не затрагивается.
func RewriteClassPrefix(content, prefix string) string {
	if prefix == DefaultClassPrefix {
		return content
	}
	return classReg.ReplaceAllStringFunc(content, func(attr string) string {
		classes := strings.Fields(classReg.FindStringSubmatch(attr)[1])
		for i, c := range classes {
			if rest, ok := strings.CutPrefix(c, DefaultClassPrefix); ok {
				classes[i] = prefix + rest
			}
		}
		return `class="` + strings.Join(classes, " ") + `"`
	})
}

type themeColors struct {
	Text, Background, Muted, Border, Accent, CodeBackground, QuoteBorder, HeaderBackground string
	Info, Success, Warning, Error                                                        string
}

var palettes = map[Theme]themeColors{
	ThemeLight: {
		Text: "#1f2328", Background: "#ffffff", Muted: "#656d76", Border: "#d0d7de", Accent: "#0969da",
		CodeBackground: "#f6f8fa", QuoteBorder: "#d0d7de", HeaderBackground: "#e5edfa",
		Info: "#ddf4ff", Success: "#dafbe1", Warning: "#fff8c5", Error: "#ffebe9",
	},
	ThemeDark: {
		Text: "#e6edf3", Background: "#0d1117", Muted: "#8d96a0", Border: "#30363d", Accent: "#4493f8",
		CodeBackground: "#161b22", QuoteBorder: "#3d444d", HeaderBackground: "#1c2a3f",
		Info: "#0c2d4a", Success: "#0f3320", Warning: "#3b2e07", Error: "#42171a",
	},
}

// Stylesheet возвращает таблицу стилей экспорта для префикса, отступа списков и темы.
func Stylesheet(prefix string, indent int, theme Theme) (string, error) {
	colors, ok := palettes[theme]
	if !ok {
		colors = palettes[ThemeLight]
	}
	type tocLevel struct{ Level, Padding int }
	levels := make([]tocLevel, 6)
	for i := range levels {
		levels[i] = tocLevel{Level: i + 1, Padding: i * indent}
	}

	var buf bytes.Buffer
	err := stylesheetTemplate.Execute(&buf, struct {
		Prefix    string
		Indent    int
		Colors    themeColors
		TocLevels []tocLevel
	}{prefix, indent, colors, levels})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

func wrapDocument(content string, opts Options) (string, error) {
	data := struct {
		Title      string
		Prefix     string
		Theme      Theme
		Style      htmltemplate.CSS
		Stylesheet string
		Content    htmltemplate.HTML
	}{
		Title:   opts.Title,
		Prefix:  opts.ClassPrefix,
		Theme:   opts.Theme,
		Content: htmltemplate.HTML(content),
	}

	if opts.IncludeStyles {
		if !opts.InlineStyles && opts.StylesheetHref != "" {
			data.Stylesheet = opts.StylesheetHref
		} else {
			css, err := Stylesheet(opts.ClassPrefix, opts.IndentSize, opts.Theme)
			if err != nil {
				return "", err
			}
			data.Style = htmltemplate.CSS(css)
		}
	}

	var buf bytes.Buffer
	if err := documentTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
