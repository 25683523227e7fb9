package markdown

import (
	"bytes"
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/aisa-it/docexport/internal/docexport/editor/htmlparse"
	"github.com/aisa-it/docexport/internal/docexport/editor/tiptap"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Mode режим преобразования Markdown в HTML.
type Mode string

const (
	// ModeRegex совместимый каскад регулярных выражений.
	ModeRegex Mode = "regex"
	// ModeCommonMark полноценный парсер CommonMark + GFM. Результат отличается от ModeRegex
	// для вложенных и смешанных списков.
	ModeCommonMark Mode = "commonmark"
)

// Сырой HTML нужен: сериализатор выводит <u>, <mark>, <details>.
var commonMark = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// RenderCommonMark переводит Markdown в HTML парсером goldmark.
func RenderCommonMark(src string) (string, error) {
	var buf bytes.Buffer
	if err := commonMark.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

// Upgrade переводит Markdown в HTML выбранным способом. Пустой режим означает ModeRegex.
func Upgrade(src string, mode Mode) (string, error) {
	switch mode {
	case "", ModeRegex:
		return ParseMarkdownToHTML(src), nil
	case ModeCommonMark:
		return RenderCommonMark(src)
	}
	return "", fmt.Errorf("unknown markdown mode %q", mode)
}

// ImportMarkdown строит дерево документа из Markdown через промежуточный HTML.
func ImportMarkdown(src string, mode Mode) (*tiptap.Node, error) {
	htmlText, err := Upgrade(src, mode)
	if err != nil {
		return nil, err
	}
	return htmlparse.Parse(strings.NewReader(htmlText))
}

// FromHTML конвертирует сохраненный HTML (например, старые описания) в Markdown.
func FromHTML(htmlText string) (string, error) {
	res, err := htmltomarkdown.ConvertString(htmlText)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res) + "\n", nil
}
