package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aisa-it/docexport/internal/docexport/business"
	"github.com/aisa-it/docexport/internal/docexport/config"
	"github.com/aisa-it/docexport/internal/docexport/editor/htmlparse"
	"github.com/aisa-it/docexport/internal/docexport/editor/tiptap"
	"github.com/aisa-it/docexport/internal/docexport/export"
	"github.com/aisa-it/docexport/internal/docexport/htmlexport"
	"github.com/aisa-it/docexport/internal/docexport/markdown"
	"golang.org/x/sync/errgroup"
)

var errNoInput = errors.New("no input files")

type cliOptions struct {
	Format         string
	Input          string
	Output         string
	Frontmatter    frontmatterFlag
	Title          string
	Theme          string
	ClassPrefix    string
	Mode           string
	PageSize       string
	Landscape      bool
	Fragment       bool
	EmbedImages    bool
	Highlight      bool
	Sanitize       bool
	Minify         bool
	ReferenceLinks bool
	Jobs           int
}

// frontmatterFlag собирает повторяющиеся флаги key=value.
type frontmatterFlag map[string]any

func (f frontmatterFlag) String() string {
	return fmt.Sprint(map[string]any(f))
}

func (f frontmatterFlag) Set(s string) error {
	key, value, ok := strings.Cut(s, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return fmt.Errorf("frontmatter entry %q must be key=value", s)
	}
	f[key] = value
	return nil
}

func (o cliOptions) exportOptions() business.ExportOptions {
	opts := business.DefaultExportOptions()

	if len(o.Frontmatter) > 0 || o.Title != "" {
		opts.Markdown.IncludeFrontmatter = true
		opts.Markdown.Frontmatter = map[string]any(o.Frontmatter)
		if o.Title != "" {
			if opts.Markdown.Frontmatter == nil {
				opts.Markdown.Frontmatter = map[string]any{}
			}
			if _, ok := opts.Markdown.Frontmatter["title"]; !ok {
				opts.Markdown.Frontmatter["title"] = o.Title
			}
		}
	}
	if o.ReferenceLinks {
		opts.Markdown.LinkStyle = markdown.LinkReference
	}

	opts.HTML.Title = o.Title
	opts.HTML.Theme = htmlexport.Theme(o.Theme)
	opts.HTML.ClassPrefix = o.ClassPrefix
	opts.HTML.IncludeWrapper = !o.Fragment
	opts.HTML.IncludeStyles = !o.Fragment
	opts.HTML.EmbedImages = o.EmbedImages
	opts.HTML.HighlightCode = o.Highlight
	opts.HTML.Sanitize = o.Sanitize
	opts.HTML.Minify = o.Minify

	opts.PDF.Title = o.Title
	opts.PDF.Theme = htmlexport.Theme(o.Theme)
	opts.PDF.ClassPrefix = o.ClassPrefix
	opts.PDF.PageSize = o.PageSize
	opts.PDF.Landscape = o.Landscape
	if o.Format == string(business.FormatPrint) {
		opts.PDF.Engine = export.EnginePrint
	}
	return opts
}

// run конвертирует входные файлы. Без аргументов читает stdin.
func run(ctx context.Context, cfg *config.Config, o cliOptions, inputs []string) error {
	format, err := business.ParseFormat(o.Format)
	if err != nil {
		return fmt.Errorf("format %q: %w", o.Format, err)
	}
	bl := business.NewBL(cfg, nil)
	opts := o.exportOptions()

	if len(inputs) == 0 {
		if o.Output != "-" && isDir(o.Output) {
			return errNoInput
		}
		return convertOne(ctx, bl, format, opts, o, "-", o.Output)
	}

	if len(inputs) == 1 && !isDir(o.Output) {
		return convertOne(ctx, bl, format, opts, o, inputs[0], o.Output)
	}

	outDir := o.Output
	if outDir == "-" {
		outDir = "."
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(o.Jobs, 1))
	for _, in := range inputs {
		out := filepath.Join(outDir, strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))+format.Ext())
		g.Go(func() error {
			if err := convertOne(gctx, bl, format, opts, o, in, out); err != nil {
				return fmt.Errorf("%s: %w", in, err)
			}
			slog.Info("Exported", "in", in, "out", out)
			return nil
		})
	}
	return g.Wait()
}

func convertOne(ctx context.Context, bl *business.Business, format business.Format, opts business.ExportOptions, o cliOptions, in, out string) error {
	data, err := readInput(in)
	if err != nil {
		return err
	}

	doc, err := decodeInput(data, inputType(o.Input, in, data), markdown.Mode(o.Mode))
	if err != nil {
		return err
	}

	art, err := bl.Export(ctx, doc, format, opts)
	if err != nil {
		return err
	}

	if out == "-" {
		_, err = os.Stdout.Write(art.Data)
		return err
	}
	return os.WriteFile(out, art.Data, 0o644)
}

func readInput(in string) ([]byte, error) {
	if in == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(in)
}

// inputType определяет тип входа по флагу, расширению файла и содержимому.
func inputType(flagValue, name string, data []byte) string {
	if flagValue != "" && flagValue != "auto" {
		return flagValue
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return "json"
	case ".html", ".htm":
		return "html"
	case ".md", ".markdown":
		return "md"
	}
	s := strings.TrimSpace(string(data))
	switch {
	case strings.HasPrefix(s, "{"):
		return "json"
	case strings.HasPrefix(s, "<"):
		return "html"
	}
	return "md"
}

func decodeInput(data []byte, kind string, mode markdown.Mode) (*tiptap.Node, error) {
	switch kind {
	case "json":
		return business.DecodeDocument(data)
	case "html":
		return htmlparse.Parse(strings.NewReader(string(data)))
	case "md":
		return markdown.ImportMarkdown(string(data), mode)
	}
	return nil, fmt.Errorf("unknown input type %q", kind)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
