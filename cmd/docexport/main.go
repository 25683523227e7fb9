// Утилита экспорта документов редактора АИПлан. Конвертирует JSON снимки, HTML и Markdown
// в Markdown, HTML и PDF, а с флагом -serve запускает HTTP сервис экспорта.
//
// Пример запуска: docexport -format pdf -title "Отчет" -out report.pdf doc.json
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aisa-it/docexport/internal/docexport"
	"github.com/aisa-it/docexport/internal/docexport/config"
)

var version string = "DEV"

func main() {
	opts := cliOptions{Frontmatter: frontmatterFlag{}}
	flag.StringVar(&opts.Format, "format", "md", "Output format: md, html, pdf, print")
	flag.StringVar(&opts.Input, "in", "auto", "Input type: auto, json, html, md")
	flag.StringVar(&opts.Output, "out", "-", "Output file, directory for several inputs or - for stdout")
	flag.Var(opts.Frontmatter, "frontmatter", "Frontmatter entry key=value, repeatable")
	flag.StringVar(&opts.Title, "title", "", "Document title")
	flag.StringVar(&opts.Theme, "theme", "light", "Color theme: light, dark")
	flag.StringVar(&opts.ClassPrefix, "prefix", "", "CSS class prefix")
	flag.StringVar(&opts.Mode, "mode", "regex", "Markdown input mode: regex, commonmark")
	flag.StringVar(&opts.PageSize, "page", "A4", "PDF page size")
	flag.BoolVar(&opts.Landscape, "landscape", false, "PDF landscape orientation")
	flag.BoolVar(&opts.Fragment, "fragment", false, "HTML fragment without document wrapper")
	flag.BoolVar(&opts.EmbedImages, "embed-images", false, "Embed images as data URIs")
	flag.BoolVar(&opts.Highlight, "highlight", false, "Highlight code blocks")
	flag.BoolVar(&opts.Sanitize, "sanitize", false, "Sanitize HTML output")
	flag.BoolVar(&opts.Minify, "minify", false, "Minify HTML output")
	flag.BoolVar(&opts.ReferenceLinks, "reference-links", false, "Markdown reference style links")
	flag.IntVar(&opts.Jobs, "jobs", 4, "Parallel conversions for several inputs")
	serve := flag.Bool("serve", false, "Start HTTP export service")
	trace := flag.Bool("trace", false, "Verbose logs")
	flag.Parse()

	if *trace {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	// Set prod log format
	if version != "DEV" {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{})))
	}

	cfg := config.ReadConfig()

	if *serve {
		PrintBanner()
		docexport.Server(cfg, version)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts, flag.Args()); err != nil {
		slog.Error("Export fail", "err", err)
		os.Exit(1)
	}
}

func PrintBanner() {
	banner := `
     _            _____                       _
  __| | ___   ___| ____|_  ___ __   ___  _ __| |_
 / _  |/ _ \ / __|  _| \ \/ / '_ \ / _ \| '__| __|
| (_| | (_) | (__| |___ >  <| |_) | (_) | |  | |_
 \__,_|\___/ \___|_____/_/\_\ .__/ \___/|_|   \__| %s
                            |_|
Document export service for the AIPlan editor
%s
----------------------------------------------------
`
	colorReset := "\033[0m"

	colorYellow := "\033[33m"
	colorBlue := "\033[34m"

	formattedVersion := version
	if version == "DEV" {
		formattedVersion = colorYellow + version + colorReset
	}

	fmt.Fprintf(os.Stderr, banner, formattedVersion, colorBlue+"https://aisa.ru"+colorReset)
}
