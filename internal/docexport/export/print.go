package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/aisa-it/docexport/internal/docexport/editor/tiptap"
	"github.com/aisa-it/docexport/internal/docexport/htmlexport"
)

const autoPrintScript = `<script>window.addEventListener("load", function () { window.print(); });</script>`

// PrintCSS правила печати: размер страницы, поля и номер страницы в нижнем колонтитуле.
func PrintCSS(opts Options) string {
	opts.normalize()
	orientation := "portrait"
	if opts.Landscape {
		orientation = "landscape"
	}
	return fmt.Sprintf(`@page {
  size: %s %s;
  margin: %gmm;
  @bottom-center { content: counter(page) " / " counter(pages); font-size: 9pt; color: #787878; }
}
@media print {
  body { -webkit-print-color-adjust: exact; print-color-adjust: exact; }
  a { color: inherit; text-decoration: none; }
  h1, h2, h3, h4, h5, h6 { break-after: avoid; }
}
`, opts.PageSize, orientation, opts.MarginMM)
}

// PrintHTML собирает HTML документ для печати в PDF средствами браузера.
func (e *Exporter) PrintHTML(ctx context.Context, doc *tiptap.Node, opts Options) (string, error) {
	opts.normalize()

	htmlOpts := htmlexport.DefaultOptions()
	htmlOpts.Title = opts.Title
	htmlOpts.Theme = opts.Theme
	htmlOpts.ClassPrefix = opts.ClassPrefix

	page, err := e.html.ExportHTML(ctx, doc, htmlOpts)
	if err != nil {
		return "", err
	}

	head := "<style>\n" + PrintCSS(opts) + "</style>\n"
	if opts.AutoPrint {
		head += autoPrintScript + "\n"
	}
	return strings.Replace(page, "</head>", head+"</head>", 1), nil
}
