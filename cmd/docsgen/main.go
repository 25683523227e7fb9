// Генерация документации об ошибках API в формате Markdown.
// Разбирает файл с определениями ошибок и строит документ с таблицами кодов по группам.
//
// Основные возможности:
//   - Чтение файла Go с определениями DefinedError.
//   - Группировка ошибок по комментариям над блоками определений.
//   - Генерация Markdown-таблиц с кодом, HTTP статусом и сообщениями на двух языках.
package main

import (
	"flag"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	md "github.com/nao1215/markdown"
)

// errorGroup группа ошибок с общим комментарием, например "1*** - document errors".
type errorGroup struct {
	Title string
	Rows  [][]string
}

func main() {
	errorsFile := flag.String("src", "internal/docexport/apierrors/apierrors.go", "Path of apierrors.go")
	outputMd := flag.String("out", "docs/api_errors.md", "Path to output md")
	flag.Parse()

	slog.Info("Generate api errors docs", "src", *errorsFile, "out", *outputMd)

	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, *errorsFile, nil, parser.ParseComments)
	if err != nil {
		slog.Error("Parse errors file", "err", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(*outputMd), 0o755); err != nil {
		slog.Error("Create docs dir", "err", err)
		os.Exit(1)
	}
	ff, err := os.Create(*outputMd)
	if err != nil {
		slog.Error("Create docs file", "err", err)
		os.Exit(1)
	}
	defer ff.Close()

	if err := writeDocs(ff, collectErrors(f)); err != nil {
		slog.Error("Generate docs fail", "err", err)
		return
	}
	slog.Info("Docs generated")
}

func writeDocs(w io.Writer, groups []errorGroup) error {
	doc := md.NewMarkdown(w).
		H1("Перечень кодов ошибок").
		PlainText("Ошибки сервиса экспорта документов. Тело ответа: `{\"code\": <код>, \"error\": <сообщение>, \"ru_error\": <сообщение на русском>}`.")

	for _, g := range groups {
		doc = doc.H2(g.Title).
			CustomTable(md.TableSet{
				Header: []string{"Код", "HTTP код", "Сообщение", "Сообщение на русском"},
				Rows:   g.Rows,
			}, md.TableOptions{
				AutoWrapText: false,
			})
	}
	return doc.Build()
}

// collectErrors собирает определения ошибок из блоков var. Заголовок группы берется из
// комментария над первой ошибкой группы.
func collectErrors(f *ast.File) []errorGroup {
	var groups []errorGroup
	for _, d := range f.Decls {
		decl, ok := d.(*ast.GenDecl)
		if !ok || decl.Tok != token.VAR {
			continue
		}
		for _, spec := range decl.Specs {
			vs, ok := spec.(*ast.ValueSpec)
			if !ok || len(vs.Values) != len(vs.Names) {
				continue
			}
			for _, value := range vs.Values {
				lit, ok := value.(*ast.CompositeLit)
				if !ok || !isDefinedError(lit) {
					continue
				}
				if title := groupTitle(vs.Doc); title != "" || len(groups) == 0 {
					if title == "" {
						title = "Ошибки"
					}
					groups = append(groups, errorGroup{Title: title})
				}
				g := &groups[len(groups)-1]
				g.Rows = append(g.Rows, errorRow(lit))
			}
		}
	}
	return groups
}

func isDefinedError(lit *ast.CompositeLit) bool {
	ident, ok := lit.Type.(*ast.Ident)
	return ok && ident.Name == "DefinedError"
}

func groupTitle(doc *ast.CommentGroup) string {
	if doc == nil {
		return ""
	}
	return strings.TrimSpace(doc.Text())
}

func errorRow(lit *ast.CompositeLit) []string {
	row := make([]string, 4)
	status := http.StatusBadRequest
	for _, v := range lit.Elts {
		param, ok := v.(*ast.KeyValueExpr)
		if !ok {
			continue
		}
		switch fmt.Sprint(param.Key) {
		case "Code":
			if bl, ok := param.Value.(*ast.BasicLit); ok {
				row[0] = md.Bold(bl.Value)
			}
		case "StatusCode":
			if code, ok := statusCode(param.Value); ok {
				status = code
			}
		case "Err":
			row[2] = md.Code(stringValue(param.Value))
		case "RuErr":
			row[3] = md.Code(stringValue(param.Value))
		}
	}
	row[1] = fmt.Sprintf("%d %s", status, md.Italic(http.StatusText(status)))
	return row
}

// statusCode понимает http.StatusXxx и числовые литералы.
func statusCode(expr ast.Expr) (int, bool) {
	switch v := expr.(type) {
	case *ast.BasicLit:
		code, err := strconv.Atoi(v.Value)
		return code, err == nil
	case *ast.SelectorExpr:
		code, ok := statusCodes[v.Sel.Name]
		return code, ok
	}
	return 0, false
}

// stringValue возвращает значение строкового литерала или конкатенации литералов.
func stringValue(expr ast.Expr) string {
	switch v := expr.(type) {
	case *ast.BasicLit:
		if s, err := strconv.Unquote(v.Value); err == nil {
			return s
		}
		return strings.Trim(v.Value, "\"`")
	case *ast.BinaryExpr:
		return stringValue(v.X) + stringValue(v.Y)
	case *ast.ParenExpr:
		return stringValue(v.X)
	}
	return ""
}

var statusCodes = map[string]int{
	"StatusOK":                    http.StatusOK,
	"StatusCreated":               http.StatusCreated,
	"StatusNoContent":             http.StatusNoContent,
	"StatusBadRequest":            http.StatusBadRequest,
	"StatusUnauthorized":          http.StatusUnauthorized,
	"StatusForbidden":             http.StatusForbidden,
	"StatusNotFound":              http.StatusNotFound,
	"StatusMethodNotAllowed":      http.StatusMethodNotAllowed,
	"StatusConflict":              http.StatusConflict,
	"StatusGone":                  http.StatusGone,
	"StatusRequestEntityTooLarge": http.StatusRequestEntityTooLarge,
	"StatusUnsupportedMediaType":  http.StatusUnsupportedMediaType,
	"StatusUnprocessableEntity":   http.StatusUnprocessableEntity,
	"StatusTooManyRequests":       http.StatusTooManyRequests,
	"StatusInternalServerError":   http.StatusInternalServerError,
	"StatusNotImplemented":        http.StatusNotImplemented,
	"StatusBadGateway":            http.StatusBadGateway,
	"StatusServiceUnavailable":    http.StatusServiceUnavailable,
	"StatusGatewayTimeout":        http.StatusGatewayTimeout,
}
