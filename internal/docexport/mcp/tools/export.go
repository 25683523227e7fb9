package tools

import (
	"context"
	"encoding/base64"

	"github.com/aisa-it/docexport/internal/docexport/business"
	"github.com/aisa-it/docexport/internal/docexport/mcp/logger"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const documentDescription = "Документ редактора: JSON снимок TipTap (объект или строка) либо HTML строка"

var exportTools = []Tool{
	{
		mcp.NewTool(
			"export_document",
			mcp.WithDescription("Экспорт документа редактора в Markdown, HTML, PDF или HTML для печати"),
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithDestructiveHintAnnotation(false),
			mcp.WithString("document",
				mcp.Required(),
				mcp.Description(documentDescription),
			),
			mcp.WithString("format",
				mcp.Required(),
				mcp.Enum("md", "html", "pdf", "print"),
				mcp.Description("Формат экспорта"),
			),
			mcp.WithObject("options",
				mcp.Description(`Параметры экспорта по форматам: {"markdown": {"include_frontmatter", "frontmatter", "image_style", "link_style"}, "html": {"include_styles", "inline_styles", "class_prefix", "embed_images", "include_wrapper", "title", "theme", "highlight_code", "sanitize", "minify"}, "pdf": {"engine", "title", "page_size", "landscape", "margin_mm", "theme"}}`),
			),
			mcp.WithBoolean("store",
				mcp.Description("Сохранить результат в хранилище и вернуть ссылку на скачивание (по умолчанию false, для pdf включается автоматически при настроенном хранилище)"),
			),
		),
		exportDocument,
	},
}

// GetExportTools возвращает инструменты экспорта.
func GetExportTools(bl *business.Business) []server.ServerTool {
	return serverTools(bl, exportTools)
}

type exportResult struct {
	Format      string `json:"format"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
	URL         string `json:"url,omitempty"`
	Name        string `json:"name,omitempty"`
	Data        string `json:"data_base64,omitempty"`
}

func exportDocument(ctx context.Context, bl *business.Business, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	format, err := business.ParseFormat(stringArg(request, "format"))
	if err != nil {
		return logger.Error(err), nil
	}
	doc, err := documentArg(request)
	if err != nil {
		return logger.Error(err), nil
	}
	opts, err := optionsArg(request)
	if err != nil {
		return logger.Error(err), nil
	}

	art, err := bl.Export(ctx, doc, format, opts)
	if err != nil {
		return logger.Error(err), nil
	}

	store := boolArg(request, "store") || (format == business.FormatPDF && bl.StorageEnabled())
	if !store && format != business.FormatPDF {
		return mcp.NewToolResultText(string(art.Data)), nil
	}

	res := exportResult{
		Format:      string(art.Format),
		ContentType: art.ContentType(),
		Size:        len(art.Data),
	}
	if store {
		stored, err := bl.Store(ctx, art, opts.HTML.Title)
		if err != nil {
			return logger.Error(err), nil
		}
		res.Name = stored.Name
		res.URL = stored.URL
	} else {
		res.Data = base64.StdEncoding.EncodeToString(art.Data)
	}
	return mcp.NewToolResultJSON(res)
}
