package tools

import (
	"context"

	"github.com/aisa-it/docexport/internal/docexport/business"
	"github.com/aisa-it/docexport/internal/docexport/markdown"
	"github.com/aisa-it/docexport/internal/docexport/mcp/logger"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

var importTools = []Tool{
	{
		mcp.NewTool(
			"import_markdown",
			mcp.WithDescription("Преобразование Markdown в HTML и JSON дерево документа редактора"),
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithDestructiveHintAnnotation(false),
			mcp.WithString("markdown",
				mcp.Required(),
				mcp.Description("Текст в формате Markdown"),
			),
			mcp.WithString("mode",
				mcp.Enum("regex", "commonmark"),
				mcp.Description("Режим разбора: regex (совместимый, по умолчанию) или commonmark (полный CommonMark + GFM)"),
			),
		),
		importMarkdown,
	},
	{
		mcp.NewTool(
			"html_to_markdown",
			mcp.WithDescription("Конвертация сохраненного HTML (например, старых описаний) в Markdown"),
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithDestructiveHintAnnotation(false),
			mcp.WithString("html",
				mcp.Required(),
				mcp.Description("HTML фрагмент"),
			),
		),
		htmlToMarkdown,
	},
}

// GetImportTools возвращает инструменты импорта.
func GetImportTools(bl *business.Business) []server.ServerTool {
	return serverTools(bl, importTools)
}

func importMarkdown(_ context.Context, bl *business.Business, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := bl.Import(stringArg(request, "markdown"), markdown.Mode(stringArg(request, "mode")))
	if err != nil {
		return logger.Error(err), nil
	}
	return mcp.NewToolResultJSON(res)
}

func htmlToMarkdown(_ context.Context, bl *business.Business, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := bl.ImportHTML(stringArg(request, "html"))
	if err != nil {
		return logger.Error(err), nil
	}
	return mcp.NewToolResultText(res.Markdown), nil
}
