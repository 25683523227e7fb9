package mcp

import (
	"context"
	"log/slog"

	"github.com/aisa-it/docexport/internal/docexport/business"
	"github.com/aisa-it/docexport/internal/docexport/mcp/resources"
	"github.com/aisa-it/docexport/internal/docexport/mcp/tools"
	"github.com/labstack/echo/v4"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// mcpInstructions содержит описание MCP сервера для LLM-моделей.
const mcpInstructions = `MCP сервер экспорта документов редактора АИПлан

## Документ
Документ передается как JSON снимок редактора TipTap: дерево нод {"type", "attrs", "content", "marks", "text"}
с корнем типа doc. Вместо JSON можно передать HTML строку, она будет разобрана в дерево.

## Форматы экспорта
- md: Markdown (GFM) с опциональным YAML frontmatter
- html: автономный HTML документ со встроенными стилями или фрагмент
- pdf: PDF файл, возвращается ссылкой на скачивание или в base64
- print: HTML с CSS для печати через браузер

## Ограничения
- Вложенные списки при импорте в режиме regex не поддерживаются, используйте режим commonmark
- Цвета текста и выделения в Markdown не сохраняются
`

// NewMCPServer создаёт MCP сервер поверх business слоя.
func NewMCPServer(bl *business.Business, version string) echo.HandlerFunc {
	hooks := &server.Hooks{}
	hooks.AddOnError(ErrorLoggerHook)

	srv := server.NewMCPServer(
		"docexport-mcp",
		version,
		server.WithInstructions(mcpInstructions),
		server.WithHooks(hooks),
	)
	srv.AddTools(tools.GetExportTools(bl)...)
	srv.AddTools(tools.GetImportTools(bl)...)

	srv.AddResources(resources.GetExportResources()...)

	httpServer := server.NewStreamableHTTPServer(srv)
	return echo.WrapHandler(httpServer)
}

func ErrorLoggerHook(ctx context.Context, id any, method mcp.MCPMethod, message any, err error) {
	slog.Error("MCP Error", "id", id, "method", method, "message", message, "err", err)
}
