// Пакет tools содержит MCP инструменты экспорта и импорта документов.
//
// Основные возможности:
//   - Экспорт документа в Markdown, HTML, PDF и HTML для печати.
//   - Импорт Markdown в HTML и дерево документа.
//   - Конвертация сохраненного HTML в Markdown.
package tools

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/aisa-it/docexport/internal/docexport/apierrors"
	"github.com/aisa-it/docexport/internal/docexport/business"
	"github.com/aisa-it/docexport/internal/docexport/editor/tiptap"
	"github.com/aisa-it/docexport/internal/docexport/validation"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ToolHandler сигнатура обработчика MCP инструмента.
type ToolHandler func(ctx context.Context, bl *business.Business, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// Tool MCP инструмент с обработчиком.
type Tool struct {
	Tool    mcp.Tool
	Handler ToolHandler
}

// WrapTool связывает обработчик с business слоем.
func WrapTool(bl *business.Business, handler ToolHandler) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handler(ctx, bl, request)
	}
}

func serverTools(bl *business.Business, tools []Tool) []server.ServerTool {
	result := make([]server.ServerTool, 0, len(tools))
	for _, t := range tools {
		result = append(result, server.ServerTool{
			Tool:    t.Tool,
			Handler: WrapTool(bl, t.Handler),
		})
	}
	return result
}

// documentArg читает документ: JSON объект, строку с JSON или строку с HTML.
func documentArg(request mcp.CallToolRequest) (*tiptap.Node, error) {
	raw, ok := request.GetArguments()["document"]
	if !ok || raw == nil {
		return nil, apierrors.ErrDocumentRequired
	}

	switch v := raw.(type) {
	case string:
		if s := strings.TrimSpace(v); strings.HasPrefix(s, "{") {
			return business.DecodeDocument([]byte(s))
		}
		b, _ := json.Marshal(v)
		return business.DecodeDocument(b)
	case map[string]any:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, apierrors.ErrDocumentInvalid.WithFormattedMessage(err.Error())
		}
		return business.DecodeDocument(b)
	}
	return nil, apierrors.ErrDocumentInvalid.WithFormattedMessage("document must be an object or a string")
}

// optionsArg накладывает переданные параметры на значения по умолчанию и проверяет результат.
func optionsArg(request mcp.CallToolRequest) (business.ExportOptions, error) {
	opts := business.DefaultExportOptions()
	raw, ok := request.GetArguments()["options"]
	if !ok || raw == nil {
		return opts, nil
	}

	var data []byte
	switch v := raw.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return opts, nil
		}
		data = []byte(v)
	default:
		var err error
		if data, err = json.Marshal(v); err != nil {
			return opts, apierrors.ErrInvalidOptions.WithFormattedMessage(err.Error())
		}
	}
	if err := json.Unmarshal(data, &opts); err != nil {
		return opts, apierrors.ErrInvalidOptions.WithFormattedMessage(err.Error())
	}
	if err := validation.Struct(&opts); err != nil {
		return opts, apierrors.ErrInvalidOptions.WithFormattedMessage(validation.Message(err))
	}
	return opts, nil
}

func stringArg(request mcp.CallToolRequest, key string) string {
	s, _ := request.GetArguments()[key].(string)
	return s
}

func boolArg(request mcp.CallToolRequest, key string) bool {
	b, _ := request.GetArguments()[key].(bool)
	return b
}
