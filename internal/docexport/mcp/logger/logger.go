package logger

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"

	"github.com/aisa-it/docexport/internal/docexport/apierrors"
	"github.com/mark3labs/mcp-go/mcp"
)

// Error превращает ошибку в результат инструмента. Неизвестные ошибки логируются и скрываются.
func Error(err error) *mcp.CallToolResult {
	var customErr apierrors.DefinedError
	if errors.As(err, &customErr) {
		return customErr.MCPError()
	}
	slog.Error("MCP internal error", getCallerFile(), "err", err)
	return mcp.NewToolResultError("internal error")
}

func getCallerFile() slog.Attr {
	_, path, no, ok := runtime.Caller(2)
	if !ok {
		return slog.Attr{}
	}
	_, file := filepath.Split(path)
	return slog.String("caller", fmt.Sprintf("%s:%d", file, no))
}
