// Пакет содержит определения ошибок API сервиса экспорта документов. Каждая ошибка имеет код,
// статус HTTP и описание на двух языках.
//
// Основные возможности:
//   - Каталог ошибок разбора документа, экспорта, импорта и хранилища артефактов.
//   - Коды ошибок сгруппированы по тысячам, HTTP статус задается отдельно.
//   - Форматирование сообщений с аргументами.
//   - Преобразование ошибки в результат инструмента MCP.
package apierrors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

type DefinedError struct {
	Code       int    `json:"code"`
	StatusCode int    `json:"-"`
	Err        string `json:"error"`
	RuErr      string `json:"ru_error,omitempty"`
}

func (e DefinedError) Error() string {
	return e.Err
}

// MCPError возвращает ошибку в виде результата инструмента MCP.
func (e DefinedError) MCPError() *mcp.CallToolResult {
	b, _ := json.Marshal(e)
	return mcp.NewToolResultError(string(b))
}

var (
	// 1*** - document errors
	ErrDocumentRequired = DefinedError{Code: 1001, StatusCode: http.StatusBadRequest, Err: "document is required", RuErr: "Документ не передан"}
	ErrDocumentInvalid  = DefinedError{Code: 1002, StatusCode: http.StatusBadRequest, Err: "invalid document: %s", RuErr: "Некорректный документ: %s"}
	ErrDocumentTooLarge = DefinedError{Code: 1003, StatusCode: http.StatusRequestEntityTooLarge, Err: "document size exceeds the allowed limit", RuErr: "Размер документа превышает допустимый"}

	// 2*** - export errors
	ErrUnsupportedFormat = DefinedError{Code: 2001, StatusCode: http.StatusBadRequest, Err: "unsupported export format", RuErr: "Формат экспорта не поддерживается"}
	ErrExportFailed      = DefinedError{Code: 2002, StatusCode: http.StatusInternalServerError, Err: "export failed", RuErr: "Не удалось выполнить экспорт"}
	ErrPDFFailed         = DefinedError{Code: 2003, StatusCode: http.StatusInternalServerError, Err: "pdf generation failed", RuErr: "Не удалось сформировать PDF"}
	ErrInvalidOptions    = DefinedError{Code: 2004, StatusCode: http.StatusBadRequest, Err: "invalid export options: %s", RuErr: "Некорректные параметры экспорта: %s"}

	// 3*** - import errors
	ErrMarkdownRequired = DefinedError{Code: 3001, StatusCode: http.StatusBadRequest, Err: "markdown is required", RuErr: "Текст Markdown не передан"}
	ErrUnknownMode      = DefinedError{Code: 3002, StatusCode: http.StatusBadRequest, Err: "unknown markdown mode", RuErr: "Неизвестный режим разбора Markdown"}
	ErrImportFailed     = DefinedError{Code: 3003, StatusCode: http.StatusBadRequest, Err: "import failed", RuErr: "Не удалось импортировать документ"}

	// 4*** - storage errors
	ErrStorageDisabled = DefinedError{Code: 4001, StatusCode: http.StatusServiceUnavailable, Err: "artifact storage is not configured", RuErr: "Хранилище файлов не настроено"}
	ErrFileNotFound    = DefinedError{Code: 4002, StatusCode: http.StatusNotFound, Err: "file not found", RuErr: "Файл не найден"}
	ErrStoreFailed     = DefinedError{Code: 4003, StatusCode: http.StatusInternalServerError, Err: "failed to store artifact", RuErr: "Не удалось сохранить файл"}

	// 5*** - common errors
	ErrGeneric       = DefinedError{Code: 5000, StatusCode: http.StatusBadRequest, Err: "Something went wrong. Please try again later or contact the support team.", RuErr: "Что-то пошло не так. Повторите попытку позже или обратитесь в службу поддержки"}
	ErrEntityToLarge = DefinedError{Code: 5010, StatusCode: http.StatusRequestEntityTooLarge, Err: "size exceeds the allowed limit", RuErr: "Размер файла превышает допустимый."}
	ErrInvalidID     = DefinedError{Code: 5011, StatusCode: http.StatusBadRequest, Err: "invalid ID", RuErr: "Указан неверный ID"}
)

func (e DefinedError) WithFormattedMessage(args ...any) DefinedError {
	if len(args) > 0 {
		e.Err = fmt.Sprintf(e.Err, args...)
		e.RuErr = fmt.Sprintf(e.RuErr, args...)
	} else {
		e.Err = strings.ReplaceAll(e.Err, "%s", "")
		e.RuErr = strings.ReplaceAll(e.RuErr, "%s", "")
	}
	return e
}
