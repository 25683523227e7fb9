// Утилиты ответа ошибками API сервиса экспорта.
//
// Основные возможности:
//   - Единый формат JSON ответа с кодом ошибки.
//   - Логирование ошибок с методом, адресом и местом вызова.
//   - Ошибки каталога apierrors отдаются со своим HTTP статусом.
package docexport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"runtime"

	"github.com/aisa-it/docexport/internal/docexport/apierrors"
	"github.com/labstack/echo/v4"
)

// EError отвечает ошибкой каталога, если она есть в цепочке err. Прерванный клиентом запрос дает 503,
// остальные ошибки логируются и скрываются за ErrGeneric.
func EError(c echo.Context, err error) error {
	var defined apierrors.DefinedError
	switch {
	case errors.As(err, &defined):
		if defined.StatusCode >= http.StatusInternalServerError {
			logAPIError(c, err, defined.StatusCode)
		}
		return EErrorDefined(c, defined)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		slog.Warn("Request canceled", "method", c.Request().Method, "url", c.Request().URL, "err", err)
		return EErrorMsgStatus(c, err, http.StatusServiceUnavailable)
	}
	logAPIError(c, err, http.StatusBadRequest)
	return EErrorDefined(c, apierrors.ErrGeneric)
}

// EErrorMsgStatus отвечает ErrGeneric со статусом status и текстом err.
func EErrorMsgStatus(c echo.Context, err error, status int) error {
	if status == http.StatusRequestEntityTooLarge {
		return EErrorDefined(c, apierrors.ErrEntityToLarge)
	}

	resp := apierrors.ErrGeneric
	resp.StatusCode = status
	if err != nil {
		resp.Err = err.Error()
	}
	if status != http.StatusNotFound && status != http.StatusServiceUnavailable {
		logAPIError(c, err, status)
	}
	return EErrorDefined(c, resp)
}

// EErrorDefined возвращает JSON-ответ с кодом статуса и сообщением об ошибке. Если код статуса не определен, используется 400 Bad Request.
func EErrorDefined(c echo.Context, err apierrors.DefinedError) error {
	if http.StatusText(err.StatusCode) == "" {
		err.StatusCode = http.StatusBadRequest
	}
	return c.JSON(err.StatusCode, err)
}

func logAPIError(c echo.Context, err error, status int) {
	msg := "API error"
	if err == nil {
		msg = "Unknown API error"
	}
	slog.Error(msg,
		"err", err,
		"method", c.Request().Method,
		"url", c.Request().URL,
		"status", status,
		callerFile(3),
	)
}

func callerFile(skip int) slog.Attr {
	_, path, no, ok := runtime.Caller(skip)
	if !ok {
		return slog.Attr{}
	}
	return slog.String("caller", fmt.Sprintf("%s:%d", filepath.Base(path), no))
}
