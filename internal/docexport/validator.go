package docexport

import (
	"github.com/aisa-it/docexport/internal/docexport/validation"
)

// RequestValidator подключает общий валидатор параметров к echo.
type RequestValidator struct{}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{}
}

func (rv *RequestValidator) Validate(i interface{}) error {
	return validation.Struct(i)
}
