// Проверка параметров экспорта по тегам validate. Используется HTTP API и MCP инструментами,
// поэтому ошибки параметров одинаковы для обоих входов.
package validation

import (
	"errors"
	"regexp"
	"unicode/utf8"

	"github.com/go-playground/validator"
)

var (
	classPrefixReg = regexp.MustCompile(`^[A-Za-z_][\w-]*$`)
	fileNameReg    = regexp.MustCompile(`^[A-Za-zА-Яа-яёЁ0-9 ._()\-]+$`)

	shared = New()
)

// New создает валидатор с правилами classPrefix и fileName.
func New() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("classPrefix", classPrefixValidator); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("fileName", fileNameValidator); err != nil {
		panic(err)
	}
	return v
}

// Struct проверяет структуру общим валидатором. Возвращает только ошибки правил,
// значения, которые нельзя проверить (nil, не структура), пропускаются.
func Struct(s any) error {
	err := shared.Struct(s)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return err
	}
	return nil
}

// Message первое нарушенное правило в виде "Namespace failed on tag".
func Message(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	return fe.Namespace() + " failed on " + fe.Tag()
}

func classPrefixValidator(fl validator.FieldLevel) bool {
	return classPrefixReg.MatchString(fl.Field().String())
}

// Имя файла для Content-Disposition, без расширения
func fileNameValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	lenStr := utf8.RuneCountInString(value)
	return fileNameReg.MatchString(value) && lenStr >= 1 && lenStr <= 100
}
