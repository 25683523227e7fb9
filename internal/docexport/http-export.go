package docexport

import (
	"encoding/json"
	"mime"
	"net/http"
	"strconv"

	"github.com/aisa-it/docexport/internal/docexport/apierrors"
	"github.com/aisa-it/docexport/internal/docexport/business"
	"github.com/aisa-it/docexport/internal/docexport/markdown"
	"github.com/aisa-it/docexport/internal/docexport/validation"
	"github.com/labstack/echo/v4"
)

const defaultFileName = "document"

// AddExportServices регистрирует маршруты экспорта, импорта и скачивания артефактов.
func (s *Services) AddExportServices(g *echo.Group) {
	g.POST("export/:format/", s.exportDocument)
	g.POST("export/:format/store/", s.storeDocument)
	g.POST("import/markdown/", s.importMarkdown)
	g.POST("import/html/", s.importHTML)
	g.GET("file/:fileName/", s.downloadFile)
}

type exportRequest struct {
	Document json.RawMessage        `json:"document" swaggertype:"object"`
	Options  business.ExportOptions `json:"options"`
	FileName string                 `json:"filename" validate:"omitempty,fileName"`
}

type importMarkdownRequest struct {
	Markdown string        `json:"markdown"`
	Mode     markdown.Mode `json:"mode" validate:"omitempty,oneof=regex commonmark"`
}

type importHTMLRequest struct {
	HTML string `json:"html"`
}

func (s *Services) export(c echo.Context) (*business.Artifact, *exportRequest, error) {
	format, err := business.ParseFormat(c.Param("format"))
	if err != nil {
		return nil, nil, err
	}

	req := exportRequest{Options: business.DefaultExportOptions()}
	if err := c.Bind(&req); err != nil {
		return nil, nil, apierrors.ErrDocumentInvalid.WithFormattedMessage("malformed request body")
	}
	if err := c.Validate(&req); err != nil {
		return nil, nil, apierrors.ErrInvalidOptions.WithFormattedMessage(validation.Message(err))
	}

	doc, err := business.DecodeDocument(req.Document)
	if err != nil {
		return nil, nil, err
	}

	art, err := s.business.Export(c.Request().Context(), doc, format, req.Options)
	if err != nil {
		return nil, nil, err
	}
	return art, &req, nil
}

// exportDocument godoc
// @id exportDocument
// @Summary export: экспорт документа
// @Description Возвращает документ в формате md, html, pdf или print. С параметром download=true ответ отдается вложением
// @Tags Export
// @Accept json
// @Produce text/markdown,text/html,application/pdf
// @Param format path string true "Формат экспорта" Enums(md, html, pdf, print)
// @Param download query bool false "Отдать ответ вложением"
// @Param data body exportRequest true "Документ и параметры экспорта"
// @Success 200 {file} binary "Экспортированный документ"
// @Failure 400 {object} apierrors.DefinedError "Некорректный документ, формат или параметры"
// @Failure 413 {object} apierrors.DefinedError "Слишком большой запрос"
// @Failure 500 {object} apierrors.DefinedError "Ошибка экспорта"
// @Router /api/export/{format}/ [post]
func (s *Services) exportDocument(c echo.Context) error {
	art, req, err := s.export(c)
	if err != nil {
		return EError(c, err)
	}

	if download, _ := strconv.ParseBool(c.QueryParam("download")); download {
		c.Response().Header().Set(echo.HeaderContentDisposition, attachment(req.FileName, art.Format.Ext()))
	}
	return c.Blob(http.StatusOK, art.ContentType(), art.Data)
}

// storeDocument godoc
// @id storeDocument
// @Summary export: экспорт документа в хранилище
// @Description Сохраняет результат экспорта в хранилище и возвращает ссылку на скачивание
// @Tags Export
// @Accept json
// @Produce json
// @Param format path string true "Формат экспорта" Enums(md, html, pdf, print)
// @Param data body exportRequest true "Документ и параметры экспорта"
// @Success 201 {object} business.StoredFile "Сохраненный артефакт"
// @Failure 400 {object} apierrors.DefinedError "Некорректный документ, формат или параметры"
// @Failure 500 {object} apierrors.DefinedError "Ошибка экспорта или сохранения"
// @Failure 503 {object} apierrors.DefinedError "Хранилище не настроено"
// @Router /api/export/{format}/store/ [post]
func (s *Services) storeDocument(c echo.Context) error {
	art, req, err := s.export(c)
	if err != nil {
		return EError(c, err)
	}

	title := req.Options.HTML.Title
	if title == "" {
		title = req.FileName
	}
	stored, err := s.business.Store(c.Request().Context(), art, title)
	if err != nil {
		return EError(c, err)
	}
	return c.JSON(http.StatusCreated, stored)
}

// importMarkdown godoc
// @id importMarkdown
// @Summary import: импорт Markdown
// @Description Переводит Markdown в HTML и дерево документа редактора
// @Tags Import
// @Accept json
// @Produce json
// @Param data body importMarkdownRequest true "Markdown и режим разбора"
// @Success 200 {object} business.ImportResult "HTML и документ"
// @Failure 400 {object} apierrors.DefinedError "Пустой Markdown или неизвестный режим"
// @Router /api/import/markdown/ [post]
func (s *Services) importMarkdown(c echo.Context) error {
	var req importMarkdownRequest
	if err := c.Bind(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrImportFailed)
	}
	if err := c.Validate(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrUnknownMode)
	}

	res, err := s.business.Import(req.Markdown, req.Mode)
	if err != nil {
		return EError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// importHTML godoc
// @id importHTML
// @Summary import: импорт HTML
// @Description Переводит сохраненный HTML в Markdown и дерево документа редактора
// @Tags Import
// @Accept json
// @Produce json
// @Param data body importHTMLRequest true "HTML документа"
// @Success 200 {object} business.HTMLImportResult "Markdown и документ"
// @Failure 400 {object} apierrors.DefinedError "Пустой или некорректный HTML"
// @Router /api/import/html/ [post]
func (s *Services) importHTML(c echo.Context) error {
	var req importHTMLRequest
	if err := c.Bind(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrImportFailed)
	}

	res, err := s.business.ImportHTML(req.HTML)
	if err != nil {
		return EError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// downloadFile godoc
// @id downloadFile
// @Summary export: скачивание сохраненного артефакта
// @Tags Export
// @Produce octet-stream
// @Param fileName path string true "Имя артефакта"
// @Success 200 {file} binary "Артефакт"
// @Failure 400 {object} apierrors.DefinedError "Некорректное имя файла"
// @Failure 404 {object} apierrors.DefinedError "Артефакт не найден или истек"
// @Failure 503 {object} apierrors.DefinedError "Хранилище не настроено"
// @Router /api/file/{fileName}/ [get]
func (s *Services) downloadFile(c echo.Context) error {
	r, info, err := s.business.Open(c.Request().Context(), c.Param("fileName"))
	if err != nil {
		return EError(c, err)
	}
	defer r.Close()

	contentType := info.ContentType
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, mime.FormatMediaType("attachment", map[string]string{"filename": info.Name}))
	return c.Stream(http.StatusOK, contentType, r)
}

func attachment(name, ext string) string {
	if name == "" {
		name = defaultFileName
	}
	return mime.FormatMediaType("attachment", map[string]string{"filename": name + ext})
}
