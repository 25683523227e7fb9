package docexport

import (
	"testing"

	"github.com/aisa-it/docexport/internal/docexport/business"
	"github.com/stretchr/testify/assert"
)

func TestRequestValidator(t *testing.T) {
	v := NewRequestValidator()

	valid := func(mut func(r *exportRequest)) error {
		r := exportRequest{Options: business.DefaultExportOptions()}
		mut(&r)
		return v.Validate(&r)
	}

	assert.NoError(t, valid(func(r *exportRequest) {}))
	assert.NoError(t, valid(func(r *exportRequest) { r.FileName = "Отчет (итог) v1.2" }))
	assert.NoError(t, valid(func(r *exportRequest) { r.Options.HTML.ClassPrefix = "doc-" }))
	assert.NoError(t, valid(func(r *exportRequest) { r.Options.PDF.PageSize = "Letter" }))

	assert.Error(t, valid(func(r *exportRequest) { r.FileName = "a/b" }))
	assert.Error(t, valid(func(r *exportRequest) { r.Options.HTML.ClassPrefix = "my prefix" }))
	assert.Error(t, valid(func(r *exportRequest) { r.Options.PDF.ClassPrefix = "-x" }))
	assert.Error(t, valid(func(r *exportRequest) { r.Options.PDF.PageSize = "B5" }))
	assert.Error(t, valid(func(r *exportRequest) { r.Options.PDF.MarginMM = 80 }))
	assert.Error(t, valid(func(r *exportRequest) { r.Options.Markdown.LinkStyle = "footnote" }))
	assert.Error(t, valid(func(r *exportRequest) { r.Options.HTML.StylesheetHref = "not a url" }))

	assert.NoError(t, v.Validate(&importMarkdownRequest{Mode: "commonmark"}))
	assert.Error(t, v.Validate(&importMarkdownRequest{Mode: "rst"}))
}
