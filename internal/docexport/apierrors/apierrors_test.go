package apierrors

import (
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithFormattedMessage(t *testing.T) {
	e := ErrDocumentInvalid.WithFormattedMessage("unexpected EOF")
	assert.Equal(t, "invalid document: unexpected EOF", e.Error())
	assert.Equal(t, "Некорректный документ: unexpected EOF", e.RuErr)

	e = ErrDocumentInvalid.WithFormattedMessage()
	assert.Equal(t, "invalid document: ", e.Err)

	// Исходное значение не меняется
	assert.Equal(t, "invalid document: %s", ErrDocumentInvalid.Err)
}

func TestJSONHidesStatus(t *testing.T) {
	b, err := json.Marshal(ErrFileNotFound)
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":4002,"error":"file not found","ru_error":"Файл не найден"}`, string(b))
}

func TestMCPError(t *testing.T) {
	res := ErrUnsupportedFormat.MCPError()
	require.True(t, res.IsError)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, `"code":2001`)
}
