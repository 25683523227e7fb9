package docexport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aisa-it/docexport/internal/docexport/business"
	"github.com/aisa-it/docexport/internal/docexport/config"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDocument = `{"type":"doc","content":[
	{"type":"heading","attrs":{"level":1},"content":[{"type":"text","text":"Отчет"}]},
	{"type":"paragraph","content":[{"type":"text","text":"Все готово"}]}
]}`

func newTestServer(t *testing.T, withStorage bool) *echo.Echo {
	t.Helper()
	cfg := &config.Config{BodyLimit: "64K", MCPEnable: true, SwaggerEnable: true}
	if withStorage {
		cfg.StorageDir = t.TempDir()
	}
	storage, err := newStorage(cfg)
	require.NoError(t, err)

	s := &Services{
		cfg:        cfg,
		version:    "test",
		storage:    storage,
		business:   business.NewBL(cfg, storage),
		registerer: prometheus.NewRegistry(),
	}
	return s.NewEcho()
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) int {
	t.Helper()
	var body struct {
		Code int `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body.Code
}

func TestExportEndpoint(t *testing.T) {
	e := newTestServer(t, false)
	body := `{"document": ` + testDocument + `}`

	rec := do(e, http.MethodPost, "/api/export/md", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "# Отчет\n\nВсе готово\n", rec.Body.String())
	assert.Equal(t, "text/markdown; charset=utf-8", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "DocExport", rec.Header().Get(echo.HeaderServer))
	assert.Empty(t, rec.Header().Get(echo.HeaderContentDisposition))

	rec = do(e, http.MethodPost, "/api/export/html/", `{"document": "<p>из <b>HTML</b></p>", "options": {"html": {"include_wrapper": false, "include_styles": false}}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, `<p class="editor-paragraph">из <strong>HTML</strong></p>`, rec.Body.String())

	rec = do(e, http.MethodPost, "/api/export/pdf/?download=true", `{"document": `+testDocument+`, "filename": "Отчет за май"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF-"))
	assert.Equal(t, "application/pdf", rec.Header().Get(echo.HeaderContentType))
	disposition := rec.Header().Get(echo.HeaderContentDisposition)
	assert.True(t, strings.HasPrefix(disposition, "attachment;"), disposition)
	assert.Contains(t, disposition, "filename*=utf-8''")

	rec = do(e, http.MethodPost, "/api/export/print/?download=1", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "@page")
	assert.Equal(t, `attachment; filename=document.html`, rec.Header().Get(echo.HeaderContentDisposition))
}

func TestExportEndpointErrors(t *testing.T) {
	e := newTestServer(t, false)

	tests := []struct {
		name   string
		target string
		body   string
		status int
		code   int
	}{
		{name: "unknown format", target: "/api/export/docx/", body: `{"document": ` + testDocument + `}`, status: http.StatusBadRequest, code: 2001},
		{name: "no document", target: "/api/export/md/", body: `{}`, status: http.StatusBadRequest, code: 1001},
		{name: "malformed body", target: "/api/export/md/", body: `{"document":`, status: http.StatusBadRequest, code: 1002},
		{name: "null node", target: "/api/export/md/", body: `{"document": {"type": "doc", "content": [null]}}`, status: http.StatusBadRequest, code: 1002},
		{name: "bad node", target: "/api/export/md/", body: `{"document": {"type": "paragraph", "text": "x"}}`, status: http.StatusBadRequest, code: 1002},
		{
			name:   "class prefix",
			target: "/api/export/html/",
			body:   `{"document": ` + testDocument + `, "options": {"html": {"class_prefix": "1bad"}}}`,
			status: http.StatusBadRequest,
			code:   2004,
		},
		{
			name:   "theme",
			target: "/api/export/html/",
			body:   `{"document": ` + testDocument + `, "options": {"html": {"theme": "sepia"}}}`,
			status: http.StatusBadRequest,
			code:   2004,
		},
		{name: "file name", target: "/api/export/md/", body: `{"document": ` + testDocument + `, "filename": "../etc"}`, status: http.StatusBadRequest, code: 2004},
		{name: "storage disabled", target: "/api/export/md/store/", body: `{"document": ` + testDocument + `}`, status: http.StatusServiceUnavailable, code: 4001},
		{name: "too large", target: "/api/export/md/", body: `{"document": "` + strings.Repeat("x", 70<<10) + `"}`, status: http.StatusRequestEntityTooLarge, code: 5010},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(e, http.MethodPost, tt.target, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.code, errorCode(t, rec))
		})
	}
}

func TestStoreAndDownload(t *testing.T) {
	e := newTestServer(t, true)

	rec := do(e, http.MethodPost, "/api/export/md/store/", `{"document": `+testDocument+`}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var stored business.StoredFile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stored))
	require.True(t, strings.HasSuffix(stored.Name, ".md"))
	assert.Equal(t, "/api/file/"+stored.Name+"/", stored.URL)

	rec = do(e, http.MethodGet, stored.URL, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "# Отчет\n\nВсе готово\n", rec.Body.String())
	assert.Equal(t, "attachment; filename="+stored.Name, rec.Header().Get(echo.HeaderContentDisposition))

	rec = do(e, http.MethodGet, "/api/file/00000000-0000-4000-8000-000000000000.pdf/", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 4002, errorCode(t, rec))

	rec = do(e, http.MethodGet, "/api/file/passwd/", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 5011, errorCode(t, rec))
}

func TestImportEndpoints(t *testing.T) {
	e := newTestServer(t, false)

	rec := do(e, http.MethodPost, "/api/import/markdown/", `{"markdown": "## Итоги\n\n- [ ] проверить"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var imported struct {
		HTML     string `json:"html"`
		Document struct {
			Type    string `json:"type"`
			Content []struct {
				Type string `json:"type"`
			} `json:"content"`
		} `json:"document"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &imported))
	assert.True(t, strings.HasPrefix(imported.HTML, "<h2>Итоги</h2>"))
	require.Len(t, imported.Document.Content, 2)
	assert.Equal(t, "taskList", imported.Document.Content[1].Type)

	rec = do(e, http.MethodPost, "/api/import/markdown/", `{"markdown": "[x](http://a\"onmouseover=alert(1))"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &imported))
	assert.Contains(t, imported.HTML, `href="http://a&quot;onmouseover=alert(1"`)
	assert.NotContains(t, imported.HTML, `"onmouseover`)

	rec = do(e, http.MethodPost, "/api/import/markdown/", `{"markdown": "x", "mode": "rst"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 3002, errorCode(t, rec))

	rec = do(e, http.MethodPost, "/api/import/markdown/", `{"markdown": ""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 3001, errorCode(t, rec))

	rec = do(e, http.MethodPost, "/api/import/html/", `{"html": "<p><strong>Hi</strong></p>"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var fromHTML business.HTMLImportResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fromHTML))
	assert.Equal(t, "**Hi**\n", fromHTML.Markdown)
	require.Len(t, fromHTML.Document.Content, 1)
}

func TestServiceEndpoints(t *testing.T) {
	e := newTestServer(t, false)

	rec := do(e, http.MethodGet, "/api/_health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodGet, "/api/version/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var version struct {
		Version string   `json:"version"`
		Storage bool     `json:"storage"`
		MCP     bool     `json:"mcp"`
		Formats []string `json:"formats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &version))
	assert.Equal(t, "test", version.Version)
	assert.False(t, version.Storage)
	assert.True(t, version.MCP)
	assert.Equal(t, []string{"md", "html", "pdf", "print"}, version.Formats)

	rec = do(e, http.MethodGet, "/api/swagger/doc.json", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var swagger struct {
		Info struct {
			Title string `json:"title"`
		} `json:"info"`
		Paths map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &swagger), rec.Body.String())
	assert.Equal(t, "DocExport API", swagger.Info.Title)
	for _, path := range []string{"/api/export/{format}/", "/api/export/{format}/store/", "/api/import/markdown/", "/api/import/html/", "/api/file/{fileName}/"} {
		assert.Contains(t, swagger.Paths, path)
	}

	rec = do(e, http.MethodGet, "/api/unknown/", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestMCPEndpoint(t *testing.T) {
	e := newTestServer(t, false)

	req := httptest.NewRequest(http.MethodPost, "/api/mcp/", strings.NewReader(
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"1"}}}`,
	))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAccept, "application/json, text/event-stream")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "docexport-mcp")
}
