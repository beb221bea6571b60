package web

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/xls2vcard/internal/config"
	"github.com/JonMunkholm/xls2vcard/internal/core"
	"github.com/JonMunkholm/xls2vcard/internal/pdf"
	"github.com/JonMunkholm/xls2vcard/internal/table"
)

const sheet = "First,Last,Mail,Cell,Dept\n" +
	"Ana,Gomez,ana@x.com,5551234,Sales\n" +
	"Bo,,,,\n"

func newTestServer(t *testing.T, env map[string]string) *Server {
	t.Helper()
	cfg, err := config.LoadFrom(func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})
	require.NoError(t, err)

	svc := core.NewService(&table.Loader{}, pdf.New(cfg.Report.PageSize), core.Options{
		ReportTitle:   cfg.Report.Title,
		MaxConcurrent: cfg.Upload.MaxConcurrent,
		MaxWait:       cfg.Upload.MaxWaitTime,
	})
	return NewServer(svc, cfg)
}

// multipartRequest builds a POST with an optional file part and form fields.
func multipartRequest(t *testing.T, path, filename, content string, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"status":"ok","conversions":{"active":0,"available":8,"max_concurrent":8}}`,
		rec.Body.String())
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
}

func TestPreviewColumns(t *testing.T) {
	s := newTestServer(t, nil)

	for _, path := range []string{"/api/preview-columns", "/api/preview-columns/"} {
		rec := serve(s, multipartRequest(t, path, "people.csv", sheet, nil))
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.JSONEq(t, `{"columns":["First","Last","Mail","Cell","Dept"]}`, rec.Body.String())
	}
}

func TestPreviewColumns_Errors(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name     string
		req      *http.Request
		wantCode string
	}{
		{"no file", multipartRequest(t, "/api/preview-columns", "", "", nil), "FILE004"},
		{"unreadable", multipartRequest(t, "/api/preview-columns", "x.xlsx", "PK\x03\x04junk", nil), "FILE002"},
		{"empty sheet", multipartRequest(t, "/api/preview-columns", "x.csv", "\n\n", nil), "FILE005"},
		{"not multipart", httptest.NewRequest(http.MethodPost, "/api/preview-columns", strings.NewReader("x")), "REQ003"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(s, tt.req)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, rec).Code)
		})
	}
}

func TestConvert(t *testing.T) {
	s := newTestServer(t, nil)

	rec := serve(s, multipartRequest(t, "/api/convert", "people.csv", sheet, map[string]string{
		"mapping": `{"first_name":"First","last_name":"Last","email":"Mail","cell":"Cell"}`,
		"phones":  `[{"column":"cell","label":"mobile"}]`,
		"group":   "Dept",
		"label":   "  Work ",
	}))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/vcard", rec.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=contacts.vcf", rec.Header().Get("Content-Disposition"))
	assert.NotEmpty(t, rec.Header().Get("X-Conversion-ID"))

	want := "BEGIN:VCARD\nVERSION:3.0\nN:Gomez;Ana;;;\nFN:Work Ana Gomez\nEMAIL:ana@x.com\n" +
		"TEL;TYPE=MOBILE:5551234\nCATEGORIES:Sales\nEND:VCARD\n" +
		"BEGIN:VCARD\nVERSION:3.0\nN:;Bo;;;\nFN:Work Bo\nEND:VCARD\n"
	assert.Equal(t, want, rec.Body.String())
}

func TestConvert_Errors(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name     string
		filename string
		fields   map[string]string
		wantCode string
	}{
		{"missing mapping", "people.csv", nil, "REQ001"},
		{"empty mapping", "people.csv", map[string]string{"mapping": "{}"}, "REQ001"},
		{"missing file", "", map[string]string{"mapping": `{"first_name":"First"}`}, "REQ001"},
		{"mapping not object", "people.csv", map[string]string{"mapping": `[1]`}, "MAP001"},
		{"phones not array", "people.csv", map[string]string{"mapping": `{"first_name":"First"}`, "phones": `{}`}, "MAP002"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(s, multipartRequest(t, "/api/convert", tt.filename, sheet, tt.fields))
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, rec).Code)
		})
	}
}

func TestContactsFeedExportPDF(t *testing.T) {
	s := newTestServer(t, nil)

	rec := serve(s, multipartRequest(t, "/api/contacts", "people.csv", sheet, map[string]string{
		"mapping": `{"first_name":"First","last_name":"Last"}`,
		"phones":  `[{"column":"Cell"}]`,
	}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var preview struct {
		Columns  []string          `json:"columns"`
		Contacts []json.RawMessage `json:"contacts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &preview))
	require.Len(t, preview.Contacts, 2)
	assert.JSONEq(t,
		`{"name":"Ana Gomez","email":"","phones":[{"label":"CELL","number":"5551234"}],"group":""}`,
		string(preview.Contacts[0]))

	body, err := json.Marshal(map[string]any{"contacts": preview.Contacts})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/export-pdf", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	pdfRec := serve(s, req)

	require.Equal(t, http.StatusOK, pdfRec.Code, pdfRec.Body.String())
	assert.Equal(t, "application/pdf", pdfRec.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=contacts.pdf", pdfRec.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(pdfRec.Body.Bytes(), []byte("%PDF-")))
}

func TestExportPDF_Errors(t *testing.T) {
	s := newTestServer(t, map[string]string{"UPLOAD_MAX_FILE_SIZE": "64"})

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"empty list", `{"contacts":[]}`, http.StatusBadRequest, "PDF001"},
		{"absent list", `{}`, http.StatusBadRequest, "PDF001"},
		{"empty body", ``, http.StatusBadRequest, "PDF001"},
		{"bad json", `{"contacts":`, http.StatusBadRequest, "REQ002"},
		{"too large", `{"contacts":[{"name":"` + strings.Repeat("x", 100) + `"}]}`, http.StatusRequestEntityTooLarge, "FILE001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/export-pdf", strings.NewReader(tt.body))
			rec := serve(s, req)
			require.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, rec).Code)
		})
	}
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, map[string]string{
		"RATE_LIMIT_REQUESTS_PER_MINUTE": "1",
		"RATE_LIMIT_BURST":               "2",
	})

	get := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.RemoteAddr = "198.51.100.7:4000"
		return serve(s, req)
	}

	assert.Equal(t, http.StatusOK, get().Code)
	assert.Equal(t, http.StatusOK, get().Code)

	rec := get()
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE001", decodeError(t, rec).Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestRateLimitDisabled(t *testing.T) {
	s := newTestServer(t, map[string]string{
		"RATE_LIMIT_ENABLED": "false",
		"RATE_LIMIT_BURST":   "1",
	})

	for i := 0; i < 5; i++ {
		rec := serve(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(core.BadRequest("x", core.ErrNoFile)))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(core.Unavailable("x", core.ErrTooManyConversions)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, statusFor(&http.MaxBytesError{Limit: 1}))
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
}
