package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ankit-chaubey/metadata-extractor/core"
	"github.com/ankit-chaubey/metadata-extractor/core/resolve"
	"github.com/ankit-chaubey/metadata-extractor/core/session"
)

type testServer struct {
	e        *echo.Echo
	sessions *session.Manager
}

func newTestServer() *testServer {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	resolver := resolve.New(resolve.Options{Logger: logger})
	sessions := session.NewManager(resolver, logger)
	h := NewHandler(resolver, sessions, logger)
	return &testServer{e: NewServer(h, "", logger), sessions: sessions}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

// uploadRequest builds a multipart request carrying one file part. An empty
// contentType leaves the part typed as application/octet-stream.
func uploadRequest(t *testing.T, target, name, contentType string, data []byte, lastModified string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{"name": "file", "filename": name}))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)

	if lastModified != "" {
		require.NoError(t, w.WriteField("lastModified", lastModified))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

type fieldJSON struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

func TestHealth(t *testing.T) {
	s := newTestServer()
	rec := s.do(httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestExtractTextFile(t *testing.T) {
	s := newTestServer()
	rec := s.do(uploadRequest(t, "/api/extract", "notes.txt", "", []byte("hello"), "1700000000000"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		File   string      `json:"file"`
		Fields []fieldJSON `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "notes.txt", resp.File)
	require.Len(t, resp.Fields, 5)
	assert.Equal(t, fieldJSON{"File Name", "notes.txt"}, resp.Fields[0])
	assert.Equal(t, fieldJSON{"File Size", "0.00 KB"}, resp.Fields[1])
	assert.Equal(t, fieldJSON{"File Type", "text/plain"}, resp.Fields[2])
	assert.Equal(t, core.FormatTime(time.UnixMilli(1700000000000), ""), resp.Fields[3].Value)
	assert.Equal(t, fieldJSON{"MIME Type", "text/plain"}, resp.Fields[4])
}

func TestExtractKeepsDeclaredType(t *testing.T) {
	s := newTestServer()
	rec := s.do(uploadRequest(t, "/api/extract", "paper", "application/pdf", []byte("%PDF-1.4 /Title (Draft)"), ""))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `{"label":"PDF Title","value":"Draft"}`)
}

func TestExtractMissingFile(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/api/extract", nil)
	rec := s.do(req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"BAD_REQUEST"`)
}

func TestExtractBadLastModified(t *testing.T) {
	s := newTestServer()
	rec := s.do(uploadRequest(t, "/api/extract", "a.txt", "", []byte("x"), "yesterday"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExtractDecodeFailure(t *testing.T) {
	s := newTestServer()
	rec := s.do(uploadRequest(t, "/api/extract", "broken.png", "image/png", []byte("not an image"), ""))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var apiErr APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
	assert.Equal(t, "EXTRACTION_FAILED", apiErr.Code)
	assert.Contains(t, apiErr.Message, "Error extracting metadata: decode broken.png")
}

func createSession(t *testing.T, s *testServer) string {
	t.Helper()
	rec := s.do(httptest.NewRequest(http.MethodPost, "/api/sessions", nil))
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["id"])
	return resp["id"]
}

func TestSessionFlow(t *testing.T) {
	s := newTestServer()
	id := createSession(t, s)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/api/sessions/"+id, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"idle"}`, rec.Body.String())

	rec = s.do(uploadRequest(t, "/api/sessions/"+id+"/file", "a.txt", "text/plain", make([]byte, 1024), "1700000000000"))
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	var sel map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sel))

	sess, ok := s.sessions.Get(id)
	require.True(t, ok)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := sess.Wait(ctx, sel["selection"])
	require.NoError(t, err)

	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/sessions/"+id, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var st struct {
		Status    string      `json:"status"`
		Selection string      `json:"selection"`
		File      string      `json:"file"`
		Fields    []fieldJSON `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, "succeeded", st.Status)
	assert.Equal(t, sel["selection"], st.Selection)
	assert.Equal(t, "a.txt", st.File)
	assert.Len(t, st.Fields, 5)

	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/sessions/"+id+"/report", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "attachment; filename=metadata_a.txt.txt", rec.Header().Get(echo.HeaderContentDisposition))
	want := "File Name: a.txt\n" +
		"File Size: 1.00 KB\n" +
		"File Type: text/plain\n" +
		"Last Modified: " + core.FormatTime(time.UnixMilli(1700000000000), "") + "\n" +
		"MIME Type: text/plain"
	assert.Equal(t, want, rec.Body.String())
}

func TestReportBeforeSelection(t *testing.T) {
	s := newTestServer()
	id := createSession(t, s)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/api/sessions/"+id+"/report", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"CONFLICT"`)
}

func TestUnknownSession(t *testing.T) {
	s := newTestServer()
	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/api/sessions/nope", nil),
		httptest.NewRequest(http.MethodGet, "/api/sessions/nope/report", nil),
		httptest.NewRequest(http.MethodDelete, "/api/sessions/nope", nil),
		uploadRequest(t, "/api/sessions/nope/file", "a.txt", "", []byte("x"), ""),
	} {
		rec := s.do(req)
		assert.Equal(t, http.StatusNotFound, rec.Code, req.URL.Path)
	}
}

func TestDeleteSession(t *testing.T) {
	s := newTestServer()
	id := createSession(t, s)

	rec := s.do(httptest.NewRequest(http.MethodDelete, "/api/sessions/"+id, nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/sessions/"+id, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReportFileNameIsEscaped(t *testing.T) {
	s := newTestServer()
	id := createSession(t, s)

	rec := s.do(uploadRequest(t, "/api/sessions/"+id+"/file", `q"uote; x.txt`, "text/plain", []byte("x"), ""))
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	var sel map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sel))
	sess, _ := s.sessions.Get(id)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := sess.Wait(ctx, sel["selection"])
	require.NoError(t, err)

	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/sessions/"+id+"/report", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	header := rec.Header().Get(echo.HeaderContentDisposition)
	assert.Equal(t, `attachment; filename="metadata_q\"uote; x.txt.txt"`, header)
	disposition, params, err := mime.ParseMediaType(header)
	require.NoError(t, err)
	assert.Equal(t, "attachment", disposition)
	assert.Equal(t, `metadata_q"uote; x.txt.txt`, params["filename"])
}
