// Package api exposes metadata extraction over HTTP.
package api

import (
	"context"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ankit-chaubey/metadata-extractor/core"
	"github.com/ankit-chaubey/metadata-extractor/core/session"
)

// Resolver produces the record for a file.
type Resolver interface {
	Resolve(ctx context.Context, f core.SelectedFile) (*core.Record, error)
}

// Handler serves the HTTP API.
type Handler struct {
	resolver Resolver
	sessions *session.Manager
	logger   *slog.Logger
	now      func() time.Time
}

// NewHandler creates a Handler.
func NewHandler(resolver Resolver, sessions *session.Manager, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{resolver: resolver, sessions: sessions, logger: logger, now: time.Now}
}

type recordResponse struct {
	File   string       `json:"file"`
	Fields *core.Record `json:"fields"`
}

type stateResponse struct {
	Status    session.Status `json:"status"`
	Selection string         `json:"selection,omitempty"`
	File      string         `json:"file,omitempty"`
	Fields    *core.Record   `json:"fields,omitempty"`
	Error     string         `json:"error,omitempty"`
}

func HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// HandleExtract resolves an uploaded file synchronously.
func (h *Handler) HandleExtract(c echo.Context) error {
	f, err := h.selectedFile(c)
	if err != nil {
		return err
	}
	rec, err := h.resolver.Resolve(c.Request().Context(), f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, recordResponse{File: f.Name, Fields: rec})
}

func (h *Handler) HandleCreateSession(c echo.Context) error {
	s := h.sessions.Create()
	return c.JSON(http.StatusCreated, map[string]string{"id": s.ID})
}

func (h *Handler) HandleGetSession(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}
	st := s.State()
	return c.JSON(http.StatusOK, stateResponse{
		Status:    st.Status,
		Selection: st.Selection,
		File:      st.FileName,
		Fields:    st.Record,
		Error:     st.Error,
	})
}

func (h *Handler) HandleDeleteSession(c echo.Context) error {
	id := c.Param("id")
	if !h.sessions.Delete(id) {
		return NewNotFoundError("session", id)
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleSelectFile starts extracting an uploaded file in the session and
// returns immediately with the selection id.
func (h *Handler) HandleSelectFile(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}
	f, err := h.selectedFile(c)
	if err != nil {
		return err
	}
	id := s.Select(f)
	return c.JSON(http.StatusAccepted, map[string]string{"selection": id})
}

// HandleReport serves the settled record as a text attachment.
func (h *Handler) HandleReport(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}
	st := s.State()
	if st.Status != session.StatusSucceeded {
		return NewConflictError("no metadata available, session is " + string(st.Status))
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, attachment(core.ReportFileName(st.FileName)))
	return c.Blob(http.StatusOK, echo.MIMETextPlainCharsetUTF8, []byte(core.Report(st.Record)))
}

// attachment builds a Content-Disposition value with filename quoted or
// RFC 2231 encoded as needed.
func attachment(filename string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": filename}); v != "" {
		return v
	}
	return "attachment"
}

func (h *Handler) session(c echo.Context) (*session.Session, error) {
	id := c.Param("id")
	s, ok := h.sessions.Get(id)
	if !ok {
		return nil, NewNotFoundError("session", id)
	}
	return s, nil
}

// selectedFile reads the "file" form part. An optional "lastModified" form
// value holds milliseconds since the epoch.
func (h *Handler) selectedFile(c echo.Context) (core.SelectedFile, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return core.SelectedFile{}, NewBadRequestError("missing file part", err)
	}
	data, err := readPart(fh)
	if err != nil {
		return core.SelectedFile{}, NewBadRequestError("cannot read file part", err)
	}

	modified := h.now()
	if ms := c.FormValue("lastModified"); ms != "" {
		n, err := strconv.ParseInt(ms, 10, 64)
		if err != nil {
			return core.SelectedFile{}, NewBadRequestError("lastModified must be milliseconds since the epoch", err)
		}
		modified = time.UnixMilli(n)
	}

	mimeType := fh.Header.Get(echo.HeaderContentType)
	if mimeType == echo.MIMEOctetStream {
		mimeType = ""
	}
	return core.NewMemoryFile(fh.Filename, mimeType, modified, data), nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return io.ReadAll(src)
}
