package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/jonathan/hiring-coach/internal/apperr"
	"github.com/jonathan/hiring-coach/internal/ingestion"
	"github.com/jonathan/hiring-coach/internal/server/middleware"
	"github.com/jonathan/hiring-coach/internal/types"
)

// validatable is a request DTO with struct-tag validation.
type validatable interface {
	Validate() error
}

// decodeJSON decodes the request body into dst and validates it. An empty
// body decodes to the zero value.
func decodeJSON(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err != nil && !errors.Is(err, io.EOF) {
		return apperr.Invalid("body", "invalid request body: %v", err)
	}
	if v, ok := dst.(validatable); ok {
		return v.Validate()
	}
	return nil
}

// pathID parses a UUID path parameter.
func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, apperr.Invalid(name, "invalid %s format", name)
	}
	return id, nil
}

// authorize rejects a request whose bearer user is not owner.
func authorize(r *http.Request, owner uuid.UUID) error {
	if !middleware.Authorized(r, owner) {
		return fmt.Errorf("%w: resource belongs to another user", errForbidden)
	}
	return nil
}

// upload is a document received either as a multipart file or as JSON text.
type upload struct {
	ingestion.Upload
	Interviewer     string
	DurationMinutes int
}

// readUpload reads a document upload. Multipart requests carry the document
// in the "file" field; anything else is decoded as a TextUploadRequest.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var req types.TextUploadRequest
		if err := decodeJSON(r, &req); err != nil {
			return upload{}, err
		}
		return upload{
			Upload:          ingestion.Upload{Text: req.Content, FileName: req.FileName},
			Interviewer:     req.Interviewer,
			DurationMinutes: req.DurationMinutes,
		}, nil
	}

	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return upload{}, apperr.Invalid("file", "upload exceeds %d bytes", tooLarge.Limit)
		}
		return upload{}, apperr.Invalid("file", "invalid multipart form: %v", err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return upload{}, apperr.Invalid("file", "multipart field \"file\" is required")
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return upload{}, apperr.Invalid("file", "failed to read upload: %v", err)
	}

	out := upload{
		Upload: ingestion.Upload{
			Data:     data,
			FileName: header.Filename,
			MimeType: header.Header.Get("Content-Type"),
		},
		Interviewer: r.FormValue("interviewer"),
	}
	if v := r.FormValue("duration_minutes"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return upload{}, apperr.Invalid("duration_minutes", "must be a non-negative integer")
		}
		out.DurationMinutes = n
	}
	return out, nil
}
