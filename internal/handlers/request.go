package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/apierror"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/auth"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/logging"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/response"
	"github.com/sahil-shelar/GlitchStreamingPlatform/internal/storage"
)

const (
	maxJSONBytes      = 1 << 20
	maxUploadBytes    = 1 << 30
	multipartMemory   = 32 << 20
	multipartMimeType = "multipart/form-data"
)

// decodeJSON reads a bounded JSON body into dst. An empty body leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		logging.FromContext(r.Context()).Warn("invalid request payload", "error", err)
		return apierror.New(apierror.Validation, "invalid request body")
	}
	return nil
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == multipartMimeType
}

// uploadForm is a parsed multipart request. Close releases opened files and
// temporary spill files.
type uploadForm struct {
	r     *http.Request
	files []multipart.File
}

func parseUploadForm(w http.ResponseWriter, r *http.Request) (*uploadForm, error) {
	if !isMultipart(r) {
		return nil, apierror.Validationf("expected %s request", multipartMimeType)
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		logging.FromContext(r.Context()).Warn("invalid multipart payload", "error", err)
		return nil, apierror.New(apierror.Validation, "invalid multipart body")
	}
	return &uploadForm{r: r}, nil
}

func (f *uploadForm) value(name string) string {
	return strings.TrimSpace(f.r.FormValue(name))
}

// optionalValue returns nil when the field was not sent at all.
func (f *uploadForm) optionalValue(name string) *string {
	if _, ok := f.r.MultipartForm.Value[name]; !ok {
		return nil
	}
	value := f.value(name)
	return &value
}

// file returns nil when the field carries no file.
func (f *uploadForm) file(name string) (*storage.Upload, error) {
	file, header, err := f.r.FormFile(name)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, apierror.Wrap(apierror.Validation, "unreadable file "+name, err)
	}
	f.files = append(f.files, file)
	return &storage.Upload{Filename: header.Filename, Body: file}, nil
}

func (f *uploadForm) Close() {
	for _, file := range f.files {
		_ = file.Close()
	}
	if f.r.MultipartForm != nil {
		_ = f.r.MultipartForm.RemoveAll()
	}
}

// viewer returns the authenticated user id or writes Unauthorized.
func viewer(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := auth.ViewerID(r.Context())
	if id == "" {
		response.Error(r.Context(), w, apierror.New(apierror.Unauthorized, "authentication required"))
		return "", false
	}
	return id, true
}
