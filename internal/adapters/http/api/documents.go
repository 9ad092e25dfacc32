package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/intervue/internal/adapters/document"
	"github.com/okian/intervue/pkg/logger"
)

// DocumentHandler turns uploaded resumes and job descriptions into text.
type DocumentHandler struct {
	deps  CoachDependencies
	limit int64
	log   logger.Logger
}

// NewDocumentHandler creates a new document handler accepting uploads of
// at most limit bytes.
func NewDocumentHandler(deps CoachDependencies, limit int64, log logger.Logger) *DocumentHandler {
	return &DocumentHandler{deps: deps, limit: limit, log: log}
}

// HandleParseDocument handles POST /parse-document with a multipart "file".
func (h *DocumentHandler) HandleParseDocument(w http.ResponseWriter, r *http.Request) {
	const op = "api.parse_document"
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, h.limit+(1<<20))
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "too_large", err)
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: no file provided", ErrBadRequest))
		return
	}
	defer file.Close()

	data, err := document.ReadAll(file, h.limit)
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "too_large", err)
		return
	}
	text, err := h.deps.ExtractText(ctx, header.Header.Get("Content-Type"), header.Filename, data)
	if err != nil {
		writeFailure(ctx, h.log, w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}
