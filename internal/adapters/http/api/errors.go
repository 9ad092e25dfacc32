package api

import (
	"errors"
	"net/http"

	"github.com/okian/intervue/internal/adapters/document"
	"github.com/okian/intervue/internal/adapters/llm"
	"github.com/okian/intervue/internal/adapters/repository"
	service "github.com/okian/intervue/internal/app"
	"github.com/okian/intervue/internal/domain/model"
	"github.com/okian/intervue/internal/domain/progress"
	"github.com/okian/intervue/internal/domain/taxonomy"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("missing " + UserIDHeader + " header")
	ErrNotFound     = errors.New("not found")
	ErrTooLarge     = errors.New("request body too large")
)

var badRequest = []error{
	ErrBadRequest,
	model.ErrInvalidObservation,
	taxonomy.ErrInvalidDomain,
	progress.ErrInvalidScore,
	progress.ErrUnknownCategory,
	progress.ErrUnknownSkill,
	document.ErrUnsupportedType,
	document.ErrNoText,
	document.ErrUnreadable,
}

// classify maps an error to an HTTP status and a machine-readable code.
func classify(err error) (int, string) {
	for _, target := range badRequest {
		if errors.Is(err, target) {
			return http.StatusBadRequest, "bad_request"
		}
	}
	switch {
	case errors.Is(err, ErrTooLarge):
		return http.StatusRequestEntityTooLarge, "too_large"
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, ErrNotFound), errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, repository.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, service.ErrBackpressure):
		return http.StatusServiceUnavailable, "backpressure"
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	case llm.IsUpstream(err):
		return http.StatusBadGateway, "upstream_error"
	}
	return http.StatusInternalServerError, "internal_error"
}
