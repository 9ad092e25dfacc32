package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/intervue/internal/domain/model"
	"github.com/okian/intervue/internal/domain/taxonomy"
	"github.com/okian/intervue/pkg/logger"
)

// ProgressHandler serves the progress core.
type ProgressHandler struct {
	deps    ProgressDependencies
	maxBody int64
	log     logger.Logger
}

// NewProgressHandler creates a new progress handler.
func NewProgressHandler(deps ProgressDependencies, maxBody int64, log logger.Logger) *ProgressHandler {
	return &ProgressHandler{deps: deps, maxBody: maxBody, log: log}
}

type domainsResponse struct {
	Domains []taxonomy.Domain `json:"domains"`
}

// HandleListDomains handles GET /domains requests.
func (h *ProgressHandler) HandleListDomains(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, domainsResponse{Domains: h.deps.Taxonomy().Domains()})
}

// HandlePostObservation handles POST /observations requests. The body is
// applied synchronously unless async=true is given, in which case it is
// queued and 202 is returned.
func (h *ProgressHandler) HandlePostObservation(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_observation"
	ctx := r.Context()

	var o model.Observation
	if err := decodeJSON(w, r, h.maxBody, &o); err != nil {
		writeFailure(ctx, h.log, w, op, err)
		return
	}
	if strings.TrimSpace(o.UserID) == "" {
		o.UserID = strings.TrimSpace(r.Header.Get(UserIDHeader))
	}

	if async, _ := strconv.ParseBool(r.URL.Query().Get("async")); async {
		dup, err := h.deps.Enqueue(ctx, o)
		if err != nil {
			writeFailure(ctx, h.log, w, op, err)
			return
		}
		status := "accepted"
		if dup {
			status = "duplicate"
		}
		writeJSON(w, http.StatusAccepted, ackResponse{Status: status, Duplicate: dup})
		return
	}

	res, err := h.deps.RecordObservation(ctx, o)
	if err != nil {
		writeFailure(ctx, h.log, w, op, err)
		return
	}
	if res.Progress == nil {
		// Duplicate of an observation whose document was since purged.
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}
	writeJSON(w, http.StatusOK, newProgressResponse(res.Progress))
}

// HandleGetProgress handles GET /progress/{userId} requests.
func (h *ProgressHandler) HandleGetProgress(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_progress"
	ctx := r.Context()

	userID := strings.TrimSpace(r.PathValue("userId"))
	if userID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	doc, err := h.deps.Progress(ctx, userID)
	if err != nil {
		writeFailure(ctx, h.log, w, op, err)
		return
	}
	if doc == nil {
		writeError(w, http.StatusNotFound, "not_found", ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, newProgressResponse(doc))
}
