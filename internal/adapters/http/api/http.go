// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	service "github.com/okian/intervue/internal/app"
	"github.com/okian/intervue/internal/domain/interview"
	"github.com/okian/intervue/internal/domain/model"
	"github.com/okian/intervue/internal/domain/progress"
	"github.com/okian/intervue/internal/domain/taxonomy"
	"github.com/okian/intervue/pkg/logger"
)

// DefaultMaxUploadBytes bounds /parse-document uploads.
const DefaultMaxUploadBytes = 10 << 20

// DefaultMaxBodyBytes caps JSON request bodies.
const DefaultMaxBodyBytes = 1 << 20

// UserIDHeader carries the id of the user authenticated upstream.
const UserIDHeader = "X-User-ID"

// ProgressDependencies are the progress core operations.
type ProgressDependencies interface {
	RecordObservation(ctx context.Context, o model.Observation) (*service.RecordResult, error)
	Enqueue(ctx context.Context, o model.Observation) (bool, error)
	Progress(ctx context.Context, userID string) (*progress.UserProgress, error)
	Taxonomy() *taxonomy.Taxonomy
}

// CoachDependencies are the interview practice operations.
type CoachDependencies interface {
	EvaluateAnswer(ctx context.Context, userID string, in service.AnswerInput) (*service.AnswerResult, error)
	EvaluateReverseAnswer(ctx context.Context, question, expected, answer string) (interview.Evaluation, error)
	GenerateQuestions(ctx context.Context, resume, jobDescription string, level interview.Level) []interview.Question
	GenerateReverseQuestions(ctx context.Context, jobDescription string) ([]interview.ReverseQuestion, error)
	GenerateFlashcards(ctx context.Context, resume, jobDescription string, n int) ([]interview.Flashcard, error)
	ExtractText(ctx context.Context, contentType, filename string, data []byte) (string, error)
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ProgressDependencies
	CoachDependencies
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	progressHandler *ProgressHandler
	coachHandler    *CoachHandler
	documentHandler *DocumentHandler
	log             logger.Logger
}

// Option configures a Server.
type Option func(*serverConfig)

type serverConfig struct {
	maxUploadBytes int64
	maxBodyBytes   int64
	log            logger.Logger
}

// WithMaxUploadBytes bounds the size of uploaded documents.
func WithMaxUploadBytes(n int64) Option {
	return func(c *serverConfig) {
		if n > 0 {
			c.maxUploadBytes = n
		}
	}
}

// WithMaxBodyBytes bounds the size of JSON request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(c *serverConfig) {
		if n > 0 {
			c.maxBodyBytes = n
		}
	}
}

// WithLogger sets the logger used for request logging.
func WithLogger(l logger.Logger) Option {
	return func(c *serverConfig) {
		if l != nil {
			c.log = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	cfg := serverConfig{maxUploadBytes: DefaultMaxUploadBytes, maxBodyBytes: DefaultMaxBodyBytes}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.log == nil {
		cfg.log = logger.Get().Named("http")
	}
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(deps),
		progressHandler: NewProgressHandler(deps, cfg.maxBodyBytes, cfg.log),
		coachHandler:    NewCoachHandler(deps, cfg.maxBodyBytes, cfg.log),
		documentHandler: NewDocumentHandler(deps, cfg.maxUploadBytes, cfg.log),
		log:             cfg.log,
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("GET /domains", MetricsMiddleware(s.progressHandler.HandleListDomains, "domains"))
	mux.HandleFunc("POST /observations", MetricsMiddleware(s.progressHandler.HandlePostObservation, "observations"))
	mux.HandleFunc("GET /progress/{userId}", MetricsMiddleware(s.progressHandler.HandleGetProgress, "progress"))

	mux.HandleFunc("POST /evaluate-answer", MetricsMiddleware(s.coachHandler.HandleEvaluateAnswer, "evaluate_answer"))
	mux.HandleFunc("POST /generate-questions", MetricsMiddleware(s.coachHandler.HandleGenerateQuestions, "generate_questions"))
	mux.HandleFunc("POST /reverse-interview/generate-questions",
		MetricsMiddleware(s.coachHandler.HandleGenerateReverseQuestions, "reverse_generate_questions"))
	mux.HandleFunc("POST /reverse-interview/evaluate-answer",
		MetricsMiddleware(s.coachHandler.HandleEvaluateReverseAnswer, "reverse_evaluate_answer"))
	mux.HandleFunc("POST /flashcards", MetricsMiddleware(s.coachHandler.HandleGenerateFlashcards, "flashcards"))

	mux.HandleFunc("POST /parse-document", MetricsMiddleware(s.documentHandler.HandleParseDocument, "parse_document"))
}

// Handler wraps mux with request-scoped middleware.
func (s *Server) Handler(mux *http.ServeMux) http.Handler {
	return RequestID(AccessLog(mux, s.log))
}

// progressResponse is the serialized progress document.
type progressResponse struct {
	UserID     string              `json:"userId"`
	Categories []progress.Category `json:"categories"`
	UpdatedAt  time.Time           `json:"updatedAt"`
}

func newProgressResponse(p *progress.UserProgress) progressResponse {
	cats := p.Categories
	if cats == nil {
		cats = []progress.Category{}
	}
	return progressResponse{UserID: p.UserID, Categories: cats, UpdatedAt: p.UpdatedAt}
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps err to a status and logs server-side failures.
func writeFailure(ctx context.Context, log logger.Logger, w http.ResponseWriter, op string, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		log.Error(ctx, "request failed", logger.String("op", op), logger.Error(err))
	}
	writeError(w, status, code, err)
}

// decodeJSON reads at most limit bytes of r's body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit))
	if err := dec.Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return fmt.Errorf("%w: body exceeds %d bytes", ErrTooLarge, tooBig.Limit)
		}
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return nil
}
