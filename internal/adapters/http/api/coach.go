package api

import (
	"fmt"
	"net/http"
	"strings"

	service "github.com/okian/intervue/internal/app"
	"github.com/okian/intervue/internal/domain/interview"
	"github.com/okian/intervue/pkg/logger"
)

// CoachHandler serves the interview practice endpoints.
type CoachHandler struct {
	deps    CoachDependencies
	maxBody int64
	log     logger.Logger
}

// NewCoachHandler creates a new coach handler.
func NewCoachHandler(deps CoachDependencies, maxBody int64, log logger.Logger) *CoachHandler {
	return &CoachHandler{deps: deps, maxBody: maxBody, log: log}
}

type answerRequest struct {
	Question       string `json:"question"`
	ExpectedAnswer string `json:"expectedAnswer"`
	UserAnswer     string `json:"userAnswer"`
	Domain         string `json:"domain"`
}

func (a answerRequest) validate(needDomain bool) error {
	missing := blank(a.Question) || blank(a.ExpectedAnswer) || blank(a.UserAnswer)
	if needDomain && blank(a.Domain) {
		missing = true
	}
	if missing {
		return fmt.Errorf("%w: question, expectedAnswer, userAnswer and domain are required", ErrBadRequest)
	}
	return nil
}

type evaluateAnswerResponse struct {
	interview.Evaluation
	Skill         string `json:"skill"`
	ObservationID string `json:"observationId"`
	ProgressSaved bool   `json:"progressSaved"`
	Queued        bool   `json:"queued"`
}

// HandleEvaluateAnswer handles POST /evaluate-answer requests. Feedback is
// returned even when the progress write fails.
func (h *CoachHandler) HandleEvaluateAnswer(w http.ResponseWriter, r *http.Request) {
	const op = "api.evaluate_answer"
	ctx := r.Context()

	userID := strings.TrimSpace(r.Header.Get(UserIDHeader))
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized", ErrUnauthorized)
		return
	}
	var req answerRequest
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		writeFailure(ctx, h.log, w, op, err)
		return
	}
	if err := req.validate(true); err != nil {
		writeFailure(ctx, h.log, w, op, err)
		return
	}

	res, err := h.deps.EvaluateAnswer(ctx, userID, service.AnswerInput{
		Question:       req.Question,
		ExpectedAnswer: req.ExpectedAnswer,
		UserAnswer:     req.UserAnswer,
		DomainKey:      req.Domain,
	})
	if err != nil {
		writeFailure(ctx, h.log, w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, evaluateAnswerResponse{
		Evaluation:    res.Evaluation,
		Skill:         res.Categorization.SkillName,
		ObservationID: res.ObservationID,
		ProgressSaved: res.Saved,
		Queued:        res.Queued,
	})
}

type questionsRequest struct {
	ResumeText         string `json:"resumeText"`
	JobDescriptionText string `json:"jobDescriptionText"`
	CandidateLevel     string `json:"candidateLevel"`
	Count              int    `json:"count"`
}

// HandleGenerateQuestions handles POST /generate-questions requests.
func (h *CoachHandler) HandleGenerateQuestions(w http.ResponseWriter, r *http.Request) {
	const op = "api.generate_questions"
	ctx := r.Context()

	var req questionsRequest
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		writeFailure(ctx, h.log, w, op, err)
		return
	}
	if blank(req.ResumeText) || blank(req.JobDescriptionText) {
		writeError(w, http.StatusBadRequest, "bad_request",
			fmt.Errorf("%w: resumeText and jobDescriptionText are required", ErrBadRequest))
		return
	}
	qs := h.deps.GenerateQuestions(ctx, req.ResumeText, req.JobDescriptionText, interview.Level(req.CandidateLevel))
	writeJSON(w, http.StatusOK, map[string]any{"questions": qs})
}

// HandleGenerateReverseQuestions handles POST /reverse-interview/generate-questions.
func (h *CoachHandler) HandleGenerateReverseQuestions(w http.ResponseWriter, r *http.Request) {
	const op = "api.reverse_generate_questions"
	ctx := r.Context()

	var req questionsRequest
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		writeFailure(ctx, h.log, w, op, err)
		return
	}
	if blank(req.JobDescriptionText) {
		writeError(w, http.StatusBadRequest, "bad_request",
			fmt.Errorf("%w: jobDescriptionText is required", ErrBadRequest))
		return
	}
	qs, err := h.deps.GenerateReverseQuestions(ctx, req.JobDescriptionText)
	if err != nil {
		writeFailure(ctx, h.log, w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"questions": qs})
}

// HandleEvaluateReverseAnswer handles POST /reverse-interview/evaluate-answer.
func (h *CoachHandler) HandleEvaluateReverseAnswer(w http.ResponseWriter, r *http.Request) {
	const op = "api.reverse_evaluate_answer"
	ctx := r.Context()

	var req answerRequest
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		writeFailure(ctx, h.log, w, op, err)
		return
	}
	if err := req.validate(false); err != nil {
		writeFailure(ctx, h.log, w, op, err)
		return
	}
	ev, err := h.deps.EvaluateReverseAnswer(ctx, req.Question, req.ExpectedAnswer, req.UserAnswer)
	if err != nil {
		writeFailure(ctx, h.log, w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"evaluation": ev})
}

// HandleGenerateFlashcards handles POST /flashcards requests.
func (h *CoachHandler) HandleGenerateFlashcards(w http.ResponseWriter, r *http.Request) {
	const op = "api.flashcards"
	ctx := r.Context()

	var req questionsRequest
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		writeFailure(ctx, h.log, w, op, err)
		return
	}
	if blank(req.ResumeText) && blank(req.JobDescriptionText) {
		writeError(w, http.StatusBadRequest, "bad_request",
			fmt.Errorf("%w: resumeText or jobDescriptionText is required", ErrBadRequest))
		return
	}
	cards, err := h.deps.GenerateFlashcards(ctx, req.ResumeText, req.JobDescriptionText, req.Count)
	if err != nil {
		writeFailure(ctx, h.log, w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"flashcards": cards})
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }
