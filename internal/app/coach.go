package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/okian/intervue/internal/adapters/document"
	"github.com/okian/intervue/internal/domain/interview"
	"github.com/okian/intervue/internal/domain/model"
	"github.com/okian/intervue/pkg/logger"
)

// AnswerInput is one answered practice question.
type AnswerInput struct {
	Question       string
	ExpectedAnswer string
	UserAnswer     string
	DomainKey      string
}

// AnswerResult is the evaluation plus what happened to the progress write.
type AnswerResult struct {
	Evaluation     interview.Evaluation
	Categorization interview.Categorization
	ObservationID  string
	Queued         bool
	Saved          bool
	SaveError      error
}

// EvaluateAnswer scores an answer and records it against the user's
// progress. The domain is checked before any model call. The evaluation is
// returned even when recording fails; SaveError carries that failure.
func (s *Service) EvaluateAnswer(ctx context.Context, userID string, in AnswerInput) (*AnswerResult, error) {
	dom, err := s.tax.Resolve(in.DomainKey)
	if err != nil {
		return nil, err
	}
	ev, err := s.evaluator.Evaluate(ctx, in.Question, in.ExpectedAnswer, in.UserAnswer)
	if err != nil {
		return nil, err
	}
	cat := s.categorizer.Categorize(ctx, in.Question, in.UserAnswer, ev.Score, dom)

	obs := model.Observation{
		ID:         uuid.NewString(),
		UserID:     userID,
		DomainKey:  dom.Key,
		SkillName:  cat.SkillName,
		Proficient: cat.Proficient,
		Score:      cat.Score,
		At:         s.clock(),
	}
	res := &AnswerResult{Evaluation: ev, Categorization: cat, ObservationID: obs.ID}

	_, qerr := s.Enqueue(ctx, obs)
	if qerr == nil {
		res.Queued = true
		return res, nil
	}
	// Queue full or not running: apply on the request path.
	s.logger.Debug(ctx, "applying observation inline", logger.Error(qerr))
	if _, err := s.RecordObservation(ctx, obs); err != nil {
		s.logger.Error(ctx, "answer evaluated but progress not saved",
			logger.String("userId", userID), logger.Error(err))
		res.SaveError = err
		return res, nil
	}
	res.Saved = true
	return res, nil
}

// EvaluateReverseAnswer scores a reverse-interview answer. Progress is not
// touched.
func (s *Service) EvaluateReverseAnswer(ctx context.Context, question, expected, answer string) (interview.Evaluation, error) {
	return s.evaluator.Evaluate(ctx, question, expected, answer)
}

// GenerateQuestions returns six tailored questions, or the fallback set.
func (s *Service) GenerateQuestions(ctx context.Context, resume, jobDescription string, level interview.Level) []interview.Question {
	return s.questions.Generate(ctx, resume, jobDescription, level)
}

// GenerateReverseQuestions returns questions for the candidate to ask.
func (s *Service) GenerateReverseQuestions(ctx context.Context, jobDescription string) ([]interview.ReverseQuestion, error) {
	return s.questions.GenerateReverse(ctx, jobDescription)
}

// GenerateFlashcards returns study cards.
func (s *Service) GenerateFlashcards(ctx context.Context, resume, jobDescription string, n int) ([]interview.Flashcard, error) {
	return s.flashcards.Generate(ctx, resume, jobDescription, n)
}

// ExtractText returns the text of an uploaded document.
func (s *Service) ExtractText(_ context.Context, contentType, filename string, data []byte) (string, error) {
	kind := document.DetectType(contentType, filename, data)
	text, err := document.Extract(kind, data)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", filename, err)
	}
	return text, nil
}
