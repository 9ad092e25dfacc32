package interview

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/okian/intervue/internal/adapters/llm"
	"github.com/okian/intervue/pkg/logger"
)

const defaultFeedback = "Unable to provide feedback at this time."

// Evaluator scores a candidate answer against the expected one.
type Evaluator struct {
	llm llm.Provider
	log logger.Logger
}

// NewEvaluator returns an evaluator backed by p.
func NewEvaluator(p llm.Provider, log logger.Logger) *Evaluator {
	if log == nil {
		log = logger.NewNop()
	}
	return &Evaluator{llm: p, log: log.Named("evaluator")}
}

// Evaluate asks the model for feedback. Model failures are returned as
// errors; malformed fields are replaced with neutral defaults.
func (e *Evaluator) Evaluate(ctx context.Context, question, expected, answer string) (Evaluation, error) {
	prompt, err := render("evaluate", struct{ Question, ExpectedAnswer, Answer string }{question, expected, answer})
	if err != nil {
		return Evaluation{}, err
	}
	resp, err := e.llm.Generate(llm.WithPurpose(ctx, "evaluate"), llm.Request{
		Messages:    llm.UserPrompt(prompt),
		Schema:      evaluationSchema,
		MaxTokens:   1024,
		Temperature: 0.2,
	})
	if err != nil {
		return Evaluation{}, fmt.Errorf("evaluate answer: %w", err)
	}
	return parseEvaluation(resp.Content)
}

func parseEvaluation(raw json.RawMessage) (Evaluation, error) {
	var out struct {
		IsCorrect any    `json:"isCorrect"`
		Feedback  string `json:"feedback"`
		Score     any    `json:"score"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return Evaluation{}, &llm.ErrInvalidResponse{Content: raw, Err: err}
	}
	ev := Evaluation{Feedback: orDefault(out.Feedback, defaultFeedback), Score: 50}
	if b, ok := out.IsCorrect.(bool); ok {
		ev.IsCorrect = b
	}
	if s, ok := out.Score.(float64); ok && s >= 0 && s <= 100 {
		ev.Score = s
	}
	return ev, nil
}
