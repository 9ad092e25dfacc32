package interview

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/okian/intervue/internal/adapters/llm"
	"github.com/okian/intervue/pkg/logger"
)

// DefaultFlashcardCount is used when the caller does not ask for a number.
const DefaultFlashcardCount = 10

// FlashcardGenerator writes study cards from a resume and job description.
type FlashcardGenerator struct {
	llm llm.Provider
	log logger.Logger
}

// NewFlashcardGenerator returns a generator backed by p.
func NewFlashcardGenerator(p llm.Provider, log logger.Logger) *FlashcardGenerator {
	if log == nil {
		log = logger.NewNop()
	}
	return &FlashcardGenerator{llm: p, log: log.Named("flashcards")}
}

// Generate returns up to n cards. The mock provider yields the canned set.
func (f *FlashcardGenerator) Generate(ctx context.Context, resume, jobDescription string, n int) ([]Flashcard, error) {
	if llm.IsMock(f.llm) {
		return MockFlashcards(), nil
	}
	if n <= 0 {
		n = DefaultFlashcardCount
	}
	prompt, err := render("flashcards", struct {
		Resume, JobDescription string
		Count                  int
	}{resume, jobDescription, n})
	if err != nil {
		return nil, err
	}
	resp, err := f.llm.Generate(llm.WithPurpose(ctx, "flashcards"), llm.Request{
		Messages:    llm.UserPrompt(prompt),
		Schema:      flashcardsSchema,
		MaxTokens:   4096,
		Temperature: 0.7,
	})
	if err != nil {
		return nil, fmt.Errorf("generate flashcards: %w", err)
	}
	var out struct {
		Flashcards []Flashcard `json:"flashcards"`
	}
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, &llm.ErrInvalidResponse{Content: resp.Content, Err: err}
	}
	if len(out.Flashcards) == 0 {
		return nil, &llm.ErrInvalidResponse{Content: resp.Content, Err: fmt.Errorf("no flashcards")}
	}
	for i, c := range out.Flashcards {
		out.Flashcards[i] = normalizeFlashcard(c)
	}
	return out.Flashcards, nil
}

func normalizeFlashcard(c Flashcard) Flashcard {
	c.Question = orDefault(c.Question, "Tell me about your experience.")
	c.ExpectedAnswer = orDefault(c.ExpectedAnswer, "Provide a detailed response based on your background.")
	switch c.Difficulty {
	case "easy", "medium", "hard":
	default:
		c.Difficulty = "medium"
	}
	if len(c.Tags) == 0 {
		c.Tags = []string{"general"}
	}
	return c
}
