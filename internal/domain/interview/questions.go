package interview

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/okian/intervue/internal/adapters/llm"
	"github.com/okian/intervue/pkg/logger"
)

const genericProjectQuestion = "Tell me about a specific project you worked on and the technologies you used."

var (
	bracketed = regexp.MustCompile(`\[[^\]]*\]`)

	placeholderPhrases = []string{"specific technology", "specific skill", "replace with", "placeholder"}

	// Frameworks a job description often names that a resume may not.
	frameworks = []string{"react", "angular", "vue", "django", "flask", "spring", "laravel", "rails", "express"}
)

// QuestionGenerator writes interview and reverse-interview questions.
type QuestionGenerator struct {
	llm llm.Provider
	log logger.Logger
}

// NewQuestionGenerator returns a generator backed by p.
func NewQuestionGenerator(p llm.Provider, log logger.Logger) *QuestionGenerator {
	if log == nil {
		log = logger.NewNop()
	}
	return &QuestionGenerator{llm: p, log: log.Named("questions")}
}

// Generate returns six questions tailored to the resume. It never fails:
// any model problem yields the fixed fallback set.
func (g *QuestionGenerator) Generate(ctx context.Context, resume, jobDescription string, level Level) []Question {
	if level == "" {
		level = EntryLevel
	}
	qs, err := g.generate(ctx, resume, jobDescription, level)
	if err != nil {
		g.log.Warn(ctx, "using fallback interview questions", logger.Error(err))
		return FallbackQuestions()
	}
	return qs
}

func (g *QuestionGenerator) generate(ctx context.Context, resume, jd string, level Level) ([]Question, error) {
	prompt, err := render("questions", struct {
		Resume, JobDescription string
		Level                  Level
		Mix                    Distribution
	}{resume, jd, level, DistributionFor(level)})
	if err != nil {
		return nil, err
	}
	resp, err := g.llm.Generate(llm.WithPurpose(ctx, "questions"), llm.Request{
		Messages:    llm.UserPrompt(prompt),
		Schema:      questionsSchema,
		MaxTokens:   2048,
		Temperature: 0.7,
	})
	if err != nil {
		return nil, err
	}
	var out struct {
		Questions []Question `json:"questions"`
	}
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, &llm.ErrInvalidResponse{Content: resp.Content, Err: err}
	}
	if len(out.Questions) == 0 {
		return nil, &llm.ErrInvalidResponse{Content: resp.Content, Err: fmt.Errorf("no questions")}
	}
	resumeLower := strings.ToLower(resume)
	for i := range out.Questions {
		out.Questions[i] = normalizeQuestion(out.Questions[i], i, resumeLower)
	}
	return out.Questions, nil
}

func normalizeQuestion(q Question, i int, resumeLower string) Question {
	text := orDefault(q.Question, "Tell me about your experience.")
	if hasPlaceholder(text) || mentionsForeignFramework(text, resumeLower) {
		text = genericProjectQuestion
	}
	q.Question = text
	q.ID = orDefault(q.ID, fmt.Sprintf("q%d", i+1))
	q.Category = orDefault(q.Category, "General")
	q.Tips = orDefault(q.Tips, "Be specific and provide concrete examples.")
	if !q.Difficulty.valid() {
		q.Difficulty = Medium
	}
	return q
}

func hasPlaceholder(text string) bool {
	if strings.Contains(text, "[") {
		return true
	}
	lower := strings.ToLower(text)
	for _, p := range placeholderPhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

func mentionsForeignFramework(text, resumeLower string) bool {
	lower := strings.ToLower(text)
	for _, f := range frameworks {
		if strings.Contains(lower, f) && !strings.Contains(resumeLower, f) {
			return true
		}
	}
	return false
}

// GenerateReverse returns questions for the candidate to ask. The mock
// provider yields the canned set.
func (g *QuestionGenerator) GenerateReverse(ctx context.Context, jobDescription string) ([]ReverseQuestion, error) {
	if llm.IsMock(g.llm) {
		return MockReverseQuestions(), nil
	}
	prompt, err := render("reverse", struct{ JobDescription string }{jobDescription})
	if err != nil {
		return nil, err
	}
	resp, err := g.llm.Generate(llm.WithPurpose(ctx, "reverse_questions"), llm.Request{
		Messages:    llm.UserPrompt(prompt),
		Schema:      reverseQuestionsSchema,
		MaxTokens:   3072,
		Temperature: 0.7,
	})
	if err != nil {
		return nil, fmt.Errorf("generate reverse questions: %w", err)
	}
	var out struct {
		Questions []ReverseQuestion `json:"questions"`
	}
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, &llm.ErrInvalidResponse{Content: resp.Content, Err: err}
	}
	if len(out.Questions) == 0 {
		return nil, &llm.ErrInvalidResponse{Content: resp.Content, Err: fmt.Errorf("no questions")}
	}
	for i, q := range out.Questions {
		q.ID = orDefault(q.ID, fmt.Sprintf("generated-rev-q-%d", i))
		q.Question = bracketed.ReplaceAllString(orDefault(q.Question, "Generated question"), "(specific detail)")
		q.Tips = orDefault(q.Tips, "No tips provided.")
		q.ExpectedAnswer = orDefault(q.ExpectedAnswer, "No expected answer provided.")
		if !q.Difficulty.valid() {
			q.Difficulty = Medium
		}
		out.Questions[i] = q
	}
	return out.Questions, nil
}
