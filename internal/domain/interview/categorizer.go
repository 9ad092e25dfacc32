package interview

import (
	"context"
	"encoding/json"

	"github.com/okian/intervue/internal/adapters/llm"
	"github.com/okian/intervue/internal/domain/taxonomy"
	"github.com/okian/intervue/pkg/logger"
)

// Categorizer decides which skill of a domain an answer exercised.
type Categorizer struct {
	llm llm.Provider
	log logger.Logger
}

// NewCategorizer returns a categorizer backed by p.
func NewCategorizer(p llm.Provider, log logger.Logger) *Categorizer {
	if log == nil {
		log = logger.NewNop()
	}
	return &Categorizer{llm: p, log: log.Named("categorizer")}
}

// Categorize never fails. When the model is unavailable or answers with
// nothing usable the domain's first skill is used and proficiency follows
// the score. The returned score is always the evaluation score.
func (c *Categorizer) Categorize(ctx context.Context, question, answer string, score float64, d taxonomy.Domain) Categorization {
	fallback := Categorization{
		SkillName:  d.FirstSkill(),
		Proficient: score >= ProficiencyThreshold,
		Score:      score,
		Fallback:   true,
	}

	prompt, err := render("categorize", struct {
		Question, Answer, Domain string
		Score                    float64
		Skills                   []string
		Threshold                int
	}{question, answer, d.Name, score, d.Skills, ProficiencyThreshold})
	if err != nil {
		c.log.Error(ctx, "render categorize prompt", logger.Error(err))
		return fallback
	}

	resp, err := c.llm.Generate(llm.WithPurpose(ctx, "categorize"), llm.Request{
		Messages:  llm.UserPrompt(prompt),
		Schema:    categorizationSchema,
		MaxTokens: 256,
	})
	if err != nil {
		c.log.Warn(ctx, "categorization fell back to first skill",
			logger.String("domain", d.Key), logger.Error(err))
		return fallback
	}

	var parsed struct {
		SkillName  string `json:"skillName"`
		Proficient bool   `json:"proficient"`
	}
	if err := json.Unmarshal(resp.Content, &parsed); err != nil {
		c.log.Warn(ctx, "categorization unparseable", logger.Error(err))
		return fallback
	}
	return Categorization{
		SkillName:  orDefault(parsed.SkillName, d.FirstSkill()),
		Proficient: parsed.Proficient || score >= ProficiencyThreshold,
		Score:      score,
	}
}
