// Package interview turns model output into evaluations, skill
// categorizations, practice questions and flashcards. Every generator
// normalizes what the model returns so callers always see complete values.
package interview

import "strings"

// ProficiencyThreshold is the score at or above which a skill counts as
// proficient when the model does not say otherwise.
const ProficiencyThreshold = 70

// Evaluation is the feedback shown to the candidate for one answer.
type Evaluation struct {
	IsCorrect bool    `json:"isCorrect"`
	Feedback  string  `json:"feedback"`
	Score     float64 `json:"score"`
}

// Categorization maps an evaluated answer onto one taxonomy skill.
type Categorization struct {
	SkillName  string  `json:"skillName"`
	Proficient bool    `json:"proficient"`
	Score      float64 `json:"score"`
	Fallback   bool    `json:"-"`
}

// Difficulty of a practice question.
type Difficulty string

const (
	Basic  Difficulty = "Basic"
	Easy   Difficulty = "Easy"
	Medium Difficulty = "Medium"
	Hard   Difficulty = "Hard"
)

func (d Difficulty) valid() bool {
	switch d {
	case Basic, Easy, Medium, Hard:
		return true
	}
	return false
}

// Question is a generated interview question.
type Question struct {
	ID         string     `json:"id"`
	Question   string     `json:"question"`
	Category   string     `json:"category"`
	Difficulty Difficulty `json:"difficulty"`
	Tips       string     `json:"tips"`
}

// ReverseQuestion is a question the candidate asks the interviewer, with
// the kind of answer they can expect.
type ReverseQuestion struct {
	ID             string     `json:"id"`
	Question       string     `json:"question"`
	Difficulty     Difficulty `json:"difficulty"`
	Tips           string     `json:"tips"`
	ExpectedAnswer string     `json:"expectedAnswer"`
}

// Flashcard is a self-study card.
type Flashcard struct {
	Question       string   `json:"question"`
	ExpectedAnswer string   `json:"expectedAnswer"`
	Difficulty     string   `json:"difficulty"`
	Tags           []string `json:"tags"`
}

// Level is the candidate seniority used to weight question difficulty.
type Level string

const (
	Intern     Level = "intern"
	EntryLevel Level = "entry-level"
	MidLevel   Level = "mid-level"
	Senior     Level = "senior"
)

// Distribution is the number of questions per difficulty.
type Distribution struct {
	Basic, Easy, Medium, Hard int
}

// DistributionFor returns the difficulty mix for a candidate level. Unknown
// levels get the balanced mid-level mix.
func DistributionFor(l Level) Distribution {
	switch Level(strings.ToLower(strings.TrimSpace(string(l)))) {
	case Intern:
		return Distribution{3, 2, 1, 0}
	case EntryLevel:
		return Distribution{2, 3, 1, 0}
	case Senior:
		return Distribution{0, 1, 2, 3}
	default:
		return Distribution{1, 2, 2, 1}
	}
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
