// Package progress models a user's per-domain skill progress and the pure
// state transition that folds one observation into it.
package progress

import (
	"math"
	"time"
)

// Skill is one observed competency inside a category.
type Skill struct {
	Name       string  `json:"name"`
	Proficient bool    `json:"proficient"`
	Score      float64 `json:"score"`
}

// Category aggregates a user's skills for one domain. AverageScore is
// derived from Skills and never set independently.
type Category struct {
	Name         string  `json:"name"`
	AverageScore float64 `json:"average_score"`
	Skills       []Skill `json:"skills"`
}

// UserProgress is the single persisted document per user.
type UserProgress struct {
	UserID     string     `json:"userId"`
	Categories []Category `json:"categories"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`

	// Version is the store's optimistic-concurrency token. Zero means the
	// document has never been saved.
	Version int64 `json:"-"`
}

// New returns an empty document for userID.
func New(userID string, now time.Time) *UserProgress {
	return &UserProgress{
		UserID:     userID,
		Categories: []Category{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Clone returns a deep copy.
func (p *UserProgress) Clone() *UserProgress {
	if p == nil {
		return nil
	}
	out := *p
	out.Categories = make([]Category, len(p.Categories))
	for i, c := range p.Categories {
		c.Skills = append([]Skill(nil), c.Skills...)
		if c.Skills == nil {
			c.Skills = []Skill{}
		}
		out.Categories[i] = c
	}
	return &out
}

// Category returns the first category named name.
func (p *UserProgress) Category(name string) (Category, bool) {
	if i := p.categoryIndex(name); i >= 0 {
		return p.Categories[i], true
	}
	return Category{}, false
}

// ForeignCategories lists category names for which known returns false.
func (p *UserProgress) ForeignCategories(known func(string) bool) []string {
	var out []string
	for _, c := range p.Categories {
		if !known(c.Name) {
			out = append(out, c.Name)
		}
	}
	return out
}

func (p *UserProgress) categoryIndex(name string) int {
	for i := range p.Categories {
		if p.Categories[i].Name == name {
			return i
		}
	}
	return -1
}

func (c *Category) skillIndex(name string) int {
	for i := range c.Skills {
		if c.Skills[i].Name == name {
			return i
		}
	}
	return -1
}

// Average returns round(mean(scores)) with halves rounded up. An empty
// slice averages to zero.
func Average(skills []Skill) float64 {
	if len(skills) == 0 {
		return 0
	}
	var total float64
	for _, s := range skills {
		total += s.Score
	}
	return roundHalfUp(total / float64(len(skills)))
}

// roundHalfUp rounds halves away from zero, which is up for scores.
func roundHalfUp(v float64) float64 {
	return math.Round(v)
}
