package progress

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/okian/intervue/internal/domain/taxonomy"
)

// Score bounds.
const (
	MinScore = 0
	MaxScore = 100
)

// Aggregator applies observations to progress documents. It holds no
// mutable state; the clock is injectable for tests.
type Aggregator struct {
	tax *taxonomy.Taxonomy
	now func() time.Time
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		if now != nil {
			a.now = now
		}
	}
}

// NewAggregator builds an aggregator bound to tax.
func NewAggregator(tax *taxonomy.Taxonomy, opts ...Option) *Aggregator {
	a := &Aggregator{tax: tax, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Now returns the aggregator's clock reading.
func (a *Aggregator) Now() time.Time { return a.now() }

// ValidateScore rejects NaN, infinities and values outside [0,100].
func ValidateScore(score float64) error {
	if math.IsNaN(score) || math.IsInf(score, 0) || score < MinScore || score > MaxScore {
		return fmt.Errorf("%w: %v", ErrInvalidScore, score)
	}
	return nil
}

// Apply folds one observation into a copy of p and returns the copy; p is
// never modified. The category is matched by exact display name and created
// when missing. The skill is overwritten when present and appended
// otherwise. The category average is recomputed and UpdatedAt refreshed.
func (a *Aggregator) Apply(p *UserProgress, domainName, skillName string, proficient bool, score float64) (*UserProgress, error) {
	if p == nil {
		return nil, ErrNilProgress
	}
	if err := ValidateScore(score); err != nil {
		return nil, err
	}
	if !a.tax.IsCategory(domainName) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, domainName)
	}
	if strings.TrimSpace(skillName) == "" || !a.tax.HasSkill(skillName) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSkill, skillName)
	}

	out := p.Clone()
	obs := Skill{Name: skillName, Proficient: proficient, Score: score}

	ci := out.categoryIndex(domainName)
	if ci < 0 {
		out.Categories = append(out.Categories, Category{
			Name:         domainName,
			AverageScore: roundHalfUp(score),
			Skills:       []Skill{obs},
		})
	} else {
		c := &out.Categories[ci]
		if si := c.skillIndex(skillName); si >= 0 {
			c.Skills[si].Proficient = proficient
			c.Skills[si].Score = score
		} else {
			c.Skills = append(c.Skills, obs)
		}
		c.AverageScore = Average(c.Skills)
	}

	now := a.now()
	if out.CreatedAt.IsZero() {
		out.CreatedAt = now
	}
	out.UpdatedAt = now
	return out, nil
}
