// Package skill checks submitted skill names against the taxonomy and picks
// a deterministic substitute when they do not match.
package skill

import (
	"fmt"
	"strings"

	"github.com/okian/intervue/internal/domain/taxonomy"
)

// Mode selects how wide the accepted skill set is.
type Mode string

const (
	// Strict accepts only skills listed under the resolved domain.
	Strict Mode = "strict"
	// Permissive accepts a skill listed under any domain.
	Permissive Mode = "permissive"
)

// ParseMode maps a config string onto a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", Strict:
		return Strict, nil
	case Permissive:
		return Permissive, nil
	default:
		return "", fmt.Errorf("unknown skill validation mode %q", s)
	}
}

// Decision is the outcome of validating one skill name.
type Decision struct {
	Domain      taxonomy.Domain
	Skill       string // name to persist
	Requested   string // name as submitted
	Substituted bool   // true when Skill is the fallback
}

// Validator is stateless once built and safe for concurrent use.
type Validator struct {
	tax  *taxonomy.Taxonomy
	mode Mode
}

// NewValidator creates a validator over tax.
func NewValidator(tax *taxonomy.Taxonomy, mode Mode) *Validator {
	if mode == "" {
		mode = Strict
	}
	return &Validator{tax: tax, mode: mode}
}

// Mode returns the configured mode.
func (v *Validator) Mode() Mode { return v.mode }

// Validate resolves domainKey and checks skillName. An unknown domain is an
// error; an unknown skill is not, it is replaced by the first skill of the
// domain and reported through Decision.Substituted.
func (v *Validator) Validate(skillName, domainKey string) (Decision, error) {
	d, err := v.tax.Resolve(domainKey)
	if err != nil {
		return Decision{}, err
	}
	dec := Decision{Domain: d, Requested: skillName, Skill: skillName}
	if v.accepts(d, skillName) {
		return dec, nil
	}
	dec.Skill = d.FirstSkill()
	dec.Substituted = true
	return dec, nil
}

func (v *Validator) accepts(d taxonomy.Domain, name string) bool {
	if v.mode == Permissive {
		return v.tax.HasSkill(name)
	}
	return d.HasSkill(name)
}
