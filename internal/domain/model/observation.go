// Package model contains the messages passed between transport, queue and
// application layers.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Observation is one evaluated answer for a user: a skill score inside a
// domain. It is the input of the progress core.
type Observation struct {
	ID         string    `json:"observationId,omitempty"` // optional idempotency key
	UserID     string    `json:"userId"`
	DomainKey  string    `json:"domainKey"`
	SkillName  string    `json:"skillName"`
	Proficient bool      `json:"proficient"`
	Score      float64   `json:"score"`
	At         time.Time `json:"at,omitempty"`
}

// ErrInvalidObservation wraps every Validate failure.
var ErrInvalidObservation = errors.New("invalid observation")

var (
	errMissingUser   = fmt.Errorf("%w: userId is required", ErrInvalidObservation)
	errMissingDomain = fmt.Errorf("%w: domainKey is required", ErrInvalidObservation)
	errMissingSkill  = fmt.Errorf("%w: skillName is required", ErrInvalidObservation)
)

// Validate checks presence of the identifying fields. Domain membership and
// score bounds are checked by the core.
func (o Observation) Validate() error {
	switch {
	case strings.TrimSpace(o.UserID) == "":
		return errMissingUser
	case strings.TrimSpace(o.DomainKey) == "":
		return errMissingDomain
	case strings.TrimSpace(o.SkillName) == "":
		return errMissingSkill
	}
	return nil
}

// ProgressUpdated is published after a progress document was saved.
type ProgressUpdated struct {
	UserID       string    `json:"userId"`
	Category     string    `json:"category"`
	Skill        string    `json:"skill"`
	Score        float64   `json:"score"`
	AverageScore float64   `json:"averageScore"`
	Substituted  bool      `json:"substituted"`
	At           time.Time `json:"at"`
}
