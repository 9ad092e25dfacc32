package progress

import "errors"

var (
	// ErrInvalidScore is returned for scores outside [0,100].
	ErrInvalidScore = errors.New("score must be between 0 and 100")
	// ErrUnknownCategory is returned when the category name is not a domain display name.
	ErrUnknownCategory = errors.New("unknown category")
	// ErrUnknownSkill is returned when the skill is listed under no domain.
	ErrUnknownSkill = errors.New("unknown skill")
	// ErrNilProgress is returned when Apply receives no document.
	ErrNilProgress = errors.New("nil progress document")
)
