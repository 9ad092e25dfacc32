package service

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/intervue/internal/domain/model"
	"github.com/okian/intervue/internal/domain/progress"
	"github.com/okian/intervue/pkg/logger"
	"github.com/okian/intervue/pkg/metrics"
)

// RecordResult describes what one observation did.
type RecordResult struct {
	Progress    *progress.UserProgress
	Skill       string // skill actually stored
	Substituted bool   // requested skill was replaced by the domain fallback
	Duplicate   bool   // observation id was seen before; nothing changed
}

// RecordObservation validates o and folds it into the user's progress
// synchronously. An observation id seen before is not applied again; the
// current progress is returned instead.
func (s *Service) RecordObservation(ctx context.Context, o model.Observation) (*RecordResult, error) { //nolint:gocritic // value input
	if err := o.Validate(); err != nil {
		metrics.RecordObservation("invalid")
		return nil, err
	}
	if o.ID != "" && s.SeenAndRecord(ctx, o.ID) {
		metrics.RecordObservation("duplicate")
		doc, err := s.gateway.Load(ctx, o.UserID)
		if err != nil {
			return nil, err
		}
		return &RecordResult{Progress: doc, Duplicate: true}, nil
	}
	res, err := s.apply(ctx, o)
	if err != nil && o.ID != "" {
		s.Unrecord(ctx, o.ID)
	}
	return res, err
}

// ApplyObservation is the worker entry point. Deduplication already
// happened at enqueue time.
func (s *Service) ApplyObservation(ctx context.Context, o model.Observation) error { //nolint:gocritic // value input
	if _, err := s.apply(ctx, o); err != nil {
		if o.ID != "" {
			s.Unrecord(ctx, o.ID)
		}
		return err
	}
	return nil
}

func (s *Service) apply(ctx context.Context, o model.Observation) (*RecordResult, error) { //nolint:gocritic // value input
	start := time.Now()
	defer func() {
		metrics.RecordApplyLatency(float64(time.Since(start).Milliseconds()))
	}()

	dec, err := s.validator.Validate(o.SkillName, o.DomainKey)
	if err != nil {
		metrics.RecordObservation("invalid")
		return nil, err
	}
	if err := progress.ValidateScore(o.Score); err != nil {
		metrics.RecordObservation("invalid")
		return nil, err
	}
	if dec.Substituted {
		metrics.RecordSkillFallback(dec.Domain.Key)
		s.logger.Warn(ctx, "skill not in domain, using fallback",
			logger.String("domain", dec.Domain.Key),
			logger.String("requested", dec.Requested),
			logger.String("fallback", dec.Skill))
	}

	doc, err := s.gateway.Update(ctx, o.UserID, func(cur *progress.UserProgress) (*progress.UserProgress, error) {
		return s.aggregator.Apply(cur, dec.Domain.Name, dec.Skill, o.Proficient, o.Score)
	})
	if err != nil {
		metrics.RecordObservation("failed")
		return nil, fmt.Errorf("record observation for %s: %w", o.UserID, err)
	}
	metrics.RecordObservation("applied")

	cat, _ := doc.Category(dec.Domain.Name)
	ev := model.ProgressUpdated{
		UserID:       o.UserID,
		Category:     cat.Name,
		Skill:        dec.Skill,
		Score:        o.Score,
		AverageScore: cat.AverageScore,
		Substituted:  dec.Substituted,
		At:           doc.UpdatedAt,
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.Warn(ctx, "progress saved but not announced", logger.String("userId", o.UserID), logger.Error(err))
	}

	return &RecordResult{Progress: doc, Skill: dec.Skill, Substituted: dec.Substituted}, nil
}

// Enqueue validates o and hands it to the worker pool. It returns
// duplicate=true without queueing when the id was seen before.
func (s *Service) Enqueue(ctx context.Context, o model.Observation) (duplicate bool, err error) { //nolint:gocritic // value input
	if err := o.Validate(); err != nil {
		metrics.RecordObservation("invalid")
		return false, err
	}
	if _, err := s.tax.Resolve(o.DomainKey); err != nil {
		metrics.RecordObservation("invalid")
		return false, err
	}
	if err := progress.ValidateScore(o.Score); err != nil {
		metrics.RecordObservation("invalid")
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return false, ErrNotStarted
	}
	if o.ID != "" && s.SeenAndRecord(ctx, o.ID) {
		metrics.RecordObservation("duplicate")
		return true, nil
	}
	if o.At.IsZero() {
		o.At = s.clock()
	}
	if !s.queue.Enqueue(ctx, o) {
		if o.ID != "" {
			s.Unrecord(ctx, o.ID)
		}
		return false, ErrBackpressure
	}
	return false, nil
}

// Progress returns the user's document, or nil when there is none.
func (s *Service) Progress(ctx context.Context, userID string) (*progress.UserProgress, error) {
	return s.gateway.Load(ctx, userID)
}

// SeenAndRecord reports whether id was seen before and records it if not.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordDuplicate()
	}
	return seen
}

// Unrecord forgets id so the observation can be retried.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}
