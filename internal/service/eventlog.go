package service

import (
	"context"
	"errors"
	"strings"
	"time"

	bc "boiler_controller"
	"boiler_controller/internal/logger"
	"boiler_controller/internal/repository"
)

type EventLogService struct {
	eventRepo repository.EventRepo
	now       func() time.Time
}

func NewEventLogService(eventRepo repository.EventRepo) *EventLogService {
	return &EventLogService{eventRepo: eventRepo, now: time.Now}
}

var (
	errInvalidTimeRange = errors.New("invalid time range: From must be <= To")
)

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalizeEventType trims spaces and uppercases the event type filter.
func normalizeEventType(s string) string {
	return strings.TrimSpace(strings.ToUpper(s))
}

// normalizeAndValidateFilter prepares query parameters and validates the time range.
func normalizeAndValidateFilter(f LogFilter) (time.Time, time.Time, string, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)

	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return time.Time{}, time.Time{}, "", errInvalidTimeRange
	}

	eventType := normalizeEventType(f.Type)
	return from, to, eventType, nil
}

func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]bc.BoilerEvent, error) {
	from, to, typ, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	return s.eventRepo.List(ctx, from, to, typ)
}

// Prune drops journal entries older than keep.
func (s *EventLogService) Prune(ctx context.Context, keep time.Duration) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}
	return s.eventRepo.Prune(ctx, s.now().Add(-keep))
}

// RunRetention prunes once at start and then every interval until ctx is
// canceled. A non-positive keep disables pruning.
func (s *EventLogService) RunRetention(ctx context.Context, keep, interval time.Duration, log *logger.Logger) {
	if keep <= 0 {
		return
	}
	prune := func() {
		n, err := s.Prune(ctx, keep)
		switch {
		case err != nil:
			log.Warnw("event_prune_failed", "error", err)
		case n > 0:
			log.Infow("events_pruned", "count", n, "older_than", keep)
		}
	}

	prune()
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			prune()
		}
	}
}
