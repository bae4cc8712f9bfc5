package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/dzakyhdr/learntrack-api/internal/ledger"
	"github.com/dzakyhdr/learntrack-api/internal/models"
	"github.com/dzakyhdr/learntrack-api/internal/observability"
	"github.com/dzakyhdr/learntrack-api/internal/repository"
	"github.com/dzakyhdr/learntrack-api/internal/streak"
)

// StatsService consumes completion events emitted by the progress ledger and
// keeps the per-user counters consistent. Every increment is at-most-once:
// the completion-event table's unique key swallows replays.
type StatsService interface {
	ApplyCompletion(ctx context.Context, event ledger.CompletionEvent) error
	RecordGoalAchieved(ctx context.Context, userID uint) error
	RefreshStreak(ctx context.Context, userID uint) (models.UserStats, error)
}

type statsService struct {
	users       repository.UserRepository
	lessons     repository.LessonRepository
	events      repository.CompletionEventRepository
	nats        *nats.Conn
	natsSubject string
	logger      zerolog.Logger
	now         func() time.Time
}

// NewStatsService builds the stats updater. The NATS connection is optional;
// when absent, completion notifications are simply not published.
func NewStatsService(users repository.UserRepository, lessons repository.LessonRepository, events repository.CompletionEventRepository, natsConn *nats.Conn, natsSubject string, logger zerolog.Logger) StatsService {
	return &statsService{
		users:       users,
		lessons:     lessons,
		events:      events,
		nats:        natsConn,
		natsSubject: natsSubject,
		logger:      logger.With().Str("component", "stats_service").Logger(),
		now:         time.Now,
	}
}

func (s *statsService) ApplyCompletion(ctx context.Context, event ledger.CompletionEvent) error {
	applied, err := s.events.Record(ctx, &models.CompletionEvent{
		LessonID:       event.LessonID,
		CompletedEpoch: event.CompletedAt.Unix(),
		UserID:         event.UserID,
		Minutes:        event.Minutes,
	})
	if err != nil {
		return err
	}
	if !applied {
		observability.LessonCompletions().WithLabelValues("replayed").Inc()
		s.logger.Debug().Uint("lesson_id", event.LessonID).Msg("completion event replayed, skipping increment")
		return nil
	}
	observability.LessonCompletions().WithLabelValues("applied").Inc()

	completions, err := s.lessons.CompletionTimes(ctx, event.UserID)
	if err != nil {
		return err
	}
	current := streak.Current(completions, s.now())

	_, err = s.users.UpdateWithLock(ctx, event.UserID, func(user *models.User) error {
		user.Stats.TotalLessonsCompleted++
		user.Stats.TotalTimeSpent += event.Minutes
		user.Stats.CurrentStreak = current
		if current > user.Stats.LongestStreak {
			user.Stats.LongestStreak = current
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(event)
	return nil
}

func (s *statsService) RecordGoalAchieved(ctx context.Context, userID uint) error {
	_, err := s.users.UpdateWithLock(ctx, userID, func(user *models.User) error {
		user.Stats.TotalGoalsAchieved++
		return nil
	})
	return err
}

// RefreshStreak recomputes the current streak from completion history. The
// longest streak only ever ratchets upward.
func (s *statsService) RefreshStreak(ctx context.Context, userID uint) (models.UserStats, error) {
	completions, err := s.lessons.CompletionTimes(ctx, userID)
	if err != nil {
		return models.UserStats{}, err
	}
	current := streak.Current(completions, s.now())

	user, err := s.users.UpdateWithLock(ctx, userID, func(user *models.User) error {
		user.Stats.CurrentStreak = current
		if current > user.Stats.LongestStreak {
			user.Stats.LongestStreak = current
		}
		return nil
	})
	if err != nil {
		return models.UserStats{}, err
	}
	return user.Stats, nil
}

// publish emits the completion to NATS for downstream consumers. Failures
// are logged and dropped; stats were already committed.
func (s *statsService) publish(event ledger.CompletionEvent) {
	if s.nats == nil || s.natsSubject == "" {
		return
	}

	payload, err := json.Marshal(map[string]interface{}{
		"lesson_id":    event.LessonID,
		"user_id":      event.UserID,
		"completed_at": event.CompletedAt,
		"minutes":      event.Minutes,
	})
	if err != nil {
		return
	}

	if err := s.nats.Publish(s.natsSubject, payload); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish completion event")
	}
}
