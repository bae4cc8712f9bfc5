package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dzakyhdr/learntrack-api/internal/models"
)

// CompletionEventRepository persists the idempotency ledger for lesson
// completions.
type CompletionEventRepository interface {
	// Record inserts the event, reporting false when the same
	// (lesson, completion epoch) pair was already applied.
	Record(ctx context.Context, event *models.CompletionEvent) (bool, error)
}

type completionEventRepository struct {
	db *gorm.DB
}

// NewCompletionEventRepository constructs the completion-event repository.
func NewCompletionEventRepository(db *gorm.DB) CompletionEventRepository {
	return &completionEventRepository{db: db}
}

func (r *completionEventRepository) Record(ctx context.Context, event *models.CompletionEvent) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "lesson_id"}, {Name: "completed_epoch"}},
			DoNothing: true,
		}).
		Create(event)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
