package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dzakyhdr/learntrack-api/internal/models"
)

// LessonFilter narrows lesson listings. Zero values mean "no constraint".
type LessonFilter struct {
	UserID   uint
	Status   string
	GoalID   *uint
	Category string
	Limit    int
}

// LessonRepository provides access to lesson records, always scoped to an owner.
type LessonRepository interface {
	Create(ctx context.Context, lesson *models.Lesson) error
	GetByID(ctx context.Context, id, userID uint) (models.Lesson, error)
	List(ctx context.Context, filter LessonFilter) ([]models.Lesson, error)
	Count(ctx context.Context, filter LessonFilter) (int64, error)
	Delete(ctx context.Context, id, userID uint) error
	Save(ctx context.Context, lesson *models.Lesson) error
	// UpdateWithLock applies fn to the freshest copy of the lesson inside a
	// transaction so progress recomputation commits atomically.
	UpdateWithLock(ctx context.Context, id, userID uint, fn func(lesson *models.Lesson) error) (models.Lesson, error)
	// FindByVideoID locates a lesson saved from an external video for the owner.
	FindByVideoID(ctx context.Context, userID uint, videoID string) (models.Lesson, error)
	// GoalTotals returns the number of completed lessons attached to the
	// goal and their summed time in minutes.
	GoalTotals(ctx context.Context, goalID uint) (count int64, minutes int64, err error)
	// CompletedBetween returns completed lessons whose completion falls in
	// [from, to), goal preloaded for category resolution, newest first.
	CompletedBetween(ctx context.Context, userID uint, from, to time.Time) ([]models.Lesson, error)
	// CompletionTimes returns every completion timestamp for the owner,
	// newest first, for streak derivation.
	CompletionTimes(ctx context.Context, userID uint) ([]time.Time, error)
}

type lessonRepository struct {
	db *gorm.DB
}

// NewLessonRepository constructs a lesson repository.
func NewLessonRepository(db *gorm.DB) LessonRepository {
	return &lessonRepository{db: db}
}

func (r *lessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	return r.db.WithContext(ctx).Create(lesson).Error
}

func (r *lessonRepository) GetByID(ctx context.Context, id, userID uint) (models.Lesson, error) {
	var lesson models.Lesson
	err := r.db.WithContext(ctx).
		Preload("Goal").
		Where("user_id = ?", userID).
		First(&lesson, id).Error
	if err != nil {
		return models.Lesson{}, err
	}
	return lesson, nil
}

func (r *lessonRepository) List(ctx context.Context, filter LessonFilter) ([]models.Lesson, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Preload("Goal"), filter).
		Order("created_at DESC")

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var lessons []models.Lesson
	if err := query.Find(&lessons).Error; err != nil {
		return nil, err
	}
	return lessons, nil
}

func (r *lessonRepository) Count(ctx context.Context, filter LessonFilter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.Lesson{}), filter).
		Count(&count).Error
	return count, err
}

func (r *lessonRepository) applyFilter(query *gorm.DB, filter LessonFilter) *gorm.DB {
	query = query.Where("user_id = ?", filter.UserID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.GoalID != nil {
		query = query.Where("goal_id = ?", *filter.GoalID)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	return query
}

func (r *lessonRepository) Delete(ctx context.Context, id, userID uint) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.Lesson{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *lessonRepository) Save(ctx context.Context, lesson *models.Lesson) error {
	return r.db.WithContext(ctx).Omit("Goal").Save(lesson).Error
}

func (r *lessonRepository) UpdateWithLock(ctx context.Context, id, userID uint, fn func(lesson *models.Lesson) error) (models.Lesson, error) {
	var updated models.Lesson
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Where("user_id = ?", userID)
		if tx.Dialector.Name() == "postgres" {
			query = query.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var lesson models.Lesson
		if err := query.First(&lesson, id).Error; err != nil {
			return err
		}

		if err := fn(&lesson); err != nil {
			return err
		}

		if err := tx.Omit("Goal").Save(&lesson).Error; err != nil {
			return err
		}

		updated = lesson
		return nil
	})
	if err != nil {
		return models.Lesson{}, err
	}
	return updated, nil
}

func (r *lessonRepository) FindByVideoID(ctx context.Context, userID uint, videoID string) (models.Lesson, error) {
	var lesson models.Lesson
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND video_id = ?", userID, videoID).
		First(&lesson).Error
	if err != nil {
		return models.Lesson{}, err
	}
	return lesson, nil
}

func (r *lessonRepository) GoalTotals(ctx context.Context, goalID uint) (int64, int64, error) {
	var totals struct {
		Count   int64
		Minutes int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Lesson{}).
		Select("COUNT(*) AS count, COALESCE(SUM(time_spent), 0) AS minutes").
		Where("goal_id = ? AND status = ?", goalID, models.LessonStatusCompleted).
		Scan(&totals).Error
	if err != nil {
		return 0, 0, err
	}
	return totals.Count, totals.Minutes, nil
}

func (r *lessonRepository) CompletedBetween(ctx context.Context, userID uint, from, to time.Time) ([]models.Lesson, error) {
	var lessons []models.Lesson
	err := r.db.WithContext(ctx).
		Preload("Goal").
		Where("user_id = ? AND status = ? AND completed_at >= ? AND completed_at < ?",
			userID, models.LessonStatusCompleted, from, to).
		Order("completed_at DESC").
		Find(&lessons).Error
	if err != nil {
		return nil, err
	}
	return lessons, nil
}

func (r *lessonRepository) CompletionTimes(ctx context.Context, userID uint) ([]time.Time, error) {
	var times []time.Time
	err := r.db.WithContext(ctx).
		Model(&models.Lesson{}).
		Where("user_id = ? AND status = ? AND completed_at IS NOT NULL", userID, models.LessonStatusCompleted).
		Order("completed_at DESC").
		Pluck("completed_at", &times).Error
	if err != nil {
		return nil, err
	}
	return times, nil
}
