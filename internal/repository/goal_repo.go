package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dzakyhdr/learntrack-api/internal/models"
)

// GoalFilter narrows goal listings. Zero values mean "no constraint".
type GoalFilter struct {
	UserID   uint
	Status   string
	Category string
	Sort     string
}

// GoalRepository provides access to goal records, always scoped to an owner.
type GoalRepository interface {
	Create(ctx context.Context, goal *models.Goal) error
	GetByID(ctx context.Context, id, userID uint) (models.Goal, error)
	List(ctx context.Context, filter GoalFilter) ([]models.Goal, error)
	Delete(ctx context.Context, id, userID uint) error
	Save(ctx context.Context, goal *models.Goal) error
	// UpdateWithLock runs fn against the freshest copy of the goal inside a
	// transaction, holding a row lock where the dialect supports it, so the
	// read, the invariant recomputation and the write commit as one unit.
	UpdateWithLock(ctx context.Context, id, userID uint, fn func(goal *models.Goal) error) (models.Goal, error)
}

type goalRepository struct {
	db *gorm.DB
}

// NewGoalRepository constructs a goal repository.
func NewGoalRepository(db *gorm.DB) GoalRepository {
	return &goalRepository{db: db}
}

func (r *goalRepository) Create(ctx context.Context, goal *models.Goal) error {
	return r.db.WithContext(ctx).Create(goal).Error
}

func (r *goalRepository) GetByID(ctx context.Context, id, userID uint) (models.Goal, error) {
	var goal models.Goal
	err := r.db.WithContext(ctx).
		Preload("Milestones", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Where("user_id = ?", userID).
		First(&goal, id).Error
	if err != nil {
		return models.Goal{}, err
	}
	return goal, nil
}

func (r *goalRepository) List(ctx context.Context, filter GoalFilter) ([]models.Goal, error) {
	query := r.db.WithContext(ctx).
		Preload("Milestones", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Where("user_id = ?", filter.UserID)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	switch filter.Sort {
	case "target_date":
		query = query.Order("target_date ASC")
	case "progress":
		query = query.Order("progress DESC")
	default:
		query = query.Order("created_at DESC")
	}

	var goals []models.Goal
	if err := query.Find(&goals).Error; err != nil {
		return nil, err
	}
	return goals, nil
}

func (r *goalRepository) Delete(ctx context.Context, id, userID uint) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.Goal{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *goalRepository) Save(ctx context.Context, goal *models.Goal) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(goal).Error
}

func (r *goalRepository) UpdateWithLock(ctx context.Context, id, userID uint, fn func(goal *models.Goal) error) (models.Goal, error) {
	var updated models.Goal
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.
			Preload("Milestones", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
			Where("user_id = ?", userID)
		if tx.Dialector.Name() == "postgres" {
			query = query.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var goal models.Goal
		if err := query.First(&goal, id).Error; err != nil {
			return err
		}

		if err := fn(&goal); err != nil {
			return err
		}

		if err := tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(&goal).Error; err != nil {
			return err
		}

		updated = goal
		return nil
	})
	if err != nil {
		return models.Goal{}, err
	}
	return updated, nil
}
