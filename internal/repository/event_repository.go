package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/osteoclinic/booking-core/internal/model"
)

type EventRepository interface {
	// Добавить событие аудита.
	Append(ctx context.Context, event *model.Event) error
	// Последние события, новые первыми.
	ListRecent(ctx context.Context, limit int) ([]model.Event, error)
}

// Реализация на GORM.
type GormEventRepository struct {
	db *gorm.DB
}

func NewGormEventRepository(db *gorm.DB) *GormEventRepository {
	return &GormEventRepository{db: db}
}

func (r *GormEventRepository) Append(ctx context.Context, event *model.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *GormEventRepository) ListRecent(ctx context.Context, limit int) ([]model.Event, error) {
	if limit <= 0 {
		limit = 50
	}
	var events []model.Event
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}
