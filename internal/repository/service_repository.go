package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/osteoclinic/booking-core/internal/model"
)

type ServiceRepository interface {
	// Каталог услуг в операторском порядке (SortOrder, затем имя).
	LoadAll(ctx context.Context) ([]model.Service, error)
	// Найти услугу по ID; ErrNotFound, если её нет.
	GetByID(ctx context.Context, id string) (*model.Service, error)
	// Полная замена каталога. Частичных обновлений нет.
	ReplaceAll(ctx context.Context, services []model.Service) error
	// Засеять каталог defaults, если таблица пуста; иначе no-op.
	SeedDefaults(ctx context.Context, defaults []model.Service) error
}

// Реализация на GORM.
type GormServiceRepository struct {
	db *gorm.DB
}

func NewGormServiceRepository(db *gorm.DB) *GormServiceRepository {
	return &GormServiceRepository{db: db}
}

func (r *GormServiceRepository) LoadAll(ctx context.Context) ([]model.Service, error) {
	var services []model.Service
	err := r.db.WithContext(ctx).
		Order("sort_order ASC, name ASC").
		Find(&services).Error
	if err != nil {
		return nil, err
	}
	return services, nil
}

func (r *GormServiceRepository) GetByID(ctx context.Context, id string) (*model.Service, error) {
	var s model.Service
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *GormServiceRepository) ReplaceAll(ctx context.Context, services []model.Service) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.Service{}).Error; err != nil {
			return err
		}
		if len(services) == 0 {
			return nil
		}
		return tx.Create(&services).Error
	})
}

func (r *GormServiceRepository) SeedDefaults(ctx context.Context, defaults []model.Service) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Service{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 || len(defaults) == 0 {
			return nil
		}
		return tx.Create(&defaults).Error
	})
}
