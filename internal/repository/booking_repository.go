package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/osteoclinic/booking-core/internal/model"
)

type BookingRepository interface {
	// Полный текущий набор записей; порядок на загрузке не значим.
	LoadAll(ctx context.Context) ([]model.Booking, error)
	// Полная замена коллекции. Частичных обновлений нет: перед
	// конфликт-чувствительной записью вызывающий обязан перечитать набор
	// (блокировок и версионирования у хранилища нет).
	ReplaceAll(ctx context.Context, bookings []model.Booking) error
}

// Реализация на GORM.
type GormBookingRepository struct {
	db *gorm.DB
}

func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

func (r *GormBookingRepository) LoadAll(ctx context.Context) ([]model.Booking, error) {
	var bookings []model.Booking
	if err := r.db.WithContext(ctx).Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *GormBookingRepository) ReplaceAll(ctx context.Context, bookings []model.Booking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.Booking{}).Error; err != nil {
			return err
		}
		if len(bookings) == 0 {
			return nil
		}
		return tx.Create(&bookings).Error
	})
}
