package model

import (
	"time"

	"github.com/osteoclinic/booking-core/internal/schedule"
)

// bookings — записи на приём.
// Инвариант: у двух записей с одной датой полуоткрытые интервалы
// [Time, Time+DurationMin) не пересекаются. Инвариант рекомендательный —
// хранилище не транзакционно по отношению к read-modify-write, проверка
// выполняется на пути подтверждения записи.
type Booking struct {
	ID string `gorm:"type:varchar(64);primaryKey"`

	Date schedule.Date      `gorm:"type:varchar(10);not null;index"`
	Time schedule.TimeOfDay `gorm:"type:varchar(5);not null"`

	FullName string `gorm:"type:varchar(255);not null"`
	Address  string `gorm:"type:varchar(255);not null"`
	Town     string `gorm:"type:varchar(128);not null;index"`
	Phone    string `gorm:"type:varchar(32);not null"`

	ServiceID string `gorm:"type:varchar(64);not null;index"`

	// Копия параметров услуги на момент создания: последующие правки
	// каталога не меняют уже существующие записи.
	ServiceName string  `gorm:"type:varchar(255);not null"`
	DurationMin int     `gorm:"not null"`
	Price       float64 `gorm:"type:numeric;not null;default:0"`

	CreatedAt time.Time `gorm:"not null"`
}

// Interval — занимаемый записью интервал внутри её даты.
func (b Booking) Interval() schedule.Interval {
	return schedule.NewInterval(b.Time, b.DurationMin)
}
