package model

import "time"

// services — каталог услуг клиники.
// Услуга неизменяема с точки зрения уже созданных записей: запись копирует
// название, длительность и цену в момент создания.
type Service struct {
	ID string `gorm:"type:varchar(64);primaryKey"`

	Name string `gorm:"type:varchar(255);not null"`

	// Длительность приёма в минутах, строго положительная.
	DurationMin int `gorm:"not null"`

	// Цена в евро.
	Price float64 `gorm:"type:numeric;not null;default:0"`

	// Позиция в каталоге: список услуг показывается в заданном порядке.
	SortOrder int `gorm:"not null;default:0;index"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// DefaultCatalog — стартовый каталог, засеваемый при пустой таблице.
func DefaultCatalog() []Service {
	return []Service{
		{ID: "s1", Name: "Osteopatía general", DurationMin: 60, Price: 60, SortOrder: 1},
		{ID: "s2", Name: "Masaje deportivo", DurationMin: 50, Price: 55, SortOrder: 2},
		{ID: "s3", Name: "Masaje relajante", DurationMin: 45, Price: 45, SortOrder: 3},
		{ID: "s4", Name: "Tratamiento cervical", DurationMin: 30, Price: 35, SortOrder: 4},
	}
}
