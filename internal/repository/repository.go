package repository

import "errors"

// ErrNotFound возвращается, когда запрошенной записи нет в хранилище.
// Реализации не протаскивают наружу ошибки конкретного драйвера.
var ErrNotFound = errors.New("record not found")
