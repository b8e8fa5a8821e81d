package schedule

// DefaultPageSize используется при некорректном pageSize.
const DefaultPageSize = 10

// Page — одна страница элементов операторской выдачи.
type Page[T any] struct {
	Items    []T
	Page     int // с 1
	PageSize int
	Total    int
	HasNext  bool
	HasPrev  bool
}

// Paginate возвращает страницу items с метаданными. Нумерация страниц с 1;
// при некорректных значениях применяются дефолты, выход за конец даёт пустую
// страницу, а не ошибку.
func Paginate[T any](items []T, page, pageSize int) Page[T] {
	total := len(items)

	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if page <= 0 {
		page = 1
	}

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return Page[T]{
		Items:    items[start:end],
		Page:     page,
		PageSize: pageSize,
		Total:    total,
		HasNext:  end < total,
		HasPrev:  page > 1,
	}
}
