package schedule

// Interval — полуоткрытый интервал [Start, End) в минутах от начала суток.
// Интервалы всегда принадлежат одной дате; фильтрация по дате — забота
// вызывающего.
type Interval struct {
	Start int
	End   int
}

// NewInterval строит интервал занятости от начала start длительностью durationMin.
func NewInterval(start TimeOfDay, durationMin int) Interval {
	s := start.MinuteOfDay()
	return Interval{Start: s, End: s + durationMin}
}

// Overlaps проверяет пересечение полуоткрытых интервалов:
// [s1,e1) и [s2,e2) пересекаются, если s1 < e2 && s2 < e1.
// Касание границами пересечением не считается.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start < other.End && other.Start < iv.End
}

// FindConflicts возвращает все интервалы из busy, пересекающиеся с candidate.
func FindConflicts(candidate Interval, busy []Interval) []Interval {
	var conflicts []Interval
	for _, iv := range busy {
		if candidate.Overlaps(iv) {
			conflicts = append(conflicts, iv)
		}
	}
	return conflicts
}

// HasConflict — проверка существования: возвращает true на первом пересечении.
// Используется на пути подтверждения записи, где перечисление не нужно.
func HasConflict(candidate Interval, busy []Interval) bool {
	for _, iv := range busy {
		if candidate.Overlaps(iv) {
			return true
		}
	}
	return false
}
