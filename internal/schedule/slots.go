package schedule

import (
	"errors"
	"time"
)

var (
	ErrSlotDuration  = errors.New("slot duration must be positive")
	ErrWorkingWindow = errors.New("invalid working day window")
)

// WorkingDay описывает рабочий день: окно приёма, обеденный перерыв и шаг
// сетки слотов. Перерыв — полуоткрытое окно [BreakStart, BreakEnd): слот не
// может ни начинаться внутри него, ни пересекать его.
type WorkingDay struct {
	Open       TimeOfDay
	Close      TimeOfDay
	BreakStart TimeOfDay
	BreakEnd   TimeOfDay
	StepMin    int
}

// DefaultWorkingDay — режим клиники: 09:00–19:00, обед 14:00–16:00, шаг 15 минут.
func DefaultWorkingDay() WorkingDay {
	return WorkingDay{
		Open:       TimeOfDay{Hour: 9},
		Close:      TimeOfDay{Hour: 19},
		BreakStart: TimeOfDay{Hour: 14},
		BreakEnd:   TimeOfDay{Hour: 16},
		StepMin:    15,
	}
}

// Validate проверяет согласованность окна: окно приёма непусто, перерыв
// целиком внутри окна, шаг положителен.
func (wd WorkingDay) Validate() error {
	open, close := wd.Open.MinuteOfDay(), wd.Close.MinuteOfDay()
	bs, be := wd.BreakStart.MinuteOfDay(), wd.BreakEnd.MinuteOfDay()
	if close <= open {
		return ErrWorkingWindow
	}
	if bs > be || bs < open || be > close {
		return ErrWorkingWindow
	}
	if wd.StepMin <= 0 {
		return ErrWorkingWindow
	}
	return nil
}

// FreeSlots возвращает доступные начала слотов для услуги длительностью
// durationMin на дату date с учётом занятых интервалов busy.
//
// Правила в порядке применения:
//   - кандидаты — начала, кратные StepMin, в [Open, Close);
//   - начало внутри перерыва [BreakStart, BreakEnd) отбрасывается;
//   - конец за Close отбрасывается (конец ровно в Close допустим);
//   - слот не может пересекать перерыв: start < BreakStart && end > BreakStart
//     отбрасывается (конец ровно в BreakStart допустим);
//   - начало слота должно быть строго в будущем относительно now
//     (зона берётся из now);
//   - пересечение с любым интервалом из busy отбрасывается.
//
// Результат упорядочен по возрастанию. Пустой результат — легитимное
// состояние "свободных слотов нет"; функция чистая и детерминированная при
// фиксированных аргументах.
func FreeSlots(day WorkingDay, durationMin int, date Date, busy []Interval, now time.Time) ([]TimeOfDay, error) {
	if durationMin <= 0 {
		return nil, ErrSlotDuration
	}
	if err := day.Validate(); err != nil {
		return nil, err
	}

	open := day.Open.MinuteOfDay()
	close := day.Close.MinuteOfDay()
	breakStart := day.BreakStart.MinuteOfDay()
	breakEnd := day.BreakEnd.MinuteOfDay()

	var slots []TimeOfDay
	for start := open; start < close; start += day.StepMin {
		if start >= breakStart && start < breakEnd {
			continue
		}

		end := start + durationMin
		if end > close {
			continue
		}
		if start < breakStart && end > breakStart {
			continue
		}

		tod := TimeOfDayFromMinutes(start)
		if !date.At(tod, now.Location()).After(now) {
			continue
		}

		if HasConflict(Interval{Start: start, End: end}, busy) {
			continue
		}

		slots = append(slots, tod)
	}

	return slots, nil
}
