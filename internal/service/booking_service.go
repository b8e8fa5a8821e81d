package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/osteoclinic/booking-core/internal/model"
	"github.com/osteoclinic/booking-core/internal/repository"
	"github.com/osteoclinic/booking-core/internal/schedule"
)

// Ошибки жизненного цикла записи. Ни одна не фатальна: все всплывают
// синхронно к вызывающему, который решает, как перезапросить ввод.
var (
	ErrValidation     = errors.New("booking validation failed")
	ErrUnknownService = errors.New("unknown service")
	ErrSlotTaken      = errors.New("slot is already taken")
	ErrNotFound       = errors.New("booking not found")
)

// BookingService — жизненный цикл записей на приём: подбор слотов,
// подтверждение, отмена, перенос и операторские выборки.
//
// Каждая операция перечитывает полный текущий набор записей и при изменении
// записывает его целиком обратно. Между чтением и записью блокировки нет —
// два одновременных контекста могут потерять обновление; для одной машины с
// низкой конкуренцией это принятое ограничение.
type BookingService struct {
	services repository.ServiceRepository
	bookings repository.BookingRepository
	events   repository.EventRepository

	day schedule.WorkingDay

	// Перенос оператором применяется без проверки конфликтов.
	trustOperatorReschedule bool

	now func() time.Time
}

func NewBookingService(
	services repository.ServiceRepository,
	bookings repository.BookingRepository,
	events repository.EventRepository,
	day schedule.WorkingDay,
	trustOperatorReschedule bool,
) *BookingService {
	return &BookingService{
		services:                services,
		bookings:                bookings,
		events:                  events,
		day:                     day,
		trustOperatorReschedule: trustOperatorReschedule,
		now:                     time.Now,
	}
}

// Catalog возвращает каталог услуг в операторском порядке.
func (s *BookingService) Catalog(ctx context.Context) ([]model.Service, error) {
	return s.services.LoadAll(ctx)
}

// FreeSlots возвращает доступные начала слотов услуги serviceID на дату date.
// Пустой срез — легитимный результат "свободных слотов нет".
func (s *BookingService) FreeSlots(ctx context.Context, serviceID string, date schedule.Date) ([]schedule.TimeOfDay, error) {
	svc, err := s.services.GetByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownService, serviceID)
		}
		return nil, err
	}

	all, err := s.bookings.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	return schedule.FreeSlots(s.day, svc.DurationMin, date, busyIntervals(all, date, ""), s.now())
}

// SubmitRequest — заполненная анкета записи.
type SubmitRequest struct {
	ServiceID string
	Date      schedule.Date
	Time      schedule.TimeOfDay
	FullName  string
	Address   string
	Town      string
	Phone     string
}

// Submit подтверждает запись. Набор занятых слотов перечитывается
// непосредственно перед проверкой: показанные пользователю слоты могли
// устареть к моменту отправки формы.
func (s *BookingService) Submit(ctx context.Context, req SubmitRequest) (*model.Booking, error) {
	if err := validateSubmit(req); err != nil {
		return nil, err
	}

	svc, err := s.services.GetByID(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownService, req.ServiceID)
		}
		return nil, err
	}

	all, err := s.bookings.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	candidate := schedule.NewInterval(req.Time, svc.DurationMin)
	if schedule.HasConflict(candidate, busyIntervals(all, req.Date, "")) {
		return nil, ErrSlotTaken
	}

	booking := model.Booking{
		ID:          uuid.NewString(),
		Date:        req.Date,
		Time:        req.Time,
		FullName:    strings.TrimSpace(req.FullName),
		Address:     strings.TrimSpace(req.Address),
		Town:        strings.TrimSpace(req.Town),
		Phone:       strings.TrimSpace(req.Phone),
		ServiceID:   svc.ID,
		ServiceName: svc.Name,
		DurationMin: svc.DurationMin,
		Price:       svc.Price,
		CreatedAt:   s.now().UTC(),
	}

	all = append(all, booking)
	if err := s.bookings.ReplaceAll(ctx, all); err != nil {
		return nil, err
	}

	s.recordEvent(ctx, model.EventTypeBookingCreated, booking.ID, map[string]any{
		"date":    booking.Date.String(),
		"time":    booking.Time.String(),
		"service": booking.ServiceID,
	})

	return &booking, nil
}

// Cancel удаляет запись по ID. Отсутствующий ID — успешный no-op:
// повторная отмена не ошибка.
func (s *BookingService) Cancel(ctx context.Context, id string) error {
	all, err := s.bookings.LoadAll(ctx)
	if err != nil {
		return err
	}

	kept := all[:0:0]
	for _, b := range all {
		if b.ID != id {
			kept = append(kept, b)
		}
	}
	if len(kept) == len(all) {
		return nil
	}

	if err := s.bookings.ReplaceAll(ctx, kept); err != nil {
		return err
	}

	s.recordEvent(ctx, model.EventTypeBookingCancelled, id, nil)
	return nil
}

// Reschedule переносит запись на новые дату и время.
//
// При trustOperatorReschedule перенос применяется без проверки конфликтов —
// операторское решение считается окончательным. Иначе новый интервал
// проверяется против всех остальных записей (сама переносимая запись из
// проверки исключена, чтобы сдвиг внутри собственного интервала не считался
// конфликтом).
func (s *BookingService) Reschedule(ctx context.Context, id string, newDate schedule.Date, newTime schedule.TimeOfDay) (*model.Booking, error) {
	if newDate.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrValidation)
	}

	all, err := s.bookings.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range all {
		if all[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}

	if !s.trustOperatorReschedule {
		candidate := schedule.NewInterval(newTime, all[idx].DurationMin)
		if schedule.HasConflict(candidate, busyIntervals(all, newDate, id)) {
			return nil, ErrSlotTaken
		}
	}

	oldDate, oldTime := all[idx].Date, all[idx].Time
	all[idx].Date = newDate
	all[idx].Time = newTime

	if err := s.bookings.ReplaceAll(ctx, all); err != nil {
		return nil, err
	}

	s.recordEvent(ctx, model.EventTypeBookingRescheduled, id, map[string]any{
		"old_date": oldDate.String(),
		"old_time": oldTime.String(),
		"new_date": newDate.String(),
		"new_time": newTime.String(),
	})

	booking := all[idx]
	return &booking, nil
}

// ListUpcoming возвращает все записи по возрастанию (дата, время).
func (s *BookingService) ListUpcoming(ctx context.Context) ([]model.Booking, error) {
	all, err := s.bookings.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	sortByDateTime(all)
	return all, nil
}

// TownGroup — записи одного населённого пункта.
type TownGroup struct {
	Town     string
	Bookings []model.Booking
}

// ListByTown группирует записи по полю Town (точное сравнение строк, без
// нормализации). Группы — лексикографически, записи внутри группы — по
// (дата, время).
func (s *BookingService) ListByTown(ctx context.Context) ([]TownGroup, error) {
	all, err := s.bookings.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	byTown := make(map[string][]model.Booking)
	for _, b := range all {
		byTown[b.Town] = append(byTown[b.Town], b)
	}

	towns := make([]string, 0, len(byTown))
	for town := range byTown {
		towns = append(towns, town)
	}
	sort.Strings(towns)

	groups := make([]TownGroup, 0, len(towns))
	for _, town := range towns {
		bookings := byTown[town]
		sortByDateTime(bookings)
		groups = append(groups, TownGroup{Town: town, Bookings: bookings})
	}
	return groups, nil
}

// DaySchedule — записи одного дня по возрастанию времени и итог выручки.
type DaySchedule struct {
	Date     schedule.Date
	Bookings []model.Booking
	Total    float64
}

// DaySchedule возвращает записи на дату date и сумму цен по ним.
func (s *BookingService) DaySchedule(ctx context.Context, date schedule.Date) (*DaySchedule, error) {
	all, err := s.bookings.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	day := &DaySchedule{Date: date}
	for _, b := range all {
		if b.Date.Compare(date) != 0 {
			continue
		}
		day.Bookings = append(day.Bookings, b)
		day.Total += b.Price
	}

	sort.Slice(day.Bookings, func(i, j int) bool {
		return day.Bookings[i].Time.Compare(day.Bookings[j].Time) < 0
	})
	return day, nil
}

// ListEvents возвращает последние события аудита, новые первыми.
func (s *BookingService) ListEvents(ctx context.Context, limit int) ([]model.Event, error) {
	return s.events.ListRecent(ctx, limit)
}

// busyIntervals собирает занятые интервалы даты date, опуская запись excludeID.
func busyIntervals(all []model.Booking, date schedule.Date, excludeID string) []schedule.Interval {
	var busy []schedule.Interval
	for _, b := range all {
		if b.ID == excludeID || b.Date.Compare(date) != 0 {
			continue
		}
		busy = append(busy, b.Interval())
	}
	return busy
}

func sortByDateTime(bookings []model.Booking) {
	sort.Slice(bookings, func(i, j int) bool {
		if c := bookings[i].Date.Compare(bookings[j].Date); c != 0 {
			return c < 0
		}
		return bookings[i].Time.Compare(bookings[j].Time) < 0
	})
}

func validateSubmit(req SubmitRequest) error {
	if req.ServiceID == "" {
		return fmt.Errorf("%w: service is required", ErrValidation)
	}
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrValidation)
	}
	for _, field := range []struct {
		name  string
		value string
	}{
		{"fullname", req.FullName},
		{"address", req.Address},
		{"town", req.Town},
		{"phone", req.Phone},
	} {
		if strings.TrimSpace(field.value) == "" {
			return fmt.Errorf("%w: %s is required", ErrValidation, field.name)
		}
	}
	return nil
}

// recordEvent пишет событие аудита. Сбой аудита не должен ломать основную
// операцию, поэтому ошибка намеренно проглатывается.
func (s *BookingService) recordEvent(ctx context.Context, typ model.EventType, bookingID string, details map[string]any) {
	if s.events == nil {
		return
	}

	var payload []byte
	if details != nil {
		payload, _ = json.Marshal(details)
	}

	_ = s.events.Append(ctx, &model.Event{
		ID:        uuid.New(),
		EventType: typ,
		BookingID: bookingID,
		CreatedAt: s.now().UTC(),
		Details:   datatypes.JSON(payload),
	})
}
