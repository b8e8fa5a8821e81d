package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/osteoclinic/booking-core/internal/model"
	"github.com/osteoclinic/booking-core/internal/repository"
	"github.com/osteoclinic/booking-core/internal/schedule"
)

//
// In-memory фейки репозиториев
//

type fakeServiceRepo struct {
	services []model.Service
}

func (f *fakeServiceRepo) LoadAll(ctx context.Context) ([]model.Service, error) {
	return f.services, nil
}

func (f *fakeServiceRepo) GetByID(ctx context.Context, id string) (*model.Service, error) {
	for i := range f.services {
		if f.services[i].ID == id {
			s := f.services[i]
			return &s, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeServiceRepo) ReplaceAll(ctx context.Context, services []model.Service) error {
	f.services = services
	return nil
}

func (f *fakeServiceRepo) SeedDefaults(ctx context.Context, defaults []model.Service) error {
	if len(f.services) == 0 {
		f.services = defaults
	}
	return nil
}

type fakeBookingRepo struct {
	bookings     []model.Booking
	replaceCalls int
}

func (f *fakeBookingRepo) LoadAll(ctx context.Context) ([]model.Booking, error) {
	out := make([]model.Booking, len(f.bookings))
	copy(out, f.bookings)
	return out, nil
}

func (f *fakeBookingRepo) ReplaceAll(ctx context.Context, bookings []model.Booking) error {
	f.replaceCalls++
	f.bookings = make([]model.Booking, len(bookings))
	copy(f.bookings, bookings)
	return nil
}

type fakeEventRepo struct {
	events []model.Event
}

func (f *fakeEventRepo) Append(ctx context.Context, event *model.Event) error {
	f.events = append(f.events, *event)
	return nil
}

func (f *fakeEventRepo) ListRecent(ctx context.Context, limit int) ([]model.Event, error) {
	return f.events, nil
}

//
// Обвязка
//

func testCatalog() []model.Service {
	return []model.Service{
		{ID: "s1", Name: "Osteopatía general", DurationMin: 60, Price: 60, SortOrder: 1},
		{ID: "s4", Name: "Tratamiento cervical", DurationMin: 30, Price: 35, SortOrder: 2},
	}
}

func newTestService(bookings *fakeBookingRepo, events *fakeEventRepo, trust bool) *BookingService {
	svc := NewBookingService(
		&fakeServiceRepo{services: testCatalog()},
		bookings,
		events,
		schedule.DefaultWorkingDay(),
		trust,
	)
	svc.now = func() time.Time {
		return time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)
	}
	return svc
}

func mustDate(t *testing.T, s string) schedule.Date {
	t.Helper()
	d, err := schedule.ParseDate(s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func mustTimeOfDay(t *testing.T, s string) schedule.TimeOfDay {
	t.Helper()
	tod, err := schedule.ParseTimeOfDay(s)
	if err != nil {
		t.Fatalf("parse time %q: %v", s, err)
	}
	return tod
}

func validRequest(t *testing.T) SubmitRequest {
	t.Helper()
	return SubmitRequest{
		ServiceID: "s1",
		Date:      mustDate(t, "2025-06-10"),
		Time:      mustTimeOfDay(t, "10:00"),
		FullName:  "Ana García",
		Address:   "Calle Mayor 1",
		Town:      "Madrid",
		Phone:     "600123456",
	}
}

func existingBooking(t *testing.T, id, date, timeOfDay string, durationMin int, price float64) model.Booking {
	t.Helper()
	return model.Booking{
		ID:          id,
		Date:        mustDate(t, date),
		Time:        mustTimeOfDay(t, timeOfDay),
		FullName:    "Luis Pérez",
		Address:     "Av. Sol 2",
		Town:        "Getafe",
		Phone:       "600654321",
		ServiceID:   "s1",
		ServiceName: "Osteopatía general",
		DurationMin: durationMin,
		Price:       price,
	}
}

//
// Submit
//

func TestSubmit_Success(t *testing.T) {
	bookingRepo := &fakeBookingRepo{}
	eventRepo := &fakeEventRepo{}
	svc := newTestService(bookingRepo, eventRepo, false)

	booking, err := svc.Submit(context.Background(), validRequest(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if booking.ID == "" {
		t.Fatalf("expected assigned id")
	}
	if booking.CreatedAt.IsZero() {
		t.Fatalf("expected createdAt to be set")
	}
	// Параметры услуги копируются в запись.
	if booking.ServiceName != "Osteopatía general" || booking.DurationMin != 60 || booking.Price != 60 {
		t.Fatalf("expected copied service fields, got %+v", booking)
	}

	if len(bookingRepo.bookings) != 1 {
		t.Fatalf("expected 1 persisted booking, got %d", len(bookingRepo.bookings))
	}
	if len(eventRepo.events) != 1 || eventRepo.events[0].EventType != model.EventTypeBookingCreated {
		t.Fatalf("expected booking_created audit event, got %+v", eventRepo.events)
	}
}

func TestSubmit_ExactSlotTaken(t *testing.T) {
	bookingRepo := &fakeBookingRepo{
		bookings: []model.Booking{existingBooking(t, "b1", "2025-06-10", "10:00", 60, 60)},
	}
	svc := newTestService(bookingRepo, &fakeEventRepo{}, false)

	_, err := svc.Submit(context.Background(), validRequest(t))
	if !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}
	if len(bookingRepo.bookings) != 1 {
		t.Fatalf("expected store unchanged, got %d bookings", len(bookingRepo.bookings))
	}
}

func TestSubmit_ContainedOverlap(t *testing.T) {
	// 10:30–11:00 внутри 10:00–11:00.
	bookingRepo := &fakeBookingRepo{
		bookings: []model.Booking{existingBooking(t, "b1", "2025-06-10", "10:00", 60, 60)},
	}
	svc := newTestService(bookingRepo, &fakeEventRepo{}, false)

	req := validRequest(t)
	req.ServiceID = "s4" // 30 минут
	req.Time = mustTimeOfDay(t, "10:30")

	if _, err := svc.Submit(context.Background(), req); !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}
}

func TestSubmit_BoundaryTouchAllowed(t *testing.T) {
	// Существующая запись заканчивается в 11:00 — старт в 11:00 допустим.
	bookingRepo := &fakeBookingRepo{
		bookings: []model.Booking{existingBooking(t, "b1", "2025-06-10", "10:00", 60, 60)},
	}
	svc := newTestService(bookingRepo, &fakeEventRepo{}, false)

	req := validRequest(t)
	req.ServiceID = "s4"
	req.Time = mustTimeOfDay(t, "11:00")

	if _, err := svc.Submit(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bookingRepo.bookings) != 2 {
		t.Fatalf("expected 2 bookings, got %d", len(bookingRepo.bookings))
	}
}

func TestSubmit_OtherDateNotConflict(t *testing.T) {
	bookingRepo := &fakeBookingRepo{
		bookings: []model.Booking{existingBooking(t, "b1", "2025-06-11", "10:00", 60, 60)},
	}
	svc := newTestService(bookingRepo, &fakeEventRepo{}, false)

	if _, err := svc.Submit(context.Background(), validRequest(t)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSubmit_MissingFields(t *testing.T) {
	svc := newTestService(&fakeBookingRepo{}, &fakeEventRepo{}, false)

	cases := []func(*SubmitRequest){
		func(r *SubmitRequest) { r.FullName = "" },
		func(r *SubmitRequest) { r.Address = "   " },
		func(r *SubmitRequest) { r.Town = "" },
		func(r *SubmitRequest) { r.Phone = "" },
		func(r *SubmitRequest) { r.ServiceID = "" },
		func(r *SubmitRequest) { r.Date = schedule.Date{} },
	}

	for i, mutate := range cases {
		req := validRequest(t)
		mutate(&req)
		if _, err := svc.Submit(context.Background(), req); !errors.Is(err, ErrValidation) {
			t.Fatalf("case %d: expected ErrValidation, got %v", i, err)
		}
	}
}

func TestSubmit_UnknownService(t *testing.T) {
	svc := newTestService(&fakeBookingRepo{}, &fakeEventRepo{}, false)

	req := validRequest(t)
	req.ServiceID = "nope"

	if _, err := svc.Submit(context.Background(), req); !errors.Is(err, ErrUnknownService) {
		t.Fatalf("expected ErrUnknownService, got %v", err)
	}
}

//
// FreeSlots
//

func TestFreeSlots_UnknownService(t *testing.T) {
	svc := newTestService(&fakeBookingRepo{}, &fakeEventRepo{}, false)

	_, err := svc.FreeSlots(context.Background(), "nope", mustDate(t, "2025-06-10"))
	if !errors.Is(err, ErrUnknownService) {
		t.Fatalf("expected ErrUnknownService, got %v", err)
	}
}

func TestFreeSlots_ExcludesBooked(t *testing.T) {
	bookingRepo := &fakeBookingRepo{
		bookings: []model.Booking{existingBooking(t, "b1", "2025-06-10", "10:00", 60, 60)},
	}
	svc := newTestService(bookingRepo, &fakeEventRepo{}, false)

	slots, err := svc.FreeSlots(context.Background(), "s4", mustDate(t, "2025-06-10"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, s := range slots {
		if s == mustTimeOfDay(t, "10:00") || s == mustTimeOfDay(t, "10:30") {
			t.Fatalf("expected booked hour to be excluded, got %v", s)
		}
	}
}

//
// Cancel
//

func TestCancel_Idempotent(t *testing.T) {
	bookingRepo := &fakeBookingRepo{
		bookings: []model.Booking{existingBooking(t, "b1", "2025-06-10", "10:00", 60, 60)},
	}
	svc := newTestService(bookingRepo, &fakeEventRepo{}, false)

	if err := svc.Cancel(context.Background(), "b1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bookingRepo.bookings) != 0 {
		t.Fatalf("expected empty store, got %d", len(bookingRepo.bookings))
	}

	// Повторная отмена того же ID — успешный no-op без записи в хранилище.
	if err := svc.Cancel(context.Background(), "b1"); err != nil {
		t.Fatalf("expected second cancel to be a no-op, got %v", err)
	}
	if bookingRepo.replaceCalls != 1 {
		t.Fatalf("expected 1 write, got %d", bookingRepo.replaceCalls)
	}
}

//
// Reschedule
//

func TestReschedule_NotFound(t *testing.T) {
	svc := newTestService(&fakeBookingRepo{}, &fakeEventRepo{}, false)

	_, err := svc.Reschedule(context.Background(), "nope", mustDate(t, "2025-06-10"), mustTimeOfDay(t, "12:00"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReschedule_ConflictChecked(t *testing.T) {
	bookingRepo := &fakeBookingRepo{
		bookings: []model.Booking{
			existingBooking(t, "b1", "2025-06-10", "10:00", 60, 60),
			existingBooking(t, "b2", "2025-06-10", "12:00", 60, 60),
		},
	}
	svc := newTestService(bookingRepo, &fakeEventRepo{}, false)

	_, err := svc.Reschedule(context.Background(), "b2", mustDate(t, "2025-06-10"), mustTimeOfDay(t, "10:30"))
	if !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}
}

func TestReschedule_TrustOperatorSkipsCheck(t *testing.T) {
	bookingRepo := &fakeBookingRepo{
		bookings: []model.Booking{
			existingBooking(t, "b1", "2025-06-10", "10:00", 60, 60),
			existingBooking(t, "b2", "2025-06-10", "12:00", 60, 60),
		},
	}
	svc := newTestService(bookingRepo, &fakeEventRepo{}, true)

	booking, err := svc.Reschedule(context.Background(), "b2", mustDate(t, "2025-06-10"), mustTimeOfDay(t, "10:30"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.Time != mustTimeOfDay(t, "10:30") {
		t.Fatalf("expected applied time, got %v", booking.Time)
	}
}

func TestReschedule_SelfOverlapAllowed(t *testing.T) {
	// Сдвиг записи внутри её собственного интервала — не конфликт.
	bookingRepo := &fakeBookingRepo{
		bookings: []model.Booking{existingBooking(t, "b1", "2025-06-10", "10:00", 60, 60)},
	}
	svc := newTestService(bookingRepo, &fakeEventRepo{}, false)

	booking, err := svc.Reschedule(context.Background(), "b1", mustDate(t, "2025-06-10"), mustTimeOfDay(t, "10:15"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.Time != mustTimeOfDay(t, "10:15") {
		t.Fatalf("expected applied time, got %v", booking.Time)
	}
}

func TestReschedule_RecordsAuditEvent(t *testing.T) {
	bookingRepo := &fakeBookingRepo{
		bookings: []model.Booking{existingBooking(t, "b1", "2025-06-10", "10:00", 60, 60)},
	}
	eventRepo := &fakeEventRepo{}
	svc := newTestService(bookingRepo, eventRepo, false)

	if _, err := svc.Reschedule(context.Background(), "b1", mustDate(t, "2025-06-12"), mustTimeOfDay(t, "09:00")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(eventRepo.events) != 1 || eventRepo.events[0].EventType != model.EventTypeBookingRescheduled {
		t.Fatalf("expected booking_rescheduled audit event, got %+v", eventRepo.events)
	}
}

//
// Выборки
//

func TestListUpcoming_Sorted(t *testing.T) {
	bookingRepo := &fakeBookingRepo{
		bookings: []model.Booking{
			existingBooking(t, "b1", "2025-06-11", "09:00", 30, 35),
			existingBooking(t, "b2", "2025-06-10", "16:00", 30, 35),
			existingBooking(t, "b3", "2025-06-10", "09:30", 30, 35),
		},
	}
	svc := newTestService(bookingRepo, &fakeEventRepo{}, false)

	all, err := svc.ListUpcoming(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantOrder := []string{"b3", "b2", "b1"}
	for i, want := range wantOrder {
		if all[i].ID != want {
			t.Fatalf("expected order %v, got %v at %d", wantOrder, all[i].ID, i)
		}
	}
}

func TestListByTown_GroupingAndOrder(t *testing.T) {
	madrid1 := existingBooking(t, "b1", "2025-06-11", "09:00", 30, 35)
	madrid1.Town = "Madrid"
	madrid2 := existingBooking(t, "b2", "2025-06-10", "16:00", 30, 35)
	madrid2.Town = "Madrid"
	getafe := existingBooking(t, "b3", "2025-06-10", "09:30", 30, 35)
	getafe.Town = "Getafe"
	// Регистр значим: "madrid" — отдельная группа.
	lower := existingBooking(t, "b4", "2025-06-10", "11:00", 30, 35)
	lower.Town = "madrid"

	bookingRepo := &fakeBookingRepo{bookings: []model.Booking{madrid1, madrid2, getafe, lower}}
	svc := newTestService(bookingRepo, &fakeEventRepo{}, false)

	groups, err := svc.ListByTown(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}
	if groups[0].Town != "Getafe" || groups[1].Town != "Madrid" || groups[2].Town != "madrid" {
		t.Fatalf("unexpected group order: %v, %v, %v", groups[0].Town, groups[1].Town, groups[2].Town)
	}
	// Внутри группы — по (дата, время).
	if groups[1].Bookings[0].ID != "b2" || groups[1].Bookings[1].ID != "b1" {
		t.Fatalf("unexpected order inside group: %+v", groups[1].Bookings)
	}
}

func TestDaySchedule_TotalIndependentOfOrder(t *testing.T) {
	b1 := existingBooking(t, "b1", "2025-06-10", "16:00", 60, 60)
	b2 := existingBooking(t, "b2", "2025-06-10", "09:00", 30, 35)
	other := existingBooking(t, "b3", "2025-06-11", "09:00", 30, 35)
	free := existingBooking(t, "b4", "2025-06-10", "11:00", 30, 0) // цена не задана

	for _, order := range [][]model.Booking{
		{b1, b2, other, free},
		{free, other, b2, b1},
	} {
		bookingRepo := &fakeBookingRepo{bookings: order}
		svc := newTestService(bookingRepo, &fakeEventRepo{}, false)

		day, err := svc.DaySchedule(context.Background(), mustDate(t, "2025-06-10"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if day.Total != 95 {
			t.Fatalf("expected total 95, got %v", day.Total)
		}
		if len(day.Bookings) != 3 {
			t.Fatalf("expected 3 bookings, got %d", len(day.Bookings))
		}
		if day.Bookings[0].ID != "b2" || day.Bookings[1].ID != "b4" || day.Bookings[2].ID != "b1" {
			t.Fatalf("expected ascending time order, got %+v", day.Bookings)
		}
	}
}
