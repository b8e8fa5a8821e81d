package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"

	"github.com/osteoclinic/booking-core/internal/config"
	"github.com/osteoclinic/booking-core/internal/db"
	"github.com/osteoclinic/booking-core/internal/model"
	"github.com/osteoclinic/booking-core/internal/repository"
	"github.com/osteoclinic/booking-core/internal/schedule"
	"github.com/osteoclinic/booking-core/internal/service"
)

func main() {
	var (
		catalogFlag  = flag.Bool("catalog", false, "показать каталог услуг")
		slotsFlag    = flag.String("slots", "", "ID услуги: свободные слоты на дату -date")
		submitFlag   = flag.Bool("submit", false, "создать запись (-service, -date, -time, -fullname, -address, -town, -phone)")
		dateFlag     = flag.String("date", "", "дата YYYY-MM-DD")
		timeFlag     = flag.String("time", "", "время HH:MM")
		fullnameFlag = flag.String("fullname", "", "имя клиента")
		addressFlag  = flag.String("address", "", "адрес клиента")
		townFlag     = flag.String("town", "", "населённый пункт")
		phoneFlag    = flag.String("phone", "", "телефон клиента")
		serviceFlag  = flag.String("service", "", "ID услуги для -submit")

		// операторские команды — за парольным шлюзом
		operatorPass = flag.String("operator-pass", "", "пароль оператора")
		dayFlag      = flag.String("day", "", "расписание и выручка на дату YYYY-MM-DD")
		upcomingFlag = flag.Bool("upcoming", false, "все записи по (дата, время)")
		byTownFlag   = flag.Bool("by-town", false, "записи по населённым пунктам")
		eventsFlag   = flag.Bool("events", false, "последние события аудита")
		cancelFlag   = flag.String("cancel", "", "отменить запись по ID")
		moveFlag     = flag.String("reschedule", "", "перенести запись по ID на -date/-time")
		pageFlag     = flag.Int("page", 1, "страница операторской выдачи")
		pageSizeFlag = flag.Int("page-size", schedule.DefaultPageSize, "размер страницы")
	)
	flag.Parse()

	ctx := context.Background()

	// 1. Загружаем конфиг из env.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// 2. Подключаемся к хранилищу через GORM.
	gormDB, err := db.NewGormDB(&cfg.DB)
	if err != nil {
		log.Fatalf("init db: %v", err)
	}

	// 3. Миграции моделей.
	if err := model.AutoMigrate(gormDB); err != nil {
		log.Fatalf("auto migrate: %v", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatalf("sql DB: %v", err)
	}
	defer sqlDB.Close()

	// 4. Репозитории и сев стартового каталога.
	serviceRepo := repository.NewGormServiceRepository(gormDB)
	bookingRepo := repository.NewGormBookingRepository(gormDB)
	eventRepo := repository.NewGormEventRepository(gormDB)

	if err := serviceRepo.SeedDefaults(ctx, model.DefaultCatalog()); err != nil {
		log.Fatalf("seed catalog: %v", err)
	}

	// 5. Сервис жизненного цикла и операторский шлюз.
	bookings := service.NewBookingService(
		serviceRepo,
		bookingRepo,
		eventRepo,
		cfg.WorkingDay(),
		cfg.TrustOperatorReschedule,
	)
	gate := service.NewOperatorGate(cfg.OperatorPasswordHash, cfg.OperatorPassword)

	// 6. Диспетчеризация команд.
	switch {
	case *catalogFlag:
		services, err := bookings.Catalog(ctx)
		if err != nil {
			log.Fatalf("catalog: %v", err)
		}
		for _, s := range services {
			fmt.Printf("%s\t%s\t%d min\t%.2f €\n", s.ID, s.Name, s.DurationMin, s.Price)
		}

	case *slotsFlag != "":
		date := mustDate(*dateFlag)
		slots, err := bookings.FreeSlots(ctx, *slotsFlag, date)
		if err != nil {
			log.Fatalf("free slots: %v", err)
		}
		if len(slots) == 0 {
			fmt.Println("no free slots")
			return
		}
		for _, slot := range slots {
			fmt.Println(slot)
		}

	case *submitFlag:
		booking, err := bookings.Submit(ctx, service.SubmitRequest{
			ServiceID: *serviceFlag,
			Date:      mustDate(*dateFlag),
			Time:      mustTime(*timeFlag),
			FullName:  *fullnameFlag,
			Address:   *addressFlag,
			Town:      *townFlag,
			Phone:     *phoneFlag,
		})
		if err != nil {
			if errors.Is(err, service.ErrSlotTaken) {
				log.Fatalf("slot is already taken, pick another one")
			}
			log.Fatalf("submit: %v", err)
		}
		fmt.Printf("booked %s: %s %s, %s\n", booking.ID, booking.Date, booking.Time, booking.ServiceName)

	case *dayFlag != "":
		requireOperator(gate, *operatorPass)
		day, err := bookings.DaySchedule(ctx, mustDate(*dayFlag))
		if err != nil {
			log.Fatalf("day schedule: %v", err)
		}
		for _, b := range day.Bookings {
			fmt.Printf("%s\t%s\t%s\t%s\n", b.Time, b.ServiceName, b.FullName, b.Town)
		}
		fmt.Printf("total: %.2f €\n", day.Total)

	case *upcomingFlag:
		requireOperator(gate, *operatorPass)
		all, err := bookings.ListUpcoming(ctx)
		if err != nil {
			log.Fatalf("upcoming: %v", err)
		}
		page := schedule.Paginate(all, *pageFlag, *pageSizeFlag)
		for _, b := range page.Items {
			fmt.Printf("%s %s\t%s\t%s\t%s\t%s\n", b.Date, b.Time, b.ServiceName, b.FullName, b.Phone, b.ID)
		}
		fmt.Printf("page %d, %d total\n", page.Page, page.Total)

	case *byTownFlag:
		requireOperator(gate, *operatorPass)
		groups, err := bookings.ListByTown(ctx)
		if err != nil {
			log.Fatalf("by town: %v", err)
		}
		for _, g := range groups {
			fmt.Printf("== %s\n", g.Town)
			for _, b := range g.Bookings {
				fmt.Printf("%s %s\t%s\t%s\t%s\n", b.Date, b.Time, b.ServiceName, b.FullName, b.Phone)
			}
		}

	case *eventsFlag:
		requireOperator(gate, *operatorPass)
		events, err := bookings.ListEvents(ctx, *pageSizeFlag)
		if err != nil {
			log.Fatalf("events: %v", err)
		}
		for _, e := range events {
			fmt.Printf("%s\t%s\t%s\t%s\n", e.CreatedAt.Format("2006-01-02 15:04:05"), e.EventType, e.BookingID, string(e.Details))
		}

	case *cancelFlag != "":
		requireOperator(gate, *operatorPass)
		if err := bookings.Cancel(ctx, *cancelFlag); err != nil {
			log.Fatalf("cancel: %v", err)
		}
		fmt.Println("cancelled")

	case *moveFlag != "":
		requireOperator(gate, *operatorPass)
		booking, err := bookings.Reschedule(ctx, *moveFlag, mustDate(*dateFlag), mustTime(*timeFlag))
		if err != nil {
			log.Fatalf("reschedule: %v", err)
		}
		fmt.Printf("rescheduled %s to %s %s\n", booking.ID, booking.Date, booking.Time)

	default:
		flag.Usage()
	}
}

func requireOperator(gate *service.OperatorGate, password string) {
	if err := gate.Verify(password); err != nil {
		log.Fatalf("operator access denied")
	}
}

func mustDate(s string) schedule.Date {
	d, err := schedule.ParseDate(s)
	if err != nil {
		log.Fatalf("bad -date: %v", err)
	}
	return d
}

func mustTime(s string) schedule.TimeOfDay {
	t, err := schedule.ParseTimeOfDay(s)
	if err != nil {
		log.Fatalf("bad -time: %v", err)
	}
	return t
}
