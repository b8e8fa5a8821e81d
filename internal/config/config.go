package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/osteoclinic/booking-core/internal/schedule"
)

// Драйверы хранилища. По умолчанию — sqlite: клиника живёт на одной машине,
// вся база — один файл. Postgres — на случай последующей централизации.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type DBConfig struct {
	Driver string

	// sqlite
	Path string

	// postgres
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	TimeZone        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifeTime int // минут
}

type Config struct {
	DB DBConfig

	// Рабочий день клиники (часы локальные).
	OpenHour       int
	CloseHour      int
	BreakStartHour int
	BreakEndHour   int
	SlotStepMin    int

	// Операторский доступ: bcrypt-хеш имеет приоритет над открытым паролем.
	OperatorPasswordHash string
	OperatorPassword     string

	// Перенос записи оператором без проверки конфликтов
	// (политика "оператору виднее").
	TrustOperatorReschedule bool
}

func Load() (*Config, error) {
	cfg := &Config{
		DB: DBConfig{
			Driver:          getEnv("DB_DRIVER", DriverSQLite),
			Path:            getEnv("DB_PATH", "clinic.db"),
			Host:            getEnv("DB_HOST", "localhost"),
			User:            getEnv("DB_USER", "clinic"),
			Password:        getEnv("DB_PASSWORD", "clinic"),
			Name:            getEnv("DB_NAME", "clinic_db"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			TimeZone:        getEnv("DB_TIMEZONE", "Europe/Madrid"),
			Port:            getEnvInt("DB_PORT", 5432),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifeTime: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 30),
		},
		OpenHour:                getEnvInt("CLINIC_OPEN_HOUR", 9),
		CloseHour:               getEnvInt("CLINIC_CLOSE_HOUR", 19),
		BreakStartHour:          getEnvInt("CLINIC_BREAK_START_HOUR", 14),
		BreakEndHour:            getEnvInt("CLINIC_BREAK_END_HOUR", 16),
		SlotStepMin:             getEnvInt("CLINIC_SLOT_STEP_MIN", 15),
		OperatorPasswordHash:    getEnv("OPERATOR_PASSWORD_HASH", ""),
		OperatorPassword:        getEnv("OPERATOR_PASSWORD", "2580"),
		TrustOperatorReschedule: getEnvBool("TRUST_OPERATOR_RESCHEDULE", false),
	}

	// минимальная валидация
	switch cfg.DB.Driver {
	case DriverSQLite:
		if cfg.DB.Path == "" {
			return nil, fmt.Errorf("invalid DB config: sqlite path must not be empty")
		}
	case DriverPostgres:
		if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
			return nil, fmt.Errorf("invalid DB config: host/user/name must not be empty")
		}
	default:
		return nil, fmt.Errorf("invalid DB config: unknown driver %q", cfg.DB.Driver)
	}

	if err := cfg.WorkingDay().Validate(); err != nil {
		return nil, fmt.Errorf("invalid working day config: %w", err)
	}

	return cfg, nil
}

// WorkingDay собирает рабочий день клиники из конфигурации.
func (c *Config) WorkingDay() schedule.WorkingDay {
	return schedule.WorkingDay{
		Open:       schedule.TimeOfDay{Hour: c.OpenHour},
		Close:      schedule.TimeOfDay{Hour: c.CloseHour},
		BreakStart: schedule.TimeOfDay{Hour: c.BreakStartHour},
		BreakEnd:   schedule.TimeOfDay{Hour: c.BreakEndHour},
		StepMin:    c.SlotStepMin,
	}
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}
