package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Waitlist WaitlistConfig
}

type AppConfig struct {
	Port string
	Env  string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// WaitlistConfig is the single authoritative source for invitation policy
// values. Callers may pass zero values to invitation creation to mean "use
// the configured default"; caller-supplied confirmation windows are always
// capped at MaxConfirmationHours.
type WaitlistConfig struct {
	// DefaultConfirmationHours is applied when the caller does not supply a
	// confirmation window for an invitation.
	DefaultConfirmationHours int
	// MaxConfirmationHours caps caller-supplied confirmation windows.
	MaxConfirmationHours int
	// DefaultPaymentAmount is the deposit requested on an invitation when
	// the clinic service does not define a price.
	DefaultPaymentAmount decimal.Decimal
	// MonitorInterval is the deadline monitor sweep period.
	MonitorInterval time.Duration
	// TopCandidates is the conventional truncation for candidate listings.
	TopCandidates int
	// ReservationGrace extends the Redis slot reservation past the
	// invitation deadline so the expiry cascade never races the marker TTL.
	ReservationGrace time.Duration
	// ReminderLead is how far before the deadline a reminder goes out.
	// Zero disables reminders.
	ReminderLead time.Duration
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	// .env is optional, environment variables always apply
	if err := viper.ReadInConfig(); err != nil {
		var pathErr *fs.PathError
		if !errors.As(err, &pathErr) {
			return nil, err
		}
	}

	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("WAITLIST_DEFAULT_CONFIRMATION_HOURS", 24)
	viper.SetDefault("WAITLIST_MAX_CONFIRMATION_HOURS", 48)
	viper.SetDefault("WAITLIST_DEFAULT_PAYMENT_AMOUNT", "500")
	viper.SetDefault("WAITLIST_MONITOR_INTERVAL", "30s")
	viper.SetDefault("WAITLIST_TOP_CANDIDATES", 5)
	viper.SetDefault("WAITLIST_RESERVATION_GRACE", "1h")
	viper.SetDefault("WAITLIST_REMINDER_LEAD", "2h")

	accessExpiry, err := time.ParseDuration(viper.GetString("JWT_ACCESS_EXPIRY"))
	if err != nil {
		accessExpiry = 15 * time.Minute
	}

	refreshExpiry, err := time.ParseDuration(viper.GetString("JWT_REFRESH_EXPIRY"))
	if err != nil {
		refreshExpiry = 7 * 24 * time.Hour
	}

	monitorInterval, err := time.ParseDuration(viper.GetString("WAITLIST_MONITOR_INTERVAL"))
	if err != nil {
		monitorInterval = 30 * time.Second
	}

	reservationGrace, err := time.ParseDuration(viper.GetString("WAITLIST_RESERVATION_GRACE"))
	if err != nil {
		reservationGrace = time.Hour
	}

	reminderLead, err := time.ParseDuration(viper.GetString("WAITLIST_REMINDER_LEAD"))
	if err != nil {
		reminderLead = 2 * time.Hour
	}

	paymentAmount, err := decimal.NewFromString(viper.GetString("WAITLIST_DEFAULT_PAYMENT_AMOUNT"))
	if err != nil {
		paymentAmount = decimal.NewFromInt(500)
	}

	config := &Config{
		App: AppConfig{
			Port: viper.GetString("APP_PORT"),
			Env:  viper.GetString("APP_ENV"),
		},
		DB: DBConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Name:     viper.GetString("DB_NAME"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:        viper.GetString("JWT_SECRET"),
			AccessExpiry:  accessExpiry,
			RefreshExpiry: refreshExpiry,
		},
		Waitlist: WaitlistConfig{
			DefaultConfirmationHours: viper.GetInt("WAITLIST_DEFAULT_CONFIRMATION_HOURS"),
			MaxConfirmationHours:     viper.GetInt("WAITLIST_MAX_CONFIRMATION_HOURS"),
			DefaultPaymentAmount:     paymentAmount,
			MonitorInterval:          monitorInterval,
			TopCandidates:            viper.GetInt("WAITLIST_TOP_CANDIDATES"),
			ReservationGrace:         reservationGrace,
			ReminderLead:             reminderLead,
		},
	}

	return config, nil
}
