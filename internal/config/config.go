package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type Config struct {
	Addr              string
	Env               string // development | production
	LogLevel          string
	DBDriver          string
	DatabaseURL       string
	Timezone          *time.Location
	RecomputeInterval time.Duration
	PublicBaseURL     string
	StaffToken        string

	// staff notifications; disabled unless both are set
	TelegramToken  string
	TelegramChatID int64
	TelegramAPIURL string
}

// Load reads defaults, an optional .env file and the environment.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return nil, errors.Wrapf(err, "load %s", envFile)
			}
		} else if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "stat %s", envFile)
		}
	}

	v := viper.New()
	v.SetDefault("ADDR", ":8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_URL", "clubs.db")
	v.SetDefault("TIMEZONE", "Asia/Dubai")
	v.SetDefault("RECOMPUTE_INTERVAL", "0s")
	v.SetDefault("PUBLIC_BASE_URL", "")
	v.SetDefault("STAFF_TOKEN", "")
	v.SetDefault("TG_BOT_TOKEN", "")
	v.SetDefault("TG_STAFF_CHAT_ID", 0)
	v.SetDefault("TG_API_URL", "")
	v.AutomaticEnv()

	loc, err := time.LoadLocation(v.GetString("TIMEZONE"))
	if err != nil {
		// fallback when tzdata is missing
		loc = time.FixedZone("GST", 4*3600)
	}

	interval, err := time.ParseDuration(v.GetString("RECOMPUTE_INTERVAL"))
	if err != nil {
		return nil, errors.Wrap(err, "RECOMPUTE_INTERVAL")
	}

	return &Config{
		Addr:              v.GetString("ADDR"),
		Env:               v.GetString("APP_ENV"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		DBDriver:          v.GetString("DB_DRIVER"),
		DatabaseURL:       v.GetString("DATABASE_URL"),
		Timezone:          loc,
		RecomputeInterval: interval,
		PublicBaseURL:     v.GetString("PUBLIC_BASE_URL"),
		StaffToken:        v.GetString("STAFF_TOKEN"),
		TelegramToken:     v.GetString("TG_BOT_TOKEN"),
		TelegramChatID:    v.GetInt64("TG_STAFF_CHAT_ID"),
		TelegramAPIURL:    v.GetString("TG_API_URL"),
	}, nil
}

func (c *Config) Production() bool { return c.Env == "production" }

func (c *Config) NotifyStaff() bool { return c.TelegramToken != "" && c.TelegramChatID != 0 }
