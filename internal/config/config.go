package config

import (
	"fmt"
	"log"
	"os"

	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/naruebet/worklog-api/internal/models"
)

type Config struct {
	PORT      string
	LOG_LEVEL string

	DB_DRIVER   string // "postgres" or "sqlite"
	DB_HOST     string
	DB_PORT     string
	DB_USER     string
	DB_PASSWORD string
	DB_NAME     string
	DB_PATH     string // sqlite only

	JWT_SECRET     string
	ROTATE_REFRESH bool

	UPLOAD_DIR string

	KAFKA_ADDRESS string
	EVENT_TOPIC   string

	ES_URL      string
	ES_USER     string
	ES_PASSWORD string
	ES_INDEX    string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		PORT:      EnvDefault("PORT", "8080"),
		LOG_LEVEL: EnvDefault("LOG_LEVEL", "info"),

		DB_DRIVER:   EnvDefault("DB_DRIVER", "postgres"),
		DB_HOST:     os.Getenv("DB_HOST"),
		DB_PORT:     EnvDefault("DB_PORT", "5432"),
		DB_USER:     os.Getenv("DB_USER"),
		DB_PASSWORD: os.Getenv("DB_PASSWORD"),
		DB_NAME:     os.Getenv("DB_NAME"),
		DB_PATH:     EnvDefault("DB_PATH", "worklog.db"),

		JWT_SECRET:     os.Getenv("JWT_SECRET"),
		ROTATE_REFRESH: os.Getenv("ROTATE_REFRESH") == "true",

		UPLOAD_DIR: EnvDefault("UPLOAD_DIR", "uploads"),

		KAFKA_ADDRESS: os.Getenv("KAFKA_ADDRESS"),
		EVENT_TOPIC:   EnvDefault("EVENT_TOPIC", "worklog_events"),

		ES_URL:      os.Getenv("ES_URL"),
		ES_USER:     os.Getenv("ES_USER"),
		ES_PASSWORD: os.Getenv("ES_PASSWORD"),
		ES_INDEX:    EnvDefault("ES_INDEX", "worklogs"),
	}

	MustNonEmpty(config.JWT_SECRET, "JWT_SECRET")

	return config, nil
}

// InitDB opens the configured database and migrates the schema. Postgres is
// the production driver; sqlite keeps local development and CI free of an
// external server.
func InitDB(cfg *Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DB_DRIVER {
	case "sqlite":
		dialector = sqlite.Open(cfg.DB_PATH)
	default:
		dsn := fmt.Sprintf(
			"postgres://%s:%s@%s:%s/%s?sslmode=disable",
			cfg.DB_USER, cfg.DB_PASSWORD, cfg.DB_HOST, cfg.DB_PORT, cfg.DB_NAME,
		)
		dialector = postgres.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Worklog{}, &models.GalleryImage{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return db, nil
}
