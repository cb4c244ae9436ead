package database

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/jp3/expedientes-api/pkg/config"
)

// NewPostgres returns a client for the hosted store. Initial connectivity is
// retried on a fixed linear schedule so a cold database container does not
// kill the process at boot.
func NewPostgres(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)

	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	db.SetConnMaxLifetime(1 * time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	retries := cfg.ConnectRetries
	if retries < 1 {
		retries = 1
	}
	interval := cfg.ConnectInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}

	for attempt := 1; ; attempt++ {
		err = db.Ping()
		if err == nil {
			return db, nil
		}
		if attempt >= retries {
			break
		}
		time.Sleep(interval)
	}

	_ = db.Close()
	return nil, fmt.Errorf("connect postgres after %d attempts: %w", retries, err)
}
