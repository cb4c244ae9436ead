package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string
	Version   string

	Database  DatabaseConfig
	Legacy    LegacyDatabaseConfig
	Auth      AuthConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Migration MigrationConfig
}

// DatabaseConfig describes the hosted Postgres store backing all entities.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnectRetries  int
	ConnectInterval time.Duration
}

// LegacyDatabaseConfig describes the MySQL source consumed only by cmd/migrate.
type LegacyDatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	PoolSize int
}

// AuthConfig points at the external authentication collaborator.
type AuthConfig struct {
	BaseURL        string
	AnonKey        string
	ServiceRoleKey string
	Timeout        time.Duration

	// Seed aliases let short usernames resolve to full login emails.
	AdminAlias string
	AdminEmail string
	UserAlias  string
	UserEmail  string
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// MigrationConfig tunes the one-shot legacy import.
type MigrationConfig struct {
	MappingDir    string
	BatchSize     int
	CaseFileBatch int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")
	cfg.Version = v.GetString("APP_VERSION")

	cfg.Database = DatabaseConfig{
		Host:            v.GetString("DB_HOST"),
		Port:            v.GetInt("DB_PORT"),
		User:            v.GetString("DB_USER"),
		Password:        v.GetString("DB_PASSWORD"),
		Name:            v.GetString("DB_NAME"),
		SSLMode:         v.GetString("DB_SSL_MODE"),
		MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
		ConnectRetries:  v.GetInt("DB_CONNECT_RETRIES"),
		ConnectInterval: parseDuration(v.GetString("DB_CONNECT_INTERVAL"), 2*time.Second),
	}

	cfg.Legacy = LegacyDatabaseConfig{
		Host:     v.GetString("LEGACY_DB_HOST"),
		Port:     v.GetInt("LEGACY_DB_PORT"),
		User:     v.GetString("LEGACY_DB_USER"),
		Password: v.GetString("LEGACY_DB_PASSWORD"),
		Name:     v.GetString("LEGACY_DB_NAME"),
		PoolSize: v.GetInt("LEGACY_DB_POOL_SIZE"),
	}

	cfg.Auth = AuthConfig{
		BaseURL:        v.GetString("AUTH_BASE_URL"),
		AnonKey:        v.GetString("AUTH_ANON_KEY"),
		ServiceRoleKey: v.GetString("AUTH_SERVICE_ROLE_KEY"),
		Timeout:        parseDuration(v.GetString("AUTH_TIMEOUT"), 10*time.Second),
		AdminAlias:     v.GetString("SEED_ADMIN_USERNAME"),
		AdminEmail:     v.GetString("SEED_ADMIN_EMAIL"),
		UserAlias:      v.GetString("SEED_USER_USERNAME"),
		UserEmail:      v.GetString("SEED_USER_EMAIL"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 7*24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Migration = MigrationConfig{
		MappingDir:    v.GetString("MIGRATION_MAPPING_DIR"),
		BatchSize:     v.GetInt("MIGRATION_BATCH_SIZE"),
		CaseFileBatch: v.GetInt("MIGRATION_CASE_FILE_BATCH"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api")
	v.SetDefault("APP_VERSION", "1.0.0")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "expedientes")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONNECT_RETRIES", 5)
	v.SetDefault("DB_CONNECT_INTERVAL", "2s")

	v.SetDefault("LEGACY_DB_HOST", "127.0.0.1")
	v.SetDefault("LEGACY_DB_PORT", 3306)
	v.SetDefault("LEGACY_DB_USER", "root")
	v.SetDefault("LEGACY_DB_PASSWORD", "")
	v.SetDefault("LEGACY_DB_NAME", "jp3_db")
	v.SetDefault("LEGACY_DB_POOL_SIZE", 10)

	v.SetDefault("AUTH_BASE_URL", "http://localhost:9999/auth/v1")
	v.SetDefault("AUTH_ANON_KEY", "")
	v.SetDefault("AUTH_SERVICE_ROLE_KEY", "")
	v.SetDefault("AUTH_TIMEOUT", "10s")
	v.SetDefault("SEED_ADMIN_USERNAME", "admin")
	v.SetDefault("SEED_ADMIN_EMAIL", "admin@example.com")
	v.SetDefault("SEED_USER_USERNAME", "usuario")
	v.SetDefault("SEED_USER_EMAIL", "usuario@example.com")

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "168h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("MIGRATION_MAPPING_DIR", "./mappings")
	v.SetDefault("MIGRATION_BATCH_SIZE", 50)
	v.SetDefault("MIGRATION_CASE_FILE_BATCH", 20)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
