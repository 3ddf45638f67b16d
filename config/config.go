package config

import (
	"os"
	"strconv"
)

type Config struct {
	Server   ServerConfig
	Logger   LoggerConfig
	Storage  StorageConfig
	Supabase SupabaseConfig
	SQLite   SQLiteConfig
}

type ServerConfig struct {
	AppEnv   string
	HTTPPort string
}

type LoggerConfig struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
}

// StorageConfig selects the persistence backend at startup.
// Backend is either "supabase" (remote table service) or "local" (embedded sqlite).
type StorageConfig struct {
	Backend string
}

type SupabaseConfig struct {
	URL            string
	APIKey         string
	TimeoutSeconds int
}

type SQLiteConfig struct {
	Path string
}

func LoadEnv() *Config {
	return &Config{
		Server: ServerConfig{
			AppEnv:   getEnv("APP_ENV", "dev"),
			HTTPPort: getEnv("HTTP_PORT", ":8080"),
		},
		Logger: LoggerConfig{
			Level:             getEnv("LOGGER_LEVEL", "debug"),
			Encoding:          getEnv("LOGGER_ENCODING", "console"),
			DisableCaller:     getEnvBool("LOGGER_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOGGER_DISABLE_STACKTRACE", true),
		},
		Storage: StorageConfig{
			Backend: getEnv("STORAGE_BACKEND", "local"),
		},
		Supabase: SupabaseConfig{
			URL:            getEnv("SUPABASE_URL", ""),
			APIKey:         getEnv("SUPABASE_ANON_KEY", ""),
			TimeoutSeconds: getEnvInt("SUPABASE_TIMEOUT_SECONDS", 30),
		},
		SQLite: SQLiteConfig{
			Path: getEnv("SQLITE_PATH", "stockpile.db"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}
