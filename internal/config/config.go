package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config agrupa toda la configuración del servicio.
// Se carga desde .env (si existe) y luego desde variables de entorno.
type Config struct {
	Port        string
	Environment string // development | production

	DBDSN          string // si está vacío, se usan repos in-memory
	MigrationsPath string
	AutoMigrate    bool

	LogLevel  string
	LogFormat string // text | json
	AppName   string

	// Supabase (auth gestionada). Si falta, el router queda en modo dev.
	SupabaseURL     string
	SupabaseAnonKey string

	// Proveedor de IA (API compatible OpenAI).
	OpenAIBaseURL string
	OpenAIAPIKey  string
	OpenAIModel   string

	// Email transaccional.
	ResendAPIKey string
	EmailFrom    string

	// Metadata de links (estilo Microlink).
	MicrolinkBaseURL string
	MicrolinkAPIKey  string

	// Geocoding (estilo Nominatim).
	NominatimBaseURL string

	// Digest semanal.
	DigestEnabled bool
	DigestCron    string

	HTTPTimeout time.Duration
}

// Load lee .env (opcional) y arma la config con defaults razonables.
func Load() (*Config, error) {
	// Si no hay .env no es error: en deploy las vars vienen del entorno.
	_ = godotenv.Load(".env")

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),

		DBDSN:          os.Getenv("DB_DSN"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
		AutoMigrate:    boolEnv("MIGRATE"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
		AppName:   getEnv("APP_NAME", "memoria-viva"),

		SupabaseURL:     os.Getenv("SUPABASE_URL"),
		SupabaseAnonKey: os.Getenv("SUPABASE_ANON_KEY"),

		// Vacío => el cliente usa la API oficial.
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),

		ResendAPIKey: os.Getenv("RESEND_API_KEY"),
		EmailFrom:    getEnv("EMAIL_FROM", "Memoria Viva <digest@memoriaviva.example>"),

		MicrolinkBaseURL: getEnv("MICROLINK_BASE_URL", "https://api.microlink.io"),
		MicrolinkAPIKey:  os.Getenv("MICROLINK_API_KEY"),

		NominatimBaseURL: getEnv("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org"),

		DigestEnabled: boolEnv("DIGEST_ENABLED"),
		// Lunes 08:00 por defecto.
		DigestCron: getEnv("DIGEST_CRON", "0 8 * * 1"),

		HTTPTimeout: durationEnv("HTTP_TIMEOUT", 10*time.Second),
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func boolEnv(key string) bool {
	return strings.EqualFold(strings.TrimSpace(os.Getenv(key)), "true")
}

func durationEnv(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
