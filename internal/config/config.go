package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config es la única fuente de configuración del servicio. Se arma una vez
// en main (después de godotenv) y se inyecta; ningún componente lee env por
// su cuenta.
type Config struct {
	AppName string
	Addr    string

	// Base URL del auth service externo (obligatoria para las operaciones
	// de users y el stitching de owner).
	AuthBaseURL string
	AuthTimeout time.Duration

	// Si viene vacío, el storage es in-memory (dev).
	DBDSN string

	// Si es true, main instancia el verifier contra el auth service.
	// Si es false, modo dev: headers X-Debug-User-ID / X-Debug-Role.
	VerifyTokens bool

	LogLevel  string
	LogFormat string
}

// FromEnv arma la Config desde el ambiente del proceso.
func FromEnv() Config {
	return Config{
		AppName:      getEnv("APP_NAME", "cat-registry"),
		Addr:         ":" + getEnv("PORT", "8080"),
		AuthBaseURL:  strings.TrimSpace(os.Getenv("AUTH_URL")),
		AuthTimeout:  time.Duration(getEnvInt("AUTH_TIMEOUT_SECONDS", 10)) * time.Second,
		DBDSN:        strings.TrimSpace(os.Getenv("DB_DSN")),
		VerifyTokens: getEnvBool("VERIFY_TOKENS", false),
		LogLevel:     os.Getenv("LOG_LEVEL"),
		LogFormat:    os.Getenv("LOG_FORMAT"),
	}
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
