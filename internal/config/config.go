package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config reúne as configurações do serviço de relatório.
type Config struct {
	Port           string
	GinMode        string
	LogLevel       string
	MaxUploadMB    int
	MetricsEnabled bool

	invalid []string
}

// Load carrega variáveis de ambiente, tentando ler .env se existir.
func Load() *Config {
	// .env é opcional
	_ = godotenv.Load()

	cfg := &Config{
		Port:     getEnv("PORT", "8084"),
		GinMode:  getEnv("GIN_MODE", "release"),
		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),
	}
	cfg.MaxUploadMB = cfg.getEnvInt("MAX_UPLOAD_MB", 20)
	cfg.MetricsEnabled = cfg.getEnvBool("METRICS_ENABLED", true)
	return cfg
}

// MaxUploadBytes retorna o limite de upload em bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// Validate valida a configuração e reúne todos os problemas encontrados em um único erro.
func (c *Config) Validate() error {
	errors := append([]string{}, c.invalid...)

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("porta inválida '%s': deve ser numérica", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("porta inválida %d: deve estar entre 1 e 65535", port))
	}

	switch c.GinMode {
	case "debug", "release", "test":
	default:
		errors = append(errors, fmt.Sprintf("GIN_MODE inválido '%s': use debug, release ou test", c.GinMode))
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errors = append(errors, fmt.Sprintf("LOG_LEVEL inválido '%s': use debug, info, warn ou error", c.LogLevel))
	}

	if c.MaxUploadMB < 1 {
		errors = append(errors, fmt.Sprintf("MAX_UPLOAD_MB inválido %d: deve ser positivo", c.MaxUploadMB))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuração inválida:\n  - %s", strings.Join(errors, "\n  - "))
	}
	return nil
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func (c *Config) getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		c.invalid = append(c.invalid, fmt.Sprintf("%s inválido '%s': deve ser numérico", key, v))
		return def
	}
	return n
}

func (c *Config) getEnvBool(key string, def bool) bool {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		c.invalid = append(c.invalid, fmt.Sprintf("%s inválido '%s': use true ou false", key, v))
		return def
	}
	return b
}
