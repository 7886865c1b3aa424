// Package config carga la configuración de hellolink: YAML como base y
// variables de entorno como overlay (el env siempre gana).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		// dev | staging | prod
		Env      string `yaml:"env"`
		LogLevel string `yaml:"log_level"`
	} `yaml:"app"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Storage struct {
		// postgres | memory
		Driver   string `yaml:"driver"`
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxOpenConns int `yaml:"max_open_conns"`
			MaxIdleConns int `yaml:"max_idle_conns"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Auth struct {
		// BaseURL es la URL pública del servicio; arma el magic link.
		BaseURL string `yaml:"base_url"`

		// MagicLinkTTL vida del token de verificación. Default 1h.
		MagicLinkTTL time.Duration `yaml:"magic_link_ttl"`

		// SessionTTL vida de la sesión de base de datos. Default 720h.
		SessionTTL time.Duration `yaml:"session_ttl"`

		// CookieName nombre de la cookie de sesión.
		CookieName string `yaml:"cookie_name"`
	} `yaml:"auth"`

	SMTP struct {
		Host               string `yaml:"host"`
		Port               int    `yaml:"port"`
		Username           string `yaml:"username"`
		Password           string `yaml:"password"`
		From               string `yaml:"from"`
		TLS                string `yaml:"tls"` // auto|starttls|ssl|none
		InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
	} `yaml:"smtp"`

	Janitor struct {
		// Interval entre pasadas de limpieza de registros vencidos.
		// 0 deshabilita el janitor.
		Interval time.Duration `yaml:"interval"`
	} `yaml:"janitor"`
}

// Load lee el YAML (si existe) y aplica el overlay de entorno.
func Load(path string) (*Config, error) {
	c := &Config{}
	c.defaults()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("config: read %s: %w", path, err)
			}
			// Sin YAML: defaults + env alcanzan para dev.
		} else if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	c.applyEnv()
	return c, nil
}

func (c *Config) defaults() {
	c.App.Env = "dev"
	c.App.LogLevel = "info"
	c.Server.Addr = ":8080"
	c.Storage.Driver = "postgres"
	c.Auth.BaseURL = "http://localhost:8080"
	c.Auth.MagicLinkTTL = time.Hour
	c.Auth.SessionTTL = 30 * 24 * time.Hour
	c.Auth.CookieName = "hellolink_session"
	c.Janitor.Interval = 15 * time.Minute
}

func (c *Config) applyEnv() {
	// APP
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = v
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.App.LogLevel = v
	}

	// SERVER
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}

	// STORAGE
	if v, ok := getEnvStr("STORAGE_DRIVER"); ok {
		c.Storage.Driver = v
	}
	if v, ok := getEnvStr("STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvInt("STORAGE_PG_MAX_OPEN_CONNS"); ok {
		c.Storage.Postgres.MaxOpenConns = v
	}
	if v, ok := getEnvInt("STORAGE_PG_MAX_IDLE_CONNS"); ok {
		c.Storage.Postgres.MaxIdleConns = v
	}

	// AUTH
	if v, ok := getEnvStr("AUTH_BASE_URL"); ok {
		c.Auth.BaseURL = v
	}
	if v, ok := getEnvDur("AUTH_MAGIC_LINK_TTL"); ok {
		c.Auth.MagicLinkTTL = v
	}
	if v, ok := getEnvDur("AUTH_SESSION_TTL"); ok {
		c.Auth.SessionTTL = v
	}
	if v, ok := getEnvStr("AUTH_COOKIE_NAME"); ok {
		c.Auth.CookieName = v
	}

	// SMTP
	if v, ok := getEnvStr("SMTP_HOST"); ok {
		c.SMTP.Host = v
	}
	if v, ok := getEnvInt("SMTP_PORT"); ok {
		c.SMTP.Port = v
	}
	if v, ok := getEnvStr("SMTP_USERNAME"); ok {
		c.SMTP.Username = v
	}
	if v, ok := getEnvStr("SMTP_PASSWORD"); ok {
		c.SMTP.Password = v
	}
	if v, ok := getEnvStr("SMTP_FROM"); ok {
		c.SMTP.From = v
	}
	if v, ok := getEnvStr("SMTP_TLS"); ok {
		c.SMTP.TLS = strings.ToLower(v) // auto|starttls|ssl|none
	}
	if v, ok := getEnvBool("SMTP_INSECURE_SKIP_VERIFY"); ok {
		c.SMTP.InsecureSkipVerify = v
	}

	// JANITOR
	if v, ok := getEnvDur("JANITOR_INTERVAL"); ok {
		c.Janitor.Interval = v
	}
}

// IsProd indica si corremos en producción (gating de diagnósticos).
func (c *Config) IsProd() bool {
	return strings.ToLower(c.App.Env) == "prod"
}

// ─── Helpers de entorno ───

func getEnvStr(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

func getEnvInt(key string) (int, bool) {
	v, ok := getEnvStr(key)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, false
	}
	return n, true
}

func getEnvBool(key string) (bool, bool) {
	v, ok := getEnvStr(key)
	if !ok {
		return false, false
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return false, false
	}
	return b, true
}

func getEnvDur(key string) (time.Duration, bool) {
	v, ok := getEnvStr(key)
	if !ok {
		return 0, false
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return 0, false
	}
	return d, true
}
