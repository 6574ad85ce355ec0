// Package config carga la configuración del servicio desde YAML con overrides
// por variables de entorno (AUTHGATE_*).
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		// dev | prod
		Env string `yaml:"env"`
	} `yaml:"app"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`

	// Auth.Provider: "session" (cookie + store) o "bearer" (JWT sin estado).
	Auth struct {
		Provider string `yaml:"provider"`
	} `yaml:"auth"`

	Session struct {
		CookieName string `yaml:"cookie_name"`
		Domain     string `yaml:"domain"`
		Secure     bool   `yaml:"secure"`
		SameSite   string `yaml:"samesite"`
		TTL        string `yaml:"ttl"` // duración, ej "24h"
	} `yaml:"session"`

	Cache struct {
		Kind  string `yaml:"kind"` // memory | redis
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`

	// Gate: patterns + invert. Con invert=true los patterns son los exentos.
	Gate struct {
		Patterns []string `yaml:"patterns"`
		Invert   bool     `yaml:"invert"`
	} `yaml:"gate"`

	MFA struct {
		Enabled     bool   `yaml:"enabled"`
		CodeTTL     string `yaml:"code_ttl"` // duración, ej "5m"
		CodeLength  int    `yaml:"code_length"`
		MaxAttempts int    `yaml:"max_attempts"` // 0 = sin límite
		Sender      string `yaml:"sender"`       // log | smtp
	} `yaml:"mfa"`

	SMTP struct {
		Host               string `yaml:"host"`
		Port               int    `yaml:"port"`
		Username           string `yaml:"username"`
		Password           string `yaml:"password"`
		From               string `yaml:"from"`
		TLS                string `yaml:"tls"` // auto | starttls | ssl | none
		InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
	} `yaml:"smtp"`

	Storage struct {
		Driver string `yaml:"driver"` // memory | postgres
		DSN    string `yaml:"dsn"`
		// Seed siembra usuarios en el driver memory (dev/test).
		Seed []SeedUser `yaml:"seed"`
	} `yaml:"storage"`

	JWT struct {
		Secret string `yaml:"secret"`
		Issuer string `yaml:"issuer"`
	} `yaml:"jwt"`
}

type SeedUser struct {
	Email    string `yaml:"email"`
	Name     string `yaml:"name"`
	Password string `yaml:"password"` // en claro, se hashea al sembrar
}

// Load lee el YAML, aplica defaults y luego overrides de entorno.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, err
		}
	}

	// sane defaults
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Auth.Provider == "" {
		c.Auth.Provider = "session"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Session.TTL == "" {
		c.Session.TTL = "24h"
	}
	if len(c.Gate.Patterns) == 0 {
		// Todo protegido salvo login/MFA y rutas operacionales.
		c.Gate.Patterns = []string{"/login", "/healthz", "/metrics"}
		c.Gate.Invert = true
	}
	if c.MFA.CodeTTL == "" {
		c.MFA.CodeTTL = "5m"
	}
	if c.MFA.CodeLength <= 0 {
		c.MFA.CodeLength = 6
	}
	if c.MFA.Sender == "" {
		c.MFA.Sender = "log"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.JWT.Issuer == "" {
		c.JWT.Issuer = "authgate"
	}

	applyEnv(&c)
	return &c, nil
}

func applyEnv(c *Config) {
	if v, ok := getEnvStr("AUTHGATE_ENV"); ok {
		c.App.Env = v
	}
	if v, ok := getEnvStr("AUTHGATE_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvStr("AUTHGATE_LOG_LEVEL"); ok {
		c.Logging.Level = v
	}
	if v, ok := getEnvStr("AUTHGATE_CACHE_KIND"); ok {
		c.Cache.Kind = v
	}
	if v, ok := getEnvStr("AUTHGATE_REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvStr("AUTHGATE_REDIS_PASSWORD"); ok {
		c.Cache.Redis.Password = v
	}
	if v, ok := getEnvInt("AUTHGATE_REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}
	if v, ok := getEnvBool("AUTHGATE_MFA_ENABLED"); ok {
		c.MFA.Enabled = v
	}
	if v, ok := getEnvStr("AUTHGATE_MFA_CODE_TTL"); ok {
		c.MFA.CodeTTL = v
	}
	if v, ok := getEnvInt("AUTHGATE_MFA_MAX_ATTEMPTS"); ok {
		c.MFA.MaxAttempts = v
	}
	if v, ok := getEnvStr("AUTHGATE_SMTP_PASSWORD"); ok {
		c.SMTP.Password = v
	}
	if v, ok := getEnvStr("AUTHGATE_STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvStr("AUTHGATE_JWT_SECRET"); ok {
		c.JWT.Secret = v
	}
}

// SessionTTL parsea Session.TTL; con valor inválido cae a 24h.
func (c *Config) SessionTTL() time.Duration {
	if d, err := time.ParseDuration(c.Session.TTL); err == nil && d > 0 {
		return d
	}
	return 24 * time.Hour
}

// MFACodeTTL parsea MFA.CodeTTL; con valor inválido cae a 5m.
func (c *Config) MFACodeTTL() time.Duration {
	if d, err := time.ParseDuration(c.MFA.CodeTTL); err == nil && d > 0 {
		return d
	}
	return 5 * time.Minute
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}

func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}

func getEnvDur(key string) (time.Duration, bool) {
	if s, ok := getEnvStr(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(s)); err == nil {
			return d, true
		}
	}
	return 0, false
}
