// Package config resolves settings from the environment (.env included) and an
// optional zach-term.toml, falling back to development defaults.
package config

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/viper"
)

var ErrSMTPNotConfigured = errors.New("SMTP credentials not configured")

// FileName is the optional config file looked up in the working directory.
const FileName = "zach-term"

const (
	defaultAdminUsername = "admin"
	defaultAdminPassword = "admin123"
)

type SMTP struct {
	Host string
	Port string
	User string
	Pass string
	To   string
}

func (s SMTP) Addr() string {
	return net.JoinHostPort(s.Host, s.Port)
}

// Validate reports ErrSMTPNotConfigured unless credentials are set.
func (s SMTP) Validate() error {
	if s.User == "" || s.Pass == "" {
		return ErrSMTPNotConfigured
	}
	return nil
}

type Admin struct {
	Username string
	Password string
	// Defaulted is set when either credential fell back to the dev default.
	Defaulted bool
}

type Config struct {
	Port       string
	GinMode    string
	SiteURL    string
	LogLevel   string
	DBPath     string
	ContentDir string
	ResumePath string

	SMTP  SMTP
	Admin Admin

	IdleAfter   time.Duration
	SessionTTL  time.Duration
	MaxSessions int
}

// Addr is the listen address for the web server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// Level parses LogLevel for hclog, defaulting to info.
func (c *Config) Level() hclog.Level {
	if l := hclog.LevelFromString(c.LogLevel); l != hclog.NoLevel {
		return l
	}
	return hclog.Info
}

var envKeys = map[string]string{
	"port":         "PORT",
	"gin_mode":     "GIN_MODE",
	"site_url":     "SITE_URL",
	"log_level":    "LOG_LEVEL",
	"db_path":      "DB_PATH",
	"content_dir":  "CONTENT_DIR",
	"resume_path":  "RESUME_PATH",
	"smtp.host":    "SMTP_HOST",
	"smtp.port":    "SMTP_PORT",
	"smtp.user":    "SMTP_USER",
	"smtp.pass":    "SMTP_PASS",
	"smtp.to":      "TO_EMAIL",
	"admin.user":   "ADMIN_USERNAME",
	"admin.pass":   "ADMIN_PASSWORD",
	"idle_after":   "IDLE_AFTER",
	"session_ttl":  "SESSION_TTL",
	"max_sessions": "MAX_SESSIONS",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("gin_mode", "debug")
	v.SetDefault("site_url", "http://localhost:8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("db_path", "data/zach-term.db")
	v.SetDefault("content_dir", "")
	v.SetDefault("resume_path", "static/resume.pdf")
	v.SetDefault("smtp.host", "smtp.gmail.com")
	v.SetDefault("smtp.port", "587")
	v.SetDefault("smtp.to", "zachkordaspotter@gmail.com")
	v.SetDefault("idle_after", 20*time.Second)
	v.SetDefault("session_ttl", 30*time.Minute)
	v.SetDefault("max_sessions", 512)
}

// Load reads configuration into v. file names an explicit config file; when
// empty, zach-term.toml in the working directory is used if it exists.
func Load(v *viper.Viper, file string) (*Config, error) {
	if v == nil {
		v = viper.New()
	}
	setDefaults(v)
	for key, env := range envKeys {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("toml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		Port:       v.GetString("port"),
		GinMode:    v.GetString("gin_mode"),
		SiteURL:    v.GetString("site_url"),
		LogLevel:   v.GetString("log_level"),
		DBPath:     v.GetString("db_path"),
		ContentDir: v.GetString("content_dir"),
		ResumePath: v.GetString("resume_path"),
		SMTP: SMTP{
			Host: v.GetString("smtp.host"),
			Port: v.GetString("smtp.port"),
			User: v.GetString("smtp.user"),
			Pass: v.GetString("smtp.pass"),
			To:   v.GetString("smtp.to"),
		},
		Admin: Admin{
			Username: v.GetString("admin.user"),
			Password: v.GetString("admin.pass"),
		},
		IdleAfter:   v.GetDuration("idle_after"),
		SessionTTL:  v.GetDuration("session_ttl"),
		MaxSessions: v.GetInt("max_sessions"),
	}
	if cfg.Admin.Username == "" {
		cfg.Admin.Username = defaultAdminUsername
		cfg.Admin.Defaulted = true
	}
	if cfg.Admin.Password == "" {
		cfg.Admin.Password = defaultAdminPassword
		cfg.Admin.Defaulted = true
	}
	if cfg.MaxSessions <= 0 {
		return nil, fmt.Errorf("max_sessions must be positive, got %d", cfg.MaxSessions)
	}
	return cfg, nil
}
