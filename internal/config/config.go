package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	App      App      `yaml:"app"`
	HTTP     HTTP     `yaml:"http"`
	Postgres Postgres `yaml:"postgres"`
	Twilio   Twilio   `yaml:"twilio"`
	OTP      OTP      `yaml:"otp"`
}

type App struct {
	Name           string `yaml:"name" env:"APP_NAME" env-default:"metropass-backend"`
	Version        string `yaml:"version" env:"APP_VERSION" env-default:"1.0.0"`
	UseMemoryStore bool   `yaml:"use_memory_store" env:"USE_MEMORY_STORE" env-default:"false"`
}

type HTTP struct {
	Port string `yaml:"port" env:"PORT" env-default:"8080"`
}

type Postgres struct {
	Host     string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"DB_USER" env-default:"postgres"`
	Password string `yaml:"password" env:"DB_PASS"`
	DBName   string `yaml:"dbname" env:"DB_NAME" env-default:"metropass"`

	// Cloud SQL unix-socket connection name; when set it replaces Host/Port.
	InstanceConnectionName string `yaml:"instance_connection_name" env:"INSTANCE_CONNECTION_NAME"`
}

type Twilio struct {
	AccountSID string `yaml:"account_sid" env:"TWILIO_ACCOUNT_SID"`
	AuthToken  string `yaml:"auth_token" env:"TWILIO_AUTH_TOKEN"`
	From       string `yaml:"from" env:"TWILIO_FROM"`
}

type OTP struct {
	Window time.Duration `yaml:"window" env:"OTP_WINDOW" env-default:"10m"`
}

// New loads configuration from config.yaml when present, with environment
// variables taking precedence either way.
func New() (*Config, error) {
	cfg := &Config{}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("config error: %w", err)
		}
	} else {
		cleanenv.ReadEnv(cfg)
	}

	return cfg, nil
}
