package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config agrupa toda la configuración de entorno del servicio.
type Config struct {
	Addr string `env:"ADDR" envDefault:":8080"`

	// DSN de Postgres. Vacío => storage en memoria (modo dev/test).
	DatabaseURL string `env:"DATABASE_URL"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
	AppName   string `env:"APP_NAME" envDefault:"bunny-happiness"`

	// Dispatcher de eventos.
	DispatchInterval time.Duration `env:"DISPATCH_INTERVAL" envDefault:"5s"`
	DispatchWorkers  int           `env:"DISPATCH_WORKERS" envDefault:"4"`
	DispatchBatch    int           `env:"DISPATCH_BATCH" envDefault:"50"`

	// Scanner de inactividad. 0 => solo bajo demanda (POST /idle-scan).
	IdleScanInterval time.Duration `env:"IDLE_SCAN_INTERVAL" envDefault:"0"`

	// Servicio de identidad para los endpoints protegidos.
	// Sin BaseURL/APIKey el middleware queda en modo dev (X-Debug-User-ID).
	IdentityBaseURL string `env:"IDENTITY_BASE_URL"`
	IdentityAPIKey  string `env:"IDENTITY_API_KEY"`
}

// FromEnv carga la configuración desde variables de entorno.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
