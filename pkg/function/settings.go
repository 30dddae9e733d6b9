package function

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Settings configures a function instance. Values come from the environment.
type Settings struct {
	Address          string        `env:"FUNCTION_ADDRESS" envDefault:"0.0.0.0:10382"`
	IdleTimeout      time.Duration `env:"FUNCTION_IDLE_TIMEOUT" envDefault:"0s"`
	MaxMemoryPercent float64       `env:"FUNCTION_MAX_MEMORY_PERCENT" envDefault:"0"`
	ShutdownTimeout  time.Duration `env:"FUNCTION_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	Log              struct {
		Level    string `env:"LOG_LEVEL" envDefault:"info"`
		Format   string `env:"LOG_FORMAT" envDefault:"text"`
		FilePath string `env:"LOG_FILE"`
	}
}

// LoadSettings reads Settings from the process environment.
func LoadSettings() (Settings, error) {
	return env.ParseAs[Settings]()
}

// LoadSettingsFrom reads Settings from the given variables only.
func LoadSettingsFrom(environ map[string]string) (Settings, error) {
	return env.ParseAsWithOptions[Settings](env.Options{Environment: environ})
}
