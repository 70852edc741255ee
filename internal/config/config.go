package config

import (
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
)

type Config struct {
	Primary Primary      `koanf:"primary"`
	Server  ServerConfig `koanf:"server" validate:"required"`
	Render  RenderConfig `koanf:"render"`
}

type Primary struct {
	Env string `koanf:"env"`
}

type ServerConfig struct {
	Host               string   `koanf:"host" validate:"required"`
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`
}

type RenderConfig struct {
	// DebounceMS coalesces rapid view edits into one render. Zero renders
	// synchronously on every edit.
	DebounceMS int `koanf:"debounce_ms" validate:"gte=0"`
}

// LoadConfig loads the configuration from environment variables using koanf.
// A .env file in the working directory is applied first when present.
func LoadConfig() (mainConfig *Config, err error) {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	_ = godotenv.Load()

	k := koanf.New(".")
	err = k.Load(env.Provider("LOGVIEW_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "LOGVIEW_")), "__", ".")
	}), nil)
	if err != nil {
		logger.Fatal().Err(err).Msg("could not load initial env variables")
	}

	mainConfig = Default()
	err = k.Unmarshal("", mainConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("could not unmarshal mainconfig")
	}

	validate := validator.New()
	err = validate.Struct(mainConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("could not validate the struct")
	}

	if mainConfig.Primary.Env == "" {
		mainConfig.Primary.Env = "local"
	}

	return
}

// Default is the configuration a bare environment gets: a local single-user
// server with a short render debounce window.
func Default() *Config {
	return &Config{
		Primary: Primary{Env: "local"},
		Server: ServerConfig{
			Host:               "127.0.0.1",
			Port:               "8787",
			ReadTimeout:        15,
			WriteTimeout:       15,
			IdleTimeout:        60,
			CORSAllowedOrigins: []string{"*"},
		},
		Render: RenderConfig{DebounceMS: 150},
	}
}
