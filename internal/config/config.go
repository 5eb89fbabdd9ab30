package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	yaml "go.yaml.in/yaml/v3"
)

// Config del servicio. Se carga desde YAML (CONFIG_PATH) y se puede
// pisar con env vars (PORT, DB_DSN, LOG_LEVEL, LOG_FORMAT, TIMEZONE).
type Config struct {
	Addr     string `yaml:"addr"`
	DBDSN    string `yaml:"db_dsn"`
	Timezone string `yaml:"timezone"`

	Log        Log        `yaml:"log"`
	Scheduling Scheduling `yaml:"scheduling"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console | json
}

type Scheduling struct {
	DefaultDurationMinutes int `yaml:"default_duration_minutes"`
	UpcomingWindowDays     int `yaml:"upcoming_window_days"`

	// BoosterSeries: tipo de vacuna -> días hasta la siguiente dosis.
	// Ausente o 0 = dosis única (completar pasa directo a COMPLETED).
	BoosterSeries map[string]int `yaml:"booster_series"`

	RateRPS   float64 `yaml:"rate_rps"`
	RateBurst int     `yaml:"rate_burst"`
}

// Default devuelve la config base sin leer archivos.
func Default() Config {
	return Config{
		Addr:     ":8080",
		Timezone: "UTC",
		Log: Log{
			Level:  "info",
			Format: "console",
		},
		Scheduling: Scheduling{
			DefaultDurationMinutes: 30,
			UpcomingWindowDays:     30,
			RateRPS:                50,
			RateBurst:              100,
		},
	}
}

// Load lee el YAML en path (si existe) sobre los defaults y aplica env.
// Decode estricto: claves desconocidas son error, no silencio.
func Load(path string) (Config, error) {
	cfg := Default()

	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		dec := yaml.NewDecoder(strings.NewReader(string(data)))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("config: decode %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromEnv carga defaults + env vars (sin archivo). Útil en dev y tests.
func FromEnv() Config {
	cfg := Default()
	cfg.applyEnv()
	return cfg
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		c.Addr = ":" + v
	}
	if v := strings.TrimSpace(os.Getenv("DB_DSN")); v != "" {
		c.DBDSN = v
	}
	if v := strings.TrimSpace(os.Getenv("LOG_LEVEL")); v != "" {
		c.Log.Level = v
	}
	if v := strings.TrimSpace(os.Getenv("LOG_FORMAT")); v != "" {
		c.Log.Format = v
	}
	if v := strings.TrimSpace(os.Getenv("TIMEZONE")); v != "" {
		c.Timezone = v
	}
	if v := strings.TrimSpace(os.Getenv("UPCOMING_WINDOW_DAYS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Scheduling.UpcomingWindowDays = n
		}
	}
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("config: addr required")
	}
	if c.Scheduling.DefaultDurationMinutes <= 0 {
		return fmt.Errorf("config: default_duration_minutes must be > 0")
	}
	if c.Scheduling.UpcomingWindowDays <= 0 {
		return fmt.Errorf("config: upcoming_window_days must be > 0")
	}
	for typ, days := range c.Scheduling.BoosterSeries {
		if days < 0 {
			return fmt.Errorf("config: booster_series[%s] must be >= 0", typ)
		}
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resuelve la timezone configurada.
func (c Config) Location() (*time.Location, error) {
	tz := strings.TrimSpace(c.Timezone)
	if tz == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %q: %w", tz, err)
	}
	return loc, nil
}
