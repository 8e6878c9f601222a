package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/homestations/internal/model"
	"github.com/udisondev/homestations/internal/station"
)

// Storage backends.
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// HomeStations holds all configuration for the homestations service.
type HomeStations struct {
	LogLevel     string        `yaml:"log_level"`
	TickInterval time.Duration `yaml:"tick_interval"` // scheduler tick (default: 50ms)
	MessagesPath string        `yaml:"messages_path"`

	// Effects
	Effect1 FireworkConfig `yaml:"firework_effect_1"`
	Effect2 FireworkConfig `yaml:"firework_effect_2"`

	Upward   UpwardConfig   `yaml:"upward"`
	Downward DownwardConfig `yaml:"downward"`

	// Charged per teleport; negative values pay the player.
	TeleportCosts float64 `yaml:"teleport_costs"`

	Station  StationConfig  `yaml:"station"`
	Storage  StorageConfig  `yaml:"storage"`
	Database DatabaseConfig `yaml:"database"`
	Economy  EconomyConfig  `yaml:"economy"`
	Bridge   BridgeConfig   `yaml:"bridge"`
}

// FireworkConfig is a firework effect. Colors are "r;g;b" strings.
type FireworkConfig struct {
	Colors     []string `yaml:"colors"`
	FadeColors []string `yaml:"fade_colors"`
	Flicker    bool     `yaml:"flicker"`
	Trail      bool     `yaml:"trail"`
}

// UpwardConfig tunes the launch phase of a teleport.
type UpwardConfig struct {
	YVelocity      float64 `yaml:"y_velocity"`
	DelayTicks     int     `yaml:"delay_ticks"` // ticks between launch and relocation
	MaxRange       float64 `yaml:"max_range"`
	EffectDistance float64 `yaml:"effect_distance"` // distance between fireworks
}

// DownwardConfig tunes the arrival phase of a teleport.
type DownwardConfig struct {
	EffectOffset    float64 `yaml:"effect_offset"`
	TeleportYOffset float64 `yaml:"teleport_y_offset"`
}

// StationConfig names the block materials of a station.
type StationConfig struct {
	Trigger string `yaml:"trigger"`
	Base    string `yaml:"base"`
	Side    string `yaml:"side"`
	Cap     string `yaml:"cap"`
}

// StorageConfig selects where profiles and stations are persisted.
type StorageConfig struct {
	Backend    string `yaml:"backend"` // file, sqlite or postgres
	DataDir    string `yaml:"data_dir"`
	SQLitePath string `yaml:"sqlite_path"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// EconomyConfig enables the built-in bank.
type EconomyConfig struct {
	Enabled         bool    `yaml:"enabled"`
	StartingBalance float64 `yaml:"starting_balance"`
}

// BridgeConfig configures the game host websocket endpoint.
type BridgeConfig struct {
	ListenAddress string `yaml:"listen_address"`
	TokenHash     string `yaml:"token_hash"` // bcrypt hash; empty disables auth
}

// DefaultHomeStations returns HomeStations config with sensible defaults.
func DefaultHomeStations() HomeStations {
	return HomeStations{
		LogLevel:     "info",
		TickInterval: 50 * time.Millisecond,
		MessagesPath: "config/messages.yml",
		Effect1: FireworkConfig{
			Colors:     []string{model.ColorOrange.String()},
			FadeColors: []string{model.ColorRed.String()},
			Trail:      true,
		},
		Effect2: FireworkConfig{
			Colors:     []string{model.ColorYellow.String()},
			FadeColors: []string{},
		},
		Upward: UpwardConfig{
			YVelocity:      2.0,
			DelayTicks:     15,
			MaxRange:       80,
			EffectDistance: 2.5,
		},
		Downward: DownwardConfig{
			EffectOffset:    3,
			TeleportYOffset: 3,
		},
		Station: StationConfig{
			Trigger: string(model.MaterialStoneButton),
			Base:    string(model.MaterialEmeraldBlock),
			Side:    string(model.MaterialLapisBlock),
			Cap:     string(model.MaterialRedstoneBlock),
		},
		Storage: StorageConfig{
			Backend:    BackendFile,
			DataDir:    "data",
			SQLitePath: "data/homestations.db",
		},
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "homestations",
			Password: "homestations",
			DBName:   "homestations",
			SSLMode:  "disable",
		},
		Bridge: BridgeConfig{
			ListenAddress: "127.0.0.1:8765",
		},
	}
}

// LoadHomeStations loads config from a YAML file.
// If the file doesn't exist, the defaults are written to it and returned.
func LoadHomeStations(path string) (HomeStations, error) {
	cfg := DefaultHomeStations()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if err := cfg.Save(path); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the config as YAML.
func (c HomeStations) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}

// Validate checks values that would break the service at runtime.
func (c HomeStations) Validate() error {
	var errs []error
	switch c.Storage.Backend {
	case BackendFile, BackendSQLite, BackendPostgres:
	default:
		errs = append(errs, fmt.Errorf("unknown storage backend %q", c.Storage.Backend))
	}
	if c.Economy.Enabled && c.Storage.Backend == BackendFile {
		errs = append(errs, errors.New("economy needs the sqlite or postgres storage backend"))
	}
	if c.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("tick_interval must be positive, got %s", c.TickInterval))
	}
	if c.Upward.DelayTicks < 0 {
		errs = append(errs, fmt.Errorf("upward.delay_ticks must not be negative, got %d", c.Upward.DelayTicks))
	}
	if c.Upward.EffectDistance <= 0 {
		errs = append(errs, fmt.Errorf("upward.effect_distance must be positive, got %g", c.Upward.EffectDistance))
	}
	if c.Station.Trigger == "" || c.Station.Base == "" || c.Station.Side == "" || c.Station.Cap == "" {
		errs = append(errs, errors.New("station materials must not be empty"))
	}
	return errors.Join(errs...)
}

// Pattern returns the configured station pattern.
func (s StationConfig) Pattern() station.Pattern {
	return station.Pattern{
		Trigger: model.Material(s.Trigger),
		Base:    model.Material(s.Base),
		Side:    model.Material(s.Side),
		Cap:     model.Material(s.Cap),
	}
}

// Firework converts the effect. An effect without valid colors is replaced
// by fallback. Unparseable colors are skipped.
func (f FireworkConfig) Firework(fallback model.Firework) model.Firework {
	colors := parseColors(f.Colors)
	if len(colors) == 0 {
		return fallback
	}
	return model.Firework{
		Colors:     colors,
		FadeColors: parseColors(f.FadeColors),
		Flicker:    f.Flicker,
		Trail:      f.Trail,
	}
}

// DefaultEffect1 is the leading effect of an upward trail.
func DefaultEffect1() model.Firework {
	return model.Firework{
		Colors:     []model.Color{model.ColorOrange},
		FadeColors: []model.Color{model.ColorRed},
		Trail:      true,
	}
}

// DefaultEffect2 is the trailing effect of an upward trail.
func DefaultEffect2() model.Firework {
	return model.Firework{Colors: []model.Color{model.ColorYellow}}
}

func parseColors(in []string) []model.Color {
	out := make([]model.Color, 0, len(in))
	for _, s := range in {
		c, ok := model.ParseColor(s)
		if !ok {
			slog.Warn("invalid firework color", "value", s)
			continue
		}
		out = append(out, c)
	}
	return out
}
