// Package config loads editor defaults from an optional YAML file and
// NOTEBOOK_* environment variables (optionally from a .env file).
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"LocalNotebook/internal/input"
	"LocalNotebook/internal/state"
)

const envPrefix = "NOTEBOOK_"

type Config struct {
	AppID       string  `yaml:"app_id"`
	Tool        string  `yaml:"tool"`
	Color       string  `yaml:"color"`
	StrokeWidth float64 `yaml:"stroke_width"`
	Template    string  `yaml:"template"`
	Zoom        float64 `yaml:"zoom"`
	// EraserIndex selects the eraser lookup: "linear" or "grid".
	EraserIndex string  `yaml:"eraser_index"`
	GridCell    float64 `yaml:"grid_cell"`
	LogLevel    string  `yaml:"log_level"`
}

func Default() Config {
	return Config{
		AppID:       "io.localnotebook.app",
		Tool:        string(state.ToolPen),
		Color:       "#000000",
		StrokeWidth: 4,
		Template:    string(state.TemplateRuled),
		Zoom:        input.DefaultZoom,
		EraserIndex: "linear",
		GridCell:    state.DefaultCellSize,
		LogLevel:    "info",
	}
}

// Load reads defaults, then the YAML file at path (if any), then the .env
// file (if present) and finally the process environment.
func Load(path, dotEnv string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, errors.Wrapf(err, "config %s", path)
			}
		case os.IsNotExist(err):
			log.Debugf("No config file at %s, using defaults", path)
		default:
			return cfg, errors.Wrapf(err, "config %s", path)
		}
	}
	if dotEnv != "" {
		if _, err := os.Stat(dotEnv); err == nil {
			if err := godotenv.Load(dotEnv); err != nil {
				return cfg, errors.Wrapf(err, "dotenv %s", dotEnv)
			}
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(envPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *float64) error {
		v, ok := lookup(envPrefix + key)
		if !ok || v == "" {
			return nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.Wrapf(err, "%s%s", envPrefix, key)
		}
		*dst = f
		return nil
	}
	str("APP_ID", &c.AppID)
	str("TOOL", &c.Tool)
	str("COLOR", &c.Color)
	str("TEMPLATE", &c.Template)
	str("ERASER_INDEX", &c.EraserIndex)
	str("LOG_LEVEL", &c.LogLevel)
	for key, dst := range map[string]*float64{
		"STROKE_WIDTH": &c.StrokeWidth,
		"ZOOM":         &c.Zoom,
		"GRID_CELL":    &c.GridCell,
	} {
		if err := num(key, dst); err != nil {
			return err
		}
	}
	return nil
}

func (c Config) Validate() error {
	if _, err := c.ToolConfig(); err != nil {
		return err
	}
	if !state.Template(c.Template).Valid() {
		return errors.Errorf("unknown template %q", c.Template)
	}
	if c.Zoom < input.MinZoom || c.Zoom > input.MaxZoom {
		return errors.Errorf("zoom %v outside %d-%d", c.Zoom, input.MinZoom, input.MaxZoom)
	}
	switch strings.ToLower(c.EraserIndex) {
	case "linear", "grid":
	default:
		return errors.Errorf("unknown eraser index %q", c.EraserIndex)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(err, "log_level")
	}
	return nil
}

// ToolConfig is the tool state an editor session starts with.
func (c Config) ToolConfig() (state.ToolConfig, error) {
	color, err := state.ParseColor(c.Color)
	if err != nil {
		return state.ToolConfig{}, err
	}
	tc := state.ToolConfig{Tool: state.Tool(c.Tool), Color: color, Width: c.StrokeWidth}
	if err := tc.Validate(); err != nil {
		return state.ToolConfig{}, err
	}
	return tc, nil
}

// Index builds the eraser lookup selected by EraserIndex.
func (c Config) Index() state.Index {
	if strings.EqualFold(c.EraserIndex, "grid") {
		return state.NewGridIndex(c.GridCell)
	}
	return state.NewLinearIndex()
}

// SetupLogging applies LogLevel to the global logger.
func (c Config) SetupLogging() {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}
