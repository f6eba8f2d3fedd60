package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Versifine/pietype/internal/chord"
	"github.com/Versifine/pietype/internal/gamepad"
	"github.com/Versifine/pietype/internal/layout"
	"github.com/Versifine/pietype/internal/logger"
	"github.com/Versifine/pietype/internal/sink"
	"gopkg.in/yaml.v3"
)

// DriverConsole reads the keyboard as a virtual gamepad instead of hardware.
const DriverConsole = "console"

var ErrInvalid = errors.New("invalid config")

type Config struct {
	Input      InputConfig      `yaml:"input"`
	Output     OutputConfig     `yaml:"output"`
	Layout     string           `yaml:"layout"`
	Thresholds ThresholdsConfig `yaml:"thresholds"`
	Overlay    OverlayConfig    `yaml:"overlay"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type InputConfig struct {
	Driver       string                  `yaml:"driver"`
	Device       string                  `yaml:"device"`
	Index        int                     `yaml:"index"`
	PollInterval time.Duration           `yaml:"poll_interval"`
	Joystick     gamepad.JoystickMapping `yaml:"joystick"`
}

type OutputConfig struct {
	Driver     string `yaml:"driver"`
	DeviceName string `yaml:"device_name"`
}

type ThresholdsConfig struct {
	Type   float32 `yaml:"type"`
	Return float32 `yaml:"return"`
}

type OverlayConfig struct {
	Enabled bool `yaml:"enabled"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// Default returns the configuration used for anything a file leaves out.
func Default() *Config {
	return &Config{
		Input: InputConfig{
			Driver:       gamepad.DriverEvdev,
			PollInterval: 5 * time.Millisecond,
			Joystick:     gamepad.XpadMapping(),
		},
		Output: OutputConfig{
			Driver:     sink.DriverLog,
			DeviceName: "pietype",
		},
		Layout: layout.OctantName,
		Thresholds: ThresholdsConfig{
			Type:   chord.DefaultTypeThreshold,
			Return: chord.DefaultReturnThreshold,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads path over Default and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Input.Driver {
	case gamepad.DriverEvdev, gamepad.DriverJoystick, gamepad.DriverGCAdapter, DriverConsole:
	default:
		return fmt.Errorf("%w: unknown input driver %q", ErrInvalid, c.Input.Driver)
	}
	if c.Input.PollInterval <= 0 {
		return fmt.Errorf("%w: poll_interval must be positive, got %s", ErrInvalid, c.Input.PollInterval)
	}
	if c.Input.Index < 0 {
		return fmt.Errorf("%w: negative joystick index %d", ErrInvalid, c.Input.Index)
	}
	switch c.Output.Driver {
	case sink.DriverUinput, sink.DriverRobotgo, sink.DriverKeybd, sink.DriverLog:
	default:
		return fmt.Errorf("%w: unknown output driver %q", ErrInvalid, c.Output.Driver)
	}
	if _, err := layout.ByName(c.Layout); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	t := c.Thresholds
	if t.Return <= 0 || t.Type > 1 || t.Type <= t.Return {
		return fmt.Errorf("%w: thresholds type=%.2f return=%.2f", ErrInvalid, t.Type, t.Return)
	}
	if c.Overlay.Enabled && c.Input.Driver == DriverConsole {
		return fmt.Errorf("%w: overlay cannot share the terminal with the console driver", ErrInvalid)
	}
	if !logger.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("%w: unknown log level %q", ErrInvalid, c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "console", "text", "json":
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalid, c.Logging.Format)
	}
	return nil
}
