package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/recera/nodecloud/internal/logging"
	"github.com/recera/nodecloud/pkg/nodecloud"
)

// FileName is the config file looked up in the working directory
const FileName = "nodecloud.yaml"

// Config represents the nodecloud.yaml configuration
type Config struct {
	// Dataset is the entity file (.yaml, .yml, .toml or .json).
	// Empty uses the built-in sample.
	Dataset string `yaml:"dataset"`

	Cloud  *CloudConfig   `yaml:"cloud"`
	Server *ServerConfig  `yaml:"server"`
	Log    logging.Config `yaml:"log"`
}

// CloudConfig mirrors the engine options
type CloudConfig struct {
	Interactive *bool `yaml:"interactive"`
	ShowLabels  *bool `yaml:"show_labels"`

	Scale            float64 `yaml:"scale"`
	Radius           float64 `yaml:"radius"`
	InnerShellRatio  float64 `yaml:"inner_shell_ratio"`
	InnerShellOffset float64 `yaml:"inner_shell_offset"`
	FocalLength      float64 `yaml:"focal_length"`
	RotationSpeed    float64 `yaml:"rotation_speed"`
	DragSensitivity  float64 `yaml:"drag_sensitivity"`
	Damping          float64 `yaml:"damping"`

	TimeCorrected   bool   `yaml:"time_corrected"`
	NormalizeTags   bool   `yaml:"normalize_tags"`
	SecondaryPrefix string `yaml:"secondary_prefix"`
}

// ServerConfig configures the live viewer
type ServerConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	FPS         int    `yaml:"fps"`
	Watch       *bool  `yaml:"watch"`
	MaxSessions int    `yaml:"max_sessions"`
	Title       string `yaml:"title"`
}

// Load reads the config at path. An empty path looks for nodecloud.yaml in
// the working directory and falls back to defaults when there is none.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = FileName
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	config, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return config, nil
}

// Parse decodes YAML, applies defaults and validates
func Parse(data []byte) (*Config, error) {
	var config Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(&config)
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	o := nodecloud.DefaultOptions()
	interactive, labels, watch := true, true, true
	return &Config{
		Cloud: &CloudConfig{
			Interactive:      &interactive,
			ShowLabels:       &labels,
			Scale:            o.Scale,
			Radius:           o.Radius,
			InnerShellRatio:  o.InnerShellRatio,
			InnerShellOffset: o.InnerShellOffset,
			FocalLength:      o.FocalLength,
			RotationSpeed:    o.RotationSpeed,
			DragSensitivity:  o.DragSensitivity,
			Damping:          o.Damping,
			SecondaryPrefix:  o.SecondaryIDPrefix,
		},
		Server: &ServerConfig{
			Host:        "localhost",
			Port:        8080,
			FPS:         30,
			Watch:       &watch,
			MaxSessions: 64,
			Title:       "Projects & Skills",
		},
		Log: logging.DefaultConfig(),
	}
}

func applyDefaults(config *Config) {
	defaults := DefaultConfig()

	if config.Cloud == nil {
		config.Cloud = defaults.Cloud
	} else {
		c, d := config.Cloud, defaults.Cloud
		if c.Interactive == nil {
			c.Interactive = d.Interactive
		}
		if c.ShowLabels == nil {
			c.ShowLabels = d.ShowLabels
		}
		setFloat(&c.Scale, d.Scale)
		setFloat(&c.Radius, d.Radius)
		setFloat(&c.InnerShellRatio, d.InnerShellRatio)
		setFloat(&c.InnerShellOffset, d.InnerShellOffset)
		setFloat(&c.FocalLength, d.FocalLength)
		setFloat(&c.RotationSpeed, d.RotationSpeed)
		setFloat(&c.DragSensitivity, d.DragSensitivity)
		setFloat(&c.Damping, d.Damping)
		if c.SecondaryPrefix == "" {
			c.SecondaryPrefix = d.SecondaryPrefix
		}
	}

	if config.Server == nil {
		config.Server = defaults.Server
	} else {
		s, d := config.Server, defaults.Server
		if s.Host == "" {
			s.Host = d.Host
		}
		if s.Port == 0 {
			s.Port = d.Port
		}
		if s.FPS == 0 {
			s.FPS = d.FPS
		}
		if s.Watch == nil {
			s.Watch = d.Watch
		}
		if s.MaxSessions == 0 {
			s.MaxSessions = d.MaxSessions
		}
		if s.Title == "" {
			s.Title = d.Title
		}
	}

	if config.Log.Level == "" {
		config.Log.Level = defaults.Log.Level
	}
	if config.Log.Format == "" {
		config.Log.Format = defaults.Log.Format
	}
	if config.Log.MaxSize == 0 {
		config.Log.MaxSize = defaults.Log.MaxSize
	}
	if config.Log.MaxBackups == 0 {
		config.Log.MaxBackups = defaults.Log.MaxBackups
	}
	if config.Log.MaxAge == 0 {
		config.Log.MaxAge = defaults.Log.MaxAge
	}
}

func setFloat(v *float64, def float64) {
	if *v == 0 {
		*v = def
	}
}

// Validate checks value ranges
func (c *Config) Validate() error {
	var errs []error
	cl := c.Cloud
	if cl.Scale < 0 || cl.Radius < 0 || cl.FocalLength < 0 {
		errs = append(errs, errors.New("cloud: scale, radius and focal_length must be positive"))
	}
	if cl.Damping < 0 || cl.Damping >= 1 {
		errs = append(errs, fmt.Errorf("cloud: damping %v outside (0, 1)", cl.Damping))
	}
	if cl.InnerShellRatio < 0 || cl.InnerShellRatio > 1 {
		errs = append(errs, fmt.Errorf("cloud: inner_shell_ratio %v outside (0, 1]", cl.InnerShellRatio))
	}
	if cl.DragSensitivity < 0 {
		errs = append(errs, errors.New("cloud: drag_sensitivity must be positive"))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server: invalid port %d", c.Server.Port))
	}
	if c.Server.FPS < 0 || c.Server.FPS > 240 {
		errs = append(errs, fmt.Errorf("server: fps %d outside (0, 240]", c.Server.FPS))
	}
	if c.Server.MaxSessions < 0 {
		errs = append(errs, errors.New("server: max_sessions must be positive"))
	}
	return errors.Join(errs...)
}

// Options converts the cloud section to engine options
func (c *Config) Options() nodecloud.Options {
	cl := c.Cloud
	return nodecloud.Options{
		Interactive:       *cl.Interactive,
		ShowLabels:        *cl.ShowLabels,
		Scale:             cl.Scale,
		Radius:            cl.Radius,
		InnerShellRatio:   cl.InnerShellRatio,
		InnerShellOffset:  cl.InnerShellOffset,
		SecondaryIDPrefix: cl.SecondaryPrefix,
		NormalizeTags:     cl.NormalizeTags,
		FocalLength:       cl.FocalLength,
		RotationSpeed:     cl.RotationSpeed,
		DragSensitivity:   cl.DragSensitivity,
		Damping:           cl.Damping,
		TimeCorrected:     cl.TimeCorrected,
	}
}

// Addr is the server listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
