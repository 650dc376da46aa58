// Package config loads the TOML configuration shared by the interlin tools.
package config

import (
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/FocuswithJustin/JuniperText/core/adjust"
	"github.com/FocuswithJustin/JuniperText/core/errors"
	"github.com/FocuswithJustin/JuniperText/core/segment"
	"github.com/FocuswithJustin/JuniperText/core/wsys"
	"github.com/FocuswithJustin/JuniperText/internal/logging"
)

// Config is the decoded configuration file.
type Config struct {
	Segmenter      segment.Options       `toml:"segmenter"`
	WritingSystems []*wsys.WritingSystem `toml:"writing_system"`
	Adjuster       AdjusterConfig        `toml:"adjuster"`
	Journal        JournalConfig         `toml:"journal"`
	Logging        LoggingConfig         `toml:"logging"`
}

// AdjusterConfig configures edit adjustment.
type AdjusterConfig struct {
	// ChartPolicy is "leave-unassigned" or "expand-first".
	ChartPolicy string `toml:"chart_policy"`
}

// JournalConfig locates the edit journal. An empty path disables it.
type JournalConfig struct {
	Path string `toml:"path"`
}

// LoggingConfig configures internal/logging.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Segmenter: segment.DefaultOptions(),
		Adjuster:  AdjusterConfig{ChartPolicy: adjust.ChartLeaveUnassigned.String()},
		Logging:   LoggingConfig{Level: "warn", Format: "text"},
	}
}

// Load reads path over the defaults. Keys missing from the file keep their
// default values.
func Load(path string) (*Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, errors.NewParse("toml", path, err.Error())
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.NewParse("toml", path, "unknown keys: "+strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return cfg, nil
}

// Parse decodes TOML text over the defaults.
func Parse(data string) (*Config, error) {
	cfg := Default()
	if _, err := toml.Decode(data, cfg); err != nil {
		return nil, errors.NewParse("toml", "", err.Error())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values the decoder cannot.
func (c *Config) Validate() error {
	if _, ok := adjust.ParseChartPolicy(c.Adjuster.ChartPolicy); !ok {
		return errors.NewValidation("adjuster.chart_policy", "unknown policy "+c.Adjuster.ChartPolicy)
	}
	seen := make(map[string]bool)
	for _, ws := range c.WritingSystems {
		if strings.TrimSpace(ws.ID) == "" {
			return errors.NewValidation("writing_system.id", "missing id")
		}
		if seen[ws.ID] {
			return errors.NewValidation("writing_system.id", "duplicate id "+ws.ID)
		}
		seen[ws.ID] = true
	}
	if c.Segmenter.SentenceFinal == "" {
		return errors.NewValidation("segmenter.sentence_final", "no sentence-final characters")
	}
	return nil
}

// Registry builds the writing system registry.
func (c *Config) Registry() *wsys.Registry {
	return wsys.NewRegistry(c.WritingSystems...)
}

// Parser builds a segment parser from the segmenter and writing systems.
func (c *Config) Parser() *segment.Parser {
	return segment.NewParser(c.Registry(), c.Segmenter)
}

// ChartPolicy returns the configured chart policy.
func (c *Config) ChartPolicy() adjust.ChartPolicy {
	p, _ := adjust.ParseChartPolicy(c.Adjuster.ChartPolicy)
	return p
}

// AdjusterOptions returns the adjust options the configuration implies.
func (c *Config) AdjusterOptions() []adjust.Option {
	return []adjust.Option{adjust.WithChartPolicy(c.ChartPolicy())}
}

// InitLogging applies the logging section.
func (c *Config) InitLogging() {
	logging.InitLogger(logging.ParseLevel(c.Logging.Level), logging.ParseFormat(c.Logging.Format))
}
