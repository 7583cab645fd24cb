package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/menta2k/aspect-outpaint/pkg/types"
)

// Config holds the application configuration
type Config struct {
	Pipeline PipelineConfig `json:"pipeline" yaml:"pipeline" toml:"pipeline"`
	Defaults types.Params   `json:"defaults" yaml:"defaults" toml:"defaults"`
	Output   OutputConfig   `json:"output" yaml:"output" toml:"output"`
	Caption  CaptionConfig  `json:"caption" yaml:"caption" toml:"caption"`
}

// PipelineConfig selects the pipeline variant and fallback policy
type PipelineConfig struct {
	Variant      types.Variant `json:"variant" yaml:"variant" toml:"variant"`
	Strict       bool          `json:"strict" yaml:"strict" toml:"strict"`
	Reproducible bool          `json:"reproducible" yaml:"reproducible" toml:"reproducible"`
}

// OutputConfig holds configuration for output generation
type OutputConfig struct {
	Format     string `json:"format" yaml:"format" toml:"format"`
	Quality    int    `json:"quality" yaml:"quality" toml:"quality"`
	Lossless   bool   `json:"lossless" yaml:"lossless" toml:"lossless"`
	OutputDir  string `json:"output_dir" yaml:"output_dir" toml:"output_dir"`
	Suffix     string `json:"suffix" yaml:"suffix" toml:"suffix"`
	MaskSuffix string `json:"mask_suffix" yaml:"mask_suffix" toml:"mask_suffix"`
	Debug      bool   `json:"debug" yaml:"debug" toml:"debug"`
}

// CaptionConfig holds configuration for the optional outpaint prompt
type CaptionConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled" toml:"enabled"`
	URL     string `json:"url" yaml:"url" toml:"url"`
	Model   string `json:"model" yaml:"model" toml:"model"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			Variant:      types.Extended,
			Strict:       false,
			Reproducible: true,
		},
		Defaults: types.Params{
			AspectRatio: "16:9",
			Placement:   string(types.Center),
			Scale:       "100",
			Rotation:    "0",
			Background:  "grey",
			Seed:        0,
			Feathering:  40,
		},
		Output: OutputConfig{
			Format:     "png",
			Quality:    90,
			Lossless:   false,
			OutputDir:  "./output",
			Suffix:     "_padded",
			MaskSuffix: "_mask",
		},
		Caption: CaptionConfig{
			Enabled: false,
			URL:     "http://localhost:11434",
			Model:   "openbmb/minicpm-v4.5",
		},
	}
}

// LoadFromFile loads configuration from a JSON, TOML or YAML file. Keys
// missing from the file keep their default values.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".json":
		err = json.Unmarshal(data, config)
	case ".toml":
		_, err = toml.Decode(string(data), config)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, config)
	default:
		return nil, fmt.Errorf("unsupported config format: %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration, choosing the format from the extension
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var data []byte
	var err error
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".json":
		data, err = json.MarshalIndent(c, "", "  ")
	case ".toml":
		var buf bytes.Buffer
		err = toml.NewEncoder(&buf).Encode(c)
		data = buf.Bytes()
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		return fmt.Errorf("unsupported config format: %q", ext)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Pipeline.Variant != types.Extended && c.Pipeline.Variant != types.Legacy {
		return fmt.Errorf("pipeline.variant must be %q or %q", types.Extended, types.Legacy)
	}

	if c.Defaults.Feathering < 0 || c.Defaults.Feathering > 1024 {
		return fmt.Errorf("defaults.feathering must be between 0 and 1024")
	}

	if c.Defaults.Seed > 1<<31-1 {
		return fmt.Errorf("defaults.seed must fit in 31 bits")
	}

	if !slices.Contains([]string{"jpg", "jpeg", "png", "webp"}, strings.ToLower(c.Output.Format)) {
		return fmt.Errorf("output.format must be one of jpg, png, webp")
	}

	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return fmt.Errorf("output.quality must be between 1 and 100")
	}

	if c.Output.Suffix == c.Output.MaskSuffix {
		return fmt.Errorf("output.suffix and output.mask_suffix must differ")
	}

	if c.Caption.Enabled && (c.Caption.URL == "" || c.Caption.Model == "") {
		return fmt.Errorf("caption.url and caption.model are required when captions are enabled")
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.toml"
	}
	return filepath.Join(home, ".config", "aspect-outpaint", "config.toml")
}
