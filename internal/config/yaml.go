// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"voiceforge/pkg/bitint"
)

// LoadConfig loads configuration from a YAML file at path. If path is
// empty it searches default locations ("config.yaml"); if nothing is
// found the built-in defaults are used. Environment variable overrides
// are applied after loading, then the result is validated.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		candidates := []string{"config.yaml"}
		for _, candidate := range candidates {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for values the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.DSP.SampleRate <= 0 {
		return fmt.Errorf("dsp.sample_rate must be positive, got %d", c.DSP.SampleRate)
	}
	if !bitint.IsPowerOfTwo(c.DSP.FrameSize) {
		return fmt.Errorf("dsp.frame_size must be a power of 2, got %d", c.DSP.FrameSize)
	}
	if c.DSP.HopSize <= 0 || c.DSP.HopSize > c.DSP.FrameSize {
		return fmt.Errorf("dsp.hop_size must be in (0, frame_size], got %d", c.DSP.HopSize)
	}
	if c.DSP.PitchMinHz <= 0 || c.DSP.PitchMaxHz <= c.DSP.PitchMinHz {
		return fmt.Errorf("dsp pitch range [%f, %f] is invalid", c.DSP.PitchMinHz, c.DSP.PitchMaxHz)
	}
	if c.DSP.PeakCeiling <= 0 || c.DSP.PeakCeiling > 1 {
		return fmt.Errorf("dsp.peak_ceiling must be in (0, 1], got %f", c.DSP.PeakCeiling)
	}
	if c.Jobs.Workers < 0 {
		return fmt.Errorf("jobs.workers must be >= 0, got %d", c.Jobs.Workers)
	}
	switch c.Jobs.StoreBackend {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("jobs.store_backend must be \"memory\" or \"sqlite\", got %q", c.Jobs.StoreBackend)
	}
	return nil
}

// applyEnvOverrides layers VOICEFORGE_* environment variables on top of
// whatever the file (or defaults) provided.
func (c *Config) applyEnvOverrides() {
	if val, ok := os.LookupEnv("VOICEFORGE_DEBUG"); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			c.Debug = b
		}
	}
	if val, ok := os.LookupEnv("VOICEFORGE_LOG_LEVEL"); ok {
		c.LogLevel = val
	}
	if val, ok := os.LookupEnv("VOICEFORGE_LISTEN_ADDR"); ok {
		c.Server.ListenAddr = val
	}
	if val, ok := os.LookupEnv("VOICEFORGE_WORKERS"); ok {
		if n, err := strconv.Atoi(val); err == nil {
			c.Jobs.Workers = n
		}
	}
	if val, ok := os.LookupEnv("VOICEFORGE_OUTPUT_DIR"); ok {
		c.Jobs.OutputDir = val
	}
	if val, ok := os.LookupEnv("VOICEFORGE_STORE_BACKEND"); ok {
		c.Jobs.StoreBackend = val
	}
	if val, ok := os.LookupEnv("VOICEFORGE_SQLITE_PATH"); ok {
		c.Jobs.SQLitePath = val
	}
}
