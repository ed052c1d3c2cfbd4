// SPDX-License-Identifier: MIT
package config

// Core constants that define the boundaries and defaults for the voice
// processing pipeline. The DSP thresholds are the canonical set: the
// pipeline reads them from DSPConfig, never from scattered literals.
const (
	// Canonical working format. All audio is down-mixed and resampled
	// to this before analysis or transformation.
	DefaultSampleRate = 22050 // Hz, mono
	DefaultFrameSize  = 2048  // samples per analysis frame
	DefaultHopSize    = 512   // samples between frames

	// Pitch tracking range for speech.
	DefaultPitchMinHz = 80.0
	DefaultPitchMaxHz = 400.0

	// Transform thresholds.
	DefaultPitchSkipSemitones = 0.1    // shifts smaller than this are identity
	DefaultFormantLowHz       = 300.0  // formant reweight band
	DefaultFormantHighHz      = 3000.0 //
	DefaultBrightnessCutoffHz = 2000.0 // brightness band lower edge
	DefaultMinF0DiffHz        = 10.0   // minimum F0 gap before pitch transfer
	DefaultCentroidDiffHz     = 200.0  // minimum centroid gap before reweight
	DefaultRolloffDiffHz      = 500.0  // minimum rolloff gap before reweight

	// Spectral rolloff energy threshold.
	DefaultRolloffThreshold = 0.85

	// Peak ceiling applied by the final normalize step.
	DefaultPeakCeiling = 0.95

	// Job execution defaults. Workers of 0 means runtime.NumCPU().
	DefaultWorkers         = 0
	DefaultJobTimeoutSecs  = 120
	DefaultMaxUploadBytes  = 50 << 20 // 50 MiB per audio payload
	DefaultOutputDir       = "./results"
	DefaultStoreBackend    = "memory"
	DefaultSQLitePath      = "./jobs.db"
	DefaultListenAddr      = ":8080"
	DefaultEventBufferSize = 256
)

// Config holds all runtime configuration, loaded from YAML with
// environment overrides applied on top.
type Config struct {
	Debug    bool         `yaml:"debug"`
	LogLevel string       `yaml:"log_level"`
	Server   ServerConfig `yaml:"server"`
	Jobs     JobsConfig   `yaml:"jobs"`
	DSP      DSPConfig    `yaml:"dsp"`
}

// ServerConfig holds the HTTP/WebSocket surface settings.
type ServerConfig struct {
	ListenAddr      string `yaml:"listen_addr"`
	MaxUploadBytes  int64  `yaml:"max_upload_bytes"`
	EventBufferSize int    `yaml:"event_buffer_size"`
}

// JobsConfig holds worker pool and job store settings.
type JobsConfig struct {
	Workers        int    `yaml:"workers"`         // 0 = one per CPU core
	TimeoutSeconds int    `yaml:"timeout_seconds"` // per-job processing bound
	OutputDir      string `yaml:"output_dir"`      // result WAVs land here
	StoreBackend   string `yaml:"store_backend"`   // "memory" or "sqlite"
	SQLitePath     string `yaml:"sqlite_path"`
}

// DSPConfig holds the analysis and transform parameters. The threshold
// values varied between call sites in earlier revisions; this is the one
// canonical set.
type DSPConfig struct {
	SampleRate         int     `yaml:"sample_rate"`
	FrameSize          int     `yaml:"frame_size"`
	HopSize            int     `yaml:"hop_size"`
	PitchMinHz         float64 `yaml:"pitch_min_hz"`
	PitchMaxHz         float64 `yaml:"pitch_max_hz"`
	PitchSkipSemitones float64 `yaml:"pitch_skip_semitones"`
	FormantLowHz       float64 `yaml:"formant_low_hz"`
	FormantHighHz      float64 `yaml:"formant_high_hz"`
	BrightnessCutoffHz float64 `yaml:"brightness_cutoff_hz"`
	MinF0DiffHz        float64 `yaml:"min_f0_diff_hz"`
	CentroidDiffHz     float64 `yaml:"centroid_diff_hz"`
	RolloffDiffHz      float64 `yaml:"rolloff_diff_hz"`
	RolloffThreshold   float64 `yaml:"rolloff_threshold"`
	PeakCeiling        float64 `yaml:"peak_ceiling"`
}

// NewConfig returns a Config populated with the built-in defaults.
func NewConfig() *Config {
	return &Config{
		Debug:    false,
		LogLevel: "info",
		Server: ServerConfig{
			ListenAddr:      DefaultListenAddr,
			MaxUploadBytes:  DefaultMaxUploadBytes,
			EventBufferSize: DefaultEventBufferSize,
		},
		Jobs: JobsConfig{
			Workers:        DefaultWorkers,
			TimeoutSeconds: DefaultJobTimeoutSecs,
			OutputDir:      DefaultOutputDir,
			StoreBackend:   DefaultStoreBackend,
			SQLitePath:     DefaultSQLitePath,
		},
		DSP: DSPConfig{
			SampleRate:         DefaultSampleRate,
			FrameSize:          DefaultFrameSize,
			HopSize:            DefaultHopSize,
			PitchMinHz:         DefaultPitchMinHz,
			PitchMaxHz:         DefaultPitchMaxHz,
			PitchSkipSemitones: DefaultPitchSkipSemitones,
			FormantLowHz:       DefaultFormantLowHz,
			FormantHighHz:      DefaultFormantHighHz,
			BrightnessCutoffHz: DefaultBrightnessCutoffHz,
			MinF0DiffHz:        DefaultMinF0DiffHz,
			CentroidDiffHz:     DefaultCentroidDiffHz,
			RolloffDiffHz:      DefaultRolloffDiffHz,
			RolloffThreshold:   DefaultRolloffThreshold,
			PeakCeiling:        DefaultPeakCeiling,
		},
	}
}
