package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the process-wide engine configuration. It is loaded once at
// startup and treated as immutable for the duration of a script run.
type Config struct {
	Logger   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	Library  LibraryConfig  `mapstructure:"library" yaml:"library"`
	Match    MatchConfig    `mapstructure:"match" yaml:"match"`
	Diff     DiffConfig     `mapstructure:"diff" yaml:"diff"`
	Engine   EngineConfig   `mapstructure:"engine" yaml:"engine"`
	Timeouts TimeoutsConfig `mapstructure:"timeouts" yaml:"timeouts"`
	OCR      OCRConfig      `mapstructure:"ocr" yaml:"ocr"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// LibraryConfig locates the template library on disk.
type LibraryConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// MatchConfig tunes the template matcher.
type MatchConfig struct {
	// Confidence is the minimum correlation score for a positive match.
	// Scores below it are reported as not found, never as weak positives.
	Confidence float64 `mapstructure:"confidence" yaml:"confidence"`
	// Strategy selects the matcher implementation: "ncc" or "needle".
	Strategy string `mapstructure:"strategy" yaml:"strategy"`
	// NeedleTolerance is the per-channel delta the needle strategy accepts.
	NeedleTolerance int `mapstructure:"needle_tolerance" yaml:"needle_tolerance"`
}

// DiffConfig tunes the region differ.
type DiffConfig struct {
	// NoiseThreshold is the changed-pixel fraction below which a diff is
	// reported as unchanged. Absorbs cursor blink and clock ticks.
	NoiseThreshold float64 `mapstructure:"noise_threshold" yaml:"noise_threshold"`
	// PixelTolerance is the per-channel delta treated as identical.
	// Absorbs anti-aliased re-rendering.
	PixelTolerance int `mapstructure:"pixel_tolerance" yaml:"pixel_tolerance"`
}

// EngineConfig tunes the verb state machine.
type EngineConfig struct {
	PollInterval    time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
	Margin          int           `mapstructure:"margin" yaml:"margin"`
	PointZone       int           `mapstructure:"point_zone" yaml:"point_zone"`
	ScrollStep      int           `mapstructure:"scroll_step" yaml:"scroll_step"`
	StableReads     int           `mapstructure:"stable_reads" yaml:"stable_reads"`
	SettleDelay     time.Duration `mapstructure:"settle_delay" yaml:"settle_delay"`
	TypeDelayMs     int           `mapstructure:"type_delay_ms" yaml:"type_delay_ms"`
	CaptureCacheTTL time.Duration `mapstructure:"capture_cache_ttl" yaml:"capture_cache_ttl"`
	ArtifactDir     string        `mapstructure:"artifact_dir" yaml:"artifact_dir"`
}

// TimeoutsConfig holds the per-verb default deadlines.
type TimeoutsConfig struct {
	Click  time.Duration `mapstructure:"click" yaml:"click"`
	Scroll time.Duration `mapstructure:"scroll" yaml:"scroll"`
	Input  time.Duration `mapstructure:"input" yaml:"input"`
	Hover  time.Duration `mapstructure:"hover" yaml:"hover"`
	Check  time.Duration `mapstructure:"check" yaml:"check"`
}

// OCRConfig configures the external text-analysis backend.
type OCRConfig struct {
	// Backend selects the implementation: "rules" or "http".
	Backend string        `mapstructure:"backend" yaml:"backend"`
	URL     string        `mapstructure:"url" yaml:"url"`
	APIKey  string        `mapstructure:"api_key" yaml:"api_key"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// SetDefaults registers default values for all configuration keys.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "honk")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)

	v.SetDefault("library.dir", "./templates")

	v.SetDefault("match.confidence", 0.8)
	v.SetDefault("match.strategy", "ncc")
	v.SetDefault("match.needle_tolerance", 26)

	v.SetDefault("diff.noise_threshold", 0.1)
	v.SetDefault("diff.pixel_tolerance", 16)

	v.SetDefault("engine.poll_interval", "100ms")
	v.SetDefault("engine.margin", 20)
	v.SetDefault("engine.point_zone", 300)
	v.SetDefault("engine.scroll_step", 3)
	v.SetDefault("engine.stable_reads", 1)
	v.SetDefault("engine.settle_delay", "100ms")
	v.SetDefault("engine.type_delay_ms", 0)
	v.SetDefault("engine.capture_cache_ttl", "80ms")
	v.SetDefault("engine.artifact_dir", "")

	v.SetDefault("timeouts.click", "500ms")
	v.SetDefault("timeouts.scroll", "10s")
	v.SetDefault("timeouts.input", "1s")
	v.SetDefault("timeouts.hover", "2s")
	v.SetDefault("timeouts.check", "5s")

	v.SetDefault("ocr.backend", "rules")
	v.SetDefault("ocr.url", "http://127.0.0.1:8089")
	v.SetDefault("ocr.api_key", "")
	v.SetDefault("ocr.timeout", "5s")
}

// NewFromViper builds a validated Config from the given viper instance.
func NewFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for sane values.
func (c *Config) Validate() error {
	if c.Match.Confidence <= 0 || c.Match.Confidence > 1 {
		return fmt.Errorf("match.confidence must be in (0, 1], got %v", c.Match.Confidence)
	}
	if c.Match.Strategy != "ncc" && c.Match.Strategy != "needle" {
		return fmt.Errorf("match.strategy must be \"ncc\" or \"needle\", got %q", c.Match.Strategy)
	}
	if c.Diff.NoiseThreshold < 0 || c.Diff.NoiseThreshold >= 1 {
		return fmt.Errorf("diff.noise_threshold must be in [0, 1), got %v", c.Diff.NoiseThreshold)
	}
	if c.Diff.PixelTolerance < 0 || c.Diff.PixelTolerance > 255 {
		return fmt.Errorf("diff.pixel_tolerance must be in [0, 255], got %d", c.Diff.PixelTolerance)
	}
	if c.Engine.PollInterval <= 0 {
		return fmt.Errorf("engine.poll_interval must be positive")
	}
	if c.Engine.Margin < 0 {
		return fmt.Errorf("engine.margin must not be negative")
	}
	if c.Engine.PointZone <= 0 {
		return fmt.Errorf("engine.point_zone must be positive")
	}
	if c.Engine.StableReads < 1 {
		return fmt.Errorf("engine.stable_reads must be at least 1")
	}
	if c.Engine.ScrollStep == 0 {
		return fmt.Errorf("engine.scroll_step must not be zero")
	}
	if c.OCR.Backend != "rules" && c.OCR.Backend != "http" {
		return fmt.Errorf("ocr.backend must be \"rules\" or \"http\", got %q", c.OCR.Backend)
	}
	if c.OCR.Backend == "http" && c.OCR.URL == "" {
		return fmt.Errorf("ocr.url is required when ocr.backend is \"http\"")
	}
	return nil
}
