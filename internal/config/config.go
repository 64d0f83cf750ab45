// Package config provides configuration management for tabeline
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Config represents the global configuration for tabeline
type Config struct {
	// CSV Configuration
	CSVDelimiter string `json:"csv_delimiter" yaml:"csv_delimiter"` // Field separator, a single character
	CSVComment   string `json:"csv_comment" yaml:"csv_comment"`     // Comment line prefix, empty to disable
	NullValue    string `json:"null_value" yaml:"null_value"`       // Text written for and read as null

	// Parquet Configuration
	ParquetCompression string `json:"parquet_compression" yaml:"parquet_compression"` // Codec used when writing Parquet

	// Display Configuration
	DisplayMaxRows  int `json:"display_max_rows" yaml:"display_max_rows"`   // Rows shown when printing a frame (0 = all)
	DisplayMaxWidth int `json:"display_max_width" yaml:"display_max_width"` // Maximum cell width in CLI output (0 = unlimited)

	// Comparison Configuration
	RelativeTolerance float64 `json:"relative_tolerance" yaml:"relative_tolerance"` // Default relative tolerance for float comparison
	AbsoluteTolerance float64 `json:"absolute_tolerance" yaml:"absolute_tolerance"` // Default absolute tolerance for float comparison

	// Logging Configuration
	LogLevel  string `json:"log_level" yaml:"log_level"`   // debug, info, warn, or error
	LogFormat string `json:"log_format" yaml:"log_format"` // text or json
}

// Global configuration instance
var (
	globalConfig Config
	configMutex  sync.RWMutex
)

// Default configuration values
const (
	DefaultCSVDelimiter       = ","
	DefaultParquetCompression = "snappy"
	DefaultDisplayMaxRows     = 20
	DefaultDisplayMaxWidth    = 40
	DefaultLogLevel           = "info"
	DefaultLogFormat          = "text"

	envPrefix = "TABELINE_"
)

var (
	compressions = []string{"none", "snappy", "gzip", "zstd", "lz4", "brotli"}
	logLevels    = []string{"debug", "info", "warn", "error"}
	logFormats   = []string{"text", "json"}
)

// Initialize global configuration with defaults
func init() {
	globalConfig = NewConfig()
}

// NewConfig creates a new configuration with default values
func NewConfig() Config {
	return Config{
		CSVDelimiter:       DefaultCSVDelimiter,
		ParquetCompression: DefaultParquetCompression,
		DisplayMaxRows:     DefaultDisplayMaxRows,
		DisplayMaxWidth:    DefaultDisplayMaxWidth,
		LogLevel:           DefaultLogLevel,
		LogFormat:          DefaultLogFormat,
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	if len([]rune(c.CSVDelimiter)) != 1 {
		return fmt.Errorf("CSVDelimiter must be a single character, got %q", c.CSVDelimiter)
	}

	if len([]rune(c.CSVComment)) > 1 {
		return fmt.Errorf("CSVComment must be at most one character, got %q", c.CSVComment)
	}

	if c.CSVComment != "" && c.CSVComment == c.CSVDelimiter {
		return fmt.Errorf("CSVComment must differ from CSVDelimiter, both are %q", c.CSVComment)
	}

	if !slices.Contains(compressions, strings.ToLower(c.ParquetCompression)) {
		return fmt.Errorf("ParquetCompression must be one of %v, got %q", compressions, c.ParquetCompression)
	}

	if c.DisplayMaxRows < 0 {
		return fmt.Errorf("DisplayMaxRows must be non-negative, got %d", c.DisplayMaxRows)
	}

	if c.DisplayMaxWidth < 0 {
		return fmt.Errorf("DisplayMaxWidth must be non-negative, got %d", c.DisplayMaxWidth)
	}

	if c.RelativeTolerance < 0 || c.AbsoluteTolerance < 0 {
		return fmt.Errorf("tolerances must be non-negative, got relative %g and absolute %g",
			c.RelativeTolerance, c.AbsoluteTolerance)
	}

	if !slices.Contains(logLevels, strings.ToLower(c.LogLevel)) {
		return fmt.Errorf("LogLevel must be one of %v, got %q", logLevels, c.LogLevel)
	}

	if !slices.Contains(logFormats, strings.ToLower(c.LogFormat)) {
		return fmt.Errorf("LogFormat must be one of %v, got %q", logFormats, c.LogFormat)
	}

	return nil
}

// WithDefaults returns a new configuration with default values filled in for zero values
func (c Config) WithDefaults() Config {
	defaults := NewConfig()

	if c.CSVDelimiter == "" {
		c.CSVDelimiter = defaults.CSVDelimiter
	}
	if c.ParquetCompression == "" {
		c.ParquetCompression = defaults.ParquetCompression
	}
	if c.DisplayMaxRows == 0 {
		c.DisplayMaxRows = defaults.DisplayMaxRows
	}
	if c.DisplayMaxWidth == 0 {
		c.DisplayMaxWidth = defaults.DisplayMaxWidth
	}
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = defaults.LogFormat
	}

	// Note: CSVComment, NullValue, and the tolerances are not defaulted here
	// because their zero values are meaningful.

	return c
}

// SetGlobalConfig sets the global configuration
func SetGlobalConfig(config Config) {
	configMutex.Lock()
	defer configMutex.Unlock()
	globalConfig = config
}

// GetGlobalConfig returns the current global configuration
func GetGlobalConfig() Config {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return globalConfig
}

// LoadFromJSON loads configuration from JSON data
func LoadFromJSON(data []byte) (Config, error) {
	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parsing JSON configuration: %w", err)
	}
	return config.WithDefaults(), nil
}

// LoadFromFile loads configuration from a JSON or YAML file
func LoadFromFile(filename string) (Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file %s: %w", filename, err)
	}

	var config Config
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".json":
		err = json.Unmarshal(data, &config)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &config)
	default:
		return Config{}, fmt.Errorf("unsupported config file format: %s", ext)
	}

	if err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w", filename, err)
	}

	return config.WithDefaults(), nil
}

// LoadFromEnv loads configuration from TABELINE_ environment variables on
// top of the defaults. Values that do not parse are ignored.
func LoadFromEnv() Config {
	config := NewConfig()

	text := map[string]*string{
		"CSV_DELIMITER":       &config.CSVDelimiter,
		"CSV_COMMENT":         &config.CSVComment,
		"NULL_VALUE":          &config.NullValue,
		"PARQUET_COMPRESSION": &config.ParquetCompression,
		"LOG_LEVEL":           &config.LogLevel,
		"LOG_FORMAT":          &config.LogFormat,
	}
	for name, field := range text {
		if val, ok := os.LookupEnv(envPrefix + name); ok {
			*field = val
		}
	}

	if val := os.Getenv(envPrefix + "DISPLAY_MAX_ROWS"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			config.DisplayMaxRows = parsed
		}
	}

	if val := os.Getenv(envPrefix + "DISPLAY_MAX_WIDTH"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			config.DisplayMaxWidth = parsed
		}
	}

	if val := os.Getenv(envPrefix + "RELATIVE_TOLERANCE"); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			config.RelativeTolerance = parsed
		}
	}

	if val := os.Getenv(envPrefix + "ABSOLUTE_TOLERANCE"); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			config.AbsoluteTolerance = parsed
		}
	}

	return config
}

// Delimiter returns the CSV delimiter as a rune.
func (c Config) Delimiter() rune {
	for _, r := range c.CSVDelimiter {
		return r
	}
	return ','
}

// Comment returns the CSV comment character, or 0 when comments are off.
func (c Config) Comment() rune {
	for _, r := range c.CSVComment {
		return r
	}
	return 0
}

// Level returns LogLevel as a slog level. Unknown names map to info.
func (c Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Logger returns a logger that writes to stderr per LogLevel and LogFormat.
func (c Config) Logger() *slog.Logger {
	return c.NewLogger(os.Stderr)
}

// NewLogger returns a logger that writes to w per LogLevel and LogFormat.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.Level()}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
