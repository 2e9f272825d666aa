package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/insightforge-cli/internal/analysis"
	"github.com/KaramelBytes/insightforge-cli/internal/utils"
)

// EnvPrefix namespaces environment overrides, e.g. INSIGHTFORGE_PALETTE.
const EnvPrefix = "INSIGHTFORGE"

// Global configuration structure.
type Global struct {
	DefaultBins        int    `mapstructure:"default_bins" yaml:"default_bins"`
	DefaultAggregation string `mapstructure:"default_aggregation" yaml:"default_aggregation"`
	Palette            string `mapstructure:"palette" yaml:"palette"`
	MaxFileMB          int    `mapstructure:"max_file_mb" yaml:"max_file_mb"`
	SampleRows         int    `mapstructure:"sample_rows" yaml:"sample_rows"`
	LogLevel           string `mapstructure:"log_level" yaml:"log_level"`
	StateDir           string `mapstructure:"state_dir" yaml:"state_dir"`
}

// Dir is the directory holding config.yaml and the default state dir.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".insightforge"), nil
}

// Defaults returns the built-in settings without reading file or env.
func Defaults() *Global {
	c := &Global{
		DefaultBins:        analysis.DefaultBins,
		DefaultAggregation: string(analysis.AggregateMean),
		Palette:            "indigo",
		MaxFileMB:          25,
		SampleRows:         5,
		LogLevel:           "info",
	}
	if dir, err := Dir(); err == nil {
		c.StateDir = filepath.Join(dir, "state")
	}
	return c
}

func defaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	def := Defaults()
	v.SetDefault("default_bins", def.DefaultBins)
	v.SetDefault("default_aggregation", def.DefaultAggregation)
	v.SetDefault("palette", def.Palette)
	v.SetDefault("max_file_mb", def.MaxFileMB)
	v.SetDefault("sample_rows", def.SampleRows)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("state_dir", "")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.StateDir == "" {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		c.StateDir = filepath.Join(dir, "state")
	}
	expanded, err := utils.ExpandHome(c.StateDir)
	if err != nil {
		return nil, err
	}
	c.StateDir = expanded
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects values the analysis layer cannot use.
func (c *Global) Validate() error {
	if c.DefaultBins <= 0 {
		return fmt.Errorf("default_bins must be positive, got %d", c.DefaultBins)
	}
	if _, err := analysis.ParseAggregation(c.DefaultAggregation); err != nil {
		return fmt.Errorf("default_aggregation: %w", err)
	}
	if c.MaxFileMB <= 0 {
		return fmt.Errorf("max_file_mb must be positive, got %d", c.MaxFileMB)
	}
	if c.SampleRows < 0 {
		return fmt.Errorf("sample_rows must not be negative, got %d", c.SampleRows)
	}
	return nil
}

// ChartOptions converts the defaults into dashboard chart options.
func (c *Global) ChartOptions() analysis.ChartOptions {
	agg, err := analysis.ParseAggregation(c.DefaultAggregation)
	if err != nil {
		agg = analysis.AggregateMean
	}
	return analysis.ChartOptions{Palette: c.Palette, Bins: c.DefaultBins, Aggregation: agg}
}

// MaxBytes is the upload limit in bytes.
func (c *Global) MaxBytes() int64 { return int64(c.MaxFileMB) * 1024 * 1024 }

// Keys lists the settable keys in display order.
func Keys() []string {
	return []string{"default_bins", "default_aggregation", "palette", "max_file_mb", "sample_rows", "log_level", "state_dir"}
}

// Get renders one key's current value.
func (c *Global) Get(key string) (string, error) {
	switch key {
	case "default_bins":
		return strconv.Itoa(c.DefaultBins), nil
	case "default_aggregation":
		return c.DefaultAggregation, nil
	case "palette":
		return c.Palette, nil
	case "max_file_mb":
		return strconv.Itoa(c.MaxFileMB), nil
	case "sample_rows":
		return strconv.Itoa(c.SampleRows), nil
	case "log_level":
		return c.LogLevel, nil
	case "state_dir":
		return c.StateDir, nil
	}
	return "", fmt.Errorf("unknown key: %s (use %s)", key, strings.Join(sortedKeys(), ", "))
}

// Set parses and assigns one key. c is left unchanged on error.
func (c *Global) Set(key, val string) error {
	next := *c
	switch key {
	case "default_bins", "max_file_mb", "sample_rows":
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid int for %s: %w", key, err)
		}
		switch key {
		case "default_bins":
			next.DefaultBins = i
		case "max_file_mb":
			next.MaxFileMB = i
		default:
			next.SampleRows = i
		}
	case "default_aggregation":
		agg, err := analysis.ParseAggregation(val)
		if err != nil {
			return err
		}
		next.DefaultAggregation = string(agg)
	case "palette":
		next.Palette = val
	case "log_level":
		switch strings.ToLower(val) {
		case "debug", "info", "warn", "error":
			next.LogLevel = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_level: %s (use debug, info, warn or error)", val)
		}
	case "state_dir":
		next.StateDir = val
	default:
		return fmt.Errorf("unknown key: %s (use %s)", key, strings.Join(sortedKeys(), ", "))
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

func sortedKeys() []string {
	k := Keys()
	sort.Strings(k)
	return k
}

// Save writes the given configuration to cfgFile, or to
// ~/.insightforge/config.yaml when cfgFile is empty.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := defaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
