package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/uzzielvz/cartera-generator/internal/domain"
)

// EnvPrefix prefixes every environment override, e.g. CARTERA_OUTPUT_PATH.
const EnvPrefix = "CARTERA"

type Config struct {
	Input     InputConfig     `mapstructure:"input"`
	Output    OutputConfig    `mapstructure:"output"`
	Reference ReferenceConfig `mapstructure:"reference"`
	Sheets    SheetsConfig    `mapstructure:"sheets"`
	Rules     RulesConfig     `mapstructure:"rules"`
	Log       LogConfig       `mapstructure:"log"`
}

type InputConfig struct {
	Dir      string         `mapstructure:"dir"`
	Patterns PatternsConfig `mapstructure:"patterns"`
}

// PatternsConfig are the file-name globs of the four sources.
type PatternsConfig struct {
	Aging       string `mapstructure:"aging"`
	Status      string `mapstructure:"status"`
	Collections string `mapstructure:"collections"`
	Savings     string `mapstructure:"savings"`
}

type OutputConfig struct {
	Path string `mapstructure:"path"`
}

// ReferenceConfig points at the hand-maintained workbook (machote). It is
// optional: without it no promoter patch sheet is read and validation is skipped.
type ReferenceConfig struct {
	Path     string `mapstructure:"path"`
	Validate bool   `mapstructure:"validate"`
}

type SheetsConfig struct {
	Aging                string `mapstructure:"aging"`
	Status               string `mapstructure:"status"`
	StatusHeaderRows     []int  `mapstructure:"status_header_rows"`
	Collections          string `mapstructure:"collections"`
	CollectionsHeaderRow int    `mapstructure:"collections_header_row"`
	Savings              string `mapstructure:"savings"`
	SavingsHeaderRow     int    `mapstructure:"savings_header_row"`
}

type RulesConfig struct {
	MoraThreshold float64 `mapstructure:"mora_threshold"`
	// PatchesFile is an optional yaml/json/toml file merged over the built-in patches.
	PatchesFile string `mapstructure:"patches_file"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("input.dir", "data")
	v.SetDefault("input.patterns.aging", domain.DefaultAgingPattern)
	v.SetDefault("input.patterns.status", domain.DefaultStatusPattern)
	v.SetDefault("input.patterns.collections", domain.DefaultCollectionsPattern)
	v.SetDefault("input.patterns.savings", domain.DefaultSavingsPattern)
	v.SetDefault("output.path", "output/cartera_generada.xlsx")
	v.SetDefault("reference.path", "")
	v.SetDefault("reference.validate", true)
	v.SetDefault("sheets.aging", "")
	v.SetDefault("sheets.status", domain.DefaultStatusSheet)
	v.SetDefault("sheets.status_header_rows", domain.DefaultStatusHeaderRows())
	v.SetDefault("sheets.collections", domain.DefaultCollectionsSheet)
	v.SetDefault("sheets.collections_header_row", domain.DefaultCollectionsHeaderRow)
	v.SetDefault("sheets.savings", domain.DefaultSavingsSheet)
	v.SetDefault("sheets.savings_header_row", domain.DefaultSavingsHeaderRow)
	v.SetDefault("rules.mora_threshold", domain.DefaultMoraThreshold)
	v.SetDefault("rules.patches_file", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", "cartera_automation.log")
}

// Load reads .env, then the config file, then CARTERA_* variables. With no
// explicit path a missing cartera.yaml is fine and defaults apply.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("cartera")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Input.Dir == "" {
		return fmt.Errorf("input.dir is required")
	}
	for name, p := range map[string]string{
		"aging":       c.Input.Patterns.Aging,
		"status":      c.Input.Patterns.Status,
		"collections": c.Input.Patterns.Collections,
		"savings":     c.Input.Patterns.Savings,
	} {
		if p == "" {
			return fmt.Errorf("input.patterns.%s is required", name)
		}
	}
	if c.Output.Path == "" {
		return fmt.Errorf("output.path is required")
	}
	if len(c.Sheets.StatusHeaderRows) == 0 {
		return fmt.Errorf("sheets.status_header_rows must list at least one row")
	}
	for _, r := range append([]int{c.Sheets.CollectionsHeaderRow, c.Sheets.SavingsHeaderRow}, c.Sheets.StatusHeaderRows...) {
		if r < 0 {
			return fmt.Errorf("invalid header row: %d", r)
		}
	}
	if c.Rules.MoraThreshold <= 0 || c.Rules.MoraThreshold >= 1 {
		return fmt.Errorf("invalid rules.mora_threshold: %v, must be a fraction in (0, 1)", c.Rules.MoraThreshold)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		return fmt.Errorf("invalid log format: %s, must be 'json' or 'console'", c.Log.Format)
	}
	return nil
}
