package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"finprobe/internal/errors"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment variable read by Load
const EnvPrefix = "FINPROBE"

// Config represents the complete application configuration
type Config struct {
	Input      InputConfig      `yaml:"input" envconfig:"INPUT"`
	Output     OutputConfig     `yaml:"output" envconfig:"OUTPUT"`
	Logging    LoggingConfig    `yaml:"logging" envconfig:"LOGGING"`
	Analysis   AnalysisConfig   `yaml:"analysis" envconfig:"ANALYSIS"`
	Vocabulary VocabularyConfig `yaml:"vocabulary" envconfig:"VOCABULARY"`
	Workers    int              `yaml:"workers" split_words:"true" default:"1" validate:"min=1,max=64"`
	// ConfigFile is an optional YAML file overlaying the analysis and vocabulary sections
	ConfigFile string `yaml:"-" split_words:"true"`
}

// InputConfig controls where the workbook is looked for
type InputConfig struct {
	Path      string `yaml:"path" split_words:"true"`
	Filename  string `yaml:"filename" split_words:"true" default:"workbook.xlsx" validate:"required"`
	SearchDir string `yaml:"search_dir" split_words:"true"`
}

// OutputConfig controls result persistence
type OutputConfig struct {
	ReportFile  string `yaml:"report_file" split_words:"true" default:"analysis_results.txt"`
	Save        bool   `yaml:"save" split_words:"true" default:"true"`
	MetricsFile string `yaml:"metrics_file" split_words:"true"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level   string `yaml:"level" split_words:"true" default:"INFO" validate:"oneof=DEBUG INFO WARN ERROR debug info warn error"`
	Format  string `yaml:"format" split_words:"true" default:"text" validate:"oneof=text json"`
	Tracing bool   `yaml:"tracing" split_words:"true" default:"false"`
}

// AnalysisConfig holds every threshold and limit of the analysis passes
type AnalysisConfig struct {
	ProfileColumnLimit      int     `yaml:"profile_column_limit" split_words:"true" default:"5" validate:"min=1"`
	TrendColumnLimit        int     `yaml:"trend_column_limit" split_words:"true" default:"3" validate:"min=1"`
	CorrelationThreshold    float64 `yaml:"correlation_threshold" split_words:"true" default:"0.5" validate:"gte=0,lt=1"`
	CorrelationDisplayLimit int     `yaml:"correlation_display_limit" split_words:"true" default:"5" validate:"min=1"`
	CategoricalColumnLimit  int     `yaml:"categorical_column_limit" split_words:"true" default:"3" validate:"min=1"`
	CategoryMinDistinct     int     `yaml:"category_min_distinct" split_words:"true" default:"2" validate:"min=1"`
	CategoryMaxDistinct     int     `yaml:"category_max_distinct" split_words:"true" default:"20" validate:"gtefield=CategoryMinDistinct"`
	CategoryLabelLimit      int     `yaml:"category_label_limit" split_words:"true" default:"10" validate:"min=1"`
	GroupColumnLimit        int     `yaml:"group_column_limit" split_words:"true" default:"3" validate:"min=1"`
	GroupDisplayLimit       int     `yaml:"group_display_limit" split_words:"true" default:"5" validate:"min=1"`
	MinObservations         int     `yaml:"min_observations" split_words:"true" default:"5" validate:"min=1"`
	VolatilityHighCV        float64 `yaml:"volatility_high_cv" split_words:"true" default:"0.5" validate:"gtfield=VolatilityStableCV"`
	VolatilityStableCV      float64 `yaml:"volatility_stable_cv" split_words:"true" default:"0.1" validate:"gt=0"`
	OutlierIQRMultiplier    float64 `yaml:"outlier_iqr_multiplier" split_words:"true" default:"1.5" validate:"gt=0"`
	OutlierSharePercent     float64 `yaml:"outlier_share_percent" split_words:"true" default:"10" validate:"gte=0,lte=100"`
	TrendSlopeFactor        float64 `yaml:"trend_slope_factor" split_words:"true" default:"0.1" validate:"gte=0"`
	FindingDisplayLimit     int     `yaml:"finding_display_limit" split_words:"true" default:"5" validate:"min=1"`
	KPIDashboardColumns     int     `yaml:"kpi_dashboard_columns" split_words:"true" default:"10" validate:"min=0"`
	PredictiveCorrelations  int     `yaml:"predictive_correlations" split_words:"true" default:"5" validate:"min=0"`
	PriorityLimit           int     `yaml:"priority_limit" split_words:"true" default:"5" validate:"min=1"`
	// ChronologicalTrend orders values by the table's date column before fitting trend slopes
	ChronologicalTrend bool `yaml:"chronological_trend" split_words:"true" default:"true"`
}

// VocabularyConfig holds the keyword sets used by the name heuristics
type VocabularyConfig struct {
	Financial []string `yaml:"financial" split_words:"true" validate:"required,dive,required"`
	Date      []string `yaml:"date" split_words:"true" validate:"required,dive,required"`
}

// DefaultFinancialKeywords is the built-in financial column vocabulary
var DefaultFinancialKeywords = []string{
	"revenue", "sales", "profit", "ebitda",
	"margin", "cost", "expense", "cash",
	"debt", "equity", "roi", "growth",
	"income", "earnings", "assets", "liabilities",
}

// DefaultDateKeywords is the built-in date column vocabulary
var DefaultDateKeywords = []string{"date", "year"}

// Default returns a configuration with every default applied and no environment read
func Default() *Config {
	cfg := &Config{}
	// default tags are the only place defaults live; a prefix nothing uses yields them unmodified
	if err := envconfig.Process("FINPROBE_DEFAULTS_UNUSED", cfg); err != nil {
		panic(fmt.Sprintf("config: invalid default tags: %v", err))
	}
	applyVocabularyDefaults(cfg)
	return cfg
}

// Load reads configuration from .env, the environment and an optional YAML file, then validates it
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := &Config{}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("failed to load config from env: %w", err))
	}

	if cfg.ConfigFile != "" {
		if err := cfg.MergeFile(cfg.ConfigFile); err != nil {
			return nil, err
		}
	}

	applyVocabularyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MergeFile overlays the YAML file onto the configuration; keys absent from the file keep their values.
// Vocabularies are normalized after the merge.
func (c *Config) MergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("failed to read config file %s: %w", path, err))
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("failed to parse config file %s: %w", path, err))
	}
	c.ConfigFile = path
	applyVocabularyDefaults(c)
	return nil
}

// Validate checks field constraints
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return errors.Wrap(errors.ConfigInvalid(err.Error()), "configuration validation failed")
	}
	return nil
}

// Fingerprint hashes the settings that change analysis results
func (c *Config) Fingerprint() string {
	data, err := yaml.Marshal(struct {
		Analysis   AnalysisConfig   `yaml:"analysis"`
		Vocabulary VocabularyConfig `yaml:"vocabulary"`
	}{c.Analysis, c.Vocabulary})
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func applyVocabularyDefaults(cfg *Config) {
	if len(cfg.Vocabulary.Financial) == 0 {
		cfg.Vocabulary.Financial = append([]string(nil), DefaultFinancialKeywords...)
	}
	if len(cfg.Vocabulary.Date) == 0 {
		cfg.Vocabulary.Date = append([]string(nil), DefaultDateKeywords...)
	}
	cfg.Vocabulary.Financial = normalizeKeywords(cfg.Vocabulary.Financial)
	cfg.Vocabulary.Date = normalizeKeywords(cfg.Vocabulary.Date)
}

func normalizeKeywords(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}
