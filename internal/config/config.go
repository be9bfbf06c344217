package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "loanprep/internal/errors"
)

// EnvPrefix namespaces every environment variable read by Load
const EnvPrefix = "LOANPREP"

// Categorical encoding policies
const (
	EncoderOrdinal = "ordinal"
	EncoderOneHot  = "onehot"
)

// Config represents the complete application configuration
type Config struct {
	Pipeline  PipelineConfig  `yaml:"pipeline" envconfig:"PIPELINE"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
}

// PipelineConfig describes one cleaning run: where the data lives, which
// role every column plays and which optional policies are active.
type PipelineConfig struct {
	InputPath    string `yaml:"input_path" envconfig:"INPUT_PATH" validate:"required"`
	OutputPath   string `yaml:"output_path" envconfig:"OUTPUT_PATH" validate:"required"`
	ManifestPath string `yaml:"manifest_path" envconfig:"MANIFEST_PATH"`

	IDColumn           string             `yaml:"id_column" envconfig:"ID_COLUMN"`
	TargetColumn       string             `yaml:"target_column" envconfig:"TARGET_COLUMN" validate:"required"`
	TargetMapping      map[string]float64 `yaml:"target_mapping" envconfig:"TARGET_MAPPING" validate:"required,min=1"`
	CategoricalColumns []string           `yaml:"categorical_columns" envconfig:"CATEGORICAL_COLUMNS" validate:"dive,required"`
	NumericColumns     []string           `yaml:"numeric_columns" envconfig:"NUMERIC_COLUMNS" validate:"dive,required"`

	Encoder  string        `yaml:"encoder" envconfig:"ENCODER" validate:"oneof=ordinal onehot"`
	Outliers OutlierConfig `yaml:"outliers" envconfig:"OUTLIERS"`
}

// OutlierConfig controls the optional IQR clipping step
type OutlierConfig struct {
	Enabled bool     `yaml:"enabled" envconfig:"ENABLED"`
	Columns []string `yaml:"columns" envconfig:"COLUMNS" validate:"dive,required"`
	Factor  float64  `yaml:"factor" envconfig:"FACTOR" validate:"gt=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// TelemetryConfig selects the OpenTelemetry exporters
type TelemetryConfig struct {
	ServiceName    string  `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=none stdout"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER" validate:"oneof=none prometheus"`
	MetricsFile    string  `yaml:"metrics_file" envconfig:"METRICS_FILE"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"gte=0,lte=1"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	// BaseDir anchors relative input, output and manifest paths. Empty means
	// the current working directory.
	BaseDir string `yaml:"base_dir" envconfig:"BASE_DIR"`
}

// Load builds the configuration from defaults, an optional YAML file and
// LOANPREP_* environment variables, in increasing order of precedence.
// Overrides run last (CLI flags), then paths are resolved and the result is
// validated. An explicit configFile that does not exist is an error; an
// empty configFile falls back to the well-known locations.
func Load(configFile string, overrides ...func(*Config)) (*Config, error) {
	cfg := Default()

	if configFile == "" {
		configFile = getConfigFilePath()
	} else if _, err := os.Stat(configFile); err != nil {
		return nil, apperrors.NewConfigError(fmt.Sprintf("config file %s not readable", configFile), err)
	}

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to load config from file", err).
				WithContext("file", configFile)
		}
	}

	// Fields without a matching variable keep their current value
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	for _, override := range overrides {
		override(cfg)
	}

	if err := cfg.resolvePaths(); err != nil {
		return nil, apperrors.NewConfigError("failed to resolve paths", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile overlays YAML settings onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	// yaml.v2 merges into non-nil maps; a mapping in the file replaces the default
	defaultMapping := cfg.Pipeline.TargetMapping
	cfg.Pipeline.TargetMapping = nil
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return err
	}
	if cfg.Pipeline.TargetMapping == nil {
		cfg.Pipeline.TargetMapping = defaultMapping
	}
	return nil
}

var validate = validator.New()

// Validate checks field constraints and column role consistency
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", fe.Namespace(), fe.Tag()))
			}
			return apperrors.NewConfigError("config validation failed: "+strings.Join(msgs, "; "), err)
		}
		return apperrors.NewConfigError("config validation failed", err)
	}

	p := c.Pipeline
	roles := make(map[string]string)
	assign := func(role string, cols ...string) error {
		for _, col := range cols {
			if prev, ok := roles[col]; ok {
				return apperrors.NewConfigError(
					fmt.Sprintf("column %q configured as both %s and %s", col, prev, role), nil)
			}
			roles[col] = role
		}
		return nil
	}
	if p.IDColumn != "" {
		if err := assign("identifier", p.IDColumn); err != nil {
			return err
		}
	}
	if err := assign("target", p.TargetColumn); err != nil {
		return err
	}
	if err := assign("categorical", p.CategoricalColumns...); err != nil {
		return err
	}
	if err := assign("numeric", p.NumericColumns...); err != nil {
		return err
	}

	for _, col := range p.Outliers.Columns {
		if roles[col] != "numeric" {
			return apperrors.NewConfigError(
				fmt.Sprintf("outlier column %q is not a numeric column", col), nil)
		}
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"loanprep.yaml",
		"configs/loanprep.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns the configuration for the loan prediction dataset
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			InputPath:    "data/raw/loan_prediction.csv",
			OutputPath:   "data/processed/loan_prediction_preprocessed.csv",
			IDColumn:     "Loan_ID",
			TargetColumn: "Loan_Status",
			TargetMapping: map[string]float64{
				"N": 0,
				"Y": 1,
			},
			CategoricalColumns: []string{
				"Gender", "Married", "Dependents",
				"Education", "Self_Employed", "Property_Area",
			},
			NumericColumns: []string{
				"ApplicantIncome", "CoapplicantIncome",
				"LoanAmount", "Loan_Amount_Term", "Credit_History",
			},
			Encoder: EncoderOrdinal,
			Outliers: OutlierConfig{
				Enabled: true,
				Columns: []string{"ApplicantIncome", "CoapplicantIncome", "LoanAmount"},
				Factor:  1.5,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/loanprep.log",
		},
		Telemetry: TelemetryConfig{
			ServiceName:    AppName,
			TraceExporter:  "none",
			MetricExporter: "none",
			SampleRatio:    1.0,
		},
	}
}
