// Package config provides centralized configuration management for loanprep.
// It handles loading configuration from multiple sources, validation, and
// provides a type-safe API for the pipeline entry point.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. CLI overrides passed to Load (highest priority)
//	2. Environment variables (LOANPREP_*)
//	3. YAML configuration file
//	4. Default values (lowest priority)
//
// # Environment Variables
//
// Nested fields join their envconfig keys with underscores:
//
//	LOANPREP_PIPELINE_INPUT_PATH=data/raw/loans.csv
//	LOANPREP_PIPELINE_ENCODER=onehot
//	LOANPREP_PIPELINE_OUTLIERS_ENABLED=false
//	LOANPREP_PIPELINE_TARGET_MAPPING=N:0,Y:1
//	LOANPREP_LOGGING_LEVEL=debug
//
// # Paths
//
// Relative input, output, manifest and metrics paths are resolved against
// Paths.BaseDir, which defaults to the working directory. Nothing in the
// pipeline depends on a particular filesystem layout.
//
// # Usage
//
//	cfg, err := config.Load("configs/loanprep.yaml", func(c *config.Config) {
//	    c.Pipeline.Encoder = config.EncoderOneHot
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
