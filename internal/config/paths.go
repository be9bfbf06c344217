package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// resolvePaths anchors every relative pipeline path at Paths.BaseDir
func (c *Config) resolvePaths() error {
	base := c.Paths.BaseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		base = wd
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return fmt.Errorf("failed to resolve base dir %s: %w", base, err)
	}
	c.Paths.BaseDir = abs

	c.Pipeline.InputPath = c.ResolvePath(c.Pipeline.InputPath)
	c.Pipeline.OutputPath = c.ResolvePath(c.Pipeline.OutputPath)
	c.Pipeline.ManifestPath = c.ResolvePath(c.Pipeline.ManifestPath)
	c.Telemetry.MetricsFile = c.ResolvePath(c.Telemetry.MetricsFile)
	return nil
}

// ResolvePath returns p unchanged when it is empty or absolute, otherwise p
// joined onto the base directory
func (c *Config) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Paths.BaseDir, p)
}

// DefaultManifestPath derives the run manifest location from the output
// path: data/out.csv -> data/out.manifest.json
func DefaultManifestPath(outputPath string) string {
	ext := filepath.Ext(outputPath)
	return outputPath[:len(outputPath)-len(ext)] + ".manifest.json"
}
