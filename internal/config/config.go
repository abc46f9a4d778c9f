// Package config loads the tool configuration and edit plans, both YAML.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LogConfig holds the rotating-file logging knobs.
type LogConfig struct {
	Directory  string `yaml:"directory"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
	MaxBackups int    `yaml:"maxBackups"`
	Compress   bool   `yaml:"compress"`
}

// ToolConfig is the optional chandbctl configuration file.
type ToolConfig struct {
	OutputDir string    `yaml:"outputDir"`
	AuditLog  string    `yaml:"auditLog"`
	Logs      LogConfig `yaml:"logs"`
}

// LoadToolConfig reads the configuration at path. Relative paths in the
// file resolve against the file's own directory.
func LoadToolConfig(path string) (ToolConfig, error) {
	var cfg ToolConfig
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, err
	}
	baseDir := filepath.Dir(path)
	resolvePath := func(p string) string {
		if p == "" {
			return ""
		}
		if filepath.IsAbs(p) {
			return filepath.Clean(p)
		}
		return filepath.Clean(filepath.Join(baseDir, p))
	}
	cfg.OutputDir = resolvePath(cfg.OutputDir)
	cfg.AuditLog = resolvePath(cfg.AuditLog)
	cfg.Logs.Directory = resolvePath(cfg.Logs.Directory)
	if cfg.Logs.MaxSizeMB <= 0 {
		cfg.Logs.MaxSizeMB = 10
	}
	if cfg.Logs.MaxBackups <= 0 {
		cfg.Logs.MaxBackups = 5
	}
	return cfg, nil
}
