// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"pheno-scan/internal/paths"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	// Default settings
	Defaults struct {
		Format    string `yaml:"format"`    // report format: text, json or csv
		Reconcile string `yaml:"reconcile"` // candidate set validation reports: mapped, combined or both
		Verbose   bool   `yaml:"verbose"`
		Debug     bool   `yaml:"debug"`
		NoColor   bool   `yaml:"no_color"`
		SkipEmpty bool   `yaml:"skip_empty"`
		Workers   int    `yaml:"workers"`
	} `yaml:"defaults"`

	// Corpus locations and label inventory
	Corpus struct {
		AnnDir             string   `yaml:"ann_dir"`
		GoldDir            string   `yaml:"gold_dir"`
		TestAnnDir         string   `yaml:"test_ann_dir"`
		TestGoldDir        string   `yaml:"test_gold_dir"`
		TestFulltextDir    string   `yaml:"test_fulltext_dir"`
		ConceptMappingFile string   `yaml:"concept_mapping_file"`
		IgnoreMappingFile  string   `yaml:"ignore_mapping_file"`
		LabelsFile         string   `yaml:"labels_file"`
		Labels             []string `yaml:"labels"`
	} `yaml:"corpus"`

	// Classifier learning settings
	Learning struct {
		ModelDir      string `yaml:"model_dir"`
		MinSampleSize int    `yaml:"min_sample_size"`
		Backend       string `yaml:"backend"`
		MaxDimensions []int  `yaml:"max_dimensions"`
		PCAComponents int    `yaml:"pca_components"`
		OneHotLabels  bool   `yaml:"one_hot_labels"`
		VizFile       string `yaml:"viz_file"`
	} `yaml:"learning"`

	// Mapping learning settings
	Mappings struct {
		OutputFile   string `yaml:"output_file"`
		GazetteerDir string `yaml:"gazetteer_dir"`
		GroupName    string `yaml:"group_name"`
	} `yaml:"mappings"`

	// ResultsDB is the SQLite database recording evaluation runs
	ResultsDB string `yaml:"results_db"`
}

// LoadConfig loads configuration from the specified file path
func LoadConfig(configPath string) (*Config, error) {
	// Default configuration
	config := &Config{}

	// Set default values
	config.Defaults.Format = "text"
	config.Defaults.Reconcile = "both"
	config.Defaults.Workers = 10
	config.Learning.MinSampleSize = 25
	config.Learning.Backend = "decision_tree"
	config.Learning.OneHotLabels = true
	config.Mappings.GroupName = "StrokeStudy"

	// If no config file specified, return default config
	if configPath == "" {
		config.Learning.MaxDimensions = []int{30}
		return config, nil
	}

	// Read config file
	cleanPath := filepath.Clean(configPath)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Store default values before unmarshaling
	defaultOneHotLabels := config.Learning.OneHotLabels
	defaultMinSampleSize := config.Learning.MinSampleSize

	// Parse YAML
	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	// Restore defaults if not explicitly set in config file
	// This handles the case where YAML unmarshaling sets fields to their zero
	// value when they're not present in the config file
	if !containsField(data, "learning", "one_hot_labels") {
		config.Learning.OneHotLabels = defaultOneHotLabels
	}
	if !containsField(data, "learning", "min_sample_size") {
		config.Learning.MinSampleSize = defaultMinSampleSize
	}
	if config.Defaults.Workers <= 0 {
		config.Defaults.Workers = 10
	}
	if len(config.Learning.MaxDimensions) == 0 {
		config.Learning.MaxDimensions = []int{30}
	}

	// Normalize path fields for the current platform
	applyPlatformDefaults(config)

	// Validate the configuration
	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// LoadConfigOrDefault loads configuration from configFile, searching standard
// locations when configFile is empty. If loading fails it falls back to the
// default configuration so callers never crash on a missing or bad file.
func LoadConfigOrDefault(configFile string) *Config {
	configPath := configFile
	if configPath == "" {
		configPath = FindConfigFile()
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		cfg, _ = LoadConfig("")
	}
	return cfg
}

// FindConfigFile looks for a configuration file in standard locations using platform-aware paths
func FindConfigFile() string {
	// Check current directory first - prioritize config.yaml
	if fileExists("config.yaml") {
		return "config.yaml"
	}
	if fileExists("pheno-scan.yaml") {
		return "pheno-scan.yaml"
	}
	if fileExists("pheno-scan.yml") {
		return "pheno-scan.yml"
	}

	// Check for .pheno-scan.yaml in current directory (project-specific config)
	if fileExists(".pheno-scan.yaml") {
		return ".pheno-scan.yaml"
	}
	if fileExists(".pheno-scan.yml") {
		return ".pheno-scan.yml"
	}

	// Check standard location using platform-aware paths
	standardConfig := paths.GetConfigFile()
	if fileExists(standardConfig) {
		return standardConfig
	}

	if runtime.GOOS == "windows" {
		return findWindowsConfigFile()
	}
	return findUnixConfigFile()
}

// findWindowsConfigFile looks for configuration files in Windows-specific locations
func findWindowsConfigFile() string {
	if appData := os.Getenv("APPDATA"); appData != "" {
		configFile := filepath.Join(appData, "pheno-scan", "config.yaml")
		if fileExists(configFile) {
			return configFile
		}
	}
	if userProfile := os.Getenv("USERPROFILE"); userProfile != "" {
		configFile := filepath.Join(userProfile, ".pheno-scan", "config.yaml")
		if fileExists(configFile) {
			return configFile
		}
	}
	return ""
}

// findUnixConfigFile looks for configuration files in Unix-specific locations
func findUnixConfigFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeConfig := filepath.Join(home, ".pheno-scan.yaml")
	if fileExists(homeConfig) {
		return homeConfig
	}

	// Check XDG config directory
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	xdgConfigFile := filepath.Join(xdgConfig, "pheno-scan", "config.yaml")
	if fileExists(xdgConfigFile) {
		return xdgConfigFile
	}

	return ""
}

// ResolveLabels returns the configured label inventory: the inline list when
// present, otherwise the non-blank lines of the labels file.
func (c *Config) ResolveLabels() ([]string, error) {
	if len(c.Corpus.Labels) > 0 {
		return c.Corpus.Labels, nil
	}
	if c.Corpus.LabelsFile == "" {
		return nil, fmt.Errorf("no labels configured: set corpus.labels or corpus.labels_file")
	}
	data, err := os.ReadFile(c.Corpus.LabelsFile)
	if err != nil {
		return nil, fmt.Errorf("error reading labels file: %w", err)
	}
	var labels []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		labels = append(labels, line)
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("labels file %s holds no labels", c.Corpus.LabelsFile)
	}
	return labels, nil
}

// ValidateConfig validates the configuration
func ValidateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("configuration cannot be nil")
	}

	switch config.Defaults.Reconcile {
	case "mapped", "combined", "both":
	default:
		return fmt.Errorf("invalid reconcile mode %q: use mapped, combined or both", config.Defaults.Reconcile)
	}

	if config.Learning.MinSampleSize < 0 {
		return fmt.Errorf("min_sample_size cannot be negative")
	}
	if config.Learning.PCAComponents < 0 {
		return fmt.Errorf("pca_components cannot be negative")
	}
	for _, k := range config.Learning.MaxDimensions {
		if k <= 0 {
			return fmt.Errorf("max_dimensions entries must be positive, got %d", k)
		}
	}

	// Validate paths in configuration
	if err := validateConfigPaths(config); err != nil {
		return fmt.Errorf("path validation failed: %w", err)
	}

	return nil
}

// validateConfigPaths validates all paths in the configuration
func validateConfigPaths(config *Config) error {
	fields := []struct {
		name string
		path string
	}{
		{"ann_dir", config.Corpus.AnnDir},
		{"gold_dir", config.Corpus.GoldDir},
		{"test_ann_dir", config.Corpus.TestAnnDir},
		{"test_gold_dir", config.Corpus.TestGoldDir},
		{"test_fulltext_dir", config.Corpus.TestFulltextDir},
		{"concept_mapping_file", config.Corpus.ConceptMappingFile},
		{"ignore_mapping_file", config.Corpus.IgnoreMappingFile},
		{"labels_file", config.Corpus.LabelsFile},
		{"model_dir", config.Learning.ModelDir},
		{"viz_file", config.Learning.VizFile},
		{"mappings output_file", config.Mappings.OutputFile},
		{"gazetteer_dir", config.Mappings.GazetteerDir},
		{"results_db", config.ResultsDB},
	}
	for _, f := range fields {
		if f.path == "" {
			continue
		}
		if err := paths.ValidatePath(f.path); err != nil {
			return fmt.Errorf("invalid %s: %w", f.name, err)
		}
	}
	return nil
}

// applyPlatformDefaults normalizes path fields for the current platform
func applyPlatformDefaults(config *Config) {
	norm := func(p *string) {
		if *p != "" {
			*p = paths.NormalizePath(*p)
		}
	}
	norm(&config.Corpus.AnnDir)
	norm(&config.Corpus.GoldDir)
	norm(&config.Corpus.TestAnnDir)
	norm(&config.Corpus.TestGoldDir)
	norm(&config.Corpus.TestFulltextDir)
	norm(&config.Corpus.ConceptMappingFile)
	norm(&config.Corpus.IgnoreMappingFile)
	norm(&config.Corpus.LabelsFile)
	norm(&config.Learning.ModelDir)
	norm(&config.Learning.VizFile)
	norm(&config.Mappings.OutputFile)
	norm(&config.Mappings.GazetteerDir)
	norm(&config.ResultsDB)
}

// containsField checks if a nested field exists in the YAML data
func containsField(data []byte, path ...string) bool {
	var yamlData map[string]interface{}
	err := yaml.Unmarshal(data, &yamlData)
	if err != nil {
		return false
	}

	current := yamlData
	for i, key := range path {
		if i == len(path)-1 {
			// Last key - check if it exists
			_, exists := current[key]
			return exists
		}
		// Intermediate key - navigate deeper
		if next, ok := current[key].(map[string]interface{}); ok {
			current = next
		} else {
			return false
		}
	}
	return false
}

// fileExists checks if a file exists and is not a directory
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return false
	}
	return info != nil && !info.IsDir()
}
