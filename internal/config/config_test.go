// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigOrDefault_NoFile(t *testing.T) {
	// With no config file, should return defaults without error
	cfg := LoadConfigOrDefault("")
	if cfg == nil {
		t.Fatal("expected non-nil config")
	}
	if cfg.Defaults.Format == "" {
		t.Error("expected default format to be set")
	}
}

func TestLoadConfigOrDefault_NonexistentFile(t *testing.T) {
	// A path that doesn't exist should fall back to defaults
	cfg := LoadConfigOrDefault("/nonexistent/path/config.yaml")
	if cfg == nil {
		t.Fatal("expected non-nil config (fallback to defaults)")
	}
}

func TestLoadConfigOrDefault_ValidFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")

	content := `
defaults:
  format: json
  reconcile: mapped
corpus:
  ann_dir: /data/train/ann
  gold_dir: /data/train/gold
  labels:
    - stroke
    - dysphagia
learning:
  model_dir: /data/models
  backend: random_forest
  max_dimensions: [10, 20, 30]
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := LoadConfigOrDefault(configPath)
	if cfg == nil {
		t.Fatal("expected non-nil config")
	}
	if cfg.Defaults.Format != "json" {
		t.Errorf("expected format=json, got %q", cfg.Defaults.Format)
	}
	if cfg.Defaults.Reconcile != "mapped" {
		t.Errorf("expected reconcile=mapped, got %q", cfg.Defaults.Reconcile)
	}
	if cfg.Corpus.AnnDir != "/data/train/ann" {
		t.Errorf("expected ann_dir=/data/train/ann, got %q", cfg.Corpus.AnnDir)
	}
	if cfg.Learning.Backend != "random_forest" {
		t.Errorf("expected backend=random_forest, got %q", cfg.Learning.Backend)
	}
	if len(cfg.Learning.MaxDimensions) != 3 || cfg.Learning.MaxDimensions[1] != 20 {
		t.Errorf("expected max_dimensions=[10 20 30], got %v", cfg.Learning.MaxDimensions)
	}
}

func TestLoadConfigOrDefault_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "bad.yaml")

	if err := os.WriteFile(configPath, []byte(":::invalid yaml:::"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Should fall back to defaults, not panic
	cfg := LoadConfigOrDefault(configPath)
	if cfg == nil {
		t.Fatal("expected non-nil config (fallback to defaults on parse error)")
	}
	if cfg.Defaults.Format != "text" {
		t.Errorf("expected fallback format=text, got %q", cfg.Defaults.Format)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Defaults.Format != "text" {
		t.Errorf("expected default format=text, got %q", cfg.Defaults.Format)
	}
	if cfg.Defaults.Reconcile != "both" {
		t.Errorf("expected default reconcile=both, got %q", cfg.Defaults.Reconcile)
	}
	if cfg.Defaults.Workers != 10 {
		t.Errorf("expected default workers=10, got %d", cfg.Defaults.Workers)
	}
	if cfg.Learning.MinSampleSize != 25 {
		t.Errorf("expected default min_sample_size=25, got %d", cfg.Learning.MinSampleSize)
	}
	if cfg.Learning.Backend != "decision_tree" {
		t.Errorf("expected default backend=decision_tree, got %q", cfg.Learning.Backend)
	}
	if !cfg.Learning.OneHotLabels {
		t.Error("expected one_hot_labels=true by default")
	}
	if len(cfg.Learning.MaxDimensions) != 1 || cfg.Learning.MaxDimensions[0] != 30 {
		t.Errorf("expected default max_dimensions=[30], got %v", cfg.Learning.MaxDimensions)
	}
	if cfg.Mappings.GroupName != "StrokeStudy" {
		t.Errorf("expected default group_name=StrokeStudy, got %q", cfg.Mappings.GroupName)
	}
}

func TestLoadConfig_DefaultsPreservedWhenUnset(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")

	// A file that mentions learning but not one_hot_labels or min_sample_size
	content := `
learning:
  model_dir: /data/models
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Learning.OneHotLabels {
		t.Error("expected one_hot_labels to keep its true default when absent from file")
	}
	if cfg.Learning.MinSampleSize != 25 {
		t.Errorf("expected min_sample_size to keep its default 25, got %d", cfg.Learning.MinSampleSize)
	}
}

func TestLoadConfig_ExplicitZeroValuesSurvive(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")

	content := `
learning:
  one_hot_labels: false
  min_sample_size: 0
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Learning.OneHotLabels {
		t.Error("expected explicit one_hot_labels=false to survive loading")
	}
	if cfg.Learning.MinSampleSize != 0 {
		t.Errorf("expected explicit min_sample_size=0 to survive, got %d", cfg.Learning.MinSampleSize)
	}
}

func TestLoadConfig_InvalidReconcile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")

	content := `
defaults:
  reconcile: sideways
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if _, err := LoadConfig(configPath); err == nil {
		t.Error("expected error for invalid reconcile mode")
	}
}

func TestResolveLabels_Inline(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg.Corpus.Labels = []string{"stroke", "dysphagia"}

	labels, err := cfg.ResolveLabels()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(labels) != 2 || labels[0] != "stroke" {
		t.Errorf("expected inline labels [stroke dysphagia], got %v", labels)
	}
}

func TestResolveLabels_File(t *testing.T) {
	dir := t.TempDir()
	labelsPath := filepath.Join(dir, "labels.txt")
	content := "stroke\n\n# comment line\ndysphagia\nseizure\n"
	if err := os.WriteFile(labelsPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write labels file: %v", err)
	}

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg.Corpus.LabelsFile = labelsPath

	labels, err := cfg.ResolveLabels()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(labels) != 3 {
		t.Fatalf("expected 3 labels, got %v", labels)
	}
	if labels[1] != "dysphagia" {
		t.Errorf("expected second label dysphagia, got %q", labels[1])
	}
}

func TestResolveLabels_NoneConfigured(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := cfg.ResolveLabels(); err == nil {
		t.Error("expected error when no labels are configured")
	}
}
