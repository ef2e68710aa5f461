// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package shared

import (
	"testing"

	"pheno-scan/internal/eval"
	"pheno-scan/internal/report"
)

func TestGrade(t *testing.T) {
	tests := []struct {
		f1   float64
		want string
	}{
		{0.95, "GOOD"},
		{0.8, "GOOD"},
		{0.79, "FAIR"},
		{0.5, "FAIR"},
		{0.1, "POOR"},
		{0, "POOR"},
		{-1, "N/A"},
	}
	for _, tt := range tests {
		if got := Grade(tt.f1); got != tt.want {
			t.Errorf("Grade(%v) = %q, want %q", tt.f1, got, tt.want)
		}
	}
}

func TestScore(t *testing.T) {
	if got := Score(0.8571); got != "0.8571" {
		t.Errorf("Score(0.8571) = %q", got)
	}
	if got := Score(-1); got != "-" {
		t.Errorf("Score(-1) = %q, want -", got)
	}
}

func TestFilterRows(t *testing.T) {
	rows := []eval.Row{
		{Label: "stroke", Instances: 4, FalsePositives: 1},
		{Label: "quiet", Instances: 0, FalsePositives: 0},
		{Label: "noisy", Instances: 0, FalsePositives: 2},
	}
	kept := FilterRows(rows, report.FormatterOptions{SkipEmpty: true})
	if len(kept) != 2 || kept[0].Label != "stroke" || kept[1].Label != "noisy" {
		t.Errorf("FilterRows kept %v", kept)
	}
	all := FilterRows(rows, report.FormatterOptions{})
	if len(all) != 3 {
		t.Errorf("FilterRows without SkipEmpty kept %d rows", len(all))
	}
}
