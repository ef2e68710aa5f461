// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package csv

import (
	"strings"
	"testing"

	"pheno-scan/internal/eval"
	"pheno-scan/internal/report"
)

func TestFormat(t *testing.T) {
	rows := []eval.Row{
		{Label: "stroke", Precision: 0.9, Recall: 0.75, F1: 0.8182, Instances: 20, FalsePositives: 2},
		{Label: "dysphagia", Precision: -1, Recall: -1, F1: -1, Instances: 0, FalsePositives: 0},
	}
	out, err := NewFormatter().Format(rows, report.FormatterOptions{})
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}

	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header plus 2 rows:\n%s", len(lines), out)
	}
	if lines[0] != "Label,Grade,Precision,Recall,F1,Instances,False Positives" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "stroke,GOOD,0.9000,0.7500,0.8182,20,2" {
		t.Errorf("row = %q", lines[1])
	}
	// undefined ratios keep the numeric sentinel for downstream filtering
	if lines[2] != "dysphagia,N/A,-1.0000,-1.0000,-1.0000,0,0" {
		t.Errorf("row = %q", lines[2])
	}
}

func TestEscapeCSVField(t *testing.T) {
	f := NewFormatter()
	if got := f.escapeCSVField("plain"); got != "plain" {
		t.Errorf("escapeCSVField(plain) = %q", got)
	}
	if got := f.escapeCSVField(`stroke, acute`); got != `"stroke, acute"` {
		t.Errorf("escapeCSVField with comma = %q", got)
	}
	if got := f.escapeCSVField(`say "hi"`); got != `"say ""hi"""` {
		t.Errorf("escapeCSVField with quotes = %q", got)
	}
}
