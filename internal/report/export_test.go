// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package report_test

import (
	"strings"
	"testing"

	"pheno-scan/internal/eval"
	"pheno-scan/internal/report"

	_ "pheno-scan/internal/report/csv"
	_ "pheno-scan/internal/report/json"
	_ "pheno-scan/internal/report/text"
)

func TestRegistryHoldsAllFormatters(t *testing.T) {
	for _, name := range []string{"text", "json", "csv"} {
		f, ok := report.Get(name)
		if !ok {
			t.Errorf("formatter %q not registered", name)
			continue
		}
		if f.Name() != name {
			t.Errorf("formatter registered under %q reports name %q", name, f.Name())
		}
		if f.FileExtension() == "" || f.Description() == "" {
			t.Errorf("formatter %q missing metadata", name)
		}
	}
	if got := len(report.List()); got < 3 {
		t.Errorf("List returned %d formatters, want at least 3", got)
	}
}

func TestExportDispatches(t *testing.T) {
	rows := []eval.Row{{Label: "stroke", Precision: 0.9, Recall: 0.8, F1: 0.8471, Instances: 10, FalsePositives: 1}}
	out, err := report.Export("csv", rows, report.FormatterOptions{})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if !strings.Contains(out, "stroke") {
		t.Errorf("exported output missing the label: %q", out)
	}
}

func TestExportUnknownFormat(t *testing.T) {
	_, err := report.Export("xml", nil, report.FormatterOptions{})
	if err == nil || !strings.Contains(err.Error(), "unsupported format 'xml'") {
		t.Fatalf("expected an unsupported format error, got %v", err)
	}
}
