// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package json

import (
	"encoding/json"
	"strings"
	"testing"

	"pheno-scan/internal/eval"
	"pheno-scan/internal/report"
	"pheno-scan/internal/report/shared"
)

func TestFormatRoundTrip(t *testing.T) {
	rows := []eval.Row{
		{Label: "stroke", Precision: 0.9, Recall: 0.75, F1: 0.8182, Instances: 20, FalsePositives: 2},
		{Label: "dysphagia", Precision: -1, Recall: -1, F1: -1, Instances: 0, FalsePositives: 0},
	}
	out, err := NewFormatter().Format(rows, report.FormatterOptions{})
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}

	var decoded shared.JSONReport
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded.Results) != 2 {
		t.Fatalf("decoded %d results, want 2", len(decoded.Results))
	}
	if decoded.Results[0] != rows[0] || decoded.Results[1] != rows[1] {
		t.Errorf("rows did not survive the round trip: %v", decoded.Results)
	}
}

func TestFormatEmpty(t *testing.T) {
	out, err := NewFormatter().Format(nil, report.FormatterOptions{})
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	// an empty report still carries the results key with an empty array
	if !strings.Contains(out, `"results": []`) {
		t.Errorf("empty report = %q", out)
	}
}
