// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package shared

import (
	"strconv"

	"pheno-scan/internal/eval"
	"pheno-scan/internal/report"
)

// JSONReport represents the top-level response structure for JSON output
type JSONReport struct {
	Results []eval.Row `json:"results"`
}

// FilterRows drops empty labels when the options ask for it. A label is
// empty when it has no gold instances and produced no false positives.
func FilterRows(rows []eval.Row, options report.FormatterOptions) []eval.Row {
	if !options.SkipEmpty {
		return rows
	}
	var filtered []eval.Row
	for _, row := range rows {
		if row.Instances == 0 && row.FalsePositives == 0 {
			continue
		}
		filtered = append(filtered, row)
	}
	return filtered
}

// Grade bands an F1 score into a report grade. Scores are -1 when
// undefined, which grades as N/A.
func Grade(f1 float64) string {
	switch {
	case f1 >= 0.8:
		return "GOOD"
	case f1 >= 0.5:
		return "FAIR"
	case f1 >= 0:
		return "POOR"
	default:
		return "N/A"
	}
}

// Score renders a ratio for display. Undefined ratios carry the -1
// sentinel and render as a dash.
func Score(v float64) string {
	if v == -1 {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}
