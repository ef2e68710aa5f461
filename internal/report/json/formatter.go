// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package json

import (
	"encoding/json"
	"fmt"

	"pheno-scan/internal/eval"
	"pheno-scan/internal/report"
	"pheno-scan/internal/report/shared"
)

// Formatter implements JSON output formatting
type Formatter struct{}

// NewFormatter creates a new JSON formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "json"
}

func (f *Formatter) Description() string {
	return "Structured JSON output for programmatic consumption"
}

func (f *Formatter) FileExtension() string {
	return ".json"
}

func (f *Formatter) Format(rows []eval.Row, options report.FormatterOptions) (string, error) {
	filtered := shared.FilterRows(rows, options)
	response := shared.JSONReport{Results: make([]eval.Row, 0, len(filtered))}
	response.Results = append(response.Results, filtered...)

	jsonData, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return "", fmt.Errorf("error formatting JSON: %w", err)
	}
	return string(jsonData), nil
}

// Register the formatter during package initialization
func init() {
	report.Register(NewFormatter())
}
