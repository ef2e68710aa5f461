// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package csv

import (
	"fmt"
	"strconv"
	"strings"

	"pheno-scan/internal/eval"
	"pheno-scan/internal/report"
	"pheno-scan/internal/report/shared"
)

// Formatter implements CSV output formatting
type Formatter struct{}

// NewFormatter creates a new CSV formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "csv"
}

func (f *Formatter) Description() string {
	return "Comma-separated values for spreadsheet import"
}

func (f *Formatter) FileExtension() string {
	return ".csv"
}

func (f *Formatter) Format(rows []eval.Row, options report.FormatterOptions) (string, error) {
	filtered := shared.FilterRows(rows, options)

	headers := []string{"Label", "Grade", "Precision", "Recall", "F1", "Instances", "False Positives"}
	csvRows := []string{strings.Join(headers, ",")}
	for _, row := range filtered {
		csvRows = append(csvRows, f.createCSVRow(row))
	}
	return strings.Join(csvRows, "\n"), nil
}

// createCSVRow creates a CSV row for a result. Undefined ratios keep their
// -1 sentinel so downstream tooling can filter on it.
func (f *Formatter) createCSVRow(row eval.Row) string {
	fields := []string{
		f.escapeCSVField(row.Label),
		shared.Grade(row.F1),
		strconv.FormatFloat(row.Precision, 'f', 4, 64),
		strconv.FormatFloat(row.Recall, 'f', 4, 64),
		strconv.FormatFloat(row.F1, 'f', 4, 64),
		fmt.Sprintf("%d", row.Instances),
		fmt.Sprintf("%d", row.FalsePositives),
	}
	return strings.Join(fields, ",")
}

// escapeCSVField properly escapes a field for CSV format
func (f *Formatter) escapeCSVField(field string) string {
	if strings.Contains(field, ",") || strings.Contains(field, "\"") || strings.Contains(field, "\n") || strings.Contains(field, "\r") {
		escaped := strings.ReplaceAll(field, "\"", "\"\"")
		return fmt.Sprintf("\"%s\"", escaped)
	}
	return field
}

// Register the formatter during package initialization
func init() {
	report.Register(NewFormatter())
}
