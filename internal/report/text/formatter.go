// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package text

import (
	"fmt"
	"strings"

	"pheno-scan/internal/eval"
	"pheno-scan/internal/report"
	"pheno-scan/internal/report/shared"

	"github.com/fatih/color"
)

// Formatter implements text-based output formatting
type Formatter struct {
	colors map[string]*color.Color
}

// NewFormatter creates a new text formatter
func NewFormatter() *Formatter {
	return &Formatter{
		colors: map[string]*color.Color{
			"green":  color.New(color.FgGreen),
			"yellow": color.New(color.FgYellow),
			"red":    color.New(color.FgRed),
			"cyan":   color.New(color.FgCyan),
			"blue":   color.New(color.FgBlue),
			"white":  color.New(color.FgWhite, color.Bold),
		},
	}
}

func (f *Formatter) Name() string {
	return "text"
}

func (f *Formatter) Description() string {
	return "Human-readable performance table with grades and colors"
}

func (f *Formatter) FileExtension() string {
	return ".txt"
}

func (f *Formatter) Format(rows []eval.Row, options report.FormatterOptions) (string, error) {
	// Disable colors if requested
	if options.NoColor {
		color.NoColor = true
	}

	filtered := shared.FilterRows(rows, options)
	if len(filtered) == 0 {
		return "No results.", nil
	}

	var builder strings.Builder
	labelWidth := f.calculateLabelColumnWidth(filtered)

	f.appendHeader(&builder, labelWidth, options)
	for _, row := range filtered {
		f.appendRow(&builder, row, labelWidth, options)
	}
	return builder.String(), nil
}

// appendHeader adds column headers and a separator to the string builder
func (f *Formatter) appendHeader(builder *strings.Builder, labelWidth int, options report.FormatterOptions) {
	headerStr := fmt.Sprintf("%-8s %-*s %9s %9s %9s %7s %6s\n",
		"GRADE", labelWidth, "LABEL", "PRECISION", "RECALL", "F1", "INSTS", "FP")
	if !options.NoColor {
		headerStr = f.colors["white"].Sprintf("%-8s %-*s %9s %9s %9s %7s %6s\n",
			"GRADE", labelWidth, "LABEL", "PRECISION", "RECALL", "F1", "INSTS", "FP")
	}
	builder.WriteString(headerStr)

	totalWidth := 8 + 1 + labelWidth + 1 + 9 + 1 + 9 + 1 + 9 + 1 + 7 + 1 + 6
	separator := strings.Repeat("-", totalWidth) + "\n"
	if !options.NoColor {
		separator = f.colors["white"].Sprint(strings.Repeat("-", totalWidth) + "\n")
	}
	builder.WriteString(separator)
}

// appendRow adds a single result line to the string builder
func (f *Formatter) appendRow(builder *strings.Builder, row eval.Row, labelWidth int, options report.FormatterOptions) {
	grade := shared.Grade(row.F1)
	gradeColor := f.gradeColor(grade)

	gradeStr := fmt.Sprintf("[%-6s]", grade)
	if !options.NoColor {
		gradeStr = gradeColor.Sprintf("[%-6s]", grade)
	}

	label := row.Label
	if len([]rune(label)) > labelWidth {
		label = string([]rune(label)[:labelWidth-3]) + "..."
	}
	labelStr := fmt.Sprintf("%-*s", labelWidth, label)
	if !options.NoColor {
		labelStr = f.colors["cyan"].Sprintf("%-*s", labelWidth, label)
	}

	precisionStr := fmt.Sprintf("%9s", shared.Score(row.Precision))
	recallStr := fmt.Sprintf("%9s", shared.Score(row.Recall))
	f1Str := fmt.Sprintf("%9s", shared.Score(row.F1))
	if !options.NoColor {
		precisionStr = f.colors["blue"].Sprintf("%9s", shared.Score(row.Precision))
		recallStr = f.colors["blue"].Sprintf("%9s", shared.Score(row.Recall))
		f1Str = gradeColor.Sprintf("%9s", shared.Score(row.F1))
	}

	instStr := fmt.Sprintf("%7d", row.Instances)
	fpStr := fmt.Sprintf("%6d", row.FalsePositives)
	if !options.NoColor {
		instStr = f.colors["white"].Sprintf("%7d", row.Instances)
		fpStr = f.colors["white"].Sprintf("%6d", row.FalsePositives)
	}

	fmt.Fprintf(builder, "%s %s %s %s %s %s %s\n",
		gradeStr, labelStr, precisionStr, recallStr, f1Str, instStr, fpStr)
}

// calculateLabelColumnWidth calculates the optimal width for the label column
func (f *Formatter) calculateLabelColumnWidth(rows []eval.Row) int {
	maxWidth := 10
	for _, row := range rows {
		runeCount := len([]rune(row.Label))
		if runeCount > maxWidth {
			maxWidth = runeCount
		}
	}
	// Cap at 40 characters for readability
	if maxWidth > 40 {
		maxWidth = 40
	}
	return maxWidth
}

// gradeColor returns the display color for a report grade
func (f *Formatter) gradeColor(grade string) *color.Color {
	switch grade {
	case "GOOD":
		return f.colors["green"]
	case "FAIR":
		return f.colors["yellow"]
	case "POOR":
		return f.colors["red"]
	default:
		return f.colors["white"]
	}
}

// Register the formatter during package initialization
func init() {
	report.Register(NewFormatter())
}
