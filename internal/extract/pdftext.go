// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pheno-scan/internal/observability"
	"pheno-scan/internal/parallel"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFExtractor converts clinical letters to plain text. PDF letters are
// validated before extraction; letters already in plain text pass through
// unchanged.
type PDFExtractor struct {
	pdfConfig *model.Configuration
	observer  *observability.StandardObserver
	maxPages  int
}

// NewPDFExtractor creates a PDF extractor
func NewPDFExtractor(observer *observability.StandardObserver) *PDFExtractor {
	return &PDFExtractor{
		pdfConfig: model.NewDefaultConfiguration(),
		observer:  observer,
		maxPages:  50, // letters are short; cap protects against scanned tomes
	}
}

// ExtractFile converts one letter to a text file in outputDir and returns the
// output path.
func (pe *PDFExtractor) ExtractFile(path, outputDir string) (string, error) {
	base := filepath.Base(path)

	switch strings.ToLower(filepath.Ext(base)) {
	case ".pdf":
		if err := api.ValidateFile(path, pe.pdfConfig); err != nil {
			return "", fmt.Errorf("invalid PDF %s: %w", base, err)
		}
		text, err := pe.extractText(path)
		if err != nil {
			return "", fmt.Errorf("error extracting text from %s: %w", base, err)
		}
		outPath := filepath.Join(outputDir, strings.TrimSuffix(base, filepath.Ext(base))+".txt")
		if err := os.WriteFile(outPath, []byte(text), 0o644); err != nil {
			return "", fmt.Errorf("error writing %s: %w", outPath, err)
		}
		return outPath, nil

	case ".txt":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("error reading %s: %w", base, err)
		}
		outPath := filepath.Join(outputDir, base)
		if err := os.WriteFile(outPath, data, 0o644); err != nil {
			return "", fmt.Errorf("error writing %s: %w", outPath, err)
		}
		return outPath, nil

	default:
		return "", fmt.Errorf("unsupported letter format %q", filepath.Ext(base))
	}
}

// ExtractDir converts every PDF and text letter in inputDir in parallel
func (pe *PDFExtractor) ExtractDir(inputDir, outputDir string, workers int) (map[string]error, *parallel.BatchStats, error) {
	var finishTiming func(bool, map[string]interface{})
	if pe.observer != nil {
		finishTiming = pe.observer.StartTiming("extract", "pdf_batch", inputDir)
	}

	names, err := listFiles(inputDir, ".pdf", ".txt")
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("error creating output directory: %w", err)
	}

	job := &pdfJob{extractor: pe, inputDir: inputDir, outputDir: outputDir}
	failures, stats, err := parallel.NewBatchProcessor(workers, job, pe.observer).ProcessDocuments(names)

	if finishTiming != nil {
		finishTiming(err == nil, map[string]interface{}{
			"files":    len(names),
			"failures": len(failures),
		})
	}
	return failures, stats, err
}

// extractText pulls the page text out of a validated PDF
func (pe *PDFExtractor) extractText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("error opening PDF: %w", err)
	}
	defer f.Close()

	pageCount := r.NumPage()
	if pageCount > pe.maxPages {
		pageCount = pe.maxPages
	}

	var sb strings.Builder
	for i := 1; i <= pageCount; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := pageText(p)
		if err != nil {
			// Keep the readable pages; a bad page should not sink the letter
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(text)
	}

	return cleanText(sb.String()), nil
}

// pageText prefers row-based extraction so reading order survives columns,
// falling back to the plain text stream when row extraction fails.
func pageText(p pdf.Page) (string, error) {
	rows, err := p.GetTextByRow()
	if err != nil || len(rows) == 0 {
		return p.GetPlainText(nil)
	}

	var sb strings.Builder
	for _, row := range rows {
		if row == nil || len(row.Content) == 0 {
			continue
		}
		line := reconstructRow(row.Content)
		if strings.TrimSpace(line) == "" {
			continue
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// reconstructRow joins the text elements of one row, inserting a space only
// when the horizontal gap between adjacent elements is wide enough to mean a
// word boundary rather than a split glyph run.
func reconstructRow(elements []pdf.Text) string {
	var sb strings.Builder
	for i, element := range elements {
		sb.WriteString(element.S)

		if i < len(elements)-1 {
			gap := elements[i+1].X - (element.X + element.W)

			fontSize := element.FontSize
			if fontSize <= 0 {
				fontSize = 12
			}
			if gap > fontSize*0.2 {
				sb.WriteString(" ")
			}
		}
	}
	return sb.String()
}

// cleanText trims lines, drops empties and collapses repeated spaces while
// keeping line structure intact
func cleanText(text string) string {
	var cleaned []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.ReplaceAll(line, "\t", " ")
		for strings.Contains(line, "  ") {
			line = strings.ReplaceAll(line, "  ", " ")
		}
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}

// pdfJob adapts the extractor to the worker pool
type pdfJob struct {
	extractor *PDFExtractor
	inputDir  string
	outputDir string
}

func (j *pdfJob) ProcessDocument(ctx context.Context, key string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if _, err := j.extractor.ExtractFile(filepath.Join(j.inputDir, key), j.outputDir); err != nil {
		return 0, err
	}
	return 1, nil
}
