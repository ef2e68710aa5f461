// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package extract prepares corpus directories for annotation: it recovers
// plain text from gold-standard XML, converts PDF letters to text and splits
// bulk annotation dumps into per-document files.
package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"pheno-scan/internal/gold"
	"pheno-scan/internal/observability"
	"pheno-scan/internal/parallel"
)

// FullTextExtractor recovers the reconstructed text of gold-standard
// documents so the annotation engine can run over the same character offsets
// the annotators saw.
type FullTextExtractor struct {
	observer *observability.StandardObserver
}

// NewFullTextExtractor creates a full-text extractor
func NewFullTextExtractor(observer *observability.StandardObserver) *FullTextExtractor {
	return &FullTextExtractor{observer: observer}
}

// TextFileName maps a gold annotation file name to its text file name.
// Annotation files follow the "<stem>-ann.xml" convention; anything else
// has its extension swapped for .txt.
func TextFileName(annName string) string {
	if strings.HasSuffix(annName, "-ann.xml") {
		return strings.TrimSuffix(annName, "-ann.xml") + ".txt"
	}
	return strings.TrimSuffix(annName, filepath.Ext(annName)) + ".txt"
}

// ExtractFile recovers the text of a single gold XML file and writes it into
// outputDir. It returns the path of the written text file.
func (fe *FullTextExtractor) ExtractFile(xmlPath, outputDir string) (string, error) {
	doc, err := gold.Load(xmlPath)
	if err != nil {
		return "", fmt.Errorf("error loading %s: %w", filepath.Base(xmlPath), err)
	}

	outPath := filepath.Join(outputDir, TextFileName(filepath.Base(xmlPath)))
	if err := os.WriteFile(outPath, []byte(doc.FullText()), 0o644); err != nil {
		return "", fmt.Errorf("error writing %s: %w", outPath, err)
	}

	if fe.observer != nil {
		fe.observer.Detail("extract", fmt.Sprintf("%s processed to be %s", filepath.Base(xmlPath), filepath.Base(outPath)))
	}
	return outPath, nil
}

// ExtractDir recovers text for every XML file in goldDir in parallel and
// writes the results into outputDir. Per-file failures are collected without
// aborting the batch.
func (fe *FullTextExtractor) ExtractDir(goldDir, outputDir string, workers int) (map[string]error, *parallel.BatchStats, error) {
	var finishTiming func(bool, map[string]interface{})
	if fe.observer != nil {
		finishTiming = fe.observer.StartTiming("extract", "full_text_batch", goldDir)
	}

	names, err := listFiles(goldDir, ".xml")
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("error creating output directory: %w", err)
	}

	job := &fullTextJob{extractor: fe, goldDir: goldDir, outputDir: outputDir}
	failures, stats, err := parallel.NewBatchProcessor(workers, job, fe.observer).ProcessDocuments(names)

	if finishTiming != nil {
		finishTiming(err == nil, map[string]interface{}{
			"files":    len(names),
			"failures": len(failures),
		})
	}
	return failures, stats, err
}

// fullTextJob adapts the extractor to the worker pool
type fullTextJob struct {
	extractor *FullTextExtractor
	goldDir   string
	outputDir string
}

func (j *fullTextJob) ProcessDocument(ctx context.Context, key string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if _, err := j.extractor.ExtractFile(filepath.Join(j.goldDir, key), j.outputDir); err != nil {
		return 0, err
	}
	return 1, nil
}

// listFiles lists regular files in dir, filtered by extension when exts are
// given, sorted by name for deterministic batches.
func listFiles(dir string, exts ...string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("error reading directory %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if len(exts) > 0 {
			matched := false
			for _, x := range exts {
				if strings.EqualFold(filepath.Ext(e.Name()), x) {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}
