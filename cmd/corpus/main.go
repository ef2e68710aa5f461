// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"flag"
	"fmt"
	"os"

	"pheno-scan/internal/config"
	"pheno-scan/internal/extract"
	"pheno-scan/internal/observability"
	"pheno-scan/internal/parallel"
)

func main() {
	var (
		action     = flag.String("action", "", "Action to perform: fulltext, pdf, split-dump")
		configFile = flag.String("config", "", "Path to configuration file (YAML)")
		inputDir   = flag.String("input", "", "Input directory (defaults come from the configuration)")
		outputDir  = flag.String("output", "", "Output directory")
		workers    = flag.Int("workers", 0, "Worker count for batch actions (0 uses the configured value)")
		debug      = flag.Bool("debug", false, "Enable debug logging")
	)
	flag.Parse()

	if *action == "" {
		fmt.Println("Error: --action is required")
		fmt.Println("Usage: pheno-corpus --action <fulltext|pdf|split-dump> [options]")
		os.Exit(1)
	}

	cfg := config.LoadConfigOrDefault(*configFile)
	if *workers <= 0 {
		*workers = cfg.Defaults.Workers
	}

	var observer *observability.StandardObserver
	if *debug {
		observer = observability.NewStandardObserver(observability.ObservabilityDebug, os.Stderr)
		observer.DebugObserver = observability.NewDebugObserver(os.Stderr)
	}

	switch *action {
	case "fulltext":
		in := firstNonEmpty(*inputDir, cfg.Corpus.TestGoldDir)
		out := firstNonEmpty(*outputDir, cfg.Corpus.TestFulltextDir)
		requireDirs(in, out)
		extractor := extract.NewFullTextExtractor(observer)
		failures, stats, err := extractor.ExtractDir(in, out, *workers)
		reportBatch("full texts", failures, stats, err)
	case "pdf":
		in, out := *inputDir, *outputDir
		requireDirs(in, out)
		extractor := extract.NewPDFExtractor(observer)
		failures, stats, err := extractor.ExtractDir(in, out, *workers)
		reportBatch("letters", failures, stats, err)
	case "split-dump":
		in, out := *inputDir, *outputDir
		requireDirs(in, out)
		count, err := extract.SplitDumpDir(in, out)
		if err != nil {
			fmt.Printf("Error splitting dump: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Split %d documents into %s\n", count, out)
	default:
		fmt.Printf("Error: Unknown action '%s'\n", *action)
		fmt.Println("Valid actions: fulltext, pdf, split-dump")
		os.Exit(1)
	}
}

func requireDirs(in, out string) {
	if in == "" || out == "" {
		fmt.Println("Error: --input and --output directories are required")
		os.Exit(1)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// reportBatch prints the outcome of one batch extraction run
func reportBatch(what string, failures map[string]error, stats *parallel.BatchStats, err error) {
	if err != nil {
		fmt.Printf("Error extracting %s: %v\n", what, err)
		os.Exit(1)
	}

	fmt.Printf("Processed %d of %d %s with %d workers in %s\n",
		stats.ProcessedDocuments, stats.TotalDocuments, what, stats.WorkerCount, stats.TotalDuration)
	if len(failures) > 0 {
		fmt.Printf("%d files failed:\n", len(failures))
		for path, ferr := range failures {
			fmt.Printf("  %s: %v\n", path, ferr)
		}
		os.Exit(1)
	}
}
