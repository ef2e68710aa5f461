// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"pheno-scan/internal/config"
	"pheno-scan/internal/eval"
	"pheno-scan/internal/observability"
	"pheno-scan/internal/pipeline"
	"pheno-scan/internal/version"

	"pheno-scan/internal/report"
	_ "pheno-scan/internal/report/csv"
	_ "pheno-scan/internal/report/json"
	_ "pheno-scan/internal/report/text"

	"golang.org/x/term"
)

const usageText = `pheno-scan reconciles automated clinical annotations with gold-standard
annotations, learns concept mappings and trains per-label phenotype models.

Usage: pheno-scan [flags] <mode>

Modes:
  validate    reconcile the labelled corpus against its gold standard
  mappings    learn concept mapping candidates and gazetteer lists
  train       fit a classifier for every configured label
  predict     score the held-out corpus with trained classifiers
  experiment  train and score across the configured dimension grid
  runs        list recorded evaluation runs (-run-id and -label drill in)

Flags:
`

// loadConfiguration loads the configuration file or returns default config
func loadConfiguration(configFile string) *config.Config {
	// If config file is not specified, try to find one in standard locations
	configPath := configFile
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	// Load configuration (will use defaults if file not found)
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Error loading config file: %v\n", err)
		fmt.Fprintf(os.Stderr, "Using default configuration\n")
		cfg, _ = config.LoadConfig("") // Load default config
	}
	return cfg
}

// configFlags holds command line flag values
type configFlags struct {
	format    string
	reconcile string
	verbose   bool
	debug     bool
	noColor   bool
	skipEmpty bool
}

// finalConfiguration holds resolved configuration values
type finalConfiguration struct {
	format    string
	reconcile string
	verbose   bool
	debug     bool
	noColor   bool
	skipEmpty bool
}

// resolveConfiguration resolves final configuration values from the config
// file and command line flags
func resolveConfiguration(cfg *config.Config, flags *configFlags) *finalConfiguration {
	final := &finalConfiguration{}

	// Format
	final.format = "text" // default fallback
	if cfg != nil && cfg.Defaults.Format != "" {
		final.format = cfg.Defaults.Format
	}
	if isFlagSet("format") && flags.format != "" {
		final.format = flags.format
	}

	// Reconcile
	final.reconcile = "both" // default fallback
	if cfg != nil && cfg.Defaults.Reconcile != "" {
		final.reconcile = cfg.Defaults.Reconcile
	}
	if isFlagSet("reconcile") && flags.reconcile != "" {
		final.reconcile = flags.reconcile
	}

	// Verbose
	final.verbose = false // default fallback
	if cfg != nil {
		final.verbose = cfg.Defaults.Verbose
	}
	if isFlagSet("verbose") {
		final.verbose = flags.verbose
	}

	// Debug
	final.debug = false // default fallback
	if cfg != nil {
		final.debug = cfg.Defaults.Debug
	}
	if isFlagSet("debug") {
		final.debug = flags.debug
	}

	// No color
	final.noColor = false // default fallback
	if cfg != nil {
		final.noColor = cfg.Defaults.NoColor
	}
	if isFlagSet("no-color") {
		final.noColor = flags.noColor
	}

	// Skip empty rows
	final.skipEmpty = false // default fallback
	if cfg != nil {
		final.skipEmpty = cfg.Defaults.SkipEmpty
	}
	if isFlagSet("skip-empty") {
		final.skipEmpty = flags.skipEmpty
	}

	return final
}

func main() {
	configFile := flag.String("config", "", "Path to configuration file (YAML)")
	outputFormat := flag.String("format", "", "Output format: text, json, csv (default: text)")
	outputFile := flag.String("output", "", "Path to output file (if not specified, output to stdout)")
	reconcile := flag.String("reconcile", "", "Candidate sets scored in validate mode: mapped, combined, or both")
	labelList := flag.String("labels", "", "Comma-separated target labels (overrides configuration)")
	comment := flag.String("comment", "", "Comment recorded with runs saved to the results database")
	runID := flag.String("run-id", "", "Show the recorded rows of one run (runs mode)")
	labelHistory := flag.String("label", "", "Show one label's recorded rows across runs (runs mode)")
	verbose := flag.Bool("verbose", false, "Display detailed information for each operation")
	debug := flag.Bool("debug", false, "Enable debug logging to show document-level reconciliation flow")
	noColor := flag.Bool("no-color", false, "Disable colored output")
	skipEmpty := flag.Bool("skip-empty", false, "Drop labels with no gold instances and no detections from reports")
	showHelp := flag.Bool("help", false, "Show help information")
	showVersion := flag.Bool("version", false, "Show version information")

	flag.Usage = printUsage
	flag.Parse()

	// Handle version command
	if *showVersion {
		fmt.Println(version.Info())
		return
	}

	// Handle help command
	if *showHelp {
		printUsage()
		return
	}

	mode := strings.ToLower(flag.Arg(0))
	if mode == "" {
		fmt.Fprintf(os.Stderr, "Error: no mode specified\n\n")
		printUsage()
		os.Exit(1)
	}
	if flag.NArg() > 1 {
		fmt.Fprintf(os.Stderr, "Error: too many arguments: %v\n", flag.Args()[1:])
		os.Exit(1)
	}

	// Validate flag combinations
	if mode != "runs" && (*runID != "" || *labelHistory != "") {
		fmt.Fprintf(os.Stderr, "Error: -run-id and -label apply to the runs mode\n")
		os.Exit(1)
	}
	if *runID != "" && *labelHistory != "" {
		fmt.Fprintf(os.Stderr, "Error: -run-id cannot be used with -label\n")
		os.Exit(1)
	}

	// Load configuration
	cfg := loadConfiguration(*configFile)

	// Resolve final configuration values from config file and flags
	finalConfig := resolveConfiguration(cfg, &configFlags{
		format:    *outputFormat,
		reconcile: *reconcile,
		verbose:   *verbose,
		debug:     *debug,
		noColor:   *noColor,
		skipEmpty: *skipEmpty,
	})

	// Check if PHENO_SCAN_DEBUG environment variable is set
	if os.Getenv("PHENO_SCAN_DEBUG") != "" {
		finalConfig.debug = true
	}

	// Auto-detect non-interactive environment: colored tables only make
	// sense on a terminal
	if !isTerminal(os.Stdout) || os.Getenv("CI") != "" || *outputFile != "" {
		finalConfig.noColor = true
	}

	switch finalConfig.reconcile {
	case "mapped", "combined", "both":
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid reconcile setting '%s' (use mapped, combined or both)\n", finalConfig.reconcile)
		os.Exit(1)
	}
	if _, ok := report.Get(finalConfig.format); !ok {
		fmt.Fprintf(os.Stderr, "Error: unsupported output format '%s'. Available formats: %s\n",
			finalConfig.format, strings.Join(report.List(), ", "))
		os.Exit(1)
	}

	// Push flag overrides into the configuration the pipeline reads
	cfg.Defaults.Reconcile = finalConfig.reconcile
	if *labelList != "" {
		cfg.Corpus.Labels = parseLabels(*labelList)
	}

	// Set up observability per the resolved level
	var observer *observability.StandardObserver
	if finalConfig.debug {
		observer = observability.NewStandardObserver(observability.ObservabilityDebug, os.Stderr)
		observer.DebugObserver = observability.NewDebugObserver(os.Stderr)
	} else if finalConfig.verbose {
		observer = observability.NewStandardObserver(observability.ObservabilityMetrics, os.Stderr)
	}

	if observer != nil && observer.DebugObserver != nil {
		debugObs := observer.DebugObserver
		finishConfigStage := debugObs.StartStage("main", "configuration_summary", "")
		debugObs.LogDetail("config", fmt.Sprintf("Mode: %s", mode))
		debugObs.LogDetail("config", fmt.Sprintf("Reconcile: %s", finalConfig.reconcile))
		debugObs.LogDetail("config", fmt.Sprintf("Annotation directory: %s", cfg.Corpus.AnnDir))
		debugObs.LogDetail("config", fmt.Sprintf("Gold directory: %s", cfg.Corpus.GoldDir))
		debugObs.LogDetail("config", fmt.Sprintf("Results database: %s", cfg.ResultsDB))
		debugObs.LogDetail("config", fmt.Sprintf("Classifier backend: %s", cfg.Learning.Backend))
		debugObs.LogMetric("config", "max_dimensions", cfg.Learning.MaxDimensions)
		finishConfigStage(true, "Configuration loaded")
	}

	p, err := pipeline.New(cfg, observer)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer p.Close()
	p.Comment = *comment

	switch mode {
	case "validate":
		err = handleValidate(p, finalConfig, *outputFile)
	case "mappings":
		err = handleMappings(p, cfg)
	case "train":
		if err = p.Train(); err == nil {
			fmt.Fprintf(os.Stderr, "models written to %s\n", cfg.Learning.ModelDir)
		}
	case "predict":
		var rows []eval.Row
		if rows, err = p.Predict(); err == nil {
			err = writeReport(rows, finalConfig, *outputFile)
		}
	case "experiment":
		var rows []eval.Row
		if rows, err = p.Experiment(); err == nil {
			err = writeReport(rows, finalConfig, *outputFile)
		}
	case "runs":
		err = handleRuns(p, finalConfig, *outputFile, *runID, *labelHistory)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown mode '%s'\n\n", mode)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// handleValidate runs the reconciliation and reports each requested
// candidate set. With both sets requested the section headers go to stderr
// so stdout stays parseable for a single set.
func handleValidate(p *pipeline.Pipeline, finalConfig *finalConfiguration, outputFile string) error {
	result, err := p.Validate()
	if err != nil {
		return err
	}

	both := result.Mapped != nil && result.Combined != nil
	if result.Mapped != nil {
		if both {
			fmt.Fprintln(os.Stderr, "mapped candidate set:")
		}
		if err := writeReport(result.Mapped, finalConfig, outputFile); err != nil {
			return err
		}
	}
	if result.Combined != nil {
		if both {
			fmt.Fprintln(os.Stderr, "combined candidate set:")
			// a second report cannot share one output file
			outputFile = appendToName(outputFile, "-combined")
		}
		if err := writeReport(result.Combined, finalConfig, outputFile); err != nil {
			return err
		}
	}
	return nil
}

// handleMappings learns the mapping candidates and prints a per-label
// summary; the table and gazetteer files land where the config points.
func handleMappings(p *pipeline.Pipeline, cfg *config.Config) error {
	result, err := p.LearnMappings()
	if err != nil {
		return err
	}

	labels := make([]string, 0, len(result.Gazetteers))
	for label := range result.Gazetteers {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		fmt.Printf("%s: %d concept candidates, %d gazetteer terms\n",
			label, len(result.Instances[label]), len(result.Gazetteers[label]))
	}

	if result.TablePath != "" {
		fmt.Fprintf(os.Stderr, "mapping table written to %s\n", result.TablePath)
	}
	if result.IndexPath != "" {
		fmt.Fprintf(os.Stderr, "gazetteer lists written to %s\n", cfg.Mappings.GazetteerDir)
	}
	return nil
}

// handleRuns lists recorded runs, or drills into one run or one label
func handleRuns(p *pipeline.Pipeline, finalConfig *finalConfiguration, outputFile, runID, label string) error {
	if runID != "" {
		rows, err := p.RunRows(runID)
		if err != nil {
			return err
		}
		return writeReport(rows, finalConfig, outputFile)
	}
	if label != "" {
		rows, err := p.LabelHistory(label)
		if err != nil {
			return err
		}
		return writeReport(rows, finalConfig, outputFile)
	}

	runs, err := p.Runs()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No recorded runs found.")
		return nil
	}
	fmt.Printf("%-36s  %-19s  %-18s  %s\n", "RUN", "CREATED", "MODE", "COMMENT")
	for _, run := range runs {
		fmt.Printf("%-36s  %-19s  %-18s  %s\n",
			run.ID, run.CreatedAt.Format("2006-01-02 15:04:05"), run.Mode, run.Comment)
	}
	return nil
}

// writeReport renders rows in the selected format to stdout or the output file
func writeReport(rows []eval.Row, finalConfig *finalConfiguration, outputFile string) error {
	result, err := report.Export(finalConfig.format, rows, report.FormatterOptions{
		NoColor:   finalConfig.noColor,
		SkipEmpty: finalConfig.skipEmpty,
	})
	if err != nil {
		return err
	}

	if outputFile != "" {
		// Validate and sanitize output file path
		cleanOutputPath := filepath.Clean(outputFile)
		if strings.Contains(outputFile, "..") || strings.Contains(cleanOutputPath, "..") {
			return fmt.Errorf("path traversal not allowed in output path: %s", outputFile)
		}
		abs, err := filepath.Abs(cleanOutputPath)
		if err != nil {
			return fmt.Errorf("invalid output file path %s: %w", outputFile, err)
		}
		if err := os.MkdirAll(filepath.Dir(abs), 0o700); err != nil {
			return fmt.Errorf("error creating output directory: %w", err)
		}
		return os.WriteFile(abs, []byte(result), 0o600)
	}
	fmt.Println(result)
	return nil
}

// parseLabels splits a comma-separated label list, dropping empty entries
func parseLabels(list string) []string {
	var labels []string
	for _, label := range strings.Split(list, ",") {
		if label = strings.TrimSpace(label); label != "" {
			labels = append(labels, label)
		}
	}
	return labels
}

// appendToName inserts a suffix between a file name and its extension
func appendToName(path, suffix string) string {
	if path == "" {
		return ""
	}
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + suffix + ext
}

// isFlagSet checks if a flag was explicitly set on the command line
func isFlagSet(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// isTerminal checks if the file descriptor is a terminal
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func printUsage() {
	fmt.Fprint(flag.CommandLine.Output(), usageText)
	flag.PrintDefaults()
}
