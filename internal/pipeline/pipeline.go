// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package pipeline drives the corpus-level operations: reconciling automated
// annotations against the gold standard, learning concept mappings, and
// training and scoring per-label phenotype classifiers.
package pipeline

import (
	"fmt"

	"pheno-scan/internal/concepts"
	"pheno-scan/internal/config"
	"pheno-scan/internal/eval"
	"pheno-scan/internal/observability"
	"pheno-scan/internal/recognise"
	"pheno-scan/internal/resultstore"
)

const component = "pipeline"

// Pipeline wires configuration, corpora and the optional results store for
// one run of a pipeline mode.
type Pipeline struct {
	cfg      *config.Config
	observer *observability.StandardObserver
	store    *resultstore.Store

	// Comment is attached to runs recorded in the results store
	Comment string
}

// New creates a pipeline. The results store is opened only when a results
// database is configured.
func New(cfg *config.Config, observer *observability.StandardObserver) (*Pipeline, error) {
	p := &Pipeline{cfg: cfg, observer: observer}
	if cfg.ResultsDB != "" {
		store, err := resultstore.Open(cfg.ResultsDB)
		if err != nil {
			return nil, fmt.Errorf("error opening results database: %w", err)
		}
		p.store = store
	}
	return p, nil
}

// Close releases the results store when one is open
func (p *Pipeline) Close() error {
	if p.store != nil {
		return p.store.Close()
	}
	return nil
}

// Runs returns recorded evaluation runs, newest first
func (p *Pipeline) Runs() ([]resultstore.Run, error) {
	if p.store == nil {
		return nil, fmt.Errorf("no results database configured: set results_db")
	}
	return p.store.ListRuns()
}

// RunRows returns the per-label rows recorded for one run
func (p *Pipeline) RunRows(runID string) ([]eval.Row, error) {
	if p.store == nil {
		return nil, fmt.Errorf("no results database configured: set results_db")
	}
	return p.store.RunRows(runID)
}

// LabelHistory returns a label's recorded rows across runs, newest first
func (p *Pipeline) LabelHistory(label string) ([]eval.Row, error) {
	if p.store == nil {
		return nil, fmt.Errorf("no results database configured: set results_db")
	}
	return p.store.LabelHistory(label)
}

// saveRun records rows in the results store when one is open
func (p *Pipeline) saveRun(mode string, rows []eval.Row) error {
	if p.store == nil || len(rows) == 0 {
		return nil
	}
	id, err := p.store.SaveRun(mode, p.Comment, rows)
	if err != nil {
		return fmt.Errorf("error recording %s run: %w", mode, err)
	}
	p.detail(fmt.Sprintf("recorded %s run %s", mode, id))
	return nil
}

// loadMapping loads the concept-to-label mapping table
func (p *Pipeline) loadMapping() (*concepts.Mapping, error) {
	if p.cfg.Corpus.ConceptMappingFile == "" {
		return nil, fmt.Errorf("no concept mapping file configured: set corpus.concept_mapping_file")
	}
	m, err := concepts.Load(p.cfg.Corpus.ConceptMappingFile)
	if err != nil {
		return nil, fmt.Errorf("error loading concept mapping: %w", err)
	}
	return m, nil
}

// loadIgnoreLists loads the per-label concept suppression lists; no
// configured file means no suppression.
func (p *Pipeline) loadIgnoreLists() (map[string][]string, error) {
	if p.cfg.Corpus.IgnoreMappingFile == "" {
		return map[string][]string{}, nil
	}
	lists, err := concepts.LoadIgnoreLists(p.cfg.Corpus.IgnoreMappingFile)
	if err != nil {
		return nil, fmt.Errorf("error loading ignore lists: %w", err)
	}
	return lists, nil
}

// trainCorpus opens the labelled training split
func (p *Pipeline) trainCorpus(mapping *concepts.Mapping) *recognise.Corpus {
	c := recognise.NewCorpus(p.cfg.Corpus.AnnDir, p.cfg.Corpus.GoldDir, mapping)
	if p.observer != nil {
		c.SetObserver(p.observer)
	}
	return c
}

// testCorpus opens the held-out split
func (p *Pipeline) testCorpus(mapping *concepts.Mapping) *recognise.Corpus {
	c := recognise.NewCorpus(p.cfg.Corpus.TestAnnDir, p.cfg.Corpus.TestGoldDir, mapping)
	if p.observer != nil {
		c.SetObserver(p.observer)
	}
	return c
}

func (p *Pipeline) detail(message string) {
	if p.observer != nil {
		p.observer.Detail(component, message)
	}
}

func (p *Pipeline) startTiming(operation, target string) func(bool, map[string]interface{}) {
	if p.observer == nil {
		return nil
	}
	return p.observer.StartTiming(component, operation, target)
}
