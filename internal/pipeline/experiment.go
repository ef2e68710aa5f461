// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"pheno-scan/internal/annotation"
	"pheno-scan/internal/concepts"
	"pheno-scan/internal/eval"
	"pheno-scan/internal/labelmodel"
	"pheno-scan/internal/recognise"
)

// Train fits a label model and classifier for every configured label over
// the labelled corpus, using the first configured dimension budget.
func (p *Pipeline) Train() error {
	finishTiming := p.startTiming("train", p.cfg.Corpus.AnnDir)

	labels, mapping, ignore, err := p.learningInputs()
	if err != nil {
		return err
	}
	train := p.trainCorpus(mapping)
	dim := p.cfg.Learning.MaxDimensions[0]

	for _, label := range labels {
		p.detail(fmt.Sprintf("working on [%s]", label))
		bare, _ := annotation.SplitLabel(label)
		if err := p.trainLabel(label, dim, train, ignore[bare]); err != nil {
			return err
		}
	}

	if finishTiming != nil {
		finishTiming(true, map[string]interface{}{"labels": len(labels), "dimension": dim})
	}
	return nil
}

// Predict scores the held-out corpus with previously trained models and
// reports one row per label.
func (p *Pipeline) Predict() ([]eval.Row, error) {
	finishTiming := p.startTiming("predict", p.cfg.Corpus.TestAnnDir)

	labels, mapping, ignore, err := p.learningInputs()
	if err != nil {
		return nil, err
	}
	test := p.testCorpus(mapping)
	dim := p.cfg.Learning.MaxDimensions[0]

	perfs := eval.Set{}
	for _, label := range labels {
		p.detail(fmt.Sprintf("working on [%s]", label))
		bare, _ := annotation.SplitLabel(label)
		if err := p.predictLabel(label, dim, test, ignore[bare], perfs.Get(label)); err != nil {
			return nil, err
		}
	}

	rows := perfs.Rows()
	if err := p.saveRun("predict", rows); err != nil {
		return nil, err
	}
	if finishTiming != nil {
		finishTiming(true, map[string]interface{}{"labels": len(labels), "dimension": dim})
	}
	return rows, nil
}

// Experiment trains and scores every configured label across the whole
// dimension grid. Each label/dimension pair reports under its own key so
// dimension budgets can be compared side by side.
func (p *Pipeline) Experiment() ([]eval.Row, error) {
	finishTiming := p.startTiming("experiment", p.cfg.Corpus.AnnDir)

	labels, mapping, ignore, err := p.learningInputs()
	if err != nil {
		return nil, err
	}
	train := p.trainCorpus(mapping)
	test := p.testCorpus(mapping)

	perfs := eval.Set{}
	for _, label := range labels {
		p.detail(fmt.Sprintf("working on [%s]", label))
		bare, _ := annotation.SplitLabel(label)
		ignored := ignore[bare]

		for _, dim := range p.cfg.Learning.MaxDimensions {
			p.detail(fmt.Sprintf("dimension setting: %d", dim))
			if err := p.trainLabel(label, dim, train, ignored); err != nil {
				return nil, err
			}
			key := fmt.Sprintf("%s dim[%d]", label, dim)
			if err := p.predictLabel(label, dim, test, ignored, perfs.Get(key)); err != nil {
				return nil, err
			}
		}
	}

	rows := perfs.Rows()
	if err := p.saveRun("experiment", rows); err != nil {
		return nil, err
	}
	if finishTiming != nil {
		finishTiming(true, map[string]interface{}{
			"labels":     len(labels),
			"dimensions": len(p.cfg.Learning.MaxDimensions),
		})
	}
	return rows, nil
}

// learningInputs resolves the pieces every learning mode needs: the label
// inventory, the mapping table, the suppression lists and a model directory.
func (p *Pipeline) learningInputs() ([]string, *concepts.Mapping, map[string][]string, error) {
	labels, err := p.cfg.ResolveLabels()
	if err != nil {
		return nil, nil, nil, err
	}
	mapping, err := p.loadMapping()
	if err != nil {
		return nil, nil, nil, err
	}
	ignore, err := p.loadIgnoreLists()
	if err != nil {
		return nil, nil, nil, err
	}
	if p.cfg.Learning.ModelDir == "" {
		return nil, nil, nil, fmt.Errorf("no model directory configured: set learning.model_dir")
	}
	if err := os.MkdirAll(p.cfg.Learning.ModelDir, 0o755); err != nil {
		return nil, nil, nil, fmt.Errorf("error creating model directory: %w", err)
	}
	return labels, mapping, ignore, nil
}

// trainLabel collects dimensions over the labelled corpus, fits the backend
// and persists both the label model and the classifier.
func (p *Pipeline) trainLabel(label string, maxDim int, train *recognise.Corpus, ignored []string) error {
	lm := labelmodel.NewModel(label)
	lm.OneHot = p.cfg.Learning.OneHotLabels
	if err := lm.CollectWeightedDimensions(train); err != nil {
		return fmt.Errorf("error collecting dimensions for %s: %w", label, err)
	}
	lm.SetMaxDimensions(maxDim)

	ts, err := lm.BuildTrainingSet(train, ignored, p.observer)
	if err != nil {
		return fmt.Errorf("error building training set for %s: %w", label, err)
	}

	dir := p.cfg.Learning.ModelDir
	opts := labelmodel.TrainOptions{
		Backend:       p.cfg.Learning.Backend,
		MinSamples:    p.cfg.Learning.MinSampleSize,
		ModelPath:     labelmodel.ClassifierPath(dir, label),
		PCAComponents: p.cfg.Learning.PCAComponents,
		Observer:      p.observer,
	}
	if opts.PCAComponents > 0 {
		opts.ReducerPath = labelmodel.ReducerPath(dir, label)
	}
	if p.cfg.Learning.VizFile != "" {
		opts.VizPath = vizPathFor(p.cfg.Learning.VizFile, label)
	}
	if err := lm.Train(ts, opts); err != nil {
		return err
	}

	if err := lm.Save(labelmodel.ModelPath(dir, label)); err != nil {
		return err
	}
	p.detail(label + ".lm saved")
	return nil
}

// predictLabel scores the held-out corpus with the persisted model for one
// label, folding results into perf.
func (p *Pipeline) predictLabel(label string, maxDim int, test *recognise.Corpus, ignored []string, perf *eval.Performance) error {
	dir := p.cfg.Learning.ModelDir
	lm, err := labelmodel.Load(labelmodel.ModelPath(dir, label))
	if err != nil {
		return fmt.Errorf("error loading label model for %s: %w", label, err)
	}
	lm.SetMaxDimensions(maxDim)

	ts, err := lm.BuildTrainingSet(test, ignored, p.observer)
	if err != nil {
		return fmt.Errorf("error building test set for %s: %w", label, err)
	}

	reducerPath := ""
	if p.cfg.Learning.PCAComponents > 0 {
		reducerPath = labelmodel.ReducerPath(dir, label)
	}
	return lm.PredictWithModel(ts, labelmodel.ClassifierPath(dir, label), reducerPath,
		p.cfg.Learning.MinSampleSize, perf, p.observer)
}

// vizPathFor derives a per-label tree graph path from the configured file by
// prefixing the file name with the label.
func vizPathFor(vizFile, label string) string {
	dir, base := filepath.Split(vizFile)
	return filepath.Join(dir, label+"_"+base)
}
