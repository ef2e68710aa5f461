// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package labelmodel

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"pheno-scan/internal/classifier"
	"pheno-scan/internal/eval"
	"pheno-scan/internal/observability"
)

// TrainOptions configure one backend training run.
type TrainOptions struct {
	Backend       string
	MinSamples    int
	ModelPath     string
	PCAComponents int // 0 disables reduction
	ReducerPath   string
	VizPath       string
	Observer      *observability.StandardObserver
}

// Train fits a classifier backend over the training set and persists it.
// When the set is not larger than MinSamples the run is skipped and any
// stale model file for the label is removed, so prediction falls back to
// keeping every candidate.
func (m *Model) Train(ts *TrainingSet, opts TrainOptions) error {
	obs := opts.Observer
	if len(ts.X) <= opts.MinSamples {
		if obs != nil {
			obs.Detail(component, fmt.Sprintf("not enough data to train %s: %d samples", m.Label, len(ts.X)))
		}
		if opts.ModelPath != "" {
			if err := os.Remove(opts.ModelPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("error removing stale model %s: %w", opts.ModelPath, err)
			}
		}
		return nil
	}

	X := ts.X
	var reducer *classifier.Reducer
	if opts.PCAComponents > 0 {
		reducer = classifier.NewReducer(opts.PCAComponents)
		reduced, err := reducer.FitTransform(ts.X)
		if err != nil {
			return fmt.Errorf("error reducing training set for %s: %w", m.Label, err)
		}
		X = reduced
	}

	backend := opts.Backend
	if backend == "" {
		backend = "decision_tree"
	}
	c, err := classifier.New(backend)
	if err != nil {
		return err
	}
	if err := c.Fit(X, ts.Y); err != nil {
		return fmt.Errorf("error fitting %s for %s: %w", backend, m.Label, err)
	}

	if opts.ModelPath != "" {
		if err := classifier.Save(opts.ModelPath, c); err != nil {
			return err
		}
		if obs != nil {
			obs.Detail(component, fmt.Sprintf("model file saved to %s", opts.ModelPath))
		}
	}
	if reducer != nil && opts.ReducerPath != "" {
		if err := classifier.SaveReducer(opts.ReducerPath, reducer); err != nil {
			return err
		}
	}
	// the rendered tree only matches the feature names in the unreduced space
	if opts.VizPath != "" && reducer == nil {
		if dt, ok := c.(*classifier.DecisionTree); ok {
			dot := dt.DOT(m.FeatureNames(), []string{"discard", "keep"})
			if err := os.WriteFile(opts.VizPath, []byte(dot), 0o644); err != nil {
				return fmt.Errorf("error writing tree graph %s: %w", opts.VizPath, err)
			}
		}
	}
	return nil
}

// PredictWithModel scores a test set against the persisted backend. When the
// model file exists, the set's false negatives fold into the performance as
// misses and its multiple true positives as extra hits before predicting;
// when it does not, every candidate is kept and nothing folds in. A test set
// not larger than MinSamples also falls back to keeping every candidate.
func (m *Model) PredictWithModel(ts *TrainingSet, modelPath, reducerPath string, minSamples int, perf *eval.Performance, obs *observability.StandardObserver) error {
	var preds []int
	modelMissing := false
	if _, err := os.Stat(modelPath); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("error checking model file %s: %w", modelPath, err)
		}
		modelMissing = true
		if obs != nil {
			obs.Detail(component, fmt.Sprintf("model file not found: %s", modelPath))
		}
	} else {
		X := ts.X
		if reducerPath != "" {
			reducer, err := classifier.LoadReducer(reducerPath)
			if err != nil {
				return err
			}
			X, err = reducer.Transform(X)
			if err != nil {
				return fmt.Errorf("error reducing test set for %s: %w", m.Label, err)
			}
		}
		c, err := classifier.Load(modelPath)
		if err != nil {
			return err
		}
		preds, err = c.Predict(X)
		if err != nil {
			return fmt.Errorf("error predicting %s: %w", m.Label, err)
		}
		if ts.FalseNegatives > 0 {
			perf.AddFalseNegatives(ts.FalseNegatives)
		}
		if ts.MultipleTruePositives > 0 {
			perf.AddTruePositives(ts.MultipleTruePositives)
		}
	}

	if modelMissing || len(ts.X) <= minSamples {
		if obs != nil {
			obs.Detail(component, fmt.Sprintf("keeping every candidate for %s", m.Label))
		}
		preds = make([]int, len(ts.X))
		for i := range preds {
			preds[i] = 1
		}
	}

	for i, p := range preds {
		switch {
		case p == ts.Y[i] && p == 1:
			perf.AddTruePositives(1)
		case p == 1:
			perf.AddFalsePositives(1)
		case ts.Y[i] == 1:
			perf.AddFalseNegatives(1)
		}
	}
	return nil
}
