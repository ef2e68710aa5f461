// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package classifier

import (
	"encoding/gob"
	"errors"
	"math/rand"
)

// RandomForest bags decision trees over bootstrap samples and predicts by
// majority vote. The bootstrap draws come from a fixed seed, keeping training
// reproducible.
type RandomForest struct {
	Trees []*DecisionTree
	Size  int
	Seed  int64
}

// NewRandomForest returns an unfitted forest with default ensemble size.
func NewRandomForest() *RandomForest {
	return &RandomForest{Size: 25, Seed: 1}
}

// Name identifies the backend in the registry and in model files.
func (f *RandomForest) Name() string { return "random_forest" }

// Fit trains Size trees, each on a bootstrap resample of the training set.
func (f *RandomForest) Fit(X [][]float64, Y []int) error {
	if len(X) == 0 {
		return errors.New("no training samples")
	}
	if len(X) != len(Y) {
		return errors.New("sample and label counts differ")
	}
	rng := rand.New(rand.NewSource(f.Seed))
	f.Trees = f.Trees[:0]
	for k := 0; k < f.Size; k++ {
		bagX := make([][]float64, len(X))
		bagY := make([]int, len(Y))
		for i := range bagX {
			j := rng.Intn(len(X))
			bagX[i], bagY[i] = X[j], Y[j]
		}
		tree := NewDecisionTree()
		if err := tree.Fit(bagX, bagY); err != nil {
			return err
		}
		f.Trees = append(f.Trees, tree)
	}
	return nil
}

// Predict takes the majority vote across the ensemble; exact ties resolve to
// the positive class.
func (f *RandomForest) Predict(X [][]float64) ([]int, error) {
	if len(f.Trees) == 0 {
		return nil, errors.New("random forest is not fitted")
	}
	votes := make([]int, len(X))
	for _, tree := range f.Trees {
		preds, err := tree.Predict(X)
		if err != nil {
			return nil, err
		}
		for i, p := range preds {
			votes[i] += p
		}
	}
	out := make([]int, len(X))
	for i, v := range votes {
		if v*2 >= len(f.Trees) {
			out[i] = 1
		}
	}
	return out, nil
}

func init() {
	gob.Register(&RandomForest{})
	Register("random_forest", func() Classifier { return NewRandomForest() })
}
