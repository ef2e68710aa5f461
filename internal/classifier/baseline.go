// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package classifier

import "encoding/gob"

// Baseline keeps every candidate: it predicts the positive class
// unconditionally and serves as the floor the trained backends must beat.
type Baseline struct {
	Trained bool
}

// NewBaseline returns the always-positive backend.
func NewBaseline() *Baseline { return &Baseline{} }

// Name identifies the backend in the registry and in model files.
func (b *Baseline) Name() string { return "baseline" }

// Fit records that training ran; the decision never depends on the data.
func (b *Baseline) Fit(X [][]float64, Y []int) error {
	b.Trained = true
	return nil
}

// Predict labels every vector positive.
func (b *Baseline) Predict(X [][]float64) ([]int, error) {
	out := make([]int, len(X))
	for i := range out {
		out[i] = 1
	}
	return out, nil
}

func init() {
	gob.Register(&Baseline{})
	Register("baseline", func() Classifier { return NewBaseline() })
}
