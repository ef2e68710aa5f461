// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package classifier

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Reducer projects encoded vectors onto their leading principal components.
// The fitted projection is stored as plain slices so reducers round-trip
// through gob alongside the classifier models.
type Reducer struct {
	Components int
	Means      []float64
	Projection [][]float64 // feature x component
}

// NewReducer returns an unfitted reducer keeping the given number of
// components. A non-positive count keeps every component the data supports.
func NewReducer(components int) *Reducer {
	return &Reducer{Components: components}
}

// Fitted reports whether Fit has run.
func (r *Reducer) Fitted() bool { return r.Projection != nil }

// Fit computes the principal components of the training vectors.
func (r *Reducer) Fit(X [][]float64) error {
	if len(X) < 2 {
		return errors.New("need at least two samples to fit a reducer")
	}
	d := len(X[0])
	if d == 0 {
		return errors.New("need at least one feature to fit a reducer")
	}
	data := make([]float64, 0, len(X)*d)
	for i, row := range X {
		if len(row) != d {
			return fmt.Errorf("sample %d has %d features, want %d", i, len(row), d)
		}
		data = append(data, row...)
	}
	var pc stat.PC
	if ok := pc.PrincipalComponents(mat.NewDense(len(X), d, data), nil); !ok {
		return errors.New("principal component decomposition failed")
	}
	var vec mat.Dense
	pc.VectorsTo(&vec)
	_, cols := vec.Dims()
	k := r.Components
	if k <= 0 || k > cols {
		k = cols
	}

	means := make([]float64, d)
	for _, row := range X {
		for j, v := range row {
			means[j] += v
		}
	}
	for j := range means {
		means[j] /= float64(len(X))
	}

	projection := make([][]float64, d)
	for f := 0; f < d; f++ {
		projection[f] = make([]float64, k)
		for j := 0; j < k; j++ {
			projection[f][j] = vec.At(f, j)
		}
	}
	r.Means, r.Projection = means, projection
	return nil
}

// Transform centres each vector on the training means and projects it
// through the fitted components.
func (r *Reducer) Transform(X [][]float64) ([][]float64, error) {
	if !r.Fitted() {
		return nil, errors.New("reducer is not fitted")
	}
	d := len(r.Means)
	k := len(r.Projection[0])
	out := make([][]float64, len(X))
	for i, row := range X {
		if len(row) != d {
			return nil, fmt.Errorf("sample %d has %d features, want %d", i, len(row), d)
		}
		proj := make([]float64, k)
		for j := 0; j < k; j++ {
			var s float64
			for f := 0; f < d; f++ {
				s += (row[f] - r.Means[f]) * r.Projection[f][j]
			}
			proj[j] = s
		}
		out[i] = proj
	}
	return out, nil
}

// FitTransform fits the reducer and projects the training vectors.
func (r *Reducer) FitTransform(X [][]float64) ([][]float64, error) {
	if err := r.Fit(X); err != nil {
		return nil, err
	}
	return r.Transform(X)
}

// SaveReducer writes a fitted reducer next to its classifier model.
func SaveReducer(path string, r *Reducer) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating reducer file: %w", err)
	}
	defer f.Close()
	if err := gob.NewEncoder(f).Encode(r); err != nil {
		return fmt.Errorf("error encoding reducer %s: %w", path, err)
	}
	return nil
}

// LoadReducer restores a reducer written by SaveReducer.
func LoadReducer(path string) (*Reducer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening reducer file: %w", err)
	}
	defer f.Close()
	var r Reducer
	if err := gob.NewDecoder(f).Decode(&r); err != nil {
		return nil, fmt.Errorf("error decoding reducer %s: %w", path, err)
	}
	return &r, nil
}
