// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package classifier

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecisionTreeLearnsSplit(t *testing.T) {
	X := [][]float64{{0, 1}, {0, 0}, {1, 1}, {1, 0}, {0, 1}, {1, 0}}
	Y := []int{0, 0, 1, 1, 0, 1}
	tree := NewDecisionTree()
	require.NoError(t, tree.Fit(X, Y))

	preds, err := tree.Predict([][]float64{{0, 0}, {1, 1}})
	require.NoError(t, err)
	require.Equal(t, []int{0, 1}, preds)
}

func TestDecisionTreePureLeaf(t *testing.T) {
	X := [][]float64{{0}, {1}, {2}}
	Y := []int{1, 1, 1}
	tree := NewDecisionTree()
	require.NoError(t, tree.Fit(X, Y))

	preds, err := tree.Predict([][]float64{{7}})
	require.NoError(t, err)
	require.Equal(t, []int{1}, preds)
}

func TestDecisionTreeValidation(t *testing.T) {
	tree := NewDecisionTree()
	require.Error(t, tree.Fit(nil, nil))
	require.Error(t, tree.Fit([][]float64{{1}}, []int{1, 0}))

	_, err := tree.Predict([][]float64{{1}})
	require.Error(t, err, "predicting before fitting should fail")

	require.NoError(t, tree.Fit([][]float64{{0}, {1}}, []int{0, 1}))
	_, err = tree.Predict([][]float64{{1, 2}})
	require.Error(t, err, "width mismatch should fail")
}

func TestDecisionTreeDeterministic(t *testing.T) {
	X := [][]float64{{0, 0}, {0, 1}, {1, 0}, {1, 1}, {0.5, 0.5}, {0.2, 0.9}}
	Y := []int{0, 0, 1, 1, 1, 0}
	probe := [][]float64{{0.1, 0.1}, {0.9, 0.9}, {0.4, 0.6}, {0.6, 0.2}}

	first := NewDecisionTree()
	require.NoError(t, first.Fit(X, Y))
	second := NewDecisionTree()
	require.NoError(t, second.Fit(X, Y))

	p1, err := first.Predict(probe)
	require.NoError(t, err)
	p2, err := second.Predict(probe)
	require.NoError(t, err)
	require.Equal(t, p1, p2)
}

func TestRandomForest(t *testing.T) {
	X := [][]float64{{0, 1}, {0, 0}, {1, 1}, {1, 0}, {0, 1}, {1, 0}, {0, 0}, {1, 1}}
	Y := []int{0, 0, 1, 1, 0, 1, 0, 1}
	forest := NewRandomForest()
	require.NoError(t, forest.Fit(X, Y))

	preds, err := forest.Predict([][]float64{{0, 1}, {1, 0}})
	require.NoError(t, err)
	require.Equal(t, []int{0, 1}, preds)

	// seeded bootstrap keeps retraining reproducible
	again := NewRandomForest()
	require.NoError(t, again.Fit(X, Y))
	reps, err := again.Predict(X)
	require.NoError(t, err)
	orig, err := forest.Predict(X)
	require.NoError(t, err)
	require.Equal(t, orig, reps)
}

func TestRandomForestNotFitted(t *testing.T) {
	_, err := NewRandomForest().Predict([][]float64{{1}})
	require.Error(t, err)
}

func TestBaselineAlwaysPositive(t *testing.T) {
	b := NewBaseline()
	require.NoError(t, b.Fit(nil, nil))
	require.True(t, b.Trained)

	preds, err := b.Predict([][]float64{{0}, {1}, {2}})
	require.NoError(t, err)
	require.Equal(t, []int{1, 1, 1}, preds)
}

func TestRegistry(t *testing.T) {
	c, err := New("decision_tree")
	require.NoError(t, err)
	require.Equal(t, "decision_tree", c.Name())

	_, err = New("perceptron")
	require.ErrorContains(t, err, "unsupported classifier 'perceptron'")
	require.ErrorContains(t, err, "decision_tree")

	require.Equal(t, []string{"baseline", "decision_tree", "random_forest"}, DefaultRegistry.List())
}

func TestModelRoundTrip(t *testing.T) {
	X := [][]float64{{0, 1}, {0, 0}, {1, 1}, {1, 0}}
	Y := []int{0, 0, 1, 1}
	probe := [][]float64{{0, 0}, {1, 1}, {0, 1}, {1, 0}}

	for _, name := range []string{"decision_tree", "random_forest", "baseline"} {
		t.Run(name, func(t *testing.T) {
			c, err := New(name)
			require.NoError(t, err)
			require.NoError(t, c.Fit(X, Y))
			want, err := c.Predict(probe)
			require.NoError(t, err)

			path := filepath.Join(t.TempDir(), name+".model")
			require.NoError(t, Save(path, c))
			loaded, err := Load(path)
			require.NoError(t, err)
			require.Equal(t, name, loaded.Name())

			got, err := loaded.Predict(probe)
			require.NoError(t, err)
			require.Equal(t, want, got)
		})
	}
}

func TestReducerProjectsLeadingComponent(t *testing.T) {
	X := [][]float64{{0, 5}, {1, 5}, {2, 5}, {3, 5}}
	r := NewReducer(1)
	out, err := r.FitTransform(X)
	require.NoError(t, err)
	require.Len(t, out, 4)
	require.Len(t, out[0], 1)
	// all the variance sits on the first feature, so spacing along the
	// leading component mirrors the spacing of the data
	for i := 1; i < len(out); i++ {
		require.InDelta(t, 1.0, math.Abs(out[i][0]-out[i-1][0]), 1e-9)
	}
}

func TestReducerCapsComponents(t *testing.T) {
	X := [][]float64{{0, 1}, {1, 0}, {2, 2}, {3, 1}}
	r := NewReducer(10)
	out, err := r.FitTransform(X)
	require.NoError(t, err)
	require.Len(t, out[0], 2)
}

func TestReducerRoundTrip(t *testing.T) {
	X := [][]float64{{0, 1, 2}, {1, 0, 1}, {2, 2, 0}, {3, 1, 1}}
	r := NewReducer(2)
	require.NoError(t, r.Fit(X))
	want, err := r.Transform(X)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "pca.model")
	require.NoError(t, SaveReducer(path, r))
	loaded, err := LoadReducer(path)
	require.NoError(t, err)
	got, err := loaded.Transform(X)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestReducerErrors(t *testing.T) {
	r := NewReducer(2)
	_, err := r.Transform([][]float64{{1, 2}})
	require.Error(t, err, "transforming before fitting should fail")

	require.Error(t, r.Fit([][]float64{{1, 2}}))
	require.Error(t, r.Fit([][]float64{{1, 2}, {1}}))
}
