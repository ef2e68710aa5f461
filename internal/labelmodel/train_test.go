// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package labelmodel

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"testing"

	"pheno-scan/internal/eval"
)

func separableSet() *TrainingSet {
	return &TrainingSet{
		X: [][]float64{{0}, {0}, {1}, {1}, {0}, {1}},
		Y: []int{0, 0, 1, 1, 0, 1},
	}
}

func TestTrainPersistsModel(t *testing.T) {
	dir := t.TempDir()
	m := NewModel("stroke")
	ts := separableSet()
	path := ClassifierPath(dir, m.Label)
	if err := m.Train(ts, TrainOptions{MinSamples: 2, ModelPath: path}); err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected model file at %s: %v", path, err)
	}

	perf := eval.New(m.Label)
	if err := m.PredictWithModel(ts, path, "", 2, perf, nil); err != nil {
		t.Fatalf("PredictWithModel failed: %v", err)
	}
	if perf.TP != 3 || perf.FP != 0 || perf.FN != 0 {
		t.Errorf("tp/fp/fn = %d/%d/%d, want 3/0/0", perf.TP, perf.FP, perf.FN)
	}
}

func TestTrainSkipsSmallSetAndRemovesStaleModel(t *testing.T) {
	dir := t.TempDir()
	m := NewModel("stroke")
	path := ClassifierPath(dir, m.Label)
	writeFixture(t, path, "stale")

	ts := &TrainingSet{X: [][]float64{{0}, {1}}, Y: []int{0, 1}}
	if err := m.Train(ts, TrainOptions{MinSamples: 2, ModelPath: path}); err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("stale model file should have been removed, stat err = %v", err)
	}
	// skipping again with no file present must not fail
	if err := m.Train(ts, TrainOptions{MinSamples: 2, ModelPath: path}); err != nil {
		t.Fatalf("Train on a clean directory failed: %v", err)
	}
}

func TestTrainUnknownBackend(t *testing.T) {
	m := NewModel("stroke")
	err := m.Train(separableSet(), TrainOptions{Backend: "bogus"})
	if err == nil || !strings.Contains(err.Error(), "unsupported classifier") {
		t.Fatalf("expected an unsupported classifier error, got %v", err)
	}
}

func TestPredictFoldsInCollectionCounts(t *testing.T) {
	dir := t.TempDir()
	m := NewModel("stroke")
	ts := separableSet()
	path := ClassifierPath(dir, m.Label)
	if err := m.Train(ts, TrainOptions{MinSamples: 2, ModelPath: path}); err != nil {
		t.Fatalf("Train failed: %v", err)
	}

	ts.FalseNegatives = 2
	ts.MultipleTruePositives = 1
	perf := eval.New(m.Label)
	if err := m.PredictWithModel(ts, path, "", 2, perf, nil); err != nil {
		t.Fatalf("PredictWithModel failed: %v", err)
	}
	// three scored hits plus the folded-in extra claim, and the folded-in misses
	if perf.TP != 4 || perf.FP != 0 || perf.FN != 2 {
		t.Errorf("tp/fp/fn = %d/%d/%d, want 4/0/2", perf.TP, perf.FP, perf.FN)
	}
}

func TestPredictWithoutModelKeepsEveryCandidate(t *testing.T) {
	dir := t.TempDir()
	m := NewModel("stroke")
	ts := &TrainingSet{
		X:                     [][]float64{{0}, {1}},
		Y:                     []int{1, 0},
		FalseNegatives:        5,
		MultipleTruePositives: 3,
	}
	perf := eval.New(m.Label)
	if err := m.PredictWithModel(ts, ClassifierPath(dir, m.Label), "", 0, perf, nil); err != nil {
		t.Fatalf("PredictWithModel failed: %v", err)
	}
	// every candidate kept, and the collection counts do not fold in
	if perf.TP != 1 || perf.FP != 1 || perf.FN != 0 {
		t.Errorf("tp/fp/fn = %d/%d/%d, want 1/1/0", perf.TP, perf.FP, perf.FN)
	}
}

func TestPredictSmallSetKeepsEveryCandidate(t *testing.T) {
	dir := t.TempDir()
	m := NewModel("stroke")
	path := ClassifierPath(dir, m.Label)
	if err := m.Train(separableSet(), TrainOptions{MinSamples: 2, ModelPath: path}); err != nil {
		t.Fatalf("Train failed: %v", err)
	}

	ts := &TrainingSet{
		X:                     [][]float64{{0}, {1}},
		Y:                     []int{1, 0},
		FalseNegatives:        4,
		MultipleTruePositives: 2,
	}
	perf := eval.New(m.Label)
	if err := m.PredictWithModel(ts, path, "", 2, perf, nil); err != nil {
		t.Fatalf("PredictWithModel failed: %v", err)
	}
	// the model file exists so its counts fold in, but the set is too small
	// to trust the backend and every candidate is kept
	if perf.TP != 3 || perf.FP != 1 || perf.FN != 4 {
		t.Errorf("tp/fp/fn = %d/%d/%d, want 3/1/4", perf.TP, perf.FP, perf.FN)
	}
}

func TestTrainWithReduction(t *testing.T) {
	dir := t.TempDir()
	m := NewModel("stroke")
	ts := &TrainingSet{
		X: [][]float64{{0, 5}, {0.2, 5}, {0.1, 5}, {3, 5}, {3.2, 5}, {3.1, 5}},
		Y: []int{0, 0, 0, 1, 1, 1},
	}
	modelPath := ClassifierPath(dir, m.Label)
	reducerPath := ReducerPath(dir, m.Label)
	opts := TrainOptions{MinSamples: 2, ModelPath: modelPath, PCAComponents: 1, ReducerPath: reducerPath}
	if err := m.Train(ts, opts); err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	if _, err := os.Stat(reducerPath); err != nil {
		t.Fatalf("expected reducer file at %s: %v", reducerPath, err)
	}

	perf := eval.New(m.Label)
	if err := m.PredictWithModel(ts, modelPath, reducerPath, 2, perf, nil); err != nil {
		t.Fatalf("PredictWithModel failed: %v", err)
	}
	if perf.TP != 3 || perf.FP != 0 || perf.FN != 0 {
		t.Errorf("tp/fp/fn = %d/%d/%d, want 3/0/0", perf.TP, perf.FP, perf.FN)
	}
}

func TestTrainWritesTreeGraph(t *testing.T) {
	dir := t.TempDir()
	m := NewModel("stroke")
	vizPath := dir + "/stroke.dot"
	opts := TrainOptions{MinSamples: 2, VizPath: vizPath}
	if err := m.Train(separableSet(), opts); err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	data, err := os.ReadFile(vizPath)
	if err != nil {
		t.Fatalf("expected tree graph at %s: %v", vizPath, err)
	}
	dot := string(data)
	if !strings.Contains(dot, "digraph Tree") {
		t.Errorf("graph missing digraph header: %q", dot)
	}
	if !strings.Contains(dot, "label <= 0.500") {
		t.Errorf("graph missing the split on the label feature: %q", dot)
	}
}
