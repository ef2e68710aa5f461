// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package resultstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"pheno-scan/internal/eval"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "results.db")
	store, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, path
}

func sampleRows() []eval.Row {
	return []eval.Row{
		{Label: "stroke", Precision: 0.9, Recall: 0.75, F1: 0.8182, Instances: 20, FalsePositives: 2},
		{Label: "dysphagia", Precision: -1, Recall: -1, F1: -1, Instances: 0, FalsePositives: 0},
	}
}

func TestSaveAndLoadRun(t *testing.T) {
	store, _ := openTestStore(t)

	id, err := store.SaveRun("validate", "first pass", sampleRows())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	rows, err := store.RunRows(id)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	// metrics come back sorted by label
	require.Equal(t, "dysphagia", rows[0].Label)
	require.Equal(t, "stroke", rows[1].Label)
	require.Equal(t, sampleRows()[0], rows[1])
	// the -1 sentinel survives storage
	require.Equal(t, float64(-1), rows[0].F1)
}

func TestListRunsNewestFirst(t *testing.T) {
	store, _ := openTestStore(t)

	first, err := store.SaveRun("validate", "", sampleRows())
	require.NoError(t, err)
	second, err := store.SaveRun("predict", "with model", sampleRows())
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	runs, err := store.ListRuns()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.Equal(t, second, runs[0].ID)
	require.Equal(t, "predict", runs[0].Mode)
	require.Equal(t, "with model", runs[0].Comment)
	require.Equal(t, first, runs[1].ID)
	require.False(t, runs[0].CreatedAt.IsZero())
}

func TestLabelHistory(t *testing.T) {
	store, _ := openTestStore(t)

	_, err := store.SaveRun("validate", "", []eval.Row{
		{Label: "stroke", Precision: 0.5, Recall: 0.5, F1: 0.5, Instances: 10, FalsePositives: 5},
	})
	require.NoError(t, err)
	_, err = store.SaveRun("predict", "", []eval.Row{
		{Label: "stroke", Precision: 0.9, Recall: 0.8, F1: 0.8471, Instances: 10, FalsePositives: 1},
	})
	require.NoError(t, err)

	history, err := store.LabelHistory("stroke")
	require.NoError(t, err)
	require.Len(t, history, 2)
	// newest run first
	require.Equal(t, 0.9, history[0].Precision)
	require.Equal(t, 0.5, history[1].Precision)

	none, err := store.LabelHistory("absent")
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.db")
	store, err := Open(path)
	require.NoError(t, err)
	id, err := store.SaveRun("experiment", "", sampleRows())
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	runs, err := reopened.ListRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, id, runs[0].ID)

	rows, err := reopened.RunRows(id)
	require.NoError(t, err)
	require.Len(t, rows, 2)
}
