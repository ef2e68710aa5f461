// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package classifier

import (
	"encoding/gob"
	"errors"
	"fmt"
	"sort"
)

// Node is one decision point of a fitted tree. Leaves carry the class.
type Node struct {
	Feature   int
	Threshold float64
	Left      *Node
	Right     *Node
	Leaf      bool
	Class     int
}

// DecisionTree is a CART-style binary classifier splitting on Gini impurity.
// Splits are chosen deterministically, so fitting the same data twice yields
// the same tree.
type DecisionTree struct {
	Root     *Node
	Width    int
	MaxDepth int
	MinLeaf  int
}

// NewDecisionTree returns an unfitted tree with default growth limits.
func NewDecisionTree() *DecisionTree {
	return &DecisionTree{MaxDepth: 12, MinLeaf: 1}
}

// Name identifies the backend in the registry and in model files.
func (t *DecisionTree) Name() string { return "decision_tree" }

// Fit grows the tree over the training vectors.
func (t *DecisionTree) Fit(X [][]float64, Y []int) error {
	if len(X) == 0 {
		return errors.New("no training samples")
	}
	if len(X) != len(Y) {
		return fmt.Errorf("got %d samples but %d labels", len(X), len(Y))
	}
	width := len(X[0])
	for i, row := range X {
		if len(row) != width {
			return fmt.Errorf("sample %d has %d features, want %d", i, len(row), width)
		}
	}
	idx := make([]int, len(X))
	for i := range idx {
		idx[i] = i
	}
	t.Width = width
	t.Root = t.grow(X, Y, idx, 0)
	return nil
}

// Predict classifies each vector with the fitted tree.
func (t *DecisionTree) Predict(X [][]float64) ([]int, error) {
	if t.Root == nil {
		return nil, errors.New("decision tree is not fitted")
	}
	out := make([]int, len(X))
	for i, row := range X {
		if len(row) != t.Width {
			return nil, fmt.Errorf("sample %d has %d features, want %d", i, len(row), t.Width)
		}
		out[i] = t.Root.classify(row)
	}
	return out, nil
}

func (n *Node) classify(row []float64) int {
	for !n.Leaf {
		if row[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Class
}

func (t *DecisionTree) grow(X [][]float64, Y []int, idx []int, depth int) *Node {
	counts := classCounts(Y, idx)
	if len(counts) == 1 || depth >= t.MaxDepth || len(idx) < 2*t.MinLeaf {
		return &Node{Leaf: true, Class: majorityClass(counts)}
	}
	feature, threshold, ok := bestSplit(X, Y, idx)
	if !ok {
		return &Node{Leaf: true, Class: majorityClass(counts)}
	}
	var left, right []int
	for _, i := range idx {
		if X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < t.MinLeaf || len(right) < t.MinLeaf {
		return &Node{Leaf: true, Class: majorityClass(counts)}
	}
	return &Node{
		Feature:   feature,
		Threshold: threshold,
		Left:      t.grow(X, Y, left, depth+1),
		Right:     t.grow(X, Y, right, depth+1),
	}
}

// bestSplit scans every feature and every midpoint between adjacent distinct
// values, keeping the split with the largest impurity gain.
func bestSplit(X [][]float64, Y []int, idx []int) (feature int, threshold float64, ok bool) {
	parent := gini(classCounts(Y, idx), len(idx))
	bestGain := 0.0
	width := len(X[idx[0]])
	for f := 0; f < width; f++ {
		values := make([]float64, 0, len(idx))
		for _, i := range idx {
			values = append(values, X[i][f])
		}
		sort.Float64s(values)
		for v := 1; v < len(values); v++ {
			if values[v] == values[v-1] {
				continue
			}
			th := (values[v] + values[v-1]) / 2
			leftCounts := make(map[int]int)
			rightCounts := make(map[int]int)
			nl, nr := 0, 0
			for _, i := range idx {
				if X[i][f] <= th {
					leftCounts[Y[i]]++
					nl++
				} else {
					rightCounts[Y[i]]++
					nr++
				}
			}
			weighted := (float64(nl)*gini(leftCounts, nl) + float64(nr)*gini(rightCounts, nr)) / float64(len(idx))
			gain := parent - weighted
			if gain > bestGain+1e-12 {
				bestGain, feature, threshold, ok = gain, f, th, true
			}
		}
	}
	return feature, threshold, ok
}

func gini(counts map[int]int, total int) float64 {
	if total == 0 {
		return 0
	}
	impurity := 1.0
	for _, c := range counts {
		p := float64(c) / float64(total)
		impurity -= p * p
	}
	return impurity
}

func classCounts(Y []int, idx []int) map[int]int {
	counts := make(map[int]int)
	for _, i := range idx {
		counts[Y[i]]++
	}
	return counts
}

// majorityClass picks the most frequent class; ties go to the lowest class
// id so that results do not depend on map order.
func majorityClass(counts map[int]int) int {
	classes := make([]int, 0, len(counts))
	for c := range counts {
		classes = append(classes, c)
	}
	sort.Ints(classes)
	best, bestCount := classes[0], -1
	for _, c := range classes {
		if counts[c] > bestCount {
			best, bestCount = c, counts[c]
		}
	}
	return best
}

func init() {
	gob.Register(&DecisionTree{})
	Register("decision_tree", func() Classifier { return NewDecisionTree() })
}
