// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package labelmodel builds per-label supervised models over reconciled
// mention candidates. A model accumulates evidence dimensions from a corpus,
// selects the most informative ones, encodes candidates into vectors and
// drives the classifier backends over them.
package labelmodel

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"pheno-scan/internal/annotation"
)

const component = "labelmodel"

// DefaultMaxDimensions caps the context dimensions entering the encoding
// when no budget is configured.
const DefaultMaxDimensions = 2000

// Model holds the learnt evidence for one target label. All exported fields
// persist in the model file; selection caches are rebuilt on demand.
type Model struct {
	Label         string            `json:"label"`
	LabelDims     []string          `json:"label_dimensions"`
	ContextDims   []string          `json:"context_dimensions"`
	Frequencies   map[string]int    `json:"frequencies"`
	TPMembership  map[string]bool   `json:"tp_membership"`
	FPMembership  map[string]bool   `json:"fp_membership"`
	TPs           int               `json:"tps"`
	FPs           int               `json:"fps"`
	CUIGloss      map[string]string `json:"cui_gloss"`
	OneHot        bool              `json:"one_hot"`
	MaxDimensions int               `json:"max_dimensions"`

	labelIndex   map[string]int
	contextSeen  map[string]bool
	freqDims     []string
	weightedDims []string
}

// NewModel creates an empty model for a qualified label.
func NewModel(label string) *Model {
	return &Model{
		Label:         label,
		Frequencies:   make(map[string]int),
		TPMembership:  make(map[string]bool),
		FPMembership:  make(map[string]bool),
		CUIGloss:      make(map[string]string),
		MaxDimensions: DefaultMaxDimensions,
	}
}

// SetMaxDimensions changes the context dimension budget and invalidates the
// cached selections. Non-positive budgets fall back to the default.
func (m *Model) SetMaxDimensions(k int) {
	if k <= 0 {
		k = DefaultMaxDimensions
	}
	m.MaxDimensions = k
	m.freqDims, m.weightedDims = nil, nil
}

// AddLabelDimension registers a lower-cased label dimension. Membership in
// the true or false positive sets is recorded only when the dimension is
// first seen.
func (m *Model) AddLabelDimension(value string, tp, fp bool) {
	v := strings.ToLower(value)
	if _, ok := m.indexOf(v); ok {
		return
	}
	m.labelIndex[v] = len(m.LabelDims)
	m.LabelDims = append(m.LabelDims, v)
	if tp {
		m.TPMembership[v] = true
	}
	if fp {
		m.FPMembership[v] = true
	}
}

// AddLabelDimensionFor registers the mention's dimension label.
func (m *Model) AddLabelDimensionFor(mention annotation.ContextMention) {
	m.AddLabelDimension(annotation.DimensionLabel(mention), false, false)
}

// AddContextDimension registers a lower-cased context dimension, counting
// one occurrence per call. Membership flags apply on every call, and the
// membership sets are shared with the label dimensions.
func (m *Model) AddContextDimension(value string, tp, fp bool) {
	v := strings.ToLower(value)
	if m.contextSeen == nil {
		m.contextSeen = make(map[string]bool, len(m.ContextDims))
		for _, d := range m.ContextDims {
			m.contextSeen[d] = true
		}
	}
	if !m.contextSeen[v] {
		m.contextSeen[v] = true
		m.ContextDims = append(m.ContextDims, v)
		m.Frequencies[v] = 1
	} else {
		m.Frequencies[v]++
	}
	if tp {
		m.TPMembership[v] = true
	}
	if fp {
		m.FPMembership[v] = true
	}
	m.freqDims, m.weightedDims = nil, nil
}

// AddContextDimensionFor registers the mention's dimension label as context
// evidence.
func (m *Model) AddContextDimensionFor(mention annotation.ContextMention, tp, fp bool) {
	m.AddContextDimension(annotation.DimensionLabel(mention), tp, fp)
}

// RecordGloss remembers the preferred name seen for a concept id.
func (m *Model) RecordGloss(cui, pref string) {
	if cui == "" {
		return
	}
	m.CUIGloss[cui] = pref
}

// TopFrequencyDimensions returns the k most frequent context dimensions.
// Ties keep registration order; the result is cached.
func (m *Model) TopFrequencyDimensions(k int) []string {
	if m.freqDims != nil {
		return m.freqDims
	}
	dims := append([]string{}, m.ContextDims...)
	sort.SliceStable(dims, func(i, j int) bool {
		return m.Frequencies[dims[i]] > m.Frequencies[dims[j]]
	})
	m.freqDims = truncate(dims, k)
	return m.freqDims
}

// TopWeightedDimensions returns the k context dimensions scoring highest
// under the corpus-weighted scheme. A dimension seen in both true and false
// positive contexts scores zero; one seen only around false positives is
// amplified by the corpus TP/FP ratio; one seen only around true positives
// keeps its raw frequency. Ties keep registration order; the result is
// cached.
func (m *Model) TopWeightedDimensions(k int) []string {
	if m.weightedDims != nil {
		return m.weightedDims
	}
	idfWeight := 1.0
	if m.TPs > 0 && m.FPs > 0 {
		idfWeight = float64(m.TPs) / float64(m.FPs)
	}
	scores := make(map[string]float64, len(m.ContextDims))
	for _, l := range m.ContextDims {
		members := 0
		if m.TPMembership[l] {
			members++
		}
		if m.FPMembership[l] {
			members++
		}
		score := float64(m.Frequencies[l])
		if members == 0 {
			// unreachable through the collectors, which always flag one side
			score = 0
		} else {
			idf := 1.0 / float64(members)
			inBoth := m.TPMembership[l] && m.FPMembership[l]
			switch {
			case idfWeight == 1 || inBoth:
				score *= idf
				if inBoth {
					score = 0.0
				}
			case m.FPMembership[l]:
				score *= idfWeight * idf
			}
		}
		scores[l] = score
	}
	dims := append([]string{}, m.ContextDims...)
	sort.SliceStable(dims, func(i, j int) bool {
		return scores[dims[i]] > scores[dims[j]]
	})
	m.weightedDims = truncate(dims, k)
	return m.weightedDims
}

// Encode turns one candidate mention and its context window into a feature
// vector: the label part (index or one-hot over the label dimensions)
// followed by, per selected context dimension, a presence flag and a
// reserved slot that always encodes zero.
func (m *Model) Encode(mention annotation.ContextMention, context []annotation.ContextMention) []float64 {
	dimLabel := annotation.DimensionLabel(mention)
	var encoded []float64
	if m.OneHot {
		for _, l := range m.LabelDims {
			if l == dimLabel {
				encoded = append(encoded, 1)
			} else {
				encoded = append(encoded, 0)
			}
		}
	} else {
		idx := -1
		if i, ok := m.indexOf(dimLabel); ok {
			idx = i
		}
		encoded = append(encoded, float64(idx))
	}
	present := make(map[string]bool, len(context))
	for _, c := range context {
		present[annotation.DimensionLabel(c)] = true
	}
	for _, l := range m.TopWeightedDimensions(m.MaxDimensions) {
		if present[l] {
			encoded = append(encoded, 1)
		} else {
			encoded = append(encoded, 0)
		}
		encoded = append(encoded, 0)
	}
	return encoded
}

// FeatureNames mirrors the encoding layout for model inspection: the label
// part first, then a name and a reserved-slot name per selected context
// dimension, glossed through the concept table where one applies.
func (m *Model) FeatureNames() []string {
	var names []string
	if m.OneHot {
		for _, l := range m.LabelDims {
			names = append(names, "lbl: "+m.glossFor(l))
		}
	} else {
		names = append(names, "label")
	}
	for _, l := range m.TopWeightedDimensions(m.MaxDimensions) {
		name := m.glossFor(l)
		names = append(names, name, name+" (freq)")
	}
	return names
}

func (m *Model) glossFor(dim string) string {
	if pref, ok := m.CUIGloss[strings.ToUpper(dim)]; ok {
		return fmt.Sprintf("%s (%s)", pref, strings.ToUpper(dim))
	}
	return dim
}

func (m *Model) indexOf(dim string) (int, bool) {
	if m.labelIndex == nil {
		m.labelIndex = make(map[string]int, len(m.LabelDims))
		for i, l := range m.LabelDims {
			m.labelIndex[l] = i
		}
	}
	i, ok := m.labelIndex[dim]
	return i, ok
}

func truncate(dims []string, k int) []string {
	if k < 0 {
		k = 0
	}
	if k > len(dims) {
		k = len(dims)
	}
	return dims[:k]
}

// Save writes the model to its label file as JSON.
func (m *Model) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding label model: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("error writing label model %s: %w", path, err)
	}
	return nil
}

// Load restores a model written by Save.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading label model: %w", err)
	}
	m := NewModel("")
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("error parsing label model %s: %w", path, err)
	}
	if m.Frequencies == nil {
		m.Frequencies = make(map[string]int)
	}
	if m.TPMembership == nil {
		m.TPMembership = make(map[string]bool)
	}
	if m.FPMembership == nil {
		m.FPMembership = make(map[string]bool)
	}
	if m.CUIGloss == nil {
		m.CUIGloss = make(map[string]string)
	}
	if m.MaxDimensions <= 0 {
		m.MaxDimensions = DefaultMaxDimensions
	}
	return m, nil
}

// ModelPath names the serialised label model inside a model directory.
func ModelPath(dir, label string) string {
	return filepath.Join(dir, label+".lm")
}

// ClassifierPath names the fitted classifier backend for a label.
func ClassifierPath(dir, label string) string {
	return filepath.Join(dir, label+"_DT.model")
}

// ReducerPath names the fitted dimensionality reducer for a label.
func ReducerPath(dir, label string) string {
	return filepath.Join(dir, label+"_pca.model")
}
