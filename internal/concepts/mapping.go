// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package concepts holds the concept-to-label mapping table that links UMLS
// concept ids to target phenotype labels, plus the per-label ignore lists
// used to suppress known bad mappings.
package concepts

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Mapping resolves concept ids to target labels. The source table maps each
// label to a list of concept strings; each string is a tab-joined
// CUI/preferred-name/semantic-type triple, and only the leading CUI is
// significant for resolution.
type Mapping struct {
	cuiToLabels map[string][]string
	cuiToPref   map[string]string
}

// Load reads a mapping table from a JSON file of label → concept strings.
func Load(path string) (*Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading concept mapping: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("error parsing concept mapping %s: %w", path, err)
	}
	return m, nil
}

// Parse decodes a mapping table from raw JSON.
func Parse(data []byte) (*Mapping, error) {
	var table map[string][]string
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("malformed mapping JSON: %w", err)
	}
	m := &Mapping{
		cuiToLabels: make(map[string][]string),
		cuiToPref:   make(map[string]string),
	}
	labels := make([]string, 0, len(table))
	for label := range table {
		labels = append(labels, label)
	}
	// registration runs in sorted label order so lookups are deterministic
	sort.Strings(labels)
	for _, label := range labels {
		for _, text := range table[label] {
			cui := CUIOf(text)
			if cui == "" {
				continue
			}
			if arr := strings.Split(text, "\t"); len(arr) > 1 {
				m.cuiToPref[cui] = arr[1]
			}
			if !contains(m.cuiToLabels[cui], label) {
				m.cuiToLabels[cui] = append(m.cuiToLabels[cui], label)
			}
		}
	}
	return m, nil
}

// CUIOf extracts the concept id from a concept string: its first 8
// characters.
func CUIOf(text string) string {
	if len(text) > 8 {
		return text[:8]
	}
	return text
}

// Has reports whether the concept id maps to any label.
func (m *Mapping) Has(cui string) bool {
	_, ok := m.cuiToLabels[cui]
	return ok
}

// Labels returns the labels a concept id maps to.
func (m *Mapping) Labels(cui string) []string {
	return m.cuiToLabels[cui]
}

// HasLabel reports whether the concept id maps to the given label.
func (m *Mapping) HasLabel(cui, label string) bool {
	return contains(m.cuiToLabels[cui], label)
}

// Pref returns the preferred name recorded for a concept id.
func (m *Mapping) Pref(cui string) string {
	return m.cuiToPref[cui]
}

// LoadIgnoreLists reads the per-label ignore lists: a JSON object mapping
// each bare label to strings that suppress mentions, either concept ids or
// literal mention texts.
func LoadIgnoreLists(path string) (map[string][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading ignore lists: %w", err)
	}
	var lists map[string][]string
	if err := json.Unmarshal(data, &lists); err != nil {
		return nil, fmt.Errorf("error parsing ignore lists %s: %w", path, err)
	}
	return lists, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
