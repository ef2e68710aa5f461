// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package eval accumulates per-label true/false positive and false negative
// counts and derives precision, recall and F1 from them.
package eval

import "sort"

// Performance counts outcomes for one label. True negatives are never
// tracked: every example is either a detection or a miss.
type Performance struct {
	Label string
	TP    int
	FP    int
	FN    int
}

// New returns an empty performance record for a label.
func New(label string) *Performance {
	return &Performance{Label: label}
}

// AddTruePositives adds n true positives.
func (p *Performance) AddTruePositives(n int) { p.TP += n }

// AddFalsePositives adds n false positives.
func (p *Performance) AddFalsePositives(n int) { p.FP += n }

// AddFalseNegatives adds n false negatives.
func (p *Performance) AddFalseNegatives(n int) { p.FN += n }

// Precision is tp/(tp+fp), or -1 when nothing was detected.
func (p *Performance) Precision() float64 {
	if p.TP+p.FP == 0 {
		return -1
	}
	return float64(p.TP) / float64(p.TP+p.FP)
}

// Recall is tp/(tp+fn), or -1 when no instances existed.
func (p *Performance) Recall() float64 {
	if p.TP+p.FN == 0 {
		return -1
	}
	return float64(p.TP) / float64(p.TP+p.FN)
}

// F1 is the harmonic mean of precision and recall, or -1 when either is
// undefined or zero.
func (p *Performance) F1() float64 {
	prec, rec := p.Precision(), p.Recall()
	if prec == -1 || rec == -1 || prec == 0 || rec == 0 {
		return -1
	}
	return 2 / (1/prec + 1/rec)
}

// Set is a collection of performance records keyed by label.
type Set map[string]*Performance

// Get returns the record for a label, creating it on first use.
func (s Set) Get(label string) *Performance {
	p, ok := s[label]
	if !ok {
		p = New(label)
		s[label] = p
	}
	return p
}

// Row is one line of a performance report.
type Row struct {
	Label          string  `json:"label"`
	Precision      float64 `json:"precision"`
	Recall         float64 `json:"recall"`
	F1             float64 `json:"f1"`
	Instances      int     `json:"instances"`
	FalsePositives int     `json:"false_positives"`
}

// Rows renders the set as report rows sorted by label. Instances counts the
// gold occurrences of the label: true positives plus false negatives.
func (s Set) Rows() []Row {
	rows := make([]Row, 0, len(s))
	for _, p := range s {
		rows = append(rows, Row{
			Label:          p.Label,
			Precision:      p.Precision(),
			Recall:         p.Recall(),
			F1:             p.F1(),
			Instances:      p.TP + p.FN,
			FalsePositives: p.FP,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Label < rows[j].Label })
	return rows
}
