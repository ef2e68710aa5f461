// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package labelmodel

import (
	"fmt"
	"strings"

	"pheno-scan/internal/annotation"
	"pheno-scan/internal/observability"
	"pheno-scan/internal/recognise"
)

// TrainingSet is the encoded corpus for one label: one vector and one
// outcome per candidate mention, plus the gold entities no candidate covered
// and the extra gold entities covered by an already-matched candidate.
type TrainingSet struct {
	X                     [][]float64
	Y                     []int
	FalseNegatives        int
	MultipleTruePositives int
}

// CollectFrequencyDimensions scans a corpus without gold standards: every
// candidate of either polarity registers its label dimension, and the
// mentions sharing the sentence of each polarity-matching candidate register
// context dimensions by plain frequency.
func (m *Model) CollectFrequencyDimensions(corpus *recognise.Corpus) error {
	bare, _ := annotation.SplitLabel(m.Label)
	wantNegated := strings.HasPrefix(m.Label, annotation.NegPrefix)
	keys, err := corpus.Keys()
	if err != nil {
		return err
	}
	for _, key := range keys {
		cr, err := corpus.Document(key)
		if err != nil {
			return err
		}
		candidates := append(cr.MentionsByLabel(bare, nil),
			cr.MentionsByLabel(annotation.NegPrefix+bare, nil)...)
		for _, a := range candidates {
			m.AddLabelDimensionFor(a)
			if a.Negated() != wantNegated {
				continue
			}
			ctx := cr.SameSentenceContext(a)
			for _, u := range ctx.Concepts {
				m.RecordGloss(u.CUI, u.Pref)
			}
			for _, c := range ctx.All() {
				m.AddContextDimensionFor(c, false, false)
			}
		}
	}
	return nil
}

// CollectWeightedDimensions scans a corpus against its gold standards.
// Candidates of either polarity register their label dimension; each
// polarity-matching candidate then greedily claims every unclaimed
// overlapping gold entity of the model's label, and its context window
// registers dimensions flagged by whether the candidate matched. The corpus
// totals of claimed gold entities and unmatched candidates are kept for the
// weighted selection. Documents without a gold standard are skipped.
func (m *Model) CollectWeightedDimensions(corpus *recognise.Corpus) error {
	bare, _ := annotation.SplitLabel(m.Label)
	wantNegated := strings.HasPrefix(m.Label, annotation.NegPrefix)
	keys, err := corpus.Keys()
	if err != nil {
		return err
	}
	tpFreq, fpFreq := 0, 0
	for _, key := range keys {
		cr, err := corpus.Document(key)
		if err != nil {
			return err
		}
		gold, ok, err := corpus.Gold(key)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		unclaimed := make(map[string]bool)
		for _, e := range gold {
			if e.Label() == m.Label {
				unclaimed[e.ID] = true
			}
		}
		candidates := append(cr.MentionsByLabel(bare, nil),
			cr.MentionsByLabel(annotation.NegPrefix+bare, nil)...)
		for _, a := range candidates {
			m.AddLabelDimensionFor(a)
			if a.Negated() != wantNegated {
				continue
			}
			matched := false
			for _, g := range gold {
				if unclaimed[g.ID] && g.Overlaps(a.Bounds()) {
					matched = true
					tpFreq++
					delete(unclaimed, g.ID)
				}
			}
			if !matched {
				fpFreq++
			}
			ctx := cr.PriorContext(a)
			for _, u := range ctx.Concepts {
				m.RecordGloss(u.CUI, u.Pref)
			}
			for _, c := range ctx.All() {
				m.AddContextDimensionFor(c, matched, !matched)
			}
		}
	}
	m.TPs, m.FPs = tpFreq, fpFreq
	m.freqDims, m.weightedDims = nil, nil
	return nil
}

// BuildTrainingSet encodes the corpus for the model's label. Each candidate
// retrieved under the label claims every unclaimed overlapping gold entity;
// a candidate's outcome is positive when it claimed at least one, and every
// claim beyond a candidate's first counts towards MultipleTruePositives.
// Gold entities left unclaimed per document accumulate as FalseNegatives.
// Documents without a gold standard are skipped.
func (m *Model) BuildTrainingSet(corpus *recognise.Corpus, ignored []string, obs *observability.StandardObserver) (*TrainingSet, error) {
	keys, err := corpus.Keys()
	if err != nil {
		return nil, err
	}
	ts := &TrainingSet{}
	for _, key := range keys {
		cr, err := corpus.Document(key)
		if err != nil {
			return nil, err
		}
		gold, ok, err := corpus.Gold(key)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		unclaimed := make(map[string]bool)
		for _, e := range gold {
			if e.Label() == m.Label {
				unclaimed[e.ID] = true
			}
		}
		for _, a := range cr.MentionsByLabel(m.Label, ignored) {
			ctx := cr.PriorContext(a).All()
			matched := false
			for _, g := range gold {
				if unclaimed[g.ID] && g.Overlaps(a.Bounds()) {
					if matched {
						ts.MultipleTruePositives++
					}
					matched = true
					delete(unclaimed, g.ID)
				}
			}
			if obs != nil {
				if matched {
					obs.Detail(component, fmt.Sprintf("R %s // %s %s", a.Literal(), contextSummary(ctx), key))
				} else {
					obs.Detail(component, fmt.Sprintf("! %s // %s %s", annotation.DimensionLabel(a), contextSummary(ctx), key))
				}
			}
			if matched {
				ts.Y = append(ts.Y, 1)
			} else {
				ts.Y = append(ts.Y, 0)
			}
			ts.X = append(ts.X, m.Encode(a, ctx))
		}
		ts.FalseNegatives += len(unclaimed)
		if obs != nil {
			for _, g := range gold {
				if unclaimed[g.ID] {
					obs.Detail(component, strings.Join([]string{
						"M", g.Text, fmt.Sprint(g.Negated),
						fmt.Sprint(g.Start), fmt.Sprint(g.End), corpus.GoldPath(key),
					}, "\t"))
				}
			}
		}
	}
	return ts, nil
}

func contextSummary(ctx []annotation.ContextMention) string {
	labels := make([]string, len(ctx))
	for i, c := range ctx {
		labels[i] = annotation.DimensionLabel(c)
	}
	return strings.Join(labels, " | ")
}
