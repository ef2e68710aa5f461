// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package recognise reconciles automated annotation records with target
// phenotype labels: concept mentions are mapped through the concept table,
// phenotype mentions are re-typed by their minor type, and the two views are
// combined and validated against gold standards.
package recognise

import (
	"fmt"
	"strings"

	"pheno-scan/internal/annotation"
	"pheno-scan/internal/concepts"
	"pheno-scan/internal/eval"
	"pheno-scan/internal/observability"
	"pheno-scan/internal/semehr"
)

const component = "recogniser"

// Recogniser derives label-typed views of one annotated document. Derived
// views are computed once and cached on the instance.
type Recogniser struct {
	doc      *semehr.Document
	mapping  *concepts.Mapping
	observer *observability.StandardObserver

	mapped         []annotation.LabelMention
	phenotypes     []annotation.LabelMention
	combined       []annotation.LabelMention
	mappedDone     bool
	phenotypesDone bool
	combinedDone   bool
}

// New wraps a parsed annotation record with a concept mapping.
func New(doc *semehr.Document, mapping *concepts.Mapping) *Recogniser {
	return &Recogniser{doc: doc, mapping: mapping}
}

// Open loads the annotation record at path and wraps it.
func Open(path string, mapping *concepts.Mapping) (*Recogniser, error) {
	doc, err := semehr.Load(path)
	if err != nil {
		return nil, err
	}
	return New(doc, mapping), nil
}

// SetObserver attaches an observer for document-level diagnostics.
func (r *Recogniser) SetObserver(obs *observability.StandardObserver) {
	r.observer = obs
}

// Document returns the underlying annotation record.
func (r *Recogniser) Document() *semehr.Document { return r.doc }

// MappedLabels returns one label mention per mapped label of each concept
// mention whose CUI is in the concept table. A concept mapped to several
// labels fans out into label mentions sharing the concept's id.
func (r *Recogniser) MappedLabels() []annotation.LabelMention {
	if r.mappedDone {
		return r.mapped
	}
	var mapped []annotation.LabelMention
	for _, a := range r.doc.Concepts() {
		for _, label := range r.mapping.Labels(a.CUI) {
			mapped = append(mapped, annotation.LabelMention{
				Span:    a.Span,
				ID:      a.ID,
				Type:    label,
				Negated: a.Negated(),
			})
		}
	}
	r.mapped, r.mappedDone = mapped, true
	return mapped
}

// CustomPhenotypes returns the document's phenotype mentions re-typed by
// their minor type.
func (r *Recogniser) CustomPhenotypes() []annotation.LabelMention {
	if r.phenotypesDone {
		return r.phenotypes
	}
	var out []annotation.LabelMention
	for _, a := range r.doc.Phenotypes() {
		out = append(out, annotation.LabelMention{
			Span:    a.Span,
			ID:      a.ID,
			Type:    a.MinorType,
			Negated: a.Negated(),
		})
	}
	r.phenotypes, r.phenotypesDone = out, true
	return out
}

// CombinedMentions merges the mapped labels with those custom phenotypes
// that do not overlap any mapped mention.
func (r *Recogniser) CombinedMentions() []annotation.LabelMention {
	if r.combinedDone {
		return r.combined
	}
	mapped := r.MappedLabels()
	combined := append([]annotation.LabelMention{}, mapped...)
	for _, p := range r.CustomPhenotypes() {
		overlapped := false
		for _, m := range mapped {
			if p.Overlaps(m.Span) {
				overlapped = true
				break
			}
		}
		if !overlapped {
			combined = append(combined, p)
		}
	}
	r.combined, r.combinedDone = combined, true
	return combined
}

// SentenceOf returns the first sentence record overlapping the span, in
// record order.
func (r *Recogniser) SentenceOf(s annotation.Span) (annotation.Sentence, bool) {
	for _, sent := range r.doc.Sentences() {
		if s.Overlaps(sent.Span) {
			return sent, true
		}
	}
	if r.observer != nil {
		r.observer.Detail(component, fmt.Sprintf("sentence not found for span [%d,%d] %q", s.Start, s.End, s.Text))
	}
	return annotation.Sentence{}, false
}

// PreviousSentences returns the sentences starting before the span's own
// sentence, in record order; with includeSelf the own sentence is appended
// last. A span with no sentence yields nil.
func (r *Recogniser) PreviousSentences(s annotation.Span, includeSelf bool) []annotation.Sentence {
	own, ok := r.SentenceOf(s)
	if !ok {
		return nil
	}
	var sents []annotation.Sentence
	for _, sent := range r.doc.Sentences() {
		if sent.Start < own.Start {
			sents = append(sents, sent)
		}
	}
	if includeSelf {
		sents = append(sents, own)
	}
	return sents
}

// SentenceContext groups the mentions found inside one sentence window.
type SentenceContext struct {
	Concepts   []annotation.ConceptMention
	Phenotypes []annotation.PhenotypeMention
}

// All returns the window's mentions as one list, concepts first.
func (c SentenceContext) All() []annotation.ContextMention {
	all := make([]annotation.ContextMention, 0, len(c.Concepts)+len(c.Phenotypes))
	for _, m := range c.Concepts {
		all = append(all, m)
	}
	for _, m := range c.Phenotypes {
		all = append(all, m)
	}
	return all
}

// SentenceMentions collects the concept and phenotype mentions overlapping a
// window, excluding any mention that overlaps the exclude span.
func (r *Recogniser) SentenceMentions(window annotation.Span, exclude *annotation.Span) SentenceContext {
	var ctx SentenceContext
	for _, a := range r.doc.Concepts() {
		if !a.Overlaps(window) {
			continue
		}
		if exclude != nil && exclude.Overlaps(a.Span) {
			continue
		}
		ctx.Concepts = append(ctx.Concepts, a)
	}
	for _, a := range r.doc.Phenotypes() {
		if !a.Overlaps(window) {
			continue
		}
		if exclude != nil && exclude.Overlaps(a.Span) {
			continue
		}
		ctx.Phenotypes = append(ctx.Phenotypes, a)
	}
	return ctx
}

// SameSentenceContext returns the mentions sharing the mention's sentence,
// excluding anything overlapping the mention itself.
func (r *Recogniser) SameSentenceContext(m annotation.ContextMention) SentenceContext {
	own, ok := r.SentenceOf(m.Bounds())
	if !ok {
		return SentenceContext{}
	}
	b := m.Bounds()
	return r.SentenceMentions(own.Span, &b)
}

// PriorContext returns the canonical context window for a mention: the
// mentions of its own sentence, minus anything overlapping the mention
// itself. A mention with no sentence yields an empty context.
func (r *Recogniser) PriorContext(m annotation.ContextMention) SentenceContext {
	sents := r.PreviousSentences(m.Bounds(), true)
	if len(sents) == 0 {
		return SentenceContext{}
	}
	// the window is the last sentence of the list: the mention's own
	b := m.Bounds()
	return r.SentenceMentions(sents[len(sents)-1].Span, &b)
}

// MentionsByLabel retrieves the detected mentions carrying a qualified
// label: concept mentions whose CUI maps to the bare label and phenotype
// mentions whose minor type equals it, polarity-filtered by the label's
// "neg_" prefix. Ignore entries suppress concepts by CUI and phenotypes by
// lower-cased literal. Overlapping candidates resolve in favour of the
// larger span; equal or straddling overlaps keep the first-seen mention.
func (r *Recogniser) MentionsByLabel(label string, ignored []string) []annotation.ContextMention {
	bare, negWanted := annotation.SplitLabel(label)
	ignoredLower := make([]string, len(ignored))
	for i, s := range ignored {
		ignoredLower[i] = strings.ToLower(s)
	}

	var kept []annotation.ContextMention
	for _, a := range r.doc.Concepts() {
		if !r.mapping.Has(a.CUI) || containsString(ignored, a.CUI) {
			continue
		}
		if !r.mapping.HasLabel(a.CUI, bare) {
			continue
		}
		if a.Negated() != negWanted {
			continue
		}
		kept = append(kept, a)
	}

	// Phenotype candidates are checked against everything kept so far.
	// A candidate strictly containing a kept mention marks it for removal
	// but the marked mention keeps taking part in later comparisons; the
	// sweep applies at the end.
	removed := make([]bool, len(kept))
	for _, a := range r.doc.Phenotypes() {
		if a.MinorType != bare {
			continue
		}
		if containsString(ignoredLower, strings.ToLower(a.Text)) {
			continue
		}
		if a.Negated() != negWanted {
			continue
		}
		overlapped := false
		for i, k := range kept {
			if !k.Bounds().Overlaps(a.Span) {
				continue
			}
			if a.Span.Contains(k.Bounds()) {
				removed[i] = true
			} else {
				overlapped = true
				break
			}
		}
		if !overlapped {
			kept = append(kept, a)
			removed = append(removed, false)
		}
	}

	var out []annotation.ContextMention
	for i, k := range kept {
		if !removed[i] {
			out = append(out, k)
		}
	}
	return out
}

// ValidateMapped scores the mapped-label view against a gold standard.
func (r *Recogniser) ValidateMapped(gold []annotation.GoldEntity, perf eval.Set) {
	Validate(gold, r.MappedLabels(), perf)
}

// ValidateCombined scores the combined view against a gold standard.
func (r *Recogniser) ValidateCombined(gold []annotation.GoldEntity, perf eval.Set) {
	Validate(gold, r.CombinedMentions(), perf)
}

// Validate scores learnt label mentions against gold entities. Each gold
// entity greedily takes the first learnt mention sharing its qualified label
// and overlapping it; the mention's id is claimed, and ids shared across
// labels claim every mention carrying them. Unmatched gold entities count as
// false negatives; unclaimed learnt mentions count as false positives under
// their own label.
func Validate(gold []annotation.GoldEntity, learnt []annotation.LabelMention, perf eval.Set) {
	claimed := make(map[string]bool)
	for _, ga := range gold {
		p := perf.Get(ga.Label())
		matched := false
		for _, la := range learnt {
			if la.Label() == ga.Label() && la.Overlaps(ga.Span) {
				matched = true
				p.AddTruePositives(1)
				claimed[la.ID] = true
				break
			}
		}
		if !matched {
			p.AddFalseNegatives(1)
		}
	}
	for _, la := range learnt {
		if !claimed[la.ID] {
			perf.Get(la.Label()).AddFalsePositives(1)
		}
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
