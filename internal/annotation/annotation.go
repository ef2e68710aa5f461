// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package annotation defines the span algebra and the annotation record
// variants shared by the gold-standard and automated document stores.
package annotation

import "strings"

// NegPrefix marks the negated form of a label.
const NegPrefix = "neg_"

// NegationNegated is the contextual negation value the upstream engine
// attaches to negated mentions.
const NegationNegated = "Negated"

// Span is a contiguous region of document text. Start and End are character
// offsets and both ends are treated as inclusive by the overlap relation.
type Span struct {
	Text  string `json:"str"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Bounds returns the span itself. Annotation records embed Span, so all of
// them satisfy Spanned through promotion.
func (s Span) Bounds() Span { return s }

// Overlaps reports whether either span's start or end falls inside the
// other's closed interval. The relation is symmetric: adjacent spans that
// share a boundary offset overlap, and a zero-length span overlaps any span
// covering its point.
func (s Span) Overlaps(o Span) bool {
	return s.Start <= o.End && o.Start <= s.End
}

// Contains reports whether s strictly contains o: s covers the whole of o
// and the two spans are not identical. A span never contains itself.
func (s Span) Contains(o Span) bool {
	if s.Start == o.Start && s.End == o.End {
		return false
	}
	return s.Start <= o.Start && s.End >= o.End
}

// Spanned is implemented by any record that occupies a span of text.
type Spanned interface {
	Bounds() Span
}

// Contextual holds the context-algorithm properties the upstream engine
// attaches to detected mentions (negation, temporality, experiencer).
type Contextual struct {
	Negation    string `json:"negation"`
	Temporality string `json:"temporality"`
	Experiencer string `json:"experiencer"`
}

// Negated reports whether the mention was detected in a negated context.
func (c Contextual) Negated() bool { return c.Negation == NegationNegated }

// ConceptMention is one UMLS concept detection in a document.
type ConceptMention struct {
	Span
	Contextual
	ID   string `json:"id"`
	CUI  string `json:"cui"`
	STY  string `json:"sty"`
	Pref string `json:"pref"`
}

// MentionID returns the store-assigned id of the mention.
func (m ConceptMention) MentionID() string { return m.ID }

// Literal returns the mention's literal document text.
func (m ConceptMention) Literal() string { return m.Text }

// PhenotypeMention is one phenotype-level detection in a document.
type PhenotypeMention struct {
	Span
	Contextual
	ID        string `json:"id"`
	MajorType string `json:"major_type"`
	MinorType string `json:"minor_type"`
}

// MentionID returns the store-assigned id of the mention.
func (m PhenotypeMention) MentionID() string { return m.ID }

// Literal returns the mention's literal document text.
func (m PhenotypeMention) Literal() string { return m.Text }

// Sentence is one sentence boundary record in a document.
type Sentence struct {
	Span
	ID string `json:"id"`
}

// GoldEntity is one human-marked entity from a gold-standard document.
type GoldEntity struct {
	Span
	ID      string `json:"id"`
	Type    string `json:"type"`
	Negated bool   `json:"negated"`
}

// Label returns the entity's qualified label: the bare type, prefixed with
// "neg_" when the entity is negated.
func (e GoldEntity) Label() string { return QualifyLabel(e.Type, e.Negated) }

// LabelMention is the reconciled, label-typed view of one detected mention.
// The ID is copied from the mention it was derived from, so a mention mapped
// to several labels yields label mentions sharing one id.
type LabelMention struct {
	Span
	ID      string `json:"id"`
	Type    string `json:"type"`
	Negated bool   `json:"negated"`
}

// Label returns the mention's qualified label.
func (m LabelMention) Label() string { return QualifyLabel(m.Type, m.Negated) }

// ContextMention is the shared view of detected mentions used when building
// feature context windows.
type ContextMention interface {
	Spanned
	MentionID() string
	Negated() bool
	Literal() string
}

// QualifyLabel prefixes a bare label with "neg_" when negated is set.
func QualifyLabel(bare string, negated bool) string {
	if negated {
		return NegPrefix + bare
	}
	return bare
}

// SplitLabel decomposes a qualified label into its bare form and negation
// flag.
func SplitLabel(label string) (string, bool) {
	if strings.HasPrefix(label, NegPrefix) {
		return strings.TrimPrefix(label, NegPrefix), true
	}
	return label, false
}

// DimensionLabel returns the normalised feature string for a mention: the
// lower-cased literal text, prefixed with "neg_" when the mention sits in a
// negated context.
func DimensionLabel(m ContextMention) string {
	return QualifyLabel(strings.ToLower(m.Literal()), m.Negated())
}
