// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package semehr reads annotation documents produced by the upstream semantic
// annotation engine: JSON records whose annotation groups mix UMLS concept
// mentions, phenotype mentions and sentence boundaries.
package semehr

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"pheno-scan/internal/annotation"
)

// Document is one parsed annotation record. The typed lists keep the record's
// document order within each kind; unrecognised annotations are retained
// verbatim.
type Document struct {
	DocID      string
	concepts   []annotation.ConceptMention
	phenotypes []annotation.PhenotypeMention
	sentences  []annotation.Sentence
	others     []json.RawMessage
}

type rawNode struct {
	Offset json.Number `json:"offset"`
}

type rawAnnotation struct {
	Type      string         `json:"type"`
	StartNode rawNode        `json:"startNode"`
	EndNode   rawNode        `json:"endNode"`
	Features  map[string]any `json:"features"`
}

type rawDocument struct {
	DocID       string              `json:"docId"`
	Annotations [][]json.RawMessage `json:"annotations"`
}

// Load reads and parses the annotation record at path. A missing file
// surfaces as an error satisfying errors.Is(err, fs.ErrNotExist).
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading annotation record: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("error parsing annotation record %s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes an annotation record from raw JSON.
func Parse(data []byte) (*Document, error) {
	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("malformed annotation JSON: %w", err)
	}
	d := &Document{DocID: raw.DocID}
	for _, group := range raw.Annotations {
		for _, msg := range group {
			var ra rawAnnotation
			if err := json.Unmarshal(msg, &ra); err != nil {
				return nil, fmt.Errorf("malformed annotation entry: %w", err)
			}
			d.add(ra, msg)
		}
	}
	return d, nil
}

// add sorts one raw annotation into its kind. Ids are assigned after the
// append, 1-based within each kind.
func (d *Document) add(ra rawAnnotation, msg json.RawMessage) {
	span := annotation.Span{
		Text:  feature(ra.Features, "string_orig"),
		Start: offset(ra.StartNode),
		End:   offset(ra.EndNode),
	}
	ctx := annotation.Contextual{
		Negation:    feature(ra.Features, "Negation"),
		Temporality: feature(ra.Features, "Temporality"),
		Experiencer: feature(ra.Features, "Experiencer"),
	}
	switch ra.Type {
	case "Mention":
		d.concepts = append(d.concepts, annotation.ConceptMention{
			Span:       span,
			Contextual: ctx,
			ID:         fmt.Sprintf("cui-%d", len(d.concepts)+1),
			CUI:        feature(ra.Features, "inst"),
			STY:        feature(ra.Features, "STY"),
			Pref:       feature(ra.Features, "PREF"),
		})
	case "Phenotype":
		d.phenotypes = append(d.phenotypes, annotation.PhenotypeMention{
			Span:       span,
			Contextual: ctx,
			ID:         fmt.Sprintf("phe-%d", len(d.phenotypes)+1),
			MajorType:  feature(ra.Features, "majorType"),
			MinorType:  feature(ra.Features, "minorType"),
		})
	case "Sentence":
		d.sentences = append(d.sentences, annotation.Sentence{
			Span: annotation.Span{Start: span.Start, End: span.End},
			ID:   fmt.Sprintf("sent-%d", len(d.sentences)+1),
		})
	default:
		d.others = append(d.others, msg)
	}
}

// Concepts returns the UMLS concept mentions in document order.
func (d *Document) Concepts() []annotation.ConceptMention { return d.concepts }

// Phenotypes returns the phenotype mentions in document order.
func (d *Document) Phenotypes() []annotation.PhenotypeMention { return d.phenotypes }

// Sentences returns the sentence boundary records in document order.
func (d *Document) Sentences() []annotation.Sentence { return d.sentences }

// Others returns the annotations of unrecognised kinds, verbatim.
func (d *Document) Others() []json.RawMessage { return d.others }

// MappingInstances accumulates, per gold label, the set of concept triples
// (CUI, preferred name, semantic type, tab-joined) observed against that
// label across a corpus.
type MappingInstances map[string]map[string]struct{}

// Add records one triple under a label.
func (mi MappingInstances) Add(label, triple string) {
	set, ok := mi[label]
	if !ok {
		set = make(map[string]struct{})
		mi[label] = set
	}
	set[triple] = struct{}{}
}

// LearnMappings scans the document's concept mentions against a gold
// standard. A mention contributes its concept triple to the gold entity's
// label when the two overlap and the mention is not strictly inside the gold
// span. Every gold entity's lower-cased string joins the missed list whether
// a concept matched or not; that list seeds gazetteers rather than recording
// disagreements.
func (d *Document) LearnMappings(gold []annotation.GoldEntity, insts MappingInstances, missed map[string][]string) {
	for _, e := range gold {
		for _, a := range d.concepts {
			if a.Overlaps(e.Span) && !e.Contains(a.Span) {
				insts.Add(e.Type, strings.Join([]string{a.CUI, a.Pref, a.STY}, "\t"))
			}
		}
		missed[e.Type] = append(missed[e.Type], strings.ToLower(e.Text))
	}
}

// feature reads a string-valued feature, tolerating absent keys and
// non-string values.
func feature(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return fmt.Sprint(v)
	}
	return s
}

// offset decodes a node offset, tolerating absent or fractional values.
func offset(n rawNode) int {
	if n.Offset == "" {
		return 0
	}
	if i, err := n.Offset.Int64(); err == nil {
		return int(i)
	}
	if f, err := n.Offset.Float64(); err == nil {
		return int(f)
	}
	return 0
}
