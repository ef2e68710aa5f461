// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package labelmodel

import (
	"path/filepath"
	"reflect"
	"testing"

	"pheno-scan/internal/annotation"
)

func concept(text string, start, end int, cui, negation string) annotation.ConceptMention {
	return annotation.ConceptMention{
		Span:       annotation.Span{Text: text, Start: start, End: end},
		Contextual: annotation.Contextual{Negation: negation},
		CUI:        cui,
		Pref:       text,
	}
}

func TestAddLabelDimension(t *testing.T) {
	m := NewModel("stroke")
	m.AddLabelDimension("Stroke", true, false)
	m.AddLabelDimension("STROKE", false, true)
	m.AddLabelDimension("bleed", false, false)

	if !reflect.DeepEqual(m.LabelDims, []string{"stroke", "bleed"}) {
		t.Errorf("unexpected label dimensions %v", m.LabelDims)
	}
	if !m.TPMembership["stroke"] {
		t.Error("first registration should record membership")
	}
	// the duplicate registration must not extend membership
	if m.FPMembership["stroke"] {
		t.Error("repeat registration should not record membership")
	}
}

func TestAddContextDimension(t *testing.T) {
	m := NewModel("stroke")
	m.AddContextDimension("Bleeding", true, false)
	m.AddContextDimension("bleeding", false, true)
	m.AddContextDimension("fracture", false, false)

	if !reflect.DeepEqual(m.ContextDims, []string{"bleeding", "fracture"}) {
		t.Errorf("unexpected context dimensions %v", m.ContextDims)
	}
	if m.Frequencies["bleeding"] != 2 || m.Frequencies["fracture"] != 1 {
		t.Errorf("unexpected frequencies %v", m.Frequencies)
	}
	// unlike label dimensions, membership accrues on every registration
	if !m.TPMembership["bleeding"] || !m.FPMembership["bleeding"] {
		t.Error("context membership should accrue across registrations")
	}
}

func TestTopFrequencyDimensions(t *testing.T) {
	m := NewModel("stroke")
	for i := 0; i < 2; i++ {
		m.AddContextDimension("alpha", false, false)
	}
	for i := 0; i < 2; i++ {
		m.AddContextDimension("beta", false, false)
	}
	for i := 0; i < 3; i++ {
		m.AddContextDimension("gamma", false, false)
	}

	got := m.TopFrequencyDimensions(3)
	// ties keep registration order: alpha was seen before beta
	want := []string{"gamma", "alpha", "beta"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TopFrequencyDimensions = %v, want %v", got, want)
	}
}

func TestTopWeightedDimensions(t *testing.T) {
	m := NewModel("stroke")
	m.AddContextDimension("alpha", true, false)
	for i := 0; i < 3; i++ {
		m.AddContextDimension("beta", false, true)
	}
	m.AddContextDimension("gamma", true, false)
	m.AddContextDimension("gamma", false, true)
	m.AddContextDimension("delta", true, false)
	m.AddContextDimension("delta", true, false)
	m.TPs, m.FPs = 10, 5

	// corpus ratio 2: beta scores 3*2=6, delta keeps raw 2, alpha raw 1,
	// gamma is in both camps and is forced to zero
	got := m.TopWeightedDimensions(4)
	want := []string{"beta", "delta", "alpha", "gamma"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TopWeightedDimensions = %v, want %v", got, want)
	}

	m.SetMaxDimensions(2)
	if got := m.TopWeightedDimensions(2); !reflect.DeepEqual(got, []string{"beta", "delta"}) {
		t.Errorf("budgeted selection = %v, want [beta delta]", got)
	}
}

func TestTopWeightedDimensionsUnitRatio(t *testing.T) {
	m := NewModel("stroke")
	for i := 0; i < 3; i++ {
		m.AddContextDimension("beta", false, true)
	}
	m.AddContextDimension("gamma", true, false)
	m.AddContextDimension("gamma", false, true)
	m.AddContextDimension("alpha", true, false)
	m.TPs, m.FPs = 0, 5

	// without both corpus totals every dimension passes through the plain
	// membership discount, and in-both dimensions still score zero
	got := m.TopWeightedDimensions(3)
	want := []string{"beta", "alpha", "gamma"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TopWeightedDimensions = %v, want %v", got, want)
	}
}

func TestEncodeIndexMode(t *testing.T) {
	m := NewModel("stroke")
	m.AddLabelDimension("stroke", false, false)
	m.AddLabelDimension("neg_stroke", false, false)
	m.AddContextDimension("bleeding", true, false)
	m.AddContextDimension("fracture", false, true)
	m.SetMaxDimensions(2)

	mention := concept("Stroke", 10, 16, "C0038454", "Affirmed")
	ctx := []annotation.ContextMention{concept("Bleeding", 20, 28, "C0019080", "Affirmed")}

	got := m.Encode(mention, ctx)
	want := []float64{0, 1, 0, 0, 0}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Encode = %v, want %v", got, want)
	}

	unknown := concept("hemorrhage", 10, 16, "C0019080", "Affirmed")
	if got := m.Encode(unknown, nil); got[0] != -1 {
		t.Errorf("unknown mention should encode label index -1, got %v", got)
	}
}

func TestEncodeOneHot(t *testing.T) {
	m := NewModel("stroke")
	m.OneHot = true
	m.AddLabelDimension("stroke", false, false)
	m.AddLabelDimension("neg_stroke", false, false)
	m.AddContextDimension("bleeding", true, false)
	m.SetMaxDimensions(1)

	mention := concept("stroke", 10, 16, "C0038454", "Negated")
	got := m.Encode(mention, nil)
	// the negated mention hits the neg_stroke slot; the context dimension
	// contributes a presence flag and the reserved zero slot
	want := []float64{0, 1, 0, 0}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Encode = %v, want %v", got, want)
	}
}

func TestFeatureNames(t *testing.T) {
	m := NewModel("stroke")
	m.AddLabelDimension("stroke", false, false)
	m.AddContextDimension("c0019080", true, false)
	m.AddContextDimension("fracture", false, true)
	m.RecordGloss("C0019080", "Bleeding")
	m.TPs, m.FPs = 1, 0
	m.SetMaxDimensions(2)

	got := m.FeatureNames()
	if got[0] != "label" {
		t.Errorf("index mode should name the label slot 'label', got %q", got[0])
	}
	if len(got) != 5 {
		t.Fatalf("expected 1 label + 2x2 context names, got %v", got)
	}
	found := false
	for _, n := range got {
		if n == "Bleeding (C0019080)" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected glossed concept name in %v", got)
	}
}

func TestModelRoundTrip(t *testing.T) {
	m := NewModel("neg_stroke")
	m.OneHot = true
	m.AddLabelDimension("stroke", false, false)
	m.AddContextDimension("bleeding", true, false)
	m.AddContextDimension("fracture", false, true)
	m.AddContextDimension("fracture", false, true)
	m.RecordGloss("C0019080", "Bleeding")
	m.TPs, m.FPs = 4, 2
	m.SetMaxDimensions(10)
	wantDims := m.TopWeightedDimensions(10)

	path := filepath.Join(t.TempDir(), "neg_stroke.lm")
	if err := m.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Label != "neg_stroke" || !loaded.OneHot {
		t.Errorf("unexpected loaded header %+v", loaded)
	}
	if !reflect.DeepEqual(loaded.ContextDims, m.ContextDims) {
		t.Errorf("context dims %v, want %v", loaded.ContextDims, m.ContextDims)
	}
	if loaded.Frequencies["fracture"] != 2 || loaded.TPs != 4 || loaded.FPs != 2 {
		t.Errorf("counts did not survive the round trip: %+v", loaded)
	}
	// the selection is recomputed from the persisted counts
	if got := loaded.TopWeightedDimensions(10); !reflect.DeepEqual(got, wantDims) {
		t.Errorf("recomputed selection %v, want %v", got, wantDims)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "absent.lm")); err == nil {
		t.Error("expected error for missing model file")
	}
}

func TestModelPaths(t *testing.T) {
	if got := ModelPath("models", "stroke"); got != filepath.Join("models", "stroke.lm") {
		t.Errorf("ModelPath = %q", got)
	}
	if got := ClassifierPath("models", "stroke"); got != filepath.Join("models", "stroke_DT.model") {
		t.Errorf("ClassifierPath = %q", got)
	}
	if got := ReducerPath("models", "stroke"); got != filepath.Join("models", "stroke_pca.model") {
		t.Errorf("ReducerPath = %q", got)
	}
}
