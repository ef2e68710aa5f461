// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package eval

import (
	"math"
	"testing"
)

func TestPrecisionRecall(t *testing.T) {
	p := New("stroke")
	p.AddTruePositives(8)
	p.AddFalsePositives(2)
	p.AddFalseNegatives(4)

	if got := p.Precision(); got != 0.8 {
		t.Errorf("Precision = %v, want 0.8", got)
	}
	if got, want := p.Recall(), float64(8)/12; math.Abs(got-want) > 1e-12 {
		t.Errorf("Recall = %v, want %v", got, want)
	}
}

func TestSentinelsWhenUndefined(t *testing.T) {
	p := New("empty")
	if got := p.Precision(); got != -1 {
		t.Errorf("Precision with no detections = %v, want -1", got)
	}
	if got := p.Recall(); got != -1 {
		t.Errorf("Recall with no instances = %v, want -1", got)
	}
	if got := p.F1(); got != -1 {
		t.Errorf("F1 = %v, want -1", got)
	}
}

func TestF1(t *testing.T) {
	cases := []struct {
		name       string
		tp, fp, fn int
		want       float64
	}{
		{"balanced", 8, 2, 2, 0.8},
		{"zero precision", 0, 5, 3, -1},
		{"zero recall", 0, 0, 3, -1},
		{"perfect", 10, 0, 0, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := New(tc.name)
			p.AddTruePositives(tc.tp)
			p.AddFalsePositives(tc.fp)
			p.AddFalseNegatives(tc.fn)
			got := p.F1()
			if math.Abs(got-tc.want) > 1e-12 {
				t.Errorf("F1 = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSetAutoCreates(t *testing.T) {
	s := make(Set)
	s.Get("stroke").AddTruePositives(1)
	s.Get("stroke").AddFalsePositives(1)
	if s["stroke"].TP != 1 || s["stroke"].FP != 1 {
		t.Errorf("unexpected record: %+v", s["stroke"])
	}
	if len(s) != 1 {
		t.Errorf("expected a single record, got %d", len(s))
	}
}

func TestRowsSortedWithCounts(t *testing.T) {
	s := make(Set)
	s.Get("dysphagia").AddTruePositives(3)
	s.Get("dysphagia").AddFalseNegatives(1)
	s.Get("atrial fibrillation").AddFalsePositives(2)

	rows := s.Rows()
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Label != "atrial fibrillation" || rows[1].Label != "dysphagia" {
		t.Errorf("rows not sorted by label: %v", rows)
	}
	if rows[1].Instances != 4 {
		t.Errorf("instances = tp+fn, got %d", rows[1].Instances)
	}
	if rows[0].Precision != 0 || rows[0].Recall != -1 {
		t.Errorf("unexpected sentinel handling: %+v", rows[0])
	}
}
