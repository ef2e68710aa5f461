// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package concepts

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const sampleMapping = `{
  "stroke": [
    "C0038454\tCerebrovascular accident\tDisease or Syndrome",
    "C0948008\tIschemic stroke\tDisease or Syndrome"
  ],
  "haemorrhagic stroke": [
    "C0038454\tCerebrovascular accident\tDisease or Syndrome"
  ]
}`

func TestParseMapping(t *testing.T) {
	m, err := Parse([]byte(sampleMapping))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !m.Has("C0038454") || !m.Has("C0948008") {
		t.Error("expected both concept ids to resolve")
	}
	if m.Has("C9999999") {
		t.Error("unknown concept id should not resolve")
	}
	labels := m.Labels("C0038454")
	if len(labels) != 2 {
		t.Fatalf("expected C0038454 to map to 2 labels, got %v", labels)
	}
	if !m.HasLabel("C0038454", "stroke") || !m.HasLabel("C0038454", "haemorrhagic stroke") {
		t.Errorf("missing expected labels: %v", labels)
	}
	if m.HasLabel("C0948008", "haemorrhagic stroke") {
		t.Error("C0948008 should map only to stroke")
	}
}

func TestParseMappingPrefName(t *testing.T) {
	m, err := Parse([]byte(sampleMapping))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got := m.Pref("C0948008"); got != "Ischemic stroke" {
		t.Errorf("Pref = %q", got)
	}
}

// Duplicate concept entries under one label collapse to a single label
// membership.
func TestParseMappingDeduplicatesLabels(t *testing.T) {
	src := `{"stroke": ["C0038454\tA\tT", "C0038454\tB\tT"]}`
	m, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got := m.Labels("C0038454"); len(got) != 1 {
		t.Errorf("expected one label, got %v", got)
	}
	// later entries win the preferred name
	if got := m.Pref("C0038454"); got != "B" {
		t.Errorf("Pref = %q, want B", got)
	}
}

func TestCUIOf(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"C0038454\tname\tsty", "C0038454"},
		{"C0038454", "C0038454"},
		{"C003", "C003"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := CUIOf(tc.in); got != tc.want {
			t.Errorf("CUIOf(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestLoadIgnoreLists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ignore.json")
	src := `{"stroke": ["C0038454", "old stroke"]}`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	lists, err := LoadIgnoreLists(path)
	if err != nil {
		t.Fatalf("LoadIgnoreLists failed: %v", err)
	}
	if got := lists["stroke"]; len(got) != 2 {
		t.Errorf("unexpected list: %v", got)
	}
}

func TestLoadMissingFiles(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "absent.json")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Load: expected fs.ErrNotExist, got %v", err)
	}
	if _, err := LoadIgnoreLists(filepath.Join(dir, "absent.json")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("LoadIgnoreLists: expected fs.ErrNotExist, got %v", err)
	}
}
