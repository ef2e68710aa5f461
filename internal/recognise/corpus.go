// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package recognise

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"pheno-scan/internal/annotation"
	"pheno-scan/internal/concepts"
	"pheno-scan/internal/gold"
	"pheno-scan/internal/observability"
)

// Corpus pairs the annotation records of one directory with the gold
// standards of another. Records are named <stem>.json and gold files
// <stem>-ann.xml, where the stem is the record filename up to its first dot.
type Corpus struct {
	AnnDir   string
	GoldDir  string
	Mapping  *concepts.Mapping
	observer *observability.StandardObserver
}

// NewCorpus describes a corpus split rooted at the two directories.
func NewCorpus(annDir, goldDir string, mapping *concepts.Mapping) *Corpus {
	return &Corpus{AnnDir: annDir, GoldDir: goldDir, Mapping: mapping}
}

// SetObserver attaches an observer handed to every opened document.
func (c *Corpus) SetObserver(obs *observability.StandardObserver) {
	c.observer = obs
}

// Keys lists the document stems of the annotation directory, deduplicated
// and sorted so corpus passes run in a stable order.
func (c *Corpus) Keys() ([]string, error) {
	entries, err := os.ReadDir(c.AnnDir)
	if err != nil {
		return nil, fmt.Errorf("error listing annotation directory: %w", err)
	}
	seen := make(map[string]bool)
	var keys []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		stem := e.Name()
		if i := strings.Index(stem, "."); i >= 0 {
			stem = stem[:i]
		}
		if stem == "" || seen[stem] {
			continue
		}
		seen[stem] = true
		keys = append(keys, stem)
	}
	sort.Strings(keys)
	return keys, nil
}

// Document opens the annotation record for a stem.
func (c *Corpus) Document(key string) (*Recogniser, error) {
	r, err := Open(filepath.Join(c.AnnDir, key+".json"), c.Mapping)
	if err != nil {
		return nil, err
	}
	if c.observer != nil {
		r.SetObserver(c.observer)
	}
	return r, nil
}

// GoldPath returns where the stem's gold standard is expected.
func (c *Corpus) GoldPath(key string) string {
	return filepath.Join(c.GoldDir, key+"-ann.xml")
}

// Gold loads the stem's gold entities. A missing gold file is not an error;
// it reports ok=false so callers can skip unlabelled documents.
func (c *Corpus) Gold(key string) ([]annotation.GoldEntity, bool, error) {
	doc, err := gold.Load(c.GoldPath(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return doc.Entities(), true, nil
}
