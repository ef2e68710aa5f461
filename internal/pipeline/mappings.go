// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"pheno-scan/internal/recognise"
	"pheno-scan/internal/semehr"
)

// MappingsResult carries the concept mapping candidates learnt from the
// labelled corpus and where they were persisted.
type MappingsResult struct {
	// Instances maps each gold label to the sorted concept triples
	// (CUI, preferred name, semantic type) seen overlapping it
	Instances map[string][]string
	// Gazetteers maps each gold label to its deduplicated, sorted
	// lower-cased surface strings
	Gazetteers map[string][]string
	// Defs are the gazetteer definition lines, one per label
	Defs []string

	TablePath string
	IndexPath string
}

// LearnMappings scans every labelled document, collecting which concepts
// co-occur with which gold labels and which surface strings the annotators
// marked. The surface strings seed per-label gazetteer lists; the concept
// triples are candidates for extending the mapping table.
func (p *Pipeline) LearnMappings() (*MappingsResult, error) {
	finishTiming := p.startTiming("learn_mappings", p.cfg.Corpus.AnnDir)

	// Only the raw annotations are needed here, not the mapping table
	corpus := recognise.NewCorpus(p.cfg.Corpus.AnnDir, p.cfg.Corpus.GoldDir, nil)
	if p.observer != nil {
		corpus.SetObserver(p.observer)
	}
	keys, err := corpus.Keys()
	if err != nil {
		return nil, err
	}

	insts := semehr.MappingInstances{}
	missed := make(map[string][]string)
	for _, key := range keys {
		goldEnts, ok, err := corpus.Gold(key)
		if err != nil {
			return nil, fmt.Errorf("error loading gold standard for %s: %w", key, err)
		}
		if !ok {
			p.detail("no gold standard for " + key)
			continue
		}
		doc, err := corpus.Document(key)
		if err != nil {
			return nil, fmt.Errorf("error opening annotations for %s: %w", key, err)
		}
		doc.Document().LearnMappings(goldEnts, insts, missed)
	}

	result := &MappingsResult{
		Instances:  make(map[string][]string, len(insts)),
		Gazetteers: make(map[string][]string, len(missed)),
	}
	for label, set := range insts {
		triples := make([]string, 0, len(set))
		for t := range set {
			triples = append(triples, t)
		}
		sort.Strings(triples)
		result.Instances[label] = triples
	}

	labels := make([]string, 0, len(missed))
	for label := range missed {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		result.Gazetteers[label] = dedupeSorted(missed[label])
		result.Defs = append(result.Defs, label+".lst:"+p.cfg.Mappings.GroupName+":"+label)
	}

	if err := p.writeGazetteers(result); err != nil {
		return nil, err
	}
	if err := p.writeMappingTable(result); err != nil {
		return nil, err
	}

	if finishTiming != nil {
		finishTiming(true, map[string]interface{}{
			"documents": len(keys),
			"labels":    len(labels),
		})
	}
	return result, nil
}

// writeGazetteers persists one .lst file per label plus the definition index
func (p *Pipeline) writeGazetteers(result *MappingsResult) error {
	dir := p.cfg.Mappings.GazetteerDir
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("error creating gazetteer directory: %w", err)
	}
	for label, terms := range result.Gazetteers {
		path := filepath.Join(dir, label+".lst")
		if err := os.WriteFile(path, []byte(strings.Join(terms, "\n")+"\n"), 0o644); err != nil {
			return fmt.Errorf("error writing gazetteer %s: %w", path, err)
		}
	}
	result.IndexPath = filepath.Join(dir, "lists.def")
	if err := os.WriteFile(result.IndexPath, []byte(strings.Join(result.Defs, "\n")+"\n"), 0o644); err != nil {
		return fmt.Errorf("error writing gazetteer index: %w", err)
	}
	return nil
}

// writeMappingTable persists the concept triple candidates as JSON
func (p *Pipeline) writeMappingTable(result *MappingsResult) error {
	path := p.cfg.Mappings.OutputFile
	if path == "" {
		return nil
	}
	data, err := json.MarshalIndent(result.Instances, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding mapping table: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("error writing mapping table %s: %w", path, err)
	}
	result.TablePath = path
	return nil
}

// dedupeSorted returns the unique values of list, sorted
func dedupeSorted(list []string) []string {
	seen := make(map[string]bool, len(list))
	var out []string
	for _, v := range list {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
