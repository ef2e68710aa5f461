// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"fmt"

	"pheno-scan/internal/eval"
)

// ValidationResult carries the per-label reconciliation rows for the
// candidate sets the run was asked to report.
type ValidationResult struct {
	Mapped   []eval.Row
	Combined []eval.Row
}

// Validate reconciles the labelled corpus against its gold standard. The
// reconcile setting picks which candidate sets are scored: the mapped
// concept mentions, the combined mention stream, or both.
func (p *Pipeline) Validate() (*ValidationResult, error) {
	finishTiming := p.startTiming("validate", p.cfg.Corpus.AnnDir)

	mapping, err := p.loadMapping()
	if err != nil {
		return nil, err
	}
	corpus := p.trainCorpus(mapping)
	keys, err := corpus.Keys()
	if err != nil {
		return nil, err
	}

	var mapped, combined eval.Set
	switch p.cfg.Defaults.Reconcile {
	case "mapped":
		mapped = eval.Set{}
	case "combined":
		combined = eval.Set{}
	default:
		mapped = eval.Set{}
		combined = eval.Set{}
	}

	skipped := 0
	for _, key := range keys {
		goldEnts, ok, err := corpus.Gold(key)
		if err != nil {
			return nil, fmt.Errorf("error loading gold standard for %s: %w", key, err)
		}
		if !ok {
			skipped++
			p.detail("no gold standard for " + key)
			continue
		}
		doc, err := corpus.Document(key)
		if err != nil {
			return nil, fmt.Errorf("error opening annotations for %s: %w", key, err)
		}
		if mapped != nil {
			doc.ValidateMapped(goldEnts, mapped)
		}
		if combined != nil {
			doc.ValidateCombined(goldEnts, combined)
		}
	}

	result := &ValidationResult{}
	if mapped != nil {
		result.Mapped = mapped.Rows()
		if err := p.saveRun("validate:mapped", result.Mapped); err != nil {
			return nil, err
		}
	}
	if combined != nil {
		result.Combined = combined.Rows()
		if err := p.saveRun("validate:combined", result.Combined); err != nil {
			return nil, err
		}
	}

	if finishTiming != nil {
		finishTiming(true, map[string]interface{}{
			"documents": len(keys),
			"skipped":   skipped,
		})
	}
	return result, nil
}
