// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SplitDump splits a bulk annotation dump, one JSON document per line, into
// per-document files in outputDir. Each output file is named by the docId
// stem (the part before the first dot) with a .json extension. It returns the
// number of documents written.
func SplitDump(dumpPath, outputDir string) (int, error) {
	data, err := os.ReadFile(dumpPath)
	if err != nil {
		return 0, fmt.Errorf("error reading dump: %w", err)
	}

	count := 0
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var head struct {
			DocID string `json:"docId"`
		}
		if err := json.Unmarshal([]byte(line), &head); err != nil {
			return count, fmt.Errorf("dump %s line %d: %w", filepath.Base(dumpPath), i+1, err)
		}
		if head.DocID == "" {
			return count, fmt.Errorf("dump %s line %d: missing docId", filepath.Base(dumpPath), i+1)
		}

		stem := strings.SplitN(head.DocID, ".", 2)[0]
		outPath := filepath.Join(outputDir, stem+".json")
		if err := os.WriteFile(outPath, []byte(line), 0o644); err != nil {
			return count, fmt.Errorf("error writing %s: %w", outPath, err)
		}
		count++
	}
	return count, nil
}

// SplitDumpDir splits every dump file found in dumpDir into outputDir and
// returns the total number of documents written.
func SplitDumpDir(dumpDir, outputDir string) (int, error) {
	names, err := listFiles(dumpDir)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return 0, fmt.Errorf("error creating output directory: %w", err)
	}

	total := 0
	for _, name := range names {
		n, err := SplitDump(filepath.Join(dumpDir, name), outputDir)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
