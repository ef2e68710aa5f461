// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package gold reads gold-standard annotation documents: XML files carrying a
// word-per-element text body plus standoff entity markup produced by human
// annotators.
package gold

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"pheno-scan/internal/annotation"
)

// word is one <w> element of a processed sentence. The element id encodes the
// word's character offset in the source text.
type word struct {
	offset int
	text   string
}

type part struct {
	text  string
	sw    int
	hasSW bool
}

type rawEntity struct {
	entType string
	parts   []part
}

// Document is one parsed gold-standard document. Entity offsets are rebased
// onto the first processed word so they line up with the reconstructed full
// text.
type Document struct {
	words    []word
	entities []annotation.GoldEntity
	base     int
}

// Load reads and parses the gold document at path. A missing file surfaces as
// an error satisfying errors.Is(err, fs.ErrNotExist) so callers can tell a
// missing document from an empty one.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading gold document: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("error parsing gold document %s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes a gold document from raw XML.
func Parse(data []byte) (*Document, error) {
	words, raws, err := walk(data)
	if err != nil {
		return nil, err
	}
	d := &Document{words: words, base: -1}
	if len(words) > 0 {
		d.base = words[0].offset
	}
	d.entities = buildEntities(raws, d.base)
	return d, nil
}

// walk streams the XML once, collecting words of processed sentences and raw
// standoff entities. Structural requirements mirror the annotation format:
// words live at p/s[@proc]/w, entities at standoff/ents/ent/parts/part.
type frame struct {
	name string
	proc bool
}

func walk(data []byte) ([]word, []rawEntity, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var (
		stack   []frame
		words   []word
		raws    []rawEntity
		curWord *word
		curPart *part
		curEnt  *rawEntity
		text    strings.Builder
	)
	parent := func(n int) string {
		if len(stack) < n {
			return ""
		}
		return stack[len(stack)-n].name
	}
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("malformed XML: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local
			switch {
			case name == "w" && parent(1) == "s" && parent(2) == "p" && stack[len(stack)-1].proc:
				if off, ok := wordOffset(attr(t, "id")); ok {
					curWord = &word{offset: off}
					text.Reset()
				}
			case name == "ent" && parent(1) == "ents" && parent(2) == "standoff":
				if typ, ok := lookupAttr(t, "type"); ok {
					curEnt = &rawEntity{entType: typ}
				}
			case name == "part" && parent(1) == "parts" && parent(2) == "ent" && curEnt != nil:
				curPart = &part{}
				if off, ok := wordOffset(attr(t, "sw")); ok {
					curPart.sw = off
					curPart.hasSW = true
				}
				text.Reset()
			}
			stack = append(stack, frame{name: name, proc: hasAttr(t, "proc")})
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			switch t.Name.Local {
			case "w":
				if curWord != nil {
					curWord.text = text.String()
					words = append(words, *curWord)
					curWord = nil
				}
			case "part":
				if curPart != nil && curEnt != nil {
					curPart.text = text.String()
					curEnt.parts = append(curEnt.parts, *curPart)
					curPart = nil
				}
			case "ent":
				if curEnt != nil {
					raws = append(raws, *curEnt)
					curEnt = nil
				}
			}
		case xml.CharData:
			if curWord != nil || curPart != nil {
				text.Write(t)
			}
		}
	}
	return words, raws, nil
}

// buildEntities converts raw standoff entities into gold records. Entities
// typed "label:*" are annotation-tool artifacts and dropped. A "neg_" marker
// anywhere in the type flags negation and is stripped. The entity string
// joins all part texts, but its span keeps the window of the last part only.
// Ids are 0-based over the kept entities in document order.
func buildEntities(raws []rawEntity, base int) []annotation.GoldEntity {
	var ents []annotation.GoldEntity
	for _, r := range raws {
		if strings.HasPrefix(r.entType, "label:") {
			continue
		}
		entType := r.entType
		negated := strings.Contains(entType, annotation.NegPrefix)
		if negated {
			entType = strings.ReplaceAll(entType, annotation.NegPrefix, "")
		}
		texts := make([]string, 0, len(r.parts))
		start, end := -1, -1
		for _, p := range r.parts {
			texts = append(texts, p.text)
			if p.hasSW {
				start = p.sw - base
				end = start + utf8.RuneCountInString(p.text)
			}
		}
		ents = append(ents, annotation.GoldEntity{
			Span:    annotation.Span{Text: strings.Join(texts, " "), Start: start, End: end},
			ID:      strconv.Itoa(len(ents)),
			Type:    entType,
			Negated: negated,
		})
	}
	return ents
}

// Entities returns the document's gold entities in document order.
func (d *Document) Entities() []annotation.GoldEntity {
	return d.entities
}

// FullText reconstructs the source text from the word offsets: each word is
// placed at its encoded offset, padding with spaces when the text is behind
// and appending in place when it is not.
func (d *Document) FullText() string {
	var sb strings.Builder
	runeLen := 0
	for _, w := range d.words {
		for off := w.offset - d.base; runeLen < off; runeLen++ {
			sb.WriteByte(' ')
		}
		sb.WriteString(w.text)
		runeLen += utf8.RuneCountInString(w.text)
	}
	return sb.String()
}

// wordOffset decodes the numeric offset from a word id of the form "wNNN".
func wordOffset(id string) (int, bool) {
	if len(id) < 2 {
		return 0, false
	}
	n, err := strconv.Atoi(id[1:])
	if err != nil {
		return 0, false
	}
	return n, true
}

func attr(e xml.StartElement, name string) string {
	v, _ := lookupAttr(e, name)
	return v
}

func lookupAttr(e xml.StartElement, name string) (string, bool) {
	for _, a := range e.Attr {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func hasAttr(e xml.StartElement, name string) bool {
	_, ok := lookupAttr(e, name)
	return ok
}
