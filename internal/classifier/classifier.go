// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package classifier provides the supervised backends that decide whether an
// encoded candidate mention should be kept, plus the dimensionality reducer
// optionally applied before fitting. Backends register themselves with the
// default registry and round-trip through gob model files.
package classifier

import (
	"encoding/gob"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Classifier is a trainable binary decision backend. Fit consumes one encoded
// vector per candidate with labels 0 or 1; Predict returns one label per
// input vector.
type Classifier interface {
	Fit(X [][]float64, Y []int) error
	Predict(X [][]float64) ([]int, error)
	Name() string
}

// Factory builds a fresh, unfitted backend instance.
type Factory func() Classifier

// Registry holds the available classifier backends by name.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty backend registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a backend factory under a name.
func (r *Registry) Register(name string, factory Factory) {
	r.factories[name] = factory
}

// New constructs a fresh backend by name.
func (r *Registry) New(name string) (Classifier, bool) {
	factory, ok := r.factories[name]
	if !ok {
		return nil, false
	}
	return factory(), true
}

// List returns the registered backend names, sorted.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global backend registry.
var DefaultRegistry = NewRegistry()

// Register adds a backend factory to the default registry.
func Register(name string, factory Factory) {
	DefaultRegistry.Register(name, factory)
}

// New constructs a backend from the default registry, failing with the list
// of available names when the requested one is unknown.
func New(name string) (Classifier, error) {
	c, ok := DefaultRegistry.New(name)
	if !ok {
		return nil, fmt.Errorf("unsupported classifier '%s'. Available classifiers: %s", name, strings.Join(DefaultRegistry.List(), ", "))
	}
	return c, nil
}

// Save writes a fitted backend to a model file. The concrete type travels in
// the stream, so Load restores the right backend without being told which.
func Save(path string, c Classifier) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating model file: %w", err)
	}
	defer f.Close()
	if err := gob.NewEncoder(f).Encode(&c); err != nil {
		return fmt.Errorf("error encoding model %s: %w", path, err)
	}
	return nil
}

// Load restores a backend from a model file written by Save.
func Load(path string) (Classifier, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening model file: %w", err)
	}
	defer f.Close()
	var c Classifier
	if err := gob.NewDecoder(f).Decode(&c); err != nil {
		return nil, fmt.Errorf("error decoding model %s: %w", path, err)
	}
	return c, nil
}
