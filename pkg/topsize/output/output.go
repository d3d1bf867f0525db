// Package output renders scan reports in several formats (pretty, plain,
// json, yaml).
//
// Formatters are looked up by name in a registry:
//
//	formatter, err := output.Get("pretty", output.Options{Unit: output.UnitMiB})
//	if err != nil {
//	    return err
//	}
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, report); err != nil {
//	    return err
//	}
//	fmt.Print(buf.String())
package output

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/jamesainslie/topsize/pkg/topsize/types"
)

// ErrUnknownFormat is returned for a formatter name that is not registered.
var ErrUnknownFormat = errors.New("unknown output format")

// Options controls how formatters present a report.
type Options struct {
	// Unit selects the size column unit.
	Unit Unit

	// Index adds a leading rank column.
	Index bool

	// Width is the terminal width available to table formatters. Zero
	// means unlimited.
	Width int
}

// Formatter writes a report.
type Formatter interface {
	Format(w *bytes.Buffer, r *types.Report) error
}

// FormatterFactory creates a Formatter for the given options.
type FormatterFactory func(opts Options) Formatter

// Registry maps format names to formatter factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]FormatterFactory)}
}

// Register adds or replaces the factory for name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a formatter for name built with opts.
func (r *Registry) Get(name string, opts Options) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
	return factory(opts), nil
}

// Available returns the registered names in sorted order.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// DefaultRegistry holds the built-in formatters.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a formatter from the default registry.
func Get(name string, opts Options) (Formatter, error) {
	return DefaultRegistry.Get(name, opts)
}

// Available returns all formatter names in the default registry.
func Available() []string {
	return DefaultRegistry.Available()
}
