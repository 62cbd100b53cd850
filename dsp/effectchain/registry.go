package effectchain

import (
	"errors"
	"fmt"
)

// Node kinds understood by Native.
const (
	KindEQ     = "eq"
	KindFilter = "filter"
	KindReverb = "reverb"
	KindMeter  = "meter"
	KindGain   = "gain"
)

var (
	// ErrUnknownNode is returned when a kind has no registered factory.
	ErrUnknownNode = errors.New("effectchain: unknown node kind")

	// ErrNodeType is returned when a factory builds a node lacking the
	// capability its kind requires.
	ErrNodeType = errors.New("effectchain: node does not implement kind")

	errDuplicateNode = errors.New("effectchain: duplicate node kind")
)

// Factory builds one node instance.
type Factory func(ctx Context) (Processor, error)

// Registry maps node kinds to their factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory for kind.
func (r *Registry) Register(kind string, factory Factory) error {
	if kind == "" {
		return errors.New("effectchain: empty node kind")
	}

	if factory == nil {
		return errors.New("effectchain: nil factory")
	}

	if _, exists := r.factories[kind]; exists {
		return fmt.Errorf("%w: %s", errDuplicateNode, kind)
	}

	r.factories[kind] = factory

	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(kind string, factory Factory) {
	if err := r.Register(kind, factory); err != nil {
		panic(err.Error())
	}
}

// Replace installs factory for kind, overriding any previous one.
func (r *Registry) Replace(kind string, factory Factory) {
	if kind == "" || factory == nil {
		return
	}

	r.factories[kind] = factory
}

// Lookup returns the factory for kind, or nil.
func (r *Registry) Lookup(kind string) Factory {
	return r.factories[kind]
}

// Build runs the factory registered for kind.
func (r *Registry) Build(kind string, ctx Context) (Processor, error) {
	f := r.factories[kind]
	if f == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, kind)
	}

	return f(ctx)
}
