package effectchain

import (
	"errors"
	"testing"
)

type plainNode struct{}

func (plainNode) Process([][]float64) {}

func TestRegistryRegister(t *testing.T) {
	t.Parallel()

	factory := func(Context) (Processor, error) { return plainNode{}, nil }

	r := NewRegistry()
	if err := r.Register("x", factory); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if r.Lookup("x") == nil {
		t.Fatal("Lookup returned nil for registered kind")
	}

	if err := r.Register("x", factory); err == nil {
		t.Fatal("expected duplicate error")
	}

	if err := r.Register("", factory); err == nil {
		t.Fatal("expected empty kind error")
	}

	if err := r.Register("y", nil); err == nil {
		t.Fatal("expected nil factory error")
	}

	if _, err := r.Build("missing", Context{}); !errors.Is(err, ErrUnknownNode) {
		t.Fatalf("Build missing = %v, want ErrUnknownNode", err)
	}
}

func TestNativeRejectsWrongNodeType(t *testing.T) {
	t.Parallel()

	r := DefaultRegistry()
	r.Replace(KindEQ, func(Context) (Processor, error) { return plainNode{}, nil })

	b, err := NewNative(Context{SampleRate: testRate, Channels: 2}, r)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := b.NewEQ(); !errors.Is(err, ErrNodeType) {
		t.Fatalf("NewEQ = %v, want ErrNodeType", err)
	}

	if _, err := NewGraph(b); err != nil {
		t.Fatalf("graph without EQ: %v", err)
	}

	g, _ := NewGraph(b)
	if _, err := g.Create(0, nil); !errors.Is(err, ErrNodeType) {
		t.Fatalf("Create = %v, want ErrNodeType", err)
	}
}

func TestNewNativeValidatesContext(t *testing.T) {
	t.Parallel()

	if _, err := NewNative(Context{SampleRate: 0, Channels: 2}, nil); err == nil {
		t.Fatal("expected error for zero sample rate")
	}

	if _, err := NewNative(Context{SampleRate: 44100}, nil); err == nil {
		t.Fatal("expected error for zero channels")
	}
}
