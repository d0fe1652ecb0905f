package format

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Factory decodes and instantiates one format.
type Factory struct {
	// Decode turns a YAML node into a descriptor. node may be nil, in which
	// case defaults apply.
	Decode func(node *yaml.Node) (Descriptor, error)
	// New creates a handler from a descriptor produced by Decode.
	New func(desc Descriptor) (Handler, error)
}

// Registry maps format kinds to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[Kind]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[Kind]Factory)}
}

// Register adds a factory. Registering the same kind twice is an error.
func (r *Registry) Register(kind Kind, f Factory) error {
	if kind == "" {
		return fmt.Errorf("format kind is empty")
	}
	if f.Decode == nil || f.New == nil {
		return fmt.Errorf("format %s: factory is incomplete", kind)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[kind]; ok {
		return fmt.Errorf("format %s is already registered", kind)
	}
	r.factories[kind] = f
	return nil
}

// Kinds returns the registered kinds in sorted order.
func (r *Registry) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Kind, 0, len(r.factories))
	for k := range r.factories {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (r *Registry) lookup(kind Kind) (Factory, error) {
	r.mu.RLock()
	f, ok := r.factories[kind]
	r.mu.RUnlock()
	if !ok {
		names := make([]string, 0)
		for _, k := range r.Kinds() {
			names = append(names, string(k))
		}
		return Factory{}, fmt.Errorf("%w %q (registered: %s)", ErrUnknownKind, kind, strings.Join(names, ", "))
	}
	return f, nil
}

// Decode reads the "type" key of node and decodes the rest with the
// matching factory.
func (r *Registry) Decode(node *yaml.Node) (Descriptor, error) {
	if node == nil || node.Kind == 0 {
		return nil, fmt.Errorf("%w: format is missing", ErrInvalidDescriptor)
	}
	var probe struct {
		Type string `yaml:"type"`
	}
	if err := node.Decode(&probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDescriptor, err)
	}
	if strings.TrimSpace(probe.Type) == "" {
		return nil, fmt.Errorf("%w: format type is missing", ErrInvalidDescriptor)
	}
	return r.DecodeKind(ParseKind(probe.Type), node)
}

// DecodeKind decodes node with the factory registered for kind.
func (r *Registry) DecodeKind(kind Kind, node *yaml.Node) (Descriptor, error) {
	f, err := r.lookup(kind)
	if err != nil {
		return nil, err
	}
	desc, err := f.Decode(node)
	if err != nil {
		return nil, fmt.Errorf("format %s: %w", kind, err)
	}
	return desc, nil
}

// Handler creates a handler for desc.
func (r *Registry) Handler(desc Descriptor) (Handler, error) {
	if desc == nil {
		return nil, fmt.Errorf("%w: format is missing", ErrInvalidDescriptor)
	}
	f, err := r.lookup(desc.Kind())
	if err != nil {
		return nil, err
	}
	h, err := f.New(desc)
	if err != nil {
		return nil, fmt.Errorf("format %s: %w", desc.Kind(), err)
	}
	return h, nil
}
