package binrange

import (
	"github.com/pkg/errors"
)

type registration struct {
	ctor   Constructor
	format Formatter
}

// Registry maps a values source type to the constructor that aggregates it
// and the formatter its values are rendered with. A Registry is immutable
// and safe to share.
type Registry struct {
	entries map[ValuesSourceType]registration
}

type RegistryBuilder struct {
	entries map[ValuesSourceType]registration
}

func NewRegistryBuilder() *RegistryBuilder {
	return &RegistryBuilder{entries: make(map[ValuesSourceType]registration)}
}

// Register replaces any earlier registration for typ.
func (b *RegistryBuilder) Register(typ ValuesSourceType, ctor Constructor, format Formatter) *RegistryBuilder {
	b.entries[typ] = registration{ctor: ctor, format: format}
	return b
}

func (b *RegistryBuilder) Build() *Registry {
	entries := make(map[ValuesSourceType]registration, len(b.entries))
	for k, v := range b.entries {
		entries[k] = v
	}
	return &Registry{entries: entries}
}

func (r *Registry) Lookup(typ ValuesSourceType) (Constructor, Formatter, error) {
	e, ok := r.entries[typ]
	if !ok {
		return nil, nil, errors.Wrapf(ErrUnknownValuesSourceType, "%q", typ)
	}
	return e.ctor, e.format, nil
}

// RegisterAggregators adds the built-in range aggregators.
func RegisterAggregators(b *RegistryBuilder) {
	b.Register(ValuesSourceIP, NewRangeAggregator, IPFormat)
}

func DefaultRegistry() *Registry {
	b := NewRegistryBuilder()
	RegisterAggregators(b)
	return b.Build()
}
