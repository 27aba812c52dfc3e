package roundtrip

import (
	"errors"
	"fmt"
	"net/netip"
	"reflect"
	"sort"
	"sync"
	"time"
)

// ErrNoRelation is returned when no relation is registered for a type pair.
var ErrNoRelation = errors.New("roundtrip: no relation registered")

// Pair identifies a registered relation.
type Pair struct {
	Source reflect.Type
	Target reflect.Type
}

func (p Pair) String() string {
	return fmt.Sprintf("%s -> %s", p.Source, p.Target)
}

// Registry maps (source, target) type pairs to relations. It serves callers
// that hold values behind interfaces, where the relation cannot be chosen
// at compile time. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	relations map[Pair]AnyRelation
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		relations: make(map[Pair]AnyRelation),
	}
}

// Add stores rel under its own type pair, replacing any earlier entry.
func (r *Registry) Add(rel AnyRelation) {
	source, target := rel.Types()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.relations[Pair{Source: source, Target: target}] = rel
}

// Lookup returns the relation registered for source -> target.
func (r *Registry) Lookup(source, target reflect.Type) (AnyRelation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rel, ok := r.relations[Pair{Source: source, Target: target}]
	return rel, ok
}

// Pairs returns every registered pair, sorted by name.
func (r *Registry) Pairs() []Pair {
	r.mu.RLock()
	pairs := make([]Pair, 0, len(r.relations))
	for p := range r.relations {
		pairs = append(pairs, p)
	}
	r.mu.RUnlock()

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].String() < pairs[j].String()
	})
	return pairs
}

// Transform applies the relation registered for v's dynamic type and target.
func (r *Registry) Transform(v any, target reflect.Type) (any, error) {
	source := reflect.TypeOf(v)
	rel, ok := r.Lookup(source, target)
	if !ok {
		return nil, fmt.Errorf("%w: %s -> %s", ErrNoRelation, source, target)
	}
	return rel.RoundTrip(v), nil
}

// Register adds rel to r.
func Register[S, T any](r *Registry, rel Relation[S, T]) {
	r.Add(Erase(rel))
}

// Convert round-trips v to T through r.
func Convert[T any](r *Registry, v any) (T, error) {
	var zero T
	out, err := r.Transform(v, reflect.TypeFor[T]())
	if err != nil {
		return zero, err
	}
	if out == nil {
		return zero, nil
	}
	return out.(T), nil
}

// Default is the registry generated code registers into. It starts with the
// scalar leaves.
var Default = NewRegistry()

// To round-trips v to T through Default.
func To[T any](v any) (T, error) {
	return Convert[T](Default, v)
}

func init() {
	registerLeaves(Default)
}

func registerLeaves(r *Registry) {
	Register(r, Copy[bool]())
	Register(r, Copy[int]())
	Register(r, Copy[int8]())
	Register(r, Copy[int16]())
	Register(r, Copy[int32]())
	Register(r, Copy[int64]())
	Register(r, Copy[uint]())
	Register(r, Copy[uint8]())
	Register(r, Copy[uint16]())
	Register(r, Copy[uint32]())
	Register(r, Copy[uint64]())
	Register(r, Copy[float32]())
	Register(r, Copy[float64]())
	Register(r, String[string, string]())
	Register(r, Bytes[[]byte, []byte]())
	Register(r, Marker[struct{}, struct{}]())
	Register(r, Copy[time.Duration]())
	Register(r, Copy[netip.Addr]())
	Register(r, Copy[netip.AddrPort]())
	Register(r, Copy[netip.Prefix]())
}
