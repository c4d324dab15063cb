package container

import (
	"reflect"
	"sync"
)

// ── Dependency descriptors ────────────────────────────────────────────────────

// Placeholder markers written by Describe for parameters that are not
// resolvable dependency types.
const (
	PlaceholderPrimitive = "primitive type"
	PlaceholderUnknown   = "unknown type"
)

// Dependency describes one constructor position. A nil Type marks a
// placeholder slot that is filled from injection parameters.
type Dependency struct {
	Type        reflect.Type
	Placeholder string
}

// DependencyOn returns a descriptor for a resolvable type.
func DependencyOn(t reflect.Type) Dependency {
	return Dependency{Type: t}
}

// PlaceholderFor returns a placeholder descriptor with the given reason.
func PlaceholderFor(reason string) Dependency {
	return Dependency{Placeholder: reason}
}

// IsPlaceholder reports whether the slot must be taken from injection parameters.
func (d Dependency) IsPlaceholder() bool { return d.Type == nil }

func (d Dependency) String() string {
	if d.Type == nil {
		return "<" + d.Placeholder + ">"
	}
	return d.Type.String()
}

// ── Metadata ──────────────────────────────────────────────────────────────────

// Metadata holds the per-implementation flags shared by every container that
// uses the same MetadataStore.
//
// Records are keyed by the exact implementation type and created with Class
// set to that key; there is no lookup through embedded or related types. How
// a type is built is not part of the record: constructors belong to the
// container that registered them, see Constructor.
type Metadata struct {
	Class reflect.Type

	Singleton bool

	// InjectDependencies are explicit per-parameter annotations and win over
	// the dependencies discovered from the constructor.
	InjectDependencies []Dependency

	// Injected holds literal values supplied with Inject at registration.
	Injected []any
}

// ── MetadataStore ─────────────────────────────────────────────────────────────

// MetadataStore is a side-table of Metadata keyed by implementation type.
//
// Containers share DefaultMetadataStore unless created WithMetadataStore, so
// flags such as Singleton set through one container are visible to every
// container using the same store.
type MetadataStore struct {
	mu      sync.RWMutex
	records map[reflect.Type]*Metadata
}

var defaultStore = NewMetadataStore()

// DefaultMetadataStore returns the process-wide store.
func DefaultMetadataStore() *MetadataStore { return defaultStore }

// NewMetadataStore creates an empty, isolated store.
func NewMetadataStore() *MetadataStore {
	return &MetadataStore{records: make(map[reflect.Type]*Metadata)}
}

// FindMetadata returns the record of t, if any.
func (s *MetadataStore) FindMetadata(t reflect.Type) (*Metadata, bool) {
	if t == nil {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.records[t]
	return m, ok
}

// FindOrCreateMetadata returns the record of t, creating an empty one.
func (s *MetadataStore) FindOrCreateMetadata(t reflect.Type) *Metadata {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findOrCreate(t)
}

// Reset drops every record.
func (s *MetadataStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[reflect.Type]*Metadata)
}

// update applies fn to the record of t under the write lock.
func (s *MetadataStore) update(t reflect.Type, fn func(m *Metadata)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.findOrCreate(t))
}

// snapshot returns a copy of the record of t that is safe to read without
// holding the lock.
func (s *MetadataStore) snapshot(t reflect.Type) (Metadata, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.records[t]
	if !ok {
		return Metadata{}, false
	}
	return *m, true
}

// findOrCreate must be called with mu held for writing.
func (s *MetadataStore) findOrCreate(t reflect.Type) *Metadata {
	if m, ok := s.records[t]; ok {
		return m
	}
	m := &Metadata{Class: t}
	s.records[t] = m
	return m
}
