package container

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultMaxDepth bounds the resolve call chain. Exceeding it is reported as a
// circular dependency.
const DefaultMaxDepth = 512

// ── Binding types ─────────────────────────────────────────────────────────────

// Enricher transforms a resolved instance before it is handed out.
type Enricher func(instance any) any

// lookupMode selects whether a lookup may fall through to the parent.
type lookupMode uint8

const (
	lookupHierarchy lookupMode = iota
	lookupLocal
)

// ── Container ─────────────────────────────────────────────────────────────────

// Container maps registration types to implementations and builds object
// graphs from constructor metadata.
//
// It supports:
//   - RegisterImplementation / RegisterInstance with fluent builders
//   - As (bind under an interface or base type), AsSingleton, Inject, Enrich
//   - Resolve (reflect.Type) and Resolve[T] (generic)
//   - Child scopes that override parent bindings without mutating them
type Container struct {
	mu sync.RWMutex

	// registration type → pre-built instance
	instances map[reflect.Type]any

	// registration type → implementation type
	dependencies map[reflect.Type]reflect.Type

	// registration type → post-construction transform
	enrichCallbacks map[reflect.Type]Enricher

	// implementation type → how to build it
	constructors map[reflect.Type]*Constructor

	// implementation type → cached singleton; only the root's map is used
	singletons map[reflect.Type]any

	parent     *Container
	store      *MetadataStore
	baseLogger zerolog.Logger
	logger     zerolog.Logger
	maxDepth   int
	id         string
}

// Option configures a Container.
type Option func(o *options)

type options struct {
	parent   *Container
	store    *MetadataStore
	logger   *zerolog.Logger
	maxDepth int
}

// WithParent makes the container a child scope of parent.
func WithParent(parent *Container) Option {
	return func(o *options) { o.parent = parent }
}

// WithMetadataStore isolates the container's metadata from the default store.
func WithMetadataStore(store *MetadataStore) Option {
	return func(o *options) { o.store = store }
}

// WithLogger sets the logger used for registration and resolution events.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = &logger }
}

// WithMaxDepth overrides DefaultMaxDepth.
func WithMaxDepth(depth int) Option {
	return func(o *options) { o.maxDepth = depth }
}

// New creates an empty container.
//
// A child created WithParent inherits the parent's store, logger and depth
// limit unless the options override them.
func New(opts ...Option) *Container {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	c := &Container{
		instances:       make(map[reflect.Type]any),
		dependencies:    make(map[reflect.Type]reflect.Type),
		enrichCallbacks: make(map[reflect.Type]Enricher),
		constructors:    make(map[reflect.Type]*Constructor),
		singletons:      make(map[reflect.Type]any),
		parent:          o.parent,
		store:           DefaultMetadataStore(),
		logger:          zerolog.Nop(),
		maxDepth:        DefaultMaxDepth,
		id:              uuid.NewString(),
	}

	if p := o.parent; p != nil {
		c.store, c.logger, c.maxDepth = p.store, p.baseLogger, p.maxDepth
	}
	if o.store != nil {
		c.store = o.store
	}
	if o.logger != nil {
		c.logger = *o.logger
	}
	if o.maxDepth > 0 {
		c.maxDepth = o.maxDepth
	}

	c.baseLogger = c.logger
	c.logger = c.logger.With().Str("scope", c.id).Logger()
	return c
}

// ── Registration ──────────────────────────────────────────────────────────────

// RegisterImplementation describes ctor and binds the type it builds to itself.
//
//	c.RegisterImplementation(NewSMTPMailer).As(container.TypeOf[Mailer]()).AsSingleton()
//
// It panics when ctor is not a func(...) T or func(...) (T, error).
func (c *Container) RegisterImplementation(ctor any) *RegisteredImplementation {
	k, err := Describe(ctor)
	if err != nil {
		panic(err)
	}
	impl := k.Type
	c.putConstructor(k)
	c.store.FindOrCreateMetadata(impl)
	c.bindImplementation(impl, impl)
	return &RegisteredImplementation{container: c, implementation: impl, key: impl}
}

// RegisterInstance binds a pre-built value under its own dynamic type.
//
//	c.RegisterInstance(cfg).As(container.TypeOf[Settings]())
func (c *Container) RegisterInstance(instance any) *RegisteredInstance {
	if instance == nil {
		panic("container: cannot register a nil instance")
	}
	key := reflect.TypeOf(instance)
	c.putInstance(key, instance)
	return &RegisteredInstance{container: c, instance: instance, key: key}
}

// bindImplementation sets key → impl; the last registration wins.
func (c *Container) bindImplementation(key, impl reflect.Type) {
	c.mu.Lock()
	prev, overridden := c.dependencies[key]
	c.dependencies[key] = impl
	c.mu.Unlock()

	event := c.logger.Debug().Stringer("key", key).Stringer("implementation", impl)
	if overridden && prev != impl {
		event = event.Stringer("previous", prev)
	}
	event.Msg("container: implementation registered")
}

// unbindImplementation removes key only while it is still bound to impl, so
// a stale builder cannot drop a newer registration.
func (c *Container) unbindImplementation(key, impl reflect.Type) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dependencies[key] == impl {
		delete(c.dependencies, key)
	}
}

func (c *Container) putConstructor(k *Constructor) {
	c.mu.Lock()
	_, overridden := c.constructors[k.Type]
	c.constructors[k.Type] = k
	c.mu.Unlock()

	c.logger.Debug().Stringer("implementation", k.Type).Bool("overridden", overridden).Msg("container: constructor registered")
}

// SaveConstructorMetadata records the ordered dependency list used to build t
// in this container. A constructor function already visible for t is kept.
//
// It is the entry point for tools that generate registrations instead of
// passing constructor funcs.
func (c *Container) SaveConstructorMetadata(t reflect.Type, deps ...Dependency) {
	k := &Constructor{Type: t, Dependencies: append([]Dependency(nil), deps...)}
	if prev, ok := c.getConstructor(t, lookupHierarchy); ok {
		k.Func = prev.Func
	}
	c.putConstructor(k)
	c.store.FindOrCreateMetadata(t)
}

// ConstructorOf returns the constructor visible for impl from this container.
func (c *Container) ConstructorOf(impl reflect.Type) (*Constructor, bool) {
	return c.getConstructor(impl, lookupHierarchy)
}

func (c *Container) putInstance(key reflect.Type, instance any) {
	c.mu.Lock()
	_, overridden := c.instances[key]
	c.instances[key] = instance
	c.mu.Unlock()

	c.logger.Debug().Stringer("key", key).Bool("overridden", overridden).Msg("container: instance registered")
}

func (c *Container) removeInstance(key reflect.Type) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.instances, key)
}

func (c *Container) putEnrichCallback(key reflect.Type, fn Enricher) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if fn == nil {
		delete(c.enrichCallbacks, key)
		return
	}
	c.enrichCallbacks[key] = fn
}

// moveEnrichCallback rebinds a local enrich callback from one key to another.
func (c *Container) moveEnrichCallback(from, to reflect.Type) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if fn, ok := c.enrichCallbacks[from]; ok {
		delete(c.enrichCallbacks, from)
		c.enrichCallbacks[to] = fn
	}
}

// ── Lookups ───────────────────────────────────────────────────────────────────

func (c *Container) getInstance(key reflect.Type, mode lookupMode) (any, bool) {
	c.mu.RLock()
	v, ok := c.instances[key]
	c.mu.RUnlock()
	if !ok && mode == lookupHierarchy && c.parent != nil {
		return c.parent.getInstance(key, mode)
	}
	return v, ok
}

func (c *Container) getImplementation(key reflect.Type, mode lookupMode) (reflect.Type, bool) {
	c.mu.RLock()
	v, ok := c.dependencies[key]
	c.mu.RUnlock()
	if !ok && mode == lookupHierarchy && c.parent != nil {
		return c.parent.getImplementation(key, mode)
	}
	return v, ok
}

func (c *Container) getConstructor(impl reflect.Type, mode lookupMode) (*Constructor, bool) {
	c.mu.RLock()
	k, ok := c.constructors[impl]
	c.mu.RUnlock()
	if !ok && mode == lookupHierarchy && c.parent != nil {
		return c.parent.getConstructor(impl, mode)
	}
	return k, ok
}

func (c *Container) getEnrichCallback(key reflect.Type, mode lookupMode) Enricher {
	c.mu.RLock()
	fn := c.enrichCallbacks[key]
	c.mu.RUnlock()
	if fn == nil && mode == lookupHierarchy && c.parent != nil {
		return c.parent.getEnrichCallback(key, mode)
	}
	return fn
}

// getSingleton reads the singleton cache, which always lives on the root.
func (c *Container) getSingleton(impl reflect.Type) (any, bool) {
	root := c.Root()
	root.mu.RLock()
	defer root.mu.RUnlock()
	v, ok := root.singletons[impl]
	return v, ok
}

// putSingleton caches instance on the root. If another call cached one first,
// that instance is kept and returned.
func (c *Container) putSingleton(impl reflect.Type, instance any) any {
	root := c.Root()
	root.mu.Lock()
	defer root.mu.Unlock()
	if existing, ok := root.singletons[impl]; ok {
		return existing
	}
	root.singletons[impl] = instance
	return instance
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// Bound reports whether t has an instance or implementation registered in
// this container or any ancestor.
func (c *Container) Bound(t reflect.Type) bool {
	return c.bound(t, lookupHierarchy)
}

// BoundLocally reports whether t is registered directly in this container,
// ignoring ancestors.
func (c *Container) BoundLocally(t reflect.Type) bool {
	return c.bound(t, lookupLocal)
}

func (c *Container) bound(t reflect.Type, mode lookupMode) bool {
	if _, ok := c.getInstance(t, mode); ok {
		return true
	}
	_, ok := c.getImplementation(t, mode)
	return ok
}

// Clear empties every table of this container. Parents are untouched.
func (c *Container) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.instances = make(map[reflect.Type]any)
	c.dependencies = make(map[reflect.Type]reflect.Type)
	c.enrichCallbacks = make(map[reflect.Type]Enricher)
	c.constructors = make(map[reflect.Type]*Constructor)
	c.singletons = make(map[reflect.Type]any)
	c.logger.Debug().Msg("container: cleared")
}

// Close clears the container so it can be used with defer on scope exit.
func (c *Container) Close() error {
	c.Clear()
	return nil
}

// Parent returns the parent container or nil for a root.
func (c *Container) Parent() *Container { return c.parent }

// Root returns the topmost ancestor, which owns the singleton cache.
func (c *Container) Root() *Container {
	root := c
	for root.parent != nil {
		root = root.parent
	}
	return root
}

// ID returns the unique scope id used in log events.
func (c *Container) ID() string { return c.id }

// Store returns the metadata store the container reads and writes.
func (c *Container) Store() *MetadataStore { return c.store }

// Logger returns the container's logger.
func (c *Container) Logger() zerolog.Logger { return c.logger }

// Bindings returns every registration type known locally (for debugging).
func (c *Container) Bindings() []reflect.Type {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]reflect.Type, 0, len(c.dependencies)+len(c.instances))
	for k := range c.dependencies {
		out = append(out, k)
	}
	for k := range c.instances {
		if _, already := c.dependencies[k]; !already {
			out = append(out, k)
		}
	}
	return out
}

// ── Generics helper ───────────────────────────────────────────────────────────

// Resolve resolves T and type-asserts the result. A nil result yields the
// zero value of T and a nil error.
//
//	mailer, err := container.Resolve[Mailer](c)
func Resolve[T any](c *Container, args ...any) (T, error) {
	var zero T
	instance, err := c.Resolve(TypeOf[T](), args...)
	if err != nil || instance == nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("%w: Resolve[%s] produced %T", ErrArgumentType, TypeOf[T](), instance)
	}
	return typed, nil
}

// MustResolve is like Resolve but panics on error.
func MustResolve[T any](c *Container, args ...any) T {
	typed, err := Resolve[T](c, args...)
	if err != nil {
		panic(err)
	}
	return typed
}
