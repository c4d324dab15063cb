package container

import (
	"fmt"
	"reflect"
)

// RegisteredImplementation is the fluent builder returned by
// RegisterImplementation.
//
//	c.RegisterImplementation(NewRedisCache).
//	    AsSingleton(container.TypeOf[Cache]()).
//	    Inject("redis://localhost:6379").
//	    Enrich(func(v any) any { return &TracingCache{Inner: v.(Cache)} })
type RegisteredImplementation struct {
	container      *Container
	implementation reflect.Type
	key            reflect.Type
}

// As rebinds the implementation from its current key to base. An enrich
// callback registered on the old key follows the binding.
//
// It panics when the implementation is not assignable to base.
func (r *RegisteredImplementation) As(base reflect.Type) *RegisteredImplementation {
	mustAssign(r.implementation, base)
	if base == r.key {
		return r
	}
	r.container.unbindImplementation(r.key, r.implementation)
	r.container.bindImplementation(base, r.implementation)
	r.container.moveEnrichCallback(r.key, base)
	r.key = base
	return r
}

// AsSingleton marks the implementation as singleton and optionally rebinds it
// to base. The flag lives in the metadata store and is therefore seen by every
// container sharing that store.
func (r *RegisteredImplementation) AsSingleton(base ...reflect.Type) *RegisteredImplementation {
	r.container.store.update(r.implementation, func(m *Metadata) { m.Singleton = true })
	r.container.logger.Debug().Stringer("implementation", r.implementation).Msg("container: marked singleton")
	if len(base) > 0 && base[0] != nil {
		return r.As(base[0])
	}
	return r
}

// Inject stores literal values used to fill placeholder constructor slots,
// in order. A later call replaces the previous values.
func (r *RegisteredImplementation) Inject(params ...any) *RegisteredImplementation {
	injected := append([]any(nil), params...)
	r.container.store.update(r.implementation, func(m *Metadata) { m.Injected = injected })
	return r
}

// DependsOn overrides the dependency list discovered from the constructor
// signature. A nil entry declares a placeholder slot.
//
//	// NewReport(db *sql.DB, title string, clock Clock)
//	c.RegisterImplementation(NewReport).
//	    DependsOn(container.TypeOf[*sql.DB](), nil, container.TypeOf[Clock]()).
//	    Inject("weekly")
func (r *RegisteredImplementation) DependsOn(deps ...reflect.Type) *RegisteredImplementation {
	list := make([]Dependency, len(deps))
	for i, t := range deps {
		if t == nil {
			list[i] = PlaceholderFor(PlaceholderUnknown)
			continue
		}
		list[i] = DependencyOn(t)
	}
	r.container.store.update(r.implementation, func(m *Metadata) { m.InjectDependencies = list })
	return r
}

// Enrich registers fn to transform instances resolved under the current key.
func (r *RegisteredImplementation) Enrich(fn Enricher) *RegisteredImplementation {
	r.container.putEnrichCallback(r.key, fn)
	return r
}

// Key returns the registration type the implementation is bound under.
func (r *RegisteredImplementation) Key() reflect.Type { return r.key }

// Implementation returns the type the constructor builds.
func (r *RegisteredImplementation) Implementation() reflect.Type { return r.implementation }

// ── RegisteredInstance ────────────────────────────────────────────────────────

// RegisteredInstance is the fluent builder returned by RegisterInstance.
type RegisteredInstance struct {
	container *Container
	instance  any
	key       reflect.Type
}

// As rebinds the instance from its current key to base.
//
// It panics when the instance is not assignable to base.
func (r *RegisteredInstance) As(base reflect.Type) *RegisteredInstance {
	mustAssign(reflect.TypeOf(r.instance), base)
	if base == r.key {
		return r
	}
	r.container.removeInstance(r.key)
	r.container.putInstance(base, r.instance)
	r.container.moveEnrichCallback(r.key, base)
	r.key = base
	return r
}

// Enrich registers fn to transform the instance each time it is resolved
// under the current key.
func (r *RegisteredInstance) Enrich(fn Enricher) *RegisteredInstance {
	r.container.putEnrichCallback(r.key, fn)
	return r
}

// Key returns the registration type the instance is bound under.
func (r *RegisteredInstance) Key() reflect.Type { return r.key }

func mustAssign(from, to reflect.Type) {
	if to == nil {
		panic("container: As requires a non-nil type")
	}
	if !from.AssignableTo(to) {
		panic(fmt.Sprintf("container: %s is not assignable to %s", from, to))
	}
}
