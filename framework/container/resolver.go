package container

import (
	"errors"
	"fmt"
	"math"
	"reflect"
)

// ── Resolution ────────────────────────────────────────────────────────────────

// Resolve builds an instance for t and passes it through the enrich callback
// bound to t.
//
// Unregistered types fall back to being their own implementation. Types that
// cannot be constructed (nil, unbound interfaces, primitives) resolve to nil
// without an error. args are appended to the values given with Inject and
// fill constructor slots in order.
//
//	v, err := c.Resolve(container.TypeOf[Mailer]())
func (c *Container) Resolve(t reflect.Type, args ...any) (any, error) {
	instance, err := c.resolve(nil, t, args)
	if err != nil {
		var circular *CircularDependencyError
		if errors.As(err, &circular) {
			c.logger.Warn().Stringer("type", t).Err(err).Msg("container: resolve failed")
		}
		return nil, err
	}
	return c.enrich(t, instance), nil
}

// enrich applies the callback bound to t, if any.
func (c *Container) enrich(t reflect.Type, instance any) any {
	if instance == nil {
		return nil
	}
	if fn := c.getEnrichCallback(t, lookupHierarchy); fn != nil {
		return fn(instance)
	}
	return instance
}

// resolve is the recursive step. It never applies the enrich callback of t;
// callers do that once per handed-out value.
func (c *Container) resolve(trace *Trace, t reflect.Type, args []any) (any, error) {
	if t == nil {
		return nil, nil
	}

	// Instances short-circuit everything else.
	if instance, ok := c.getInstance(t, lookupHierarchy); ok {
		return instance, nil
	}

	impl, ok := c.getImplementation(t, lookupHierarchy)
	if !ok {
		impl = t
	}

	ctor, _ := c.getConstructor(impl, lookupHierarchy)
	if !constructible(impl, ctor) {
		return nil, nil
	}

	meta, _ := c.store.snapshot(impl)

	if meta.Singleton {
		if instance, ok := c.getSingleton(impl); ok {
			return instance, nil
		}
	}

	trace = trace.Add(t, impl)
	if trace.Depth() > c.maxDepth {
		return nil, newCircularDependencyError(trace)
	}

	params := make([]any, 0, len(meta.Injected)+len(args))
	params = append(params, meta.Injected...)
	params = append(params, args...)

	deps := meta.InjectDependencies
	if len(deps) == 0 && ctor != nil {
		deps = ctor.Dependencies
	}

	arguments, err := c.collectArguments(trace, deps, params)
	if err != nil {
		return nil, err
	}

	instance, err := c.construct(impl, ctor, arguments)
	if err != nil {
		return nil, err
	}

	if meta.Singleton && instance != nil {
		instance = c.putSingleton(impl, instance)
		c.logger.Debug().Stringer("implementation", impl).Msg("container: singleton cached")
	}
	return instance, nil
}

// constructible reports whether impl can be built: either a constructor is
// visible for it, or it is a pointer to a struct that can be zero-built.
func constructible(impl reflect.Type, ctor *Constructor) bool {
	if ctor.Valid() {
		return true
	}
	return impl.Kind() == reflect.Ptr && impl.Elem().Kind() == reflect.Struct
}

// ── Argument reconciliation ───────────────────────────────────────────────────

// argument is one value headed for a constructor position.
type argument struct {
	value    any
	dep      Dependency
	injected bool
}

// collectArguments walks the dependency list left to right, resolving typed
// slots and filling placeholders from params, then reconciles the params that
// were not consumed.
func (c *Container) collectArguments(trace *Trace, deps []Dependency, params []any) ([]argument, error) {
	arguments := make([]argument, 0, len(deps)+len(params))
	cursor := 0

	for _, dep := range deps {
		if dep.IsPlaceholder() {
			arg := argument{dep: dep, injected: true}
			if cursor < len(params) {
				arg.value = params[cursor]
				cursor++
			}
			arguments = append(arguments, arg)
			continue
		}

		// A manual value of exactly the dependency type wins over construction
		// unless the type is explicitly registered.
		if cursor < len(params) && hasType(params[cursor], dep.Type) && !c.Bound(dep.Type) {
			arguments = append(arguments, argument{value: params[cursor], dep: dep, injected: true})
			cursor++
			continue
		}

		resolved, err := c.resolve(trace, dep.Type, nil)
		if err != nil {
			return nil, err
		}
		arguments = append(arguments, argument{value: c.enrich(dep.Type, resolved), dep: dep})
	}

	return c.reconcileLeftovers(arguments, params[cursor:]), nil
}

// reconcileLeftovers places params that no position consumed. A leftover
// replaces an auto-resolved argument only when exactly one such argument has
// its type; otherwise it is appended to the tail.
func (c *Container) reconcileLeftovers(arguments []argument, leftovers []any) []argument {
	for _, p := range leftovers {
		slot, matches := -1, 0
		if p != nil {
			pt := reflect.TypeOf(p)
			for i, a := range arguments {
				if a.injected || a.dep.IsPlaceholder() {
					continue
				}
				if a.dep.Type == pt || hasType(a.value, pt) {
					slot = i
					matches++
				}
			}
		}

		switch matches {
		case 1:
			arguments[slot] = argument{value: p, dep: arguments[slot].dep, injected: true}
		default:
			if matches > 1 {
				c.logger.Debug().Int("candidates", matches).Msgf("container: ambiguous parameter %T appended", p)
			}
			arguments = append(arguments, argument{value: p, injected: true})
		}
	}
	return arguments
}

func hasType(v any, t reflect.Type) bool {
	return v != nil && reflect.TypeOf(v) == t
}

// ── Construction ──────────────────────────────────────────────────────────────

// construct calls the described constructor, or zero-builds impl when none
// was described.
func (c *Container) construct(impl reflect.Type, ctor *Constructor, arguments []argument) (any, error) {
	if !ctor.Valid() {
		return reflect.New(impl.Elem()).Interface(), nil
	}

	fn := ctor.Func
	in, err := c.callArguments(fn.Type(), arguments)
	if err != nil {
		return nil, fmt.Errorf("container: construct %s: %w", impl, err)
	}

	out := fn.Call(in)
	if len(out) == 2 && !out[1].IsNil() {
		return nil, fmt.Errorf("container: construct %s: %w", impl, out[1].Interface().(error))
	}
	return interfaceOf(out[0]), nil
}

// callArguments adapts arguments to the constructor's parameter list. Missing
// positions get zero values; extra values go to a variadic tail or are
// dropped.
func (c *Container) callArguments(ft reflect.Type, arguments []argument) ([]reflect.Value, error) {
	fixed := ft.NumIn()
	if ft.IsVariadic() {
		fixed--
	}

	in := make([]reflect.Value, 0, len(arguments)+1)
	for i := 0; i < fixed; i++ {
		var v any
		if i < len(arguments) {
			v = arguments[i].value
		}
		rv, err := adapt(v, ft.In(i))
		if err != nil {
			return nil, fmt.Errorf("parameter %d: %w", i, err)
		}
		in = append(in, rv)
	}

	if len(arguments) <= fixed {
		return in, nil
	}
	rest := arguments[fixed:]

	if !ft.IsVariadic() {
		c.logger.Debug().Int("dropped", len(rest)).Stringer("constructor", ft).Msg("container: extra parameters ignored")
		return in, nil
	}

	elem := ft.In(fixed).Elem()
	for i, a := range rest {
		if a.value == nil {
			continue
		}
		rv, err := adapt(a.value, elem)
		if err != nil {
			return nil, fmt.Errorf("variadic parameter %d: %w", i, err)
		}
		in = append(in, rv)
	}
	return in, nil
}

// adapt turns v into a value of type pt. Numbers convert between kinds only
// when the value survives the conversion unchanged.
func adapt(v any, pt reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(pt), nil
	}
	rv := reflect.ValueOf(v)
	switch {
	case rv.Type().AssignableTo(pt):
		return rv, nil
	case isNumber(rv.Kind()) && isNumber(pt.Kind()):
		out, exact := convertNumber(rv, pt)
		if !exact {
			return reflect.Value{}, fmt.Errorf("%w: %v does not fit %s", ErrArgumentType, v, pt)
		}
		return out, nil
	default:
		return reflect.Value{}, fmt.Errorf("%w: %s is not assignable to %s", ErrArgumentType, rv.Type(), pt)
	}
}

// convertNumber converts rv to pt and reports whether nothing was lost:
// no truncated fraction, no overflow, no sign flip. Float targets accept any
// value within range.
func convertNumber(rv reflect.Value, pt reflect.Type) (reflect.Value, bool) {
	from, to := rv.Kind(), pt.Kind()
	switch {
	case isFloat(from) && (math.IsNaN(rv.Float()) || math.IsInf(rv.Float(), 0)):
		return rv.Convert(pt), isFloat(to)
	case isSigned(from) && isUnsigned(to) && rv.Int() < 0,
		isFloat(from) && isUnsigned(to) && rv.Float() < 0:
		return reflect.Value{}, false
	}

	out := rv.Convert(pt)
	switch {
	case isFloat(to):
		return out, !isFloat(from) || !out.OverflowFloat(rv.Float())
	case isUnsigned(from) && isSigned(to) && out.Int() < 0:
		return out, false
	}
	return out, out.Convert(rv.Type()).Interface() == rv.Interface()
}

func isNumber(k reflect.Kind) bool {
	return isSigned(k) || isUnsigned(k) || isFloat(k)
}

func isSigned(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isUnsigned(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

// interfaceOf unboxes a constructor result; nil pointers and interfaces
// become an untyped nil.
func interfaceOf(v reflect.Value) any {
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if v.IsNil() {
			return nil
		}
	}
	return v.Interface()
}
