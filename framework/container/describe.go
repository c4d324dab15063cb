package container

import (
	"fmt"
	"reflect"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Constructor is a described constructor function: the implementation type it
// builds and one Dependency per parameter, in declaration order.
//
// Constructors are owned by the container they were registered on and are
// looked up through its parents, so a scope can replace how a type is built
// without touching its parent or sibling containers.
type Constructor struct {
	Type         reflect.Type
	Func         reflect.Value
	Dependencies []Dependency
}

// Valid reports whether a function is attached.
func (k *Constructor) Valid() bool {
	return k != nil && k.Func.IsValid()
}

// Describe inspects a constructor function and returns its description.
//
// Accepted shapes are func(...) T and func(...) (T, error). Each parameter is
// recorded either as a dependency on its type or as a placeholder, see
// DependencyFor.
//
//	k, err := container.Describe(NewMailer) // k.Type == reflect.TypeOf(&Mailer{})
func Describe(ctor any) (*Constructor, error) {
	fn := reflect.ValueOf(ctor)
	if !fn.IsValid() || fn.Kind() != reflect.Func || fn.IsNil() {
		return nil, fmt.Errorf("%w: %T is not a function", ErrInvalidConstructor, ctor)
	}

	ft := fn.Type()
	switch {
	case ft.NumOut() == 1 && ft.Out(0) != errorType:
	case ft.NumOut() == 2 && ft.Out(1) == errorType && ft.Out(0) != errorType:
	default:
		return nil, fmt.Errorf("%w: %s must return T or (T, error)", ErrInvalidConstructor, ft)
	}

	deps := make([]Dependency, ft.NumIn())
	for i := range deps {
		if ft.IsVariadic() && i == ft.NumIn()-1 {
			// the variadic tail only ever receives leftover parameters
			deps[i] = PlaceholderFor(PlaceholderUnknown)
			continue
		}
		deps[i] = DependencyFor(ft.In(i))
	}

	return &Constructor{Type: ft.Out(0), Func: fn, Dependencies: deps}, nil
}

// DependencyFor classifies a parameter type.
//
// Pointers, interfaces, structs, funcs and channels are dependencies. Booleans,
// numbers and strings are primitive placeholders; everything else is an
// unknown placeholder.
func DependencyFor(t reflect.Type) Dependency {
	switch t.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Struct, reflect.Func, reflect.Chan:
		return DependencyOn(t)
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return PlaceholderFor(PlaceholderPrimitive)
	default:
		return PlaceholderFor(PlaceholderUnknown)
	}
}

// TypeOf returns the reflect.Type of T, including interface types.
//
//	container.TypeOf[Mailer]()   // interface
//	container.TypeOf[*SMTP]()    // concrete
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
