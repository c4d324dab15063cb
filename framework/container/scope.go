package container

// Scope creates a child container. Registrations in the child override the
// parent's for resolutions made through the child; the parent is not changed.
// Singletons are always cached on the root and shared by every scope.
//
//	request := app.Scope()
//	defer request.Close()
//	request.RegisterInstance(user)
func (c *Container) Scope(opts ...Option) *Container {
	return New(append([]Option{WithParent(c)}, opts...)...)
}

// WithScope runs fn with a fresh child scope of parent and clears the scope
// when fn returns, even if it panics.
func WithScope(parent *Container, fn func(scope *Container) error) error {
	scope := parent.Scope()
	defer scope.Close()
	return fn(scope)
}
