// Package container provides a lightweight dependency-injection container.
//
// # Overview
//
// The container maps registration types (concrete types or interfaces) to
// implementations and builds object graphs by resolving constructor
// parameters recursively. It supports singleton lifetime, literal parameter
// injection, pre-built instances, post-construction enrichment and child
// scopes that override their parent's bindings.
//
// Go has no constructor reflection on types, so an implementation is
// described by its constructor function. Describe reads the function
// signature once into a Constructor that the registering container owns.
// Flags that outlive one container (singleton, injected values, explicit
// dependencies) live in a MetadataStore shared by default across containers.
//
// # Registration
//
//	c := container.New()
//
//	// Bind a constructor's result type to itself
//	c.RegisterImplementation(NewUserRepository)
//
//	// Bind under an interface, cached once per root container
//	c.RegisterImplementation(NewRedisCache).AsSingleton(container.TypeOf[Cache]())
//
//	// Fill primitive constructor parameters in order
//	// NewMailer(transport Transport, host string, port int) *Mailer
//	c.RegisterImplementation(NewMailer).Inject("smtp.local", 25)
//
//	// Pre-built value
//	c.RegisterInstance(cfg).As(container.TypeOf[Settings]())
//
//	// Decorate every resolved value of a key
//	c.RegisterImplementation(NewLogger).Enrich(func(v any) any {
//	    return &PrefixLogger{Inner: v.(*Logger)}
//	})
//
// Registering the same key twice replaces the previous binding.
//
// # Resolving
//
//	// Untyped
//	raw, err := c.Resolve(container.TypeOf[Cache]())
//
//	// Generic
//	cache, err := container.Resolve[Cache](c)
//
//	// Call-site parameters follow injected ones
//	report, err := container.Resolve[*Report](c, "weekly")
//
// Types that cannot be built resolve to nil without an error, so optional
// dependencies simply arrive as nil. A dependency loop is reported as a
// *CircularDependencyError naming the looping types.
//
// # Scopes
//
//	err := container.WithScope(root, func(scope *container.Container) error {
//	    scope.RegisterInstance(currentUser)
//	    svc, err := container.Resolve[*Checkout](scope)
//	    ...
//	})
//
// Child scopes look up instances, bindings, constructors and enrich callbacks in
// themselves first and then in their parent. Singletons are always cached on
// the root and shared by all scopes.
//
// # Service Providers
//
//	type AppServiceProvider struct{ container.BaseProvider }
//
//	func (p *AppServiceProvider) Register(app *container.Container) {
//	    app.RegisterImplementation(NewMailer).AsSingleton()
//	}
//
//	registry := container.NewProviderRegistry(c)
//	registry.Register(&AppServiceProvider{})
//	registry.Boot()
//
// # Concurrency
//
// Tables are guarded so request scopes may resolve concurrently, but the
// resolution model is not coordinated: two racing first resolutions of a
// singleton may both construct it, and the first cached value wins.
// Registration is expected to finish before concurrent resolution starts.
package container
