package container

import "reflect"

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider groups related registrations.
//
// Register is called as soon as the provider is added. Boot is called after
// every provider has been registered, so it is safe to resolve there.
//
//	type MailProvider struct{ container.BaseProvider }
//
//	func (p *MailProvider) Register(app *container.Container) {
//	    app.RegisterImplementation(NewSMTPMailer).AsSingleton(container.TypeOf[Mailer]())
//	}
type ServiceProvider interface {
	// Register binds services into the container.
	// Do NOT resolve other bindings here; use Boot() for that.
	Register(app *Container)

	// Boot is called after all providers are registered.
	Boot(app *Container) error
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider is an embeddable struct with a no-op Boot.
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ *Container) error { return nil }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry manages registration and booting of ServiceProviders.
type ProviderRegistry struct {
	app        *Container
	providers  []ServiceProvider
	booted     bool
	registered map[ServiceProvider]bool
}

// NewProviderRegistry creates a registry bound to app.
func NewProviderRegistry(app *Container) *ProviderRegistry {
	return &ProviderRegistry{
		app:        app,
		registered: make(map[ServiceProvider]bool),
	}
}

// Register adds a provider and calls its Register method. Adding the same
// provider twice is a no-op. Providers added after Boot are booted at once.
func (r *ProviderRegistry) Register(provider ServiceProvider) error {
	if r.registered[provider] {
		return nil
	}
	r.registered[provider] = true

	provider.Register(r.app)
	r.providers = append(r.providers, provider)
	r.app.logger.Debug().Str("provider", reflect.TypeOf(provider).String()).Msg("container: provider registered")

	if r.booted {
		return provider.Boot(r.app)
	}
	return nil
}

// Boot calls Boot on every registered provider in registration order and
// stops at the first error. Later calls are no-ops.
func (r *ProviderRegistry) Boot() error {
	if r.booted {
		return nil
	}
	r.booted = true
	for _, provider := range r.providers {
		if err := provider.Boot(r.app); err != nil {
			return err
		}
	}
	return nil
}

// Booted returns true if Boot() has been called.
func (r *ProviderRegistry) Booted() bool { return r.booted }

// Providers returns all registered providers.
func (r *ProviderRegistry) Providers() []ServiceProvider { return r.providers }
