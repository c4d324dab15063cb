package app

import (
	"errors"
	"net/http"
	"os"

	"github.com/rs/zerolog"

	"github.com/km-arc/go-inject/framework/config"
	"github.com/km-arc/go-inject/framework/container"
	"github.com/km-arc/go-inject/framework/logging"
	"github.com/km-arc/go-inject/framework/providers"
	"github.com/km-arc/go-inject/framework/routing"
)

// Application is the root container plus its providers. It embeds the
// Container so user code can call app.RegisterImplementation and friends
// directly.
type Application struct {
	*container.Container
	Providers *container.ProviderRegistry

	config *config.Config
	logger zerolog.Logger
}

// New loads configuration from envFiles, builds the logger and registers the
// framework providers on a fresh root container.
func New(envFiles ...string) (*Application, error) {
	return NewWithConfig(config.Load(envFiles...))
}

// NewWithConfig builds an application from an already loaded configuration.
// opts are applied to the root container after the config-derived ones.
func NewWithConfig(cfg *config.Config, opts ...container.Option) (*Application, error) {
	logger := logging.New(cfg.Log, os.Stderr).With().Str("app", cfg.App.Name).Logger()

	c := container.New(append([]container.Option{
		container.WithLogger(logger),
		container.WithMaxDepth(cfg.Container.MaxDepth),
	}, opts...)...)

	app := &Application{
		Container: c,
		Providers: container.NewProviderRegistry(c),
		config:    cfg,
		logger:    logger,
	}

	for _, p := range []container.ServiceProvider{
		&providers.ConfigServiceProvider{Config: cfg},
		&providers.LoggingServiceProvider{Logger: logger},
		&providers.RoutingServiceProvider{},
	} {
		if err := app.Register(p); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// Register adds a ServiceProvider to the application.
func (a *Application) Register(provider container.ServiceProvider) error {
	return a.Providers.Register(provider)
}

// Boot runs the Boot() phase on all providers.
func (a *Application) Boot() error {
	return a.Providers.Boot()
}

// Config returns the configuration the application was built with.
func (a *Application) Config() *config.Config { return a.config }

// Log returns the application logger.
func (a *Application) Log() zerolog.Logger { return a.logger }

// Router resolves the singleton *routing.Router from the container.
func (a *Application) Router() *routing.Router {
	return container.MustResolve[*routing.Router](a.Container)
}

// Run boots the application (if needed) and serves HTTP on APP_PORT until
// the server stops.
func (a *Application) Run() error {
	if err := a.Boot(); err != nil {
		return err
	}
	addr := ":" + a.config.App.Port
	a.logger.Info().Str("addr", addr).Str("env", a.config.App.Env).Msg("app: listening")

	err := http.ListenAndServe(addr, a.Router())
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Environment returns APP_ENV value.
func (a *Application) Environment() string { return a.config.App.Env }
func (a *Application) IsLocal() bool       { return a.Environment() == "local" }
func (a *Application) IsProduction() bool  { return a.Environment() == "production" }
func (a *Application) IsTesting() bool     { return a.Environment() == "testing" }
func (a *Application) IsDebug() bool       { return a.config.App.Debug }
