package providers

import (
	"github.com/rs/zerolog"

	"github.com/km-arc/go-inject/framework/config"
	"github.com/km-arc/go-inject/framework/container"
	"github.com/km-arc/go-inject/framework/routing"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider binds the loaded configuration into the container.
//
// Registered types:
//   - *config.Config
//   - *config.AppConfig (the App section, for services that need only that)
type ConfigServiceProvider struct {
	container.BaseProvider
	Config *config.Config
}

func (p *ConfigServiceProvider) Register(app *container.Container) {
	cfg := p.Config
	if cfg == nil {
		cfg = config.Load()
	}
	app.RegisterInstance(cfg)
	app.RegisterInstance(&cfg.App)
}

// ── LoggingServiceProvider ────────────────────────────────────────────────────

// LoggingServiceProvider binds the application logger so services can take
// *zerolog.Logger as a constructor dependency.
//
// Registered types:
//   - *zerolog.Logger
type LoggingServiceProvider struct {
	container.BaseProvider
	Logger zerolog.Logger
}

func (p *LoggingServiceProvider) Register(app *container.Container) {
	logger := p.Logger
	app.RegisterInstance(&logger)
}

// Boot reports the configured level once every provider is registered.
func (p *LoggingServiceProvider) Boot(app *container.Container) error {
	logger, err := container.Resolve[*zerolog.Logger](app)
	if err != nil {
		return err
	}
	logger.Debug().Str("level", logger.GetLevel().String()).Msg("logging: ready")
	return nil
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider registers the HTTP router as a lazy singleton. The
// router opens a child scope of app for every request.
//
// Registered types:
//   - *routing.Router
type RoutingServiceProvider struct {
	container.BaseProvider
}

func (p *RoutingServiceProvider) Register(app *container.Container) {
	app.RegisterImplementation(func() *routing.Router {
		return routing.New(app)
	}).AsSingleton()
}
