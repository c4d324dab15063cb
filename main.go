package main

import (
	"fmt"
	"net/http"
	"os"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/km-arc/go-inject/framework/app"
	"github.com/km-arc/go-inject/framework/container"
	gohttp "github.com/km-arc/go-inject/framework/http"
	"github.com/km-arc/go-inject/framework/routing"
)

// ── Services ──────────────────────────────────────────────────────────────────

// Greeter is bound to an implementation in GreetingProvider.
type Greeter interface {
	Greet(name string) string
}

// Salutation is a literal constructor argument supplied with Inject.
type Salutation string

type FriendlyGreeter struct {
	salutation Salutation
	log        *zerolog.Logger
}

func NewFriendlyGreeter(log *zerolog.Logger, salutation Salutation) *FriendlyGreeter {
	return &FriendlyGreeter{salutation: salutation, log: log}
}

func (g *FriendlyGreeter) Greet(name string) string {
	g.log.Debug().Str("name", name).Msg("greeting")
	return fmt.Sprintf("%s, %s!", g.salutation, name)
}

// Counter is a process-wide singleton.
type Counter struct{ n atomic.Int64 }

func NewCounter() *Counter { return &Counter{} }

func (c *Counter) Next() int64 { return c.n.Add(1) }

// Visit is built once per request from the request scope.
type Visit struct {
	Number int64
	Agent  string
	greet  Greeter
}

func NewVisit(counter *Counter, greet Greeter, req *gohttp.Request) *Visit {
	return &Visit{Number: counter.Next(), Agent: req.Header("User-Agent"), greet: greet}
}

// ── Provider ──────────────────────────────────────────────────────────────────

type GreetingProvider struct{ container.BaseProvider }

func (p *GreetingProvider) Register(c *container.Container) {
	c.RegisterImplementation(NewFriendlyGreeter).
		As(container.TypeOf[Greeter]()).
		AsSingleton().
		Inject(Salutation("Hello"))
	c.RegisterImplementation(NewCounter).AsSingleton()
	c.RegisterImplementation(NewVisit)
}

func (p *GreetingProvider) Boot(c *container.Container) error {
	router, err := container.Resolve[*routing.Router](c)
	if err != nil {
		return err
	}

	router.Get("/", gohttp.Handle(func(g Greeter, req *gohttp.Request, res *gohttp.Response) {
		res.Success(map[string]any{"message": g.Greet(req.Query("name", "world"))})
	}))

	router.Prefix("/api/v1", func(api *routing.Router) {
		api.Get("/visits", gohttp.Handle(func(v *Visit, _ *gohttp.Request, res *gohttp.Response) {
			res.Success(map[string]any{"visit": v.Number, "agent": v.Agent})
		}))
		api.Get("/greet/{name}", gohttp.Handle(func(v *Visit, req *gohttp.Request, res *gohttp.Response) {
			res.Success(map[string]any{"message": v.greet.Greet(req.RouteParam("name")), "visit": v.Number})
		}))

		api.Group(func(private *routing.Router) {
			private.Middleware(TokenMiddleware)
			private.Post("/greet", gohttp.Handle(func(g Greeter, req *gohttp.Request, res *gohttp.Response) {
				var body struct {
					Name string `json:"name"`
				}
				if err := req.Bind(&body); err != nil {
					res.Error(http.StatusBadRequest, err.Error())
					return
				}
				res.Success(map[string]any{"message": g.Greet(body.Name)})
			}))
		})
	})
	return nil
}

// TokenMiddleware rejects requests without a bearer token.
func TokenMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if gohttp.NewRequest(r).BearerToken() == "" {
			gohttp.NewResponse(w).Error(http.StatusUnauthorized, "Unauthenticated.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	application, err := app.New() // loads .env automatically
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := application.Log()
	if err := application.Register(&GreetingProvider{}); err != nil {
		log.Fatal().Err(err).Msg("register")
	}

	if err := application.Run(); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
