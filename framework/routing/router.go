package routing

import (
	"net/http"
	"reflect"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/km-arc/go-inject/framework/container"
	gohttp "github.com/km-arc/go-inject/framework/http"
)

// Router wraps chi.Router and runs every request inside a child scope of the
// application container.
type Router struct {
	mux chi.Router
}

// New creates a Router with sane defaults (RealIP, request log, Recoverer)
// and the request-scope middleware bound to root.
func New(root *container.Container) *Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestLogger(root.Logger()))
	r.Use(middleware.Recoverer)
	r.Use(gohttp.ScopeMiddleware(root))
	return &Router{mux: r}
}

// ── HTTP verbs ───────────────────────────────────────────────────────────────

func (r *Router) Get(pattern string, h http.HandlerFunc)    { r.mux.Get(pattern, h) }
func (r *Router) Post(pattern string, h http.HandlerFunc)   { r.mux.Post(pattern, h) }
func (r *Router) Put(pattern string, h http.HandlerFunc)    { r.mux.Put(pattern, h) }
func (r *Router) Patch(pattern string, h http.HandlerFunc)  { r.mux.Patch(pattern, h) }
func (r *Router) Delete(pattern string, h http.HandlerFunc) { r.mux.Delete(pattern, h) }

// Any registers a handler for all common HTTP methods.
func (r *Router) Any(pattern string, h http.HandlerFunc) {
	for _, m := range []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"} {
		r.mux.Method(m, pattern, h)
	}
}

// ── Groups & Prefixes ────────────────────────────────────────────────────────

// Group creates an inline group sharing the parent's middleware.
func (r *Router) Group(fn func(r *Router)) {
	r.mux.Group(func(mx chi.Router) {
		fn(&Router{mux: mx})
	})
}

// Prefix creates a sub-router mounted under pattern.
func (r *Router) Prefix(pattern string, fn func(r *Router)) {
	r.mux.Route(pattern, func(mx chi.Router) {
		fn(&Router{mux: mx})
	})
}

// ── Middleware ───────────────────────────────────────────────────────────────

// Middleware adds one or more middleware to the router.
func (r *Router) Middleware(mw ...func(http.Handler) http.Handler) {
	r.mux.Use(mw...)
}

// ── Resource routes ──────────────────────────────────────────────────────────

// ResourceController handles the standard RESTful routes of a resource.
//
//	GET    /photos           → c.Index
//	POST   /photos           → c.Store
//	GET    /photos/{id}      → c.Show
//	PUT    /photos/{id}      → c.Update
//	DELETE /photos/{id}      → c.Destroy
type ResourceController interface {
	Index(w http.ResponseWriter, r *http.Request)
	Store(w http.ResponseWriter, r *http.Request)
	Show(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Destroy(w http.ResponseWriter, r *http.Request)
}

var resourceControllerType = reflect.TypeOf((*ResourceController)(nil)).Elem()

// Resource registers the RESTful routes of a controller that is resolved
// from the request scope on every request. controller is the registration
// type to resolve and must implement ResourceController.
//
//	app.RegisterImplementation(NewPhotoController)
//	router.Resource("/photos", container.TypeOf[*PhotoController]())
func (r *Router) Resource(pattern string, controller reflect.Type) {
	if !controller.Implements(resourceControllerType) {
		panic("routing: " + controller.String() + " does not implement ResourceController")
	}
	action := func(pick func(ResourceController) http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, req *http.Request) {
			res := gohttp.NewResponse(w)
			scope, ok := gohttp.ScopeFrom(req.Context())
			if !ok {
				res.ServerError("request scope missing")
				return
			}
			v, err := scope.Resolve(controller)
			if err != nil {
				res.ServerError(err.Error())
				return
			}
			c, ok := v.(ResourceController)
			if !ok {
				res.ServerError("no implementation for " + controller.String())
				return
			}
			pick(c)(w, req)
		}
	}

	r.mux.Get(pattern, action(func(c ResourceController) http.HandlerFunc { return c.Index }))
	r.mux.Post(pattern, action(func(c ResourceController) http.HandlerFunc { return c.Store }))
	r.mux.Get(pattern+"/{id}", action(func(c ResourceController) http.HandlerFunc { return c.Show }))
	r.mux.Put(pattern+"/{id}", action(func(c ResourceController) http.HandlerFunc { return c.Update }))
	r.mux.Patch(pattern+"/{id}", action(func(c ResourceController) http.HandlerFunc { return c.Update }))
	r.mux.Delete(pattern+"/{id}", action(func(c ResourceController) http.HandlerFunc { return c.Destroy }))
}

// ── Params ───────────────────────────────────────────────────────────────────

// Param extracts a URL param.
func Param(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}

// ── Serve ────────────────────────────────────────────────────────────────────

// ServeHTTP implements http.Handler so Router can be passed to http.ListenAndServe.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Handler returns the underlying http.Handler (for testing etc.).
func (r *Router) Handler() http.Handler {
	return r.mux
}

// requestLogger writes one debug event per request.
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Debug().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("status", ww.Status()).
					Dur("duration", time.Since(start)).
					Msg("http: request")
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
