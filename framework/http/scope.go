package http

import (
	"context"
	"net/http"

	"github.com/km-arc/go-inject/framework/container"
)

type scopeKey struct{}

// ScopeMiddleware gives every request its own child scope of root.
//
// The scope holds the request's *Request and *Response as instances, is
// reachable through ScopeFrom, and is cleared when the handler returns.
func ScopeMiddleware(root *container.Container) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope := root.Scope()
			defer scope.Close()

			r = r.WithContext(WithScope(r.Context(), scope))
			scope.RegisterInstance(NewRequest(r))
			scope.RegisterInstance(NewResponse(w))

			next.ServeHTTP(w, r)
		})
	}
}

// WithScope returns a copy of ctx carrying scope.
func WithScope(ctx context.Context, scope *container.Container) context.Context {
	return context.WithValue(ctx, scopeKey{}, scope)
}

// ScopeFrom returns the request scope stored by ScopeMiddleware.
func ScopeFrom(ctx context.Context) (*container.Container, bool) {
	scope, ok := ctx.Value(scopeKey{}).(*container.Container)
	return scope, ok && scope != nil
}

// Handle resolves T from the request scope and calls fn with it. It answers
// 500 when the scope is missing, resolution fails or nothing implements T.
//
//	router.Get("/greet", gohttp.Handle(func(g Greeter, req *gohttp.Request, res *gohttp.Response) {
//	    res.Success(g.Greet(req.Query("name")))
//	}))
func Handle[T any](fn func(svc T, req *Request, res *Response)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := NewResponse(w)

		scope, ok := ScopeFrom(r.Context())
		if !ok {
			res.ServerError("request scope missing")
			return
		}

		v, err := scope.Resolve(container.TypeOf[T]())
		if err != nil {
			log := scope.Logger()
			log.Error().Err(err).Str("path", r.URL.Path).Msg("http: resolve failed")
			res.ServerError(err.Error())
			return
		}
		svc, ok := v.(T)
		if !ok {
			res.ServerError("no implementation for " + container.TypeOf[T]().String())
			return
		}

		req, err := container.Resolve[*Request](scope)
		if err != nil || req == nil {
			req = NewRequest(r)
		}
		fn(svc, req, res)
	}
}
