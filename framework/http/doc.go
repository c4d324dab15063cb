// Package http connects the container to net/http.
//
// # Request scopes
//
// ScopeMiddleware creates a child container for each request and clears it
// when the request ends. Bindings registered on the root are visible in every
// request scope, singletons are shared, and anything registered in the scope
// stays private to that request.
//
//	router.Middleware(gohttp.ScopeMiddleware(app.Container))
//
//	// inside a handler or middleware
//	scope, _ := gohttp.ScopeFrom(r.Context())
//	scope.RegisterInstance(currentUser)
//
// # Handlers
//
// Handle resolves a service from the request scope and passes it to the
// handler together with the request helpers:
//
//	router.Get("/users/{id}", gohttp.Handle(func(svc *UserService, req *gohttp.Request, res *gohttp.Response) {
//	    user, ok := svc.Find(req.RouteParam("id"))
//	    if !ok {
//	        res.NotFound()
//	        return
//	    }
//	    res.Success(user)
//	}))
//
// Services may depend on *Request and *Response directly; both are
// registered as instances in every request scope.
package http
