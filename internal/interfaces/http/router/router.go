package router

import (
	"github.com/gin-gonic/gin"
)

// RouteInfo describes one registered route
type RouteInfo struct {
	Method string
	Path   string
	Gates  int
}

type routeDefinition struct {
	method  string
	path    string
	gates   []gin.HandlerFunc
	handler gin.HandlerFunc
}

// RouteTable collects routes with their gates and installs them on an
// engine in one pass. Gates run in registration order before the handler;
// a gate that writes a response aborts the chain.
type RouteTable struct {
	routes   []routeDefinition
	notFound gin.HandlerFunc
}

// NewRouteTable creates an empty RouteTable
func NewRouteTable() *RouteTable {
	return &RouteTable{routes: make([]routeDefinition, 0)}
}

// Register adds a route. gates may be nil.
func (t *RouteTable) Register(method, path string, gates []gin.HandlerFunc, handler gin.HandlerFunc) *RouteTable {
	t.routes = append(t.routes, routeDefinition{
		method:  method,
		path:    path,
		gates:   gates,
		handler: handler,
	})
	return t
}

// GET registers a GET route
func (t *RouteTable) GET(path string, gates []gin.HandlerFunc, handler gin.HandlerFunc) *RouteTable {
	return t.Register("GET", path, gates, handler)
}

// POST registers a POST route
func (t *RouteTable) POST(path string, gates []gin.HandlerFunc, handler gin.HandlerFunc) *RouteTable {
	return t.Register("POST", path, gates, handler)
}

// NotFound sets the handler for unmatched method and path pairs
func (t *RouteTable) NotFound(handler gin.HandlerFunc) *RouteTable {
	t.notFound = handler
	return t
}

// Setup installs every route on engine
func (t *RouteTable) Setup(engine *gin.Engine) {
	for _, route := range t.routes {
		chain := make([]gin.HandlerFunc, 0, len(route.gates)+1)
		chain = append(chain, route.gates...)
		chain = append(chain, route.handler)
		engine.Handle(route.method, route.path, chain...)
	}
	if t.notFound != nil {
		engine.NoRoute(t.notFound)
	}
}

// Routes lists the registered routes in registration order
func (t *RouteTable) Routes() []RouteInfo {
	out := make([]RouteInfo, len(t.routes))
	for i, r := range t.routes {
		out[i] = RouteInfo{Method: r.method, Path: r.path, Gates: len(r.gates)}
	}
	return out
}

// gates is shorthand for a gate list
func gates(g ...gin.HandlerFunc) []gin.HandlerFunc {
	return g
}
