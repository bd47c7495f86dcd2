package basic

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	httpx "purchasing/http"
)

// HttpServer 基于标准库 net/http 的 IHttpServer 实现
type HttpServer struct {
	config      *httpx.WebConfig
	server      *http.Server
	routes      map[string]*route
	middlewares []httpx.Middleware
	utils       HttpUtils
	mu          sync.RWMutex
}

type route struct {
	method      string
	pattern     string
	handler     httpx.HttpHandler
	middlewares []httpx.Middleware
}

// NewHttpServer 创建基于 net/http 的服务器
func NewHttpServer(config *httpx.WebConfig) *HttpServer {
	if config == nil {
		config = httpx.DefaultWebConfig()
	}
	return &HttpServer{
		config:      config,
		routes:      make(map[string]*route),
		middlewares: make([]httpx.Middleware, 0),
	}
}

// 路由注册实现
func (s *HttpServer) GET(path string, handler httpx.HttpHandler) httpx.IHttpServer {
	return s.addRoute(http.MethodGet, path, handler, nil)
}
func (s *HttpServer) POST(path string, handler httpx.HttpHandler) httpx.IHttpServer {
	return s.addRoute(http.MethodPost, path, handler, nil)
}
func (s *HttpServer) PUT(path string, handler httpx.HttpHandler) httpx.IHttpServer {
	return s.addRoute(http.MethodPut, path, handler, nil)
}
func (s *HttpServer) DELETE(path string, handler httpx.HttpHandler) httpx.IHttpServer {
	return s.addRoute(http.MethodDelete, path, handler, nil)
}

func (s *HttpServer) addRoute(method, path string, handler httpx.HttpHandler, mws []httpx.Middleware) httpx.IHttpServer {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.routes[method+" "+path] = &route{
		method:      method,
		pattern:     path,
		handler:     handler,
		middlewares: mws,
	}
	return s
}

// Group 路由分组
func (s *HttpServer) Group(prefix string) httpx.IRouteGroup {
	return &RouteGroup{prefix: strings.TrimSuffix(prefix, "/"), server: s}
}

// Use 全局中间件
func (s *HttpServer) Use(middleware ...httpx.Middleware) httpx.IHttpServer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.middlewares = append(s.middlewares, middleware...)
	return s
}

// Handler 构建完整的路由树。
// 单独暴露出来以便 httptest 直接驱动，不经过真实监听端口。
func (s *HttpServer) Handler() http.Handler {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// 同一 pattern 可能注册多个方法，先按 pattern 聚合再统一做方法匹配
	byPattern := make(map[string]map[string]*route)
	for _, r := range s.routes {
		pattern := convertPathPattern(r.pattern)
		if byPattern[pattern] == nil {
			byPattern[pattern] = make(map[string]*route)
		}
		byPattern[pattern][r.method] = r
	}

	mux := http.NewServeMux()
	for pattern, methods := range byPattern {
		methods := methods
		mux.HandleFunc(pattern, func(w http.ResponseWriter, req *http.Request) {
			r, ok := methods[req.Method]
			if !ok {
				ctx := NewHttpContext(w, req, s.config.MaxMultipartMemory)
				_ = ctx.JSON(http.StatusMethodNotAllowed, ErrorBody{Error: "Method not allowed"})
				return
			}
			s.serveRoute(r, w, req)
		})
	}
	return mux
}

func (s *HttpServer) serveRoute(r *route, w http.ResponseWriter, req *http.Request) {
	ctx := NewHttpContext(w, req, s.config.MaxMultipartMemory)
	parsePathParams(ctx, r.pattern, req)

	// 组装中间件链：全局 -> 路由级
	middlewares := append([]httpx.Middleware{}, s.middlewares...)
	middlewares = append(middlewares, r.middlewares...)

	if err := executeMiddlewareChain(ctx, middlewares, r.handler); err != nil {
		_ = s.utils.WriteErrorResponse(ctx, err)
	}
}

// 启停
func (s *HttpServer) Start(addr string) error {
	if addr == "" {
		addr = fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	}
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
	return s.server.ListenAndServe()
}

func (s *HttpServer) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// 将 :id 转为 {id} （Go 1.22+ PathValue 支持）
func convertPathPattern(pattern string) string {
	parts := strings.Split(pattern, "/")
	for i, p := range parts {
		if strings.HasPrefix(p, ":") {
			parts[i] = "{" + p[1:] + "}"
		}
	}
	return strings.Join(parts, "/")
}

func parsePathParams(ctx *HttpContext, pattern string, req *http.Request) {
	for _, part := range strings.Split(strings.Trim(pattern, "/"), "/") {
		if strings.HasPrefix(part, ":") {
			name := part[1:]
			if v := req.PathValue(name); v != "" {
				ctx.SetParam(name, v)
			}
		}
	}
}

func executeMiddlewareChain(ctx httpx.IHttpContext, middlewares []httpx.Middleware, handler httpx.HttpHandler) error {
	if len(middlewares) == 0 {
		return handler(ctx)
	}
	return middlewares[0](ctx, func() error {
		return executeMiddlewareChain(ctx, middlewares[1:], handler)
	})
}

// RouteGroup 实现 IRouteGroup
type RouteGroup struct {
	prefix      string
	server      *HttpServer
	middlewares []httpx.Middleware
}

func (g *RouteGroup) GET(path string, h httpx.HttpHandler) httpx.IRouteGroup {
	return g.add(http.MethodGet, path, h)
}
func (g *RouteGroup) POST(path string, h httpx.HttpHandler) httpx.IRouteGroup {
	return g.add(http.MethodPost, path, h)
}
func (g *RouteGroup) PUT(path string, h httpx.HttpHandler) httpx.IRouteGroup {
	return g.add(http.MethodPut, path, h)
}
func (g *RouteGroup) DELETE(path string, h httpx.HttpHandler) httpx.IRouteGroup {
	return g.add(http.MethodDelete, path, h)
}

func (g *RouteGroup) Use(mw ...httpx.Middleware) httpx.IRouteGroup {
	g.middlewares = append(g.middlewares, mw...)
	return g
}

func (g *RouteGroup) add(method, path string, h httpx.HttpHandler) httpx.IRouteGroup {
	mws := append([]httpx.Middleware{}, g.middlewares...)
	g.server.addRoute(method, g.prefix+path, h, mws)
	return g
}
