// Package server 负责把注册器挂载到 HTTP 路由树并管理服务生命周期。
package server

import (
	"context"
	"net/http"
	"sort"
	"strings"

	httpx "purchasing/http"
	hbasic "purchasing/http/basic"
	"purchasing/logging"
)

// IRouteRegistrar 约定的路由注册器接口。
// 实现了这三个方法的处理器会被 Server 按优先级挂载到路由树上。
type IRouteRegistrar interface {
	RegisterRoutes(group httpx.IRouteGroup)
	GetName() string
	GetPriority() int
}

// Config Server 配置
type Config struct {
	Name     string
	Host     string
	Port     int
	BasePath string

	// Web 可选：完整的 HTTP 监听配置，覆盖 Host/Port
	Web *httpx.WebConfig

	// HTTPServer 可选：外部注入的 IHttpServer 实现
	HTTPServer httpx.IHttpServer

	Logger logging.Logger
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Name: "purchasing-server",
		Host: "0.0.0.0",
		Port: 8080,
	}
}

// Option 按需修改配置
type Option func(*Config)

// WithName 覆盖服务名称
func WithName(name string) Option {
	return func(cfg *Config) {
		if name != "" {
			cfg.Name = name
		}
	}
}

// WithHost 设置监听 Host
func WithHost(host string) Option {
	return func(cfg *Config) {
		if host != "" {
			cfg.Host = host
		}
	}
}

// WithPort 设置监听端口
func WithPort(port int) Option {
	return func(cfg *Config) {
		if port > 0 {
			cfg.Port = port
		}
	}
}

// WithBasePath 设置路由基础前缀（例如 "/purchasing"）
func WithBasePath(basePath string) Option {
	return func(cfg *Config) {
		if basePath == "" {
			return
		}
		if !strings.HasPrefix(basePath, "/") {
			basePath = "/" + basePath
		}
		cfg.BasePath = basePath
	}
}

// WithWebConfig 注入完整的 HTTP 监听配置
func WithWebConfig(web *httpx.WebConfig) Option {
	return func(cfg *Config) {
		if web != nil {
			cfg.Web = web
		}
	}
}

// WithHTTPServer 注入自定义 IHttpServer 实现
func WithHTTPServer(httpServer httpx.IHttpServer) Option {
	return func(cfg *Config) {
		if httpServer != nil {
			cfg.HTTPServer = httpServer
		}
	}
}

// WithLogger 设置日志器
func WithLogger(logger logging.Logger) Option {
	return func(cfg *Config) {
		if logger != nil {
			cfg.Logger = logger
		}
	}
}

// Server 承载一组路由注册器的 HTTP 服务
type Server struct {
	config     *Config
	registrars []IRouteRegistrar
	httpServer httpx.IHttpServer
	logger     logging.Logger
}

// New 创建 Server，registrars 按 GetPriority 升序挂载
func New(registrars []IRouteRegistrar, opts ...Option) *Server {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.GetLogger()
	}

	httpServer := cfg.HTTPServer
	if httpServer == nil {
		web := cfg.Web
		if web == nil {
			web = httpx.DefaultWebConfig()
		}
		web.Host = cfg.Host
		web.Port = cfg.Port
		httpServer = hbasic.NewHttpServer(web)
	}

	s := &Server{
		config:     cfg,
		registrars: registrars,
		httpServer: httpServer,
		logger:     cfg.Logger.WithFields(logging.String("component", "server")),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	sorted := make([]IRouteRegistrar, 0, len(s.registrars))
	for _, r := range s.registrars {
		if r != nil {
			sorted = append(sorted, r)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].GetPriority() < sorted[j].GetPriority()
	})

	group := s.httpServer.Group(s.config.BasePath)
	for _, r := range sorted {
		r.RegisterRoutes(group)
		s.logger.Debug(context.Background(), "routes registered",
			logging.String("registrar", r.GetName()))
	}
}

// Name 服务名称
func (s *Server) Name() string {
	return s.config.Name
}

// HTTPServer 返回内部的 IHttpServer（用于测试直接驱动路由树）
func (s *Server) HTTPServer() httpx.IHttpServer {
	return s.httpServer
}

// Run 启动 HTTP 服务并阻塞至退出
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info(ctx, "server starting",
		logging.String("name", s.config.Name),
		logging.String("host", s.config.Host),
		logging.Int("port", s.config.Port),
		logging.String("base_path", s.config.BasePath))

	if err := s.httpServer.Start(""); err != nil {
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
	return nil
}

// Shutdown 优雅关闭 HTTP 服务
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "server stopping", logging.String("name", s.config.Name))
	return s.httpServer.Stop(ctx)
}
