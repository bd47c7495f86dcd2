package http

import (
	"context"
	"time"
)

// WebConfig HTTP 服务器配置
type WebConfig struct {
	Host string
	Port int

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// MaxMultipartMemory 解析 multipart 表单时驻留内存的上限，
	// 超出部分由 net/http 落到临时文件
	MaxMultipartMemory int64
}

// DefaultWebConfig 返回带合理默认值的配置
func DefaultWebConfig() *WebConfig {
	return &WebConfig{
		Host:               "0.0.0.0",
		Port:               8080,
		ReadTimeout:        30 * time.Second,
		WriteTimeout:       30 * time.Second,
		IdleTimeout:        60 * time.Second,
		MaxMultipartMemory: 4 << 20,
	}
}

// IHttpServer HTTP 服务器接口
type IHttpServer interface {
	GET(path string, handler HttpHandler) IHttpServer
	POST(path string, handler HttpHandler) IHttpServer
	PUT(path string, handler HttpHandler) IHttpServer
	DELETE(path string, handler HttpHandler) IHttpServer

	// Group 路由分组
	Group(prefix string) IRouteGroup

	// Use 全局中间件
	Use(middleware ...Middleware) IHttpServer

	// 启停
	Start(addr string) error
	Stop(ctx context.Context) error
}

// IRouteGroup 路由分组接口
type IRouteGroup interface {
	GET(path string, handler HttpHandler) IRouteGroup
	POST(path string, handler HttpHandler) IRouteGroup
	PUT(path string, handler HttpHandler) IRouteGroup
	DELETE(path string, handler HttpHandler) IRouteGroup

	Use(middleware ...Middleware) IRouteGroup
}
