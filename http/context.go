// Package http 提供简化的 HTTP 接口，遵循接口隔离原则
package http

import (
	"mime/multipart"
	"net/http"
)

// IRequestReader 请求读取接口 - 只负责读取请求数据
type IRequestReader interface {
	// 基础信息
	GetMethod() string
	GetPath() string
	GetHeader(key string) string
	GetQuery(key string) string
	GetParam(key string) string

	// multipart 表单：提交采购单的入口依赖这两个方法
	FormValue(name string) string
	FormFile(name string) (multipart.File, *multipart.FileHeader, error)

	// 原始请求（取消信号来自 GetRequest().Context()）
	GetRequest() *http.Request

	// 客户端信息
	ClientIP() string
}

// IResponseWriter 响应写入接口 - 只负责写入响应
type IResponseWriter interface {
	SetStatus(code int)
	SetHeader(key, value string)

	JSON(code int, obj any) error
	String(code int, text string) error
}

// IHttpContext 组合接口 - 通过组合而非继承
type IHttpContext interface {
	IRequestReader
	IResponseWriter
}

// HttpHandler 处理器函数类型
type HttpHandler func(ctx IHttpContext) error

// Middleware 中间件：处理 ctx 并决定是否调用 next
type Middleware func(ctx IHttpContext, next func() error) error
