package basic

import (
	"fmt"
	"net/http"

	"purchasing/errors"
	httpx "purchasing/http"
)

// 响应体约定：
//   - 成功：{"status":"ok","data":...}
//   - 失败：{"error":"..."}
// 与提交表单前端的解析逻辑保持一致。

// SuccessBody 成功响应体
type SuccessBody struct {
	Status string `json:"status"`
	Data   any    `json:"data"`
}

// ErrorBody 失败响应体
type ErrorBody struct {
	Error string `json:"error"`
}

// StatusForCode 错误代码到 HTTP 状态码的映射。
// 入参缺失、字段/行校验、文件损坏、持久化约束冲突都属于调用方可修复
// 的提交错误，统一 400；上传暂存 I/O 失败是服务端问题，归 500。
func StatusForCode(code errors.ErrorCode) int {
	switch code {
	case errors.ErrCodeMissingInput,
		errors.ErrCodeFieldValidation,
		errors.ErrCodeRowValidation,
		errors.ErrCodeMalformedFile,
		errors.ErrCodePersistence:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

// HttpUtils 响应写出辅助
type HttpUtils struct{}

// NewHttpUtils 创建响应辅助
func NewHttpUtils() *HttpUtils {
	return &HttpUtils{}
}

// WriteErrorResponse 将任意错误转换为结构化失败响应。
// 所有错误都在这里被吸收，绝不向上传播为未处理的失败。
func (u *HttpUtils) WriteErrorResponse(ctx httpx.IHttpContext, err error) error {
	if hc, ok := ctx.(*HttpContext); ok && hc.ResponseWritten() {
		return nil
	}

	// 优先规范化错误，确保尽可能使用统一的 ErrorCode 体系
	err = errors.Normalize(err)

	var (
		status  int
		message string
	)
	if appErr, ok := err.(errors.IError); ok {
		status = StatusForCode(appErr.Code())
		message = appErr.Message()
	} else {
		status = http.StatusInternalServerError
		message = err.Error()
	}

	if jerr := ctx.JSON(status, ErrorBody{Error: message}); jerr != nil {
		_ = ctx.String(http.StatusInternalServerError, fmt.Sprintf("error: %s", message))
	}
	return nil
}

// WriteSuccessResponse 写出成功响应
func (u *HttpUtils) WriteSuccessResponse(ctx httpx.IHttpContext, data any) error {
	if jerr := ctx.JSON(http.StatusOK, SuccessBody{Status: "ok", Data: data}); jerr != nil {
		_ = ctx.String(http.StatusOK, "ok")
	}
	return nil
}
