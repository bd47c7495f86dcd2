package basic

import (
	"encoding/json"
	"mime/multipart"
	"net/http"

	"purchasing/errors"
)

// HttpContext httpx.IHttpContext 的 net/http 实现
type HttpContext struct {
	request            *http.Request
	writer             http.ResponseWriter
	params             map[string]string
	status             int
	maxMultipartMemory int64
	formParsed         bool
	formErr            error
	responseWritten    bool
}

// NewHttpContext 创建请求上下文
func NewHttpContext(w http.ResponseWriter, r *http.Request, maxMultipartMemory int64) *HttpContext {
	if maxMultipartMemory <= 0 {
		maxMultipartMemory = 4 << 20
	}
	return &HttpContext{
		request:            r,
		writer:             w,
		params:             make(map[string]string),
		status:             http.StatusOK,
		maxMultipartMemory: maxMultipartMemory,
	}
}

// implement httpx.IRequestReader
func (c *HttpContext) GetMethod() string           { return c.request.Method }
func (c *HttpContext) GetPath() string             { return c.request.URL.Path }
func (c *HttpContext) GetQuery(key string) string  { return c.request.URL.Query().Get(key) }
func (c *HttpContext) GetParam(key string) string  { return c.params[key] }
func (c *HttpContext) GetHeader(key string) string { return c.request.Header.Get(key) }
func (c *HttpContext) GetRequest() *http.Request   { return c.request }
func (c *HttpContext) ClientIP() string            { return c.request.RemoteAddr }

// ensureMultipart 惰性解析 multipart 表单，只解析一次
func (c *HttpContext) ensureMultipart() error {
	if c.formParsed {
		return c.formErr
	}
	c.formParsed = true
	if err := c.request.ParseMultipartForm(c.maxMultipartMemory); err != nil {
		c.formErr = errors.WrapError(err, errors.ErrCodeMissingInput,
			"request body must be multipart/form-data")
	}
	return c.formErr
}

func (c *HttpContext) FormValue(name string) string {
	if err := c.ensureMultipart(); err != nil {
		return ""
	}
	return c.request.FormValue(name)
}

func (c *HttpContext) FormFile(name string) (multipart.File, *multipart.FileHeader, error) {
	if err := c.ensureMultipart(); err != nil {
		return nil, nil, err
	}
	return c.request.FormFile(name)
}

// implement httpx.IResponseWriter
func (c *HttpContext) SetStatus(code int)          { c.status = code }
func (c *HttpContext) SetHeader(key, value string) { c.writer.Header().Set(key, value) }

func (c *HttpContext) JSON(code int, obj any) error {
	data, err := json.Marshal(obj)
	if err != nil {
		return errors.WrapError(err, errors.ErrCodeInternal, "failed to serialize JSON")
	}
	c.SetHeader("Content-Type", "application/json")
	c.status = code
	c.writer.WriteHeader(c.status)
	_, err = c.writer.Write(data)
	if err == nil {
		c.responseWritten = true
	}
	return err
}

func (c *HttpContext) String(code int, text string) error {
	c.SetHeader("Content-Type", "text/plain")
	c.status = code
	c.writer.WriteHeader(c.status)
	_, err := c.writer.Write([]byte(text))
	if err == nil {
		c.responseWritten = true
	}
	return err
}

// ResponseWritten 本次请求是否已写出响应体
func (c *HttpContext) ResponseWritten() bool { return c.responseWritten }

// SetParam 填充路径参数（由路由器调用）
func (c *HttpContext) SetParam(key, value string) { c.params[key] = value }
