package basic

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"purchasing/errors"
)

// TestStatusForCode 错误代码到状态码的映射
func TestStatusForCode(t *testing.T) {
	tests := []struct {
		name string
		code errors.ErrorCode
		want int
	}{
		{name: "入参缺失", code: errors.ErrCodeMissingInput, want: http.StatusBadRequest},
		{name: "字段校验", code: errors.ErrCodeFieldValidation, want: http.StatusBadRequest},
		{name: "行校验", code: errors.ErrCodeRowValidation, want: http.StatusBadRequest},
		{name: "文件损坏", code: errors.ErrCodeMalformedFile, want: http.StatusBadRequest},
		{name: "持久化失败", code: errors.ErrCodePersistence, want: http.StatusBadRequest},
		{name: "未找到", code: errors.ErrCodeNotFound, want: http.StatusNotFound},
		{name: "方法不允许", code: errors.ErrCodeMethodNotAllowed, want: http.StatusMethodNotAllowed},
		{name: "上传失败", code: errors.ErrCodeUpload, want: http.StatusInternalServerError},
		{name: "内部错误", code: errors.ErrCodeInternal, want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusForCode(tt.code); got != tt.want {
				t.Errorf("StatusForCode(%s) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}

// TestWriteErrorResponse 错误被写为 {"error": message}
func TestWriteErrorResponse(t *testing.T) {
	var utils HttpUtils

	t.Run("AppError使用其消息", func(t *testing.T) {
		rec := httptest.NewRecorder()
		ctx := NewHttpContext(rec, httptest.NewRequest(http.MethodPost, "/", nil), 0)

		err := errors.NewError(errors.ErrCodeFieldValidation, "vendor name must be at least 4 characters")
		if werr := utils.WriteErrorResponse(ctx, err); werr != nil {
			t.Fatalf("WriteErrorResponse() = %v", werr)
		}

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
		var body ErrorBody
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("response is not JSON: %v", err)
		}
		if body.Error != "vendor name must be at least 4 characters" {
			t.Errorf("error = %q", body.Error)
		}
	})

	t.Run("裸错误归为500", func(t *testing.T) {
		rec := httptest.NewRecorder()
		ctx := NewHttpContext(rec, httptest.NewRequest(http.MethodPost, "/", nil), 0)

		_ = utils.WriteErrorResponse(ctx, fmt.Errorf("boom"))
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", rec.Code)
		}
	})

	t.Run("已写响应时不重复写", func(t *testing.T) {
		rec := httptest.NewRecorder()
		ctx := NewHttpContext(rec, httptest.NewRequest(http.MethodPost, "/", nil), 0)

		_ = utils.WriteSuccessResponse(ctx, map[string]int{"id": 1})
		before := rec.Body.Len()
		_ = utils.WriteErrorResponse(ctx, fmt.Errorf("late failure"))
		if rec.Body.Len() != before {
			t.Error("error response must not be appended after a success body")
		}
	})
}

// TestWriteSuccessResponse 成功体为 {"status":"ok","data":...}
func TestWriteSuccessResponse(t *testing.T) {
	var utils HttpUtils
	rec := httptest.NewRecorder()
	ctx := NewHttpContext(rec, httptest.NewRequest(http.MethodGet, "/", nil), 0)

	_ = utils.WriteSuccessResponse(ctx, map[string]string{"vendor": "Acme Co"})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Status string            `json:"status"`
		Data   map[string]string `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if body.Status != "ok" || body.Data["vendor"] != "Acme Co" {
		t.Errorf("body = %+v", body)
	}
}
