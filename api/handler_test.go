package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"purchasing/cache"
	httpx "purchasing/http"
	"purchasing/http/basic"
	"purchasing/logging"
	"purchasing/order"
	"purchasing/storage/database"
	basicdb "purchasing/storage/database/basic"
	sqlstore "purchasing/store/sql"
	"purchasing/upload"
)

const validCSV = "Model Number,Unit Price,Quantity\nABC-100,19.99,5\nXYZ-200,5.50,10\n"

type testEnv struct {
	handler *PurchaseOrderHandler
	server  http.Handler
	db      database.IDatabase
}

// 测试辅助：内存数据库 + 临时上传目录 + 完整路由
func setupEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()

	db, err := basicdb.New(database.DBConfig{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store := sqlstore.NewOrderStore(db, sqlstore.WithLogger(logging.NewNoopLogger()))
	require.NoError(t, store.Migrate(context.Background()))

	uploads, err := upload.NewDiskStore(t.TempDir())
	require.NoError(t, err)

	h := NewPurchaseOrderHandler(store, uploads, logging.NewNoopLogger(), opts...)

	srv := basic.NewHttpServer(httpx.DefaultWebConfig())
	h.RegisterRoutes(srv.Group(""))

	return &testEnv{handler: h, server: srv.Handler(), db: db}
}

// multipartBody 构造提交表单；file 为 nil 时不携带文件字段
func multipartBody(t *testing.T, fields map[string]string, fileContent *string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileContent != nil {
		part, err := w.CreateFormFile("csvFile", "orders.csv")
		require.NoError(t, err)
		_, err = part.Write([]byte(*fileContent))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func submit(t *testing.T, env *testEnv, fields map[string]string, fileContent *string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, fields, fileContent)
	req := httptest.NewRequest(http.MethodPost, "/api/submit", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	env.server.ServeHTTP(rec, req)
	return rec
}

func countRows(t *testing.T, db database.IDatabase, table string) int {
	t.Helper()
	var n int
	err := db.QueryRow(context.Background(), "SELECT COUNT(*) FROM "+table).Scan(&n)
	require.NoError(t, err)
	return n
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body basic.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestPurchaseOrderHandler_Create(t *testing.T) {
	env := setupEnv(t)
	csv := validCSV

	rec := submit(t, env, map[string]string{"vendor": "Acme Co", "date": "2023-05-01"}, &csv)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Status string              `json:"status"`
		Data   order.PurchaseOrder `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Positive(t, body.Data.ID)
	assert.Equal(t, "Acme Co", body.Data.Vendor)
	assert.NotEmpty(t, body.Data.CSVFile)
	require.Len(t, body.Data.Items, 2)
	assert.Equal(t, "ABC-100", body.Data.Items[0].ModelNumber)
	assert.Equal(t, 19.99, body.Data.Items[0].UnitPrice)
	assert.Equal(t, int64(5), body.Data.Items[0].Quantity)
	assert.Equal(t, "XYZ-200", body.Data.Items[1].ModelNumber)

	assert.Equal(t, 1, countRows(t, env.db, "purchase_orders"))
	assert.Equal(t, 2, countRows(t, env.db, "line_items"))
}

func TestPurchaseOrderHandler_Create_行校验失败(t *testing.T) {
	env := setupEnv(t)
	// 型号为纯数字，整行非法
	csv := "Model Number,Unit Price,Quantity\n12345,19.99,5\nXYZ-200,5.50,10\n"

	rec := submit(t, env, map[string]string{"vendor": "Acme Co", "date": "2023-05-01"}, &csv)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid csv row", errorMessage(t, rec))

	// 校验失败的提交不得写入任何数据
	assert.Equal(t, 0, countRows(t, env.db, "purchase_orders"))
	assert.Equal(t, 0, countRows(t, env.db, "line_items"))
}

func TestPurchaseOrderHandler_Create_文件损坏(t *testing.T) {
	env := setupEnv(t)
	csv := "Model Number,Unit Price,Quantity\n\"ABC-100,19.99,5\n"

	rec := submit(t, env, map[string]string{"vendor": "Acme Co", "date": "2023-05-01"}, &csv)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "malformed csv file", errorMessage(t, rec))
	assert.Equal(t, 0, countRows(t, env.db, "purchase_orders"))
}

func TestPurchaseOrderHandler_Create_入参缺失(t *testing.T) {
	env := setupEnv(t)
	csv := validCSV

	tests := []struct {
		name   string
		fields map[string]string
		file   *string
	}{
		{"缺少文件", map[string]string{"vendor": "Acme Co", "date": "2023-05-01"}, nil},
		{"缺少供应商", map[string]string{"date": "2023-05-01"}, &csv},
		{"缺少日期", map[string]string{"vendor": "Acme Co"}, &csv},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := submit(t, env, tt.fields, tt.file)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "vendor, date and file are required", errorMessage(t, rec))
		})
	}
	assert.Equal(t, 0, countRows(t, env.db, "purchase_orders"))
}

func TestPurchaseOrderHandler_Create_字段校验失败(t *testing.T) {
	env := setupEnv(t)
	csv := validCSV

	tests := []struct {
		name    string
		fields  map[string]string
		wantMsg string
	}{
		{"供应商过短", map[string]string{"vendor": "Ace", "date": "2023-05-01"},
			"vendor name must be at least 4 characters"},
		{"日期早于下限", map[string]string{"vendor": "Acme Co", "date": "1899-12-31"},
			"date must be after 1900-01-01"},
		{"日期非法", map[string]string{"vendor": "Acme Co", "date": "not-a-date"},
			"date must be a valid calendar date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := submit(t, env, tt.fields, &csv)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.wantMsg, errorMessage(t, rec))
		})
	}
	assert.Equal(t, 0, countRows(t, env.db, "purchase_orders"))
}

func TestPurchaseOrderHandler_Create_文件超限(t *testing.T) {
	env := setupEnv(t, WithMaxFileSize(64))
	big := validCSV
	for len(big) <= 64 {
		big += "ABC-300,1.00,1\n"
	}

	rec := submit(t, env, map[string]string{"vendor": "Acme Co", "date": "2023-05-01"}, &big)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "csv file exceeds the maximum allowed size", errorMessage(t, rec))
}

func TestPurchaseOrderHandler_Create_拒绝空明细(t *testing.T) {
	env := setupEnv(t, WithRejectEmpty())
	csv := "Model Number,Unit Price,Quantity\n"

	rec := submit(t, env, map[string]string{"vendor": "Acme Co", "date": "2023-05-01"}, &csv)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "csv file contains no line items", errorMessage(t, rec))
}

func TestPurchaseOrderHandler_Create_空明细默认放行(t *testing.T) {
	env := setupEnv(t)
	csv := "Model Number,Unit Price,Quantity\n"

	rec := submit(t, env, map[string]string{"vendor": "Acme Co", "date": "2023-05-01"}, &csv)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, countRows(t, env.db, "purchase_orders"))
	assert.Equal(t, 0, countRows(t, env.db, "line_items"))
}

func TestPurchaseOrderHandler_MethodNotAllowed(t *testing.T) {
	env := setupEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/submit", nil)
	rec := httptest.NewRecorder()
	env.server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "Method not allowed", errorMessage(t, rec))
}

func TestPurchaseOrderHandler_Get(t *testing.T) {
	env := setupEnv(t, WithCache(cache.New[int64, *order.PurchaseOrder](time.Minute, 16)))
	csv := validCSV

	rec := submit(t, env, map[string]string{"vendor": "Acme Co", "date": "2023-05-01"}, &csv)
	require.Equal(t, http.StatusOK, rec.Code)

	var created struct {
		Data order.PurchaseOrder `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/orders/%d", created.Data.ID), nil)
	getRec := httptest.NewRecorder()
	env.server.ServeHTTP(getRec, req)

	require.Equal(t, http.StatusOK, getRec.Code, getRec.Body.String())
	var loaded struct {
		Status string              `json:"status"`
		Data   order.PurchaseOrder `json:"data"`
	}
	require.NoError(t, json.Unmarshal(getRec.Body.Bytes(), &loaded))
	assert.Equal(t, "ok", loaded.Status)
	assert.Equal(t, created.Data.ID, loaded.Data.ID)
	require.Len(t, loaded.Data.Items, 2)
}

func TestPurchaseOrderHandler_Get_NotFound(t *testing.T) {
	env := setupEnv(t)

	tests := []struct {
		name string
		path string
	}{
		{"不存在的标识", "/api/orders/9001"},
		{"非数字标识", "/api/orders/abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()
			env.server.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusNotFound, rec.Code)
		})
	}
}
