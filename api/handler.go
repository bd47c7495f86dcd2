// Package api 实现采购单的 HTTP 入口。
//
// 提交流程严格按阶段推进：表单字段校验 → 文件落位 → 流式逐行校验 →
// 组装 → 原子持久化 → 通知。任一阶段失败立即终止，
// 错误由传输层统一映射为响应。
package api

import (
	"strconv"

	"purchasing/cache"
	"purchasing/errors"
	httpx "purchasing/http"
	"purchasing/http/basic"
	"purchasing/ingest"
	"purchasing/logging"
	"purchasing/notify"
	"purchasing/order"
	"purchasing/upload"
)

const (
	fieldVendor = "vendor"
	fieldDate   = "date"
	fieldFile   = "csvFile"

	// DefaultMaxFileSize 上传文件大小上限（500KB）
	DefaultMaxFileSize int64 = 500 * 1024
)

// PurchaseOrderHandler 采购单处理器
type PurchaseOrderHandler struct {
	assembler   *order.Assembler
	ingestor    *ingest.Ingestor
	store       order.IOrderStore
	uploads     upload.IUploadStore
	notifier    notify.IOrderNotifier
	utils       *basic.HttpUtils
	logger      logging.Logger
	maxFileSize int64
	recent      *cache.Cache[int64, *order.PurchaseOrder]
}

// Option 处理器可选配置
type Option func(*PurchaseOrderHandler)

// WithMaxFileSize 覆盖上传大小上限，非正值表示不限制
func WithMaxFileSize(n int64) Option {
	return func(h *PurchaseOrderHandler) { h.maxFileSize = n }
}

// WithNotifier 设置创建成功后的通知器
func WithNotifier(n notify.IOrderNotifier) Option {
	return func(h *PurchaseOrderHandler) { h.notifier = n }
}

// WithCache 设置读路径缓存
func WithCache(c *cache.Cache[int64, *order.PurchaseOrder]) Option {
	return func(h *PurchaseOrderHandler) { h.recent = c }
}

// WithRejectEmpty 拒绝零明细的采购单
func WithRejectEmpty() Option {
	return func(h *PurchaseOrderHandler) { h.assembler.RejectEmpty = true }
}

// NewPurchaseOrderHandler 创建采购单处理器
func NewPurchaseOrderHandler(store order.IOrderStore, uploads upload.IUploadStore,
	logger logging.Logger, opts ...Option) *PurchaseOrderHandler {
	if logger == nil {
		logger = logging.GetLogger()
	}
	h := &PurchaseOrderHandler{
		assembler:   order.NewAssembler(),
		ingestor:    ingest.NewIngestor(logger),
		store:       store,
		uploads:     uploads,
		notifier:    notify.NewNoopNotifier(),
		utils:       basic.NewHttpUtils(),
		logger:      logger.WithFields(logging.String("component", "api.orders")),
		maxFileSize: DefaultMaxFileSize,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes 注册路由
func (h *PurchaseOrderHandler) RegisterRoutes(group httpx.IRouteGroup) {
	group.POST("/api/submit", h.Create)
	group.GET("/api/orders/:id", h.Get)
}

// GetName 处理器名称
func (h *PurchaseOrderHandler) GetName() string {
	return "purchase-orders"
}

// GetPriority 注册优先级
func (h *PurchaseOrderHandler) GetPriority() int {
	return 10
}

// Create 处理采购单提交
func (h *PurchaseOrderHandler) Create(ctx httpx.IHttpContext) error {
	reqCtx := ctx.GetRequest().Context()

	vendor := ctx.FormValue(fieldVendor)
	rawDate := ctx.FormValue(fieldDate)
	file, header, err := ctx.FormFile(fieldFile)
	if vendor == "" || rawDate == "" || err != nil {
		if err == nil {
			_ = file.Close()
		}
		return h.utils.WriteErrorResponse(ctx, errors.NewError(errors.ErrCodeMissingInput,
			"vendor, date and file are required"))
	}
	defer file.Close()

	if h.maxFileSize > 0 && header.Size > h.maxFileSize {
		return h.utils.WriteErrorResponse(ctx, errors.NewError(errors.ErrCodeFieldValidation,
			"csv file exceeds the maximum allowed size"))
	}

	// 字段先于文件校验：字段非法时不产生任何落盘文件
	date, err := h.assembler.ValidateFields(vendor, rawDate)
	if err != nil {
		return h.utils.WriteErrorResponse(ctx, err)
	}

	saved, err := h.uploads.Save(reqCtx, header.Filename, file)
	if err != nil {
		return h.utils.WriteErrorResponse(ctx, err)
	}

	src, err := h.uploads.Open(saved)
	if err != nil {
		return h.utils.WriteErrorResponse(ctx, err)
	}
	items, err := h.ingestor.Ingest(reqCtx, src)
	_ = src.Close()
	if err != nil {
		return h.utils.WriteErrorResponse(ctx, err)
	}

	po, err := h.assembler.Assemble(vendor, date, saved.Path, items)
	if err != nil {
		return h.utils.WriteErrorResponse(ctx, err)
	}

	created, err := h.store.CreateOrder(reqCtx, po)
	if err != nil {
		return h.utils.WriteErrorResponse(ctx, err)
	}

	h.logger.Info(reqCtx, "purchase order created",
		logging.Int64("order_id", created.ID),
		logging.String("vendor", created.Vendor),
		logging.Int("items", len(created.Items)))

	if h.recent != nil {
		h.recent.Set(created.ID, created)
	}

	// 通知失败不影响已成功的提交
	if err := h.notifier.OrderCreated(reqCtx, created); err != nil {
		h.logger.Warn(reqCtx, "order notification failed",
			logging.Int64("order_id", created.ID), logging.Error(err))
	}

	return h.utils.WriteSuccessResponse(ctx, created)
}

// Get 按标识查询采购单
func (h *PurchaseOrderHandler) Get(ctx httpx.IHttpContext) error {
	id, err := strconv.ParseInt(ctx.GetParam("id"), 10, 64)
	if err != nil {
		return h.utils.WriteErrorResponse(ctx, errors.NewError(errors.ErrCodeNotFound,
			"purchase order not found"))
	}

	if h.recent != nil {
		if po, ok := h.recent.Get(id); ok {
			return h.utils.WriteSuccessResponse(ctx, po)
		}
	}

	po, err := h.store.GetOrder(ctx.GetRequest().Context(), id)
	if err != nil {
		return h.utils.WriteErrorResponse(ctx, err)
	}
	if h.recent != nil {
		h.recent.Set(id, po)
	}
	return h.utils.WriteSuccessResponse(ctx, po)
}
