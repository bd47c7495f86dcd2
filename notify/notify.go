// Package notify 在采购单持久化成功后发布通知事件。
//
// 通知是 fire-and-forget：发布失败只记日志，绝不影响已经成功的提交响应。
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"purchasing/logging"
	"purchasing/order"
)

// OrderCreatedEvent 采购单创建完成事件
type OrderCreatedEvent struct {
	EventID    string    `json:"eventId"`
	OrderID    int64     `json:"orderId"`
	Vendor     string    `json:"vendor"`
	ItemCount  int       `json:"itemCount"`
	OccurredAt time.Time `json:"occurredAt"`
}

// IOrderNotifier 通知发布契约
type IOrderNotifier interface {
	OrderCreated(ctx context.Context, po *order.PurchaseOrder) error
	Close()
}

// NoopNotifier 空实现（默认配置与测试使用）
type NoopNotifier struct{}

func NewNoopNotifier() *NoopNotifier { return &NoopNotifier{} }

func (NoopNotifier) OrderCreated(ctx context.Context, po *order.PurchaseOrder) error { return nil }
func (NoopNotifier) Close()                                                          {}

// NatsNotifier 基于核心 NATS 的实现。
// 这里不需要 JetStream：通知没有投递保证要求，丢失可容忍。
type NatsNotifier struct {
	conn    *nats.Conn
	subject string
	logger  logging.Logger
}

// Config NATS 通知配置
type Config struct {
	URL     string
	Subject string
	Logger  logging.Logger
}

// NewNatsNotifier 连接 NATS 并创建通知器
func NewNatsNotifier(cfg Config) (*NatsNotifier, error) {
	if cfg.URL == "" {
		cfg.URL = nats.DefaultURL
	}
	if cfg.Subject == "" {
		cfg.Subject = "purchasing.orders.created"
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.GetLogger()
	}

	conn, err := nats.Connect(cfg.URL,
		nats.Name("purchasing-notifier"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second))
	if err != nil {
		return nil, err
	}

	return &NatsNotifier{
		conn:    conn,
		subject: cfg.Subject,
		logger:  cfg.Logger.WithFields(logging.String("component", "notify.nats")),
	}, nil
}

// OrderCreated 实现 IOrderNotifier
func (n *NatsNotifier) OrderCreated(ctx context.Context, po *order.PurchaseOrder) error {
	event := OrderCreatedEvent{
		EventID:    uuid.NewString(),
		OrderID:    po.ID,
		Vendor:     po.Vendor,
		ItemCount:  len(po.Items),
		OccurredAt: time.Now().UTC(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := n.conn.Publish(n.subject, data); err != nil {
		n.logger.Warn(ctx, "order created notification failed",
			logging.Int64("order_id", po.ID), logging.Error(err))
		return err
	}
	return nil
}

// Close 断开连接，等待缓冲的消息刷出
func (n *NatsNotifier) Close() {
	if n.conn == nil {
		return
	}
	_ = n.conn.Drain()
}
