// Package order 定义采购单领域模型与持久化契约。
package order

import (
	"context"
	"time"
)

// LineItem CSV 中的一条采购明细。
// 明细完全归属于其采购单，没有独立生命周期。
type LineItem struct {
	ID          int64   `json:"id"`
	OrderID     int64   `json:"orderId"`
	ModelNumber string  `json:"modelNumber"`
	UnitPrice   float64 `json:"unitPrice"`
	Quantity    int64   `json:"quantity"`
}

// PurchaseOrder 一次提交的采购单。
// 由 Assembler 在内存中构造，经 IOrderStore 一次性原子持久化，此后不再变更。
type PurchaseOrder struct {
	ID        int64      `json:"id"`
	Vendor    string     `json:"vendor"`
	Date      time.Time  `json:"date"`
	CSVFile   string     `json:"csvFile"`
	Items     []LineItem `json:"items"`
	CreatedAt time.Time  `json:"createdAt"`
}

// IOrderStore 采购单存储契约。
//
// CreateOrder 必须是原子的：采购单与全部明细要么一起持久化，
// 要么完全不落库。返回带生成标识的持久化副本。
type IOrderStore interface {
	CreateOrder(ctx context.Context, po *PurchaseOrder) (*PurchaseOrder, error)
	GetOrder(ctx context.Context, id int64) (*PurchaseOrder, error)
}
