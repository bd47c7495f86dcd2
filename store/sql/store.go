// Package sql 提供基于 SQL 的采购单存储实现。
//
// CreateOrder 在单个事务内写入采购单与全部明细：任一 INSERT 失败即整体
// 回滚，库中绝不出现缺明细的采购单。
package sql

import (
	"context"
	stdsql "database/sql"
	"time"

	"purchasing/errors"
	"purchasing/logging"
	"purchasing/order"
	"purchasing/storage/database"
)

const (
	defaultOrdersTable = "purchase_orders"
	defaultItemsTable  = "line_items"
)

// OrderStore order.IOrderStore 的 SQL 实现
type OrderStore struct {
	db          database.IDatabase
	ordersTable string
	itemsTable  string
	logger      logging.Logger
}

// Option 存储配置修改函数
type Option func(*OrderStore)

// WithTables 覆盖默认表名（测试或多环境部署时使用）
func WithTables(ordersTable, itemsTable string) Option {
	return func(s *OrderStore) {
		if ordersTable != "" {
			s.ordersTable = ordersTable
		}
		if itemsTable != "" {
			s.itemsTable = itemsTable
		}
	}
}

// WithLogger 注入日志实现
func WithLogger(logger logging.Logger) Option {
	return func(s *OrderStore) {
		if logger != nil {
			s.logger = logger.WithFields(logging.String("component", "store.sql"))
		}
	}
}

// NewOrderStore 创建采购单存储
func NewOrderStore(db database.IDatabase, opts ...Option) *OrderStore {
	s := &OrderStore{
		db:          db,
		ordersTable: defaultOrdersTable,
		itemsTable:  defaultItemsTable,
		logger:      logging.GetLogger().WithFields(logging.String("component", "store.sql")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Migrate 初始化表结构（幂等）
func (s *OrderStore) Migrate(ctx context.Context) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS ` + s.ordersTable + ` (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			vendor TEXT NOT NULL,
			date TEXT NOT NULL,
			csv_file TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS ` + s.itemsTable + ` (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			order_id INTEGER NOT NULL REFERENCES ` + s.ordersTable + `(id),
			model_number TEXT NOT NULL,
			unit_price REAL NOT NULL,
			quantity INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_` + s.itemsTable + `_order_id
			ON ` + s.itemsTable + ` (order_id)`,
	}

	for _, stmt := range ddl {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return errors.WrapError(err, errors.ErrCodePersistence, err.Error())
		}
	}
	return nil
}

// CreateOrder 原子创建采购单及其全部明细，返回带生成标识的持久化副本。
// 存储层错误消息按原样透传给调用方（内部工具约定，见错误处理设计）。
func (s *OrderStore) CreateOrder(ctx context.Context, po *order.PurchaseOrder) (*order.PurchaseOrder, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrCodePersistence, err.Error())
	}

	persisted, err := s.createInTx(ctx, tx, po)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error(ctx, "rollback failed", logging.Error(rbErr))
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.WrapError(err, errors.ErrCodePersistence, err.Error())
	}

	s.logger.Info(ctx, "purchase order persisted",
		logging.Int64("order_id", persisted.ID),
		logging.Int("items", len(persisted.Items)))
	return persisted, nil
}

func (s *OrderStore) createInTx(ctx context.Context, tx database.ITransaction, po *order.PurchaseOrder) (*order.PurchaseOrder, error) {
	now := time.Now().UTC()

	res, err := tx.Exec(ctx,
		`INSERT INTO `+s.ordersTable+` (vendor, date, csv_file, created_at) VALUES (?, ?, ?, ?)`,
		po.Vendor, po.Date.UTC().Format(time.RFC3339), po.CSVFile, now.Format(time.RFC3339))
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrCodePersistence, err.Error())
	}
	orderID, err := res.LastInsertId()
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrCodePersistence, err.Error())
	}

	persisted := &order.PurchaseOrder{
		ID:        orderID,
		Vendor:    po.Vendor,
		Date:      po.Date,
		CSVFile:   po.CSVFile,
		Items:     make([]order.LineItem, 0, len(po.Items)),
		CreatedAt: now,
	}

	for _, item := range po.Items {
		res, err := tx.Exec(ctx,
			`INSERT INTO `+s.itemsTable+` (order_id, model_number, unit_price, quantity) VALUES (?, ?, ?, ?)`,
			orderID, item.ModelNumber, item.UnitPrice, item.Quantity)
		if err != nil {
			return nil, errors.WrapError(err, errors.ErrCodePersistence, err.Error())
		}
		itemID, err := res.LastInsertId()
		if err != nil {
			return nil, errors.WrapError(err, errors.ErrCodePersistence, err.Error())
		}
		persisted.Items = append(persisted.Items, order.LineItem{
			ID:          itemID,
			OrderID:     orderID,
			ModelNumber: item.ModelNumber,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
		})
	}

	return persisted, nil
}

// GetOrder 按标识读取采购单及其全部明细
func (s *OrderStore) GetOrder(ctx context.Context, id int64) (*order.PurchaseOrder, error) {
	var (
		po        order.PurchaseOrder
		dateRaw   string
		createdAt string
	)
	err := s.db.QueryRow(ctx,
		`SELECT id, vendor, date, csv_file, created_at FROM `+s.ordersTable+` WHERE id = ?`, id).
		Scan(&po.ID, &po.Vendor, &dateRaw, &po.CSVFile, &createdAt)
	if err == stdsql.ErrNoRows {
		return nil, errors.WrapError(err, errors.ErrCodeNotFound, "purchase order not found")
	}
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrCodePersistence, err.Error())
	}

	if po.Date, err = time.Parse(time.RFC3339, dateRaw); err != nil {
		return nil, errors.WrapError(err, errors.ErrCodePersistence, "corrupt date column")
	}
	if po.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, errors.WrapError(err, errors.ErrCodePersistence, "corrupt created_at column")
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, order_id, model_number, unit_price, quantity FROM `+s.itemsTable+` WHERE order_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrCodePersistence, err.Error())
	}
	defer rows.Close()

	po.Items = make([]order.LineItem, 0, 8)
	for rows.Next() {
		var item order.LineItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ModelNumber, &item.UnitPrice, &item.Quantity); err != nil {
			return nil, errors.WrapError(err, errors.ErrCodePersistence, err.Error())
		}
		po.Items = append(po.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapError(err, errors.ErrCodePersistence, err.Error())
	}

	return &po, nil
}
