// Package database 提供通用的数据库抽象接口
//
// 设计目标：
// 1. 隔离具体的 SQL 驱动，核心代码只依赖本包接口
// 2. 支持事务操作（采购单的原子创建依赖它）
// 3. 便于单元测试（内存 sqlite 即可覆盖）
package database

import (
	"context"
	"database/sql"
)

// IDatabase 通用数据库接口
type IDatabase interface {
	// 查询操作
	Query(ctx context.Context, query string, args ...any) (IRows, error)
	QueryRow(ctx context.Context, query string, args ...any) IRow

	// 执行操作
	Exec(ctx context.Context, query string, args ...any) (sql.Result, error)

	// 事务操作
	Begin(ctx context.Context) (ITransaction, error)

	// 连接管理
	Ping(ctx context.Context) error
	Close() error
}

// ITransaction 事务接口
type ITransaction interface {
	IDatabase

	// 事务控制
	Commit() error
	Rollback() error
}

// IRows 查询结果集接口
type IRows interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
	Err() error
}

// IRow 单行结果接口
type IRow interface {
	Scan(dest ...any) error
	Err() error
}

// DBConfig 数据库配置
type DBConfig struct {
	// Driver 驱动名；调用方必须确保该驱动已通过空导入注册
	// （例如应用或测试层显式 `_ "modernc.org/sqlite"`）
	Driver string

	// DSN 数据源；sqlite 场景下为文件路径或 ":memory:"
	DSN string

	// 连接池配置
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // 秒
	ConnMaxIdleTime int // 秒
}
