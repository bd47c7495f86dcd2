package errors

import (
	"database/sql"
	"encoding/csv"
	stdErrors "errors"
)

// Normalize 将基础设施层的错误规范化为 AppError。
//
// 设计目标：
//   - 对外统一暴露 ErrorCode 体系，避免 HTTP 层出现一堆“裸”错误类型；
//   - 保留原始错误作为 cause，方便日志与调试。
//
// 注意：
//   - 如果传入的 err 已经是 IError，则原样返回；
//   - 未识别的错误保持原样，不强行包装，交由调用方决定是否 Wrap。
func Normalize(err error) error {
	if err == nil {
		return nil
	}

	// 已经是 AppError，直接返回
	if _, ok := err.(IError); ok {
		return err
	}

	// CSV 结构性解析错误（非数据行校验失败）
	var parseErr *csv.ParseError
	if stdErrors.As(err, &parseErr) {
		return WrapError(err, ErrCodeMalformedFile, "malformed csv file")
	}

	// 数据库查询未命中
	if stdErrors.Is(err, sql.ErrNoRows) {
		return WrapError(err, ErrCodeNotFound, "record not found")
	}

	// 未识别的错误保持原样
	return err
}
