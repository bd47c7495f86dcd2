package validation

import (
	"strconv"
	"strings"

	"purchasing/errors"
)

// CSV 列名（首行表头必须提供这三列）
const (
	ColModelNumber = "Model Number"
	ColUnitPrice   = "Unit Price"
	ColQuantity    = "Quantity"
)

// Row 一条通过校验的 CSV 数据行
type Row struct {
	ModelNumber string
	UnitPrice   float64
	Quantity    int64
}

// NewRowError 行校验错误。
//
// 有意保持粗粒度：调用方只得到“行无效”，不暴露具体行号或列。
// 这个小工具的使用方式是修复文件后整体重新提交，逐行诊断不是目标。
func NewRowError() error {
	return errors.NewError(errors.ErrCodeRowValidation, "invalid csv row")
}

// CheckModelNumber 校验型号：不允许整体可解析为整数的值。
// 纯数字的“型号”几乎总是列错位或格式损坏的行，直接拒绝。
func CheckModelNumber(raw string) error {
	if _, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64); err == nil {
		return NewRowError()
	}
	return nil
}

// CoerceUnitPrice 将单价文本强制转换为浮点数，非负
func CoerceUnitPrice(raw string) (float64, error) {
	price, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, NewRowError()
	}
	if price < 0 {
		return 0, NewRowError()
	}
	return price, nil
}

// CoerceQuantity 将数量文本强制转换为整数
func CoerceQuantity(raw string) (int64, error) {
	qty, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, NewRowError()
	}
	return qty, nil
}

// ValidateRow 将一条解码后的 CSV 记录（列名 -> 原始文本）校验并
// 强制转换为类型化的 Row。任何一条规则失败都返回行校验错误。
func ValidateRow(record map[string]string) (Row, error) {
	model := record[ColModelNumber]
	if err := CheckModelNumber(model); err != nil {
		return Row{}, err
	}

	price, err := CoerceUnitPrice(record[ColUnitPrice])
	if err != nil {
		return Row{}, err
	}

	qty, err := CoerceQuantity(record[ColQuantity])
	if err != nil {
		return Row{}, err
	}

	return Row{
		ModelNumber: model,
		UnitPrice:   price,
		Quantity:    qty,
	}, nil
}
