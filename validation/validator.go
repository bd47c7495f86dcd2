// Package validation 提供采购单提交管道的纯校验规则。
//
// 所有规则都是无副作用的纯函数：表单字段规则（供应商、日期）与
// CSV 数据行规则（见 row.go）分别对应管道的字段校验与行校验阶段。
package validation

import (
	"fmt"
	"strings"
	"time"

	"purchasing/errors"
)

const (
	// VendorMinLength 供应商名称最小长度
	VendorMinLength = 4
)

// MinOrderDate 允许的最早采购日期
var MinOrderDate = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// 日期解析按顺序尝试的格式；表单既可能提交 ISO 日期，
// 也可能提交浏览器 toISOString() 产生的 RFC3339 时间戳。
var orderDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
}

// ValidateVendor 验证供应商名称：必填且不少于 VendorMinLength 个字符
func ValidateVendor(vendor string) error {
	if strings.TrimSpace(vendor) == "" {
		return errors.NewError(errors.ErrCodeFieldValidation, "vendor is required")
	}
	if len(vendor) < VendorMinLength {
		return errors.NewError(errors.ErrCodeFieldValidation,
			fmt.Sprintf("vendor name must be at least %d characters", VendorMinLength))
	}
	return nil
}

// ParseOrderDate 解析并验证采购日期：
// 必须可解析为日历日期，且不早于 MinOrderDate。
func ParseOrderDate(raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, errors.NewError(errors.ErrCodeFieldValidation, "date is required")
	}

	var (
		parsed time.Time
		err    error
	)
	for _, layout := range orderDateLayouts {
		parsed, err = time.Parse(layout, raw)
		if err == nil {
			break
		}
	}
	if err != nil {
		return time.Time{}, errors.WrapError(err, errors.ErrCodeFieldValidation,
			"date must be a valid calendar date")
	}

	if parsed.Before(MinOrderDate) {
		return time.Time{}, errors.NewError(errors.ErrCodeFieldValidation,
			"date must be after 1900-01-01")
	}

	return parsed, nil
}
