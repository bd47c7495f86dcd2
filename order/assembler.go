package order

import (
	"time"

	"purchasing/errors"
	"purchasing/validation"
)

// Assembler 将表单字段与通过校验的明细组装为待持久化的采购单
type Assembler struct {
	// RejectEmpty 是否拒绝零明细的采购单。
	// 默认关闭：空 CSV（仅表头）被视为合法的空采购单。
	RejectEmpty bool
}

// NewAssembler 创建默认策略的组装器
func NewAssembler() *Assembler {
	return &Assembler{}
}

// ValidateFields 校验顶层表单字段（供应商、日期），
// 在文件被流式解析之前调用，失败即终止请求。
func (a *Assembler) ValidateFields(vendor, rawDate string) (time.Time, error) {
	if err := validation.ValidateVendor(vendor); err != nil {
		return time.Time{}, err
	}
	return validation.ParseOrderDate(rawDate)
}

// Assemble 组合已校验的字段与明细，产出待持久化的采购单。
// date 必须来自 ValidateFields 的返回值。
func (a *Assembler) Assemble(vendor string, date time.Time, fileRef string, items []LineItem) (*PurchaseOrder, error) {
	if a.RejectEmpty && len(items) == 0 {
		return nil, errors.NewError(errors.ErrCodeFieldValidation,
			"csv file contains no line items")
	}

	return &PurchaseOrder{
		Vendor:  vendor,
		Date:    date,
		CSVFile: fileRef,
		Items:   items,
	}, nil
}
