// Package ingest 实现采购单 CSV 的流式摄取。
//
// 摄取是对行流的一次折叠：每条记录被解码、校验并归约为 rowOutcome，
// 最终要么得到完整的明细序列，要么得到首个行校验错误。
// 关键约束：
//   - 逐行消费，绝不整体缓冲文件；
//   - 首个行错误只记录不中断，继续把流读完（避免未消费的流泄漏资源），
//     最终只向调用方报告这一个错误（first-error-wins）；
//   - CSV 结构性损坏（引号不闭合、列数不一致等）立即中止，
//     与数据行校验失败区分开。
package ingest

import (
	"context"
	"encoding/csv"
	"io"

	"purchasing/errors"
	"purchasing/logging"
	"purchasing/order"
	"purchasing/validation"
)

// Ingestor 流式 CSV 摄取器，可跨请求复用，无内部状态
type Ingestor struct {
	logger logging.Logger
}

// NewIngestor 创建摄取器
func NewIngestor(logger logging.Logger) *Ingestor {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Ingestor{
		logger: logger.WithFields(logging.String("component", "ingest")),
	}
}

// rowOutcome 单行归约结果：有效明细或行错误
type rowOutcome struct {
	item order.LineItem
	err  error
}

func decideRow(record map[string]string) rowOutcome {
	row, err := validation.ValidateRow(record)
	if err != nil {
		return rowOutcome{err: err}
	}
	return rowOutcome{item: order.LineItem{
		ModelNumber: row.ModelNumber,
		UnitPrice:   row.UnitPrice,
		Quantity:    row.Quantity,
	}}
}

// Ingest 从 r 流式读取 CSV（首行为表头），返回通过校验的有序明细，
// 或首个遇到的错误。零数据行返回空序列而非错误。
//
// 调用方断开连接时通过 ctx 取消：取消后停止消费并返回 ctx.Err()，
// 上层不得再发起持久化。
func (ing *Ingestor) Ingest(ctx context.Context, r io.Reader) ([]order.LineItem, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		// 完全空的文件：零数据行
		return []order.LineItem{}, nil
	}
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrCodeMalformedFile, "malformed csv file")
	}

	var (
		items    = make([]order.LineItem, 0, 16)
		firstErr error
		rowCount int
	)

	for {
		if err := ctx.Err(); err != nil {
			ing.logger.Warn(ctx, "csv ingestion cancelled", logging.Int("rows_read", rowCount))
			return nil, err
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// 结构性解析错误：立即中止，不再继续消费
			return nil, errors.WrapError(err, errors.ErrCodeMalformedFile, "malformed csv file")
		}
		rowCount++

		outcome := decideRow(recordToMap(header, record))
		switch {
		case outcome.err != nil && firstErr == nil:
			firstErr = outcome.err
		case outcome.err == nil && firstErr == nil:
			items = append(items, outcome.item)
		default:
			// 首错之后的行结果被丢弃，但流必须读完
		}
	}

	if firstErr != nil {
		ing.logger.Info(ctx, "csv ingestion rejected",
			logging.Int("rows_read", rowCount), logging.Error(firstErr))
		return nil, firstErr
	}

	ing.logger.Debug(ctx, "csv ingestion accepted", logging.Int("rows", len(items)))
	return items, nil
}

// recordToMap 按表头把一条记录转换为 列名 -> 原始文本。
// 记录缺列时对应值为空串，由行校验以强转失败的形式拒绝。
func recordToMap(header, record []string) map[string]string {
	m := make(map[string]string, len(header))
	for i, col := range header {
		if i < len(record) {
			m[col] = record[i]
		} else {
			m[col] = ""
		}
	}
	return m
}
