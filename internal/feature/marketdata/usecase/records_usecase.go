package usecase

import (
	"context"
	"errors"

	"marketroach/internal/feature/marketdata/domain/entity"
)

// 入力検証用のセンチネルエラーです。
var (
	ErrSymbolRequired = errors.New("symbol required")
	ErrInvalidRange   = errors.New("start must be <= end")
)

// RecordsUsecase はマージ済みマーケットデータの照会ロジックを提供します。
type RecordsUsecase struct {
	records RecordRepository
}

// NewRecordsUsecase はRecordsUsecaseの新しいインスタンスを生成します。
func NewRecordsUsecase(records RecordRepository) *RecordsUsecase {
	return &RecordsUsecase{records: records}
}

// GetMarketData は指定シンボルのマージ済みレコードを時刻の降順で返します。
// interval が空の場合はすべての時間足を対象にします。範囲は両端を含みます。
func (u *RecordsUsecase) GetMarketData(
	ctx context.Context, symbol, interval string, startMs, endMs int64,
) ([]entity.AggregateRecord, error) {
	if symbol == "" {
		return nil, ErrSymbolRequired
	}
	if startMs > endMs {
		return nil, ErrInvalidRange
	}

	return u.records.FindRange(ctx, symbol, interval, startMs, endMs)
}
