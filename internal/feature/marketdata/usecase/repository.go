package usecase

import (
	"context"

	"marketroach/internal/feature/marketdata/domain/entity"
)

// RecordRepository はマージ済みレコードの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type RecordRepository interface {
	// UpsertBatch はレコードを (symbol, interval, time) をキーとして一括
	// upsertします。同一キーの既存行は全フィールドが新しい値で置き換えられます。
	UpsertBatch(ctx context.Context, records []entity.AggregateRecord) error

	// InsertBatch はレコードをupsertせずに追加します。
	InsertBatch(ctx context.Context, records []entity.AggregateRecord) error

	// FindRange は指定範囲 [startMs, endMs]（両端含む）のレコードを時刻の
	// 降順で返します。interval が空でない場合は完全一致でフィルタします。
	FindRange(ctx context.Context, symbol, interval string, startMs, endMs int64) ([]entity.AggregateRecord, error)
}

// ErrorRepository は失敗イベントの追記専用ストアを抽象化します。
type ErrorRepository interface {
	Record(ctx context.Context, rec entity.ErrorRecord) error
}

// MarketRepository は外部マーケットデータプロバイダを抽象化します。
// FetchCycle は3つのリソース（バー集計・RSI・SMA）を並行に取得し、
// 個々の成否をタグ付きの結果として返します。1つの失敗が他を
// キャンセルすることはありません。リトライはスケジューラの責務です。
type MarketRepository interface {
	FetchCycle(ctx context.Context, win entity.FetchWindow) entity.CycleData
}
