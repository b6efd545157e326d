// Package adapters provides GORM-backed persistence for the marketdata feature.
package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"marketroach/internal/feature/marketdata/domain/entity"
	"marketroach/internal/feature/marketdata/usecase"
)

// findRangeBatchSize は範囲クエリ1回あたりの取得行数です。大きな範囲でも
// メモリを抑えるためページ単位で読み出します。
const findRangeBatchSize = 125

type recordGorm struct {
	db *gorm.DB
}

var _ usecase.RecordRepository = (*recordGorm)(nil)

// NewRecordRepository はGORM接続を使うRecordRepositoryを生成します。
func NewRecordRepository(db *gorm.DB) *recordGorm {
	return &recordGorm{db: db}
}

// RecordModel はaggregate_logsテーブルの行を表します。
// 識別子は (symbol, interval, time_ms) の複合ユニークキーです。
type RecordModel struct {
	ID       uint   `gorm:"primaryKey"`
	Symbol   string `gorm:"size:32;not null;uniqueIndex:record_sym_int_time,priority:1"`
	Interval string `gorm:"size:16;not null;uniqueIndex:record_sym_int_time,priority:2"`
	TimeMs   int64  `gorm:"column:time_ms;not null;uniqueIndex:record_sym_int_time,priority:3"`

	Open    *float64
	Close   *float64
	Highest *float64
	Lowest  *float64
	Volume  *float64
	VWAP    *float64 `gorm:"column:vwap"`
	Number  *int64

	RSI14 *float64 `gorm:"column:rsi14"`
	SMA5  *float64 `gorm:"column:sma5"`

	FetchTime string `gorm:"size:32"`
	// Options はソース名→リクエストIDのマップをJSON文字列として保持します。
	Options string `gorm:"type:text"`
	Details string `gorm:"type:text"`
}

func (RecordModel) TableName() string {
	return "aggregate_logs"
}

func toRecordModel(e entity.AggregateRecord) (RecordModel, error) {
	ms, err := strconv.ParseInt(e.Time, 10, 64)
	if err != nil {
		return RecordModel{}, fmt.Errorf("parse record time %q: %w", e.Time, err)
	}

	var opts string
	if len(e.Options) > 0 {
		// json.Marshal はマップのキーをソートするため出力は決定的
		b, err := json.Marshal(e.Options)
		if err != nil {
			return RecordModel{}, fmt.Errorf("marshal record options: %w", err)
		}
		opts = string(b)
	}

	return RecordModel{
		Symbol:    e.Symbol,
		Interval:  e.Interval,
		TimeMs:    ms,
		Open:      e.Open,
		Close:     e.Close,
		Highest:   e.Highest,
		Lowest:    e.Lowest,
		Volume:    e.Volume,
		VWAP:      e.VWAP,
		Number:    e.Number,
		RSI14:     e.RSI14,
		SMA5:      e.SMA5,
		FetchTime: e.FetchTime,
		Options:   opts,
		Details:   e.Details,
	}, nil
}

func toRecordEntity(m RecordModel) (entity.AggregateRecord, error) {
	var opts map[string]string
	if m.Options != "" {
		if err := json.Unmarshal([]byte(m.Options), &opts); err != nil {
			return entity.AggregateRecord{}, fmt.Errorf("unmarshal record options: %w", err)
		}
	}

	return entity.AggregateRecord{
		Symbol:    m.Symbol,
		Interval:  m.Interval,
		Time:      strconv.FormatInt(m.TimeMs, 10),
		Open:      m.Open,
		Close:     m.Close,
		Highest:   m.Highest,
		Lowest:    m.Lowest,
		Volume:    m.Volume,
		VWAP:      m.VWAP,
		Number:    m.Number,
		RSI14:     m.RSI14,
		SMA5:      m.SMA5,
		FetchTime: m.FetchTime,
		Options:   opts,
		Details:   m.Details,
	}, nil
}

func toRecordModels(records []entity.AggregateRecord) ([]RecordModel, error) {
	ms := make([]RecordModel, 0, len(records))
	for _, e := range records {
		m, err := toRecordModel(e)
		if err != nil {
			return nil, err
		}
		ms = append(ms, m)
	}
	return ms, nil
}

func (r *recordGorm) UpsertBatch(ctx context.Context, records []entity.AggregateRecord) error {
	if len(records) == 0 {
		return nil
	}
	ms, err := toRecordModels(records)
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "symbol"}, {Name: "interval"}, {Name: "time_ms"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"open", "close", "highest", "lowest", "volume", "vwap", "number",
			"rsi14", "sma5", "fetch_time", "options", "details",
		}),
	}).Create(&ms).Error
}

func (r *recordGorm) InsertBatch(ctx context.Context, records []entity.AggregateRecord) error {
	if len(records) == 0 {
		return nil
	}
	ms, err := toRecordModels(records)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(&ms).Error
}

// FindRange は [startMs, endMs]（両端含む）のレコードを time_ms 降順で返し
// ます。interval が空の場合は全intervalを対象にします。
func (r *recordGorm) FindRange(ctx context.Context, symbol, interval string, startMs, endMs int64) ([]entity.AggregateRecord, error) {
	var out []entity.AggregateRecord
	offset := 0
	for {
		q := r.db.WithContext(ctx).
			Where("symbol = ? AND time_ms >= ? AND time_ms <= ?", symbol, startMs, endMs)
		if interval != "" {
			q = q.Where(`"interval" = ?`, interval)
		}

		var rows []RecordModel
		if err := q.Order("time_ms DESC").
			Limit(findRangeBatchSize).
			Offset(offset).
			Find(&rows).Error; err != nil {
			return nil, err
		}
		for _, m := range rows {
			e, err := toRecordEntity(m)
			if err != nil {
				return nil, err
			}
			out = append(out, e)
		}
		if len(rows) < findRangeBatchSize {
			return out, nil
		}
		offset += findRangeBatchSize
	}
}
