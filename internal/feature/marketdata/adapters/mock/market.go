// Package mock provides in-memory stand-ins for the external provider and
// the persistence layer, enabling full end-to-end operation without network
// access or a database.
package mock

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"time"

	"marketroach/internal/feature/marketdata/domain/entity"
	"marketroach/internal/feature/marketdata/usecase"
	"marketroach/internal/shared/interval"
)

// maxMockEntries は1回のフェッチで生成するバー数の上限です。
const maxMockEntries = 960

// Market は決定的な合成データを返すMarketRepositoryです。
// 同じ (symbol, interval, 日付範囲) に対しては常に同じデータを返すため、
// upsertの冪等性をエンドツーエンドで確認できます。
type Market struct{}

var _ usecase.MarketRepository = (*Market)(nil)

func NewMarket() *Market {
	return &Market{}
}

// FetchCycle は3リソースすべてを合成データから組み立てます。失敗しません。
func (m *Market) FetchCycle(ctx context.Context, win entity.FetchWindow) entity.CycleData {
	bars, values, err := generate(win)
	if err != nil {
		return entity.CycleData{
			Aggregates: entity.AggregatesResult{Err: err},
			RSI:        entity.IndicatorResult{Err: err},
			SMA:        entity.IndicatorResult{Err: err},
		}
	}

	rsi := make([]entity.IndicatorValue, len(values))
	sma := make([]entity.IndicatorValue, len(values))
	for i, v := range values {
		rsi[i] = entity.IndicatorValue{Timestamp: v.Timestamp, Value: 30 + v.Value/2}
		sma[i] = entity.IndicatorValue{Timestamp: v.Timestamp, Value: v.Value}
	}

	return entity.CycleData{
		Aggregates: entity.AggregatesResult{
			Payload: &entity.AggregatesPayload{RequestID: requestID(win, "agg"), Results: bars},
		},
		RSI: entity.IndicatorResult{
			Payload: &entity.IndicatorPayload{RequestID: requestID(win, "rsi"), Values: rsi},
		},
		SMA: entity.IndicatorResult{
			Payload: &entity.IndicatorPayload{RequestID: requestID(win, "sma"), Values: sma},
		},
	}
}

// generate は日付範囲をintervalの刻み幅に揃えたタイムスタンプ列に展開し、
// シンボルをシードとする疑似乱数でバーを組み立てます。
func generate(win entity.FetchWindow) ([]entity.Bar, []entity.IndicatorValue, error) {
	step, err := interval.ToMillis(win.Interval)
	if err != nil {
		return nil, nil, err
	}

	start, err := time.Parse("2006-01-02", win.StartDate)
	if err != nil {
		return nil, nil, fmt.Errorf("parse start date %q: %w", win.StartDate, err)
	}
	end, err := time.Parse("2006-01-02", win.EndDate)
	if err != nil {
		return nil, nil, fmt.Errorf("parse end date %q: %w", win.EndDate, err)
	}

	startMs := start.UnixMilli()
	endMs := end.UnixMilli()
	if endMs < startMs {
		return nil, nil, fmt.Errorf("end date %s before start date %s", win.EndDate, win.StartDate)
	}

	// interval刻みに揃える
	startMs -= startMs % step

	rng := rand.New(rand.NewSource(seed(win.Symbol, win.Interval)))
	base := 50 + rng.Float64()*100

	var bars []entity.Bar
	var values []entity.IndicatorValue
	for ts := startMs; ts <= endMs && len(bars) < maxMockEntries; ts += step {
		o := base + rng.Float64()*4 - 2
		c := o + rng.Float64()*2 - 1
		h := o + rng.Float64()*2
		l := o - rng.Float64()*2
		v := float64(100 + rng.Intn(10_000))

		bars = append(bars, entity.Bar{
			Time:    ts,
			Open:    round2(o),
			Close:   round2(c),
			Highest: round2(h),
			Lowest:  round2(l),
			Volume:  v,
			VWAP:    round2((o + c) / 2),
			Number:  int64(1 + rng.Intn(500)),
		})
		values = append(values, entity.IndicatorValue{Timestamp: ts, Value: round2((o + c) / 2)})
		base = c
	}
	return bars, values, nil
}

func requestID(win entity.FetchWindow, source string) string {
	return fmt.Sprintf("mock-%s-%s-%s-%s", source, win.Symbol, win.Interval, win.StartDate)
}

func seed(symbol, intervalName string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(symbol))
	_, _ = h.Write([]byte(intervalName))
	return int64(h.Sum64())
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
