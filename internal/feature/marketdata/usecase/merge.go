// Package usecase はmarketdataフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"fmt"
	"math"
	"strconv"

	"marketroach/internal/feature/marketdata/domain/entity"
)

const (
	// indicatorPrecision はRSI/SMA値を丸める小数点以下の桁数です。
	indicatorPrecision = 4

	// mergeSource はマージエンジンが発行するErrorRecordのsourceフィールド値です。
	mergeSource = "marketdata/merge"
)

// roundIndicator は指標値を小数点以下4桁に丸めます。
func roundIndicator(v float64) float64 {
	pow := math.Pow10(indicatorPrecision)
	return math.Round(v*pow) / pow
}

// BuildRecords folds the three provider payloads of one poll cycle into a
// single mapping from bar-open timestamp to merged record. It is pure: no
// I/O, deterministic for identical inputs, and the three merge steps run in
// a fixed sequence (aggregates → RSI → SMA) because the indicator steps are
// keyed lookups into the prior step's output.
//
// Failed or malformed payloads yield ErrorRecords instead of synthetic rows:
//   - aggregates missing → step skipped, no zero-valued placeholder bars
//   - RSI/SMA missing → step skipped entirely, no partial merge
//
// Indicator data points whose timestamp has no bar (different provider
// retention windows) create minimal identity-plus-indicator records rather
// than being dropped.
func BuildRecords(
	symbol, interval, fetchTime string, cycle entity.CycleData,
) (map[int64]*entity.AggregateRecord, []entity.ErrorRecord) {
	records := make(map[int64]*entity.AggregateRecord)
	var errs []entity.ErrorRecord

	// Step 1: 集計バーで全レコードをシードする
	if payload, details := shapedAggregates(cycle.Aggregates); payload == nil {
		errs = append(errs, entity.ErrorRecord{
			Time:        fetchTime,
			Description: fmt.Sprintf("aggregate data error for %s/%s", symbol, interval),
			Source:      mergeSource,
			Details:     details,
		})
	} else {
		for _, bar := range payload.Results {
			o, c, h, l := bar.Open, bar.Close, bar.Highest, bar.Lowest
			v, vw, n := bar.Volume, bar.VWAP, bar.Number
			records[bar.Time] = &entity.AggregateRecord{
				Symbol:    symbol,
				Interval:  interval,
				Time:      strconv.FormatInt(bar.Time, 10),
				Open:      &o,
				Close:     &c,
				Highest:   &h,
				Lowest:    &l,
				Volume:    &v,
				VWAP:      &vw,
				Number:    &n,
				FetchTime: fetchTime,
				Options:   map[string]string{entity.SourceAggregate: payload.RequestID},
			}
		}
	}

	// Step 2: RSIをマージする
	errs = mergeIndicator(records, symbol, interval, fetchTime, cycle.RSI, entity.SourceRSI, errs)

	// Step 3: SMAをマージする（Step 2と同じcreate-if-absentポリシー）
	errs = mergeIndicator(records, symbol, interval, fetchTime, cycle.SMA, entity.SourceSMA, errs)

	return records, errs
}

// mergeIndicator は1つの指標ペイロードをレコードマップへマージします。
// 既存レコードには指標値とリクエストIDのみを設定し、他のフィールドには触れません。
// タイムスタンプが未知の場合はアイデンティティ＋指標値のみの最小レコードを作成します。
func mergeIndicator(
	records map[int64]*entity.AggregateRecord,
	symbol, interval, fetchTime string,
	result entity.IndicatorResult,
	source string,
	errs []entity.ErrorRecord,
) []entity.ErrorRecord {
	payload, details := shapedIndicator(result)
	if payload == nil {
		return append(errs, entity.ErrorRecord{
			Time:        fetchTime,
			Description: fmt.Sprintf("%s data error for %s/%s", source, symbol, interval),
			Source:      mergeSource,
			Details:     details,
		})
	}

	for _, v := range payload.Values {
		value := roundIndicator(v.Value)
		rec, ok := records[v.Timestamp]
		if !ok {
			rec = &entity.AggregateRecord{
				Symbol:    symbol,
				Interval:  interval,
				Time:      strconv.FormatInt(v.Timestamp, 10),
				FetchTime: fetchTime,
				Options:   map[string]string{},
			}
			records[v.Timestamp] = rec
		}
		switch source {
		case entity.SourceRSI:
			rec.RSI14 = &value
		case entity.SourceSMA:
			rec.SMA5 = &value
		}
		if rec.Options == nil {
			rec.Options = map[string]string{}
		}
		rec.Options[source] = payload.RequestID
	}
	return errs
}

// shapedAggregates は集計バー呼び出しの結果を検査し、期待する形であれば
// ペイロードを、そうでなければ診断用テキストを返します。
func shapedAggregates(result entity.AggregatesResult) (*entity.AggregatesPayload, string) {
	switch {
	case result.Err != nil:
		return nil, result.Err.Error()
	case result.Payload == nil:
		return nil, "empty payload"
	case result.Payload.Results == nil:
		return nil, fmt.Sprintf("missing results (request_id=%s)", result.Payload.RequestID)
	}
	return result.Payload, ""
}

// shapedIndicator は指標呼び出しの結果を検査します。shapedAggregatesと対になります。
func shapedIndicator(result entity.IndicatorResult) (*entity.IndicatorPayload, string) {
	switch {
	case result.Err != nil:
		return nil, result.Err.Error()
	case result.Payload == nil:
		return nil, "empty payload"
	case result.Payload.Values == nil:
		return nil, fmt.Sprintf("missing results.values (request_id=%s)", result.Payload.RequestID)
	}
	return result.Payload, ""
}
