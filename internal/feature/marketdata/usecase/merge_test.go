package usecase

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"marketroach/internal/feature/marketdata/domain/entity"
)

const (
	testFetchTime = "1709560000000"
)

// okCycle は3ソースすべてが正常なペイロードを返したサイクルデータを作ります。
func okCycle() entity.CycleData {
	return entity.CycleData{
		Aggregates: entity.AggregatesResult{Payload: &entity.AggregatesPayload{
			RequestID: "a1",
			Results: []entity.Bar{
				{Time: 1000, Open: 10, Close: 11, Highest: 12, Lowest: 9, Volume: 100, VWAP: 10.5, Number: 5},
			},
		}},
		RSI: entity.IndicatorResult{Payload: &entity.IndicatorPayload{
			RequestID: "r1",
			Values:    []entity.IndicatorValue{{Timestamp: 1000, Value: 55.4321}},
		}},
		SMA: entity.IndicatorResult{Payload: &entity.IndicatorPayload{
			RequestID: "s1",
			Values:    []entity.IndicatorValue{{Timestamp: 1000, Value: 10.987}},
		}},
	}
}

func TestBuildRecords_FullMerge(t *testing.T) {
	t.Parallel()

	records, errs := BuildRecords("SPY", "minute", testFetchTime, okCycle())

	if len(errs) != 0 {
		t.Fatalf("unexpected error records: %+v", errs)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	rec, ok := records[1000]
	if !ok {
		t.Fatal("record for timestamp 1000 not found")
	}
	if rec.Symbol != "SPY" || rec.Interval != "minute" || rec.Time != "1000" {
		t.Errorf("identity mismatch: %+v", rec)
	}
	if rec.FetchTime != testFetchTime {
		t.Errorf("FetchTime = %q, want %q", rec.FetchTime, testFetchTime)
	}
	if *rec.Open != 10 || *rec.Close != 11 || *rec.Highest != 12 || *rec.Lowest != 9 {
		t.Errorf("OHLC mismatch: %+v", rec)
	}
	if *rec.Volume != 100 || *rec.VWAP != 10.5 || *rec.Number != 5 {
		t.Errorf("volume fields mismatch: %+v", rec)
	}
	if rec.RSI14 == nil || *rec.RSI14 != 55.4321 {
		t.Errorf("RSI14 = %v, want 55.4321", rec.RSI14)
	}
	if rec.SMA5 == nil || *rec.SMA5 != 10.987 {
		t.Errorf("SMA5 = %v, want 10.987", rec.SMA5)
	}

	wantOptions := map[string]string{
		entity.SourceAggregate: "a1",
		entity.SourceRSI:       "r1",
		entity.SourceSMA:       "s1",
	}
	if !reflect.DeepEqual(rec.Options, wantOptions) {
		t.Errorf("Options = %v, want %v", rec.Options, wantOptions)
	}
}

// TestBuildRecords_Idempotent は同一入力に対して常に同一の出力マップが
// 得られることを検証します。
func TestBuildRecords_Idempotent(t *testing.T) {
	t.Parallel()

	first, _ := BuildRecords("SPY", "minute", testFetchTime, okCycle())
	second, _ := BuildRecords("SPY", "minute", testFetchTime, okCycle())

	if !reflect.DeepEqual(first, second) {
		t.Errorf("merge output differs between identical runs:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

// TestBuildRecords_AggregatesComplete は集計ペイロード内の全タイムスタンプが
// 出力マップのキーとして現れることを検証します。
func TestBuildRecords_AggregatesComplete(t *testing.T) {
	t.Parallel()

	cycle := okCycle()
	cycle.Aggregates.Payload.Results = []entity.Bar{
		{Time: 1000, Open: 10, Close: 11, Highest: 12, Lowest: 9},
		{Time: 2000, Open: 11, Close: 12, Highest: 13, Lowest: 10},
		{Time: 3000, Open: 12, Close: 13, Highest: 14, Lowest: 11},
	}

	records, _ := BuildRecords("SPY", "minute", testFetchTime, cycle)

	for _, ts := range []int64{1000, 2000, 3000} {
		if _, ok := records[ts]; !ok {
			t.Errorf("timestamp %d missing from output map", ts)
		}
	}
}

// TestBuildRecords_AdditiveUnion は集計に存在しないタイムスタンプのRSI値が
// 最小レコードとして出力されることを検証します（黙って捨てられない）。
func TestBuildRecords_AdditiveUnion(t *testing.T) {
	t.Parallel()

	cycle := okCycle()
	cycle.RSI.Payload.Values = append(cycle.RSI.Payload.Values,
		entity.IndicatorValue{Timestamp: 9000, Value: 42.12344})

	records, errs := BuildRecords("SPY", "minute", testFetchTime, cycle)

	if len(errs) != 0 {
		t.Fatalf("unexpected error records: %+v", errs)
	}
	rec, ok := records[9000]
	if !ok {
		t.Fatal("RSI-only timestamp 9000 was dropped")
	}
	if rec.Open != nil || rec.Close != nil || rec.Volume != nil {
		t.Errorf("minimal record has bar fields populated: %+v", rec)
	}
	if rec.RSI14 == nil || *rec.RSI14 != 42.1234 { // 小数点以下4桁に丸め
		t.Errorf("RSI14 = %v, want 42.1234", rec.RSI14)
	}
	if rec.Symbol != "SPY" || rec.Time != "9000" || rec.FetchTime != testFetchTime {
		t.Errorf("minimal record identity mismatch: %+v", rec)
	}
	if rec.Options[entity.SourceRSI] != "r1" {
		t.Errorf("provenance missing: %v", rec.Options)
	}
}

// TestBuildRecords_SMACreateIfAbsent はSMAのみのタイムスタンプもRSIと同じ
// ポリシーで最小レコードになることを検証します。
func TestBuildRecords_SMACreateIfAbsent(t *testing.T) {
	t.Parallel()

	cycle := okCycle()
	cycle.SMA.Payload.Values = []entity.IndicatorValue{{Timestamp: 7000, Value: 12.5}}

	records, errs := BuildRecords("SPY", "minute", testFetchTime, cycle)

	if len(errs) != 0 {
		t.Fatalf("unexpected error records: %+v", errs)
	}
	rec, ok := records[7000]
	if !ok {
		t.Fatal("SMA-only timestamp 7000 was dropped")
	}
	if rec.SMA5 == nil || *rec.SMA5 != 12.5 {
		t.Errorf("SMA5 = %v, want 12.5", rec.SMA5)
	}
	if rec.RSI14 != nil || rec.Open != nil {
		t.Errorf("SMA-only record has unrelated fields: %+v", rec)
	}
}

// TestBuildRecords_SMANeverOverwrites はSMAステップが既存レコードの
// RSI/OHLCフィールドを上書きしないことを検証します。
func TestBuildRecords_SMANeverOverwrites(t *testing.T) {
	t.Parallel()

	records, _ := BuildRecords("SPY", "minute", testFetchTime, okCycle())

	rec := records[1000]
	if *rec.Open != 10 || *rec.Close != 11 {
		t.Errorf("bar fields changed after SMA merge: %+v", rec)
	}
	if *rec.RSI14 != 55.4321 {
		t.Errorf("RSI14 changed after SMA merge: %v", *rec.RSI14)
	}
	if *rec.SMA5 != 10.987 {
		t.Errorf("SMA5 = %v, want 10.987", *rec.SMA5)
	}
}

func TestBuildRecords_IndicatorRounding(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		value    float64
		expected float64
	}{
		{name: "rounds down", value: 55.43214, expected: 55.4321},
		{name: "rounds up", value: 55.43216, expected: 55.4322},
		{name: "already short", value: 55.4, expected: 55.4},
		{name: "negative", value: -1.23456, expected: -1.2346},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cycle := okCycle()
			cycle.RSI.Payload.Values = []entity.IndicatorValue{{Timestamp: 1000, Value: tt.value}}

			records, _ := BuildRecords("SPY", "minute", testFetchTime, cycle)
			if got := *records[1000].RSI14; got != tt.expected {
				t.Errorf("rounded RSI = %v, want %v", got, tt.expected)
			}
		})
	}
}

// TestBuildRecords_MissingAggregates は集計ペイロードにresultsが無い場合、
// マップは空のままでエラーレコードが1件発行されることを検証します。
// ゼロ値のダミーバーは決して合成しません。
func TestBuildRecords_MissingAggregates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		result entity.AggregatesResult
	}{
		{
			name:   "call failed",
			result: entity.AggregatesResult{Err: errors.New("connection refused")},
		},
		{
			name:   "nil payload",
			result: entity.AggregatesResult{},
		},
		{
			name:   "results key absent",
			result: entity.AggregatesResult{Payload: &entity.AggregatesPayload{RequestID: "a1"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cycle := entity.CycleData{Aggregates: tt.result}

			records, errs := BuildRecords("SPY", "minute", testFetchTime, cycle)

			// RSI/SMAも欠損なので計3件のエラーレコード
			if len(errs) != 3 {
				t.Fatalf("expected 3 error records, got %d: %+v", len(errs), errs)
			}
			if len(records) != 0 {
				t.Errorf("expected empty record map, got %d entries", len(records))
			}
			if !strings.Contains(errs[0].Description, "aggregate") {
				t.Errorf("first error should mention aggregate: %q", errs[0].Description)
			}
			if errs[0].Time != testFetchTime || errs[0].Source != mergeSource {
				t.Errorf("error record metadata mismatch: %+v", errs[0])
			}
		})
	}
}

// TestBuildRecords_MissingIndicator は指標ペイロードの形が崩れている場合に
// そのステップ全体がスキップされることを検証します（部分マージはしない）。
func TestBuildRecords_MissingIndicator(t *testing.T) {
	t.Parallel()

	cycle := okCycle()
	cycle.RSI = entity.IndicatorResult{Payload: &entity.IndicatorPayload{RequestID: "r1"}} // values欠損

	records, errs := BuildRecords("SPY", "minute", testFetchTime, cycle)

	if len(errs) != 1 {
		t.Fatalf("expected 1 error record, got %d: %+v", len(errs), errs)
	}
	if !strings.Contains(errs[0].Description, entity.SourceRSI) {
		t.Errorf("error should mention rsi14: %q", errs[0].Description)
	}

	rec := records[1000]
	if rec.RSI14 != nil {
		t.Errorf("RSI14 should be absent after skipped step, got %v", *rec.RSI14)
	}
	// SMAステップは独立して成功する
	if rec.SMA5 == nil || *rec.SMA5 != 10.987 {
		t.Errorf("SMA5 = %v, want 10.987", rec.SMA5)
	}
	if _, ok := rec.Options[entity.SourceRSI]; ok {
		t.Errorf("rsi provenance should be absent: %v", rec.Options)
	}
}
