package entity

// Bar is one OHLCV candle as reported by the bar-aggregate source.
type Bar struct {
	Time    int64 // bar-open timestamp in unix milliseconds
	Open    float64
	Close   float64
	Highest float64
	Lowest  float64
	Volume  float64
	VWAP    float64
	Number  int64
}

// AggregatesPayload is the provider's bar-aggregate response reduced to the
// fields the merge engine consumes. Results が nil の場合、プロバイダの
// レスポンスに results キーが存在しなかったことを意味します（欠損扱い）。
type AggregatesPayload struct {
	RequestID string
	Results   []Bar
}

// IndicatorValue is one (timestamp, value) indicator data point.
type IndicatorValue struct {
	Timestamp int64
	Value     float64
}

// IndicatorPayload is the provider's RSI/SMA response reduced to the fields
// the merge engine consumes. Values が nil の場合、results.values の形が
// 欠けていたことを意味します。
type IndicatorPayload struct {
	RequestID string
	Values    []IndicatorValue
}

// AggregatesResult is the tagged outcome of one bar-aggregate call:
// either Payload is set (Ok) or Err is set (Failed).
type AggregatesResult struct {
	Payload *AggregatesPayload
	Err     error
}

// IndicatorResult is the tagged outcome of one indicator call.
type IndicatorResult struct {
	Payload *IndicatorPayload
	Err     error
}

// CycleData collects the three independent fetch outcomes of one poll cycle.
// 1つの呼び出しが失敗しても他の2つの結果は保持されます。
type CycleData struct {
	Aggregates AggregatesResult
	RSI        IndicatorResult
	SMA        IndicatorResult
}
