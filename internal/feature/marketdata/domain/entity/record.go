// Package entity defines the domain models for the marketdata feature.
package entity

// AggregateRecord is the merged per-timestamp market data record built from
// the bar-aggregate, RSI and SMA provider payloads of one poll cycle.
//
// Identity is (Symbol, Interval, Time). Time is the provider's bar-open
// timestamp as string-encoded unix milliseconds; it is kept as a string to
// avoid precision loss across serialization boundaries. All non-identity
// fields are optional: a record seeded only by an indicator carries just the
// identity plus that indicator's value.
type AggregateRecord struct {
	Symbol   string
	Interval string
	Time     string

	Open    *float64
	Close   *float64
	Highest *float64
	Lowest  *float64
	Volume  *float64
	VWAP    *float64
	Number  *int64 // trade count within the bar

	RSI14 *float64
	SMA5  *float64

	// FetchTime is the unix-ms string of the poll cycle that produced this record.
	FetchTime string

	// Options maps each contributing source to its provider request id.
	// Serialized to JSON only at the storage boundary.
	Options map[string]string

	// Details is a free-text diagnostic, normally empty.
	Details string
}

// Options のキーとして使用する、データ提供元の名前です。
const (
	SourceAggregate = "aggregate"
	SourceRSI       = "rsi14"
	SourceSMA       = "sma5"
)
