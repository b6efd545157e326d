// Package marketclock は米国市場の取引セッション判定ユーティリティを提供します。
// ポーリング周期の決定にのみ使用し、フェッチのブロックには使用しません。
package marketclock

import "time"

const (
	// premarketOpenHour はプレマーケット開始時刻（UTC）です。
	premarketOpenHour = 4
	// closedWindowEndHour は「市場クローズ」とみなす時間帯の終端（UTC）です。
	closedWindowEndHour = 8
)

// IsClosed は指定時刻（UTC換算）がアフターアワーズ〜プレマーケットの
// クローズ時間帯 [00:00, 08:00) に含まれるかを返します。
func IsClosed(t time.Time) bool {
	return t.UTC().Hour() < closedWindowEndHour
}

// IsWeekend は指定時刻（UTC換算）が土曜または日曜かを返します。
func IsWeekend(t time.Time) bool {
	wd := t.UTC().Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// UntilPremarketOpen は次の午前4時（UTC）までの期間を返します。
// 当日の午前4時が既に過ぎている場合は翌日の午前4時を使用するため、
// 戻り値は常に正かつ24時間以内になります。
func UntilPremarketOpen(now time.Time) time.Duration {
	now = now.UTC()
	open := time.Date(now.Year(), now.Month(), now.Day(), premarketOpenHour, 0, 0, 0, time.UTC)
	if !open.After(now) {
		open = open.Add(24 * time.Hour)
	}
	return open.Sub(now)
}
