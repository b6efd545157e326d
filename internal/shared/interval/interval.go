// Package interval は時間足名（second, minute, hour, day, week）と
// ミリ秒値の変換ユーティリティを提供します。
package interval

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownInterval は未対応の時間足名が指定された場合に返されます。
var ErrUnknownInterval = errors.New("unknown interval")

// millisByName は対応している時間足とそのミリ秒値の対応表です。
var millisByName = map[string]int64{
	"second": 1000,
	"minute": 60_000,
	"hour":   3_600_000,
	"day":    86_400_000,
	"week":   604_800_000,
}

// ToMillis は時間足名をミリ秒整数に変換します。
// 未対応の名前の場合は ErrUnknownInterval を返します（暗黙のデフォルト値は返しません）。
func ToMillis(name string) (int64, error) {
	ms, ok := millisByName[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownInterval, name)
	}
	return ms, nil
}
