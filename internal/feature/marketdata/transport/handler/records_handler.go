// Package handler はmarketdataフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"marketroach/internal/api"
	"marketroach/internal/feature/marketdata/domain/entity"
	"marketroach/internal/feature/marketdata/usecase"
)

// RecordsUsecase はマージ済みマーケットデータ照会のユースケースインターフェースです。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type RecordsUsecase interface {
	GetMarketData(ctx context.Context, symbol, interval string, startMs, endMs int64) ([]entity.AggregateRecord, error)
}

// RecordsHandler はマーケットデータのHTTPリクエストを処理します。
type RecordsHandler struct {
	uc  RecordsUsecase
	now func() time.Time
}

// NewRecordsHandler は指定されたusecaseでRecordsHandlerの新しいインスタンスを生成します。
func NewRecordsHandler(uc RecordsUsecase) *RecordsHandler {
	return &RecordsHandler{uc: uc, now: time.Now}
}

// Get はシンボルと時刻範囲を受け取り、マージ済みレコードをJSONで返します。
//
// エンドポイント例:
// GET /market-data/SPY?start=1709900000000&end=1709990000000&interval=minute
//
// start/end はunixミリ秒です。省略時は直近24時間を対象にします。
// interval 省略時はすべての時間足を返します。
func (h *RecordsHandler) Get(c *gin.Context) {
	symbol := c.Param("symbol")

	nowMs := h.now().UnixMilli()
	endMs, err := parseMsQuery(c, "end", nowMs)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid end"})
		return
	}
	startMs, err := parseMsQuery(c, "start", endMs-24*time.Hour.Milliseconds())
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid start"})
		return
	}
	interval := c.Query("interval")

	records, err := h.uc.GetMarketData(c.Request.Context(), symbol, interval, startMs, endMs)
	if err != nil {
		if errors.Is(err, usecase.ErrSymbolRequired) || errors.Is(err, usecase.ErrInvalidRange) {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load market data"})
		return
	}

	out := make([]api.MarketDataItem, 0, len(records))
	for _, r := range records {
		out = append(out, api.MarketDataItem{
			Symbol:    r.Symbol,
			Interval:  r.Interval,
			Time:      r.Time,
			Open:      r.Open,
			Close:     r.Close,
			Highest:   r.Highest,
			Lowest:    r.Lowest,
			Volume:    r.Volume,
			VWAP:      r.VWAP,
			Number:    r.Number,
			RSI14:     r.RSI14,
			SMA5:      r.SMA5,
			FetchTime: r.FetchTime,
			Options:   r.Options,
		})
	}

	c.JSON(http.StatusOK, api.MarketDataResponse{
		Symbol:  symbol,
		Count:   len(out),
		Results: out,
	})
}

// parseMsQuery は unixミリ秒のクエリパラメータを読み取ります。未指定なら
// fallback を返し、数値として解釈できない場合はエラーを返します。
func parseMsQuery(c *gin.Context, name string, fallback int64) (int64, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}
