package polygon

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"marketroach/internal/feature/marketdata/adapters/polygon/dto"
	"marketroach/internal/feature/marketdata/domain/entity"
	"marketroach/internal/feature/marketdata/usecase"
)

const (
	// aggregateWindowSize は集計バーのウィンドウ倍率（1 × interval）です。
	aggregateWindowSize = 1
	// rsiWindow はRSI指標のウィンドウサイズです。
	rsiWindow = 14
	// smaWindow はSMA指標のウィンドウサイズです。
	smaWindow = 5
)

// PolygonMarket はpolygon.io外部APIからマーケットデータを取得する
// MarketRepository実装です。
type PolygonMarket struct {
	cfg    Config
	client *http.Client
}

// PolygonMarketがMarketRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.MarketRepository = (*PolygonMarket)(nil)

// NewPolygonMarket は指定された設定とHTTPクライアントでPolygonMarketの
// 新しいインスタンスを生成します。
func NewPolygonMarket(cfg Config, client *http.Client) *PolygonMarket {
	return &PolygonMarket{cfg: cfg, client: client}
}

// FetchCycle は1ポーリングサイクル分の3リソース（バー集計・RSI・SMA）を
// 並行に取得します。1つの呼び出しの失敗は他をキャンセルせず、3つすべての
// 結果が揃ってから返します。リトライはしません（サイクル単位で
// スケジューラが再試行します）。
func (p *PolygonMarket) FetchCycle(ctx context.Context, win entity.FetchWindow) entity.CycleData {
	var cd entity.CycleData
	var wg sync.WaitGroup
	wg.Add(3)

	// 各ゴルーチンは互いに素なフィールドに書き込むためロック不要
	go func() {
		defer wg.Done()
		payload, err := p.GetBarAggregates(ctx, win)
		cd.Aggregates = entity.AggregatesResult{Payload: payload, Err: err}
	}()
	go func() {
		defer wg.Done()
		payload, err := p.GetRSI(ctx, win)
		cd.RSI = entity.IndicatorResult{Payload: payload, Err: err}
	}()
	go func() {
		defer wg.Done()
		payload, err := p.GetSMA(ctx, win)
		cd.SMA = entity.IndicatorResult{Payload: payload, Err: err}
	}()

	wg.Wait()
	return cd
}

// GetBarAggregates はバー集計（ローソク足）データを取得します。
func (p *PolygonMarket) GetBarAggregates(ctx context.Context, win entity.FetchWindow) (*entity.AggregatesPayload, error) {
	q := url.Values{}
	q.Set("adjusted", "true")
	q.Set("sort", win.Order)
	q.Set("limit", strconv.Itoa(win.Limit))
	q.Set("apiKey", p.cfg.APIKey)

	u := fmt.Sprintf("%s/v2/aggs/ticker/%s/range/%d/%s/%s/%s?%s",
		p.cfg.BaseURL, url.PathEscape(win.Symbol), aggregateWindowSize,
		url.PathEscape(win.Interval), win.StartDate, win.EndDate, q.Encode())

	var body dto.AggregatesResponse
	if err := p.getJSON(ctx, u, &body); err != nil {
		return nil, fmt.Errorf("aggregates: %w", err)
	}

	payload := &entity.AggregatesPayload{RequestID: body.RequestID}
	if body.Results != nil {
		payload.Results = make([]entity.Bar, 0, len(body.Results))
		for _, b := range body.Results {
			payload.Results = append(payload.Results, entity.Bar{
				Time:    b.Time,
				Open:    b.Open,
				Close:   b.Close,
				Highest: b.High,
				Lowest:  b.Low,
				Volume:  b.Volume,
				VWAP:    b.VWAP,
				Number:  b.Number,
			})
		}
	}
	return payload, nil
}

// GetRSI は相対力指数（RSI, window=14）の指標データを取得します。
func (p *PolygonMarket) GetRSI(ctx context.Context, win entity.FetchWindow) (*entity.IndicatorPayload, error) {
	return p.getIndicator(ctx, "rsi", rsiWindow, win)
}

// GetSMA は単純移動平均（SMA, window=5）の指標データを取得します。
func (p *PolygonMarket) GetSMA(ctx context.Context, win entity.FetchWindow) (*entity.IndicatorPayload, error) {
	return p.getIndicator(ctx, "sma", smaWindow, win)
}

// getIndicator は指標エンドポイント共通のリクエスト処理です。
func (p *PolygonMarket) getIndicator(ctx context.Context, name string, window int, win entity.FetchWindow) (*entity.IndicatorPayload, error) {
	q := url.Values{}
	q.Set("timestamp", win.EndDate)
	q.Set("timespan", win.Interval)
	q.Set("window", strconv.Itoa(window))
	q.Set("series_type", "close")
	q.Set("order", win.Order)
	q.Set("limit", strconv.Itoa(win.Limit))
	q.Set("apiKey", p.cfg.APIKey)

	u := fmt.Sprintf("%s/v1/indicators/%s/%s?%s",
		p.cfg.BaseURL, name, url.PathEscape(win.Symbol), q.Encode())

	var body dto.IndicatorResponse
	if err := p.getJSON(ctx, u, &body); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	payload := &entity.IndicatorPayload{RequestID: body.RequestID}
	if body.Results != nil && body.Results.Values != nil {
		payload.Values = make([]entity.IndicatorValue, 0, len(body.Results.Values))
		for _, v := range body.Results.Values {
			payload.Values = append(payload.Values, entity.IndicatorValue{
				Timestamp: v.Timestamp,
				Value:     v.Value,
			})
		}
	}
	return payload, nil
}

// getJSON はGETリクエストを実行してJSONレスポンスをデコードします。
func (p *PolygonMarket) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	res, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return fmt.Errorf("polygon http %d", res.StatusCode)
	}

	return json.NewDecoder(res.Body).Decode(out)
}
