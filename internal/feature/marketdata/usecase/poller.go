package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"marketroach/internal/feature/marketdata/domain/entity"
	"marketroach/internal/shared/marketclock"
	"marketroach/internal/shared/ratelimiter"
)

const (
	// pollerSource はポーラーが発行するErrorRecordのsourceフィールド値です。
	pollerSource = "marketdata/poller"

	// DefaultCadence は市場オープン時のデフォルトポーリング間隔です。
	DefaultCadence = 30 * time.Second

	// DefaultLookback はフェッチウィンドウの遡及期間（昨日〜今日）です。
	DefaultLookback = 24 * time.Hour

	// DefaultBatchSize はプロバイダから1回に取得するデータ件数です。
	DefaultBatchSize = 120
)

// PollerConfig はポーリングパイプラインの設定です。
type PollerConfig struct {
	Interval  string        // 時間足（second, minute, hour, day, week）
	BatchSize int           // プロバイダリクエストのlimit
	Cadence   time.Duration // 市場オープン時のポーリング間隔
	Lookback  time.Duration // フェッチウィンドウの開始オフセット
}

// Poller は fetch → merge → persist のサイクルを永久に駆動する
// スケジューラです。シンボルごとに1つの長寿命ゴルーチンで動作し、
// サイクル内の状態は毎回作り直されます（サイクルをまたぐ共有可変状態なし）。
type Poller struct {
	market  MarketRepository
	records RecordRepository
	errs    *ErrorSink
	limiter ratelimiter.RateLimiterInterface
	cfg     PollerConfig

	// now はテストから注入可能なクロックです。
	now func() time.Time
}

// NewPoller は新しいPollerを生成します。ゼロ値の設定項目にはデフォルトを適用します。
func NewPoller(
	market MarketRepository,
	records RecordRepository,
	errs *ErrorSink,
	limiter ratelimiter.RateLimiterInterface,
	cfg PollerConfig,
) *Poller {
	if cfg.Interval == "" {
		cfg.Interval = "minute"
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Cadence <= 0 {
		cfg.Cadence = DefaultCadence
	}
	if cfg.Lookback <= 0 {
		cfg.Lookback = DefaultLookback
	}
	return &Poller{
		market:  market,
		records: records,
		errs:    errs,
		limiter: limiter,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Run は1シンボル分のポーリングループを実行します。ループはエラーでは
// 決して終了せず、ctxのキャンセルでのみ停止します。キャンセルは
// サイクル間（スリープ中）にのみ観測されます。
func (p *Poller) Run(ctx context.Context, symbol string) {
	slog.Info("poller started", "symbol", symbol, "interval", p.cfg.Interval)
	for {
		delay := p.RunCycle(ctx, symbol)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			slog.Info("poller stopped", "symbol", symbol)
			return
		case <-timer.C:
		}
	}
}

// RunCycle は1サイクル（fetch → merge → persist）を実行し、次のサイクル
// までの待機時間を返します。失敗してもパニックせず、エラーレコードを
// ベストエフォートで記録した上で通常どおり待機時間を返します。
func (p *Poller) RunCycle(ctx context.Context, symbol string) time.Duration {
	now := p.now().UTC()

	// 週末はフェッチ自体をスキップするが、スリープは必ず行う
	// （タイトループ防止。スキップのみで眠らないのは旧実装のバグ）。
	if marketclock.IsWeekend(now) {
		slog.Info("weekend, skipping fetch", "symbol", symbol)
		return p.nextDelay(now)
	}

	if err := p.PollOnce(ctx, symbol); err != nil {
		slog.Error("poll cycle failed", "symbol", symbol, "interval", p.cfg.Interval, "error", err)
		p.errs.Record(ctx, entity.ErrorRecord{
			Time:        strconv.FormatInt(now.UnixMilli(), 10),
			Description: fmt.Sprintf("error processing %s market data", p.cfg.Interval),
			Source:      pollerSource,
			Details:     err.Error(),
		})
	}

	return p.nextDelay(now)
}

// PollOnce は1回のフェッチ・マージ・永続化を実行します。
// 永続化はサイクルごとに1回だけ、完全にマージ済みのバッチで呼ばれます。
func (p *Poller) PollOnce(ctx context.Context, symbol string) error {
	now := p.now().UTC()
	fetchTime := strconv.FormatInt(now.UnixMilli(), 10)

	if p.limiter != nil {
		p.limiter.WaitIfNeeded()
	}

	win := entity.FetchWindow{
		Symbol:    symbol,
		Interval:  p.cfg.Interval,
		StartDate: now.Add(-p.cfg.Lookback).Format("2006-01-02"),
		EndDate:   now.Format("2006-01-02"),
		Order:     "desc",
		Limit:     p.cfg.BatchSize,
	}

	cycle := p.market.FetchCycle(ctx, win)
	records, mergeErrs := BuildRecords(symbol, p.cfg.Interval, fetchTime, cycle)
	for _, e := range mergeErrs {
		p.errs.Record(ctx, e)
	}

	if len(records) == 0 {
		slog.Warn("no records produced this cycle", "symbol", symbol, "interval", p.cfg.Interval)
		return nil
	}

	batch := make([]entity.AggregateRecord, 0, len(records))
	for _, rec := range records {
		batch = append(batch, *rec)
	}
	if err := p.records.UpsertBatch(ctx, batch); err != nil {
		return fmt.Errorf("upsert records: %w", err)
	}

	slog.Info("poll cycle complete",
		"symbol", symbol, "interval", p.cfg.Interval, "records", len(batch))
	return nil
}

// nextDelay はセッション状態に応じて次サイクルまでの待機時間を決めます。
// クローズ時間帯は次のプレマーケットオープンまで、それ以外は短い周期です。
func (p *Poller) nextDelay(now time.Time) time.Duration {
	if marketclock.IsClosed(now) {
		d := marketclock.UntilPremarketOpen(now)
		slog.Info("market closed, next scan at premarket open", "sleep", d)
		return d
	}
	return p.cfg.Cadence
}
