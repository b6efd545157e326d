package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"marketroach/internal/app/di"
	marketusecase "marketroach/internal/feature/marketdata/usecase"
	symboladapters "marketroach/internal/feature/symbols/adapters"
	symbolusecase "marketroach/internal/feature/symbols/usecase"
	platformdb "marketroach/internal/platform/db"
	"marketroach/internal/shared/ratelimiter"
)

// ワンショット取り込み。cronやジョブランナーから定期実行する想定で、
// 監視対象の全シンボルについて1サイクル分のfetch→merge→upsertを行います。
func main() {
	_ = godotenv.Load()

	db := platformdb.OpenDB()

	recordRepo := di.NewRecordRepository(db, nil)
	errorRepo := di.NewErrorRepository(db)
	marketRepo := di.NewMarket()
	symbolUC := symbolusecase.NewSymbolUsecase(symboladapters.NewSymbolRepository(db))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	symbols, err := symbolUC.ListActiveCodes(ctx)
	if err != nil || len(symbols) == 0 {
		if err != nil {
			slog.Warn("failed to load symbol table, falling back to SYMBOLS env", "error", err)
		}
		symbols = fromEnv()
	}

	limiter := ratelimiter.NewRateLimiter(5, time.Minute)
	errSink := marketusecase.NewErrorSink(errorRepo)
	poller := marketusecase.NewPoller(marketRepo, recordRepo, errSink, limiter, di.NewPollerConfig())

	for _, symbol := range symbols {
		if err := poller.PollOnce(ctx, symbol); err != nil {
			log.Fatalf("ingest failed for %s: %v", symbol, err)
		}
	}

	log.Println("ingest ok")
}

func fromEnv() []string {
	raw := os.Getenv("SYMBOLS")
	if raw == "" {
		raw = "SPY"
	}
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
