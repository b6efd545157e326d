package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"

	"marketroach/internal/app/di"
	"marketroach/internal/app/router"
	authadapters "marketroach/internal/feature/auth/adapters"
	authhandler "marketroach/internal/feature/auth/transport/handler"
	authusecase "marketroach/internal/feature/auth/usecase"
	markethandler "marketroach/internal/feature/marketdata/transport/handler"
	marketusecase "marketroach/internal/feature/marketdata/usecase"
	symboladapters "marketroach/internal/feature/symbols/adapters"
	symbolhandler "marketroach/internal/feature/symbols/transport/handler"
	symbolusecase "marketroach/internal/feature/symbols/usecase"
	platformdb "marketroach/internal/platform/db"
	jwtmw "marketroach/internal/platform/jwt"
	platformredis "marketroach/internal/platform/redis"
	"marketroach/internal/shared/ratelimiter"
)

func main() {
	// .env はローカル開発用。存在しなくてもよい。
	_ = godotenv.Load()

	// db
	db := platformdb.OpenDB()

	// Redis（モックモードでは使わない）
	var rdb *redisv9.Client
	if !di.MockMode() {
		if tmp, err := platformredis.NewRedisClient(); err != nil {
			log.Println("[WARN] Redis unavailable. Running without cache.")
		} else {
			rdb = tmp
			defer func() {
				if err := rdb.Close(); err != nil {
					log.Println("[ERROR] Failed to close Redis client:", err)
				}
			}()
		}
	}

	// Repository
	userRepo := authadapters.NewUserRepository(db)
	symbolRepo := symboladapters.NewSymbolRepository(db)
	recordRepo := di.NewRecordRepository(db, rdb)
	errorRepo := di.NewErrorRepository(db)
	marketRepo := di.NewMarket()

	// Usecase
	jwtGen := jwtmw.NewGenerator(os.Getenv(jwtmw.EnvKeyJWTSecret), 24*time.Hour)
	authUC := authusecase.NewAuthUsecase(userRepo, jwtGen)
	symbolUC := symbolusecase.NewSymbolUsecase(symbolRepo)
	recordsUC := marketusecase.NewRecordsUsecase(recordRepo)

	// Handler
	authH := authhandler.NewAuthHandler(authUC)
	symbolH := symbolhandler.NewSymbolHandler(symbolUC)
	recordsH := markethandler.NewRecordsHandler(recordsUC)

	// バックグラウンドポーラー（シンボルごとに1ゴルーチン）
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	symbols := watchlist(ctx, symbolUC)
	limiter := ratelimiter.NewRateLimiter(5, time.Minute)
	errSink := marketusecase.NewErrorSink(errorRepo)

	pollerCfg := di.NewPollerConfig()

	var wg sync.WaitGroup
	for _, symbol := range symbols {
		poller := marketusecase.NewPoller(marketRepo, recordRepo, errSink, limiter, pollerCfg)
		wg.Add(1)
		go func(sym string) {
			defer wg.Done()
			poller.Run(ctx, sym)
		}(symbol)
	}

	// JWT_SECRETチェック（開発中の注意喚起）
	if os.Getenv(jwtmw.EnvKeyJWTSecret) == "" {
		log.Println("[WARN] JWT_SECRET is not set. Set a strong secret in production.")
	}

	r := router.NewRouter(authH, recordsH, symbolH)
	if err := r.Run(":8080"); err != nil {
		log.Fatal(err)
	}

	// サーバ終了後、ポーラーの停止を待つ
	stop()
	wg.Wait()
}

// watchlist はポーリング対象のシンボル一覧を決定します。銘柄テーブルに
// アクティブな銘柄があればそれを使い、なければSYMBOLS環境変数
// （カンマ区切り）にフォールバックします。
func watchlist(ctx context.Context, uc *symbolusecase.SymbolUsecase) []string {
	codes, err := uc.ListActiveCodes(ctx)
	if err != nil {
		slog.Warn("failed to load symbol table, falling back to SYMBOLS env", "error", err)
	}
	if len(codes) > 0 {
		return codes
	}

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
