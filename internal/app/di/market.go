// Package di provides dependency injection factories for creating application components.
package di

import (
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	marketadapters "marketroach/internal/feature/marketdata/adapters"
	"marketroach/internal/feature/marketdata/adapters/mock"
	"marketroach/internal/feature/marketdata/adapters/polygon"
	"marketroach/internal/feature/marketdata/usecase"
	"marketroach/internal/platform/cache"
	platformhttp "marketroach/internal/platform/http"
)

// MockMode reports whether the service runs against synthetic in-memory data
// instead of the live provider and database.
func MockMode() bool {
	return os.Getenv("MOCK_MODE") == "true"
}

// NewMarket creates the provider adapter: a fully configured polygon client,
// or the deterministic mock when MOCK_MODE is on.
func NewMarket() usecase.MarketRepository {
	if MockMode() {
		return mock.NewMarket()
	}
	cfg := polygon.LoadConfig()
	httpClient := platformhttp.NewHTTPClient(cfg.Timeout)
	return polygon.NewPolygonMarket(cfg, httpClient)
}

// NewRecordRepository creates the record store, wrapped with the Redis
// read-through cache when a client is available.
func NewRecordRepository(db *gorm.DB, rdb *redis.Client) usecase.RecordRepository {
	if MockMode() {
		return mock.NewRecordStore()
	}
	inner := marketadapters.NewRecordRepository(db)
	return cache.NewCachingRecordRepository(rdb, 5*time.Minute, inner, "records")
}

// NewErrorRepository creates the append-only failure event store.
func NewErrorRepository(db *gorm.DB) usecase.ErrorRepository {
	if MockMode() {
		return mock.NewErrorStore()
	}
	return marketadapters.NewErrorRepository(db)
}

// NewPollerConfig はポーリング設定を環境変数から組み立てます。
// 未設定・不正な値はゼロ値のままにし、NewPollerのデフォルトに任せます。
func NewPollerConfig() usecase.PollerConfig {
	return usecase.PollerConfig{
		Interval:  os.Getenv("POLL_INTERVAL_NAME"),
		BatchSize: envInt("POLL_BATCH_SIZE"),
		Cadence:   time.Duration(envInt("POLL_INTERVAL_SECONDS")) * time.Second,
		Lookback:  time.Duration(envInt("POLL_LOOKBACK_HOURS")) * time.Hour,
	}
}

func envInt(key string) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return 0
	}
	return n
}
