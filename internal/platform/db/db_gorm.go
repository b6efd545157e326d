package db

import (
	"fmt"
	"log"
	"os"
	"time"

	gpostgres "gorm.io/driver/postgres"
	gsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"

	authentity "marketroach/internal/feature/auth/domain/entity"
	marketadapters "marketroach/internal/feature/marketdata/adapters"
	symbolentity "marketroach/internal/feature/symbols/domain/entity"
)

func OpenDB() *gorm.DB {
	// モックモードではPostgreSQLの代わりにインメモリSQLiteを使用する
	if os.Getenv("MOCK_MODE") == "true" {
		db, err := gorm.Open(gsqlite.Open(":memory:"), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to open in-memory db: %v", err)
		}
		migrate(db)
		return db
	}

	user := os.Getenv("DB_USER")
	pass := os.Getenv("DB_PASSWORD")
	name := os.Getenv("DB_NAME")
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	if port == "" {
		port = "5432"
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
		host, port, user, pass, name)

	var (
		db  *gorm.DB
		err error
	)

	deadline := time.Now().Add(60 * time.Second)
	for {
		db, err = gorm.Open(gpostgres.Open(dsn), &gorm.Config{})
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			log.Fatalf("DB connect failed after 60s: %v", err)
		}
		log.Printf("DB connect failed, retrying...: %v", err)
		time.Sleep(3 * time.Second)
	}

	if os.Getenv("RUN_MIGRATIONS") == "true" {
		migrate(db)
	}

	return db
}

// migrate はスキーマを最新化します（User, Symbol, レコードとエラーログ）。
func migrate(db *gorm.DB) {
	if err := db.AutoMigrate(
		&authentity.User{},
		&symbolentity.Symbol{},
		&marketadapters.RecordModel{},
		&marketadapters.ErrorModel{},
	); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}
}
