package adapters

import (
	"context"

	"gorm.io/gorm"

	"marketroach/internal/feature/marketdata/domain/entity"
	"marketroach/internal/feature/marketdata/usecase"
)

type errorGorm struct {
	db *gorm.DB
}

var _ usecase.ErrorRepository = (*errorGorm)(nil)

// NewErrorRepository はGORM接続を使うErrorRepositoryを生成します。
func NewErrorRepository(db *gorm.DB) *errorGorm {
	return &errorGorm{db: db}
}

// ErrorModel はerror_logsテーブルの行を表します。追記専用です。
type ErrorModel struct {
	ID          uint   `gorm:"primaryKey"`
	Time        string `gorm:"size:32;not null;index"`
	Description string `gorm:"type:text;not null"`
	Source      string `gorm:"size:64;not null;index"`
	Details     string `gorm:"type:text"`
}

func (ErrorModel) TableName() string {
	return "error_logs"
}

func (r *errorGorm) Record(ctx context.Context, rec entity.ErrorRecord) error {
	m := ErrorModel{
		Time:        rec.Time,
		Description: rec.Description,
		Source:      rec.Source,
		Details:     rec.Details,
	}
	return r.db.WithContext(ctx).Create(&m).Error
}
