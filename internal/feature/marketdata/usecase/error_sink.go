package usecase

import (
	"context"
	"log/slog"

	"marketroach/internal/feature/marketdata/domain/entity"
)

// ErrorSink はErrorRepositoryへの書き込みをfire-and-forgetにするラッパーです。
// エラー記録の失敗はオペレータ向けログに出力するだけで、呼び出し元には
// 決して伝播しません（エラーを記録するエラーでスケジューラを止めない）。
type ErrorSink struct {
	repo ErrorRepository
}

// NewErrorSink は新しいErrorSinkを生成します。
func NewErrorSink(repo ErrorRepository) *ErrorSink {
	return &ErrorSink{repo: repo}
}

// Record は1件の失敗イベントをベストエフォートで記録します。
func (s *ErrorSink) Record(ctx context.Context, rec entity.ErrorRecord) {
	if s.repo == nil {
		return
	}
	if err := s.repo.Record(ctx, rec); err != nil {
		slog.Error("failed to record error event",
			"description", rec.Description, "source", rec.Source, "error", err)
	}
}
