package mock

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"marketroach/internal/feature/marketdata/domain/entity"
	"marketroach/internal/feature/marketdata/usecase"
)

// RecordStore はメモリ上のRecordRepositoryです。ポーラーとAPIハンドラの
// 両方から並行アクセスされるためミューテックスで保護します。
type RecordStore struct {
	mu   sync.Mutex
	rows map[string]entity.AggregateRecord
}

var _ usecase.RecordRepository = (*RecordStore)(nil)

func NewRecordStore() *RecordStore {
	return &RecordStore{rows: make(map[string]entity.AggregateRecord)}
}

func recordKey(r entity.AggregateRecord) string {
	return r.Symbol + "|" + r.Interval + "|" + r.Time
}

func (s *RecordStore) UpsertBatch(ctx context.Context, records []entity.AggregateRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		s.rows[recordKey(r)] = r
	}
	return nil
}

func (s *RecordStore) InsertBatch(ctx context.Context, records []entity.AggregateRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		key := recordKey(r)
		if _, ok := s.rows[key]; ok {
			return fmt.Errorf("duplicate record %s", key)
		}
		s.rows[key] = r
	}
	return nil
}

func (s *RecordStore) FindRange(ctx context.Context, symbol, intervalName string, startMs, endMs int64) ([]entity.AggregateRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []entity.AggregateRecord
	for _, r := range s.rows {
		if r.Symbol != symbol {
			continue
		}
		if intervalName != "" && r.Interval != intervalName {
			continue
		}
		ms, err := strconv.ParseInt(r.Time, 10, 64)
		if err != nil {
			continue
		}
		if ms < startMs || ms > endMs {
			continue
		}
		out = append(out, r)
	}

	// 新しい順
	sort.Slice(out, func(i, j int) bool {
		a, _ := strconv.ParseInt(out[i].Time, 10, 64)
		b, _ := strconv.ParseInt(out[j].Time, 10, 64)
		return a > b
	})
	return out, nil
}

// Len は保持中のレコード数を返します。
func (s *RecordStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

// ErrorStore はメモリ上の追記専用ErrorRepositoryです。
type ErrorStore struct {
	mu   sync.Mutex
	rows []entity.ErrorRecord
}

var _ usecase.ErrorRepository = (*ErrorStore)(nil)

func NewErrorStore() *ErrorStore {
	return &ErrorStore{}
}

func (s *ErrorStore) Record(ctx context.Context, rec entity.ErrorRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, rec)
	return nil
}

// All は記録済みのエラーイベントのコピーを返します。
func (s *ErrorStore) All() []entity.ErrorRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.ErrorRecord, len(s.rows))
	copy(out, s.rows)
	return out
}
