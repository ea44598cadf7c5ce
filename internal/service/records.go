package service

import (
	"context"
	"fmt"
	"math"

	"github.com/yusufkecer/bmi-tracker/internal/domain"
)

// HistoryCache is an optional read-through cache for chart series.
type HistoryCache interface {
	Get(ctx context.Context, userID int64) ([]domain.HistoryPoint, bool)
	Set(ctx context.Context, userID int64, points []domain.HistoryPoint)
	Invalidate(ctx context.Context, userID int64)
}

// RecordService is the append-only record store.
type RecordService struct {
	repo  domain.RecordRepository
	cache HistoryCache
}

// NewRecordService creates a RecordService. cache may be nil.
func NewRecordService(repo domain.RecordRepository, cache HistoryCache) *RecordService {
	return &RecordService{repo: repo, cache: cache}
}

// SaveRecord appends rec and returns its id.
func (s *RecordService) SaveRecord(ctx context.Context, rec *domain.BmiRecord) (int64, error) {
	if _, err := domain.ComputeBMI(rec.WeightKg, rec.HeightCm); err != nil {
		return 0, err
	}
	if math.IsNaN(rec.BMI) || math.IsInf(rec.BMI, 0) || rec.BMI <= 0 {
		return 0, domain.NewValidationError("bmi", "must be a positive number")
	}
	if !rec.Category.Valid() {
		return 0, domain.NewValidationError("category", fmt.Sprintf("unknown category %q", rec.Category))
	}

	id, err := s.repo.Create(ctx, rec)
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, rec.UserID)
	}
	return id, nil
}

// LatestRecord returns nil, nil when the user has no records yet.
func (s *RecordService) LatestRecord(ctx context.Context, userID int64) (*domain.BmiRecord, error) {
	return s.repo.Latest(ctx, userID)
}

// History returns the user's series in chronological order, never nil.
func (s *RecordService) History(ctx context.Context, userID int64) ([]domain.HistoryPoint, error) {
	if s.cache != nil {
		if points, ok := s.cache.Get(ctx, userID); ok {
			return points, nil
		}
	}
	return s.RefreshHistory(ctx, userID)
}

// RefreshHistory reads the series from the store, bypassing the cache, and
// overwrites the cached copy with it.
func (s *RecordService) RefreshHistory(ctx context.Context, userID int64) ([]domain.HistoryPoint, error) {
	points, err := s.repo.History(ctx, userID)
	if err != nil {
		return nil, err
	}
	if points == nil {
		points = []domain.HistoryPoint{}
	}
	if s.cache != nil {
		s.cache.Set(ctx, userID, points)
	}
	return points, nil
}
