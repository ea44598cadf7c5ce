package domain

import (
	"context"
	"time"
)

// BmiRecord is one stored calculation. Records are append-only.
type BmiRecord struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	WeightKg   float64   `json:"weight_kg"`
	HeightCm   float64   `json:"height_cm"`
	BMI        float64   `json:"bmi"`
	Category   Category  `json:"category"`
	RecordedAt time.Time `json:"recorded_at"`
}

// HistoryPoint is a single chart sample: x = RecordedAt, y = BMI.
type HistoryPoint struct {
	RecordedAt time.Time `json:"recorded_at"`
	BMI        float64   `json:"bmi"`
}

// RecordRepository is the persistence port for BMI records. Latest returns
// nil, nil when the user has no records.
type RecordRepository interface {
	Create(ctx context.Context, r *BmiRecord) (int64, error)
	Latest(ctx context.Context, userID int64) (*BmiRecord, error)
	History(ctx context.Context, userID int64) ([]HistoryPoint, error)
}
