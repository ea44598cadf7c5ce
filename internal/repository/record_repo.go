package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/yusufkecer/bmi-tracker/internal/db"
	"github.com/yusufkecer/bmi-tracker/internal/domain"
)

type RecordRepository struct {
	db *db.DB
}

func NewRecordRepository(database *db.DB) *RecordRepository {
	return &RecordRepository{db: database}
}

var _ domain.RecordRepository = (*RecordRepository)(nil)

// Create appends a record. Timestamps are stored in UTC.
func (r *RecordRepository) Create(ctx context.Context, rec *domain.BmiRecord) (int64, error) {
	id, err := r.db.InsertID(ctx,
		`INSERT INTO bmi_records (user_id, weight, height, bmi, category, date)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.UserID, rec.WeightKg, rec.HeightCm, rec.BMI, string(rec.Category), rec.RecordedAt.UTC(),
	)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return 0, fmt.Errorf("failed to create record for user %d: %w", rec.UserID, domain.ErrForeignKey)
		}
		return 0, fmt.Errorf("failed to create record: %w", err)
	}
	return id, nil
}

// Latest returns the newest record; equal timestamps resolve to the highest id.
func (r *RecordRepository) Latest(ctx context.Context, userID int64) (*domain.BmiRecord, error) {
	var (
		rec      domain.BmiRecord
		category string
	)
	err := r.db.QueryRowContext(ctx, r.db.Rebind(
		`SELECT id, user_id, weight, height, bmi, category, date
		 FROM bmi_records
		 WHERE user_id = ?
		 ORDER BY date DESC, id DESC
		 LIMIT 1`), userID,
	).Scan(&rec.ID, &rec.UserID, &rec.WeightKg, &rec.HeightCm, &rec.BMI, &category, &rec.RecordedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest record: %w", err)
	}
	rec.Category = domain.Category(category)
	rec.RecordedAt = rec.RecordedAt.UTC()
	return &rec, nil
}

// History returns the chart series in chronological order.
func (r *RecordRepository) History(ctx context.Context, userID int64) ([]domain.HistoryPoint, error) {
	rows, err := r.db.QueryContext(ctx, r.db.Rebind(
		`SELECT date, bmi
		 FROM bmi_records
		 WHERE user_id = ?
		 ORDER BY date ASC, id ASC`), userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	points := []domain.HistoryPoint{}
	for rows.Next() {
		var p domain.HistoryPoint
		if err := rows.Scan(&p.RecordedAt, &p.BMI); err != nil {
			return nil, fmt.Errorf("failed to scan history point: %w", err)
		}
		p.RecordedAt = p.RecordedAt.UTC()
		points = append(points, p)
	}
	return points, rows.Err()
}
