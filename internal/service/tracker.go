package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yusufkecer/bmi-tracker/internal/domain"
)

// Tracker orchestrates the user-facing workflows on top of the registry and
// the record store.
type Tracker struct {
	users   *UserService
	records *RecordService
	now     func() time.Time
}

func NewTracker(users *UserService, records *RecordService) *Tracker {
	return &Tracker{users: users, records: records, now: time.Now}
}

// Calculation is the outcome of one "Calculate" action.
type Calculation struct {
	Record  domain.BmiRecord      `json:"record"`
	History []domain.HistoryPoint `json:"history"`
}

// Summary renders the result the way the form displays it.
func (c *Calculation) Summary() string {
	return Summary(c.Record.BMI, c.Record.Category)
}

// Snapshot is what loading a user returns: the user, their latest record (nil
// when there is none) and their chart series.
type Snapshot struct {
	User    domain.User           `json:"user"`
	Latest  *domain.BmiRecord     `json:"latest"`
	History []domain.HistoryPoint `json:"history"`
}

func Summary(bmi float64, category domain.Category) string {
	return fmt.Sprintf("BMI: %s\nCategory: %s", domain.FormatBMI(bmi), category)
}

// CreateUser registers a user and makes them the active user of sess.
func (t *Tracker) CreateUser(ctx context.Context, sess *Session, email, name string) (*domain.User, error) {
	u, err := t.users.CreateUser(ctx, email, name)
	if err != nil {
		return nil, err
	}
	sess.Activate(u)
	logrus.WithFields(logrus.Fields{"user_id": u.ID, "email": u.Email}).Info("user created")
	return u, nil
}

// LoadUser looks a user up by email, activates them and returns their data.
func (t *Tracker) LoadUser(ctx context.Context, sess *Session, email string) (*Snapshot, error) {
	u, err := t.users.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	sess.Activate(u)

	latest, err := t.records.LatestRecord(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	history, err := t.records.History(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return &Snapshot{User: *u, Latest: latest, History: history}, nil
}

// Calculate parses the raw form input, computes and classifies the BMI,
// stores it for the active user and returns it with the updated history.
func (t *Tracker) Calculate(ctx context.Context, sess *Session, weightText, heightText string) (*Calculation, error) {
	u, err := sess.User()
	if err != nil {
		return nil, err
	}

	weightKg, err := parseMeasurement("weight", weightText)
	if err != nil {
		return nil, err
	}
	heightCm, err := parseMeasurement("height", heightText)
	if err != nil {
		return nil, err
	}

	bmi, err := domain.ComputeBMI(weightKg, heightCm)
	if err != nil {
		return nil, err
	}

	rec := domain.BmiRecord{
		UserID:     u.ID,
		WeightKg:   weightKg,
		HeightCm:   heightCm,
		BMI:        bmi,
		Category:   domain.Classify(bmi),
		RecordedAt: t.now().UTC(),
	}
	id, err := t.records.SaveRecord(ctx, &rec)
	if err != nil {
		return nil, err
	}
	rec.ID = id

	history, err := t.records.RefreshHistory(ctx, u.ID)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"user_id":  u.ID,
		"bmi":      domain.FormatBMI(bmi),
		"category": rec.Category,
	}).Info("bmi recorded")
	return &Calculation{Record: rec, History: history}, nil
}

// Latest returns the active user's newest record, or nil if none exist.
func (t *Tracker) Latest(ctx context.Context, sess *Session) (*domain.BmiRecord, error) {
	u, err := sess.User()
	if err != nil {
		return nil, err
	}
	return t.records.LatestRecord(ctx, u.ID)
}

// History returns the active user's chart series.
func (t *Tracker) History(ctx context.Context, sess *Session) ([]domain.HistoryPoint, error) {
	u, err := sess.User()
	if err != nil {
		return nil, err
	}
	return t.records.History(ctx, u.ID)
}

// Logout clears the active user.
func (t *Tracker) Logout(sess *Session) {
	sess.Clear()
}

func parseMeasurement(field, text string) (float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, domain.NewValidationError(field, "is required")
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, domain.NewValidationError(field, "must be a number")
	}
	return v, nil
}
