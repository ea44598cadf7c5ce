package service_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/yusufkecer/bmi-tracker/internal/domain"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, email, name string) (int64, error) {
	args := m.Called(ctx, email, name)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

type mockRecordRepo struct {
	mock.Mock
}

func (m *mockRecordRepo) Create(ctx context.Context, r *domain.BmiRecord) (int64, error) {
	args := m.Called(ctx, r)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRecordRepo) Latest(ctx context.Context, userID int64) (*domain.BmiRecord, error) {
	args := m.Called(ctx, userID)
	r, _ := args.Get(0).(*domain.BmiRecord)
	return r, args.Error(1)
}

func (m *mockRecordRepo) History(ctx context.Context, userID int64) ([]domain.HistoryPoint, error) {
	args := m.Called(ctx, userID)
	p, _ := args.Get(0).([]domain.HistoryPoint)
	return p, args.Error(1)
}

type fakeCache struct {
	data        map[int64][]domain.HistoryPoint
	invalidated []int64
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[int64][]domain.HistoryPoint{}}
}

func (c *fakeCache) Get(_ context.Context, userID int64) ([]domain.HistoryPoint, bool) {
	p, ok := c.data[userID]
	return p, ok
}

func (c *fakeCache) Set(_ context.Context, userID int64, points []domain.HistoryPoint) {
	c.data[userID] = points
}

func (c *fakeCache) Invalidate(_ context.Context, userID int64) {
	delete(c.data, userID)
	c.invalidated = append(c.invalidated, userID)
}

// stickyCache drops invalidations, like a cache whose delete failed.
type stickyCache struct {
	*fakeCache
}

func (c *stickyCache) Invalidate(context.Context, int64) {}
