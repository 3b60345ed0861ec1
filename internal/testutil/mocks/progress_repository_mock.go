package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockProgressRepository is a mock implementation of repository.ProgressRepository
type MockProgressRepository struct {
	mock.Mock
}

func (m *MockProgressRepository) HighScore(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockProgressRepository) SaveHighScore(ctx context.Context, score int) error {
	args := m.Called(ctx, score)
	return args.Error(0)
}

func (m *MockProgressRepository) VisitedNumbers(ctx context.Context) ([]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

func (m *MockProgressRepository) SaveVisitedNumbers(ctx context.Context, numbers []int) error {
	args := m.Called(ctx, numbers)
	return args.Error(0)
}
