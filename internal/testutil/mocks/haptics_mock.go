package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/sayilar/internal/haptics"
)

// MockHapticDriver is a mock implementation of haptics.Driver
type MockHapticDriver struct {
	mock.Mock
}

func (m *MockHapticDriver) Fire(ctx context.Context, kind haptics.Kind) error {
	args := m.Called(ctx, kind)
	return args.Error(0)
}

// MockFeedback is a mock implementation of haptics.Feedback
type MockFeedback struct {
	mock.Mock
}

func (m *MockFeedback) Pulse(kind haptics.Kind) {
	m.Called(kind)
}
