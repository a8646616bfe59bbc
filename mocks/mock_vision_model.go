package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"leafdoc/internal/port"
)

// MockVisionModel is a mock implementation of port.VisionModel.
type MockVisionModel struct {
	mock.Mock
}

func (m *MockVisionModel) Generate(ctx context.Context, input port.GenerateInput) (string, error) {
	args := m.Called(ctx, input)
	return args.String(0), args.Error(1)
}
