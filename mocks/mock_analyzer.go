package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"leafdoc/internal/domain"
	"leafdoc/internal/port"
)

// MockAnalyzer is a mock implementation of port.Analyzer.
type MockAnalyzer struct {
	mock.Mock
}

func (m *MockAnalyzer) Analyze(ctx context.Context, input port.ImageInput) (*domain.AnalysisResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AnalysisResult), args.Error(1)
}

func (m *MockAnalyzer) Configured() bool {
	args := m.Called()
	return args.Bool(0)
}
