package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"chatreport/internal/ai"
)

type MockClient struct {
	mock.Mock
}

func (m *MockClient) Complete(ctx context.Context, req ai.CompletionRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}
