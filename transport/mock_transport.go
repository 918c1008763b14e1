package transport

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockTransport is a 'Transport' backed by 'testify/mock', for use in tests.
type MockTransport struct {
	mock.Mock
}

var _ Transport = (*MockTransport)(nil)

func (m *MockTransport) Send(ctx context.Context, request *Request) (*Response, error) {
	args := m.Called(ctx, request)

	response, _ := args.Get(0).(*Response)

	return response, args.Error(1)
}

func (m *MockTransport) Close() {
	m.Called()
}
