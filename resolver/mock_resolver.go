package resolver

import "github.com/stretchr/testify/mock"

// MockHostResolver is a 'HostResolver' backed by 'testify/mock', for use in tests.
type MockHostResolver struct {
	mock.Mock
}

var _ HostResolver = (*MockHostResolver)(nil)

func (m *MockHostResolver) HostCount() int {
	return m.Called().Int(0)
}

func (m *MockHostResolver) MaxTries() int {
	return m.Called().Int(0)
}

func (m *MockHostResolver) HostIndex(excluded Set) int {
	return m.Called(excluded).Int(0)
}
