package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockMatchContext matches any context passed to a mocked method.
var MockMatchContext = mock.MatchedBy(func(_ context.Context) bool { return true })
