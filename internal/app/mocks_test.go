package app

import (
	"github.com/stretchr/testify/mock"

	"github.com/Ditoo31/Dadu-RAP/internal/core"
)

type MockSignalConn struct {
	mock.Mock
}

func (m *MockSignalConn) TrySend(f core.Frame) error {
	args := m.Called(f)
	return args.Error(0)
}

func (m *MockSignalConn) Close() {
	m.Called()
}
