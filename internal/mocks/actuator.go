package mocks

import "github.com/stretchr/testify/mock"

// MockActuator is a mock implementation of the actuator.Actuator interface
type MockActuator struct {
	mock.Mock
}

func (m *MockActuator) Pulse() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockActuator) Close() error {
	args := m.Called()
	return args.Error(0)
}
