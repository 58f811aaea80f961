package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/benmeehan/relay-agent/pkg/mqtt"
)

// MockService is a mock implementation of the registry.Service interface
type MockService struct {
	mock.Mock
}

func (m *MockService) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockService) Subscriptions() map[string]byte {
	args := m.Called()
	return args.Get(0).(map[string]byte)
}

func (m *MockService) Start() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockService) Stop() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockService) HandleMessage(msg mqtt.Message) bool {
	args := m.Called(msg)
	return args.Bool(0)
}
