package gossip

import "github.com/stretchr/testify/mock"

type MockAudit struct {
	mock.Mock
}

// LogAdd provides a mock function with given fields: self, peer
func (_m *MockAudit) LogAdd(self Identity, peer Identity) {
	_m.Called(self, peer)
}

// LogRemove provides a mock function with given fields: self, peer
func (_m *MockAudit) LogRemove(self Identity, peer Identity) {
	_m.Called(self, peer)
}
