package mocks

import "github.com/uber/heartpop-go/gossip"
import "github.com/stretchr/testify/mock"

type Audit struct {
	mock.Mock
}

// LogAdd provides a mock function with given fields: self, peer
func (_m *Audit) LogAdd(self gossip.Identity, peer gossip.Identity) {
	_m.Called(self, peer)
}

// LogRemove provides a mock function with given fields: self, peer
func (_m *Audit) LogRemove(self gossip.Identity, peer gossip.Identity) {
	_m.Called(self, peer)
}
