package mocks

import "github.com/uber/heartpop-go/gossip"
import "github.com/stretchr/testify/mock"

type Transport struct {
	mock.Mock
}

// Send provides a mock function with given fields: from, to, msg
func (_m *Transport) Send(from gossip.Identity, to gossip.Identity, msg []byte) error {
	ret := _m.Called(from, to, msg)

	var r0 error
	if rf, ok := ret.Get(0).(func(gossip.Identity, gossip.Identity, []byte) error); ok {
		r0 = rf(from, to, msg)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// Receive provides a mock function with given fields: local
func (_m *Transport) Receive(local gossip.Identity) [][]byte {
	ret := _m.Called(local)

	var r0 [][]byte
	if rf, ok := ret.Get(0).(func(gossip.Identity) [][]byte); ok {
		r0 = rf(local)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([][]byte)
		}
	}

	return r0
}
