// Copyright (c) 2015 Uber Technologies, Inc.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package events contains the plumbing used by heartpop components to publish
// what happens inside the protocol to interested listeners.
package events

import (
	"reflect"
	"sync"
)

// An Event is any value describing something that happened. Concrete event
// types live next to the component that emits them.
type Event interface{}

// An EventListener handles events it is registered for.
type EventListener interface {
	HandleEvent(event Event)
}

// ListenerFunc adapts a plain function to the EventListener interface.
// Functions are not comparable, so a ListenerFunc can not be deregistered.
type ListenerFunc func(Event)

// HandleEvent calls f(e).
func (f ListenerFunc) HandleEvent(e Event) {
	f(e)
}

// EventEmitter is implemented by anything that publishes events.
type EventEmitter interface {
	EmitEvent(Event)
}

// EventRegistrar manages a set of listeners.
type EventRegistrar interface {
	RegisterListener(EventListener) bool
	DeregisterListener(EventListener) bool
}

// SyncEventEmitter calls all registered listeners in registration order on
// the goroutine that emits the event. Listeners must not block.
type SyncEventEmitter struct {
	lock      sync.RWMutex
	listeners []EventListener
}

func sameListener(a, b EventListener) bool {
	if !reflect.TypeOf(a).Comparable() || !reflect.TypeOf(b).Comparable() {
		return false
	}
	return a == b
}

// RegisterListener adds l. Nil listeners and listeners that are already
// registered are ignored; the return value reports whether l was added.
func (e *SyncEventEmitter) RegisterListener(l EventListener) bool {
	if l == nil {
		return false
	}

	e.lock.Lock()
	defer e.lock.Unlock()

	for _, listener := range e.listeners {
		if sameListener(listener, l) {
			return false
		}
	}

	// the backing array is never mutated after it is published, so EmitEvent
	// can iterate a copy of the slice header without holding the lock.
	listeners := make([]EventListener, 0, len(e.listeners)+1)
	listeners = append(listeners, e.listeners...)
	e.listeners = append(listeners, l)
	return true
}

// DeregisterListener removes l and reports whether it was registered.
func (e *SyncEventEmitter) DeregisterListener(l EventListener) bool {
	if l == nil {
		return false
	}

	e.lock.Lock()
	defer e.lock.Unlock()

	for i := range e.listeners {
		if sameListener(e.listeners[i], l) {
			listeners := make([]EventListener, 0, len(e.listeners)-1)
			listeners = append(listeners, e.listeners[:i]...)
			e.listeners = append(listeners, e.listeners[i+1:]...)
			return true
		}
	}
	return false
}

// EmitEvent hands event to every registered listener.
func (e *SyncEventEmitter) EmitEvent(event Event) {
	e.lock.RLock()
	listeners := e.listeners
	e.lock.RUnlock()

	for _, listener := range listeners {
		listener.HandleEvent(event)
	}
}
