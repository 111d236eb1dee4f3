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

package logging

import (
	"fmt"
	"sync"

	"github.com/uber-common/bark"
)

type record struct {
	level  string
	msg    string
	fields bark.Fields
}

// recorder is a bark.Logger that keeps every line in memory.
type recorder struct {
	mu      *sync.Mutex
	records *[]record
	fields  bark.Fields
}

func newRecorder() *recorder {
	return &recorder{mu: &sync.Mutex{}, records: &[]record{}}
}

func (r *recorder) add(level string, msg string) {
	r.mu.Lock()
	*r.records = append(*r.records, record{level: level, msg: msg, fields: r.fields})
	r.mu.Unlock()
}

func (r *recorder) lines() []record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]record(nil), *r.records...)
}

func (r *recorder) Debug(args ...interface{}) { r.add("debug", fmt.Sprint(args...)) }
func (r *recorder) Info(args ...interface{})  { r.add("info", fmt.Sprint(args...)) }
func (r *recorder) Warn(args ...interface{})  { r.add("warn", fmt.Sprint(args...)) }
func (r *recorder) Error(args ...interface{}) { r.add("error", fmt.Sprint(args...)) }
func (r *recorder) Fatal(args ...interface{}) { r.add("fatal", fmt.Sprint(args...)) }
func (r *recorder) Panic(args ...interface{}) { r.add("panic", fmt.Sprint(args...)) }

func (r *recorder) Debugf(f string, args ...interface{}) { r.add("debug", fmt.Sprintf(f, args...)) }
func (r *recorder) Infof(f string, args ...interface{})  { r.add("info", fmt.Sprintf(f, args...)) }
func (r *recorder) Warnf(f string, args ...interface{})  { r.add("warn", fmt.Sprintf(f, args...)) }
func (r *recorder) Errorf(f string, args ...interface{}) { r.add("error", fmt.Sprintf(f, args...)) }
func (r *recorder) Fatalf(f string, args ...interface{}) { r.add("fatal", fmt.Sprintf(f, args...)) }
func (r *recorder) Panicf(f string, args ...interface{}) { r.add("panic", fmt.Sprintf(f, args...)) }

func (r *recorder) WithField(key string, value interface{}) bark.Logger {
	return r.WithFields(bark.Fields{key: value})
}

func (r *recorder) WithFields(fields bark.LogFields) bark.Logger {
	merged := bark.Fields{}
	for k, v := range r.fields {
		merged[k] = v
	}
	for k, v := range fields.Fields() {
		merged[k] = v
	}
	return &recorder{mu: r.mu, records: r.records, fields: merged}
}

func (r *recorder) WithError(err error) bark.Logger {
	return r.WithField("error", err)
}

func (r *recorder) Fields() bark.Fields { return r.fields }
