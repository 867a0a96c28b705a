/*
Copyright 2022 The Koordinator Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package rmcontainer

import (
	"reflect"

	"github.com/golang/mock/gomock"
)

// MockEventSink is a hand-written EventSink double in the shape mockgen
// would produce, used where a test needs to assert call expectations rather
// than just record what happened.
type MockEventSink struct {
	ctrl     *gomock.Controller
	recorder *MockEventSinkMockRecorder
}

type MockEventSinkMockRecorder struct {
	mock *MockEventSink
}

func NewMockEventSink(ctrl *gomock.Controller) *MockEventSink {
	m := &MockEventSink{ctrl: ctrl}
	m.recorder = &MockEventSinkMockRecorder{mock: m}
	return m
}

func (m *MockEventSink) EXPECT() *MockEventSinkMockRecorder {
	return m.recorder
}

func (m *MockEventSink) Handle(event OutboundEvent) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "Handle", event)
}

func (mr *MockEventSinkMockRecorder) Handle(event interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Handle", reflect.TypeOf((*MockEventSink)(nil).Handle), event)
}
