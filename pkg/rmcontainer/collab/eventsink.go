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

package collab

import (
	"k8s.io/klog/v2"

	"github.com/koordinator-sh/rmcontainer/pkg/rmcontainer"
)

// FanoutEventSink is the default in-process EventSink: it fans each
// OutboundEvent out to every registered subscriber through a buffered
// channel, so Handle never blocks the caller holding the container's write
// lock.
type FanoutEventSink struct {
	events chan rmcontainer.OutboundEvent
	subs   []func(rmcontainer.OutboundEvent)
	done   chan struct{}
}

// NewFanoutEventSink creates a sink with the given channel buffer size.
func NewFanoutEventSink(buffer int) *FanoutEventSink {
	return &FanoutEventSink{
		events: make(chan rmcontainer.OutboundEvent, buffer),
		done:   make(chan struct{}),
	}
}

// Subscribe registers fn to be called, from the sink's own goroutine, for
// every event handed to Handle. Must be called before Run.
func (s *FanoutEventSink) Subscribe(fn func(rmcontainer.OutboundEvent)) {
	s.subs = append(s.subs, fn)
}

// Handle enqueues ev without blocking. If the buffer is full the event is
// dropped and logged rather than stalling the caller.
func (s *FanoutEventSink) Handle(ev rmcontainer.OutboundEvent) {
	select {
	case s.events <- ev:
	default:
		klog.Warningf("event sink buffer full, dropping %s for container %s", ev.Type, ev.ContainerID)
	}
}

// Run drains the event channel until stopCh is closed, dispatching to every
// subscriber in registration order.
func (s *FanoutEventSink) Run(stopCh <-chan struct{}) {
	for {
		select {
		case ev := <-s.events:
			for _, sub := range s.subs {
				sub(ev)
			}
		case <-stopCh:
			close(s.done)
			return
		}
	}
}
