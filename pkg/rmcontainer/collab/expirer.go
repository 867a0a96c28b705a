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
	"sync"
	"time"

	apimachineryruntime "k8s.io/apimachinery/pkg/util/runtime"
	"k8s.io/klog/v2"

	"github.com/koordinator-sh/rmcontainer/pkg/rmcontainer"
)

// ContainerHandle is the narrow slice of a container the expirer needs to
// deliver EXPIRE: just enough to call Handle, never the full store.
type ContainerHandle interface {
	Handle(event rmcontainer.Event, payload rmcontainer.EventPayload) error
}

// TimerAllocationExpirer is the concrete allocation expirer: it starts a
// timeout on Register and fires EXPIRE on the container if Unregister
// doesn't cancel it first. If the container has already progressed past
// ALLOCATED/ACQUIRED by the time the timer fires, the EXPIRE is absorbed by
// the FSM's own edge-case policy; the expirer does not need to know the
// container's current state.
type TimerAllocationExpirer struct {
	interval time.Duration
	lookup   func(containerID string) (ContainerHandle, bool)

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewTimerAllocationExpirer builds an expirer that fires after interval,
// resolving containers to deliver EXPIRE to via lookup.
func NewTimerAllocationExpirer(interval time.Duration, lookup func(string) (ContainerHandle, bool)) *TimerAllocationExpirer {
	return &TimerAllocationExpirer{
		interval: interval,
		lookup:   lookup,
		timers:   map[string]*time.Timer{},
	}
}

// Register starts the allocation timeout for containerID.
func (e *TimerAllocationExpirer) Register(containerID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.timers[containerID]; exists {
		return
	}
	e.timers[containerID] = time.AfterFunc(e.interval, func() {
		defer apimachineryruntime.HandleCrash()
		e.fire(containerID)
	})
}

// Unregister cancels the pending timeout for containerID, if any.
func (e *TimerAllocationExpirer) Unregister(containerID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if t, exists := e.timers[containerID]; exists {
		t.Stop()
		delete(e.timers, containerID)
	}
}

func (e *TimerAllocationExpirer) fire(containerID string) {
	e.mu.Lock()
	delete(e.timers, containerID)
	e.mu.Unlock()

	c, ok := e.lookup(containerID)
	if !ok {
		klog.V(4).Infof("allocation expirer: container %s no longer tracked, skipping EXPIRE", containerID)
		return
	}
	klog.V(3).Infof("allocation expirer: firing EXPIRE for container %s", containerID)
	_ = c.Handle(rmcontainer.EventExpire, rmcontainer.EventPayload{})
}
