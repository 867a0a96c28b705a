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
	"sync"

	"k8s.io/klog/v2"
)

// ResourceRequest is the pending allocation ask that produced this
// container; cleared on ACQUIRED.
type ResourceRequest struct {
	Priority    int32
	Capability  Resource
	NumContains int32
}

// Container is the per-container lifecycle record. It embeds its own
// read/write lock rather than delegating to a wrapper facade type,
// mirroring RMContainerImpl implementing RMContainer directly.
//
// Identity fields are immutable after construction and are never guarded by
// the lock; every other field is read or written only while holding mu.
type Container struct {
	// identity, immutable.
	containerID     string
	appAttemptID    string
	nodeID          string
	nodeHTTPAddress string
	user            string
	creationTime    int64
	priority        int32

	mu sync.RWMutex

	state State

	allocatedResource Resource
	preempted         Resource
	lastPreempted     Resource
	lastResumed       Resource

	reservedResource Resource
	reservedNode     string
	reservedPriority int32
	hasReservation   bool

	suspendTimes []int64
	resumeTimes  []int64
	isSuspending bool

	resumeOpportunity int

	utilization float64

	finishTime     int64
	finishedStatus *ContainerStatus

	isAMContainer bool

	resourceRequests []ResourceRequest

	preemptionPriority float64

	deadline          int64
	arrivalTime       int64
	numBeingPreempted int32

	prNumber int32

	logURLScheme string

	collab collaborators
}

// NewContainerParams groups the construction-time inputs for NewContainer.
type NewContainerParams struct {
	ContainerID       string
	AppAttemptID      string
	NodeID            string
	NodeHTTPAddress   string
	User              string
	CreationTime      int64
	AllocatedResource Resource
	Priority          int32
	PRNumber          int32
	LogURLScheme      string

	EventSink         EventSink
	AllocationExpirer AllocationExpirer
	HistoryWriter     HistoryWriter
	MetricsPublisher  MetricsPublisher
	AppRegistry       AppRegistry
}

// NewContainer constructs a Container in state NEW. Mirrors
// RMContainerImpl's constructor: it notifies the history writer and metrics
// publisher of creation immediately, before any event is ever handled.
func NewContainer(p NewContainerParams) *Container {
	prNumber := p.PRNumber
	if prNumber <= 0 {
		prNumber = 2
	}
	c := &Container{
		containerID:       p.ContainerID,
		appAttemptID:      p.AppAttemptID,
		nodeID:            p.NodeID,
		nodeHTTPAddress:   p.NodeHTTPAddress,
		user:              p.User,
		creationTime:      p.CreationTime,
		priority:          p.Priority,
		state:             StateNew,
		allocatedResource: p.AllocatedResource,
		utilization:       1,
		prNumber:          prNumber,
		logURLScheme:      p.LogURLScheme,
		collab: collaborators{
			sink:    p.EventSink,
			expirer: p.AllocationExpirer,
			history: p.HistoryWriter,
			metrics: p.MetricsPublisher,
			apps:    p.AppRegistry,
		},
	}
	if c.logURLScheme == "" {
		c.logURLScheme = "http://"
	}
	if c.nodeHTTPAddress == "" {
		c.nodeHTTPAddress = c.nodeID
	}

	summary := c.summaryLocked()
	if c.collab.history != nil {
		c.collab.history.ContainerStarted(summary)
	}
	if c.collab.metrics != nil {
		c.collab.metrics.ContainerCreated(summary, c.creationTime)
	}
	klog.V(4).Infof("created container %s for attempt %s on node %s", c.containerID, c.appAttemptID, c.nodeID)
	return c
}

// summaryLocked builds a ContainerSummary. Caller must hold at least a read
// lock, or be the constructor (no concurrent access possible yet).
func (c *Container) summaryLocked() ContainerSummary {
	return ContainerSummary{
		ContainerID:  c.containerID,
		AppAttemptID: c.appAttemptID,
		NodeID:       c.nodeID,
		State:        c.state,
	}
}
