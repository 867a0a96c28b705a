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

// OutboundEvent is one of the four event types a transition handler may
// emit to the EventSink.
type OutboundEvent struct {
	Type         OutboundEventType
	ContainerID  string
	AppAttemptID string
	AppID        string
	NodeID       string
	FinishStatus *ContainerStatus
}

// OutboundEventType enumerates the four outbound event kinds.
type OutboundEventType string

const (
	EventAttemptContainerAllocated OutboundEventType = "ATTEMPT_CONTAINER_ALLOCATED"
	EventAttemptContainerFinished  OutboundEventType = "ATTEMPT_CONTAINER_FINISHED"
	EventAppRunningOnNode          OutboundEventType = "APP_RUNNING_ON_NODE"
	EventNodeCleanContainer        OutboundEventType = "NODE_CLEAN_CONTAINER"
)

// EventSink is the abstract binding to the global event dispatcher; only the
// call boundary lives here, the dispatcher itself is someone else's problem.
type EventSink interface {
	Handle(event OutboundEvent)
}

// AllocationExpirer is the timeout service that fires EXPIRE if an
// allocated container is not acquired in time.
type AllocationExpirer interface {
	Register(containerID string)
	Unregister(containerID string)
}

// HistoryWriter persists container lifecycle milestones. History storage
// itself is out of scope; only these two call sites are specified.
type HistoryWriter interface {
	ContainerStarted(summary ContainerSummary)
	ContainerFinished(summary ContainerSummary)
}

// MetricsPublisher publishes per-container creation/finish metrics.
// Publication/storage is out of scope; only these two call sites are
// specified. ContainerFinished also carries the exit status and the
// memory/vcore-second usage finished() computes, so an implementation can
// break finishes down by exit status and track resource-second usage
// distributions, not just count finishes by terminal state.
type MetricsPublisher interface {
	ContainerCreated(summary ContainerSummary, at int64)
	ContainerFinished(summary ContainerSummary, at int64, exitStatus int32, memorySeconds, vcoreSeconds float64)
}

// ContainerSummary is a read-only, lock-free projection of a Container
// handed to collaborators so they never receive a live, lockable reference
// back into the container they're being told about.
type ContainerSummary struct {
	ContainerID  string
	AppAttemptID string
	NodeID       string
	State        State
}

// AttemptMetrics is the narrow slice of an app attempt's metrics sink the
// transition handlers actually call into.
type AttemptMetrics interface {
	UpdatePreemptionInfo(delta Resource, summary ContainerSummary)
	UpdateAggregateAppResourceUsage(memorySeconds, vcoreSeconds float64)
}

// AppRegistry resolves an application attempt's metrics sink.
type AppRegistry interface {
	GetAttemptMetrics(appAttemptID string) (AttemptMetrics, bool)
}

// collaborators bundles everything a Container borrows at construction; it
// owns none of them.
type collaborators struct {
	sink    EventSink
	expirer AllocationExpirer
	history HistoryWriter
	metrics MetricsPublisher
	apps    AppRegistry
}
