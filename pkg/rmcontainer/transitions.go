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
	"time"

	"k8s.io/klog/v2"
)

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

// buildTable assembles the process-global transition table. It runs exactly
// once, from fsm.go's init().
func buildTable() transitionTable {
	t := transitionTable{}

	// From NEW.
	addArc(t, StateNew, EventStart, &arc{to: StateAllocated, effect: containerStarted})
	addArc(t, StateNew, EventReserved, &arc{to: StateReserved, effect: containerReserved})
	addArc(t, StateNew, EventKill, &arc{to: StateKilled})
	addArc(t, StateNew, EventRecover, &arc{chooser: containerRecovered})

	// From RESERVED.
	addArc(t, StateReserved, EventReserved, &arc{to: StateReserved, effect: containerReserved})
	addArc(t, StateReserved, EventStart, &arc{to: StateAllocated, effect: containerStarted})
	addArc(t, StateReserved, EventKill, &arc{to: StateKilled})
	addArc(t, StateReserved, EventReleased, &arc{to: StateReleased})

	// From ALLOCATED.
	addArc(t, StateAllocated, EventAcquired, &arc{to: StateAcquired, effect: acquired})
	addArc(t, StateAllocated, EventExpire, &arc{to: StateExpired, effect: finished})
	addArc(t, StateAllocated, EventKill, &arc{to: StateKilled, effect: finished})
	addArc(t, StateAllocated, EventResourceUpdate, &arc{to: StateAllocated, effect: resourceUpdate})

	// From ACQUIRED.
	addArc(t, StateAcquired, EventLaunched, &arc{to: StateRunning, effect: launched})
	addArc(t, StateAcquired, EventFinished, &arc{to: StateCompleted, effect: finishedAtAcquired})
	addArc(t, StateAcquired, EventReleased, &arc{to: StateReleased, effect: kill})
	addArc(t, StateAcquired, EventExpire, &arc{to: StateExpired, effect: kill})
	addArc(t, StateAcquired, EventKill, &arc{to: StateKilled, effect: kill})
	addArc(t, StateAcquired, EventResourceUpdate, &arc{to: StateAcquired, effect: resourceUpdate})

	// From RUNNING.
	addArc(t, StateRunning, EventFinished, &arc{to: StateCompleted, effect: finished})
	addArc(t, StateRunning, EventSuspend, &arc{to: StateDehydrated, effect: containerSuspend})
	addArc(t, StateRunning, EventKill, &arc{to: StateKilled, effect: kill})
	addArc(t, StateRunning, EventReleased, &arc{to: StateReleased, effect: kill})
	addArc(t, StateRunning, EventExpire, &arc{to: StateRunning})
	addArc(t, StateRunning, EventResourceUpdate, &arc{to: StateRunning, effect: resourceUpdate})

	// From DEHYDRATED.
	addArc(t, StateDehydrated, EventResume, &arc{chooser: containerResume, effect: containerResumeEffect})
	addArc(t, StateDehydrated, EventSuspend, &arc{to: StateDehydrated, effect: containerSuspend})
	addArc(t, StateDehydrated, EventFinished, &arc{to: StateCompleted, effect: finished})
	addArc(t, StateDehydrated, EventKill, &arc{to: StateKilled, effect: kill})
	addArc(t, StateDehydrated, EventReleased, &arc{to: StateReleased, effect: kill})
	addArc(t, StateDehydrated, EventExpire, &arc{to: StateDehydrated})

	// From COMPLETED (terminal self-loops, idempotent no-ops).
	for _, ev := range []Event{EventExpire, EventReleased, EventKill} {
		addArc(t, StateCompleted, ev, &arc{to: StateCompleted})
	}

	// From EXPIRED.
	for _, ev := range []Event{EventReleased, EventKill} {
		addArc(t, StateExpired, ev, &arc{to: StateExpired})
	}

	// From RELEASED.
	for _, ev := range []Event{EventExpire, EventReleased, EventKill, EventFinished} {
		addArc(t, StateReleased, ev, &arc{to: StateReleased})
	}

	// From KILLED.
	for _, ev := range []Event{EventExpire, EventReleased, EventKill, EventFinished} {
		addArc(t, StateKilled, ev, &arc{to: StateKilled})
	}

	return t
}

// containerStarted emits AttemptContainerAllocated.
func containerStarted(c *Container, _ Event, _ EventPayload) {
	c.emit(OutboundEvent{
		Type:         EventAttemptContainerAllocated,
		ContainerID:  c.containerID,
		AppAttemptID: c.appAttemptID,
	})
}

// containerReserved copies the reservation fields from the event. On a
// double RESERVED while already RESERVED, the last reservation wins.
func containerReserved(c *Container, _ Event, payload EventPayload) {
	c.reservedResource = payload.ReservedResource
	c.reservedNode = payload.ReservedNode
	c.reservedPriority = payload.ReservedPriority
	c.hasReservation = true
}

// acquired clears the resource requests, registers with the allocation
// expirer, and tells the app the container is running on its node.
func acquired(c *Container, _ Event, _ EventPayload) {
	c.resourceRequests = nil
	if c.collab.expirer != nil {
		c.collab.expirer.Register(c.containerID)
	}
	c.emit(OutboundEvent{
		Type:        EventAppRunningOnNode,
		ContainerID: c.containerID,
		NodeID:      c.nodeID,
	})
}

// launched unregisters from the allocation expirer: the container has been
// confirmed alive, so the allocation timeout no longer applies.
func launched(c *Container, _ Event, _ EventPayload) {
	if c.collab.expirer != nil {
		c.collab.expirer.Unregister(c.containerID)
	}
}

// resourceUpdate replaces allocatedResource with the event's payload,
// carried over from RMContainerImpl's ResourceUpdateTransition.
func resourceUpdate(c *Container, _ Event, payload EventPayload) {
	c.allocatedResource = payload.UpdatedResource
}

// containerSuspend appends the suspend timestamp, stores the finished
// status verbatim (so later diagnostics reflect the suspension cause),
// marks isSuspending, and reports preemption metrics when the stop was
// caused by preemption.
func containerSuspend(c *Container, _ Event, payload EventPayload) {
	c.suspendTimes = append(c.suspendTimes, nowMillis())
	c.finishedStatus = payload.Status
	c.isSuspending = true

	if payload.Status.IsPreempted() {
		if metrics, ok := c.attemptMetrics(); ok {
			metrics.UpdatePreemptionInfo(c.lastPreempted, c.summaryLocked())
		}
	}
}

// containerResume is the chooser half of the RESUME multi-target arc: it
// decides whether enough of the preempted resource has been returned to go
// fully RUNNING again (containerResumeEffect records the resume timestamp).
// The shrinking of
// preempted itself happens in AddResumedResource, called by the scheduler
// before RESUME is delivered.
func containerResume(c *Container, _ EventPayload) State {
	if c.preempted.IsZero() {
		return StateRunning
	}
	return StateDehydrated
}

// containerResumeEffect runs alongside the chooser: append the resume
// timestamp and clear isSuspending once fully resumed.
func containerResumeEffect(c *Container, _ Event, _ EventPayload) {
	c.resumeTimes = append(c.resumeTimes, nowMillis())
	if c.preempted.IsZero() {
		c.isSuspending = false
	}
}

// finished is the common terminal-transition handler: sets finishTime and
// finishedStatus, recomputes utilization, reports preemption and aggregate
// usage metrics, and notifies the event sink, history writer, and metrics
// publisher of the finish.
func finished(c *Container, _ Event, payload EventPayload) {
	c.finishTime = nowMillis()
	c.finishedStatus = payload.Status

	lifetime := c.finishTime - c.creationTime
	if lifetime < 0 {
		lifetime = 0
	}

	if len(c.suspendTimes) > 0 && len(c.suspendTimes) == len(c.resumeTimes) {
		var suspended int64
		for i := range c.suspendTimes {
			suspended += c.resumeTimes[i] - c.suspendTimes[i]
		}
		if lifetime > 0 {
			c.utilization = float64(suspended) / float64(lifetime)
		}
	}

	memorySeconds := float64(c.allocatedResource.MemoryMB) * c.utilization * float64(lifetime) / 1000
	vcoreSeconds := float64(c.allocatedResource.VCores) * c.utilization * float64(lifetime) / 1000

	metrics, haveMetrics := c.attemptMetrics()
	if payload.Status.IsPreempted() && haveMetrics {
		metrics.UpdatePreemptionInfo(c.allocatedResource, c.summaryLocked())
	}
	if haveMetrics {
		metrics.UpdateAggregateAppResourceUsage(memorySeconds, vcoreSeconds)
	}

	c.emit(OutboundEvent{
		Type:         EventAttemptContainerFinished,
		ContainerID:  c.containerID,
		AppAttemptID: c.appAttemptID,
		NodeID:       c.nodeID,
		FinishStatus: payload.Status,
	})

	var exitStatus int32
	if payload.Status != nil {
		exitStatus = payload.Status.ExitStatus
	}

	summary := c.summaryLocked()
	if c.collab.history != nil {
		c.collab.history.ContainerFinished(summary)
	}
	if c.collab.metrics != nil {
		c.collab.metrics.ContainerFinished(summary, c.finishTime, exitStatus, memorySeconds, vcoreSeconds)
	}
}

// finishedAtAcquired unregisters from the expirer (the container never got
// past ACQUIRED) and then runs the common finish logic.
func finishedAtAcquired(c *Container, ev Event, payload EventPayload) {
	if c.collab.expirer != nil {
		c.collab.expirer.Unregister(c.containerID)
	}
	finished(c, ev, payload)
}

// kill unregisters from the expirer, tells the node to clean the container
// up, and then runs the common finish logic. Used for RELEASED/EXPIRE/KILL
// from ACQUIRED, and for RELEASED/KILL from RUNNING and DEHYDRATED (EXPIRE
// there is an absorbed self-loop).
func kill(c *Container, ev Event, payload EventPayload) {
	if c.collab.expirer != nil {
		c.collab.expirer.Unregister(c.containerID)
	}
	c.emit(OutboundEvent{
		Type:        EventNodeCleanContainer,
		ContainerID: c.containerID,
		NodeID:      c.nodeID,
	})
	finished(c, ev, payload)
}

// containerRecovered resolves RECOVER's multi-target transition: COMPLETE
// reports finish the container via the common finish path; RUNNING reports
// tell the app the container is alive on its node; any other reported state
// is an ErrRecoverUnexpectedState, logged at WARN, defaulting to RUNNING.
func containerRecovered(c *Container, payload EventPayload) State {
	report := payload.RecoverReport
	if report == nil {
		klog.Warningf("container %s: recover event carried no report", c.containerID)
		return StateRunning
	}

	switch report.State {
	case NMContainerStateComplete:
		status := &ContainerStatus{ExitStatus: report.ExitStatus, Diagnostics: report.Diagnostics, State: report.State}
		c.state = StateCompleted
		finished(c, EventFinished, EventPayload{Status: status})
		return StateCompleted
	case NMContainerStateRunning:
		c.emit(OutboundEvent{
			Type:        EventAppRunningOnNode,
			ContainerID: c.containerID,
			NodeID:      c.nodeID,
		})
		return StateRunning
	default:
		err := &ErrRecoverUnexpectedState{ContainerID: c.containerID, Got: report.State}
		klog.Warning(err)
		return StateRunning
	}
}

// emit is a small helper so handlers don't need to nil-check the sink
// individually; the sink is expected to be non-blocking.
func (c *Container) emit(ev OutboundEvent) {
	if c.collab.sink == nil {
		return
	}
	c.collab.sink.Handle(ev)
}

// attemptMetrics resolves this container's owning attempt's metrics sink
// through the AppRegistry.
func (c *Container) attemptMetrics() (AttemptMetrics, bool) {
	if c.collab.apps == nil {
		return nil, false
	}
	return c.collab.apps.GetAttemptMetrics(c.appAttemptID)
}
