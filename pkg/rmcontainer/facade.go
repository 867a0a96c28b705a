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
	"fmt"

	"k8s.io/klog/v2"
)

// Handle is the single entry point for delivering an event to this
// container. It serializes through the write lock for the entire
// transition, including outbound event emission, and never panics on an
// undefined event: an InvalidTransition is logged, the state is left
// unchanged, and the *ErrInvalidTransition is returned. Every defined
// transition returns nil.
func (c *Container) Handle(event Event, payload EventPayload) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.state
	next, err := apply(c, old, event, payload)
	if err != nil {
		klog.Errorf("container %s: %v", c.containerID, err)
		return err
	}
	c.state = next
	if old != next {
		klog.V(3).Infof("container %s transitioned from %s to %s on %s", c.containerID, old, next, event)
	}
	return nil
}

// GetState returns the current state under the read lock.
func (c *Container) GetState() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// GetContainerID returns the immutable container id.
func (c *Container) GetContainerID() string {
	return c.containerID
}

// GetApplicationAttemptID returns the immutable owning attempt id.
func (c *Container) GetApplicationAttemptID() string {
	return c.appAttemptID
}

// GetNodeID returns the immutable node id this container is allocated on.
func (c *Container) GetNodeID() string {
	return c.nodeID
}

// GetUser returns the immutable submitting user.
func (c *Container) GetUser() string {
	return c.user
}

// GetNodeHTTPAddress returns the immutable node HTTP address used to build
// the log URL, distinct from GetNodeID which is the RPC-facing node id.
func (c *Container) GetNodeHTTPAddress() string {
	return c.nodeHTTPAddress
}

// GetPriority returns the immutable priority of the allocated container,
// distinct from the mutable preemption priority set by SetPreemptionPriority.
func (c *Container) GetPriority() int32 {
	return c.priority
}

// GetCreationTime returns the immutable creation time (epoch millis).
func (c *Container) GetCreationTime() int64 {
	return c.creationTime
}

// GetFinishTime returns the finish time, or zero if not yet finished.
func (c *Container) GetFinishTime() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.finishTime
}

// GetDiagnosticsInfo returns the diagnostics carried by the last finished
// status, or "" if the container has not finished.
func (c *Container) GetDiagnosticsInfo() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.finishedStatus == nil {
		return ""
	}
	return c.finishedStatus.Diagnostics
}

// GetExitStatus returns the exit code carried by the last finished status,
// or 0 if the container has not finished.
func (c *Container) GetExitStatus() int32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.finishedStatus == nil {
		return 0
	}
	return c.finishedStatus.ExitStatus
}

// GetContainerState returns the node-manager-observed state carried by the
// last finished status, or NMContainerStateRunning if the container has not
// finished (matching RMContainerImpl's default-to-RUNNING behavior).
func (c *Container) GetContainerState() NMContainerState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.finishedStatus == nil {
		return NMContainerStateRunning
	}
	return c.finishedStatus.State
}

// IsAMContainer reports whether this container runs the application's
// coordinator.
func (c *Container) IsAMContainer() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isAMContainer
}

// SetAMContainer marks this container as (or not) the AM container.
func (c *Container) SetAMContainer(isAM bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.isAMContainer = isAM
}

// GetResourceRequests returns the pending allocation asks, non-nil only
// before ACQUIRED.
func (c *Container) GetResourceRequests() []ResourceRequest {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resourceRequests
}

// SetResourceRequests stores the pending allocation asks for this
// container.
func (c *Container) SetResourceRequests(reqs []ResourceRequest) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resourceRequests = reqs
}

// GetAllocatedResource returns the memory/vcores promised to this
// container.
func (c *Container) GetAllocatedResource() Resource {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.allocatedResource
}

// GetCurrentUsedResource returns allocated-minus-preempted while the
// container is suspending, else the full allocated resource.
func (c *Container) GetCurrentUsedResource() Resource {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.isSuspending {
		return c.allocatedResource.Subtract(c.preempted)
	}
	return c.allocatedResource
}

// IsSuspending reports whether the container is withholding preempted
// resource: set when a non-zero preemption is added or SUSPEND is handled,
// cleared when RESUME finds preempted back at zero.
func (c *Container) IsSuspending() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isSuspending
}

// GetPreemptedResource returns the cumulative preempted resource currently
// withheld.
func (c *Container) GetPreemptedResource() Resource {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.preempted
}

// GetLastPreemptedResource returns the most recent preemption delta.
func (c *Container) GetLastPreemptedResource() Resource {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastPreempted
}

// GetLastResumedResource returns the most recent resume delta.
func (c *Container) GetLastResumedResource() Resource {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastResumed
}

// AddPreemptedResource records a preemption delta. Takes the write lock:
// the Hadoop original mistakenly takes the read lock here, a real
// concurrency bug this reimplementation fixes.
func (c *Container) AddPreemptedResource(r Resource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastPreempted = r
	c.preempted = c.preempted.Add(r)
	if !c.preempted.IsZero() {
		c.isSuspending = true
	}
}

// AddResumedResource records a resume delta, shrinking preempted (clamped
// at zero per component). Takes the write lock for the same reason as
// AddPreemptedResource.
func (c *Container) AddResumedResource(r Resource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastResumed = r
	c.preempted = c.preempted.Subtract(r)
}

// GetSuspendTimes returns the ordered suspend timestamps.
func (c *Container) GetSuspendTimes() []int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]int64(nil), c.suspendTimes...)
}

// GetResumeTimes returns the ordered resume timestamps.
func (c *Container) GetResumeTimes() []int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]int64(nil), c.resumeTimes...)
}

// GetUtilization returns the cached utilization fraction, recomputed at
// FINISHED. It measures suspended fraction of lifetime, not active
// fraction; see DESIGN.md for why that naming is preserved.
func (c *Container) GetUtilization() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.utilization
}

// GetResumeOpportunity returns the scheduler-hint counter.
func (c *Container) GetResumeOpportunity() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resumeOpportunity
}

// IncResumeOpportunity increments the scheduler-hint counter.
func (c *Container) IncResumeOpportunity() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resumeOpportunity++
}

// ResetResumeOpportunity resets the scheduler-hint counter to zero.
func (c *Container) ResetResumeOpportunity() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resumeOpportunity = 0
}

// GetReservedResource returns the reservation's resource, zero if this
// container is not (or no longer) a reservation.
func (c *Container) GetReservedResource() Resource {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.reservedResource
}

// GetReservedNode returns the reservation's node id.
func (c *Container) GetReservedNode() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.reservedNode
}

// GetReservedPriority returns the reservation's priority.
func (c *Container) GetReservedPriority() int32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.reservedPriority
}

// HasReservation reports whether this container currently carries
// reservation fields, set on RESERVED and otherwise unset.
func (c *Container) HasReservation() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hasReservation
}

// GetDeadline returns the scheduling deadline.
func (c *Container) GetDeadline() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.deadline
}

// SetDeadline sets the scheduling deadline.
func (c *Container) SetDeadline(deadline int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deadline = deadline
}

// GetArrivalTime returns the owning application's arrival time.
func (c *Container) GetArrivalTime() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.arrivalTime
}

// SetArrivalTime sets the owning application's arrival time.
func (c *Container) SetArrivalTime(arrivalTime int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.arrivalTime = arrivalTime
}

// GetNumOfBeingPreempted returns how many times this container has been
// selected as a preemption target.
func (c *Container) GetNumOfBeingPreempted() int32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.numBeingPreempted
}

// SetNumOfBeingPreempted sets the preemption-target counter.
func (c *Container) SetNumOfBeingPreempted(n int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.numBeingPreempted = n
}

// SetPreemptionPriority stores the preemption priority as a float. The
// getter below deliberately truncates it and is named to make that explicit,
// fixing a silent float/int mismatch in the Hadoop original.
func (c *Container) SetPreemptionPriority(p float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.preemptionPriority = p
}

// GetPreemptionPriorityFloor returns the preemption priority truncated to
// an int. Named explicitly (rather than GetPreemptionPriority returning a
// different numeric type than the setter takes, as in the Hadoop original)
// so the truncation is visible at the call site.
func (c *Container) GetPreemptionPriorityFloor() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return int(c.preemptionPriority)
}

// SamePreemptionPriority compares preemption priority against another
// container's. The Hadoop original compares getPreemptionPriority() against
// a different accessor (other.getPriority()) on a different sibling type;
// here both sides read the same field through the same accessor.
func (c *Container) SamePreemptionPriority(other *Container) bool {
	c.mu.RLock()
	p := c.preemptionPriority
	c.mu.RUnlock()

	other.mu.RLock()
	op := other.preemptionPriority
	other.mu.RUnlock()

	return p == op
}

// GetSRResourceUnit returns the suspend/resume granularity unit: one
// vcore's worth of memory, times the per-container PR_NUMBER. PR_NUMBER is
// stored per-instance here, not on a shared package global.
func (c *Container) GetSRResourceUnit() Resource {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.allocatedResource.VCores == 0 {
		return Resource{}
	}
	unit := Resource{
		MemoryMB: c.allocatedResource.MemoryMB / int64(c.allocatedResource.VCores),
		VCores:   1,
	}
	return unit.Multiply(c.prNumber)
}

// GetLogURL builds the running-container log URL from the configured
// scheme, node HTTP address, container id, and user -- standing in for the
// out-of-scope WebAppUtils lookup in the Hadoop original.
func (c *Container) GetLogURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.logURLLocked()
}

// logURLLocked builds the log URL. Caller must hold at least a read lock.
func (c *Container) logURLLocked() string {
	return fmt.Sprintf("%s%s/node/containerlogs/%s/%s", c.logURLScheme, c.nodeHTTPAddress, c.containerID, c.user)
}

// ContainerReport is a consistent, read-locked snapshot of a container's
// externally visible fields.
type ContainerReport struct {
	ContainerID       string
	AllocatedResource Resource
	AllocatedNode     string
	Priority          int32
	CreationTime      int64
	FinishTime        int64
	DiagnosticsInfo   string
	LogURL            string
	ExitStatus        int32
	ContainerState    NMContainerState
	NodeHTTPAddress   string
}

// CreateContainerReport takes a single read lock and builds a
// ContainerReport, so every field reflects the same point in time.
func (c *Container) CreateContainerReport() ContainerReport {
	c.mu.RLock()
	defer c.mu.RUnlock()

	diagnostics := ""
	var exitStatus int32
	state := NMContainerStateRunning
	if c.finishedStatus != nil {
		diagnostics = c.finishedStatus.Diagnostics
		exitStatus = c.finishedStatus.ExitStatus
		state = c.finishedStatus.State
	}

	return ContainerReport{
		ContainerID:       c.containerID,
		AllocatedResource: c.allocatedResource,
		AllocatedNode:     c.nodeID,
		Priority:          c.priority,
		CreationTime:      c.creationTime,
		FinishTime:        c.finishTime,
		DiagnosticsInfo:   diagnostics,
		LogURL:            c.logURLLocked(),
		ExitStatus:        exitStatus,
		ContainerState:    state,
		NodeHTTPAddress:   c.nodeHTTPAddress,
	}
}
