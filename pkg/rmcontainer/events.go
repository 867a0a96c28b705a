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
	"google.golang.org/protobuf/types/known/timestamppb"
)

// EventPayload is carried alongside an Event into Handle. Only the fields
// relevant to the event type being delivered are populated; transition
// handlers read only the fields for their event and ignore the rest,
// standing in for the per-event-type payload classes in RMContainerEvent's
// Java subclasses.
type EventPayload struct {
	// ReservedResource/ReservedNode/ReservedPriority: RESERVED.
	ReservedResource Resource
	ReservedNode     string
	ReservedPriority int32

	// Status: FINISHED, SUSPEND.
	Status *ContainerStatus

	// RecoverReport: RECOVER.
	RecoverReport *NMContainerStatusReport

	// UpdatedResource: RESOURCE_UPDATE.
	UpdatedResource Resource
}

// ContainerStatus is the remote container status carried by FINISHED and
// SUSPEND events: exit code, diagnostics, and the observed NM-side state.
// CompletedAt is a well-known protobuf timestamp so the payload is already
// shaped for eventual off-process serialization.
type ContainerStatus struct {
	ExitStatus  int32
	Diagnostics string
	State       NMContainerState
	CompletedAt *timestamppb.Timestamp
}

// IsPreempted reports whether this status represents a preemption-caused
// stop.
func (s *ContainerStatus) IsPreempted() bool {
	return s != nil && s.ExitStatus == ExitStatusPreempted
}

// NMContainerStatusReport is the node-manager supplied status used to
// resolve RECOVER's multi-target transition.
type NMContainerStatusReport struct {
	State       NMContainerState
	ExitStatus  int32
	Diagnostics string
}
