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

import "fmt"

// ErrInvalidTransition is logged and returned by Handle, with the state left
// unchanged, when an event has no defined arc for the container's
// current state. Races deliver duplicate or late events routinely, so this
// is expected traffic, not a bug signal by itself.
type ErrInvalidTransition struct {
	ContainerID string
	State       State
	Event       Event
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("container %s: invalid event %s at state %s", e.ContainerID, e.Event, e.State)
}

// ErrRecoverUnexpectedState describes a RECOVER event that carries an
// NMContainerState that is neither RUNNING nor COMPLETE. The multi-target
// handler defaults to RUNNING and logs this at WARN; it is not returned.
type ErrRecoverUnexpectedState struct {
	ContainerID string
	Got         NMContainerState
}

func (e *ErrRecoverUnexpectedState) Error() string {
	return fmt.Sprintf("container %s: unexpected recover state %s", e.ContainerID, e.Got)
}
