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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyInvalidTransitionLeavesStateUnchanged(t *testing.T) {
	c := newTestContainer(t)
	c.state = StateNew

	next, err := apply(c, StateNew, EventLaunched, EventPayload{})

	assert.Error(t, err)
	assert.IsType(t, &ErrInvalidTransition{}, err)
	assert.Equal(t, StateNew, next)
}

func TestTerminalStatesAreIdempotentUnderAnyEvent(t *testing.T) {
	terminal := []State{StateCompleted, StateExpired, StateReleased, StateKilled}
	events := []Event{EventExpire, EventReleased, EventKill, EventFinished}

	for _, state := range terminal {
		for _, ev := range events {
			t.Run(string(state)+"/"+string(ev), func(t *testing.T) {
				c := newTestContainer(t)
				c.state = state

				next, err := apply(c, state, ev, EventPayload{Status: &ContainerStatus{}})
				if err != nil {
					// Not every terminal state defines every event (e.g. EXPIRED
					// never re-enters FINISHED); that is itself a defined
					// ErrInvalidTransition, not a panic or state mutation.
					assert.IsType(t, &ErrInvalidTransition{}, err)
					assert.Equal(t, state, next)
					return
				}
				assert.Equal(t, state, next)
			})
		}
	}
}

func TestReservedArcFromNewAndFromReservedBothLandOnReserved(t *testing.T) {
	for _, from := range []State{StateNew, StateReserved} {
		t.Run(string(from), func(t *testing.T) {
			c := newTestContainer(t)
			c.state = from

			next, err := apply(c, from, EventReserved, EventPayload{
				ReservedResource: NewResource(512, 1),
				ReservedNode:     "node9:1",
				ReservedPriority: 1,
			})

			assert.NoError(t, err)
			assert.Equal(t, StateReserved, next)
		})
	}
}

func TestRunningExpireIsANoOp(t *testing.T) {
	c := newTestContainer(t)
	c.state = StateRunning

	next, err := apply(c, StateRunning, EventExpire, EventPayload{})

	assert.NoError(t, err)
	assert.Equal(t, StateRunning, next)
}
