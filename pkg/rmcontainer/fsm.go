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

// chooserFunc resolves a multi-target transition's actual destination
// state. Only RECOVER and RESUME need one.
type chooserFunc func(c *Container, payload EventPayload) State

// effectFunc mutates the container and dispatches collaborator events for
// one arc. It runs under the container's write lock, already held by
// Handle.
type effectFunc func(c *Container, ev Event, payload EventPayload)

// arc is a tagged transition descriptor: either a fixed target state, or a
// chooser that picks the target dynamically, plus an optional effect. This
// replaces a per-class handler hierarchy with a flat, data-driven table.
type arc struct {
	to      State
	chooser chooserFunc
	effect  effectFunc
}

// transitionTable is process-global and immutable once built.
type transitionTable map[State]map[Event]*arc

var table transitionTable

func init() {
	table = buildTable()
}

func addArc(t transitionTable, from State, ev Event, a *arc) {
	m, ok := t[from]
	if !ok {
		m = map[Event]*arc{}
		t[from] = m
	}
	m[ev] = a
}

// apply resolves and runs the arc for (state, event), returning the new
// state. The container's state is set to the resolved target before the
// effect runs, so collaborators notified by the effect see the new state. If
// no arc is defined, it returns the unchanged state and ErrInvalidTransition;
// callers must not mutate the container in that case.
func apply(c *Container, state State, ev Event, payload EventPayload) (State, error) {
	byEvent, ok := table[state]
	if !ok {
		return state, &ErrInvalidTransition{ContainerID: c.containerID, State: state, Event: ev}
	}
	a, ok := byEvent[ev]
	if !ok {
		return state, &ErrInvalidTransition{ContainerID: c.containerID, State: state, Event: ev}
	}

	to := a.to
	if a.chooser != nil {
		to = a.chooser(c, payload)
	}
	c.state = to
	if a.effect != nil {
		a.effect(c, ev, payload)
	}
	return to, nil
}
