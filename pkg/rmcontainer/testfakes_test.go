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
	"testing"
)

// fakeEventSink records every outbound event in order, standing in for a
// gomock-generated EventSink double.
type fakeEventSink struct {
	mu     sync.Mutex
	events []OutboundEvent
}

func (f *fakeEventSink) Handle(ev OutboundEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
}

func (f *fakeEventSink) Count(t OutboundEventType) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, ev := range f.events {
		if ev.Type == t {
			n++
		}
	}
	return n
}

// fakeExpirer records Register/Unregister calls by container id.
type fakeExpirer struct {
	mu          sync.Mutex
	registered  map[string]bool
	registerCnt int
	unregisterCnt int
}

func newFakeExpirer() *fakeExpirer {
	return &fakeExpirer{registered: map[string]bool{}}
}

func (f *fakeExpirer) Register(containerID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registered[containerID] = true
	f.registerCnt++
}

func (f *fakeExpirer) Unregister(containerID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.registered, containerID)
	f.unregisterCnt++
}

// fakeHistoryWriter records the summaries it was told about.
type fakeHistoryWriter struct {
	mu       sync.Mutex
	started  []ContainerSummary
	finished []ContainerSummary
}

func (f *fakeHistoryWriter) ContainerStarted(s ContainerSummary) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, s)
}

func (f *fakeHistoryWriter) ContainerFinished(s ContainerSummary) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finished = append(f.finished, s)
}

// fakeMetricsPublisher records creation/finish calls.
type fakeMetricsPublisher struct {
	mu                 sync.Mutex
	created            int
	finished           int
	lastExitStatus     int32
	memorySecondsTotal float64
	vcoreSecondsTotal  float64
}

func (f *fakeMetricsPublisher) ContainerCreated(ContainerSummary, int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created++
}

func (f *fakeMetricsPublisher) ContainerFinished(_ ContainerSummary, _ int64, exitStatus int32, memorySeconds, vcoreSeconds float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finished++
	f.lastExitStatus = exitStatus
	f.memorySecondsTotal += memorySeconds
	f.vcoreSecondsTotal += vcoreSeconds
}

// fakeAttemptMetrics records the deltas it was told about.
type fakeAttemptMetrics struct {
	mu                 sync.Mutex
	preemptionDeltas   []Resource
	memorySecondsTotal float64
	vcoreSecondsTotal  float64
}

func (f *fakeAttemptMetrics) UpdatePreemptionInfo(delta Resource, _ ContainerSummary) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.preemptionDeltas = append(f.preemptionDeltas, delta)
}

func (f *fakeAttemptMetrics) UpdateAggregateAppResourceUsage(memorySeconds, vcoreSeconds float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.memorySecondsTotal += memorySeconds
	f.vcoreSecondsTotal += vcoreSeconds
}

// fakeAppRegistry hands back a single fixed AttemptMetrics for every attempt id.
type fakeAppRegistry struct {
	metrics *fakeAttemptMetrics
}

func (f *fakeAppRegistry) GetAttemptMetrics(string) (AttemptMetrics, bool) {
	if f.metrics == nil {
		return nil, false
	}
	return f.metrics, true
}

// testHarness bundles a Container with its fake collaborators so tests can
// assert on what the container told them.
type testHarness struct {
	Container *Container
	Sink      *fakeEventSink
	Expirer   *fakeExpirer
	History   *fakeHistoryWriter
	Metrics   *fakeMetricsPublisher
	Attempt   *fakeAttemptMetrics
}

func newTestContainer(t *testing.T) *Container {
	t.Helper()
	return newTestHarness(t).Container
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()
	attempt := &fakeAttemptMetrics{}
	h := &testHarness{
		Sink:    &fakeEventSink{},
		Expirer: newFakeExpirer(),
		History: &fakeHistoryWriter{},
		Metrics: &fakeMetricsPublisher{},
		Attempt: attempt,
	}
	h.Container = NewContainer(NewContainerParams{
		ContainerID:       "container_app_000001",
		AppAttemptID:      "appattempt_app_000001",
		NodeID:            "node1:1234",
		User:              "tester",
		CreationTime:      1000,
		AllocatedResource: NewResource(4096, 4),
		PRNumber:          2,
		EventSink:         h.Sink,
		AllocationExpirer: h.Expirer,
		HistoryWriter:     h.History,
		MetricsPublisher:  h.Metrics,
		AppRegistry:       &fakeAppRegistry{metrics: attempt},
	})
	return h
}
