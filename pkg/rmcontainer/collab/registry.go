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

	"k8s.io/klog/v2"

	"github.com/koordinator-sh/rmcontainer/pkg/rmcontainer"
)

// InMemoryAttemptMetrics is a simple accumulator for one app attempt's
// preemption and resource-usage metrics.
type InMemoryAttemptMetrics struct {
	mu sync.Mutex

	preempted           rmcontainer.Resource
	memorySecondsTotal  float64
	vcoreSecondsTotal   float64
	preemptedContainers int
}

// NewInMemoryAttemptMetrics builds an empty accumulator.
func NewInMemoryAttemptMetrics() *InMemoryAttemptMetrics {
	return &InMemoryAttemptMetrics{}
}

func (m *InMemoryAttemptMetrics) UpdatePreemptionInfo(delta rmcontainer.Resource, _ rmcontainer.ContainerSummary) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.preempted = m.preempted.Add(delta)
	m.preemptedContainers++
}

func (m *InMemoryAttemptMetrics) UpdateAggregateAppResourceUsage(memorySeconds, vcoreSeconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.memorySecondsTotal += memorySeconds
	m.vcoreSecondsTotal += vcoreSeconds
}

// Snapshot returns a point-in-time copy of the accumulated metrics.
func (m *InMemoryAttemptMetrics) Snapshot() (preempted rmcontainer.Resource, preemptedContainers int, memorySeconds, vcoreSeconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.preempted, m.preemptedContainers, m.memorySecondsTotal, m.vcoreSecondsTotal
}

// InMemoryAppRegistry maps app attempt ids to their metrics accumulator,
// creating one lazily on first lookup so callers never need a separate
// registration step before a container reports against its attempt.
type InMemoryAppRegistry struct {
	mu       sync.RWMutex
	attempts map[string]*InMemoryAttemptMetrics
}

// NewInMemoryAppRegistry builds an empty registry.
func NewInMemoryAppRegistry() *InMemoryAppRegistry {
	return &InMemoryAppRegistry{attempts: map[string]*InMemoryAttemptMetrics{}}
}

func (r *InMemoryAppRegistry) GetAttemptMetrics(appAttemptID string) (rmcontainer.AttemptMetrics, bool) {
	r.mu.RLock()
	m, ok := r.attempts[appAttemptID]
	r.mu.RUnlock()
	if ok {
		return m, true
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.attempts[appAttemptID]; ok {
		return m, true
	}
	m = NewInMemoryAttemptMetrics()
	r.attempts[appAttemptID] = m
	klog.V(4).Infof("app registry: registered metrics for attempt %s", appAttemptID)
	return m, true
}

// AttemptMetricsFor returns the accumulator for appAttemptID without the
// AttemptMetrics interface indirection, for callers that need Snapshot.
func (r *InMemoryAppRegistry) AttemptMetricsFor(appAttemptID string) *InMemoryAttemptMetrics {
	m, _ := r.GetAttemptMetrics(appAttemptID)
	return m.(*InMemoryAttemptMetrics)
}
