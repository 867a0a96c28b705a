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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/koordinator-sh/rmcontainer/pkg/rmcontainer"
)

func TestInMemoryAppRegistryCreatesOnFirstLookup(t *testing.T) {
	r := NewInMemoryAppRegistry()

	m1, ok := r.GetAttemptMetrics("attempt-1")
	assert.True(t, ok)
	m2, ok := r.GetAttemptMetrics("attempt-1")
	assert.True(t, ok)
	assert.Same(t, m1, m2)
}

func TestInMemoryAttemptMetricsAccumulates(t *testing.T) {
	m := NewInMemoryAttemptMetrics()

	m.UpdatePreemptionInfo(rmcontainer.NewResource(1024, 1), rmcontainer.ContainerSummary{})
	m.UpdatePreemptionInfo(rmcontainer.NewResource(512, 1), rmcontainer.ContainerSummary{})
	m.UpdateAggregateAppResourceUsage(10, 20)
	m.UpdateAggregateAppResourceUsage(5, 5)

	preempted, count, memSec, vcoreSec := m.Snapshot()
	assert.Equal(t, rmcontainer.NewResource(1536, 2), preempted)
	assert.Equal(t, 2, count)
	assert.Equal(t, 15.0, memSec)
	assert.Equal(t, 25.0, vcoreSec)
}
