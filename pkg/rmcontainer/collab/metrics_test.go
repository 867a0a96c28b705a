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

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koordinator-sh/rmcontainer/pkg/rmcontainer"
)

func TestPrometheusMetricsPublisherIncrementsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheusMetricsPublisher(reg)

	summary := rmcontainer.ContainerSummary{NodeID: "node1", State: rmcontainer.StateCompleted}
	p.ContainerCreated(summary, 0)
	p.ContainerFinished(summary, 0, 137, 512, 2)

	families, err := reg.Gather()
	require.NoError(t, err)

	var sawCreated, sawFinished, sawMemorySeconds, sawVcoreSeconds bool
	for _, f := range families {
		switch f.GetName() {
		case "rmcontainer_containers_created_total":
			sawCreated = true
			assert.Equal(t, 1.0, sumCounters(f))
		case "rmcontainer_containers_finished_total":
			sawFinished = true
			assert.Equal(t, 1.0, sumCounters(f))
			require.Len(t, f.GetMetric(), 1)
			assert.Equal(t, "exit_status", f.GetMetric()[0].GetLabel()[0].GetName())
			assert.Equal(t, "137", f.GetMetric()[0].GetLabel()[0].GetValue())
		case "rmcontainer_memory_mb_seconds":
			sawMemorySeconds = true
			assert.EqualValues(t, 1, f.GetMetric()[0].GetHistogram().GetSampleCount())
		case "rmcontainer_vcore_seconds":
			sawVcoreSeconds = true
			assert.EqualValues(t, 1, f.GetMetric()[0].GetHistogram().GetSampleCount())
		}
	}
	assert.True(t, sawCreated)
	assert.True(t, sawFinished)
	assert.True(t, sawMemorySeconds)
	assert.True(t, sawVcoreSeconds)
}

func sumCounters(f *dto.MetricFamily) float64 {
	var total float64
	for _, m := range f.GetMetric() {
		total += m.GetCounter().GetValue()
	}
	return total
}
