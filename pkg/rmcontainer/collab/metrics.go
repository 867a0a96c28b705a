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
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/koordinator-sh/rmcontainer/pkg/rmcontainer"
)

var (
	containersCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rmcontainer_containers_created_total",
			Help: "total number of containers created, by node",
		},
		[]string{"node"},
	)
	containersFinishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rmcontainer_containers_finished_total",
			Help: "total number of containers finished, by node and exit status",
		},
		[]string{"node", "exit_status"},
	)
	memorySecondsHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rmcontainer_memory_mb_seconds",
			Help:    "memory-seconds actually used over a finished container's lifetime, by node",
			Buckets: prometheus.ExponentialBuckets(1, 8, 8),
		},
		[]string{"node"},
	)
	vcoreSecondsHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rmcontainer_vcore_seconds",
			Help:    "vcore-seconds actually used over a finished container's lifetime, by node",
			Buckets: prometheus.ExponentialBuckets(1, 8, 8),
		},
		[]string{"node"},
	)
)

// PrometheusMetricsPublisher implements MetricsPublisher on top of two
// CounterVecs and two HistogramVecs registered against a
// prometheus.Registerer. Unlike yarn_collector.go's pull-style
// Describe/Collect pair over a polled node cache, these are push-driven
// straight from FSM transitions, so there is no periodic snapshot to pull
// from; see DESIGN.md for why that deviation is deliberate.
type PrometheusMetricsPublisher struct{}

// NewPrometheusMetricsPublisher registers the container lifecycle counters
// and histograms against reg and returns a publisher backed by them.
func NewPrometheusMetricsPublisher(reg prometheus.Registerer) *PrometheusMetricsPublisher {
	reg.MustRegister(containersCreatedTotal, containersFinishedTotal, memorySecondsHistogram, vcoreSecondsHistogram)
	return &PrometheusMetricsPublisher{}
}

func (p *PrometheusMetricsPublisher) ContainerCreated(summary rmcontainer.ContainerSummary, _ int64) {
	containersCreatedTotal.WithLabelValues(summary.NodeID).Inc()
}

func (p *PrometheusMetricsPublisher) ContainerFinished(summary rmcontainer.ContainerSummary, _ int64, exitStatus int32, memorySeconds, vcoreSeconds float64) {
	containersFinishedTotal.WithLabelValues(summary.NodeID, strconv.Itoa(int(exitStatus))).Inc()
	memorySecondsHistogram.WithLabelValues(summary.NodeID).Observe(memorySeconds)
	vcoreSecondsHistogram.WithLabelValues(summary.NodeID).Observe(vcoreSeconds)
}
