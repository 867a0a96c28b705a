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
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"

	"github.com/koordinator-sh/rmcontainer/pkg/rmcontainer"
)

// LoggingHistoryWriter records container lifecycle milestones as structured
// log lines instead of persisting them to a timeline store.
type LoggingHistoryWriter struct {
	log logr.Logger
}

// NewLoggingHistoryWriter wraps a zap.Logger as a logr.Logger via zapr.
func NewLoggingHistoryWriter(zl *zap.Logger) *LoggingHistoryWriter {
	return &LoggingHistoryWriter{log: zapr.NewLogger(zl).WithName("container-history")}
}

func (w *LoggingHistoryWriter) ContainerStarted(summary rmcontainer.ContainerSummary) {
	w.log.Info("container started",
		"containerID", summary.ContainerID,
		"appAttemptID", summary.AppAttemptID,
		"nodeID", summary.NodeID,
		"state", string(summary.State),
	)
}

func (w *LoggingHistoryWriter) ContainerFinished(summary rmcontainer.ContainerSummary) {
	w.log.Info("container finished",
		"containerID", summary.ContainerID,
		"appAttemptID", summary.AppAttemptID,
		"nodeID", summary.NodeID,
		"state", string(summary.State),
	)
}
