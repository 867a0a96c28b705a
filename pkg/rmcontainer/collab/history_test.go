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
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/koordinator-sh/rmcontainer/pkg/rmcontainer"
)

func TestLoggingHistoryWriterLogsStartedAndFinished(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	w := NewLoggingHistoryWriter(zap.New(core))

	summary := rmcontainer.ContainerSummary{ContainerID: "c1", NodeID: "n1", State: rmcontainer.StateRunning}
	w.ContainerStarted(summary)
	w.ContainerFinished(summary)

	entries := logs.All()
	assert.Len(t, entries, 2)
	assert.Equal(t, "container started", entries[0].Message)
	assert.Equal(t, "container finished", entries[1].Message)
}
