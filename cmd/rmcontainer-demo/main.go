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

package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"k8s.io/klog/v2"

	"github.com/koordinator-sh/rmcontainer/internal/ids"
	"github.com/koordinator-sh/rmcontainer/pkg/rmcontainer"
	"github.com/koordinator-sh/rmcontainer/pkg/rmcontainer/collab"
	"github.com/koordinator-sh/rmcontainer/pkg/rmcontainer/config"
	"github.com/koordinator-sh/rmcontainer/pkg/rmcontainer/store"
)

func main() {
	cfg := config.NewConfiguration()

	klog.InitFlags(nil)
	pflag.CommandLine.AddGoFlagSet(flag.CommandLine)
	pflag.Int32Var(&cfg.PRNumber, "pr-number", cfg.PRNumber, "suspend/resume granularity multiplier")
	pflag.StringVar(&cfg.LogURLScheme, "log-url-scheme", cfg.LogURLScheme, "scheme used to build container log URLs")
	pflag.DurationVar(&cfg.AllocationExpiry, "allocation-expiry", cfg.AllocationExpiry, "timeout before an unacquired allocation expires")
	pflag.IntVar(&cfg.EventSinkBufferSize, "event-sink-buffer", cfg.EventSinkBufferSize, "outbound event channel buffer size")
	pflag.Parse()

	pflag.VisitAll(func(f *pflag.Flag) {
		klog.V(2).Infof("args: %s = %s", f.Name, f.Value)
	})

	zl, err := zap.NewProduction()
	if err != nil {
		klog.Fatal(err)
	}
	defer zl.Sync()

	reg := prometheus.NewRegistry()
	sink := collab.NewFanoutEventSink(cfg.EventSinkBufferSize)
	sink.Subscribe(func(ev rmcontainer.OutboundEvent) {
		klog.Infof("outbound event: %s container=%s node=%s", ev.Type, ev.ContainerID, ev.NodeID)
	})
	stopCh := make(chan struct{})
	go sink.Run(stopCh)
	defer close(stopCh)

	history := collab.NewLoggingHistoryWriter(zl)
	metrics := collab.NewPrometheusMetricsPublisher(reg)
	st := store.New(cfg, sink, history, metrics)

	if err := runDemo(st); err != nil {
		klog.Fatal(err)
	}
}

// runDemo walks one container through a representative lifecycle: an
// allocation that is acquired and launched, preempted by a SUSPEND, resumed,
// and finally finished. It exists to exercise the store and the FSM end to
// end without a real scheduler or node manager behind it.
func runDemo(st *store.Store) error {
	attemptID, err := ids.NewOpaqueID()
	if err != nil {
		return fmt.Errorf("generate attempt id: %w", err)
	}
	containerID := ids.NewContainerID(attemptID, 1)

	c := st.Create(rmcontainer.NewContainerParams{
		ContainerID:       containerID,
		AppAttemptID:      attemptID,
		NodeID:            "node-1.example.com:45454",
		User:              "demo",
		CreationTime:      time.Now().UnixMilli(),
		AllocatedResource: rmcontainer.NewResource(4096, 4),
	})

	steps := []struct {
		event   rmcontainer.Event
		payload rmcontainer.EventPayload
	}{
		{rmcontainer.EventStart, rmcontainer.EventPayload{}},
		{rmcontainer.EventAcquired, rmcontainer.EventPayload{}},
		{rmcontainer.EventLaunched, rmcontainer.EventPayload{}},
	}
	for _, step := range steps {
		if err := c.Handle(step.event, step.payload); err != nil {
			return err
		}
	}

	c.AddPreemptedResource(rmcontainer.NewResource(2048, 2))
	if err := c.Handle(rmcontainer.EventSuspend, rmcontainer.EventPayload{
		Status: &rmcontainer.ContainerStatus{ExitStatus: rmcontainer.ExitStatusPreempted, State: rmcontainer.NMContainerStateRunning},
	}); err != nil {
		return err
	}

	c.AddResumedResource(rmcontainer.NewResource(2048, 2))
	if err := c.Handle(rmcontainer.EventResume, rmcontainer.EventPayload{}); err != nil {
		return err
	}

	if err := c.Handle(rmcontainer.EventFinished, rmcontainer.EventPayload{
		Status: &rmcontainer.ContainerStatus{ExitStatus: 0, State: rmcontainer.NMContainerStateComplete},
	}); err != nil {
		return err
	}

	report := c.CreateContainerReport()
	klog.Infof("final report: %+v", report)
	klog.Infof("utilization: %.4f", c.GetUtilization())

	if c.GetState().IsTerminal() {
		st.Purge(containerID)
	}
	if st.Len() != 0 {
		return fmt.Errorf("expected store to be empty after purge, got %d", st.Len())
	}

	os.Stdout.WriteString("demo complete\n")
	return nil
}
