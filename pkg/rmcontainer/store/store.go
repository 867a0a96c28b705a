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

package store

import (
	"sync"

	"k8s.io/klog/v2"

	"github.com/koordinator-sh/rmcontainer/pkg/rmcontainer"
	"github.com/koordinator-sh/rmcontainer/pkg/rmcontainer/collab"
	"github.com/koordinator-sh/rmcontainer/pkg/rmcontainer/config"
)

// Store is the central, process-wide registry of live containers. It owns
// the shared collaborators (event sink, allocation expirer, history writer,
// metrics publisher, app registry) and hands borrowed references to each
// Container it creates, exactly the way a Nodes cache hands out read-only
// views over a mutex-guarded map.
type Store struct {
	cfg *config.Configuration

	sink             *collab.FanoutEventSink
	expirer          *collab.TimerAllocationExpirer
	history          *collab.LoggingHistoryWriter
	metricsPublisher rmcontainer.MetricsPublisher
	registry         *collab.InMemoryAppRegistry

	mtx        sync.RWMutex
	containers map[string]*rmcontainer.Container
}

// New builds a Store with the given configuration and collaborators. The
// metrics publisher is accepted as an interface because its concrete type
// (Prometheus-backed) requires a registerer the caller already owns.
func New(cfg *config.Configuration, sink *collab.FanoutEventSink, history *collab.LoggingHistoryWriter, metrics rmcontainer.MetricsPublisher) *Store {
	s := &Store{
		cfg:              cfg,
		sink:             sink,
		history:          history,
		metricsPublisher: metrics,
		registry:         collab.NewInMemoryAppRegistry(),
		containers:       map[string]*rmcontainer.Container{},
	}
	s.expirer = collab.NewTimerAllocationExpirer(cfg.AllocationExpiry, s.lookup)
	return s
}

func (s *Store) lookup(containerID string) (collab.ContainerHandle, bool) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	c, ok := s.containers[containerID]
	return c, ok
}

// Create registers a new container in state NEW, wiring it to the store's
// shared collaborators, and returns the live handle.
func (s *Store) Create(p rmcontainer.NewContainerParams) *rmcontainer.Container {
	p.EventSink = s.sink
	p.AllocationExpirer = s.expirer
	p.HistoryWriter = s.history
	p.MetricsPublisher = s.metricsPublisher
	p.AppRegistry = s.registry
	if p.PRNumber <= 0 {
		p.PRNumber = s.cfg.PRNumber
	}
	if p.LogURLScheme == "" {
		p.LogURLScheme = s.cfg.LogURLScheme
	}

	c := rmcontainer.NewContainer(p)

	s.mtx.Lock()
	s.containers[p.ContainerID] = c
	s.mtx.Unlock()

	klog.V(4).Infof("store: registered container %s", p.ContainerID)
	return c
}

// Get returns the container registered under containerID, if any.
func (s *Store) Get(containerID string) (*rmcontainer.Container, bool) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	c, ok := s.containers[containerID]
	return c, ok
}

// Purge removes a terminal container from the store. Callers are expected
// to check GetState().IsTerminal() first; Purge does not re-check.
func (s *Store) Purge(containerID string) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	delete(s.containers, containerID)
}

// Len returns the number of containers currently tracked.
func (s *Store) Len() int {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return len(s.containers)
}

// AppRegistry exposes the store's app registry so callers can snapshot
// per-attempt metrics without a second collaborator wiring path.
func (s *Store) AppRegistry() *collab.InMemoryAppRegistry {
	return s.registry
}
