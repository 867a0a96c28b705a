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

package config

import "time"

const (
	DefaultPRNumber             int32 = 2
	DefaultLogURLScheme               = "http://"
	DefaultAllocationExpiry           = 10 * time.Minute
	DefaultEventSinkBufferSize        = 1024
)

// Configuration groups the knobs a container store needs at construction:
// the per-container preemption/resume granularity multiplier, the scheme
// used to build log URLs, the allocation timeout, and the event sink's
// channel buffer size.
type Configuration struct {
	PRNumber            int32
	LogURLScheme        string
	AllocationExpiry    time.Duration
	EventSinkBufferSize int
}

// NewConfiguration returns a Configuration populated with defaults.
func NewConfiguration() *Configuration {
	return &Configuration{
		PRNumber:            DefaultPRNumber,
		LogURLScheme:        DefaultLogURLScheme,
		AllocationExpiry:    DefaultAllocationExpiry,
		EventSinkBufferSize: DefaultEventSinkBufferSize,
	}
}
