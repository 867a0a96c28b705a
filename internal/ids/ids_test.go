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

package ids

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContainerIDFormatsAttemptAndSequence(t *testing.T) {
	assert.Equal(t, "container_appattempt_app_1_000042", NewContainerID("appattempt_app_1", 42))
}

func TestNewOpaqueIDReturnsDistinctValues(t *testing.T) {
	a, err := NewOpaqueID()
	require.NoError(t, err)
	b, err := NewOpaqueID()
	require.NoError(t, err)

	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
