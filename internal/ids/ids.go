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

// Package ids generates the opaque identifiers used to name containers and
// application attempts in places where no caller-supplied id is available.
package ids

import (
	"fmt"

	"github.com/nu7hatch/gouuid"
)

// NewContainerID returns a container id of the form
// "container_<appAttemptID>_<sequence>", matching the Hadoop naming
// convention closely enough for logs and dashboards to read naturally.
func NewContainerID(appAttemptID string, sequence int64) string {
	return fmt.Sprintf("container_%s_%06d", appAttemptID, sequence)
}

// NewOpaqueID returns a random UUIDv4 string, used when no structured id is
// available (for example, synthetic attempt ids in tests and demos).
func NewOpaqueID() (string, error) {
	u, err := uuid.NewV4()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}
	return u.String(), nil
}
