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

package rmcontainer

// Resource is a memory/vcore pair, the unit the FSM accounts preemption and
// allocation deltas in.
type Resource struct {
	MemoryMB int64
	VCores   int32
}

// NewResource builds a Resource from raw memory (MB) and vcore values.
func NewResource(memoryMB int64, vcores int32) Resource {
	return Resource{MemoryMB: memoryMB, VCores: vcores}
}

// IsZero reports whether both components are zero.
func (r Resource) IsZero() bool {
	return r.MemoryMB == 0 && r.VCores == 0
}

// Equal compares both components.
func (r Resource) Equal(other Resource) bool {
	return r.MemoryMB == other.MemoryMB && r.VCores == other.VCores
}

// Add returns the component-wise sum of r and other.
func (r Resource) Add(other Resource) Resource {
	return Resource{
		MemoryMB: r.MemoryMB + other.MemoryMB,
		VCores:   r.VCores + other.VCores,
	}
}

// Subtract returns the component-wise difference of r and other, clamped at
// zero per component, so a misordered resume can never drive preempted
// negative.
func (r Resource) Subtract(other Resource) Resource {
	res := Resource{
		MemoryMB: r.MemoryMB - other.MemoryMB,
		VCores:   r.VCores - other.VCores,
	}
	if res.MemoryMB < 0 {
		res.MemoryMB = 0
	}
	if res.VCores < 0 {
		res.VCores = 0
	}
	return res
}

// Multiply scales both components by factor.
func (r Resource) Multiply(factor int32) Resource {
	return Resource{
		MemoryMB: r.MemoryMB * int64(factor),
		VCores:   r.VCores * factor,
	}
}

// LessEqual reports whether r is component-wise less than or equal to other.
func (r Resource) LessEqual(other Resource) bool {
	return r.MemoryMB <= other.MemoryMB && r.VCores <= other.VCores
}
