// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

var ErrUnknownTaskType = errors.New("task type not in activity registry")

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes and validates a registry document.
func Parse(data []byte) (*ActivityRegistry, error) {
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("decode activity registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return &reg, nil
}

// Validate checks every activity names a task type exactly once.
func (r *ActivityRegistry) Validate() error {
	seen := make(map[string]bool, len(r.Activities))
	for i, a := range r.Activities {
		if a.TaskType == "" {
			return fmt.Errorf("activity %d: taskType is required", i)
		}
		if seen[a.TaskType] {
			return fmt.Errorf("activity %d: duplicate taskType %q", i, a.TaskType)
		}
		seen[a.TaskType] = true
	}
	return nil
}

func (r *ActivityRegistry) Find(taskType string) (*Activity, bool) {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i], true
		}
	}
	return nil, false
}

// Check returns an error wrapping ErrUnknownTaskType for the first task type
// that has no registry entry.
func (r *ActivityRegistry) Check(taskTypes ...string) error {
	for _, tt := range taskTypes {
		if _, ok := r.Find(tt); !ok {
			return fmt.Errorf("%w: %s", ErrUnknownTaskType, tt)
		}
	}
	return nil
}
