// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ac-dispatch-workers/internal/common/errors"
	"ac-dispatch-workers/internal/common/validation"
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &reg, nil
}

// Save writes the registry as indented JSON and stamps LastUpdated.
func Save(reg *ActivityRegistry, path string) error {
	reg.LastUpdated = time.Now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

func (r *ActivityRegistry) Find(id string) (*Activity, bool) {
	for i := range r.Activities {
		if r.Activities[i].ID == id {
			return &r.Activities[i], true
		}
	}
	return nil, false
}

// SetStatus changes an activity's implementation status.
func (r *ActivityRegistry) SetStatus(id, status string) error {
	if !validStatuses[status] {
		return fmt.Errorf("unknown implementation status %q", status)
	}
	a, ok := r.Find(id)
	if !ok {
		return fmt.Errorf("activity with ID %s not found", id)
	}
	a.ImplementationStatus = status
	return nil
}

// Validate checks every activity against the task types the worker manager
// serves and returns all problems found. served maps task type to the
// worker's own input schema.
func (r *ActivityRegistry) Validate(served map[string]string) []error {
	var problems []error
	if len(r.Activities) == 0 {
		return append(problems, fmt.Errorf("registry contains no activities"))
	}

	ids := make(map[string]bool, len(r.Activities))
	for _, a := range r.Activities {
		if a.ID == "" {
			problems = append(problems, fmt.Errorf("activity missing required field: id"))
			continue
		}
		if ids[a.ID] {
			problems = append(problems, fmt.Errorf("duplicate activity ID: %s", a.ID))
		}
		ids[a.ID] = true

		if a.DisplayName == "" {
			problems = append(problems, fmt.Errorf("activity %s missing required field: displayName", a.ID))
		}
		if a.Category == "" {
			problems = append(problems, fmt.Errorf("activity %s missing required field: category", a.ID))
		}
		if err := validation.ValidateTaskType(a.TaskType); err != nil {
			problems = append(problems, fmt.Errorf("activity %s: %w", a.ID, err))
		} else if _, ok := served[a.TaskType]; !ok {
			problems = append(problems, fmt.Errorf("activity %s: no worker serves task type %q", a.ID, a.TaskType))
		}
		if a.ImplementationStatus != "" && !validStatuses[a.ImplementationStatus] {
			problems = append(problems, fmt.Errorf("activity %s: unknown implementation status %q", a.ID, a.ImplementationStatus))
		}
		for _, code := range a.ErrorCodes {
			if !errors.IsKnownCode(errors.ErrorCode(code)) {
				problems = append(problems, fmt.Errorf("activity %s: unknown error code %s", a.ID, code))
			}
		}
		if err := compileSchema(a.InputSchema); err != nil {
			problems = append(problems, fmt.Errorf("activity %s: inputSchema: %w", a.ID, err))
		}
	}

	for taskType, schema := range served {
		if _, err := validation.Compile(schema); err != nil {
			problems = append(problems, fmt.Errorf("worker %s: input schema: %w", taskType, err))
		}
	}
	return problems
}

func compileSchema(schema map[string]interface{}) error {
	if len(schema) == 0 {
		return nil
	}
	data, err := json.Marshal(schema)
	if err != nil {
		return err
	}
	_, err = validation.Compile(string(data))
	return err
}
