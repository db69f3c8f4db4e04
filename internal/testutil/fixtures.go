// Package testutil provides in-memory stand-ins for the store, the search
// index and the task queue, used by tests and by stub mode.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"

	"github.com/finops-claw-gang/holdingpen/internal/domain"
)

// FixturesDir returns the absolute path to the bundled fixtures directory.
func FixturesDir() string {
	_, filename, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(filename), "fixtures")
}

// LoadObjects reads workflow_objects.json from dir.
func LoadObjects(dir string) ([]*domain.WorkflowObject, error) {
	data, err := os.ReadFile(filepath.Join(dir, "workflow_objects.json"))
	if err != nil {
		return nil, err
	}
	var objs []*domain.WorkflowObject
	if err := json.Unmarshal(data, &objs); err != nil {
		return nil, err
	}
	return objs, nil
}
