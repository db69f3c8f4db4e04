package queues

import (
	"reflect"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finops-claw-gang/holdingpen/internal/temporal/activities"
	"github.com/finops-claw-gang/holdingpen/internal/temporal/versioning"
)

func TestDefaultConfigs(t *testing.T) {
	configs := DefaultConfigs()
	assert.Len(t, configs, 2)
	assert.Contains(t, configs, versioning.QueueTasks)
	assert.Contains(t, configs, versioning.QueueIndexer)

	// Indexer queue runs fewer activities at once.
	assert.Less(t,
		configs[versioning.QueueIndexer].Options.MaxConcurrentActivityExecutionSize,
		configs[versioning.QueueTasks].Options.MaxConcurrentActivityExecutionSize)
}

func TestParseQueues(t *testing.T) {
	both := []string{versioning.QueueTasks, versioning.QueueIndexer}
	tests := []struct {
		name    string
		raw     string
		want    []string
		wantErr string
	}{
		{"empty selects all", "", both, ""},
		{"short name tasks", "tasks", []string{versioning.QueueTasks}, ""},
		{"short name indexer", "indexer", []string{versioning.QueueIndexer}, ""},
		{"full name", "holdingpen-tasks", []string{versioning.QueueTasks}, ""},
		{"multiple", "indexer,tasks", []string{versioning.QueueIndexer, versioning.QueueTasks}, ""},
		{"deduplicate", "tasks,holdingpen-tasks", []string{versioning.QueueTasks}, ""},
		{"spaces trimmed", " tasks , indexer ", both, ""},
		{"only commas", ",,", both, ""},
		{"unknown queue", "bogus", nil, `unknown queue "bogus"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseQueues(tt.raw)
			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type recordingRegistrar struct {
	workflows  []string
	activities []any
}

func (r *recordingRegistrar) RegisterWorkflow(w any) {
	name := runtime.FuncForPC(reflect.ValueOf(w).Pointer()).Name()
	r.workflows = append(r.workflows, name[strings.LastIndex(name, ".")+1:])
}

func (r *recordingRegistrar) RegisterActivity(a any) {
	r.activities = append(r.activities, a)
}

func TestRegister(t *testing.T) {
	acts := &activities.Activities{}
	r := &recordingRegistrar{}
	Register(r, acts)

	assert.Equal(t, []string{"ResumeObjectWorkflow", "BulkActionWorkflow", "ReindexBatchWorkflow"}, r.workflows)
	require.Len(t, r.activities, 1)
	assert.Same(t, acts, r.activities[0])
}

func TestNewWorkers_UnknownQueue(t *testing.T) {
	_, err := NewWorkers(nil, []string{"bogus"}, &activities.Activities{})
	require.EqualError(t, err, `unknown queue "bogus"`)
}
