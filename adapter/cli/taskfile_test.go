package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/taskpilot/internal/scoring/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTaskFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tasks.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTasks(t *testing.T) {
	taskID := uuid.New()
	depID := uuid.New()
	path := writeTaskFile(t, `{
		"tasks": [
			{
				"id": "`+taskID.String()+`",
				"title": "Ship release",
				"priority": "high",
				"estimated_time": "4h",
				"impact_hint": "critical",
				"analysis": "Hard - cross-team coordination",
				"dependencies": [
					{"task_id": "`+depID.String()+`", "kind": "blocked_by"}
				]
			},
			{
				"id": "`+depID.String()+`",
				"title": "Fix the flaky test",
				"completed": true
			}
		]
	}`)

	userID := uuid.New()
	tasks, err := loadTasks(path, userID)
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	task := tasks[0]
	assert.Equal(t, taskID, task.ID())
	assert.Equal(t, userID, task.UserID())
	assert.Equal(t, "Ship release", task.Title())
	assert.Equal(t, domain.PriorityHigh, task.Priority())
	assert.Equal(t, "4h", task.Estimate())
	assert.Equal(t, domain.ImpactHintCritical, task.ImpactHint())
	require.Len(t, task.Dependencies(), 1)
	assert.Equal(t, domain.DependencyBlockedBy, task.Dependencies()[0].Kind)

	assert.True(t, tasks[1].IsCompleted())
	assert.Equal(t, domain.PriorityMedium, tasks[1].Priority(), "missing priority defaults to medium")
}

func TestLoadTasks_InvalidKind(t *testing.T) {
	path := writeTaskFile(t, `{
		"tasks": [{
			"id": "`+uuid.New().String()+`",
			"title": "Broken",
			"dependencies": [{"task_id": "`+uuid.New().String()+`", "kind": "depends"}]
		}]
	}`)

	_, err := loadTasks(path, uuid.New())
	require.Error(t, err)
}

func TestFindTask(t *testing.T) {
	userID := uuid.New()
	a, err := domain.NewTask(userID, "First")
	require.NoError(t, err)
	b, err := domain.NewTask(userID, "Second")
	require.NoError(t, err)
	tasks := []*domain.Task{a, b}

	found, err := findTask(tasks, a.ID().String())
	require.NoError(t, err)
	assert.Equal(t, a, found)

	found, err = findTask(tasks, b.ID().String()[:8])
	require.NoError(t, err)
	assert.Equal(t, b, found)

	_, err = findTask(tasks, uuid.New().String())
	require.Error(t, err)
}

func TestFindTask_ArgLongerThanID(t *testing.T) {
	task, err := domain.NewTask(uuid.New(), "Only")
	require.NoError(t, err)
	tasks := []*domain.Task{task}

	// An id argument longer than a uuid must fail cleanly, not crash.
	require.NotPanics(t, func() {
		_, err = findTask(tasks, "not-a-uuid-but-longer-than-thirty-six-chars")
	})
	require.Error(t, err)

	_, err = findTask(tasks, task.ID().String()+"-extra")
	require.Error(t, err)
}
