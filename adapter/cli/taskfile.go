package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/felixgeelhaar/taskpilot/internal/scoring/domain"
	"github.com/google/uuid"
)

// taskDTO is the JSON shape tasks arrive in. The scoring CLI does not own
// the task list; it reads the export produced by the task manager.
type taskDTO struct {
	ID           string     `json:"id"`
	ParentID     string     `json:"parent_id,omitempty"`
	Title        string     `json:"title"`
	Completed    bool       `json:"completed"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	Priority     string     `json:"priority,omitempty"`
	ImpactHint   string     `json:"impact_hint,omitempty"`
	EffortHint   string     `json:"effort_hint,omitempty"`
	Estimate     string     `json:"estimated_time,omitempty"`
	Analysis     string     `json:"analysis,omitempty"`
	Dependencies []depDTO   `json:"dependencies,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type depDTO struct {
	TaskID string `json:"task_id"`
	Kind   string `json:"kind"`
}

type taskFile struct {
	Tasks []taskDTO `json:"tasks"`
}

// loadTasks reads a task export file and rehydrates the domain tasks, all
// owned by userID.
func loadTasks(path string, userID uuid.UUID) ([]*domain.Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read task file: %w", err)
	}

	var file taskFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse task file: %w", err)
	}

	tasks := make([]*domain.Task, 0, len(file.Tasks))
	for i, dto := range file.Tasks {
		task, err := dto.toDomain(userID)
		if err != nil {
			return nil, fmt.Errorf("task %d: %w", i, err)
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func (d taskDTO) toDomain(userID uuid.UUID) (*domain.Task, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid id %q: %w", d.ID, err)
	}

	var parentID *uuid.UUID
	if d.ParentID != "" {
		pid, err := uuid.Parse(d.ParentID)
		if err != nil {
			return nil, fmt.Errorf("invalid parent_id %q: %w", d.ParentID, err)
		}
		parentID = &pid
	}

	priority := domain.PriorityMedium
	if d.Priority != "" {
		priority, err = domain.ParsePriority(d.Priority)
		if err != nil {
			return nil, err
		}
	}

	createdAt := d.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	updatedAt := d.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	task := domain.Rehydrate(id, userID, parentID, d.Title, d.Completed,
		d.DueDate, priority, createdAt, updatedAt)

	if d.Estimate != "" {
		task.SetEstimate(d.Estimate)
	}
	if d.Analysis != "" {
		task.SetAnalysis(d.Analysis)
	}
	if d.ImpactHint != "" {
		task.SetImpactHint(domain.ImpactHint(d.ImpactHint))
	}
	if d.EffortHint != "" {
		task.SetEffortHint(domain.EffortHint(d.EffortHint))
	}
	for _, dep := range d.Dependencies {
		targetID, err := uuid.Parse(dep.TaskID)
		if err != nil {
			return nil, fmt.Errorf("invalid dependency task_id %q: %w", dep.TaskID, err)
		}
		kind, ok := domain.ParseDependencyKind(dep.Kind)
		if !ok {
			return nil, fmt.Errorf("invalid dependency kind %q", dep.Kind)
		}
		task.AddDependency(domain.Dependency{TaskID: targetID, Kind: kind})
	}

	return task, nil
}

// findTask locates a task by id prefix or full uuid.
func findTask(tasks []*domain.Task, idArg string) (*domain.Task, error) {
	if id, err := uuid.Parse(idArg); err == nil {
		for _, t := range tasks {
			if t.ID() == id {
				return t, nil
			}
		}
		return nil, fmt.Errorf("task %s not found", idArg)
	}

	var match *domain.Task
	for _, t := range tasks {
		if len(idArg) >= 4 && strings.HasPrefix(t.ID().String(), idArg) {
			if match != nil {
				return nil, fmt.Errorf("task id prefix %q is ambiguous", idArg)
			}
			match = t
		}
	}
	if match == nil {
		return nil, fmt.Errorf("task %s not found", idArg)
	}
	return match, nil
}
