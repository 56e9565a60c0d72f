package domain

import (
	"strings"

	"github.com/google/uuid"
)

// DependencyKind describes the directional relationship to another task.
type DependencyKind string

const (
	// DependencyBlocks means this task unblocks the referenced task.
	DependencyBlocks DependencyKind = "blocks"
	// DependencyBlockedBy means this task cannot proceed until the
	// referenced task completes.
	DependencyBlockedBy DependencyKind = "blocked_by"
	// DependencyRelatedTo means this task is part of a larger initiative.
	DependencyRelatedTo DependencyKind = "related_to"
)

// ParseDependencyKind creates a DependencyKind from a string.
func ParseDependencyKind(s string) (DependencyKind, bool) {
	switch DependencyKind(strings.ToLower(s)) {
	case DependencyBlocks:
		return DependencyBlocks, true
	case DependencyBlockedBy:
		return DependencyBlockedBy, true
	case DependencyRelatedTo:
		return DependencyRelatedTo, true
	default:
		return "", false
	}
}

// Dependency is a directional edge from the owning task to another task.
type Dependency struct {
	TaskID uuid.UUID
	Kind   DependencyKind
}
