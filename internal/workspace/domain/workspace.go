package domain

import (
	"errors"
	"time"
)

// Workspace is the unit within which plans and tasks are scoped. Personal
// workspaces have no owning organization; organization workspaces always do.
type Workspace struct {
	ID        string
	Name      string
	Type      WorkspaceType
	OrgID     string // empty for personal workspaces
	IsDefault bool   // exactly one default per organization
	CreatedAt time.Time
}

type WorkspaceType string

const (
	WorkspaceTypePersonal     WorkspaceType = "personal"
	WorkspaceTypeOrganization WorkspaceType = "organization"
)

// Validate validates the workspace for persistence. Returns an error describing the first validation failure.
func (w *Workspace) Validate() error {
	if w.Name == "" {
		return errors.New("name is required")
	}
	switch w.Type {
	case WorkspaceTypePersonal:
		if w.OrgID != "" {
			return errors.New("personal workspace must not have an organization")
		}
	case WorkspaceTypeOrganization:
		if w.OrgID == "" {
			return errors.New("organization workspace requires an organization")
		}
	default:
		return errors.New("invalid workspace type")
	}
	return nil
}
