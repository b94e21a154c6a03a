package models

// Workflow state type constants as reported by the tracker API
const (
	StateTypeBacklog   = "backlog"
	StateTypeUnstarted = "unstarted"
	StateTypeStarted   = "started"
	StateTypeCompleted = "completed"
	StateTypeCanceled  = "canceled"
)

// Team represents a tracker team
type Team struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Key  string `json:"key"`
}

// Project represents a tracker project within a team
type Project struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// WorkflowState represents an issue workflow state within a team
type WorkflowState struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Position float64 `json:"position"`
}

// Member represents a team member who can be assigned issues
type Member struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

// Display returns the member's preferred display name, falling back to
// the account name when no display name is set.
func (m Member) Display() string {
	if m.DisplayName != "" {
		return m.DisplayName
	}
	return m.Name
}

// Label represents an issue label within a team
type Label struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// TeamDetails bundles the per-team option lists needed to populate the
// clip form for a selected team.
type TeamDetails struct {
	States  []WorkflowState `json:"states"`
	Members []Member        `json:"members"`
	Labels  []Label         `json:"labels"`
}

// DraftIssue represents a pending issue submission from the clip form
type DraftIssue struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description"`
	TeamID      string   `json:"team_id" validate:"required"`
	ProjectID   string   `json:"project_id"`
	StateID     string   `json:"state_id"`
	AssigneeID  string   `json:"assignee_id"`
	LabelIDs    []string `json:"label_ids"`
	Priority    int      `json:"priority" validate:"gte=0,lte=4"`
}

// CreatedIssue represents an issue the tracker confirmed it created
type CreatedIssue struct {
	ID         string `json:"id"`
	Identifier string `json:"identifier"`
	URL        string `json:"url"`
	Title      string `json:"title"`
}
