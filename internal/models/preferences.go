package models

import "time"

// Preferences represents the user's remembered clip form selections.
// The full record is written on every save; fields with no selection
// are stored as empty strings.
type Preferences struct {
	TeamID     string    `json:"team_id"`
	ProjectID  string    `json:"project_id"`
	StateID    string    `json:"state_id"`
	AssigneeID string    `json:"assignee_id"`
	LabelIDs   []string  `json:"label_ids"`
	Priority   int       `json:"priority"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewDefaultPreferences returns an empty preference set, used when no
// preferences have been saved yet.
func NewDefaultPreferences() *Preferences {
	return &Preferences{
		LabelIDs: []string{},
	}
}
