package clip

import (
	"sync"

	"github.com/ternarybob/clipper/internal/common"
	"github.com/ternarybob/clipper/internal/models"
)

// State is the clip session lifecycle state
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateAuthenticating  State = "authenticating"
	StateLoading         State = "loading"
	StateReady           State = "ready"
	StateSubmitting      State = "submitting"
)

// ListStatus tracks per-list load outcomes so one failed list does not
// take down the whole form.
type ListStatus string

const (
	ListStatusOK      ListStatus = "ok"
	ListStatusLoading ListStatus = "loading"
	ListStatusError   ListStatus = "error"
)

// Selection holds the current form selections for the selected team
type Selection struct {
	ProjectID  string   `json:"project_id"`
	StateID    string   `json:"state_id"`
	AssigneeID string   `json:"assignee_id"`
	LabelIDs   []string `json:"label_ids"`
	Priority   int      `json:"priority"`
}

// session is the mutable state behind the clip form. All access goes
// through the service, which holds the lock.
type session struct {
	mu sync.Mutex

	id    string
	state State

	teams       []models.Team
	teamsStatus ListStatus

	selectedTeam string

	projects       []models.Project
	projectsStatus ListStatus

	details       *models.TeamDetails
	detailsStatus ListStatus

	selection Selection
}

// Snapshot is a point-in-time copy of the session for API responses
type Snapshot struct {
	ID             string              `json:"id"`
	State          State               `json:"state"`
	Teams          []models.Team       `json:"teams"`
	TeamsStatus    ListStatus          `json:"teams_status"`
	SelectedTeam   string              `json:"selected_team"`
	Projects       []models.Project    `json:"projects"`
	ProjectsStatus ListStatus          `json:"projects_status"`
	Details        *models.TeamDetails `json:"details,omitempty"`
	DetailsStatus  ListStatus          `json:"details_status"`
	Selection      Selection           `json:"selection"`
}

func newSession() *session {
	return &session{
		id:             common.NewClipID(),
		state:          StateUnauthenticated,
		teamsStatus:    ListStatusLoading,
		projectsStatus: ListStatusLoading,
		detailsStatus:  ListStatusLoading,
	}
}

// snapshot copies the session under lock
func (s *session) snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := &Snapshot{
		ID:             s.id,
		State:          s.state,
		Teams:          append([]models.Team(nil), s.teams...),
		TeamsStatus:    s.teamsStatus,
		SelectedTeam:   s.selectedTeam,
		Projects:       append([]models.Project(nil), s.projects...),
		ProjectsStatus: s.projectsStatus,
		DetailsStatus:  s.detailsStatus,
		Selection:      s.selection,
	}
	if s.details != nil {
		details := *s.details
		snap.Details = &details
	}
	return snap
}

// reset returns the session to the unauthenticated state
func (s *session) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.id = common.NewClipID()
	s.state = StateUnauthenticated
	s.teams = nil
	s.teamsStatus = ListStatusLoading
	s.selectedTeam = ""
	s.projects = nil
	s.projectsStatus = ListStatusLoading
	s.details = nil
	s.detailsStatus = ListStatusLoading
	s.selection = Selection{}
}
