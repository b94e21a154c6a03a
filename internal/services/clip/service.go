package clip

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/clipper/internal/interfaces"
	"github.com/ternarybob/clipper/internal/models"
)

// Service drives the clip form session: authentication state, team
// option loading, and issue submission.
type Service struct {
	auth     interfaces.Authenticator
	tracker  interfaces.TrackerClient
	prefs    interfaces.PreferenceStorage
	validate *validator.Validate
	logger   arbor.ILogger
	session  *session
}

// SubmitRequest carries the clip form values for issue creation
type SubmitRequest struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	URL        string   `json:"url"`
	TeamID     string   `json:"team_id"`
	ProjectID  string   `json:"project_id"`
	StateID    string   `json:"state_id"`
	AssigneeID string   `json:"assignee_id"`
	LabelIDs   []string `json:"label_ids"`
	Priority   int      `json:"priority"`
}

// NewService creates a new clip session service
func NewService(auth interfaces.Authenticator, tracker interfaces.TrackerClient, prefs interfaces.PreferenceStorage, logger arbor.ILogger) *Service {
	return &Service{
		auth:     auth,
		tracker:  tracker,
		prefs:    prefs,
		validate: validator.New(),
		logger:   logger,
		session:  newSession(),
	}
}

// Status returns a snapshot of the current session
func (s *Service) Status() *Snapshot {
	return s.session.snapshot()
}

// Connect runs the interactive authorization flow and, on success,
// loads the form data.
func (s *Service) Connect(ctx context.Context) error {
	s.setState(StateAuthenticating)

	if _, err := s.auth.Authenticate(ctx); err != nil {
		s.setState(StateUnauthenticated)
		return err
	}

	return s.Load(ctx)
}

// Load populates the session from the tracker: teams first, then the
// option lists for the restored or first team. Saved preferences are
// applied on this initial load only.
func (s *Service) Load(ctx context.Context) error {
	if !s.auth.IsAuthenticated() {
		s.session.reset()
		return fmt.Errorf("cannot load clip form: not authenticated")
	}

	s.setState(StateLoading)

	prefs, err := s.prefs.GetPreferences()
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to load preferences, starting fresh")
		prefs = models.NewDefaultPreferences()
	}

	teams, err := s.tracker.FetchTeams(ctx)

	s.session.mu.Lock()
	if err != nil {
		s.session.teams = nil
		s.session.teamsStatus = ListStatusError
		s.session.state = StateReady
		s.session.mu.Unlock()
		s.logger.Warn().Err(err).Msg("Failed to fetch teams")
		return nil
	}

	s.session.teams = teams
	s.session.teamsStatus = ListStatusOK

	teamID := pickTeam(teams, prefs.TeamID)
	s.session.selectedTeam = teamID
	s.session.selection.Priority = prefs.Priority
	s.session.mu.Unlock()

	if teamID != "" {
		s.loadTeamOptions(ctx, teamID, prefs)
	}

	s.setState(StateReady)
	return nil
}

// SelectTeam switches the form to another team and reloads its option
// lists. Saved preferences are not reapplied on a manual switch; the
// selections fall back to the team's defaults.
func (s *Service) SelectTeam(ctx context.Context, teamID string) error {
	s.session.mu.Lock()
	found := false
	for _, team := range s.session.teams {
		if team.ID == teamID {
			found = true
			break
		}
	}
	if !found {
		s.session.mu.Unlock()
		return fmt.Errorf("unknown team: %s", teamID)
	}

	s.session.selectedTeam = teamID
	s.session.selection = Selection{Priority: s.session.selection.Priority}
	s.session.mu.Unlock()

	s.loadTeamOptions(ctx, teamID, nil)
	return nil
}

// Submit validates the draft, creates the issue, and saves the form
// selections as the new preferences. Preferences are written only
// after the tracker confirms creation.
func (s *Service) Submit(ctx context.Context, req *SubmitRequest) (*models.CreatedIssue, error) {
	s.setState(StateSubmitting)
	defer s.setState(StateReady)

	draft := &models.DraftIssue{
		Title:       strings.TrimSpace(req.Title),
		Description: buildDescription(req.Content, req.URL),
		TeamID:      req.TeamID,
		ProjectID:   req.ProjectID,
		StateID:     req.StateID,
		AssigneeID:  req.AssigneeID,
		LabelIDs:    req.LabelIDs,
		Priority:    req.Priority,
	}

	if err := s.validate.Struct(draft); err != nil {
		return nil, fmt.Errorf("invalid draft: %w", err)
	}

	issue, err := s.tracker.CreateIssue(ctx, draft)
	if err != nil {
		return nil, err
	}

	prefs := &models.Preferences{
		TeamID:     req.TeamID,
		ProjectID:  req.ProjectID,
		StateID:    req.StateID,
		AssigneeID: req.AssigneeID,
		LabelIDs:   req.LabelIDs,
		Priority:   req.Priority,
	}
	if err := s.prefs.SavePreferences(prefs); err != nil {
		// The issue exists; a preference write failure is not worth
		// surfacing as a submission error
		s.logger.Warn().Err(err).Msg("Failed to save preferences after submission")
	}

	s.session.mu.Lock()
	s.session.selection = Selection{
		ProjectID:  req.ProjectID,
		StateID:    req.StateID,
		AssigneeID: req.AssigneeID,
		LabelIDs:   req.LabelIDs,
		Priority:   req.Priority,
	}
	s.session.mu.Unlock()

	return issue, nil
}

// Logout ends the tracker session and resets the form
func (s *Service) Logout() error {
	if err := s.auth.Logout(); err != nil {
		return err
	}
	s.session.reset()
	return nil
}

func (s *Service) setState(state State) {
	s.session.mu.Lock()
	s.session.state = state
	s.session.mu.Unlock()
}

// loadTeamOptions fetches the projects and team details concurrently.
// Results are tagged with the team they were requested for and
// discarded when the selected team changed while the fetch was in
// flight.
func (s *Service) loadTeamOptions(ctx context.Context, teamID string, prefs *models.Preferences) {
	s.session.mu.Lock()
	s.session.projects = nil
	s.session.projectsStatus = ListStatusLoading
	s.session.details = nil
	s.session.detailsStatus = ListStatusLoading
	s.session.mu.Unlock()

	var wg sync.WaitGroup
	var projects []models.Project
	var projectsErr error
	var details *models.TeamDetails
	var detailsErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		projects, projectsErr = s.tracker.FetchProjects(ctx, teamID)
	}()
	go func() {
		defer wg.Done()
		details, detailsErr = s.tracker.FetchTeamDetails(ctx, teamID)
	}()
	wg.Wait()

	s.session.mu.Lock()
	defer s.session.mu.Unlock()

	if s.session.selectedTeam != teamID {
		s.logger.Debug().Str("team_id", teamID).Str("selected", s.session.selectedTeam).Msg("Discarding stale option lists")
		return
	}

	if projectsErr != nil {
		s.session.projectsStatus = ListStatusError
		s.logger.Warn().Err(projectsErr).Str("team_id", teamID).Msg("Failed to fetch projects")
	} else {
		s.session.projects = projects
		s.session.projectsStatus = ListStatusOK
	}

	if detailsErr != nil {
		s.session.detailsStatus = ListStatusError
		s.logger.Warn().Err(detailsErr).Str("team_id", teamID).Msg("Failed to fetch team details")
	} else {
		sortStates(details.States)
		sortMembers(details.Members)
		s.session.details = details
		s.session.detailsStatus = ListStatusOK
	}

	s.applySelection(prefs)
}

// applySelection computes the form selections for the freshly loaded
// lists. Caller holds the session lock. A nil prefs means a manual
// team switch: defaults only, no restored selections.
func (s *Service) applySelection(prefs *models.Preferences) {
	var restored models.Preferences
	if prefs != nil {
		restored = *prefs
	}

	// Project: restored selection if still present, else the first
	// project, else none
	s.session.selection.ProjectID = ""
	if s.session.projectsStatus == ListStatusOK {
		if containsProject(s.session.projects, restored.ProjectID) {
			s.session.selection.ProjectID = restored.ProjectID
		} else if len(s.session.projects) > 0 {
			s.session.selection.ProjectID = s.session.projects[0].ID
		}
	}

	s.session.selection.StateID = ""
	s.session.selection.AssigneeID = ""
	s.session.selection.LabelIDs = nil

	if s.session.detailsStatus != ListStatusOK || s.session.details == nil {
		return
	}

	// State: restored selection if still present, else the default
	if containsState(s.session.details.States, restored.StateID) {
		s.session.selection.StateID = restored.StateID
	} else {
		s.session.selection.StateID = defaultStateID(s.session.details.States)
	}

	// Assignee: restored selection only, otherwise unassigned
	if containsMember(s.session.details.Members, restored.AssigneeID) {
		s.session.selection.AssigneeID = restored.AssigneeID
	}

	// Labels: restored selections that still exist
	available := make(map[string]bool, len(s.session.details.Labels))
	for _, label := range s.session.details.Labels {
		available[label.ID] = true
	}
	labelIDs := []string{}
	for _, id := range restored.LabelIDs {
		if available[id] {
			labelIDs = append(labelIDs, id)
		}
	}
	s.session.selection.LabelIDs = labelIDs
}

// defaultStateID picks the lowest-position unstarted state, falling
// back to the first state overall.
func defaultStateID(states []models.WorkflowState) string {
	var best *models.WorkflowState
	for i := range states {
		if states[i].Type != models.StateTypeUnstarted {
			continue
		}
		if best == nil || states[i].Position < best.Position {
			best = &states[i]
		}
	}
	if best != nil {
		return best.ID
	}
	if len(states) > 0 {
		return states[0].ID
	}
	return ""
}

// pickTeam restores the remembered team when it still exists,
// otherwise the first team.
func pickTeam(teams []models.Team, preferredID string) string {
	for _, team := range teams {
		if team.ID == preferredID {
			return team.ID
		}
	}
	if len(teams) > 0 {
		return teams[0].ID
	}
	return ""
}

// buildDescription appends the source attribution to the captured
// content.
func buildDescription(content, pageURL string) string {
	description := strings.TrimSpace(content)
	if pageURL != "" {
		if description != "" {
			description += "\n\n---\n\n"
		}
		description += "**Source:** " + pageURL
	}
	return description
}

func sortStates(states []models.WorkflowState) {
	sort.SliceStable(states, func(i, j int) bool {
		return states[i].Position < states[j].Position
	})
}

func sortMembers(members []models.Member) {
	sort.SliceStable(members, func(i, j int) bool {
		return strings.ToLower(members[i].Display()) < strings.ToLower(members[j].Display())
	})
}

func containsProject(projects []models.Project, id string) bool {
	if id == "" {
		return false
	}
	for _, p := range projects {
		if p.ID == id {
			return true
		}
	}
	return false
}

func containsState(states []models.WorkflowState, id string) bool {
	if id == "" {
		return false
	}
	for _, s := range states {
		if s.ID == id {
			return true
		}
	}
	return false
}

func containsMember(members []models.Member, id string) bool {
	if id == "" {
		return false
	}
	for _, m := range members {
		if m.ID == id {
			return true
		}
	}
	return false
}
