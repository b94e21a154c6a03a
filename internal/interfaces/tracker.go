package interfaces

import (
	"context"

	"github.com/ternarybob/clipper/internal/models"
)

// TrackerClient talks to the issue tracker's GraphQL API
type TrackerClient interface {
	FetchTeams(ctx context.Context) ([]models.Team, error)
	FetchProjects(ctx context.Context, teamID string) ([]models.Project, error)
	FetchTeamDetails(ctx context.Context, teamID string) (*models.TeamDetails, error)
	CreateIssue(ctx context.Context, draft *models.DraftIssue) (*models.CreatedIssue, error)
}
