package tracker

import (
	"context"

	"github.com/ternarybob/clipper/internal/models"
)

// CreateIssue submits a draft issue to the tracker. Optional fields
// are omitted from the mutation input entirely when unset so the
// tracker applies its own defaults.
func (c *Client) CreateIssue(ctx context.Context, draft *models.DraftIssue) (*models.CreatedIssue, error) {
	input := map[string]interface{}{
		"title":       draft.Title,
		"description": draft.Description,
		"teamId":      draft.TeamID,
		"priority":    draft.Priority,
	}
	if draft.ProjectID != "" {
		input["projectId"] = draft.ProjectID
	}
	if draft.StateID != "" {
		input["stateId"] = draft.StateID
	}
	if draft.AssigneeID != "" {
		input["assigneeId"] = draft.AssigneeID
	}
	if len(draft.LabelIDs) > 0 {
		input["labelIds"] = draft.LabelIDs
	}

	var data struct {
		IssueCreate struct {
			Success bool                `json:"success"`
			Issue   models.CreatedIssue `json:"issue"`
		} `json:"issueCreate"`
	}
	variables := map[string]interface{}{"input": input}
	if err := c.do(ctx, mutationCreateIssue, variables, &data); err != nil {
		return nil, err
	}

	if !data.IssueCreate.Success {
		return nil, &IssueCreationError{}
	}

	c.logger.Info().
		Str("identifier", data.IssueCreate.Issue.Identifier).
		Str("url", data.IssueCreate.Issue.URL).
		Msg("Issue created")

	return &data.IssueCreate.Issue, nil
}
