package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/clipper/internal/common"
	"github.com/ternarybob/clipper/internal/models"
)

// TokenSource supplies the bearer token for API requests. The
// authentication service implements this.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// Client talks to the tracker's GraphQL endpoint
type Client struct {
	graphqlURL string
	httpClient *http.Client
	tokens     TokenSource
	logger     arbor.ILogger
}

// NewClient creates a new tracker API client
func NewClient(config common.TrackerConfig, tokens TokenSource, logger arbor.ILogger) *Client {
	return &Client{
		graphqlURL: config.GraphQLURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tokens:     tokens,
		logger:     logger,
	}
}

// graphqlRequest is the POST body envelope
type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

// graphqlResponse is the response envelope. Data is decoded by the
// caller into an operation-specific shape.
type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// do executes a GraphQL operation and decodes the data payload into
// out. Failures map to the three error tiers: TransportError for HTTP
// failures, GraphQLError for envelope errors, and operation-specific
// errors raised by callers.
func (c *Client) do(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error {
	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return fmt.Errorf("failed to get access token: %w", err)
	}

	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.graphqlURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("tracker request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn().Int("status", resp.StatusCode).Msg("Tracker returned non-success status")
		return &TransportError{Status: resp.StatusCode, Body: string(respBody)}
	}

	var envelope graphqlResponse
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if len(envelope.Errors) > 0 {
		messages := make([]string, len(envelope.Errors))
		for i, e := range envelope.Errors {
			messages[i] = e.Message
		}
		return &GraphQLError{Messages: messages}
	}

	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("failed to decode data: %w", err)
		}
	}

	return nil
}

// FetchTeams returns all teams visible to the authorized user
func (c *Client) FetchTeams(ctx context.Context) ([]models.Team, error) {
	var data struct {
		Teams struct {
			Nodes []models.Team `json:"nodes"`
		} `json:"teams"`
	}
	if err := c.do(ctx, queryTeams, nil, &data); err != nil {
		return nil, err
	}
	return data.Teams.Nodes, nil
}

// FetchProjects returns the projects of a team
func (c *Client) FetchProjects(ctx context.Context, teamID string) ([]models.Project, error) {
	var data struct {
		Team struct {
			Projects struct {
				Nodes []models.Project `json:"nodes"`
			} `json:"projects"`
		} `json:"team"`
	}
	variables := map[string]interface{}{"teamId": teamID}
	if err := c.do(ctx, queryProjects, variables, &data); err != nil {
		return nil, err
	}
	return data.Team.Projects.Nodes, nil
}

// FetchTeamDetails returns the workflow states, members, and labels of
// a team in a single round trip.
func (c *Client) FetchTeamDetails(ctx context.Context, teamID string) (*models.TeamDetails, error) {
	var data struct {
		Team struct {
			States struct {
				Nodes []models.WorkflowState `json:"nodes"`
			} `json:"states"`
			Members struct {
				Nodes []models.Member `json:"nodes"`
			} `json:"members"`
			Labels struct {
				Nodes []models.Label `json:"nodes"`
			} `json:"labels"`
		} `json:"team"`
	}
	variables := map[string]interface{}{"teamId": teamID}
	if err := c.do(ctx, queryTeamDetails, variables, &data); err != nil {
		return nil, err
	}
	return &models.TeamDetails{
		States:  data.Team.States.Nodes,
		Members: data.Team.Members.Nodes,
		Labels:  data.Team.Labels.Nodes,
	}, nil
}
