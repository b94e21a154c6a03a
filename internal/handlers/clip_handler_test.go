package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/clipper/internal/models"
	"github.com/ternarybob/clipper/internal/services/clip"
	"github.com/ternarybob/clipper/internal/services/extractor"
	"github.com/ternarybob/clipper/internal/services/tracker"
)

type fakeAuth struct{ authed bool }

func (f *fakeAuth) Authenticate(ctx context.Context) (string, error) {
	f.authed = true
	return "token", nil
}

func (f *fakeAuth) AccessToken(ctx context.Context) (string, error) {
	if !f.authed {
		return "", errors.New("not authenticated")
	}
	return "token", nil
}

func (f *fakeAuth) IsAuthenticated() bool { return f.authed }

func (f *fakeAuth) Logout() error {
	f.authed = false
	return nil
}

type fakeTracker struct {
	teams     []models.Team
	created   *models.CreatedIssue
	createErr error
}

func (f *fakeTracker) FetchTeams(ctx context.Context) ([]models.Team, error) {
	return f.teams, nil
}

func (f *fakeTracker) FetchProjects(ctx context.Context, teamID string) ([]models.Project, error) {
	return nil, nil
}

func (f *fakeTracker) FetchTeamDetails(ctx context.Context, teamID string) (*models.TeamDetails, error) {
	return &models.TeamDetails{}, nil
}

func (f *fakeTracker) CreateIssue(ctx context.Context, draft *models.DraftIssue) (*models.CreatedIssue, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.created, nil
}

type fakeExtractor struct {
	content *models.PageContent
	err     error
}

func (f *fakeExtractor) Extract(ctx context.Context, req *models.ExtractRequest) (*models.PageContent, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.content, nil
}

type fakePrefs struct{ saved *models.Preferences }

func (f *fakePrefs) SavePreferences(prefs *models.Preferences) error {
	p := *prefs
	f.saved = &p
	return nil
}

func (f *fakePrefs) GetPreferences() (*models.Preferences, error) {
	if f.saved == nil {
		return models.NewDefaultPreferences(), nil
	}
	p := *f.saved
	return &p, nil
}

type handlerFixture struct {
	handler *ClipHandler
	auth    *fakeAuth
	trk     *fakeTracker
	ext     *fakeExtractor
	prefs   *fakePrefs
}

func newFixture() *handlerFixture {
	logger := arbor.NewLogger()
	auth := &fakeAuth{authed: true}
	trk := &fakeTracker{
		teams:   []models.Team{{ID: "t1", Name: "Platform"}},
		created: &models.CreatedIssue{ID: "i1", Identifier: "PLT-1", URL: "https://tracker.example/PLT-1", Title: "T"},
	}
	ext := &fakeExtractor{}
	prefs := &fakePrefs{}
	clipService := clip.NewService(auth, trk, prefs, logger)
	return &handlerFixture{
		handler: NewClipHandler(clipService, ext, auth, prefs, logger),
		auth:    auth,
		trk:     trk,
		ext:     ext,
		prefs:   prefs,
	}
}

func jsonBody(t *testing.T, v interface{}) *bytes.Buffer {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(data)
}

func TestStatusHandler(t *testing.T) {
	f := newFixture()
	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()

	f.handler.StatusHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["authenticated"])
	assert.NotNil(t, body["session"])
}

func TestTeamsHandlerRequiresAuth(t *testing.T) {
	f := newFixture()
	f.auth.authed = false

	req := httptest.NewRequest(http.MethodGet, "/api/teams", nil)
	rec := httptest.NewRecorder()
	f.handler.TeamsHandler(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTeamsHandlerLoadsSession(t *testing.T) {
	f := newFixture()
	req := httptest.NewRequest(http.MethodGet, "/api/teams", nil)
	rec := httptest.NewRecorder()

	f.handler.TeamsHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var snap clip.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, clip.StateReady, snap.State)
	require.Len(t, snap.Teams, 1)
	assert.Equal(t, "t1", snap.SelectedTeam)
}

func TestTeamOptionsHandlerParsesTeamID(t *testing.T) {
	f := newFixture()

	// Load first so the team list is known
	f.handler.TeamsHandler(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/teams", nil))

	req := httptest.NewRequest(http.MethodGet, "/api/teams/t1/options", nil)
	rec := httptest.NewRecorder()
	f.handler.TeamOptionsHandler(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/teams/unknown/options", nil)
	rec = httptest.NewRecorder()
	f.handler.TeamOptionsHandler(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExtractHandlerSuccess(t *testing.T) {
	f := newFixture()
	f.ext.content = &models.PageContent{
		Title:    "Article",
		URL:      "https://example.com/a",
		Markdown: "# Article",
		Source:   models.ContentSourcePage,
	}

	req := httptest.NewRequest(http.MethodPost, "/api/extract", jsonBody(t, models.ExtractRequest{URL: "https://example.com/a"}))
	rec := httptest.NewRecorder()
	f.handler.ExtractHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp extractResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Degraded)
	assert.Equal(t, "# Article", resp.Content.Markdown)
}

func TestExtractHandlerDegradesOnFailure(t *testing.T) {
	f := newFixture()
	f.ext.err = &extractor.ExtractionError{URL: "https://example.com/a", Reason: "status 404"}

	req := httptest.NewRequest(http.MethodPost, "/api/extract", jsonBody(t, models.ExtractRequest{URL: "https://example.com/a", Title: "Tab Title"}))
	rec := httptest.NewRecorder()
	f.handler.ExtractHandler(rec, req)

	// Failure degrades to a URL-only capture, not an error response
	assert.Equal(t, http.StatusOK, rec.Code)
	var resp extractResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Degraded)
	assert.NotEmpty(t, resp.Warning)
	assert.Equal(t, "Tab Title", resp.Content.Title)
	assert.Empty(t, resp.Content.Markdown)
}

func TestExtractHandlerRejectsEmptyRequest(t *testing.T) {
	f := newFixture()
	req := httptest.NewRequest(http.MethodPost, "/api/extract", jsonBody(t, models.ExtractRequest{}))
	rec := httptest.NewRecorder()
	f.handler.ExtractHandler(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIssueHandlerCreatesIssue(t *testing.T) {
	f := newFixture()

	req := httptest.NewRequest(http.MethodPost, "/api/issues", jsonBody(t, clip.SubmitRequest{
		Title:  "A bug",
		TeamID: "t1",
	}))
	rec := httptest.NewRecorder()
	f.handler.IssueHandler(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var issue models.CreatedIssue
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &issue))
	assert.Equal(t, "PLT-1", issue.Identifier)
}

func TestIssueHandlerMapsErrorTiers(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"transport failure", &tracker.TransportError{Status: 502}, http.StatusBadGateway},
		{"graphql failure", &tracker.GraphQLError{Messages: []string{"bad"}}, http.StatusUnprocessableEntity},
		{"creation failure", &tracker.IssueCreationError{}, http.StatusUnprocessableEntity},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			f.trk.createErr = tc.err

			req := httptest.NewRequest(http.MethodPost, "/api/issues", jsonBody(t, clip.SubmitRequest{
				Title:  "A bug",
				TeamID: "t1",
			}))
			rec := httptest.NewRecorder()
			f.handler.IssueHandler(rec, req)

			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestPreferencesRoundTrip(t *testing.T) {
	f := newFixture()

	put := httptest.NewRequest(http.MethodPut, "/api/preferences", jsonBody(t, models.Preferences{
		TeamID:   "t1",
		LabelIDs: []string{"l1"},
		Priority: 2,
	}))
	rec := httptest.NewRecorder()
	f.handler.PreferencesHandler(rec, put)
	require.Equal(t, http.StatusOK, rec.Code)

	get := httptest.NewRequest(http.MethodGet, "/api/preferences", nil)
	rec = httptest.NewRecorder()
	f.handler.PreferencesHandler(rec, get)
	require.Equal(t, http.StatusOK, rec.Code)

	var prefs models.Preferences
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &prefs))
	assert.Equal(t, "t1", prefs.TeamID)
	assert.Equal(t, []string{"l1"}, prefs.LabelIDs)
	assert.Equal(t, 2, prefs.Priority)
}

func TestPreviewHandlerRendersMarkdown(t *testing.T) {
	h := NewPreviewHandler(arbor.NewLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/preview", jsonBody(t, PreviewRequest{Markdown: "# Hello\n\nsome *text*"}))
	rec := httptest.NewRecorder()
	h.PreviewHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["html"], "<h1")
	assert.Contains(t, body["html"], "<em>text</em>")
}

func TestVersionHandler(t *testing.T) {
	f := newFixture()
	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	rec := httptest.NewRecorder()
	f.handler.VersionHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body["version"])
}

func TestRequireMethodRejectsWrongMethod(t *testing.T) {
	f := newFixture()
	req := httptest.NewRequest(http.MethodPost, "/api/status", nil)
	rec := httptest.NewRecorder()
	f.handler.StatusHandler(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
