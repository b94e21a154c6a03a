package extractor

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/clipper/internal/common"
	"github.com/ternarybob/clipper/internal/models"
)

func newTestService() *Service {
	return NewService(common.ExtractorConfig{
		UserAgent:   "clipper-test",
		MaxBodySize: 1024 * 1024,
	}, arbor.NewLogger())
}

func TestExtractSelectionVerbatim(t *testing.T) {
	// Any fetch means selection precedence is broken
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("page must not be fetched when a selection is present")
	}))
	defer server.Close()

	req := &models.ExtractRequest{
		URL:       server.URL,
		Title:     "Page Title",
		Selection: "the exact *selected* text",
	}
	content, err := newTestService().Extract(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "the exact *selected* text", content.Markdown)
	assert.Equal(t, "Page Title", content.Title)
	assert.Equal(t, models.ContentSourceSelection, content.Source)
}

func TestExtractFullPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "clipper-test", r.Header.Get("User-Agent"))
		fmt.Fprint(w, `<html><head><title>Release Notes</title></head><body>
			<nav>navigation junk</nav>
			<script>var tracker = 1;</script>
			<main><h2>What changed</h2><p>We shipped <strong>fast</strong> search.</p></main>
			<footer>footer junk</footer>
		</body></html>`)
	}))
	defer server.Close()

	req := &models.ExtractRequest{URL: server.URL}
	content, err := newTestService().Extract(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "Release Notes", content.Title)
	assert.Equal(t, models.ContentSourcePage, content.Source)
	assert.Contains(t, content.Markdown, "What changed")
	assert.Contains(t, content.Markdown, "**fast**")
	assert.NotContains(t, content.Markdown, "navigation junk")
	assert.NotContains(t, content.Markdown, "footer junk")
	assert.NotContains(t, content.Markdown, "tracker")
}

func TestExtractTitleFallbackChain(t *testing.T) {
	cases := []struct {
		name string
		html string
		want string
	}{
		{
			name: "title tag wins",
			html: `<html><head><title>From Title</title><meta property="og:title" content="From OG"></head><body><h1>From H1</h1></body></html>`,
			want: "From Title",
		},
		{
			name: "og:title when no title tag",
			html: `<html><head><meta property="og:title" content="From OG"></head><body><h1>From H1</h1></body></html>`,
			want: "From OG",
		},
		{
			name: "h1 when no meta",
			html: `<html><body><h1>From H1</h1></body></html>`,
			want: "From H1",
		},
		{
			name: "twitter:title as last resort",
			html: `<html><head><meta name="twitter:title" content="From Twitter"></head><body><p>text</p></body></html>`,
			want: "From Twitter",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tc.html)
			}))
			defer server.Close()

			content, err := newTestService().Extract(context.Background(), &models.ExtractRequest{URL: server.URL})
			require.NoError(t, err)
			assert.Equal(t, tc.want, content.Title)
		})
	}
}

func TestExtractRequestTitleWhenPageHasNone(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>bare text</p></body></html>`)
	}))
	defer server.Close()

	req := &models.ExtractRequest{URL: server.URL, Title: "Tab Title"}
	content, err := newTestService().Extract(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Tab Title", content.Title)
}

func TestExtractEmptyContentIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>Empty Page</title></head><body><script>only();</script></body></html>`)
	}))
	defer server.Close()

	content, err := newTestService().Extract(context.Background(), &models.ExtractRequest{URL: server.URL})
	require.NoError(t, err)
	assert.Equal(t, "Empty Page", content.Title)
	assert.Empty(t, content.Markdown)
}

func TestExtractFetchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestService().Extract(context.Background(), &models.ExtractRequest{URL: server.URL})
	var extractErr *ExtractionError
	require.ErrorAs(t, err, &extractErr)
	assert.Contains(t, extractErr.Reason, "404")
}

func TestStripTags(t *testing.T) {
	assert.Equal(t, "hello world", stripTags("<p>hello</p> <b>world</b>"))
	assert.Equal(t, "", stripTags("<div></div>"))
}
