package extractor

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/clipper/internal/common"
)

// Renderer loads pages in headless Chrome so JavaScript-built content
// is present before extraction.
type Renderer struct {
	config common.ExtractorConfig
	logger arbor.ILogger
}

// NewRenderer creates a new headless Chrome renderer
func NewRenderer(config common.ExtractorConfig, logger arbor.ILogger) *Renderer {
	return &Renderer{
		config: config,
		logger: logger,
	}
}

// Render navigates to the URL and returns the rendered HTML
func (r *Renderer) Render(ctx context.Context, pageURL string) (string, error) {
	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.UserAgent(r.config.UserAgent),
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1920, 1080),
	}

	allocatorCtx, allocatorCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocatorCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocatorCtx,
		chromedp.WithLogf(func(s string, i ...interface{}) {
			r.logger.Debug().Msgf("chromedp: "+s, i...)
		}),
	)
	defer browserCancel()

	timeout := r.config.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	runCtx, runCancel := context.WithTimeout(browserCtx, timeout)
	defer runCancel()

	waitTime := r.config.JavaScriptWaitTime
	if waitTime <= 0 {
		waitTime = 3 * time.Second
	}

	var html string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(pageURL),
		chromedp.Sleep(waitTime),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("failed to render page: %w", err)
	}

	r.logger.Debug().Str("url", pageURL).Int("html_length", len(html)).Msg("Page rendered")

	return html, nil
}
