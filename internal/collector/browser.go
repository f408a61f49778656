package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// PageRenderer loads a URL in a browser and returns the rendered HTML.
// Tests substitute canned markup without launching a browser.
type PageRenderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// ChromeRenderer drives a headless Chrome instance. One browser process is
// launched per Render call and released on every exit path.
type ChromeRenderer struct {
	Timeout time.Duration
	// SettleDelay waits for client-side rendering after the document is
	// ready. gorunning.kr builds its race tables in script.
	SettleDelay time.Duration
}

// NewChromeRenderer creates a renderer with default timeouts.
func NewChromeRenderer() *ChromeRenderer {
	return &ChromeRenderer{
		Timeout:     30 * time.Second,
		SettleDelay: 2 * time.Second,
	}
}

// Render implements PageRenderer.
func (r *ChromeRenderer) Render(ctx context.Context, url string) (string, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, chromedp.DefaultExecAllocatorOptions[:]...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	runCtx, cancelRun := context.WithTimeout(browserCtx, timeout)
	defer cancelRun()

	var html string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(r.SettleDelay),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("rendering %s: %w", url, err)
	}
	return html, nil
}
