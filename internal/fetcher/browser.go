package fetcher

import (
	"context"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/audit-cli/internal/config"
	"github.com/sells-group/audit-cli/internal/model"
)

// Browser is the headless-browser page fetcher. One Browser is reused for
// all pages within a URL's crawl and must always be closed, on success and
// failure paths alike.
type Browser struct {
	cfg         config.BrowserConfig
	browserCtx  context.Context
	cancelCtx   context.CancelFunc
	cancelAlloc context.CancelFunc
}

// NewBrowser starts a headless browser process. Callers own Close.
func NewBrowser(parent context.Context, cfg config.BrowserConfig) (*Browser, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.UserAgent(cfg.UserAgent),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, opts...)
	browserCtx, cancelCtx := chromedp.NewContext(allocCtx)

	// Start the browser eagerly so per-page timeouts exclude startup.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelCtx()
		cancelAlloc()
		return nil, eris.Wrap(err, "browser: start")
	}

	return &Browser{
		cfg:         cfg,
		browserCtx:  browserCtx,
		cancelCtx:   cancelCtx,
		cancelAlloc: cancelAlloc,
	}, nil
}

// Name identifies this fetcher in snapshots and logs.
func (b *Browser) Name() string { return "browser" }

// Fetch loads a URL in a fresh tab and returns the rendered snapshot.
// The fetch is bounded by the configured timeout; a timeout fails the
// page, never the run.
func (b *Browser) Fetch(ctx context.Context, targetURL string) (*model.PageSnapshot, error) {
	tabCtx, cancelTab := chromedp.NewContext(b.browserCtx)
	defer cancelTab()

	timeout := time.Duration(b.cfg.FetchTimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, timeout)
	defer cancelTimeout()

	// Bridge the caller's cancellation into the tab context.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			cancelTab()
		case <-done:
		}
	}()

	start := time.Now()
	var html, title, finalURL string
	tasks := chromedp.Tasks{
		// Fixed viewport so screenshots of different sites are comparable.
		emulation.SetDeviceMetricsOverride(1440, 900, 1, false),
		chromedp.Navigate(targetURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Title(&title),
		chromedp.Location(&finalURL),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	}

	var screenshot []byte
	if b.cfg.Screenshots {
		tasks = append(tasks, chromedp.FullScreenshot(&screenshot, 70))
	}

	if err := chromedp.Run(tabCtx, tasks); err != nil {
		return nil, eris.Wrapf(err, "browser: fetch %s", targetURL)
	}
	loadTime := time.Since(start)

	if blocked, blockType := DetectBlockBody([]byte(html)); blocked {
		return nil, eris.Errorf("browser: blocked (%s) at %s", blockType, targetURL)
	}

	zap.L().Debug("browser: page fetched",
		zap.String("url", targetURL),
		zap.Duration("load_time", loadTime),
		zap.Int("html_bytes", len(html)),
	)

	return &model.PageSnapshot{
		URL:        targetURL,
		FinalURL:   finalURL,
		Title:      title,
		HTML:       html,
		Text:       ExtractText(html, targetURL),
		StatusCode: 200,
		LoadTime:   loadTime,
		Screenshot: screenshot,
		FetchedVia: b.Name(),
	}, nil
}

// Close shuts the browser process down.
func (b *Browser) Close() {
	b.cancelCtx()
	b.cancelAlloc()
}
