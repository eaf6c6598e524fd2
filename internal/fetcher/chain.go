package fetcher

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/audit-cli/internal/cost"
	"github.com/sells-group/audit-cli/internal/model"
	"github.com/sells-group/audit-cli/pkg/jina"
)

// PageFetcher fetches one URL into a snapshot.
type PageFetcher interface {
	Name() string
	Fetch(ctx context.Context, targetURL string) (*model.PageSnapshot, error)
}

// Chain tries fetchers in priority order, returning the first success.
// Typical order: browser, plain HTTP, Jina Reader.
type Chain struct {
	fetchers []PageFetcher
}

// NewChain creates a Chain. Nil fetchers are skipped.
func NewChain(fetchers ...PageFetcher) *Chain {
	c := &Chain{}
	for _, f := range fetchers {
		if f != nil {
			c.fetchers = append(c.fetchers, f)
		}
	}
	return c
}

// Fetch tries each fetcher in order for a single URL.
func (c *Chain) Fetch(ctx context.Context, targetURL string) (*model.PageSnapshot, error) {
	var lastErr error
	for _, f := range c.fetchers {
		snap, err := f.Fetch(ctx, targetURL)
		if err == nil && snap != nil {
			return snap, nil
		}
		if err != nil {
			zap.L().Debug("fetcher: fetch failed, trying next",
				zap.String("fetcher", f.Name()),
				zap.String("url", targetURL),
				zap.Error(err),
			)
			lastErr = err
		}
		if ctx.Err() != nil {
			break
		}
	}
	if lastErr != nil {
		return nil, eris.Wrapf(lastErr, "fetcher: all fetchers failed for %s", targetURL)
	}
	return nil, eris.Errorf("fetcher: no fetcher configured for %s", targetURL)
}

// LocalFetcher fetches HTML via net/http. No JS rendering, no screenshot;
// cheap fallback when the browser fails.
type LocalFetcher struct {
	client *http.Client
	ua     string
}

// NewLocalFetcher creates a LocalFetcher with sensible defaults.
func NewLocalFetcher(userAgent string) *LocalFetcher {
	return &LocalFetcher{
		client: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		ua: userAgent,
	}
}

func (l *LocalFetcher) Name() string { return "local_http" }

// Fetch fetches a URL, detects blocks, and strips HTML to plaintext.
func (l *LocalFetcher) Fetch(ctx context.Context, targetURL string) (*model.PageSnapshot, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "local_http: create request")
	}
	req.Header.Set("User-Agent", l.ua)

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "local_http: fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024*1024))
	if err != nil {
		return nil, eris.Wrap(err, "local_http: read body")
	}

	if blocked, blockType := DetectBlock(resp, body); blocked {
		return nil, eris.Errorf("local_http: blocked (%s)", blockType)
	}
	if resp.StatusCode >= 400 {
		return nil, eris.Errorf("local_http: status %d", resp.StatusCode)
	}
	if len(body) < 100 {
		return nil, eris.New("local_http: empty page")
	}

	html := string(body)
	return &model.PageSnapshot{
		URL:        targetURL,
		FinalURL:   resp.Request.URL.String(),
		Title:      ExtractTitle(html),
		HTML:       html,
		Text:       ExtractText(html, targetURL),
		StatusCode: resp.StatusCode,
		LoadTime:   time.Since(start),
		FetchedVia: l.Name(),
	}, nil
}

// JinaFetcher fetches page text via the Jina Reader API. Returns markdown
// text only: no HTML facts, no screenshot. Its token cost lands on the
// run ledger.
type JinaFetcher struct {
	client jina.Client
	calc   *cost.Calculator
	ledger *cost.Ledger
}

// NewJinaFetcher creates a JinaFetcher.
func NewJinaFetcher(client jina.Client, calc *cost.Calculator, ledger *cost.Ledger) *JinaFetcher {
	return &JinaFetcher{client: client, calc: calc, ledger: ledger}
}

func (j *JinaFetcher) Name() string { return "jina" }

// Fetch reads the page through Jina Reader.
func (j *JinaFetcher) Fetch(ctx context.Context, targetURL string) (*model.PageSnapshot, error) {
	start := time.Now()
	resp, err := j.client.Read(ctx, targetURL)
	if err != nil {
		return nil, eris.Wrap(err, "jina: read")
	}
	duration := time.Since(start)

	if j.ledger != nil && j.calc != nil {
		j.ledger.Append(cost.Entry{
			Stage:       "fetch_jina",
			InputTokens: int64(resp.Data.Usage.Tokens),
			Cost:        j.calc.Jina(resp.Data.Usage.Tokens),
			Duration:    duration,
		})
	}

	return &model.PageSnapshot{
		URL:        targetURL,
		FinalURL:   resp.Data.URL,
		Title:      resp.Data.Title,
		Text:       resp.Data.Content,
		StatusCode: 200,
		LoadTime:   duration,
		FetchedVia: j.Name(),
	}, nil
}
