package fetcher

import (
	"context"
	"encoding/xml"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/audit-cli/internal/model"
)

// Prober checks homepage reachability and fetches robots.txt and
// sitemap.xml directly, outside the browser.
type Prober struct {
	http *http.Client
	ua   string
}

// NewProber creates a Prober with the given timeout.
func NewProber(timeout time.Duration, userAgent string) *Prober {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Prober{
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: timeout,
				}).DialContext,
				TLSHandshakeTimeout: timeout,
			},
		},
		ua: userAgent,
	}
}

// Probe performs an HTTP probe of the given URL checking reachability,
// robots.txt, and sitemap.xml. An unreachable target returns the probe
// error so the caller can classify it; robots/sitemap failures do not.
func (p *Prober) Probe(ctx context.Context, rawURL string) (*model.ProbeResult, error) {
	parsed, err := NormalizeURL(rawURL)
	if err != nil {
		return nil, eris.Wrap(err, "probe: parse url")
	}

	result := &model.ProbeResult{}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed, nil)
	if err != nil {
		return nil, eris.Wrap(err, "probe: create request")
	}
	req.Header.Set("User-Agent", p.ua)

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "probe: fetch %s", parsed)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 256*1024))

	result.Reachable = true
	result.StatusCode = resp.StatusCode
	result.FinalURL = resp.Request.URL.String()

	if blocked, blockType := DetectBlock(resp, body); blocked {
		result.Blocked = true
		result.BlockType = string(blockType)
		return result, nil
	}

	// Check robots.txt and sitemap.xml in parallel.
	base := BaseURL(parsed)
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		if robots := p.fetchBody(ctx, base+"/robots.txt", 64*1024); robots != "" {
			result.HasRobots = true
			result.RobotsTxt = robots
		}
	}()
	go func() {
		defer wg.Done()
		urls := p.fetchSitemapURLs(ctx, base+"/sitemap.xml")
		if len(urls) > 0 {
			result.HasSitemap = true
			result.SitemapURLs = urls
		}
	}()

	wg.Wait()
	return result, nil
}

func (p *Prober) fetchBody(ctx context.Context, targetURL string, limit int64) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", p.ua)

	resp, err := p.http.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return ""
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return ""
	}
	return string(body)
}

// sitemapURLSet represents a basic sitemap.xml <urlset> document.
type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	URLs    []sitemapLoc `xml:"url"`
}

type sitemapLoc struct {
	Loc string `xml:"loc"`
}

// fetchSitemapURLs fetches and parses a sitemap.xml, returning same-host
// URLs. Sitemap index files (<sitemapindex>) are not followed.
func (p *Prober) fetchSitemapURLs(ctx context.Context, sitemapURL string) []string {
	body := p.fetchBody(ctx, sitemapURL, 2*1024*1024)
	if body == "" {
		return nil
	}

	var urlSet sitemapURLSet
	if err := xml.Unmarshal([]byte(body), &urlSet); err != nil {
		return nil
	}

	base, err := url.Parse(sitemapURL)
	if err != nil {
		return nil
	}

	var urls []string
	for _, entry := range urlSet.URLs {
		loc := strings.TrimSpace(entry.Loc)
		if loc == "" {
			continue
		}
		u, err := url.Parse(loc)
		if err != nil || u.Host != base.Host {
			continue
		}
		urls = append(urls, loc)
	}
	return urls
}

// NormalizeURL ensures a scheme and strips fragments.
func NormalizeURL(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", eris.New("fetcher: empty url")
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		rawURL = "https://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", eris.Wrapf(err, "fetcher: parse %q", rawURL)
	}
	if u.Host == "" {
		return "", eris.Errorf("fetcher: no host in %q", rawURL)
	}
	u.Fragment = ""
	return u.String(), nil
}

// BaseURL returns scheme://host for a normalized URL.
func BaseURL(normalized string) string {
	u, err := url.Parse(normalized)
	if err != nil {
		return normalized
	}
	return u.Scheme + "://" + u.Host
}

// RegistrableDomain returns the host without a leading "www.".
func RegistrableDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}
