package model

import "time"

// PageKind classifies a crawled page by its URL/title patterns.
type PageKind string

const (
	PageHome     PageKind = "home"
	PageContact  PageKind = "contact"
	PageAbout    PageKind = "about"
	PageServices PageKind = "services"
	PageBlog     PageKind = "blog"
	PageOther    PageKind = "other"
)

// PageSnapshot is one crawled page. Owned by the run; not persisted.
type PageSnapshot struct {
	URL        string        `json:"url"`
	FinalURL   string        `json:"final_url,omitempty"`
	Title      string        `json:"title,omitempty"`
	HTML       string        `json:"-"`
	Text       string        `json:"-"`
	Kind       PageKind      `json:"kind"`
	StatusCode int           `json:"status_code"`
	LoadTime   time.Duration `json:"load_time"`
	Screenshot []byte        `json:"-"`
	FetchedVia string        `json:"fetched_via"` // browser, local_http, jina
}

// ProbeResult holds homepage reachability plus robots/sitemap facts.
type ProbeResult struct {
	Reachable   bool     `json:"reachable"`
	StatusCode  int      `json:"status_code"`
	FinalURL    string   `json:"final_url,omitempty"`
	Blocked     bool     `json:"blocked"`
	BlockType   string   `json:"block_type,omitempty"`
	HasRobots   bool     `json:"has_robots"`
	RobotsTxt   string   `json:"-"`
	HasSitemap  bool     `json:"has_sitemap"`
	SitemapURLs []string `json:"-"`
}
