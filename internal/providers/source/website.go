package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/inbucket/html2text"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"

	"github.com/sandevgo/bizbot/internal/core"
	"github.com/sandevgo/bizbot/pkg/log"
	"github.com/sandevgo/bizbot/pkg/retry"
)

const (
	maxResponseSize     = 1 << 20 // 1MB per page
	defaultFetchTimeout = 10 * time.Second
	minFragmentWords    = 10
)

// boilerplate elements removed before text extraction
var skipElements = map[string]bool{
	"script": true, "style": true, "nav": true,
	"footer": true, "header": true, "aside": true, "noscript": true,
}

var textPolicy = bluemonday.UGCPolicy()

// WebsiteAdapter crawls same-domain pages starting from a seed URL and
// produces one plain-text RawSource for the whole site.
type WebsiteAdapter struct {
	sourceID string
	seedURL  string
	maxPages int
	client   *http.Client
	retrier  *retry.Retrier
}

type WebsiteOptions struct {
	MaxPages int
	Timeout  time.Duration
	Retry    *retry.Config
}

func NewWebsiteAdapter(sourceID, seedURL string, opts WebsiteOptions) *WebsiteAdapter {
	if sourceID == "" {
		sourceID = seedURL
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = 10
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultFetchTimeout
	}
	if opts.Retry == nil {
		opts.Retry = retry.NewDefaultConfig()
	}

	return &WebsiteAdapter{
		sourceID: sourceID,
		seedURL:  seedURL,
		maxPages: opts.MaxPages,
		client:   &http.Client{Timeout: opts.Timeout},
		retrier:  retry.NewRetrier(opts.Retry),
	}
}

func (w *WebsiteAdapter) SourceID() string            { return w.sourceID }
func (w *WebsiteAdapter) OriginType() core.OriginType { return core.OriginWebsite }

func (w *WebsiteAdapter) Produce(ctx context.Context) (*core.RawSource, error) {
	logger := log.FromCtx(ctx)

	seed, err := url.Parse(w.seedURL)
	if err != nil {
		return nil, fmt.Errorf("invalid seed url %q: %w", w.seedURL, err)
	}

	visited := make(map[string]bool)
	queue := []string{seed.String()}

	var pages []string
	for len(queue) > 0 && len(visited) < w.maxPages {
		pageURL := queue[0]
		queue = queue[1:]

		if visited[pageURL] {
			continue
		}
		visited[pageURL] = true

		logger.Info().Str("url", pageURL).Msg("scraping page")

		text, links, err := w.fetchPage(ctx, pageURL)
		if err != nil {
			logger.Error().Err(err).Str("url", pageURL).Msg("failed to process page")
			continue
		}

		if text != "" {
			pages = append(pages, text)
		}

		for _, link := range links {
			if !visited[link] {
				queue = append(queue, link)
			}
		}
	}

	logger.Info().Int("pages", len(visited)).Msg("finished scraping")

	return &core.RawSource{
		SourceID:   w.sourceID,
		OriginType: core.OriginWebsite,
		Location:   w.seedURL,
		Text:       strings.Join(pages, "\n\n"),
	}, nil
}

func (w *WebsiteAdapter) fetchPage(ctx context.Context, pageURL string) (string, []string, error) {
	var body []byte
	err := w.retrier.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", core.BizUserAgent)

		resp, err := w.client.Do(req)
		if err != nil {
			return fmt.Errorf("failed to fetch url: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			return fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
		}

		body, err = io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		if err != nil {
			return fmt.Errorf("failed to read body: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", nil, err
	}

	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return "", nil, fmt.Errorf("failed to parse html: %w", err)
	}

	links := extractLinks(doc, pageURL)
	stripBoilerplate(doc)

	var cleaned strings.Builder
	if err := html.Render(&cleaned, doc); err != nil {
		return "", nil, fmt.Errorf("failed to render html: %w", err)
	}

	sanitized := textPolicy.Sanitize(cleaned.String())
	text, err := html2text.FromString(sanitized, html2text.Options{
		OmitLinks: true,
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to extract text: %w", err)
	}

	return filterFragments(text), links, nil
}

// stripBoilerplate drops navigation and code elements in place.
func stripBoilerplate(n *html.Node) {
	var next *html.Node
	for c := n.FirstChild; c != nil; c = next {
		next = c.NextSibling
		if c.Type == html.ElementNode && skipElements[c.Data] {
			n.RemoveChild(c)
			continue
		}
		stripBoilerplate(c)
	}
}

// extractLinks walks anchor tags and keeps absolute same-host URLs.
func extractLinks(doc *html.Node, pageURL string) []string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	var links []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}
				ref, err := url.Parse(attr.Val)
				if err != nil {
					continue
				}
				full := base.ResolveReference(ref)
				full.Fragment = ""
				if full.Host == base.Host && (full.Scheme == "http" || full.Scheme == "https") {
					links = append(links, full.String())
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links
}

// filterFragments keeps paragraph fragments carrying enough words to be worth
// indexing; menus and button labels fall below the threshold.
func filterFragments(text string) string {
	var kept []string
	for _, fragment := range strings.Split(text, "\n\n") {
		fragment = strings.TrimSpace(fragment)
		if len(strings.Fields(fragment)) >= minFragmentWords {
			kept = append(kept, fragment)
		}
	}
	return strings.Join(kept, "\n\n")
}
