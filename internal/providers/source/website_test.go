package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sandevgo/bizbot/internal/core"
)

const aboutBody = `<html><head><style>body { color: red; }</style></head><body>
<nav><a href="/">Home</a> <a href="/about">About</a></nav>
<p>We are a family business selling handmade furniture since 1987,
shipping across the whole country within five working days.</p>
<script>console.log("tracking")</script>
<footer>Copyright 2021</footer>
</body></html>`

func TestWebsiteAdapterCrawl(t *testing.T) {
	var external *httptest.Server
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			fmt.Fprintf(w, `<html><body>
<p>Our store is open from nine in the morning until five in the afternoon.</p>
<a href="/about">About us</a>
<a href="%s/elsewhere">External</a>
<a href="/#section">Anchor</a>
</body></html>`, external.URL)
		case "/about":
			fmt.Fprint(w, aboutBody)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	externalHits := 0
	external = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		externalHits++
		fmt.Fprint(w, "<html><body><p>other host content that must never be crawled at all here</p></body></html>")
	}))
	defer external.Close()

	adapter := NewWebsiteAdapter("shop", srv.URL, WebsiteOptions{MaxPages: 10})
	raw, err := adapter.Produce(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if raw.OriginType != core.OriginWebsite || raw.SourceID != "shop" {
		t.Errorf("raw source %+v", raw)
	}
	if !strings.Contains(raw.Text, "nine in the morning") {
		t.Errorf("seed page text missing:\n%s", raw.Text)
	}
	if !strings.Contains(raw.Text, "handmade furniture") {
		t.Errorf("linked page not crawled:\n%s", raw.Text)
	}
	if strings.Contains(raw.Text, "tracking") || strings.Contains(raw.Text, "color: red") {
		t.Errorf("script/style content leaked:\n%s", raw.Text)
	}
	if strings.Contains(raw.Text, "Copyright") {
		t.Errorf("footer boilerplate leaked:\n%s", raw.Text)
	}
	if externalHits != 0 {
		t.Errorf("crawler left the seed host %d times", externalHits)
	}
}

func TestWebsiteAdapterMaxPages(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		// Every page links to a fresh one; only the page cap stops the crawl.
		fmt.Fprintf(w, `<html><body>
<p>This page carries more than ten words so the fragment filter keeps it.</p>
<a href="/page-%d">next</a>
</body></html>`, hits)
	}))
	defer srv.Close()

	adapter := NewWebsiteAdapter("", srv.URL, WebsiteOptions{MaxPages: 3})
	if _, err := adapter.Produce(context.Background()); err != nil {
		t.Fatal(err)
	}
	if hits != 3 {
		t.Errorf("fetched %d pages, want 3", hits)
	}
}

func TestWebsiteAdapterSkipsFailingPages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			fmt.Fprint(w, `<html><body>
<p>The landing page has plenty of words to pass the fragment threshold.</p>
<a href="/broken">broken</a>
</body></html>`)
		default:
			http.Error(w, "gone", http.StatusNotFound)
		}
	}))
	defer srv.Close()

	adapter := NewWebsiteAdapter("", srv.URL, WebsiteOptions{MaxPages: 5})
	raw, err := adapter.Produce(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(raw.Text, "landing page") {
		t.Errorf("good page lost because a linked one failed:\n%s", raw.Text)
	}
}

func TestFilterFragments(t *testing.T) {
	text := "Home\n\nAbout\n\nWe sell handmade furniture and ship it across the whole country quickly.\n\nContact"
	got := filterFragments(text)
	if got != "We sell handmade furniture and ship it across the whole country quickly." {
		t.Errorf("got %q", got)
	}
}

func TestWebsiteAdapterDefaultsSourceID(t *testing.T) {
	adapter := NewWebsiteAdapter("", "https://example.com", WebsiteOptions{})
	if adapter.SourceID() != "https://example.com" {
		t.Errorf("source id %q, want the seed url", adapter.SourceID())
	}
}
