// Package scraper periodically pulls a listing page and feeds its
// articles into ingestion. It is a best-effort background producer; any
// fetch or parse failure is logged and retried on the next tick.
package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// Ingester is the write-path contract the scraper feeds.
type Ingester interface {
	Ingest(ctx context.Context, title, content, url string) (bool, error)
}

// Article is one extracted listing entry.
type Article struct {
	Title   string
	Content string
	URL     string
}

// Config controls the fetch loop.
type Config struct {
	// SourceURL is the listing page to poll.
	SourceURL string
	// Interval between polls. Non-positive falls back to DefaultInterval.
	Interval time.Duration
	// Client used for fetches. nil falls back to a client with a sane
	// timeout.
	Client *http.Client
}

// DefaultInterval between listing polls.
const DefaultInterval = 10 * time.Minute

const fetchTimeout = 30 * time.Second

// Scraper polls one source and ingests what it finds.
type Scraper struct {
	ingester Ingester
	source   string
	interval time.Duration
	client   *http.Client
	logger   *zap.Logger
}

// New creates a scraper.
func New(ingester Ingester, cfg Config, logger *zap.Logger) *Scraper {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: fetchTimeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scraper{
		ingester: ingester,
		source:   cfg.SourceURL,
		interval: cfg.Interval,
		client:   cfg.Client,
		logger:   logger,
	}
}

// Run polls until the context is canceled. The first poll happens
// immediately so a fresh deployment has a corpus before the first tick.
func (s *Scraper) Run(ctx context.Context) {
	s.poll(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scraper stopped")
			return
		case <-ticker.C:
			s.poll(ctx)
		}
	}
}

func (s *Scraper) poll(ctx context.Context) {
	articles, err := s.Fetch(ctx)
	if err != nil {
		s.logger.Warn("scrape failed", zap.String("source", s.source), zap.Error(err))
		return
	}

	var created int
	for _, a := range articles {
		ok, err := s.ingester.Ingest(ctx, a.Title, a.Content, a.URL)
		if err != nil {
			s.logger.Warn("ingest failed",
				zap.String("url", a.URL), zap.Error(err))
			continue
		}
		if ok {
			created++
		}
	}
	s.logger.Info("scrape complete",
		zap.String("source", s.source),
		zap.Int("found", len(articles)),
		zap.Int("ingested", created))
}

// Fetch downloads the listing page and extracts its articles.
func (s *Scraper) Fetch(ctx context.Context) ([]Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.source, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", s.source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("fetch %s: unexpected status %d", s.source, resp.StatusCode)
	}

	base, err := url.Parse(s.source)
	if err != nil {
		return nil, fmt.Errorf("parse source url: %w", err)
	}
	return extractArticles(resp.Body, base)
}

// extractArticles walks the document and pulls one Article out of every
// <article> element: the first heading becomes the title, the first
// paragraph the content, the first link the URL. Links resolve against
// the listing URL. Articles without a link are dropped since the URL is
// the dedup key.
func extractArticles(r io.Reader, base *url.URL) ([]Article, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var articles []Article
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "article" {
			if a, ok := extractOne(n, base); ok {
				articles = append(articles, a)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return articles, nil
}

func extractOne(article *html.Node, base *url.URL) (Article, bool) {
	var a Article
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "h1", "h2", "h3", "h4":
				if a.Title == "" {
					a.Title = strings.TrimSpace(textContent(n))
				}
			case "p":
				if a.Content == "" {
					a.Content = strings.TrimSpace(textContent(n))
				}
			case "a":
				if a.URL == "" {
					a.URL = resolveHref(n, base)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(article)

	if a.URL == "" {
		return Article{}, false
	}
	return a, true
}

func resolveHref(n *html.Node, base *url.URL) string {
	for _, attr := range n.Attr {
		if attr.Key != "href" {
			continue
		}
		ref, err := url.Parse(strings.TrimSpace(attr.Val))
		if err != nil || ref.String() == "" {
			return ""
		}
		return base.ResolveReference(ref).String()
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
