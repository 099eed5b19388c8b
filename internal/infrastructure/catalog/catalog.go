package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"CovidTracker/internal/ports"
)

// Client locates the newest dataset link on an HTML index page and
// downloads it. Index pages list dataset files as anchors; the first
// anchor matching the configured keyword and a tabular extension wins.
type Client struct {
	indexURL string
	keyword  string
	client   *http.Client
}

var _ ports.Fetcher = (*Client)(nil)

// NewClient wires an HTTP client; the timeout default covers large
// dataset downloads.
func NewClient(indexURL, keyword string, client *http.Client) *Client {
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}
	return &Client{indexURL: indexURL, keyword: keyword, client: client}
}

// LatestURL scrapes the index page and returns the absolute URL of the
// first matching dataset link.
func (c *Client) LatestURL(ctx context.Context) (string, error) {
	doc, err := c.fetchDocument(ctx, c.indexURL)
	if err != nil {
		return "", err
	}

	var found string
	doc.Find("a[href]").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		ext := strings.ToLower(path.Ext(href))
		if ext != ".csv" && ext != ".xlsx" {
			return true
		}
		if c.keyword != "" && !strings.Contains(href, c.keyword) {
			return true
		}
		found = href
		return false
	})

	if found == "" {
		return "", fmt.Errorf("no dataset link on %s matching %q", c.indexURL, c.keyword)
	}

	base, err := url.Parse(c.indexURL)
	if err != nil {
		return "", fmt.Errorf("invalid index url %s: %w", c.indexURL, err)
	}
	ref, err := url.Parse(found)
	if err != nil {
		return "", fmt.Errorf("invalid dataset link %s: %w", found, err)
	}

	return base.ResolveReference(ref).String(), nil
}

// Fetch resolves the latest dataset URL and downloads it to dest.
func (c *Client) Fetch(ctx context.Context, dest string) error {
	latest, err := c.LatestURL(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, latest, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "CovidTracker/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("download dataset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog returned %s for %s", resp.Status, latest)
	}

	if dir := filepath.Dir(dest); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dataset dir: %w", err)
		}
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create dataset file: %w", err)
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		return fmt.Errorf("write dataset file: %w", err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("close dataset file: %w", err)
	}

	return nil
}

func (c *Client) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "CovidTracker/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request index: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse index page: %w", err)
	}

	return doc, nil
}
