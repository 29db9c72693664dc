package fetcher

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"learnfeed/internal/resilience/circuitbreaker"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/mmcdole/gofeed"
)

const maxCharsHandedToExtractor = 50000

// HTTPFetcher fetches a source URL over HTTP(S) and reduces the response to plain text
// suitable for the LLM Extraction Client: RSS/Atom responses are flattened item-by-item,
// HTML responses go through Readability with a goquery-based fallback.
//
// Thread safety: HTTPFetcher is safe for concurrent use.
type HTTPFetcher struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	config         Config
}

func NewHTTPFetcher(config Config) *HTTPFetcher {
	cb := circuitbreaker.New(circuitbreaker.Config{
		Name:             "content-fetch",
		MaxRequests:      5,
		Interval:         60 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	})

	f := &HTTPFetcher{circuitBreaker: cb, config: config}

	f.client = &http.Client{
		Timeout: config.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS12},
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= f.config.MaxRedirects {
				return fmt.Errorf("%w: %d redirects", ErrTooManyRedirects, len(via))
			}
			if err := validateURL(req.URL.String(), f.config.DenyPrivateIPs); err != nil {
				return fmt.Errorf("redirect target validation failed: %w", err)
			}
			return nil
		},
	}
	return f
}

func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (FetchResult, error) {
	if err := validateURL(rawURL, f.config.DenyPrivateIPs); err != nil {
		return FetchResult{}, err
	}

	result, err := f.circuitBreaker.Execute(func() (interface{}, error) {
		return f.doFetch(ctx, rawURL)
	})
	if err != nil {
		return FetchResult{}, err
	}
	return result.(FetchResult), nil
}

func (f *HTTPFetcher) doFetch(ctx context.Context, rawURL string) (FetchResult, error) {
	reqCtx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return FetchResult{}, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", "LearnFeedBot/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		if reqCtx.Err() == context.DeadlineExceeded {
			return FetchResult{}, fmt.Errorf("%w: %v", ErrTimeout, f.config.Timeout)
		}
		if urlErr, ok := err.(*url.Error); ok && urlErr.Err != nil {
			return FetchResult{}, urlErr.Err
		}
		return FetchResult{}, fmt.Errorf("http request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return FetchResult{}, fmt.Errorf("%w: %d %s", ErrHTTPStatus, resp.StatusCode, resp.Status)
	}

	limited := io.LimitReader(resp.Body, f.config.MaxBodySize+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		return FetchResult{}, fmt.Errorf("read response body: %w", err)
	}
	if int64(len(body)) > f.config.MaxBodySize {
		return FetchResult{}, fmt.Errorf("%w: %d bytes exceeds limit %d", ErrTooLarge, len(body), f.config.MaxBodySize)
	}

	contentType := resp.Header.Get("Content-Type")
	text, err := f.extractText(ctx, rawURL, contentType, body)
	if err != nil {
		return FetchResult{}, err
	}

	truncated := false
	if len(text) > maxCharsHandedToExtractor {
		text = text[:maxCharsHandedToExtractor]
		truncated = true
	}
	return FetchResult{Text: text, Truncated: truncated}, nil
}

func (f *HTTPFetcher) extractText(ctx context.Context, rawURL, contentType string, body []byte) (string, error) {
	if isFeedContent(contentType, body) {
		return extractFeedText(ctx, rawURL, body)
	}
	return extractHTMLText(rawURL, body)
}

func isFeedContent(contentType string, body []byte) bool {
	lower := strings.ToLower(contentType)
	if strings.Contains(lower, "xml") || strings.Contains(lower, "rss") || strings.Contains(lower, "atom") {
		return true
	}
	trimmed := bytes.TrimSpace(body)
	return bytes.HasPrefix(trimmed, []byte("<?xml")) || bytes.Contains(trimmed[:min(len(trimmed), 512)], []byte("<rss")) ||
		bytes.Contains(trimmed[:min(len(trimmed), 512)], []byte("<feed"))
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// extractFeedText flattens an RSS/Atom feed's items into a single text block, giving the LLM
// Extraction Client clean per-item text instead of raw feed XML.
func extractFeedText(ctx context.Context, feedURL string, body []byte) (string, error) {
	fp := gofeed.NewParser()
	feed, err := fp.ParseStringWithContext(string(body), ctx)
	if err != nil {
		return "", fmt.Errorf("%w: parse feed %s: %v", ErrNoContent, feedURL, err)
	}

	var sb strings.Builder
	for _, item := range feed.Items {
		content := item.Content
		if content == "" {
			content = item.Description
		}
		fmt.Fprintf(&sb, "Title: %s\nURL: %s\n%s\n\n", item.Title, item.Link, content)
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("%w: feed %s has no items", ErrNoContent, feedURL)
	}
	return sb.String(), nil
}

// extractHTMLText runs Readability's main-content extraction, falling back to a goquery-based
// strip of script/style tags when Readability finds nothing usable.
func extractHTMLText(pageURL string, body []byte) (string, error) {
	parsedURL, _ := url.Parse(pageURL)

	article, err := readability.FromReader(bytes.NewReader(body), parsedURL)
	if err == nil {
		if article.TextContent != "" {
			return article.TextContent, nil
		}
		if article.Content != "" {
			slog.Debug("using readability Content instead of TextContent", slog.String("url", pageURL))
			return article.Content, nil
		}
	}

	doc, qerr := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if qerr != nil {
		return "", fmt.Errorf("%w: readability and goquery both failed: %v / %v", ErrNoContent, err, qerr)
	}
	doc.Find("script, style, nav, footer").Remove()
	text := strings.Join(strings.Fields(doc.Text()), " ")
	if text == "" {
		return "", fmt.Errorf("%w: no readable content in %s", ErrNoContent, pageURL)
	}
	return text, nil
}
