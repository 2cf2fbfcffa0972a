package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Result carries the response body plus the fetch metadata that ends up
// in the summary report. A failed fetch is still a Result: transport
// and HTTP errors land in Error so the pipeline can keep going and
// report what it saw.
type Result struct {
	Body        string `json:"-"`
	StatusCode  *int   `json:"status_code"`
	ContentType string `json:"content_type"`
	FinalURL    string `json:"final_url"`
	Error       string `json:"error,omitempty"`
}

// Failed reports whether the fetch recorded any error.
func (r Result) Failed() bool {
	return r.Error != ""
}

// Client performs the one-shot feed fetch.
type Client struct {
	httpClient     *http.Client
	userAgent      string
	acceptLanguage string
}

// NewClient creates a fetch client with the given request timeout.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent:      "Mozilla/5.0 (compatible; LanguageNeedsRadar/1.0)",
		acceptLanguage: "en-US,en;q=0.9",
	}
}

// Fetch issues one GET against the feed URL. It never returns an
// error: transport failures, bad statuses and unreadable bodies are all
// captured in the Result so a degenerate report can still be written.
func (c *Client) Fetch(ctx context.Context, url string) Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Result{FinalURL: url, Error: fmt.Sprintf("creating request: %v", err)}
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml, */*")
	req.Header.Set("Accept-Language", c.acceptLanguage)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{FinalURL: url, Error: fmt.Sprintf("fetching feed: %v", err)}
	}
	defer resp.Body.Close()

	result := Result{
		StatusCode:  &resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		FinalURL:    resp.Request.URL.String(),
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		result.Error = fmt.Sprintf("reading response body: %v", err)
		return result
	}
	// Replace invalid UTF-8 rather than fail; feeds lie about encodings.
	result.Body = strings.ToValidUTF8(string(body), "�")

	if resp.StatusCode >= http.StatusBadRequest {
		result.Error = fmt.Sprintf("HTTP error %d", resp.StatusCode)
	}

	return result
}
