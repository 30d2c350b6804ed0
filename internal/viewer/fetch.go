package viewer

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"
)

// maxBodyBytes caps how much of a page is read
const maxBodyBytes = 2 << 20

// Page is a fetched and rendered app page
type Page struct {
	URL         string
	Status      int
	ContentType string
	Title       string
	Text        string // rendered text
	Source      string // raw body, empty for binary content
	Size        int
	Truncated   bool
}

// Fetcher loads a page for the viewer
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
}

// HTTPFetcher fetches pages over HTTP
type HTTPFetcher struct {
	Client    *http.Client
	UserAgent string
}

// NewHTTPFetcher creates a fetcher. A zero timeout means none.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		Client:    &http.Client{Timeout: timeout},
		UserAgent: "Mozilla/5.0 (compatible; webdeck/1.0)",
	}
}

// Fetch implements Fetcher
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.8")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	page := &Page{
		URL:         url,
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Size:        len(body),
	}
	if len(body) > maxBodyBytes {
		body = body[:maxBodyBytes]
		page.Truncated = true
	}

	mediaType, _, _ := mime.ParseMediaType(page.ContentType)
	switch {
	case isBinaryContent(body):
		page.Text = fmt.Sprintf("Binary content (%s) cannot be previewed.\nOpen it in the browser instead.", orUnknown(mediaType))
	case mediaType == "" || strings.Contains(mediaType, "html"):
		page.Source = string(body)
		page.Title, page.Text, err = Render(page.Source)
		if err != nil {
			return nil, fmt.Errorf("failed to render page: %w", err)
		}
	default:
		page.Source = string(body)
		page.Text = page.Source
	}
	return page, nil
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown type"
	}
	return s
}

// isBinaryContent checks if content appears to be binary
func isBinaryContent(data []byte) bool {
	checkLen := 512
	if len(data) < checkLen {
		checkLen = len(data)
	}
	if checkLen == 0 {
		return false
	}

	nonPrintable := 0
	for i := 0; i < checkLen; i++ {
		if data[i] == 0 {
			return true
		}
		if data[i] < 32 && data[i] != '\n' && data[i] != '\r' && data[i] != '\t' {
			nonPrintable++
		}
	}

	return float64(nonPrintable)/float64(checkLen) > 0.3
}
