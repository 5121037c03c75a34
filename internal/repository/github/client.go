package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/oshokin/setup-biome/internal/domain/biome"
	"github.com/oshokin/setup-biome/internal/logger"
)

const (
	// DefaultBaseURL is the public GitHub REST API endpoint.
	DefaultBaseURL = "https://api.github.com"
	// DefaultTimeout bounds a single HTTP round trip.
	DefaultTimeout = 30 * time.Second
	// DefaultUserAgent identifies the tool to GitHub.
	DefaultUserAgent = "setup-biome"

	// pageSize is the largest page GitHub serves for release listings.
	pageSize = 100
	// maxErrorBody caps how much of an error response is echoed back.
	maxErrorBody = 512

	headerRateLimitRemaining = "X-RateLimit-Remaining"
	headerRateLimitReset     = "X-RateLimit-Reset"
)

// Client is an HTTP implementation of Registry and Downloader for one repository.
type Client struct {
	baseURL   string
	owner     string
	repo      string
	token     string
	userAgent string
	client    *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL points the client at another API endpoint (GitHub Enterprise, tests).
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimSuffix(baseURL, "/")
		}
	}
}

// WithRepository overrides the owner/repo pair releases are read from.
func WithRepository(owner, repo string) ClientOption {
	return func(c *Client) {
		if owner != "" && repo != "" {
			c.owner, c.repo = owner, repo
		}
	}
}

// WithToken authenticates API calls, raising the rate limit.
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) ClientOption {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.client = client
		}
	}
}

// WithTimeout sets the HTTP request timeout.
// Zero or negative values fall back to DefaultTimeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout <= 0 {
			timeout = DefaultTimeout
		}

		c.client.Timeout = timeout
	}
}

// NewClient creates a client reading the Biome releases by default.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		owner:     biome.Owner,
		repo:      biome.Repository,
		userAgent: DefaultUserAgent,
		client:    &http.Client{Timeout: DefaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ListReleases returns every release of the repository, following all pages.
func (c *Client) ListReleases(ctx context.Context) ([]Release, error) {
	var releases []Release

	err := c.getPaged(ctx, c.repoURL("releases")+"?per_page="+strconv.Itoa(pageSize), func(body []byte) error {
		var page []Release
		if err := json.Unmarshal(body, &page); err != nil {
			return fmt.Errorf("decode releases: %w", err)
		}

		releases = append(releases, page...)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return releases, nil
}

// GetReleaseByTag returns the release published under tag, or ErrNotFound.
func (c *Client) GetReleaseByTag(ctx context.Context, tag string) (*Release, error) {
	body, _, err := c.get(ctx, c.repoURL("releases", "tags", tag))
	if err != nil {
		return nil, err
	}

	var release Release
	if err = json.Unmarshal(body, &release); err != nil {
		return nil, fmt.Errorf("decode release %s: %w", tag, err)
	}

	return &release, nil
}

// ListAssets returns every asset attached to a release, following all pages.
func (c *Client) ListAssets(ctx context.Context, releaseID int64) ([]Asset, error) {
	var (
		assets   []Asset
		firstURL = c.repoURL("releases", strconv.FormatInt(releaseID, 10), "assets") +
			"?per_page=" + strconv.Itoa(pageSize)
	)

	err := c.getPaged(ctx, firstURL, func(body []byte) error {
		var page []Asset
		if err := json.Unmarshal(body, &page); err != nil {
			return fmt.Errorf("decode assets: %w", err)
		}

		assets = append(assets, page...)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return assets, nil
}

// Download streams the body behind rawURL into destination.
// The file is written next to destination first and renamed once complete.
func (c *Client) Download(ctx context.Context, rawURL, destination string) error {
	req, err := c.newRequest(ctx, rawURL)
	if err != nil {
		return err
	}

	req.Header.Set("Accept", "application/octet-stream")

	response, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", rawURL, err)
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if err = checkResponse(response); err != nil {
		return fmt.Errorf("download %s: %w", rawURL, err)
	}

	temporaryPath := destination + ".tmp"

	output, err := os.Create(filepath.Clean(temporaryPath))
	if err != nil {
		return fmt.Errorf("create %s: %w", temporaryPath, err)
	}

	if _, err = io.Copy(output, response.Body); err != nil {
		_ = output.Close()
		_ = os.Remove(temporaryPath)

		return fmt.Errorf("write %s: %w", temporaryPath, err)
	}

	if err = output.Close(); err != nil {
		_ = os.Remove(temporaryPath)

		return fmt.Errorf("close %s: %w", temporaryPath, err)
	}

	if err = os.Rename(temporaryPath, destination); err != nil {
		_ = os.Remove(temporaryPath)

		return fmt.Errorf("move download into place: %w", err)
	}

	logger.DebugKV(ctx, "Downloaded asset", "url", rawURL, "path", destination)

	return nil
}

// getPaged requests pageURL and every page linked as rel="next" after it.
func (c *Client) getPaged(ctx context.Context, pageURL string, consume func([]byte) error) error {
	for page := 1; pageURL != ""; page++ {
		body, header, err := c.get(ctx, pageURL)
		if err != nil {
			return err
		}

		if err = consume(body); err != nil {
			return err
		}

		logger.DebugKV(ctx, "Fetched page", "page", page, "url", pageURL)

		pageURL = nextPageURL(header.Get("Link"))
	}

	return nil
}

// get performs an authenticated GET and returns the body of a 2xx answer.
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, http.Header, error) {
	req, err := c.newRequest(ctx, rawURL)
	if err != nil {
		return nil, nil, err
	}

	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

	response, err := c.client.Do(req)
	if err != nil {
		return nil, nil, err
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if err = checkResponse(response); err != nil {
		return nil, nil, err
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read response from %s: %w", rawURL, err)
	}

	return body, response.Header, nil
}

// newRequest builds a GET request carrying the user agent and, for GitHub hosts, the token.
func (c *Client) newRequest(ctx context.Context, rawURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", c.userAgent)

	if c.token != "" && c.sendsTokenTo(req.URL) {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	return req, nil
}

// sendsTokenTo limits the token to the API host and github.com itself.
func (c *Client) sendsTokenTo(target *url.URL) bool {
	host := strings.ToLower(target.Hostname())
	if host == "github.com" || strings.HasSuffix(host, ".github.com") {
		return true
	}

	base, err := url.Parse(c.baseURL)

	return err == nil && strings.EqualFold(base.Hostname(), host)
}

// repoURL joins path segments under /repos/{owner}/{repo}.
func (c *Client) repoURL(segments ...string) string {
	escaped := make([]string, 0, len(segments)+3)
	escaped = append(escaped, "repos", url.PathEscape(c.owner), url.PathEscape(c.repo))

	for _, segment := range segments {
		escaped = append(escaped, url.PathEscape(segment))
	}

	return c.baseURL + "/" + strings.Join(escaped, "/")
}

// checkResponse maps non-2xx answers to ErrNotFound, *RateLimitError or errUnexpectedStatus.
func checkResponse(response *http.Response) error {
	if response.StatusCode >= http.StatusOK && response.StatusCode < http.StatusMultipleChoices {
		return nil
	}

	switch {
	case response.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", response.Request.URL, ErrNotFound)
	case isRateLimited(response):
		return &RateLimitError{Reset: parseReset(response.Header.Get(headerRateLimitReset))}
	}

	body, _ := io.ReadAll(io.LimitReader(response.Body, maxErrorBody))

	return fmt.Errorf("%s %s: %s: %w",
		response.Status, response.Request.URL, strings.TrimSpace(string(body)), errUnexpectedStatus)
}

// isRateLimited recognizes GitHub's exhausted-quota answer.
func isRateLimited(response *http.Response) bool {
	if response.StatusCode != http.StatusForbidden && response.StatusCode != http.StatusTooManyRequests {
		return false
	}

	return strings.TrimSpace(response.Header.Get(headerRateLimitRemaining)) == "0"
}

// parseReset converts the epoch-seconds reset header into a time.
func parseReset(value string) time.Time {
	seconds, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || seconds <= 0 {
		return time.Time{}
	}

	return time.Unix(seconds, 0)
}

// nextPageURL extracts the rel="next" target from a Link header.
func nextPageURL(link string) string {
	for part := range strings.SplitSeq(link, ",") {
		target, params, found := strings.Cut(strings.TrimSpace(part), ";")
		if !found {
			continue
		}

		for param := range strings.SplitSeq(params, ";") {
			if strings.TrimSpace(param) == `rel="next"` {
				return strings.Trim(strings.TrimSpace(target), "<>")
			}
		}
	}

	return ""
}
