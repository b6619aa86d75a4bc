package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"codedrip/logger"
)

const (
	// DefaultBaseURL is the public GitHub REST endpoint.
	DefaultBaseURL = "https://api.github.com"
	// PageSize is the number of items requested from list endpoints. Only the first page is read.
	PageSize = 100

	maxErrorBody = 64 << 10
)

// RateLimit represents GitHub's rate limit information
type RateLimit struct {
	Limit     int
	Remaining int
	Reset     time.Time
}

// Client represents a GitHub API client
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    *url.URL
}

// NewClient creates a client for the given API base URL. An empty baseURL means DefaultBaseURL.
func NewClient(token, baseURL string, timeout time.Duration) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid GitHub API URL %q: %w", baseURL, err)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	logger.Info("Initializing GitHub client", zap.String("base_url", parsed.String()))
	return &Client{
		token: token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: parsed,
	}, nil
}

// FetchRepo fetches repository metadata.
func (c *Client) FetchRepo(ctx context.Context, owner, name string) (*RepoResponse, error) {
	var repo RepoResponse
	if err := c.get(ctx, "repository", repoPath(owner, name, ""), nil, &repo); err != nil {
		return nil, err
	}
	if err := repo.validate(); err != nil {
		return nil, &DecodeError{Resource: "repository", Err: err}
	}

	logger.Info("Successfully fetched repository",
		zap.String("owner", owner),
		zap.String("name", name),
		zap.String("language", repo.Language),
		zap.Int("stars", repo.StargazersCount))
	return &repo, nil
}

// FetchCommits fetches the most recent page of commits.
func (c *Client) FetchCommits(ctx context.Context, owner, name string) ([]CommitResponse, error) {
	var commits []CommitResponse
	if err := c.get(ctx, "commits", repoPath(owner, name, "commits"), pageQuery(""), &commits); err != nil {
		return nil, err
	}
	for i := range commits {
		if err := commits[i].validate(); err != nil {
			return nil, &DecodeError{Resource: "commits", Err: err}
		}
	}
	return commits, nil
}

// FetchIssues fetches one page of issues in any state. GitHub includes pull requests here.
func (c *Client) FetchIssues(ctx context.Context, owner, name string) ([]IssueResponse, error) {
	var issues []IssueResponse
	if err := c.get(ctx, "issues", repoPath(owner, name, "issues"), pageQuery("all"), &issues); err != nil {
		return nil, err
	}
	for i := range issues {
		if err := issues[i].validate(); err != nil {
			return nil, &DecodeError{Resource: "issues", Err: err}
		}
	}
	return issues, nil
}

// FetchPulls fetches one page of pull requests in any state.
func (c *Client) FetchPulls(ctx context.Context, owner, name string) ([]PullResponse, error) {
	var pulls []PullResponse
	if err := c.get(ctx, "pulls", repoPath(owner, name, "pulls"), pageQuery("all"), &pulls); err != nil {
		return nil, err
	}
	for i := range pulls {
		if err := pulls[i].validate(); err != nil {
			return nil, &DecodeError{Resource: "pulls", Err: err}
		}
	}
	return pulls, nil
}

// FetchContributors fetches one page of contributors ordered by contribution count.
func (c *Client) FetchContributors(ctx context.Context, owner, name string) ([]ContributorResponse, error) {
	var contributors []ContributorResponse
	if err := c.get(ctx, "contributors", repoPath(owner, name, "contributors"), pageQuery(""), &contributors); err != nil {
		return nil, err
	}
	for i := range contributors {
		if err := contributors[i].validate(); err != nil {
			return nil, &DecodeError{Resource: "contributors", Err: err}
		}
	}
	return contributors, nil
}

// FetchLanguages fetches the language byte counts, preserving GitHub's ordering.
func (c *Client) FetchLanguages(ctx context.Context, owner, name string) (*Languages, error) {
	languages := NewLanguages()
	if err := c.get(ctx, "languages", repoPath(owner, name, "languages"), nil, languages); err != nil {
		return nil, err
	}
	return languages, nil
}

// FetchReadme fetches and decodes the repository README.
func (c *Client) FetchReadme(ctx context.Context, owner, name string) (string, error) {
	var readme readmeResponse
	if err := c.get(ctx, "readme", repoPath(owner, name, "readme"), nil, &readme); err != nil {
		return "", err
	}
	if readme.Content == "" {
		return "", &DecodeError{Resource: "readme", Err: fmt.Errorf("missing content")}
	}
	if readme.Encoding != "" && readme.Encoding != "base64" {
		return "", &DecodeError{Resource: "readme", Err: fmt.Errorf("unsupported encoding %q", readme.Encoding)}
	}

	// GitHub wraps the base64 payload at 60 columns.
	raw, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(readme.Content, "\n", ""))
	if err != nil {
		return "", &DecodeError{Resource: "readme", Err: err}
	}
	return string(raw), nil
}

// get performs an authenticated GET and decodes a 200 response body into out.
func (c *Client) get(ctx context.Context, resource, path string, query url.Values, out any) error {
	reqURL := c.baseURL.JoinPath(path)
	if query != nil {
		reqURL.RawQuery = query.Encode()
	}

	logger.Debug("Fetching GitHub resource",
		zap.String("resource", resource),
		zap.String("url", reqURL.String()))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if c.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("token %s", c.token))
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("Failed to fetch GitHub resource",
			zap.Error(err),
			zap.String("resource", resource))
		return fmt.Errorf("failed to fetch %s: %w", resource, err)
	}
	defer resp.Body.Close()

	if rl := parseRateLimit(resp); rl.Limit > 0 && rl.Remaining == 0 {
		logger.Warn("GitHub rate limit exhausted",
			zap.Int("limit", rl.Limit),
			zap.Time("reset_time", rl.Reset))
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := newAPIError(resp)
		logger.Error("GitHub API returned an error",
			zap.Int("status_code", resp.StatusCode),
			zap.String("resource", resource),
			zap.String("message", apiErr.Message))
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		logger.Error("Failed to decode GitHub response",
			zap.Error(err),
			zap.String("resource", resource))
		return &DecodeError{Resource: resource, Err: err}
	}
	return nil
}

// newAPIError extracts the human-readable message GitHub puts in error bodies.
func newAPIError(resp *http.Response) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if len(body) == 0 {
		return &APIError{StatusCode: resp.StatusCode, Message: "Unknown error, no content"}
	}

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Message == "" {
		return &APIError{StatusCode: resp.StatusCode, Message: "Unknown GitHub API error"}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: payload.Message}
}

// parseRateLimit parses rate limit information from response headers
func parseRateLimit(resp *http.Response) RateLimit {
	limit, _ := strconv.Atoi(resp.Header.Get("X-RateLimit-Limit"))
	remaining, _ := strconv.Atoi(resp.Header.Get("X-RateLimit-Remaining"))
	reset, _ := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64)

	return RateLimit{
		Limit:     limit,
		Remaining: remaining,
		Reset:     time.Unix(reset, 0),
	}
}

func repoPath(owner, name, sub string) string {
	p := fmt.Sprintf("/repos/%s/%s", url.PathEscape(owner), url.PathEscape(name))
	if sub != "" {
		p += "/" + sub
	}
	return p
}

func pageQuery(state string) url.Values {
	q := url.Values{}
	q.Set("per_page", strconv.Itoa(PageSize))
	if state != "" {
		q.Set("state", state)
	}
	return q
}
