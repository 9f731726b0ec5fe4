// Package codehost is a small GitHub REST v3 client covering the calls the
// analyzers need: code search, file contents, directory listings and
// repository metadata.
package codehost

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"learninghour/internal/errdefs"
	"learninghour/internal/logging"
	"learninghour/internal/metrics"
)

const (
	// DefaultBaseURL is the public GitHub API.
	DefaultBaseURL = "https://api.github.com"
	userAgent      = "learninghour"
	searchPageSize = 30
	serviceName    = "github"
)

// ErrNotConnected is returned by every call made before Connect succeeds.
var ErrNotConnected = fmt.Errorf("code host client not connected: %w", errdefs.ErrNotConfigured)

// SearchItem is one code search hit.
type SearchItem struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	SHA     string `json:"sha"`
	HTMLURL string `json:"html_url"`
}

// Entry is one item of a directory listing.
type Entry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"`
	Size int64  `json:"size"`
}

// Repository is the subset of repository metadata the analyzers read.
type Repository struct {
	FullName      string   `json:"full_name"`
	Description   string   `json:"description"`
	Language      string   `json:"language"`
	DefaultBranch string   `json:"default_branch"`
	Topics        []string `json:"topics"`
}

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	Logger     logging.Logger
	Metrics    *metrics.Metrics
}

// Client talks to the GitHub REST API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     logging.Logger
	metrics    *metrics.Metrics
	connected  bool
}

// New creates a client. Call Connect before any other method.
func New(opts Options) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		token:      opts.Token,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		metrics:    opts.Metrics,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if c.logger == nil {
		c.logger = logging.Discard()
	}
	return c
}

// Connect checks that a token is configured and marks the client usable.
func (c *Client) Connect(ctx context.Context) error {
	if c.connected {
		return nil
	}
	if c.token == "" {
		return errdefs.NotConfigured("GitHub integration not configured: set GITHUB_TOKEN")
	}
	c.connected = true
	c.logger.InfoContext(ctx, "connected to code host", "base_url", c.baseURL)
	return nil
}

// Connected reports whether Connect has succeeded.
func (c *Client) Connected() bool {
	return c.connected
}

// SearchCode runs a code search scoped to repo.
func (c *Client) SearchCode(ctx context.Context, repo Repo, query string) ([]SearchItem, error) {
	q := url.Values{}
	q.Set("q", fmt.Sprintf("%s repo:%s", query, repo.FullName()))
	q.Set("per_page", strconv.Itoa(searchPageSize))

	var out struct {
		TotalCount int          `json:"total_count"`
		Items      []SearchItem `json:"items"`
	}
	if err := c.get(ctx, "search_code", "/search/code", q, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// GetFileContent fetches a file and returns its decoded text.
func (c *Client) GetFileContent(ctx context.Context, repo Repo, path string) (string, error) {
	var file struct {
		Type     string `json:"type"`
		Encoding string `json:"encoding"`
		Content  string `json:"content"`
	}
	if err := c.get(ctx, "get_file_contents", contentsPath(repo, path), nil, &file); err != nil {
		return "", err
	}
	if file.Type != "" && file.Type != "file" {
		return "", errdefs.InvalidInput("%s in %s is a %s, not a file", path, repo.FullName(), file.Type)
	}
	if file.Encoding != "base64" {
		return file.Content, nil
	}
	raw, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(file.Content, "\n", ""))
	if err != nil {
		return "", errdefs.Upstream("decode "+path, err)
	}
	return string(raw), nil
}

// ListDirectory lists one directory; "" is the repository root.
func (c *Client) ListDirectory(ctx context.Context, repo Repo, path string) ([]Entry, error) {
	var entries []Entry
	if err := c.get(ctx, "list_contents", contentsPath(repo, path), nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// GetRepository fetches repository metadata.
func (c *Client) GetRepository(ctx context.Context, repo Repo) (Repository, error) {
	var out Repository
	err := c.get(ctx, "get_repo", "/repos/"+url.PathEscape(repo.Owner)+"/"+url.PathEscape(repo.Name), nil, &out)
	return out, err
}

// ListLanguages returns the repository's languages, most bytes first.
func (c *Client) ListLanguages(ctx context.Context, repo Repo) ([]string, error) {
	var bytesByLang map[string]int64
	path := "/repos/" + url.PathEscape(repo.Owner) + "/" + url.PathEscape(repo.Name) + "/languages"
	if err := c.get(ctx, "list_languages", path, nil, &bytesByLang); err != nil {
		return nil, err
	}
	langs := make([]string, 0, len(bytesByLang))
	for lang := range bytesByLang {
		langs = append(langs, lang)
	}
	sort.Slice(langs, func(i, j int) bool {
		if bytesByLang[langs[i]] != bytesByLang[langs[j]] {
			return bytesByLang[langs[i]] > bytesByLang[langs[j]]
		}
		return langs[i] < langs[j]
	})
	return langs, nil
}

func contentsPath(repo Repo, path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return "/repos/" + url.PathEscape(repo.Owner) + "/" + url.PathEscape(repo.Name) + "/contents/" + strings.Join(segments, "/")
}

// get issues an authenticated GET and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, operation, path string, query url.Values, out any) error {
	if !c.connected {
		return ErrNotConnected
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build %s request: %w", operation, err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveUpstream(serviceName, operation, "error", started)
		return errdefs.Upstream("github "+operation, err)
	}
	defer resp.Body.Close()
	c.metrics.ObserveUpstream(serviceName, operation, strconv.Itoa(resp.StatusCode), started)

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return errdefs.Upstream("github "+operation,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errdefs.Upstream("github "+operation, fmt.Errorf("decode response: %w", err))
	}
	c.logger.Debug("code host request", "operation", operation, "path", path, "status", resp.StatusCode)
	return nil
}
