// Package whiteboard is a Miro REST v2 client for the calls the canvas
// builder makes: boards, frames, sticky notes, text, shapes and images.
package whiteboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"learninghour/internal/errdefs"
	"learninghour/internal/logging"
	"learninghour/internal/metrics"
)

const (
	// DefaultBaseURL is the public Miro API.
	DefaultBaseURL = "https://api.miro.com/v2"
	// AuthorizeEndpoint starts the Miro OAuth code flow.
	AuthorizeEndpoint = "https://miro.com/oauth/authorize"
	serviceName       = "miro"
	listPageSize      = 50
)

type Board struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ViewLink    string `json:"viewLink"`
	CreatedAt   string `json:"createdAt,omitempty"`
	ModifiedAt  string `json:"modifiedAt,omitempty"`
}

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Geometry struct {
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

// Item is the part of a created board item the builder keeps.
type Item struct {
	ID       string    `json:"id"`
	Type     string    `json:"type"`
	Position *Position `json:"position,omitempty"`
	Geometry *Geometry `json:"geometry,omitempty"`
}

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	Logger     logging.Logger
	Metrics    *metrics.Metrics
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     logging.Logger
	metrics    *metrics.Metrics
}

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
		c.httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	if c.logger == nil {
		c.logger = logging.Discard()
	}
	return c
}

// CreateBoard creates a board that any editor can collaborate on and anyone
// with the link can copy.
func (c *Client) CreateBoard(ctx context.Context, name, description string) (Board, error) {
	body := map[string]any{
		"name":        name,
		"description": description,
		"policy": map[string]any{
			"permissionsPolicy": map[string]string{
				"collaborationToolsStartAccess": "all_editors",
				"copyAccess":                    "anyone",
				"sharingAccess":                 "team_members_with_editing_rights",
			},
		},
	}
	var board Board
	err := c.doJSON(ctx, http.MethodPost, "create_board", "/boards", body, &board)
	return board, err
}

// ListBoards returns the first page of boards visible to the token.
func (c *Client) ListBoards(ctx context.Context) ([]Board, error) {
	var page struct {
		Data  []Board `json:"data"`
		Total int     `json:"total"`
	}
	path := "/boards?limit=" + strconv.Itoa(listPageSize)
	if err := c.doJSON(ctx, http.MethodGet, "list_boards", path, nil, &page); err != nil {
		return nil, err
	}
	return page.Data, nil
}

func (c *Client) GetBoard(ctx context.Context, boardID string) (Board, error) {
	if boardID == "" {
		return Board{}, errdefs.InvalidInput("board id is required")
	}
	var board Board
	err := c.doJSON(ctx, http.MethodGet, "get_board", "/boards/"+url.PathEscape(boardID), nil, &board)
	return board, err
}

// AuthorizationURL builds the OAuth authorization link a user visits to
// grant this application access to their boards.
func AuthorizationURL(clientID, redirectURI, state string) (string, error) {
	if clientID == "" {
		return "", errdefs.NotConfigured("Miro OAuth not configured: set MIRO_CLIENT_ID")
	}
	if redirectURI == "" {
		return "", errdefs.InvalidInput("redirectUri is required")
	}
	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", clientID)
	q.Set("redirect_uri", redirectURI)
	if state != "" {
		q.Set("state", state)
	}
	return AuthorizeEndpoint + "?" + q.Encode(), nil
}

func (c *Client) itemPath(boardID, kind string) string {
	return "/boards/" + url.PathEscape(boardID) + "/" + kind
}

func (c *Client) doJSON(ctx context.Context, method, operation, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", operation, err)
		}
		body = bytes.NewReader(payload)
	}
	return c.do(ctx, method, operation, path, body, "application/json", out)
}

// do sends one authenticated request and decodes a JSON reply into out.
func (c *Client) do(ctx context.Context, method, operation, path string, body io.Reader, contentType string, out any) error {
	if c.token == "" {
		return errdefs.NotConfigured("Miro integration not configured: set MIRO_ACCESS_TOKEN")
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", operation, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveUpstream(serviceName, operation, "error", started)
		return errdefs.Upstream("miro "+operation, err)
	}
	defer resp.Body.Close()
	c.metrics.ObserveUpstream(serviceName, operation, strconv.Itoa(resp.StatusCode), started)

	if resp.StatusCode >= http.StatusBadRequest {
		return errdefs.Upstream("miro "+operation, statusError(resp))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errdefs.Upstream("miro "+operation, fmt.Errorf("decode response: %w", err))
	}
	c.logger.Debug("whiteboard request", "operation", operation, "path", path, "status", resp.StatusCode)
	return nil
}

// statusError reads Miro's error envelope when there is one.
func statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	var envelope struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &envelope) == nil && envelope.Message != "" {
		return fmt.Errorf("status %d: %s: %s", resp.StatusCode, envelope.Code, envelope.Message)
	}
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return errors.New("status " + strconv.Itoa(resp.StatusCode))
	}
	return fmt.Errorf("status %d: %s", resp.StatusCode, text)
}
