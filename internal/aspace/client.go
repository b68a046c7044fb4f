// Package aspace is a minimal ArchivesSpace REST client covering session
// login, record retrieval, and accept_children container moves.
package aspace

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/archival-ops/aspace-reorder/internal/domain"
)

const sessionHeader = "X-ArchivesSpace-Session"

// Client talks to one ArchivesSpace backend for one repository.
// The session credential is set once by Login and read-only afterwards.
type Client struct {
	baseURL    string
	username   string
	password   string
	repository int
	httpClient *http.Client
	logger     *slog.Logger
	session    string
}

// Options configures a Client
type Options struct {
	BaseURL    string
	Username   string
	Password   string
	Repository int
	Timeout    time.Duration
	Logger     *slog.Logger
}

// New creates a Client; it does not authenticate
func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		username:   opts.Username,
		password:   opts.Password,
		repository: opts.Repository,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Repository returns the repository number all calls are scoped to
func (c *Client) Repository() int { return c.repository }

// Session returns the current session token, empty before Login
func (c *Client) Session() string { return c.session }

type loginResponse struct {
	Session string `json:"session"`
}

// Login authenticates and stores the session token for subsequent calls
func (c *Client) Login(ctx context.Context) error {
	u := fmt.Sprintf("%s/users/%s/login?password=%s",
		c.baseURL, url.PathEscape(c.username), url.QueryEscape(c.password))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, nil)
	if err != nil {
		return &AuthError{Username: c.username, Reason: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &AuthError{Username: c.username, Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &AuthError{Username: c.username, Reason: fmt.Sprintf("login returned %d", resp.StatusCode)}
	}

	var lr loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return &AuthError{Username: c.username, Reason: fmt.Sprintf("invalid login response: %v", err)}
	}
	if lr.Session == "" {
		return &AuthError{Username: c.username, Reason: "no session token in login response"}
	}

	c.session = lr.Session
	c.logger.Info("authenticated with ArchivesSpace", "user", c.username)
	return nil
}

// GetRecord retrieves a record by type and id
func (c *Client) GetRecord(ctx context.Context, recordType domain.RecordType, id int) (*Record, error) {
	if c.session == "" {
		return nil, ErrNoSession
	}

	u := fmt.Sprintf("%s/repositories/%d/%s/%d", c.baseURL, c.repository, recordType, id)
	body, err := c.do(ctx, http.MethodGet, u, string(recordType), id)
	if err != nil {
		return nil, err
	}

	var rec Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, &DecodeError{URL: u, Err: err}
	}

	c.logger.Debug("retrieved record", "type", recordType, "id", id)
	return &rec, nil
}

// ObjectURI builds the repository-scoped URI of an archival object
func (c *Client) ObjectURI(objectID int) string {
	return fmt.Sprintf("/repositories/%d/archival_objects/%d", c.repository, objectID)
}

// AcceptChildren places the given child URIs under a parent starting at
// position. children[] is repeatable; the first child lands at position
// and the rest follow it.
func (c *Client) AcceptChildren(ctx context.Context, parent domain.Parent, childURIs []string, position int) (json.RawMessage, error) {
	if c.session == "" {
		return nil, ErrNoSession
	}

	params := url.Values{}
	for _, child := range childURIs {
		params.Add("children[]", child)
	}
	params.Set("position", strconv.Itoa(position))

	u := fmt.Sprintf("%s/repositories/%d/%s/%d/accept_children?%s",
		c.baseURL, c.repository, parent.Type, parent.ID, params.Encode())

	return c.do(ctx, http.MethodPost, u, string(parent.Type), parent.ID)
}

// MoveObject moves a single archival object to position under parent
func (c *Client) MoveObject(ctx context.Context, parent domain.Parent, objectID, position int) (json.RawMessage, error) {
	return c.AcceptChildren(ctx, parent, []string{c.ObjectURI(objectID)}, position)
}

// do executes an authenticated request and maps failures onto the error
// taxonomy. recordType/id only feed NotFoundError messages.
func (c *Client) do(ctx context.Context, method, u, recordType string, id int) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return nil, &TransportError{URL: u, Err: err}
	}
	req.Header.Set(sessionHeader, c.session)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{URL: u, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: u, Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, &NotFoundError{Type: recordType, ID: id}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &APIError{StatusCode: resp.StatusCode, URL: u, Body: snippet(body)}
	}

	if !json.Valid(body) {
		return nil, &DecodeError{URL: u, Err: fmt.Errorf("response is not valid JSON")}
	}
	return json.RawMessage(body), nil
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
