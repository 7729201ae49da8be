// Package api implements the HTTP client for the remote ensemble API. All
// transport and authentication errors are converted to rich errors at this
// boundary; nothing above it sees a raw network failure.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/google/uuid"

	"github.com/ensemblekit/atril/internal/session"
)

const (
	handshakePath = "/handshake"
	loginPath     = "/login"
	registerPath  = "/register"
	logoutPath    = "/logout"
	mePath        = "/me"
	usersPath     = "/usuarios"
	messagesPath  = "/mensajes"
)

// csrfHeader carries the anti-forgery handshake token on login and register.
const csrfHeader = "X-CSRF-Token"

// DefaultTimeout is the per-request timeout applied when no custom HTTP
// client is supplied.
const DefaultTimeout = 10 * time.Second

// TokenSource supplies the current bearer credential. The session manager is
// the sole implementation in production; it keeps exclusive ownership of the
// credential.
type TokenSource interface {
	Credential() (string, bool)
}

// Client talks to the remote ensemble API.
type Client struct {
	base   *url.URL
	http   *http.Client
	tokens TokenSource
	logger session.Logger
	debug  bool
}

// New returns a Client for the given base URL.
func New(baseURL string) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid server URL").
			WithMetadata(map[string]any{"url": baseURL})
	}

	return &Client{
		base:   base,
		http:   &http.Client{Timeout: DefaultTimeout},
		logger: noopLogger{},
	}, nil
}

// WithTokenSource wires the credential owner into the transport.
func (c *Client) WithTokenSource(tokens TokenSource) *Client {
	c.tokens = tokens
	return c
}

func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.http = hc
	}
	return c
}

func (c *Client) WithLogger(logger session.Logger) *Client {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// WithDebug enables pretty-printed dumps of response payloads.
func (c *Client) WithDebug(debug bool) *Client {
	c.debug = debug
	return c
}

// Handshake obtains the anti-forgery token required before login/register.
func (c *Client) Handshake(ctx context.Context) (string, error) {
	resp, err := c.do(ctx, http.MethodGet, handshakePath, "", nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return "", unexpectedStatus(handshakePath, resp.StatusCode)
	}

	token := resp.Header.Get(csrfHeader)
	if token == "" {
		return "", goerrors.New("handshake response carried no anti-forgery token", goerrors.CategoryInternal).
			WithTextCode("MALFORMED_RESPONSE")
	}

	return token, nil
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a bearer token. A missing handshake token
// fails locally, before any network traffic.
func (c *Client) Login(ctx context.Context, handshake, email, password string) (string, error) {
	if handshake == "" {
		return "", session.ErrHandshakeRequired
	}

	body := map[string]string{"email": email, "password": password}
	resp, err := c.do(ctx, http.MethodPost, loginPath, handshake, body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return "", session.ErrInvalidCredentials
	case http.StatusUnprocessableEntity:
		return "", validationError(resp.Body)
	default:
		return "", unexpectedStatus(loginPath, resp.StatusCode)
	}

	var payload loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil || payload.Token == "" {
		return "", malformedResponse(loginPath, err)
	}

	return payload.Token, nil
}

// Register submits a new-account request. Duplicate emails surface as
// session.ErrDuplicateEmail; other 422 responses as generic validation errors.
func (c *Client) Register(ctx context.Context, handshake string, req session.RegisterRequest) error {
	if handshake == "" {
		return session.ErrHandshakeRequired
	}

	resp, err := c.do(ctx, http.MethodPost, registerPath, handshake, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusCreated, http.StatusOK:
		return nil
	case http.StatusUnprocessableEntity:
		verr := validationError(resp.Body)
		if fieldInError(verr, "email") {
			return session.ErrDuplicateEmail
		}
		return verr
	default:
		return unexpectedStatus(registerPath, resp.StatusCode)
	}
}

// Logout invalidates the credential server-side. Best-effort semantics live
// in the session manager; this simply reports the outcome.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodPost, logoutPath, "", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return unexpectedStatus(logoutPath, resp.StatusCode)
	}
	return nil
}

type accountPayload struct {
	ID            string `json:"id"`
	DisplayName   string `json:"displayName"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	AccountStatus string `json:"accountStatus"`
}

// Me resolves the current credential into an identity record.
func (c *Client) Me(ctx context.Context) (session.Identity, error) {
	resp, err := c.do(ctx, http.MethodGet, mePath, "", nil)
	if err != nil {
		return session.Identity{}, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return session.Identity{}, session.ErrCredentialRejected
	default:
		return session.Identity{}, unexpectedStatus(mePath, resp.StatusCode)
	}

	var payload accountPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return session.Identity{}, malformedResponse(mePath, err)
	}

	if c.debug {
		c.logger.Debug("me response: %s", print.MaybePrettyJSON(payload))
	}

	return payload.toIdentity()
}

func (p accountPayload) toIdentity() (session.Identity, error) {
	id, err := uuid.Parse(p.ID)
	if err != nil {
		return session.Identity{}, malformedResponse(mePath, err)
	}

	return session.Identity{
		ID:          id,
		DisplayName: p.DisplayName,
		Email:       p.Email,
		Role:        p.Role,
		Status:      p.AccountStatus,
	}, nil
}

// PendingUsers counts accounts awaiting approval. Admin-only endpoint; the
// collection is filtered client-side by status.
func (c *Client) PendingUsers(ctx context.Context) (int, error) {
	resp, err := c.do(ctx, http.MethodGet, usersPath, "", nil)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return 0, session.ErrCredentialRejected
	default:
		return 0, unexpectedStatus(usersPath, resp.StatusCode)
	}

	var accounts []accountPayload
	if err := json.NewDecoder(resp.Body).Decode(&accounts); err != nil {
		return 0, malformedResponse(usersPath, err)
	}

	count := 0
	for _, a := range accounts {
		if a.AccountStatus == session.StatusPending {
			count++
		}
	}
	return count, nil
}

type messagePayload struct {
	ID          string     `json:"id"`
	RecipientID string     `json:"recipientId"`
	ReadAt      *time.Time `json:"readAt"`
}

// UnreadMessages counts messages addressed to recipient not yet marked read.
func (c *Client) UnreadMessages(ctx context.Context, recipient uuid.UUID) (int, error) {
	resp, err := c.do(ctx, http.MethodGet, messagesPath, "", nil)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return 0, session.ErrCredentialRejected
	default:
		return 0, unexpectedStatus(messagesPath, resp.StatusCode)
	}

	var messages []messagePayload
	if err := json.NewDecoder(resp.Body).Decode(&messages); err != nil {
		return 0, malformedResponse(messagesPath, err)
	}

	count := 0
	for _, msg := range messages {
		if msg.ReadAt == nil && msg.RecipientID == recipient.String() {
			count++
		}
	}
	return count, nil
}

func (c *Client) do(ctx context.Context, method, path, handshake string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to encode request body")
		}
		reader = bytes.NewReader(data)
	}

	endpoint := c.base.JoinPath(path).String()
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to build request")
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if handshake != "" {
		req.Header.Set(csrfHeader, handshake)
	}
	if c.tokens != nil {
		if token, ok := c.tokens.Credential(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "request to ensemble API failed").
			WithMetadata(map[string]any{"path": path})
	}

	return resp, nil
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
