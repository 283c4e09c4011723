package issuer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	neturl "net/url"

	"github.com/viant/afs/url"
	"github.com/viant/authsession/credential"
	"github.com/viant/authsession/schema"
	"golang.org/x/oauth2"
)

// DefaultBaseURL is the credential-issuing API root.
const DefaultBaseURL = "http://localhost:8000/api"

const (
	registerPath = "auth/register"
	loginPath    = "auth/login"
	refreshPath  = "auth/refresh"
	logoutPath   = "auth/logout"
	profilePath  = "auth/profile"
)

type failure interface {
	Failure(status int) error
}

// Doer sends an HTTP request; *http.Client implements it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the credential-issuing endpoint. Its HTTP client keeps
// the out-of-band refresh cookie in a cookie jar and must not go through
// the session interceptor.
type Client struct {
	baseURL    string
	httpClient *http.Client
	strict     bool
	logger     *slog.Logger
}

// BaseURL returns the API root
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Register creates an account and returns its first access token
func (c *Client) Register(ctx context.Context, form *schema.RegisterForm) (*oauth2.Token, error) {
	return c.issue(ctx, registerPath, form)
}

// Login exchanges credentials for an access token
func (c *Client) Login(ctx context.Context, form *schema.LoginForm) (*oauth2.Token, error) {
	return c.issue(ctx, loginPath, form)
}

// Refresh renews the access token using the refresh cookie. A 401 means
// there is no session to renew.
func (c *Client) Refresh(ctx context.Context) (*oauth2.Token, error) {
	return c.issue(ctx, refreshPath, nil)
}

// Logout ends the remote session. cred may be nil.
func (c *Client) Logout(ctx context.Context, cred *credential.Credential) error {
	req, err := c.newRequest(ctx, http.MethodPost, logoutPath, nil)
	if err != nil {
		return err
	}
	if cred != nil {
		cred.Token.SetAuthHeader(req)
	}
	envelope := &schema.Response[json.RawMessage]{}
	return c.do(c.httpClient, req, envelope)
}

// Profile loads the authenticated user through doer, normally the
// session's intercepted client.
func (c *Client) Profile(ctx context.Context, doer Doer) (*schema.Profile, error) {
	req, err := c.newRequest(ctx, http.MethodGet, profilePath, nil)
	if err != nil {
		return nil, err
	}
	envelope := &schema.Response[schema.Profile]{}
	if err = c.do(doer, req, envelope); err != nil {
		return nil, err
	}
	return &envelope.Data, nil
}

func (c *Client) issue(ctx context.Context, path string, body interface{}) (*oauth2.Token, error) {
	req, err := c.newRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, err
	}
	envelope := &schema.Response[schema.AuthData]{}
	if err = c.do(c.httpClient, req, envelope); err != nil {
		return nil, err
	}
	if envelope.Data.AccessToken == "" {
		return nil, schema.NewError(schema.ErrRejected, http.StatusOK, "response did not carry an access token")
	}
	token, err := credential.Decode(envelope.Data.AccessToken)
	if err != nil {
		if c.strict {
			return nil, err
		}
		c.logger.Debug("access token without expiry metadata, proactive refresh disabled", "error", err)
	}
	return credential.WithUser(token, envelope.Data.User), nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body interface{}) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %v request: %w", path, err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, url.Join(c.baseURL, path), reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// do sends req and decodes the reply into envelope.
func (c *Client) do(doer Doer, req *http.Request, envelope failure) error {
	resp, err := doer.Do(req)
	if err != nil {
		if req.Context().Err() != nil {
			return req.Context().Err()
		}
		return classify(err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return schema.NewNetworkFailure(err)
	}
	decodeErr := error(nil)
	if len(bytes.TrimSpace(data)) > 0 {
		decodeErr = json.Unmarshal(data, envelope)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return envelope.Failure(resp.StatusCode)
	}
	if decodeErr != nil {
		return schema.NewError(schema.ErrRejected, resp.StatusCode, fmt.Sprintf("failed to decode response: %v", decodeErr))
	}
	return envelope.Failure(0)
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, options ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	ret := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
		logger:     slog.Default(),
	}
	for _, opt := range options {
		opt(ret)
	}
	return ret
}

// classify reports a transport error as a network failure unless the
// round tripper already classified it, e.g. as an ended session.
func classify(err error) error {
	cause := err
	var urlErr *neturl.Error
	if errors.As(err, &urlErr) {
		cause = urlErr.Err
	}
	var classified *schema.Error
	if errors.Is(cause, schema.ErrRefreshExhausted) || errors.As(cause, &classified) {
		return cause
	}
	return schema.NewNetworkFailure(err)
}
