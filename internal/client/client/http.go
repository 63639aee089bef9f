package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/securepass/internal/common"
)

// HTTPClient talks to the SecurePass JSON API and keeps the bearer token of
// the current session in memory.
type HTTPClient struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

// NewHTTPClient returns a client for the API at baseURL.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type authRequest struct {
	UserName string `json:"username"`
	Password string `json:"password"`
}

type credentialRequest struct {
	Site     string `json:"site"`
	UserName string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (c *HTTPClient) Register(ctx context.Context, userName string, password []byte) error {
	return c.authenticate(ctx, "/auth/register", userName, password)
}

func (c *HTTPClient) Login(ctx context.Context, userName string, password []byte) error {
	return c.authenticate(ctx, "/auth/login", userName, password)
}

// Logout forgets the token. Tokens are stateless, so nothing is sent.
func (c *HTTPClient) Logout() {
	c.setToken("")
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", "", nil, nil)
}

func (c *HTTPClient) List(ctx context.Context) ([]Credential, error) {
	var out []Credential
	if err := c.authed(ctx, http.MethodGet, "/vault", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) Add(ctx context.Context, cred Credential) (Credential, error) {
	in := credentialRequest{Site: cred.Site, UserName: cred.UserName, Password: cred.Password}
	var out Credential
	if err := c.authed(ctx, http.MethodPost, "/vault", in, &out); err != nil {
		return Credential{}, err
	}
	return out, nil
}

func (c *HTTPClient) Delete(ctx context.Context, id string) error {
	return c.authed(ctx, http.MethodDelete, "/vault/"+url.PathEscape(id), nil, nil)
}

func (c *HTTPClient) Backup(ctx context.Context) (Backup, error) {
	var out Backup
	if err := c.authed(ctx, http.MethodPost, "/vault/backup", struct{}{}, &out); err != nil {
		return Backup{}, err
	}
	return out, nil
}

func (c *HTTPClient) authenticate(ctx context.Context, path, userName string, password []byte) error {
	var resp tokenResponse
	// a held token may be stale; sign-in calls never carry one
	if err := c.do(ctx, http.MethodPost, path, "", authRequest{UserName: userName, Password: string(password)}, &resp); err != nil {
		return err
	}
	c.setToken(resp.Token)
	return nil
}

func (c *HTTPClient) authed(ctx context.Context, method, path string, in, out any) error {
	token := c.currentToken()
	if token == "" {
		return ErrNotLoggedIn
	}
	return c.do(ctx, method, path, token, in, out)
}

// do sends one JSON request. token is attached as a bearer credential when
// not empty.
func (c *HTTPClient) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(apiErr)

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrUnauthorized, apiErr.Message)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, apiErr.Message)
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return fmt.Errorf("%w: %s", ErrUnavailable, apiErr.Error())
	}
	return apiErr
}

func (c *HTTPClient) setToken(t string) {
	c.mu.Lock()
	c.token = t
	c.mu.Unlock()
}

func (c *HTTPClient) currentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}
