package daktela

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/daktela/mcp-daktela/internal/auth"
	"github.com/daktela/mcp-daktela/internal/config"
)

const (
	requestTimeout  = 30 * time.Second
	sessionLifetime = time.Hour
	loginSlack      = 60 * time.Second
)

// Service hands out API clients bound to whichever credentials a request
// carries, falling back to the static configuration for trusted deployments.
type Service struct {
	rt    *config.Runtime
	cache *Cache
	http  *http.Client
}

func NewService(rt *config.Runtime, cache *Cache) *Service {
	return &Service{
		rt:    rt,
		cache: cache,
		http:  &http.Client{Timeout: requestTimeout},
	}
}

// ClientFor builds a client for one tool call. Per-call credentials from the
// request context win; otherwise the static configuration applies. With both
// a username and a token available, username+password wins so the session
// can be refreshed.
func (s *Service) ClientFor(ctx context.Context) (*Client, error) {
	creds, ok := auth.CredentialsFromContext(ctx)
	if !ok {
		static := s.rt.Daktela()
		creds = &auth.Credentials{
			URL:      static.URL,
			Username: static.Username,
			Password: static.Password,
			Token:    static.AccessToken,
		}
	}
	baseURL := strings.TrimRight(creds.URL, "/")
	if baseURL == "" {
		return nil, errors.New("Daktela credentials are not configured")
	}
	c := &Client{
		baseURL: baseURL,
		http:    s.http,
		cache:   s.cache,
	}
	switch {
	case creds.Username != "" && creds.Password != "":
		c.username = creds.Username
		c.password = creds.Password
		c.identity = baseURL + "|" + creds.Username
	case creds.Token != "":
		c.token = creds.Token
		c.identity = baseURL + "|" + creds.Token
	default:
		return nil, errors.New("Daktela credentials are not configured")
	}
	return c, nil
}

// Client talks to one Daktela instance as one account. Safe for concurrent
// use: tools that fan requests out across goroutines share the session
// token under the mutex.
type Client struct {
	baseURL  string
	username string
	password string
	identity string

	mu           sync.Mutex
	token        string
	refreshToken string
	tokenExpiry  time.Time

	http  *http.Client
	cache *Cache
}

// BaseURL returns the instance URL without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) endpointURL(endpoint string) string {
	return c.baseURL + "/api/v6/" + endpoint + ".json"
}

func (c *Client) recordURL(endpoint, name string) string {
	return c.baseURL + "/api/v6/" + endpoint + "/" + url.PathEscape(name) + ".json"
}

// authToken returns a token valid for the next request, logging in or
// refreshing the backend session as needed. Static-token clients return the
// configured token as is.
func (c *Client) authToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.username == "" {
		return c.token, nil
	}
	switch {
	case c.token == "":
		if err := c.login(ctx); err != nil {
			return "", err
		}
	case time.Now().After(c.tokenExpiry):
		if c.refreshToken == "" {
			if err := c.login(ctx); err != nil {
				return "", err
			}
		} else if err := c.refresh(ctx); err != nil {
			return "", err
		}
	}
	return c.token, nil
}

type loginResponse struct {
	Result struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	} `json:"result"`
}

// login exchanges username/password for a backend session token. Caller
// holds the lock.
func (c *Client) login(ctx context.Context) error {
	resp, err := c.sendLogin(ctx, http.MethodPost, map[string]string{
		"username": c.username,
		"password": c.password,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return apiError("login", resp.StatusCode)
	}
	body, err := decodeLogin(resp)
	if err != nil {
		return err
	}
	c.token = body.Result.AccessToken
	c.refreshToken = body.Result.RefreshToken
	c.tokenExpiry = time.Now().Add(sessionLifetime - loginSlack)
	return nil
}

// refresh renews the session. A rejected refresh token falls back to a full
// login; the backend may omit a new refresh token, in which case the old
// one stays valid.
func (c *Client) refresh(ctx context.Context) error {
	resp, err := c.sendLogin(ctx, http.MethodPut, map[string]string{
		"refreshToken": c.refreshToken,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return c.login(ctx)
	}
	body, err := decodeLogin(resp)
	if err != nil {
		return err
	}
	c.token = body.Result.AccessToken
	if body.Result.RefreshToken != "" {
		c.refreshToken = body.Result.RefreshToken
	}
	c.tokenExpiry = time.Now().Add(sessionLifetime - loginSlack)
	return nil
}

func (c *Client) sendLogin(ctx context.Context, method string, payload map[string]string) (*http.Response, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpointURL("login"), bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("daktela login: %w", err)
	}
	return resp, nil
}

func decodeLogin(resp *http.Response) (*loginResponse, error) {
	var body loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("daktela login: decode response: %w", err)
	}
	if body.Result.AccessToken == "" {
		return nil, errors.New("daktela login: no access token in response")
	}
	return &body, nil
}

// do performs an authenticated GET against the API.
func (c *Client) do(ctx context.Context, rawURL string, query url.Values) (*http.Response, error) {
	token, err := c.authToken(ctx)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	if query != nil {
		req.URL.RawQuery = query.Encode()
	}
	req.Header.Set("X-AUTH-TOKEN", token)
	return c.http.Do(req)
}

func apiError(endpoint string, status int) error {
	if status == http.StatusUnauthorized {
		return fmt.Errorf("daktela %s request failed: invalid or expired credentials (status 401)", endpoint)
	}
	return fmt.Errorf("daktela %s request failed: status %d", endpoint, status)
}

// ListResult is one page of records plus the backend's total count.
type ListResult struct {
	Data  []map[string]any `json:"data"`
	Total int              `json:"total"`
}

type listResponse struct {
	Result struct {
		Data  json.RawMessage `json:"data"`
		Total *int            `json:"total"`
	} `json:"result"`
}

// List fetches one page from a list endpoint. Unfiltered, unprojected pages
// of reference data are served from the cache when present.
func (c *Client) List(ctx context.Context, endpoint string, opts ListOptions) (*ListResult, error) {
	cacheable := len(opts.Filters) == 0 && len(opts.Fields) == 0
	var key string
	if cacheable {
		key = cacheKey(c.identity, endpoint, opts.Skip, opts.Take, opts.Sort, opts.SortDir)
		if cached, ok := c.cache.Get(ctx, endpoint, key); ok {
			return cached, nil
		}
	}

	resp, err := c.do(ctx, c.endpointURL(endpoint), buildQuery(opts))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, apiError(endpoint, resp.StatusCode)
	}
	var body listResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("daktela %s: decode response: %w", endpoint, err)
	}

	records := normalizeData(body.Result.Data)
	total := len(records)
	if body.Result.Total != nil {
		total = *body.Result.Total
	}
	result := &ListResult{Data: records, Total: total}

	if cacheable {
		c.cache.Put(ctx, endpoint, key, result)
	}
	return result, nil
}

// normalizeData flattens the two shapes list endpoints return: a JSON array
// of records, or an object keyed by record name. Keyed records come back in
// key order so pages render deterministically.
func normalizeData(raw json.RawMessage) []map[string]any {
	if len(raw) == 0 {
		return nil
	}
	var asList []map[string]any
	if err := json.Unmarshal(raw, &asList); err == nil {
		return asList
	}
	var asMap map[string]map[string]any
	if err := json.Unmarshal(raw, &asMap); err != nil {
		return nil
	}
	keys := make([]string, 0, len(asMap))
	for k := range asMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	records := make([]map[string]any, 0, len(asMap))
	for _, k := range keys {
		records = append(records, asMap[k])
	}
	return records
}

// Get fetches a single record by name. Missing records return (nil, nil) so
// tools can phrase their own not-found messages.
func (c *Client) Get(ctx context.Context, endpoint, name string) (map[string]any, error) {
	resp, err := c.do(ctx, c.recordURL(endpoint, name), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiError(endpoint, resp.StatusCode)
	}
	var body struct {
		Result map[string]any `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("daktela %s: decode response: %w", endpoint, err)
	}
	return body.Result, nil
}
