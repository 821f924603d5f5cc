// Package mgmt talks to the systems-management API: listing servers in a
// group, executing a script against a group, and reading action status.
package mgmt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rileyhilliard/rollout/internal/logger"
)

// Client is the subset of the management API rollout needs.
type Client interface {
	ListServers(ctx context.Context, group string) ([]Server, error)
	ExecuteScript(ctx context.Context, scriptID int, group string) (Action, error)
	ListActions(ctx context.Context, filter ActionFilter) ([]Action, error)
}

// Header names carrying the API credentials.
const (
	HeaderKey    = "X-Api-Key"
	HeaderSecret = "X-Api-Secret"
)

// maxBodySize caps how much of a response body is read.
const maxBodySize = 10 << 20

// Options configures an HTTPClient.
type Options struct {
	BaseURI string
	Key     string
	Secret  string

	// Optional TLS client certificate and custom CA bundle (PEM paths).
	CertFile string
	KeyFile  string
	CAFile   string

	// Timeout bounds each request. Zero means no timeout.
	Timeout time.Duration

	Logger logger.Logger
}

// HTTPClient implements Client over HTTP/JSON.
type HTTPClient struct {
	base   *url.URL
	key    string
	secret string
	http   *http.Client
	log    logger.Logger
}

var _ Client = (*HTTPClient)(nil)

// New builds an HTTPClient, loading any TLS material up front so bad
// certificate paths fail before anything is dispatched.
func New(opts Options) (*HTTPClient, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURI, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base URI: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base URI %q must include scheme and host", opts.BaseURI)
	}

	tlsConfig, err := buildTLSConfig(opts.CertFile, opts.KeyFile, opts.CAFile)
	if err != nil {
		return nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if tlsConfig != nil {
		transport.TLSClientConfig = tlsConfig
	}

	log := opts.Logger
	if log == nil {
		log = logger.Noop()
	}

	return &HTTPClient{
		base:   base,
		key:    opts.Key,
		secret: opts.Secret,
		http: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,
		},
		log: log,
	}, nil
}

// ListServers returns every server tagged with group.
func (c *HTTPClient) ListServers(ctx context.Context, group string) ([]Server, error) {
	q := url.Values{}
	q.Set("group", group)

	var out envelope[[]Server]
	if err := c.do(ctx, http.MethodGet, "/api/servers", q, nil, &out); err != nil {
		return nil, err
	}
	for i, s := range out.Data {
		if s.ID == 0 {
			return nil, fmt.Errorf("server at index %d has no id: %w", i, ErrMalformed)
		}
	}
	return out.Data, nil
}

// ExecuteScript starts scriptID against group and returns the parent action.
// Every call starts a new run.
func (c *HTTPClient) ExecuteScript(ctx context.Context, scriptID int, group string) (Action, error) {
	path := "/api/scripts/" + strconv.Itoa(scriptID) + "/execute"

	var out envelope[Action]
	if err := c.do(ctx, http.MethodPost, path, nil, executeRequest{Group: group}, &out); err != nil {
		return Action{}, err
	}
	if out.Data.ID == 0 {
		return Action{}, fmt.Errorf("execute response has no action id: %w", ErrMalformed)
	}
	return out.Data, nil
}

// ListActions returns the actions matching filter.
func (c *HTTPClient) ListActions(ctx context.Context, filter ActionFilter) ([]Action, error) {
	q := url.Values{}
	switch {
	case filter.ID != 0:
		q.Set("id", strconv.Itoa(filter.ID))
	case filter.ParentID != 0:
		q.Set("parent_id", strconv.Itoa(filter.ParentID))
	default:
		return nil, fmt.Errorf("action filter needs an id or a parent id")
	}

	var out envelope[[]Action]
	if err := c.do(ctx, http.MethodGet, "/api/actions", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	u := *c.base
	u.Path = c.base.Path + path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(HeaderKey, c.key)
	req.Header.Set(HeaderSecret, c.secret)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, path, err)
	}
	c.log.Debug("%s %s -> %d (%s)", method, u.RequestURI(), resp.StatusCode, time.Since(start).Round(time.Millisecond))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: string(data)}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: %v: %w", method, path, err, ErrMalformed)
	}
	return nil
}
