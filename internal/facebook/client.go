// Package facebook is a small Graph API client: it reads connections and
// single objects on behalf of an access token and decodes Graph errors.
package facebook

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/oauth2"

	"github.com/metrilive/internal/metrics"
)

const (
	defaultBaseURL  = "https://graph.facebook.com"
	defaultVersion  = "v19.0"
	defaultTimeout  = 30 * time.Second
	defaultMaxPages = 10
	maxResponseSize = 4 << 20
)

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	BaseURL  string
	Version  string
	Timeout  time.Duration
	MaxPages int
	// Transport is the base round tripper under the bearer-token transport.
	Transport http.RoundTripper
}

// Client talks to the Graph API. It holds no token; every call receives the
// credential to use, so one Client serves all users.
type Client struct {
	baseURL   string
	version   string
	timeout   time.Duration
	maxPages  int
	transport http.RoundTripper
}

// NewClient returns a Graph API client.
func NewClient(opts Options) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"),
		version:   strings.Trim(strings.TrimSpace(opts.Version), "/"),
		timeout:   opts.Timeout,
		maxPages:  opts.MaxPages,
		transport: opts.Transport,
	}
	if c.baseURL == "" {
		c.baseURL = defaultBaseURL
	}
	if c.version == "" {
		c.version = defaultVersion
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	if c.maxPages <= 0 {
		c.maxPages = defaultMaxPages
	}
	if c.transport == nil {
		c.transport = http.DefaultTransport
	}
	return c
}

type connectionResponse struct {
	Data   []json.RawMessage `json:"data"`
	Paging struct {
		Next string `json:"next"`
	} `json:"paging"`
}

type errorEnvelope struct {
	Error *struct {
		Message   string `json:"message"`
		Type      string `json:"type"`
		Code      int    `json:"code"`
		Subcode   int    `json:"error_subcode"`
		FBTraceID string `json:"fbtrace_id"`
	} `json:"error"`
}

// FetchConnection reads every node of a connection such as "me/accounts" or
// "{page-id}/live_videos" into out, which must point to a slice. paging.next
// cursors are followed up to the configured page limit.
func (c *Client) FetchConnection(ctx context.Context, token, path string, out any) error {
	next := c.endpoint(path, nil)
	items := make([]json.RawMessage, 0)

	for page := 0; next != "" && page < c.maxPages; page++ {
		body, err := c.get(ctx, token, next, "connection")
		if err != nil {
			return err
		}

		var resp connectionResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
		items = append(items, resp.Data...)

		next = ""
		if resp.Paging.Next != "" && c.sameHost(resp.Paging.Next) {
			next = resp.Paging.Next
		}
	}

	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, item := range items {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(item)
	}
	buf.WriteByte(']')

	if err := json.Unmarshal(buf.Bytes(), out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// FetchObject reads a single node into out. fields, when non-empty, is sent
// as the "fields" projection. An empty or null body yields ErrEmptyObject.
func (c *Client) FetchObject(ctx context.Context, token, id string, fields []string, out any) error {
	query := url.Values{}
	if len(fields) > 0 {
		query.Set("fields", strings.Join(fields, ","))
	}

	body, err := c.get(ctx, token, c.endpoint(id, query), "object")
	if err != nil {
		return err
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte("false")) {
		return ErrEmptyObject
	}

	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("decode %s: %w", id, err)
	}
	return nil
}

func (c *Client) endpoint(path string, query url.Values) string {
	endpoint := fmt.Sprintf("%s/%s/%s", c.baseURL, c.version, strings.TrimLeft(path, "/"))
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	return endpoint
}

// sameHost keeps paging cursors from sending the token to another host.
func (c *Client) sameHost(raw string) bool {
	next, err := url.Parse(raw)
	if err != nil {
		return false
	}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(next.Host, base.Host)
}

func (c *Client) httpClient(token string) *http.Client {
	return &http.Client{
		Timeout: c.timeout,
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
			Base:   c.transport,
		},
	}
}

func (c *Client) get(ctx context.Context, token, endpoint, kind string) ([]byte, error) {
	started := time.Now()
	defer metrics.RecordGraphRequest(kind, started)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create graph request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "metrilive/1.0")

	resp, err := c.httpClient(token).Do(req)
	if err != nil {
		metrics.GraphRequestErrors.WithLabelValues(kind, "transport").Inc()
		return nil, fmt.Errorf("graph request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		metrics.GraphRequestErrors.WithLabelValues(kind, "transport").Inc()
		return nil, fmt.Errorf("read graph response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		gerr := decodeGraphError(resp.StatusCode, resp.Status, body)
		metrics.GraphRequestErrors.WithLabelValues(kind, strconv.Itoa(gerr.Code)).Inc()
		return nil, gerr
	}

	return body, nil
}

func decodeGraphError(status int, statusText string, body []byte) *GraphError {
	gerr := &GraphError{Status: status, Message: statusText}

	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Error == nil {
		return gerr
	}

	gerr.Code = envelope.Error.Code
	gerr.Subcode = envelope.Error.Subcode
	gerr.Type = envelope.Error.Type
	gerr.TraceID = envelope.Error.FBTraceID
	if msg := strings.TrimSpace(envelope.Error.Message); msg != "" {
		gerr.Message = msg
	}
	return gerr
}
