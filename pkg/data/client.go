package data

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/matzehuels/locuszoom/pkg/cache"
	"github.com/matzehuels/locuszoom/pkg/errors"
	"github.com/matzehuels/locuszoom/pkg/observability"
)

// Client is the HTTP transport shared by remote sources. Responses that
// carry a JSON "data" member are cached by namespace and URL when a cache is configured.
type Client struct {
	http    *http.Client
	cache   cache.Cache
	keyer   cache.Keyer
	ttl     time.Duration
	headers map[string]string
}

// NewClient creates a Client. A nil cache disables caching; a zero ttl keeps
// entries until they are cleared. Headers are applied to every request.
func NewClient(c cache.Cache, ttl time.Duration, headers map[string]string) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Client{
		http:    &http.Client{},
		cache:   c,
		keyer:   cache.NewDefaultKeyer(),
		ttl:     ttl,
		headers: headers,
	}
}

// WithKeyer replaces the cache key scheme.
func (c *Client) WithKeyer(k cache.Keyer) *Client {
	c.keyer = k
	return c
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.http = h
	return c
}

// Fetch GETs rawURL and returns the body. Status codes other than 200 are
// TRANSPORT_ERROR; an expired context deadline is TIMEOUT. A 200 body that
// is not a portal envelope is rejected before it reaches the cache.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	ns := NamespaceFromContext(ctx)
	key := c.keyer.ResponseKey(ns, rawURL)
	if data, ok, _ := c.cache.Get(ctx, key); ok {
		observability.Cache().OnCacheHit(ctx, "response")
		return data, nil
	}
	observability.Cache().OnCacheMiss(ctx, "response")

	observability.Source().OnFetchStart(ctx, ns, rawURL)
	start := time.Now()
	data, status, err := c.doRequest(ctx, rawURL)
	observability.Source().OnFetchComplete(ctx, ns, rawURL, status, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	if _, err := envelope(data); err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "GET %s", redact(rawURL))
	}

	if err := c.cache.Set(ctx, key, data, c.ttl); err == nil {
		observability.Cache().OnCacheSet(ctx, "response", len(data))
	}
	return data, nil
}

func (c *Client) doRequest(ctx context.Context, rawURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, errors.Wrap(errors.ErrCodeConfig, err, "invalid source url")
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, transportError(ctx, err, rawURL)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, resp.StatusCode, errors.Wrap(errors.ErrCodeTransport, err, "GET %s", redact(rawURL))
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, transportError(ctx, err, rawURL)
	}
	return data, resp.StatusCode, nil
}

func transportError(ctx context.Context, err error, rawURL string) error {
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errors.Wrap(errors.ErrCodeTimeout, err, "GET %s timed out", redact(rawURL))
	}
	return errors.Wrap(errors.ErrCodeTransport, err, "GET %s", redact(rawURL))
}

func checkStatus(code int) error {
	if code == http.StatusOK {
		return nil
	}
	return fmt.Errorf("status %d %s", code, http.StatusText(code))
}

// redact drops the query so filters do not flood error messages.
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.RawQuery = ""
	return u.String()
}

type namespaceKey struct{}

// WithNamespace tags ctx with the namespace being fetched.
func WithNamespace(ctx context.Context, ns string) context.Context {
	return context.WithValue(ctx, namespaceKey{}, ns)
}

// NamespaceFromContext returns the namespace set by [WithNamespace].
func NamespaceFromContext(ctx context.Context) string {
	ns, _ := ctx.Value(namespaceKey{}).(string)
	return ns
}
