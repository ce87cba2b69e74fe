package engine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/stubkit/stubd/pkg/stub"
)

// ProxyError wraps an upstream failure so the transport layer can map it to
// a 502 instead of a generic internal error.
type ProxyError struct {
	URL string
	Err error
}

func (e *ProxyError) Error() string {
	return fmt.Sprintf("proxy to %s failed: %v", e.URL, e.Err)
}

func (e *ProxyError) Unwrap() error { return e.Err }

// Proxy forwards recorded requests to upstream targets. It holds no
// per-request state and is safe for concurrent use.
type Proxy struct {
	client *http.Client
}

// NewProxy builds a Proxy. A nil client selects http.DefaultClient;
// per-stub timeouts are applied through the request context.
func NewProxy(client *http.Client) *Proxy {
	if client == nil {
		client = http.DefaultClient
	}
	return &Proxy{client: client}
}

// Forward replays req against the target and relays the upstream response.
// The original method, query parameters, and body are preserved; the
// target's extra headers are overlaid onto the request's headers, winning
// on collision. Network failures and timeouts return a *ProxyError.
func (p *Proxy) Forward(ctx context.Context, target *stub.ProxyTarget, req *stub.Request) (stub.Response, error) {
	timeout := time.Duration(target.TimeoutSeconds) * time.Second
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	upstream, err := http.NewRequestWithContext(ctx, req.Method, target.URL, bytes.NewReader(req.Body.Bytes()))
	if err != nil {
		return stub.Response{}, &ProxyError{URL: target.URL, Err: err}
	}

	for k, v := range req.Headers {
		upstream.Header.Set(k, v)
	}
	for k, v := range target.Headers {
		upstream.Header.Set(k, v)
	}

	q := upstream.URL.Query()
	for k, v := range req.Query {
		q.Set(k, v)
	}
	upstream.URL.RawQuery = q.Encode()

	resp, err := p.client.Do(upstream)
	if err != nil {
		return stub.Response{}, &ProxyError{URL: target.URL, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return stub.Response{}, &ProxyError{URL: target.URL, Err: err}
	}

	headers := make(map[string]string, len(resp.Header))
	for k := range resp.Header {
		headers[k] = resp.Header.Get(k)
	}

	return stub.Response{
		StatusCode: resp.StatusCode,
		Headers:    headers,
		Body:       body,
	}, nil
}
