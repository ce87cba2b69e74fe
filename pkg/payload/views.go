package payload

import (
	"encoding/base64"
	"time"

	"github.com/stubkit/stubd/pkg/requestlog"
	"github.com/stubkit/stubd/pkg/stub"
)

// StubView is the read-only JSON projection of a registered stub. Criteria
// fields render as predicate descriptions, e.g. `$eq("/users")`.
type StubView struct {
	ID        string            `json:"id"`
	CreatedAt time.Time         `json:"createdAt"`
	Rules     map[string]string `json:"rules"`
	Response  *ResponsePayload  `json:"response,omitempty"`
	Proxy     *ProxyPayload     `json:"proxy,omitempty"`
	CallCount int               `json:"callCount"`
	MaxCalls  int               `json:"maxCalls"`
}

// NewStubView projects a stub for listing.
func NewStubView(s *stub.Stub) StubView {
	view := StubView{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		Rules:     describeRules(s.Rules),
		CallCount: s.CallCount,
		MaxCalls:  s.MaxCalls,
	}
	if s.Action.Response != nil {
		view.Response = &ResponsePayload{
			StatusCode: s.Action.Response.StatusCode,
			Headers:    s.Action.Response.Headers,
			Body:       s.Action.Response.Body,
		}
	}
	if s.Action.Proxy != nil {
		view.Proxy = &ProxyPayload{
			URL:            s.Action.Proxy.URL,
			Headers:        s.Action.Proxy.Headers,
			TimeoutSeconds: s.Action.Proxy.TimeoutSeconds,
		}
	}
	return view
}

func describeRules(r stub.Rules) map[string]string {
	desc := map[string]string{}
	if r.Method != nil {
		desc["method"] = r.Method.String()
	}
	if r.Path != nil {
		desc["path"] = r.Path.String()
	}
	if r.Host != nil {
		desc["host"] = r.Host.String()
	}
	if r.Headers != nil {
		desc["headers"] = r.Headers.String()
	}
	if r.Query != nil {
		desc["query"] = r.Query.String()
	}
	if r.Body != nil {
		desc["body"] = r.Body.String()
	}
	return desc
}

// RequestView is the JSON projection of one recorded request. Binary
// bodies are base64-encoded and flagged through BodyEncoding.
type RequestView struct {
	ID           string            `json:"id"`
	Timestamp    time.Time         `json:"timestamp"`
	Method       string            `json:"method"`
	Path         string            `json:"path"`
	Host         string            `json:"host"`
	Headers      map[string]string `json:"headers"`
	Query        map[string]string `json:"query"`
	Body         string            `json:"body"`
	BodyEncoding string            `json:"bodyEncoding,omitempty"`
}

// NewRequestView projects one request log entry.
func NewRequestView(e *requestlog.Entry) RequestView {
	view := RequestView{
		ID:        e.ID,
		Timestamp: e.Timestamp,
		Method:    e.Request.Method,
		Path:      e.Request.Path,
		Host:      e.Request.Host,
		Headers:   e.Request.Headers,
		Query:     e.Request.Query,
	}
	if e.Request.Body.IsBinary() {
		view.Body = base64.StdEncoding.EncodeToString(e.Request.Body.Bytes())
		view.BodyEncoding = "base64"
	} else {
		view.Body = e.Request.Body.Text()
	}
	return view
}

// AssertionResult is the response body for POST /__stub__/assert.
type AssertionResult struct {
	Passed bool `json:"passed"`
	Count  int  `json:"count"`
}
