package payload

import (
	"encoding/json"
	"fmt"

	"github.com/stubkit/stubd/pkg/criteria"
	"github.com/stubkit/stubd/pkg/stub"
)

// RulesPayload carries the optional criteria fields of a stub or assertion.
// Each field accepts the criteria wire format (bare value or {"$kind": ...}).
type RulesPayload struct {
	Method  json.RawMessage `json:"method,omitempty"`
	Path    json.RawMessage `json:"path,omitempty"`
	Host    json.RawMessage `json:"host,omitempty"`
	Headers json.RawMessage `json:"headers,omitempty"`
	Query   json.RawMessage `json:"query,omitempty"`
	Body    json.RawMessage `json:"body,omitempty"`
}

// ToRules decodes every specified field into its criteria predicate.
func (p RulesPayload) ToRules() (stub.Rules, error) {
	var rules stub.Rules
	var err error

	if p.Method != nil {
		if rules.Method, err = criteria.DecodeString(p.Method); err != nil {
			return stub.Rules{}, fmt.Errorf("method: %w", err)
		}
	}
	if p.Path != nil {
		if rules.Path, err = criteria.DecodeString(p.Path); err != nil {
			return stub.Rules{}, fmt.Errorf("path: %w", err)
		}
	}
	if p.Host != nil {
		if rules.Host, err = criteria.DecodeString(p.Host); err != nil {
			return stub.Rules{}, fmt.Errorf("host: %w", err)
		}
	}
	if p.Headers != nil {
		if rules.Headers, err = criteria.DecodeMap(p.Headers); err != nil {
			return stub.Rules{}, fmt.Errorf("headers: %w", err)
		}
	}
	if p.Query != nil {
		if rules.Query, err = criteria.DecodeMap(p.Query); err != nil {
			return stub.Rules{}, fmt.Errorf("query: %w", err)
		}
	}
	if p.Body != nil {
		if rules.Body, err = criteria.DecodeBody(p.Body); err != nil {
			return stub.Rules{}, fmt.Errorf("body: %w", err)
		}
	}
	return rules, nil
}

// ResponsePayload is the canned-response half of an action.
type ResponsePayload struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers,omitempty"`
	Body       any               `json:"body,omitempty"`
}

// ProxyPayload is the pass-through half of an action.
type ProxyPayload struct {
	URL            string            `json:"url"`
	Headers        map[string]string `json:"headers,omitempty"`
	TimeoutSeconds int               `json:"timeoutSeconds,omitempty"`
}

// StubPayload is the registration request body for POST /__stub__/stubs.
type StubPayload struct {
	Rules    RulesPayload     `json:"rules"`
	Response *ResponsePayload `json:"response,omitempty"`
	Proxy    *ProxyPayload    `json:"proxy,omitempty"`
	MaxCalls int              `json:"maxCalls,omitempty"`
}

// ToStub decodes the payload into a validated stub with a fresh ID.
func (p StubPayload) ToStub() (*stub.Stub, error) {
	rules, err := p.Rules.ToRules()
	if err != nil {
		return nil, &stub.ValidationError{Field: "rules", Message: err.Error()}
	}

	// Build both variants when supplied and let stub.New reject the
	// both/neither cases through Action.Validate.
	var action stub.Action
	if p.Response != nil {
		action.Response = stub.Respond(p.Response.StatusCode, p.Response.Headers, p.Response.Body).Response
	}
	if p.Proxy != nil {
		action.Proxy = stub.Forward(p.Proxy.URL, p.Proxy.Headers, p.Proxy.TimeoutSeconds).Proxy
	}
	return stub.New(rules, action, p.MaxCalls)
}

// AssertionPayload is the request body for POST /__stub__/assert.
type AssertionPayload struct {
	Rules RulesPayload    `json:"rules"`
	Times json.RawMessage `json:"times,omitempty"`
}

// ToAssertion decodes the payload. An absent times field means "at least
// one matching request".
func (p AssertionPayload) ToAssertion() (stub.Assertion, error) {
	rules, err := p.Rules.ToRules()
	if err != nil {
		return stub.Assertion{}, &stub.ValidationError{Field: "rules", Message: err.Error()}
	}

	assertion := stub.Assertion{Rules: rules}
	if p.Times != nil {
		if assertion.Times, err = criteria.DecodeCount(p.Times); err != nil {
			return stub.Assertion{}, &stub.ValidationError{Field: "times", Message: err.Error()}
		}
	}
	return assertion, nil
}
