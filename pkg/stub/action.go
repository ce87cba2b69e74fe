package stub

import "fmt"

// DefaultProxyTimeoutSeconds bounds proxy forwarding when a stub does not
// set its own timeout.
const DefaultProxyTimeoutSeconds = 5

// ValidationError represents a validation failure with context.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on %s: %s", e.Field, e.Message)
}

// CannedResponse is a fixed response payload returned verbatim.
type CannedResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       any
}

// ProxyTarget forwards the live request to an upstream and relays its
// response. Headers are overlaid onto the original request's headers,
// winning on key collision.
type ProxyTarget struct {
	URL            string
	Headers        map[string]string
	TimeoutSeconds int
}

// Action is a two-variant union: exactly one of Response or Proxy is set.
// Constructing an action with both or neither present is a configuration
// error caught by Validate.
type Action struct {
	Response *CannedResponse
	Proxy    *ProxyTarget
}

// Respond builds a canned-response action.
func Respond(statusCode int, headers map[string]string, body any) Action {
	if headers == nil {
		headers = map[string]string{}
	}
	return Action{Response: &CannedResponse{StatusCode: statusCode, Headers: headers, Body: body}}
}

// Forward builds a proxy action. timeoutSeconds <= 0 selects the default.
func Forward(url string, extraHeaders map[string]string, timeoutSeconds int) Action {
	if extraHeaders == nil {
		extraHeaders = map[string]string{}
	}
	if timeoutSeconds <= 0 {
		timeoutSeconds = DefaultProxyTimeoutSeconds
	}
	return Action{Proxy: &ProxyTarget{URL: url, Headers: extraHeaders, TimeoutSeconds: timeoutSeconds}}
}

// Validate enforces the action invariant.
func (a Action) Validate() error {
	switch {
	case a.Response == nil && a.Proxy == nil:
		return &ValidationError{Field: "action", Message: "either response or proxy must be provided"}
	case a.Response != nil && a.Proxy != nil:
		return &ValidationError{Field: "action", Message: "only one of response or proxy can be provided"}
	}
	if a.Proxy != nil {
		if a.Proxy.URL == "" {
			return &ValidationError{Field: "action.proxy.url", Message: "url is required"}
		}
		if a.Proxy.TimeoutSeconds < 0 {
			return &ValidationError{Field: "action.proxy.timeout", Message: "timeout must be >= 0"}
		}
	}
	if a.Response != nil && (a.Response.StatusCode < 100 || a.Response.StatusCode > 599) {
		return &ValidationError{Field: "action.response.statusCode", Message: "statusCode must be a valid HTTP status"}
	}
	return nil
}
