package stub

import (
	"time"
	"unicode/utf8"

	"github.com/stubkit/stubd/internal/id"
	"github.com/stubkit/stubd/pkg/criteria"
)

// PracticallyInfinite is the default MaxCalls sentinel: far larger than any
// realistic call volume, so unbounded stubs never exhaust.
const PracticallyInfinite = 1 << 31

// NoStubMatchBody is the fixed body returned when no stub matches a request.
const NoStubMatchBody = "NO_STUB_MATCH_FOUND"

// Body carries a request body as decoded text when possible, or as raw
// bytes when the content is not valid UTF-8.
type Body struct {
	text   string
	raw    []byte
	binary bool
}

// TextBody wraps an already-decoded text body.
func TextBody(s string) Body {
	return Body{text: s}
}

// BinaryBody wraps a raw body that could not be decoded as text.
func BinaryBody(b []byte) Body {
	return Body{raw: b, binary: true}
}

// BodyFromBytes probes the raw bytes and returns a text body when they are
// valid UTF-8, a binary body otherwise. Empty input is an empty text body.
func BodyFromBytes(b []byte) Body {
	if len(b) == 0 {
		return Body{}
	}
	if utf8.Valid(b) {
		return Body{text: string(b)}
	}
	raw := make([]byte, len(b))
	copy(raw, b)
	return Body{raw: raw, binary: true}
}

// IsBinary reports whether the body holds raw bytes rather than text.
func (b Body) IsBinary() bool { return b.binary }

// Text returns the decoded text. Empty for binary bodies.
func (b Body) Text() string { return b.text }

// Bytes returns the body content as bytes regardless of form.
func (b Body) Bytes() []byte {
	if b.binary {
		return b.raw
	}
	return []byte(b.text)
}

// Len returns the body length in bytes.
func (b Body) Len() int {
	if b.binary {
		return len(b.raw)
	}
	return len(b.text)
}

// Request is an immutable view of one inbound request. Once appended to the
// request log it is owned by the log and must not be mutated.
type Request struct {
	Method  string
	Path    string
	Host    string
	Headers map[string]string
	Query   map[string]string
	Body    Body
}

// Rules holds the six optional criteria fields a stub or assertion can
// constrain. A nil field means "don't care".
type Rules struct {
	Method  criteria.String
	Path    criteria.String
	Host    criteria.String
	Headers criteria.Map
	Query   criteria.Map
	Body    criteria.Body
}

// FieldCount returns how many fields the rules constrain.
func (r Rules) FieldCount() int {
	n := 0
	if r.Method != nil {
		n++
	}
	if r.Path != nil {
		n++
	}
	if r.Host != nil {
		n++
	}
	if r.Headers != nil {
		n++
	}
	if r.Query != nil {
		n++
	}
	if r.Body != nil {
		n++
	}
	return n
}

// Stub is a registered rule mapping request criteria to a response-producing
// action. CallCount is owned by the stub store and mutated only under its
// lock during matching.
type Stub struct {
	ID        string
	CreatedAt time.Time
	Rules     Rules
	Action    Action
	CallCount int
	MaxCalls  int
}

// New builds a Stub with a fresh ID, validating the action invariant.
// maxCalls <= 0 selects the PracticallyInfinite default.
func New(rules Rules, action Action, maxCalls int) (*Stub, error) {
	if err := action.Validate(); err != nil {
		return nil, err
	}
	if maxCalls <= 0 {
		maxCalls = PracticallyInfinite
	}
	return &Stub{
		ID:        id.Stub(),
		CreatedAt: time.Now().UTC(),
		Rules:     rules,
		Action:    action,
		MaxCalls:  maxCalls,
	}, nil
}

// Exhausted reports whether the stub has reached its call budget.
func (s *Stub) Exhausted() bool {
	return s.CallCount >= s.MaxCalls
}

// Assertion queries the request history: every specified rule field must
// match a recorded request for it to count, and Times is evaluated against
// the resulting count. A nil Times defaults to "count >= 1".
type Assertion struct {
	Rules Rules
	Times criteria.Count
}

// Response is the outgoing response produced for one request. Body is
// opaque to the core; the transport layer decides its encoding.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       any
}

// NotFound returns the fixed response for requests no stub matches.
func NotFound() Response {
	return Response{
		StatusCode: 404,
		Headers:    map[string]string{},
		Body:       NoStubMatchBody,
	}
}
