package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stubkit/stubd/pkg/criteria"
	"github.com/stubkit/stubd/pkg/stub"
)

func textRequest(method, path, body string) *stub.Request {
	return &stub.Request{
		Method:  method,
		Path:    path,
		Host:    "localhost",
		Headers: map[string]string{},
		Query:   map[string]string{},
		Body:    stub.TextBody(body),
	}
}

func TestHandleRequestRecordsEveryRequest(t *testing.T) {
	e := New()

	_, _, err := e.HandleRequest(context.Background(), textRequest("GET", "/a", ""))
	require.NoError(t, err)
	_, _, err = e.HandleRequest(context.Background(), textRequest("GET", "/b", ""))
	require.NoError(t, err)

	// Unmatched traffic is recorded too.
	assert.Equal(t, 2, e.RequestCount())
}

func TestHandleRequestNotFound(t *testing.T) {
	e := New()

	resp, matched, err := e.HandleRequest(context.Background(), textRequest("GET", "/missing", ""))
	require.NoError(t, err)

	assert.False(t, matched)
	assert.Equal(t, 404, resp.StatusCode)
	assert.Equal(t, stub.NoStubMatchBody, resp.Body)
}

func TestHandleRequestCannedResponse(t *testing.T) {
	e := New()

	s, err := stub.New(
		stub.Rules{Method: criteria.Equals("GET"), Path: criteria.Equals("/test")},
		stub.Respond(200, map[string]string{}, "ok"),
		0,
	)
	require.NoError(t, err)
	e.RegisterStub(s)

	resp, matched, err := e.HandleRequest(context.Background(), textRequest("GET", "/test", ""))
	require.NoError(t, err)

	assert.True(t, matched)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "ok", resp.Body)
	assert.Empty(t, resp.Headers)
}

func TestHandleRequestExhaustion(t *testing.T) {
	e := New()

	s, err := stub.New(stub.Rules{Path: criteria.Equals("/once")}, stub.Respond(200, nil, "ok"), 1)
	require.NoError(t, err)
	e.RegisterStub(s)

	resp, matched, err := e.HandleRequest(context.Background(), textRequest("GET", "/once", ""))
	require.NoError(t, err)
	assert.True(t, matched)
	assert.Equal(t, 200, resp.StatusCode)

	resp, matched, err = e.HandleRequest(context.Background(), textRequest("GET", "/once", ""))
	require.NoError(t, err)
	assert.False(t, matched)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestHandleRequestCanned404IsStillAMatch(t *testing.T) {
	e := New()

	// A registered 404 that mirrors the not-found sentinel must not be
	// mistaken for an unmatched request.
	s, err := stub.New(
		stub.Rules{Path: criteria.Equals("/gone")},
		stub.Respond(404, nil, stub.NoStubMatchBody),
		0,
	)
	require.NoError(t, err)
	e.RegisterStub(s)

	resp, matched, err := e.HandleRequest(context.Background(), textRequest("GET", "/gone", ""))
	require.NoError(t, err)
	assert.True(t, matched)
	assert.Equal(t, 404, resp.StatusCode)
	assert.Equal(t, stub.NoStubMatchBody, resp.Body)
}

func TestHandleRequestActionlessStubIsAnError(t *testing.T) {
	e := New()

	// Bypasses stub.New, which would reject the empty action.
	e.RegisterStub(&stub.Stub{
		ID:       "stub-actionless",
		Rules:    stub.Rules{Path: criteria.Equals("/broken")},
		MaxCalls: stub.PracticallyInfinite,
	})

	_, matched, err := e.HandleRequest(context.Background(), textRequest("GET", "/broken", ""))
	assert.True(t, matched)
	assert.Error(t, err)
}

func TestCheckAssertionOverHandledTraffic(t *testing.T) {
	e := New()

	for i := 0; i < 3; i++ {
		_, _, err := e.HandleRequest(context.Background(), textRequest("POST", "/api/users", `{"n": 1}`))
		require.NoError(t, err)
	}

	passed, count := e.CheckAssertion(stub.Assertion{
		Rules: stub.Rules{Method: criteria.Equals("POST"), Path: criteria.Equals("/api/users")},
		Times: criteria.CountEquals(3),
	})
	assert.True(t, passed)
	assert.Equal(t, 3, count)

	passed, count = e.CheckAssertion(stub.Assertion{
		Rules: stub.Rules{Path: criteria.Equals("/api/users")},
		Times: criteria.CountEquals(2),
	})
	assert.False(t, passed)
	assert.Equal(t, 3, count)
}

func TestClearStubsKeepsRequestLog(t *testing.T) {
	e := New()

	s, err := stub.New(stub.Rules{}, stub.Respond(200, nil, nil), 0)
	require.NoError(t, err)
	e.RegisterStub(s)

	_, _, err = e.HandleRequest(context.Background(), textRequest("GET", "/x", ""))
	require.NoError(t, err)

	e.ClearStubs()
	assert.Equal(t, 0, e.StubCount())
	assert.Equal(t, 1, e.RequestCount())
}

func TestClearRequests(t *testing.T) {
	e := New()

	_, _, err := e.HandleRequest(context.Background(), textRequest("GET", "/x", ""))
	require.NoError(t, err)
	require.Equal(t, 1, e.RequestCount())

	e.ClearRequests()
	assert.Equal(t, 0, e.RequestCount())
}
