package engine

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/stubkit/stubd/internal/storage"
	"github.com/stubkit/stubd/pkg/logging"
	"github.com/stubkit/stubd/pkg/metrics"
	"github.com/stubkit/stubd/pkg/requestlog"
	"github.com/stubkit/stubd/pkg/stub"
)

// engineMetrics are the instruments the engine maintains. All fields are
// nil when no registry is attached.
type engineMetrics struct {
	stubsRegistered *metrics.Counter
	proxyFailures   *metrics.Counter
	assertions      *metrics.Counter
	stubsActive     *metrics.Gauge
	requestsLogged  *metrics.Gauge
}

func newEngineMetrics(reg *metrics.Registry) engineMetrics {
	return engineMetrics{
		stubsRegistered: reg.NewCounter("stubd_stubs_registered_total", "Stubs registered since start."),
		proxyFailures:   reg.NewCounter("stubd_proxy_failures_total", "Proxy actions that failed."),
		assertions:      reg.NewCounter("stubd_assertions_total", "Assertions evaluated, by result.", "result"),
		stubsActive:     reg.NewGauge("stubd_stubs_active", "Currently registered stubs."),
		requestsLogged:  reg.NewGauge("stubd_requests_logged", "Entries in the request log."),
	}
}

// Engine ties the stub store, request log, and proxy together. It is the
// library entry point: the HTTP layer is a thin adapter over its methods.
type Engine struct {
	stubs   *storage.StubStore
	history *requestlog.Log
	proxy   *Proxy
	log     *slog.Logger
	im      engineMetrics
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) EngineOption {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithProxyClient sets the HTTP client used for proxy actions. Mainly for
// tests; timeouts still come from each stub's proxy settings.
func WithProxyClient(client *http.Client) EngineOption {
	return func(e *Engine) {
		e.proxy = NewProxy(client)
	}
}

// WithMetrics attaches engine instruments to reg.
func WithMetrics(reg *metrics.Registry) EngineOption {
	return func(e *Engine) {
		if reg != nil {
			e.im = newEngineMetrics(reg)
		}
	}
}

// New builds an Engine with empty stores.
func New(opts ...EngineOption) *Engine {
	e := &Engine{
		stubs:   storage.NewStubStore(),
		history: requestlog.NewLog(),
		proxy:   NewProxy(nil),
		log:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RegisterStub adds a stub to the store. Later registrations win strength
// ties against earlier ones.
func (e *Engine) RegisterStub(s *stub.Stub) {
	e.stubs.Register(s)
	e.log.Info("stub registered", "id", s.ID, "fields", s.Rules.FieldCount(), "maxCalls", s.MaxCalls)
	if e.im.stubsRegistered != nil {
		_ = e.im.stubsRegistered.Inc()
		_ = e.im.stubsActive.Set(float64(e.stubs.Count()))
	}
}

// ListStubs returns point-in-time copies of the registered stubs in
// registration order.
func (e *Engine) ListStubs() []*stub.Stub {
	return e.stubs.List()
}

// StubCount returns the number of registered stubs.
func (e *Engine) StubCount() int {
	return e.stubs.Count()
}

// ClearStubs removes all registered stubs. The request log is unaffected.
func (e *Engine) ClearStubs() {
	e.stubs.Clear()
	e.log.Info("stubs cleared")
	if e.im.stubsActive != nil {
		_ = e.im.stubsActive.Set(0)
	}
}

// Requests returns the recorded entries, oldest first.
func (e *Engine) Requests() []*requestlog.Entry {
	return e.history.Entries()
}

// RequestCount returns the number of recorded requests.
func (e *Engine) RequestCount() int {
	return e.history.Count()
}

// ClearRequests empties the request log. Only the control API calls this;
// serving traffic never removes entries.
func (e *Engine) ClearRequests() {
	e.history.Clear()
	e.log.Info("request log cleared")
	if e.im.requestsLogged != nil {
		_ = e.im.requestsLogged.Set(0)
	}
}

// HandleRequest records the request, finds the best matching stub, and
// produces the response. Requests are recorded before matching, so even
// unmatched traffic is visible to later assertions. The matched flag tells
// whether a stub answered, so callers never infer it from the response. A
// proxy failure returns a *ProxyError.
func (e *Engine) HandleRequest(ctx context.Context, req *stub.Request) (resp stub.Response, matched bool, err error) {
	entry := e.history.Append(req)
	if e.im.requestsLogged != nil {
		_ = e.im.requestsLogged.Set(float64(e.history.Count()))
	}

	best := e.stubs.FindBestMatch(req)
	if best == nil {
		e.log.Debug("no stub matched", "requestId", entry.ID, "method", req.Method, "path", req.Path)
		return stub.NotFound(), false, nil
	}
	e.log.Debug("stub matched", "requestId", entry.ID, "stubId", best.ID)

	switch {
	case best.Action.Response != nil:
		canned := best.Action.Response
		return stub.Response{
			StatusCode: canned.StatusCode,
			Headers:    canned.Headers,
			Body:       canned.Body,
		}, true, nil
	case best.Action.Proxy != nil:
		resp, err := e.proxy.Forward(ctx, best.Action.Proxy, req)
		if err != nil {
			e.log.Warn("proxy action failed", "stubId", best.ID, "error", err)
			if e.im.proxyFailures != nil {
				_ = e.im.proxyFailures.Inc()
			}
			return stub.Response{}, true, err
		}
		return resp, true, nil
	}

	// Unreachable for stubs built through stub.New; guards hand-rolled ones.
	e.log.Error("stub has no action", "stubId", best.ID)
	return stub.Response{}, true, fmt.Errorf("stub %s has no action", best.ID)
}

// CheckAssertion evaluates an assertion against a snapshot of the request
// history taken at call time.
func (e *Engine) CheckAssertion(a stub.Assertion) (passed bool, count int) {
	passed, count = Evaluate(a, e.history.Snapshot())
	if e.im.assertions != nil {
		_ = e.im.assertions.Inc(strconv.FormatBool(passed))
	}
	return passed, count
}
