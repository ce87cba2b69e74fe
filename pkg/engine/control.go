package engine

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/stubkit/stubd/pkg/httputil"
	"github.com/stubkit/stubd/pkg/metrics"
	"github.com/stubkit/stubd/pkg/payload"
	"github.com/stubkit/stubd/pkg/stub"
)

// ControlPrefix is the reserved path prefix for the control API. Requests
// under it are never recorded or matched.
const ControlPrefix = "/__stub__"

// ControlAPI serves stub management, request inspection, and assertions.
type ControlAPI struct {
	engine  *Engine
	log     *slog.Logger
	metrics *metrics.Registry
	version string
}

// NewControlAPI builds the control API around an engine.
func NewControlAPI(e *Engine, log *slog.Logger, reg *metrics.Registry, version string) *ControlAPI {
	return &ControlAPI{engine: e, log: log, metrics: reg, version: version}
}

// Routes registers the control endpoints on mux under ControlPrefix.
func (c *ControlAPI) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET "+ControlPrefix, c.handleWelcome)
	mux.HandleFunc("GET "+ControlPrefix+"/{$}", c.handleWelcome)
	mux.HandleFunc("POST "+ControlPrefix+"/stubs", c.handleRegisterStub)
	mux.HandleFunc("GET "+ControlPrefix+"/stubs", c.handleListStubs)
	mux.HandleFunc("DELETE "+ControlPrefix+"/stubs", c.handleClearStubs)
	mux.HandleFunc("GET "+ControlPrefix+"/requests", c.handleListRequests)
	mux.HandleFunc("DELETE "+ControlPrefix+"/requests", c.handleClearRequests)
	mux.HandleFunc("POST "+ControlPrefix+"/assert", c.handleAssert)
	mux.HandleFunc("GET "+ControlPrefix+"/health", c.handleHealth)
	if c.metrics != nil {
		mux.Handle("GET "+ControlPrefix+"/metrics", c.metrics.Handler())
	}
}

func (c *ControlAPI) handleWelcome(w http.ResponseWriter, r *http.Request) {
	httputil.WriteOK(w, map[string]string{
		"service": "stubd",
		"version": c.version,
		"docs":    ControlPrefix + "/health",
	})
}

func (c *ControlAPI) handleRegisterStub(w http.ResponseWriter, r *http.Request) {
	var p payload.StubPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		httputil.WriteBadRequest(w, "invalid_json", err.Error())
		return
	}

	s, err := p.ToStub()
	if err != nil {
		writeStubError(w, err)
		return
	}

	c.engine.RegisterStub(s)
	httputil.WriteCreated(w, payload.NewStubView(s))
}

func (c *ControlAPI) handleListStubs(w http.ResponseWriter, r *http.Request) {
	stubs := c.engine.ListStubs()
	views := make([]payload.StubView, 0, len(stubs))
	for _, s := range stubs {
		views = append(views, payload.NewStubView(s))
	}
	httputil.WriteOK(w, map[string]any{"stubs": views, "count": len(views)})
}

func (c *ControlAPI) handleClearStubs(w http.ResponseWriter, r *http.Request) {
	c.engine.ClearStubs()
	httputil.WriteNoContent(w)
}

func (c *ControlAPI) handleListRequests(w http.ResponseWriter, r *http.Request) {
	entries := c.engine.Requests()
	views := make([]payload.RequestView, 0, len(entries))
	for _, e := range entries {
		views = append(views, payload.NewRequestView(e))
	}
	httputil.WriteOK(w, map[string]any{"requests": views, "count": len(views)})
}

func (c *ControlAPI) handleClearRequests(w http.ResponseWriter, r *http.Request) {
	c.engine.ClearRequests()
	httputil.WriteNoContent(w)
}

func (c *ControlAPI) handleAssert(w http.ResponseWriter, r *http.Request) {
	var p payload.AssertionPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		httputil.WriteBadRequest(w, "invalid_json", err.Error())
		return
	}

	assertion, err := p.ToAssertion()
	if err != nil {
		writeStubError(w, err)
		return
	}

	passed, count := c.engine.CheckAssertion(assertion)
	c.log.Debug("assertion evaluated", "passed", passed, "count", count)
	httputil.WriteOK(w, payload.AssertionResult{Passed: passed, Count: count})
}

func (c *ControlAPI) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteOK(w, map[string]any{
		"status":   "ok",
		"version":  c.version,
		"stubs":    c.engine.StubCount(),
		"requests": c.engine.RequestCount(),
	})
}

// writeStubError maps validation failures to 400 with field context.
func writeStubError(w http.ResponseWriter, err error) {
	var verr *stub.ValidationError
	if errors.As(err, &verr) {
		httputil.WriteBadRequest(w, "validation_failed", verr.Error())
		return
	}
	httputil.WriteBadRequest(w, "invalid_stub", err.Error())
}
