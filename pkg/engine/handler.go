package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/stubkit/stubd/pkg/httputil"
	"github.com/stubkit/stubd/pkg/logging"
	"github.com/stubkit/stubd/pkg/metrics"
	"github.com/stubkit/stubd/pkg/stub"
)

// Handler is the catch-all adapter: it converts inbound HTTP traffic to
// recorded requests, asks the engine for a response, and writes it back.
type Handler struct {
	engine       *Engine
	maxBodyBytes int64
	log          *slog.Logger

	requestsTotal *metrics.Counter
}

// NewHandler builds the catch-all handler. maxBodyBytes <= 0 disables the
// body size cap.
func NewHandler(e *Engine, maxBodyBytes int64, log *slog.Logger, reg *metrics.Registry) *Handler {
	if log == nil {
		log = logging.Nop()
	}
	h := &Handler{engine: e, maxBodyBytes: maxBodyBytes, log: log}
	if reg != nil {
		h.requestsTotal = reg.NewCounter(
			"stubd_requests_total",
			"Stubbed requests served, by method and outcome.",
			"method", "outcome",
		)
	}
	return h
}

// ServeHTTP records the request and answers with the matched stub's action
// or the fixed not-found response.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, err := h.decodeRequest(w, r)
	if err != nil {
		httputil.WriteError(w, http.StatusRequestEntityTooLarge, "body_too_large", err.Error())
		return
	}

	resp, matched, err := h.engine.HandleRequest(r.Context(), req)
	if err != nil {
		var perr *ProxyError
		if errors.As(err, &perr) {
			h.count(req.Method, "proxy_failure")
			httputil.WriteBadGateway(w, "proxy_failure", perr.Error())
			return
		}
		h.count(req.Method, "error")
		httputil.WriteInternalError(w, "internal_error", err.Error())
		return
	}

	outcome := "matched"
	if !matched {
		outcome = "no_match"
	}
	h.count(req.Method, outcome)
	writeResponse(w, resp)
}

func (h *Handler) count(method, outcome string) {
	if h.requestsTotal == nil {
		return
	}
	if err := h.requestsTotal.Inc(method, outcome); err != nil {
		h.log.Warn("failed to record request metric", "error", err)
	}
}

// decodeRequest flattens an *http.Request into the recorded form: first
// value per header and query key, host without the port, body probed for
// UTF-8.
func (h *Handler) decodeRequest(w http.ResponseWriter, r *http.Request) (*stub.Request, error) {
	body := r.Body
	if h.maxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}

	headers := make(map[string]string, len(r.Header))
	for k := range r.Header {
		headers[k] = r.Header.Get(k)
	}
	query := map[string]string{}
	for k, vals := range r.URL.Query() {
		if len(vals) > 0 {
			query[k] = vals[0]
		}
	}

	// r.Host carries the port; host criteria are written against the bare
	// hostname.
	host := r.Host
	if bare, _, splitErr := net.SplitHostPort(host); splitErr == nil {
		host = bare
	}

	return &stub.Request{
		Method:  r.Method,
		Path:    r.URL.Path,
		Host:    host,
		Headers: headers,
		Query:   query,
		Body:    stub.BodyFromBytes(raw),
	}, nil
}

// writeResponse encodes a stub response. String and byte bodies are written
// verbatim; anything else is encoded as JSON. Stub headers always win over
// the inferred Content-Type.
func writeResponse(w http.ResponseWriter, resp stub.Response) {
	var data []byte
	contentType := ""

	switch body := resp.Body.(type) {
	case nil:
	case string:
		data = []byte(body)
		contentType = "text/plain; charset=utf-8"
	case []byte:
		data = body
		contentType = "application/octet-stream"
	default:
		encoded, err := json.Marshal(body)
		if err != nil {
			httputil.WriteInternalError(w, "encode_failure", err.Error())
			return
		}
		data = encoded
		contentType = "application/json"
	}

	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	if len(data) > 0 {
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	}
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(data)
}
