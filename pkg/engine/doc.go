// Package engine wires the stub store, request log, matcher, and proxy into
// the HTTP server that answers stubbed traffic and serves the control API.
//
// Every inbound request outside the control prefix is recorded in the
// request log, matched against the registered stubs, and answered by the
// winning stub's action or by the fixed not-found response. The control API
// under /__stub__ manages stubs, inspects recorded traffic, and evaluates
// assertions against the request history.
package engine
