// Package metrics provides a small dependency-free metrics registry with
// labeled counters and gauges and a plain-text exposition handler served by
// the control API.
package metrics
