// Package criteria provides the predicate capability used by stub rules and
// assertions: opaque matchers over strings, string maps, request bodies, and
// integer counts, plus the JSON wire codec that turns control-API payloads
// into predicate values.
package criteria
