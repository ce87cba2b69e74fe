// Package matching computes how strongly a stub's rules match an incoming
// request. Strength is the number of specified fields that matched; a single
// failed field disqualifies the stub entirely.
package matching
