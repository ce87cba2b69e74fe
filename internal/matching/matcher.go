package matching

import "github.com/stubkit/stubd/pkg/stub"

// Result reports the outcome of matching one stub's rules against a request.
// Matched distinguishes "all specified fields matched" (including the
// zero-field case at strength 0) from "a specified field failed".
type Result struct {
	Strength int
	Matched  bool
}

// Match evaluates the rules against the request.
// Fields are checked in a fixed order and evaluation stops at the first
// failing field; each matching specified field adds one point of strength.
func Match(rules stub.Rules, req *stub.Request) Result {
	strength := 0

	if rules.Method != nil {
		if !rules.Method.MatchString(req.Method) {
			return Result{}
		}
		strength++
	}

	if rules.Path != nil {
		if !rules.Path.MatchString(req.Path) {
			return Result{}
		}
		strength++
	}

	if rules.Headers != nil {
		if !rules.Headers.MatchMap(req.Headers) {
			return Result{}
		}
		strength++
	}

	if rules.Body != nil {
		var binary []byte
		if req.Body.IsBinary() {
			binary = req.Body.Bytes()
		}
		if !rules.Body.MatchBody(req.Body.Text(), binary) {
			return Result{}
		}
		strength++
	}

	if rules.Host != nil {
		if !rules.Host.MatchString(req.Host) {
			return Result{}
		}
		strength++
	}

	if rules.Query != nil {
		if !rules.Query.MatchMap(req.Query) {
			return Result{}
		}
		strength++
	}

	return Result{Strength: strength, Matched: true}
}
