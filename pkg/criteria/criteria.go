package criteria

import (
	"fmt"
	"regexp"
	"strings"
)

// String matches a single string value (method, path, host).
type String interface {
	MatchString(s string) bool
	fmt.Stringer
}

// Text is a predicate usable both for single string fields and for text
// bodies. All built-in string predicates satisfy it.
type Text interface {
	String
	Body
}

// Map matches a string-keyed map (headers, query parameters).
type Map interface {
	MatchMap(m map[string]string) bool
	fmt.Stringer
}

// Body matches a request body. The body arrives either as decoded text
// (binary == nil) or as raw bytes when the content is not valid UTF-8.
type Body interface {
	MatchBody(text string, binary []byte) bool
	fmt.Stringer
}

// Count matches an integer count. Used for the assertion "times" field.
type Count interface {
	MatchCount(n int) bool
	fmt.Stringer
}

// ============================================================================
// String predicates
// ============================================================================
//
// Every string predicate also implements Body: it matches text bodies and
// never matches binary ones.

type equals struct{ want string }

// Equals matches a value exactly.
func Equals(want string) Text {
	return equals{want: want}
}

func (p equals) MatchString(s string) bool { return s == p.want }
func (p equals) MatchBody(text string, binary []byte) bool {
	return binary == nil && text == p.want
}
func (p equals) String() string { return fmt.Sprintf("$eq(%q)", p.want) }

type contains struct{ sub string }

// Contains matches any value containing the substring.
func Contains(sub string) Text {
	return contains{sub: sub}
}

func (p contains) MatchString(s string) bool { return strings.Contains(s, p.sub) }
func (p contains) MatchBody(text string, binary []byte) bool {
	return binary == nil && strings.Contains(text, p.sub)
}
func (p contains) String() string { return fmt.Sprintf("$contains(%q)", p.sub) }

type prefix struct{ pre string }

// Prefix matches any value starting with the prefix.
func Prefix(pre string) Text {
	return prefix{pre: pre}
}

func (p prefix) MatchString(s string) bool { return strings.HasPrefix(s, p.pre) }
func (p prefix) MatchBody(text string, binary []byte) bool {
	return binary == nil && strings.HasPrefix(text, p.pre)
}
func (p prefix) String() string { return fmt.Sprintf("$startsWith(%q)", p.pre) }

type suffix struct{ suf string }

// Suffix matches any value ending with the suffix.
func Suffix(suf string) Text {
	return suffix{suf: suf}
}

func (p suffix) MatchString(s string) bool { return strings.HasSuffix(s, p.suf) }
func (p suffix) MatchBody(text string, binary []byte) bool {
	return binary == nil && strings.HasSuffix(text, p.suf)
}
func (p suffix) String() string { return fmt.Sprintf("$endsWith(%q)", p.suf) }

type regex struct {
	re  *regexp.Regexp
	src string
}

// Regex matches values against an RE2 pattern.
func Regex(pattern string) (Text, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regex pattern %q: %w", pattern, err)
	}
	return regex{re: re, src: pattern}, nil
}

func (p regex) MatchString(s string) bool { return p.re.MatchString(s) }
func (p regex) MatchBody(text string, binary []byte) bool {
	if binary != nil {
		return p.re.Match(binary)
	}
	return p.re.MatchString(text)
}
func (p regex) String() string { return fmt.Sprintf("$matches(%q)", p.src) }

type wildcard struct{ pattern string }

// Wildcard matches values against a pattern where '*' matches any sequence
// of characters. A pattern without '*' behaves like Equals.
func Wildcard(pattern string) Text {
	return wildcard{pattern: pattern}
}

func (p wildcard) MatchString(s string) bool { return matchWildcard(p.pattern, s) }
func (p wildcard) MatchBody(text string, binary []byte) bool {
	return binary == nil && matchWildcard(p.pattern, text)
}
func (p wildcard) String() string { return fmt.Sprintf("$like(%q)", p.pattern) }

// matchWildcard performs simple '*' wildcard matching.
func matchWildcard(pattern, value string) bool {
	if pattern == value {
		return true
	}
	if !strings.Contains(pattern, "*") {
		return false
	}

	parts := strings.Split(pattern, "*")
	pos := 0

	for i, part := range parts {
		if part == "" {
			continue
		}

		if i == 0 {
			if !strings.HasPrefix(value, part) {
				return false
			}
			pos = len(part)
			continue
		}

		if i == len(parts)-1 {
			return strings.HasSuffix(value[pos:], part)
		}

		idx := strings.Index(value[pos:], part)
		if idx == -1 {
			return false
		}
		pos += idx + len(part)
	}

	return true
}

// ============================================================================
// Map predicates
// ============================================================================

type hasKeyValues struct{ want map[string]string }

// HasKeyValues matches a map that contains every expected key with a value
// matching the expected value. Expected values may use '*' wildcards.
func HasKeyValues(want map[string]string) Map {
	return hasKeyValues{want: want}
}

func (p hasKeyValues) MatchMap(m map[string]string) bool {
	for k, want := range p.want {
		got, ok := lookupFold(m, k)
		if !ok || !matchWildcard(want, got) {
			return false
		}
	}
	return true
}

func (p hasKeyValues) String() string { return fmt.Sprintf("$has(%v)", p.want) }

type mapEquals struct{ want map[string]string }

// MapEquals matches a map with exactly the expected keys and values.
func MapEquals(want map[string]string) Map {
	return mapEquals{want: want}
}

func (p mapEquals) MatchMap(m map[string]string) bool {
	if len(m) != len(p.want) {
		return false
	}
	for k, want := range p.want {
		if got, ok := m[k]; !ok || got != want {
			return false
		}
	}
	return true
}

func (p mapEquals) String() string { return fmt.Sprintf("$eq(%v)", p.want) }

// lookupFold finds a map value by key, falling back to a case-insensitive
// scan. Header names are case-insensitive per the HTTP spec; query parameter
// names in practice collide only on exact keys, so the fold is harmless.
func lookupFold(m map[string]string, key string) (string, bool) {
	if v, ok := m[key]; ok {
		return v, true
	}
	for k, v := range m {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}

// ============================================================================
// Count predicates
// ============================================================================

type countCmp struct {
	op   string
	want int
}

// CountEquals matches a count equal to n.
func CountEquals(n int) Count { return countCmp{op: "$eq", want: n} }

// AtLeast matches a count greater than or equal to n.
func AtLeast(n int) Count { return countCmp{op: "$gte", want: n} }

// AtMost matches a count less than or equal to n.
func AtMost(n int) Count { return countCmp{op: "$lte", want: n} }

// GreaterThan matches a count strictly greater than n.
func GreaterThan(n int) Count { return countCmp{op: "$gt", want: n} }

// LessThan matches a count strictly less than n.
func LessThan(n int) Count { return countCmp{op: "$lt", want: n} }

func (p countCmp) MatchCount(n int) bool {
	switch p.op {
	case "$eq":
		return n == p.want
	case "$gte":
		return n >= p.want
	case "$lte":
		return n <= p.want
	case "$gt":
		return n > p.want
	case "$lt":
		return n < p.want
	}
	return false
}

func (p countCmp) String() string { return fmt.Sprintf("%s(%d)", p.op, p.want) }

type countBetween struct{ lo, hi int }

// Between matches a count in the inclusive range [lo, hi].
func Between(lo, hi int) Count { return countBetween{lo: lo, hi: hi} }

func (p countBetween) MatchCount(n int) bool { return n >= p.lo && n <= p.hi }
func (p countBetween) String() string        { return fmt.Sprintf("$between(%d, %d)", p.lo, p.hi) }
