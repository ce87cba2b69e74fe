package criteria

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Wire format for criteria fields:
//
//	"GET"                         exact match ($eq)
//	{"$eq": "/users"}             exact match
//	{"$matches": "^/users/\\d+"}  RE2 regex
//	{"$contains": "users"}        substring
//	{"$startsWith": "/api"}       prefix
//	{"$endsWith": ".json"}        suffix
//	{"$like": "/api/*/items"}     '*' wildcard
//	{"$expr": "value != \"\""}    expr-lang expression over `value`
//
// Headers and query accept a bare object as a key-values subset match:
//
//	{"Content-Type": "application/json"}  → $has
//	{"$eq": {...}} / {"$has": {...}}      explicit forms
//
// Bodies additionally accept {"$jsonpath": {"$.a.b": 1}}.
//
// Counts accept a bare number ($eq) plus $gt/$gte/$lt/$lte/$between/$expr.

// errUnknownKind reports an unsupported $-operator for a field position.
func errUnknownKind(kind, position string) error {
	return fmt.Errorf("unknown criteria kind %q for %s", kind, position)
}

// decodeOp splits a wire value into its operator and operand. A bare value
// (string, number, or non-$ object) is returned with op == "".
func decodeOp(raw json.RawMessage) (op string, operand json.RawMessage, err error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return "", trimmed, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return "", nil, fmt.Errorf("invalid criteria value: %w", err)
	}

	// A single $-prefixed key selects a predicate kind; anything else is a
	// bare object (key-values form for maps).
	if len(obj) == 1 {
		for k, v := range obj {
			if len(k) > 0 && k[0] == '$' {
				return k, v, nil
			}
		}
	}
	for k := range obj {
		if len(k) > 0 && k[0] == '$' {
			return "", nil, fmt.Errorf("criteria object mixes %q with plain keys", k)
		}
	}
	return "", trimmed, nil
}

func decodeStringOperand(op string, operand json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(operand, &s); err != nil {
		return "", fmt.Errorf("criteria %s expects a string operand: %w", op, err)
	}
	return s, nil
}

// DecodeString decodes a wire value into a String predicate for the
// method, path, and host positions.
func DecodeString(raw json.RawMessage) (String, error) {
	op, operand, err := decodeOp(raw)
	if err != nil {
		return nil, err
	}
	if op == "" {
		s, err := decodeStringOperand("$eq", operand)
		if err != nil {
			return nil, err
		}
		return Equals(s), nil
	}
	return decodeTextKind(op, operand, "string field")
}

// DecodeBody decodes a wire value into a Body predicate.
func DecodeBody(raw json.RawMessage) (Body, error) {
	op, operand, err := decodeOp(raw)
	if err != nil {
		return nil, err
	}
	switch op {
	case "":
		s, err := decodeStringOperand("$eq", operand)
		if err != nil {
			return nil, err
		}
		return Equals(s), nil
	case "$jsonpath":
		var conditions map[string]any
		if err := json.Unmarshal(operand, &conditions); err != nil {
			return nil, fmt.Errorf("criteria $jsonpath expects an object operand: %w", err)
		}
		return JSONPath(conditions)
	default:
		return decodeTextKind(op, operand, "body")
	}
}

// decodeTextKind builds the shared text predicate kinds.
func decodeTextKind(op string, operand json.RawMessage, position string) (Text, error) {
	if op == "$expr" {
		src, err := decodeStringOperand(op, operand)
		if err != nil {
			return nil, err
		}
		return Expr(src)
	}

	s, err := decodeStringOperand(op, operand)
	if err != nil {
		return nil, err
	}
	switch op {
	case "$eq":
		return Equals(s), nil
	case "$matches":
		return Regex(s)
	case "$contains":
		return Contains(s), nil
	case "$startsWith":
		return Prefix(s), nil
	case "$endsWith":
		return Suffix(s), nil
	case "$like":
		return Wildcard(s), nil
	default:
		return nil, errUnknownKind(op, position)
	}
}

// DecodeMap decodes a wire value into a Map predicate for the headers and
// query positions.
func DecodeMap(raw json.RawMessage) (Map, error) {
	op, operand, err := decodeOp(raw)
	if err != nil {
		return nil, err
	}

	var want map[string]string
	switch op {
	case "", "$has":
		if err := json.Unmarshal(operand, &want); err != nil {
			return nil, fmt.Errorf("map criteria expects an object of string values: %w", err)
		}
		return HasKeyValues(want), nil
	case "$eq":
		if err := json.Unmarshal(operand, &want); err != nil {
			return nil, fmt.Errorf("criteria $eq expects an object of string values: %w", err)
		}
		return MapEquals(want), nil
	default:
		return nil, errUnknownKind(op, "map field")
	}
}

// DecodeCount decodes a wire value into a Count predicate for the
// assertion "times" position.
func DecodeCount(raw json.RawMessage) (Count, error) {
	op, operand, err := decodeOp(raw)
	if err != nil {
		return nil, err
	}

	if op == "$expr" {
		src, err := decodeStringOperand(op, operand)
		if err != nil {
			return nil, err
		}
		return Expr(src)
	}

	if op == "$between" {
		var bounds []int
		if err := json.Unmarshal(operand, &bounds); err != nil || len(bounds) != 2 {
			return nil, fmt.Errorf("criteria $between expects a two-element integer array")
		}
		return Between(bounds[0], bounds[1]), nil
	}

	var n int
	if err := json.Unmarshal(operand, &n); err != nil {
		return nil, fmt.Errorf("count criteria expects an integer operand: %w", err)
	}
	switch op {
	case "", "$eq":
		return CountEquals(n), nil
	case "$gte":
		return AtLeast(n), nil
	case "$lte":
		return AtMost(n), nil
	case "$gt":
		return GreaterThan(n), nil
	case "$lt":
		return LessThan(n), nil
	default:
		return nil, errUnknownKind(op, "count")
	}
}
