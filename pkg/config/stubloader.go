package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/stubkit/stubd/pkg/payload"
)

// stubFile is the on-disk shape of a stub definition file: either a
// top-level "stubs" list or a single stub document.
type stubFile struct {
	Stubs []payload.StubPayload `json:"stubs"`
}

// LoadStubDir scans dir recursively for stub definition files and returns
// their payloads in deterministic (sorted path) order.
func LoadStubDir(dir string) ([]payload.StubPayload, error) {
	matches, err := doublestar.FilepathGlob(filepath.Join(dir, "**", "*.{yaml,yml,json}"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan stub directory %s: %w", dir, err)
	}
	sort.Strings(matches)

	var all []payload.StubPayload
	for _, path := range matches {
		stubs, err := LoadStubFile(path)
		if err != nil {
			return nil, err
		}
		all = append(all, stubs...)
	}
	return all, nil
}

// LoadStubFile reads one stub definition file. YAML files are converted to
// JSON before decoding so criteria fields share one wire format.
func LoadStubFile(path string) ([]payload.StubPayload, error) {
	data, err := readDataFile(path)
	if err != nil {
		return nil, err
	}

	var file stubFile
	if err := json.Unmarshal(data, &file); err == nil && file.Stubs != nil {
		return file.Stubs, nil
	}

	// Fall back to a bare list or a single stub document.
	var list []payload.StubPayload
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}
	var single payload.StubPayload
	if err := json.Unmarshal(data, &single); err != nil {
		return nil, fmt.Errorf("failed to parse stub file %s: %w", path, err)
	}
	return []payload.StubPayload{single}, nil
}

// readDataFile returns the file content as JSON, converting from YAML when
// the extension says so.
func readDataFile(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read stub file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return raw, nil
	}

	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("invalid YAML in stub file %s: %w", path, err)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to convert stub file %s: %w", path, err)
	}
	return data, nil
}
