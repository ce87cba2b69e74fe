package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadStubFileYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "stubs.yaml", `
stubs:
  - rules:
      method: GET
      path:
        $startsWith: /api
    response:
      statusCode: 200
      body: ok
  - rules:
      path: /users
    proxy:
      url: http://upstream:8080
`)

	stubs, err := LoadStubFile(filepath.Join(dir, "stubs.yaml"))
	require.NoError(t, err)
	require.Len(t, stubs, 2)

	first, err := stubs[0].ToStub()
	require.NoError(t, err)
	assert.True(t, first.Rules.Path.MatchString("/api/x"))
	require.NotNil(t, first.Action.Response)
	assert.Equal(t, 200, first.Action.Response.StatusCode)

	second, err := stubs[1].ToStub()
	require.NoError(t, err)
	require.NotNil(t, second.Action.Proxy)
	assert.Equal(t, "http://upstream:8080", second.Action.Proxy.URL)
}

func TestLoadStubFileSingleJSONDocument(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "one.json", `{"rules": {"path": "/x"}, "response": {"statusCode": 204}}`)

	stubs, err := LoadStubFile(filepath.Join(dir, "one.json"))
	require.NoError(t, err)
	assert.Len(t, stubs, 1)
}

func TestLoadStubFileBareJSONList(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "list.json", `[
		{"rules": {"path": "/a"}, "response": {"statusCode": 200}},
		{"rules": {"path": "/b"}, "response": {"statusCode": 200}}
	]`)

	stubs, err := LoadStubFile(filepath.Join(dir, "list.json"))
	require.NoError(t, err)
	assert.Len(t, stubs, 2)
}

func TestLoadStubDirScansRecursively(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", `{"stubs": [{"rules": {}, "response": {"statusCode": 200}}]}`)
	writeFile(t, dir, filepath.Join("nested", "deep", "b.json"),
		`{"rules": {"path": "/n"}, "response": {"statusCode": 200}}`)
	writeFile(t, dir, "notes.txt", "not a stub file")

	stubs, err := LoadStubDir(dir)
	require.NoError(t, err)
	assert.Len(t, stubs, 2)
}

func TestLoadStubFileInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.yaml", "stubs: [unclosed")

	_, err := LoadStubFile(filepath.Join(dir, "bad.yaml"))
	assert.Error(t, err)
}
