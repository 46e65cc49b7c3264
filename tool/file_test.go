package tool

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	ai "github.com/spetersoncode/agentry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sandbox(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.example"), []byte("MODEL=\nAPI_KEY=\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "pkg", "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pkg", "a.go"), []byte("package pkg\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pkg", "sub", "b.go"), []byte("package sub\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("one\ntwo\nthree\nfour"), 0o644))
	return dir
}

func run(t *testing.T, r *Registry, name, args string) ai.ToolResult {
	t.Helper()
	res, err := r.Execute(context.Background(), ai.ToolCall{ID: "c", Name: name, Arguments: args}, nil)
	require.NoError(t, err)
	return res
}

func TestFileTools(t *testing.T) {
	dir := sandbox(t)
	registry := NewRegistry().Add(FileTools(WithBasePath(dir))...)
	assert.Equal(t, []string{"read_file", "list_directory", "get_file_info"}, registry.Names())

	t.Run("read_file", func(t *testing.T) {
		res := run(t, registry, "read_file", `{"path":".env.example"}`)
		assert.False(t, res.IsError)
		assert.Equal(t, "MODEL=\nAPI_KEY=\n", res.Content)
	})

	t.Run("read_file line range", func(t *testing.T) {
		res := run(t, registry, "read_file", `{"path":"notes.txt","start_line":2,"end_line":3}`)
		assert.Equal(t, "two\nthree", res.Content)
	})

	t.Run("read_file missing", func(t *testing.T) {
		res := run(t, registry, "read_file", `{"path":"nope.txt"}`)
		assert.True(t, res.IsError)
		assert.Contains(t, res.Content, "file not found")
	})

	t.Run("read_file outside sandbox", func(t *testing.T) {
		res := run(t, registry, "read_file", `{"path":"../../etc/passwd"}`)
		assert.True(t, res.IsError)
		assert.Contains(t, res.Content, "outside the sandbox")
	})

	t.Run("list_directory children", func(t *testing.T) {
		res := run(t, registry, "list_directory", `{}`)
		require.False(t, res.IsError, res.Content)

		var out struct {
			Count   int        `json:"count"`
			Entries []dirEntry `json:"entries"`
		}
		require.NoError(t, json.Unmarshal([]byte(res.Content), &out))
		var paths []string
		for _, e := range out.Entries {
			paths = append(paths, e.Path)
		}
		assert.Equal(t, []string{".env.example", "notes.txt", "pkg"}, paths)
	})

	t.Run("list_directory doublestar", func(t *testing.T) {
		res := run(t, registry, "list_directory", `{"path":"pkg","pattern":"**/*.go"}`)
		var out struct {
			Entries []dirEntry `json:"entries"`
		}
		require.NoError(t, json.Unmarshal([]byte(res.Content), &out))
		require.Len(t, out.Entries, 2)
		assert.Equal(t, "a.go", out.Entries[0].Path)
		assert.Equal(t, "sub/b.go", out.Entries[1].Path)
	})

	t.Run("list_directory bad pattern", func(t *testing.T) {
		res := run(t, registry, "list_directory", `{"pattern":"[a-"}`)
		assert.True(t, res.IsError)
	})

	t.Run("get_file_info", func(t *testing.T) {
		res := run(t, registry, "get_file_info", `{"path":"notes.txt"}`)
		var info struct {
			Size  int64 `json:"size"`
			IsDir bool  `json:"is_dir"`
		}
		require.NoError(t, json.Unmarshal([]byte(res.Content), &info))
		assert.Equal(t, int64(18), info.Size)
		assert.False(t, info.IsDir)
	})
}

func TestReadLineRangeBeyondEnd(t *testing.T) {
	dir := sandbox(t)
	registry := NewRegistry().Add(NewReadFileTool(WithBasePath(dir)))
	res := run(t, registry, "read_file", `{"path":"notes.txt","start_line":10}`)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content, "beyond file length")
}

func TestListDirectoryTruncates(t *testing.T) {
	dir := sandbox(t)
	registry := NewRegistry().Add(NewListDirTool(WithBasePath(dir), WithMaxEntries(1)))
	res := run(t, registry, "list_directory", `{}`)
	var out struct {
		Count     int  `json:"count"`
		Truncated bool `json:"truncated"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.Content), &out))
	assert.Equal(t, 1, out.Count)
	assert.True(t, out.Truncated)
}
