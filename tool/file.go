package tool

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// FileOption configures file tools.
type FileOption func(*fileConfig)

type fileConfig struct {
	basePath    string
	maxFileSize int64
	maxEntries  int
}

// WithBasePath restricts file operations to a directory.
// Paths are resolved relative to it and may not escape it.
func WithBasePath(path string) FileOption {
	return func(c *fileConfig) {
		c.basePath = path
	}
}

// WithMaxFileSize sets the maximum number of bytes read_file returns.
// Default is 1MB.
func WithMaxFileSize(bytes int64) FileOption {
	return func(c *fileConfig) {
		c.maxFileSize = bytes
	}
}

// WithMaxEntries caps list_directory results. Default is 200.
func WithMaxEntries(n int) FileOption {
	return func(c *fileConfig) {
		c.maxEntries = n
	}
}

func applyFileOpts(opts []FileOption) *fileConfig {
	cfg := &fileConfig{
		basePath:    ".",
		maxFileSize: 1 << 20,
		maxEntries:  200,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// resolvePath maps a model-supplied path into the sandbox.
func (c *fileConfig) resolvePath(path string) (string, error) {
	if path == "" {
		path = "."
	}
	base := filepath.Clean(c.basePath)
	full := filepath.Join(base, filepath.Clean(path))

	rel, err := filepath.Rel(base, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", NewToolError("path %q is outside the sandbox", path)
	}
	return full, nil
}

// readLineRange reads lines start..end (1-based, inclusive) from r.
// A zero end reads to the end of the input.
func readLineRange(r io.Reader, start, end int, maxSize int64) (string, error) {
	if start < 1 {
		start = 1
	}
	if end != 0 && end < start {
		return "", NewToolError("end_line (%d) must be >= start_line (%d)", end, start)
	}

	scanner := bufio.NewScanner(r)
	var b strings.Builder
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		if lineNum < start {
			continue
		}
		if end > 0 && lineNum > end {
			break
		}
		line := scanner.Text()
		if int64(b.Len()+len(line)+1) > maxSize {
			return "", NewToolError("content exceeds maximum size %d", maxSize)
		}
		if lineNum > start {
			b.WriteByte('\n')
		}
		b.WriteString(line)
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	if lineNum < start {
		return "", NewToolError("start_line %d is beyond file length (%d lines)", start, lineNum)
	}
	return b.String(), nil
}

type readFileArgs struct {
	Path      string `json:"path" jsonschema:"description=Path of the file to read"`
	StartLine int    `json:"start_line,omitempty" jsonschema:"description=1-based line to start reading from,minimum=1"`
	EndLine   int    `json:"end_line,omitempty" jsonschema:"description=1-based line to stop reading at (inclusive),minimum=1"`
}

// NewReadFileTool creates the read_file tool.
func NewReadFileTool(opts ...FileOption) Spec {
	cfg := applyFileOpts(opts)
	return Func("read_file", "Read the contents of a text file",
		func(ctx context.Context, args readFileArgs) (string, error) {
			path, err := cfg.resolvePath(args.Path)
			if err != nil {
				return "", err
			}
			info, err := os.Stat(path)
			if err != nil {
				return "", NewToolError("file not found: %s", args.Path)
			}
			if info.IsDir() {
				return "", NewToolError("%s is a directory", args.Path)
			}

			f, err := os.Open(path)
			if err != nil {
				return "", err
			}
			defer f.Close()

			if args.StartLine > 0 || args.EndLine > 0 {
				return readLineRange(f, args.StartLine, args.EndLine, cfg.maxFileSize)
			}
			if info.Size() > cfg.maxFileSize {
				return "", NewToolError("file size %d exceeds maximum %d; read a line range instead", info.Size(), cfg.maxFileSize)
			}
			data, err := io.ReadAll(io.LimitReader(f, cfg.maxFileSize))
			if err != nil {
				return "", err
			}
			return string(data), nil
		},
		WithOutputType("text"),
	)
}

type listDirArgs struct {
	Path    string `json:"path,omitempty" jsonschema:"description=Directory to list,default=."`
	Pattern string `json:"pattern,omitempty" jsonschema:"description=Glob pattern such as **/*.go; lists direct children when empty"`
}

type dirEntry struct {
	Path  string `json:"path"`
	IsDir bool   `json:"is_dir"`
	Size  int64  `json:"size,omitempty"`
}

// NewListDirTool creates the list_directory tool. Patterns use doublestar
// syntax, so ** matches across directories.
func NewListDirTool(opts ...FileOption) Spec {
	cfg := applyFileOpts(opts)
	return Func("list_directory", "List files in a directory, optionally filtered by a glob pattern",
		func(ctx context.Context, args listDirArgs) (string, error) {
			path, err := cfg.resolvePath(args.Path)
			if err != nil {
				return "", err
			}
			pattern := args.Pattern
			if pattern == "" {
				pattern = "*"
			}
			if !doublestar.ValidatePattern(pattern) {
				return "", NewToolError("invalid pattern %q", pattern)
			}

			fsys := os.DirFS(path)
			matches, err := doublestar.Glob(fsys, pattern)
			if err != nil {
				return "", NewToolError("cannot list %s: %v", args.Path, err)
			}
			sort.Strings(matches)

			truncated := false
			if len(matches) > cfg.maxEntries {
				matches = matches[:cfg.maxEntries]
				truncated = true
			}

			entries := make([]dirEntry, 0, len(matches))
			for _, m := range matches {
				info, err := os.Stat(filepath.Join(path, m))
				if err != nil {
					continue
				}
				e := dirEntry{Path: m, IsDir: info.IsDir()}
				if !info.IsDir() {
					e.Size = info.Size()
				}
				entries = append(entries, e)
			}

			out, err := json.Marshal(struct {
				Path      string     `json:"path"`
				Count     int        `json:"count"`
				Truncated bool       `json:"truncated,omitempty"`
				Entries   []dirEntry `json:"entries"`
			}{
				Path:      args.Path,
				Count:     len(entries),
				Truncated: truncated,
				Entries:   entries,
			})
			if err != nil {
				return "", err
			}
			return string(out), nil
		},
		WithOutputType("json"),
	)
}

type fileInfoArgs struct {
	Path string `json:"path" jsonschema:"description=Path of the file or directory"`
}

// NewFileInfoTool creates the get_file_info tool.
func NewFileInfoTool(opts ...FileOption) Spec {
	cfg := applyFileOpts(opts)
	return Func("get_file_info", "Get the size, type and modification time of a file",
		func(ctx context.Context, args fileInfoArgs) (string, error) {
			path, err := cfg.resolvePath(args.Path)
			if err != nil {
				return "", err
			}
			info, err := os.Stat(path)
			if err != nil {
				return "", NewToolError("file not found: %s", args.Path)
			}
			out, err := json.Marshal(struct {
				Path     string `json:"path"`
				Size     int64  `json:"size"`
				IsDir    bool   `json:"is_dir"`
				Mode     string `json:"mode"`
				Modified string `json:"modified"`
			}{
				Path:     args.Path,
				Size:     info.Size(),
				IsDir:    info.IsDir(),
				Mode:     info.Mode().String(),
				Modified: info.ModTime().UTC().Format(time.RFC3339),
			})
			if err != nil {
				return "", fmt.Errorf("encode file info: %w", err)
			}
			return string(out), nil
		},
		WithOutputType("json"),
	)
}

// FileTools returns read_file, list_directory and get_file_info sharing
// one sandbox configuration.
func FileTools(opts ...FileOption) []Spec {
	return []Spec{
		NewReadFileTool(opts...),
		NewListDirTool(opts...),
		NewFileInfoTool(opts...),
	}
}
