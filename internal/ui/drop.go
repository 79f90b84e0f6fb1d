package ui

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/hurricanerix/blueprint/internal/analyzer"
)

// ParseDroppedPaths splits text pasted into the drop zone into paths.
//
// Terminals deliver a drag-and-drop as pasted text: paths separated by
// spaces or newlines, with spaces either backslash-escaped or the whole
// path quoted, and sometimes as file:// URIs.
func ParseDroppedPaths(text string) []string {
	var (
		paths   []string
		cur     strings.Builder
		quote   rune
		escaped bool
		inToken bool
	)

	flush := func() {
		if inToken {
			if p := normalizePath(cur.String()); p != "" {
				paths = append(paths, p)
			}
		}
		cur.Reset()
		inToken = false
	}

	for _, r := range text {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '\\':
			escaped = true
			inToken = true
		case r == '\'' || r == '"':
			quote = r
			inToken = true
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			flush()
		default:
			cur.WriteRune(r)
			inToken = true
		}
	}
	flush()

	return paths
}

func normalizePath(p string) string {
	if strings.HasPrefix(p, "file://") {
		u, err := url.Parse(p)
		if err != nil || u.Path == "" {
			return ""
		}
		return u.Path
	}
	return p
}

// DroppedPaths resolves drop zone text to paths. Text naming an existing
// file as a whole wins over splitting, so unquoted paths with spaces work.
func DroppedPaths(text string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	if info, err := os.Stat(expandHome(trimmed)); err == nil && info.Mode().IsRegular() {
		return []string{trimmed}
	}
	return ParseDroppedPaths(trimmed)
}

// LoadFiles reads every path into memory, in order. Any unreadable path
// fails the whole load so a partial drop never replaces the selection.
func LoadFiles(paths []string) ([]analyzer.File, error) {
	files := make([]analyzer.File, 0, len(paths))
	for _, p := range paths {
		p = expandHome(p)
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("cannot read %s: %w", p, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("cannot read %s: is a directory", p)
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("cannot read %s: %w", p, err)
		}
		files = append(files, analyzer.File{Name: filepath.Base(p), Data: data})
	}
	return files, nil
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
