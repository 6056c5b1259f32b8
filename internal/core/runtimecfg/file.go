package runtimecfg

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"meitanbot/internal/core/event"
)

// LoadIgnoreFile reads one numeric id per line; blank lines and # comments are skipped
// a missing file is an empty list so a fresh install starts cleanly
func LoadIgnoreFile(path string) ([]event.UserID, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("runtimecfg: read ignore list: %w", err)
	}
	var out []event.UserID
	sc := bufio.NewScanner(bytes.NewReader(b))
	line := 0
	for sc.Scan() {
		line++
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		id, err := event.ParseUserID(s)
		if err != nil {
			return nil, fmt.Errorf("runtimecfg: ignore list line %d: %q is not an id", line, s)
		}
		out = append(out, id)
	}
	return out, sc.Err()
}

// SaveIgnoreFile rewrites path atomically through a temp file in the same directory
func SaveIgnoreFile(path string, ids []event.UserID) error {
	var buf bytes.Buffer
	for _, id := range ids {
		buf.WriteString(id.String())
		buf.WriteByte('\n')
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".ignore-*")
	if err != nil {
		return fmt.Errorf("runtimecfg: temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("runtimecfg: write ignore list: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("runtimecfg: close ignore list: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("runtimecfg: replace ignore list: %w", err)
	}
	return nil
}

// Save persists the current ignore list, leaving out the self id which is implicit
func (c *Config) Save(path string) error {
	s := c.Snapshot()
	ids := s.IgnoredIDs()
	out := ids[:0]
	for _, id := range ids {
		if id != s.SelfID {
			out = append(out, id)
		}
	}
	return SaveIgnoreFile(path, out)
}
