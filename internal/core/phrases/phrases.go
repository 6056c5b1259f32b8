// Package phrases holds the canned reply lists, one UTF-8 file per category
package phrases

import (
	"bufio"
	"bytes"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
)

// DefaultFiles maps a category to its file name inside the phrase directory
var DefaultFiles = map[string]string{
	"meitan":    "notmeitan.txt",
	"mention":   "reply_mention.txt",
	"csharp":    "reply_csharp.txt",
	"morning":   "reply_morning.txt",
	"sleeping":  "reply_sleeping.txt",
	"departure": "reply_departure.txt",
	"returning": "reply_returning.txt",
	"nullpo":    "reply_nullpo.txt",
}

// Book is a reloadable set of phrase lists
type Book struct {
	dir   string
	files map[string]string
	cur   atomic.Pointer[map[string][]string]
}

// Open loads every file; any missing or empty file is an error
func Open(dir string, files map[string]string) (*Book, error) {
	if files == nil {
		files = DefaultFiles
	}
	b := &Book{dir: dir, files: files}
	if err := b.Reload(); err != nil {
		return nil, err
	}
	return b, nil
}

// FromLists builds a Book from in-memory lists, used by tests and the console dry run
func FromLists(lists map[string][]string) *Book {
	b := &Book{}
	m := make(map[string][]string, len(lists))
	for k, v := range lists {
		m[k] = clean(v)
	}
	b.cur.Store(&m)
	return b
}

// Reload rereads the files; on failure the previous lists stay in place
func (b *Book) Reload() error {
	if b.dir == "" && b.files == nil {
		return nil
	}
	next := make(map[string][]string, len(b.files))
	for cat, name := range b.files {
		lines, err := readLines(filepath.Join(b.dir, name))
		if err != nil {
			return fmt.Errorf("phrases: %s: %w", cat, err)
		}
		if len(lines) == 0 {
			return fmt.Errorf("phrases: %s: %s has no phrases", cat, name)
		}
		next[cat] = lines
	}
	b.cur.Store(&next)
	return nil
}

// Pick returns a uniformly random phrase for category
func (b *Book) Pick(category string) (string, bool) {
	lines := (*b.cur.Load())[category]
	if len(lines) == 0 {
		return "", false
	}
	return lines[rand.IntN(len(lines))], true
}

// Counts reports list sizes by category
func (b *Book) Counts() map[string]int {
	m := *b.cur.Load()
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = len(v)
	}
	return out
}

// Categories lists loaded categories in name order
func (b *Book) Categories() []string {
	m := *b.cur.Load()
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func readLines(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(raw))
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return clean(lines), nil
}

// clean trims each line and drops the blank ones
func clean(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
