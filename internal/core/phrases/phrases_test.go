package phrases

import (
	"os"
	"path/filepath"
	"testing"

	kit "meitanbot/internal/platform/testkit"
)

func TestOpen_TrimsAndDropsBlank(t *testing.T) {
	dir := t.TempDir()
	kit.WriteFile(t, dir, "a.txt", "  めいたんじゃないです \n\n\t\nちがいます\n")
	b, err := Open(dir, map[string]string{"meitan": "a.txt"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if b.Counts()["meitan"] != 2 {
		t.Fatalf("Counts = %v", b.Counts())
	}
	seen := map[string]bool{}
	for range 200 {
		s, ok := b.Pick("meitan")
		if !ok {
			t.Fatalf("Pick failed")
		}
		seen[s] = true
	}
	if !seen["めいたんじゃないです"] || !seen["ちがいます"] || len(seen) != 2 {
		t.Fatalf("unexpected picks %v", seen)
	}
	if _, ok := b.Pick("nope"); ok {
		t.Fatalf("unknown category should miss")
	}
}

func TestOpen_MissingOrEmptyIsError(t *testing.T) {
	dir := t.TempDir()
	if _, err := Open(dir, map[string]string{"meitan": "none.txt"}); err == nil {
		t.Fatalf("missing file should fail")
	}
	kit.WriteFile(t, dir, "blank.txt", "\n  \n")
	if _, err := Open(dir, map[string]string{"meitan": "blank.txt"}); err == nil {
		t.Fatalf("blank file should fail")
	}
}

func TestReload_KeepsOldOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := kit.WriteFile(t, dir, "a.txt", "one\n")
	b, err := Open(dir, map[string]string{"mention": "a.txt"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	kit.WriteFile(t, dir, "a.txt", "two\nthree\n")
	if err := b.Reload(); err != nil || b.Counts()["mention"] != 2 {
		t.Fatalf("reload = %v %v", err, b.Counts())
	}

	_ = os.Remove(path)
	if err := b.Reload(); err == nil {
		t.Fatalf("reload of missing file should fail")
	}
	if b.Counts()["mention"] != 2 {
		t.Fatalf("previous lists should survive a failed reload")
	}
}

func TestDefaultFiles_ShippedPhrasesLoad(t *testing.T) {
	dir := filepath.Join("..", "..", "..", "phrases")
	b, err := Open(dir, nil)
	if err != nil {
		t.Fatalf("shipped phrases: %v", err)
	}
	if got := b.Categories(); len(got) != len(DefaultFiles) {
		t.Fatalf("Categories = %v", got)
	}
}

func TestFromLists(t *testing.T) {
	b := FromLists(map[string][]string{"nullpo": {" ｶﾞｯ ", ""}})
	if s, ok := b.Pick("nullpo"); !ok || s != "ｶﾞｯ" {
		t.Fatalf("Pick = %q %v", s, ok)
	}
	if err := b.Reload(); err != nil {
		t.Fatalf("Reload on in-memory book: %v", err)
	}
}
