// Package corpus keeps a local sqlite store of observed posts and words and
// builds generated reply text from it
package corpus

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"meitanbot/internal/core/event"
	perr "meitanbot/internal/platform/errors"
	"meitanbot/internal/platform/logger"

	_ "modernc.org/sqlite"
)

// openDB is swapped in tests
var openDB = sql.Open

// Store is the sqlite backed corpus
type Store struct {
	db   *sql.DB
	log  logger.Logger
	rand func(n int) int
}

// Open creates the directory if needed, opens dir/corpus.db and migrates it
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("corpus: create dir: %w", err)
		}
	}
	db, err := openDB("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("corpus: open database: %w", err)
	}
	// a single connection keeps writes serialized and pragmas in effect
	db.SetMaxOpenConns(1)
	for _, p := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("corpus: pragma %q: %w", p, err)
		}
	}
	s := &Store{db: db, log: *logger.Named("corpus"), rand: rand.IntN}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("corpus: migration: %w", err)
	}
	return s, nil
}

// Close closes the database
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS posts (
			id         INTEGER PRIMARY KEY,
			author_id  INTEGER NOT NULL,
			text       TEXT    NOT NULL,
			learned_at TEXT    NOT NULL DEFAULT (datetime('now'))
		);
		CREATE INDEX IF NOT EXISTS idx_posts_author ON posts(author_id);

		CREATE TABLE IF NOT EXISTS words (
			word  TEXT PRIMARY KEY,
			seen  INTEGER NOT NULL DEFAULT 1,
			last  TEXT    NOT NULL DEFAULT (datetime('now'))
		);
	`)
	return err
}

// Learn records the post and its words; a post seen twice is stored once
func (s *Store) Learn(ctx context.Context, p event.Post) error {
	text := clean(p.Text)
	if text == "" {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "corpus: begin")
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO posts (id, author_id, text) VALUES (?, ?, ?)`,
		p.ID, int64(p.Author.ID), text)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "corpus: insert post")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil
	}
	now := time.Now().UTC().Format(time.DateTime)
	for _, w := range Words(text) {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO words (word, last) VALUES (?, ?)
			ON CONFLICT(word) DO UPDATE SET seen = seen + 1, last = excluded.last`, w, now); err != nil {
			return perr.Wrap(err, perr.ErrorCodeDB, "corpus: upsert word")
		}
	}
	return perr.WrapIf(tx.Commit(), perr.ErrorCodeDB, "corpus: commit")
}

// SampleTemplateText builds a reply from one of the author's own posts (any post
// when the author has none) with one word swapped for a random learned word
// an empty corpus yields a NotFound error
func (s *Store) SampleTemplateText(ctx context.Context, authorID event.UserID) (string, error) {
	base, err := s.samplePost(ctx, authorID)
	if err != nil {
		return "", err
	}
	words := Words(base)
	if len(words) == 0 {
		return base, nil
	}
	var repl string
	err = s.db.QueryRowContext(ctx, `SELECT word FROM words ORDER BY random() LIMIT 1`).Scan(&repl)
	if err != nil {
		if err == sql.ErrNoRows {
			return base, nil
		}
		return "", perr.Wrap(err, perr.ErrorCodeDB, "corpus: sample word")
	}
	target := words[s.rand(len(words))]
	s.log.Debug().Str("base", base).Str("swap", target).Str("with", repl).Msg("corpus sample")
	return strings.Replace(base, target, repl, 1), nil
}

func (s *Store) samplePost(ctx context.Context, authorID event.UserID) (string, error) {
	var text string
	err := s.db.QueryRowContext(ctx,
		`SELECT text FROM posts WHERE author_id = ? ORDER BY random() LIMIT 1`, int64(authorID)).Scan(&text)
	if err == sql.ErrNoRows {
		err = s.db.QueryRowContext(ctx, `SELECT text FROM posts ORDER BY random() LIMIT 1`).Scan(&text)
	}
	switch {
	case err == sql.ErrNoRows:
		return "", perr.NotFoundf("corpus: no posts learned")
	case err != nil:
		return "", perr.Wrap(err, perr.ErrorCodeDB, "corpus: sample post")
	}
	return text, nil
}

// Counts reports how many posts and words are stored
func (s *Store) Counts(ctx context.Context) (posts, words int64, err error) {
	err = s.db.QueryRowContext(ctx, `SELECT (SELECT count(*) FROM posts), (SELECT count(*) FROM words)`).
		Scan(&posts, &words)
	return posts, words, perr.WrapIf(err, perr.ErrorCodeDB, "corpus: counts")
}
