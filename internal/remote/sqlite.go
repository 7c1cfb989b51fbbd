package remote

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"famjam-cli/internal/model"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	_ "modernc.org/sqlite"
)

const defaultPollInterval = 250 * time.Millisecond

// SQLite keeps every board in one database file. Each write bumps a per-board version in the
// same transaction; subscribers poll that version, which works across processes sharing the file.
type SQLite struct {
	db     *sql.DB
	path   string
	poll   time.Duration
	logger log.FieldLogger
}

type SQLiteOptions struct {
	Path         string
	PollInterval time.Duration
}

// OpenSQLite opens (and migrates) the database. Failures are reported as ConfigError.
func OpenSQLite(ctx context.Context, opts SQLiteOptions, logger log.FieldLogger) (*SQLite, error) {
	if logger == nil {
		logger = log.StandardLogger()
	}
	if opts.Path == "" {
		return nil, ConfigError{Backend: "sqlite", Err: errors.New("missing database path")}
	}
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return nil, ConfigError{Backend: "sqlite", Err: err}
	}
	poll := opts.PollInterval
	if poll <= 0 {
		poll = defaultPollInterval
	}

	// Pragmas go in the DSN so every pooled connection gets them.
	// WAL enables one writer + many readers; busy_timeout helps avoid "database is locked" flakiness.
	q := url.Values{}
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "synchronous(NORMAL)")
	q.Add("_pragma", "busy_timeout(5000)")
	q.Set("_txlock", "immediate")
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", sqliteDSN(opts.Path, q))
	if err != nil {
		return nil, ConfigError{Backend: "sqlite", Err: err}
	}
	s := &SQLite{db: db, path: opts.Path, poll: poll, logger: logger.WithField("store", "sqlite")}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, ConfigError{Backend: "sqlite", Err: err}
	}
	return s, nil
}

// sqliteDSN builds a file: URI. The path is escaped so '?', '#' and '%' in a file name stay
// part of the name; SQLite decodes them again when it opens the URI.
func sqliteDSN(path string, q url.Values) string {
	u := url.URL{Path: path}
	return "file:" + u.EscapedPath() + "?" + q.Encode()
}

func (s *SQLite) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS boards (
			board TEXT PRIMARY KEY,
			version INTEGER NOT NULL,
			clock_us INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS tasks (
			board TEXT NOT NULL,
			id TEXT NOT NULL,
			created_at_us INTEGER NOT NULL,
			doc_json TEXT NOT NULL,
			PRIMARY KEY(board, id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_board_created ON tasks(board, created_at_us DESC);`,
	}
	for _, st := range stmts {
		if _, err := s.db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLite) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *SQLite) Close() error { return s.db.Close() }

// tick bumps the board version and returns a timestamp from the database clock that is strictly
// greater than any previously issued for the board.
func (s *SQLite) tick(ctx context.Context, tx *sql.Tx, board string) (int64, error) {
	var now int64
	if err := tx.QueryRowContext(ctx, `SELECT CAST((julianday('now') - 2440587.5) * 86400000000 AS INTEGER)`).Scan(&now); err != nil {
		return 0, err
	}
	var last int64
	err := tx.QueryRowContext(ctx, `SELECT clock_us FROM boards WHERE board = ?`, board).Scan(&last)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}
	ts := now
	if ts <= last {
		ts = last + 1
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO boards(board, version, clock_us) VALUES(?, 1, ?)
		ON CONFLICT(board) DO UPDATE SET version = version + 1, clock_us = excluded.clock_us`,
		board, ts)
	if err != nil {
		return 0, err
	}
	return ts, nil
}

func (s *SQLite) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *SQLite) Create(ctx context.Context, board string, fields map[string]string) (string, error) {
	id := uuid.NewString()
	doc := copyFields(fields)
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		ts, err := s.tick(ctx, tx, board)
		if err != nil {
			return err
		}
		stamp := strconv.FormatInt(ts, 10)
		doc[model.FieldCreatedAt] = stamp
		doc[model.FieldUpdatedAt] = stamp
		b, err := json.Marshal(doc)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO tasks(board, id, created_at_us, doc_json) VALUES(?, ?, ?, ?)`,
			board, id, ts, string(b))
		return err
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *SQLite) Update(ctx context.Context, board, id string, fields map[string]string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var raw string
		err := tx.QueryRowContext(ctx, `SELECT doc_json FROM tasks WHERE board = ? AND id = ?`, board, id).Scan(&raw)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		doc := map[string]string{}
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			return fmt.Errorf("decode task %s: %w", id, err)
		}
		ts, err := s.tick(ctx, tx, board)
		if err != nil {
			return err
		}
		for k, v := range fields {
			if k == model.FieldCreatedAt {
				continue
			}
			doc[k] = v
		}
		doc[model.FieldUpdatedAt] = strconv.FormatInt(ts, 10)
		b, err := json.Marshal(doc)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `UPDATE tasks SET doc_json = ? WHERE board = ? AND id = ?`, string(b), board, id)
		return err
	})
}

func (s *SQLite) Delete(ctx context.Context, board, id string) error {
	return s.DeleteBatch(ctx, board, []string{id})
}

func (s *SQLite) DeleteBatch(ctx context.Context, board string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var removed int64
		for _, id := range ids {
			res, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE board = ? AND id = ?`, board, id)
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			removed += n
		}
		if removed == 0 {
			return nil
		}
		_, err := s.tick(ctx, tx, board)
		return err
	})
}

func (s *SQLite) Query(ctx context.Context, board string, where Where) ([]Doc, error) {
	query := `SELECT id, doc_json FROM tasks WHERE board = ?`
	args := []any{board}
	if where.Field != "" {
		query += ` AND json_extract(doc_json, ?) = ?`
		args = append(args, "$."+where.Field, where.Value)
	}
	query += ` ORDER BY created_at_us DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []Doc{}
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		fields := map[string]string{}
		if err := json.Unmarshal([]byte(raw), &fields); err != nil {
			return nil, fmt.Errorf("decode task %s: %w", id, err)
		}
		docs = append(docs, Doc{ID: id, Fields: fields})
	}
	return docs, rows.Err()
}

func (s *SQLite) version(ctx context.Context, board string) (int64, error) {
	var v int64
	err := s.db.QueryRowContext(ctx, `SELECT version FROM boards WHERE board = ?`, board).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return v, err
}

// Subscribe polls the board version and re-reads the board whenever it moves.
func (s *SQLite) Subscribe(board string, onSnapshot func([]Doc), onError func(error)) func() {
	ctx, cancel := context.WithCancel(context.Background())
	logger := s.logger.WithField("board", board)

	go func() {
		fail := func(err error) {
			if ctx.Err() != nil {
				return
			}
			logger.WithError(err).Warn("change feed failed")
			onError(err)
		}

		seen := int64(-1)
		ticker := time.NewTicker(s.poll)
		defer ticker.Stop()
		for {
			v, err := s.version(ctx, board)
			if err != nil {
				fail(err)
				return
			}
			if v != seen {
				docs, err := s.Query(ctx, board, Where{})
				if err != nil {
					fail(err)
					return
				}
				if ctx.Err() != nil {
					return
				}
				seen = v
				onSnapshot(docs)
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return cancel
}
