package score

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Statements are fixed per enumeration value.
var (
	recordStatements = map[Outcome]string{
		OutcomeSuccess: `UPDATE pyramid_scores SET success = success + 1, stolen = stolen + ?, biggest = MAX(biggest, ?) WHERE user = ?`,
		OutcomeFailed:  `UPDATE pyramid_scores SET failed = failed + 1, stolen = stolen + ?, biggest = MAX(biggest, ?) WHERE user = ?`,
		OutcomeBlocked: `UPDATE pyramid_scores SET blocked = blocked + 1, stolen = stolen + ?, biggest = MAX(biggest, ?) WHERE user = ?`,
	}
	scoreQueries = map[Kind]string{
		KindSuccess: `SELECT success FROM pyramid_scores WHERE user = ?`,
		KindFailed:  `SELECT failed FROM pyramid_scores WHERE user = ?`,
		KindBlocked: `SELECT blocked FROM pyramid_scores WHERE user = ?`,
		KindStolen:  `SELECT stolen FROM pyramid_scores WHERE user = ?`,
	}
	topQueries = map[Kind]string{
		KindSuccess: `SELECT user, success FROM pyramid_scores ORDER BY success DESC, rowid ASC LIMIT ?`,
		KindFailed:  `SELECT user, failed FROM pyramid_scores ORDER BY failed DESC, rowid ASC LIMIT ?`,
		KindBlocked: `SELECT user, blocked FROM pyramid_scores ORDER BY blocked DESC, rowid ASC LIMIT ?`,
		KindStolen:  `SELECT user, stolen FROM pyramid_scores ORDER BY stolen DESC, rowid ASC LIMIT ?`,
	}
)

const (
	insertUserStatement = `INSERT INTO pyramid_scores (user) VALUES (?) ON CONFLICT(user) DO NOTHING`
	selectRecordQuery   = `SELECT user, success, failed, blocked, stolen, biggest FROM pyramid_scores WHERE user = ?`
)

// SQLiteStore implements Store on a sqlite database.
type SQLiteStore struct {
	db *sql.DB
	// writeMu serialises write transactions to keep SQLITE_BUSY rare.
	writeMu sync.Mutex
}

// OpenSQLite opens (or creates) the score database at path and applies migrations.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := applyMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// RecordOutcome creates the user's row if needed and applies the outcome in one transaction.
func (s *SQLiteStore) RecordOutcome(ctx context.Context, user string, outcome Outcome, stolen bool, size int) (Record, error) {
	key, err := validateWrite(user, outcome, size)
	if err != nil {
		return Record{}, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Record{}, fmt.Errorf("begin record %s: %w", outcome, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, insertUserStatement, key); err != nil {
		return Record{}, fmt.Errorf("ensure row for %s: %w", key, err)
	}

	stolenInc := 0
	if stolen {
		stolenInc = 1
	}
	if _, err := tx.ExecContext(ctx, recordStatements[outcome], stolenInc, size, key); err != nil {
		return Record{}, fmt.Errorf("record %s for %s: %w", outcome, key, err)
	}

	rec, err := scanRecord(tx.QueryRowContext(ctx, selectRecordQuery, key))
	if err != nil {
		return Record{}, fmt.Errorf("read back %s: %w", key, err)
	}

	if err := tx.Commit(); err != nil {
		return Record{}, fmt.Errorf("commit record %s for %s: %w", outcome, key, err)
	}
	return rec, nil
}

// Score returns one counter for user, or ErrNotFound.
func (s *SQLiteStore) Score(ctx context.Context, user string, kind Kind) (int, error) {
	q, ok := scoreQueries[kind]
	if !ok {
		return 0, fmt.Errorf("%w: %v", ErrUnknownKind, kind)
	}

	var v int
	err := s.db.QueryRowContext(ctx, q, NormalizeUser(user)).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("query %s score: %w", kind, err)
	}
	return v, nil
}

// Get returns the whole row for user, or ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, user string) (Record, error) {
	rec, err := scanRecord(s.db.QueryRowContext(ctx, selectRecordQuery, NormalizeUser(user)))
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("query record: %w", err)
	}
	return rec, nil
}

// TopScores returns the n highest values of kind, ties in insertion order.
func (s *SQLiteStore) TopScores(ctx context.Context, kind Kind, n int) ([]Entry, error) {
	q, ok := topQueries[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownKind, kind)
	}

	rows, err := s.db.QueryContext(ctx, q, ClampTop(n))
	if err != nil {
		return nil, fmt.Errorf("query top %s: %w", kind, err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.User, &e.Value); err != nil {
			return nil, fmt.Errorf("scan top %s: %w", kind, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate top %s: %w", kind, err)
	}
	return out, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

func scanRecord(row *sql.Row) (Record, error) {
	var r Record
	err := row.Scan(&r.User, &r.Success, &r.Failed, &r.Blocked, &r.Stolen, &r.Biggest)
	return r, err
}

// IsTransient reports whether err is a sqlite busy/locked condition worth retrying.
func IsTransient(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() & 0xff {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return true
	}
	return false
}
