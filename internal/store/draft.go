package store

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"hierarchy-cli/internal/model"

	"github.com/vmihailenco/msgpack/v5"
)

const (
	snapshotDraft   = "draft"
	snapshotApplied = "applied"

	snapshotVersion = 1

	metaDraftRevision = "draft_revision"
)

var (
	ErrNotInitialized     = errors.New("workspace not initialized (run 'hierarchy init')")
	ErrAlreadyInitialized = errors.New("workspace already initialized")
	// ErrStaleDraft means another process saved the draft after it was loaded.
	ErrStaleDraft = errors.New("draft was changed by another session; reload and retry")
)

type snapshotBlob struct {
	Version  int            `msgpack:"v"`
	Document model.Document `msgpack:"doc"`
}

// AppliedRecord is one row of the commit history.
type AppliedRecord struct {
	Seq     int64     `json:"seq" yaml:"seq"`
	At      time.Time `json:"at" yaml:"at"`
	Label   string    `json:"label" yaml:"label"`
	Changes int       `json:"changes" yaml:"changes"`
}

func encodeDocument(doc model.Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := enc.Encode(snapshotBlob{Version: snapshotVersion, Document: doc}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeDocument(b []byte) (model.Document, error) {
	var blob snapshotBlob
	dec := msgpack.NewDecoder(bytes.NewReader(b))
	if err := dec.Decode(&blob); err != nil {
		return model.Document{}, err
	}
	return blob.Document, nil
}

// Init creates the workspace with doc as the first draft.
func (s Store) Init(ctx context.Context, doc model.Document) error {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM snapshots WHERE kind = ?`, snapshotDraft).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrAlreadyInitialized
	}
	if _, err := ensureMetaUUID(ctx, db, "workspace_id"); err != nil {
		return err
	}
	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if err := putSnapshot(ctx, tx, snapshotDraft, doc); err != nil {
		return err
	}
	return tx.Commit()
}

// LoadDraft reads the current document, pending change entries, last commit
// stamp and revision in one read transaction.
func (s Store) LoadDraft(ctx context.Context) (model.Draft, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return model.Draft{}, err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return model.Draft{}, err
	}
	defer func() { _ = tx.Rollback() }()

	doc, ok, err := getSnapshot(ctx, tx, snapshotDraft)
	if err != nil {
		return model.Draft{}, err
	}
	if !ok {
		return model.Draft{}, ErrNotInitialized
	}
	d := model.Draft{Document: doc, Changes: []model.ChangeEntry{}}

	rows, err := tx.QueryContext(ctx, `SELECT id, ts_unixms, summary FROM changes ORDER BY seq ASC`)
	if err != nil {
		return model.Draft{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			c  model.ChangeEntry
			ms int64
		)
		if err := rows.Scan(&c.ID, &ms, &c.Summary); err != nil {
			return model.Draft{}, err
		}
		c.TS = time.UnixMilli(ms).UTC()
		d.Changes = append(d.Changes, c)
	}
	if err := rows.Err(); err != nil {
		return model.Draft{}, err
	}

	recs, err := queryAppliedLog(ctx, tx, 1)
	if err != nil {
		return model.Draft{}, err
	}
	if len(recs) > 0 {
		d.Applied = &model.Applied{At: recs[0].At, Label: recs[0].Label}
	}
	if d.Revision, err = readRevision(ctx, tx); err != nil {
		return model.Draft{}, err
	}
	return d, nil
}

// DraftRevision returns the revision of the stored draft. It starts at 0 and
// grows by one with every successful save.
func (s Store) DraftRevision(ctx context.Context) (int64, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return 0, err
	}
	defer db.Close()
	return readRevision(ctx, db)
}

// SaveDraft replaces the stored document and change entries. d.Revision must
// match the stored revision (ErrStaleDraft otherwise); the new revision is
// returned.
func (s Store) SaveDraft(ctx context.Context, d model.Draft) (int64, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()
	rev, err := bumpRevision(ctx, tx, d.Revision)
	if err != nil {
		return 0, err
	}
	if err := putSnapshot(ctx, tx, snapshotDraft, d.Document); err != nil {
		return 0, err
	}
	if err := replaceChanges(ctx, tx, d.Changes); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return rev, nil
}

// SaveApplied persists a draft that was just committed: the draft itself, a copy
// as the applied document, and a commit history row counting pending entries.
// Revisions are checked as in SaveDraft.
func (s Store) SaveApplied(ctx context.Context, d model.Draft, pending int) (int64, error) {
	if d.Applied == nil {
		return 0, errors.New("draft has no applied stamp")
	}
	db, err := s.openSQLite(ctx)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()
	rev, err := bumpRevision(ctx, tx, d.Revision)
	if err != nil {
		return 0, err
	}
	if err := putSnapshot(ctx, tx, snapshotDraft, d.Document); err != nil {
		return 0, err
	}
	if err := putSnapshot(ctx, tx, snapshotApplied, d.Document); err != nil {
		return 0, err
	}
	if err := replaceChanges(ctx, tx, d.Changes); err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO applied_log(at_unixms, label, changes) VALUES(?, ?, ?)`,
		d.Applied.At.UTC().UnixMilli(), d.Applied.Label, pending); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return rev, nil
}

// LoadApplied returns the last committed document, if any.
func (s Store) LoadApplied(ctx context.Context) (model.Document, bool, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return model.Document{}, false, err
	}
	defer db.Close()
	return getSnapshot(ctx, db, snapshotApplied)
}

// AppliedLog returns commit history, newest first. limit <= 0 returns everything.
func (s Store) AppliedLog(ctx context.Context, limit int) ([]AppliedRecord, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return queryAppliedLog(ctx, db, limit)
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func readRevision(ctx context.Context, q querier) (int64, error) {
	var v string
	err := q.QueryRowContext(ctx, `SELECT v FROM state_meta WHERE k = ?`, metaDraftRevision).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	rev, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt %s %q: %w", metaDraftRevision, v, err)
	}
	return rev, nil
}

// bumpRevision moves the stored revision from expect to expect+1 inside tx.
func bumpRevision(ctx context.Context, tx *sql.Tx, expect int64) (int64, error) {
	cur, err := readRevision(ctx, tx)
	if err != nil {
		return 0, err
	}
	if cur != expect {
		return 0, ErrStaleDraft
	}
	next := cur + 1
	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO state_meta(k, v) VALUES(?, ?)`,
		metaDraftRevision, strconv.FormatInt(next, 10)); err != nil {
		return 0, err
	}
	return next, nil
}

func queryAppliedLog(ctx context.Context, db querier, limit int) ([]AppliedRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.QueryContext(ctx, `SELECT seq, at_unixms, label, changes FROM applied_log ORDER BY seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []AppliedRecord{}
	for rows.Next() {
		var (
			r  AppliedRecord
			ms int64
		)
		if err := rows.Scan(&r.Seq, &ms, &r.Label, &r.Changes); err != nil {
			return nil, err
		}
		r.At = time.UnixMilli(ms).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

func putSnapshot(ctx context.Context, tx *sql.Tx, kind string, doc model.Document) error {
	b, err := encodeDocument(doc)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `INSERT OR REPLACE INTO snapshots(kind, blob, updated_at_unixms) VALUES(?, ?, ?)`,
		kind, b, time.Now().UTC().UnixMilli())
	return err
}

func getSnapshot(ctx context.Context, db querier, kind string) (model.Document, bool, error) {
	var b []byte
	err := db.QueryRowContext(ctx, `SELECT blob FROM snapshots WHERE kind = ?`, kind).Scan(&b)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Document{}, false, nil
	}
	if err != nil {
		return model.Document{}, false, err
	}
	doc, err := decodeDocument(b)
	if err != nil {
		return model.Document{}, false, err
	}
	return doc, true, nil
}

func replaceChanges(ctx context.Context, tx *sql.Tx, changes []model.ChangeEntry) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM changes`); err != nil {
		return err
	}
	for _, c := range changes {
		if _, err := tx.ExecContext(ctx, `INSERT INTO changes(id, ts_unixms, summary) VALUES(?, ?, ?)`,
			c.ID, c.TS.UTC().UnixMilli(), c.Summary); err != nil {
			return err
		}
	}
	return nil
}
