// Package journal records adjusted edits in a SQLite database.
//
// A Store hands out scopes that run each edit inside both a memory
// checkpoint and a SQL transaction. The adjuster records the edit through
// the same scope, so a failed edit leaves neither the corpus nor the
// journal changed.
package journal

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/FocuswithJustin/JuniperText/core/adjust"
	"github.com/FocuswithJustin/JuniperText/core/errors"
	"github.com/FocuswithJustin/JuniperText/core/interlinear"
	"github.com/FocuswithJustin/JuniperText/core/sqlite"
	"github.com/FocuswithJustin/JuniperText/core/txn"
	"github.com/FocuswithJustin/JuniperText/internal/logging"
)

const schema = `
CREATE TABLE IF NOT EXISTS edits (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	id         TEXT NOT NULL UNIQUE,
	kind       TEXT NOT NULL,
	text_id    TEXT NOT NULL,
	applied_at TEXT NOT NULL,
	deleted    BLOB
);
CREATE TABLE IF NOT EXISTS edit_paragraphs (
	edit_id     TEXT NOT NULL REFERENCES edits(id) ON DELETE CASCADE,
	para_id     TEXT NOT NULL,
	role        TEXT NOT NULL,
	before_hash TEXT NOT NULL DEFAULT '',
	after_hash  TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (edit_id, para_id)
);
CREATE INDEX IF NOT EXISTS edit_paragraphs_para ON edit_paragraphs(para_id);
CREATE TABLE IF NOT EXISTS losses (
	edit_id      TEXT NOT NULL REFERENCES edits(id) ON DELETE CASCADE,
	path         TEXT NOT NULL,
	element_type TEXT NOT NULL,
	reason       TEXT NOT NULL,
	value        BLOB
);
CREATE INDEX IF NOT EXISTS losses_edit ON losses(edit_id);
CREATE TABLE IF NOT EXISTS snapshots (
	edit_id TEXT NOT NULL REFERENCES edits(id) ON DELETE CASCADE,
	para_id TEXT NOT NULL,
	data    BLOB NOT NULL,
	PRIMARY KEY (edit_id, para_id)
);
`

// Paragraph roles in an edit.
const (
	RoleChanged = "changed"
	RoleCreated = "created"
	RoleRemoved = "removed"
)

// Store is an open journal database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the journal at path.
func Open(path string) (*Store, error) {
	db, err := sqlite.OpenSingle(path, "foreign_keys = ON", "busy_timeout = 5000")
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.NewIO("create schema", path, err)
	}
	logging.Debug("journal opened", "path", path, "driver", sqlite.DriverType())
	return &Store{db: db, path: path}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database path.
func (s *Store) Path() string {
	return s.path
}

// Scope is a txn.Scope and adjust.Recorder bound to one store. Records made
// while Run is active join its transaction.
type Scope struct {
	store *Store
	mem   txn.Memory
	tx    *sql.Tx
}

// Scope returns a scope that checkpoints each action's target.
func (s *Store) Scope() *Scope {
	return &Scope{store: s}
}

// Run implements txn.Scope. The SQL transaction commits only when action
// succeeds; otherwise both the transaction and the checkpoint roll back.
func (sc *Scope) Run(name string, target txn.Checkpointer, action func() error) error {
	if sc.tx != nil {
		return errors.NewUnsupported("journal scope", "nested run of "+name)
	}
	tx, err := sc.store.db.Begin()
	if err != nil {
		return errors.NewIO("begin", sc.store.path, err)
	}
	sc.tx = tx
	err = sc.mem.Run(name, target, action)
	sc.tx = nil
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logging.Error("journal rollback failed", "scope", name, "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return errors.NewIO("commit", sc.store.path, err)
	}
	return nil
}

// RecordEdit implements adjust.Recorder. Outside Run it writes in a
// transaction of its own.
func (sc *Scope) RecordEdit(rec *adjust.Record) error {
	if sc.tx != nil {
		return writeRecord(sc.tx, rec)
	}
	tx, err := sc.store.db.Begin()
	if err != nil {
		return errors.NewIO("begin", sc.store.path, err)
	}
	if err := writeRecord(tx, rec); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func writeRecord(tx *sql.Tx, rec *adjust.Record) error {
	var deleted []string
	for _, w := range rec.Deleted {
		deleted = append(deleted, w.WS+":"+w.Form)
	}
	deletedBlob, err := msgpack.Marshal(deleted)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(
		`INSERT INTO edits (id, kind, text_id, applied_at, deleted) VALUES (?, ?, ?, ?, ?)`,
		rec.ID.String(), rec.Kind, rec.Text.String(), rec.At.Format(time.RFC3339Nano), deletedBlob,
	); err != nil {
		return errors.Wrap(err, "insert edit")
	}

	removed := make(map[uuid.UUID]bool, len(rec.Removed))
	for _, id := range rec.Removed {
		removed[id] = true
	}
	paras := make(map[uuid.UUID]bool)
	for id := range rec.Before {
		paras[id] = true
	}
	for id := range rec.After {
		paras[id] = true
	}
	for id := range paras {
		before, hadBefore := rec.Before[id]
		after := rec.After[id]
		role := RoleChanged
		switch {
		case removed[id]:
			role = RoleRemoved
		case !hadBefore:
			role = RoleCreated
		}
		if _, err := tx.Exec(
			`INSERT INTO edit_paragraphs (edit_id, para_id, role, before_hash, after_hash) VALUES (?, ?, ?, ?, ?)`,
			rec.ID.String(), id.String(), role, before, after,
		); err != nil {
			return errors.Wrap(err, "insert edit paragraph")
		}
	}

	if rec.Losses != nil {
		for _, e := range rec.Losses.LostElements {
			var value []byte
			if e.OriginalValue != nil {
				if value, err = msgpack.Marshal(e.OriginalValue); err != nil {
					return err
				}
			}
			if _, err := tx.Exec(
				`INSERT INTO losses (edit_id, path, element_type, reason, value) VALUES (?, ?, ?, ?, ?)`,
				rec.ID.String(), e.Path, e.ElementType, e.Reason, value,
			); err != nil {
				return errors.Wrap(err, "insert loss")
			}
		}
	}

	for _, p := range rec.Paragraphs {
		data, err := encodeSnapshot(NewSnapshot(p))
		if err != nil {
			return errors.Wrap(err, "encode snapshot")
		}
		if _, err := tx.Exec(
			`INSERT INTO snapshots (edit_id, para_id, data) VALUES (?, ?, ?)`,
			rec.ID.String(), p.GUID.String(), data,
		); err != nil {
			return errors.Wrap(err, "insert snapshot")
		}
	}
	logging.Debug("edit journaled", "edit_id", rec.ID.String(), "kind", rec.Kind, "paragraphs", len(paras))
	return nil
}

// Entry is one journaled edit as seen from a paragraph.
type Entry struct {
	ID      uuid.UUID
	Kind    string
	Text    uuid.UUID
	At      time.Time
	Role    string
	Before  string
	After   string
	Losses  []interlinear.LostElement
	Deleted []string
}

// History lists the edits that touched para, oldest first.
func (s *Store) History(ctx context.Context, para uuid.UUID) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.id, e.kind, e.text_id, e.applied_at, e.deleted, p.role, p.before_hash, p.after_hash
		FROM edits e JOIN edit_paragraphs p ON p.edit_id = e.id
		WHERE p.para_id = ?
		ORDER BY e.seq`, para.String())
	if err != nil {
		return nil, errors.NewIO("query history", s.path, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e            Entry
			id, text, at string
			deletedBlob  []byte
		)
		if err := rows.Scan(&id, &e.Kind, &text, &at, &deletedBlob, &e.Role, &e.Before, &e.After); err != nil {
			return nil, errors.NewIO("scan history", s.path, err)
		}
		e.ID, _ = uuid.Parse(id)
		e.Text, _ = uuid.Parse(text)
		e.At, _ = time.Parse(time.RFC3339Nano, at)
		if len(deletedBlob) > 0 {
			if err := msgpack.Unmarshal(deletedBlob, &e.Deleted); err != nil {
				return nil, errors.NewParse("msgpack", s.path, err.Error())
			}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewIO("read history", s.path, err)
	}

	for i := range entries {
		if entries[i].Losses, err = s.losses(ctx, entries[i].ID); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

func (s *Store) losses(ctx context.Context, edit uuid.UUID) ([]interlinear.LostElement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path, element_type, reason, value FROM losses WHERE edit_id = ? ORDER BY rowid`, edit.String())
	if err != nil {
		return nil, errors.NewIO("query losses", s.path, err)
	}
	defer rows.Close()

	var out []interlinear.LostElement
	for rows.Next() {
		var (
			e     interlinear.LostElement
			value []byte
		)
		if err := rows.Scan(&e.Path, &e.ElementType, &e.Reason, &value); err != nil {
			return nil, errors.NewIO("scan loss", s.path, err)
		}
		if len(value) > 0 {
			if err := msgpack.Unmarshal(value, &e.OriginalValue); err != nil {
				return nil, errors.NewParse("msgpack", s.path, err.Error())
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// LatestSnapshot returns the most recent stored state of para.
func (s *Store) LatestSnapshot(ctx context.Context, para uuid.UUID) (*Snapshot, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT s.data FROM snapshots s JOIN edits e ON e.id = s.edit_id
		WHERE s.para_id = ?
		ORDER BY e.seq DESC LIMIT 1`, para.String()).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("snapshot", para.String())
	}
	if err != nil {
		return nil, errors.NewIO("query snapshot", s.path, err)
	}
	snap, err := decodeSnapshot(data)
	if err != nil {
		return nil, errors.NewParse("snapshot", s.path, err.Error())
	}
	return snap, nil
}

// Count returns the number of journaled edits.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM edits`).Scan(&n); err != nil {
		return 0, errors.NewIO("count edits", s.path, err)
	}
	return n, nil
}
