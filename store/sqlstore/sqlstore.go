// Package sqlstore is a SQLite-backed store.Collection.  Documents live
// one table per collection as (id, data) rows with the data tree stored
// as JSON.  Sessions wrap *sql.Tx, so a change record inserted under the
// same session as its mutation rolls back with it.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/scribe-data/scribe/ir"
	"github.com/scribe-data/scribe/store"

	_ "modernc.org/sqlite"
)

type config struct {
	busyTimeout int
	synchronous string
}

type Option func(*config)

// WithBusyTimeout sets PRAGMA busy_timeout in milliseconds. Default: 10000.
func WithBusyTimeout(ms int) Option { return func(c *config) { c.busyTimeout = ms } }

// WithSynchronous sets PRAGMA synchronous. Default: "NORMAL".
func WithSynchronous(mode string) Option { return func(c *config) { c.synchronous = mode } }

// DB is one SQLite database holding any number of collections.
// Collections sharing a DB share its transactions.
type DB struct {
	db *sql.DB
}

// Open opens the database at path and applies the WAL pragmas.
func Open(path string, opts ...Option) (*DB, error) {
	cfg := config{busyTimeout: 10_000, synchronous: "NORMAL"}
	for _, o := range opts {
		o(&cfg)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.busyTimeout),
		fmt.Sprintf("PRAGMA synchronous = %s", cfg.synchronous),
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlstore: %s: %w", p, err)
		}
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlstore: ping: %w", err)
	}
	return &DB{db: db}, nil
}

// OpenMemory opens an in-memory database for testing.  MaxOpenConns is
// pinned to 1 since every connection to ":memory:" is a separate
// database.  Closing is registered on t.Cleanup.
func OpenMemory(t testing.TB, opts ...Option) *DB {
	t.Helper()
	d, err := Open(":memory:", opts...)
	if err != nil {
		t.Fatalf("sqlstore.OpenMemory: %v", err)
	}
	d.db.SetMaxOpenConns(1)
	t.Cleanup(func() { d.Close() })
	return d
}

func (d *DB) Close() error { return d.db.Close() }

// Tx is the session handle for this store.  Pass it as the
// store.Session to every operation of one logical mutation.
type Tx struct {
	tx *sql.Tx
}

func (d *DB) Begin(ctx context.Context) (*Tx, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Tx{tx: tx}, nil
}

func (t *Tx) Commit() error   { return t.tx.Commit() }
func (t *Tx) Rollback() error { return t.tx.Rollback() }

var tableRx = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Collection creates the backing table if needed and returns a handle.
func (d *DB) Collection(name string) (*Collection, error) {
	if !tableRx.MatchString(name) {
		return nil, fmt.Errorf("sqlstore: bad collection name %q", name)
	}
	schema := fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (id TEXT PRIMARY KEY, data TEXT NOT NULL)`, name)
	if _, err := d.db.Exec(schema); err != nil {
		return nil, fmt.Errorf("sqlstore: create %s: %w", name, err)
	}
	return &Collection{db: d, table: name}, nil
}

type Collection struct {
	db    *DB
	table string
}

var _ store.Collection = (*Collection)(nil)

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (c *Collection) q(sess store.Session) (querier, error) {
	switch s := sess.(type) {
	case nil:
		return c.db.db, nil
	case *Tx:
		return s.tx, nil
	default:
		return nil, fmt.Errorf("sqlstore: unknown session type %T", sess)
	}
}

func (c *Collection) find(ctx context.Context, conds store.Conditions, sess store.Session, limit int) ([]*store.Document, error) {
	m, err := store.NewMatcher(conds)
	if err != nil {
		return nil, err
	}
	q, err := c.q(sess)
	if err != nil {
		return nil, err
	}
	query := "SELECT id, data FROM " + c.table
	var args []any
	// narrow by identity when the conditions pin it down
	switch idc := conds["_id"].(type) {
	case string:
		query += " WHERE id = ?"
		args = append(args, idc)
	case store.In:
		if len(idc) == 0 {
			return nil, nil
		}
		ph := make([]string, len(idc))
		for i, v := range idc {
			ph[i] = "?"
			args = append(args, fmt.Sprintf("%v", v))
		}
		query += " WHERE id IN (" + strings.Join(ph, ",") + ")"
	}
	query += " ORDER BY id"
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: find %s: %w", c.table, err)
	}
	defer rows.Close()
	var res []*store.Document
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, err
		}
		tree, err := ir.FromJSON([]byte(data))
		if err != nil {
			return nil, fmt.Errorf("sqlstore: row %s/%s: %w", c.table, id, err)
		}
		doc := &store.Document{ID: id, Data: tree}
		ok, err := m.Match(doc)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		res = append(res, doc)
		if limit > 0 && len(res) == limit {
			break
		}
	}
	return res, rows.Err()
}

func (c *Collection) FindOne(ctx context.Context, conds store.Conditions, sess store.Session) (*store.Document, error) {
	docs, err := c.find(ctx, conds, sess, 1)
	if err != nil || len(docs) == 0 {
		return nil, err
	}
	return docs[0], nil
}

func (c *Collection) FindMany(ctx context.Context, conds store.Conditions, sess store.Session) ([]*store.Document, error) {
	return c.find(ctx, conds, sess, 0)
}

func (c *Collection) Insert(ctx context.Context, doc *store.Document, sess store.Session) error {
	q, err := c.q(sess)
	if err != nil {
		return err
	}
	data, err := doc.Data.MarshalJSON()
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx,
		"INSERT INTO "+c.table+" (id, data) VALUES (?, ?)", doc.ID, string(data))
	if err != nil {
		return fmt.Errorf("sqlstore: insert %s/%s: %w", c.table, doc.ID, err)
	}
	return nil
}

func (c *Collection) Save(ctx context.Context, doc *store.Document, sess store.Session) error {
	q, err := c.q(sess)
	if err != nil {
		return err
	}
	data, err := doc.Data.MarshalJSON()
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx,
		"INSERT INTO "+c.table+" (id, data) VALUES (?, ?)"+
			" ON CONFLICT(id) DO UPDATE SET data = excluded.data",
		doc.ID, string(data))
	if err != nil {
		return fmt.Errorf("sqlstore: save %s/%s: %w", c.table, doc.ID, err)
	}
	return nil
}

func (c *Collection) UpdateOne(ctx context.Context, conds store.Conditions, u store.Update, upsert bool, sess store.Session) (store.UpdateResult, error) {
	return c.update(ctx, conds, u, upsert, sess, 1)
}

func (c *Collection) UpdateMany(ctx context.Context, conds store.Conditions, u store.Update, upsert bool, sess store.Session) (store.UpdateResult, error) {
	return c.update(ctx, conds, u, upsert, sess, 0)
}

func (c *Collection) update(ctx context.Context, conds store.Conditions, u store.Update, upsert bool, sess store.Session, limit int) (store.UpdateResult, error) {
	var res store.UpdateResult
	// run under the caller's session, or an own transaction so the
	// read-modify-write is atomic
	own := false
	tx, ok := sess.(*Tx)
	if !ok {
		var err error
		tx, err = c.db.Begin(ctx)
		if err != nil {
			return res, err
		}
		own = true
		defer func() {
			if own {
				tx.Rollback()
			}
		}()
	}
	docs, err := c.find(ctx, conds, tx, limit)
	if err != nil {
		return res, err
	}
	for _, doc := range docs {
		next := store.ApplyUpdate(doc.Data, u)
		data, err := next.MarshalJSON()
		if err != nil {
			return res, err
		}
		if _, err := tx.tx.ExecContext(ctx,
			"UPDATE "+c.table+" SET data = ? WHERE id = ?", string(data), doc.ID); err != nil {
			return res, fmt.Errorf("sqlstore: update %s/%s: %w", c.table, doc.ID, err)
		}
		res.Matched++
	}
	if res.Matched == 0 && upsert {
		id, _ := conds["_id"].(string)
		if id == "" {
			id = store.NewID()
		}
		doc := &store.Document{
			ID:   id,
			Data: store.ApplyUpdate(store.SeedFromConditions(conds), u),
		}
		if err := c.Insert(ctx, doc, tx); err != nil {
			return res, err
		}
		res.Upserted = 1
	}
	if own {
		own = false
		if err := tx.Commit(); err != nil {
			return res, err
		}
	}
	return res, nil
}

func (c *Collection) DeleteOne(ctx context.Context, conds store.Conditions, sess store.Session) error {
	return c.delete(ctx, conds, sess, 1)
}

func (c *Collection) DeleteMany(ctx context.Context, conds store.Conditions, sess store.Session) error {
	return c.delete(ctx, conds, sess, 0)
}

func (c *Collection) delete(ctx context.Context, conds store.Conditions, sess store.Session, limit int) error {
	q, err := c.q(sess)
	if err != nil {
		return err
	}
	docs, err := c.find(ctx, conds, sess, limit)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		if _, err := q.ExecContext(ctx,
			"DELETE FROM "+c.table+" WHERE id = ?", doc.ID); err != nil {
			return fmt.Errorf("sqlstore: delete %s/%s: %w", c.table, doc.ID, err)
		}
	}
	return nil
}
