package ormr

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// DB is the main entry point: it exclusively owns one engine handle and runs
// every statement on it. Calls are direct and synchronous; there is no
// internal locking, pooling, retrying, or transaction wrapping. Each
// operation is its own unit of work, and concurrent use from multiple
// goroutines needs external synchronization.
type DB struct {
	conn *sql.DB
}

var (
	ErrInvalidModel  = errors.New("ormr: invalid model")
	ErrInvalidQuery  = errors.New("ormr: invalid query")
	ErrTypeMismatch  = errors.New("ormr: type mismatch")
	ErrDecode        = errors.New("ormr: row decode failed")
	ErrQueryConsumed = errors.New("ormr: query already executed; start a new Query")
)

// Open opens (or creates) the SQLite database file at path.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, err
	}
	return &DB{conn: conn}, nil
}

// OpenInMemory opens a private in-memory database, useful for tests.
func OpenInMemory() (*DB, error) {
	return Open(":memory:")
}

// New wraps an already-open handle. The DB takes ownership: Close() closes it.
func New(conn *sql.DB) *DB {
	return &DB{conn: conn}
}

// Close releases the engine handle.
func (db *DB) Close() error {
	return db.conn.Close()
}

// CreateTable creates the model's table if it does not exist yet.
func (db *DB) CreateTable(m Model) error {
	return db.CreateTableContext(context.Background(), m)
}

// CreateTableContext is the context-aware variant of CreateTable.
func (db *DB) CreateTableContext(ctx context.Context, m Model) error {
	st, err := buildCreateTable(m)
	if err != nil {
		return err
	}
	_, err = db.conn.ExecContext(ctx, st.sql)
	return err
}

// Insert stores the record and returns the engine-assigned row identifier.
func (db *DB) Insert(m Model) (int64, error) {
	return db.InsertContext(context.Background(), m)
}

// InsertContext is the context-aware variant of Insert.
func (db *DB) InsertContext(ctx context.Context, m Model) (int64, error) {
	st, err := buildInsert(m)
	if err != nil {
		return 0, err
	}
	res, err := db.conn.ExecContext(ctx, st.sql, st.bindArgs()...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// SelectAll loads every row of the model's table into dest, which must be a
// non-nil pointer to a slice of T or *T where *T implements Model.
func (db *DB) SelectAll(dest any) error {
	return db.SelectAllContext(context.Background(), dest)
}

// SelectAllContext is the context-aware variant of SelectAll.
func (db *DB) SelectAllContext(ctx context.Context, dest any) error {
	d, err := destSliceOf(dest)
	if err != nil {
		return err
	}
	st, err := buildSelect(d.prototype(), querySpec{})
	if err != nil {
		return err
	}
	return db.selectInto(ctx, st, d)
}

// FindByID loads the record with the given primary key into dest. It reports
// false (and leaves dest untouched) when no row matches.
func (db *DB) FindByID(id any, dest Model) (bool, error) {
	return db.FindByIDContext(context.Background(), id, dest)
}

// FindByIDContext is the context-aware variant of FindByID.
func (db *DB) FindByIDContext(ctx context.Context, id any, dest Model) (bool, error) {
	st, err := buildFindByID(dest, id)
	if err != nil {
		return false, err
	}
	return db.selectOne(ctx, st, dest)
}

// Update rewrites every non-key column of the record's row, matching on the
// primary key, and returns the affected-row count. The key is never mutated.
func (db *DB) Update(m Model) (int64, error) {
	return db.UpdateContext(context.Background(), m)
}

// UpdateContext is the context-aware variant of Update.
func (db *DB) UpdateContext(ctx context.Context, m Model) (int64, error) {
	st, err := buildUpdate(m)
	if err != nil {
		return 0, err
	}
	res, err := db.conn.ExecContext(ctx, st.sql, st.bindArgs()...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Delete removes the row with the given primary key and returns the
// affected-row count. A missing id is 0 rows, not an error.
func (db *DB) Delete(m Model, id any) (int64, error) {
	return db.DeleteContext(context.Background(), m, id)
}

// DeleteContext is the context-aware variant of Delete.
func (db *DB) DeleteContext(ctx context.Context, m Model, id any) (int64, error) {
	st, err := buildDelete(m, id)
	if err != nil {
		return 0, err
	}
	res, err := db.conn.ExecContext(ctx, st.sql, st.bindArgs()...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DropTable drops the model's table if it exists.
func (db *DB) DropTable(m Model) error {
	return db.DropTableContext(context.Background(), m)
}

// DropTableContext is the context-aware variant of DropTable.
func (db *DB) DropTableContext(ctx context.Context, m Model) error {
	st, err := buildDropTable(m)
	if err != nil {
		return err
	}
	_, err = db.conn.ExecContext(ctx, st.sql)
	return err
}

// selectOne runs st and decodes at most the first returned row into dest.
func (db *DB) selectOne(ctx context.Context, st statement, dest Model) (bool, error) {
	rows, err := db.conn.QueryContext(ctx, st.sql, st.bindArgs()...)
	if err != nil {
		return false, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return false, err
		}
		return false, nil
	}
	row, err := scanRow(rows)
	if err != nil {
		return false, err
	}
	if err := dest.FromRow(row); err != nil {
		return false, wrapDecode(dest.TableName(), err)
	}
	return true, nil
}

// wrapDecode tags a FromRow failure as ErrDecode, keeping the underlying
// error in the chain.
func wrapDecode(table string, err error) error {
	if errors.Is(err, ErrDecode) {
		return err
	}
	return fmt.Errorf("%w: table %s: %w", ErrDecode, table, err)
}
