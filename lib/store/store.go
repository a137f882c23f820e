package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"playsync/lib/utils/logging"
)

// InvalidID marks a row identifier that does not denote a stored row.
const InvalidID int64 = -1

// Dialect selects the SQL flavor of the backing database.
type Dialect int

const (
	DialectSQLite Dialect = iota
	DialectPostgres
)

// OpType is the kind of a batched mutation.
type OpType int

const (
	OpInsert OpType = iota
	OpUpdate
	OpDelete
)

// Operation is one tagged mutation within a batch. Values maps column names
// to values. Where/Args select the affected rows for updates and deletes.
// BackRefs maps a column to the index of an earlier operation in the same
// batch; at apply time the column is filled with that operation's assigned
// row id (the transaction-local placeholder for a not-yet-known identifier).
type Operation struct {
	Type     OpType
	Table    string
	Values   map[string]any
	Where    string
	Args     []any
	BackRefs map[string]int
}

// Result reports the outcome of one applied operation.
type Result struct {
	RowID        int64
	RowsAffected int64
}

/// Executor is the store surface the reconciliation engine depends on:
// atomic batch application plus point queries.
type Executor interface {
	ApplyBatch(ctx context.Context, ops []Operation) ([]Result, error)
	RowExists(ctx context.Context, table, where string, args ...any) (bool, error)
	QueryStrings(ctx context.Context, table, column, where string, args ...any) ([]string, error)
	QueryRowID(ctx context.Context, table, where string, args ...any) (int64, error)
	QueryInt64Row(ctx context.Context, table string, columns []string, where string, args ...any) (map[string]int64, bool, error)
}

// Store applies tagged mutation batches against a SQL database in a single
// transaction. Any target database reachable through database/sql works as
// long as the dialect is known.
type Store struct {
	db      *sql.DB
	dialect Dialect
	logger  logging.Logger
}

func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{
		db:      db,
		dialect: dialect,
		logger:  logging.NewLogger("STORE"),
	}
}

func (s *Store) DB() *sql.DB {
	return s.db
}

// rebind rewrites ? placeholders to the dialect's positional form.
func (s *Store) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// sortedColumns returns the value columns in a deterministic order.
func sortedColumns(values map[string]any) []string {
	columns := make([]string, 0, len(values))
	for c := range values {
		columns = append(columns, c)
	}
	sort.Strings(columns)
	return columns
}

// ApplyBatch executes all operations inside one transaction. A failure of any
// operation rolls back the entire batch; readers never observe a partially
// applied batch.
func (s *Store) ApplyBatch(ctx context.Context, ops []Operation) ([]Result, error) {
	if len(ops) == 0 {
		return nil, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin batch: %w", err)
	}
	defer tx.Rollback()

	results := make([]Result, len(ops))
	for i, op := range ops {
		res, err := s.applyOne(ctx, tx, op, results[:i])
		if err != nil {
			s.logger.Warn("BATCH_OPERATION_FAILED", err, map[string]any{
				logging.TABLE:     op.Table,
				logging.OPERATION: i,
			})
			return nil, fmt.Errorf("batch operation %d on %s: %w", i, op.Table, err)
		}
		results[i] = res
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit batch: %w", err)
	}
	return results, nil
}

func (s *Store) applyOne(ctx context.Context, tx *sql.Tx, op Operation, prior []Result) (Result, error) {
	values := op.Values
	if len(op.BackRefs) > 0 {
		values = make(map[string]any, len(op.Values)+len(op.BackRefs))
		for c, v := range op.Values {
			values[c] = v
		}
		for c, idx := range op.BackRefs {
			if idx < 0 || idx >= len(prior) {
				return Result{}, fmt.Errorf("back-reference to operation %d is out of range", idx)
			}
			values[c] = prior[idx].RowID
		}
	}

	switch op.Type {
	case OpInsert:
		return s.execInsert(ctx, tx, op.Table, values)
	case OpUpdate:
		return s.execUpdate(ctx, tx, op.Table, values, op.Where, op.Args)
	case OpDelete:
		return s.execDelete(ctx, tx, op.Table, op.Where, op.Args)
	default:
		return Result{}, fmt.Errorf("unknown operation type %d", op.Type)
	}
}

func (s *Store) execInsert(ctx context.Context, tx *sql.Tx, table string, values map[string]any) (Result, error) {
	columns := sortedColumns(values)
	args := make([]any, len(columns))
	placeholders := make([]string, len(columns))
	for i, c := range columns {
		args[i] = values[c]
		placeholders[i] = "?"
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), strings.Join(placeholders, ", "))

	if s.dialect == DialectPostgres {
		// lib/pq has no LastInsertId; read the assigned id back instead.
		query = s.rebind(query) + " RETURNING _id"
		var id int64
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
			return Result{}, err
		}
		return Result{RowID: id, RowsAffected: 1}, nil
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return Result{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Result{}, err
	}
	return Result{RowID: id, RowsAffected: 1}, nil
}

func (s *Store) execUpdate(ctx context.Context, tx *sql.Tx, table string, values map[string]any, where string, whereArgs []any) (Result, error) {
	columns := sortedColumns(values)
	args := make([]any, 0, len(columns)+len(whereArgs))
	sets := make([]string, len(columns))
	for i, c := range columns {
		sets[i] = c + " = ?"
		args = append(args, values[c])
	}
	args = append(args, whereArgs...)

	query := fmt.Sprintf("UPDATE %s SET %s", table, strings.Join(sets, ", "))
	if where != "" {
		query += " WHERE " + where
	}

	res, err := tx.ExecContext(ctx, s.rebind(query), args...)
	if err != nil {
		return Result{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return Result{}, err
	}
	return Result{RowID: InvalidID, RowsAffected: affected}, nil
}

func (s *Store) execDelete(ctx context.Context, tx *sql.Tx, table string, where string, whereArgs []any) (Result, error) {
	query := "DELETE FROM " + table
	if where != "" {
		query += " WHERE " + where
	}
	res, err := tx.ExecContext(ctx, s.rebind(query), whereArgs...)
	if err != nil {
		return Result{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return Result{}, err
	}
	return Result{RowID: InvalidID, RowsAffected: affected}, nil
}

// RowExists reports whether at least one row matches the selection.
func (s *Store) RowExists(ctx context.Context, table, where string, args ...any) (bool, error) {
	query := s.rebind(fmt.Sprintf("SELECT 1 FROM %s WHERE %s LIMIT 1", table, where))
	var one int
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// QueryStrings returns a single string column for every matching row.
func (s *Store) QueryStrings(ctx context.Context, table, column, where string, args ...any) ([]string, error) {
	query := fmt.Sprintf("SELECT %s FROM %s", column, table)
	if where != "" {
		query += " WHERE " + where
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v sql.NullString
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v.String)
	}
	return out, rows.Err()
}

// QueryRowID returns the _id of the first matching row, or InvalidID.
func (s *Store) QueryRowID(ctx context.Context, table, where string, args ...any) (int64, error) {
	query := s.rebind(fmt.Sprintf("SELECT _id FROM %s WHERE %s LIMIT 1", table, where))
	var id int64
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&id)
	if err == sql.ErrNoRows {
		return InvalidID, nil
	}
	if err != nil {
		return InvalidID, err
	}
	return id, nil
}

// QueryInt64Row reads the given integer columns of the first matching row.
// The second return value is false when no row matches.
func (s *Store) QueryInt64Row(ctx context.Context, table string, columns []string, where string, args ...any) (map[string]int64, bool, error) {
	query := s.rebind(fmt.Sprintf("SELECT %s FROM %s WHERE %s LIMIT 1",
		strings.Join(columns, ", "), table, where))

	scanned := make([]int64, len(columns))
	dest := make([]any, len(columns))
	for i := range scanned {
		dest[i] = &scanned[i]
	}

	err := s.db.QueryRowContext(ctx, query, args...).Scan(dest...)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	out := make(map[string]int64, len(columns))
	for i, c := range columns {
		out[c] = scanned[i]
	}
	return out, true, nil
}
