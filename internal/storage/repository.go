package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"budget/internal/core"
	"budget/internal/ports"

	_ "modernc.org/sqlite"
)

// SQLiteRepository implements the transaction, goal and category stores on
// a single SQLite file.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Other processes may hold the write lock briefly; wait for it.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows one writer; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

const transactionColumns = `id, description, amount_cents, type, category, date,
	recurring_id, frequency, original_date, next_due_date`

type scanner interface {
	Scan(dest ...any) error
}

// scanTransaction decodes a row. Unparseable dates decode to the zero date
// so the recurrence engine can report the series instead of the whole
// listing failing.
func scanTransaction(s scanner) (core.Transaction, error) {
	var (
		t                            core.Transaction
		typ, date                    string
		frequency, original, nextDue sql.NullString
	)
	if err := s.Scan(&t.ID, &t.Description, &t.Amount.Cents, &typ, &t.Category, &date,
		&t.RecurringID, &frequency, &original, &nextDue); err != nil {
		return core.Transaction{}, err
	}
	t.Type = core.TransactionType(typ)
	t.Date = lenientDate(date)
	if frequency.Valid {
		t.Recurring = &core.Recurrence{
			Frequency:    core.Frequency(frequency.String),
			OriginalDate: lenientDate(original.String),
			NextDueDate:  lenientDate(nextDue.String),
		}
	}
	return t, nil
}

func lenientDate(s string) core.Date {
	d, err := core.ParseDate(s)
	if err != nil {
		return core.Date{}
	}
	return d
}

func nullableDate(d core.Date) sql.NullString {
	if d.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func recurrenceArgs(t core.Transaction) (frequency, original, nextDue sql.NullString) {
	if t.Recurring == nil {
		return
	}
	frequency = sql.NullString{String: string(t.Recurring.Frequency), Valid: true}
	return frequency, nullableDate(t.Recurring.OriginalDate), nullableDate(t.Recurring.NextDueDate)
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+transactionColumns+` FROM transactions ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ports.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertTransaction(ctx context.Context, db execer, t core.Transaction) error {
	frequency, original, nextDue := recurrenceArgs(t)
	_, err := db.ExecContext(ctx, `INSERT INTO transactions (`+transactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Description, t.Amount.Cents, string(t.Type), t.Category, t.Date.String(),
		t.RecurringID, frequency, original, nextDue)
	if err != nil {
		return fmt.Errorf("insert transaction %s: %w", t.ID, err)
	}
	return nil
}

func updateTransaction(ctx context.Context, db execer, t core.Transaction) error {
	frequency, original, nextDue := recurrenceArgs(t)
	res, err := db.ExecContext(ctx, `UPDATE transactions SET
		description = ?, amount_cents = ?, type = ?, category = ?, date = ?,
		recurring_id = ?, frequency = ?, original_date = ?, next_due_date = ?
		WHERE id = ?`,
		t.Description, t.Amount.Cents, string(t.Type), t.Category, t.Date.String(),
		t.RecurringID, frequency, original, nextDue, t.ID)
	if err != nil {
		return fmt.Errorf("update transaction %s: %w", t.ID, err)
	}
	return requireAffected(res, t.ID)
}

func requireAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", id, ports.ErrNotFound)
	}
	return nil
}

// withTx runs fn in a transaction and commits when it returns nil.
func (r *SQLiteRepository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) AppendTransactions(ctx context.Context, txs ...core.Transaction) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		for _, t := range txs {
			if err := insertTransaction(ctx, tx, t); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	return updateTransaction(ctx, r.db, t)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireAffected(res, id)
}

// ApplyMaterialization advances cursors with a compare-and-set before
// inserting occurrences, so a pass that lost the race to another process
// writes nothing.
func (r *SQLiteRepository) ApplyMaterialization(ctx context.Context, occurrences []core.Transaction, advances []ports.CursorAdvance) error {
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		for _, a := range advances {
			if err := advanceCursor(ctx, tx, a); err != nil {
				return err
			}
		}
		for _, t := range occurrences {
			if err := insertTransaction(ctx, tx, t); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "Materialization saved to SQLite",
		"occurrences", len(occurrences),
		"origins", len(advances))
	return nil
}

func advanceCursor(ctx context.Context, tx *sql.Tx, a ports.CursorAdvance) error {
	res, err := tx.ExecContext(ctx, `UPDATE transactions SET next_due_date = ?
		WHERE id = ? AND frequency IS NOT NULL AND next_due_date = ?`,
		a.To.String(), a.OriginID, a.From.String())
	if err != nil {
		return fmt.Errorf("advance cursor %s: %w", a.OriginID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 1 {
		return nil
	}
	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions WHERE id = ?`, a.OriginID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check origin %s: %w", a.OriginID, err)
	}
	if exists == 0 {
		return fmt.Errorf("origin %s: %w", a.OriginID, ports.ErrNotFound)
	}
	return fmt.Errorf("origin %s: %w", a.OriginID, ports.ErrConflict)
}

const goalColumns = `id, name, target_amount_cents, current_amount_cents, target_date, priority, status`

func scanGoal(s scanner) (core.Goal, error) {
	var (
		g                      core.Goal
		date, priority, status string
	)
	if err := s.Scan(&g.ID, &g.Name, &g.TargetAmount.Cents, &g.CurrentAmount.Cents, &date, &priority, &status); err != nil {
		return core.Goal{}, err
	}
	g.TargetDate = lenientDate(date)
	g.Priority = core.Priority(priority)
	g.Status = core.GoalStatus(status)
	return g, nil
}

func (r *SQLiteRepository) ListGoals(ctx context.Context) ([]core.Goal, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+goalColumns+` FROM goals ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query goals: %w", err)
	}
	defer rows.Close()

	var out []core.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetGoal(ctx context.Context, id string) (core.Goal, error) {
	g, err := scanGoal(r.db.QueryRowContext(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Goal{}, ports.ErrNotFound
	}
	if err != nil {
		return core.Goal{}, fmt.Errorf("get goal: %w", err)
	}
	return g, nil
}

func (r *SQLiteRepository) SaveGoal(ctx context.Context, g core.Goal) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO goals (`+goalColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			target_amount_cents = excluded.target_amount_cents,
			current_amount_cents = excluded.current_amount_cents,
			target_date = excluded.target_date,
			priority = excluded.priority,
			status = excluded.status`,
		g.ID, g.Name, g.TargetAmount.Cents, g.CurrentAmount.Cents, g.TargetDate.String(), string(g.Priority), string(g.Status))
	if err != nil {
		return fmt.Errorf("save goal %s: %w", g.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteGoal(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM goals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	return requireAffected(res, id)
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) AddCategory(ctx context.Context, category string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `INSERT OR IGNORE INTO categories (name) VALUES (?)`, category)
	if err != nil {
		return false, fmt.Errorf("add category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// SeedCategories inserts categories when the table is empty and reports how
// many were added.
func (r *SQLiteRepository) SeedCategories(ctx context.Context, categories []string) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	if count > 0 {
		return 0, nil
	}
	added := 0
	for _, c := range categories {
		ok, err := r.AddCategory(ctx, c)
		if err != nil {
			return added, err
		}
		if ok {
			added++
		}
	}
	slog.InfoContext(ctx, "Seeded categories", "count", added)
	return added, nil
}

// ExportRef returns the sheet row a transaction was exported to, if any.
func (r *SQLiteRepository) ExportRef(ctx context.Context, id string) (string, bool, error) {
	var ref string
	err := r.db.QueryRowContext(ctx, `SELECT row_ref FROM exports WHERE transaction_id = ?`, id).Scan(&ref)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get export: %w", err)
	}
	return ref, true, nil
}

// MarkExported records that a transaction reached the external sheet.
func (r *SQLiteRepository) MarkExported(ctx context.Context, id, rowRef string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `INSERT OR REPLACE INTO exports (transaction_id, row_ref, exported_at) VALUES (?, ?, ?)`,
		id, rowRef, at.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("mark exported: %w", err)
	}
	slog.InfoContext(ctx, "Transaction marked as exported", "id", id, "row_ref", rowRef)
	return nil
}

// PendingExports lists up to limit transaction IDs that were never exported,
// oldest first.
func (r *SQLiteRepository) PendingExports(ctx context.Context, limit int) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.id FROM transactions t
		LEFT JOIN exports e ON e.transaction_id = t.id
		WHERE e.transaction_id IS NULL
		ORDER BY t.date, t.id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending exports: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan pending export: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
