package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"budget/internal/core"
	"budget/internal/log"
	"budget/internal/query"

	_ "modernc.org/sqlite"
)

// Default relations joined by the typed queries.
var (
	BillRelations    = []string{"user"}
	ExpenseRelations = []string{"bill"}
	IncomeRelations  = []string{"user"}
)

// Queries groups the typed query facades over one database handle.
type Queries struct {
	Users    *query.Queries[core.User]
	Bills    *query.Queries[core.Bill]
	Expenses *query.Queries[core.Expense]
	Incomes  *query.Queries[core.Income]
	Months   *query.Queries[core.Month]
	Pokemon  *query.Queries[core.Pokemon]
}

func newQueries(db sqlx.QueryerContext, registry *Registry) Queries {
	return Queries{
		Users:    query.NewQueries[core.User](NewSource[core.User](db, registry), "user"),
		Bills:    query.NewQueries[core.Bill](NewSource[core.Bill](db, registry), "bill", BillRelations...),
		Expenses: query.NewQueries[core.Expense](NewSource[core.Expense](db, registry), "expense", ExpenseRelations...),
		Incomes:  query.NewQueries[core.Income](NewSource[core.Income](db, registry), "income", IncomeRelations...),
		Months:   query.NewQueries[core.Month](NewSource[core.Month](db, registry), "month"),
		Pokemon:  query.NewQueries[core.Pokemon](NewSource[core.Pokemon](db, registry), "pokemon"),
	}
}

// Writer runs inserts and soft deletes on a database handle or a transaction.
type Writer struct {
	ext      sqlx.ExtContext
	registry *Registry
	now      func() time.Time
}

// Insert writes row into the table registered for alias. Every registered
// column is bound by name from row's db tags.
func (w *Writer) Insert(ctx context.Context, alias string, row any) error {
	t, err := w.registry.Table(alias)
	if err != nil {
		return err
	}
	quoted := make([]string, len(t.Columns))
	named := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		quoted[i] = query.QuoteIdent(c)
		named[i] = ":" + c
	}
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		query.QuoteIdent(t.Name), strings.Join(quoted, ", "), strings.Join(named, ", "))

	if _, err := sqlx.NamedExecContext(ctx, w.ext, stmt, row); err != nil {
		return fmt.Errorf("insert %s: %w", alias, err)
	}
	return nil
}

// SoftDelete stamps deleted_at on the live rows of alias where column equals
// value and returns how many rows were affected.
func (w *Writer) SoftDelete(ctx context.Context, alias, column string, value any) (int64, error) {
	t, err := w.registry.Table(alias)
	if err != nil {
		return 0, err
	}
	if !t.SoftDelete || !t.HasColumn(column) {
		return 0, fmt.Errorf("soft delete %s by %q: not supported", alias, column)
	}
	now := w.now().UTC()
	sqlStr, args, err := squirrel.Update(query.QuoteIdent(t.Name)).
		Set(query.QuoteIdent("deleted_at"), now).
		Set(query.QuoteIdent("updated_at"), now).
		Where(squirrel.Eq{query.QuoteIdent(column): value}).
		Where(squirrel.Eq{query.QuoteIdent("deleted_at"): nil}).
		PlaceholderFormat(squirrel.Question).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build soft delete %s: %w", alias, err)
	}
	res, err := w.ext.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, fmt.Errorf("soft delete %s: %w", alias, err)
	}
	return res.RowsAffected()
}

// Tx is a Writer bound to a transaction, with queries that see its writes.
type Tx struct {
	*Writer
	Queries
}

type SQLiteRepository struct {
	*Writer
	Queries

	db       *sqlx.DB
	registry *Registry
	logger   *log.Logger
}

// DSN adds the connection pragmas used by the repository to a file path.
func DSN(dbPath string) string {
	return "file:" + dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"
}

func NewSQLiteRepository(dbPath string, logger *log.Logger) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := DSN(dbPath)
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	registry := DefaultRegistry()
	repo := &SQLiteRepository{
		Writer:   &Writer{ext: db, registry: registry, now: time.Now},
		Queries:  newQueries(db, registry),
		db:       db,
		registry: registry,
		logger:   logger.WithComponent(log.ComponentStorage),
	}
	repo.logger.Info("SQLite repository ready", log.FieldDBPath, dbPath)
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// WithTransaction runs fn in a transaction, committing when it returns nil
// and rolling back otherwise.
func (r *SQLiteRepository) WithTransaction(ctx context.Context, fn func(tx *Tx) error) error {
	sqlTx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	tx := &Tx{
		Writer:  &Writer{ext: sqlTx, registry: r.registry, now: r.Writer.now},
		Queries: newQueries(sqlTx, r.registry),
	}
	if err := fn(tx); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			r.logger.ErrorContext(ctx, "Rollback failed", log.FieldError, rbErr)
		}
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
