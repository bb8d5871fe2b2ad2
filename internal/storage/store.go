// Package storage implements ledger.Store on top of database/sql for SQLite
// (modernc) and Postgres (pgx).
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"saldo/internal/core"
	"saldo/internal/ledger"
)

// Dialect selects placeholder syntax.
type Dialect int

const (
	DialectSQLite Dialect = iota
	DialectPostgres
)

func (d Dialect) String() string {
	if d == DialectPostgres {
		return "postgres"
	}
	return "sqlite"
}

// rebind rewrites '?' placeholders to $1..$n for Postgres. Queries here never
// contain literal question marks.
func (d Dialect) rebind(query string) string {
	if d != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

const (
	columns = "id, created_at, description, category, amount_cents, kind, payment_method"

	insertTransaction = `INSERT INTO transactions (created_at, description, category, amount_cents, kind, payment_method)
VALUES (?, ?, ?, ?, ?, ?) RETURNING id`
	listByRange = "SELECT " + columns + ` FROM transactions
WHERE created_at >= ? AND created_at < ?
ORDER BY created_at DESC, id DESC`
	latestTransaction = "SELECT " + columns + " FROM transactions ORDER BY id DESC LIMIT 1"
	deleteTransaction = "DELETE FROM transactions WHERE id = ?"
	sumPrefix         = "SELECT CAST(COALESCE(SUM(amount_cents), 0) AS BIGINT) FROM transactions"
)

// sumWhere holds the SQL rendition of each ledger.SumFilter; it must agree
// with SumFilter.Matches.
var sumWhere = map[ledger.SumFilter]string{
	ledger.SumAll:           "",
	ledger.SumDebitOrIncome: " WHERE kind = 'income' OR payment_method <> 'credit'",
	ledger.SumCredit:        " WHERE kind = 'expense' AND payment_method = 'credit'",
}

// Store is a SQL-backed ledger.Store.
type Store struct {
	db      *sql.DB
	dialect Dialect
	loc     *time.Location
	now     func() time.Time

	closeOnce sync.Once
	closeErr  error
}

// Option configures a Store.
type Option func(*Store)

// WithLocation sets the zone used to bucket transactions into months.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithClock sets the time source used for created_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func newStore(db *sql.DB, dialect Dialect, opts ...Option) *Store {
	s := &Store{db: db, dialect: dialect, loc: time.Local, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ledger.Store = (*Store)(nil)

// DB exposes the underlying pool.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		if s.db != nil {
			s.closeErr = s.db.Close()
		}
	})
	return s.closeErr
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Insert(ctx context.Context, in core.NewTransaction) (core.Transaction, error) {
	in, err := ledger.Prepare(in)
	if err != nil {
		return core.Transaction{}, err
	}
	createdAt := s.now().Truncate(time.Second)

	var id int64
	err = s.db.QueryRowContext(ctx, s.dialect.rebind(insertTransaction),
		createdAt.Unix(),
		in.Description,
		string(in.Category),
		in.Amount.Cents,
		string(in.Kind()),
		string(in.PaymentMethod),
	).Scan(&id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	tx := core.Transaction{
		ID:            id,
		CreatedAt:     createdAt.In(s.loc),
		Description:   in.Description,
		Category:      in.Category,
		Amount:        in.Amount,
		Kind:          in.Kind(),
		PaymentMethod: in.PaymentMethod,
	}
	slog.InfoContext(ctx, "Transaction saved",
		"component", "storage",
		"dialect", s.dialect.String(),
		"id", tx.ID,
		"description", tx.Description,
		"category", string(tx.Category),
		"amount_cents", tx.Amount.Cents,
		"payment_method", string(tx.PaymentMethod))
	return tx, nil
}

func (s *Store) ListByMonth(ctx context.Context, year int, month time.Month) ([]core.Transaction, error) {
	start, end := core.MonthRange(year, month, s.loc)
	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(listByRange), start.Unix(), end.Unix())
	if err != nil {
		return nil, fmt.Errorf("list transactions for %d-%02d: %w", year, int(month), err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		tx, err := s.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func (s *Store) Latest(ctx context.Context) (*core.Transaction, error) {
	tx, err := s.scan(s.db.QueryRowContext(ctx, latestTransaction))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.dialect.rebind(deleteTransaction), id)
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete transaction %d: %w", id, ledger.ErrNotFound)
	}
	slog.InfoContext(ctx, "Transaction deleted", "component", "storage", "id", id)
	return nil
}

func (s *Store) Sum(ctx context.Context, filter ledger.SumFilter) (core.Money, error) {
	where, ok := sumWhere[filter]
	if !ok {
		return core.Money{}, fmt.Errorf("unknown sum filter %s", filter)
	}
	var cents int64
	if err := s.db.QueryRowContext(ctx, sumPrefix+where).Scan(&cents); err != nil {
		return core.Money{}, fmt.Errorf("sum %s: %w", filter, err)
	}
	return core.Money{Cents: cents}, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (s *Store) scan(row scanner) (core.Transaction, error) {
	var (
		tx        core.Transaction
		createdAt int64
		category  string
		kind      string
		method    string
	)
	err := row.Scan(&tx.ID, &createdAt, &tx.Description, &category, &tx.Amount.Cents, &kind, &method)
	if errors.Is(err, sql.ErrNoRows) {
		return tx, err
	}
	if err != nil {
		return tx, fmt.Errorf("scan transaction: %w", err)
	}
	pm, err := core.ParsePaymentMethod(method)
	if err != nil {
		return tx, fmt.Errorf("transaction %d: %w", tx.ID, err)
	}
	tx.CreatedAt = time.Unix(createdAt, 0).In(s.loc)
	tx.Category = core.Category(category)
	tx.Kind = core.Kind(kind)
	tx.PaymentMethod = pm
	return tx, nil
}
