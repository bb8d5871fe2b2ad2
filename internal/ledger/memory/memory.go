// Package memory is an in-process ledger store for tests and local runs
// without a database.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"saldo/internal/core"
	"saldo/internal/ledger"
)

type Store struct {
	mu     sync.Mutex
	items  []core.Transaction
	nextID int64
	loc    *time.Location
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLocation sets the zone used to bucket transactions into months.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) { s.loc = loc }
}

func New(opts ...Option) *Store {
	s := &Store{nextID: 1, loc: time.Local, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ledger.Store = (*Store)(nil)

func (s *Store) Insert(_ context.Context, in core.NewTransaction) (core.Transaction, error) {
	in, err := ledger.Prepare(in)
	if err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := core.Transaction{
		ID:            s.nextID,
		CreatedAt:     s.now().Truncate(time.Second),
		Description:   in.Description,
		Category:      in.Category,
		Amount:        in.Amount,
		Kind:          in.Kind(),
		PaymentMethod: in.PaymentMethod,
	}
	s.nextID++
	s.items = append(s.items, tx)
	return tx, nil
}

func (s *Store) ListByMonth(_ context.Context, year int, month time.Month) ([]core.Transaction, error) {
	start, end := core.MonthRange(year, month, s.loc)
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, tx := range s.items {
		if !tx.CreatedAt.Before(start) && tx.CreatedAt.Before(end) {
			out = append(out, tx)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) Latest(_ context.Context) (*core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) == 0 {
		return nil, nil
	}
	// items are appended in id order
	tx := s.items[len(s.items)-1]
	return &tx, nil
}

func (s *Store) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, tx := range s.items {
		if tx.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return ledger.ErrNotFound
}

func (s *Store) Sum(_ context.Context, filter ledger.SumFilter) (core.Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total core.Money
	for _, tx := range s.items {
		if filter.Matches(tx) {
			total = total.Add(tx.Amount)
		}
	}
	return total, nil
}

// Len returns the number of stored transactions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store) Close() error { return nil }
