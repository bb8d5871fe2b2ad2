// Package memory is an in-process export sink, used when no spreadsheet is
// configured and in tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"saldo/internal/core"
	ports "saldo/internal/sheets"
)

type Sink struct {
	mu   sync.Mutex
	rows map[int64]core.Transaction
}

var _ ports.ExportSink = (*Sink)(nil)

func New() *Sink {
	return &Sink{rows: make(map[int64]core.Transaction)}
}

// Append stores tx keyed by id; a duplicate delivery overwrites nothing.
func (s *Sink) Append(_ context.Context, tx core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[tx.ID]; !ok {
		s.rows[tx.ID] = tx
	}
	return nil
}

func (s *Sink) Remove(_ context.Context, tx core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, tx.ID)
	return nil
}

// Rows returns the exported rows ordered by id.
func (s *Sink) Rows() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, 0, len(s.rows))
	for _, tx := range s.rows {
		out = append(out, tx)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
