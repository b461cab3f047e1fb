package service

import (
	"context"
	"database/sql"
	"sync"

	"github.com/jmoiron/sqlx"
)

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// TermLocks serialises slot-writing work per term. Placement reads a snapshot
// of the term's slots, so two writers on one term must not interleave.
type TermLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewTermLocks builds an empty lock table.
func NewTermLocks() *TermLocks {
	return &TermLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock blocks until the term is free and returns the unlock func.
func (l *TermLocks) Lock(termID string) func() {
	l.mu.Lock()
	m, ok := l.locks[termID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[termID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
