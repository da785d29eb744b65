// Package memory is the process-lifetime store used when no database is
// configured.
package memory

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"budget/internal/core"
	"budget/internal/ports"
)

// Store keeps transactions, goals and categories in memory.
// Records are copied on the way in and out.
type Store struct {
	mu    sync.RWMutex
	cats  *core.CategorySet
	txs   []core.Transaction
	index map[string]int
	goals map[string]core.Goal
	order []string
}

func New(categories []string) *Store {
	return &Store{
		cats:  core.NewCategorySet(categories),
		index: map[string]int{},
		goals: map[string]core.Goal{},
	}
}

// NewFromFiles seeds categories from base/seed_categories.txt, one per line.
// A missing or empty file falls back to core.DefaultCategories.
func NewFromFiles(base string) *Store {
	cats := readLines(filepath.Join(base, "seed_categories.txt"))
	if len(cats) == 0 {
		cats = core.DefaultCategories
	}
	return New(cats)
}

func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Transaction, len(s.txs))
	for i, t := range s.txs {
		out[i] = clone(t)
	}
	return out, nil
}

func (s *Store) GetTransaction(_ context.Context, id string) (core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return core.Transaction{}, ports.ErrNotFound
	}
	return clone(s.txs[i]), nil
}

func (s *Store) AppendTransactions(_ context.Context, txs ...core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(txs)
}

func (s *Store) appendLocked(txs []core.Transaction) error {
	seen := map[string]bool{}
	for _, t := range txs {
		if t.ID == "" {
			return fmt.Errorf("append transaction: empty id")
		}
		if _, dup := s.index[t.ID]; dup || seen[t.ID] {
			return fmt.Errorf("append transaction: duplicate id %s", t.ID)
		}
		seen[t.ID] = true
	}
	for _, t := range txs {
		s.index[t.ID] = len(s.txs)
		s.txs = append(s.txs, clone(t))
	}
	return nil
}

func (s *Store) UpdateTransaction(_ context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[t.ID]
	if !ok {
		return ports.ErrNotFound
	}
	s.txs[i] = clone(t)
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return ports.ErrNotFound
	}
	s.txs = append(s.txs[:i], s.txs[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.txs); j++ {
		s.index[s.txs[j].ID] = j
	}
	return nil
}

// ApplyMaterialization checks every cursor before writing anything.
func (s *Store) ApplyMaterialization(_ context.Context, occurrences []core.Transaction, advances []ports.CursorAdvance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range advances {
		i, ok := s.index[a.OriginID]
		if !ok {
			return fmt.Errorf("origin %s: %w", a.OriginID, ports.ErrNotFound)
		}
		if rec := s.txs[i].Recurring; rec == nil || !rec.NextDueDate.Equal(a.From) {
			return fmt.Errorf("origin %s: %w", a.OriginID, ports.ErrConflict)
		}
	}
	if err := s.appendLocked(occurrences); err != nil {
		return err
	}
	for _, a := range advances {
		i := s.index[a.OriginID]
		rec := *s.txs[i].Recurring
		rec.NextDueDate = a.To
		s.txs[i].Recurring = &rec
	}
	return nil
}

func (s *Store) ListGoals(_ context.Context) ([]core.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Goal, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.goals[id])
	}
	return out, nil
}

func (s *Store) GetGoal(_ context.Context, id string) (core.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.goals[id]
	if !ok {
		return core.Goal{}, ports.ErrNotFound
	}
	return g, nil
}

func (s *Store) SaveGoal(_ context.Context, g core.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.goals[g.ID]; !ok {
		s.order = append(s.order, g.ID)
	}
	s.goals[g.ID] = g
	return nil
}

func (s *Store) DeleteGoal(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.goals[id]; !ok {
		return ports.ErrNotFound
	}
	delete(s.goals, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) ListCategories(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cats.List(), nil
}

func (s *Store) AddCategory(_ context.Context, category string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cats.Add(category, ""), nil
}

func clone(t core.Transaction) core.Transaction {
	if t.Recurring != nil {
		r := *t.Recurring
		t.Recurring = &r
	}
	return t
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}
