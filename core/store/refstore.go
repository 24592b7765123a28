// Copyright 2024 Edulab GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
//

package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/edulab/sims-console/core/alert"
	"github.com/edulab/sims-console/core/client"
	"github.com/edulab/sims-console/core/logger"
)

// RefConfig wires a RefStore to its backend endpoint.
type RefConfig[T any] struct {
	Name  string
	Label string

	List func(ctx context.Context) ([]T, error)
	// Fields returns the values matched by the local picker filter.
	Fields func(item T) []string
}

// RefStore holds a small reference list (classes, colleges, titles, course
// types) used by form pickers. It has no paging; filtering is local and
// never issues a request.
type RefStore[T any] struct {
	cfg    RefConfig[T]
	alerts alert.Sink

	mu    sync.Mutex
	items []T

	observerMu sync.Mutex
	observers  []func()
}

// NewRef creates an empty reference store.
func NewRef[T any](cfg RefConfig[T], alerts alert.Sink) *RefStore[T] {
	if alerts == nil {
		alerts = alert.Log()
	}
	return &RefStore[T]{cfg: cfg, alerts: alerts}
}

// Subscribe registers an observer fired after every reload.
func (s *RefStore[T]) Subscribe(fn func()) {
	s.observerMu.Lock()
	defer s.observerMu.Unlock()
	s.observers = append(s.observers, fn)
}

func (s *RefStore[T]) notify() {
	s.observerMu.Lock()
	observers := make([]func(), len(s.observers))
	copy(observers, s.observers)
	s.observerMu.Unlock()
	for _, fn := range observers {
		fn()
	}
}

// Load replaces the reference list wholesale. A failure keeps the previous
// list.
func (s *RefStore[T]) Load(ctx context.Context) error {
	ctx, rlog := logger.ContextWithLogger(ctx)
	items, err := s.cfg.List(ctx)
	if err != nil {
		rlog.WithError(err).Errorf("loading %s list failed", s.cfg.Name)
		s.alerts.Notify(client.UserMessage(err, fmt.Sprintf("加载%s数据失败", s.cfg.Label)))
		return err
	}
	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	s.notify()
	return nil
}

// Items returns a copy of the reference list.
func (s *RefStore[T]) Items() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]T, len(s.items))
	copy(items, s.items)
	return items
}

// Filter returns the entries whose fields contain the term, case
// insensitively. An empty term returns the whole list. No round trip.
func (s *RefStore[T]) Filter(term string) []T {
	items := s.Items()
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return items
	}
	var matched []T
	for _, item := range items {
		for _, field := range s.cfg.Fields(item) {
			if strings.Contains(strings.ToLower(field), term) {
				matched = append(matched, item)
				break
			}
		}
	}
	return matched
}
