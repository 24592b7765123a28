// Copyright 2024 Edulab GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
//

/*
Package store implements the server-backed entity stores of the console.

A Store owns one backend collection plus its paging, search and form state.
It never merges incrementally: a load replaces items and total wholesale,
and a failed load keeps the previous items (stale beats empty). All state
changes fire the subscribed observers so that derived views can recompute.

Overlapping loads on the same store are not sequenced; the last response to
arrive wins. This mirrors the deployed behavior under fast pagination.
*/
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/edulab/sims-console/core/alert"
	"github.com/edulab/sims-console/core/client"
	"github.com/edulab/sims-console/core/logger"
	"github.com/edulab/sims-console/core/validate"
)

// searchDebounce is the quiet period after the last keystroke before a
// search fires.
const searchDebounce = 300 * time.Millisecond

// Config wires a Store to its backend endpoints.
type Config[T any] struct {
	// Name is the entity name used in log messages.
	Name string
	// Label is the entity name shown in user-visible messages.
	Label string

	List   func(ctx context.Context, page int, search string) ([]T, int, error)
	Get    func(ctx context.Context, id int) (T, error)
	Create func(ctx context.Context, item T) error
	Update func(ctx context.Context, id int, item T) error
	Delete func(ctx context.Context, id int) error

	// Defaults produces a fresh form buffer. Date fields default to the
	// current date.
	Defaults func() T
	// NormalizeDates rewrites all date fields of an entity fetched for
	// editing into YYYY-MM-DD form. Optional.
	NormalizeDates func(item *T)
	// Gate is checked before Create and Update. It is set only for the
	// student and teacher stores (admin gate); a failure blocks the call
	// locally. Optional.
	Gate func() error
	// Validate replaces the default struct validation. Optional.
	Validate func(item T) error
}

// Store is the reactive container for one backend-backed collection.
type Store[T any] struct {
	cfg    Config[T]
	alerts alert.Sink

	mu               sync.Mutex
	items            []T
	total            int
	page             int
	search           string
	form             T
	editing          bool
	editingID        int
	viewed           *T
	createDialogOpen bool
	editDialogOpen   bool

	debounce *time.Timer

	observerMu sync.Mutex
	observers  []func()
}

// New creates a store with an empty collection on page 1 and a default form
// buffer.
func New[T any](cfg Config[T], alerts alert.Sink) *Store[T] {
	if alerts == nil {
		alerts = alert.Log()
	}
	s := &Store[T]{cfg: cfg, alerts: alerts, page: 1}
	if cfg.Defaults != nil {
		s.form = cfg.Defaults()
	}
	return s
}

// Subscribe registers an observer fired after every state change. Derived
// views recompute from inside the observer.
func (s *Store[T]) Subscribe(fn func()) {
	s.observerMu.Lock()
	defer s.observerMu.Unlock()
	s.observers = append(s.observers, fn)
}

func (s *Store[T]) notify() {
	s.observerMu.Lock()
	observers := make([]func(), len(s.observers))
	copy(observers, s.observers)
	s.observerMu.Unlock()
	for _, fn := range observers {
		fn()
	}
}

// Load fetches the current page filtered by the current search term and
// replaces items and total wholesale. A failure is logged and surfaced, and
// leaves the prior items untouched.
func (s *Store[T]) Load(ctx context.Context) error {
	s.mu.Lock()
	page, search := s.page, s.search
	s.mu.Unlock()

	ctx, rlog := logger.ContextWithLogger(ctx)
	items, total, err := s.cfg.List(ctx, page, search)
	if err != nil {
		rlog.WithError(err).Errorf("loading %s list failed", s.cfg.Name)
		s.alerts.Notify(client.UserMessage(err, fmt.Sprintf("加载%s数据失败", s.cfg.Label)))
		return err
	}

	s.mu.Lock()
	s.items = items
	s.total = total
	s.mu.Unlock()
	s.notify()
	return nil
}

// Search resets the page to 1, stores the term and reloads.
func (s *Store[T]) Search(ctx context.Context, term string) error {
	s.mu.Lock()
	s.page = 1
	s.search = term
	s.mu.Unlock()
	s.notify()
	return s.Load(ctx)
}

// SetSearchInput feeds a keystroke into the debounced search. Bursts of
// input collapse into a single Search call after a 300ms quiet period; each
// new keystroke cancels and restarts the timer.
func (s *Store[T]) SetSearchInput(ctx context.Context, term string) {
	s.mu.Lock()
	if s.debounce != nil {
		s.debounce.Stop()
	}
	s.debounce = time.AfterFunc(searchDebounce, func() {
		if err := s.Search(ctx, term); err != nil {
			logger.FromContext(ctx).WithError(err).Debugf("debounced %s search failed", s.cfg.Name)
		}
	})
	s.mu.Unlock()
}

// ChangePage moves to the given page and reloads. Pagination is server-side,
// never a local re-slice. Pages below 1 are ignored.
func (s *Store[T]) ChangePage(ctx context.Context, page int) error {
	if page < 1 {
		return nil
	}
	s.mu.Lock()
	s.page = page
	s.mu.Unlock()
	s.notify()
	return s.Load(ctx)
}

// ResetForm overwrites the form buffer with defaults and clears the editing
// id.
func (s *Store[T]) ResetForm() {
	s.mu.Lock()
	if s.cfg.Defaults != nil {
		s.form = s.cfg.Defaults()
	} else {
		var zero T
		s.form = zero
	}
	s.editing = false
	s.editingID = 0
	s.mu.Unlock()
	s.notify()
}

// StartCreate resets the form buffer and opens the create dialog.
func (s *Store[T]) StartCreate() {
	s.ResetForm()
	s.mu.Lock()
	s.createDialogOpen = true
	s.mu.Unlock()
	s.notify()
}

// Save posts the form buffer. On success the create dialog closes, the list
// reloads and the form resets; on failure the dialog stays open and the
// server's message (or a generic fallback) is surfaced.
func (s *Store[T]) Save(ctx context.Context) error {
	if err := s.gateAndValidate(); err != nil {
		return err
	}

	s.mu.Lock()
	form := s.form
	s.mu.Unlock()

	ctx, rlog := logger.ContextWithLogger(ctx)
	if err := s.cfg.Create(ctx, form); err != nil {
		rlog.WithError(err).Errorf("creating %s failed", s.cfg.Name)
		s.alerts.Notify(client.UserMessage(err, fmt.Sprintf("添加%s失败，请稍后重试", s.cfg.Label)))
		return err
	}

	s.mu.Lock()
	s.createDialogOpen = false
	s.mu.Unlock()
	// the entity is created at this point; the buffer is discarded even if
	// the reload fails
	s.ResetForm()
	return s.Load(ctx)
}

// StartEdit fetches the entity, normalizes its date fields and copies it
// into the form buffer, then opens the edit dialog.
func (s *Store[T]) StartEdit(ctx context.Context, id int) error {
	ctx, rlog := logger.ContextWithLogger(ctx)
	item, err := s.cfg.Get(ctx, id)
	if err != nil {
		rlog.WithError(err).Errorf("fetching %s %d failed", s.cfg.Name, id)
		s.alerts.Notify(client.UserMessage(err, fmt.Sprintf("获取%s信息失败", s.cfg.Label)))
		return err
	}
	if s.cfg.NormalizeDates != nil {
		s.cfg.NormalizeDates(&item)
	}

	s.mu.Lock()
	s.form = item
	s.editing = true
	s.editingID = id
	s.editDialogOpen = true
	s.mu.Unlock()
	s.notify()
	return nil
}

// Update puts the form buffer to the entity being edited. Without an editing
// id it is a no-op. Success and failure handling mirror Save.
func (s *Store[T]) Update(ctx context.Context) error {
	s.mu.Lock()
	editing, id := s.editing, s.editingID
	s.mu.Unlock()
	if !editing {
		return nil
	}

	if err := s.gateAndValidate(); err != nil {
		return err
	}

	s.mu.Lock()
	form := s.form
	s.mu.Unlock()

	ctx, rlog := logger.ContextWithLogger(ctx)
	if err := s.cfg.Update(ctx, id, form); err != nil {
		rlog.WithError(err).Errorf("updating %s %d failed", s.cfg.Name, id)
		s.alerts.Notify(client.UserMessage(err, fmt.Sprintf("更新%s失败，请稍后重试", s.cfg.Label)))
		return err
	}

	s.mu.Lock()
	s.editDialogOpen = false
	s.mu.Unlock()
	s.ResetForm()
	return s.Load(ctx)
}

// Cancel closes both dialogs and discards the form buffer.
func (s *Store[T]) Cancel() {
	s.mu.Lock()
	s.createDialogOpen = false
	s.editDialogOpen = false
	s.mu.Unlock()
	s.ResetForm()
}

// Remove deletes the entity after the confirm gate has granted it. The gate
// runs synchronously before any call is issued; a declined confirmation
// makes Remove a no-op. On success the list reloads.
func (s *Store[T]) Remove(ctx context.Context, id int, confirm func(prompt string) bool) error {
	if confirm == nil || !confirm(fmt.Sprintf("确定要删除这个%s吗？", s.cfg.Label)) {
		return nil
	}

	ctx, rlog := logger.ContextWithLogger(ctx)
	if err := s.cfg.Delete(ctx, id); err != nil {
		rlog.WithError(err).Errorf("deleting %s %d failed", s.cfg.Name, id)
		s.alerts.Notify(client.UserMessage(err, fmt.Sprintf("删除%s失败，请稍后重试", s.cfg.Label)))
		return err
	}
	return s.Load(ctx)
}

// View fetches the entity for read-only display. The form buffer is not
// touched.
func (s *Store[T]) View(ctx context.Context, id int) error {
	ctx, rlog := logger.ContextWithLogger(ctx)
	item, err := s.cfg.Get(ctx, id)
	if err != nil {
		rlog.WithError(err).Errorf("fetching %s %d failed", s.cfg.Name, id)
		s.alerts.Notify(client.UserMessage(err, fmt.Sprintf("获取%s详情失败", s.cfg.Label)))
		return err
	}
	s.mu.Lock()
	s.viewed = &item
	s.mu.Unlock()
	s.notify()
	return nil
}

func (s *Store[T]) gateAndValidate() error {
	if s.cfg.Gate != nil {
		if err := s.cfg.Gate(); err != nil {
			s.alerts.Notify(err.Error())
			return err
		}
	}

	s.mu.Lock()
	form := s.form
	s.mu.Unlock()

	var err error
	if s.cfg.Validate != nil {
		err = s.cfg.Validate(form)
	} else {
		err = validate.Struct(form)
	}
	if err != nil {
		s.alerts.Notify(err.Error())
		return err
	}
	return nil
}

// Items returns a copy of the current collection.
func (s *Store[T]) Items() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]T, len(s.items))
	copy(items, s.items)
	return items
}

// Total returns the server-side total count of the collection.
func (s *Store[T]) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// Page returns the current page, always ≥ 1.
func (s *Store[T]) Page() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// SearchTerm returns the current search term.
func (s *Store[T]) SearchTerm() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.search
}

// Form returns the current form buffer.
func (s *Store[T]) Form() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

// SetForm overwrites the form buffer; the rendering layer writes bound form
// fields through this.
func (s *Store[T]) SetForm(form T) {
	s.mu.Lock()
	s.form = form
	s.mu.Unlock()
	s.notify()
}

// EditingID returns the id of the entity being edited, if any.
func (s *Store[T]) EditingID() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editingID, s.editing
}

// Viewed returns the record last fetched for read-only display.
func (s *Store[T]) Viewed() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.viewed == nil {
		var zero T
		return zero, false
	}
	return *s.viewed, true
}

// CreateDialogOpen reports whether the create dialog is showing.
func (s *Store[T]) CreateDialogOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createDialogOpen
}

// EditDialogOpen reports whether the edit dialog is showing.
func (s *Store[T]) EditDialogOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editDialogOpen
}
