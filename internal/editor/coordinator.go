// Package editor implements the campaign editor: picker sessions that stage
// product and category selections and commit them on confirmation, the
// high-commission confirmation gate, and the save flow.
package editor

import (
	"context"
	"errors"
	"fmt"

	"brandconsole/internal/catalog"
	"brandconsole/internal/logging"
	"brandconsole/internal/query"
	"brandconsole/internal/selection"

	"go.uber.org/zap"
)

var (
	// ErrNotOpen is returned when a picker operation runs with no open picker.
	ErrNotOpen = errors.New("editor: no picker is open")
	// ErrPickerBusy is returned when a second picker is opened.
	ErrPickerBusy = errors.New("editor: another picker is open")
)

// Phase is the state of the picker of one item type.
type Phase int

const (
	PhaseClosed Phase = iota
	PhaseOpen
	PhaseDirty
)

func (p Phase) String() string {
	switch p {
	case PhaseOpen:
		return "open"
	case PhaseDirty:
		return "dirty"
	}
	return "closed"
}

// session is the open picker. A nil session means every picker is closed.
type session struct {
	typ   catalog.ItemType
	draft *selection.Draft
}

// Coordinator owns the committed selections of a campaign and the single
// picker session that may be staging changes to them. It is not safe for
// concurrent use; the editor drives it from one goroutine.
type Coordinator struct {
	max       int
	committed map[catalog.ItemType]*selection.Set
	queries   map[catalog.ItemType]*query.Controller
	session   *session
	notifier  Notifier
	logger    *zap.Logger
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithQuery attaches the catalog query controller that backs the picker of t.
func WithQuery(t catalog.ItemType, c *query.Controller) CoordinatorOption {
	return func(co *Coordinator) { co.queries[t] = c }
}

// WithNotifier sets where confirmation notices go.
func WithNotifier(n Notifier) CoordinatorOption {
	return func(co *Coordinator) {
		if n != nil {
			co.notifier = n
		}
	}
}

// NewCoordinator returns a coordinator with empty committed selections.
func NewCoordinator(maxItems int, opts ...CoordinatorOption) *Coordinator {
	if maxItems <= 0 {
		maxItems = selection.DefaultMaxItems
	}
	co := &Coordinator{
		max:       maxItems,
		committed: make(map[catalog.ItemType]*selection.Set, len(catalog.Types)),
		queries:   make(map[catalog.ItemType]*query.Controller, len(catalog.Types)),
		notifier:  nopNotifier{},
		logger:    logging.Get(logging.CategoryEditor),
	}
	for _, t := range catalog.Types {
		co.committed[t] = selection.NewSet(t)
	}
	for _, o := range opts {
		o(co)
	}
	return co
}

// Max returns the combined item cap.
func (co *Coordinator) Max() int { return co.max }

// Load replaces the committed selection of t, e.g. after a campaign is
// fetched. It is refused while a picker is open.
func (co *Coordinator) Load(t catalog.ItemType, records []catalog.DisplayRecord) error {
	if !t.Valid() {
		return fmt.Errorf("load %q: unknown item type", t)
	}
	if co.session != nil {
		return ErrPickerBusy
	}
	co.committed[t] = selection.SetOf(t, records...)
	return nil
}

// Open starts a picker session for t with a draft seeded from the committed
// selections, and activates the picker's catalog query.
func (co *Coordinator) Open(ctx context.Context, t catalog.ItemType) error {
	if !t.Valid() {
		return fmt.Errorf("open %q: unknown item type", t)
	}
	if co.session != nil {
		if co.session.typ == t {
			return nil
		}
		return ErrPickerBusy
	}

	sets := make([]*selection.Set, 0, len(co.committed))
	for _, typ := range catalog.Types {
		sets = append(sets, co.committed[typ])
	}
	co.session = &session{typ: t, draft: selection.OpenWith(co.max, sets...)}
	if q := co.queries[t]; q != nil {
		q.Activate(ctx)
	}
	co.logger.Debug("picker opened", zap.String("type", string(t)))
	return nil
}

// OpenType returns the type of the open picker.
func (co *Coordinator) OpenType() (catalog.ItemType, bool) {
	if co.session == nil {
		return "", false
	}
	return co.session.typ, true
}

// Phase reports the picker state of t.
func (co *Coordinator) Phase(t catalog.ItemType) Phase {
	if co.session == nil || co.session.typ != t {
		return PhaseClosed
	}
	if co.session.draft.Dirty(t) {
		return PhaseDirty
	}
	return PhaseOpen
}

// Add stages rec in the open picker.
func (co *Coordinator) Add(rec catalog.DisplayRecord) (selection.AddResult, error) {
	if co.session == nil {
		return selection.Discarded, ErrNotOpen
	}
	if rec.Type == "" {
		rec.Type = co.session.typ
	}
	if rec.Type != co.session.typ {
		return selection.WrongType, nil
	}
	res := co.session.draft.Add(rec)
	if res == selection.CapReached {
		logging.Get(logging.CategorySelection).Debug("add rejected at cap", zap.String("id", rec.ID), zap.Int("max", co.max))
	}
	return res, nil
}

// Remove unstages id from the open picker.
func (co *Coordinator) Remove(id string) (bool, error) {
	if co.session == nil {
		return false, ErrNotOpen
	}
	return co.session.draft.Remove(co.session.typ, id), nil
}

// Toggle adds rec when it is not staged and removes it otherwise.
func (co *Coordinator) Toggle(rec catalog.DisplayRecord) (selection.AddResult, bool, error) {
	if co.session == nil {
		return selection.Discarded, false, ErrNotOpen
	}
	if co.session.draft.IsSelected(co.session.typ, rec.ID) {
		removed, err := co.Remove(rec.ID)
		return selection.AlreadyPresent, removed, err
	}
	res, err := co.Add(rec)
	return res, false, err
}

// IsSelected reports whether id is staged in the open picker.
func (co *Coordinator) IsSelected(id string) bool {
	if co.session == nil {
		return false
	}
	return co.session.draft.IsSelected(co.session.typ, id)
}

// Remaining returns how many more items the open draft accepts.
func (co *Coordinator) Remaining() int {
	if co.session == nil {
		return co.max - co.committedTotal()
	}
	return co.session.draft.Remaining()
}

// Staged returns the staged records of the open picker.
func (co *Coordinator) Staged() []catalog.DisplayRecord {
	if co.session == nil {
		return nil
	}
	return co.session.draft.Set(co.session.typ).Records()
}

// Confirm promotes the draft of the open picker to the committed selection
// and closes the picker. It reports false when no picker was open, which makes
// a repeated confirm a no-op.
func (co *Coordinator) Confirm() bool {
	s := co.session
	if s == nil {
		return false
	}
	staged := s.draft.Set(s.typ)
	co.committed[s.typ] = staged
	co.session = nil
	if q := co.queries[s.typ]; q != nil {
		q.Deactivate()
	}

	co.logger.Debug("picker confirmed", zap.String("type", string(s.typ)), zap.Int("items", staged.Len()))
	if staged.Len() > 0 {
		co.notifier.Notify(Notice{Level: LevelSuccess, Text: confirmText(s.typ, staged.Len())})
	}
	return true
}

// Cancel discards the draft, leaves the committed selection untouched, and
// resets the picker's search so the next open starts clean.
func (co *Coordinator) Cancel() bool {
	s := co.session
	if s == nil {
		return false
	}
	s.draft.Discard()
	co.session = nil
	if q := co.queries[s.typ]; q != nil {
		q.Deactivate()
		q.Reset()
	}
	co.logger.Debug("picker cancelled", zap.String("type", string(s.typ)))
	return true
}

// Committed returns the committed records of t in insertion order.
func (co *Coordinator) Committed(t catalog.ItemType) []catalog.DisplayRecord {
	if set, ok := co.committed[t]; ok {
		return set.Records()
	}
	return nil
}

// Items returns the campaign items: committed products, then committed
// categories, each in insertion order.
func (co *Coordinator) Items() []catalog.ItemRef {
	items := make([]catalog.ItemRef, 0, co.committedTotal())
	for _, t := range catalog.Types {
		items = append(items, co.committed[t].Refs()...)
	}
	return items
}

func (co *Coordinator) committedTotal() int {
	n := 0
	for _, set := range co.committed {
		n += set.Len()
	}
	return n
}

func confirmText(t catalog.ItemType, n int) string {
	switch {
	case t == catalog.TypeCategory && n == 1:
		return "1 categoria selecionada para a campanha"
	case t == catalog.TypeCategory:
		return fmt.Sprintf("%d categorias selecionadas para a campanha", n)
	case n == 1:
		return "1 produto selecionado para a campanha"
	}
	return fmt.Sprintf("%d produtos selecionados para a campanha", n)
}
