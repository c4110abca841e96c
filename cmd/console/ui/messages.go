package ui

import (
	"brandconsole/internal/catalog"
	"brandconsole/internal/editor"
	"brandconsole/internal/query"

	tea "github.com/charmbracelet/bubbletea"
)

// catalogChangedMsg reports that a picker's query controller changed state.
type catalogChangedMsg struct {
	typ catalog.ItemType
}

// pickerClosedMsg is sent when a picker is confirmed or cancelled.
type pickerClosedMsg struct {
	typ       catalog.ItemType
	confirmed bool
}

// saveDoneMsg carries the result of a submit or a confirmed resubmit.
type saveDoneMsg struct {
	outcome editor.Outcome
	err     error
}

// clearNoticeMsg hides the status line unless a newer notice replaced it.
type clearNoticeMsg struct {
	seq int
}

// ChangeFeed turns query controller callbacks, which arrive on timer and
// fetch goroutines, into bubbletea messages.
type ChangeFeed struct {
	ch chan catalog.ItemType
}

// NewChangeFeed returns an empty feed.
func NewChangeFeed() *ChangeFeed {
	return &ChangeFeed{ch: make(chan catalog.ItemType, 16)}
}

// OnChange returns a query.WithOnChange callback for the picker of type t.
// It never blocks; when the buffer is full a refresh is already pending.
func (f *ChangeFeed) OnChange(t catalog.ItemType) func(query.Snapshot) {
	return func(query.Snapshot) {
		select {
		case f.ch <- t:
		default:
		}
	}
}

// Listen waits for the next change.
func (f *ChangeFeed) Listen() tea.Cmd {
	return func() tea.Msg {
		return catalogChangedMsg{typ: <-f.ch}
	}
}
