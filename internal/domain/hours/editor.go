package hours

import (
	"context"
	"errors"
	"sync"
)

// SessionService is the part of Service the Editor drives.
type SessionService interface {
	Get(ctx context.Context, id string) (Session, error)
	At(ctx context.Context, index int) (Session, error)
	Create(ctx context.Context, in Input) (Session, error)
	Update(ctx context.Context, id string, in Input) (Session, error)
	UpdateAt(ctx context.Context, index int, in Input) (Session, error)
}

// Editor tracks the form's edit context. While a session is loaded for
// editing, Submit updates it; otherwise Submit creates a new session.
type Editor struct {
	sessions SessionService
	mu       sync.Mutex
	editing  string
	// index is the list position the session was loaded from, or -1 when
	// it was loaded by id.
	index int
}

// NewEditor creates an Editor with no edit in progress.
func NewEditor(sessions SessionService) *Editor {
	return &Editor{sessions: sessions, index: -1}
}

// Begin loads a session into the form and enters edit mode.
func (e *Editor) Begin(ctx context.Context, id string) (Session, error) {
	sess, err := e.sessions.Get(ctx, id)
	if err != nil {
		return Session{}, err
	}
	e.set(sess.ID, -1)
	return sess, nil
}

// BeginAt loads the session at a list position. Submit then writes back to
// that position, resolved again at write time.
func (e *Editor) BeginAt(ctx context.Context, index int) (Session, error) {
	sess, err := e.sessions.At(ctx, index)
	if err != nil {
		return Session{}, err
	}
	e.set(sess.ID, index)
	return sess, nil
}

// Cancel leaves edit mode without saving.
func (e *Editor) Cancel() {
	e.set("", -1)
}

// Editing returns the ID being edited, if any.
func (e *Editor) Editing() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.editing, e.editing != ""
}

// Submit routes the form to Update or Create. Edit mode is cleared after a
// successful update or when the edited session no longer exists. Any other
// failure keeps it, so a rejected edit can be corrected and resubmitted.
func (e *Editor) Submit(ctx context.Context, in Input) (Session, error) {
	e.mu.Lock()
	id, index := e.editing, e.index
	e.mu.Unlock()

	if id == "" {
		return e.sessions.Create(ctx, in)
	}

	var (
		sess Session
		err  error
	)
	if index >= 0 {
		sess, err = e.sessions.UpdateAt(ctx, index, in)
	} else {
		sess, err = e.sessions.Update(ctx, id, in)
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		return Session{}, err
	}

	e.mu.Lock()
	if e.editing == id {
		e.editing, e.index = "", -1
	}
	e.mu.Unlock()
	if err != nil {
		return Session{}, err
	}
	return sess, nil
}

func (e *Editor) set(id string, index int) {
	e.mu.Lock()
	e.editing, e.index = id, index
	e.mu.Unlock()
}
