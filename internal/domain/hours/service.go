package hours

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rpggio/learnerhours/internal/repository"
)

// DefaultKey is the storage key the collection lives under.
const DefaultKey = "learner-hours"

// Service handles session operations.
//
// Every operation reads the whole collection and every mutation rewrites it.
// The mutex serializes those cycles inside one process only: two processes
// sharing a backend key still race and the last writer wins.
type Service struct {
	store     Store
	key       string
	logger    *slog.Logger
	newID     func() string
	observers []Observer
	mu        sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithKey overrides the storage key.
func WithKey(key string) Option {
	return func(s *Service) {
		if strings.TrimSpace(key) != "" {
			s.key = key
		}
	}
}

// WithIDGenerator overrides how new session IDs are made.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithObserver registers an observer for list changes.
func WithObserver(o Observer) Option {
	return func(s *Service) {
		if o != nil {
			s.observers = append(s.observers, o)
		}
	}
}

// NewService creates a new session service.
func NewService(store Store, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Service{
		store:  store,
		key:    DefaultKey,
		logger: logger,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the storage key in use.
func (s *Service) Key() string {
	return s.key
}

// List returns every stored session, newest first.
func (s *Service) List(ctx context.Context) ([]Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(ctx)
}

// Get returns the session with the given ID.
func (s *Service) Get(ctx context.Context, id string) (Session, error) {
	sessions, err := s.List(ctx)
	if err != nil {
		return Session{}, err
	}
	i := indexOf(sessions, id)
	if i < 0 {
		return Session{}, ErrNotFound
	}
	return sessions[i], nil
}

// At returns the session at a position of the current ordering.
func (s *Service) At(ctx context.Context, index int) (Session, error) {
	sessions, err := s.List(ctx)
	if err != nil {
		return Session{}, err
	}
	if index < 0 || index >= len(sessions) {
		return Session{}, ErrNotFound
	}
	return sessions[index], nil
}

// Create validates and stores a new session.
func (s *Service) Create(ctx context.Context, in Input) (Session, error) {
	in, err := ValidateInput(in)
	if err != nil {
		return Session{}, err
	}

	var created Session
	err = s.mutate(ctx, func(sessions []Session) ([]Session, error) {
		for _, existing := range sessions {
			if existing.sameSlot(in) {
				return nil, ErrDuplicate
			}
		}
		created = Session{
			ID:        s.newID(),
			Date:      in.Date,
			StartTime: in.StartTime,
			EndTime:   in.EndTime,
		}
		return append(sessions, created), nil
	})
	if err != nil {
		return Session{}, err
	}

	s.logger.Debug("session created", "id", created.ID, "date", created.Date)
	return created, nil
}

// Update overwrites the session with the given ID.
// Duplicates are not checked here; only creation enforces uniqueness.
func (s *Service) Update(ctx context.Context, id string, in Input) (Session, error) {
	in, err := ValidateInput(in)
	if err != nil {
		return Session{}, err
	}

	var updated Session
	err = s.mutate(ctx, func(sessions []Session) ([]Session, error) {
		i := indexOf(sessions, id)
		if i < 0 {
			return nil, ErrNotFound
		}
		updated = Session{ID: id, Date: in.Date, StartTime: in.StartTime, EndTime: in.EndTime}
		sessions[i] = updated
		return sessions, nil
	})
	if err != nil {
		return Session{}, err
	}

	s.logger.Debug("session updated", "id", id)
	return updated, nil
}

// UpdateAt overwrites the session at a position of the current ordering.
// The position is resolved inside the same read-modify-write cycle.
func (s *Service) UpdateAt(ctx context.Context, index int, in Input) (Session, error) {
	in, err := ValidateInput(in)
	if err != nil {
		return Session{}, err
	}

	var updated Session
	err = s.mutate(ctx, func(sessions []Session) ([]Session, error) {
		if index < 0 || index >= len(sessions) {
			return nil, ErrNotFound
		}
		updated = Session{ID: sessions[index].ID, Date: in.Date, StartTime: in.StartTime, EndTime: in.EndTime}
		sessions[index] = updated
		return sessions, nil
	})
	if err != nil {
		return Session{}, err
	}
	return updated, nil
}

// Delete removes the session with the given ID.
func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.mutate(ctx, func(sessions []Session) ([]Session, error) {
		i := indexOf(sessions, id)
		if i < 0 {
			return nil, ErrNotFound
		}
		return append(sessions[:i], sessions[i+1:]...), nil
	})
	if err != nil {
		return err
	}

	s.logger.Debug("session deleted", "id", id)
	return nil
}

// DeleteAt removes the session at a position of the current ordering.
func (s *Service) DeleteAt(ctx context.Context, index int) error {
	return s.mutate(ctx, func(sessions []Session) ([]Session, error) {
		if index < 0 || index >= len(sessions) {
			return nil, ErrNotFound
		}
		return append(sessions[:index], sessions[index+1:]...), nil
	})
}

// Search returns sessions whose date contains query, keeping list order.
// Slashes are read as dashes so "2024/01" finds "2024-01-05".
func (s *Service) Search(ctx context.Context, query string) (SearchResult, error) {
	sessions, err := s.List(ctx)
	if err != nil {
		return SearchResult{}, err
	}

	needle := strings.ReplaceAll(strings.TrimSpace(query), "/", "-")
	matches := make([]Session, 0, len(sessions))
	for _, sess := range sessions {
		if strings.Contains(sess.Date, needle) {
			matches = append(matches, sess)
		}
	}

	return SearchResult{
		Query:          needle,
		Sessions:       matches,
		CollectionSize: len(sessions),
	}, nil
}

// TotalDuration sums the length of every stored session.
// A stored session ending before it starts is reported, not clamped.
func (s *Service) TotalDuration(ctx context.Context) (Total, error) {
	sessions, err := s.List(ctx)
	if err != nil {
		return Total{}, err
	}

	minutes := 0
	for _, sess := range sessions {
		m, err := sess.Minutes()
		if err != nil {
			return Total{}, err
		}
		minutes += m
	}
	return newTotal(minutes, len(sessions)), nil
}

// load must be called with mu held.
func (s *Service) load(ctx context.Context) ([]Session, error) {
	data, err := s.store.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return []Session{}, nil
		}
		return nil, fmt.Errorf("loading sessions: %w", err)
	}

	sessions, assigned, err := decodeCollection(data, s.newID)
	if err != nil {
		s.logger.Warn("stored sessions unreadable, treating as empty", "key", s.key, "error", err)
		return []Session{}, nil
	}
	unsorted := !sortedNewestFirst(sessions)
	if unsorted {
		sortNewestFirst(sessions)
	}
	if assigned || unsorted {
		// Persist so ids and positions stay stable across reads.
		if data, err := encodeCollection(sessions); err == nil {
			err = s.store.Put(ctx, s.key, data)
			if err != nil {
				s.logger.Warn("failed to persist normalized sessions", "key", s.key, "error", err)
			}
		}
		s.logger.Info("normalized legacy sessions", "key", s.key, "assigned_ids", assigned, "resorted", unsorted)
	}
	return sessions, nil
}

func (s *Service) mutate(ctx context.Context, fn func([]Session) ([]Session, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, err := s.load(ctx)
	if err != nil {
		return err
	}
	sessions, err = fn(sessions)
	if err != nil {
		return err
	}
	sortNewestFirst(sessions)

	data, err := encodeCollection(sessions)
	if err != nil {
		return err
	}
	if err := s.store.Put(ctx, s.key, data); err != nil {
		return fmt.Errorf("saving sessions: %w", err)
	}

	for _, o := range s.observers {
		o.SessionsChanged(ctx, append([]Session(nil), sessions...))
	}
	return nil
}

func indexOf(sessions []Session, id string) int {
	if id == "" {
		return -1
	}
	for i, sess := range sessions {
		if sess.ID == id {
			return i
		}
	}
	return -1
}
