package memo

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// memStore is an in-memory Store that counts writes.
type memStore struct {
	mu      sync.Mutex
	state   State
	saves   int
	failing error
}

func (s *memStore) Load(context.Context) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Tabs = append([]Tab(nil), s.state.Tabs...)
	return st, s.failing
}

func (s *memStore) SaveTab(_ context.Context, tab Tab, position int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing != nil {
		return s.failing
	}
	s.saves++
	for i := range s.state.Tabs {
		if s.state.Tabs[i].ID == tab.ID {
			s.state.Tabs[i] = tab
			return nil
		}
	}
	if position >= len(s.state.Tabs) {
		s.state.Tabs = append(s.state.Tabs, tab)
		return nil
	}
	return errors.New("position out of order")
}

func (s *memStore) SaveTabs(_ context.Context, tabs []Tab) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing != nil {
		return s.failing
	}
	s.saves++
	s.state.Tabs = append([]Tab(nil), tabs...)
	return nil
}

func (s *memStore) SaveActive(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.ActiveID = id
	return s.failing
}

func (s *memStore) SaveTheme(_ context.Context, theme string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Theme = theme
	return s.failing
}

func (s *memStore) snapshot() State {
	st, _ := s.Load(context.Background())
	return st
}
