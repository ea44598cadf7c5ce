package service

import (
	"sync"

	"github.com/yusufkecer/bmi-tracker/internal/domain"
)

// Session is the active user context. It starts empty, is set by a
// successful create or load, and is cleared by Clear.
type Session struct {
	mu   sync.RWMutex
	user *domain.User
}

func NewSession() *Session {
	return &Session{}
}

// Activate makes u the active user.
func (s *Session) Activate(u *domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	s.user = &cp
}

// User returns a copy of the active user or domain.ErrNoActiveUser.
func (s *Session) User() (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil, domain.ErrNoActiveUser
	}
	cp := *s.user
	return &cp, nil
}

func (s *Session) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
}
