package service

import (
	"context"
	"log"
	"strings"
	"sync"

	"task-manager/internal/model"
	"task-manager/internal/repository"
)

// AuthService holds the signed-in user and mirrors it to the store.
type AuthService struct {
	store Store
	mu    sync.RWMutex
	state model.AuthState
}

func NewAuthService(store Store) *AuthService {
	return &AuthService{store: store}
}

// State returns a copy of the current session.
func (s *AuthService) State() model.AuthState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := model.AuthState{IsAuthenticated: s.state.IsAuthenticated}
	if s.state.User != nil {
		user := *s.state.User
		out.User = &user
	}
	return out
}

// CurrentUser returns the signed-in user, if any.
func (s *AuthService) CurrentUser() (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.User == nil {
		return model.User{}, false
	}
	return *s.state.User, true
}

// Login signs user in and persists it. The username is not validated here.
func (s *AuthService) Login(ctx context.Context, user model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Save(ctx, repository.KeyUser, user); err != nil {
		return err
	}
	s.state = model.AuthState{User: &user, IsAuthenticated: true}
	log.Printf("[info] user signed in id=%s username=%s", user.ID, user.Username)
	return nil
}

// Logout clears the session and its persisted copy.
func (s *AuthService) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Remove(ctx, repository.KeyUser); err != nil {
		return err
	}
	s.state = model.AuthState{}
	log.Println("[info] user signed out")
	return nil
}

// RestoreAuth rehydrates a previous session. A missing, unreadable or
// nameless record leaves the state untouched.
func (s *AuthService) RestoreAuth(ctx context.Context) {
	var user model.User
	found, err := s.store.Load(ctx, repository.KeyUser, &user)
	if err != nil {
		log.Printf("[warn] restore auth: %v", err)
		return
	}
	if !found {
		return
	}
	if strings.TrimSpace(user.Username) == "" {
		log.Printf("[warn] restore auth: stored user has no username")
		return
	}
	s.mu.Lock()
	s.state = model.AuthState{User: &user, IsAuthenticated: true}
	s.mu.Unlock()
	log.Printf("[info] session restored for %s", user.Username)
}
