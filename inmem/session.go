package inmem

import (
	"sync"

	"github.com/SabbirHossainEvan/yozietrance-app-sub000"
)

type SessionStore struct {
	mutex   sync.RWMutex
	session yozie.Session
	present bool
}

var _ yozie.SessionStore = (*SessionStore)(nil)

func NewSessionStore() *SessionStore {
	return &SessionStore{}
}

func (s *SessionStore) Current() (yozie.Session, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if !s.present {
		return yozie.Session{}, yozie.ErrNoSession
	}
	return s.session, nil
}

func (s *SessionStore) Replace(session yozie.Session) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.session = session
	s.present = true
	return nil
}

func (s *SessionStore) ReplaceTokens(accessToken string, refreshToken string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if !s.present {
		return yozie.ErrNoSession
	}
	s.session.AccessToken = accessToken
	s.session.RefreshToken = refreshToken
	return nil
}

func (s *SessionStore) ReplaceProfile(profile yozie.User) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if !s.present {
		return yozie.ErrNoSession
	}
	s.session.Profile = profile
	return nil
}

func (s *SessionStore) Clear() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.session = yozie.Session{}
	s.present = false
	return nil
}
