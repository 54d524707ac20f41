package mock

import (
	"github.com/SabbirHossainEvan/yozietrance-app-sub000"
)

type SessionStore struct {
	CurrentFn func() (yozie.Session, error)

	ReplaceFn func(session yozie.Session) error

	ReplaceTokensFn func(accessToken string, refreshToken string) error

	ReplaceProfileFn func(profile yozie.User) error

	ClearFn func() error
}

func (s SessionStore) Current() (yozie.Session, error) {
	return s.CurrentFn()
}

func (s SessionStore) Replace(session yozie.Session) error {
	return s.ReplaceFn(session)
}

func (s SessionStore) ReplaceTokens(accessToken string, refreshToken string) error {
	return s.ReplaceTokensFn(accessToken, refreshToken)
}

func (s SessionStore) ReplaceProfile(profile yozie.User) error {
	return s.ReplaceProfileFn(profile)
}

func (s SessionStore) Clear() error {
	return s.ClearFn()
}
