package persistent

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/SabbirHossainEvan/yozietrance-app-sub000"
	"github.com/tidwall/buntdb"
)

const sessionKey = "session:current"

// Session is the stored shape of the one local session: tokens plus the
// cached profile, enough to restore a logged-in state at startup without a
// round trip.
type Session struct {
	UserId       string  `json:"userId"`
	AccessToken  string  `json:"accessToken"`
	RefreshToken string  `json:"refreshToken"`
	Profile      Profile `json:"profile"`
}

type Profile struct {
	Id        string   `json:"id"`
	RawIds    []string `json:"rawIds"`
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Phone     string   `json:"phone"`
	AvatarUrl string   `json:"avatarUrl"`
	RoleIds   []string `json:"roles"`
	StoreName string   `json:"storeName"`
	LogoUrl   string   `json:"logoUrl"`
}

func (s Session) ToDomain() yozie.Session {
	profile := yozie.User{
		Id:        yozie.UserId(s.Profile.Id),
		RawIds:    s.Profile.RawIds,
		Name:      s.Profile.Name,
		Email:     s.Profile.Email,
		Phone:     s.Profile.Phone,
		AvatarUrl: s.Profile.AvatarUrl,
		StoreName: s.Profile.StoreName,
		LogoUrl:   s.Profile.LogoUrl,
	}
	for _, id := range s.Profile.RoleIds {
		if role, ok := yozie.AllRoles[yozie.RoleId(id)]; ok {
			profile.Roles = append(profile.Roles, role)
		}
	}
	return yozie.Session{
		UserId:       yozie.UserId(s.UserId),
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		Profile:      profile,
	}
}

func fromDomain(session yozie.Session) Session {
	roleIds := make([]string, 0, len(session.Profile.Roles))
	for _, role := range session.Profile.Roles {
		roleIds = append(roleIds, string(role.Id))
	}
	return Session{
		UserId:       string(session.UserId),
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		Profile: Profile{
			Id:        string(session.Profile.Id),
			RawIds:    session.Profile.RawIds,
			Name:      session.Profile.Name,
			Email:     session.Profile.Email,
			Phone:     session.Profile.Phone,
			AvatarUrl: session.Profile.AvatarUrl,
			RoleIds:   roleIds,
			StoreName: session.Profile.StoreName,
			LogoUrl:   session.Profile.LogoUrl,
		},
	}
}

// SessionStore keeps the session in buntdb so a restart restores the
// logged-in state without re-login.
type SessionStore struct {
	Buntdb *buntdb.DB
}

var _ yozie.SessionStore = (*SessionStore)(nil)

func (s *SessionStore) Current() (yozie.Session, error) {
	var stored Session
	err := s.Buntdb.View(func(tx *buntdb.Tx) error {
		serialized, err := tx.Get(sessionKey)
		if err != nil {
			return fmt.Errorf("get serialized session: %w", err)
		}
		if err := json.Unmarshal([]byte(serialized), &stored); err != nil {
			return fmt.Errorf("deserialize session: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, buntdb.ErrNotFound) {
			return yozie.Session{}, yozie.ErrNoSession
		}
		return yozie.Session{}, fmt.Errorf("buntdb view: %w", err)
	}
	return stored.ToDomain(), nil
}

func (s *SessionStore) Replace(session yozie.Session) error {
	return s.store(fromDomain(session))
}

func (s *SessionStore) ReplaceTokens(accessToken string, refreshToken string) error {
	current, err := s.Current()
	if err != nil {
		return err
	}
	current.AccessToken = accessToken
	current.RefreshToken = refreshToken
	return s.store(fromDomain(current))
}

func (s *SessionStore) ReplaceProfile(profile yozie.User) error {
	current, err := s.Current()
	if err != nil {
		return err
	}
	current.Profile = profile
	return s.store(fromDomain(current))
}

func (s *SessionStore) Clear() error {
	err := s.Buntdb.Update(func(tx *buntdb.Tx) error {
		_, err := tx.Delete(sessionKey)
		if errors.Is(err, buntdb.ErrNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("bunt update: %w", err)
	}
	return nil
}

func (s *SessionStore) store(session Session) error {
	serialized, err := json.Marshal(&session)
	if err != nil {
		return fmt.Errorf("session serialize: %w", err)
	}
	err = s.Buntdb.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(sessionKey, string(serialized), nil)
		return err
	})
	if err != nil {
		return fmt.Errorf("bunt update: %w", err)
	}
	return nil
}
