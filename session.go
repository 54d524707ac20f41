package yozie

import "errors"

var ErrNoSession = errors.New("yozie: no session")

var ErrUnauthorized = errors.New("yozie: unauthorized")

var ErrForbidden = errors.New("yozie: forbidden")

// Session is the client-side view of the authenticated user. The backend is
// the source of truth for token validity; this struct only mirrors it.
// Tokens are replaced wholesale on refresh, the profile is replaced wholesale
// on profile update, and everything is cleared on logout.
type Session struct {
	UserId       UserId
	AccessToken  string
	RefreshToken string
	Profile      User
}

func (s Session) LoggedIn() bool {
	return s.AccessToken != ""
}

type SessionStore interface {
	// Current returns the active session or ErrNoSession.
	Current() (Session, error)

	// Replace installs a whole new session (login, registration).
	Replace(session Session) error

	// ReplaceTokens swaps the token pair in place. Profile stays untouched.
	ReplaceTokens(accessToken string, refreshToken string) error

	// ReplaceProfile swaps the profile in place. Tokens stay untouched.
	ReplaceProfile(profile User) error

	// Clear destroys the session (logout, terminal refresh failure).
	Clear() error
}
