package yozie

import "errors"

var ErrUserNotFound = errors.New("yozie: user not found")

type UserId string

type User struct {
	Id UserId

	// RawIds keeps every identifier value the backend returned for this
	// user, in the order they appeared. The backend names the id field
	// inconsistently across contexts and the realtime channel joins one
	// room per value, so they are preserved as-is instead of collapsed.
	RawIds []string

	Name      string
	Email     string
	Phone     string
	AvatarUrl string
	Roles     Roles

	// Vendor-only fields, zero for buyers.
	StoreName string
	LogoUrl   string
}

// Aliases returns the distinct raw identifier values for realtime room joins.
func (u User) Aliases() []string {
	aliases := make([]string, 0, len(u.RawIds))
	seen := make(map[string]bool, len(u.RawIds))
	for _, id := range u.RawIds {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		aliases = append(aliases, id)
	}
	return aliases
}
