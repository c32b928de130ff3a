package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultAvatar is used as the creator photo when the account has none.
const DefaultAvatar = "https://cdn-icons-png.flaticon.com/512/149/149071.png"

// Account is the authenticated user as exposed by the account directory.
type Account struct {
	ID          string
	DisplayName string
	Email       string
	PhotoURL    string
}

// Name returns the display name, falling back to the local part of the e-mail
// address, with the first letter upper-cased.
func (a Account) Name() string {
	name := strings.TrimSpace(a.DisplayName)
	if name == "" {
		name, _, _ = strings.Cut(a.Email, "@")
	}
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}

// Avatar returns the account photo or DefaultAvatar.
func (a Account) Avatar() string {
	if a.PhotoURL != "" {
		return a.PhotoURL
	}
	return DefaultAvatar
}
