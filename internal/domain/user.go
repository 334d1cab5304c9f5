package domain

// User represents a registered account.
// PasswordHash is only populated on records read from the Record Store and is
// never sent to clients.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash,omitempty"`
}

// Public returns a copy of the user that is safe to hand to clients.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}

// AuthResult is returned by a successful login or registration.
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
