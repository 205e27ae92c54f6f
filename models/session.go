package models

// Profile is the authenticated user's profile as returned by the user API.
type Profile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Session is the persisted auth state: the current access token and the
// profile it belongs to. The token is refreshed in place on expiry.
type Session struct {
	Token string  `json:"token"`
	User  Profile `json:"user"`
}
