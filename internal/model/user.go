package model

// User is the signed-in account.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// AuthState holds the current session. IsAuthenticated is true iff User is set.
type AuthState struct {
	User            *User
	IsAuthenticated bool
}
