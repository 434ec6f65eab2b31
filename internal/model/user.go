package model

// User is a staff account as returned by the auth service, used for
// assignee selection.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}
