package model

import "time"

// User roles. Admins manage accounts; authors build and export quizzes.
const (
	RoleAdmin  = "admin"
	RoleAuthor = "author"
)

// ValidRole reports whether r is one of the builder roles.
func ValidRole(r string) bool {
	return r == RoleAdmin || r == RoleAuthor
}

// User is a builder account.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	DisplayName  string    `json:"displayName"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
}

// AuthSession is a logged-in browser session.
type AuthSession struct {
	ID        string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
}

// QuizInfo is a library listing entry: enough to show the quiz picker
// without loading full documents.
type QuizInfo struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Questions int       `json:"questions"`
	UpdatedAt time.Time `json:"updatedAt"`
}
