package auth

import "time"

type Status string

const (
	StatusPending Status = "pending"
	StatusActive  Status = "active"
)

type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"passwordHash"`
	Admin        bool       `json:"admin"`
	Status       Status     `json:"status"`
	CreatedAt    time.Time  `json:"createdAt"`
	ApprovedAt   *time.Time `json:"approvedAt,omitempty"`
}

// Public is the user as shown to clients, without the credential.
type Public struct {
	ID         string     `json:"id"`
	Username   string     `json:"username"`
	Admin      bool       `json:"admin"`
	Status     Status     `json:"status"`
	CreatedAt  time.Time  `json:"createdAt"`
	ApprovedAt *time.Time `json:"approvedAt,omitempty"`
}

func (u User) Public() Public {
	return Public{
		ID:         u.ID,
		Username:   u.Username,
		Admin:      u.Admin,
		Status:     u.Status,
		CreatedAt:  u.CreatedAt,
		ApprovedAt: u.ApprovedAt,
	}
}

type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	TokenHash string    `json:"tokenHash"`
	CreatedAt time.Time `json:"createdAt"`
	LastSeen  time.Time `json:"lastSeen"`
	ExpiresAt time.Time `json:"expiresAt"`
}
