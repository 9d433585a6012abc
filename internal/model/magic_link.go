package model

import "time"

// MagicLink is stored under magic_link:<token> until it's consumed or expires
type MagicLink struct {
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	Redirect  string    `json:"redirect,omitempty"`
}
