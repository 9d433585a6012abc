package model

import "time"

// User is stored as JSON under user:<email>. The normalized email is the key.
type User struct {
	Email       string    `json:"email"`
	CreatedAt   time.Time `json:"createdAt"`
	LastLoginAt time.Time `json:"lastLoginAt"`
	Progress    Progress  `json:"progress"`
}

type Progress struct {
	CompletedLessons []string `json:"completedLessons"`
	CurrentLesson    string   `json:"currentLesson,omitempty"`
}
