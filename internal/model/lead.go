package model

import "time"

// Lead is an email captured by the free content gate. Leads don't get an
// account until they verify a magic link.
type Lead struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Email     string    `gorm:"uniqueIndex;not null"`
	Source    string    `gorm:"size:128"`
	CreatedAt time.Time `gorm:"not null"`
}
