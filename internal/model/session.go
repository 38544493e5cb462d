package model

import "time"

// Session is one document-grounded conversation. It owns at most one active
// Document; replacing that document wipes the session's messages and quiz flag.
type Session struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	Title         string    `gorm:"size:128;not null" json:"title"`
	QuizGenerated bool      `gorm:"not null;default:false" json:"quiz_generated"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
