package model

import "time"

// Document holds the fully-extracted text of the file uploaded into a session.
// Content carries no structural markup beyond the sheet-name headers emitted
// for spreadsheet sources. A new upload replaces the row wholesale.
type Document struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SessionID uint      `gorm:"not null;uniqueIndex" json:"session_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Name      string    `gorm:"size:256;not null" json:"name"`
	Format    string    `gorm:"size:16;not null" json:"format"`
	Content   string    `gorm:"type:longtext;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
