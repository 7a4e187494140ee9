package models

import "time"

// Post status values. A post starts unreviewed and transitions to reviewed
// exactly once; there is no transition back.
const (
	PostStatusUnreviewed = "unreviewed"
	PostStatusReviewed   = "reviewed"
)

// Post is a submitted QA item: a caption from a named source, owned by the
// collector who submitted it, with annotated comments attached.
type Post struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Caption      string     `gorm:"type:text;not null" json:"caption"`
	SourceID     uint       `gorm:"not null;index" json:"source_id"`
	Source       Source     `gorm:"foreignKey:SourceID" json:"source"`
	UserID       uint       `gorm:"not null;index" json:"user_id"`
	User         User       `gorm:"foreignKey:UserID" json:"user"`
	Status       string     `gorm:"not null;default:unreviewed;index" json:"status"`
	ReviewedByID *uint      `json:"reviewed_by,omitempty"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty"`
	Comments     []Comment  `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"comments"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
