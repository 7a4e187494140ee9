package models

// Aspect is a named facet of a comment with its own sentiment, optionally
// backed by the excerpt of text that indicates it. Aspects are owned by
// exactly one comment and listed ascending by id.
type Aspect struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	CommentID  uint   `gorm:"not null;index" json:"comment_id"`
	AspectName string `gorm:"not null" json:"aspect_name"`
	AspectText string `gorm:"type:text" json:"aspect_text"`
	Sentiment  string `gorm:"not null" json:"sentiment"`
}
