package models

import "time"

// Sentiment labels shared by comments and aspects.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// ValidSentiment reports whether s is one of the three allowed labels.
func ValidSentiment(s string) bool {
	switch s {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return true
	}
	return false
}

// Comment is a piece of user-generated text attached to a post, annotated
// with an overall sentiment. Comments are owned by exactly one post and are
// ordered by insertion (ascending id).
type Comment struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	PostID           uint      `gorm:"not null;index" json:"post_id"`
	Text             string    `gorm:"type:text;not null" json:"text"`
	GeneralSentiment string    `gorm:"not null" json:"general_sentiment"`
	Aspects          []Aspect  `gorm:"foreignKey:CommentID;constraint:OnDelete:CASCADE" json:"aspects"`
	CreatedAt        time.Time `json:"created_at"`
}
