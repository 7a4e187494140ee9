package models

import (
	"strings"
	"time"
)

// Source is a deduplicated, usage-counted label identifying where a post
// originated. Names are stored in their canonical uppercase form; every reuse
// bumps UsageCount and refreshes LastUsed. Counters are monotonic: deleting a
// referencing post does not decrement them.
type Source struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"uniqueIndex;not null" json:"name"`
	UsageCount int       `gorm:"not null;default:0" json:"usage_count"`
	CreatedAt  time.Time `json:"created_at"`
	LastUsed   time.Time `json:"last_used"`
}

// SourceCount pairs a source name with how many of the caller's posts cite it.
type SourceCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// NormalizeSourceName folds a source name to its canonical uppercase form.
// Normalization happens here and only here, so create and update paths cannot
// diverge on case handling.
func NormalizeSourceName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
