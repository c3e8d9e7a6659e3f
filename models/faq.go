package models

import (
	"time"

	"github.com/google/uuid"
)

// FAQItem is one generated question/answer pair with the source it was
// grounded on
type FAQItem struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Question  string    `json:"question" db:"question"`
	Answer    string    `json:"answer" db:"answer"`
	Source    string    `json:"source" db:"source"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the FAQItem model
func (FAQItem) TableName() string {
	return "faq_items"
}

// NewFAQItem creates an FAQ item
func NewFAQItem(question, answer, source string) *FAQItem {
	return &FAQItem{
		ID:        uuid.New(),
		Question:  question,
		Answer:    answer,
		Source:    source,
		CreatedAt: time.Now(),
	}
}
