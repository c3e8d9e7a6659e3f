package models

import (
	"time"

	"github.com/google/uuid"
)

// Quiz groups the questions generated for one topic
type Quiz struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Topic     string    `json:"topic" db:"topic"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the Quiz model
func (Quiz) TableName() string {
	return "quizzes"
}

// NewQuiz creates a quiz for a topic
func NewQuiz(topic string) *Quiz {
	return &Quiz{
		ID:        uuid.New(),
		Topic:     topic,
		CreatedAt: time.Now(),
	}
}

// QuizQuestion is one multiple-choice question belonging to a quiz
type QuizQuestion struct {
	ID            uuid.UUID `json:"id" db:"id"`
	QuizID        uuid.UUID `json:"quiz_id" db:"quiz_id"`
	Question      string    `json:"question" db:"question"`
	CorrectAnswer string    `json:"correct_answer" db:"correct_answer"`
	Explanation   string    `json:"explanation" db:"explanation"`
	Options       []string  `json:"options" db:"options"`
}

// TableName returns the table name for the QuizQuestion model
func (QuizQuestion) TableName() string {
	return "quiz_questions"
}

// NewQuizQuestion creates a quiz question
func NewQuizQuestion(quizID uuid.UUID, question, correctAnswer, explanation string, options []string) *QuizQuestion {
	return &QuizQuestion{
		ID:            uuid.New(),
		QuizID:        quizID,
		Question:      question,
		CorrectAnswer: correctAnswer,
		Explanation:   explanation,
		Options:       options,
	}
}
