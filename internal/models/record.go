package models

import (
	"time"

	"gorm.io/gorm"
)

// EvaluationRecord persists one graded submission for history views and the
// scheduled training-data export.
// Note: user identifiers are intentionally excluded for privacy.
type EvaluationRecord struct {
	gorm.Model
	RequestID        string     `gorm:"uniqueIndex;not null" json:"request_id"`
	SubmissionID     string     `gorm:"index;not null" json:"submission_id"`
	LessonTitle      string     `gorm:"not null" json:"lesson_title"`
	LessonDifficulty string     `json:"lesson_difficulty"`
	LessonCategory   string     `json:"lesson_category"`
	Prompt           string     `gorm:"type:text" json:"prompt"`
	Score            int        `gorm:"not null" json:"score"`
	ConfidenceScore  int        `gorm:"not null" json:"confidence_score"`
	IsCorrect        bool       `gorm:"not null" json:"is_correct"`
	Feedback         string     `gorm:"type:text;not null" json:"feedback"`
	Source           string     `gorm:"not null;index" json:"source"` // "llm" | "fallback"
	GradedAt         time.Time  `gorm:"not null" json:"graded_at"`
	Exported         bool       `gorm:"not null;default:false;index" json:"exported"`
	ExportedAt       *time.Time `json:"exported_at"`
}

// TrainingDataPoint represents a single training example in JSONL format
type TrainingDataPoint struct {
	Contents []TrainingContent `json:"contents"`
}

type TrainingContent struct {
	Role  string         `json:"role"` // "user" or "model"
	Parts []TrainingPart `json:"parts"`
}

type TrainingPart struct {
	Text string `json:"text"`
}
