package models

import "time"

// numeric sub-scores for the submitted code, each in [0,100]
type CodeAnalysis struct {
	Quality     int `json:"quality"`
	Efficiency  int `json:"efficiency"`
	Readability int `json:"readability"`
}

// scores derived from the spoken explanation, present only when a
// transcript was supplied
type AudioAnalysis struct {
	Clarity       int    `json:"clarity"`
	Explanation   int    `json:"explanation"`
	Confidence    int    `json:"confidence"`
	Transcription string `json:"transcription"`
}

// EvaluationResult is the scored record returned for one submission attempt.
// Field names match the client wire contract.
type EvaluationResult struct {
	ID              string         `json:"id"`
	SubmissionID    string         `json:"submissionId"`
	Score           int            `json:"score"`
	ConfidenceScore int            `json:"confidenceScore"`
	IsCorrect       bool           `json:"isCorrect"`
	Feedback        string         `json:"feedback"`
	CodeAnalysis    CodeAnalysis   `json:"codeAnalysis"`
	AudioAnalysis   *AudioAnalysis `json:"audioAnalysis,omitempty"`
	CreatedAt       string         `json:"createdAt"` // ISO-8601
}

// CreatedAtTime parses the ISO timestamp, falling back to now when the
// field is missing or malformed.
func (r *EvaluationResult) CreatedAtTime() time.Time {
	if ts, err := time.Parse(time.RFC3339, r.CreatedAt); err == nil {
		return ts
	}
	return time.Now().UTC()
}

// where an evaluation came from
const (
	EvaluationSourceLLM       = "llm"
	EvaluationSourceHeuristic = "fallback"
)
