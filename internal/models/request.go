package models

import (
	"strings"

	"codetutor/ai/internal/keystroke"
)

// GradeRequest is the submit-and-grade payload. Absent code or transcript is
// a data condition, not a validation error: it lowers computed scores and
// changes the feedback text instead of failing the request.
type GradeRequest struct {
	SubmissionID     string `json:"submissionId"`
	Code             string `json:"code"`
	Transcript       string `json:"transcript,omitempty"`
	LessonID         int    `json:"lessonId,omitempty"`
	LessonTitle      string `json:"lessonTitle"`
	LessonDifficulty string `json:"lessonDifficulty"`
	LessonCategory   string `json:"lessonCategory"`
	RequestID        string `json:"request_id,omitempty"`
}

// implements the Validator interface
func (r *GradeRequest) Validate() error {
	if strings.TrimSpace(r.SubmissionID) == "" {
		return &ErrorResponse{
			Code:    "missing_submission_id",
			Message: "submissionId field is required",
		}
	}

	if strings.TrimSpace(r.LessonTitle) == "" {
		return &ErrorResponse{
			Code:    "missing_lesson_title",
			Message: "lessonTitle field is required",
		}
	}

	if r.LessonDifficulty == "" {
		r.LessonDifficulty = DefaultDifficulty
	}
	if !ValidDifficulties[r.LessonDifficulty] {
		return &ErrorResponse{
			Code:    "invalid_difficulty",
			Message: "Difficulty must be one of: Beginner, Easy, Medium, Hard, Expert",
		}
	}

	if r.LessonCategory == "" {
		r.LessonCategory = "General"
	}

	return nil
}

// shared lesson context attached to teacher requests
type TeacherContext struct {
	LessonID          int    `json:"lessonId,omitempty"`
	LessonTitle       string `json:"lessonTitle,omitempty"`
	LessonDescription string `json:"lessonDescription,omitempty"`
	AnalysisWindow    string `json:"analysisWindow,omitempty"`
	SessionID         string `json:"sessionId,omitempty"`
}

type ChatRequest struct {
	Message   string         `json:"message"`
	Context   TeacherContext `json:"context"`
	RequestID string         `json:"request_id,omitempty"`
}

func (r *ChatRequest) Validate() error {
	if strings.TrimSpace(r.Message) == "" {
		return &ErrorResponse{
			Code:    "missing_message",
			Message: "Message field is required",
		}
	}
	return nil
}

type LectureRequest struct {
	LessonID          int    `json:"lessonId,omitempty"`
	LessonTitle       string `json:"lessonTitle"`
	LessonDescription string `json:"lessonDescription,omitempty"`
	RequestID         string `json:"request_id,omitempty"`
}

func (r *LectureRequest) Validate() error {
	if strings.TrimSpace(r.LessonTitle) == "" {
		return &ErrorResponse{
			Code:    "missing_lesson_title",
			Message: "lessonTitle field is required",
		}
	}
	return nil
}

// CoachRequest carries a raw keystroke window for the coaching endpoint.
type CoachRequest struct {
	Keystrokes []keystroke.Event `json:"keystrokes"`
	Context    TeacherContext    `json:"context"`
	RequestID  string            `json:"request_id,omitempty"`
}

func (r *CoachRequest) Validate() error {
	if len(r.Keystrokes) == 0 {
		return &ErrorResponse{
			Code:    "missing_keystrokes",
			Message: "At least one keystroke event is required",
		}
	}
	for _, k := range r.Keystrokes {
		if k.Key == "" || k.Timestamp <= 0 {
			return &ErrorResponse{
				Code:    "invalid_keystrokes",
				Message: "Keystroke events require a key and a positive timestamp",
			}
		}
	}
	return nil
}

type QuestionGenRequest struct {
	Topic      string `json:"topic"`
	Difficulty string `json:"difficulty"`
	Category   string `json:"category"`
	Context    string `json:"context,omitempty"`
	Count      int    `json:"count,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
}

func (r *QuestionGenRequest) Validate() error {
	if strings.TrimSpace(r.Topic) == "" {
		return &ErrorResponse{
			Code:    "missing_topic",
			Message: "Topic field is required",
		}
	}

	if r.Difficulty == "" {
		r.Difficulty = DefaultDifficulty
	}
	if !ValidDifficulties[r.Difficulty] {
		return &ErrorResponse{
			Code:    "invalid_difficulty",
			Message: "Difficulty must be one of: Beginner, Easy, Medium, Hard, Expert",
		}
	}

	if r.Category == "" {
		r.Category = "General"
	}

	// clamp instead of reject: the UI always gets something to render
	if r.Count < MinQuestionCount {
		r.Count = MinQuestionCount
	}
	if r.Count > MaxQuestionCount {
		r.Count = MaxQuestionCount
	}

	return nil
}

// IngestRequest is a batch of keystroke events for a recording session.
type IngestRequest struct {
	Events []keystroke.Event `json:"events"`
}

func (r *IngestRequest) Validate() error {
	if len(r.Events) == 0 {
		return &ErrorResponse{
			Code:    "missing_events",
			Message: "At least one event is required",
		}
	}
	return nil
}
