package models

import "codetutor/ai/internal/keystroke"

// reply payload for the teacher chat endpoint
type ChatResponse struct {
	Response  string `json:"response"`
	RequestID string `json:"request_id"`
}

// CoachResponse carries one coaching tip plus the metrics it was derived
// from. Source records whether the tip came from the LLM or the local
// fallback.
type CoachResponse struct {
	Advice    string            `json:"advice"`
	Source    string            `json:"source"` // "llm" | "fallback"
	Metrics   keystroke.Metrics `json:"metrics"`
	RequestID string            `json:"request_id"`
}

// SessionStatus reports the state of one keystroke recording session.
type SessionStatus struct {
	SessionID string `json:"sessionId"`
	Tracking  bool   `json:"tracking"`
	Buffered  int    `json:"buffered"`
	Accepted  int    `json:"accepted,omitempty"`
}
