package keystroke

// key transition directions reported by the client editor
const (
	ActionKeyDown = "keydown"
	ActionKeyUp   = "keyup"
)

// Event is one physical key transition captured during a coding session.
// Timestamp is milliseconds (wall-clock or monotonic, the analyzer only
// uses differences). Immutable once created.
type Event struct {
	Timestamp int64  `json:"timestamp"`
	Key       string `json:"key"`
	Action    string `json:"action"`
	Code      string `json:"code"`
}

// pure modifier keys that can be excluded from recording
var modifierKeys = map[string]bool{
	"Shift":   true,
	"Alt":     true,
	"Control": true,
	"Meta":    true,
}

// IsPureModifier reports whether the event is a lone modifier key press.
func (e Event) IsPureModifier() bool {
	return modifierKeys[e.Key]
}

// IsTypingKey reports whether the event produced a printable character.
func (e Event) IsTypingKey() bool {
	return len([]rune(e.Key)) == 1
}

// IsBackspace reports whether the event was an error correction.
func (e Event) IsBackspace() bool {
	return e.Key == "Backspace"
}

// navigation and editing keys tracked separately from typing keys
var specialKeys = map[string]bool{
	"Tab":        true,
	"Enter":      true,
	"ArrowUp":    true,
	"ArrowDown":  true,
	"ArrowLeft":  true,
	"ArrowRight": true,
}

// IsSpecialKey reports whether the event was a navigation or editing key.
func (e Event) IsSpecialKey() bool {
	return specialKeys[e.Key]
}
