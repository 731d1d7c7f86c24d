package models

// contains all valid lesson difficulties (canonical casing used on the wire)
var ValidDifficulties = map[string]bool{
	"Beginner": true,
	"Easy":     true,
	"Medium":   true,
	"Hard":     true,
	"Expert":   true,
}

// DefaultDifficulty is applied when a request omits the difficulty field
const DefaultDifficulty = "Beginner"

// bounds for question generation batch size
const (
	MinQuestionCount = 1
	MaxQuestionCount = 5
)

func ValidDifficultiesList() []string {
	return []string{"Beginner", "Easy", "Medium", "Hard", "Expert"}
}
