package heuristic

import (
	"fmt"

	"codetutor/ai/internal/keystroke"
)

// CoachTip produces a short local coaching tip from keystroke metrics. Used
// when the coaching endpoint cannot reach the LLM: the learner still gets a
// non-empty, relevant sentence.
func CoachTip(m keystroke.Metrics) string {
	switch {
	case m.TotalKeys == 0:
		return "Start typing to get personalized coaching on your pacing and accuracy."
	case m.TypingKeys > 0 && m.ErrorRate > 0.25:
		return fmt.Sprintf("You corrected roughly %d%% of your keystrokes; slow down a touch and read each line before moving on.", int(m.ErrorRate*100))
	case m.LongPauses >= 3:
		return fmt.Sprintf("You paused %d times for over two seconds; try sketching your approach in a comment before coding to keep momentum.", m.LongPauses)
	case m.WPM > 0 && m.WPM < 20:
		return fmt.Sprintf("Your pace of about %d WPM leaves room to build typing fluency; short daily drills on common syntax will speed you up.", m.WPM)
	default:
		return fmt.Sprintf("Steady rhythm at about %d WPM with %d corrections; keep narrating your thinking while you type to build interview confidence.", m.WPM, m.Backspaces)
	}
}
