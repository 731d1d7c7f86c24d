// Package heuristic produces network-free submission evaluations. It is the
// fallback path behind the LLM grader: whatever happens upstream, callers
// always receive a complete, schema-valid result.
package heuristic

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"codetutor/ai/internal/keystroke"
	"codetutor/ai/internal/lessons"
	"codetutor/ai/internal/models"
	"codetutor/ai/internal/utils"
)

// verbal hesitation markers counted against the explanation score
var fillerWords = []string{"um", "uh", "like", "you know", "basically", "actually"}

// confident-language markers counted in favor of it
var confidenceWords = []string{"definitely", "clearly", "obviously", "certainly", "exactly"}

const (
	baseWithCode    = 75
	baseWithoutCode = 45
	transcriptBonus = 15
	minScore        = 30
	maxScore        = 95
	transcriptLimit = 200
)

// Input is everything the generator may consider. Code, Transcript and
// Metrics are each optional; Lesson supplies the reference solution when
// available.
type Input struct {
	Code       string
	Transcript string
	Metrics    *keystroke.Metrics
	Lesson     *lessons.Lesson
}

// Generator is a pure function of its inputs plus the injected random
// source: a fixed seed yields identical results for identical inputs.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a generator around an explicit random source.
func NewGenerator(rng *rand.Rand) *Generator {
	return &Generator{rng: rng}
}

// NewSeeded creates a deterministic generator. Production callers seed from
// the clock; tests pin the seed to assert exact values.
func NewSeeded(seed int64) *Generator {
	return NewGenerator(rand.New(rand.NewSource(seed)))
}

// NewTimeSeeded creates a generator with time-based randomness.
func NewTimeSeeded() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// Evaluate scores a submission locally. The returned result has no
// ID/SubmissionID/CreatedAt; the aggregator owns those.
func (g *Generator) Evaluate(in Input) *models.EvaluationResult {
	hasCode := strings.TrimSpace(in.Code) != ""
	hasTranscript := strings.TrimSpace(in.Transcript) != ""

	fillers := countOccurrences(in.Transcript, fillerWords)
	confident := countOccurrences(in.Transcript, confidenceWords)

	score := baseWithoutCode
	if hasCode {
		score = baseWithCode
	}
	if hasTranscript {
		score += transcriptBonus
		score -= min(3*fillers, 20)
		score += min(2*confident, 10)
	}
	// small jitter for naturalness, bounded to a 10-point band
	score += g.rng.Intn(11) - 5
	score = clamp(score, minScore, maxScore)

	isCorrect := g.decideCorrect(in, hasCode, score)

	result := &models.EvaluationResult{
		Score:           score,
		ConfidenceScore: score,
		IsCorrect:       isCorrect,
		Feedback:        g.feedback(hasCode, hasTranscript, isCorrect, score, fillers, confident),
		CodeAnalysis:    g.codeAnalysis(hasCode, isCorrect),
	}

	if in.Metrics != nil && in.Metrics.TypingKeys > 0 && in.Metrics.ErrorRate > 0.3 {
		result.Feedback += " Your typing showed a high correction rate; slowing down slightly may help accuracy."
	}

	if hasTranscript {
		result.AudioAnalysis = &models.AudioAnalysis{
			Clarity:       max(60, 90-2*fillers),
			Explanation:   70 + g.rng.Intn(21),
			Confidence:    clamp(85-3*fillers+5*confident, 50, 100),
			Transcription: utils.Truncate(in.Transcript, transcriptLimit),
		}
	}

	return result
}

// decideCorrect applies the canonical correctness policy: solution
// similarity when the lesson supplies a reference solution, confidence
// threshold otherwise.
func (g *Generator) decideCorrect(in Input, hasCode bool, score int) bool {
	if !hasCode {
		return false
	}
	if in.Lesson != nil && in.Lesson.Solution != "" {
		return solutionMatches(in.Code, in.Lesson)
	}
	return score > 60
}

// solutionMatches checks the submitted code against the lesson's reference
// solution: a keyword rule for the introductory print lesson, token overlap
// of at least 60% everywhere else.
func solutionMatches(code string, lesson *lessons.Lesson) bool {
	normalized := normalizeCode(code)

	if lesson.ID == 1 {
		return strings.Contains(normalized, "print") &&
			(strings.Contains(normalized, "hello, world") || strings.Contains(normalized, "hello world"))
	}

	solutionTokens := strings.Fields(normalizeCode(lesson.Solution))
	if len(solutionTokens) == 0 {
		return false
	}
	codeTokens := make(map[string]bool)
	for _, tok := range strings.Fields(normalized) {
		codeTokens[tok] = true
	}
	matching := 0
	for _, tok := range solutionTokens {
		if codeTokens[tok] {
			matching++
		}
	}
	return float64(matching) >= float64(len(solutionTokens))*0.6
}

func normalizeCode(code string) string {
	return strings.Join(strings.Fields(strings.ToLower(code)), " ")
}

func (g *Generator) codeAnalysis(hasCode, isCorrect bool) models.CodeAnalysis {
	if !hasCode {
		return models.CodeAnalysis{Quality: 50, Efficiency: 45, Readability: 40}
	}
	analysis := models.CodeAnalysis{
		Quality:     70 + g.rng.Intn(21),
		Readability: 70 + g.rng.Intn(16),
	}
	if isCorrect {
		analysis.Efficiency = 75 + g.rng.Intn(16)
	} else {
		analysis.Efficiency = 65 + g.rng.Intn(21)
	}
	return analysis
}

// feedback composes a non-empty natural-language summary reflecting which
// inputs were present.
func (g *Generator) feedback(hasCode, hasTranscript, isCorrect bool, score, fillers, confident int) string {
	var b strings.Builder

	switch {
	case isCorrect && hasTranscript:
		fmt.Fprintf(&b, "Good job! Your code is correct and you explained your approach. Confidence score: %d%%. ", score)
	case isCorrect:
		fmt.Fprintf(&b, "Your code solution is correct (%d%% confidence), but adding a verbal explanation would significantly improve your interview performance. ", score)
	case hasCode && hasTranscript:
		fmt.Fprintf(&b, "You provided both code and an explanation, but the solution needs work. Confidence score: %d%%. Review the problem requirements. ", score)
	case hasCode:
		fmt.Fprintf(&b, "Code attempt detected but the solution is incorrect. Confidence score: %d%%. Add a verbal explanation and review the requirements. ", score)
	case hasTranscript:
		b.WriteString("Good verbal communication detected, but no code solution was provided. Implement your ideas in code for technical interviews. ")
	default:
		b.WriteString("No code or verbal explanation detected. Provide both a working solution and a clear explanation of your approach. ")
	}

	if fillers > 3 {
		fmt.Fprintf(&b, "Try to reduce filler words (detected %d) to sound more confident. ", fillers)
	}
	if confident > 0 {
		b.WriteString("Your use of confident language shows good technical understanding. ")
	}

	return strings.TrimSpace(b.String())
}

func countOccurrences(text string, vocabulary []string) int {
	if text == "" {
		return 0
	}
	lower := strings.ToLower(text)
	total := 0
	for _, word := range vocabulary {
		total += strings.Count(lower, word)
	}
	return total
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
