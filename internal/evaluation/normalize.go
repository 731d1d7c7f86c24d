package evaluation

import (
	"errors"
	"fmt"
	"strings"

	"codetutor/ai/internal/models"
	"codetutor/ai/internal/utils"
)

// normalizeResult validates a parsed LLM object against the evaluation
// schema and clamps every numeric field into [0,100]. Required fields with a
// missing or wrong-typed value are a hard error, which sends the caller to
// the heuristic path; optional fields get defaults.
func normalizeResult(raw map[string]interface{}, hasTranscript bool) (*models.EvaluationResult, error) {
	confidence, err := requiredPct(raw, "confidenceScore")
	if err != nil {
		return nil, err
	}

	isCorrect, ok := raw["isCorrect"].(bool)
	if !ok {
		return nil, errors.New("isCorrect missing or not a boolean")
	}

	feedback, ok := raw["feedback"].(string)
	if !ok || strings.TrimSpace(feedback) == "" {
		return nil, errors.New("feedback missing or empty")
	}

	codeRaw, ok := raw["codeAnalysis"].(map[string]interface{})
	if !ok {
		return nil, errors.New("codeAnalysis missing or not an object")
	}
	quality, err := requiredPct(codeRaw, "quality")
	if err != nil {
		return nil, err
	}
	efficiency, err := requiredPct(codeRaw, "efficiency")
	if err != nil {
		return nil, err
	}
	readability, err := requiredPct(codeRaw, "readability")
	if err != nil {
		return nil, err
	}

	result := &models.EvaluationResult{
		Score:           utils.CoercePct(raw["score"], confidence),
		ConfidenceScore: confidence,
		IsCorrect:       isCorrect,
		Feedback:        feedback,
		CodeAnalysis: models.CodeAnalysis{
			Quality:     quality,
			Efficiency:  efficiency,
			Readability: readability,
		},
	}

	// audioAnalysis only makes sense when a transcript was submitted; a
	// hallucinated one is dropped
	if audioRaw, ok := raw["audioAnalysis"].(map[string]interface{}); ok && hasTranscript {
		transcription, _ := audioRaw["transcription"].(string)
		result.AudioAnalysis = &models.AudioAnalysis{
			Clarity:       utils.CoercePct(audioRaw["clarity"], 0),
			Explanation:   utils.CoercePct(audioRaw["explanation"], 0),
			Confidence:    utils.CoercePct(audioRaw["confidence"], 0),
			Transcription: transcription,
		}
	}

	return result, nil
}

func requiredPct(raw map[string]interface{}, key string) (int, error) {
	v, exists := raw[key]
	if !exists {
		return 0, fmt.Errorf("%s missing", key)
	}
	if _, ok := v.(bool); ok {
		return 0, fmt.Errorf("%s is not a number", key)
	}
	n := utils.CoercePct(v, -1)
	if n < 0 {
		return 0, fmt.Errorf("%s is not a number", key)
	}
	return n, nil
}
