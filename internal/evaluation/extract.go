package evaluation

import (
	"encoding/json"
	"errors"
	"strings"

	"codetutor/ai/internal/utils"
)

// ExtractJSON pulls a JSON object out of raw model output. It strips an
// optional Markdown code fence, tries a direct parse, then falls back to the
// largest {...} slice. Returns an error only when no object can be parsed.
func ExtractJSON(text string) (map[string]interface{}, error) {
	text = utils.StripFences(text)

	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(text), &parsed); err == nil {
		return parsed, nil
	}

	first := strings.IndexByte(text, '{')
	last := strings.LastIndexByte(text, '}')
	if first != -1 && last > first {
		slice := text[first : last+1]
		if err := json.Unmarshal([]byte(slice), &parsed); err == nil {
			return parsed, nil
		}
	}

	return nil, errors.New("could not parse JSON from model output")
}
