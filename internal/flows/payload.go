package flows

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// ErrMalformedPayload reports that free-form model text carried no
// decodable structured payload.
var ErrMalformedPayload = errors.New("no structured payload in model output")

// ExtractJSON locates a JSON object or array embedded in free-form model
// text and decodes it into v. Markdown fences are stripped, and near-JSON
// (trailing commas, single quotes, unquoted keys) is repaired before
// decoding. Callers that tolerate a missing payload should check for
// ErrMalformedPayload, keep the zero value, and record a warning instead
// of failing the step.
func ExtractJSON(text string, v any) error {
	candidate := stripFences(text)

	start := strings.IndexAny(candidate, "{[")
	if start < 0 {
		return fmt.Errorf("%w: no opening bracket", ErrMalformedPayload)
	}
	var closer byte = '}'
	if candidate[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(candidate, closer)
	if end <= start {
		return fmt.Errorf("%w: no closing bracket", ErrMalformedPayload)
	}
	candidate = candidate[start : end+1]

	if err := json.Unmarshal([]byte(candidate), v); err == nil {
		return nil
	}

	repaired, err := jsonrepair.JSONRepair(candidate)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if err := json.Unmarshal([]byte(repaired), v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return nil
}

// stripFences removes markdown code fences so bracket scanning sees only
// payload text.
func stripFences(text string) string {
	if !strings.Contains(text, "```") {
		return text
	}
	var sb strings.Builder
	inFence := false
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}
	if sb.Len() > 0 {
		return sb.String()
	}
	return text
}
