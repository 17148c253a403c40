// Package analysis holds the prompt and response contract shared by every
// incident analyzer provider.
package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kirillkom/medguard/internal/core/domain"
)

const maxDescriptionRunes = 4000

// Prompt builds the single-turn instruction sent to the model.
func Prompt(description string) string {
	snippet := []rune(description)
	if len(snippet) > maxDescriptionRunes {
		snippet = snippet[:maxDescriptionRunes]
	}
	return fmt.Sprintf(`You are a clinical safety expert. Analyze this incident: "%s"
Return strict JSON object with keys:
riskLevel (one of LOW, MEDIUM, HIGH, CRITICAL), summary (string, one sentence), recommendations (array of exactly 3 short strings).
No markdown, no extra keys.`, string(snippet))
}

// SystemInstruction is used by chat-style providers that separate roles.
const SystemInstruction = "You are a clinical safety expert who classifies workplace incidents in healthcare settings. Reply with JSON only."

// Parse extracts and validates an IncidentAnalysis from raw model output.
func Parse(raw string) (domain.IncidentAnalysis, error) {
	payload := extractJSONObject(strings.TrimSpace(raw))
	if payload == "" {
		return domain.IncidentAnalysis{}, fmt.Errorf("parse analysis: empty response")
	}

	var result domain.IncidentAnalysis
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return domain.IncidentAnalysis{}, fmt.Errorf("parse analysis json: %w", err)
	}
	if err := result.Validate(); err != nil {
		return domain.IncidentAnalysis{}, fmt.Errorf("parse analysis: %w", err)
	}
	return result, nil
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
