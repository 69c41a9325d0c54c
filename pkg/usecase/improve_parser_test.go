package usecase

import (
	"testing"

	"github.com/m-mizutani/gt"
)

func TestParseAnalysisResponse_WellFormed(t *testing.T) {
	response := `Some preamble the model added.

IMPROVEMENTS APPLIED:
- answer in the user's language
• include units in weather answers
bare lines without a bullet are ignored

NEW PROMPT:
You are a careful assistant.
Answer with units.`

	improvements, newPrompt := parseAnalysisResponse(response)
	gt.A(t, improvements).Length(2)
	gt.Equal(t, improvements[0], "answer in the user's language")
	gt.Equal(t, improvements[1], "include units in weather answers")
	gt.Equal(t, newPrompt, "You are a careful assistant.\nAnswer with units.")
}

func TestParseAnalysisResponse_MissingMarkerFallsBack(t *testing.T) {
	for _, response := range []string{
		"just a rewritten prompt with no structure",
		"IMPROVEMENTS APPLIED:\n- only one marker present",
		"NEW PROMPT:\nonly the other marker",
	} {
		improvements, newPrompt := parseAnalysisResponse(response)
		gt.A(t, improvements).Length(1)
		gt.Equal(t, improvements[0], fallbackImprovementNote)
		gt.Equal(t, newPrompt, response)
	}
}

func TestParseAnalysisResponse_OutOfOrderMarkersFallBack(t *testing.T) {
	response := `NEW PROMPT:
Be brief.
IMPROVEMENTS APPLIED:
- x`

	improvements, newPrompt := parseAnalysisResponse(response)
	gt.A(t, improvements).Length(1)
	gt.Equal(t, improvements[0], fallbackImprovementNote)
	gt.Equal(t, newPrompt, response)
}

func TestParseAnalysisResponse_EmptyBulletSection(t *testing.T) {
	response := `IMPROVEMENTS APPLIED:
nothing listed as a bullet

NEW PROMPT:
rewritten`

	improvements, newPrompt := parseAnalysisResponse(response)
	gt.A(t, improvements).Length(1)
	gt.Equal(t, improvements[0], fallbackImprovementNote)
	gt.Equal(t, newPrompt, "rewritten")
}
