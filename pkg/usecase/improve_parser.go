package usecase

import "strings"

const (
	improvementsMarker = "IMPROVEMENTS APPLIED:"
	newPromptMarker    = "NEW PROMPT:"

	// fallbackImprovementNote is recorded when the model ignored the
	// response format and the whole response is taken as the new prompt
	fallbackImprovementNote = "automatic feedback analysis applied"
)

// parseAnalysisResponse extracts the improvement list and rewritten prompt
// from a model response. When either marker is missing, or the markers are
// out of order, the whole response becomes the new prompt with a generic
// improvement note, so a model that ignored the format instructions is
// still usable.
func parseAnalysisResponse(responseText string) (improvements []string, newPrompt string) {
	if !strings.Contains(responseText, improvementsMarker) || !strings.Contains(responseText, newPromptMarker) {
		return []string{fallbackImprovementNote}, strings.TrimSpace(responseText)
	}

	parts := strings.SplitN(responseText, newPromptMarker, 2)

	head := strings.SplitN(parts[0], improvementsMarker, 2)
	if len(head) < 2 {
		// improvements marker sits after the prompt marker
		return []string{fallbackImprovementNote}, strings.TrimSpace(responseText)
	}
	newPrompt = strings.TrimSpace(parts[1])

	for _, line := range strings.Split(head[1], "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "-") || strings.HasPrefix(line, "•") {
			item := strings.TrimSpace(strings.TrimLeft(line, "-•"))
			if item != "" {
				improvements = append(improvements, item)
			}
		}
	}

	if len(improvements) == 0 {
		improvements = []string{fallbackImprovementNote}
	}

	return improvements, newPrompt
}
