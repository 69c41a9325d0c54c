package prompt

import "time"

// Version is one immutable entry of the system-prompt history. Versions are
// dense positive integers; the highest number is the current prompt.
type Version struct {
	Version       int       `json:"version" firestore:"version"`
	Text          string    `json:"text" firestore:"text"`
	CreatedAt     time.Time `json:"created_at" firestore:"created_at"`
	FeedbackCount int       `json:"feedback_count" firestore:"feedback_count"`
	Improvements  []string  `json:"improvements" firestore:"improvements"`
}

// Statistics summarizes the prompt history for display
type Statistics struct {
	TotalVersions  int       `json:"total_versions"`
	CurrentVersion int       `json:"current_version"`
	TotalFeedbacks int       `json:"total_feedbacks"`
	CreatedAt      time.Time `json:"created_at"`
	LastUpdate     time.Time `json:"last_update"`
}

// DefaultText is the built-in prompt used to synthesize version 1 when no
// history exists yet.
const DefaultText = `You are an intelligent and helpful virtual assistant.

Your characteristics:
- Answer clearly, concisely and politely
- Use the available tools when appropriate
- Be proactive in helping the user
- Keep a professional but friendly tone

Available tools:
1. Postal code lookup (Brazil) - use when the user mentions a CEP or address
2. Pokemon reference - use when the user asks about Pokemon
3. Brazilian geography (IBGE) - use for states, municipalities and regions
4. Weather - use for current conditions and forecasts anywhere
5. TV shows - use when the user asks about TV series

Always provide complete and useful answers.`

// DefaultImprovementNote is recorded as the single improvement of version 1
const DefaultImprovementNote = "default initial prompt"
