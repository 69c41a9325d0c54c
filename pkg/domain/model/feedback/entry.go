package feedback

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/kasumi/pkg/domain/apperr"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Entry is one user-submitted rating tied to a question/answer pair.
// Entries are append-only; only the Processed flag is ever mutated, by the
// prompt improver after the entry has been consumed by a rewrite pass.
type Entry struct {
	ID            int       `json:"id" firestore:"id"`
	Timestamp     time.Time `json:"timestamp" firestore:"timestamp"`
	UserMessage   string    `json:"user_message" firestore:"user_message"`
	AgentResponse string    `json:"agent_response" firestore:"agent_response"`
	FeedbackText  string    `json:"feedback_text" firestore:"feedback_text"`
	Rating        int       `json:"rating" firestore:"rating"`
	Processed     bool      `json:"processed" firestore:"processed"`

	// PromptVersion is the prompt version that was current when the
	// feedback was collected. Stored by value for correlation display only;
	// it never affects processing eligibility.
	PromptVersion int `json:"prompt_version" firestore:"prompt_version"`
}

// Statistics summarizes the feedback log
type Statistics struct {
	Total         int     `json:"total"`
	Processed     int     `json:"processed"`
	Pending       int     `json:"pending"`
	AverageRating float64 `json:"average_rating"`
}

// ValidateRating checks the caller-supplied rating range
func ValidateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return goerr.New("rating must be between 1 and 5",
			goerr.V("rating", rating),
			goerr.T(apperr.TagInvalidArgument))
	}
	return nil
}
