package feedback

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/kasumi/pkg/domain/apperr"
	"github.com/m-mizutani/kasumi/pkg/domain/interfaces"
	"github.com/m-mizutani/kasumi/pkg/domain/model/feedback"
)

// Log owns the append-only feedback entry list. IDs are dense positive
// integers in submission order; the only mutation after Add is flipping the
// Processed flag once the improver has consumed an entry.
type Log struct {
	repo    interfaces.FeedbackRepository
	mu      sync.RWMutex
	entries []*feedback.Entry
	loaded  bool
}

// New creates a new feedback log
func New(repo interfaces.FeedbackRepository) *Log {
	return &Log{
		repo: repo,
	}
}

// Initialize loads the persisted entry list
func (l *Log) Initialize(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.repo.LoadEntries(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to load feedback entries")
	}

	l.entries = entries
	l.loaded = true
	return nil
}

// Add appends a new entry with id len+1 and processed=false
func (l *Log) Add(ctx context.Context, userMessage, agentResponse, feedbackText string, rating, promptVersion int) (*feedback.Entry, error) {
	if err := feedback.ValidateRating(rating); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entry := &feedback.Entry{
		ID:            len(l.entries) + 1,
		Timestamp:     time.Now(),
		UserMessage:   userMessage,
		AgentResponse: agentResponse,
		FeedbackText:  feedbackText,
		Rating:        rating,
		PromptVersion: promptVersion,
	}

	updated := append(append([]*feedback.Entry{}, l.entries...), entry)
	if err := l.repo.SaveEntries(ctx, updated); err != nil {
		return nil, goerr.Wrap(err, "failed to persist feedback entry",
			goerr.V("id", entry.ID))
	}

	l.entries = updated
	cp := *entry
	return &cp, nil
}

// Recent returns the last limit entries in insertion order. limit <= 0 or
// larger than the log returns everything.
func (l *Log) Recent(ctx context.Context, limit int) ([]*feedback.Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	start := 0
	if limit > 0 && limit < len(l.entries) {
		start = len(l.entries) - limit
	}

	out := make([]*feedback.Entry, 0, len(l.entries)-start)
	for _, e := range l.entries[start:] {
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

// Pending returns all unprocessed entries in insertion order
func (l *Log) Pending(ctx context.Context) ([]*feedback.Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []*feedback.Entry
	for _, e := range l.entries {
		if !e.Processed {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

// MarkProcessed flips the processed flag on the given entry IDs. The flags
// are staged on copies so a rejected ID or a persist failure leaves the
// in-memory list matching durable state.
func (l *Log) MarkProcessed(ctx context.Context, ids []int) error {
	if len(ids) == 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	wanted := make(map[int]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	changed := false
	updated := make([]*feedback.Entry, len(l.entries))
	for i, e := range l.entries {
		cp := *e
		if wanted[cp.ID] && !cp.Processed {
			cp.Processed = true
			changed = true
		}
		delete(wanted, cp.ID)
		updated[i] = &cp
	}

	if len(wanted) > 0 {
		unknown := make([]int, 0, len(wanted))
		for id := range wanted {
			unknown = append(unknown, id)
		}
		return goerr.New("unknown feedback entry ids",
			goerr.V("ids", unknown),
			goerr.T(apperr.TagNotFound))
	}

	if !changed {
		return nil
	}

	if err := l.repo.SaveEntries(ctx, updated); err != nil {
		return goerr.Wrap(err, "failed to persist processed flags",
			goerr.V("ids", ids))
	}

	l.entries = updated
	return nil
}

// Statistics summarizes the log. AverageRating is rounded to two decimals
// and zero for an empty log.
func (l *Log) Statistics(ctx context.Context) (*feedback.Statistics, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	stats := &feedback.Statistics{
		Total: len(l.entries),
	}

	if len(l.entries) == 0 {
		return stats, nil
	}

	sum := 0
	for _, e := range l.entries {
		sum += e.Rating
		if e.Processed {
			stats.Processed++
		}
	}
	stats.Pending = stats.Total - stats.Processed
	stats.AverageRating = math.Round(float64(sum)/float64(stats.Total)*100) / 100

	return stats, nil
}
