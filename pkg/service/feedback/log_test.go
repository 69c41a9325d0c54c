package feedback_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/kasumi/pkg/domain/interfaces"
	"github.com/m-mizutani/kasumi/pkg/domain/model/feedback"
	"github.com/m-mizutani/kasumi/pkg/repository/database/memory"
	feedbacksvc "github.com/m-mizutani/kasumi/pkg/service/feedback"
)

// flakyFeedbackRepo rejects SaveEntries on demand to exercise persist
// failure paths
type flakyFeedbackRepo struct {
	interfaces.FeedbackRepository
	failSave bool
}

func (r *flakyFeedbackRepo) SaveEntries(ctx context.Context, entries []*feedback.Entry) error {
	if r.failSave {
		return goerr.New("save rejected")
	}
	return r.FeedbackRepository.SaveEntries(ctx, entries)
}

func newLog(t *testing.T) *feedbacksvc.Log {
	t.Helper()
	log := feedbacksvc.New(memory.New())
	gt.NoError(t, log.Initialize(context.Background())).Required()
	return log
}

func TestLog_AddAssignsSequentialIDs(t *testing.T) {
	ctx := context.Background()
	log := newLog(t)

	e1, err := log.Add(ctx, "what is a CEP?", "A Brazilian postal code.", "good answer", 5, 1)
	gt.NoError(t, err).Required()
	gt.Equal(t, e1.ID, 1)
	gt.False(t, e1.Processed)
	gt.Equal(t, e1.PromptVersion, 1)

	e2, err := log.Add(ctx, "weather in Recife?", "Sunny, 30C.", "too short", 2, 1)
	gt.NoError(t, err).Required()
	gt.Equal(t, e2.ID, 2)
}

func TestLog_AddRejectsOutOfRangeRating(t *testing.T) {
	ctx := context.Background()
	log := newLog(t)

	for _, rating := range []int{0, -1, 6, 100} {
		_, err := log.Add(ctx, "q", "a", "f", rating, 1)
		gt.Error(t, err)
	}

	// Boundary values are accepted
	_, err := log.Add(ctx, "q", "a", "f", 1, 1)
	gt.NoError(t, err)
	_, err = log.Add(ctx, "q", "a", "f", 5, 1)
	gt.NoError(t, err)
}

func TestLog_RecentReturnsInsertionOrderTail(t *testing.T) {
	ctx := context.Background()
	log := newLog(t)

	for i := 0; i < 5; i++ {
		_, err := log.Add(ctx, "q", "a", "f", 3, 1)
		gt.NoError(t, err)
	}

	recent, err := log.Recent(ctx, 3)
	gt.NoError(t, err).Required()
	gt.A(t, recent).Length(3)
	gt.Equal(t, recent[0].ID, 3)
	gt.Equal(t, recent[2].ID, 5)

	all, err := log.Recent(ctx, 0)
	gt.NoError(t, err).Required()
	gt.A(t, all).Length(5)

	over, err := log.Recent(ctx, 100)
	gt.NoError(t, err).Required()
	gt.A(t, over).Length(5)
}

func TestLog_MarkProcessed(t *testing.T) {
	ctx := context.Background()
	log := newLog(t)

	for i := 0; i < 3; i++ {
		_, err := log.Add(ctx, "q", "a", "f", 4, 1)
		gt.NoError(t, err)
	}

	gt.NoError(t, log.MarkProcessed(ctx, []int{1, 3}))

	pending, err := log.Pending(ctx)
	gt.NoError(t, err).Required()
	gt.A(t, pending).Length(1)
	gt.Equal(t, pending[0].ID, 2)

	// Unknown IDs are an error
	gt.Error(t, log.MarkProcessed(ctx, []int{99}))
}

func TestLog_MarkProcessedRejectedIDTouchesNothing(t *testing.T) {
	ctx := context.Background()
	log := newLog(t)

	for i := 0; i < 2; i++ {
		_, err := log.Add(ctx, "q", "a", "f", 3, 1)
		gt.NoError(t, err)
	}

	// One valid and one unknown ID: the valid one must not be flipped
	gt.Error(t, log.MarkProcessed(ctx, []int{1, 99}))

	pending, err := log.Pending(ctx)
	gt.NoError(t, err).Required()
	gt.A(t, pending).Length(2)
}

func TestLog_MarkProcessedPersistFailureTouchesNothing(t *testing.T) {
	ctx := context.Background()
	repo := &flakyFeedbackRepo{FeedbackRepository: memory.New()}
	log := feedbacksvc.New(repo)
	gt.NoError(t, log.Initialize(ctx)).Required()

	for i := 0; i < 2; i++ {
		_, err := log.Add(ctx, "q", "a", "f", 3, 1)
		gt.NoError(t, err)
	}

	repo.failSave = true
	gt.Error(t, log.MarkProcessed(ctx, []int{1, 2}))

	pending, err := log.Pending(ctx)
	gt.NoError(t, err).Required()
	gt.A(t, pending).Length(2)

	// After the store recovers the same call succeeds
	repo.failSave = false
	gt.NoError(t, log.MarkProcessed(ctx, []int{1, 2}))

	pending, err = log.Pending(ctx)
	gt.NoError(t, err).Required()
	gt.A(t, pending).Length(0)
}

func TestLog_Statistics(t *testing.T) {
	ctx := context.Background()
	log := newLog(t)

	stats, err := log.Statistics(ctx)
	gt.NoError(t, err).Required()
	gt.Equal(t, stats.Total, 0)
	gt.Equal(t, stats.AverageRating, 0.0)

	ratings := []int{5, 4, 2}
	for _, r := range ratings {
		_, err := log.Add(ctx, "q", "a", "f", r, 1)
		gt.NoError(t, err)
	}
	gt.NoError(t, log.MarkProcessed(ctx, []int{1}))

	stats, err = log.Statistics(ctx)
	gt.NoError(t, err).Required()
	gt.Equal(t, stats.Total, 3)
	gt.Equal(t, stats.Processed, 1)
	gt.Equal(t, stats.Pending, 2)
	gt.Equal(t, stats.AverageRating, 3.67)
}

func TestLog_ReloadSeesPersistedEntries(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()

	log := feedbacksvc.New(repo)
	gt.NoError(t, log.Initialize(ctx)).Required()
	_, err := log.Add(ctx, "q", "a", "f", 4, 1)
	gt.NoError(t, err)

	reloaded := feedbacksvc.New(repo)
	gt.NoError(t, reloaded.Initialize(ctx)).Required()

	next, err := reloaded.Add(ctx, "q2", "a2", "f2", 5, 1)
	gt.NoError(t, err).Required()
	gt.Equal(t, next.ID, 2)
}
