package prompt

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/kasumi/pkg/domain/apperr"
	"github.com/m-mizutani/kasumi/pkg/domain/interfaces"
	"github.com/m-mizutani/kasumi/pkg/domain/model/prompt"
)

// Store owns the prompt version history. It keeps the invariants (dense
// numbering from 1, highest version is current, entries immutable except
// feedback_count) and persists the whole history on every mutation.
type Store struct {
	repo     interfaces.PromptRepository
	mu       sync.RWMutex
	versions []*prompt.Version
	loaded   bool
}

// New creates a new prompt store
func New(repo interfaces.PromptRepository) *Store {
	return &Store{
		repo: repo,
	}
}

// Initialize loads the persisted history, synthesizing version 1 from the
// built-in default prompt when the store is empty.
func (s *Store) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	versions, err := s.repo.LoadVersions(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to load prompt history")
	}

	if len(versions) == 0 {
		initial := &prompt.Version{
			Version:      1,
			Text:         prompt.DefaultText,
			CreatedAt:    time.Now(),
			Improvements: []string{prompt.DefaultImprovementNote},
		}
		if err := s.repo.SaveVersions(ctx, []*prompt.Version{initial}); err != nil {
			return goerr.Wrap(err, "failed to persist initial prompt version")
		}
		versions = []*prompt.Version{initial}
	}

	s.versions = versions
	s.loaded = true
	return nil
}

// GetCurrent returns the highest-numbered version
func (s *Store) GetCurrent(ctx context.Context) (*prompt.Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded || len(s.versions) == 0 {
		return nil, prompt.ErrNotInitialized
	}

	v := *s.versions[len(s.versions)-1]
	return &v, nil
}

// GetVersion returns a specific version by number
func (s *Store) GetVersion(ctx context.Context, number int) (*prompt.Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded {
		return nil, prompt.ErrNotInitialized
	}

	for _, v := range s.versions {
		if v.Version == number {
			cp := *v
			return &cp, nil
		}
	}

	return nil, goerr.Wrap(prompt.ErrVersionNotFound, "prompt version not found",
		goerr.V("version", number),
		goerr.T(apperr.TagNotFound))
}

// Append records a new prompt version as len(history)+1 and makes it current
func (s *Store) Append(ctx context.Context, text string, improvements []string) (*prompt.Version, error) {
	if text == "" {
		return nil, goerr.New("prompt text is empty", goerr.T(apperr.TagInvalidArgument))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return nil, prompt.ErrNotInitialized
	}

	next := &prompt.Version{
		Version:      len(s.versions) + 1,
		Text:         text,
		CreatedAt:    time.Now(),
		Improvements: improvements,
	}

	updated := append(append([]*prompt.Version{}, s.versions...), next)
	if err := s.repo.SaveVersions(ctx, updated); err != nil {
		return nil, goerr.Wrap(err, "failed to persist prompt version",
			goerr.V("version", next.Version))
	}

	s.versions = updated
	cp := *next
	return &cp, nil
}

// IncrementFeedbackCount bumps the feedback counter of the current version
func (s *Store) IncrementFeedbackCount(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded || len(s.versions) == 0 {
		return prompt.ErrNotInitialized
	}

	current := s.versions[len(s.versions)-1]
	current.FeedbackCount++

	if err := s.repo.SaveVersions(ctx, s.versions); err != nil {
		current.FeedbackCount--
		return goerr.Wrap(err, "failed to persist feedback count",
			goerr.V("version", current.Version))
	}

	return nil
}

// History returns all versions ordered by version number ascending
func (s *Store) History(ctx context.Context) ([]*prompt.Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded {
		return nil, prompt.ErrNotInitialized
	}

	out := make([]*prompt.Version, len(s.versions))
	for i, v := range s.versions {
		cp := *v
		out[i] = &cp
	}
	return out, nil
}

// Statistics summarizes the history for display
func (s *Store) Statistics(ctx context.Context) (*prompt.Statistics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded || len(s.versions) == 0 {
		return nil, prompt.ErrNotInitialized
	}

	total := 0
	for _, v := range s.versions {
		total += v.FeedbackCount
	}

	first := s.versions[0]
	last := s.versions[len(s.versions)-1]

	return &prompt.Statistics{
		TotalVersions:  len(s.versions),
		CurrentVersion: last.Version,
		TotalFeedbacks: total,
		CreatedAt:      first.CreatedAt,
		LastUpdate:     last.CreatedAt,
	}, nil
}
