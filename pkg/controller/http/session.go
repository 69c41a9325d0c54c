package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/kasumi/pkg/domain/model/conversation"
	"github.com/m-mizutani/kasumi/pkg/domain/types"
)

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.uc.ConversationLog().AllSessions(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	if sessions == nil {
		sessions = []*conversation.Session{}
	}

	respondJSON(w, r, http.StatusOK, map[string]any{"sessions": sessions})
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.uc.ConversationLog().StartNewSession(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusCreated, session)
}

func (s *Server) handleCurrentSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.uc.ConversationLog().CurrentSession(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, session)
}

func (s *Server) handleClearCurrentSession(w http.ResponseWriter, r *http.Request) {
	if err := s.uc.ConversationLog().ClearCurrent(r.Context()); err != nil {
		handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := types.SessionID(chi.URLParam(r, "id"))

	session, err := s.uc.ConversationLog().GetSession(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := types.SessionID(chi.URLParam(r, "id"))

	if err := s.uc.DeleteSession(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearAllHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.uc.ClearAllHistory(r.Context()); err != nil {
		handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	promptStats, err := s.uc.PromptStore().Statistics(ctx)
	if err != nil {
		handleError(w, r, err)
		return
	}

	feedbackStats, err := s.uc.FeedbackLog().Statistics(ctx)
	if err != nil {
		handleError(w, r, err)
		return
	}

	conversationStats, err := s.uc.ConversationLog().Statistics(ctx)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]any{
		"prompt":       promptStats,
		"feedback":     feedbackStats,
		"conversation": conversationStats,
	})
}
