package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/kasumi/pkg/domain/apperr"
	"github.com/m-mizutani/kasumi/pkg/domain/model/conversation"
	"github.com/m-mizutani/kasumi/pkg/domain/types"
)

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handleError(w, r, goerr.Wrap(err, "invalid request body", goerr.T(apperr.TagInvalidArgument)))
		return
	}

	sessionID := types.SessionID(req.SessionID)
	if sessionID == "" {
		id, err := s.resolveCurrentSession(r)
		if err != nil {
			handleError(w, r, err)
			return
		}
		sessionID = id
	}

	result, err := s.uc.Chat(r.Context(), sessionID, req.Message)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, result)
}

// resolveCurrentSession returns the current session ID, starting a new
// session when the previous one was deleted
func (s *Server) resolveCurrentSession(r *http.Request) (types.SessionID, error) {
	current, err := s.uc.ConversationLog().CurrentSession(r.Context())
	if err == nil {
		return current.ID, nil
	}
	if !errors.Is(err, conversation.ErrNoCurrentSession) {
		return "", err
	}

	session, err := s.uc.ConversationLog().StartNewSession(r.Context())
	if err != nil {
		return "", err
	}
	return session.ID, nil
}

type feedbackRequest struct {
	UserMessage   string `json:"user_message"`
	AgentResponse string `json:"agent_response"`
	FeedbackText  string `json:"feedback_text"`
	Rating        int    `json:"rating"`
}

func (s *Server) handleSubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handleError(w, r, goerr.Wrap(err, "invalid request body", goerr.T(apperr.TagInvalidArgument)))
		return
	}

	entry, err := s.uc.SubmitFeedback(r.Context(), req.UserMessage, req.AgentResponse, req.FeedbackText, req.Rating)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusCreated, entry)
}

func (s *Server) handleListFeedback(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 0)

	entries, err := s.uc.FeedbackLog().Recent(r.Context(), limit)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]any{"feedbacks": entries})
}

func (s *Server) handleImprove(w http.ResponseWriter, r *http.Request) {
	result, err := s.uc.RunImprovementPass(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}

	status := http.StatusOK
	if result.Failed {
		status = http.StatusBadGateway
	}
	respondJSON(w, r, status, result)
}
