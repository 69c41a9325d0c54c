package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/kasumi/pkg/domain/apperr"
)

func (s *Server) handleCurrentPrompt(w http.ResponseWriter, r *http.Request) {
	current, err := s.uc.PromptStore().GetCurrent(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, current)
}

func (s *Server) handlePromptHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.uc.PromptStore().History(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]any{"versions": history})
}

func (s *Server) handlePromptVersion(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "version")
	version, err := strconv.Atoi(raw)
	if err != nil {
		handleError(w, r, goerr.New("version must be an integer",
			goerr.V("version", raw),
			goerr.T(apperr.TagInvalidArgument)))
		return
	}

	v, err := s.uc.PromptStore().GetVersion(r.Context(), version)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, v)
}

// queryInt reads an integer query parameter with a fallback
func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
