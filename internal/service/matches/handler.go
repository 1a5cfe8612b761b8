package matches

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kindling-app/kindling/internal/auth"
	apperr "github.com/kindling-app/kindling/internal/errors"
)

// handleList implements GET /api/matches.
func (s *Service) handleList(w http.ResponseWriter, r *http.Request) {
	entries, err := s.ListMatches(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		apperr.WriteError(w, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, map[string]any{"matches": entries})
}

// handleOverview implements GET /api/matches/overview.
func (s *Service) handleOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := s.GetOverview(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		apperr.WriteError(w, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, overview)
}

// handleCountLikedYou implements GET /api/matches/count-liked-you.
func (s *Service) handleCountLikedYou(w http.ResponseWriter, r *http.Request) {
	count, err := s.CountLikedYou(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		apperr.WriteError(w, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, map[string]int64{"count": count})
}

// handleDelete implements DELETE /api/matches/{id}.
func (s *Service) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.DeleteMatch(r.Context(), chi.URLParam(r, "id"), auth.UserID(r.Context())); err != nil {
		apperr.WriteError(w, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}
