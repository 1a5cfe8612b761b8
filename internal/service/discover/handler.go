package discover

import (
	"net/http"
	"strconv"

	"github.com/kindling-app/kindling/internal/auth"
	apperr "github.com/kindling-app/kindling/internal/errors"
)

// handleSuggestions implements GET /api/suggestions.
func (s *Service) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil {
			limit = n
		}
	}

	suggestions, err := s.Suggestions(r.Context(), auth.UserID(r.Context()), limit)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}
