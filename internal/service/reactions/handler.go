package reactions

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/kindling-app/kindling/internal/auth"
	apperr "github.com/kindling-app/kindling/internal/errors"
)

var validate = validator.New()

type submitRequest struct {
	ToUserID string `json:"toUserId" validate:"required"`
	Type     string `json:"type" validate:"required,oneof=LIKE SUPER_LIKE DISLIKE"`
}

// handleSubmit implements POST /api/reactions.
func (s *Service) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.WriteError(w, apperr.Validation("invalid JSON body"))
		return
	}
	if err := validate.Struct(req); err != nil {
		apperr.WriteError(w, apperr.Validation(err.Error()))
		return
	}

	result, err := s.Submit(r.Context(), auth.UserID(r.Context()), req.ToUserID, req.Type)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, result)
}

// handleDelete implements DELETE /api/reactions/{id}.
func (s *Service) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.Delete(r.Context(), chi.URLParam(r, "id"), auth.UserID(r.Context())); err != nil {
		apperr.WriteError(w, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Service) handleList(direction Direction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var token *string
		if t := r.URL.Query().Get("paginationToken"); t != "" {
			token = &t
		}
		limit := 20
		if l := r.URL.Query().Get("limit"); l != "" {
			if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 100 {
				limit = n
			}
		}

		page, err := s.List(r.Context(), auth.UserID(r.Context()), direction, token, limit)
		if err != nil {
			apperr.WriteError(w, err)
			return
		}
		apperr.WriteJSON(w, http.StatusOK, page)
	}
}
