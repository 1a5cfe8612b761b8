package accounts

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/kindling-app/kindling/internal/auth"
	apperr "github.com/kindling-app/kindling/internal/errors"
)

var validate = validator.New()

const maxPhotoBytes = 5 << 20

type signupRequest struct {
	Email       string   `json:"email" validate:"required,email"`
	Password    string   `json:"password" validate:"required,min=6"`
	FirstName   string   `json:"firstName" validate:"required,min=2"`
	LastName    string   `json:"lastName" validate:"required,min=2"`
	DateOfBirth string   `json:"dateOfBirth" validate:"required"`
	Gender      string   `json:"gender" validate:"required,oneof=MALE FEMALE OTHER"`
	Orientation string   `json:"orientation" validate:"required,oneof=HETEROSEXUAL BISEXUAL GAY LESBIAN OTHER"`
	InterestIDs []string `json:"interestIds"`
}

type signinRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// handleSignup implements POST /api/auth/signup.
func (s *Service) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.WriteError(w, apperr.Validation("invalid JSON body"))
		return
	}
	if err := validate.Struct(req); err != nil {
		apperr.WriteError(w, apperr.Validation(err.Error()))
		return
	}
	dob, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		apperr.WriteError(w, apperr.Validation("dateOfBirth must be YYYY-MM-DD"))
		return
	}

	result, err := s.Signup(r.Context(), SignupInput{
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DateOfBirth: dob,
		Gender:      req.Gender,
		Orientation: req.Orientation,
		InterestIDs: req.InterestIDs,
	})
	if err != nil {
		apperr.WriteError(w, err)
		return
	}
	apperr.WriteJSON(w, http.StatusCreated, result)
}

// handleSignin implements POST /api/auth/signin.
func (s *Service) handleSignin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.WriteError(w, apperr.Validation("invalid JSON body"))
		return
	}
	if err := validate.Struct(req); err != nil {
		apperr.WriteError(w, apperr.Validation(err.Error()))
		return
	}

	result, err := s.Signin(r.Context(), req.Email, req.Password)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, result)
}

// handleLogout implements POST /api/auth/logout.
func (s *Service) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.Logout(r.Context(), auth.SessionID(r.Context())); err != nil {
		apperr.WriteError(w, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// handleMe implements GET /api/me.
func (s *Service) handleMe(w http.ResponseWriter, r *http.Request) {
	view, err := s.Me(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		apperr.WriteError(w, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, view)
}

// handleGetUser implements GET /api/users/{id}.
func (s *Service) handleGetUser(w http.ResponseWriter, r *http.Request) {
	view, err := s.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		apperr.WriteError(w, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, view)
}

// handleListInterests implements GET /api/interests.
func (s *Service) handleListInterests(w http.ResponseWriter, r *http.Request) {
	interests, err := s.ListInterests(r.Context())
	if err != nil {
		apperr.WriteError(w, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, map[string]any{"interests": interests})
}

// handleStats implements GET /api/stats.
func (s *Service) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.GetStats(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		apperr.WriteError(w, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, stats)
}

// handleUploadPhoto implements POST /api/photos (multipart field "photo",
// optional boolean field "isMain").
func (s *Service) handleUploadPhoto(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
		apperr.WriteError(w, apperr.Validation("invalid multipart form"))
		return
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		apperr.WriteError(w, apperr.Validation("missing photo field"))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxPhotoBytes))
	if err != nil {
		apperr.WriteError(w, apperr.Validation("unreadable photo upload"))
		return
	}
	isMain := r.FormValue("isMain") == "true"

	photo, err := s.UploadPhoto(r.Context(), auth.UserID(r.Context()), content, isMain)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}
	apperr.WriteJSON(w, http.StatusCreated, map[string]any{"photo": photo})
}

// handleDeletePhoto implements DELETE /api/photos/{id}.
func (s *Service) handleDeletePhoto(w http.ResponseWriter, r *http.Request) {
	if err := s.DeletePhoto(r.Context(), chi.URLParam(r, "id"), auth.UserID(r.Context())); err != nil {
		apperr.WriteError(w, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}
