package accounts

import (
	"github.com/go-chi/chi/v5"

	"github.com/kindling-app/kindling/internal/app"
)

// PublicRegistrar mounts the routes reachable without a session.
type PublicRegistrar struct {
	appCtx *app.AppContext
}

// NewPublicRegistrar creates the unauthenticated accounts registrar.
func NewPublicRegistrar(appCtx *app.AppContext) *PublicRegistrar {
	return &PublicRegistrar{appCtx: appCtx}
}

// Register mounts signup, signin and the interest catalog.
func (reg *PublicRegistrar) Register(r chi.Router) {
	s := NewService(reg.appCtx)

	r.Post("/auth/signup", s.handleSignup)
	r.Post("/auth/signin", s.handleSignin)
	r.Get("/interests", s.handleListInterests)
}

// Registrar mounts the session-protected account routes.
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates the authenticated accounts registrar.
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register mounts logout, profile views, photos and stats.
func (reg *Registrar) Register(r chi.Router) {
	s := NewService(reg.appCtx)

	r.Post("/auth/logout", s.handleLogout)
	r.Get("/me", s.handleMe)
	r.Get("/users/{id}", s.handleGetUser)
	r.Get("/stats", s.handleStats)
	r.Post("/photos", s.handleUploadPhoto)
	r.Delete("/photos/{id}", s.handleDeletePhoto)
}
