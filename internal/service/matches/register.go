package matches

import (
	"github.com/go-chi/chi/v5"

	"github.com/kindling-app/kindling/internal/app"
)

// Registrar ties the matches service into the HTTP router.
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the matches service.
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register mounts the match query and deletion routes.
func (reg *Registrar) Register(r chi.Router) {
	s := NewService(reg.appCtx)

	r.Get("/matches", s.handleList)
	r.Get("/matches/overview", s.handleOverview)
	r.Get("/matches/count-liked-you", s.handleCountLikedYou)
	r.Delete("/matches/{id}", s.handleDelete)
}
