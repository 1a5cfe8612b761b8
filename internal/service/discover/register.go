package discover

import (
	"github.com/go-chi/chi/v5"

	"github.com/kindling-app/kindling/internal/app"
)

// Registrar ties the discover service into the HTTP router.
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the discover service.
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register mounts the suggestion routes.
func (reg *Registrar) Register(r chi.Router) {
	s := NewService(reg.appCtx)

	r.Get("/suggestions", s.handleSuggestions)
}
