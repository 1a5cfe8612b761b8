package reactions

import (
	"github.com/go-chi/chi/v5"

	"github.com/kindling-app/kindling/internal/app"
)

// Registrar ties the reactions service into the HTTP router.
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the reactions service.
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register mounts the reaction ledger routes.
func (reg *Registrar) Register(r chi.Router) {
	s := NewService(reg.appCtx)

	r.Post("/reactions", s.handleSubmit)
	r.Delete("/reactions/{id}", s.handleDelete)
	r.Get("/reactions/sent", s.handleList(DirectionSent))
	r.Get("/reactions/received", s.handleList(DirectionReceived))
	r.Get("/views", s.handleList(DirectionViews))
}
