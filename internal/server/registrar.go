package server

import "github.com/go-chi/chi/v5"

// Registrar is a common interface for all HTTP service registrars.
// Each service mounts its own routes on the shared router.
type Registrar interface {
	Register(r chi.Router)
}
