package errors

import (
	"encoding/json"
	"net/http"
)

// errorBody is the JSON envelope every failed request returns.
type errorBody struct {
	Error string `json:"error"`
	Kind  Kind   `json:"kind"`
}

// HTTPStatus maps a Kind to its HTTP status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindDependency:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WriteError translates err into the JSON error envelope. Internal causes are
// never leaked to callers; only the categorized message is.
func WriteError(w http.ResponseWriter, err error) {
	mapped := Map(err)

	msg := "internal error"
	var e *Error
	if AsError(mapped, &e) && e.Kind != KindInternal {
		msg = e.Message
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(HTTPStatus(mapped))
	_ = json.NewEncoder(w).Encode(errorBody{Error: msg, Kind: KindOf(mapped)})
}

// WriteJSON writes a success payload with the given status.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}
