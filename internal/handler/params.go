package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/trip-companion/backend/internal/domain"
	"github.com/pkordes/trip-companion/backend/internal/middleware"
)

// tripID binds the {id} path parameter. On failure it writes a 400 and
// reports false.
func tripID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	var id uuid.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid trip id")
		return uuid.Nil, false
	}
	return id, true
}

// feedParams are the optional ?q= and ?page= query parameters of the feed endpoints.
type feedParams struct {
	Query *string
	Page  *int
}

func bindFeedParams(w http.ResponseWriter, r *http.Request) (feedParams, bool) {
	var p feedParams
	if err := runtime.BindQueryParameter("form", true, false, "q", r.URL.Query(), &p.Query); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid parameter q")
		return p, false
	}
	if err := runtime.BindQueryParameter("form", true, false, "page", r.URL.Query(), &p.Page); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid parameter page")
		return p, false
	}
	return p, true
}

// actor returns the authenticated account. The authenticator runs before
// every handler that calls it, so a missing account is a wiring fault.
func actor(w http.ResponseWriter, r *http.Request) (domain.Account, bool) {
	acct, ok := middleware.AccountFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "sign in required")
	}
	return acct, ok
}

// decodeBody reads a JSON request body into dst. On failure it writes a 413
// for oversized bodies and a 400 otherwise, and reports false.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large")
		return false
	}
	writeError(w, http.StatusBadRequest, "bad_request", "request body must be a JSON object")
	return false
}
