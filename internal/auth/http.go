// Copyright (c) 2026 Filedrop. All rights reserved.

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/filedrop-app/filedrop/internal/platform/middleware"
	requestutil "github.com/filedrop-app/filedrop/internal/platform/request"
	"github.com/filedrop-app/filedrop/internal/platform/respond"
	"github.com/filedrop-app/filedrop/internal/platform/validate"
)

// # HTTP Delivery

// Handler handles HTTP requests for authentication and session management.
type Handler struct {
	authService *Service
}

// NewHandler creates a new authentication [Handler].
func NewHandler(authService *Service) *Handler {
	return &Handler{authService: authService}
}

// Routes returns the router for the authentication endpoints.
//
// Login is public; everything else sits behind [middleware.RequireAuth],
// which assumes the session middleware already ran for the whole server.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/login", handler.Login)

	router.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireAuth)
		protected.Get("/me", handler.Me)
		protected.Post("/logout", handler.Logout)
		protected.Post("/logout-all", handler.LogoutAll)
	})

	return router
}

// loginRequest is the payload for the login endpoint.
type loginRequest struct {
	GoogleToken string `json:"google_token"`
}

/*
Login handles POST /api/v1/auth/login.

Description: Exchanges a Google-issued identity token for a Filedrop session
credential. The response carries the credential and the owning user; the
client presents the credential as a bearer token from then on.
*/
func (handler *Handler) Login(writer http.ResponseWriter, request *http.Request) {

	// ── 1. Decode & Validate ──────────────────────────────────────────────
	var payload loginRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	if err := validator.Required(FieldGoogleToken, payload.GoogleToken).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 2. Establish Session ──────────────────────────────────────────────
	session, err := handler.authService.Login(request.Context(), payload.GoogleToken)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 3. Respond ────────────────────────────────────────────────────────
	respond.OK(writer, map[string]interface{}{
		FieldToken: session.Credential,
		FieldUser:  session.User,
	})
}

/*
Me handles GET /api/v1/auth/me.

Description: Returns the directory record of the session's owner. Resolved
fresh from the directory rather than echoed from the credential claims, so a
deleted user cannot keep identifying themselves.
*/
func (handler *Handler) Me(writer http.ResponseWriter, request *http.Request) {

	credential, err := requestutil.RequiredCredential(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.WhoAmI(request.Context(), credential)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
Logout handles POST /api/v1/auth/logout.

Description: Revokes the presented session. Always 204 on store success,
whether or not a record existed.
*/
func (handler *Handler) Logout(writer http.ResponseWriter, request *http.Request) {

	credential, err := requestutil.RequiredCredential(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.Logout(request.Context(), credential); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
LogoutAll handles POST /api/v1/auth/logout-all.

Description: Revokes every session of the caller across all devices. The
owner is derived from the presented credential, never from the payload.
*/
func (handler *Handler) LogoutAll(writer http.ResponseWriter, request *http.Request) {

	credential, err := requestutil.RequiredCredential(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.LogoutAll(request.Context(), credential); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
