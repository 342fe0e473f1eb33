package controllers

import (
	"net/http"

	"github.com/groupcollect/groupcollect-backend/api/middleware"
	"github.com/groupcollect/groupcollect-backend/api/responses"
	"github.com/groupcollect/groupcollect-backend/api/validators"
	"github.com/groupcollect/groupcollect-backend/internal/auth"
	pkgerrors "github.com/groupcollect/groupcollect-backend/pkg/errors"
	"github.com/groupcollect/groupcollect-backend/pkg/logger"
)

func authUnavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
}

// writeSession returns the token pair in the body and mirrors the access
// token in the session header for clients that read headers only.
func writeSession(w http.ResponseWriter, status int, result *auth.LoginResponse) {
	w.Header().Set(middleware.SessionHeader, result.AccessToken)
	responses.WriteSuccessStatus(w, status, result)
}

// AuthLogin accepts a username or an email together with the password.
func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			authUnavailable(w, r, logg)
			return
		}

		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeSession(w, http.StatusOK, result)
	}
}

// AuthRegister opens an account with an empty profile and signs the new user
// in. The same handler serves the non-prod admin registration route with an
// admin RegisterService.
func AuthRegister(reg auth.RegisterService, svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if reg == nil || svc == nil {
			authUnavailable(w, r, logg)
			return
		}

		var body auth.RegisterRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		account, err := reg.Register(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithFields(ctx, map[string]any{"user_id": account.ID.String(), "role": string(account.Role)})
			logg.Info(ctx, "account registered")
		}

		result, err := svc.Login(ctx, auth.LoginRequest{Login: account.Username, Password: body.Password})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		writeSession(w, http.StatusCreated, result)
	}
}
