package middleware

import (
	"context"
	"net/http"
	"slices"

	"github.com/groupcollect/groupcollect-backend/api/responses"
	"github.com/groupcollect/groupcollect-backend/api/validators"
	pkgAuth "github.com/groupcollect/groupcollect-backend/pkg/auth"
	"github.com/groupcollect/groupcollect-backend/pkg/auth/session"
	"github.com/groupcollect/groupcollect-backend/pkg/config"
	"github.com/groupcollect/groupcollect-backend/pkg/enums"
	pkgerrors "github.com/groupcollect/groupcollect-backend/pkg/errors"
	"github.com/groupcollect/groupcollect-backend/pkg/logger"
)

// Auth validates the bearer token, checks that its session was not revoked
// and seeds the request context with the caller.
func Auth(cfg config.JWTConfig, verifier session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, err := authenticate(r, cfg, verifier)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithActor(r.Context(), actor)
			if logg != nil {
				ctx = logg.WithUserID(ctx, actor.UserID.String())
				ctx = logg.WithActorRole(ctx, string(actor.Role))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticate(r *http.Request, cfg config.JWTConfig, verifier session.AccessSessionChecker) (pkgAuth.Actor, error) {
	token, err := validators.BearerToken(r.Header.Get("Authorization"))
	if err != nil {
		return pkgAuth.Actor{}, err
	}

	claims, err := pkgAuth.ParseAccessToken(cfg, token)
	if err != nil {
		return pkgAuth.Actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}
	if claims.ID == "" {
		return pkgAuth.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id")
	}
	role, err := enums.ParseUserRole(string(claims.Role))
	if err != nil {
		return pkgAuth.Actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token role")
	}

	if err := checkSession(r.Context(), verifier, claims.ID); err != nil {
		return pkgAuth.Actor{}, err
	}
	return pkgAuth.Actor{UserID: claims.UserID, Role: role}, nil
}

func checkSession(ctx context.Context, verifier session.AccessSessionChecker, accessID string) error {
	if verifier == nil {
		return nil
	}
	ok, err := verifier.HasSession(ctx, accessID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "session revoked or expired")
	}
	return nil
}

// RequireRole lets the request through when the caller holds one of roles.
// It must run after Auth.
func RequireRole(logg *logger.Logger, roles ...enums.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
				return
			}
			if !slices.Contains(roles, actor.Role) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
