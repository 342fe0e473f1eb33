package controllers

import (
	"net/http"
	"strings"

	"github.com/groupcollect/groupcollect-backend/api/middleware"
	"github.com/groupcollect/groupcollect-backend/api/validators"
	pkgAuth "github.com/groupcollect/groupcollect-backend/pkg/auth"
	pkgerrors "github.com/groupcollect/groupcollect-backend/pkg/errors"
	"github.com/groupcollect/groupcollect-backend/pkg/pagination"
)

func requireActor(r *http.Request) (pkgAuth.Actor, error) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		return pkgAuth.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	return actor, nil
}

// optionalActor returns nil for anonymous callers.
func optionalActor(r *http.Request) *pkgAuth.Actor {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		return nil
	}
	return &actor
}

func cursorParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}
