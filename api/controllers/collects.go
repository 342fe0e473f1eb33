package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/groupcollect/groupcollect-backend/api/responses"
	"github.com/groupcollect/groupcollect-backend/api/validators"
	"github.com/groupcollect/groupcollect-backend/internal/collects"
	"github.com/groupcollect/groupcollect-backend/pkg/auth"
	pkgerrors "github.com/groupcollect/groupcollect-backend/pkg/errors"
	"github.com/groupcollect/groupcollect-backend/pkg/logger"
)

type closeCollectRequest struct {
	Reason string `json:"reason" validate:"max=2000"`
}

type activateCollectsRequest struct {
	IDs []uuid.UUID `json:"ids" validate:"required,min=1,max=100"`
}

func collectsUnavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "collects service unavailable"))
}

// PublicListCollects serves the numbered home and archive feeds.
func PublicListCollects(svc collects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			collectsUnavailable(w, r, logg)
			return
		}

		page, err := validators.ParseQueryInt(r, "page", 1, 1, 1_000_000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListPublic(r.Context(), strings.TrimSpace(r.URL.Query().Get("status")), page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// GetCollect returns one collect; pending collects are only visible to their
// author and administrators.
func GetCollect(svc collects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			collectsUnavailable(w, r, logg)
			return
		}

		id, err := validators.PathUUID(r, "collectId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Get(r.Context(), optionalActor(r), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ListMyCollects lists the caller's own collects, newest first.
func ListMyCollects(svc collects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			collectsUnavailable(w, r, logg)
			return
		}

		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := cursorParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListByAuthor(r.Context(), actor.UserID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// CreateCollect submits a new collect for moderation.
func CreateCollect(svc collects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			collectsUnavailable(w, r, logg)
			return
		}

		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body collects.CreateCollectInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Create(r.Context(), actor.UserID, body)
		responses.WriteCommitted(r.Context(), logg, w, http.StatusCreated, result, err)
	}
}

// UpdateCollect applies a partial update. Moderation fields require the admin
// role; the service enforces that.
func UpdateCollect(svc collects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			collectsUnavailable(w, r, logg)
			return
		}

		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := validators.PathUUID(r, "collectId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body collects.UpdateCollectInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Update(r.Context(), actor, id, body)
		responses.WriteCommitted(r.Context(), logg, w, http.StatusOK, result, err)
	}
}

// RequestCloseCollect flags the collect for closure, or closes it outright
// when the caller is an administrator.
func RequestCloseCollect(svc collects.Service, logg *logger.Logger) http.HandlerFunc {
	return closeHandler(svc, logg, collects.Service.RequestClose)
}

// AdminCloseCollect deactivates an active collect immediately.
func AdminCloseCollect(svc collects.Service, logg *logger.Logger) http.HandlerFunc {
	return closeHandler(svc, logg, collects.Service.ForceClose)
}

type closeFunc func(collects.Service, context.Context, auth.Actor, uuid.UUID, string) (*collects.CollectDTO, error)

func closeHandler(svc collects.Service, logg *logger.Logger, do closeFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			collectsUnavailable(w, r, logg)
			return
		}

		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := validators.PathUUID(r, "collectId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body closeCollectRequest
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		result, err := do(svc, r.Context(), actor, id, validators.SanitizeString(body.Reason, 2000))
		responses.WriteCommitted(r.Context(), logg, w, http.StatusOK, result, err)
	}
}

// AdminListCollects is the moderation listing with filters and search.
func AdminListCollects(svc collects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			collectsUnavailable(w, r, logg)
			return
		}

		params, err := cursorParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := collects.AdminFilters{
			Status: strings.TrimSpace(r.URL.Query().Get("status")),
			Query:  strings.TrimSpace(r.URL.Query().Get("q")),
		}
		if filters.IsActive, err = validators.ParseQueryBool(r, "is_active"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if filters.ClosureRequested, err = validators.ParseQueryBool(r, "closure_requested"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if filters.AuthorID, err = validators.ParseQueryUUID(r, "author_id"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListAdmin(r.Context(), filters, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AdminActivateCollects approves a batch of pending collects.
func AdminActivateCollects(svc collects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			collectsUnavailable(w, r, logg)
			return
		}

		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body activateCollectsRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Activate(r.Context(), actor, body.IDs)
		responses.WriteCommitted(r.Context(), logg, w, http.StatusOK, result, err)
	}
}

// AdminDeleteCollect removes a collect together with its payments and
// comments.
func AdminDeleteCollect(svc collects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			collectsUnavailable(w, r, logg)
			return
		}

		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := validators.PathUUID(r, "collectId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), actor, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
