package controllers

import (
	"net/http"
	"strings"

	"github.com/groupcollect/groupcollect-backend/api/responses"
	"github.com/groupcollect/groupcollect-backend/internal/notifications"
	pkgerrors "github.com/groupcollect/groupcollect-backend/pkg/errors"
	"github.com/groupcollect/groupcollect-backend/pkg/logger"
)

// AdminListNotifications returns the dispatch log, optionally filtered by
// status and kind.
func AdminListNotifications(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}

		page, err := cursorParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := notifications.ListParams{
			Status: strings.TrimSpace(r.URL.Query().Get("status")),
			Kind:   strings.TrimSpace(r.URL.Query().Get("kind")),
			Limit:  page.Limit,
			Cursor: page.Cursor,
		}

		resp, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}
