package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	pkgerrors "github.com/groupcollect/groupcollect-backend/pkg/errors"
	"github.com/groupcollect/groupcollect-backend/pkg/logger"
	"github.com/groupcollect/groupcollect-backend/pkg/types"
)

// codes whose caller-supplied message is safe to show.
var publicMessageCodes = map[pkgerrors.Code]struct{}{
	pkgerrors.CodeValidation:    {},
	pkgerrors.CodeUnauthorized:  {},
	pkgerrors.CodeForbidden:     {},
	pkgerrors.CodeNotFound:      {},
	pkgerrors.CodeConflict:      {},
	pkgerrors.CodeStateConflict: {},
	pkgerrors.CodeIdempotency:   {},
	pkgerrors.CodeRateLimit:     {},
}

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, types.SuccessEnvelope{Data: data})
}

func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	writeErrorWithData(ctx, logg, w, err, nil)
}

// WriteCommitted writes the outcome of a mutation whose rows may already be
// committed when err is returned. A DEPENDENCY_ERROR next to a non-nil
// result keeps the result in the body so clients see the saved state.
func WriteCommitted[T any](ctx context.Context, logg *logger.Logger, w http.ResponseWriter, status int, data *T, err error) {
	if err == nil {
		WriteSuccessStatus(w, status, data)
		return
	}
	if data != nil && pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		writeErrorWithData(ctx, logg, w, err, data)
		return
	}
	WriteError(ctx, logg, w, err)
}

func writeErrorWithData(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error, data any) {
	if err == nil {
		err = errors.New("unknown error")
	}

	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}
	meta := pkgerrors.MetadataFor(typed.Code())

	payload := types.ErrorEnvelope{
		Data:  data,
		Error: publicError(typed, meta),
	}

	if logg != nil {
		logError(ctx, logg, err, typed)
	}
	writeJSON(w, meta.HTTPStatus, payload)
}

func publicError(typed *pkgerrors.Error, meta pkgerrors.Metadata) types.APIError {
	out := types.APIError{
		Code:    string(typed.Code()),
		Message: meta.PublicMessage,
	}
	if _, ok := publicMessageCodes[typed.Code()]; ok && typed.Message() != "" {
		out.Message = typed.Message()
	}
	if meta.DetailsAllowed {
		out.Details = typed.Details()
	}
	return out
}

func logError(ctx context.Context, logg *logger.Logger, err error, typed *pkgerrors.Error) {
	dump := pkgerrors.Dump(err)
	fields := map[string]any{
		"error":       dump.TopMessage,
		"error_code":  dump.Code,
		"error_chain": dump.Chain,
	}
	if dump.PGCode != "" {
		fields["pg_code"] = dump.PGCode
		fields["pg_detail"] = dump.PGDetail
		fields["pg_table"] = dump.PGTable
		fields["pg_constraint"] = dump.PGConstraint
	}
	if dm, ok := typed.Details().(map[string]any); ok {
		if ids, ok := dm["failed_notification_ids"]; ok {
			fields["failed_notification_ids"] = ids
		}
	}

	ctx = logg.WithFields(ctx, fields)
	if typed.Code() == pkgerrors.CodeInternal || typed.Code() == pkgerrors.CodeDependency {
		logg.Error(ctx, "request.error", err)
		return
	}
	logg.Warn(ctx, "request.rejected")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
