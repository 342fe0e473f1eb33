package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required"},
		{code: CodeForbidden, status: http.StatusForbidden, publicMsg: "access denied"},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected"},
		{code: CodeStateConflict, status: http.StatusUnprocessableEntity, publicMsg: "state transition disallowed", detailsOK: true},
		{code: CodeRateLimit, status: http.StatusTooManyRequests, publicMsg: "rate limit exceeded"},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		require.Equal(t, tt.status, meta.HTTPStatus, "status for %s", tt.code)
		require.Equal(t, tt.publicMsg, meta.PublicMessage, "public message for %s", tt.code)
		require.Equal(t, tt.retryable, meta.Retryable, "retryable for %s", tt.code)
		require.Equal(t, tt.detailsOK, meta.DetailsAllowed, "details for %s", tt.code)
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	require.Equal(t, http.StatusInternalServerError, meta.HTTPStatus)
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	require.Equal(t, CodeValidation, base.Code())
	require.Equal(t, "missing foo", base.Message())
	require.Nil(t, base.Details())

	base.WithDetails(map[string]any{"field": "foo"})
	require.NotNil(t, base.Details())

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "ctx")
	require.ErrorIs(t, wrapped, cause)
	require.Equal(t, CodeConflict, wrapped.Code())
	require.Contains(t, wrapped.Error(), "boom")
}

func TestAsAndIsCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeForbidden, "no entry"))
	got := As(err)
	require.NotNil(t, got)
	require.Equal(t, CodeForbidden, got.Code())
	require.True(t, IsCode(err, CodeForbidden))
	require.False(t, IsCode(err, CodeNotFound))
	require.Nil(t, As(nil))
}

func TestFieldErrors(t *testing.T) {
	fields := FieldErrors{}
	require.NoError(t, fields.Err())

	fields.Add("amount", "must be positive")
	fields.Add("amount", "ignored")
	err := fields.Err()
	require.Error(t, err)

	typed := As(err)
	require.Equal(t, CodeValidation, typed.Code())
	details := typed.Details().(map[string]any)
	require.Equal(t, map[string]string{"amount": "must be positive"}, details["fields"])
}

func TestDumpExtractsPostgresFields(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key", TableName: "users"}
	err := Wrap(CodeConflict, fmt.Errorf("insert: %w", pgErr), "duplicate")

	dump := Dump(err)
	require.Equal(t, CodeConflict, dump.Code)
	require.Equal(t, "23505", dump.PGCode)
	require.Equal(t, "users_username_key", dump.PGConstraint)
	require.Len(t, dump.Chain, 3)
}
