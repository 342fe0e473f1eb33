package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groupcollect/groupcollect-backend/internal/users"
	"github.com/groupcollect/groupcollect-backend/pkg/db"
	"github.com/groupcollect/groupcollect-backend/pkg/db/dbtest"
	"github.com/groupcollect/groupcollect-backend/pkg/db/models"
	"github.com/groupcollect/groupcollect-backend/pkg/enums"
	pkgerrors "github.com/groupcollect/groupcollect-backend/pkg/errors"
	"github.com/groupcollect/groupcollect-backend/pkg/security"
)

func TestRegisterCreatesUserAndProfile(t *testing.T) {
	conn := dbtest.Open(t)
	svc, err := NewRegisterService(RegisterServiceParams{DB: db.NewFromConn(conn), PasswordConfig: testPasswordConfig()})
	require.NoError(t, err)
	ctx := context.Background()

	account, err := svc.Register(ctx, RegisterRequest{
		Username:  "alice",
		Email:     " Alice@Example.com ",
		Password:  "correct-horse",
		FirstName: "Alice",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", account.Email)
	assert.Equal(t, enums.UserRoleUser, account.Role)

	repo := users.NewRepository(conn)
	stored, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	ok, err := security.VerifyPassword("correct-horse", stored.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = repo.FindProfile(ctx, stored.ID)
	require.NoError(t, err, "profile created with the user")
}

func TestRegisterConflictsAndValidation(t *testing.T) {
	conn := dbtest.Open(t)
	svc, err := NewRegisterService(RegisterServiceParams{DB: db.NewFromConn(conn), PasswordConfig: testPasswordConfig()})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.Register(ctx, RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterRequest{Username: "alice", Email: "other@example.com", Password: "correct-horse"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	_, err = svc.Register(ctx, RegisterRequest{Username: "bob", Email: "ALICE@example.com", Password: "correct-horse"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	_, err = svc.Register(ctx, RegisterRequest{Username: "bad name", Email: "x@example.com", Password: "short"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	details := pkgerrors.As(err).Details().(map[string]any)["fields"].(map[string]string)
	assert.Contains(t, details, "username")
	assert.Contains(t, details, "password")

	var count int64
	require.NoError(t, conn.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
	require.NoError(t, conn.Model(&models.Profile{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestAdminRegisterCreatesAdmin(t *testing.T) {
	conn := dbtest.Open(t)
	svc, err := NewAdminRegisterService(RegisterServiceParams{DB: db.NewFromConn(conn), PasswordConfig: testPasswordConfig()})
	require.NoError(t, err)

	account, err := svc.Register(context.Background(), RegisterRequest{Username: "root", Email: "root@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, enums.UserRoleAdmin, account.Role)

	_, err = NewRegisterService(RegisterServiceParams{})
	assert.Error(t, err)
}
