package users

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/groupcollect/groupcollect-backend/pkg/db"
	"github.com/groupcollect/groupcollect-backend/pkg/db/dbtest"
	"github.com/groupcollect/groupcollect-backend/pkg/db/models"
	"github.com/groupcollect/groupcollect-backend/pkg/enums"
	pkgerrors "github.com/groupcollect/groupcollect-backend/pkg/errors"
	"github.com/groupcollect/groupcollect-backend/pkg/pagination"
)

func newTestService(t *testing.T) (Service, *Repository, *gorm.DB) {
	t.Helper()
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	svc, err := NewService(repo, db.NewFromConn(conn))
	require.NoError(t, err)
	return svc, repo, conn
}

func seedUser(t *testing.T, conn *gorm.DB, username string, role enums.UserRole, joined time.Time) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
		Role:         role,
		IsActive:     true,
		CreatedAt:    joined,
	}
	require.NoError(t, conn.Create(user).Error)
	require.NoError(t, conn.Create(&models.Profile{ID: uuid.New(), UserID: user.ID}).Error)
	return user
}

func seedCollect(t *testing.T, conn *gorm.DB, authorID uuid.UUID) *models.Collect {
	t.Helper()
	c := &models.Collect{
		ID:            uuid.New(),
		AuthorID:      authorID,
		Title:         "Collect",
		Occasion:      enums.OccasionBirthday,
		Description:   "desc",
		PaymentType:   enums.PaymentTypeCard,
		RecipientName: "Recipient",
		IsActive:      true,
	}
	require.NoError(t, conn.Create(c).Error)
	return c
}

func seedPayment(t *testing.T, conn *gorm.DB, collectID, userID uuid.UUID, amount int64) {
	t.Helper()
	require.NoError(t, conn.Create(&models.Payment{
		ID:        uuid.New(),
		CollectID: collectID,
		UserID:    userID,
		Amount:    decimal.NewFromInt(amount),
	}).Error)
}

func TestCreateUserAndProfileInOneTx(t *testing.T) {
	_, repo, conn := newTestService(t)
	ctx := context.Background()

	err := db.NewFromConn(conn).WithTx(ctx, func(tx *gorm.DB) error {
		r := repo.WithTx(tx)
		user, err := r.Create(ctx, CreateUserDTO{Username: "alice", Email: "alice@example.com", PasswordHash: "h"})
		if err != nil {
			return err
		}
		_, err = r.CreateProfile(ctx, user.ID)
		return err
	})
	require.NoError(t, err)

	user, err := repo.FindByLogin(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, enums.UserRoleUser, user.Role)

	byName, err := repo.FindByLogin(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	profile, err := repo.FindProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, profile.Avatar)
}

func TestGetAndListUsers(t *testing.T) {
	svc, _, conn := newTestService(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a := seedUser(t, conn, "a", enums.UserRoleUser, base)
	seedUser(t, conn, "b", enums.UserRoleUser, base.Add(time.Hour))
	seedUser(t, conn, "c", enums.UserRoleAdmin, base.Add(2*time.Hour))

	got, err := svc.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Username)

	_, err = svc.Get(ctx, uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	page, err := svc.List(ctx, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "c", page.Items[0].Username)
	require.NotEmpty(t, page.NextCursor)

	rest, err := svc.List(ctx, pagination.Params{Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	require.Len(t, rest.Items, 1)
	assert.Equal(t, "a", rest.Items[0].Username)
	assert.Empty(t, rest.NextCursor)
}

func TestListWithStats(t *testing.T) {
	svc, _, conn := newTestService(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	author := seedUser(t, conn, "author", enums.UserRoleUser, base)
	donor := seedUser(t, conn, "donor", enums.UserRoleUser, base.Add(time.Hour))

	c1 := seedCollect(t, conn, author.ID)
	seedCollect(t, conn, author.ID)
	seedPayment(t, conn, c1.ID, donor.ID, 100)
	seedPayment(t, conn, c1.ID, donor.ID, 50)
	seedPayment(t, conn, c1.ID, author.ID, 25)

	result, err := svc.ListWithStats(ctx, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, result.Items, 2)

	assert.Equal(t, "donor", result.Items[0].Username, "newest first")
	assert.EqualValues(t, 0, result.Items[0].CollectionsCreated)
	assert.True(t, result.Items[0].TotalDonated.Equal(decimal.NewFromInt(150)))

	assert.EqualValues(t, 2, result.Items[1].CollectionsCreated)
	assert.True(t, result.Items[1].TotalDonated.Equal(decimal.NewFromInt(25)), "counts and sums do not inflate each other")
}

func TestAdminEmails(t *testing.T) {
	_, repo, conn := newTestService(t)
	base := time.Now().UTC()
	seedUser(t, conn, "root", enums.UserRoleAdmin, base)
	seedUser(t, conn, "plain", enums.UserRoleUser, base)

	emails, err := repo.AdminEmails(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"root@example.com"}, emails)
}

func TestUpdateProfile(t *testing.T) {
	svc, _, conn := newTestService(t)
	ctx := context.Background()
	user := seedUser(t, conn, "alice", enums.UserRoleUser, time.Now().UTC())

	first, last, avatar := "Alice", " Smith ", "avatars/alice.png"
	profile, err := svc.UpdateProfile(ctx, user.ID, UpdateProfileInput{FirstName: &first, LastName: &last, Avatar: &avatar})
	require.NoError(t, err)
	assert.Equal(t, "Alice Smith", profile.FullName)
	require.NotNil(t, profile.Avatar)
	assert.Equal(t, avatar, *profile.Avatar)
	assert.Equal(t, "alice@example.com", profile.Email)

	clear := ""
	profile, err = svc.UpdateProfile(ctx, user.ID, UpdateProfileInput{Avatar: &clear})
	require.NoError(t, err)
	assert.Nil(t, profile.Avatar)

	blank := "  "
	_, err = svc.UpdateProfile(ctx, user.ID, UpdateProfileInput{Email: &blank})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.UpdateProfile(ctx, uuid.New(), UpdateProfileInput{FirstName: &first})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
