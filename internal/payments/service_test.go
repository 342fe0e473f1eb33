package payments

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/groupcollect/groupcollect-backend/internal/collects"
	"github.com/groupcollect/groupcollect-backend/internal/lifecycle"
	"github.com/groupcollect/groupcollect-backend/internal/notifications"
	"github.com/groupcollect/groupcollect-backend/internal/users"
	"github.com/groupcollect/groupcollect-backend/pkg/db"
	"github.com/groupcollect/groupcollect-backend/pkg/db/dbtest"
	"github.com/groupcollect/groupcollect-backend/pkg/db/models"
	"github.com/groupcollect/groupcollect-backend/pkg/enums"
	pkgerrors "github.com/groupcollect/groupcollect-backend/pkg/errors"
	"github.com/groupcollect/groupcollect-backend/pkg/mail"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (r *recordingSender) Send(_ context.Context, msg mail.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return nil
}

func (r *recordingSender) Name() string { return "recording" }

func (r *recordingSender) messages() []mail.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]mail.Message(nil), r.sent...)
}

type fixture struct {
	svc    Service
	repo   Repository
	conn   *gorm.DB
	sender *recordingSender
	author *models.User
	donor  *models.User
	admin  *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := dbtest.Open(t)
	sender := &recordingSender{}
	notifySvc, err := notifications.NewService(notifications.ServiceParams{
		Repo:   notifications.NewRepository(conn),
		Sender: sender,
		From:   "noreply@groupcollect.test",
	})
	require.NoError(t, err)

	repo := NewRepository(conn)
	svc, err := NewService(ServiceParams{
		DB:            db.NewFromConn(conn),
		Repo:          repo,
		Collects:      collects.NewRepository(conn),
		Users:         users.NewRepository(conn),
		Notifications: notifySvc,
	})
	require.NoError(t, err)

	return &fixture{
		svc:    svc,
		repo:   repo,
		conn:   conn,
		sender: sender,
		author: seedUser(t, conn, "author", enums.UserRoleUser),
		donor:  seedUser(t, conn, "donor", enums.UserRoleUser),
		admin:  seedUser(t, conn, "admin", enums.UserRoleAdmin),
	}
}

func seedUser(t *testing.T, conn *gorm.DB, username string, role enums.UserRole) *models.User {
	t.Helper()
	u := &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, conn.Create(u).Error)
	return u
}

func (f *fixture) seedCollect(t *testing.T, goal *decimal.Decimal, raised decimal.Decimal, active bool) *models.Collect {
	t.Helper()
	activated := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	c := &models.Collect{
		ID:            uuid.New(),
		AuthorID:      f.author.ID,
		Title:         "Gift",
		Occasion:      enums.OccasionBirthday,
		Description:   "d",
		GoalAmount:    goal,
		RaisedAmount:  raised,
		PaymentType:   enums.PaymentTypeCard,
		RecipientName: "R",
		IsActive:      active,
	}
	if active {
		c.ActivatedAt = &activated
	}
	require.NoError(t, f.conn.Create(c).Error)
	return c
}

func (f *fixture) loadCollect(t *testing.T, id uuid.UUID) models.Collect {
	t.Helper()
	var c models.Collect
	require.NoError(t, f.conn.First(&c, "id = ?", id).Error)
	return c
}

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func TestPaymentCrossingGoalClosesCollect(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	goal := dec(1000)
	collect := f.seedCollect(t, &goal, dec(900), true)

	payment, err := f.svc.Create(ctx, f.donor.ID, CreatePaymentInput{CollectID: collect.ID, Amount: dec(150)})
	require.NoError(t, err)
	assert.True(t, payment.Amount.Equal(dec(150)))

	stored := f.loadCollect(t, collect.ID)
	assert.True(t, stored.RaisedAmount.Equal(dec(1050)), "raised %s", stored.RaisedAmount)
	assert.False(t, stored.IsActive)
	require.NotNil(t, stored.EndAt)
	require.NotNil(t, stored.CloseReason)
	assert.Equal(t, lifecycle.GoalReachedReason, *stored.CloseReason)

	msgs := f.sender.messages()
	require.Len(t, msgs, 4)
	assert.Equal(t, "Thank you for your donation!", msgs[0].Subject)
	assert.Equal(t, []string{"donor@example.com"}, msgs[0].To)
	assert.Contains(t, msgs[1].Subject, "New donation")
	assert.Contains(t, msgs[1].Body, "Left to raise: 0.00")
	assert.Equal(t, []string{"author@example.com"}, msgs[1].To)
	assert.Contains(t, msgs[2].Subject, "has been closed")
	assert.Contains(t, msgs[2].Body, lifecycle.GoalReachedReason)
	assert.Contains(t, msgs[3].Subject, "closed automatically")
	assert.Equal(t, []string{"admin@example.com"}, msgs[3].To)

	_, err = f.svc.Create(ctx, f.donor.ID, CreatePaymentInput{CollectID: collect.ID, Amount: dec(10)})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
	assert.Len(t, f.sender.messages(), 4)
}

func TestRaisedAmountMatchesPaymentSum(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	collect := f.seedCollect(t, nil, decimal.Zero, true)

	amounts := []string{"10.50", "99.25", "0.25", "250"}
	for _, raw := range amounts {
		_, err := f.svc.Create(ctx, f.donor.ID, CreatePaymentInput{CollectID: collect.ID, Amount: decimal.RequireFromString(raw)})
		require.NoError(t, err)
	}

	sum, err := f.repo.SumByCollect(ctx, collect.ID)
	require.NoError(t, err)
	stored := f.loadCollect(t, collect.ID)
	assert.True(t, sum.Equal(decimal.RequireFromString("360.00")), "sum %s", sum)
	assert.True(t, stored.RaisedAmount.Equal(sum), "raised %s sum %s", stored.RaisedAmount, sum)
	assert.True(t, stored.IsActive)
}

func TestCreateRejectsNonPositiveAmount(t *testing.T) {
	f := newFixture(t)
	collect := f.seedCollect(t, nil, decimal.Zero, true)

	for _, amount := range []decimal.Decimal{decimal.Zero, dec(-5)} {
		_, err := f.svc.Create(context.Background(), f.donor.ID, CreatePaymentInput{CollectID: collect.ID, Amount: amount})
		require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
		fields := pkgerrors.As(err).Details().(map[string]any)["fields"].(map[string]string)
		assert.Contains(t, fields, "amount")
	}

	var count int64
	require.NoError(t, f.conn.Model(&models.Payment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateRejectsAmountsBeyondStorageLimits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	collect := f.seedCollect(t, nil, decimal.RequireFromString("9999999990.00"), true)

	tests := []struct {
		name   string
		amount decimal.Decimal
	}{
		{name: "rounds to zero", amount: decimal.RequireFromString("0.004")},
		{name: "above column precision", amount: decimal.RequireFromString("100000000")},
		{name: "pushes total past limit", amount: dec(10)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, f.donor.ID, CreatePaymentInput{CollectID: collect.ID, Amount: tt.amount})
			require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "err %v", err)
			fields := pkgerrors.As(err).Details().(map[string]any)["fields"].(map[string]string)
			assert.Contains(t, fields, "amount")
		})
	}

	_, err := f.svc.Create(ctx, f.donor.ID, CreatePaymentInput{CollectID: collect.ID, Amount: decimal.RequireFromString("9.99")})
	require.NoError(t, err)

	var count int64
	require.NoError(t, f.conn.Model(&models.Payment{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
	stored := f.loadCollect(t, collect.ID)
	assert.True(t, stored.RaisedAmount.Equal(decimal.RequireFromString("9999999999.99")), "raised %s", stored.RaisedAmount)
}

func TestAuthorPaymentSkipsDonorAlert(t *testing.T) {
	f := newFixture(t)
	collect := f.seedCollect(t, nil, decimal.Zero, true)

	_, err := f.svc.Create(context.Background(), f.author.ID, CreatePaymentInput{CollectID: collect.ID, Amount: dec(20)})
	require.NoError(t, err)

	msgs := f.sender.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "Thank you for your donation!", msgs[0].Subject)
}

func TestDonorAlertWithoutGoalSaysUnlimited(t *testing.T) {
	f := newFixture(t)
	collect := f.seedCollect(t, nil, decimal.Zero, true)

	_, err := f.svc.Create(context.Background(), f.donor.ID, CreatePaymentInput{CollectID: collect.ID, Amount: dec(20)})
	require.NoError(t, err)

	msgs := f.sender.messages()
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[1].Body, "Left to raise: unlimited")
	assert.Contains(t, msgs[1].Body, "Raised so far: 20.00")
}

func TestPaymentsRequireActiveExistingCollect(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pending := f.seedCollect(t, nil, decimal.Zero, false)

	_, err := f.svc.Create(ctx, f.donor.ID, CreatePaymentInput{CollectID: pending.ID, Amount: dec(5)})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	_, err = f.svc.Create(ctx, f.donor.ID, CreatePaymentInput{CollectID: uuid.New(), Amount: dec(5)})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	stored := f.loadCollect(t, pending.ID)
	assert.True(t, stored.RaisedAmount.IsZero())
	assert.Empty(t, f.sender.messages())
}

func TestListFiltersAndPaginates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.seedCollect(t, nil, decimal.Zero, true)
	second := f.seedCollect(t, nil, decimal.Zero, true)
	base := time.Date(2024, 6, 2, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		require.NoError(t, f.conn.Create(&models.Payment{
			ID: uuid.New(), CollectID: first.ID, UserID: f.donor.ID, Amount: dec(int64(i + 1)),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}).Error)
	}
	require.NoError(t, f.conn.Create(&models.Payment{
		ID: uuid.New(), CollectID: second.ID, UserID: f.author.ID, Amount: dec(7), CreatedAt: base,
	}).Error)

	page, err := f.svc.List(ctx, ListParams{CollectID: &first.ID, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.True(t, page.Items[0].Amount.Equal(dec(3)))
	require.NotEmpty(t, page.NextCursor)

	rest, err := f.svc.List(ctx, ListParams{CollectID: &first.ID, Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	require.Len(t, rest.Items, 1)
	assert.True(t, rest.Items[0].Amount.Equal(dec(1)))
	assert.Empty(t, rest.NextCursor)

	mine, err := f.svc.List(ctx, ListParams{UserID: &f.author.ID})
	require.NoError(t, err)
	require.Len(t, mine.Items, 1)
	assert.Equal(t, second.ID, mine.Items[0].CollectID)

	_, err = f.svc.List(ctx, ListParams{Cursor: "%%%"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	got, err := f.svc.Get(ctx, mine.Items[0].ID)
	require.NoError(t, err)
	assert.Equal(t, f.author.ID, got.UserID)

	_, err = f.svc.Get(ctx, uuid.New())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
