package payments

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/groupcollect/groupcollect-backend/internal/collects"
	"github.com/groupcollect/groupcollect-backend/internal/lifecycle"
	"github.com/groupcollect/groupcollect-backend/internal/notifications"
	"github.com/groupcollect/groupcollect-backend/internal/users"
	"github.com/groupcollect/groupcollect-backend/pkg/db"
	"github.com/groupcollect/groupcollect-backend/pkg/db/models"
	pkgerrors "github.com/groupcollect/groupcollect-backend/pkg/errors"
	"github.com/groupcollect/groupcollect-backend/pkg/logger"
	"github.com/groupcollect/groupcollect-backend/pkg/pagination"
)

const unlimitedRemaining = "unlimited"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service records payments and keeps collect totals in step with them.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreatePaymentInput) (*PaymentDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*PaymentDTO, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
}

// ServiceParams groups the payments service dependencies.
type ServiceParams struct {
	DB            txRunner
	Repo          Repository
	Collects      collects.Repository
	Users         *users.Repository
	Notifications notifications.Service
	Cache         collects.CacheClearer
	Logger        *logger.Logger
}

type service struct {
	db            txRunner
	repo          Repository
	collects      collects.Repository
	users         *users.Repository
	notifications notifications.Service
	cache         collects.CacheClearer
	logg          *logger.Logger
	now           func() time.Time
}

// NewService wires the payments service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "payments repository required")
	}
	if params.Collects == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "collects repository required")
	}
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	if params.Notifications == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications service required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		db:            params.DB,
		repo:          params.Repo,
		collects:      params.Collects,
		users:         params.Users,
		notifications: params.Notifications,
		cache:         params.Cache,
		logg:          logg,
		now:           time.Now,
	}, nil
}

// Create records the payment, adds it to the collect total and closes the
// collect when the goal is reached. The thank-you, the author alert and any
// closing notices are sent after commit in that order.
func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreatePaymentInput) (*PaymentDTO, error) {
	fields := pkgerrors.FieldErrors{}
	if input.CollectID == uuid.Nil {
		fields.Add("collect_id", "collect is required")
	}
	amount := input.Amount.Round(2)
	switch {
	case !amount.IsPositive():
		fields.Add("amount", "amount must be greater than zero")
	case amount.GreaterThan(models.MaxPaymentAmount):
		fields.Add("amount", "amount must be at most "+models.MaxPaymentAmount.StringFixed(2))
	}
	if err := fields.Err(); err != nil {
		return nil, err
	}

	payment := &models.Payment{
		ID:        uuid.New(),
		CollectID: input.CollectID,
		UserID:    userID,
		Amount:    amount,
	}

	var (
		ids        []uuid.UUID
		autoClosed bool
	)
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		collectRepo := s.collects.WithTx(tx)
		userRepo := s.users.WithTx(tx)

		current, err := collectRepo.FindByID(ctx, input.CollectID)
		if err != nil {
			return mapNotFound(err, "collect not found", "load collect")
		}
		if !current.IsActive {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "collect is not accepting payments")
		}
		if current.RaisedAmount.Add(amount).GreaterThan(models.MaxCollectAmount) {
			return totalLimitError()
		}
		payer, err := userRepo.FindByID(ctx, userID)
		if err != nil {
			return mapNotFound(err, "user not found", "load payer")
		}

		if err := s.repo.WithTx(tx).Create(ctx, payment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment")
		}
		affected, err := collectRepo.IncrementRaised(ctx, current.ID, amount)
		if db.IsNumericOverflow(err) {
			return totalLimitError()
		}
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update raised amount")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "collect is not accepting payments")
		}

		collect, err := collectRepo.FindByID(ctx, current.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload collect")
		}

		ref := collects.Ref(collect)
		drafts := []notifications.Draft{
			notifications.PaymentThanks(ref, payer.Username, payer.Email, amount),
		}
		if payer.ID != collect.AuthorID {
			drafts = append(drafts, notifications.DonationReceived(ref, payer.Username, amount, collect.RaisedAmount, remaining(collect)))
		}
		ids, err = s.notifications.Enqueue(ctx, tx, drafts...)
		if err != nil {
			return err
		}

		snapshot := lifecycle.SnapshotOf(*collect)
		if !lifecycle.GoalReached(snapshot) {
			return nil
		}
		decision := lifecycle.AutoClose(snapshot, s.now())
		decision.Next.Apply(collect)
		closed, err := collectRepo.SaveLifecycle(ctx, collect, true)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close collect")
		}
		if closed == 0 {
			return nil
		}
		autoClosed = true
		closeIDs, err := collects.EnqueueNotices(ctx, tx, s.users, s.notifications, collect, decision.Notices)
		if err != nil {
			return err
		}
		ids = append(ids, closeIDs...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithPaymentID(ctx, payment.ID.String())
	ctx = s.logg.WithFields(ctx, map[string]any{
		"collect_id": payment.CollectID.String(),
		"amount":     amount.StringFixed(2),
	})
	s.logg.Info(ctx, "payment recorded")
	if autoClosed {
		s.logg.Info(ctx, "collect closed: goal reached")
	}

	if s.cache != nil {
		if _, err := s.cache.ClearCache(ctx); err != nil {
			s.logg.Error(ctx, "payments.cache_clear_failed", err)
		}
	}

	stored, err := s.repo.FindByID(ctx, payment.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload payment")
	}
	return FromModel(stored), s.notifications.Dispatch(ctx, ids)
}

func totalLimitError() error {
	fields := pkgerrors.FieldErrors{}
	fields.Add("amount", "payment would take the collect total past "+models.MaxCollectAmount.StringFixed(2))
	return fields.Err()
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*PaymentDTO, error) {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "payment not found", "load payment")
	}
	return FromModel(payment), nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	query := listPaymentsParams{
		CollectID: params.CollectID,
		UserID:    params.UserID,
		Limit:     params.Limit,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payments")
	}
	result := &ListResult{Items: make([]PaymentDTO, 0, len(rows))}
	for i := range rows {
		result.Items = append(result.Items, *FromModel(&rows[i]))
	}
	if next != nil {
		result.NextCursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

// remaining is the formatted amount left to raise, never negative.
func remaining(c *models.Collect) string {
	if c.GoalAmount == nil {
		return unlimitedRemaining
	}
	left := c.GoalAmount.Sub(c.RaisedAmount)
	if left.IsNegative() {
		left = decimal.Zero
	}
	return notifications.FormatAmount(left)
}

func mapNotFound(err error, notFound, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFound)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}
