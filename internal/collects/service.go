package collects

import (
	"context"
	"errors"
	"maps"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/groupcollect/groupcollect-backend/internal/lifecycle"
	"github.com/groupcollect/groupcollect-backend/internal/notifications"
	"github.com/groupcollect/groupcollect-backend/internal/users"
	"github.com/groupcollect/groupcollect-backend/pkg/auth"
	"github.com/groupcollect/groupcollect-backend/pkg/censor"
	"github.com/groupcollect/groupcollect-backend/pkg/db/models"
	"github.com/groupcollect/groupcollect-backend/pkg/enums"
	pkgerrors "github.com/groupcollect/groupcollect-backend/pkg/errors"
	"github.com/groupcollect/groupcollect-backend/pkg/logger"
	"github.com/groupcollect/groupcollect-backend/pkg/pagination"
)

const defaultPublicPageSize = 9

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CacheClearer drops every cached public response.
type CacheClearer interface {
	ClearCache(ctx context.Context) (int, error)
}

// Service exposes collect moderation and read operations.
type Service interface {
	Create(ctx context.Context, authorID uuid.UUID, input CreateCollectInput) (*CollectDTO, error)
	Update(ctx context.Context, actor auth.Actor, id uuid.UUID, input UpdateCollectInput) (*CollectDTO, error)
	RequestClose(ctx context.Context, actor auth.Actor, id uuid.UUID, reason string) (*CollectDTO, error)
	ForceClose(ctx context.Context, actor auth.Actor, id uuid.UUID, reason string) (*CollectDTO, error)
	Activate(ctx context.Context, actor auth.Actor, ids []uuid.UUID) (*ActivateResult, error)
	Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error
	Get(ctx context.Context, viewer *auth.Actor, id uuid.UUID) (*CollectDTO, error)
	ListPublic(ctx context.Context, listing string, page int) (*PageResult, error)
	ListAdmin(ctx context.Context, filters AdminFilters, params pagination.Params) (*ListResult, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID, params pagination.Params) (*ListResult, error)
}

// ServiceParams groups the collects service dependencies.
type ServiceParams struct {
	DB             txRunner
	Repo           Repository
	Users          *users.Repository
	Notifications  notifications.Service
	Censor         *censor.Censor
	Cache          CacheClearer
	AdminURL       func(collectID string) string
	PublicPageSize int
	Logger         *logger.Logger
}

type service struct {
	db            txRunner
	repo          Repository
	users         *users.Repository
	notifications notifications.Service
	censor        *censor.Censor
	cache         CacheClearer
	adminURL      func(string) string
	pageSize      int
	logg          *logger.Logger
	now           func() time.Time
}

// NewService wires the collects service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "collects repository required")
	}
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	if params.Notifications == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications service required")
	}

	c := params.Censor
	if c == nil {
		c = censor.Default()
	}
	adminURL := params.AdminURL
	if adminURL == nil {
		adminURL = func(id string) string { return id }
	}
	pageSize := params.PublicPageSize
	if pageSize <= 0 {
		pageSize = defaultPublicPageSize
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}

	return &service{
		db:            params.DB,
		repo:          params.Repo,
		users:         params.Users,
		notifications: params.Notifications,
		censor:        c,
		cache:         params.Cache,
		adminURL:      adminURL,
		pageSize:      pageSize,
		logg:          logg,
		now:           time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, authorID uuid.UUID, input CreateCollectInput) (*CollectDTO, error) {
	collect := &models.Collect{
		ID:                uuid.New(),
		AuthorID:          authorID,
		Title:             s.censor.Clean(strings.TrimSpace(input.Title)),
		Occasion:          enums.Occasion(strings.TrimSpace(input.Occasion)),
		OccasionOtherText: s.censor.CleanPtr(trimmedOrNil(input.OccasionOtherText)),
		Description:       s.censor.Clean(strings.TrimSpace(input.Description)),
		GoalAmount:        input.GoalAmount,
		CoverImage:        trimmedOrNil(input.CoverImage),
		EndAt:             input.EndAt,
		PaymentType:       enums.PaymentType(strings.TrimSpace(input.PaymentType)),
		RecipientName:     input.RecipientName,
		CardNumber:        input.CardNumber,
		BankAccountNumber: input.BankAccountNumber,
		BankName:          input.BankName,
		BankBIK:           input.BankBIK,
		BankINN:           input.BankINN,
	}
	if collect.PaymentType == "" {
		collect.PaymentType = enums.PaymentTypeCard
	}
	normalizeRequisites(collect)
	if err := validateCollect(collect); err != nil {
		return nil, err
	}

	var ids []uuid.UUID
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := s.users.WithTx(tx)
		author, err := userRepo.FindByID(ctx, authorID)
		if err != nil {
			return mapNotFound(err, "author not found", "load author")
		}
		if err := s.repo.WithTx(tx).Create(ctx, collect); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create collect")
		}
		collect.Author = author

		adminEmails, err := userRepo.AdminEmails(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load admin emails")
		}
		draft := notifications.CollectSubmitted(Ref(collect), adminEmails, s.adminURL(collect.ID.String()))
		ids, err = s.notifications.Enqueue(ctx, tx, draft)
		return err
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithCollectID(ctx, collect.ID.String())
	s.logg.Info(ctx, "collect created")
	return s.reload(ctx, collect.ID, s.afterCommit(ctx, ids))
}

func (s *service) Update(ctx context.Context, actor auth.Actor, id uuid.UUID, input UpdateCollectInput) (*CollectDTO, error) {
	if input.touchesModeration() && !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only administrators may change moderation fields")
	}

	var ids []uuid.UUID
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := repo.FindByID(ctx, id)
		if err != nil {
			return mapNotFound(err, "collect not found", "load collect")
		}
		if !actor.Is(current.AuthorID) && !actor.IsAdmin() {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the author may edit this collect")
		}

		prev := lifecycle.SnapshotOf(*current)
		merged := *current
		s.applyUpdate(&merged, input)
		normalizeRequisites(&merged)
		if err := validateCollect(&merged); err != nil {
			return err
		}

		decision := lifecycle.Evaluate(prev, lifecycle.SnapshotOf(merged), false, s.now())
		transitioned := decision.Transitioned(prev)
		if transitioned && lifecycle.GoalReached(decision.Next) {
			return goalReachedError()
		}
		decision.Next.Apply(&merged)

		values := contentValues(&merged)
		if transitioned {
			maps.Copy(values, lifecycleValues(&merged))
		} else {
			addTouchedLifecycle(values, &merged, input)
		}
		affected, err := repo.UpdateFields(ctx, id, values, &prev.IsActive)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update collect")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "collect state changed, reload and retry")
		}

		ids, err = s.enqueueNotices(ctx, tx, &merged, decision.Notices)
		if err != nil || !merged.IsActive {
			return err
		}
		closeIDs, err := s.closeIfGoalReached(ctx, tx, id)
		ids = append(ids, closeIDs...)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, id, s.afterCommit(ctx, ids))
}

// RequestClose closes an active collect when an administrator asks, and
// records a closure request for the administrators when the author asks.
func (s *service) RequestClose(ctx context.Context, actor auth.Actor, id uuid.UUID, reason string) (*CollectDTO, error) {
	reason = s.censor.Clean(strings.TrimSpace(reason))

	var ids []uuid.UUID
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		current, err := s.repo.WithTx(tx).FindByID(ctx, id)
		if err != nil {
			return mapNotFound(err, "collect not found", "load collect")
		}
		if !actor.Is(current.AuthorID) && !actor.IsAdmin() {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the author may request closure")
		}
		if !current.IsActive {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only active collects can be closed")
		}

		if actor.IsAdmin() {
			ids, err = s.closeActive(ctx, tx, current, reason)
			return err
		}
		ids, err = s.requestClosure(ctx, tx, current, reason)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, id, s.afterCommit(ctx, ids))
}

func (s *service) ForceClose(ctx context.Context, actor auth.Actor, id uuid.UUID, reason string) (*CollectDTO, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "administrator role required")
	}
	reason = s.censor.Clean(strings.TrimSpace(reason))

	var ids []uuid.UUID
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		current, err := s.repo.WithTx(tx).FindByID(ctx, id)
		if err != nil {
			return mapNotFound(err, "collect not found", "load collect")
		}
		if !current.IsActive {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only active collects can be closed")
		}
		ids, err = s.closeActive(ctx, tx, current, reason)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, id, s.afterCommit(ctx, ids))
}

func (s *service) closeActive(ctx context.Context, tx *gorm.DB, current *models.Collect, reason string) ([]uuid.UUID, error) {
	decision := lifecycle.Close(lifecycle.SnapshotOf(*current), reason, s.now())
	decision.Next.Apply(current)

	affected, err := s.repo.WithTx(tx).SaveLifecycle(ctx, current, true)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close collect")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "collect is already closed")
	}
	return s.enqueueNotices(ctx, tx, current, decision.Notices)
}

func (s *service) requestClosure(ctx context.Context, tx *gorm.DB, current *models.Collect, reason string) ([]uuid.UUID, error) {
	values := map[string]any{"closure_requested": true, "close_reason": nil}
	if reason != "" {
		values["close_reason"] = reason
	}
	active := true
	affected, err := s.repo.WithTx(tx).UpdateFields(ctx, current.ID, values, &active)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "request closure")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only active collects can be closed")
	}

	adminEmails, err := s.users.WithTx(tx).AdminEmails(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load admin emails")
	}
	shown := reason
	if shown == "" {
		shown = "not specified"
	}
	draft := notifications.ClosureRequested(Ref(current), shown, adminEmails, s.adminURL(current.ID.String()))
	return s.notifications.Enqueue(ctx, tx, draft)
}

// closeIfGoalReached closes an active collect whose goal is met after an
// edit. The row is read again so payments committed meanwhile count.
func (s *service) closeIfGoalReached(ctx context.Context, tx *gorm.DB, id uuid.UUID) ([]uuid.UUID, error) {
	repo := s.repo.WithTx(tx)
	current, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload collect")
	}
	snapshot := lifecycle.SnapshotOf(*current)
	if !lifecycle.GoalReached(snapshot) {
		return nil, nil
	}

	decision := lifecycle.AutoClose(snapshot, s.now())
	decision.Next.Apply(current)
	closed, err := repo.SaveLifecycle(ctx, current, true)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close collect")
	}
	if closed == 0 {
		return nil, nil
	}
	s.logg.Info(s.logg.WithCollectID(ctx, id.String()), "collect closed: goal reached")
	return s.enqueueNotices(ctx, tx, current, decision.Notices)
}

func goalReachedError() error {
	fields := pkgerrors.FieldErrors{}
	fields.Add("goal_amount", "goal already reached, raise the goal to reopen the collect")
	return fields.Err()
}

// Activate approves each listed collect that is not active yet. Collects
// that are missing or already active are reported as skipped.
func (s *service) Activate(ctx context.Context, actor auth.Actor, ids []uuid.UUID) (*ActivateResult, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "administrator role required")
	}
	if len(ids) == 0 {
		fields := pkgerrors.FieldErrors{}
		fields.Add("ids", "at least one collect id is required")
		return nil, fields.Err()
	}

	result := &ActivateResult{Activated: []uuid.UUID{}, Skipped: []uuid.UUID{}}
	var notificationIDs []uuid.UUID
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		seen := make(map[uuid.UUID]struct{}, len(ids))
		for _, id := range ids {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}

			current, err := repo.FindByID(ctx, id)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				result.Skipped = append(result.Skipped, id)
				continue
			}
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load collect")
			}
			if current.IsActive {
				result.Skipped = append(result.Skipped, id)
				continue
			}

			prev := lifecycle.SnapshotOf(*current)
			next := prev
			next.IsActive = true
			if lifecycle.GoalReached(next) {
				result.Skipped = append(result.Skipped, id)
				continue
			}
			decision := lifecycle.Evaluate(prev, next, false, s.now())
			decision.Next.Apply(current)

			affected, err := repo.SaveLifecycle(ctx, current, false)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "activate collect")
			}
			if affected == 0 {
				result.Skipped = append(result.Skipped, id)
				continue
			}

			queued, err := s.enqueueNotices(ctx, tx, current, decision.Notices)
			if err != nil {
				return err
			}
			notificationIDs = append(notificationIDs, queued...)
			result.Activated = append(result.Activated, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithField(ctx, "activated", len(result.Activated)), "collects activated")
	return result, s.afterCommit(ctx, notificationIDs)
}

func (s *service) Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "administrator role required")
	}
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete collect")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "collect not found")
	}
	s.logg.Info(s.logg.WithCollectID(ctx, id.String()), "collect deleted")
	return s.afterCommit(ctx, nil)
}

// Get hides pending collects from everyone except their author and the
// administrators.
func (s *service) Get(ctx context.Context, viewer *auth.Actor, id uuid.UUID) (*CollectDTO, error) {
	collect, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "collect not found", "load collect")
	}
	if collect.Status() == enums.CollectStatusPending {
		if viewer == nil || (!viewer.Is(collect.AuthorID) && !viewer.IsAdmin()) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "collect not found")
		}
	}
	return FromModel(collect), nil
}

func (s *service) ListPublic(ctx context.Context, listing string, page int) (*PageResult, error) {
	kind, err := enums.ParsePublicListing(strings.TrimSpace(listing))
	if err != nil {
		fields := pkgerrors.FieldErrors{}
		fields.Add("status", "must be active or archive")
		return nil, fields.Err()
	}
	params := pagination.PageParams{Page: page, Size: s.pageSize}.Normalize(s.pageSize)

	rows, total, err := s.repo.ListPublic(ctx, kind, params.Offset(), params.Size)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list collects")
	}
	return &PageResult{
		Items:      fromModels(rows),
		Page:       params.Page,
		PageSize:   params.Size,
		TotalItems: total,
		TotalPages: pagination.TotalPages(total, params.Size),
	}, nil
}

func (s *service) ListAdmin(ctx context.Context, filters AdminFilters, params pagination.Params) (*ListResult, error) {
	if filters.Status != "" && !enums.CollectStatus(filters.Status).IsValid() {
		fields := pkgerrors.FieldErrors{}
		fields.Add("status", "must be pending, active or closed")
		return nil, fields.Err()
	}
	cursor, err := parseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	rows, next, err := s.repo.ListAdmin(ctx, filters, params.Limit, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list collects")
	}
	return listResult(rows, next), nil
}

func (s *service) ListByAuthor(ctx context.Context, authorID uuid.UUID, params pagination.Params) (*ListResult, error) {
	cursor, err := parseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	rows, next, err := s.repo.ListByAuthor(ctx, authorID, params.Limit, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list collects")
	}
	return listResult(rows, next), nil
}

func (s *service) applyUpdate(c *models.Collect, in UpdateCollectInput) {
	if in.Title != nil {
		c.Title = s.censor.Clean(strings.TrimSpace(*in.Title))
	}
	if in.Occasion != nil {
		c.Occasion = enums.Occasion(strings.TrimSpace(*in.Occasion))
	}
	if in.OccasionOtherText != nil {
		c.OccasionOtherText = s.censor.CleanPtr(trimmedOrNil(in.OccasionOtherText))
	}
	if in.Description != nil {
		c.Description = s.censor.Clean(strings.TrimSpace(*in.Description))
	}
	if in.GoalAmount != nil {
		c.GoalAmount = in.GoalAmount
	}
	if in.CoverImage != nil {
		c.CoverImage = trimmedOrNil(in.CoverImage)
	}
	if in.EndAt != nil {
		c.EndAt = in.EndAt
	}
	if in.PaymentType != nil {
		c.PaymentType = enums.PaymentType(strings.TrimSpace(*in.PaymentType))
	}
	if in.RecipientName != nil {
		c.RecipientName = *in.RecipientName
	}
	if in.CardNumber != nil {
		c.CardNumber = in.CardNumber
	}
	if in.BankAccountNumber != nil {
		c.BankAccountNumber = in.BankAccountNumber
	}
	if in.BankName != nil {
		c.BankName = in.BankName
	}
	if in.BankBIK != nil {
		c.BankBIK = in.BankBIK
	}
	if in.BankINN != nil {
		c.BankINN = in.BankINN
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	if in.ClosureRequested != nil {
		c.ClosureRequested = *in.ClosureRequested
	}
	if in.CloseReason != nil {
		c.CloseReason = s.censor.CleanPtr(trimmedOrNil(in.CloseReason))
	}
}

// EnqueueNotices renders and queues lifecycle notices inside tx.
func EnqueueNotices(ctx context.Context, tx *gorm.DB, admins *users.Repository, notify notifications.Service, c *models.Collect, notices []lifecycle.Notice) ([]uuid.UUID, error) {
	drafts, err := NoticeDrafts(ctx, admins.WithTx(tx), c, notices)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load admin emails")
	}
	if len(drafts) == 0 {
		return nil, nil
	}
	return notify.Enqueue(ctx, tx, drafts...)
}

func (s *service) enqueueNotices(ctx context.Context, tx *gorm.DB, c *models.Collect, notices []lifecycle.Notice) ([]uuid.UUID, error) {
	return EnqueueNotices(ctx, tx, s.users, s.notifications, c, notices)
}

// afterCommit invalidates the page cache and sends the queued notifications.
// A cache failure is logged only; a delivery failure is returned.
func (s *service) afterCommit(ctx context.Context, ids []uuid.UUID) error {
	if s.cache != nil {
		if _, err := s.cache.ClearCache(ctx); err != nil {
			s.logg.Error(ctx, "collects.cache_clear_failed", err)
		}
	}
	return s.notifications.Dispatch(ctx, ids)
}

// reload returns the committed collect together with dispatchErr so callers
// see the new state even when a notification could not be delivered.
func (s *service) reload(ctx context.Context, id uuid.UUID, dispatchErr error) (*CollectDTO, error) {
	collect, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "collect not found", "load collect")
	}
	return FromModel(collect), dispatchErr
}

// addTouchedLifecycle adds the lifecycle columns the input set explicitly.
// The rest keep whatever is stored.
func addTouchedLifecycle(values map[string]any, c *models.Collect, in UpdateCollectInput) {
	if in.ClosureRequested != nil {
		values["closure_requested"] = c.ClosureRequested
	}
	if in.CloseReason != nil {
		values["close_reason"] = c.CloseReason
	}
	if in.EndAt != nil {
		values["end_at"] = c.EndAt
	}
}

func contentValues(c *models.Collect) map[string]any {
	values := map[string]any{}
	values["title"] = c.Title
	values["occasion"] = c.Occasion
	values["occasion_other_text"] = c.OccasionOtherText
	values["description"] = c.Description
	values["goal_amount"] = c.GoalAmount
	values["cover_image"] = c.CoverImage
	values["payment_type"] = c.PaymentType
	values["recipient_name"] = c.RecipientName
	values["card_number"] = c.CardNumber
	values["bank_account_number"] = c.BankAccountNumber
	values["bank_name"] = c.BankName
	values["bank_bik"] = c.BankBIK
	values["bank_inn"] = c.BankINN
	return values
}

func listResult(rows []models.Collect, next *pagination.Cursor) *ListResult {
	result := &ListResult{Items: fromModels(rows)}
	if next != nil {
		result.NextCursor = pagination.EncodeCursor(*next)
	}
	return result
}

func parseCursor(raw string) (*pagination.Cursor, error) {
	if raw == "" {
		return nil, nil
	}
	cursor, err := pagination.ParseCursor(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	return cursor, nil
}

func mapNotFound(err error, notFound, op string) error {
	var typed *pkgerrors.Error
	if errors.As(err, &typed) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFound)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}
