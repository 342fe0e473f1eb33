package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/groupcollect/groupcollect-backend/pkg/db/models"
	"github.com/groupcollect/groupcollect-backend/pkg/enums"
	pkgerrors "github.com/groupcollect/groupcollect-backend/pkg/errors"
	"github.com/groupcollect/groupcollect-backend/pkg/logger"
	"github.com/groupcollect/groupcollect-backend/pkg/mail"
	"github.com/groupcollect/groupcollect-backend/pkg/metrics"
	"github.com/groupcollect/groupcollect-backend/pkg/pagination"
)

// Service records notifications inside mutation transactions and sends them
// once the transaction has committed.
type Service interface {
	Enqueue(ctx context.Context, tx *gorm.DB, drafts ...Draft) ([]uuid.UUID, error)
	Dispatch(ctx context.Context, ids []uuid.UUID) error
	List(ctx context.Context, params ListParams) (*ListResult, error)
}

type service struct {
	repo    Repository
	sender  mail.Sender
	from    string
	metrics *metrics.NotificationMetrics
	logg    *logger.Logger
	now     func() time.Time
}

// ServiceParams groups the dispatcher dependencies.
type ServiceParams struct {
	Repo    Repository
	Sender  mail.Sender
	From    string
	Metrics *metrics.NotificationMetrics
	Logger  *logger.Logger
}

// ListParams configures the admin dispatch log listing.
type ListParams struct {
	Status string
	Kind   string
	Limit  int
	Cursor string
}

// ListResult wraps returned notifications and the cursor for the next page.
type ListResult struct {
	Items      []models.Notification `json:"items"`
	NextCursor string                `json:"next_cursor,omitempty"`
}

// NewService wires notifications dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	if params.Sender == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "mail sender required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		repo:    params.Repo,
		sender:  params.Sender,
		from:    params.From,
		metrics: params.Metrics,
		logg:    logg,
		now:     time.Now,
	}, nil
}

// Enqueue writes one pending row per draft using tx and returns their ids in
// order. Nothing is sent until Dispatch.
func (s *service) Enqueue(ctx context.Context, tx *gorm.DB, drafts ...Draft) ([]uuid.UUID, error) {
	repo := s.repo.WithTx(tx)
	ids := make([]uuid.UUID, 0, len(drafts))
	for _, d := range drafts {
		row := &models.Notification{
			ID:         uuid.New(),
			Kind:       d.Kind,
			Subject:    d.Subject,
			Body:       d.Body,
			Sender:     s.from,
			Recipients: mail.Message{To: d.Recipients}.Recipients(),
			CollectID:  d.CollectID,
			Status:     enums.NotificationStatusPending,
		}
		if err := repo.Create(ctx, row); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "enqueue notification")
		}
		ids = append(ids, row.ID)
	}
	return ids, nil
}

// Dispatch sends the pending notifications in the given order, one attempt
// each. Failures are recorded on their rows and returned together.
func (s *service) Dispatch(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	rows, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load notifications")
	}

	var (
		sendErr error
		failed  []string
	)
	for _, row := range rows {
		if row.Status != enums.NotificationStatusPending {
			continue
		}
		if err := s.dispatchOne(ctx, row); err != nil {
			sendErr = multierr.Append(sendErr, err)
			failed = append(failed, row.ID.String())
		}
	}

	if sendErr == nil {
		return nil
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, sendErr, "notification delivery failed").
		WithDetails(map[string]any{"failed_notification_ids": failed})
}

func (s *service) dispatchOne(ctx context.Context, row models.Notification) error {
	ctx = s.logg.WithFields(ctx, map[string]any{
		"notification_id": row.ID.String(),
		"kind":            string(row.Kind),
	})
	kind := string(row.Kind)

	if len(row.Recipients) == 0 {
		s.metrics.IncDispatched(kind, string(enums.NotificationStatusSkipped))
		if err := s.repo.MarkSkipped(ctx, row.ID, s.now().UTC()); err != nil {
			s.logg.Error(ctx, "notification.mark_skipped_failed", err)
		}
		s.logg.Debug(ctx, "notification skipped: no recipients")
		return nil
	}

	msg := mail.Message{
		Subject: row.Subject,
		Body:    row.Body,
		From:    row.Sender,
		To:      row.Recipients,
	}

	start := s.now()
	sendErr := s.sender.Send(ctx, msg)
	s.metrics.ObserveSend(s.sender.Name(), s.now().Sub(start))
	attemptedAt := s.now().UTC()

	if sendErr != nil {
		s.metrics.IncDispatched(kind, string(enums.NotificationStatusFailed))
		if err := s.repo.MarkFailed(ctx, row.ID, attemptedAt, sendErr.Error()); err != nil {
			s.logg.Error(ctx, "notification.mark_failed_failed", err)
		}
		masked := make([]string, 0, len(row.Recipients))
		for _, to := range row.Recipients {
			masked = append(masked, logger.MaskEmail(to))
		}
		s.logg.Error(s.logg.WithField(ctx, "recipients", masked), "notification.send_failed", sendErr)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, sendErr, "send "+kind+" notification")
	}

	s.metrics.IncDispatched(kind, string(enums.NotificationStatusSent))
	if err := s.repo.MarkSent(ctx, row.ID, attemptedAt); err != nil {
		s.logg.Error(ctx, "notification.mark_sent_failed", err)
	}
	return nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	query := listNotificationsParams{Limit: params.Limit}
	if params.Status != "" {
		status, err := enums.ParseNotificationStatus(params.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		query.Status = &status
	}
	if params.Kind != "" {
		kind, err := enums.ParseNotificationKind(params.Kind)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid kind")
		}
		query.Kind = &kind
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}

	result := &ListResult{Items: rows}
	if next != nil {
		result.NextCursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}
